// Package nutrition turns model-written nutrition estimates into numbers.
package nutrition

import (
	"fmt"
	"regexp"
	"sort"
	"strconv"
	"strings"

	"github.com/franckalain/nutrisnap/internal/models"
)

// ParseError is returned when no nutrient at all could be read from the text.
type ParseError struct {
	Text string
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("could not parse nutritional information from the analysis, the format might be unexpected; the response was: %s", e.Text)
}

// patternKind describes where the number sits relative to the label.
type patternKind int

const (
	// "Protein: 30g", "Calories = 150-160"
	labelColon patternKind = iota
	// "30g protein", "150-160 calories", "30 grams of protein"
	numberFirst
	// "Protein 30g", "Protein - 30g", "protein is about 30g"
	labelLoose
)

// kindOrder is the precedence used when several shapes match the same field.
// An explicit "label: value" pair beats prose.
var kindOrder = []patternKind{labelColon, numberFirst, labelLoose}

// field is one row of the extraction table.
type field struct {
	name   string
	labels []string
	units  []string
	set    func(*models.ParsedNutrition, float64)
}

var fields = []field{
	{
		name:   "calories",
		labels: []string{"calories", "calorie", "kcal", "cal"},
		set:    func(p *models.ParsedNutrition, v float64) { p.Calories = v },
	},
	{
		name:   "protein",
		labels: []string{"proteins", "protein"},
		units:  gramUnits,
		set:    func(p *models.ParsedNutrition, v float64) { p.Protein = v },
	},
	{
		name:   "carbohydrates",
		labels: []string{"carbohydrates", "carbohydrate", "carbs", "carb"},
		units:  gramUnits,
		set:    func(p *models.ParsedNutrition, v float64) { p.Carbohydrates = v },
	},
	{
		name:   "sugar",
		labels: []string{"sugars", "sugar"},
		units:  gramUnits,
		set:    func(p *models.ParsedNutrition, v float64) { p.Sugar = v },
	},
	{
		name:   "fat",
		labels: []string{"total fat", "fats", "fat"},
		units:  gramUnits,
		set:    func(p *models.ParsedNutrition, v float64) { p.Fat = v },
	},
}

var gramUnits = []string{"grams", "gram", "gms", "gm", "gr", "g"}

// Sub-kinds of a nutrient ("saturated fat", "added sugar") are matched so
// they can be skipped instead of being read as the headline value.
const subKinds = `saturated|unsaturated|monounsaturated|polyunsaturated|trans|added|natural|free`

const (
	number    = `(\d{1,3}(?:,\d{3})+(?:\.\d+)?|\d+(?:\.\d+)?)`
	qualifier = `(?:(?:~|approx(?:\.|imately)?|about|around|roughly|estimated|est\.?)[ \t]*)?`
	rangeSep  = `[ \t]*(?:-|–|—|to)[ \t]*`
)

// value captures a single number or a range; groups: low, high.
var value = qualifier + number + `(?:` + rangeSep + number + `)?`

type matcher struct {
	field field
	kinds map[patternKind]*regexp.Regexp
}

var matchers = buildMatchers(fields)

// labelTail matches text ending in a label and its separator, i.e. a
// position where the following number already belongs to that label.
var labelTail = regexp.MustCompile(`(?i)\b(?:` + alternation(allLabels(fields)) + `)\b(?:[ \t]*\([^)\n]*\))?[ \t]*(?:[:=]|-|–|is|of|at)?[ \t]*$`)

func allLabels(table []field) []string {
	var out []string
	for _, f := range table {
		out = append(out, f.labels...)
	}
	return out
}

func buildMatchers(table []field) []matcher {
	out := make([]matcher, 0, len(table))
	for _, f := range table {
		label := alternation(f.labels)
		unit := ""
		if len(f.units) > 0 {
			unit = `(?:` + alternation(f.units) + `)?\.?`
		}
		prefix := `(?:(` + subKinds + `)\s+)?`
		inlinePrefix := `(?:(` + subKinds + `)[ \t]+)?`
		out = append(out, matcher{
			field: f,
			kinds: map[patternKind]*regexp.Regexp{
				labelColon:  regexp.MustCompile(`(?i)\b` + prefix + `(?:` + label + `)\b(?:\s*\([^)]*\))?\s*[:=]\s*` + value),
				numberFirst: regexp.MustCompile(`(?i)` + value + `[ \t]*` + unit + `[ \t]*(?:of[ \t]+)?` + inlinePrefix + `(?:` + label + `)\b`),
				labelLoose:  regexp.MustCompile(`(?i)\b` + prefix + `(?:` + label + `)\b\s*(?:-|–|is|of|at)?\s*` + value),
			},
		})
	}
	return out
}

// alternation builds a regexp alternation with longer words first so that
// "carbohydrates" wins over "carb".
func alternation(words []string) string {
	sorted := append([]string(nil), words...)
	sort.SliceStable(sorted, func(i, j int) bool { return len(sorted[i]) > len(sorted[j]) })
	quoted := make([]string, len(sorted))
	for i, w := range sorted {
		quoted[i] = strings.ReplaceAll(regexp.QuoteMeta(w), " ", `\s+`)
	}
	return strings.Join(quoted, "|")
}

// Parse extracts calories, protein, carbohydrates, sugar and fat from text.
// Fields that cannot be found are left at zero; if none can be found a
// *ParseError carrying the text is returned.
func Parse(text string) (models.ParsedNutrition, error) {
	var out models.ParsedNutrition
	for _, m := range matchers {
		if v, ok := m.extract(text); ok {
			m.field.set(&out, v)
		}
	}
	if out.IsZero() {
		return models.ParsedNutrition{}, &ParseError{Text: text}
	}
	return out, nil
}

func (m matcher) extract(text string) (float64, bool) {
	for _, kind := range kindOrder {
		re := m.kinds[kind]
		for _, loc := range re.FindAllStringSubmatchIndex(text, -1) {
			// In "Protein 30g Fat 28g" the 30 is protein's, not fat's.
			if kind == numberFirst && labelTail.MatchString(text[:loc[0]]) {
				continue
			}
			group := func(i int) string {
				if loc[2*i] < 0 {
					return ""
				}
				return text[loc[2*i]:loc[2*i+1]]
			}
			// Group layout differs by kind: the sub-kind prefix comes first
			// for label-led patterns and last for numberFirst.
			var sub, low, high string
			switch kind {
			case numberFirst:
				low, high, sub = group(1), group(2), group(3)
			default:
				sub, low, high = group(1), group(2), group(3)
			}
			if sub != "" {
				continue
			}
			v, ok := resolve(low, high)
			if ok {
				return v, true
			}
		}
	}
	return 0, false
}

// resolve returns a single value or the mean of a range.
func resolve(low, high string) (float64, bool) {
	a, err := parseNumber(low)
	if err != nil {
		return 0, false
	}
	if high == "" {
		return a, true
	}
	b, err := parseNumber(high)
	if err != nil {
		return a, true
	}
	return (a + b) / 2, true
}

func parseNumber(s string) (float64, error) {
	return strconv.ParseFloat(strings.ReplaceAll(s, ",", ""), 64)
}
