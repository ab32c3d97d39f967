package ml

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/franckalain/nutrisnap/internal/models"
)

// stripCodeFences removes a surrounding ```json ... ``` block if present.
func stripCodeFences(s string) string {
	s = strings.TrimSpace(s)
	if !strings.HasPrefix(s, "```") {
		return s
	}
	s = strings.TrimPrefix(s, "```")
	if i := strings.IndexByte(s, '\n'); i >= 0 {
		s = s[i+1:]
	} else {
		s = strings.TrimPrefix(s, "json")
	}
	s = strings.TrimSuffix(strings.TrimSpace(s), "```")
	return strings.TrimSpace(s)
}

func decodeDishAnalysis(text string) (*models.DishAnalysis, error) {
	var out models.DishAnalysis
	if err := json.Unmarshal([]byte(stripCodeFences(text)), &out); err != nil {
		return nil, fmt.Errorf("failed to parse model response: %w while parsing %s", err, text)
	}
	out.DishIdentification = strings.TrimSpace(out.DishIdentification)
	out.EstimatedNutritionalContent = strings.TrimSpace(out.EstimatedNutritionalContent)
	return &out, nil
}

func decodeHealthRating(text string) (*models.HealthRating, error) {
	var out models.HealthRating
	if err := json.Unmarshal([]byte(stripCodeFences(text)), &out); err != nil {
		return nil, fmt.Errorf("failed to parse model response: %w while parsing %s", err, text)
	}
	if out.HealthScore == 0 && out.Explanation == "" {
		return nil, fmt.Errorf("missing healthScore in response: %s", text)
	}
	return &out, nil
}

// decodeAlternatives accepts either the structured cooked/packaged object or
// a plain JSON array of names.
func decodeAlternatives(text string) (*models.Alternatives, error) {
	raw := []byte(stripCodeFences(text))

	var names []string
	if err := json.Unmarshal(raw, &names); err == nil {
		if len(names) == 0 {
			return nil, fmt.Errorf("no alternatives in response: %s", text)
		}
		return &models.Alternatives{Suggestions: names}, nil
	}

	var out struct {
		models.Alternatives
		// Some models answer with one flat list under "alternatives"
		Flat json.RawMessage `json:"alternatives"`
	}
	if err := json.Unmarshal(raw, &out); err != nil {
		return nil, fmt.Errorf("failed to parse model response: %w while parsing %s", err, text)
	}
	alts := out.Alternatives
	if len(out.Flat) > 0 {
		if err := json.Unmarshal(out.Flat, &names); err == nil {
			alts.Suggestions = append(alts.Suggestions, names...)
		} else {
			var items []models.Alternative
			if err := json.Unmarshal(out.Flat, &items); err == nil {
				alts.CookedAlternatives = append(alts.CookedAlternatives, items...)
			}
		}
	}
	if alts.Len() == 0 {
		return nil, fmt.Errorf("no alternatives in response: %s", text)
	}
	return &alts, nil
}
