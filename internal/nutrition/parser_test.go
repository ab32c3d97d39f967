package nutrition

import (
	"errors"
	"testing"

	"github.com/franckalain/nutrisnap/internal/models"
)

func TestParse(t *testing.T) {
	tests := []struct {
		name     string
		text     string
		expected models.ParsedNutrition
	}{
		{
			name:     "labelled list",
			text:     "Calories: 800, Protein: 30g, Carbohydrates: 90g, Sugar: 8g, Fat: 28g",
			expected: models.ParsedNutrition{Calories: 800, Protein: 30, Carbohydrates: 90, Sugar: 8, Fat: 28},
		},
		{
			name:     "single field defaults others to zero",
			text:     "This dish looks tasty! It is packed with about 25g protein.",
			expected: models.ParsedNutrition{Protein: 25},
		},
		{
			name:     "range is averaged",
			text:     "Roughly 150-160 calories per serving",
			expected: models.ParsedNutrition{Calories: 155},
		},
		{
			name:     "labelled range with en dash",
			text:     "Calories: 150–160 kcal",
			expected: models.ParsedNutrition{Calories: 155},
		},
		{
			name:     "number before label with synonyms",
			text:     "600 kcal, 20 grams of protein, 45g carbs, 12g sugars, 30g fat",
			expected: models.ParsedNutrition{Calories: 600, Protein: 20, Carbohydrates: 45, Sugar: 12, Fat: 30},
		},
		{
			name:     "label before number without colon",
			text:     "Protein 30g and carbohydrates 40g",
			expected: models.ParsedNutrition{Protein: 30, Carbohydrates: 40},
		},
		{
			name:     "one nutrient per line without colons",
			text:     "Calories 800\nProtein 30g\nCarbohydrates 90g\nSugar 8g\nFat 28g",
			expected: models.ParsedNutrition{Calories: 800, Protein: 30, Carbohydrates: 90, Sugar: 8, Fat: 28},
		},
		{
			name:     "adjacent label value pairs",
			text:     "Protein 30g Fat 28g",
			expected: models.ParsedNutrition{Protein: 30, Fat: 28},
		},
		{
			name:     "label led line followed by number led line",
			text:     "Calories 500 kcal\n20g protein",
			expected: models.ParsedNutrition{Calories: 500, Protein: 20},
		},
		{
			name:     "total fat wins over saturated fat",
			text:     "Total Fat: 20g, Saturated Fat: 5g",
			expected: models.ParsedNutrition{Fat: 20},
		},
		{
			name:     "saturated fat listed first is skipped",
			text:     "Saturated fat: 5g, Fat: 20g",
			expected: models.ParsedNutrition{Fat: 20},
		},
		{
			name:     "decimal values",
			text:     "Protein: 12.5g, Fat: 3.25g",
			expected: models.ParsedNutrition{Protein: 12.5, Fat: 3.25},
		},
		{
			name:     "thousands separator",
			text:     "Calories: 1,200",
			expected: models.ParsedNutrition{Calories: 1200},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result, err := Parse(tt.text)
			if err != nil {
				t.Fatalf("Unexpected error: %v", err)
			}
			if result != tt.expected {
				t.Errorf("Expected %+v, got %+v", tt.expected, result)
			}
		})
	}
}

func TestParseFailure(t *testing.T) {
	tests := []struct {
		name string
		text string
	}{
		{name: "no numbers", text: "This dish looks tasty!"},
		{name: "empty", text: ""},
		{name: "all zero", text: "Calories: 0, Protein: 0g"},
		{name: "calcium is not calories", text: "Calcium: 200mg"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result, err := Parse(tt.text)
			if err == nil {
				t.Fatalf("Expected ParseError, got %+v", result)
			}
			var perr *ParseError
			if !errors.As(err, &perr) {
				t.Fatalf("Expected *ParseError, got %T", err)
			}
			if perr.Text != tt.text {
				t.Errorf("Expected error text %q, got %q", tt.text, perr.Text)
			}
		})
	}
}

func TestParseIsIdempotent(t *testing.T) {
	text := "Approximately 450-500 calories, 25g protein, 60g carbohydrates, 9g sugar, 14g fat"

	first, err := Parse(text)
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	second, err := Parse(text)
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if first != second {
		t.Errorf("Expected identical results, got %+v and %+v", first, second)
	}
	if first.Calories != 475 {
		t.Errorf("Expected calories 475, got %v", first.Calories)
	}
}

func TestMacroCalories(t *testing.T) {
	p := models.ParsedNutrition{Protein: 10, Carbohydrates: 20, Fat: 5}
	if got := MacroCalories(p); got != 165 {
		t.Errorf("Expected 165, got %v", got)
	}
}

func TestCaloriesContradict(t *testing.T) {
	tests := []struct {
		name     string
		input    models.ParsedNutrition
		expected bool
	}{
		{
			name:     "zero calories with macros",
			input:    models.ParsedNutrition{Protein: 10, Carbohydrates: 20, Fat: 5},
			expected: true,
		},
		{
			name:     "matching calories",
			input:    models.ParsedNutrition{Calories: 170, Protein: 10, Carbohydrates: 20, Fat: 5},
			expected: false,
		},
		{
			name:     "far off calories",
			input:    models.ParsedNutrition{Calories: 400, Protein: 10, Carbohydrates: 20, Fat: 5},
			expected: true,
		},
		{
			name:     "no macros to compare against",
			input:    models.ParsedNutrition{Calories: 250},
			expected: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := CaloriesContradict(tt.input); got != tt.expected {
				t.Errorf("Expected %v, got %v", tt.expected, got)
			}
		})
	}
}
