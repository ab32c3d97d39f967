package ml

import (
	"strings"
	"testing"

	"github.com/franckalain/nutrisnap/internal/models"
)

func TestStripCodeFences(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{`{"a":1}`, `{"a":1}`},
		{"```json\n{\"a\":1}\n```", `{"a":1}`},
		{"```\n{\"a\":1}\n```", `{"a":1}`},
		{"  ```json {\"a\":1}```  ", `{"a":1}`},
	}
	for _, tt := range tests {
		if got := stripCodeFences(tt.in); got != tt.want {
			t.Errorf("stripCodeFences(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestDecodeDishAnalysis(t *testing.T) {
	got, err := decodeDishAnalysis("```json\n{\"dishIdentification\": \" Chicken Biryani \", \"estimatedNutritionalContent\": \"Calories: 800\"}\n```")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got.DishIdentification != "Chicken Biryani" {
		t.Errorf("dish = %q", got.DishIdentification)
	}
	if got.EstimatedNutritionalContent != "Calories: 800" {
		t.Errorf("nutrition = %q", got.EstimatedNutritionalContent)
	}

	if _, err := decodeDishAnalysis("I think this is a salad"); err == nil {
		t.Error("expected error for non-JSON response")
	}
}

func TestDecodeHealthRating(t *testing.T) {
	got, err := decodeHealthRating(`{"healthScore": 7.5, "explanation": "Balanced", "recalculatedCalories": 820}`)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got.HealthScore != 7.5 || got.Explanation != "Balanced" {
		t.Errorf("got %+v", got)
	}
	if got.RecalculatedCalories == nil || *got.RecalculatedCalories != 820 {
		t.Errorf("recalculatedCalories = %v, want 820", got.RecalculatedCalories)
	}

	got, err = decodeHealthRating(`{"healthScore": 4, "explanation": "Fried", "recalculatedCalories": null}`)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got.RecalculatedCalories != nil {
		t.Errorf("expected nil recalculatedCalories, got %v", *got.RecalculatedCalories)
	}

	if _, err := decodeHealthRating(`{}`); err == nil {
		t.Error("expected error for empty rating")
	}
}

func TestDecodeAlternatives(t *testing.T) {
	tests := []struct {
		name        string
		text        string
		cooked      int
		packaged    int
		suggestions int
	}{
		{
			name:     "structured",
			text:     `{"cookedAlternatives":[{"name":"Dal","recipe":"Boil lentils"},{"name":"Khichdi","recipe":"Cook rice and dal"}],"packagedAlternatives":[{"name":"Roasted chana","price":"₹60"}]}`,
			cooked:   2,
			packaged: 1,
		},
		{
			name:        "plain array",
			text:        `["Grilled chicken salad", "Quinoa bowl"]`,
			suggestions: 2,
		},
		{
			name:        "flat names under alternatives",
			text:        `{"alternatives": ["Steamed idli"]}`,
			suggestions: 1,
		},
		{
			name:   "flat objects under alternatives",
			text:   "```json\n{\"alternatives\": [{\"name\": \"Poha\", \"recipe\": \"Soak and temper\"}]}\n```",
			cooked: 1,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := decodeAlternatives(tt.text)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if len(got.CookedAlternatives) != tt.cooked {
				t.Errorf("cooked = %d, want %d", len(got.CookedAlternatives), tt.cooked)
			}
			if len(got.PackagedAlternatives) != tt.packaged {
				t.Errorf("packaged = %d, want %d", len(got.PackagedAlternatives), tt.packaged)
			}
			if len(got.Suggestions) != tt.suggestions {
				t.Errorf("suggestions = %d, want %d", len(got.Suggestions), tt.suggestions)
			}
		})
	}

	for _, bad := range []string{`{}`, `[]`, `not json`} {
		if _, err := decodeAlternatives(bad); err == nil {
			t.Errorf("decodeAlternatives(%q) expected error", bad)
		}
	}
}

func TestBuildRatePrompt(t *testing.T) {
	consistent := models.RatingRequest{
		FoodName:        "Chicken Biryani",
		ParsedNutrition: models.ParsedNutrition{Calories: 800, Protein: 30, Carbohydrates: 90, Sugar: 8, Fat: 28},
	}
	prompt := buildRatePrompt(consistent)
	if !strings.Contains(prompt, "Food: Chicken Biryani") || !strings.Contains(prompt, "Calories: 800 kcal") {
		t.Errorf("prompt missing values:\n%s", prompt)
	}
	if strings.Contains(prompt, "IMPORTANT") {
		t.Error("consistent nutrition should not ask for recalculation")
	}

	zeroCalories := consistent
	zeroCalories.Calories = 0
	prompt = buildRatePrompt(zeroCalories)
	if !strings.Contains(prompt, "IMPORTANT") || !strings.Contains(prompt, "about 732 kcal") {
		t.Errorf("expected recalculation note:\n%s", prompt)
	}
}

func TestImageFormat(t *testing.T) {
	tests := map[string]string{
		"image/png":  "png",
		"IMAGE/WEBP": "webp",
		"image/jpeg": "jpeg",
		"":           "jpeg",
		"text/plain": "jpeg",
	}
	for in, want := range tests {
		if got := imageFormat(in); got != want {
			t.Errorf("imageFormat(%q) = %q, want %q", in, got, want)
		}
	}
}
