package models

// ParsedNutrition represents the numeric nutrition values extracted from a
// free-text estimate. Values are per served dish, never negative.
type ParsedNutrition struct {
	Calories      float64 `json:"calories" yaml:"calories"`           // kcal
	Protein       float64 `json:"protein" yaml:"protein"`             // grams
	Carbohydrates float64 `json:"carbohydrates" yaml:"carbohydrates"` // grams
	Sugar         float64 `json:"sugar" yaml:"sugar"`                 // grams
	Fat           float64 `json:"fat" yaml:"fat"`                     // grams
}

// IsZero reports whether every field is zero.
func (p ParsedNutrition) IsZero() bool {
	return p.Calories == 0 && p.Protein == 0 && p.Carbohydrates == 0 && p.Sugar == 0 && p.Fat == 0
}

// RatingRequest is the input handed to a Rater.
type RatingRequest struct {
	FoodName string `json:"foodName"`
	ParsedNutrition
}

// HealthRating is a 1-10 score with an explanation.
type HealthRating struct {
	HealthScore float64 `json:"healthScore" yaml:"healthScore"`
	Explanation string  `json:"explanation" yaml:"explanation"`

	// Set only when the reported calories contradict the macronutrients
	RecalculatedCalories *float64 `json:"recalculatedCalories,omitempty" yaml:"recalculatedCalories,omitempty"`
}
