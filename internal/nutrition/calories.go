package nutrition

import (
	"math"

	"github.com/franckalain/nutrisnap/internal/models"
)

// Atwater factors, kcal per gram
const (
	kcalPerGramProtein = 4
	kcalPerGramCarbs   = 4
	kcalPerGramFat     = 9
)

// CalorieTolerance is the relative difference between reported and
// macro-derived calories above which the reported figure is rejected.
const CalorieTolerance = 0.25

// MacroCalories estimates energy from the macronutrients alone.
func MacroCalories(p models.ParsedNutrition) float64 {
	return p.Protein*kcalPerGramProtein + p.Carbohydrates*kcalPerGramCarbs + p.Fat*kcalPerGramFat
}

// CaloriesContradict reports whether the calorie figure cannot be trusted
// given the macronutrients: it is missing while macros are present, or it
// differs from the macro estimate by more than CalorieTolerance.
func CaloriesContradict(p models.ParsedNutrition) bool {
	macro := MacroCalories(p)
	if macro == 0 {
		return false
	}
	if p.Calories == 0 {
		return true
	}
	return math.Abs(p.Calories-macro)/macro > CalorieTolerance
}
