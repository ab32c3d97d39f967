package ml

import (
	"fmt"
	"strings"

	"github.com/franckalain/nutrisnap/internal/models"
	"github.com/franckalain/nutrisnap/internal/nutrition"
)

const analyzePrompt = `You are an expert nutritionist. Analyze the image of the food and identify the dish.
Then estimate its nutritional content for the portion shown, including calories, protein, carbohydrates, sugar and fat.

Write the nutritional content as one line of "Label: value" pairs, for example:
"Calories: 650 kcal, Protein: 25g, Carbohydrates: 70g, Sugar: 9g, Fat: 28g"

Respond with a JSON object and nothing else:
{
	"dishIdentification": "string",
	"estimatedNutritionalContent": "string"
}`

const ratePromptTemplate = `You are a nutritionist providing a health rating for food.

Based on the following nutritional information, provide a health score between 1 and 10 (inclusive),
where 1 is very unhealthy and 10 is very healthy. Also provide a brief explanation for your rating.
%s
Food: %s
Calories: %g kcal
Protein: %g g
Carbohydrates: %g g
Sugar: %g g
Fat: %g g

Respond with a JSON object and nothing else:
{
	"healthScore": number,
	"explanation": "string",
	"recalculatedCalories": number or null
}`

const recalculationNote = `
IMPORTANT: the calorie figure contradicts the macronutrients. Point out the contradiction in your
explanation and base the score on the macronutrients, using 4 kcal/g for protein and carbohydrates
and 9 kcal/g for fat (about %g kcal). Set "recalculatedCalories" to the value you used.
`

const suggestPromptTemplate = `For the given food, "%s", suggest 2 healthy cooked alternatives and 2 healthy packaged alternatives.

For the cooked alternatives, provide a simple recipe for each.
For the packaged alternatives, provide an estimated price in Indian Rupees (₹).

Respond with a JSON object and nothing else:
{
	"cookedAlternatives": [{"name": "string", "recipe": "string"}],
	"packagedAlternatives": [{"name": "string", "price": "string"}]
}`

func buildRatePrompt(req models.RatingRequest) string {
	note := ""
	if nutrition.CaloriesContradict(req.ParsedNutrition) {
		note = fmt.Sprintf(recalculationNote, nutrition.MacroCalories(req.ParsedNutrition))
	}
	p := req.ParsedNutrition
	return fmt.Sprintf(ratePromptTemplate, note, strings.TrimSpace(req.FoodName),
		p.Calories, p.Protein, p.Carbohydrates, p.Sugar, p.Fat)
}

func buildSuggestPrompt(dish string) string {
	return fmt.Sprintf(suggestPromptTemplate, strings.TrimSpace(dish))
}
