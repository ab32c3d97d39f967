package models

import (
	"time"
)

// ImagePayload is an uploaded image, held only for the duration of a request
type ImagePayload struct {
	Data     []byte
	MIMEType string
}

// Empty reports whether the payload carries no image bytes.
func (p ImagePayload) Empty() bool {
	return len(p.Data) == 0
}

// DishAnalysis is what the image analyzer returns for a photo
type DishAnalysis struct {
	DishIdentification          string `json:"dishIdentification" yaml:"dishIdentification"`
	EstimatedNutritionalContent string `json:"estimatedNutritionalContent" yaml:"estimatedNutritionalContent"`
}

// Alternative is a suggested substitute for the analyzed dish.
// Cooked alternatives carry a recipe, packaged ones a price.
type Alternative struct {
	Name     string `json:"name" yaml:"name"`
	Recipe   string `json:"recipe,omitempty" yaml:"recipe,omitempty"`
	Price    string `json:"price,omitempty" yaml:"price,omitempty"`
	ImageURL string `json:"imageUrl" yaml:"imageUrl"`
}

// Alternatives groups suggestions by kind. Suggesters that only produce
// plain names fill Suggestions instead of the structured lists.
type Alternatives struct {
	CookedAlternatives   []Alternative `json:"cookedAlternatives" yaml:"cookedAlternatives"`
	PackagedAlternatives []Alternative `json:"packagedAlternatives" yaml:"packagedAlternatives"`
	Suggestions          []string      `json:"suggestions,omitempty" yaml:"suggestions,omitempty"`
}

// Len returns the total number of suggestions of any shape.
func (a *Alternatives) Len() int {
	if a == nil {
		return 0
	}
	return len(a.CookedAlternatives) + len(a.PackagedAlternatives) + len(a.Suggestions)
}

// Items returns pointers to every structured alternative so callers can
// fill in missing fields in place.
func (a *Alternatives) Items() []*Alternative {
	items := make([]*Alternative, 0, len(a.CookedAlternatives)+len(a.PackagedAlternatives))
	for i := range a.CookedAlternatives {
		items = append(items, &a.CookedAlternatives[i])
	}
	for i := range a.PackagedAlternatives {
		items = append(items, &a.PackagedAlternatives[i])
	}
	return items
}

// FullAnalysisResult is the unit returned to the caller for one image
type FullAnalysisResult struct {
	ID              string          `json:"id" yaml:"id"`
	Analysis        DishAnalysis    `json:"analysis" yaml:"analysis"`
	ParsedNutrition ParsedNutrition `json:"parsedNutrition" yaml:"parsedNutrition"`
	Rating          HealthRating    `json:"rating" yaml:"rating"`
	Alternatives    Alternatives    `json:"alternatives" yaml:"alternatives"`
	CreatedAt       time.Time       `json:"createdAt" yaml:"createdAt"`
}
