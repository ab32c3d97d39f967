package ml

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/franckalain/nutrisnap/internal/models"
)

var errNotLoaded = errors.New("model not loaded")

// generateFunc sends one prompt, optionally with an image, and returns the
// raw text the model produced.
type generateFunc func(ctx context.Context, prompt string, image *models.ImagePayload) (string, error)

// engine implements the three capabilities on top of a backend's generate call.
type engine struct {
	name     string
	generate generateFunc
}

func (e engine) call(ctx context.Context, stage, prompt string, image *models.ImagePayload) (string, error) {
	if e.generate == nil {
		return "", errNotLoaded
	}
	start := time.Now()
	text, err := e.generate(ctx, prompt, image)
	if err != nil {
		return "", fmt.Errorf("%s %s: %w", e.name, stage, err)
	}
	slog.Debug("Model call finished", "backend", e.name, "stage", stage, "duration", time.Since(start), "length", len(text))
	return text, nil
}

// Analyze identifies the dish and its nutrition estimate from a photo
func (e engine) Analyze(ctx context.Context, image models.ImagePayload) (*models.DishAnalysis, error) {
	text, err := e.call(ctx, "analyze", analyzePrompt, &image)
	if err != nil {
		return nil, err
	}
	return decodeDishAnalysis(text)
}

// Rate asks the model for a health score
func (e engine) Rate(ctx context.Context, req models.RatingRequest) (*models.HealthRating, error) {
	text, err := e.call(ctx, "rate", buildRatePrompt(req), nil)
	if err != nil {
		return nil, err
	}
	return decodeHealthRating(text)
}

// Suggest asks the model for healthier alternatives
func (e engine) Suggest(ctx context.Context, dish string) (*models.Alternatives, error) {
	text, err := e.call(ctx, "suggest", buildSuggestPrompt(dish), nil)
	if err != nil {
		return nil, err
	}
	return decodeAlternatives(text)
}
