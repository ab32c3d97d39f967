package ml

import (
	"context"
	"fmt"

	"github.com/franckalain/nutrisnap/internal/config"
	"github.com/franckalain/nutrisnap/internal/models"
)

// Analyzer identifies the dish in a photo and estimates its nutrition as text
type Analyzer interface {
	Analyze(ctx context.Context, image models.ImagePayload) (*models.DishAnalysis, error)
}

// Rater scores how healthy a dish is from its parsed nutrition
type Rater interface {
	Rate(ctx context.Context, req models.RatingRequest) (*models.HealthRating, error)
}

// Suggester proposes healthier alternatives for a dish
type Suggester interface {
	Suggest(ctx context.Context, dish string) (*models.Alternatives, error)
}

// Model represents a generative model backend that can serve every stage
type Model interface {
	// Load initializes the model with its configuration
	Load(ctx context.Context) error
	// Close releases any client held by the model
	Close() error

	Analyzer
	Rater
	Suggester
}

// ModelFactory creates a new model instance based on configuration
type ModelFactory interface {
	// CreateModel creates a new model instance
	CreateModel() (Model, error)
}

// NewModel creates a new model instance based on the configured model type
func NewModel(cfg config.MLConfig) (Model, error) {
	var factory ModelFactory

	switch cfg.Type {
	case config.ModelGoogle:
		c := GoogleConfig{BaseConfig: baseFrom(cfg), ProjectID: cfg.ProjectID, Location: cfg.Location, CredentialsFile: cfg.CredentialsFile}
		if err := c.Load(); err != nil {
			return nil, fmt.Errorf("failed to load Google config: %w", err)
		}
		factory = NewGoogleModelFactory(c)
	case config.ModelGemini:
		c := GeminiConfig{BaseConfig: baseFrom(cfg), APIKey: cfg.APIKey}
		if err := c.Load(); err != nil {
			return nil, fmt.Errorf("failed to load Gemini config: %w", err)
		}
		factory = NewGeminiModelFactory(c)
	case config.ModelLocal:
		c := LocalConfig{BaseConfig: baseFrom(cfg), URL: cfg.OllamaURL}
		if err := c.Load(); err != nil {
			return nil, fmt.Errorf("failed to load local config: %w", err)
		}
		factory = NewLocalModelFactory(c)
	default:
		return nil, fmt.Errorf("unsupported model type: %s", cfg.Type)
	}
	return factory.CreateModel()
}
