// Package analysis runs the photo-to-result pipeline: identify the dish, parse
// its nutrition, then rate it and suggest alternatives side by side.
package analysis

import (
	"context"
	"errors"
	"log/slog"
	"math"
	"strings"
	"time"

	"github.com/franckalain/nutrisnap/internal/ml"
	"github.com/franckalain/nutrisnap/internal/models"
	"github.com/franckalain/nutrisnap/internal/nutrition"
	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"
)

// ImageFiller gives alternatives without a picture one. It must not fail.
type ImageFiller interface {
	Fill(ctx context.Context, alts *models.Alternatives)
}

// Performer is the single entry point transports depend on.
type Performer interface {
	Perform(ctx context.Context, image models.ImagePayload) (*models.FullAnalysisResult, error)
}

// Service wires the model capabilities into the pipeline
type Service struct {
	analyzer  ml.Analyzer
	rater     ml.Rater
	suggester ml.Suggester
	images    ImageFiller
	now       func() time.Time
}

// NewService creates a pipeline. images may be nil, in which case
// alternatives keep whatever URL the suggester gave them.
func NewService(analyzer ml.Analyzer, rater ml.Rater, suggester ml.Suggester, images ImageFiller) *Service {
	return &Service{
		analyzer:  analyzer,
		rater:     rater,
		suggester: suggester,
		images:    images,
		now:       time.Now,
	}
}

// NewModelService serves every stage from one model backend.
func NewModelService(model ml.Model, images ImageFiller) *Service {
	return NewService(model, model, model, images)
}

// Perform runs one analysis. Any stage failure aborts the whole request and
// no partial result is returned.
func (s *Service) Perform(ctx context.Context, image models.ImagePayload) (*models.FullAnalysisResult, error) {
	if image.Empty() {
		return nil, &InputError{Msg: "an image is required"}
	}

	id := uuid.NewString()
	logger := slog.With("analysis", id)
	start := time.Now()

	stageStart := time.Now()
	dish, err := s.analyzer.Analyze(ctx, image)
	if err != nil {
		if terr := timeoutError(ctx, StageAnalyze, err); terr != nil {
			return nil, terr
		}
		return nil, &AnalysisError{Msg: "the image analyzer failed", Err: err}
	}
	if dish == nil || strings.TrimSpace(dish.DishIdentification) == "" {
		return nil, &AnalysisError{Msg: "no dish could be identified in the image"}
	}
	if strings.TrimSpace(dish.EstimatedNutritionalContent) == "" {
		return nil, &AnalysisError{Msg: "no nutrition estimate was returned for " + dish.DishIdentification}
	}
	logger.Info("Dish identified", "dish", dish.DishIdentification, "duration", time.Since(stageStart))

	parsed, err := nutrition.Parse(dish.EstimatedNutritionalContent)
	if err != nil {
		logger.Warn("Failed to parse nutrition", "text", dish.EstimatedNutritionalContent)
		return nil, err
	}

	var (
		rating *models.HealthRating
		alts   *models.Alternatives
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		t := time.Now()
		r, err := s.rater.Rate(gctx, models.RatingRequest{FoodName: dish.DishIdentification, ParsedNutrition: parsed})
		if err != nil {
			return stageError(ctx, StageRating, err)
		}
		if r == nil {
			return &AggregationError{Stage: StageRating, Err: errNoResult}
		}
		logger.Debug("Rating finished", "score", r.HealthScore, "duration", time.Since(t))
		rating = r
		return nil
	})
	g.Go(func() error {
		t := time.Now()
		a, err := s.suggester.Suggest(gctx, dish.DishIdentification)
		if err != nil {
			return stageError(ctx, StageAlternatives, err)
		}
		if a == nil || a.Len() == 0 {
			return &AggregationError{Stage: StageAlternatives, Err: errNoResult}
		}
		if s.images != nil {
			s.images.Fill(gctx, a)
		}
		logger.Debug("Alternatives finished", "count", a.Len(), "duration", time.Since(t))
		alts = a
		return nil
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	reconcile(rating, parsed)

	logger.Info("Analysis complete", "dish", dish.DishIdentification, "score", rating.HealthScore, "duration", time.Since(start))
	return &models.FullAnalysisResult{
		ID:              id,
		Analysis:        *dish,
		ParsedNutrition: parsed,
		Rating:          *rating,
		Alternatives:    *alts,
		CreatedAt:       s.now(),
	}, nil
}

// reconcile keeps recalculatedCalories present exactly when the calorie
// figure contradicts the macronutrients, and the score within 1..10.
func reconcile(rating *models.HealthRating, parsed models.ParsedNutrition) {
	if nutrition.CaloriesContradict(parsed) {
		kcal := nutrition.MacroCalories(parsed)
		rating.RecalculatedCalories = &kcal
	} else {
		rating.RecalculatedCalories = nil
	}
	rating.HealthScore = math.Min(10, math.Max(1, rating.HealthScore))
}

func stageError(ctx context.Context, stage string, err error) error {
	if terr := timeoutError(ctx, stage, err); terr != nil {
		return terr
	}
	return &AggregationError{Stage: stage, Err: err}
}

// timeoutError classifies err as a timeout when the request context is done
// or the collaborator reported a deadline.
func timeoutError(ctx context.Context, stage string, err error) error {
	if ctxErr := ctx.Err(); ctxErr != nil {
		return &TimeoutError{Stage: stage, Err: ctxErr}
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return &TimeoutError{Stage: stage, Err: err}
	}
	return nil
}
