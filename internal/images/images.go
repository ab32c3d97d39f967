// Package images finds a picture for every suggested alternative. Lookups go
// through an ordered list of strategies that always ends in a deterministic
// placeholder, so resolution never fails.
package images

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/franckalain/nutrisnap/internal/config"
	"github.com/franckalain/nutrisnap/internal/models"
	"golang.org/x/sync/errgroup"
)

// Strategy produces an image URL for a food name. ok is false when the
// strategy has nothing to offer and the next one should be tried.
type Strategy interface {
	Resolve(ctx context.Context, name string) (url string, ok bool)
}

// Chain tries each strategy in order and falls back to the placeholder.
type Chain struct {
	strategies []Strategy
	fallback   Placeholder
}

func NewChain(fallback Placeholder, strategies ...Strategy) Chain {
	return Chain{strategies: strategies, fallback: fallback}
}

// Resolve always returns a non-empty URL.
func (c Chain) Resolve(ctx context.Context, name string) string {
	for _, s := range c.strategies {
		if ctx.Err() != nil {
			break
		}
		if url, ok := s.Resolve(ctx, name); ok && url != "" {
			return url
		}
	}
	return c.fallback.URL(name)
}

// Resolver fills in missing images on a set of alternatives.
type Resolver struct {
	chain       Chain
	concurrency int
}

func NewResolver(chain Chain, concurrency int) *Resolver {
	if concurrency < 1 {
		concurrency = 1
	}
	return &Resolver{chain: chain, concurrency: concurrency}
}

// Fill resolves an image for every alternative that has none. It never fails;
// alternatives that already carry a URL are left untouched.
func (r *Resolver) Fill(ctx context.Context, alts *models.Alternatives) {
	if alts == nil {
		return
	}
	start := time.Now()

	var g errgroup.Group
	g.SetLimit(r.concurrency)
	filled := 0
	for _, item := range alts.Items() {
		if item.ImageURL != "" {
			continue
		}
		filled++
		g.Go(func() error {
			item.ImageURL = r.chain.Resolve(ctx, item.Name)
			return nil
		})
	}
	g.Wait()

	if filled > 0 {
		slog.Debug("Resolved alternative images", "count", filled, "duration", time.Since(start))
	}
}

// Cache stores resolved URLs between runs.
type Cache interface {
	GetImage(ctx context.Context, key string, maxAge time.Duration) (string, bool, error)
	PutImage(ctx context.Context, key, url string) error
}

// NewFromConfig builds the resolver selected by images.strategy. cache may be
// nil, in which case lookups are not memoized.
func NewFromConfig(ctx context.Context, cfg config.Config, cache Cache) (*Resolver, error) {
	placeholder := Placeholder{BaseURL: cfg.Images.PlaceholderBaseURL}

	var strategy Strategy
	switch cfg.Images.Strategy {
	case config.ImagesPlaceholder, "":
	case config.ImagesUnsplash:
		if cfg.Images.UnsplashAccessKey == "" {
			slog.Warn("UNSPLASH_ACCESS_KEY is not set, alternative images will use placeholders")
		}
		strategy = NewUnsplash(cfg.Images.UnsplashBaseURL, cfg.Images.UnsplashAccessKey)
	case config.ImagesGenerate:
		if cfg.ML.APIKey == "" {
			slog.Warn("GEMINI_API_KEY is not set, alternative images will use placeholders")
		}
		var publisher Publisher = DataURIPublisher{}
		if cfg.Images.S3Bucket != "" {
			p, err := NewS3Publisher(ctx, cfg.Images.S3Region, cfg.Images.S3Bucket, cfg.Images.S3PublicURL)
			if err != nil {
				return nil, fmt.Errorf("failed to create S3 publisher: %w", err)
			}
			publisher = p
		}
		strategy = NewGenerated(cfg.ML.APIKey, cfg.ML.ImageModel, publisher)
	default:
		return nil, fmt.Errorf("unsupported image strategy: %s", cfg.Images.Strategy)
	}

	if strategy == nil {
		return NewResolver(NewChain(placeholder), cfg.Images.Concurrency), nil
	}
	if cache != nil {
		strategy = NewCached(cfg.Images.Strategy, strategy, cache, cfg.Database.ImageCacheTTL.Duration)
	}
	return NewResolver(NewChain(placeholder, strategy), cfg.Images.Concurrency), nil
}
