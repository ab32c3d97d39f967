package cli

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"mime"
	"os"
	"path/filepath"
	"strings"

	"github.com/franckalain/nutrisnap/internal/analysis"
	"github.com/franckalain/nutrisnap/internal/config"
	"github.com/franckalain/nutrisnap/internal/database"
	"github.com/franckalain/nutrisnap/internal/images"
	"github.com/franckalain/nutrisnap/internal/ml"
	"github.com/franckalain/nutrisnap/internal/models"
)

// pipeline is a ready-to-use analysis service plus whatever must be closed
// after it.
type pipeline struct {
	analysis.Performer
	closers []func() error
}

func (p *pipeline) Close() error {
	var errs []error
	for i := len(p.closers) - 1; i >= 0; i-- {
		errs = append(errs, p.closers[i]())
	}
	return errors.Join(errs...)
}

// newPipeline wires model, image cache and image resolver from cfg. Tests
// replace it to avoid calling real backends.
var newPipeline = func(ctx context.Context, cfg *config.Config) (*pipeline, error) {
	p := &pipeline{}

	model, err := ml.NewModel(cfg.ML)
	if err != nil {
		return nil, fmt.Errorf("failed to create ML model: %w", err)
	}
	if err := model.Load(ctx); err != nil {
		return nil, fmt.Errorf("failed to load ML model: %w", err)
	}
	p.closers = append(p.closers, model.Close)

	var cache images.Cache
	if cfg.Images.Strategy != config.ImagesPlaceholder && cfg.Database.Path != "" {
		db, err := database.NewSQLiteDB(cfg.Database.Path)
		if err != nil {
			p.Close()
			return nil, fmt.Errorf("failed to connect to database: %w", err)
		}
		p.closers = append(p.closers, db.Close)
		if n, err := db.PruneImages(ctx, cfg.Database.ImageCacheTTL.Duration); err != nil {
			slog.Warn("Failed to prune image cache", "err", err)
		} else if n > 0 {
			slog.Debug("Pruned image cache", "removed", n)
		}
		cache = db
	}

	resolver, err := images.NewFromConfig(ctx, *cfg, cache)
	if err != nil {
		p.Close()
		return nil, err
	}

	p.Performer = analysis.NewModelService(model, resolver)
	slog.Debug("Pipeline ready", "backend", cfg.ML.Type, "model", cfg.ML.Model, "images", cfg.Images.Strategy)
	return p, nil
}

var imageExtensions = map[string]bool{
	".jpg":  true,
	".jpeg": true,
	".png":  true,
	".webp": true,
	".gif":  true,
	".heic": true,
}

func readImageFile(path string) (models.ImagePayload, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return models.ImagePayload{}, fmt.Errorf("failed to read image: %w", err)
	}
	ext := strings.ToLower(filepath.Ext(path))
	declared := mime.TypeByExtension(ext)
	if ext == ".heic" {
		declared = "image/heic"
	}
	return models.NewImagePayload(data, declared), nil
}
