package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func clearEnv(t *testing.T) {
	t.Helper()
	for _, k := range []string{
		"PORT", "NUTRISNAP_DB", "ML_TYPE", "GEMINI_MODEL", "GEMINI_API_KEY",
		"GOOGLE_PROJECT_ID", "GOOGLE_LOCATION", "GOOGLE_CREDENTIALS_FILE",
		"OLLAMA_URL", "OLLAMA_MODEL", "IMAGE_STRATEGY", "UNSPLASH_ACCESS_KEY",
		"S3_BUCKET", "AWS_REGION", "S3_REGION", "S3_PUBLIC_URL", "IMAGE_CONCURRENCY",
	} {
		t.Setenv(k, "")
	}
}

func TestLoadConfigMissingFileUsesDefaults(t *testing.T) {
	clearEnv(t)

	cfg, err := LoadConfig(filepath.Join(t.TempDir(), "missing.json"))
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if cfg.Server.Port != "8080" {
		t.Errorf("Expected port 8080, got %s", cfg.Server.Port)
	}
	if cfg.ML.Type != ModelGemini {
		t.Errorf("Expected ml type %s, got %s", ModelGemini, cfg.ML.Type)
	}
	if cfg.Images.Strategy != ImagesPlaceholder {
		t.Errorf("Expected image strategy %s, got %s", ImagesPlaceholder, cfg.Images.Strategy)
	}
	if cfg.Server.RequestTimeout.Duration != 2*time.Minute {
		t.Errorf("Expected 2m timeout, got %s", cfg.Server.RequestTimeout)
	}
}

func TestLoadConfigFileAndEnv(t *testing.T) {
	clearEnv(t)

	path := filepath.Join(t.TempDir(), "config.json")
	body := `{
		"server": {"port": "9000", "request_timeout": "30s"},
		"ml": {"type": "local", "model": "llava:7b"},
		"images": {"strategy": "unsplash", "concurrency": 2},
		"database": {"image_cache_ttl": 3600}
	}`
	if err := os.WriteFile(path, []byte(body), 0644); err != nil {
		t.Fatal(err)
	}
	t.Setenv("UNSPLASH_ACCESS_KEY", "key-123")
	t.Setenv("PORT", "7000")

	cfg, err := LoadConfig(path)
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if cfg.Server.Port != "7000" {
		t.Errorf("Expected env port 7000, got %s", cfg.Server.Port)
	}
	if cfg.Server.RequestTimeout.Duration != 30*time.Second {
		t.Errorf("Expected 30s timeout, got %s", cfg.Server.RequestTimeout)
	}
	if cfg.Database.ImageCacheTTL.Duration != time.Hour {
		t.Errorf("Expected 1h cache ttl, got %s", cfg.Database.ImageCacheTTL)
	}
	if cfg.ML.Model != "llava:7b" {
		t.Errorf("Expected model llava:7b, got %s", cfg.ML.Model)
	}
	if cfg.Images.UnsplashAccessKey != "key-123" {
		t.Errorf("Expected unsplash key from env, got %q", cfg.Images.UnsplashAccessKey)
	}
	if cfg.Images.Concurrency != 2 {
		t.Errorf("Expected concurrency 2, got %d", cfg.Images.Concurrency)
	}
}

func TestLoadConfigRejectsUnknownValues(t *testing.T) {
	clearEnv(t)

	tests := []struct {
		name string
		body string
	}{
		{name: "model type", body: `{"ml": {"type": "mystery"}}`},
		{name: "image strategy", body: `{"images": {"strategy": "crayons"}}`},
		{name: "bad json", body: `{"server": `},
		{name: "bad duration", body: `{"server": {"request_timeout": "soon"}}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), "config.json")
			if err := os.WriteFile(path, []byte(tt.body), 0644); err != nil {
				t.Fatal(err)
			}
			if _, err := LoadConfig(path); err == nil {
				t.Error("Expected error, got nil")
			}
		})
	}
}
