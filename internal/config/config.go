package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"
)

// Supported values for ml.type
const (
	ModelGoogle = "google"
	ModelGemini = "gemini"
	ModelLocal  = "local"
)

// Supported values for images.strategy
const (
	ImagesPlaceholder = "placeholder"
	ImagesUnsplash    = "unsplash"
	ImagesGenerate    = "generate"
)

// Config holds all application configuration
type Config struct {
	Server   ServerConfig   `json:"server"`
	Database DatabaseConfig `json:"database"`
	ML       MLConfig       `json:"ml"`
	Images   ImagesConfig   `json:"images"`
}

type ServerConfig struct {
	Port           string   `json:"port"`
	StaticDir      string   `json:"static_dir"`
	Debug          bool     `json:"debug"`
	RequestTimeout Duration `json:"request_timeout"`
	MaxUploadMB    int      `json:"max_upload_mb"`
}

type DatabaseConfig struct {
	Path          string   `json:"path"`
	ImageCacheTTL Duration `json:"image_cache_ttl"`
}

// MLConfig selects and configures the generative model backend.
type MLConfig struct {
	Type        string  `json:"type"` // "google", "gemini" or "local"
	Model       string  `json:"model"`
	ImageModel  string  `json:"image_model"`
	Temperature float64 `json:"temperature"`

	// google (Vertex AI)
	ProjectID       string `json:"project_id"`
	Location        string `json:"location"`
	CredentialsFile string `json:"credentials_file"`

	// gemini (API key); also used for image generation
	APIKey string `json:"api_key"`

	// local (Ollama)
	OllamaURL string `json:"ollama_url"`
}

// ImagesConfig controls how alternatives without a picture get one.
type ImagesConfig struct {
	Strategy           string `json:"strategy"` // "placeholder", "unsplash" or "generate"
	PlaceholderBaseURL string `json:"placeholder_base_url"`
	UnsplashAccessKey  string `json:"unsplash_access_key"`
	UnsplashBaseURL    string `json:"unsplash_base_url"`
	S3Bucket           string `json:"s3_bucket"`
	S3Region           string `json:"s3_region"`
	S3PublicURL        string `json:"s3_public_url"`
	Concurrency        int    `json:"concurrency"`
}

// Duration is a time.Duration that reads "90s"-style strings or plain seconds from JSON.
type Duration struct {
	time.Duration
}

func (d *Duration) UnmarshalJSON(b []byte) error {
	var s string
	if err := json.Unmarshal(b, &s); err == nil {
		v, err := time.ParseDuration(s)
		if err != nil {
			return fmt.Errorf("invalid duration %q: %w", s, err)
		}
		d.Duration = v
		return nil
	}
	var secs float64
	if err := json.Unmarshal(b, &secs); err != nil {
		return fmt.Errorf("invalid duration %s", string(b))
	}
	d.Duration = time.Duration(secs * float64(time.Second))
	return nil
}

func (d Duration) MarshalJSON() ([]byte, error) {
	return json.Marshal(d.String())
}

// LoadConfig loads configuration from a JSON file, then applies environment
// overrides and defaults. A missing file is not an error.
func LoadConfig(configPath string) (*Config, error) {
	var config Config

	data, err := os.ReadFile(configPath)
	switch {
	case err == nil:
		if err := json.Unmarshal(data, &config); err != nil {
			return nil, fmt.Errorf("failed to parse config file: %w", err)
		}
	case errors.Is(err, os.ErrNotExist):
		// env and defaults only
	default:
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	config.applyEnv()
	config.applyDefaults()

	if err := config.Validate(); err != nil {
		return nil, err
	}
	return &config, nil
}

func (c *Config) applyEnv() {
	setFromEnv(&c.Server.Port, "PORT")
	setFromEnv(&c.Database.Path, "NUTRISNAP_DB")

	setFromEnv(&c.ML.Type, "ML_TYPE")
	setFromEnv(&c.ML.APIKey, "GEMINI_API_KEY")
	setFromEnv(&c.ML.ProjectID, "GOOGLE_PROJECT_ID")
	setFromEnv(&c.ML.Location, "GOOGLE_LOCATION")
	setFromEnv(&c.ML.CredentialsFile, "GOOGLE_CREDENTIALS_FILE")
	setFromEnv(&c.ML.OllamaURL, "OLLAMA_URL")
	if c.ML.Type == ModelLocal {
		setFromEnv(&c.ML.Model, "OLLAMA_MODEL")
	} else {
		setFromEnv(&c.ML.Model, "GEMINI_MODEL")
	}

	setFromEnv(&c.Images.Strategy, "IMAGE_STRATEGY")
	setFromEnv(&c.Images.UnsplashAccessKey, "UNSPLASH_ACCESS_KEY")
	setFromEnv(&c.Images.S3Bucket, "S3_BUCKET")
	setFromEnv(&c.Images.S3Region, "AWS_REGION")
	setFromEnv(&c.Images.S3Region, "S3_REGION")
	setFromEnv(&c.Images.S3PublicURL, "S3_PUBLIC_URL")
	if v := os.Getenv("IMAGE_CONCURRENCY"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			c.Images.Concurrency = n
		}
	}
}

func (c *Config) applyDefaults() {
	if c.Server.Port == "" {
		c.Server.Port = "8080"
	}
	if c.Server.StaticDir == "" {
		c.Server.StaticDir = "./static"
	}
	if c.Server.RequestTimeout.Duration == 0 {
		c.Server.RequestTimeout.Duration = 2 * time.Minute
	}
	if c.Server.MaxUploadMB == 0 {
		c.Server.MaxUploadMB = 10
	}
	if c.Database.Path == "" {
		c.Database.Path = "nutrisnap.db"
	}
	if c.Database.ImageCacheTTL.Duration == 0 {
		c.Database.ImageCacheTTL.Duration = 7 * 24 * time.Hour
	}

	if c.ML.Type == "" {
		c.ML.Type = ModelGemini
	}
	if c.ML.Model == "" {
		switch c.ML.Type {
		case ModelLocal:
			c.ML.Model = "llava:13b"
		default:
			c.ML.Model = "gemini-2.0-flash"
		}
	}
	if c.ML.ImageModel == "" {
		c.ML.ImageModel = "gemini-2.0-flash-preview-image-generation"
	}
	if c.ML.Temperature == 0 {
		c.ML.Temperature = 0.2
	}
	if c.ML.Location == "" {
		c.ML.Location = "us-central1"
	}
	if c.ML.OllamaURL == "" {
		c.ML.OllamaURL = "http://localhost:11434"
	}

	if c.Images.Strategy == "" {
		c.Images.Strategy = ImagesPlaceholder
	}
	if c.Images.PlaceholderBaseURL == "" {
		c.Images.PlaceholderBaseURL = "https://picsum.photos"
	}
	if c.Images.UnsplashBaseURL == "" {
		c.Images.UnsplashBaseURL = "https://api.unsplash.com"
	}
	if c.Images.Concurrency <= 0 {
		c.Images.Concurrency = 4
	}
}

// Validate checks values that have no sensible fallback.
func (c *Config) Validate() error {
	if strings.TrimSpace(c.Server.Port) == "" {
		return fmt.Errorf("server port is not set")
	}
	switch c.ML.Type {
	case ModelGoogle, ModelGemini, ModelLocal:
	default:
		return fmt.Errorf("unsupported model type: %s", c.ML.Type)
	}
	switch c.Images.Strategy {
	case ImagesPlaceholder, ImagesUnsplash, ImagesGenerate:
	default:
		return fmt.Errorf("unsupported image strategy: %s", c.Images.Strategy)
	}
	return nil
}

// GetConfigPath returns the path to the configuration file
func GetConfigPath() string {
	// First try environment variable
	if path := os.Getenv("NUTRISNAP_CONFIG"); path != "" {
		return path
	}

	// Then try config directory
	configDir := "config"
	if _, err := os.Stat(configDir); err == nil {
		return filepath.Join(configDir, "config.json")
	}

	// Finally, try current directory
	return "config.json"
}

func setFromEnv(dst *string, key string) {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		*dst = v
	}
}
