package ml

import (
	"fmt"
	"log/slog"
	"os"
	"strings"

	"github.com/franckalain/nutrisnap/internal/config"
)

// BaseConfig holds settings shared by every backend
type BaseConfig struct {
	Model       string
	Temperature float64
}

func baseFrom(cfg config.MLConfig) BaseConfig {
	return BaseConfig{Model: strings.TrimSpace(cfg.Model), Temperature: cfg.Temperature}
}

// GoogleConfig holds configuration for the Vertex AI backend
type GoogleConfig struct {
	BaseConfig
	ProjectID       string
	Location        string
	CredentialsFile string
}

// Load fills missing values from the environment and checks the result
func (c *GoogleConfig) Load() error {
	if c.ProjectID == "" {
		c.ProjectID = os.Getenv("GOOGLE_PROJECT_ID")
	}
	if c.Location == "" {
		c.Location = os.Getenv("GOOGLE_LOCATION")
	}
	if c.CredentialsFile == "" {
		c.CredentialsFile = os.Getenv("GOOGLE_CREDENTIALS_FILE")
	}
	if c.ProjectID == "" {
		return fmt.Errorf("GOOGLE_PROJECT_ID is not set")
	}
	if c.CredentialsFile == "" {
		slog.Debug("No credentials file for Vertex AI, using application default credentials")
	}
	return nil
}

// GeminiConfig holds configuration for the Gemini API backend
type GeminiConfig struct {
	BaseConfig
	APIKey string
}

func (c *GeminiConfig) Load() error {
	if c.APIKey == "" {
		c.APIKey = os.Getenv("GEMINI_API_KEY")
	}
	if c.APIKey == "" {
		return fmt.Errorf("GEMINI_API_KEY environment variable not set")
	}
	return nil
}

// LocalConfig holds configuration for a local Ollama server
type LocalConfig struct {
	BaseConfig
	URL string
}

func (c *LocalConfig) Load() error {
	if c.URL == "" {
		c.URL = os.Getenv("OLLAMA_URL")
	}
	if c.URL == "" {
		c.URL = "http://localhost:11434"
	}
	c.URL = strings.TrimRight(c.URL, "/")
	if c.Model == "" {
		return fmt.Errorf("no model configured for local backend")
	}
	return nil
}
