package ml

import (
	"context"
	"fmt"
	"strings"

	"github.com/franckalain/nutrisnap/internal/models"
	"github.com/google/generative-ai-go/genai"
	"google.golang.org/api/option"
)

// GeminiModel implements the Model interface for the Gemini API
type GeminiModel struct {
	engine
	config GeminiConfig
	client *genai.Client
}

// GeminiModelFactory implements ModelFactory for Gemini API models
type GeminiModelFactory struct {
	config GeminiConfig
}

func NewGeminiModelFactory(config GeminiConfig) *GeminiModelFactory {
	return &GeminiModelFactory{config: config}
}

func (f *GeminiModelFactory) CreateModel() (Model, error) {
	return &GeminiModel{config: f.config}, nil
}

// Load creates the API client
func (m *GeminiModel) Load(ctx context.Context) error {
	client, err := genai.NewClient(ctx, option.WithAPIKey(m.config.APIKey))
	if err != nil {
		return fmt.Errorf("failed to create new gemini client: %w", err)
	}
	m.client = client
	m.engine = engine{name: "gemini", generate: m.generate}
	return nil
}

func (m *GeminiModel) Close() error {
	if m.client == nil {
		return nil
	}
	return m.client.Close()
}

func (m *GeminiModel) generate(ctx context.Context, prompt string, image *models.ImagePayload) (string, error) {
	model := m.client.GenerativeModel(m.config.Model)
	model.SetTemperature(float32(m.config.Temperature))
	model.ResponseMIMEType = "application/json"

	parts := []genai.Part{genai.Text(prompt)}
	if image != nil {
		parts = append(parts, genai.ImageData(imageFormat(image.MIMEType), image.Data))
	}

	resp, err := model.GenerateContent(ctx, parts...)
	if err != nil {
		return "", fmt.Errorf("failed to generate content: %w", err)
	}
	if len(resp.Candidates) == 0 {
		return "", fmt.Errorf("no candidates returned from Gemini")
	}

	candidate := resp.Candidates[0]
	if candidate.Content == nil || len(candidate.Content.Parts) == 0 {
		return "", fmt.Errorf("empty content returned from Gemini")
	}

	var sb strings.Builder
	for _, part := range candidate.Content.Parts {
		if txt, ok := part.(genai.Text); ok {
			sb.WriteString(string(txt))
		}
	}
	if sb.Len() == 0 {
		return "", fmt.Errorf("unexpected response format from Gemini")
	}
	return sb.String(), nil
}

// imageFormat turns "image/png" into the "png" form genai.ImageData expects.
func imageFormat(mimeType string) string {
	format := strings.TrimPrefix(strings.ToLower(strings.TrimSpace(mimeType)), "image/")
	if format == "" || strings.Contains(format, "/") {
		return "jpeg"
	}
	return format
}
