package images

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"
)

const (
	defaultGeminiBaseURL = "https://generativelanguage.googleapis.com"
	defaultImageModel    = "gemini-2.0-flash-preview-image-generation"
)

const imagePrompt = `Generate a realistic, appetizing photo of "%s", plated and shot from above in natural light. No text or labels.`

// Generated asks a Gemini image model to draw the dish and publishes the
// result.
type Generated struct {
	APIKey    string
	Model     string
	BaseURL   string
	publisher Publisher
	httpc     *http.Client
}

func NewGenerated(apiKey, model string, publisher Publisher) *Generated {
	if model == "" {
		model = defaultImageModel
	}
	return &Generated{
		APIKey:    apiKey,
		Model:     model,
		BaseURL:   defaultGeminiBaseURL,
		publisher: publisher,
		httpc:     &http.Client{Timeout: 60 * time.Second},
	}
}

func (g *Generated) Resolve(ctx context.Context, name string) (string, bool) {
	if g.APIKey == "" || strings.TrimSpace(name) == "" {
		return "", false
	}
	data, mimeType, err := g.generate(ctx, name)
	if err != nil {
		slog.Debug("Image generation failed", "name", name, "err", err)
		return "", false
	}
	url, err := g.publisher.Publish(ctx, name, data, mimeType)
	if err != nil {
		slog.Warn("Failed to publish generated image", "name", name, "err", err)
		return "", false
	}
	return url, true
}

func (g *Generated) generate(ctx context.Context, name string) ([]byte, string, error) {
	body := map[string]any{
		"contents": []any{
			map[string]any{
				"parts": []any{
					map[string]any{"text": fmt.Sprintf(imagePrompt, name)},
				},
			},
		},
		"generationConfig": map[string]any{
			"responseModalities": []string{"TEXT", "IMAGE"},
		},
	}
	payload, err := json.Marshal(body)
	if err != nil {
		return nil, "", fmt.Errorf("failed to marshal request body: %w", err)
	}

	url := fmt.Sprintf("%s/v1beta/models/%s:generateContent", strings.TrimRight(g.BaseURL, "/"), g.Model)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(payload))
	if err != nil {
		return nil, "", err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("x-goog-api-key", g.APIKey)

	resp, err := g.httpc.Do(req)
	if err != nil {
		return nil, "", err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		x, _ := io.ReadAll(resp.Body)
		return nil, "", fmt.Errorf("gemini %d: %s", resp.StatusCode, string(x))
	}

	var out struct {
		Candidates []struct {
			Content struct {
				Parts []struct {
					Text       string `json:"text"`
					InlineData *struct {
						MimeType string `json:"mimeType"`
						Data     string `json:"data"`
					} `json:"inlineData"`
				} `json:"parts"`
			} `json:"content"`
		} `json:"candidates"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return nil, "", fmt.Errorf("failed to decode response body: %w", err)
	}

	for _, c := range out.Candidates {
		for _, part := range c.Content.Parts {
			if part.InlineData == nil || part.InlineData.Data == "" {
				continue
			}
			data, err := base64.StdEncoding.DecodeString(part.InlineData.Data)
			if err != nil {
				return nil, "", fmt.Errorf("failed to decode image: %w", err)
			}
			mimeType := part.InlineData.MimeType
			if mimeType == "" {
				mimeType = http.DetectContentType(data)
			}
			return data, mimeType, nil
		}
	}
	return nil, "", fmt.Errorf("no image in response")
}
