package cli

import (
	"bytes"
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/franckalain/nutrisnap/internal/config"
	"github.com/franckalain/nutrisnap/internal/models"
	"github.com/franckalain/nutrisnap/internal/nutrition"
	"github.com/franckalain/nutrisnap/internal/report"
	"gopkg.in/yaml.v3"
)

var jpegBytes = []byte{0xff, 0xd8, 0xff, 0xe0, 0x00, 0x10, 'J', 'F', 'I', 'F'}

// fakePerformer fails any image whose bytes spell "blurry".
type fakePerformer struct {
	mu    sync.Mutex
	mimes []string
}

func (f *fakePerformer) Perform(_ context.Context, image models.ImagePayload) (*models.FullAnalysisResult, error) {
	f.mu.Lock()
	f.mimes = append(f.mimes, image.MIMEType)
	f.mu.Unlock()

	if string(image.Data) == "blurry" {
		return nil, &nutrition.ParseError{Text: "Looks tasty!"}
	}
	return &models.FullAnalysisResult{
		ID:              "r1",
		Analysis:        models.DishAnalysis{DishIdentification: "Poha", EstimatedNutritionalContent: "Calories: 250"},
		ParsedNutrition: models.ParsedNutrition{Calories: 250},
		Rating:          models.HealthRating{HealthScore: 7, Explanation: "Light"},
		Alternatives: models.Alternatives{
			CookedAlternatives: []models.Alternative{{Name: "Oats Poha", ImageURL: "https://picsum.photos/seed/1/400/400"}},
		},
	}, nil
}

func useFakePipeline(t *testing.T) *fakePerformer {
	t.Helper()
	perf := &fakePerformer{}
	orig := newPipeline
	newPipeline = func(context.Context, *config.Config) (*pipeline, error) {
		return &pipeline{Performer: perf}, nil
	}
	t.Cleanup(func() { newPipeline = orig })
	return perf
}

func run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	cmd := NewRootCmd()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&bytes.Buffer{})
	cmd.SetArgs(append(args, "--config", filepath.Join(t.TempDir(), "missing.json")))
	err := cmd.ExecuteContext(context.Background())
	return out.String(), err
}

func writeFile(t *testing.T, path string, data []byte) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		t.Fatal(err)
	}
}

func TestAnalyzeCommandJSON(t *testing.T) {
	perf := useFakePipeline(t)
	img := filepath.Join(t.TempDir(), "lunch.png")
	writeFile(t, img, jpegBytes)

	out, err := run(t, "analyze", img)
	if err != nil {
		t.Fatalf("analyze failed: %v", err)
	}

	var result models.FullAnalysisResult
	if err := json.Unmarshal([]byte(out), &result); err != nil {
		t.Fatalf("output is not JSON: %v\n%s", err, out)
	}
	if result.Analysis.DishIdentification != "Poha" || result.Rating.HealthScore != 7 {
		t.Errorf("unexpected result %+v", result)
	}
	if len(perf.mimes) != 1 || perf.mimes[0] != "image/png" {
		t.Errorf("declared MIME types = %v", perf.mimes)
	}
}

func TestAnalyzeCommandYAML(t *testing.T) {
	useFakePipeline(t)
	img := filepath.Join(t.TempDir(), "lunch.jpg")
	writeFile(t, img, jpegBytes)

	out, err := run(t, "analyze", img, "--format", "yaml")
	if err != nil {
		t.Fatalf("analyze failed: %v", err)
	}

	var doc map[string]any
	if err := yaml.Unmarshal([]byte(out), &doc); err != nil {
		t.Fatalf("output is not YAML: %v\n%s", err, out)
	}
	analysis, _ := doc["analysis"].(map[string]any)
	if analysis["dishIdentification"] != "Poha" {
		t.Errorf("unexpected YAML:\n%s", out)
	}
}

func TestAnalyzeCommandErrors(t *testing.T) {
	useFakePipeline(t)
	dir := t.TempDir()
	blurry := filepath.Join(dir, "blurry.jpg")
	writeFile(t, blurry, []byte("blurry"))

	if _, err := run(t, "analyze", blurry); err == nil || !strings.Contains(err.Error(), "parse error") {
		t.Errorf("expected parse error, got %v", err)
	}
	if _, err := run(t, "analyze", filepath.Join(dir, "nope.jpg")); err == nil {
		t.Error("expected error for missing file")
	}
	if _, err := run(t, "analyze", blurry, "--format", "xml"); err == nil {
		t.Error("expected error for unknown format")
	}
}

func TestBatchCommand(t *testing.T) {
	useFakePipeline(t)
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "a.jpg"), jpegBytes)
	writeFile(t, filepath.Join(dir, "nested", "b.PNG"), jpegBytes)
	writeFile(t, filepath.Join(dir, "c.jpeg"), []byte("blurry"))
	writeFile(t, filepath.Join(dir, "notes.txt"), []byte("not an image"))

	out := filepath.Join(t.TempDir(), "results.parquet")
	stdout, err := run(t, "batch", dir, "--out", out, "--concurrency", "3")
	if err != nil {
		t.Fatalf("batch failed: %v", err)
	}
	if !strings.Contains(stdout, "2 analysed, 1 failed (parse=1)") {
		t.Errorf("unexpected summary %q", stdout)
	}

	rows, err := report.Read(out)
	if err != nil {
		t.Fatalf("failed to read report: %v", err)
	}
	if len(rows) != 3 {
		t.Fatalf("got %d rows, want 3", len(rows))
	}
	wantFiles := []string{
		filepath.Join(dir, "a.jpg"),
		filepath.Join(dir, "c.jpeg"),
		filepath.Join(dir, "nested", "b.PNG"),
	}
	for i, want := range wantFiles {
		if rows[i].File != want {
			t.Errorf("row %d file = %q, want %q", i, rows[i].File, want)
		}
	}
	if rows[0].Dish != "Poha" || rows[1].ErrorKind != "parse" {
		t.Errorf("unexpected rows %+v", rows)
	}
}

func TestBatchCommandEmptyDir(t *testing.T) {
	useFakePipeline(t)
	if _, err := run(t, "batch", t.TempDir()); err == nil {
		t.Error("expected error for a directory without images")
	}
}

func TestRunBatchAppliesTimeout(t *testing.T) {
	dir := t.TempDir()
	img := filepath.Join(dir, "a.jpg")
	writeFile(t, img, jpegBytes)

	perf := performerFunc(func(ctx context.Context, _ models.ImagePayload) (*models.FullAnalysisResult, error) {
		if _, ok := ctx.Deadline(); !ok {
			t.Error("expected a deadline")
		}
		return &models.FullAnalysisResult{}, nil
	})
	rows := runBatch(context.Background(), perf, []string{img, filepath.Join(dir, "missing.jpg")}, 0, time.Minute)
	if rows[0].Error != "" {
		t.Errorf("unexpected error %q", rows[0].Error)
	}
	if rows[1].Error == "" || rows[1].ErrorKind != "internal" {
		t.Errorf("missing file should be recorded as a failure, got %+v", rows[1])
	}
}

type performerFunc func(context.Context, models.ImagePayload) (*models.FullAnalysisResult, error)

func (f performerFunc) Perform(ctx context.Context, image models.ImagePayload) (*models.FullAnalysisResult, error) {
	return f(ctx, image)
}
