// Package report stores batch analysis results as Parquet, one row per image.
package report

import (
	"fmt"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/franckalain/nutrisnap/internal/analysis"
	"github.com/franckalain/nutrisnap/internal/models"
	"github.com/parquet-go/parquet-go"
)

// Row is the flattened form of one analysis. Failed analyses keep the file
// name and error and leave the result columns empty.
type Row struct {
	File                 string   `parquet:"file"`
	ID                   string   `parquet:"id"`
	Dish                 string   `parquet:"dish"`
	NutritionText        string   `parquet:"nutrition_text"`
	Calories             float64  `parquet:"calories"`
	Protein              float64  `parquet:"protein"`
	Carbohydrates        float64  `parquet:"carbohydrates"`
	Sugar                float64  `parquet:"sugar"`
	Fat                  float64  `parquet:"fat"`
	HealthScore          float64  `parquet:"health_score"`
	Explanation          string   `parquet:"explanation"`
	RecalculatedCalories *float64 `parquet:"recalculated_calories,optional"`
	Alternatives         []string `parquet:"alternatives,list"`
	Error                string   `parquet:"error"`
	ErrorKind            string   `parquet:"error_kind"`
	DurationMS           int64    `parquet:"duration_ms"`
}

// NewRow flattens the outcome of analysing file.
func NewRow(file string, res *models.FullAnalysisResult, err error, took time.Duration) Row {
	row := Row{File: file, DurationMS: took.Milliseconds()}
	if err != nil {
		row.Error = err.Error()
		row.ErrorKind = analysis.Kind(err)
		return row
	}
	if res == nil {
		return row
	}

	row.ID = res.ID
	row.Dish = res.Analysis.DishIdentification
	row.NutritionText = res.Analysis.EstimatedNutritionalContent
	row.Calories = res.ParsedNutrition.Calories
	row.Protein = res.ParsedNutrition.Protein
	row.Carbohydrates = res.ParsedNutrition.Carbohydrates
	row.Sugar = res.ParsedNutrition.Sugar
	row.Fat = res.ParsedNutrition.Fat
	row.HealthScore = res.Rating.HealthScore
	row.Explanation = res.Rating.Explanation
	row.RecalculatedCalories = res.Rating.RecalculatedCalories
	for _, item := range res.Alternatives.Items() {
		row.Alternatives = append(row.Alternatives, item.Name)
	}
	row.Alternatives = append(row.Alternatives, res.Alternatives.Suggestions...)
	return row
}

// Write stores rows at path, replacing any existing file.
func Write(path string, rows []Row) error {
	if err := parquet.WriteFile(path, rows); err != nil {
		return fmt.Errorf("failed to write parquet: %w", err)
	}
	slog.Debug("Wrote report", "path", path, "rows", len(rows))
	return nil
}

// Read loads every row from a report written by Write.
func Read(path string) ([]Row, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open parquet file: %w", err)
	}
	defer file.Close()

	info, err := file.Stat()
	if err != nil {
		return nil, fmt.Errorf("failed to stat file: %w", err)
	}

	pf, err := parquet.OpenFile(file, info.Size())
	if err != nil {
		return nil, fmt.Errorf("failed to open parquet: %w", err)
	}

	reader := parquet.NewGenericReader[Row](pf)
	defer reader.Close()

	rows := make([]Row, 0, pf.NumRows())
	batch := make([]Row, 128)
	for {
		n, err := reader.Read(batch)
		rows = append(rows, batch[:n]...)
		if err != nil {
			break
		}
	}
	return rows, nil
}

// Summary is a one-line description of a batch for logs and the CLI.
func Summary(rows []Row) string {
	failed := 0
	kinds := map[string]int{}
	for _, r := range rows {
		if r.Error != "" {
			failed++
			kinds[r.ErrorKind]++
		}
	}
	if failed == 0 {
		return fmt.Sprintf("%d analysed, 0 failed", len(rows))
	}
	parts := make([]string, 0, len(kinds))
	for _, k := range []string{"input", "analysis", "parse", "aggregation", "timeout", "internal"} {
		if n := kinds[k]; n > 0 {
			parts = append(parts, fmt.Sprintf("%s=%d", k, n))
		}
	}
	return fmt.Sprintf("%d analysed, %d failed (%s)", len(rows)-failed, failed, strings.Join(parts, ", "))
}
