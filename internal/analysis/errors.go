package analysis

import (
	"errors"
	"fmt"

	"github.com/franckalain/nutrisnap/internal/nutrition"
)

// Stages named in errors and logs.
const (
	StageAnalyze      = "analyze"
	StageRating       = "rating"
	StageAlternatives = "alternatives"
)

var errNoResult = errors.New("no result returned")

// InputError means the caller sent no usable image.
type InputError struct {
	Msg string
}

func (e *InputError) Error() string {
	return "invalid input: " + e.Msg
}

// AnalysisError means the dish could not be identified from the photo.
type AnalysisError struct {
	Msg string
	Err error
}

func (e *AnalysisError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("image analysis failed: %s: %v", e.Msg, e.Err)
	}
	return "image analysis failed: " + e.Msg
}

func (e *AnalysisError) Unwrap() error { return e.Err }

// AggregationError means the rating or alternatives stage produced nothing.
type AggregationError struct {
	Stage string
	Err   error
}

func (e *AggregationError) Error() string {
	return fmt.Sprintf("%s stage failed: %v", e.Stage, e.Err)
}

func (e *AggregationError) Unwrap() error { return e.Err }

// TimeoutError means the request deadline passed or the caller went away
// while Stage was in flight.
type TimeoutError struct {
	Stage string
	Err   error
}

func (e *TimeoutError) Error() string {
	return fmt.Sprintf("analysis timed out during %s: %v", e.Stage, e.Err)
}

func (e *TimeoutError) Unwrap() error { return e.Err }

// Kind names the class of a pipeline error for transports and reports.
func Kind(err error) string {
	var (
		inputErr    *InputError
		analysisErr *AnalysisError
		parseErr    *nutrition.ParseError
		aggErr      *AggregationError
		timeoutErr  *TimeoutError
	)
	switch {
	case err == nil:
		return ""
	case errors.As(err, &inputErr):
		return "input"
	case errors.As(err, &timeoutErr):
		return "timeout"
	case errors.As(err, &analysisErr):
		return "analysis"
	case errors.As(err, &parseErr):
		return "parse"
	case errors.As(err, &aggErr):
		return "aggregation"
	default:
		return "internal"
	}
}
