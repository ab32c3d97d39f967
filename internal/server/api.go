package server

import (
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"strings"

	"github.com/franckalain/nutrisnap/internal/analysis"
	"github.com/franckalain/nutrisnap/internal/models"
)

type analyzeRequest struct {
	Image    string `json:"image"`
	MIMEType string `json:"mimeType"`
}

type errorResponse struct {
	Error string `json:"error"`
	Kind  string `json:"kind"`
}

func (s *Server) handleAnalyze(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, s.maxUpload)

	image, err := s.readImage(r)
	if err != nil {
		s.writeError(w, err)
		return
	}

	result, err := s.perform(r.Context(), image)
	if err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, result)
}

// readImage accepts either a multipart upload in the "image" or "file" field
// or a JSON body carrying base64 or a data URI.
func (s *Server) readImage(r *http.Request) (models.ImagePayload, error) {
	if strings.HasPrefix(r.Header.Get("Content-Type"), "application/json") {
		var req analyzeRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			return models.ImagePayload{}, bodyError(err, "invalid JSON body")
		}
		if strings.TrimSpace(req.Image) == "" {
			return models.ImagePayload{}, &analysis.InputError{Msg: "an image is required"}
		}
		image, err := models.DecodeImagePayload(req.Image, req.MIMEType)
		if err != nil {
			return models.ImagePayload{}, &analysis.InputError{Msg: err.Error()}
		}
		return image, nil
	}

	if err := r.ParseMultipartForm(s.maxUpload); err != nil {
		return models.ImagePayload{}, bodyError(err, "expected a multipart upload or JSON body")
	}
	file, header, err := r.FormFile("image")
	if err != nil {
		file, header, err = r.FormFile("file")
		if err != nil {
			return models.ImagePayload{}, &analysis.InputError{Msg: "an image is required"}
		}
	}
	defer file.Close()

	data, err := io.ReadAll(file)
	if err != nil {
		return models.ImagePayload{}, bodyError(err, "failed to read upload")
	}
	return models.NewImagePayload(data, header.Header.Get("Content-Type")), nil
}

func bodyError(err error, msg string) error {
	var maxErr *http.MaxBytesError
	if errors.As(err, &maxErr) {
		return &analysis.InputError{Msg: "image is too large"}
	}
	return &analysis.InputError{Msg: msg}
}

// statusFor maps pipeline errors onto HTTP statuses
func statusFor(err error) (int, string) {
	kind := analysis.Kind(err)
	switch kind {
	case "input":
		return http.StatusBadRequest, kind
	case "analysis", "parse":
		return http.StatusUnprocessableEntity, kind
	case "aggregation":
		return http.StatusBadGateway, kind
	case "timeout":
		return http.StatusGatewayTimeout, kind
	default:
		return http.StatusInternalServerError, kind
	}
}

func (s *Server) writeError(w http.ResponseWriter, err error) {
	status, kind := statusFor(err)
	if status >= http.StatusInternalServerError {
		slog.Error("Analysis failed", "kind", kind, "err", err)
	} else {
		slog.Warn("Analysis rejected", "kind", kind, "err", err)
	}
	writeJSON(w, status, errorResponse{Error: err.Error(), Kind: kind})
}

func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		slog.Error("Unable to encode JSON response", "err", err)
	}
}
