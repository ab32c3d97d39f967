package models

import (
	"encoding/base64"
	"fmt"
	"net/http"
	"strings"
)

// NewImagePayload picks the MIME type from the declared value, falling back
// to sniffing the bytes.
func NewImagePayload(data []byte, declared string) ImagePayload {
	mimeType := strings.TrimSpace(declared)
	if mimeType == "" || mimeType == "application/octet-stream" {
		mimeType = "image/jpeg"
		if len(data) > 0 {
			if sniffed := http.DetectContentType(data); strings.HasPrefix(sniffed, "image/") {
				mimeType = sniffed
			}
		}
	}
	return ImagePayload{Data: data, MIMEType: mimeType}
}

// DecodeImagePayload decodes plain base64 or a data:<mime>;base64,<payload> URI.
// An explicit mimeType wins over the one in the URI.
func DecodeImagePayload(s, mimeType string) (ImagePayload, error) {
	s = strings.TrimSpace(s)
	if strings.HasPrefix(s, "data:") {
		idx := strings.IndexByte(s, ',')
		if idx < 0 {
			return ImagePayload{}, fmt.Errorf("malformed data URI")
		}
		meta := s[len("data:"):idx]
		if !strings.HasSuffix(meta, ";base64") {
			return ImagePayload{}, fmt.Errorf("data URI is not base64 encoded")
		}
		if mimeType == "" {
			mimeType = strings.TrimSuffix(meta, ";base64")
		}
		s = s[idx+1:]
	}

	data, err := base64.StdEncoding.DecodeString(s)
	if err != nil {
		var err2 error
		if data, err2 = base64.RawStdEncoding.DecodeString(s); err2 != nil {
			return ImagePayload{}, fmt.Errorf("invalid base64 image: %w", err)
		}
	}
	return NewImagePayload(data, mimeType), nil
}
