package images

import (
	"context"
	"fmt"
	"strings"
	"unicode/utf16"
)

const defaultPlaceholderBaseURL = "https://picsum.photos"

// Placeholder derives a stable stock-image URL from the name alone.
type Placeholder struct {
	BaseURL string
}

// Seed sums the UTF-16 code units of name.
func Seed(name string) int {
	seed := 0
	for _, u := range utf16.Encode([]rune(name)) {
		seed += int(u)
	}
	return seed
}

func (p Placeholder) URL(name string) string {
	base := strings.TrimRight(p.BaseURL, "/")
	if base == "" {
		base = defaultPlaceholderBaseURL
	}
	return fmt.Sprintf("%s/seed/%d/400/400", base, Seed(name))
}

func (p Placeholder) Resolve(_ context.Context, name string) (string, bool) {
	return p.URL(name), true
}
