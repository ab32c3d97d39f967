package images

import (
	"context"
	"log/slog"
	"strings"
	"time"
)

// Cached memoizes successful lookups of another strategy. Cache failures are
// logged and otherwise ignored.
type Cached struct {
	label  string
	next   Strategy
	cache  Cache
	maxAge time.Duration
}

func NewCached(label string, next Strategy, cache Cache, maxAge time.Duration) *Cached {
	return &Cached{label: label, next: next, cache: cache, maxAge: maxAge}
}

func (c *Cached) key(name string) string {
	return c.label + ":" + strings.ToLower(strings.TrimSpace(name))
}

func (c *Cached) Resolve(ctx context.Context, name string) (string, bool) {
	key := c.key(name)

	url, found, err := c.cache.GetImage(ctx, key, c.maxAge)
	if err != nil {
		slog.Warn("Image cache lookup failed", "key", key, "err", err)
	} else if found {
		return url, true
	}

	url, ok := c.next.Resolve(ctx, name)
	if !ok {
		return "", false
	}
	if err := c.cache.PutImage(ctx, key, url); err != nil {
		slog.Warn("Failed to cache image", "key", key, "err", err)
	}
	return url, true
}
