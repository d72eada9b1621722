// Package feed models the paginated photo feed.
package feed

import (
	"context"
	"time"
)

// Photo is one item of the feed.
type Photo struct {
	ID           string    `json:"id"`
	URL          string    `json:"url"`
	ThumbnailURL string    `json:"thumbnail_url"`
	Width        int       `json:"width"`
	Height       int       `json:"height"`
	Author       string    `json:"author"`
	CreatedAt    time.Time `json:"created_at"`
	Likes        int       `json:"likes"`
	Liked        bool      `json:"liked"`
	Description  string    `json:"description,omitempty"`
}

// Source returns one 1-based page of photos. An empty page means the feed
// has no more items.
type Source interface {
	Photos(ctx context.Context, page int) ([]Photo, error)
}

// SourceFunc adapts a function to Source.
type SourceFunc func(ctx context.Context, page int) ([]Photo, error)

func (f SourceFunc) Photos(ctx context.Context, page int) ([]Photo, error) { return f(ctx, page) }
