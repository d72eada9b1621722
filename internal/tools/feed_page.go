package tools

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/Kim-Junhwan/ImageFeed/internal/feed"
	"github.com/Kim-Junhwan/ImageFeed/internal/logger"
)

// prefetchTimeout bounds the background thumbnail warm-up after a page load.
const prefetchTimeout = 2 * time.Minute

// Prefetcher warms the image cache.
type Prefetcher interface {
	Prefetch(ctx context.Context, urls []string, limit int) error
}

// FeedPageHandler returns the MCP tool handler for the "feed-page" tool.
// With a page argument it reads that page directly; without one it advances
// the shared paginator. When prefetcher is set, thumbnails of the returned
// photos are loaded in the background with at most limit downloads at once.
func FeedPageHandler(source feed.Source, pager *feed.Paginator, prefetcher Prefetcher, limit int) func(context.Context, mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	return func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		if ctx.Err() != nil {
			return mcp.NewToolResultError(ctx.Err().Error()), nil
		}

		var photos []feed.Photo
		var err error
		page := req.GetInt("page", 0)
		if page > 0 {
			photos, err = source.Photos(ctx, page)
		} else {
			page = pager.Page()
			photos, err = pager.Next(ctx)
		}
		if errors.Is(err, feed.ErrExhausted) {
			return mcp.NewToolResultText("No more photos."), nil
		}
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}

		if prefetcher != nil && limit > 0 && len(photos) > 0 {
			go prefetchThumbnails(prefetcher, photos, limit)
		}
		return mcp.NewToolResultText(formatPhotos(page, photos)), nil
	}
}

func prefetchThumbnails(p Prefetcher, photos []feed.Photo, limit int) {
	ctx, cancel := context.WithTimeout(context.Background(), prefetchTimeout)
	defer cancel()

	urls := make([]string, 0, len(photos))
	for _, ph := range photos {
		urls = append(urls, ph.ThumbnailURL)
	}
	if err := p.Prefetch(ctx, urls, limit); err != nil {
		logger.Warnf("thumbnail prefetch incomplete: %v", err)
	}
}

// formatPhotos renders an ordered list with one image URL line per photo.
func formatPhotos(page int, photos []feed.Photo) string {
	if len(photos) == 0 {
		return "No more photos."
	}
	var sb strings.Builder
	fmt.Fprintf(&sb, "Page %d\n\n", page)
	for i, p := range photos {
		author := p.Author
		if author == "" {
			author = "unknown"
		}
		fmt.Fprintf(&sb, "%d. %s by %s", i+1, p.ID, author)
		if p.Width > 0 && p.Height > 0 {
			fmt.Fprintf(&sb, " (%dx%d)", p.Width, p.Height)
		}
		if p.Likes > 0 {
			fmt.Fprintf(&sb, ", %d likes", p.Likes)
		}
		fmt.Fprintf(&sb, "\n   %s\n   thumbnail: %s", p.URL, p.ThumbnailURL)
		if p.Description != "" {
			sb.WriteString("\n   ")
			sb.WriteString(singleLine(p.Description))
		}
		if i < len(photos)-1 {
			sb.WriteString("\n\n")
		}
	}
	return sb.String()
}

func singleLine(s string) string { return strings.Join(strings.Fields(s), " ") }
