package web

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/gocolly/colly/v2"
)

const (
	// RequestTimeout bounds a single image download.
	RequestTimeout = 30 * time.Second
	// MaxImageSize caps the body colly will read for one image.
	MaxImageSize = 32 * 1024 * 1024
	// fetchParallelism is how many downloads may hit one host at a time.
	fetchParallelism = 8
)

// ImageFetcher downloads raw image bytes. It is safe for concurrent use:
// every Fetch runs on a clone of the base collector, which shares the HTTP
// backend and limits but not the callbacks.
type ImageFetcher struct {
	c *colly.Collector
}

// NewImageFetcher returns a fetcher whose requests time out after timeout
// (RequestTimeout when <= 0).
func NewImageFetcher(timeout time.Duration) *ImageFetcher {
	if timeout <= 0 {
		timeout = RequestTimeout
	}
	c := colly.NewCollector(
		colly.AllowURLRevisit(),
		colly.Async(false),
		colly.MaxBodySize(MaxImageSize),
	)
	c.Limit(&colly.LimitRule{
		DomainGlob:  "*",
		Parallelism: fetchParallelism,
	})
	c.SetRequestTimeout(timeout)
	return &ImageFetcher{c: c}
}

// Fetch downloads rawURL. Every failure is a *NetworkError.
func (f *ImageFetcher) Fetch(ctx context.Context, rawURL string) ([]byte, error) {
	if ctx == nil {
		ctx = context.Background()
	}
	if !strings.HasPrefix(rawURL, "http://") && !strings.HasPrefix(rawURL, "https://") {
		return nil, &NetworkError{URL: rawURL, Err: errors.New("url must start with http:// or https://")}
	}
	if err := ctx.Err(); err != nil {
		return nil, &NetworkError{URL: rawURL, Err: err}
	}

	var body []byte
	var status int

	c := f.c.Clone()
	c.Context = ctx
	c.OnRequest(func(r *colly.Request) {
		r.Headers.Set("User-Agent", NextUserAgent())
		r.Headers.Set("Accept", "image/avif,image/webp,image/*,*/*;q=0.8")
	})
	c.OnResponse(func(r *colly.Response) {
		status = r.StatusCode
		body = r.Body
	})
	c.OnError(func(r *colly.Response, _ error) {
		if r != nil {
			status = r.StatusCode
		}
	})

	if err := c.Visit(rawURL); err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			err = ctxErr
		}
		return nil, &NetworkError{URL: rawURL, StatusCode: status, Err: err}
	}
	if err := ctx.Err(); err != nil {
		return nil, &NetworkError{URL: rawURL, Err: err}
	}
	if len(body) == 0 {
		return nil, &NetworkError{URL: rawURL, StatusCode: status, Err: errors.New("empty response body")}
	}
	if len(body) >= MaxImageSize {
		return nil, &NetworkError{URL: rawURL, StatusCode: status, Err: fmt.Errorf("image exceeds %d bytes", MaxImageSize)}
	}
	return body, nil
}
