package web

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/Kim-Junhwan/ImageFeed/internal/cache"
	"github.com/Kim-Junhwan/ImageFeed/internal/feed"
)

const (
	DefaultUnsplashBaseURL = "https://api.unsplash.com"
	DefaultPerPage         = 30
	maxFeedResponseSize    = 4 * 1024 * 1024
)

// UnsplashClient lists photos from the Unsplash API and keeps decoded
// pages in a KV cache.
type UnsplashClient struct {
	client    *http.Client
	baseURL   string
	accessKey string
	perPage   int
	cache     cache.KV
	ttl       time.Duration
	now       func() time.Time
}

type UnsplashOptions struct {
	BaseURL   string
	AccessKey string
	PerPage   int
	Timeout   time.Duration
	// Cache may be nil, in which case every page goes to the network.
	Cache cache.KV
	TTL   time.Duration
}

func NewUnsplashClient(opts UnsplashOptions) *UnsplashClient {
	if opts.BaseURL == "" {
		opts.BaseURL = DefaultUnsplashBaseURL
	}
	if opts.PerPage <= 0 {
		opts.PerPage = DefaultPerPage
	}
	if opts.Timeout <= 0 {
		opts.Timeout = RequestTimeout
	}
	return &UnsplashClient{
		client:    &http.Client{Timeout: opts.Timeout},
		baseURL:   strings.TrimRight(opts.BaseURL, "/"),
		accessKey: opts.AccessKey,
		perPage:   opts.PerPage,
		cache:     opts.Cache,
		ttl:       opts.TTL,
		now:       time.Now,
	}
}

type photoDTO struct {
	ID   string `json:"id"`
	URLs struct {
		Thumb string `json:"thumb"`
		Full  string `json:"full"`
	} `json:"urls"`
	Width  int `json:"width"`
	Height int `json:"height"`
	User   struct {
		Name string `json:"name"`
	} `json:"user"`
	Likes          int     `json:"likes"`
	LikedByUser    bool    `json:"liked_by_user"`
	CreatedAt      string  `json:"created_at"`
	Description    *string `json:"description"`
	AltDescription *string `json:"alt_description"`
}

// toPhoto drops entries whose image URLs are not absolute.
func (d photoDTO) toPhoto(fetchedAt time.Time) (feed.Photo, bool) {
	if !isAbsURL(d.URLs.Full) || !isAbsURL(d.URLs.Thumb) {
		return feed.Photo{}, false
	}
	created, err := time.Parse(time.RFC3339, d.CreatedAt)
	if err != nil {
		created = fetchedAt
	}
	var desc string
	switch {
	case d.Description != nil && *d.Description != "":
		desc = *d.Description
	case d.AltDescription != nil:
		desc = *d.AltDescription
	}
	return feed.Photo{
		ID:           d.ID,
		URL:          d.URLs.Full,
		ThumbnailURL: d.URLs.Thumb,
		Width:        d.Width,
		Height:       d.Height,
		Author:       d.User.Name,
		CreatedAt:    created,
		Likes:        d.Likes,
		Liked:        d.LikedByUser,
		Description:  desc,
	}, true
}

func (u *UnsplashClient) cacheKey(page int) string {
	return "feed_page|" + strconv.Itoa(page) + "|" + strconv.Itoa(u.perPage)
}

// Photos returns one page of the editorial feed. Pages start at 1.
func (u *UnsplashClient) Photos(ctx context.Context, page int) ([]feed.Photo, error) {
	if page < 1 {
		return nil, fmt.Errorf("invalid page %d", page)
	}
	if u.cache != nil {
		if v, err := u.cache.Get(u.cacheKey(page)); err == nil {
			var cached []feed.Photo
			if json.Unmarshal(v, &cached) == nil {
				return cached, nil
			}
		}
	}

	values := url.Values{
		"page":     {strconv.Itoa(page)},
		"per_page": {strconv.Itoa(u.perPage)},
	}
	endpoint := u.baseURL + "/photos?" + values.Encode()
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, &NetworkError{URL: endpoint, Err: err}
	}
	req.Header.Set("Authorization", "Client-ID "+u.accessKey)
	req.Header.Set("Accept-Version", "v1")
	req.Header.Set("User-Agent", AppUserAgent)

	resp, err := u.client.Do(req)
	if err != nil {
		return nil, &NetworkError{URL: endpoint, Err: err}
	}
	defer resp.Body.Close()
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, &NetworkError{URL: endpoint, StatusCode: resp.StatusCode, Err: errors.New(http.StatusText(resp.StatusCode))}
	}

	var dtos []photoDTO
	if err := json.NewDecoder(io.LimitReader(resp.Body, maxFeedResponseSize)).Decode(&dtos); err != nil {
		return nil, &NetworkError{URL: endpoint, StatusCode: resp.StatusCode, Err: fmt.Errorf("decode photos: %w", err)}
	}

	fetchedAt := u.now()
	photos := make([]feed.Photo, 0, len(dtos))
	for _, d := range dtos {
		if p, ok := d.toPhoto(fetchedAt); ok {
			photos = append(photos, p)
		}
	}

	if u.cache != nil {
		if b, err := json.Marshal(photos); err == nil {
			_ = u.cache.Put(u.cacheKey(page), b, u.ttl)
		}
	}
	return photos, nil
}

func isAbsURL(raw string) bool {
	parsed, err := url.Parse(raw)
	return err == nil && parsed.IsAbs() && parsed.Host != ""
}
