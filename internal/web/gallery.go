package web

import (
	"context"
	"errors"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	htmltomarkdown "github.com/JohannesKaufmann/html-to-markdown/v2"
	"github.com/PuerkitoBio/goquery"

	"github.com/Kim-Junhwan/ImageFeed/internal/feed"
)

// GalleryScraper turns a plain HTML gallery page into a single-page feed.
type GalleryScraper struct {
	client  *http.Client
	pageURL string
}

func NewGalleryScraper(pageURL string, timeout time.Duration) *GalleryScraper {
	if timeout <= 0 {
		timeout = RequestTimeout
	}
	return &GalleryScraper{
		client:  &http.Client{Timeout: timeout},
		pageURL: pageURL,
	}
}

// Photos scrapes the gallery for page 1; later pages are empty.
func (g *GalleryScraper) Photos(ctx context.Context, page int) ([]feed.Photo, error) {
	if page > 1 {
		return nil, nil
	}
	return g.Scrape(ctx)
}

// Scrape reads every figure with an image, falling back to bare img tags
// when the page has no figures.
func (g *GalleryScraper) Scrape(ctx context.Context) ([]feed.Photo, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, g.pageURL, nil)
	if err != nil {
		return nil, &NetworkError{URL: g.pageURL, Err: err}
	}
	req.Header.Set("User-Agent", NextUserAgent())
	req.Header.Set("Accept", "text/html,application/xhtml+xml,application/xml;q=0.9,*/*;q=0.8")

	resp, err := g.client.Do(req)
	if err != nil {
		return nil, &NetworkError{URL: g.pageURL, Err: err}
	}
	defer resp.Body.Close()
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, &NetworkError{URL: g.pageURL, StatusCode: resp.StatusCode, Err: errors.New(http.StatusText(resp.StatusCode))}
	}

	doc, err := goquery.NewDocumentFromReader(resp.Body)
	if err != nil {
		return nil, &NetworkError{URL: g.pageURL, StatusCode: resp.StatusCode, Err: err}
	}
	base := resp.Request.URL

	seen := make(map[string]struct{})
	var photos []feed.Photo
	add := func(img *goquery.Selection, author, captionHTML string) {
		src := resolve(base, img.AttrOr("src", ""))
		if src == "" {
			return
		}
		if _, dup := seen[src]; dup {
			return
		}
		seen[src] = struct{}{}

		thumb := resolve(base, img.AttrOr("data-thumb", ""))
		if thumb == "" {
			thumb = src
		}
		desc := captionMarkdown(captionHTML)
		if desc == "" {
			desc = singleLine(img.AttrOr("alt", ""))
		}
		photos = append(photos, feed.Photo{
			ID:           src,
			URL:          src,
			ThumbnailURL: thumb,
			Width:        atoi(img.AttrOr("width", "")),
			Height:       atoi(img.AttrOr("height", "")),
			Author:       author,
			Description:  desc,
		})
	}

	doc.Find("figure").Each(func(_ int, s *goquery.Selection) {
		img := s.Find("img[src]").First()
		if img.Length() == 0 {
			return
		}
		caption := s.Find("figcaption").First()
		author := singleLine(caption.Find("[rel=author], .author").First().Text())
		captionHTML, _ := caption.Html()
		add(img, author, captionHTML)
	})

	if len(photos) == 0 {
		doc.Find("img[src]").Each(func(_ int, img *goquery.Selection) {
			add(img, "", "")
		})
	}
	return photos, nil
}

// captionMarkdown converts caption markup, keeping links and emphasis.
func captionMarkdown(html string) string {
	html = strings.TrimSpace(html)
	if html == "" {
		return ""
	}
	md, err := htmltomarkdown.ConvertString(html)
	if err != nil {
		return singleLine(html)
	}
	return strings.TrimSpace(md)
}

func resolve(base *url.URL, ref string) string {
	ref = strings.TrimSpace(ref)
	if ref == "" || strings.HasPrefix(ref, "data:") {
		return ""
	}
	u, err := url.Parse(ref)
	if err != nil {
		return ""
	}
	if !u.IsAbs() && base != nil {
		u = base.ResolveReference(u)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return ""
	}
	u.Fragment = ""
	return u.String()
}

func atoi(s string) int {
	n, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil {
		return 0
	}
	return n
}

// singleLine trims and collapses internal whitespace/newlines to single spaces.
func singleLine(s string) string {
	return strings.Join(strings.Fields(s), " ")
}
