package feed

import (
	"context"
	"errors"
	"sync"
)

var (
	ErrLoading   = errors.New("feed: page load already in progress")
	ErrExhausted = errors.New("feed: no more pages")
	ErrReset     = errors.New("feed: paginator reset during load")
)

// Paginator walks a Source page by page and accumulates what it has seen.
type Paginator struct {
	source Source

	mu          sync.Mutex
	nextPage    int
	canLoadMore bool
	loading     bool
	photos      []Photo
	generation  int
}

// NewPaginator starts at page 1.
func NewPaginator(source Source) *Paginator {
	return &Paginator{source: source, nextPage: 1, canLoadMore: true}
}

// Next loads the next page and returns its photos. The page counter only
// advances on success; an empty page marks the feed exhausted.
func (p *Paginator) Next(ctx context.Context) ([]Photo, error) {
	p.mu.Lock()
	if p.loading {
		p.mu.Unlock()
		return nil, ErrLoading
	}
	if !p.canLoadMore {
		p.mu.Unlock()
		return nil, ErrExhausted
	}
	page := p.nextPage
	gen := p.generation
	p.loading = true
	p.mu.Unlock()

	photos, err := p.source.Photos(ctx, page)

	p.mu.Lock()
	defer p.mu.Unlock()
	if gen != p.generation {
		return nil, ErrReset
	}
	p.loading = false
	if err != nil {
		return nil, err
	}
	if len(photos) == 0 {
		p.canLoadMore = false
		return nil, nil
	}
	p.nextPage = page + 1
	p.photos = append(p.photos, photos...)
	return photos, nil
}

// Page is the page number Next will request.
func (p *Paginator) Page() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.nextPage
}

// CanLoadMore reports whether the feed may have more pages.
func (p *Paginator) CanLoadMore() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.canLoadMore
}

// Photos returns a copy of everything loaded so far.
func (p *Paginator) Photos() []Photo {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]Photo(nil), p.photos...)
}

// Reset forgets loaded pages. A load in flight is discarded and its caller
// gets ErrReset.
func (p *Paginator) Reset() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.generation++
	p.loading = false
	p.nextPage = 1
	p.canLoadMore = true
	p.photos = nil
}
