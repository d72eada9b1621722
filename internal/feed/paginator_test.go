package feed

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func pagesOf(n, perPage int) SourceFunc {
	return func(_ context.Context, page int) ([]Photo, error) {
		if page > n {
			return nil, nil
		}
		out := make([]Photo, perPage)
		for i := range out {
			out[i] = Photo{ID: fmt.Sprintf("p%d-%d", page, i)}
		}
		return out, nil
	}
}

func TestPaginator_WalksUntilEmptyPage(t *testing.T) {
	p := NewPaginator(pagesOf(2, 3))
	ctx := context.Background()

	assert.Equal(t, 1, p.Page())
	first, err := p.Next(ctx)
	require.NoError(t, err)
	assert.Equal(t, "p1-0", first[0].ID)

	second, err := p.Next(ctx)
	require.NoError(t, err)
	assert.Equal(t, "p2-0", second[0].ID)
	assert.Equal(t, 3, p.Page())

	last, err := p.Next(ctx)
	require.NoError(t, err)
	assert.Empty(t, last)
	assert.False(t, p.CanLoadMore())

	_, err = p.Next(ctx)
	assert.ErrorIs(t, err, ErrExhausted)
	assert.Len(t, p.Photos(), 6)
}

func TestPaginator_ErrorKeepsPage(t *testing.T) {
	fail := true
	boom := errors.New("offline")
	p := NewPaginator(SourceFunc(func(_ context.Context, page int) ([]Photo, error) {
		if fail {
			return nil, boom
		}
		return []Photo{{ID: fmt.Sprint(page)}}, nil
	}))

	_, err := p.Next(context.Background())
	require.ErrorIs(t, err, boom)
	assert.Equal(t, 1, p.Page())
	assert.True(t, p.CanLoadMore())

	fail = false
	got, err := p.Next(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "1", got[0].ID)
	assert.Equal(t, 2, p.Page())
}

func TestPaginator_RejectsOverlappingLoads(t *testing.T) {
	started := make(chan struct{})
	release := make(chan struct{})
	p := NewPaginator(SourceFunc(func(_ context.Context, _ int) ([]Photo, error) {
		close(started)
		<-release
		return []Photo{{ID: "a"}}, nil
	}))

	done := make(chan error, 1)
	go func() {
		_, err := p.Next(context.Background())
		done <- err
	}()
	<-started

	_, err := p.Next(context.Background())
	assert.ErrorIs(t, err, ErrLoading)

	close(release)
	require.NoError(t, <-done)
	assert.Equal(t, 2, p.Page())
}

func TestPaginator_Reset(t *testing.T) {
	p := NewPaginator(pagesOf(1, 2))
	ctx := context.Background()
	_, err := p.Next(ctx)
	require.NoError(t, err)
	_, err = p.Next(ctx)
	require.NoError(t, err)
	require.False(t, p.CanLoadMore())

	p.Reset()
	assert.Equal(t, 1, p.Page())
	assert.True(t, p.CanLoadMore())
	assert.Empty(t, p.Photos())
}

func TestPaginator_PhotosIsACopy(t *testing.T) {
	p := NewPaginator(pagesOf(1, 1))
	_, err := p.Next(context.Background())
	require.NoError(t, err)

	got := p.Photos()
	got[0].ID = "changed"
	assert.Equal(t, "p1-0", p.Photos()[0].ID)
}

func TestPaginator_ResetDiscardsLoadInFlight(t *testing.T) {
	started := make(chan struct{}, 2)
	release := make(chan struct{})
	p := NewPaginator(SourceFunc(func(_ context.Context, page int) ([]Photo, error) {
		started <- struct{}{}
		if page == 1 {
			<-release
		}
		return []Photo{{ID: fmt.Sprintf("p%d", page)}}, nil
	}))

	done := make(chan error, 1)
	go func() {
		_, err := p.Next(context.Background())
		done <- err
	}()
	<-started

	p.Reset()
	close(release)
	assert.ErrorIs(t, <-done, ErrReset)

	assert.Equal(t, 1, p.Page())
	assert.True(t, p.CanLoadMore())
	assert.Empty(t, p.Photos())

	got, err := p.Next(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "p1", got[0].ID)
	assert.Equal(t, 2, p.Page())
}
