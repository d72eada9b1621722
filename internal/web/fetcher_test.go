package web

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var pngHeader = []byte("\x89PNG\r\n\x1a\n\x00\x00\x00\rIHDR")

func TestImageFetcher_Fetch(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Contains(t, browserAgents, r.Header.Get("User-Agent"))
		w.Header().Set("Content-Type", "image/png")
		_, _ = w.Write(pngHeader)
	}))
	defer srv.Close()

	f := NewImageFetcher(time.Second)
	got, err := f.Fetch(context.Background(), srv.URL+"/photo.png")
	require.NoError(t, err)
	assert.Equal(t, pngHeader, got)
}

func TestImageFetcher_NotFound(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	defer srv.Close()

	_, err := NewImageFetcher(time.Second).Fetch(context.Background(), srv.URL+"/missing.jpg")
	require.Error(t, err)
	var ne *NetworkError
	require.True(t, errors.As(err, &ne))
	assert.Equal(t, http.StatusNotFound, ne.StatusCode)
}

func TestImageFetcher_EmptyBody(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	_, err := NewImageFetcher(time.Second).Fetch(context.Background(), srv.URL)
	require.Error(t, err)
	assert.True(t, IsNetworkError(err))
}

func TestImageFetcher_RejectsNonHTTP(t *testing.T) {
	_, err := NewImageFetcher(time.Second).Fetch(context.Background(), "file:///etc/passwd")
	require.Error(t, err)
	assert.True(t, IsNetworkError(err))
}

func TestImageFetcher_CanceledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := NewImageFetcher(time.Second).Fetch(ctx, "https://example.com/a.jpg")
	require.Error(t, err)
	assert.True(t, IsNetworkError(err))
	assert.ErrorIs(t, err, context.Canceled)
}

func TestImageFetcher_Timeout(t *testing.T) {
	release := make(chan struct{})
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		<-release
	}))
	defer srv.Close()
	defer close(release)

	_, err := NewImageFetcher(50*time.Millisecond).Fetch(context.Background(), srv.URL)
	require.Error(t, err)
	assert.True(t, IsNetworkError(err))
}

func TestImageFetcher_Concurrent(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte("image" + r.URL.Path))
	}))
	defer srv.Close()

	f := NewImageFetcher(time.Second)
	var wg sync.WaitGroup
	for _, p := range []string{"/a", "/b", "/c", "/d", "/e", "/f"} {
		wg.Add(1)
		go func(p string) {
			defer wg.Done()
			got, err := f.Fetch(context.Background(), srv.URL+p)
			assert.NoError(t, err)
			assert.Equal(t, "image"+p, string(got))
		}(p)
	}
	wg.Wait()
}

func TestNetworkError_Timeout(t *testing.T) {
	assert.True(t, (&NetworkError{Err: context.DeadlineExceeded}).Timeout())
	assert.False(t, (&NetworkError{StatusCode: 500, Err: errors.New("boom")}).Timeout())
	assert.Contains(t, (&NetworkError{URL: "u", StatusCode: 503, Err: errors.New("x")}).Error(), "status 503")
}

func TestNextUserAgent(t *testing.T) {
	for i := 0; i < 50; i++ {
		assert.Contains(t, browserAgents, NextUserAgent())
	}
}
