package logger

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInit_WritesToFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "imagefeed.log")
	require.NoError(t, Init(path, "debug"))
	t.Cleanup(func() { _ = Close() })

	Debugf("evicted %d entries", 3)
	Warnf("disk save failed for %s", "k")
	require.NoError(t, Close())

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), "evicted 3 entries")
	assert.Contains(t, string(data), "disk save failed for k")
}

func TestInit_SecondCallIsNoop(t *testing.T) {
	dir := t.TempDir()
	first := filepath.Join(dir, "a.log")
	second := filepath.Join(dir, "b.log")
	require.NoError(t, Init(first, "info"))
	t.Cleanup(func() { _ = Close() })

	require.NoError(t, Init(second, "info"))
	_, err := os.Stat(second)
	assert.True(t, os.IsNotExist(err))
}

func TestSetOutput_Level(t *testing.T) {
	var buf bytes.Buffer
	SetOutput(&buf, "warn")
	t.Cleanup(func() { SetOutput(os.Stderr, "info") })

	Infof("hidden")
	Errorf("shown %s", "error")
	assert.NotContains(t, buf.String(), "hidden")
	assert.Contains(t, buf.String(), "shown error")
}

func TestParseLevel(t *testing.T) {
	assert.Equal(t, parseLevel("info"), parseLevel(""))
	assert.Equal(t, parseLevel("info"), parseLevel("loud"))
	assert.NotEqual(t, parseLevel("info"), parseLevel("debug"))
}
