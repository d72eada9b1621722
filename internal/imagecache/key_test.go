package imagecache

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSanitizeKey(t *testing.T) {
	tests := []struct {
		name string
		key  string
		want string
	}{
		{"plain", "photo-1", "photo-1"},
		{"url", "https://cdn.example.com/a/b.jpg?w=200", "https___cdn.example.com_a_b.jpg_w=200"},
		{"windows separators", `a\b:c*d"e<f>g|h`, "a_b_c_d_e_f_g_h"},
		{"nul", "a\x00b", "a_b"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, SanitizeKey(tt.key))
		})
	}
}

func TestSanitizeKey_LongKeysAreHashed(t *testing.T) {
	base := "https://cdn.example.com/" + strings.Repeat("x", 300)
	a := SanitizeKey(base + "a")
	b := SanitizeKey(base + "b")

	assert.LessOrEqual(t, len(a), maxNameLen)
	assert.NotEqual(t, a, b)
	assert.Equal(t, a, SanitizeKey(base+"a"))
	assert.True(t, strings.HasPrefix(a, "https___cdn.example.com_"))
	assert.NotContains(t, a, "/")
}

func TestSanitizeKey_Collisions(t *testing.T) {
	// Both characters map to '_', so these keys share a file.
	assert.Equal(t, SanitizeKey("a/b"), SanitizeKey("a:b"))
}

func TestFileName_Rejects(t *testing.T) {
	for _, key := range []string{"", ".", ".."} {
		_, err := fileName(key)
		assert.ErrorIs(t, err, ErrInvalidKey, "key %q", key)
	}
	name, err := fileName("../etc/passwd")
	require.NoError(t, err)
	assert.Equal(t, ".._etc_passwd", name)
}

func TestCacheKey_TrimsWhitespace(t *testing.T) {
	assert.Equal(t, "https://x/y.png", CacheKey("  https://x/y.png\n"))
	assert.Empty(t, CacheKey("   "))
}
