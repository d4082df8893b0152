package utils

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func hashOf(t *testing.T, h *Hasher, s string) string {
	t.Helper()
	sum, err := h.HashReader(strings.NewReader(s))
	require.NoError(t, err)
	return sum
}

func TestHasherAlgorithms(t *testing.T) {
	sha := NewHasher(SHA256)
	blake := NewHasher(BLAKE2B)

	assert.Len(t, hashOf(t, sha, "x"), 64)
	assert.Len(t, hashOf(t, blake, "x"), 64)
	assert.NotEqual(t, hashOf(t, sha, "x"), hashOf(t, blake, "x"))
	assert.Equal(t, hashOf(t, sha, "x"), hashOf(t, DefaultHasher(), "x"))
	assert.Equal(t, "2d711642b726b04401627ca9fbac32f5c8530fb1903cc4db02258717921a4881", hashOf(t, sha, "x"))
}

func TestParseHashAlgorithm(t *testing.T) {
	assert.Equal(t, BLAKE2B, ParseHashAlgorithm("BLAKE2B"))
	assert.Equal(t, SHA256, ParseHashAlgorithm("sha256"))
	assert.Equal(t, SHA256, ParseHashAlgorithm("unknown"))
}

func TestDigestWriterMatchesHash(t *testing.T) {
	for _, alg := range []HashAlgorithm{SHA256, BLAKE2B} {
		t.Run(string(alg), func(t *testing.T) {
			h := NewHasher(alg)
			var buf bytes.Buffer
			dw := h.NewDigestWriter(&buf)

			_, err := dw.Write([]byte("hello "))
			require.NoError(t, err)
			_, err = dw.Write([]byte("world"))
			require.NoError(t, err)

			assert.Equal(t, "hello world", buf.String())
			assert.Equal(t, int64(11), dw.Size())
			assert.Equal(t, hashOf(t, h, "hello world"), dw.Sum())
		})
	}
}

func TestShortHash(t *testing.T) {
	assert.Equal(t, "abcdefgh", ShortHash("abcdefghijkl"))
	assert.Equal(t, "abc", ShortHash("abc"))
}

func TestValidateString(t *testing.T) {
	tests := []struct {
		name     string
		value    string
		required bool
		wantErr  bool
	}{
		{"required empty", "", true, true},
		{"optional empty", "", false, false},
		{"ok", "network", true, false},
		{"too long", strings.Repeat("a", MaxAppNameLength+1), true, true},
		{"null byte", "a\x00b", true, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateString(tt.value, "field", 1, MaxAppNameLength, tt.required)
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestValidateAppName(t *testing.T) {
	assert.NoError(t, ValidateAppName("org.cytoscape.app"))
	assert.NoError(t, ValidateAppName("my_app-2"))
	assert.Error(t, ValidateAppName(""))
	assert.Error(t, ValidateAppName(".."))
	assert.Error(t, ValidateAppName("a/b"))
}

func TestValidateSessionPath(t *testing.T) {
	assert.NoError(t, ValidateSessionPath("/tmp/x.cys", ".cys"))
	assert.NoError(t, ValidateSessionPath("/tmp/X.CYS", ".cys"))
	assert.Error(t, ValidateSessionPath("/tmp/x.zip", ".cys"))
	assert.Error(t, ValidateSessionPath("", ".cys"))
}

func TestValidateURL(t *testing.T) {
	assert.NoError(t, ValidateURL("https://example.org/s.cys"))
	assert.Error(t, ValidateURL("ftp://example.org/s.cys"))
	assert.Error(t, ValidateURL("http:///nohost"))
}

func TestIsSafeEntryName(t *testing.T) {
	assert.True(t, IsSafeEntryName("CytoscapeSession-x/apps/a/file.txt"))
	assert.False(t, IsSafeEntryName("../escape"))
	assert.False(t, IsSafeEntryName("/abs"))
	assert.False(t, IsSafeEntryName("a/../../b"))
	assert.False(t, IsSafeEntryName(`a\b`))
}

func TestCleanRelPath(t *testing.T) {
	for in, want := range map[string]string{
		"state.json":       "state.json",
		"a/f.txt":          "a/f.txt",
		"a/./b//f.txt":     "a/b/f.txt",
		"a/b/../f.txt":     "a/f.txt",
		"layouts/x/y.json": "layouts/x/y.json",
	} {
		got, err := CleanRelPath(in)
		require.NoError(t, err, in)
		assert.Equal(t, want, got, in)
	}
	for _, in := range []string{"", ".", "/abs", "../x", "a/../../x", `a\b`, "a/\x00b"} {
		_, err := CleanRelPath(in)
		assert.Error(t, err, in)
	}
}
