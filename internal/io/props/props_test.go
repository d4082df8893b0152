package props

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/GriffinCanCode/netsession/internal/shared/types"
)

func TestPropertiesRoundTrip(t *testing.T) {
	values := map[string]string{
		"layout.default":  "force-directed",
		"key with spaces": "value",
		"path":            `C:\data\net.sif`,
		"eq=colon:key":    "a=b:c",
		"unicode":         "Ωmega 𝄞",
		"multi":           "line one\nline two",
		"leading":         "  padded",
		"empty":           "",
		"comment.chars#!": "#not a comment",
	}

	var buf bytes.Buffer
	require.NoError(t, NewPropertiesWriter(&buf, "session props", values).Write())

	for _, r := range buf.String() {
		assert.Less(t, r, rune(0x80), "output must be ASCII")
	}

	got, err := ReadProperties(&buf)
	require.NoError(t, err)
	assert.Equal(t, values, got)
}

func TestReadPropertiesSyntax(t *testing.T) {
	doc := "# comment\n" +
		"! also comment\n" +
		"\n" +
		"a=1\n" +
		"b : 2\n" +
		"c 3\n" +
		"   d=4\n" +
		"long=first \\\n" +
		"    second\n" +
		"bare\n"

	got, err := ReadProperties(strings.NewReader(doc))
	require.NoError(t, err)
	assert.Equal(t, map[string]string{
		"a":    "1",
		"b":    "2",
		"c":    "3",
		"d":    "4",
		"long": "first second",
		"bare": "",
	}, got)
}

func TestReadPropertiesLatin1(t *testing.T) {
	// "name=café" in ISO-8859-1
	latin1 := []byte{'n', 'a', 'm', 'e', '=', 'c', 'a', 'f', 0xE9, '\n'}

	got, err := ReadProperties(bytes.NewReader(latin1))
	require.NoError(t, err)
	assert.Equal(t, "café", got["name"])

	label, _ := DetectCharset([]byte("plain ascii text"))
	assert.NotEmpty(t, label)
}

func TestReadPropertiesBadEscape(t *testing.T) {
	_, err := ReadProperties(strings.NewReader(`k=\u00ZZ`))
	assert.Error(t, err)

	_, err = ReadProperties(strings.NewReader(`k=\u00`))
	assert.Error(t, err)
}

func TestBookmarksRoundTrip(t *testing.T) {
	b := &types.Bookmarks{Categories: []types.BookmarkCategory{{
		Name: "network",
		Sources: []types.DataSource{
			{Name: "galFiltered", URL: "https://example.org/gal.sif", Provider: "example", Format: "sif"},
			{Name: "bare", URL: "file:///tmp/x.xgmml"},
		},
	}}}

	var buf bytes.Buffer
	require.NoError(t, NewBookmarksWriter(&buf, b).Write())
	assert.Contains(t, buf.String(), `href="https://example.org/gal.sif"`)

	got, err := ReadBookmarks(&buf)
	require.NoError(t, err)
	assert.Equal(t, b, got)
}

func TestManagerPicksWriterByKind(t *testing.T) {
	m := NewManager()
	var buf bytes.Buffer

	assert.IsType(t, &BookmarksWriter{}, m.PropertyWriter(&buf, types.NewBookmarks("b", types.PropertySaveSessionFile, nil)))
	assert.IsType(t, &PropertiesWriter{}, m.PropertyWriter(&buf, types.NewProperties("p", types.PropertySaveSessionFile, nil)))
	assert.Nil(t, m.PropertyWriter(&buf, &types.Property{Name: "x", Kind: types.PropertyKindUnsupported}))
}
