package props

import (
	"encoding/xml"
	"io"

	"github.com/GriffinCanCode/netsession/internal/io/codec"
	"github.com/GriffinCanCode/netsession/internal/shared/types"
)

type bookmarksDoc struct {
	XMLName    xml.Name                 `xml:"bookmarks"`
	Categories []types.BookmarkCategory `xml:"category"`
}

// BookmarksWriter writes a bookmarks property as XML
type BookmarksWriter struct {
	w         io.Writer
	bookmarks *types.Bookmarks
}

// NewBookmarksWriter creates a bookmarks writer
func NewBookmarksWriter(w io.Writer, bookmarks *types.Bookmarks) *BookmarksWriter {
	return &BookmarksWriter{w: w, bookmarks: bookmarks}
}

// Write encodes the bookmarks
func (bw *BookmarksWriter) Write() error {
	doc := bookmarksDoc{}
	if bw.bookmarks != nil {
		doc.Categories = bw.bookmarks.Categories
	}
	return codec.EncodeXML(bw.w, &doc)
}

// ReadBookmarks decodes a bookmarks document
func ReadBookmarks(r io.Reader) (*types.Bookmarks, error) {
	var doc bookmarksDoc
	if err := codec.DecodeXML(r, &doc); err != nil {
		return nil, err
	}
	return &types.Bookmarks{Categories: doc.Categories}, nil
}
