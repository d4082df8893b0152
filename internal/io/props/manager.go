// Package props reads and writes session property objects: key-value bags
// as .props files and bookmarks as XML.
package props

import (
	"io"

	"github.com/GriffinCanCode/netsession/internal/io/codec"
	"github.com/GriffinCanCode/netsession/internal/shared/types"
)

// Manager picks the writer for a property by its kind
type Manager struct{}

// NewManager creates a property writer manager
func NewManager() *Manager {
	return &Manager{}
}

// PropertyWriter returns a writer for p, nil when its kind has no format
func (Manager) PropertyWriter(w io.Writer, p *types.Property) codec.Writer {
	switch p.Kind {
	case types.PropertyKindBookmarks:
		return NewBookmarksWriter(w, p.Bookmarks)
	case types.PropertyKindProperties:
		return NewPropertiesWriter(w, p.Name, p.Values)
	default:
		return nil
	}
}
