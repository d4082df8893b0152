package cytable

import (
	"encoding/xml"
	"fmt"
	"io"

	"github.com/GriffinCanCode/netsession/internal/io/codec"
	"github.com/GriffinCanCode/netsession/internal/shared/id"
	"github.com/GriffinCanCode/netsession/internal/shared/types"
)

// IndexVersion is written on the index document
const IndexVersion = "3.0"

// Index lists every table written to an archive
type Index struct {
	XMLName xml.Name     `xml:"cyTables"`
	Version string       `xml:"documentVersion,attr"`
	Tables  []IndexEntry `xml:"cyTable"`
}

// IndexEntry maps a table SUID to its file and owner
type IndexEntry struct {
	SUID       int64  `xml:"SUID,attr"`
	Title      string `xml:"title,attr"`
	Filename   string `xml:"filename,attr"`
	PrimaryKey string `xml:"primaryKey,attr"`
	Public     bool   `xml:"public,attr"`
	// Network is zero for global tables
	Network   int64  `xml:"network,attr,omitempty"`
	Type      string `xml:"type,attr,omitempty"`
	Namespace string `xml:"namespace,attr,omitempty"`
}

// NewIndex creates an empty index
func NewIndex() *Index {
	return &Index{Version: IndexVersion}
}

// Add records a written table
func (ix *Index) Add(meta types.TableMetadata, filename string) {
	entry := IndexEntry{
		SUID:       int64(meta.Table.SUID),
		Title:      meta.Table.Title,
		Filename:   filename,
		PrimaryKey: meta.Table.PrimaryKey,
		Public:     meta.Table.Public,
		Namespace:  meta.Namespace,
		Type:       string(meta.Type),
	}
	if meta.Network != nil {
		entry.Network = int64(meta.Network.SUID)
	}
	ix.Tables = append(ix.Tables, entry)
}

// IsGlobal reports whether the entry is not bound to a network
func (e IndexEntry) IsGlobal() bool {
	return e.Network == 0
}

// NewTable creates an empty table carrying the entry's identity. The SUID
// counter is advanced past the persisted SUID.
func (e IndexEntry) NewTable() *types.Table {
	id.ObserveSUID(types.SUID(e.SUID))

	pk := e.PrimaryKey
	if pk == "" {
		pk = types.DefaultPrimaryKey
	}
	return &types.Table{
		SUID:       types.SUID(e.SUID),
		Title:      e.Title,
		SavePolicy: types.SavePolicySessionFile,
		Public:     e.Public,
		PrimaryKey: pk,
	}
}

// WriteIndex encodes the index document
func WriteIndex(w io.Writer, ix *Index) error {
	return codec.EncodeXML(w, ix)
}

// ReadIndex decodes the index document
func ReadIndex(r io.Reader) (*Index, error) {
	var ix Index
	if err := codec.DecodeXML(r, &ix); err != nil {
		return nil, err
	}
	for _, e := range ix.Tables {
		if e.SUID == 0 || e.Filename == "" {
			return nil, fmt.Errorf("table index entry %q is missing its SUID or filename", e.Title)
		}
	}
	return &ix, nil
}
