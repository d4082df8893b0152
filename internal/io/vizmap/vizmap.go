// Package vizmap reads and writes the visual style document of a session.
package vizmap

import (
	"encoding/xml"
	"fmt"
	"io"
	"sort"

	"github.com/GriffinCanCode/netsession/internal/io/codec"
	"github.com/GriffinCanCode/netsession/internal/shared/types"
)

// DocumentVersion is written on the vizmap document
const DocumentVersion = "3.1"

type vizmapDoc struct {
	XMLName xml.Name    `xml:"vizmap"`
	Version string      `xml:"documentVersion,attr"`
	Styles  []styleElem `xml:"visualStyle"`
}

type styleElem struct {
	Name       string         `xml:"name,attr"`
	Properties []propertyElem `xml:"visualProperty"`
	Mappings   []mappingElem  `xml:"mapping"`
}

type propertyElem struct {
	Name    string `xml:"name,attr"`
	Default string `xml:"default,attr"`
}

type mappingElem struct {
	Property string      `xml:"visualProperty,attr"`
	Column   string      `xml:"attributeName,attr"`
	Type     string      `xml:"type,attr"`
	Entries  []entryElem `xml:"discreteMappingEntry"`
}

type entryElem struct {
	Key   string `xml:"attributeValue,attr"`
	Value string `xml:"value,attr"`
}

// Writer writes every style into one document
type Writer struct {
	w      io.Writer
	styles []*types.VisualStyle
}

// NewWriter creates a vizmap writer
func NewWriter(w io.Writer, styles []*types.VisualStyle) *Writer {
	return &Writer{w: w, styles: styles}
}

// Write encodes the styles. Defaults and discrete entries are sorted by key.
func (vw *Writer) Write() error {
	doc := vizmapDoc{Version: DocumentVersion}
	for _, s := range vw.styles {
		se := styleElem{Name: s.Title}
		for _, k := range sortedKeys(s.Defaults) {
			se.Properties = append(se.Properties, propertyElem{Name: k, Default: s.Defaults[k]})
		}
		for _, m := range s.Mappings {
			me := mappingElem{Property: m.Property, Column: m.Column, Type: string(m.Type)}
			for _, k := range sortedKeys(m.Entries) {
				me.Entries = append(me.Entries, entryElem{Key: k, Value: m.Entries[k]})
			}
			se.Mappings = append(se.Mappings, me)
		}
		doc.Styles = append(doc.Styles, se)
	}
	return codec.EncodeXML(vw.w, &doc)
}

// Read decodes a vizmap document
func Read(r io.Reader) ([]*types.VisualStyle, error) {
	var doc vizmapDoc
	if err := codec.DecodeXML(r, &doc); err != nil {
		return nil, err
	}

	styles := make([]*types.VisualStyle, 0, len(doc.Styles))
	for _, se := range doc.Styles {
		if se.Name == "" {
			return nil, fmt.Errorf("visual style without a name")
		}
		s := types.NewVisualStyle(se.Name)
		for _, p := range se.Properties {
			s.Defaults[p.Name] = p.Default
		}
		for _, me := range se.Mappings {
			mt := types.MappingType(me.Type)
			if mt != types.MappingDiscrete && mt != types.MappingPassthrough {
				return nil, fmt.Errorf("style %q: unknown mapping type %q", se.Name, me.Type)
			}
			m := types.VisualMapping{Property: me.Property, Column: me.Column, Type: mt}
			if len(me.Entries) > 0 {
				m.Entries = make(map[string]string, len(me.Entries))
				for _, e := range me.Entries {
					m.Entries[e.Key] = e.Value
				}
			}
			s.Mappings = append(s.Mappings, m)
		}
		styles = append(styles, s)
	}
	return styles, nil
}

// Manager hands out vizmap writers to the archive writer
type Manager struct{}

// NewManager creates a vizmap writer manager
func NewManager() *Manager {
	return &Manager{}
}

// VizmapWriter returns a writer for the style set
func (Manager) VizmapWriter(w io.Writer, styles []*types.VisualStyle) codec.Writer {
	return NewWriter(w, styles)
}

func sortedKeys(m map[string]string) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
