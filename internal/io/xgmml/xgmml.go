package xgmml

import (
	"encoding/xml"
)

// DocumentVersion is written on every graph document
const DocumentVersion = "3.0"

// Attribute names with a fixed meaning
const (
	attInteraction = "interaction"
	attSubnetwork  = "subnetwork"
	attSharedName  = "shared name"
)

type graphElem struct {
	XMLName    xml.Name   `xml:"graph"`
	ID         int64      `xml:"id,attr"`
	Label      string     `xml:"label,attr"`
	Version    string     `xml:"documentVersion,attr,omitempty"`
	SavePolicy string     `xml:"savePolicy,attr,omitempty"`
	Selected   bool       `xml:"selected,attr,omitempty"`
	Network    int64      `xml:"network,attr,omitempty"`
	Style      string     `xml:"style,attr,omitempty"`
	Atts       []attElem  `xml:"att"`
	Nodes      []nodeElem `xml:"node"`
	Edges      []edgeElem `xml:"edge"`
}

type attElem struct {
	Name  string     `xml:"name,attr"`
	Value string     `xml:"value,attr,omitempty"`
	Type  string     `xml:"type,attr,omitempty"`
	Graph *graphElem `xml:"graph,omitempty"`
}

type nodeElem struct {
	ID       int64         `xml:"id,attr,omitempty"`
	Ref      int64         `xml:"ref,attr,omitempty"`
	Label    string        `xml:"label,attr,omitempty"`
	Graphics *graphicsElem `xml:"graphics,omitempty"`
}

type edgeElem struct {
	ID       int64     `xml:"id,attr,omitempty"`
	Ref      int64     `xml:"ref,attr,omitempty"`
	Label    string    `xml:"label,attr,omitempty"`
	Source   int64     `xml:"source,attr,omitempty"`
	Target   int64     `xml:"target,attr,omitempty"`
	Directed string    `xml:"directed,attr,omitempty"`
	Atts     []attElem `xml:"att"`
}

type graphicsElem struct {
	X float64 `xml:"x,attr"`
	Y float64 `xml:"y,attr"`
}

func boolFlag(b bool) string {
	if b {
		return "1"
	}
	return "0"
}
