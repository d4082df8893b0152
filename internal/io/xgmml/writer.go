package xgmml

import (
	"fmt"
	"io"
	"sort"

	"github.com/GriffinCanCode/netsession/internal/io/codec"
	"github.com/GriffinCanCode/netsession/internal/shared/types"
)

// NetworkWriter writes one root network with the subnetworks saved in sessions
type NetworkWriter struct {
	w    io.Writer
	root *types.RootNetwork
}

// NewNetworkWriter creates a writer for a root network document
func NewNetworkWriter(w io.Writer, root *types.RootNetwork) *NetworkWriter {
	return &NetworkWriter{w: w, root: root}
}

// Write encodes the document
func (nw *NetworkWriter) Write() error {
	base := nw.root.Base()
	doc := graphElem{
		ID:         int64(base.SUID),
		Label:      base.Name,
		Version:    DocumentVersion,
		SavePolicy: string(base.SavePolicy),
		Atts: []attElem{
			{Name: attSharedName, Value: base.Name, Type: "string"},
		},
	}

	names := make(map[types.SUID]string, len(base.Nodes))
	for _, n := range base.Nodes {
		names[n.SUID] = n.Name
		doc.Nodes = append(doc.Nodes, nodeElem{ID: int64(n.SUID), Label: n.Name})
	}
	for _, e := range base.Edges {
		doc.Edges = append(doc.Edges, edgeElem{
			ID:       int64(e.SUID),
			Label:    fmt.Sprintf("%s (%s) %s", names[e.Source], e.Interaction, names[e.Target]),
			Source:   int64(e.Source),
			Target:   int64(e.Target),
			Directed: boolFlag(e.Directed),
			Atts:     []attElem{{Name: attInteraction, Value: e.Interaction, Type: "string"}},
		})
	}

	for _, sub := range nw.root.Subnetworks {
		if sub.SavePolicy != types.SavePolicySessionFile {
			continue
		}
		g := &graphElem{
			ID:         int64(sub.SUID),
			Label:      sub.Name,
			SavePolicy: string(sub.SavePolicy),
			Selected:   sub.Selected,
		}
		for _, n := range sub.Nodes {
			g.Nodes = append(g.Nodes, nodeElem{Ref: int64(n.SUID)})
		}
		for _, e := range sub.Edges {
			g.Edges = append(g.Edges, edgeElem{Ref: int64(e.SUID)})
		}
		doc.Atts = append(doc.Atts, attElem{Name: attSubnetwork, Graph: g})
	}

	return codec.EncodeXML(nw.w, &doc)
}

// ViewWriter writes one network view and the title of its visual style
type ViewWriter struct {
	w     io.Writer
	view  *types.NetworkView
	style string
}

// NewViewWriter creates a writer for a view document
func NewViewWriter(w io.Writer, view *types.NetworkView, style string) *ViewWriter {
	return &ViewWriter{w: w, view: view, style: style}
}

// Write encodes the document
func (vw *ViewWriter) Write() error {
	if vw.view.Network == nil {
		return fmt.Errorf("view %d has no network", vw.view.SUID)
	}

	doc := graphElem{
		ID:      int64(vw.view.SUID),
		Label:   vw.view.Title,
		Version: DocumentVersion,
		Network: int64(vw.view.Network.SUID),
		Style:   vw.style,
	}

	keys := make([]string, 0, len(vw.view.VisualProperties))
	for k := range vw.view.VisualProperties {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		doc.Atts = append(doc.Atts, attElem{Name: k, Value: vw.view.VisualProperties[k], Type: "string"})
	}

	suids := make([]types.SUID, 0, len(vw.view.NodePositions))
	for s := range vw.view.NodePositions {
		suids = append(suids, s)
	}
	sort.Slice(suids, func(i, j int) bool { return suids[i] < suids[j] })
	for _, s := range suids {
		p := vw.view.NodePositions[s]
		doc.Nodes = append(doc.Nodes, nodeElem{Ref: int64(s), Graphics: &graphicsElem{X: p.X, Y: p.Y}})
	}

	return codec.EncodeXML(vw.w, &doc)
}

// Factory creates XGMML writers for the archive writer
type Factory struct{}

// NewFactory creates an XGMML writer factory
func NewFactory() *Factory {
	return &Factory{}
}

// NetworkWriter returns a writer for a root network document
func (Factory) NetworkWriter(w io.Writer, root *types.RootNetwork) codec.Writer {
	return NewNetworkWriter(w, root)
}

// ViewWriter returns a writer for a view document
func (Factory) ViewWriter(w io.Writer, view *types.NetworkView, style string) codec.Writer {
	return NewViewWriter(w, view, style)
}
