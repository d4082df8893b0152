package xgmml

import (
	"fmt"
	"io"

	"github.com/GriffinCanCode/netsession/internal/io/codec"
	"github.com/GriffinCanCode/netsession/internal/shared/id"
	"github.com/GriffinCanCode/netsession/internal/shared/types"
)

// ViewDocument is a parsed view. The view's Network is unset; NetworkSUID
// names the network it must be attached to.
type ViewDocument struct {
	View        *types.NetworkView
	NetworkSUID types.SUID
	Style       string
}

// ReadNetwork parses a root network document. Persisted SUIDs are kept and
// the SUID counter is advanced past them.
func ReadNetwork(r io.Reader) (*types.RootNetwork, error) {
	var doc graphElem
	if err := codec.DecodeXML(r, &doc); err != nil {
		return nil, err
	}
	if doc.ID == 0 {
		return nil, fmt.Errorf("graph has no id")
	}

	root := &types.RootNetwork{
		Network: types.Network{
			SUID:       observe(doc.ID),
			Name:       doc.Label,
			SavePolicy: savePolicy(doc.SavePolicy),
		},
	}
	root.Network.Root = root

	nodes := make(map[types.SUID]*types.Node, len(doc.Nodes))
	for _, ne := range doc.Nodes {
		if ne.ID == 0 {
			return nil, fmt.Errorf("graph %d: node without id", doc.ID)
		}
		n := &types.Node{SUID: observe(ne.ID), Name: ne.Label}
		nodes[n.SUID] = n
		root.Nodes = append(root.Nodes, n)
	}

	edges := make(map[types.SUID]*types.Edge, len(doc.Edges))
	for _, ee := range doc.Edges {
		if ee.ID == 0 {
			return nil, fmt.Errorf("graph %d: edge without id", doc.ID)
		}
		src, tgt := types.SUID(ee.Source), types.SUID(ee.Target)
		if nodes[src] == nil || nodes[tgt] == nil {
			return nil, fmt.Errorf("graph %d: edge %d references unknown node", doc.ID, ee.ID)
		}
		e := &types.Edge{
			SUID:     observe(ee.ID),
			Source:   src,
			Target:   tgt,
			Directed: ee.Directed == "1" || ee.Directed == "true",
		}
		for _, att := range ee.Atts {
			if att.Name == attInteraction {
				e.Interaction = att.Value
			}
		}
		edges[e.SUID] = e
		root.Edges = append(root.Edges, e)
	}

	for _, att := range doc.Atts {
		if att.Name != attSubnetwork || att.Graph == nil {
			continue
		}
		g := att.Graph
		// files from other writers may still list unsaved subnetworks
		if savePolicy(g.SavePolicy) == types.SavePolicyDoNotSave {
			continue
		}
		sub := &types.Network{
			SUID:       observe(g.ID),
			Name:       g.Label,
			SavePolicy: savePolicy(g.SavePolicy),
			Selected:   g.Selected,
		}
		for _, ne := range g.Nodes {
			n, ok := nodes[types.SUID(ne.Ref)]
			if !ok {
				return nil, fmt.Errorf("subnetwork %d references unknown node %d", g.ID, ne.Ref)
			}
			sub.Nodes = append(sub.Nodes, n)
		}
		for _, ee := range g.Edges {
			e, ok := edges[types.SUID(ee.Ref)]
			if !ok {
				return nil, fmt.Errorf("subnetwork %d references unknown edge %d", g.ID, ee.Ref)
			}
			sub.Edges = append(sub.Edges, e)
		}
		root.AttachSubnetwork(sub)
	}

	return root, nil
}

// ReadView parses a view document
func ReadView(r io.Reader) (*ViewDocument, error) {
	var doc graphElem
	if err := codec.DecodeXML(r, &doc); err != nil {
		return nil, err
	}
	if doc.ID == 0 || doc.Network == 0 {
		return nil, fmt.Errorf("view document is missing its id or network")
	}

	view := &types.NetworkView{
		SUID:             observe(doc.ID),
		Title:            doc.Label,
		NodePositions:    make(map[types.SUID]types.Point, len(doc.Nodes)),
		VisualProperties: make(map[string]string, len(doc.Atts)),
	}
	for _, att := range doc.Atts {
		view.VisualProperties[att.Name] = att.Value
	}
	for _, ne := range doc.Nodes {
		if ne.Graphics == nil {
			continue
		}
		view.NodePositions[types.SUID(ne.Ref)] = types.Point{X: ne.Graphics.X, Y: ne.Graphics.Y}
	}

	return &ViewDocument{
		View:        view,
		NetworkSUID: types.SUID(doc.Network),
		Style:       doc.Style,
	}, nil
}

func observe(raw int64) types.SUID {
	s := types.SUID(raw)
	id.ObserveSUID(s)
	return s
}

func savePolicy(raw string) types.SavePolicy {
	if raw == string(types.SavePolicyDoNotSave) {
		return types.SavePolicyDoNotSave
	}
	return types.SavePolicySessionFile
}
