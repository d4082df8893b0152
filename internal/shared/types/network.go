package types

import (
	"github.com/GriffinCanCode/netsession/internal/shared/id"
)

// SUID is the session-unique identifier carried by every persistable object
type SUID = id.SUID

// SavePolicy decides whether an object is written with the session
type SavePolicy string

const (
	SavePolicyDoNotSave   SavePolicy = "do_not_save"
	SavePolicySessionFile SavePolicy = "session_file"
)

// Node is a network node
type Node struct {
	SUID SUID   `json:"suid"`
	Name string `json:"name"`
}

// Edge connects two nodes of the same root network
type Edge struct {
	SUID        SUID   `json:"suid"`
	Source      SUID   `json:"source"`
	Target      SUID   `json:"target"`
	Interaction string `json:"interaction,omitempty"`
	Directed    bool   `json:"directed"`
}

// Network is a graph of nodes and edges. Subnetworks point at their root;
// a root network's base Network points at the root itself.
type Network struct {
	SUID       SUID       `json:"suid"`
	Name       string     `json:"name"`
	SavePolicy SavePolicy `json:"save_policy"`
	// Selected mirrors the "selected" column of the default network table
	Selected bool         `json:"selected"`
	Nodes    []*Node      `json:"nodes"`
	Edges    []*Edge      `json:"edges"`
	Root     *RootNetwork `json:"-"`
}

// RootNetwork owns one or more subnetworks sharing its node and edge namespace.
// The embedded Network holds every node and edge of the root.
type RootNetwork struct {
	Network
	Subnetworks []*Network `json:"subnetworks"`
}

// NewRootNetwork creates an empty root network persisted with the session
func NewRootNetwork(name string) *RootNetwork {
	r := &RootNetwork{
		Network: Network{
			SUID:       id.NextSUID(),
			Name:       name,
			SavePolicy: SavePolicySessionFile,
		},
	}
	r.Network.Root = r
	return r
}

// Base returns the root's own network, used as the owner of shared tables
func (r *RootNetwork) Base() *Network {
	return &r.Network
}

// AddSubnetwork creates a subnetwork of the root
func (r *RootNetwork) AddSubnetwork(name string) *Network {
	n := &Network{
		SUID:       id.NextSUID(),
		Name:       name,
		SavePolicy: SavePolicySessionFile,
	}
	r.AttachSubnetwork(n)
	return n
}

// AttachSubnetwork links an existing network to the root, keeping its SUID
func (r *RootNetwork) AttachSubnetwork(n *Network) {
	n.Root = r
	r.Subnetworks = append(r.Subnetworks, n)
}

// Subnetwork finds a subnetwork by SUID
func (r *RootNetwork) Subnetwork(suid SUID) (*Network, bool) {
	for _, n := range r.Subnetworks {
		if n.SUID == suid {
			return n, true
		}
	}
	return nil, false
}

// IsRoot reports whether n is the base network of a root
func (n *Network) IsRoot() bool {
	return n.Root != nil && &n.Root.Network == n
}

// AddNode creates a node in the network and registers it with the root
func (n *Network) AddNode(name string) *Node {
	node := &Node{SUID: id.NextSUID(), Name: name}
	n.Nodes = append(n.Nodes, node)
	if n.Root != nil && !n.IsRoot() {
		n.Root.Nodes = append(n.Root.Nodes, node)
	}
	return node
}

// AddEdge creates an edge between two nodes and registers it with the root
func (n *Network) AddEdge(source, target *Node, interaction string, directed bool) *Edge {
	edge := &Edge{
		SUID:        id.NextSUID(),
		Source:      source.SUID,
		Target:      target.SUID,
		Interaction: interaction,
		Directed:    directed,
	}
	n.Edges = append(n.Edges, edge)
	if n.Root != nil && !n.IsRoot() {
		n.Root.Edges = append(n.Root.Edges, edge)
	}
	return edge
}

// Node finds a node by SUID
func (n *Network) Node(suid SUID) (*Node, bool) {
	for _, node := range n.Nodes {
		if node.SUID == suid {
			return node, true
		}
	}
	return nil, false
}

// Edge finds an edge by SUID
func (n *Network) Edge(suid SUID) (*Edge, bool) {
	for _, edge := range n.Edges {
		if edge.SUID == suid {
			return edge, true
		}
	}
	return nil, false
}
