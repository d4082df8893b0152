package types

import (
	"github.com/GriffinCanCode/netsession/internal/shared/id"
)

// Point is a node location in view coordinates
type Point struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// NetworkView is a rendered view of a network
type NetworkView struct {
	SUID    SUID     `json:"suid"`
	Title   string   `json:"title"`
	Network *Network `json:"-"`
	// NodePositions is keyed by node SUID
	NodePositions map[SUID]Point `json:"node_positions"`
	// VisualProperties holds view-level overrides (background color, zoom...)
	VisualProperties map[string]string `json:"visual_properties"`
}

// NewNetworkView creates an empty view of the network
func NewNetworkView(network *Network) *NetworkView {
	return &NetworkView{
		SUID:             id.NextSUID(),
		Title:            network.Name,
		Network:          network,
		NodePositions:    make(map[SUID]Point),
		VisualProperties: make(map[string]string),
	}
}
