package archive

import (
	"errors"
	"io"

	"github.com/GriffinCanCode/netsession/internal/io/codec"
	"github.com/GriffinCanCode/netsession/internal/io/cytable"
	"github.com/GriffinCanCode/netsession/internal/io/props"
	"github.com/GriffinCanCode/netsession/internal/io/vizmap"
	"github.com/GriffinCanCode/netsession/internal/io/xgmml"
	"github.com/GriffinCanCode/netsession/internal/shared/types"
)

// Sentinel errors
var (
	// ErrNoWriter means no writer exists for a content type; the write aborts
	ErrNoWriter = errors.New("no writer available")
	// ErrNotSessionArchive means the input is not a zip archive
	ErrNotSessionArchive = errors.New("not a session archive")
	// ErrMissingVersion means the archive has no version marker entry
	ErrMissingVersion = errors.New("session archive has no version marker")
)

// NetworkViewWriterFactory creates network and view document writers
type NetworkViewWriterFactory interface {
	NetworkWriter(w io.Writer, root *types.RootNetwork) codec.Writer
	ViewWriter(w io.Writer, view *types.NetworkView, style string) codec.Writer
}

// TableWriterManager creates table writers
type TableWriterManager interface {
	TableWriter(w io.Writer, table *types.Table) codec.Writer
}

// PropertyWriterManager creates property writers; nil means unsupported
type PropertyWriterManager interface {
	PropertyWriter(w io.Writer, p *types.Property) codec.Writer
}

// VizmapWriterManager creates the visual style document writer
type VizmapWriterManager interface {
	VizmapWriter(w io.Writer, styles []*types.VisualStyle) codec.Writer
}

// RootNetworkResolver maps a network to its root
type RootNetworkResolver interface {
	RootNetwork(n *types.Network) *types.RootNetwork
}

// Collaborators are the format writers the archive writer drives
type Collaborators struct {
	Networks   NetworkViewWriterFactory
	Tables     TableWriterManager
	Properties PropertyWriterManager
	Vizmap     VizmapWriterManager
	Roots      RootNetworkResolver
}

// DefaultCollaborators wires the built-in formats
func DefaultCollaborators() Collaborators {
	return Collaborators{
		Networks:   xgmml.NewFactory(),
		Tables:     cytable.NewManager(),
		Properties: props.NewManager(),
		Vizmap:     vizmap.NewManager(),
		Roots:      ownRoot{},
	}
}

// ownRoot resolves a network through its Root link
type ownRoot struct{}

func (ownRoot) RootNetwork(n *types.Network) *types.RootNetwork {
	return n.Root
}

// TaskMonitor receives progress in [0, 1] and status text
type TaskMonitor interface {
	SetProgress(progress float64)
	SetStatus(message string)
}

// NopMonitor discards progress
type NopMonitor struct{}

func (NopMonitor) SetProgress(float64) {}
func (NopMonitor) SetStatus(string)    {}

// MonitorFunc adapts a function receiving both values to TaskMonitor
type MonitorFunc func(progress float64, status string)

// SetProgress reports progress with no status
func (f MonitorFunc) SetProgress(progress float64) { f(progress, "") }

// SetStatus reports a status with progress -1
func (f MonitorFunc) SetStatus(message string) { f(-1, message) }
