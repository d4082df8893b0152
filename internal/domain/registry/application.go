package registry

import (
	"sync"

	"github.com/GriffinCanCode/netsession/internal/shared/types"
)

// ApplicationManager holds the current and selected networks and views
type ApplicationManager struct {
	mu               sync.RWMutex
	currentNetwork   *types.Network       // Protected by mu
	currentView      *types.NetworkView   // Protected by mu
	selectedNetworks []*types.Network     // Protected by mu
	selectedViews    []*types.NetworkView // Protected by mu
}

// NewApplicationManager creates an application manager with nothing current
func NewApplicationManager() *ApplicationManager {
	return &ApplicationManager{}
}

// SetCurrentNetwork sets the current network; nil clears it
func (m *ApplicationManager) SetCurrentNetwork(n *types.Network) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.currentNetwork = n
}

// CurrentNetwork returns the current network or nil
func (m *ApplicationManager) CurrentNetwork() *types.Network {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.currentNetwork
}

// SetCurrentView sets the current view; nil clears it
func (m *ApplicationManager) SetCurrentView(v *types.NetworkView) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.currentView = v
}

// CurrentView returns the current view or nil
func (m *ApplicationManager) CurrentView() *types.NetworkView {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.currentView
}

// SetSelectedNetworks replaces the selected networks and syncs their flags
func (m *ApplicationManager) SetSelectedNetworks(networks []*types.Network) {
	m.mu.Lock()
	defer m.mu.Unlock()

	for _, n := range m.selectedNetworks {
		n.Selected = false
	}
	m.selectedNetworks = append([]*types.Network(nil), networks...)
	for _, n := range m.selectedNetworks {
		n.Selected = true
	}
}

// SelectedNetworks returns the selected networks
func (m *ApplicationManager) SelectedNetworks() []*types.Network {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return append([]*types.Network(nil), m.selectedNetworks...)
}

// SetSelectedViews replaces the selected views
func (m *ApplicationManager) SetSelectedViews(views []*types.NetworkView) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.selectedViews = append([]*types.NetworkView(nil), views...)
}

// SelectedViews returns the selected views
func (m *ApplicationManager) SelectedViews() []*types.NetworkView {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return append([]*types.NetworkView(nil), m.selectedViews...)
}

// Reset clears current and selected state
func (m *ApplicationManager) Reset() {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.currentNetwork = nil
	m.currentView = nil
	m.selectedNetworks = nil
	m.selectedViews = nil
}
