package registry

import (
	"sync"

	"github.com/GriffinCanCode/netsession/internal/shared/types"
)

// ViewManager tracks live network views
type ViewManager struct {
	mu    sync.RWMutex
	views map[types.SUID]*types.NetworkView // Protected by mu
	order []types.SUID                      // Protected by mu
}

// NewViewManager creates an empty view manager
func NewViewManager() *ViewManager {
	return &ViewManager{
		views: make(map[types.SUID]*types.NetworkView),
	}
}

// AddView registers a view
func (m *ViewManager) AddView(v *types.NetworkView) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, exists := m.views[v.SUID]; exists {
		return
	}
	m.views[v.SUID] = v
	m.order = append(m.order, v.SUID)
}

// DestroyView unregisters a view
func (m *ViewManager) DestroyView(suid types.SUID) bool {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, exists := m.views[suid]; !exists {
		return false
	}
	delete(m.views, suid)
	m.order = removeSUID(m.order, suid)
	return true
}

// View retrieves a view by SUID
func (m *ViewManager) View(suid types.SUID) (*types.NetworkView, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	v, ok := m.views[suid]
	return v, ok
}

// Views returns all views in registration order
func (m *ViewManager) Views() []*types.NetworkView {
	m.mu.RLock()
	defer m.mu.RUnlock()

	views := make([]*types.NetworkView, 0, len(m.order))
	for _, suid := range m.order {
		views = append(views, m.views[suid])
	}
	return views
}

// ViewsOf returns the views of one network in registration order
func (m *ViewManager) ViewsOf(networkSUID types.SUID) []*types.NetworkView {
	m.mu.RLock()
	defer m.mu.RUnlock()

	var views []*types.NetworkView
	for _, suid := range m.order {
		v := m.views[suid]
		if v.Network != nil && v.Network.SUID == networkSUID {
			views = append(views, v)
		}
	}
	return views
}

// Count returns the number of registered views
func (m *ViewManager) Count() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.views)
}
