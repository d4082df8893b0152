package registry

import (
	"sync"

	"github.com/GriffinCanCode/netsession/internal/shared/types"
)

// NetworkManager tracks the live networks of the workspace.
// Only subnetworks are registered; roots are reached through RootNetwork.
type NetworkManager struct {
	mu       sync.RWMutex
	networks map[types.SUID]*types.Network // Protected by mu
	order    []types.SUID                  // Protected by mu
}

// NewNetworkManager creates an empty network manager
func NewNetworkManager() *NetworkManager {
	return &NetworkManager{
		networks: make(map[types.SUID]*types.Network),
	}
}

// AddNetwork registers a network; adding it twice is a no-op
func (m *NetworkManager) AddNetwork(n *types.Network) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, exists := m.networks[n.SUID]; exists {
		return
	}
	m.networks[n.SUID] = n
	m.order = append(m.order, n.SUID)
}

// DestroyNetwork unregisters a network
func (m *NetworkManager) DestroyNetwork(suid types.SUID) bool {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, exists := m.networks[suid]; !exists {
		return false
	}
	delete(m.networks, suid)
	m.order = removeSUID(m.order, suid)
	return true
}

// Network retrieves a network by SUID
func (m *NetworkManager) Network(suid types.SUID) (*types.Network, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	n, ok := m.networks[suid]
	return n, ok
}

// Networks returns all networks in registration order
func (m *NetworkManager) Networks() []*types.Network {
	m.mu.RLock()
	defer m.mu.RUnlock()

	networks := make([]*types.Network, 0, len(m.order))
	for _, suid := range m.order {
		networks = append(networks, m.networks[suid])
	}
	return networks
}

// Count returns the number of registered networks
func (m *NetworkManager) Count() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.networks)
}

// RootNetwork resolves the root of a network, nil for a detached network
func RootNetwork(n *types.Network) *types.RootNetwork {
	return n.Root
}

// EnsureRoot gives a detached network a fresh root holding its nodes and edges
func EnsureRoot(n *types.Network) *types.RootNetwork {
	if n.Root != nil {
		return n.Root
	}
	root := types.NewRootNetwork(n.Name)
	root.Nodes = append(root.Nodes, n.Nodes...)
	root.Edges = append(root.Edges, n.Edges...)
	root.AttachSubnetwork(n)
	return root
}

// RootResolver adapts RootNetwork to the archive writer's resolver interface
type RootResolver struct{}

// RootNetwork resolves the root of a network
func (RootResolver) RootNetwork(n *types.Network) *types.RootNetwork {
	return RootNetwork(n)
}

// NetworkTableManager associates tables with the network objects they describe
type NetworkTableManager struct {
	mu     sync.RWMutex
	tables map[types.SUID]map[types.IdentifiableType]map[string]*types.Table // Protected by mu
}

// NewNetworkTableManager creates an empty network table manager
func NewNetworkTableManager() *NetworkTableManager {
	return &NetworkTableManager{
		tables: make(map[types.SUID]map[types.IdentifiableType]map[string]*types.Table),
	}
}

// SetTable binds a table to a network under a type and namespace
func (m *NetworkTableManager) SetTable(n *types.Network, typ types.IdentifiableType, namespace string, t *types.Table) {
	m.mu.Lock()
	defer m.mu.Unlock()

	byType, ok := m.tables[n.SUID]
	if !ok {
		byType = make(map[types.IdentifiableType]map[string]*types.Table)
		m.tables[n.SUID] = byType
	}
	byNS, ok := byType[typ]
	if !ok {
		byNS = make(map[string]*types.Table)
		byType[typ] = byNS
	}
	byNS[namespace] = t
}

// Table returns the table bound under a type and namespace
func (m *NetworkTableManager) Table(n *types.Network, typ types.IdentifiableType, namespace string) (*types.Table, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	t, ok := m.tables[n.SUID][typ][namespace]
	return t, ok
}

// Tables returns namespace -> table for one network and type
func (m *NetworkTableManager) Tables(n *types.Network, typ types.IdentifiableType) map[string]*types.Table {
	m.mu.RLock()
	defer m.mu.RUnlock()

	src := m.tables[n.SUID][typ]
	out := make(map[string]*types.Table, len(src))
	for ns, t := range src {
		out[ns] = t
	}
	return out
}

// Owner finds the network, type and namespace a table is bound to
func (m *NetworkTableManager) Owner(tableSUID types.SUID) (networkSUID types.SUID, typ types.IdentifiableType, namespace string, ok bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	for netSUID, byType := range m.tables {
		for t, byNS := range byType {
			for ns, table := range byNS {
				if table.SUID == tableSUID {
					return netSUID, t, ns, true
				}
			}
		}
	}
	return 0, types.IdentifiableNone, "", false
}

// RemoveTables drops every table binding of a network
func (m *NetworkTableManager) RemoveTables(n *types.Network) {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.tables, n.SUID)
}

// Reset drops every binding
func (m *NetworkTableManager) Reset() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.tables = make(map[types.SUID]map[types.IdentifiableType]map[string]*types.Table)
}

func removeSUID(list []types.SUID, suid types.SUID) []types.SUID {
	for i, s := range list {
		if s == suid {
			return append(list[:i:i], list[i+1:]...)
		}
	}
	return list
}
