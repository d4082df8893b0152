package registry

import (
	"sync"

	"github.com/GriffinCanCode/netsession/internal/shared/types"
)

// TableManager tracks every live table, global or network-bound
type TableManager struct {
	mu     sync.RWMutex
	tables map[types.SUID]*types.Table // Protected by mu
	global map[types.SUID]bool         // Protected by mu
	order  []types.SUID                // Protected by mu
}

// NewTableManager creates an empty table manager
func NewTableManager() *TableManager {
	return &TableManager{
		tables: make(map[types.SUID]*types.Table),
		global: make(map[types.SUID]bool),
	}
}

// AddTable registers a global table
func (m *TableManager) AddTable(t *types.Table) {
	m.add(t, true)
}

// AddNetworkTable registers a table owned by a network
func (m *TableManager) AddNetworkTable(t *types.Table) {
	m.add(t, false)
}

func (m *TableManager) add(t *types.Table, global bool) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, exists := m.tables[t.SUID]; !exists {
		m.order = append(m.order, t.SUID)
	}
	m.tables[t.SUID] = t
	if global {
		m.global[t.SUID] = true
	} else {
		delete(m.global, t.SUID)
	}
}

// Table retrieves a table by SUID
func (m *TableManager) Table(suid types.SUID) (*types.Table, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	t, ok := m.tables[suid]
	return t, ok
}

// Tables returns every table in registration order
func (m *TableManager) Tables() []*types.Table {
	m.mu.RLock()
	defer m.mu.RUnlock()

	tables := make([]*types.Table, 0, len(m.order))
	for _, suid := range m.order {
		tables = append(tables, m.tables[suid])
	}
	return tables
}

// GlobalTables returns tables not owned by any network
func (m *TableManager) GlobalTables() []*types.Table {
	m.mu.RLock()
	defer m.mu.RUnlock()

	var tables []*types.Table
	for _, suid := range m.order {
		if m.global[suid] {
			tables = append(tables, m.tables[suid])
		}
	}
	return tables
}

// DeleteTable unregisters a table
func (m *TableManager) DeleteTable(suid types.SUID) bool {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, exists := m.tables[suid]; !exists {
		return false
	}
	delete(m.tables, suid)
	delete(m.global, suid)
	m.order = removeSUID(m.order, suid)
	return true
}

// Reset drops every table
func (m *TableManager) Reset() {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.tables = make(map[types.SUID]*types.Table)
	m.global = make(map[types.SUID]bool)
	m.order = nil
}
