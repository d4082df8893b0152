package registry

import (
	"fmt"
	"sync"

	"github.com/GriffinCanCode/netsession/internal/shared/types"
)

// PropertyRegistrar tracks registered property objects by name
type PropertyRegistrar struct {
	mu    sync.RWMutex
	props map[string]*types.Property // Protected by mu
	order []string                   // Protected by mu
}

// NewPropertyRegistrar creates an empty registrar
func NewPropertyRegistrar() *PropertyRegistrar {
	return &PropertyRegistrar{
		props: make(map[string]*types.Property),
	}
}

// ResolveKind tags a property from its payload when no kind was set
func ResolveKind(p *types.Property) types.PropertyKind {
	if p.Kind != "" {
		return p.Kind
	}
	switch {
	case p.Bookmarks != nil:
		return types.PropertyKindBookmarks
	case p.Values != nil:
		return types.PropertyKindProperties
	default:
		return types.PropertyKindUnsupported
	}
}

// Register adds or replaces a property. Its kind is resolved here, once.
func (r *PropertyRegistrar) Register(p *types.Property) error {
	if p == nil || p.Name == "" {
		return fmt.Errorf("property name is required")
	}
	p.Kind = ResolveKind(p)

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.props[p.Name]; !exists {
		r.order = append(r.order, p.Name)
	}
	r.props[p.Name] = p
	return nil
}

// Unregister removes a property by name
func (r *PropertyRegistrar) Unregister(name string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.props[name]; !exists {
		return false
	}
	delete(r.props, name)
	for i, n := range r.order {
		if n == name {
			r.order = append(r.order[:i:i], r.order[i+1:]...)
			break
		}
	}
	return true
}

// Property retrieves a property by name
func (r *PropertyRegistrar) Property(name string) (*types.Property, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	p, ok := r.props[name]
	return p, ok
}

// Properties returns every property in registration order
func (r *PropertyRegistrar) Properties() []*types.Property {
	r.mu.RLock()
	defer r.mu.RUnlock()

	props := make([]*types.Property, 0, len(r.order))
	for _, name := range r.order {
		props = append(props, r.props[name])
	}
	return props
}

// SessionProperties returns properties persisted with the session
func (r *PropertyRegistrar) SessionProperties() []*types.Property {
	var props []*types.Property
	for _, p := range r.Properties() {
		if p.SavePolicy.InSession() {
			props = append(props, p)
		}
	}
	return props
}

// UnregisterSessionProperties drops properties that belong to the session
// only, keeping config-dir ones. Returns how many were dropped.
func (r *PropertyRegistrar) UnregisterSessionProperties() int {
	var n int
	for _, p := range r.Properties() {
		if p.SavePolicy == types.PropertySaveSessionFile && r.Unregister(p.Name) {
			n++
		}
	}
	return n
}
