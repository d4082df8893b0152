package registry

import (
	"errors"
	"fmt"
	"sync"

	"github.com/GriffinCanCode/netsession/internal/shared/types"
)

// ErrDefaultStyle is returned when removing the default style
var ErrDefaultStyle = errors.New("the default style cannot be removed")

// StyleManager tracks visual styles and which style each view uses.
// The default style always exists.
type StyleManager struct {
	mu         sync.RWMutex
	styles     map[string]*types.VisualStyle // Protected by mu
	order      []string                      // Protected by mu
	viewStyles map[types.SUID]string         // Protected by mu
	defaultSty *types.VisualStyle
}

// NewStyleManager creates a style manager holding only the default style
func NewStyleManager() *StyleManager {
	def := types.NewVisualStyle(types.DefaultStyleTitle)
	def.Defaults["NODE_FILL_COLOR"] = "#89D0F5"
	def.Defaults["NODE_SHAPE"] = "ROUND_RECTANGLE"
	def.Defaults["EDGE_STROKE_UNSELECTED_PAINT"] = "#848484"
	def.Defaults["NETWORK_BACKGROUND_PAINT"] = "#FFFFFF"

	return &StyleManager{
		styles:     map[string]*types.VisualStyle{def.Title: def},
		order:      []string{def.Title},
		viewStyles: make(map[types.SUID]string),
		defaultSty: def,
	}
}

// DefaultStyle returns the style every workspace keeps
func (m *StyleManager) DefaultStyle() *types.VisualStyle {
	return m.defaultSty
}

// AddStyle registers a style. A style with the same title replaces the
// previous one, except for the default style which is kept.
func (m *StyleManager) AddStyle(s *types.VisualStyle) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if s.Title == m.defaultSty.Title {
		return
	}
	if _, exists := m.styles[s.Title]; !exists {
		m.order = append(m.order, s.Title)
	}
	m.styles[s.Title] = s
}

// RemoveStyle unregisters a style; views using it fall back to the default
func (m *StyleManager) RemoveStyle(title string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if title == m.defaultSty.Title {
		return ErrDefaultStyle
	}
	if _, exists := m.styles[title]; !exists {
		return fmt.Errorf("style %q not found", title)
	}
	m.removeLocked(title)
	return nil
}

func (m *StyleManager) removeLocked(title string) {
	delete(m.styles, title)
	for i, t := range m.order {
		if t == title {
			m.order = append(m.order[:i:i], m.order[i+1:]...)
			break
		}
	}
	for view, t := range m.viewStyles {
		if t == title {
			delete(m.viewStyles, view)
		}
	}
}

// RemoveNonDefault drops every style but the default and all view assignments
func (m *StyleManager) RemoveNonDefault() int {
	m.mu.Lock()
	defer m.mu.Unlock()

	removed := len(m.styles) - 1
	m.styles = map[string]*types.VisualStyle{m.defaultSty.Title: m.defaultSty}
	m.order = []string{m.defaultSty.Title}
	m.viewStyles = make(map[types.SUID]string)
	return removed
}

// Style retrieves a style by title
func (m *StyleManager) Style(title string) (*types.VisualStyle, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	s, ok := m.styles[title]
	return s, ok
}

// Styles returns every style in registration order, default first
func (m *StyleManager) Styles() []*types.VisualStyle {
	m.mu.RLock()
	defer m.mu.RUnlock()

	styles := make([]*types.VisualStyle, 0, len(m.order))
	for _, title := range m.order {
		styles = append(styles, m.styles[title])
	}
	return styles
}

// SetViewStyle assigns a registered style to a view
func (m *StyleManager) SetViewStyle(viewSUID types.SUID, title string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, exists := m.styles[title]; !exists {
		return fmt.Errorf("style %q not found", title)
	}
	m.viewStyles[viewSUID] = title
	return nil
}

// ViewStyle returns the style of a view, the default style when unassigned
func (m *StyleManager) ViewStyle(viewSUID types.SUID) *types.VisualStyle {
	m.mu.RLock()
	defer m.mu.RUnlock()

	if title, ok := m.viewStyles[viewSUID]; ok {
		if s, ok := m.styles[title]; ok {
			return s
		}
	}
	return m.defaultSty
}

// ClearViewStyle drops a view's style assignment
func (m *StyleManager) ClearViewStyle(viewSUID types.SUID) {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.viewStyles, viewSUID)
}
