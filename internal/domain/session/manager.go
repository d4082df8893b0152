package session

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/GriffinCanCode/netsession/internal/domain/registry"
	"github.com/GriffinCanCode/netsession/internal/shared/id"
	"github.com/GriffinCanCode/netsession/internal/shared/types"
)

// ErrInvalidModel means a session refers to objects it does not contain.
// Apply rejects such a model before touching the workspace.
var ErrInvalidModel = errors.New("invalid session model")

// State is the lifecycle state of the manager
type State string

const (
	StateNoSession State = "no_session"
	StateLoaded    State = "session_loaded"
)

// Manager owns the current session and moves state between the live
// registries and immutable Session snapshots
type Manager struct {
	regs   *registry.Registries
	logger *zap.Logger

	// op serializes Capture, Apply and HandleSaved
	op sync.Mutex

	mu           sync.RWMutex
	state        State           // Protected by mu
	current      *types.Session  // Protected by mu
	sessionID    id.SessionID    // Protected by mu
	fileName     string          // Protected by mu
	bookmarks    *types.Property // Protected by mu
	lastSaved    *time.Time      // Protected by mu
	lastRestored *time.Time      // Protected by mu

	hooksMu   sync.RWMutex
	hooks     []Hook                     // Protected by hooksMu
	listeners map[id.ListenerID]Listener // Protected by hooksMu
	order     []id.ListenerID            // Protected by hooksMu
}

// NewManager creates a session manager over the given registries
func NewManager(regs *registry.Registries, logger *zap.Logger) *Manager {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Manager{
		regs:      regs,
		logger:    logger,
		state:     StateNoSession,
		listeners: make(map[id.ListenerID]Listener),
	}
}

// Registries returns the live registries
func (m *Manager) Registries() *registry.Registries {
	return m.regs
}

// RegisterHook adds a pre-save hook
func (m *Manager) RegisterHook(h Hook) {
	m.hooksMu.Lock()
	defer m.hooksMu.Unlock()
	m.hooks = append(m.hooks, h)
}

// AddListener subscribes to lifecycle events
func (m *Manager) AddListener(l Listener) id.ListenerID {
	lid := id.NewListenerID()

	m.hooksMu.Lock()
	defer m.hooksMu.Unlock()
	m.listeners[lid] = l
	m.order = append(m.order, lid)
	return lid
}

// RemoveListener unsubscribes a listener
func (m *Manager) RemoveListener(lid id.ListenerID) bool {
	m.hooksMu.Lock()
	defer m.hooksMu.Unlock()

	if _, ok := m.listeners[lid]; !ok {
		return false
	}
	delete(m.listeners, lid)
	for i, o := range m.order {
		if o == lid {
			m.order = append(m.order[:i:i], m.order[i+1:]...)
			break
		}
	}
	return true
}

// AddProperty registers a session-scoped property. A bookmarks property
// takes the bookmarks slot.
func (m *Manager) AddProperty(p *types.Property) error {
	if err := m.regs.Properties.Register(p); err != nil {
		return err
	}
	if p.Kind == types.PropertyKindBookmarks {
		m.mu.Lock()
		m.bookmarks = p
		m.mu.Unlock()
	}
	return nil
}

// RemoveProperty unregisters a property by name
func (m *Manager) RemoveProperty(name string) bool {
	removed := m.regs.Properties.Unregister(name)

	m.mu.Lock()
	if m.bookmarks != nil && m.bookmarks.Name == name {
		m.bookmarks = nil
	}
	m.mu.Unlock()
	return removed
}

// Bookmarks returns the property in the bookmarks slot, if any
func (m *Manager) Bookmarks() (*types.Property, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.bookmarks, m.bookmarks != nil
}

// Capture builds a snapshot of the live workspace. Registered hooks run
// first and may attach app files.
func (m *Manager) Capture(ctx context.Context) (*types.Session, error) {
	m.op.Lock()
	defer m.op.Unlock()

	sc := newSaveContext()
	m.hooksMu.RLock()
	hooks := append([]Hook(nil), m.hooks...)
	m.hooksMu.RUnlock()
	for _, h := range hooks {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		if err := h.BeforeSave(ctx, sc); err != nil {
			return nil, fmt.Errorf("pre-save hook failed: %w", err)
		}
	}

	networks := m.networkClosure()
	saved := make(map[types.SUID]bool, len(networks))
	for _, n := range networks {
		saved[n.SUID] = true
	}

	var views []*types.NetworkView
	viewStyles := make(map[types.SUID]string)
	for _, v := range m.regs.Views.Views() {
		if v.Network == nil || !saved[v.Network.SUID] {
			continue
		}
		views = append(views, v)
		viewStyles[v.SUID] = m.regs.Styles.ViewStyle(v.SUID).Title
	}

	model := types.NewSessionBuilder().
		Networks(networks...).
		NetworkViews(views...).
		Tables(m.tableMetadata(networks)...).
		VisualStyles(m.regs.Styles.Styles()...).
		ViewStyles(viewStyles).
		Properties(m.regs.Properties.SessionProperties()...).
		AppFiles(sc.Files()).
		Build()

	m.logger.Debug("Captured session",
		zap.Int("networks", len(networks)),
		zap.Int("views", len(views)),
		zap.Int("tables", len(model.Tables())))
	return model, nil
}

// networkClosure returns the session-file networks followed by their roots
func (m *Manager) networkClosure() []*types.Network {
	var out []*types.Network
	seen := make(map[types.SUID]bool)

	for _, n := range m.regs.Networks.Networks() {
		if n.SavePolicy != types.SavePolicySessionFile || seen[n.SUID] {
			continue
		}
		seen[n.SUID] = true
		out = append(out, n)
	}
	for _, n := range append([]*types.Network(nil), out...) {
		root := registry.RootNetwork(n)
		if root == nil || root.SavePolicy != types.SavePolicySessionFile || seen[root.SUID] {
			continue
		}
		seen[root.SUID] = true
		out = append(out, root.Base())
	}
	return out
}

// tableMetadata covers every session-file table bound to a network of the
// closure plus global session-file tables
func (m *Manager) tableMetadata(networks []*types.Network) []types.TableMetadata {
	var out []types.TableMetadata
	covered := make(map[types.SUID]bool)

	for _, n := range networks {
		for _, typ := range types.IdentifiableTypes {
			bound := m.regs.NetworkTables.Tables(n, typ)
			namespaces := make([]string, 0, len(bound))
			for ns := range bound {
				namespaces = append(namespaces, ns)
			}
			sort.Strings(namespaces)

			for _, ns := range namespaces {
				t := bound[ns]
				if t.SavePolicy != types.SavePolicySessionFile || covered[t.SUID] {
					continue
				}
				covered[t.SUID] = true
				out = append(out, types.TableMetadata{Table: t, Network: n, Namespace: ns, Type: typ})
			}
		}
	}

	for _, t := range m.regs.Tables.GlobalTables() {
		if t.SavePolicy != types.SavePolicySessionFile || covered[t.SUID] {
			continue
		}
		covered[t.SUID] = true
		out = append(out, types.TableMetadata{Table: t})
	}
	return out
}

// Apply replaces the live workspace with model. A nil model starts a fresh
// session that keeps the default style and non-session properties. The
// loaded event fires last.
func (m *Manager) Apply(ctx context.Context, model *types.Session, fileName string) error {
	if model != nil {
		if err := validate(model); err != nil {
			return err
		}
	}

	m.op.Lock()
	if err := ctx.Err(); err != nil {
		m.op.Unlock()
		return err
	}

	m.teardown()
	if model == nil {
		model = types.NewSessionBuilder().
			VisualStyles(m.regs.Styles.Styles()...).
			Properties(m.regs.Properties.SessionProperties()...).
			Build()
	} else if err := m.restore(model); err != nil {
		m.op.Unlock()
		return fmt.Errorf("failed to restore session: %w", err)
	}

	now := time.Now()
	sid := id.NewSessionID()
	m.mu.Lock()
	m.state = StateLoaded
	m.current = model
	m.sessionID = sid
	m.fileName = fileName
	m.lastRestored = &now
	m.mu.Unlock()
	m.op.Unlock()

	m.logger.Info("Session loaded",
		zap.String("session_id", sid.String()),
		zap.String("file", fileName))
	m.fire(Event{Type: EventLoaded, SessionID: sid, FileName: fileName, Time: now, Metadata: model.ToMetadata()})
	return nil
}

// HandleSaved records that model was written to fileName. The live
// workspace is not touched.
func (m *Manager) HandleSaved(model *types.Session, fileName string) {
	m.op.Lock()
	now := time.Now()
	m.mu.Lock()
	if m.sessionID == "" || m.current == nil {
		m.sessionID = id.NewSessionID()
	}
	sid := m.sessionID
	m.state = StateLoaded
	m.current = model
	m.fileName = fileName
	m.lastSaved = &now
	m.mu.Unlock()
	m.op.Unlock()

	meta := types.SessionMetadata{}
	if model != nil {
		meta = model.ToMetadata()
	}
	meta.FileName = fileName
	m.fire(Event{Type: EventSaved, SessionID: sid, FileName: fileName, Time: now, Metadata: meta})
}

// teardown empties the workspace: views, networks, non-default styles,
// tables, session properties, undo history and the current selection
func (m *Manager) teardown() {
	for _, v := range m.regs.Views.Views() {
		m.regs.DestroyView(v)
	}
	for _, n := range m.regs.Networks.Networks() {
		m.regs.DestroyNetwork(n)
	}
	removed := m.regs.Styles.RemoveNonDefault()
	m.regs.Tables.Reset()
	m.regs.NetworkTables.Reset()
	dropped := m.regs.Properties.UnregisterSessionProperties()

	m.mu.Lock()
	if m.bookmarks != nil {
		if _, ok := m.regs.Properties.Property(m.bookmarks.Name); !ok {
			m.bookmarks = nil
		}
	}
	m.mu.Unlock()

	m.regs.Undo.Reset()
	m.regs.Application.Reset()

	m.logger.Debug("Disposed current session",
		zap.Int("styles_removed", removed),
		zap.Int("properties_dropped", dropped))
}

// restore repopulates the emptied registries from model
func (m *Manager) restore(model *types.Session) error {
	for _, p := range model.Properties() {
		if err := m.AddProperty(p); err != nil {
			return err
		}
	}

	var selected []*types.Network
	for _, n := range model.Networks() {
		if n.IsRoot() {
			continue
		}
		if n.Selected {
			selected = append(selected, n)
		}
		if err := m.regs.AddNetwork(n); err != nil {
			return err
		}
	}

	var selectedViews []*types.NetworkView
	for _, v := range model.NetworkViews() {
		m.regs.Views.AddView(v)
		if v.Network.Selected {
			selectedViews = append(selectedViews, v)
		}
	}
	m.regs.Application.SetSelectedViews(selectedViews)

	for _, meta := range model.Tables() {
		m.restoreTable(meta)
	}

	for _, s := range model.VisualStyles() {
		m.regs.Styles.AddStyle(s)
	}
	for viewSUID, title := range model.ViewStyles() {
		if _, ok := m.regs.Views.View(viewSUID); !ok {
			continue
		}
		if err := m.regs.Styles.SetViewStyle(viewSUID, title); err != nil {
			_ = m.regs.Styles.SetViewStyle(viewSUID, types.DefaultStyleTitle)
		}
	}

	if len(selected) > 0 {
		cur := selected[0]
		m.regs.Application.SetCurrentNetwork(cur)
		var curView *types.NetworkView
		if views := m.regs.Views.ViewsOf(cur.SUID); len(views) > 0 {
			curView = views[0]
		}
		m.regs.Application.SetCurrentView(curView)
		m.regs.Application.SetSelectedNetworks(selected)
	}
	return nil
}

// restoreTable registers a persisted table. A network table replaces the
// default one created for the same binding.
func (m *Manager) restoreTable(meta types.TableMetadata) {
	t := meta.Table
	if meta.IsGlobal() {
		if _, ok := m.regs.Tables.Table(t.SUID); !ok {
			m.regs.Tables.AddTable(t)
		}
		return
	}

	if old, ok := m.regs.NetworkTables.Table(meta.Network, meta.Type, meta.Namespace); ok {
		if old.SUID == t.SUID {
			return
		}
		m.regs.Tables.DeleteTable(old.SUID)
	}
	m.regs.AddNetworkTable(meta.Network, meta.Type, meta.Namespace, t)
}

// validate checks that a model only refers to objects it contains
func validate(model *types.Session) error {
	networks := make(map[types.SUID]bool)
	for _, n := range model.Networks() {
		networks[n.SUID] = true
	}

	views := make(map[types.SUID]bool)
	for _, v := range model.NetworkViews() {
		if v.Network == nil {
			return fmt.Errorf("%w: view %d has no network", ErrInvalidModel, v.SUID)
		}
		if !networks[v.Network.SUID] {
			return fmt.Errorf("%w: view %d refers to network %d outside the session", ErrInvalidModel, v.SUID, v.Network.SUID)
		}
		views[v.SUID] = true
	}

	for _, meta := range model.Tables() {
		if !meta.IsGlobal() && !networks[meta.Network.SUID] {
			return fmt.Errorf("%w: table %q refers to network %d outside the session", ErrInvalidModel, meta.Table.Title, meta.Network.SUID)
		}
	}

	for viewSUID := range model.ViewStyles() {
		if !views[viewSUID] {
			return fmt.Errorf("%w: style assigned to unknown view %d", ErrInvalidModel, viewSUID)
		}
	}
	return nil
}

func (m *Manager) fire(e Event) {
	m.hooksMu.RLock()
	listeners := make([]Listener, 0, len(m.order))
	for _, lid := range m.order {
		listeners = append(listeners, m.listeners[lid])
	}
	m.hooksMu.RUnlock()

	for _, l := range listeners {
		l(e)
	}
}

// CurrentSession returns the tracked session, nil before the first load
func (m *Manager) CurrentSession() *types.Session {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.current
}

// CurrentFileName returns the file the current session was read from or
// saved to
func (m *Manager) CurrentFileName() string {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.fileName
}

// SessionID returns the ID of the tracked session
func (m *Manager) SessionID() id.SessionID {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.sessionID
}

// State returns the lifecycle state
func (m *Manager) State() State {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.state
}

// Stats returns manager statistics
func (m *Manager) Stats() types.SessionStats {
	m.hooksMu.RLock()
	hooks, listeners := len(m.hooks), len(m.listeners)
	m.hooksMu.RUnlock()

	m.mu.RLock()
	defer m.mu.RUnlock()
	return types.SessionStats{
		State:        string(m.state),
		FileName:     m.fileName,
		LastSaved:    m.lastSaved,
		LastRestored: m.lastRestored,
		Hooks:        hooks,
		Listeners:    listeners,
	}
}
