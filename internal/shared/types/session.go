package types

import (
	"sort"
	"time"
)

// AppFile is a file contributed to a session by an installed app
type AppFile struct {
	Name string `json:"name"`
	Path string `json:"path"`
}

// Session is an immutable snapshot of everything persisted with a workspace.
// Build it with SessionBuilder; accessors return copies.
type Session struct {
	networks   []*Network
	views      []*NetworkView
	tables     []TableMetadata
	styles     []*VisualStyle
	viewStyles map[SUID]string
	appFiles   map[string][]AppFile
	properties []*Property
	createdAt  time.Time
}

// Networks returns the networks of the session
func (s *Session) Networks() []*Network {
	return append([]*Network(nil), s.networks...)
}

// NetworkViews returns the network views of the session
func (s *Session) NetworkViews() []*NetworkView {
	return append([]*NetworkView(nil), s.views...)
}

// Tables returns the persisted table metadata
func (s *Session) Tables() []TableMetadata {
	return append([]TableMetadata(nil), s.tables...)
}

// VisualStyles returns all visual styles
func (s *Session) VisualStyles() []*VisualStyle {
	return append([]*VisualStyle(nil), s.styles...)
}

// ViewStyles returns view SUID -> assigned style title
func (s *Session) ViewStyles() map[SUID]string {
	out := make(map[SUID]string, len(s.viewStyles))
	for k, v := range s.viewStyles {
		out[k] = v
	}
	return out
}

// AppFiles returns app name -> contributed files
func (s *Session) AppFiles() map[string][]AppFile {
	out := make(map[string][]AppFile, len(s.appFiles))
	for app, files := range s.appFiles {
		out[app] = append([]AppFile(nil), files...)
	}
	return out
}

// AppNames returns the contributing app names in sorted order
func (s *Session) AppNames() []string {
	names := make([]string, 0, len(s.appFiles))
	for app := range s.appFiles {
		names = append(names, app)
	}
	sort.Strings(names)
	return names
}

// Properties returns the session-scoped properties
func (s *Session) Properties() []*Property {
	return append([]*Property(nil), s.properties...)
}

// CreatedAt returns when the snapshot was built
func (s *Session) CreatedAt() time.Time {
	return s.createdAt
}

// ToMetadata extracts summary information from the session
func (s *Session) ToMetadata() SessionMetadata {
	appFiles := 0
	for _, files := range s.appFiles {
		appFiles += len(files)
	}
	return SessionMetadata{
		CreatedAt:    s.createdAt,
		NetworkCount: len(s.networks),
		ViewCount:    len(s.views),
		TableCount:   len(s.tables),
		StyleCount:   len(s.styles),
		Properties:   len(s.properties),
		AppFiles:     appFiles,
	}
}

// SessionBuilder assembles a Session. Duplicate objects (same SUID, style
// title or property name) are collapsed, first one wins.
type SessionBuilder struct {
	s *Session
}

// NewSessionBuilder creates an empty builder
func NewSessionBuilder() *SessionBuilder {
	return &SessionBuilder{s: &Session{
		viewStyles: make(map[SUID]string),
		appFiles:   make(map[string][]AppFile),
	}}
}

// Networks adds networks
func (b *SessionBuilder) Networks(networks ...*Network) *SessionBuilder {
	for _, n := range networks {
		if n == nil || containsNetwork(b.s.networks, n.SUID) {
			continue
		}
		b.s.networks = append(b.s.networks, n)
	}
	return b
}

// NetworkViews adds views
func (b *SessionBuilder) NetworkViews(views ...*NetworkView) *SessionBuilder {
	for _, v := range views {
		if v == nil || containsView(b.s.views, v.SUID) {
			continue
		}
		b.s.views = append(b.s.views, v)
	}
	return b
}

// Tables adds table metadata
func (b *SessionBuilder) Tables(tables ...TableMetadata) *SessionBuilder {
	for _, t := range tables {
		if t.Table == nil || containsTable(b.s.tables, t.Table.SUID) {
			continue
		}
		b.s.tables = append(b.s.tables, t)
	}
	return b
}

// VisualStyles adds styles
func (b *SessionBuilder) VisualStyles(styles ...*VisualStyle) *SessionBuilder {
	for _, st := range styles {
		if st == nil || containsStyle(b.s.styles, st.Title) {
			continue
		}
		b.s.styles = append(b.s.styles, st)
	}
	return b
}

// ViewStyles sets view SUID -> style title assignments
func (b *SessionBuilder) ViewStyles(assignments map[SUID]string) *SessionBuilder {
	for k, v := range assignments {
		b.s.viewStyles[k] = v
	}
	return b
}

// AppFiles adds app-contributed files
func (b *SessionBuilder) AppFiles(files map[string][]AppFile) *SessionBuilder {
	for app, list := range files {
		b.s.appFiles[app] = append(b.s.appFiles[app], list...)
	}
	return b
}

// Properties adds properties
func (b *SessionBuilder) Properties(props ...*Property) *SessionBuilder {
	for _, p := range props {
		if p == nil || containsProperty(b.s.properties, p.Name) {
			continue
		}
		b.s.properties = append(b.s.properties, p)
	}
	return b
}

// Build returns the session. The builder must not be reused.
func (b *SessionBuilder) Build() *Session {
	s := b.s
	s.createdAt = time.Now()
	b.s = nil
	return s
}

func containsNetwork(list []*Network, suid SUID) bool {
	for _, n := range list {
		if n.SUID == suid {
			return true
		}
	}
	return false
}

func containsView(list []*NetworkView, suid SUID) bool {
	for _, v := range list {
		if v.SUID == suid {
			return true
		}
	}
	return false
}

func containsTable(list []TableMetadata, suid SUID) bool {
	for _, t := range list {
		if t.Table.SUID == suid {
			return true
		}
	}
	return false
}

func containsStyle(list []*VisualStyle, title string) bool {
	for _, st := range list {
		if st.Title == title {
			return true
		}
	}
	return false
}

func containsProperty(list []*Property, name string) bool {
	for _, p := range list {
		if p.Name == name {
			return true
		}
	}
	return false
}

// SessionMetadata contains summary information
type SessionMetadata struct {
	FileName     string    `json:"file_name,omitempty"`
	CreatedAt    time.Time `json:"created_at"`
	NetworkCount int       `json:"network_count"`
	ViewCount    int       `json:"view_count"`
	TableCount   int       `json:"table_count"`
	StyleCount   int       `json:"style_count"`
	Properties   int       `json:"property_count"`
	AppFiles     int       `json:"app_file_count"`
}

// SessionStats contains session manager statistics
type SessionStats struct {
	State        string     `json:"state"`
	FileName     string     `json:"file_name,omitempty"`
	LastSaved    *time.Time `json:"last_saved,omitempty"`
	LastRestored *time.Time `json:"last_restored,omitempty"`
	Hooks        int        `json:"hooks"`
	Listeners    int        `json:"listeners"`
}
