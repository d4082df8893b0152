package types

// PropertyKind is resolved once when a property is created and drives how
// the property is persisted
type PropertyKind string

const (
	PropertyKindBookmarks   PropertyKind = "bookmarks"
	PropertyKindProperties  PropertyKind = "properties"
	PropertyKindUnsupported PropertyKind = "unsupported"
)

// PropertySavePolicy controls where a property object is persisted
type PropertySavePolicy string

const (
	PropertySaveConfigDir            PropertySavePolicy = "config_dir"
	PropertySaveSessionFile          PropertySavePolicy = "session_file"
	PropertySaveSessionFileAndConfig PropertySavePolicy = "session_file_and_config_dir"
)

// InSession reports whether the policy persists the property with the session
func (p PropertySavePolicy) InSession() bool {
	return p == PropertySaveSessionFile || p == PropertySaveSessionFileAndConfig
}

// DataSource is one bookmarked data location
type DataSource struct {
	Name     string `json:"name" xml:"name,attr"`
	Provider string `json:"provider,omitempty" xml:"provider,attr,omitempty"`
	Format   string `json:"format,omitempty" xml:"format,attr,omitempty"`
	URL      string `json:"url" xml:"href,attr"`
}

// BookmarkCategory groups data sources
type BookmarkCategory struct {
	Name    string       `json:"name" xml:"name,attr"`
	Sources []DataSource `json:"sources" xml:"dataSource"`
}

// Bookmarks is the payload of a bookmarks property
type Bookmarks struct {
	Categories []BookmarkCategory `json:"categories"`
}

// Property is a named, session-scoped property object. Exactly one of
// Values or Bookmarks is meaningful, depending on Kind.
type Property struct {
	Name       string             `json:"name"`
	Kind       PropertyKind       `json:"kind"`
	SavePolicy PropertySavePolicy `json:"save_policy"`
	Values     map[string]string  `json:"values,omitempty"`
	Bookmarks  *Bookmarks         `json:"bookmarks,omitempty"`
}

// NewProperties creates a key-value property bag
func NewProperties(name string, policy PropertySavePolicy, values map[string]string) *Property {
	if values == nil {
		values = make(map[string]string)
	}
	return &Property{
		Name:       name,
		Kind:       PropertyKindProperties,
		SavePolicy: policy,
		Values:     values,
	}
}

// NewBookmarks creates a bookmarks property
func NewBookmarks(name string, policy PropertySavePolicy, bookmarks *Bookmarks) *Property {
	if bookmarks == nil {
		bookmarks = &Bookmarks{}
	}
	return &Property{
		Name:       name,
		Kind:       PropertyKindBookmarks,
		SavePolicy: policy,
		Bookmarks:  bookmarks,
	}
}
