package types

// MappingType is the kind of visual mapping function
type MappingType string

const (
	MappingDiscrete    MappingType = "discrete"
	MappingPassthrough MappingType = "passthrough"
)

// DefaultStyleTitle names the style every workspace keeps
const DefaultStyleTitle = "default"

// VisualMapping maps a table column to a visual property
type VisualMapping struct {
	Property string      `json:"property" yaml:"property" toml:"property"`
	Column   string      `json:"column" yaml:"column" toml:"column"`
	Type     MappingType `json:"type" yaml:"type" toml:"type"`
	// Entries is only used by discrete mappings: column value -> visual value
	Entries map[string]string `json:"entries,omitempty" yaml:"entries,omitempty" toml:"entries,omitempty"`
}

// VisualStyle is a named bundle of visual defaults and mappings
type VisualStyle struct {
	Title    string            `json:"title" yaml:"title" toml:"title"`
	Defaults map[string]string `json:"defaults" yaml:"defaults" toml:"defaults"`
	Mappings []VisualMapping   `json:"mappings" yaml:"mappings" toml:"mappings"`
}

// NewVisualStyle creates an empty style
func NewVisualStyle(title string) *VisualStyle {
	return &VisualStyle{
		Title:    title,
		Defaults: make(map[string]string),
	}
}
