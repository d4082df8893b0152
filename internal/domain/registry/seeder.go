package registry

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/charlievieth/fastwalk"
	"github.com/goccy/go-yaml"
	"github.com/pelletier/go-toml/v2"
	"go.uber.org/zap"

	"github.com/GriffinCanCode/netsession/internal/shared/types"
)

// DefaultSeedPatterns selects the seed files loaded at startup
var DefaultSeedPatterns = []string{"**/*.yaml", "**/*.yml", "**/*.toml"}

// PropertySink receives seeded properties. The session manager satisfies it
// so seeded bookmarks land in its dedicated slot.
type PropertySink interface {
	AddProperty(p *types.Property) error
}

// seedFile is the on-disk layout of a seed document
type seedFile struct {
	Styles     []*types.VisualStyle `yaml:"styles" toml:"styles"`
	Properties []seedProperty       `yaml:"properties" toml:"properties"`
}

type seedProperty struct {
	Name       string            `yaml:"name" toml:"name"`
	SavePolicy string            `yaml:"save_policy" toml:"save_policy"`
	Values     map[string]string `yaml:"values" toml:"values"`
	Bookmarks  []seedCategory    `yaml:"bookmarks" toml:"bookmarks"`
}

type seedCategory struct {
	Name    string           `yaml:"name" toml:"name"`
	Sources []seedDataSource `yaml:"sources" toml:"sources"`
}

type seedDataSource struct {
	Name     string `yaml:"name" toml:"name"`
	Provider string `yaml:"provider" toml:"provider"`
	Format   string `yaml:"format" toml:"format"`
	URL      string `yaml:"url" toml:"url"`
}

// SeedResult counts what a seeding pass loaded
type SeedResult struct {
	Files      int `json:"files"`
	Failed     int `json:"failed"`
	Styles     int `json:"styles"`
	Properties int `json:"properties"`
}

// Seeder loads default visual styles and property bags from a directory
type Seeder struct {
	styles   *StyleManager
	sink     PropertySink
	dir      string
	patterns []string
	logger   *zap.Logger
}

// NewSeeder creates a seeder for dir. Patterns default to DefaultSeedPatterns.
func NewSeeder(styles *StyleManager, sink PropertySink, dir string, logger *zap.Logger, patterns ...string) *Seeder {
	if logger == nil {
		logger = zap.NewNop()
	}
	if len(patterns) == 0 {
		patterns = DefaultSeedPatterns
	}
	return &Seeder{
		styles:   styles,
		sink:     sink,
		dir:      dir,
		patterns: patterns,
		logger:   logger,
	}
}

// Seed walks the seed directory and registers everything it finds. A missing
// directory is not an error; a malformed file is logged and counted.
func (s *Seeder) Seed(ctx context.Context) (SeedResult, error) {
	var result SeedResult

	if _, err := os.Stat(s.dir); os.IsNotExist(err) {
		s.logger.Warn("Seed directory not found", zap.String("dir", s.dir))
		return result, nil
	}

	files, err := s.collect(ctx)
	if err != nil {
		return result, fmt.Errorf("failed to scan seed directory: %w", err)
	}

	for _, path := range files {
		if err := ctx.Err(); err != nil {
			return result, err
		}
		result.Files++

		doc, err := decodeSeed(path)
		if err != nil {
			s.logger.Warn("Failed to load seed file", zap.String("path", path), zap.Error(err))
			result.Failed++
			continue
		}

		for _, style := range doc.Styles {
			if style == nil || style.Title == "" {
				continue
			}
			if style.Defaults == nil {
				style.Defaults = make(map[string]string)
			}
			s.styles.AddStyle(style)
			result.Styles++
		}

		for _, sp := range doc.Properties {
			if s.sink == nil {
				break
			}
			if err := s.sink.AddProperty(sp.toProperty()); err != nil {
				s.logger.Warn("Failed to seed property", zap.String("name", sp.Name), zap.Error(err))
				continue
			}
			result.Properties++
		}

		s.logger.Debug("Loaded seed file", zap.String("path", path))
	}

	s.logger.Info("Seeding complete",
		zap.Int("files", result.Files),
		zap.Int("failed", result.Failed),
		zap.Int("styles", result.Styles),
		zap.Int("properties", result.Properties))
	return result, nil
}

// collect returns matching files sorted so seeding order is stable
func (s *Seeder) collect(ctx context.Context) ([]string, error) {
	var (
		mu    sync.Mutex
		files []string
	)

	conf := fastwalk.Config{Follow: false}
	err := fastwalk.Walk(&conf, s.dir, func(p string, d os.DirEntry, err error) error {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}

		if err != nil || d.IsDir() {
			return nil
		}

		rel, err := filepath.Rel(s.dir, p)
		if err != nil {
			return nil
		}
		if !s.matches(filepath.ToSlash(rel)) {
			return nil
		}

		mu.Lock()
		files = append(files, p)
		mu.Unlock()
		return nil
	})
	if err != nil {
		return nil, err
	}

	sort.Strings(files)
	return files, nil
}

func (s *Seeder) matches(rel string) bool {
	for _, pattern := range s.patterns {
		if ok, _ := doublestar.Match(pattern, rel); ok {
			return true
		}
	}
	return false
}

func decodeSeed(path string) (*seedFile, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var doc seedFile
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		if err := yaml.Unmarshal(data, &doc); err != nil {
			return nil, fmt.Errorf("invalid YAML: %w", err)
		}
	case ".toml":
		if err := toml.Unmarshal(data, &doc); err != nil {
			return nil, fmt.Errorf("invalid TOML: %w", err)
		}
	default:
		return nil, fmt.Errorf("unsupported seed format %q", filepath.Ext(path))
	}
	return &doc, nil
}

func (sp seedProperty) toProperty() *types.Property {
	policy := types.PropertySavePolicy(sp.SavePolicy)
	if policy == "" {
		policy = types.PropertySaveSessionFile
	}

	if len(sp.Bookmarks) > 0 {
		b := &types.Bookmarks{}
		for _, c := range sp.Bookmarks {
			cat := types.BookmarkCategory{Name: c.Name}
			for _, src := range c.Sources {
				cat.Sources = append(cat.Sources, types.DataSource{
					Name:     src.Name,
					Provider: src.Provider,
					Format:   src.Format,
					URL:      src.URL,
				})
			}
			b.Categories = append(b.Categories, cat)
		}
		return types.NewBookmarks(sp.Name, policy, b)
	}
	return types.NewProperties(sp.Name, policy, sp.Values)
}
