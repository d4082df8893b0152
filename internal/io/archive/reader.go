package archive

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"os"
	"path"
	"path/filepath"
	"sort"
	"strings"

	"github.com/gabriel-vasile/mimetype"
	"github.com/google/uuid"
	"github.com/klauspost/compress/zip"
	"go.uber.org/zap"

	"github.com/GriffinCanCode/netsession/internal/io/cytable"
	"github.com/GriffinCanCode/netsession/internal/io/props"
	"github.com/GriffinCanCode/netsession/internal/io/vizmap"
	"github.com/GriffinCanCode/netsession/internal/io/xgmml"
	"github.com/GriffinCanCode/netsession/internal/shared/paths"
	"github.com/GriffinCanCode/netsession/internal/shared/types"
	"github.com/GriffinCanCode/netsession/internal/shared/utils"
)

// BookmarksProperty is the name given to the bookmarks property on read
const BookmarksProperty = "bookmarks"

const zipMIME = "application/zip"

// ReadResult is a parsed archive
type ReadResult struct {
	Session    *types.Session
	SessionDir string
	Version    string
	// AppDir holds extracted app files; empty when the archive has none
	AppDir string
}

// ReadOption configures a Reader
type ReadOption func(*Reader)

// WithReadLogger sets the reader's logger
func WithReadLogger(logger *zap.Logger) ReadOption {
	return func(r *Reader) {
		if logger != nil {
			r.logger = logger
		}
	}
}

// WithReadMonitor sets the reader's progress monitor
func WithReadMonitor(monitor TaskMonitor) ReadOption {
	return func(r *Reader) {
		if monitor != nil {
			r.monitor = monitor
		}
	}
}

// WithExtractDir sets the directory app files are extracted under
func WithExtractDir(dir string) ReadOption {
	return func(r *Reader) {
		r.extractDir = dir
	}
}

// Reader parses session archives
type Reader struct {
	logger     *zap.Logger
	monitor    TaskMonitor
	extractDir string
}

// NewReader creates an archive reader
func NewReader(opts ...ReadOption) *Reader {
	r := &Reader{
		logger:     zap.NewNop(),
		monitor:    NopMonitor{},
		extractDir: os.TempDir(),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// ReadFile opens and parses the archive at path
func (r *Reader) ReadFile(ctx context.Context, file string) (*ReadResult, error) {
	f, err := os.Open(file)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil {
		return nil, err
	}
	return r.Read(ctx, f, info.Size())
}

// Read parses an archive of the given size
func (r *Reader) Read(ctx context.Context, src io.ReaderAt, size int64) (*ReadResult, error) {
	if size > utils.MaxArchiveSize {
		return nil, fmt.Errorf("archive too large: %d bytes (max %d)", size, utils.MaxArchiveSize)
	}
	if err := sniff(src, size); err != nil {
		return nil, err
	}

	zr, err := zip.NewReader(src, size)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrNotSessionArchive, err)
	}
	if len(zr.File) > utils.MaxArchiveEntries {
		return nil, fmt.Errorf("archive has too many entries: %d (max %d)", len(zr.File), utils.MaxArchiveEntries)
	}

	p := &parse{
		reader:   r,
		ctx:      ctx,
		entries:  make(map[string]*zip.File, len(zr.File)),
		networks: make(map[types.SUID]*types.Network),
	}
	r.monitor.SetProgress(0.0)
	if err := p.index(zr.File); err != nil {
		return nil, err
	}
	return p.run()
}

// sniff rejects anything that is not a zip container
func sniff(src io.ReaderAt, size int64) error {
	mt, err := mimetype.DetectReader(io.NewSectionReader(src, 0, size))
	if err != nil {
		return fmt.Errorf("%w: %v", ErrNotSessionArchive, err)
	}
	for m := mt; m != nil; m = m.Parent() {
		if m.Is(zipMIME) {
			return nil
		}
	}
	return fmt.Errorf("%w: detected %s", ErrNotSessionArchive, mt.String())
}

// parse carries the state of one Read call
type parse struct {
	reader     *Reader
	ctx        context.Context
	sessionDir string
	version    string
	// entries is keyed by the path below the session dir
	entries  map[string]*zip.File
	roots    []*types.RootNetwork
	networks map[types.SUID]*types.Network
}

func (p *parse) index(files []*zip.File) error {
	for _, f := range files {
		if !utils.IsSafeEntryName(f.Name) {
			return fmt.Errorf("unsafe archive entry name %q", f.Name)
		}
		dir, rel, ok := paths.SplitEntry(f.Name)
		if !ok {
			continue
		}
		if p.sessionDir == "" {
			p.sessionDir = dir
		} else if dir != p.sessionDir {
			return fmt.Errorf("%w: entries span %q and %q", ErrNotSessionArchive, p.sessionDir, dir)
		}
		if rel == "" {
			continue
		}
		if version, ok := versionMarker(rel); ok {
			p.version = version
			continue
		}
		p.entries[rel] = f
	}
	if p.version == "" {
		return ErrMissingVersion
	}
	if p.version != paths.Version {
		p.reader.logger.Warn("Reading session archive of a different version",
			zap.String("version", p.version),
			zap.String("expected", paths.Version))
	}
	return nil
}

// versionMarker recognizes the empty top-level entry naming the format version
func versionMarker(rel string) (string, bool) {
	if strings.Contains(rel, "/") {
		return "", false
	}
	for _, ext := range []string{paths.VersionExt, paths.AltVersionExt} {
		if version, ok := strings.CutSuffix(rel, ext); ok && version != "" {
			return version, true
		}
	}
	return "", false
}

func (p *parse) run() (*ReadResult, error) {
	mon := p.reader.monitor
	builder := types.NewSessionBuilder()

	mon.SetStatus("Reading networks...")
	if err := p.readNetworks(); err != nil {
		return nil, err
	}
	for _, root := range p.roots {
		builder.Networks(root.Base())
		builder.Networks(root.Subnetworks...)
	}
	mon.SetProgress(0.3)

	views, viewStyles, err := p.readViews()
	if err != nil {
		return nil, err
	}
	builder.NetworkViews(views...).ViewStyles(viewStyles)
	mon.SetProgress(0.4)

	mon.SetStatus("Reading tables...")
	tables, err := p.readTables()
	if err != nil {
		return nil, err
	}
	builder.Tables(tables...)
	mon.SetProgress(0.6)

	mon.SetStatus("Reading visual styles...")
	styles, err := p.readVizmap()
	if err != nil {
		return nil, err
	}
	builder.VisualStyles(styles...)
	mon.SetProgress(0.7)

	mon.SetStatus("Reading properties...")
	properties, err := p.readProperties()
	if err != nil {
		return nil, err
	}
	builder.Properties(properties...)
	mon.SetProgress(0.8)

	mon.SetStatus("Extracting apps...")
	appDir, appFiles, err := p.extractApps()
	if err != nil {
		return nil, err
	}
	builder.AppFiles(appFiles)

	mon.SetStatus(StatusDone)
	mon.SetProgress(1.0)
	return &ReadResult{
		Session:    builder.Build(),
		SessionDir: p.sessionDir,
		Version:    p.version,
		AppDir:     appDir,
	}, nil
}

// under returns the entries below folder with the given extension, sorted
func (p *parse) under(folder, ext string) []string {
	var names []string
	for rel := range p.entries {
		if strings.HasPrefix(rel, folder) && strings.HasSuffix(rel, ext) {
			names = append(names, rel)
		}
	}
	sort.Strings(names)
	return names
}

func (p *parse) open(rel string, decode func(io.Reader) error) error {
	if err := p.ctx.Err(); err != nil {
		return err
	}
	f, ok := p.entries[rel]
	if !ok {
		return fmt.Errorf("archive entry %s not found", rel)
	}
	rc, err := f.Open()
	if err != nil {
		return fmt.Errorf("failed to open %s: %w", rel, err)
	}
	defer rc.Close()

	if err := decode(rc); err != nil {
		return fmt.Errorf("failed to read %s: %w", rel, err)
	}
	return nil
}

func (p *parse) readNetworks() error {
	for _, rel := range p.under(paths.NetworksFolder, paths.XGMMLExt) {
		err := p.open(rel, func(r io.Reader) error {
			root, err := xgmml.ReadNetwork(r)
			if err != nil {
				return err
			}
			if _, dup := p.networks[root.SUID]; dup {
				return fmt.Errorf("duplicate root network %d", root.SUID)
			}
			p.roots = append(p.roots, root)
			p.networks[root.SUID] = root.Base()
			for _, sub := range root.Subnetworks {
				p.networks[sub.SUID] = sub
			}
			return nil
		})
		if err != nil {
			return err
		}
	}
	return nil
}

func (p *parse) readViews() ([]*types.NetworkView, map[types.SUID]string, error) {
	var views []*types.NetworkView
	styles := make(map[types.SUID]string)

	for _, rel := range p.under(paths.NetworkViewsFolder, paths.XGMMLExt) {
		err := p.open(rel, func(r io.Reader) error {
			doc, err := xgmml.ReadView(r)
			if err != nil {
				return err
			}
			network, ok := p.networks[doc.NetworkSUID]
			if !ok {
				return fmt.Errorf("view %d refers to unknown network %d", doc.View.SUID, doc.NetworkSUID)
			}
			doc.View.Network = network
			views = append(views, doc.View)
			if doc.Style != "" {
				styles[doc.View.SUID] = doc.Style
			}
			return nil
		})
		if err != nil {
			return nil, nil, err
		}
	}
	return views, styles, nil
}

func (p *parse) readTables() ([]types.TableMetadata, error) {
	var indexRel string
	for _, name := range []string{paths.TableStateFile, paths.AltTableStateFile} {
		if _, ok := p.entries[paths.TablesFolder+name]; ok {
			indexRel = paths.TablesFolder + name
			break
		}
	}
	if indexRel == "" {
		return nil, nil
	}

	var index *cytable.Index
	if err := p.open(indexRel, func(r io.Reader) error {
		var err error
		index, err = cytable.ReadIndex(r)
		return err
	}); err != nil {
		return nil, err
	}

	tables := make([]types.TableMetadata, 0, len(index.Tables))
	for _, entry := range index.Tables {
		meta := types.TableMetadata{
			Table:     entry.NewTable(),
			Namespace: entry.Namespace,
			Type:      types.IdentifiableType(entry.Type),
		}
		if !entry.IsGlobal() {
			network, ok := p.networks[types.SUID(entry.Network)]
			if !ok {
				p.reader.logger.Warn("Dropping table of unknown network",
					zap.String("table", entry.Title),
					zap.Int64("network", entry.Network))
				continue
			}
			meta.Network = network
		}

		if err := p.open(paths.TablesFolder+entry.Filename, func(r io.Reader) error {
			return cytable.ReadTable(r, meta.Table)
		}); err != nil {
			return nil, err
		}
		tables = append(tables, meta)
	}
	return tables, nil
}

func (p *parse) readVizmap() ([]*types.VisualStyle, error) {
	if _, ok := p.entries[paths.VizmapFile]; !ok {
		return nil, nil
	}
	var styles []*types.VisualStyle
	err := p.open(paths.VizmapFile, func(r io.Reader) error {
		var err error
		styles, err = vizmap.Read(r)
		return err
	})
	return styles, err
}

func (p *parse) readProperties() ([]*types.Property, error) {
	var out []*types.Property

	bookmarksRel := paths.PropertiesFolder + paths.BookmarksFile
	if _, ok := p.entries[bookmarksRel]; ok {
		if err := p.open(bookmarksRel, func(r io.Reader) error {
			b, err := props.ReadBookmarks(r)
			if err != nil {
				return err
			}
			out = append(out, types.NewBookmarks(BookmarksProperty, types.PropertySaveSessionFile, b))
			return nil
		}); err != nil {
			return nil, err
		}
	}

	for _, rel := range p.under(paths.PropertiesFolder, paths.PropertiesExt) {
		name := paths.Unescape(strings.TrimSuffix(path.Base(rel), paths.PropertiesExt))
		if err := p.open(rel, func(r io.Reader) error {
			values, err := props.ReadProperties(r)
			if err != nil {
				return err
			}
			out = append(out, types.NewProperties(name, types.PropertySaveSessionFile, values))
			return nil
		}); err != nil {
			return nil, err
		}
	}
	return out, nil
}

// extractApps copies app files out of the archive so they can be handed to
// their apps by path
func (p *parse) extractApps() (string, map[string][]types.AppFile, error) {
	rels := p.under(paths.AppsFolder, "")
	if len(rels) == 0 {
		return "", nil, nil
	}

	root := filepath.Join(p.reader.extractDir, "netsession-"+uuid.New().String())
	files := make(map[string][]types.AppFile)

	for _, rel := range rels {
		parts := strings.SplitN(strings.TrimPrefix(rel, paths.AppsFolder), "/", 2)
		if len(parts) != 2 || parts[1] == "" || strings.HasSuffix(parts[1], "/") {
			continue
		}
		app := parts[0]
		if err := utils.ValidateAppName(app); err != nil {
			return "", nil, err
		}
		name, err := utils.CleanRelPath(parts[1])
		if err != nil {
			return "", nil, err
		}

		target := filepath.Join(root, "apps", app, filepath.FromSlash(name))
		if err := os.MkdirAll(filepath.Dir(target), 0o755); err != nil {
			return "", nil, err
		}
		if err := p.open(rel, func(r io.Reader) error {
			return writeFile(target, r)
		}); err != nil {
			return "", nil, err
		}
		files[app] = append(files[app], types.AppFile{Name: name, Path: target})
	}
	return root, files, nil
}

func writeFile(target string, r io.Reader) error {
	out, err := os.Create(target)
	if err != nil {
		return err
	}
	if _, err := io.Copy(out, io.LimitReader(r, utils.MaxArchiveSize)); err != nil {
		out.Close()
		return err
	}
	return out.Close()
}

// ReadBytes parses an in-memory archive
func (r *Reader) ReadBytes(ctx context.Context, data []byte) (*ReadResult, error) {
	return r.Read(ctx, bytes.NewReader(data), int64(len(data)))
}
