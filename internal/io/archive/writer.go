package archive

import (
	"context"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/klauspost/compress/flate"
	"github.com/klauspost/compress/zip"
	"go.uber.org/zap"

	"github.com/GriffinCanCode/netsession/internal/io/codec"
	"github.com/GriffinCanCode/netsession/internal/io/cytable"
	"github.com/GriffinCanCode/netsession/internal/shared/paths"
	"github.com/GriffinCanCode/netsession/internal/shared/types"
	"github.com/GriffinCanCode/netsession/internal/shared/utils"
)

// Status messages reported while writing
const (
	StatusNetworks        = "Zip networks..."
	StatusTables          = "Zip tables..."
	StatusTableProperties = "Zip table properties..."
	StatusVizmap          = "Zip Vizmap..."
	StatusProperties      = "Zip Cytoscape properties..."
	StatusApps            = "Zip apps..."
	StatusDone            = "Done!"
)

// Skipped records an item left out of an archive
type Skipped struct {
	Kind   string `json:"kind"`
	Name   string `json:"name"`
	Reason string `json:"reason"`
}

// WriteReport describes a finished archive
type WriteReport struct {
	SessionDir string    `json:"session_dir"`
	Entries    []string  `json:"entries"`
	Skipped    []Skipped `json:"skipped,omitempty"`
	Bytes      int64     `json:"bytes"`
	Digest     string    `json:"digest"`
	Algorithm  string    `json:"algorithm"`
}

// Option configures a Writer
type Option func(*Writer)

// WithLogger sets the logger
func WithLogger(logger *zap.Logger) Option {
	return func(w *Writer) {
		if logger != nil {
			w.logger = logger
		}
	}
}

// WithMonitor sets the progress monitor
func WithMonitor(monitor TaskMonitor) Option {
	return func(w *Writer) {
		if monitor != nil {
			w.monitor = monitor
		}
	}
}

// WithHasher sets the digest algorithm of the report
func WithHasher(hasher *utils.Hasher) Option {
	return func(w *Writer) {
		if hasher != nil {
			w.hasher = hasher
		}
	}
}

// WithCompressionLevel sets the deflate level
func WithCompressionLevel(level int) Option {
	return func(w *Writer) {
		w.level = level
	}
}

// WithClock sets the time source used to name the session directory
func WithClock(now func() time.Time) Option {
	return func(w *Writer) {
		w.now = now
	}
}

// Writer serializes one session into a zip archive. A Writer is single use.
type Writer struct {
	out     io.Writer
	session *types.Session
	collab  Collaborators
	monitor TaskMonitor
	logger  *zap.Logger
	hasher  *utils.Hasher
	level   int
	now     func() time.Time

	zw         *zip.Writer
	sessionDir string
	modified   time.Time
	report     *WriteReport
}

// NewWriter creates an archive writer
func NewWriter(out io.Writer, session *types.Session, collab Collaborators, opts ...Option) *Writer {
	w := &Writer{
		out:     out,
		session: session,
		collab:  collab,
		monitor: NopMonitor{},
		logger:  zap.NewNop(),
		hasher:  utils.DefaultHasher(),
		level:   flate.DefaultCompression,
		now:     time.Now,
	}
	for _, opt := range opts {
		opt(w)
	}
	return w
}

// Write produces the archive. Any entry error aborts the write; the zip
// stream is closed in every case.
func (w *Writer) Write(ctx context.Context) (report *WriteReport, err error) {
	if w.session == nil {
		return nil, fmt.Errorf("no session to write")
	}
	if w.collab.Networks == nil || w.collab.Tables == nil || w.collab.Properties == nil ||
		w.collab.Vizmap == nil || w.collab.Roots == nil {
		return nil, fmt.Errorf("%w: incomplete writer collaborators", ErrNoWriter)
	}

	digest := w.hasher.NewDigestWriter(w.out)
	w.zw = zip.NewWriter(digest)
	w.zw.RegisterCompressor(zip.Deflate, func(out io.Writer) (io.WriteCloser, error) {
		return flate.NewWriter(out, w.level)
	})

	w.modified = w.now()
	w.sessionDir = paths.SessionDir(w.modified)
	w.report = &WriteReport{
		SessionDir: w.sessionDir,
		Algorithm:  string(w.hasher.Algorithm()),
	}

	defer func() {
		closeErr := w.zw.Close()
		if err != nil {
			if closeErr != nil {
				w.logger.Warn("Failed to close archive after error", zap.Error(closeErr))
			}
			report = nil
			return
		}
		if closeErr != nil {
			err = fmt.Errorf("failed to close archive: %w", closeErr)
			report = nil
			return
		}
		w.report.Bytes = digest.Size()
		w.report.Digest = digest.Sum()
		report = w.report
		w.monitor.SetStatus(StatusDone)
		w.monitor.SetProgress(1.0)
	}()

	w.monitor.SetProgress(0.0)
	if err = w.writeVersion(ctx); err != nil {
		return nil, err
	}
	w.monitor.SetProgress(0.1)

	w.monitor.SetStatus(StatusNetworks)
	saved, err := w.writeNetworks(ctx)
	if err != nil {
		return nil, err
	}
	w.monitor.SetProgress(0.3)

	if err = w.writeViews(ctx); err != nil {
		return nil, err
	}
	w.monitor.SetProgress(0.4)

	w.monitor.SetStatus(StatusTables)
	index, err := w.writeTables(ctx, saved)
	if err != nil {
		return nil, err
	}
	w.monitor.SetProgress(0.5)

	w.monitor.SetStatus(StatusTableProperties)
	if err = w.writeTableIndex(ctx, index); err != nil {
		return nil, err
	}
	w.monitor.SetProgress(0.6)

	w.monitor.SetStatus(StatusVizmap)
	if err = w.writeVizmap(ctx); err != nil {
		return nil, err
	}
	w.monitor.SetProgress(0.7)

	w.monitor.SetStatus(StatusProperties)
	if err = w.writeProperties(ctx); err != nil {
		return nil, err
	}
	w.monitor.SetProgress(0.8)

	w.monitor.SetStatus(StatusApps)
	if err = w.writeApps(ctx); err != nil {
		return nil, err
	}
	w.monitor.SetProgress(0.9)
	return w.report, nil
}

// entry opens a new zip entry, runs fill against it and records it
func (w *Writer) entry(ctx context.Context, name string, fill func(io.Writer) error) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if !utils.IsSafeEntryName(name) {
		return fmt.Errorf("unsafe archive entry name %q", name)
	}

	ew, err := w.zw.CreateHeader(&zip.FileHeader{
		Name:     name,
		Method:   zip.Deflate,
		Modified: w.modified,
	})
	if err != nil {
		return fmt.Errorf("failed to create entry %s: %w", name, err)
	}
	if fill != nil {
		if err := fill(ew); err != nil {
			return fmt.Errorf("failed to write entry %s: %w", name, err)
		}
	}
	w.report.Entries = append(w.report.Entries, name)
	return nil
}

// document writes one entry through a format writer produced by create
func (w *Writer) document(ctx context.Context, name, content string, create func(io.Writer) codec.Writer) error {
	return w.entry(ctx, name, func(ew io.Writer) error {
		dw := create(ew)
		if dw == nil {
			return fmt.Errorf("%w for %s", ErrNoWriter, content)
		}
		return dw.Write()
	})
}

func (w *Writer) skip(kind, name, reason string) {
	w.report.Skipped = append(w.report.Skipped, Skipped{Kind: kind, Name: name, Reason: reason})
}

func (w *Writer) writeVersion(ctx context.Context) error {
	return w.entry(ctx, paths.VersionEntry(w.sessionDir), nil)
}

// writeNetworks writes each distinct root once and returns the SUIDs of
// every saved network and root
func (w *Writer) writeNetworks(ctx context.Context) (map[types.SUID]bool, error) {
	saved := make(map[types.SUID]bool)
	written := make(map[types.SUID]bool)

	for _, n := range w.session.Networks() {
		root := w.collab.Roots.RootNetwork(n)
		if root == nil {
			return nil, fmt.Errorf("network %q (%d) has no root network", n.Name, n.SUID)
		}
		saved[n.SUID] = true
		saved[root.SUID] = true

		if written[root.SUID] {
			continue
		}
		written[root.SUID] = true

		name := paths.NetworkEntry(w.sessionDir, root)
		if err := w.document(ctx, name, "network "+root.Name, func(ew io.Writer) codec.Writer {
			return w.collab.Networks.NetworkWriter(ew, root)
		}); err != nil {
			return nil, err
		}
	}
	return saved, nil
}

func (w *Writer) writeViews(ctx context.Context) error {
	styles := w.session.ViewStyles()
	for _, v := range w.session.NetworkViews() {
		view := v
		style := styles[view.SUID]
		name := paths.ViewEntry(w.sessionDir, view)
		if err := w.document(ctx, name, "network view "+view.Title, func(ew io.Writer) codec.Writer {
			return w.collab.Networks.ViewWriter(ew, view, style)
		}); err != nil {
			return err
		}
	}
	return nil
}

func (w *Writer) writeTables(ctx context.Context, saved map[types.SUID]bool) (*cytable.Index, error) {
	index := cytable.NewIndex()

	for _, meta := range w.session.Tables() {
		table := meta.Table
		if table == nil {
			continue
		}
		if table.SavePolicy == types.SavePolicyDoNotSave {
			w.skip("table", table.Title, "save policy is do-not-save")
			continue
		}
		if !meta.IsGlobal() && !saved[meta.Network.SUID] {
			w.logger.Debug("Skipping table of unsaved network",
				zap.String("table", table.Title),
				zap.Int64("network", int64(meta.Network.SUID)))
			w.skip("table", table.Title, "network is not saved")
			continue
		}

		filename := paths.TableFilename(meta)
		if err := w.document(ctx, paths.TableEntry(w.sessionDir, filename), "table "+table.Title, func(ew io.Writer) codec.Writer {
			return w.collab.Tables.TableWriter(ew, table)
		}); err != nil {
			return nil, err
		}
		index.Add(meta, filename)
	}
	return index, nil
}

func (w *Writer) writeTableIndex(ctx context.Context, index *cytable.Index) error {
	return w.entry(ctx, paths.TableEntry(w.sessionDir, paths.TableStateFile), func(ew io.Writer) error {
		return cytable.WriteIndex(ew, index)
	})
}

func (w *Writer) writeVizmap(ctx context.Context) error {
	styles := w.session.VisualStyles()
	return w.document(ctx, w.sessionDir+paths.VizmapFile, "visual styles", func(ew io.Writer) codec.Writer {
		return w.collab.Vizmap.VizmapWriter(ew, styles)
	})
}

func (w *Writer) writeProperties(ctx context.Context) error {
	for _, p := range w.session.Properties() {
		prop := p
		var filename string
		switch prop.Kind {
		case types.PropertyKindBookmarks:
			filename = paths.BookmarksFile
		case types.PropertyKindProperties:
			filename = paths.Escape(prop.Name) + paths.PropertiesExt
		default:
			w.logger.Error("Unsupported property type; not saved",
				zap.String("property", prop.Name),
				zap.String("kind", string(prop.Kind)))
			w.skip("property", prop.Name, "unsupported property type")
			continue
		}

		name := paths.PropertiesEntry(w.sessionDir, filename)
		if err := w.document(ctx, name, "property "+prop.Name, func(ew io.Writer) codec.Writer {
			return w.collab.Properties.PropertyWriter(ew, prop)
		}); err != nil {
			return err
		}
	}
	return nil
}

func (w *Writer) writeApps(ctx context.Context) error {
	files := w.session.AppFiles()
	for _, app := range w.session.AppNames() {
		if err := utils.ValidateAppName(app); err != nil {
			return err
		}
		for _, f := range files[app] {
			file := f
			rel, err := utils.CleanRelPath(file.Name)
			if err != nil {
				return fmt.Errorf("app %s: %w", app, err)
			}
			name := paths.AppEntry(w.sessionDir, app, rel)
			if err := w.entry(ctx, name, func(ew io.Writer) error {
				return copyFile(ew, file.Path)
			}); err != nil {
				return err
			}
		}
	}
	return nil
}

func copyFile(dst io.Writer, path string) error {
	src, err := os.Open(path)
	if err != nil {
		return err
	}
	defer src.Close()

	if _, err := io.Copy(dst, src); err != nil {
		return err
	}
	return nil
}
