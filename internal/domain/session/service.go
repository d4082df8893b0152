package session

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/hashicorp/go-retryablehttp"
	"go.uber.org/zap"

	"github.com/GriffinCanCode/netsession/internal/infrastructure/monitoring"
	"github.com/GriffinCanCode/netsession/internal/infrastructure/resilience"
	"github.com/GriffinCanCode/netsession/internal/io/archive"
	"github.com/GriffinCanCode/netsession/internal/shared/paths"
	"github.com/GriffinCanCode/netsession/internal/shared/types"
	"github.com/GriffinCanCode/netsession/internal/shared/utils"
)

var (
	// ErrFetchFailed means a remote archive could not be downloaded
	ErrFetchFailed = errors.New("failed to fetch remote session")
	// ErrOutsideBaseDir means a path resolves outside the session directory
	ErrOutsideBaseDir = errors.New("path is outside the session directory")
)

// FetchSettings configure remote archive downloads
type FetchSettings struct {
	Timeout         time.Duration
	MaxRetries      int
	RetryWaitMin    time.Duration
	RetryWaitMax    time.Duration
	BreakerFailures uint32
}

// DefaultFetchSettings returns download defaults
func DefaultFetchSettings() FetchSettings {
	return FetchSettings{
		Timeout:         60 * time.Second,
		MaxRetries:      3,
		RetryWaitMin:    time.Second,
		RetryWaitMax:    30 * time.Second,
		BreakerFailures: 5,
	}
}

// ServiceOption configures a Service
type ServiceOption func(*Service)

// WithServiceLogger sets the logger
func WithServiceLogger(logger *zap.Logger) ServiceOption {
	return func(s *Service) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// WithMetrics adds metrics tracking to the service
func WithMetrics(metrics *monitoring.Metrics) ServiceOption {
	return func(s *Service) {
		s.metrics = metrics
	}
}

// WithHasher sets the archive digest algorithm
func WithHasher(hasher *utils.Hasher) ServiceOption {
	return func(s *Service) {
		if hasher != nil {
			s.hasher = hasher
		}
	}
}

// WithCompressionLevel sets the deflate level of written archives
func WithCompressionLevel(level int) ServiceOption {
	return func(s *Service) {
		s.level = level
	}
}

// WithBaseDir resolves relative paths against dir
func WithBaseDir(dir string) ServiceOption {
	return func(s *Service) {
		s.baseDir = dir
	}
}

// WithExtractDir sets where app files of opened archives are unpacked
func WithExtractDir(dir string) ServiceOption {
	return func(s *Service) {
		s.extractDir = dir
	}
}

// WithFetchSettings configures remote downloads
func WithFetchSettings(fs FetchSettings) ServiceOption {
	return func(s *Service) {
		s.fetch = fs
	}
}

// Service ties the manager to archive files
type Service struct {
	manager    *Manager
	collab     archive.Collaborators
	hasher     *utils.Hasher
	level      int
	baseDir    string
	extractDir string
	fetch      FetchSettings
	logger     *zap.Logger
	metrics    *monitoring.Metrics

	client  *retryablehttp.Client
	breaker *resilience.Breaker
}

// NewService creates a session service
func NewService(manager *Manager, opts ...ServiceOption) *Service {
	s := &Service{
		manager: manager,
		collab:  archive.DefaultCollaborators(),
		hasher:  utils.DefaultHasher(),
		level:   -1,
		fetch:   DefaultFetchSettings(),
		logger:  zap.NewNop(),
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.extractDir == "" {
		s.extractDir = os.TempDir()
	}

	s.client = retryablehttp.NewClient()
	s.client.RetryMax = s.fetch.MaxRetries
	s.client.RetryWaitMin = s.fetch.RetryWaitMin
	s.client.RetryWaitMax = s.fetch.RetryWaitMax
	s.client.HTTPClient.Timeout = s.fetch.Timeout
	s.client.Logger = nil

	failures := s.fetch.BreakerFailures
	s.breaker = resilience.New("session-fetch", resilience.Settings{
		Timeout: 30 * time.Second,
		ReadyToTrip: func(c resilience.Counts) bool {
			return c.ConsecutiveFailures >= failures
		},
		IsFailure: func(err error) bool {
			var se *statusError
			return !errors.As(err, &se) || se.code >= 500
		},
		OnStateChange: func(name string, from, to resilience.State) {
			s.logger.Warn("Fetch breaker changed state",
				zap.String("breaker", name),
				zap.String("from", from.String()),
				zap.String("to", to.String()))
		},
	})
	return s
}

// Manager returns the underlying manager
func (s *Service) Manager() *Manager {
	return s.manager
}

// Resolve maps a user supplied path into the base directory. Relative paths
// are joined to it and every result must stay below it. Without a base
// directory paths are used as given.
func (s *Service) Resolve(path string) (string, error) {
	if s.baseDir == "" {
		return path, nil
	}
	base, err := filepath.Abs(s.baseDir)
	if err != nil {
		return "", fmt.Errorf("failed to resolve session directory: %w", err)
	}

	target := path
	if !filepath.IsAbs(target) {
		target = filepath.Join(base, target)
	}
	target = filepath.Clean(target)

	rel, err := filepath.Rel(base, target)
	if err != nil || rel == "." || rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
		return "", fmt.Errorf("%w: %s", ErrOutsideBaseDir, path)
	}
	return target, nil
}

// Save captures the workspace and writes it to path. The archive is
// written to a temporary file beside the target and renamed on success.
func (s *Service) Save(ctx context.Context, path string, monitor archive.TaskMonitor) (*archive.WriteReport, error) {
	timer := monitoring.NewTimer()
	resolved, err := s.Resolve(path)
	if err != nil {
		s.recordError("save")
		return nil, err
	}
	report, err := s.save(ctx, resolved, monitor)
	if err != nil {
		s.recordError("save")
		return nil, err
	}

	if s.metrics != nil {
		skipped := make(map[string]int)
		for _, item := range report.Skipped {
			skipped[item.Kind]++
		}
		s.metrics.RecordSave(timer.Elapsed(), report.Bytes, skipped)
		s.publishWorkspace()
	}
	return report, nil
}

func (s *Service) save(ctx context.Context, path string, monitor archive.TaskMonitor) (*archive.WriteReport, error) {
	if err := utils.ValidateSessionPath(path, paths.Extension); err != nil {
		return nil, err
	}

	model, err := s.manager.Capture(ctx)
	if err != nil {
		return nil, err
	}

	tmp, err := os.CreateTemp(filepath.Dir(path), ".netsession-*.tmp")
	if err != nil {
		return nil, fmt.Errorf("failed to create temp file: %w", err)
	}
	tmpName := tmp.Name()
	committed := false
	defer func() {
		if !committed {
			os.Remove(tmpName)
		}
	}()

	w := archive.NewWriter(tmp, model, s.collab,
		archive.WithLogger(s.logger),
		archive.WithMonitor(monitor),
		archive.WithHasher(s.hasher),
		archive.WithCompressionLevel(s.level))
	report, err := w.Write(ctx)
	if closeErr := tmp.Close(); err == nil && closeErr != nil {
		err = fmt.Errorf("failed to close archive file: %w", closeErr)
	}
	if err != nil {
		return nil, err
	}

	if err := os.Rename(tmpName, path); err != nil {
		return nil, fmt.Errorf("failed to move archive into place: %w", err)
	}
	committed = true

	s.manager.HandleSaved(model, path)
	s.logger.Info("Session saved",
		zap.String("file", path),
		zap.Int("entries", len(report.Entries)),
		zap.Int("skipped", len(report.Skipped)),
		zap.Int64("bytes", report.Bytes),
		zap.String("digest", utils.ShortHash(report.Digest)))
	return report, nil
}

// Open reads the archive at path and applies it
func (s *Service) Open(ctx context.Context, path string, monitor archive.TaskMonitor) (*archive.ReadResult, error) {
	resolved, err := s.Resolve(path)
	if err != nil {
		s.recordError("open")
		return nil, err
	}
	return s.open(ctx, resolved, resolved, monitor)
}

func (s *Service) open(ctx context.Context, file, identifier string, monitor archive.TaskMonitor) (*archive.ReadResult, error) {
	timer := monitoring.NewTimer()

	reader := archive.NewReader(
		archive.WithReadLogger(s.logger),
		archive.WithReadMonitor(monitor),
		archive.WithExtractDir(s.extractDir))
	result, err := reader.ReadFile(ctx, file)
	if err != nil {
		s.recordError("open")
		return nil, fmt.Errorf("failed to read %s: %w", identifier, err)
	}

	if err := s.manager.Apply(ctx, result.Session, identifier); err != nil {
		s.recordError("open")
		return nil, err
	}

	if s.metrics != nil {
		s.metrics.RecordRestore(timer.Elapsed())
		s.publishWorkspace()
	}
	return result, nil
}

// OpenURL downloads an archive and applies it. The URL becomes the
// session's file name.
func (s *Service) OpenURL(ctx context.Context, rawURL string, monitor archive.TaskMonitor) (*archive.ReadResult, error) {
	if err := utils.ValidateURL(rawURL); err != nil {
		return nil, err
	}

	tmp, err := os.CreateTemp(s.extractDir, "netsession-download-*"+paths.Extension)
	if err != nil {
		return nil, fmt.Errorf("failed to create download file: %w", err)
	}
	tmpName := tmp.Name()
	defer os.Remove(tmpName)

	err = s.breaker.Execute(ctx, func(ctx context.Context) error {
		return s.download(ctx, rawURL, tmp)
	})
	if closeErr := tmp.Close(); err == nil && closeErr != nil {
		err = closeErr
	}
	if err != nil {
		s.recordError("fetch")
		return nil, fmt.Errorf("%w: %s: %v", ErrFetchFailed, rawURL, err)
	}

	return s.open(ctx, tmpName, rawURL, monitor)
}

type statusError struct {
	code int
}

func (e *statusError) Error() string {
	return fmt.Sprintf("unexpected status %d", e.code)
}

func (s *Service) download(ctx context.Context, rawURL string, dst io.Writer) error {
	req, err := retryablehttp.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return err
	}
	resp, err := s.client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return &statusError{code: resp.StatusCode}
	}

	n, err := io.Copy(dst, io.LimitReader(resp.Body, utils.MaxArchiveSize+1))
	if err != nil {
		return err
	}
	if n > utils.MaxArchiveSize {
		return fmt.Errorf("archive exceeds %d bytes", utils.MaxArchiveSize)
	}
	return nil
}

// New discards the workspace and starts an empty session
func (s *Service) New(ctx context.Context) (*types.Session, error) {
	if err := s.manager.Apply(ctx, nil, ""); err != nil {
		return nil, err
	}
	s.publishWorkspace()
	return s.manager.CurrentSession(), nil
}

func (s *Service) recordError(op string) {
	if s.metrics != nil {
		s.metrics.RecordError(op)
	}
}

func (s *Service) publishWorkspace() {
	if s.metrics == nil {
		return
	}
	st := s.manager.Registries().Stats()
	s.metrics.SetWorkspace(st.Networks, st.Views, st.Tables)
}
