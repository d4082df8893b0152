package session

import (
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"sync/atomic"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/GriffinCanCode/netsession/internal/domain/registry"
	"github.com/GriffinCanCode/netsession/internal/infrastructure/monitoring"
	"github.com/GriffinCanCode/netsession/internal/io/archive"
	"github.com/GriffinCanCode/netsession/internal/shared/types"
)

func fastFetch() FetchSettings {
	return FetchSettings{
		Timeout:         5 * time.Second,
		MaxRetries:      1,
		RetryWaitMin:    time.Millisecond,
		RetryWaitMax:    5 * time.Millisecond,
		BreakerFailures: 5,
	}
}

func newService(t *testing.T, m *Manager, opts ...ServiceOption) *Service {
	t.Helper()
	dir := t.TempDir()
	opts = append([]ServiceOption{
		WithBaseDir(dir),
		WithExtractDir(t.TempDir()),
		WithFetchSettings(fastFetch()),
	}, opts...)
	return NewService(m, opts...)
}

func resolve(t *testing.T, svc *Service, path string) string {
	t.Helper()
	resolved, err := svc.Resolve(path)
	require.NoError(t, err)
	return resolved
}

func TestServiceSaveAndOpen(t *testing.T) {
	m, _, view := workspace(t)
	metrics := monitoring.NewMetrics()
	svc := newService(t, m, WithMetrics(metrics))

	var progress []float64
	monitor := archive.MonitorFunc(func(p float64, _ string) {
		if p >= 0 {
			progress = append(progress, p)
		}
	})

	report, err := svc.Save(context.Background(), "work.cys", monitor)
	require.NoError(t, err)
	assert.Positive(t, report.Bytes)
	assert.NotEmpty(t, report.Digest)
	require.NotEmpty(t, progress)
	assert.Equal(t, 1.0, progress[len(progress)-1])

	path := resolve(t, svc, "work.cys")
	info, err := os.Stat(path)
	require.NoError(t, err)
	assert.Equal(t, report.Bytes, info.Size())

	leftovers, err := filepath.Glob(filepath.Join(filepath.Dir(path), ".netsession-*.tmp"))
	require.NoError(t, err)
	assert.Empty(t, leftovers)

	assert.Equal(t, StateLoaded, m.State())
	assert.Equal(t, path, m.CurrentFileName())
	assert.Equal(t, int64(1), metrics.Snapshot().SessionsSaved)

	target := NewManager(registry.New(), nil)
	other := NewService(target, WithExtractDir(t.TempDir()))
	result, err := other.Open(context.Background(), path, nil)
	require.NoError(t, err)
	assert.Equal(t, "3.0", result.Version)

	cur := target.Registries().Application.CurrentView()
	require.NotNil(t, cur)
	assert.Equal(t, view.SUID, cur.SUID)
	assert.Equal(t, path, target.CurrentFileName())
}

func TestServiceSaveRejectsExtension(t *testing.T) {
	m, _, _ := workspace(t)
	metrics := monitoring.NewMetrics()
	svc := newService(t, m, WithMetrics(metrics))

	_, err := svc.Save(context.Background(), "work.zip", nil)
	require.Error(t, err)
	assert.Equal(t, StateNoSession, m.State())
	assert.Equal(t, 1.0, testutil.ToFloat64(metrics.SessionErrors.WithLabelValues("save")))
}

func TestServiceSaveMissingDirectory(t *testing.T) {
	m, _, _ := workspace(t)
	svc := newService(t, m)

	_, err := svc.Save(context.Background(), filepath.Join("missing", "x.cys"), nil)
	assert.Error(t, err)
	assert.NotErrorIs(t, err, ErrOutsideBaseDir)
	assert.Empty(t, m.CurrentFileName())
}

func TestServiceResolveStaysInBaseDir(t *testing.T) {
	parent := t.TempDir()
	base := filepath.Join(parent, "sessions")
	require.NoError(t, os.Mkdir(base, 0o755))
	svc := NewService(NewManager(registry.New(), nil), WithBaseDir(base))

	tests := []struct {
		name string
		path string
		want string
	}{
		{"relative", "work.cys", filepath.Join(base, "work.cys")},
		{"nested", filepath.Join("team", "work.cys"), filepath.Join(base, "team", "work.cys")},
		{"dot segments inside", filepath.Join("team", "..", "work.cys"), filepath.Join(base, "work.cys")},
		{"absolute inside", filepath.Join(base, "abs.cys"), filepath.Join(base, "abs.cys")},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := svc.Resolve(tt.path)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}

	for _, path := range []string{
		filepath.Join("..", "escaped.cys"),
		filepath.Join("team", "..", "..", "escaped.cys"),
		filepath.Join(parent, "escaped.cys"),
		"/etc/x.cys",
		"..",
		".",
	} {
		_, err := svc.Resolve(path)
		assert.ErrorIs(t, err, ErrOutsideBaseDir, path)
	}
}

func TestServiceSaveOutsideBaseDir(t *testing.T) {
	m, _, _ := workspace(t)
	parent := t.TempDir()
	base := filepath.Join(parent, "sessions")
	require.NoError(t, os.Mkdir(base, 0o755))
	metrics := monitoring.NewMetrics()
	svc := NewService(m, WithBaseDir(base), WithExtractDir(t.TempDir()), WithMetrics(metrics))

	_, err := svc.Save(context.Background(), filepath.Join("..", "escaped.cys"), nil)
	assert.ErrorIs(t, err, ErrOutsideBaseDir)
	assert.NoFileExists(t, filepath.Join(parent, "escaped.cys"))
	assert.Equal(t, StateNoSession, m.State())
	assert.Equal(t, 1.0, testutil.ToFloat64(metrics.SessionErrors.WithLabelValues("save")))

	outside := filepath.Join(parent, "outside.cys")
	require.NoError(t, os.WriteFile(outside, []byte("x"), 0o644))
	_, err = svc.Open(context.Background(), outside, nil)
	assert.ErrorIs(t, err, ErrOutsideBaseDir)
}

func TestServiceOpenNotAnArchive(t *testing.T) {
	m, _, _ := workspace(t)
	svc := newService(t, m)

	path := resolve(t, svc, "notes.cys")
	require.NoError(t, os.WriteFile(path, []byte("just some text"), 0o644))

	before := m.Registries().Stats()
	_, err := svc.Open(context.Background(), "notes.cys", nil)
	assert.ErrorIs(t, err, archive.ErrNotSessionArchive)
	assert.Equal(t, before, m.Registries().Stats())
}

func TestServiceOpenURL(t *testing.T) {
	m, n1, _ := workspace(t)
	svc := newService(t, m)
	_, err := svc.Save(context.Background(), "remote.cys", nil)
	require.NoError(t, err)
	data, err := os.ReadFile(resolve(t, svc, "remote.cys"))
	require.NoError(t, err)

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/sessions/remote.cys" {
			http.NotFound(w, r)
			return
		}
		w.Header().Set("Content-Type", "application/zip")
		_, _ = w.Write(data)
	}))
	defer srv.Close()

	target := NewManager(registry.New(), nil)
	other := newService(t, target)

	url := srv.URL + "/sessions/remote.cys"
	_, err = other.OpenURL(context.Background(), url, nil)
	require.NoError(t, err)
	assert.Equal(t, url, target.CurrentFileName())

	cur := target.Registries().Application.CurrentNetwork()
	require.NotNil(t, cur)
	assert.Equal(t, n1.SUID, cur.SUID)

	_, err = other.OpenURL(context.Background(), srv.URL+"/sessions/missing.cys", nil)
	assert.ErrorIs(t, err, ErrFetchFailed)
	assert.Equal(t, url, target.CurrentFileName(), "failed download leaves the session alone")
}

func TestServiceOpenURLValidates(t *testing.T) {
	svc := newService(t, NewManager(registry.New(), nil))

	for _, raw := range []string{"", "ftp://example.com/x.cys", "file:///etc/passwd", "http://"} {
		_, err := svc.OpenURL(context.Background(), raw, nil)
		assert.Error(t, err, raw)
	}
}

func TestServiceOpenURLServerErrorsTripBreaker(t *testing.T) {
	var hits atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer srv.Close()

	settings := fastFetch()
	settings.MaxRetries = 0
	settings.BreakerFailures = 2
	svc := newService(t, NewManager(registry.New(), nil), WithFetchSettings(settings))

	for i := 0; i < 2; i++ {
		_, err := svc.OpenURL(context.Background(), srv.URL+"/x.cys", nil)
		assert.ErrorIs(t, err, ErrFetchFailed)
	}
	assert.Equal(t, int32(2), hits.Load())

	_, err := svc.OpenURL(context.Background(), srv.URL+"/x.cys", nil)
	assert.ErrorIs(t, err, ErrFetchFailed)
	assert.Equal(t, int32(2), hits.Load(), "open breaker short-circuits the request")
}

func TestServiceNew(t *testing.T) {
	m, _, _ := workspace(t)
	svc := newService(t, m)

	model, err := svc.New(context.Background())
	require.NoError(t, err)
	require.NotNil(t, model)
	assert.Empty(t, model.Networks())
	assert.Len(t, model.VisualStyles(), 1)
	assert.Equal(t, types.DefaultStyleTitle, model.VisualStyles()[0].Title)
	assert.Zero(t, m.Registries().Networks.Count())
}
