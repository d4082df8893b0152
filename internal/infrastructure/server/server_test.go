package server

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/GriffinCanCode/netsession/internal/infrastructure/config"
	"github.com/GriffinCanCode/netsession/internal/infrastructure/logging"
)

const seedYAML = `
styles:
  - title: Marquee
    defaults:
      NODE_SHAPE: ELLIPSE
properties:
  - name: bookmarks
    bookmarks:
      - name: Network Data
        sources:
          - name: galFiltered
            format: sif
            url: https://example.com/galFiltered.sif
`

func testConfig(t *testing.T) *config.Config {
	t.Helper()
	cfg := config.Default()
	cfg.Logging.Development = true
	cfg.Session.Dir = t.TempDir()
	cfg.Session.ExtractDir = t.TempDir()
	cfg.RateLimit.Enabled = false
	return cfg
}

func TestServerSeedsDefaults(t *testing.T) {
	cfg := testConfig(t)
	cfg.Session.SeedDir = t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(cfg.Session.SeedDir, "defaults.yaml"), []byte(seedYAML), 0o644))

	srv, err := New(cfg, logging.NewNop())
	require.NoError(t, err)

	_, ok := srv.Manager().Bookmarks()
	assert.True(t, ok)

	req := httptest.NewRequest("GET", "/styles", nil)
	w := httptest.NewRecorder()
	srv.Handler().ServeHTTP(w, req)
	require.Equal(t, http.StatusOK, w.Code)

	var body struct {
		Styles []struct {
			Title string `json:"title"`
		} `json:"styles"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	require.Len(t, body.Styles, 2)
	assert.Equal(t, "Marquee", body.Styles[1].Title)
}

func TestServerRejectsInvalidConfig(t *testing.T) {
	cfg := testConfig(t)
	cfg.Session.HashAlgorithm = "md5"

	_, err := New(cfg, logging.NewNop())
	assert.Error(t, err)
}

func TestServerRoutes(t *testing.T) {
	srv, err := New(testConfig(t), logging.NewNop())
	require.NoError(t, err)

	for _, path := range []string{"/", "/health", "/session", "/networks", "/tables", "/metrics", "/metrics/json"} {
		req := httptest.NewRequest("GET", path, nil)
		w := httptest.NewRecorder()
		srv.Handler().ServeHTTP(w, req)
		assert.Equal(t, http.StatusOK, w.Code, path)
	}
}
