package http

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strconv"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/GriffinCanCode/netsession/internal/domain/registry"
	"github.com/GriffinCanCode/netsession/internal/domain/session"
	"github.com/GriffinCanCode/netsession/internal/infrastructure/monitoring"
	"github.com/GriffinCanCode/netsession/internal/shared/types"
)

type fixture struct {
	router  *gin.Engine
	manager *session.Manager
	dir     string
	network *types.Network
}

func setup(t *testing.T) *fixture {
	t.Helper()
	gin.SetMode(gin.TestMode)

	regs := registry.New()
	root := types.NewRootNetwork("galFiltered root")
	n := root.AddSubnetwork("galFiltered")
	a := n.AddNode("YKR026C")
	b := n.AddNode("YGL122C")
	n.AddEdge(a, b, "pp", false)
	require.NoError(t, regs.AddNetwork(n))
	view := types.NewNetworkView(n)
	regs.Views.AddView(view)
	regs.Application.SetSelectedNetworks([]*types.Network{n})
	regs.Tables.AddTable(types.NewTable("expression", "gene"))

	dir := t.TempDir()
	manager := session.NewManager(regs, nil)
	metrics := monitoring.NewMetrics()
	svc := session.NewService(manager, session.WithBaseDir(dir), session.WithExtractDir(t.TempDir()), session.WithMetrics(metrics))

	router := gin.New()
	NewHandlers(svc, metrics, nil).Register(router)
	return &fixture{router: router, manager: manager, dir: dir, network: n}
}

func (f *fixture) do(method, path string, body interface{}) *httptest.ResponseRecorder {
	var buf bytes.Buffer
	if body != nil {
		json.NewEncoder(&buf).Encode(body)
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	f.router.ServeHTTP(w, req)
	return w
}

func decode(t *testing.T, w *httptest.ResponseRecorder) map[string]interface{} {
	t.Helper()
	var out map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &out))
	return out
}

func TestSaveAndOpen(t *testing.T) {
	f := setup(t)

	w := f.do("POST", "/session/save", SaveRequest{Path: "yeast.cys"})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	body := decode(t, w)
	assert.Equal(t, true, body["success"])
	assert.Equal(t, filepath.Join(f.dir, "yeast.cys"), body["path"])
	assert.NotEmpty(t, w.Header().Get("X-Session-Digest"))

	_, err := os.Stat(filepath.Join(f.dir, "yeast.cys"))
	require.NoError(t, err)

	w = f.do("POST", "/session/new", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Zero(t, f.manager.Registries().Networks.Count())

	w = f.do("POST", "/session/open", OpenRequest{Path: "yeast.cys"})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	body = decode(t, w)
	assert.Equal(t, "3.0", body["version"])
	assert.Equal(t, 1, f.manager.Registries().Networks.Count())

	w = f.do("GET", "/session", nil)
	require.Equal(t, http.StatusOK, w.Code)
	body = decode(t, w)
	assert.Equal(t, string(session.StateLoaded), body["state"])
	meta := body["metadata"].(map[string]interface{})
	assert.Equal(t, filepath.Join(f.dir, "yeast.cys"), meta["file_name"])
}

func TestSaveValidation(t *testing.T) {
	f := setup(t)

	tests := []struct {
		name string
		body interface{}
	}{
		{"missing path", map[string]string{}},
		{"wrong extension", SaveRequest{Path: "yeast.zip"}},
		{"escapes session dir", SaveRequest{Path: "../yeast.cys"}},
		{"absolute outside session dir", SaveRequest{Path: "/tmp/yeast.cys"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := f.do("POST", "/session/save", tt.body)
			assert.Equal(t, http.StatusBadRequest, w.Code)
			assert.Contains(t, decode(t, w), "error")
		})
	}
}

func TestOpenErrors(t *testing.T) {
	f := setup(t)
	require.NoError(t, os.WriteFile(filepath.Join(f.dir, "plain.cys"), []byte("not a zip"), 0o644))

	tests := []struct {
		name string
		body OpenRequest
		want int
	}{
		{"neither", OpenRequest{}, http.StatusBadRequest},
		{"both", OpenRequest{Path: "a.cys", URL: "http://example.com/a.cys"}, http.StatusBadRequest},
		{"bad url", OpenRequest{URL: "ftp://example.com/a.cys"}, http.StatusBadRequest},
		{"missing file", OpenRequest{Path: "missing.cys"}, http.StatusNotFound},
		{"not an archive", OpenRequest{Path: "plain.cys"}, http.StatusUnprocessableEntity},
		{"escapes session dir", OpenRequest{Path: "../plain.cys"}, http.StatusBadRequest},
		{"absolute outside session dir", OpenRequest{Path: "/etc/hosts"}, http.StatusBadRequest},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := f.do("POST", "/session/open", tt.body)
			assert.Equal(t, tt.want, w.Code, w.Body.String())
		})
	}
	assert.Equal(t, 1, f.manager.Registries().Networks.Count(), "failed opens keep the workspace")
}

func TestListNetworks(t *testing.T) {
	f := setup(t)

	w := f.do("GET", "/networks", nil)
	require.Equal(t, http.StatusOK, w.Code)

	var body struct {
		Networks []NetworkInfo `json:"networks"`
		Count    int           `json:"count"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	require.Equal(t, 1, body.Count)
	assert.Equal(t, "galFiltered", body.Networks[0].Name)
	assert.True(t, body.Networks[0].Selected)
	assert.Equal(t, 2, body.Networks[0].Nodes)
	assert.Len(t, body.Networks[0].Views, 1)
	assert.Equal(t, f.network.Root.SUID, body.Networks[0].RootSUID)
}

func TestNetworkSummary(t *testing.T) {
	f := setup(t)

	w := f.do("GET", "/networks/"+strconv.FormatInt(int64(f.network.SUID), 10)+"/summary", nil)
	require.Equal(t, http.StatusOK, w.Code)
	body := decode(t, w)
	assert.Equal(t, float64(1), body["components"])
	assert.Equal(t, float64(1), body["edges"])

	assert.Equal(t, http.StatusBadRequest, f.do("GET", "/networks/abc/summary", nil).Code)
	assert.Equal(t, http.StatusNotFound, f.do("GET", "/networks/999999999/summary", nil).Code)
}

func TestListStylesAndTables(t *testing.T) {
	f := setup(t)

	w := f.do("GET", "/styles", nil)
	require.Equal(t, http.StatusOK, w.Code)
	body := decode(t, w)
	assert.Equal(t, types.DefaultStyleTitle, body["default"])
	assert.Len(t, body["view_styles"], 1)

	w = f.do("GET", "/tables", nil)
	require.Equal(t, http.StatusOK, w.Code)
	var tables struct {
		Tables []TableInfo `json:"tables"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &tables))

	var globals []string
	bound := 0
	for _, tbl := range tables.Tables {
		if tbl.Global {
			globals = append(globals, tbl.Title)
			assert.Zero(t, tbl.Network)
			continue
		}
		assert.NotZero(t, tbl.Network, tbl.Title)
		assert.NotEmpty(t, tbl.Namespace, tbl.Title)
		bound++
	}
	assert.Equal(t, 5, bound)
	assert.Equal(t, []string{"expression"}, globals)
	assert.Len(t, tables.Tables, 6, "three default tables, two shared tables and one global")
}

func TestHealthAndMetrics(t *testing.T) {
	f := setup(t)

	w := f.do("GET", "/health", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "healthy", decode(t, w)["status"])

	f.do("POST", "/session/save", SaveRequest{Path: "m.cys"})

	w = f.do("GET", "/metrics", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "netsession_sessions_saved_total 1")

	w = f.do("GET", "/metrics/json", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, float64(1), decode(t, w)["sessions_saved"])
}
