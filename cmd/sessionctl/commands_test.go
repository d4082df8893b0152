package main

import (
	"bytes"
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/GriffinCanCode/netsession/internal/io/archive"
	"github.com/GriffinCanCode/netsession/internal/shared/types"
)

func writeSession(t *testing.T) string {
	t.Helper()

	root := types.NewRootNetwork("galFiltered")
	net := root.AddSubnetwork("galFiltered.sif")
	a := net.AddNode("YKR026C")
	b := net.AddNode("YGL122C")
	net.AddEdge(a, b, "pp", false)
	net.Selected = true
	view := types.NewNetworkView(net)

	global := types.NewTable("expression", "gene")
	require.NoError(t, global.AddColumn("level", types.ColumnDouble))
	require.NoError(t, global.AddRow(types.Row{"gene": "YKR026C", "level": "0.5"}))

	model := types.NewSessionBuilder().
		Networks(root.Base(), net).
		NetworkViews(view).
		Tables(types.TableMetadata{Table: global}).
		VisualStyles(types.NewVisualStyle(types.DefaultStyleTitle), types.NewVisualStyle("Marquee")).
		ViewStyles(map[types.SUID]string{view.SUID: "Marquee"}).
		Properties(types.NewProperties("layout", types.PropertySaveSessionFile, map[string]string{"default": "grid"})).
		Build()

	path := filepath.Join(t.TempDir(), "gal.cys")
	f, err := os.Create(path)
	require.NoError(t, err)
	_, err = archive.NewWriter(f, model, archive.DefaultCollaborators()).Write(context.Background())
	require.NoError(t, err)
	require.NoError(t, f.Close())
	return path
}

func run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	cmd := newRootCmd()
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}

func TestInspectJSON(t *testing.T) {
	path := writeSession(t)

	out, err := run(t, "inspect", "--json", path)
	require.NoError(t, err)

	var result InspectResult
	require.NoError(t, json.Unmarshal([]byte(out), &result))
	assert.Equal(t, "3.0", result.Version)
	require.Len(t, result.Networks, 1)
	assert.Equal(t, "galFiltered.sif", result.Networks[0].Name)
	assert.Equal(t, 2, result.Networks[0].Nodes)
	assert.Equal(t, 1, result.Networks[0].Edges)
	assert.ElementsMatch(t, []string{types.DefaultStyleTitle, "Marquee"}, result.Styles)
	assert.Contains(t, result.Properties, "layout")

	var titles []string
	for _, tbl := range result.Tables {
		titles = append(titles, tbl.Title)
	}
	assert.Contains(t, titles, "expression")
}

func TestInspectJSONVerbose(t *testing.T) {
	path := writeSession(t)

	out, err := run(t, "-v", "inspect", "--json", path)
	require.NoError(t, err)

	var result InspectResult
	require.NoError(t, json.Unmarshal([]byte(out), &result), "logs must not mix into stdout")
	assert.Equal(t, "3.0", result.Version)
}

func TestInspectText(t *testing.T) {
	path := writeSession(t)

	out, err := run(t, "inspect", path)
	require.NoError(t, err)
	assert.Contains(t, out, "version 3.0")
	assert.Contains(t, out, "galFiltered.sif")
	assert.Contains(t, out, "(global)")
}

func TestVerify(t *testing.T) {
	path := writeSession(t)

	out, err := run(t, "verify", "--algo", "blake2b", path)
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(out, "OK blake2b:"), out)
	assert.Contains(t, out, "networks=1")
	assert.Contains(t, out, "views=1")
}

func TestVerifyRejectsNonArchive(t *testing.T) {
	path := filepath.Join(t.TempDir(), "notes.cys")
	require.NoError(t, os.WriteFile(path, []byte("plain text"), 0o644))

	_, err := run(t, "verify", path)
	assert.ErrorIs(t, err, archive.ErrNotSessionArchive)
}

func TestInspectRequiresFile(t *testing.T) {
	_, err := run(t, "inspect")
	assert.Error(t, err)

	_, err = run(t, "inspect", filepath.Join(t.TempDir(), "missing.cys"))
	assert.Error(t, err)
}
