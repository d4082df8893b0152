package session

import (
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/GriffinCanCode/netsession/internal/domain/registry"
	"github.com/GriffinCanCode/netsession/internal/io/archive"
	"github.com/GriffinCanCode/netsession/internal/shared/types"
)

// workspace builds a live workspace with one saved network N1 holding a
// selected view, plus a network that is not saved
func workspace(t *testing.T) (*Manager, *types.Network, *types.NetworkView) {
	t.Helper()
	regs := registry.New()
	m := NewManager(regs, nil)

	root := types.NewRootNetwork("N1 root")
	n1 := root.AddSubnetwork("N1")
	a := n1.AddNode("a")
	b := n1.AddNode("b")
	n1.AddEdge(a, b, "pp", true)
	require.NoError(t, regs.AddNetwork(n1))

	scratch := types.NewRootNetwork("scratch root").AddSubnetwork("scratch")
	scratch.SavePolicy = types.SavePolicyDoNotSave
	require.NoError(t, regs.AddNetwork(scratch))

	view := types.NewNetworkView(n1)
	view.NodePositions[a.SUID] = types.Point{X: 10, Y: 20}
	regs.Views.AddView(view)
	regs.Views.AddView(types.NewNetworkView(scratch))

	regs.Application.SetSelectedNetworks([]*types.Network{n1})
	regs.Application.SetCurrentNetwork(n1)
	regs.Application.SetCurrentView(view)
	return m, n1, view
}

func roundTrip(t *testing.T, model *types.Session) *types.Session {
	t.Helper()
	var buf bytes.Buffer
	_, err := archive.NewWriter(&buf, model, archive.DefaultCollaborators()).Write(context.Background())
	require.NoError(t, err)

	result, err := archive.NewReader(archive.WithExtractDir(t.TempDir())).ReadBytes(context.Background(), buf.Bytes())
	require.NoError(t, err)
	return result.Session
}

func TestCaptureSelectsSessionNetworks(t *testing.T) {
	m, n1, view := workspace(t)

	model, err := m.Capture(context.Background())
	require.NoError(t, err)

	names := map[string]bool{}
	for _, n := range model.Networks() {
		names[n.Name] = true
	}
	assert.Equal(t, map[string]bool{"N1": true, "N1 root": true}, names)

	views := model.NetworkViews()
	require.Len(t, views, 1)
	assert.Equal(t, view.SUID, views[0].SUID)
	assert.Equal(t, types.DefaultStyleTitle, model.ViewStyles()[view.SUID])

	// default USER tables of N1 plus SHARED tables of its root
	var n1Tables, rootTables int
	for _, meta := range model.Tables() {
		require.False(t, meta.IsGlobal())
		switch meta.Network.SUID {
		case n1.SUID:
			n1Tables++
		case n1.Root.SUID:
			rootTables++
		default:
			t.Fatalf("table %q of unsaved network", meta.Table.Title)
		}
	}
	assert.Equal(t, 3, n1Tables)
	assert.Equal(t, 2, rootTables)
}

func TestCaptureTables(t *testing.T) {
	m, _, _ := workspace(t)
	regs := m.Registries()

	global := types.NewTable("expression", "gene")
	regs.Tables.AddTable(global)
	private := types.NewTable("cache", "")
	private.SavePolicy = types.SavePolicyDoNotSave
	regs.Tables.AddTable(private)

	model, err := m.Capture(context.Background())
	require.NoError(t, err)

	var titles []string
	for _, meta := range model.Tables() {
		if meta.IsGlobal() {
			titles = append(titles, meta.Table.Title)
		}
	}
	assert.Equal(t, []string{"expression"}, titles)
}

func TestCaptureRunsHooks(t *testing.T) {
	m, _, _ := workspace(t)
	file := filepath.Join(t.TempDir(), "state.json")
	require.NoError(t, os.WriteFile(file, []byte("{}"), 0o644))

	m.RegisterHook(HookFunc(func(ctx context.Context, sc *SaveContext) error {
		return sc.AddAppFiles("cyAnimator", types.AppFile{Name: "state.json", Path: file})
	}))

	model, err := m.Capture(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []string{"cyAnimator"}, model.AppNames())

	m.RegisterHook(HookFunc(func(ctx context.Context, sc *SaveContext) error {
		return sc.AddAppFiles("../evil", types.AppFile{Name: "x", Path: file})
	}))
	_, err = m.Capture(context.Background())
	assert.Error(t, err)
}

func TestSaveContextKeepsAppSubdirectories(t *testing.T) {
	sc := newSaveContext()
	require.NoError(t, sc.AddAppFiles("cyAnimator", types.AppFile{Name: "frames/./01.json", Path: "/tmp/01.json"}))
	assert.Equal(t, "frames/01.json", sc.Files()["cyAnimator"][0].Name)

	assert.Error(t, sc.AddAppFiles("cyAnimator", types.AppFile{Name: "../escape", Path: "/tmp/01.json"}))
	assert.Len(t, sc.Files()["cyAnimator"], 1)
}

func TestCaptureSnapshotsSessionProperties(t *testing.T) {
	m, _, _ := workspace(t)
	require.NoError(t, m.AddProperty(types.NewProperties("layout", types.PropertySaveSessionFile, map[string]string{"a": "1"})))
	require.NoError(t, m.AddProperty(types.NewProperties("prefs", types.PropertySaveConfigDir, nil)))
	require.NoError(t, m.AddProperty(types.NewBookmarks("bookmarks", types.PropertySaveSessionFileAndConfig, nil)))

	model, err := m.Capture(context.Background())
	require.NoError(t, err)

	var names []string
	for _, p := range model.Properties() {
		names = append(names, p.Name)
	}
	assert.ElementsMatch(t, []string{"layout", "bookmarks"}, names)
}

func TestBookmarksSlot(t *testing.T) {
	m := NewManager(registry.New(), nil)
	_, ok := m.Bookmarks()
	assert.False(t, ok)

	require.NoError(t, m.AddProperty(types.NewBookmarks("bookmarks", types.PropertySaveSessionFile, nil)))
	b, ok := m.Bookmarks()
	require.True(t, ok)
	assert.Equal(t, "bookmarks", b.Name)

	assert.True(t, m.RemoveProperty("bookmarks"))
	_, ok = m.Bookmarks()
	assert.False(t, ok)
	assert.False(t, m.RemoveProperty("bookmarks"))
}

func TestApplyCurrentNetworkAndView(t *testing.T) {
	m, n1, view := workspace(t)
	model, err := m.Capture(context.Background())
	require.NoError(t, err)
	restored := roundTrip(t, model)

	target := NewManager(registry.New(), nil)
	require.NoError(t, target.Apply(context.Background(), restored, "n1.cys"))

	app := target.Registries().Application
	cur := app.CurrentNetwork()
	require.NotNil(t, cur)
	assert.Equal(t, "N1", cur.Name)
	assert.Equal(t, n1.SUID, cur.SUID)

	curView := app.CurrentView()
	require.NotNil(t, curView)
	assert.Equal(t, view.SUID, curView.SUID)
	assert.Same(t, cur, curView.Network)
	assert.Equal(t, types.Point{X: 10, Y: 20}, curView.NodePositions[n1.Nodes[0].SUID])

	require.Len(t, app.SelectedViews(), 1)
	assert.Equal(t, StateLoaded, target.State())
	assert.Equal(t, "n1.cys", target.CurrentFileName())
}

func TestApplyRoundTripContent(t *testing.T) {
	m, _, view := workspace(t)
	regs := m.Registries()

	marquee := types.NewVisualStyle("Marquee")
	marquee.Defaults["NODE_SHAPE"] = "ELLIPSE"
	regs.Styles.AddStyle(marquee)
	require.NoError(t, regs.Styles.SetViewStyle(view.SUID, "Marquee"))
	regs.Tables.AddTable(types.NewTable("expression", "gene"))

	model, err := m.Capture(context.Background())
	require.NoError(t, err)
	restored := roundTrip(t, model)

	target := NewManager(registry.New(), nil)
	require.NoError(t, target.Apply(context.Background(), restored, "x.cys"))
	live := target.Registries()

	var netNames []string
	for _, n := range live.Networks.Networks() {
		netNames = append(netNames, n.Name)
	}
	assert.Equal(t, []string{"N1"}, netNames)

	var styleTitles []string
	for _, s := range live.Styles.Styles() {
		styleTitles = append(styleTitles, s.Title)
	}
	assert.Equal(t, []string{types.DefaultStyleTitle, "Marquee"}, styleTitles)
	assert.Equal(t, "Marquee", live.Styles.ViewStyle(view.SUID).Title)

	titles := map[string]bool{}
	for _, tbl := range live.Tables.Tables() {
		titles[tbl.Title] = true
	}
	for _, meta := range model.Tables() {
		assert.True(t, titles[meta.Table.Title], "table %q restored", meta.Table.Title)
	}

	// the persisted tables replace the defaults created on registration
	n1 := live.Networks.Networks()[0]
	nodeTable, ok := live.NetworkTables.Table(n1, types.IdentifiableNode, registry.NamespaceUser)
	require.True(t, ok)
	for _, meta := range model.Tables() {
		if !meta.IsGlobal() && meta.Network.SUID == n1.SUID && meta.Type == types.IdentifiableNode {
			assert.Equal(t, meta.Table.SUID, nodeTable.SUID)
		}
	}
	assert.Len(t, live.Tables.Tables(), len(model.Tables()))
}

func TestRoundTripDropsUnsavedSibling(t *testing.T) {
	m, n1, _ := workspace(t)
	regs := m.Registries()

	sibling := n1.Root.AddSubnetwork("N1 scratch")
	sibling.SavePolicy = types.SavePolicyDoNotSave
	require.NoError(t, regs.AddNetwork(sibling))

	model, err := m.Capture(context.Background())
	require.NoError(t, err)
	restored := roundTrip(t, model)

	target := NewManager(registry.New(), nil)
	require.NoError(t, target.Apply(context.Background(), restored, "x.cys"))

	var names []string
	for _, n := range target.Registries().Networks.Networks() {
		names = append(names, n.Name)
	}
	assert.Equal(t, []string{"N1"}, names)
	for _, n := range restored.Networks() {
		assert.NotEqual(t, sibling.SUID, n.SUID)
	}
}

func TestApplyUnknownStyleFallsBack(t *testing.T) {
	root := types.NewRootNetwork("r")
	n := root.AddSubnetwork("n")
	view := types.NewNetworkView(n)
	model := types.NewSessionBuilder().
		Networks(n, root.Base()).
		NetworkViews(view).
		ViewStyles(map[types.SUID]string{view.SUID: "Gone"}).
		Build()

	m := NewManager(registry.New(), nil)
	require.NoError(t, m.Apply(context.Background(), model, ""))
	assert.Equal(t, types.DefaultStyleTitle, m.Registries().Styles.ViewStyle(view.SUID).Title)
	assert.Nil(t, m.Registries().Application.CurrentNetwork(), "nothing was selected")
}

func TestApplyEmptySession(t *testing.T) {
	m, _, _ := workspace(t)
	regs := m.Registries()
	regs.Styles.AddStyle(types.NewVisualStyle("Marquee"))
	regs.Undo.Push("layout")
	require.NoError(t, m.AddProperty(types.NewProperties("layout", types.PropertySaveSessionFile, nil)))
	require.NoError(t, m.AddProperty(types.NewProperties("prefs", types.PropertySaveConfigDir, nil)))

	var loaded []Event
	m.AddListener(func(e Event) { loaded = append(loaded, e) })
	require.NoError(t, m.Apply(context.Background(), nil, "untitled.cys"))
	require.Len(t, loaded, 1)
	assert.Equal(t, "untitled.cys", loaded[0].FileName)

	assert.Zero(t, regs.Networks.Count())
	assert.Zero(t, regs.Views.Count())
	assert.Empty(t, regs.Tables.Tables())
	require.Len(t, regs.Styles.Styles(), 1)
	assert.Equal(t, types.DefaultStyleTitle, regs.Styles.Styles()[0].Title)
	assert.Zero(t, regs.Undo.Len())
	assert.Nil(t, regs.Application.CurrentNetwork())
	assert.Nil(t, regs.Application.CurrentView())

	_, ok := regs.Properties.Property("layout")
	assert.False(t, ok)
	_, ok = regs.Properties.Property("prefs")
	assert.True(t, ok)

	assert.Equal(t, "untitled.cys", m.CurrentFileName())
	require.NotNil(t, m.CurrentSession())
	assert.Len(t, m.CurrentSession().VisualStyles(), 1)
}

func TestSaveEmptySessionThenApply(t *testing.T) {
	m := NewManager(registry.New(), nil)
	model, err := m.Capture(context.Background())
	require.NoError(t, err)
	restored := roundTrip(t, model)

	target, _, _ := workspace(t)
	require.NoError(t, target.Apply(context.Background(), restored, "empty.cys"))

	regs := target.Registries()
	assert.Zero(t, regs.Networks.Count())
	assert.Zero(t, regs.Views.Count())
	require.Len(t, regs.Styles.Styles(), 1)
	assert.Equal(t, types.DefaultStyleTitle, regs.Styles.Styles()[0].Title)
}

func TestApplyRejectsInvalidModel(t *testing.T) {
	outside := types.NewRootNetwork("r").AddSubnetwork("outside")
	inside := types.NewRootNetwork("r2").AddSubnetwork("inside")
	insideView := types.NewNetworkView(inside)

	tests := []struct {
		name  string
		model *types.Session
	}{
		{"view of foreign network", types.NewSessionBuilder().NetworkViews(types.NewNetworkView(outside)).Build()},
		{"table of foreign network", types.NewSessionBuilder().
			Networks(inside).
			Tables(types.TableMetadata{Table: types.NewTable("t", ""), Network: outside, Type: types.IdentifiableNode}).
			Build()},
		{"style of unknown view", types.NewSessionBuilder().
			Networks(inside).
			NetworkViews(insideView).
			ViewStyles(map[types.SUID]string{insideView.SUID + 1000: "default"}).
			Build()},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m, _, _ := workspace(t)
			before := m.Registries().Stats()

			err := m.Apply(context.Background(), tt.model, "bad.cys")
			assert.ErrorIs(t, err, ErrInvalidModel)
			assert.Equal(t, before, m.Registries().Stats(), "live state untouched")
			assert.Equal(t, StateNoSession, m.State())
		})
	}
}

func TestLifecycleEvents(t *testing.T) {
	m := NewManager(registry.New(), nil)
	assert.Equal(t, StateNoSession, m.State())

	var events []Event
	lid := m.AddListener(func(e Event) { events = append(events, e) })

	require.NoError(t, m.Apply(context.Background(), nil, ""))
	loadedID := m.SessionID()
	assert.NotEmpty(t, loadedID)

	model, err := m.Capture(context.Background())
	require.NoError(t, err)
	m.HandleSaved(model, "/tmp/a.cys")

	require.Len(t, events, 2)
	assert.Equal(t, EventLoaded, events[0].Type)
	assert.Equal(t, EventSaved, events[1].Type)
	assert.Equal(t, "/tmp/a.cys", events[1].FileName)
	assert.Equal(t, loadedID, events[1].SessionID, "saving keeps the session identity")
	assert.Same(t, model, m.CurrentSession())

	stats := m.Stats()
	assert.Equal(t, string(StateLoaded), stats.State)
	assert.NotNil(t, stats.LastSaved)
	assert.NotNil(t, stats.LastRestored)
	assert.Equal(t, 1, stats.Listeners)

	assert.True(t, m.RemoveListener(lid))
	assert.False(t, m.RemoveListener(lid))
	require.NoError(t, m.Apply(context.Background(), nil, ""))
	assert.Len(t, events, 2)
}

func TestHandleSavedLeavesWorkspace(t *testing.T) {
	m, _, _ := workspace(t)
	before := m.Registries().Stats()

	m.HandleSaved(types.NewSessionBuilder().Build(), "other.cys")
	assert.Equal(t, before, m.Registries().Stats())
	assert.Equal(t, StateLoaded, m.State())
	assert.Equal(t, "other.cys", m.CurrentFileName())
}

func TestCaptureCanceled(t *testing.T) {
	m, _, _ := workspace(t)
	m.RegisterHook(HookFunc(func(context.Context, *SaveContext) error { return nil }))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := m.Capture(ctx)
	assert.True(t, errors.Is(err, context.Canceled))
}
