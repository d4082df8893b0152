package registry

import (
	"fmt"
	"strconv"

	"github.com/GriffinCanCode/netsession/internal/shared/types"
)

// Table namespaces
const (
	// NamespaceUser holds the public default tables of a network
	NamespaceUser = "USER"
	// NamespaceShared holds root-level tables shared by every subnetwork
	NamespaceShared = "SHARED"
)

// Default column names
const (
	ColumnName        = "name"
	ColumnSharedName  = "shared name"
	ColumnSelected    = "selected"
	ColumnInteraction = "interaction"
)

// Registries bundles every live registry of a workspace. It is created once
// and handed to whoever needs to read or rebuild the workspace.
type Registries struct {
	Networks      *NetworkManager
	NetworkTables *NetworkTableManager
	Tables        *TableManager
	Views         *ViewManager
	Styles        *StyleManager
	Application   *ApplicationManager
	Properties    *PropertyRegistrar
	Undo          *UndoStack
}

// Stats summarizes the live workspace
type Stats struct {
	Networks   int `json:"networks"`
	Views      int `json:"views"`
	Tables     int `json:"tables"`
	Styles     int `json:"styles"`
	Properties int `json:"properties"`
	UndoDepth  int `json:"undo_depth"`
}

// New creates empty registries holding only the default style
func New() *Registries {
	return &Registries{
		Networks:      NewNetworkManager(),
		NetworkTables: NewNetworkTableManager(),
		Tables:        NewTableManager(),
		Views:         NewViewManager(),
		Styles:        NewStyleManager(),
		Application:   NewApplicationManager(),
		Properties:    NewPropertyRegistrar(),
		Undo:          NewUndoStack(),
	}
}

// AddNetwork registers a network, giving it a root if it has none, and
// creates default tables for the network and its root when missing
func (r *Registries) AddNetwork(n *types.Network) error {
	if n.IsRoot() {
		return fmt.Errorf("network %d is a root network; register its subnetworks", n.SUID)
	}
	root := EnsureRoot(n)

	if _, ok := r.NetworkTables.Table(root.Base(), types.IdentifiableNode, NamespaceShared); !ok {
		if err := r.createSharedTables(root); err != nil {
			return err
		}
	}
	if _, ok := r.NetworkTables.Table(n, types.IdentifiableNode, NamespaceUser); !ok {
		if err := r.createDefaultTables(n); err != nil {
			return err
		}
	}

	r.Networks.AddNetwork(n)
	return nil
}

// AddNetworkTable registers a table and binds it to a network
func (r *Registries) AddNetworkTable(n *types.Network, typ types.IdentifiableType, namespace string, t *types.Table) {
	r.Tables.AddNetworkTable(t)
	r.NetworkTables.SetTable(n, typ, namespace, t)
}

// DestroyNetwork removes a network with its views and tables. The root's
// shared tables go away with its last registered subnetwork.
func (r *Registries) DestroyNetwork(n *types.Network) {
	for _, v := range r.Views.ViewsOf(n.SUID) {
		r.DestroyView(v)
	}
	r.dropTables(n)
	r.Networks.DestroyNetwork(n.SUID)

	if n.Root == nil {
		return
	}
	for _, sub := range n.Root.Subnetworks {
		if _, ok := r.Networks.Network(sub.SUID); ok {
			return
		}
	}
	r.dropTables(n.Root.Base())
}

// DestroyView removes a view and its style assignment
func (r *Registries) DestroyView(v *types.NetworkView) {
	r.Views.DestroyView(v.SUID)
	r.Styles.ClearViewStyle(v.SUID)
	if cur := r.Application.CurrentView(); cur != nil && cur.SUID == v.SUID {
		r.Application.SetCurrentView(nil)
	}
}

// Stats summarizes the live workspace
func (r *Registries) Stats() Stats {
	return Stats{
		Networks:   r.Networks.Count(),
		Views:      r.Views.Count(),
		Tables:     len(r.Tables.Tables()),
		Styles:     len(r.Styles.Styles()),
		Properties: len(r.Properties.Properties()),
		UndoDepth:  r.Undo.Len(),
	}
}

func (r *Registries) dropTables(n *types.Network) {
	for _, typ := range types.IdentifiableTypes {
		for _, t := range r.NetworkTables.Tables(n, typ) {
			r.Tables.DeleteTable(t.SUID)
		}
	}
	r.NetworkTables.RemoveTables(n)
}

func (r *Registries) createDefaultTables(n *types.Network) error {
	netTable := types.NewTable(n.Name+" default network", "")
	if err := addColumns(netTable, types.Column{Name: ColumnName, Type: types.ColumnString}, types.Column{Name: ColumnSelected, Type: types.ColumnBoolean}); err != nil {
		return err
	}
	if err := netTable.AddRow(types.Row{
		types.DefaultPrimaryKey: suidString(n.SUID),
		ColumnName:              n.Name,
		ColumnSelected:          strconv.FormatBool(n.Selected),
	}); err != nil {
		return err
	}

	nodeTable := types.NewTable(n.Name+" default node", "")
	if err := addColumns(nodeTable, types.Column{Name: ColumnName, Type: types.ColumnString}, types.Column{Name: ColumnSelected, Type: types.ColumnBoolean}); err != nil {
		return err
	}
	names := make(map[types.SUID]string, len(n.Nodes))
	for _, node := range n.Nodes {
		names[node.SUID] = node.Name
		if err := nodeTable.AddRow(types.Row{
			types.DefaultPrimaryKey: suidString(node.SUID),
			ColumnName:              node.Name,
			ColumnSelected:          "false",
		}); err != nil {
			return err
		}
	}

	edgeTable := types.NewTable(n.Name+" default edge", "")
	if err := addColumns(edgeTable,
		types.Column{Name: ColumnName, Type: types.ColumnString},
		types.Column{Name: ColumnInteraction, Type: types.ColumnString},
		types.Column{Name: ColumnSelected, Type: types.ColumnBoolean},
	); err != nil {
		return err
	}
	for _, e := range n.Edges {
		if err := edgeTable.AddRow(types.Row{
			types.DefaultPrimaryKey: suidString(e.SUID),
			ColumnName:              fmt.Sprintf("%s (%s) %s", names[e.Source], e.Interaction, names[e.Target]),
			ColumnInteraction:       e.Interaction,
			ColumnSelected:          "false",
		}); err != nil {
			return err
		}
	}

	r.AddNetworkTable(n, types.IdentifiableNetwork, NamespaceUser, netTable)
	r.AddNetworkTable(n, types.IdentifiableNode, NamespaceUser, nodeTable)
	r.AddNetworkTable(n, types.IdentifiableEdge, NamespaceUser, edgeTable)
	return nil
}

func (r *Registries) createSharedTables(root *types.RootNetwork) error {
	base := root.Base()

	nodeTable := types.NewTable(base.Name+" shared node", "")
	if err := addColumns(nodeTable, types.Column{Name: ColumnSharedName, Type: types.ColumnString}); err != nil {
		return err
	}
	for _, node := range base.Nodes {
		if err := nodeTable.AddRow(types.Row{
			types.DefaultPrimaryKey: suidString(node.SUID),
			ColumnSharedName:        node.Name,
		}); err != nil {
			return err
		}
	}

	edgeTable := types.NewTable(base.Name+" shared edge", "")
	if err := addColumns(edgeTable, types.Column{Name: ColumnSharedName, Type: types.ColumnString}, types.Column{Name: ColumnInteraction, Type: types.ColumnString}); err != nil {
		return err
	}
	for _, e := range base.Edges {
		if err := edgeTable.AddRow(types.Row{
			types.DefaultPrimaryKey: suidString(e.SUID),
			ColumnInteraction:       e.Interaction,
		}); err != nil {
			return err
		}
	}

	r.AddNetworkTable(base, types.IdentifiableNode, NamespaceShared, nodeTable)
	r.AddNetworkTable(base, types.IdentifiableEdge, NamespaceShared, edgeTable)
	return nil
}

func addColumns(t *types.Table, cols ...types.Column) error {
	for _, c := range cols {
		if err := t.AddColumn(c.Name, c.Type); err != nil {
			return err
		}
	}
	return nil
}

func suidString(suid types.SUID) string {
	return strconv.FormatInt(int64(suid), 10)
}
