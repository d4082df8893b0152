// Package registry holds the live workspace that sessions are captured from
// and restored into.
//
// Each registry owns one kind of object and guards it with its own lock.
// Registries bundles them so the session manager receives every collaborator
// explicitly at construction time.
//
// Components:
//   - NetworkManager: registered subnetworks, in registration order
//   - NetworkTableManager: (network, type, namespace) -> table bindings
//   - TableManager: every live table, global or network-bound
//   - ViewManager: network views
//   - StyleManager: visual styles and view -> style assignments; the default
//     style can never be removed
//   - ApplicationManager: current and selected networks and views
//   - PropertyRegistrar: named property objects with a resolved kind
//   - UndoStack: bounded edit history, cleared on session load
//   - Seeder: loads default styles and properties from YAML/TOML files
//
// Example Usage:
//
//	regs := registry.New()
//	root := types.NewRootNetwork("interactome")
//	net := root.AddSubnetwork("core")
//	if err := regs.AddNetwork(net); err != nil {
//	    return err
//	}
//	regs.Views.AddView(types.NewNetworkView(net))
package registry
