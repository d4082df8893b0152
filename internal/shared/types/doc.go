// Package types provides the shared data model of the session service.
//
// Core Types:
//   - RootNetwork, Network, Node, Edge: graph data and its ownership
//   - NetworkView: a view of a network with node positions
//   - Table, TableMetadata: attribute tables and their session binding
//   - VisualStyle: named visual defaults and mappings
//   - Property: session-scoped property objects tagged by kind
//   - Session: immutable snapshot built with SessionBuilder
//
// Save Policies:
//   - SavePolicy: networks and tables (session_file / do_not_save)
//   - PropertySavePolicy: properties (config_dir / session_file / both)
//
// Example Usage:
//
//	root := types.NewRootNetwork("galFiltered")
//	net := root.AddSubnetwork("galFiltered")
//	sess := types.NewSessionBuilder().
//	    Networks(net).
//	    NetworkViews(types.NewNetworkView(net)).
//	    Build()
package types
