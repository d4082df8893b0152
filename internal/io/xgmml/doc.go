// Package xgmml reads and writes the graph documents of a session archive.
//
// A network document holds a root network: every node and edge of the root
// followed by one nested graph per subnetwork that references them by id.
// A view document holds node positions, view-level visual properties and the
// title of the view's visual style.
package xgmml
