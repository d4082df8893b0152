// Package paths defines the internal layout of a session archive.
//
// Every entry lives under a timestamped session directory:
//
//	CytoscapeSession-2024_05_01-13_37/
//	    3.0.cys                          (empty version marker)
//	    networks/<suid>-<name>.xgmml     (one per root network)
//	    networkViews/<net>-<view>.xgmml  (one per view)
//	    tables/<...>.cytable             (one per persisted table)
//	    tables/cytables.xml              (table index)
//	    session_vizmap.xml
//	    properties/session_bookmarks.xml
//	    properties/<name>.props
//	    apps/<app>/<file>
//
// Writers and readers must go through these helpers so both sides agree.
package paths
