package paths

import (
	"fmt"
	"net/url"
	"path"
	"strings"
	"time"

	"github.com/GriffinCanCode/netsession/internal/shared/types"
)

// Archive format
const (
	// Version is encoded in the name of the empty marker entry
	Version    = "3.0"
	VersionExt = ".cys"
	Extension  = ".cys"

	SessionPrefix = "CytoscapeSession-"
	sessionLayout = "2006_01_02-15_04"
)

// Session subdirectories and fixed files
const (
	NetworksFolder     = "networks/"
	NetworkViewsFolder = "networkViews/"
	TablesFolder       = "tables/"
	PropertiesFolder   = "properties/"
	AppsFolder         = "apps/"

	TableStateFile = "cytables.xml"
	VizmapFile     = "session_vizmap.xml"
	BookmarksFile  = "session_bookmarks.xml"

	// accepted on read only
	AltVersionExt     = ".cysession"
	AltTableStateFile = "table_state.xml"

	XGMMLExt      = ".xgmml"
	TableExt      = ".cytable"
	PropertiesExt = ".props"

	GlobalTablesFolder = "global/"
)

// SessionDir returns the top-level directory of an archive written at t
func SessionDir(t time.Time) string {
	return SessionPrefix + t.Format(sessionLayout) + "/"
}

// VersionEntry returns the path of the version marker
func VersionEntry(sessionDir string) string {
	return sessionDir + Version + VersionExt
}

// NetworkEntry returns the path of a root network document
func NetworkEntry(sessionDir string, root *types.RootNetwork) string {
	return sessionDir + NetworksFolder + NetworkFilename(root.Base())
}

// NetworkFilename is "<suid>-<escaped name>.xgmml"
func NetworkFilename(n *types.Network) string {
	return fmt.Sprintf("%d-%s%s", n.SUID, Escape(n.Name), XGMMLExt)
}

// ViewEntry returns the path of a network view document
func ViewEntry(sessionDir string, view *types.NetworkView) string {
	return sessionDir + NetworkViewsFolder + ViewFilename(view)
}

// ViewFilename is "<network suid>-<view suid>.xgmml"
func ViewFilename(view *types.NetworkView) string {
	var netSUID types.SUID
	if view.Network != nil {
		netSUID = view.Network.SUID
	}
	return fmt.Sprintf("%d-%d%s", netSUID, view.SUID, XGMMLExt)
}

// TableFilename returns the name of a table entry relative to the tables folder
func TableFilename(meta types.TableMetadata) string {
	title := Escape(meta.Table.Title)
	if meta.IsGlobal() {
		return fmt.Sprintf("%s%d-%s%s", GlobalTablesFolder, meta.Table.SUID, title, TableExt)
	}
	ns := meta.Namespace
	if ns == "" {
		ns = "default"
	}
	return fmt.Sprintf("%d-%s/%s-%s-%s%s",
		meta.Network.SUID, Escape(meta.Network.Name), string(meta.Type), Escape(ns), title, TableExt)
}

// TableEntry returns the path of a table entry
func TableEntry(sessionDir, filename string) string {
	return sessionDir + TablesFolder + filename
}

// PropertiesEntry returns the path of a property file
func PropertiesEntry(sessionDir, filename string) string {
	return sessionDir + PropertiesFolder + filename
}

// AppEntry returns the path of an app-contributed file. filename may hold
// subdirectories below the app folder.
func AppEntry(sessionDir, app, filename string) string {
	return sessionDir + AppsFolder + app + "/" + path.Clean(filename)
}

// Escape makes a name safe to use as a single archive path segment
func Escape(name string) string {
	return strings.ReplaceAll(url.PathEscape(name), "%20", "+")
}

// Unescape reverses Escape
func Unescape(name string) string {
	unescaped, err := url.PathUnescape(strings.ReplaceAll(name, "+", "%20"))
	if err != nil {
		return name
	}
	return unescaped
}

// SplitEntry splits an archive entry into its session dir and the path below it
func SplitEntry(name string) (sessionDir, rel string, ok bool) {
	i := strings.Index(name, "/")
	if i < 0 {
		return "", "", false
	}
	return name[:i+1], name[i+1:], true
}
