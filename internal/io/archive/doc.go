// Package archive writes and reads session archives.
//
// A Writer streams one immutable Session into a zip in a fixed order:
// version marker, root networks, views, tables and their index, visual
// styles, properties, then app files. Format-specific encoding is
// delegated to Collaborators so alternative encoders can be plugged in.
// A Reader reverses the process and rebuilds a Session.
package archive
