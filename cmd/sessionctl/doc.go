// Command sessionctl inspects and verifies session archives offline.
//
//	sessionctl inspect [--json] <file>
//	sessionctl verify [--algo sha256|blake2b] <file>
//
// verify restores the archive into scratch registries, so a zero exit
// status means the file would open in the server.
package main
