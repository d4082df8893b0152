// Package http exposes the session service over a JSON REST API.
//
// Session endpoints:
//   - GET  /session: state, identity and metadata of the tracked session
//   - POST /session/new: discard the workspace and start empty
//   - POST /session/save {"path": "x.cys"}: write the workspace
//   - POST /session/open {"path": "x.cys"} or {"url": "https://..."}: replace the workspace
//
// Workspace endpoints:
//   - GET /networks, GET /networks/:suid/summary
//   - GET /styles
//   - GET /tables
//
// Operational endpoints: GET /health, GET /metrics (Prometheus text) and
// GET /metrics/json. Errors are returned as {"error": "..."}.
package http
