// Package ws streams session lifecycle events to browsers over WebSocket.
//
// The Hub registers as a session listener and broadcasts every event as a
// JSON frame encoded with sonic. Slow clients are disconnected rather than
// blocking the session manager.
//
// Message Types (Server → Client):
//   - system: sent once after connecting, carries the current session state
//   - session.loaded: a session was opened or a new one started
//   - session.saved: the session was written to an archive
//   - pong: reply to ping
//   - error: the client sent something the server does not understand
//
// Message Types (Client → Server):
//   - ping: keep-alive
//
// Example Usage:
//
//	hub := ws.NewHub(logger, metrics)
//	manager.AddListener(hub.Listener())
//	router.GET("/ws", ws.NewHandler(hub, manager, cors.OriginAllowed).HandleConnection)
package ws
