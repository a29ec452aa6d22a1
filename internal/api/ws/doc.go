// Package ws streams session events over WebSocket.
//
// A client connects to /sessions/:id/stream and receives every event the
// session publishes until the session closes or the client goes away.
//
// Message Types (Client → Server):
//   - ping: Keep-alive ping
//
// Message Types (Server → Client):
//   - connected: Current session view, sent once on connect
//   - crash, mode, loading, tabs: Session state changes
//   - frame: Draw commands from the script window
//   - diagnostic: Script compile, draw and console output
//   - window: Script window position and status
//   - closed: The session ended; the socket closes after it
//   - pong: Reply to ping
//   - error: Malformed client message
//
// Example Usage:
//
//	handler := ws.NewHandler(sessions, metrics, logger, origins)
//	router.GET("/sessions/:id/stream", handler.HandleConnection)
package ws
