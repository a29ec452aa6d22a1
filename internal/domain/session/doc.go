// Package session holds the per-visit state of the portfolio.
//
// A Session starts on the landing page. Scrolling the language chart into
// view fires the one-off fake crash; continuing from the crash switches the
// session to the code editor for good and plays the loading splash.
//
// Components:
//   - Session: view mode, crash, tabs, sandbox pane and event stream
//   - Manager: creation, lookup and teardown of sessions
//   - Broker: non-blocking fan-out of session events to subscribers
//   - Storage: per-session key/value values
//
// Example Usage:
//
//	manager := session.NewManager(catalog, session.WithLogger(log))
//	s, err := manager.Create("nvidia")
//	s.ScrollComplete(session.CrashTrigger)
//	err = s.Continue()
package session
