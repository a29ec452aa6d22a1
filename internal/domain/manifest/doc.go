// Package manifest builds the virtual file tree and content table the editor browses.
//
// A manifest is built once per grouping context and is read-only afterwards;
// it is safe to share between sessions.
package manifest
