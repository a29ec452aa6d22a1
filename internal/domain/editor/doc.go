/*
Package editor owns the open tabs of the fake code editor.

A Manager keeps an ordered tab list and an active-tab pointer:

  - SelectFile opens a path, or focuses the tab already showing it
  - EditContent updates a tab's working copy and recomputes its dirty flag
  - CloseTab removes a tab; closing the active one promotes the last tab

Each tab's content is a private copy seeded from the manifest content table.
At most one tab is open per path.
*/
package editor
