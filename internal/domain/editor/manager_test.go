package editor

import (
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmrgn/portfolio/backend/internal/domain/manifest"
	"github.com/dmrgn/portfolio/backend/internal/shared/id"
)

func testTable() manifest.ContentTable {
	return manifest.ContentTable{
		"a.js":      manifest.Text("let a = 1;"),
		"b.ts":      manifest.Text("const b = 2;"),
		"README.md": {Kind: manifest.KindRenderable, HTML: "<h1>hi</h1>"},
	}
}

func TestSelectFileOpensTab(t *testing.T) {
	m := NewManager(testTable())

	tab, created := m.SelectFile("a.js")
	require.True(t, created)

	assert.Equal(t, "a.js", tab.Name)
	assert.Equal(t, "javascript", tab.Language)
	assert.Equal(t, "let a = 1;", tab.Content.Text)
	assert.False(t, tab.IsDirty)
	assert.True(t, id.IsValidPrefixed(tab.ID.String(), id.TabPrefix))

	active, ok := m.Active()
	require.True(t, ok)
	assert.Equal(t, tab.ID, active.ID)
}

func TestSelectFileMissingContent(t *testing.T) {
	m := NewManager(testTable())

	tab, _ := m.SelectFile("src/components/Header.tsx")
	assert.Equal(t, "Header.tsx", tab.Name)
	assert.Equal(t, "typescript", tab.Language)
	assert.Equal(t, "// Content for Header.tsx", tab.Content.Text)
}

func TestReselectPreservesEdits(t *testing.T) {
	m := NewManager(testTable())

	a, _ := m.SelectFile("a.js")
	_, err := m.EditContent(a.ID, "let a = 42;")
	require.NoError(t, err)

	m.SelectFile("b.ts")
	again, created := m.SelectFile("a.js")

	assert.False(t, created)
	assert.Equal(t, a.ID, again.ID)
	assert.Equal(t, "let a = 42;", again.Content.Text)
	assert.True(t, again.IsDirty)
	assert.Len(t, m.Tabs(), 2)
}

func TestEditContentDirtyTracking(t *testing.T) {
	m := NewManager(testTable())
	a, _ := m.SelectFile("a.js")

	tab, err := m.EditContent(a.ID, "changed")
	require.NoError(t, err)
	assert.True(t, tab.IsDirty)

	tab, err = m.EditContent(a.ID, "let a = 1;")
	require.NoError(t, err)
	assert.False(t, tab.IsDirty, "reverting to the baseline clears dirty")

	p, _ := m.SelectFile("x/notes.txt")
	tab, err = m.EditContent(p.ID, "// Content for notes.txt")
	require.NoError(t, err)
	assert.False(t, tab.IsDirty, "placeholder is the baseline for missing entries")
}

func TestEditContentErrors(t *testing.T) {
	m := NewManager(testTable())

	_, err := m.EditContent("tab_missing", "x")
	assert.ErrorIs(t, err, ErrTabNotFound)

	readme, _ := m.SelectFile("README.md")
	_, err = m.EditContent(readme.ID, "x")
	assert.ErrorIs(t, err, ErrNotEditable)
}

func TestCloseTabPromotesLast(t *testing.T) {
	m := NewManager(testTable())
	a, _ := m.SelectFile("a.js")
	b, _ := m.SelectFile("b.ts")
	c, _ := m.SelectFile("README.md")

	// a is active and in the middle; the last tab wins, not a neighbour
	require.NoError(t, m.Activate(a.ID))
	require.NoError(t, m.CloseTab(a.ID))

	active, ok := m.Active()
	require.True(t, ok)
	assert.Equal(t, c.ID, active.ID)

	// closing an inactive tab leaves the active one alone
	require.NoError(t, m.CloseTab(b.ID))
	active, _ = m.Active()
	assert.Equal(t, c.ID, active.ID)

	require.NoError(t, m.CloseTab(c.ID))
	_, ok = m.Active()
	assert.False(t, ok)
	assert.Empty(t, m.Tabs())

	assert.ErrorIs(t, m.CloseTab(c.ID), ErrTabNotFound)
}

func TestActivateUnknown(t *testing.T) {
	m := NewManager(testTable())
	assert.ErrorIs(t, m.Activate("tab_nope"), ErrTabNotFound)
}

func TestActiveChangeHook(t *testing.T) {
	type change struct{ prev, next id.TabID }
	var changes []change

	m := NewManager(testTable(), WithActiveChange(func(prev, next id.TabID) {
		changes = append(changes, change{prev, next})
	}))

	a, _ := m.SelectFile("a.js")
	b, _ := m.SelectFile("b.ts")
	m.SelectFile("b.ts") // already active, no change
	require.NoError(t, m.CloseTab(b.ID))

	assert.Equal(t, []change{
		{"", a.ID},
		{a.ID, b.ID},
		{b.ID, a.ID},
	}, changes)
}

func TestLanguageFromPath(t *testing.T) {
	tests := map[string]string{
		"x.js":     "javascript",
		"x.JSX":    "javascript",
		"x.tsx":    "typescript",
		"x.css":    "css",
		"x.html":   "html",
		"x.json":   "json",
		"x.md":     "markdown",
		"x.go":     "text",
		"Makefile": "text",
	}
	for p, want := range tests {
		assert.Equal(t, want, LanguageFromPath(p), p)
	}
}

// Random operation sequences must keep one tab per path and exact dirty flags.
func TestRandomSequencesKeepInvariants(t *testing.T) {
	table := testTable()
	paths := []string{"a.js", "b.ts", "README.md", "c.css", "d/e.md"}
	rng := rand.New(rand.NewSource(7))

	for round := 0; round < 50; round++ {
		m := NewManager(table)

		for step := 0; step < 40; step++ {
			tabs := m.Tabs()
			switch op := rng.Intn(4); {
			case op == 0 || len(tabs) == 0:
				m.SelectFile(paths[rng.Intn(len(paths))])
			case op == 1:
				_ = m.CloseTab(tabs[rng.Intn(len(tabs))].ID)
			case op == 2:
				tab := tabs[rng.Intn(len(tabs))]
				if tab.Content.IsText() {
					text := table.Lookup(tab.Path).Text
					if rng.Intn(2) == 0 {
						text += " // edited"
					}
					_, err := m.EditContent(tab.ID, text)
					require.NoError(t, err)
				}
			default:
				require.NoError(t, m.Activate(tabs[rng.Intn(len(tabs))].ID))
			}

			perPath := make(map[string]int)
			for _, tab := range m.Tabs() {
				perPath[tab.Path]++
				assert.LessOrEqual(t, perPath[tab.Path], 1, "duplicate tab for %s", tab.Path)
				assert.Equal(t, !tab.Content.Equal(table.Lookup(tab.Path)), tab.IsDirty, "dirty flag for %s", tab.Path)
			}

			if tabs := m.Tabs(); len(tabs) > 0 {
				_, ok := m.Active()
				assert.True(t, ok, "some tab must be active while tabs are open")
			}
		}
	}
}
