package sandbox

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDOMQuery(t *testing.T) {
	dom := NewDOM()
	pane := NewElement("section")
	pane.ClassName = "pane editor"
	chrome := NewElement("div")
	chrome.ID = "chrome"
	pane.AppendChild(chrome)
	dom.Root().AppendChild(pane)

	require.Len(t, dom.Query("#chrome"), 1)
	assert.Same(t, chrome, dom.Query("#chrome")[0])
	assert.Len(t, dom.Query(".editor"), 1)
	assert.Len(t, dom.Query("div"), 1)
	assert.Empty(t, dom.Query("#missing"))
}

func TestAppendAndRemoveChild(t *testing.T) {
	a := NewElement("div")
	b := NewElement("div")
	child := NewElement("canvas")

	a.AppendChild(child)
	assert.Same(t, a, child.Parent())

	b.AppendChild(child)
	assert.False(t, a.Contains(child))
	assert.True(t, b.Contains(child))

	assert.True(t, b.RemoveChild(child))
	assert.False(t, b.RemoveChild(child))
	assert.Nil(t, child.Parent())
}

func TestDispatchBubblesUntilStopped(t *testing.T) {
	outer := NewElement("div")
	inner := NewElement("span")
	outer.AppendChild(inner)

	var order []string
	inner.AddEventListener("click", func(*Event) { order = append(order, "inner") })
	outer.AddEventListener("click", func(*Event) { order = append(order, "outer") })

	inner.Dispatch(&Event{Type: "click"})
	assert.Equal(t, []string{"inner", "outer"}, order)

	order = nil
	remove := inner.AddEventListener("click", func(ev *Event) { ev.StopPropagation() })
	inner.Dispatch(&Event{Type: "click"})
	assert.Equal(t, []string{"inner"}, order)

	order = nil
	remove()
	inner.Dispatch(&Event{Type: "click"})
	assert.Equal(t, []string{"inner", "outer"}, order)
}

func TestPositionParsesPixels(t *testing.T) {
	e := NewElement("div")
	e.SetStyle("left", "12.5px")
	e.SetStyle("top", "auto")

	left, top := e.Position()
	assert.Equal(t, 12.5, left)
	assert.Zero(t, top)
}
