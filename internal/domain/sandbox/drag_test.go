package sandbox

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func pointer(elem *Element, typ string, x, y float64) {
	elem.Dispatch(&Event{Type: typ, ClientX: x, ClientY: y})
}

func TestDragMovesChrome(t *testing.T) {
	chrome := NewElement("div")
	d := BindDraggable(chrome)
	assert.Equal(t, "grab", chrome.Style("cursor"))

	pointer(chrome, "pointerdown", 10, 15)
	assert.True(t, d.Dragging())
	assert.Equal(t, "grabbing", chrome.Style("cursor"))

	pointer(chrome, "pointermove", 200, 250)
	left, top := chrome.Position()
	assert.Equal(t, 190.0, left)
	assert.Equal(t, 235.0, top)
	assert.Equal(t, "190px", chrome.Style("left"))

	pointer(chrome, "pointerup", 200, 250)
	assert.False(t, d.Dragging())
	assert.Equal(t, "grab", chrome.Style("cursor"))
}

func TestDragKeepsGrabOffset(t *testing.T) {
	chrome := NewElement("div")
	chrome.MoveTo(100, 50)
	BindDraggable(chrome)

	pointer(chrome, "mousedown", 120, 70)
	pointer(chrome, "mousemove", 20, 10)
	pointer(chrome, "mouseup", 20, 10)

	left, top := chrome.Position()
	assert.Equal(t, 0.0, left)
	assert.Equal(t, -10.0, top)
}

func TestMoveWithoutPressIsIgnored(t *testing.T) {
	chrome := NewElement("div")
	BindDraggable(chrome)

	pointer(chrome, "pointermove", 300, 300)
	left, top := chrome.Position()
	assert.Zero(t, left)
	assert.Zero(t, top)
}

func TestUnbindRemovesListeners(t *testing.T) {
	chrome := NewElement("div")
	d := BindDraggable(chrome)
	assert.Equal(t, 1, chrome.ListenerCount("pointerdown"))

	d.Unbind()
	for typ := range dragAliases {
		assert.Zero(t, chrome.ListenerCount(typ), typ)
	}

	pointer(chrome, "pointerdown", 1, 1)
	assert.False(t, d.Dragging())
}
