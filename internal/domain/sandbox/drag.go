package sandbox

import "sync"

var dragAliases = map[string]string{
	"pointerdown": "pointerdown",
	"pointermove": "pointermove",
	"pointerup":   "pointerup",
	"mousedown":   "pointerdown",
	"mousemove":   "pointermove",
	"mouseup":     "pointerup",
}

// Draggable moves a floating chrome element with pointer events.
// Positions are not clamped to the viewport.
type Draggable struct {
	elem *Element

	mu       sync.Mutex
	dragging bool
	offsetX  float64
	offsetY  float64
	unbind   []func()
}

// BindDraggable attaches drag handling to elem and sets the idle cursor
func BindDraggable(elem *Element) *Draggable {
	d := &Draggable{elem: elem}
	elem.SetStyle("cursor", "grab")
	for name, kind := range dragAliases {
		k := kind
		d.unbind = append(d.unbind, elem.AddEventListener(name, func(ev *Event) {
			d.handle(k, ev.ClientX, ev.ClientY)
		}))
	}
	return d
}

func (d *Draggable) handle(kind string, x, y float64) {
	d.mu.Lock()
	defer d.mu.Unlock()

	switch kind {
	case "pointerdown":
		left, top := d.elem.Position()
		d.offsetX = x - left
		d.offsetY = y - top
		d.dragging = true
		d.elem.SetStyle("cursor", "grabbing")
	case "pointermove":
		if !d.dragging {
			return
		}
		d.elem.MoveTo(x-d.offsetX, y-d.offsetY)
	case "pointerup":
		d.dragging = false
		d.elem.SetStyle("cursor", "grab")
	}
}

// Dragging reports whether a drag is in progress
func (d *Draggable) Dragging() bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.dragging
}

// Unbind removes the listeners installed by BindDraggable
func (d *Draggable) Unbind() {
	d.mu.Lock()
	fns := d.unbind
	d.unbind = nil
	d.dragging = false
	d.mu.Unlock()

	for _, fn := range fns {
		fn()
	}
}
