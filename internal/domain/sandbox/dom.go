package sandbox

import (
	"strconv"
	"strings"
	"sync"
)

// DOM is a lightweight document the editor pane lives in
type DOM struct {
	root *Element
}

// NewDOM creates an empty document
func NewDOM() *DOM {
	return &DOM{root: NewElement("document")}
}

// Root returns the document element
func (d *DOM) Root() *Element {
	return d.root
}

// Query finds elements by selector (#id, .class or tag)
func (d *DOM) Query(selector string) []*Element {
	switch {
	case strings.HasPrefix(selector, "#"):
		id := strings.TrimPrefix(selector, "#")
		if elem := findByID(d.root, id); elem != nil {
			return []*Element{elem}
		}
		return nil
	case strings.HasPrefix(selector, "."):
		return findByClass(d.root, strings.TrimPrefix(selector, "."))
	default:
		return findByTag(d.root, selector)
	}
}

// Listener handles a dispatched event
type Listener func(*Event)

// Event is a pointer event travelling from its target up to the document
type Event struct {
	Type    string
	ClientX float64
	ClientY float64
	Target  *Element

	defaultPrevented bool
	stopped          bool
}

// PreventDefault suppresses the browser default without stopping propagation
func (e *Event) PreventDefault() { e.defaultPrevented = true }

// DefaultPrevented reports whether a listener called PreventDefault
func (e *Event) DefaultPrevented() bool { return e.defaultPrevented }

// StopPropagation keeps the event from reaching ancestors
func (e *Event) StopPropagation() { e.stopped = true }

// Element is a DOM node with inline style and event listeners
type Element struct {
	TagName   string
	ID        string
	ClassName string

	mu         sync.RWMutex
	attributes map[string]string
	style      map[string]string
	children   []*Element
	parent     *Element
	listeners  map[string][]*listenerEntry
}

type listenerEntry struct {
	fn Listener
}

// NewElement creates a detached element
func NewElement(tag string) *Element {
	return &Element{
		TagName:    tag,
		attributes: make(map[string]string),
		style:      make(map[string]string),
		listeners:  make(map[string][]*listenerEntry),
	}
}

// GetAttribute retrieves an attribute value
func (e *Element) GetAttribute(name string) string {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.attributes[name]
}

// SetAttribute sets an attribute value
func (e *Element) SetAttribute(name, value string) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.attributes[name] = value
}

// Style reads one inline style property
func (e *Element) Style(prop string) string {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.style[prop]
}

// SetStyle writes one inline style property
func (e *Element) SetStyle(prop, value string) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.style[prop] = value
}

// Styles returns a copy of the inline style
func (e *Element) Styles() map[string]string {
	e.mu.RLock()
	defer e.mu.RUnlock()
	out := make(map[string]string, len(e.style))
	for k, v := range e.style {
		out[k] = v
	}
	return out
}

// Position returns the element's top-left corner from its left/top style.
// Missing or non-pixel values count as 0.
func (e *Element) Position() (left, top float64) {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return parsePx(e.style["left"]), parsePx(e.style["top"])
}

// MoveTo sets the left/top style in pixels
func (e *Element) MoveTo(left, top float64) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.style["left"] = formatPx(left)
	e.style["top"] = formatPx(top)
}

// AppendChild attaches child as the last child
func (e *Element) AppendChild(child *Element) {
	if old := child.Parent(); old != nil {
		old.RemoveChild(child)
	}
	e.mu.Lock()
	e.children = append(e.children, child)
	e.mu.Unlock()

	child.mu.Lock()
	child.parent = e
	child.mu.Unlock()
}

// RemoveChild detaches child; false when child is not a child of e
func (e *Element) RemoveChild(child *Element) bool {
	e.mu.Lock()
	idx := -1
	for i, c := range e.children {
		if c == child {
			idx = i
			break
		}
	}
	if idx < 0 {
		e.mu.Unlock()
		return false
	}
	e.children = append(e.children[:idx:idx], e.children[idx+1:]...)
	e.mu.Unlock()

	child.mu.Lock()
	child.parent = nil
	child.mu.Unlock()
	return true
}

// Children returns a snapshot of the child list
func (e *Element) Children() []*Element {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return append([]*Element(nil), e.children...)
}

// Contains reports whether child is a direct child of e
func (e *Element) Contains(child *Element) bool {
	for _, c := range e.Children() {
		if c == child {
			return true
		}
	}
	return false
}

// Parent returns the parent element, or nil when detached
func (e *Element) Parent() *Element {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.parent
}

// AddEventListener registers fn for an event type and returns its remover
func (e *Element) AddEventListener(typ string, fn Listener) func() {
	entry := &listenerEntry{fn: fn}
	e.mu.Lock()
	e.listeners[typ] = append(e.listeners[typ], entry)
	e.mu.Unlock()

	return func() {
		e.mu.Lock()
		defer e.mu.Unlock()
		list := e.listeners[typ]
		for i, l := range list {
			if l == entry {
				e.listeners[typ] = append(list[:i:i], list[i+1:]...)
				return
			}
		}
	}
}

// ListenerCount returns how many listeners are registered for typ
func (e *Element) ListenerCount(typ string) int {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return len(e.listeners[typ])
}

// Dispatch delivers ev to e and then each ancestor until propagation stops.
func (e *Element) Dispatch(ev *Event) {
	ev.Target = e
	for node := e; node != nil && !ev.stopped; node = node.Parent() {
		node.mu.RLock()
		list := append([]*listenerEntry(nil), node.listeners[ev.Type]...)
		node.mu.RUnlock()

		for _, l := range list {
			l.fn(ev)
		}
	}
}

func parsePx(v string) float64 {
	f, err := strconv.ParseFloat(strings.TrimSuffix(strings.TrimSpace(v), "px"), 64)
	if err != nil {
		return 0
	}
	return f
}

func formatPx(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64) + "px"
}

func findByID(elem *Element, id string) *Element {
	if elem.ID == id {
		return elem
	}
	for _, child := range elem.Children() {
		if found := findByID(child, id); found != nil {
			return found
		}
	}
	return nil
}

func findByClass(elem *Element, class string) []*Element {
	var result []*Element
	for _, c := range strings.Fields(elem.ClassName) {
		if c == class {
			result = append(result, elem)
			break
		}
	}
	for _, child := range elem.Children() {
		result = append(result, findByClass(child, class)...)
	}
	return result
}

func findByTag(elem *Element, tag string) []*Element {
	var result []*Element
	if strings.EqualFold(elem.TagName, tag) {
		result = append(result, elem)
	}
	for _, child := range elem.Children() {
		result = append(result, findByTag(child, tag)...)
	}
	return result
}
