package sandbox

import (
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/dop251/goja"
)

// Runtime wraps a goja VM with the pane's globals installed
type Runtime struct {
	vm     *goja.Runtime
	config Config
	mu     sync.Mutex

	console   []LogEntry
	consoleMu sync.Mutex
}

// New creates a new sandboxed runtime
func New(config Config) (*Runtime, error) {
	r := &Runtime{
		vm:     goja.New(),
		config: config,
	}
	r.vm.SetMaxCallStackSize(1024)

	if err := r.setupGlobals(); err != nil {
		return nil, err
	}
	return r, nil
}

// setupGlobals removes module loading and captures console output
func (r *Runtime) setupGlobals() error {
	for _, name := range []string{"require", "process", "module", "exports"} {
		if err := r.vm.Set(name, goja.Undefined()); err != nil {
			return fmt.Errorf("failed to clear %s: %w", name, err)
		}
	}

	if r.config.EnableConsole {
		console := r.vm.NewObject()
		for _, level := range []string{"log", "info", "warn", "error"} {
			if err := console.Set(level, r.makeConsoleFunc(level)); err != nil {
				return err
			}
		}
		if err := r.vm.Set("console", console); err != nil {
			return err
		}
	}
	return nil
}

func (r *Runtime) makeConsoleFunc(level string) func(goja.FunctionCall) goja.Value {
	return func(call goja.FunctionCall) goja.Value {
		parts := make([]string, len(call.Arguments))
		for i, arg := range call.Arguments {
			parts[i] = arg.String()
		}

		r.consoleMu.Lock()
		r.console = append(r.console, LogEntry{
			Level:   level,
			Message: strings.Join(parts, " "),
			Time:    time.Now(),
		})
		r.consoleMu.Unlock()

		return goja.Undefined()
	}
}

// DrainConsole returns and clears the captured console output
func (r *Runtime) DrainConsole() []LogEntry {
	r.consoleMu.Lock()
	defer r.consoleMu.Unlock()
	out := r.console
	r.console = nil
	return out
}

// InjectDOM exposes document lookups over dom
func (r *Runtime) InjectDOM(dom *DOM) error {
	if dom == nil || !r.config.EnableDOM {
		return nil
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	document := r.vm.NewObject()
	lookup := func(prefix string, all bool) func(goja.FunctionCall) goja.Value {
		return func(call goja.FunctionCall) goja.Value {
			if len(call.Arguments) == 0 {
				return goja.Null()
			}
			elements := dom.Query(prefix + call.Argument(0).String())
			if all {
				proxies := make([]interface{}, len(elements))
				for i, elem := range elements {
					proxies[i] = r.createElementProxy(elem)
				}
				return r.vm.ToValue(proxies)
			}
			if len(elements) == 0 {
				return goja.Null()
			}
			return r.createElementProxy(elements[0])
		}
	}

	document.Set("querySelector", lookup("", false))
	document.Set("querySelectorAll", lookup("", true))
	document.Set("getElementById", lookup("#", false))
	document.Set("getElementsByClassName", lookup(".", true))
	document.Set("getElementsByTagName", lookup("", true))

	return r.vm.Set("document", document)
}

// createElementProxy exposes an element with a live style object
func (r *Runtime) createElementProxy(elem *Element) goja.Value {
	obj := r.vm.NewObject()
	obj.Set("tagName", elem.TagName)
	obj.Set("id", elem.ID)
	obj.Set("className", elem.ClassName)
	obj.Set("getAttribute", func(name string) string {
		return elem.GetAttribute(name)
	})
	obj.Set("setAttribute", func(name, value string) {
		elem.SetAttribute(name, value)
	})
	obj.Set("style", r.vm.NewDynamicObject(&styleObject{elem: elem, vm: r.vm}))
	return obj
}

// styleObject maps element.style reads and writes onto the inline style
type styleObject struct {
	elem *Element
	vm   *goja.Runtime
}

func (s *styleObject) Get(key string) goja.Value {
	return s.vm.ToValue(s.elem.Style(key))
}

func (s *styleObject) Set(key string, val goja.Value) bool {
	s.elem.SetStyle(key, val.String())
	return true
}

func (s *styleObject) Has(key string) bool {
	_, ok := s.elem.Styles()[key]
	return ok
}

func (s *styleObject) Delete(key string) bool {
	s.elem.SetStyle(key, "")
	return true
}

func (s *styleObject) Keys() []string {
	styles := s.elem.Styles()
	keys := make([]string, 0, len(styles))
	for k := range styles {
		keys = append(keys, k)
	}
	return keys
}

// Compile evaluates source as the body of an anonymous constructor and
// returns the constructed instance. The constructor is interrupted with
// ErrCompileTimeout once the compile budget runs out.
func (r *Runtime) Compile(source string) (*goja.Object, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	prog, err := goja.Compile("window.js", "(function () {\n"+source+"\n})", false)
	if err != nil {
		return nil, err
	}

	var instance *goja.Object
	err = r.bounded(r.config.CompileBudget(), ErrCompileTimeout, func() error {
		ctor, err := r.vm.RunProgram(prog)
		if err != nil {
			return err
		}
		instance, err = r.vm.New(ctor)
		return err
	})
	if err != nil {
		return nil, err
	}
	return instance, nil
}

// Draw calls instance.draw(ctx) bounded by the configured tick timeout
func (r *Runtime) Draw(instance *goja.Object, ctx *goja.Object) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	fn, ok := goja.AssertFunction(instance.Get("draw"))
	if !ok {
		return ErrNoDraw
	}

	return r.bounded(r.config.TickTimeout, ErrTickTimeout, func() error {
		_, err := fn(instance, ctx)
		return err
	})
}

// bounded runs fn, interrupting the VM with cause after budget. The caller
// holds r.mu.
func (r *Runtime) bounded(budget time.Duration, cause error, fn func() error) error {
	var timer *time.Timer
	if budget > 0 {
		vm := r.vm
		timer = time.AfterFunc(budget, func() {
			vm.Interrupt(cause)
		})
	}

	err := fn()

	if timer != nil && !timer.Stop() && err == nil {
		// The timer fired after fn returned; drop the pending interrupt.
		r.vm.ClearInterrupt()
	}
	return interruptCause(err)
}

// Interrupt aborts whatever the VM is running, or the next call if idle.
// It does not take the runtime lock.
func (r *Runtime) Interrupt(v interface{}) {
	if vm := r.vm; vm != nil {
		vm.Interrupt(v)
	}
}

// VM exposes the underlying goja runtime
func (r *Runtime) VM() *goja.Runtime {
	return r.vm
}

// Reset replaces the VM with a fresh one
func (r *Runtime) Reset() error {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.vm = goja.New()
	r.vm.SetMaxCallStackSize(1024)
	r.consoleMu.Lock()
	r.console = nil
	r.consoleMu.Unlock()
	return r.setupGlobals()
}

// Close releases resources
func (r *Runtime) Close() error {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.vm = nil
	r.console = nil
	return nil
}

// interruptCause unwraps interrupts raised with one of the package errors
func interruptCause(err error) error {
	var ie *goja.InterruptedError
	if errors.As(err, &ie) {
		if cause, ok := ie.Value().(error); ok {
			return cause
		}
	}
	return err
}
