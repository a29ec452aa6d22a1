package sandbox

import (
	"github.com/dop251/goja"
)

var drawMethods = []string{
	"fillRect", "strokeRect", "clearRect", "rect",
	"beginPath", "closePath", "moveTo", "lineTo", "arc", "ellipse",
	"quadraticCurveTo", "bezierCurveTo",
	"fill", "stroke", "fillText", "strokeText",
	"translate", "rotate", "scale", "setTransform", "resetTransform",
}

var stateProps = map[string]interface{}{
	"fillStyle":   "#000000",
	"strokeStyle": "#000000",
	"lineWidth":   int64(1),
	"lineCap":     "butt",
	"font":        "10px sans-serif",
	"textAlign":   "start",
	"globalAlpha": int64(1),
}

// recorder collects the commands issued against one 2D context
type recorder struct {
	commands []Command
	state    map[string]interface{}
	saved    []map[string]interface{}
}

func newRecorder() *recorder {
	state := make(map[string]interface{}, len(stateProps))
	for k, v := range stateProps {
		state[k] = v
	}
	return &recorder{state: state}
}

func (r *recorder) add(op string, args []interface{}) {
	r.commands = append(r.commands, Command{Op: op, Args: args})
}

// take returns the recorded commands and starts a new frame
func (r *recorder) take() []Command {
	out := r.commands
	r.commands = nil
	return out
}

func (r *recorder) save() {
	snapshot := make(map[string]interface{}, len(r.state))
	for k, v := range r.state {
		snapshot[k] = v
	}
	r.saved = append(r.saved, snapshot)
}

func (r *recorder) restore() {
	if len(r.saved) == 0 {
		return
	}
	r.state = r.saved[len(r.saved)-1]
	r.saved = r.saved[:len(r.saved)-1]
}

// newContext2D builds the ctx object handed to draw
func newContext2D(vm *goja.Runtime, rec *recorder) (*goja.Object, error) {
	ctx := vm.NewObject()

	for _, name := range drawMethods {
		op := name
		if err := ctx.Set(op, func(call goja.FunctionCall) goja.Value {
			rec.add(op, exportArgs(call.Arguments))
			return goja.Undefined()
		}); err != nil {
			return nil, err
		}
	}

	ctx.Set("save", func(goja.FunctionCall) goja.Value {
		rec.save()
		rec.add("save", nil)
		return goja.Undefined()
	})
	ctx.Set("restore", func(goja.FunctionCall) goja.Value {
		rec.restore()
		rec.add("restore", nil)
		return goja.Undefined()
	})

	for name := range stateProps {
		prop := name
		getter := vm.ToValue(func(goja.FunctionCall) goja.Value {
			return vm.ToValue(rec.state[prop])
		})
		setter := vm.ToValue(func(call goja.FunctionCall) goja.Value {
			v := call.Argument(0).Export()
			rec.state[prop] = v
			rec.add("set", []interface{}{prop, v})
			return goja.Undefined()
		})
		if err := ctx.DefineAccessorProperty(prop, getter, setter, goja.FLAG_FALSE, goja.FLAG_TRUE); err != nil {
			return nil, err
		}
	}

	canvas := vm.NewObject()
	canvas.Set("width", CanvasWidth)
	canvas.Set("height", CanvasHeight)
	ctx.Set("canvas", canvas)

	return ctx, nil
}

func exportArgs(args []goja.Value) []interface{} {
	if len(args) == 0 {
		return nil
	}
	out := make([]interface{}, len(args))
	for i, a := range args {
		out[i] = a.Export()
	}
	return out
}
