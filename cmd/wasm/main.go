//go:build js && wasm

package main

import (
	"context"
	"encoding/json"
	"sync"
	"syscall/js"
	"time"

	"github.com/AndrewDAP/PolyDessin-sub000/internal/editor"
	"github.com/AndrewDAP/PolyDessin-sub000/internal/geometry"
	"github.com/AndrewDAP/PolyDessin-sub000/internal/selection"
)

// runtime serializes timer callbacks and paste results with calls from
// JavaScript. The change callback runs once the lock is released so that it
// may query the editor.
type runtime struct {
	mu      sync.Mutex
	changed bool
}

func (rt *runtime) AfterFunc(d time.Duration, f func()) selection.Timer {
	return time.AfterFunc(d, func() { rt.Post(f) })
}

func (rt *runtime) Post(fn func()) {
	rt.run(fn)
}

func (rt *runtime) run(fn func()) {
	rt.mu.Lock()
	fn()
	changed := rt.changed
	rt.changed = false
	rt.mu.Unlock()

	if changed && onChange.Type() == js.TypeFunction {
		onChange.Invoke()
	}
}

var (
	rt       = &runtime{}
	eng      *editor.Engine
	onChange js.Value
)

func main() {
	newEngine(editor.DefaultOptions())

	api := js.Global().Get("Object").New()

	// --- Commands (frontend → backend) ---
	api.Set("init", js.FuncOf(locked(initEngine)))
	api.Set("onChange", js.FuncOf(locked(setOnChange)))
	api.Set("selectTool", js.FuncOf(locked(selectTool)))
	api.Set("mouse", js.FuncOf(locked(mouse)))
	api.Set("key", js.FuncOf(locked(key)))
	api.Set("doubleClick", js.FuncOf(locked(doubleClick)))
	api.Set("undo", js.FuncOf(locked(func(js.Value, []js.Value) interface{} { return eng.Undo() })))
	api.Set("redo", js.FuncOf(locked(func(js.Value, []js.Value) interface{} { return eng.Redo() })))
	api.Set("copy", js.FuncOf(locked(copySelection)))
	api.Set("cut", js.FuncOf(locked(cutSelection)))
	api.Set("paste", js.FuncOf(locked(paste)))
	api.Set("selectAll", js.FuncOf(locked(func(js.Value, []js.Value) interface{} { return eng.SelectAll() })))
	api.Set("delete", js.FuncOf(locked(func(js.Value, []js.Value) interface{} { return eng.Delete() })))
	api.Set("resizeCanvas", js.FuncOf(locked(resizeCanvas)))
	api.Set("setMagnet", js.FuncOf(locked(setMagnet)))

	// --- Queries (frontend ← backend) ---
	api.Set("getState", js.FuncOf(locked(getState)))
	api.Set("getOverlay", js.FuncOf(locked(getOverlay)))
	api.Set("getComposite", js.FuncOf(locked(getComposite)))

	js.Global().Set("polydessinEditor", api)
	js.Global().Set("polydessinWasmReady", js.ValueOf(true))

	// Keep Go runtime alive
	select {}
}

func newEngine(opts editor.Options) {
	eng = editor.New(opts, rt)
	eng.OnChange(func() { rt.changed = true })
}

func locked(fn func(js.Value, []js.Value) interface{}) func(js.Value, []js.Value) interface{} {
	return func(this js.Value, args []js.Value) interface{} {
		var result interface{}
		rt.run(func() { result = fn(this, args) })
		return result
	}
}

func errorValue(err error) interface{} {
	return js.ValueOf(map[string]interface{}{"error": err.Error()})
}

func ok() interface{} {
	return js.ValueOf(map[string]interface{}{"ok": true})
}

// --- Command Handlers ---

// initEngine replaces the engine. args[0], when given, is a JSON object of
// {width, height, background}.
func initEngine(this js.Value, args []js.Value) interface{} {
	opts := editor.DefaultOptions()
	if len(args) > 0 && args[0].Type() == js.TypeString {
		var in struct {
			Width      int    `json:"width"`
			Height     int    `json:"height"`
			Background string `json:"background"`
		}
		if err := json.Unmarshal([]byte(args[0].String()), &in); err != nil {
			return errorValue(err)
		}
		if in.Width > 0 && in.Height > 0 {
			opts.Width, opts.Height = in.Width, in.Height
		}
		if in.Background != "" {
			bg, err := editor.ParseColor(in.Background)
			if err != nil {
				return errorValue(err)
			}
			opts.Background = bg
		}
	}
	newEngine(opts)
	return ok()
}

func setOnChange(this js.Value, args []js.Value) interface{} {
	if len(args) < 1 {
		onChange = js.Undefined()
		return nil
	}
	onChange = args[0]
	return nil
}

func selectTool(this js.Value, args []js.Value) interface{} {
	if len(args) < 1 {
		return nil
	}
	tool, err := editor.ParseTool(args[0].String())
	if err != nil {
		return errorValue(err)
	}
	return eng.SelectTool(tool)
}

// mouse takes a JSON object shaped like editor.MouseInput.
func mouse(this js.Value, args []js.Value) interface{} {
	if len(args) < 1 {
		return nil
	}
	var in editor.MouseInput
	if err := json.Unmarshal([]byte(args[0].String()), &in); err != nil {
		return errorValue(err)
	}
	ev, err := in.Event()
	if err != nil {
		return errorValue(err)
	}
	eng.HandleMouse(ev)
	return ok()
}

// key takes a JSON object shaped like editor.KeyInput and reports whether
// the editor consumed it.
func key(this js.Value, args []js.Value) interface{} {
	if len(args) < 1 {
		return nil
	}
	var in editor.KeyInput
	if err := json.Unmarshal([]byte(args[0].String()), &in); err != nil {
		return errorValue(err)
	}
	ev, err := in.Event()
	if err != nil {
		return errorValue(err)
	}
	return eng.HandleKey(ev)
}

func doubleClick(this js.Value, args []js.Value) interface{} {
	if len(args) < 2 {
		return nil
	}
	return eng.DoubleClick(geometry.V(args[0].Float(), args[1].Float()))
}

func copySelection(this js.Value, args []js.Value) interface{} {
	copied, err := eng.Copy()
	if err != nil {
		return errorValue(err)
	}
	return copied
}

func cutSelection(this js.Value, args []js.Value) interface{} {
	cut, err := eng.Cut()
	if err != nil {
		return errorValue(err)
	}
	return cut
}

func paste(this js.Value, args []js.Value) interface{} {
	if err := eng.Paste(context.Background()); err != nil {
		return errorValue(err)
	}
	return ok()
}

func resizeCanvas(this js.Value, args []js.Value) interface{} {
	if len(args) < 2 {
		return nil
	}
	if err := eng.ResizeCanvas(args[0].Int(), args[1].Int()); err != nil {
		return errorValue(err)
	}
	return ok()
}

func setMagnet(this js.Value, args []js.Value) interface{} {
	if len(args) < 1 {
		return nil
	}
	if len(args) > 1 && args[1].Type() == js.TypeString {
		eng.SetMagnetAnchor(geometry.ParseAnchor9(args[1].String()))
	}
	eng.SetMagnet(args[0].Bool())
	return nil
}

// --- Query Handlers ---

func getState(this js.Value, args []js.Value) interface{} {
	data, _ := json.Marshal(eng.State())
	return string(data)
}

func getOverlay(this js.Value, args []js.Value) interface{} {
	result, _ := editor.DrawCommandsToJSON(eng.Overlay())
	return result
}

// getComposite returns {width, height, data} with data a Uint8ClampedArray
// suitable for ImageData.
func getComposite(this js.Value, args []js.Value) interface{} {
	img := eng.Composite()
	size := img.Bounds().Size()
	data := js.Global().Get("Uint8ClampedArray").New(len(img.Pix))
	js.CopyBytesToJS(data, img.Pix)
	return js.ValueOf(map[string]interface{}{
		"width":  size.X,
		"height": size.Y,
		"data":   data,
	})
}
