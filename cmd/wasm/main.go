//go:build js && wasm

package main

import (
	"context"
	"encoding/json"
	"log/slog"
	"syscall/js"

	"github.com/inamate/pleat/internal/engine"
	"github.com/inamate/pleat/internal/geom"
	"github.com/inamate/pleat/internal/interact"
)

var (
	eng *engine.Engine
	cam *userMedia
)

func main() {
	slog.SetDefault(slog.New(slog.NewTextHandler(consoleWriter{}, nil)))

	cam = newUserMedia()
	eng = engine.NewEngine(engine.Options{
		Source: cam,
		Notify: func(msg string) {
			js.Global().Call("alert", msg)
		},
	})

	// Create the engine API object
	pleatEngine := js.Global().Get("Object").New()

	// --- Commands (frontend → backend) ---
	pleatEngine.Set("pointerDown", js.FuncOf(pointerDown))
	pleatEngine.Set("pointerMove", js.FuncOf(pointerMove))
	pleatEngine.Set("pointerUp", js.FuncOf(pointerUp))
	pleatEngine.Set("pressHandle", js.FuncOf(pressHandle))
	pleatEngine.Set("moveHandle", js.FuncOf(moveHandle))
	pleatEngine.Set("setSlices", js.FuncOf(setSlices))
	pleatEngine.Set("toggleMode", js.FuncOf(toggleMode))
	pleatEngine.Set("setVideoElement", js.FuncOf(setVideoElement))
	pleatEngine.Set("tick", js.FuncOf(tick))

	// --- Queries (frontend ← backend) ---
	pleatEngine.Set("getState", js.FuncOf(getState))

	// Register on global scope
	js.Global().Set("pleatEngine", pleatEngine)

	// Signal that WASM is ready
	js.Global().Set("pleatWasmReady", js.ValueOf(true))

	// Keep Go runtime alive
	select {}
}

// --- Command Handlers ---

// pointerDown(pointerId, x, y) on the canvas. The target is resolved against
// the last frame's markers.
func pointerDown(this js.Value, args []js.Value) interface{} {
	if len(args) < 3 {
		return nil
	}
	target, capture := eng.PointerDownAt(args[0].Int(), args[1].Float(), args[2].Float())
	return js.ValueOf(map[string]interface{}{"target": target, "capture": capture})
}

// pointerMove(pointerId, x, y) from the window.
func pointerMove(this js.Value, args []js.Value) interface{} {
	if len(args) < 3 {
		return nil
	}
	return js.ValueOf(eng.PointerMoveCaptured(args[0].Int(), args[1].Float(), args[2].Float()))
}

func pointerUp(this js.Value, args []js.Value) interface{} {
	handle, captured := eng.PointerUp()
	return js.ValueOf(map[string]interface{}{"handle": handle, "captured": captured})
}

// pressHandle(index, pointerId, x, y) from a handle element.
func pressHandle(this js.Value, args []js.Value) interface{} {
	if len(args) < 4 {
		return nil
	}
	return js.ValueOf(eng.PointerDown(args[0].Int(), args[1].Int(), args[2].Float(), args[3].Float()))
}

// moveHandle(index, pointerId, x, y) from a handle element holding capture.
func moveHandle(this js.Value, args []js.Value) interface{} {
	if len(args) < 4 {
		return nil
	}
	target := args[0].Int()
	if target < 0 {
		target = interact.Canvas
	}
	return js.ValueOf(eng.PointerMove(target, args[1].Int(), args[2].Float(), args[3].Float()))
}

// setSlices(value) takes the raw text of the slice input and returns the
// count in effect.
func setSlices(this js.Value, args []js.Value) interface{} {
	if len(args) < 1 {
		return nil
	}
	if args[0].Type() == js.TypeNumber {
		return js.ValueOf(eng.SetSliceCount(args[0].Int()))
	}
	return js.ValueOf(eng.SetSlices(args[0].String()))
}

func toggleMode(this js.Value, args []js.Value) interface{} {
	return js.ValueOf(string(eng.ToggleMode(context.Background())))
}

// setVideoElement(el) names the <video> the camera stream plays into.
func setVideoElement(this js.Value, args []js.Value) interface{} {
	if len(args) < 1 {
		return nil
	}
	cam.setElement(args[0])
	return nil
}

// tick(width, height) returns the frame JSON for the current viewport.
func tick(this js.Value, args []js.Value) interface{} {
	if len(args) < 2 {
		return js.ValueOf("")
	}
	f := eng.Tick(geom.Viewport{Width: args[0].Float(), Height: args[1].Float()})
	cam.sync(eng.VideoReady())

	data, err := f.JSON()
	if err != nil {
		slog.Error("encode frame", "error", err)
		return js.ValueOf("")
	}
	return js.ValueOf(data)
}

// --- Query Handlers ---

func getState(this js.Value, args []js.Value) interface{} {
	data, err := json.Marshal(eng.Snapshot())
	if err != nil {
		return js.ValueOf("")
	}
	return js.ValueOf(string(data))
}

// consoleWriter sends log output to console.log.
type consoleWriter struct{}

func (consoleWriter) Write(p []byte) (int, error) {
	js.Global().Get("console").Call("log", string(p))
	return len(p), nil
}
