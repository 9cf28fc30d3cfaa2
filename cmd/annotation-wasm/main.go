//go:build js && wasm

package main

import (
	"encoding/json"
	"syscall/js"

	"github.com/VitalyVorobyev/imageannotation/internal/detect"
	"github.com/VitalyVorobyev/imageannotation/internal/editor"
	"github.com/VitalyVorobyev/imageannotation/internal/geom"
	"github.com/VitalyVorobyev/imageannotation/internal/shape"
	"github.com/VitalyVorobyev/imageannotation/internal/typeid"
	"github.com/VitalyVorobyev/imageannotation/internal/viewport"
)

// The browser runs single-threaded, so the editor is used directly
// without the server's session actor.
var (
	ed       *editor.Editor
	tool     string
	detCount int
)

func main() {
	ed = editor.New(editor.Options{NewID: typeid.NewShapeID})
	tool = "select"

	api := js.Global().Get("Object").New()

	// --- Commands (frontend → backend) ---
	api.Set("setTool", js.FuncOf(setTool))
	api.Set("pointerDown", js.FuncOf(pointerDown))
	api.Set("pointerMove", js.FuncOf(pointerMove))
	api.Set("pointerUp", js.FuncOf(pointerUp))
	api.Set("finishDraft", js.FuncOf(finishDraft))
	api.Set("cancelDrafts", js.FuncOf(cancelDrafts))
	api.Set("cancelDrag", js.FuncOf(cancelDrag))
	api.Set("nudge", js.FuncOf(nudge))
	api.Set("deleteSelected", js.FuncOf(deleteSelected))
	api.Set("undo", js.FuncOf(undo))
	api.Set("redo", js.FuncOf(redo))
	api.Set("setView", js.FuncOf(setView))
	api.Set("fitView", js.FuncOf(fitView))
	api.Set("setShapes", js.FuncOf(setShapes))
	api.Set("loadSample", js.FuncOf(loadSample))
	api.Set("reset", js.FuncOf(reset))
	api.Set("applyDetection", js.FuncOf(applyDetection))

	// --- Queries (frontend ← backend) ---
	api.Set("getState", js.FuncOf(getState))
	api.Set("getShapes", js.FuncOf(getShapes))
	api.Set("hitTest", js.FuncOf(hitTest))
	api.Set("getContentBounds", js.FuncOf(getContentBounds))
	api.Set("getBezierPath", js.FuncOf(getBezierPath))

	// Register on global scope
	js.Global().Set("annotationEditor", api)

	// Signal that WASM is ready
	js.Global().Set("annotationWasmReady", js.ValueOf(true))

	// Keep Go runtime alive
	select {}
}

func ok() interface{} {
	return js.ValueOf(map[string]interface{}{"ok": true})
}

func fail(msg string) interface{} {
	return js.ValueOf(map[string]interface{}{"error": msg})
}

func screenPt(args []js.Value) geom.Point {
	return ed.Viewport().ScreenToImage(geom.Pt(args[0].Float(), args[1].Float()))
}

// --- Command Handlers ---

func setTool(this js.Value, args []js.Value) interface{} {
	if len(args) < 1 {
		return fail("missing tool name")
	}
	next := args[0].String()
	switch next {
	case "select", "rect", "polyline", "bezier", "point":
	default:
		return fail("unknown tool " + next)
	}
	if next != tool {
		ed.CancelDrag()
		ed.CancelDrafts()
		tool = next
	}
	return ok()
}

func pointerDown(this js.Value, args []js.Value) interface{} {
	if len(args) < 2 {
		return fail("missing coordinates")
	}
	p := screenPt(args)
	switch tool {
	case "select":
		if hit, found := ed.HitAt(p); found {
			ed.StartDrag(hit, p)
		} else {
			ed.ClearSelection()
		}
	case "rect":
		ed.BeginRectDraft(p)
	case "polyline":
		ed.AppendPolylinePoint(p)
	case "bezier":
		ed.AppendBezierNode(p)
	case "point":
		ed.AddPoint(p)
	}
	return ok()
}

func pointerMove(this js.Value, args []js.Value) interface{} {
	if len(args) < 2 {
		return fail("missing coordinates")
	}
	p := screenPt(args)
	if ed.Dragging() {
		ed.UpdateDrag(p)
	} else {
		ed.UpdateRectDraft(p)
	}
	return ok()
}

func pointerUp(this js.Value, args []js.Value) interface{} {
	if len(args) < 2 {
		return fail("missing coordinates")
	}
	p := screenPt(args)
	if ed.Dragging() {
		ed.UpdateDrag(p)
		ed.EndDrag()
	} else if tool == "rect" {
		ed.UpdateRectDraft(p)
		ed.FinishRectDraft()
	}
	return ok()
}

func finishDraft(this js.Value, args []js.Value) interface{} {
	closed := len(args) > 0 && args[0].Truthy()
	if _, done := ed.FinishBezier(closed); done {
		return ok()
	}
	if _, done := ed.FinishPolyline(closed); done {
		return ok()
	}
	ed.FinishRectDraft()
	return ok()
}

func cancelDrafts(this js.Value, args []js.Value) interface{} {
	ed.CancelDrafts()
	return ok()
}

func cancelDrag(this js.Value, args []js.Value) interface{} {
	ed.CancelDrag()
	return ok()
}

func nudge(this js.Value, args []js.Value) interface{} {
	if len(args) < 2 {
		return fail("missing deltas")
	}
	fast := len(args) > 2 && args[2].Truthy()
	ed.NudgeSelected(args[0].Float(), args[1].Float(), fast)
	return ok()
}

func deleteSelected(this js.Value, args []js.Value) interface{} {
	ed.DeleteSelected()
	return ok()
}

func undo(this js.Value, args []js.Value) interface{} {
	return js.ValueOf(ed.Undo())
}

func redo(this js.Value, args []js.Value) interface{} {
	return js.ValueOf(ed.Redo())
}

func setView(this js.Value, args []js.Value) interface{} {
	if len(args) < 3 {
		return fail("missing zoom or pan")
	}
	ed.SetViewport(viewport.Viewport{
		Zoom: args[0].Float(),
		Pan:  geom.Pt(args[1].Float(), args[2].Float()),
	})
	return ok()
}

func fitView(this js.Value, args []js.Value) interface{} {
	if len(args) < 4 {
		return fail("missing dimensions")
	}
	ed.SetViewport(viewport.Fit(args[0].Float(), args[1].Float(), args[2].Float(), args[3].Float()))
	return ok()
}

func setShapes(this js.Value, args []js.Value) interface{} {
	if len(args) < 1 {
		return fail("missing shapes JSON")
	}
	var shapes []shape.Shape
	if err := json.Unmarshal([]byte(args[0].String()), &shapes); err != nil {
		return fail(err.Error())
	}
	if err := ed.SetShapes(shapes); err != nil {
		return fail(err.Error())
	}
	return ok()
}

func loadSample(this js.Value, args []js.Value) interface{} {
	if err := ed.SetShapes(shape.Sample()); err != nil {
		return fail(err.Error())
	}
	return ok()
}

func reset(this js.Value, args []js.Value) interface{} {
	ed.Reset(nil)
	detCount = 0
	return ok()
}

func applyDetection(this js.Value, args []js.Value) interface{} {
	if len(args) < 1 {
		return fail("missing points JSON")
	}
	var points []detect.Point2D
	if err := json.Unmarshal([]byte(args[0].String()), &points); err != nil {
		return fail(err.Error())
	}
	marks := detect.PointShapes(points, detCount, typeid.NewShapeID)
	if err := ed.AddShapes(marks); err != nil {
		return fail(err.Error())
	}
	detCount++
	return ok()
}

// --- Query Handlers ---

type wasmState struct {
	Shapes   []shape.Shape     `json:"shapes"`
	Selected string            `json:"selected,omitempty"`
	Drafts   editor.DraftState `json:"drafts"`
	View     viewport.Viewport `json:"view"`
	Tool     string            `json:"tool"`
	CanUndo  bool              `json:"canUndo"`
	CanRedo  bool              `json:"canRedo"`
	Dragging bool              `json:"dragging"`
}

func getState(this js.Value, args []js.Value) interface{} {
	data, err := json.Marshal(wasmState{
		Shapes:   ed.Shapes(),
		Selected: ed.Selected(),
		Drafts:   ed.Drafts(),
		View:     ed.Viewport(),
		Tool:     tool,
		CanUndo:  ed.CanUndo(),
		CanRedo:  ed.CanRedo(),
		Dragging: ed.Dragging(),
	})
	if err != nil {
		return js.ValueOf("{}")
	}
	return js.ValueOf(string(data))
}

func getShapes(this js.Value, args []js.Value) interface{} {
	data, err := json.Marshal(ed.Shapes())
	if err != nil {
		return js.ValueOf("[]")
	}
	return js.ValueOf(string(data))
}

func hitTest(this js.Value, args []js.Value) interface{} {
	if len(args) < 2 {
		return js.ValueOf("null")
	}
	hit, found := ed.HitAt(screenPt(args))
	if !found {
		return js.ValueOf("null")
	}
	data, err := json.Marshal(hit)
	if err != nil {
		return js.ValueOf("null")
	}
	return js.ValueOf(string(data))
}

func getContentBounds(this js.Value, args []js.Value) interface{} {
	bounds, found := ed.ContentBounds()
	if !found {
		return js.ValueOf("null")
	}
	data, err := json.Marshal(bounds)
	if err != nil {
		return js.ValueOf("null")
	}
	return js.ValueOf(string(data))
}

func getBezierPath(this js.Value, args []js.Value) interface{} {
	if len(args) < 1 {
		return js.ValueOf("[]")
	}
	for _, s := range ed.Shapes() {
		if s.ID == args[0].String() && s.Kind == shape.KindBezier {
			data, err := json.Marshal(s.Bezier.PathCommands())
			if err != nil {
				break
			}
			return js.ValueOf(string(data))
		}
	}
	return js.ValueOf("[]")
}
