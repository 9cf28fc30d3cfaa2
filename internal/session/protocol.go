package session

import (
	"encoding/json"

	"github.com/VitalyVorobyev/imageannotation/internal/detect"
	"github.com/VitalyVorobyev/imageannotation/internal/editor"
	"github.com/VitalyVorobyev/imageannotation/internal/geom"
	"github.com/VitalyVorobyev/imageannotation/internal/shape"
	"github.com/VitalyVorobyev/imageannotation/internal/viewport"
)

// Message is the websocket envelope. Seq is echoed on the state reply
// that answers a specific request, so clients can match them up.
type Message struct {
	Type    string          `json:"type"`
	Seq     int64           `json:"seq,omitempty"`
	Payload json.RawMessage `json:"payload,omitempty"`
}

// Client to server.
const (
	TypePointerDown = "pointer.down"
	TypePointerMove = "pointer.move"
	TypePointerUp   = "pointer.up"
	TypeKeyNudge    = "key.nudge"
	TypeDraftFinish = "draft.finish"
	TypeDraftCancel = "draft.cancel"
	TypeToolSet     = "tool.set"
	TypeUndo        = "history.undo"
	TypeRedo        = "history.redo"
	TypeViewSet     = "view.set"
	TypeViewFit     = "view.fit"
	TypeImageSet    = "image.set"
	TypeDetectRun   = "detect.run"
	TypeShapesSet   = "shapes.set"
	TypeShapeDelete = "shape.delete"
	TypeStateGet    = "state.get"
)

// Server to client.
const (
	TypeState        = "state"
	TypeDetectResult = "detect.result"
	TypeError        = "error"
)

// Tool decides what a pointer.down starts.
type Tool string

const (
	ToolSelect   Tool = "select"
	ToolRect     Tool = "rect"
	ToolPolyline Tool = "polyline"
	ToolBezier   Tool = "bezier"
	ToolPoint    Tool = "point"
)

func (t Tool) Known() bool {
	switch t {
	case ToolSelect, ToolRect, ToolPolyline, ToolBezier, ToolPoint:
		return true
	}
	return false
}

// PointerPayload carries screen-space coordinates; the session
// converts them through the viewport.
type PointerPayload struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

type NudgePayload struct {
	DX   float64 `json:"dx"`
	DY   float64 `json:"dy"`
	Fast bool    `json:"fast"`
}

type DraftFinishPayload struct {
	Closed bool `json:"closed"`
}

type ToolPayload struct {
	Tool Tool `json:"tool"`
}

type ViewPayload struct {
	Zoom float64    `json:"zoom"`
	Pan  geom.Point `json:"pan"`
}

type ViewFitPayload struct {
	ViewWidth  float64 `json:"viewWidth"`
	ViewHeight float64 `json:"viewHeight"`
}

// ImagePayload describes the raster to annotate. Either a stored id
// with known dimensions, or an inline data URL the session measures
// and uploads itself. An empty payload clears the image.
type ImagePayload struct {
	ID      string `json:"id,omitempty"`
	Name    string `json:"name,omitempty"`
	Width   int    `json:"width,omitempty"`
	Height  int    `json:"height,omitempty"`
	DataURL string `json:"dataUrl,omitempty"`
}

type DetectRunPayload struct {
	Pattern detect.Pattern `json:"pattern"`
	Params  detect.Params  `json:"params,omitempty"`
}

type ShapesSetPayload struct {
	Shapes []shape.Shape `json:"shapes"`
}

type ShapeDeletePayload struct {
	ID string `json:"id"`
}

type ErrorPayload struct {
	Message string `json:"message"`
}

type DetectResultPayload struct {
	Pattern detect.Pattern `json:"pattern"`
	Count   int            `json:"count"`
	Run     int            `json:"run"`
}

// ImageRef is the session's view of the loaded image. ID stays empty
// until the store upload completes.
type ImageRef struct {
	ID     string `json:"id,omitempty"`
	Name   string `json:"name,omitempty"`
	Width  int    `json:"width,omitempty"`
	Height int    `json:"height,omitempty"`
}

// State is the full session mirror pushed after every applied command.
type State struct {
	Shapes   []shape.Shape     `json:"shapes"`
	Selected string            `json:"selected,omitempty"`
	Drafts   editor.DraftState `json:"drafts"`
	View     viewport.Viewport `json:"view"`
	Tool     Tool              `json:"tool"`
	Image    *ImageRef         `json:"image,omitempty"`
	CanUndo  bool              `json:"canUndo"`
	CanRedo  bool              `json:"canRedo"`
	Dragging bool              `json:"dragging"`
}
