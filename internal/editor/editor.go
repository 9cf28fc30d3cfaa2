// Package editor implements the shape-manipulation engine: the
// ordered annotation collection, the selection, in-progress drafts,
// the active drag and the undo history behind all of them. An Editor
// is not safe for concurrent use; the owning session serializes every
// call through its event loop.
package editor

import (
	"fmt"

	"github.com/VitalyVorobyev/imageannotation/internal/geom"
	"github.com/VitalyVorobyev/imageannotation/internal/history"
	"github.com/VitalyVorobyev/imageannotation/internal/hittest"
	"github.com/VitalyVorobyev/imageannotation/internal/shape"
	"github.com/VitalyVorobyev/imageannotation/internal/typeid"
	"github.com/VitalyVorobyev/imageannotation/internal/viewport"
)

// Options tune interaction behavior. Zero fields fall back to the
// package defaults.
type Options struct {
	// HitTolerancePx is the grab radius around handles and outlines,
	// in screen pixels.
	HitTolerancePx float64
	// NudgeStepPx is how far one arrow-key step moves the selected
	// shape, in screen pixels.
	NudgeStepPx float64
	// NudgeFastFactor multiplies the nudge step while the fast
	// modifier is held.
	NudgeFastFactor float64
	// NewID allocates ids for shapes the editor creates itself.
	NewID func() string
}

const (
	defaultHitTolerancePx  = 6.0
	defaultNudgeStepPx     = 1.0
	defaultNudgeFastFactor = 10.0

	// minRectExtent is the normalized width and height a rectangle
	// draft must exceed to be committed.
	minRectExtent = 1.0
)

func (o Options) withDefaults() Options {
	if o.HitTolerancePx <= 0 {
		o.HitTolerancePx = defaultHitTolerancePx
	}
	if o.NudgeStepPx <= 0 {
		o.NudgeStepPx = defaultNudgeStepPx
	}
	if o.NudgeFastFactor <= 0 {
		o.NudgeFastFactor = defaultNudgeFastFactor
	}
	if o.NewID == nil {
		o.NewID = typeid.NewShapeID
	}
	return o
}

type Editor struct {
	opts Options

	shapes   []shape.Shape
	selected string
	view     viewport.Viewport
	hist     *history.Stack

	rectDraft   *RectDraft
	polyDraft   *PolyDraft
	bezierDraft *BezierDraft
	drag        *drag
}

func New(opts Options) *Editor {
	return &Editor{
		opts: opts.withDefaults(),
		view: viewport.New(),
		hist: history.New(),
	}
}

// Viewport returns the current image-to-screen transform.
func (e *Editor) Viewport() viewport.Viewport {
	return e.view
}

// SetViewport installs a transform. Non-positive zoom is ignored.
func (e *Editor) SetViewport(v viewport.Viewport) {
	if v.Zoom > 0 {
		e.view = v
	}
}

// Shapes returns a deep copy of the committed collection in z-order
// (first element bottommost).
func (e *Editor) Shapes() []shape.Shape {
	return shape.CloneAll(e.shapes)
}

// Selected returns the selected shape id, or "".
func (e *Editor) Selected() string {
	return e.selected
}

// Select picks a shape by id and reports whether it exists.
func (e *Editor) Select(id string) bool {
	if e.shapeByID(id) == nil {
		return false
	}
	e.selected = id
	return true
}

func (e *Editor) ClearSelection() {
	e.selected = ""
}

// HitAt runs priority hit-testing at an image-space point, deriving
// the image-space tolerance from the configured screen tolerance and
// the current zoom.
func (e *Editor) HitAt(p geom.Point) (hittest.Hit, bool) {
	tol := e.view.ToleranceInImage(e.opts.HitTolerancePx)
	return hittest.HitTest(e.shapes, p, tol)
}

// AddShape validates and appends one shape as an undoable operation.
// An empty id is allocated. The stored copy never aliases the input.
func (e *Editor) AddShape(s shape.Shape) (shape.Shape, error) {
	if s.ID == "" {
		s.ID = e.opts.NewID()
	}
	if err := s.Validate(); err != nil {
		return shape.Shape{}, err
	}
	if e.shapeByID(s.ID) != nil {
		return shape.Shape{}, fmt.Errorf("shape %s already exists", s.ID)
	}
	e.commit(s.Clone())
	return s, nil
}

// AddShapes appends a batch as a single undoable operation, used for
// detection results. Any invalid or duplicate shape rejects the whole
// batch and leaves the collection untouched.
func (e *Editor) AddShapes(batch []shape.Shape) error {
	seen := make(map[string]struct{}, len(batch))
	for i := range batch {
		if batch[i].ID == "" {
			batch[i].ID = e.opts.NewID()
		}
		if err := batch[i].Validate(); err != nil {
			return err
		}
		if _, dup := seen[batch[i].ID]; dup {
			return fmt.Errorf("duplicate shape id %s", batch[i].ID)
		}
		seen[batch[i].ID] = struct{}{}
		if e.shapeByID(batch[i].ID) != nil {
			return fmt.Errorf("shape %s already exists", batch[i].ID)
		}
	}
	if len(batch) == 0 {
		return nil
	}
	e.hist.Begin(e.shapes)
	e.shapes = append(e.shapes, shape.CloneAll(batch)...)
	e.hist.End()
	return nil
}

// AddPoint commits a point mark at an image position and selects it.
func (e *Editor) AddPoint(p geom.Point) shape.Shape {
	s := shape.Shape{
		ID:    e.opts.NewID(),
		Kind:  shape.KindPoint,
		Point: &shape.PointShape{X: p.X, Y: p.Y},
	}
	e.commit(s)
	e.selected = s.ID
	return s.Clone()
}

// DeleteSelected removes the selected shape and clears the selection.
// With nothing selected it reports false and does nothing.
func (e *Editor) DeleteSelected() bool {
	idx := e.indexOf(e.selected)
	if idx < 0 {
		return false
	}
	e.hist.Begin(e.shapes)
	e.shapes = append(e.shapes[:idx], e.shapes[idx+1:]...)
	e.hist.End()
	e.selected = ""
	return true
}

// NudgeSelected translates the selected shape by (dx, dy) steps. One
// step is NudgeStepPx screen pixels, times NudgeFastFactor when fast
// is set, converted to image units at the current zoom. Reports false
// with nothing selected.
func (e *Editor) NudgeSelected(dx, dy float64, fast bool) bool {
	s := e.shapeByID(e.selected)
	if s == nil {
		return false
	}
	step := e.opts.NudgeStepPx
	if fast {
		step *= e.opts.NudgeFastFactor
	}
	step /= e.view.Zoom

	e.hist.Begin(e.shapes)
	s.Translate(dx*step, dy*step)
	e.hist.End()
	return true
}

// SetShapes replaces the whole collection as one undoable operation,
// dropping drafts, any active drag and the selection. Every shape is
// validated and ids must be unique; on error nothing changes.
func (e *Editor) SetShapes(shapes []shape.Shape) error {
	seen := make(map[string]struct{}, len(shapes))
	for _, s := range shapes {
		if err := s.Validate(); err != nil {
			return err
		}
		if _, dup := seen[s.ID]; dup {
			return fmt.Errorf("duplicate shape id %s", s.ID)
		}
		seen[s.ID] = struct{}{}
	}
	e.CancelDrag()
	e.CancelDrafts()
	e.hist.Begin(e.shapes)
	e.shapes = shape.CloneAll(shapes)
	e.hist.End()
	e.selected = ""
	return nil
}

// Reset clears the collection, drafts, drag, selection and the whole
// history, then installs the given shapes. Used when a new image
// starts a fresh annotation set.
func (e *Editor) Reset(shapes []shape.Shape) {
	e.drag = nil
	e.CancelDrafts()
	e.shapes = shape.CloneAll(shapes)
	e.selected = ""
	e.hist.Reset()
}

// Undo restores the previous snapshot. It is ignored while a drag is
// active and reports whether anything changed.
func (e *Editor) Undo() bool {
	if e.drag != nil {
		return false
	}
	restored, ok := e.hist.Undo(e.shapes)
	if !ok {
		return false
	}
	e.shapes = restored
	e.pruneSelection()
	return true
}

// Redo reapplies the most recently undone snapshot.
func (e *Editor) Redo() bool {
	if e.drag != nil {
		return false
	}
	restored, ok := e.hist.Redo(e.shapes)
	if !ok {
		return false
	}
	e.shapes = restored
	e.pruneSelection()
	return true
}

func (e *Editor) CanUndo() bool { return e.hist.CanUndo() }
func (e *Editor) CanRedo() bool { return e.hist.CanRedo() }

// ContentBounds returns the union of all shape bounds, or false for
// an empty collection.
func (e *Editor) ContentBounds() (geom.Rect, bool) {
	if len(e.shapes) == 0 {
		return geom.Rect{}, false
	}
	b := e.shapes[0].Bounds()
	for i := 1; i < len(e.shapes); i++ {
		b = b.Union(e.shapes[i].Bounds())
	}
	return b, true
}

// commit appends one shape inside its own history bracket.
func (e *Editor) commit(s shape.Shape) {
	e.hist.Begin(e.shapes)
	e.shapes = append(e.shapes, s)
	e.hist.End()
}

func (e *Editor) shapeByID(id string) *shape.Shape {
	if idx := e.indexOf(id); idx >= 0 {
		return &e.shapes[idx]
	}
	return nil
}

func (e *Editor) indexOf(id string) int {
	if id == "" {
		return -1
	}
	for i := range e.shapes {
		if e.shapes[i].ID == id {
			return i
		}
	}
	return -1
}

// pruneSelection drops a selection whose shape no longer exists, for
// example after undoing the operation that created it.
func (e *Editor) pruneSelection() {
	if e.selected != "" && e.shapeByID(e.selected) == nil {
		e.selected = ""
	}
}
