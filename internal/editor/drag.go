package editor

import (
	"math"
	"strings"

	"github.com/VitalyVorobyev/imageannotation/internal/geom"
	"github.com/VitalyVorobyev/imageannotation/internal/hittest"
	"github.com/VitalyVorobyev/imageannotation/internal/shape"
)

// drag holds everything a gesture needs to rebuild the shape from its
// pre-drag state: the hit, the start pointer and a deep snapshot. The
// center is frozen from the snapshot so resize and rotate math keeps a
// stable pivot for the whole gesture.
type drag struct {
	hit      hittest.Hit
	start    geom.Point
	snapshot shape.Shape
	center   geom.Point
	moved    bool
}

// StartDrag begins dragging the hit part from image point p and
// selects the shape. The history operation opens lazily on the first
// real movement, so a plain click-select leaves no undo entry.
// Reports false when the shape does not exist.
func (e *Editor) StartDrag(h hittest.Hit, p geom.Point) bool {
	s := e.shapeByID(h.ShapeID)
	if s == nil {
		return false
	}
	snap := s.Clone()
	if snap.Kind == shape.KindRect && (h.Part == hittest.PartResizeCorner || h.Part == hittest.PartResizeEdge) {
		// Edge labels come from the normalized rect, so the resize
		// baseline must be normalized too.
		n := snap.Rect.Normalized()
		snap.Rect = &n
	}
	e.drag = &drag{hit: h, start: p, snapshot: snap, center: snap.Center()}
	e.selected = h.ShapeID
	return true
}

// UpdateDrag recomputes the dragged shape for pointer position p.
// Every event rebuilds from the drag-start snapshot, so per-event
// rounding never compounds.
func (e *Editor) UpdateDrag(p geom.Point) bool {
	d := e.drag
	if d == nil {
		return false
	}
	live := e.shapeByID(d.hit.ShapeID)
	if live == nil {
		e.drag = nil
		e.hist.Cancel()
		return false
	}
	if !d.moved && p != d.start {
		e.hist.Begin(e.shapes)
		d.moved = true
	}
	*live = applyDrag(d, p)
	return true
}

// EndDrag commits the gesture, normalizing rectangle extents that
// went negative while a corner crossed its opposite side. A gesture
// that never moved commits nothing.
func (e *Editor) EndDrag() {
	d := e.drag
	e.drag = nil
	if d == nil || !d.moved {
		return
	}
	if live := e.shapeByID(d.hit.ShapeID); live != nil && live.Kind == shape.KindRect {
		n := live.Rect.Normalized()
		live.Rect = &n
	}
	e.hist.End()
}

// CancelDrag restores the drag-start snapshot and aborts the history
// operation. Without an active drag it does nothing.
func (e *Editor) CancelDrag() {
	d := e.drag
	e.drag = nil
	if d == nil {
		return
	}
	if live := e.shapeByID(d.hit.ShapeID); live != nil {
		*live = d.snapshot.Clone()
	}
	e.hist.Cancel()
}

// Dragging reports whether a drag gesture is active.
func (e *Editor) Dragging() bool {
	return e.drag != nil
}

func applyDrag(d *drag, p geom.Point) shape.Shape {
	s := d.snapshot.Clone()
	switch d.hit.Part {
	case hittest.PartMove:
		delta := p.Sub(d.start)
		s.Translate(delta.X, delta.Y)
	case hittest.PartRotate:
		// Relative angles make the gesture reversible: dragging back
		// to the start angle restores the snapshot rotation exactly.
		s.Rotation = d.snapshot.Rotation + angleAbout(d.center, p) - angleAbout(d.center, d.start)
	default:
		// Vertex, anchor, handle and resize targets live in the
		// shape's unrotated frame, so the pointer delta is taken
		// there too.
		applyPartDrag(&s, d.hit, localDelta(d, p, s.Rotation))
	}
	return s
}

// localDelta is the pointer movement expressed in the shape's
// unrotated frame, pivoting about the frozen snapshot center.
func localDelta(d *drag, p geom.Point, rotation float64) geom.Point {
	if rotation == 0 {
		return p.Sub(d.start)
	}
	lp := p.RotateAbout(d.center, -rotation)
	ls := d.start.RotateAbout(d.center, -rotation)
	return lp.Sub(ls)
}

func angleAbout(center, p geom.Point) float64 {
	return math.Atan2(p.Y-center.Y, p.X-center.X)
}

func applyPartDrag(s *shape.Shape, h hittest.Hit, delta geom.Point) {
	switch h.Part {
	case hittest.PartResizeCorner, hittest.PartResizeEdge:
		if s.Rect != nil {
			resizeRect(s.Rect, h.Edge, delta)
		}
	case hittest.PartVertex:
		if s.Polyline != nil && h.Index >= 0 && h.Index < len(s.Polyline.Points) {
			s.Polyline.Points[h.Index].X += delta.X
			s.Polyline.Points[h.Index].Y += delta.Y
		}
	case hittest.PartAnchor:
		if s.Bezier != nil && h.Index >= 0 && h.Index < len(s.Bezier.Nodes) {
			// The anchor carries both of its handles so their offsets
			// are preserved.
			n := &s.Bezier.Nodes[h.Index]
			n.P = n.P.Add(delta)
			if n.H1 != nil {
				*n.H1 = n.H1.Add(delta)
			}
			if n.H2 != nil {
				*n.H2 = n.H2.Add(delta)
			}
		}
	case hittest.PartHandle1:
		if s.Bezier != nil && h.Index >= 0 && h.Index < len(s.Bezier.Nodes) {
			dragHandle(&s.Bezier.Nodes[h.Index], delta, true)
		}
	case hittest.PartHandle2:
		if s.Bezier != nil && h.Index >= 0 && h.Index < len(s.Bezier.Nodes) {
			dragHandle(&s.Bezier.Nodes[h.Index], delta, false)
		}
	}
}

// dragHandle moves one control handle. An absent handle materializes
// at anchor + delta, which is what pulling a handle out of a bare
// anchor means.
func dragHandle(n *shape.BezierNode, delta geom.Point, incoming bool) {
	h := n.H1
	if !incoming {
		h = n.H2
	}
	var moved geom.Point
	if h == nil {
		moved = n.P.Add(delta)
	} else {
		moved = h.Add(delta)
	}
	if incoming {
		n.H1 = &moved
	} else {
		n.H2 = &moved
	}
}

// resizeRect adjusts the sides named by the edge label. West and
// north sides move the origin and shrink the extent; east and south
// only grow the extent. Extents may go negative here; normalization
// happens when the gesture ends.
func resizeRect(r *shape.RectShape, edge hittest.Edge, delta geom.Point) {
	lbl := string(edge)
	if strings.ContainsRune(lbl, 'w') {
		r.X += delta.X
		r.W -= delta.X
	}
	if strings.ContainsRune(lbl, 'e') {
		r.W += delta.X
	}
	if strings.ContainsRune(lbl, 'n') {
		r.Y += delta.Y
		r.H -= delta.Y
	}
	if strings.ContainsRune(lbl, 's') {
		r.H += delta.Y
	}
}
