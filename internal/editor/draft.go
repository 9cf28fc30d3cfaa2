package editor

import (
	"github.com/VitalyVorobyev/imageannotation/internal/geom"
	"github.com/VitalyVorobyev/imageannotation/internal/shape"
)

// RectDraft is an in-progress rectangle: the anchor corner is pinned
// at the first pointer-down and the opposite corner follows the
// pointer until release.
type RectDraft struct {
	Anchor  geom.Point `json:"anchor"`
	Current geom.Point `json:"current"`
}

// Rect returns the draft as a signed-extent rectangle payload.
func (d RectDraft) Rect() shape.RectShape {
	return shape.RectShape{
		X: d.Anchor.X,
		Y: d.Anchor.Y,
		W: d.Current.X - d.Anchor.X,
		H: d.Current.Y - d.Anchor.Y,
	}
}

// PolyDraft collects polyline vertices click by click.
type PolyDraft struct {
	Points []geom.Point `json:"points"`
}

// BezierDraft collects curve anchors click by click, materializing
// the auto-computed join handles as it grows.
type BezierDraft struct {
	Nodes []shape.BezierNode `json:"nodes"`
}

// DraftState is a render-ready deep copy of the in-progress drafts.
type DraftState struct {
	Rect     *RectDraft   `json:"rect,omitempty"`
	Polyline *PolyDraft   `json:"polyline,omitempty"`
	Bezier   *BezierDraft `json:"bezier,omitempty"`
}

// Drafts snapshots the in-progress drafts for rendering. The returned
// state shares no memory with the editor.
func (e *Editor) Drafts() DraftState {
	var st DraftState
	if e.rectDraft != nil {
		d := *e.rectDraft
		st.Rect = &d
	}
	if e.polyDraft != nil {
		st.Polyline = &PolyDraft{Points: append([]geom.Point(nil), e.polyDraft.Points...)}
	}
	if e.bezierDraft != nil {
		b := shape.Shape{Kind: shape.KindBezier, Bezier: &shape.BezierShape{Nodes: e.bezierDraft.Nodes}}.Clone()
		st.Bezier = &BezierDraft{Nodes: b.Bezier.Nodes}
	}
	return st
}

// BeginRectDraft starts a rectangle draft anchored at p, discarding
// any other in-progress draft.
func (e *Editor) BeginRectDraft(p geom.Point) {
	e.CancelDrafts()
	e.rectDraft = &RectDraft{Anchor: p, Current: p}
}

// UpdateRectDraft moves the follower corner. Without an active draft
// it does nothing.
func (e *Editor) UpdateRectDraft(p geom.Point) {
	if e.rectDraft == nil {
		return
	}
	e.rectDraft.Current = p
}

// FinishRectDraft commits the draft if both normalized extents exceed
// the minimum size, and discards it silently otherwise. A committed
// shape is selected and returned.
func (e *Editor) FinishRectDraft() (shape.Shape, bool) {
	d := e.rectDraft
	e.rectDraft = nil
	if d == nil {
		return shape.Shape{}, false
	}
	r := d.Rect().Normalized()
	if r.W <= minRectExtent || r.H <= minRectExtent {
		return shape.Shape{}, false
	}
	s := shape.Shape{ID: e.opts.NewID(), Kind: shape.KindRect, Rect: &r}
	e.commit(s)
	e.selected = s.ID
	return s.Clone(), true
}

// AppendPolylinePoint starts a polyline draft at p, or appends p to
// the active one.
func (e *Editor) AppendPolylinePoint(p geom.Point) {
	if e.polyDraft == nil {
		e.CancelDrafts()
		e.polyDraft = &PolyDraft{}
	}
	e.polyDraft.Points = append(e.polyDraft.Points, p)
}

// FinishPolyline commits the draft as an open or closed polyline. An
// absent or empty draft is a silent discard.
func (e *Editor) FinishPolyline(closed bool) (shape.Shape, bool) {
	d := e.polyDraft
	e.polyDraft = nil
	if d == nil || len(d.Points) < 1 {
		return shape.Shape{}, false
	}
	s := shape.Shape{
		ID:       e.opts.NewID(),
		Kind:     shape.KindPolyline,
		Polyline: &shape.PolylineShape{Points: d.Points, Closed: closed},
	}
	e.commit(s)
	e.selected = s.ID
	return s.Clone(), true
}

// AppendBezierNode appends a curve anchor. From the second node on, a
// handle pair materializes at the midpoint of the two newest anchors:
// the earlier node's outgoing handle and the new node's incoming
// handle both land there, giving a smooth join without manual handle
// placement.
func (e *Editor) AppendBezierNode(p geom.Point) {
	if e.bezierDraft == nil {
		e.CancelDrafts()
		e.bezierDraft = &BezierDraft{}
	}
	d := e.bezierDraft
	node := shape.BezierNode{P: p}
	if n := len(d.Nodes); n > 0 {
		prev := &d.Nodes[n-1]
		mid := prev.P.Lerp(p, 0.5)
		outH, inH := mid, mid
		prev.H2 = &outH
		node.H1 = &inH
	}
	d.Nodes = append(d.Nodes, node)
}

// FinishBezier commits the draft when it has at least two nodes, and
// discards it silently otherwise.
func (e *Editor) FinishBezier(closed bool) (shape.Shape, bool) {
	d := e.bezierDraft
	e.bezierDraft = nil
	if d == nil || len(d.Nodes) < 2 {
		return shape.Shape{}, false
	}
	s := shape.Shape{
		ID:     e.opts.NewID(),
		Kind:   shape.KindBezier,
		Bezier: &shape.BezierShape{Nodes: d.Nodes, Closed: closed},
	}
	e.commit(s)
	e.selected = s.ID
	return s.Clone(), true
}

// CancelDrafts drops every in-progress draft without committing.
func (e *Editor) CancelDrafts() {
	e.rectDraft = nil
	e.polyDraft = nil
	e.bezierDraft = nil
}

// HasDraft reports whether any draft is in progress.
func (e *Editor) HasDraft() bool {
	return e.rectDraft != nil || e.polyDraft != nil || e.bezierDraft != nil
}
