// Package hittest resolves an image-space pointer position against the
// ordered annotation collection: topmost shape first, and within a
// shape a fixed part priority so overlapping grab targets stay stable.
package hittest

import (
	"github.com/VitalyVorobyev/imageannotation/internal/geom"
	"github.com/VitalyVorobyev/imageannotation/internal/shape"
)

// Part is the interaction a hit stands for.
type Part string

const (
	PartMove         Part = "move"
	PartResizeCorner Part = "resizeCorner"
	PartResizeEdge   Part = "resizeEdge"
	PartVertex       Part = "vertex"
	PartAnchor       Part = "anchor"
	PartHandle1      Part = "handle1"
	PartHandle2      Part = "handle2"
	PartRotate       Part = "rotate"
)

// Edge labels rectangle corners and edges by compass position.
type Edge string

const (
	EdgeN  Edge = "n"
	EdgeE  Edge = "e"
	EdgeS  Edge = "s"
	EdgeW  Edge = "w"
	EdgeNW Edge = "nw"
	EdgeNE Edge = "ne"
	EdgeSE Edge = "se"
	EdgeSW Edge = "sw"
)

// RotateHandleOffset is how far above the bounding-box top the
// rotation handle sits, in image units (so its screen distance grows
// with zoom). Renderers drawing the handle must use the same value.
const RotateHandleOffset = 20.0

// pointGrabFactor widens the grab radius of point marks, which have
// no body to hit.
const pointGrabFactor = 1.5

// Hit identifies the shape, the interaction, and where on the shape it
// applies. Index is meaningful for vertex, anchor and handle parts;
// Edge for rectangle resize parts.
type Hit struct {
	ShapeID string `json:"shapeId"`
	Part    Part   `json:"part"`
	Index   int    `json:"index"`
	Edge    Edge   `json:"edge,omitempty"`
}

// HitTest scans shapes from topmost (last inserted) to bottommost and
// returns the first hit. tol is the hit radius in image units;
// invisible shapes never match.
func HitTest(shapes []shape.Shape, p geom.Point, tol float64) (Hit, bool) {
	for i := len(shapes) - 1; i >= 0; i-- {
		s := &shapes[i]
		if !s.IsVisible() {
			continue
		}
		if h, ok := hitShape(s, p, tol); ok {
			return h, true
		}
	}
	return Hit{}, false
}

// hitShape tests one shape in its unrotated local frame: the query
// point is inverse-rotated about the shape center, which also carries
// the rotation handle to its rotated position in world space.
func hitShape(s *shape.Shape, p geom.Point, tol float64) (Hit, bool) {
	local := p
	if s.Rotation != 0 {
		local = p.RotateAbout(s.Center(), -s.Rotation)
	}

	// Rotating a point mark about itself does nothing, so point marks
	// carry no rotation handle.
	if s.Kind != shape.KindPoint {
		b := s.Bounds()
		handle := geom.Pt(b.X+b.Width/2, b.Y-RotateHandleOffset)
		if geom.DistSq(local, handle) <= tol*tol {
			return Hit{ShapeID: s.ID, Part: PartRotate}, true
		}
	}

	switch s.Kind {
	case shape.KindRect:
		return hitRect(s, local, tol)
	case shape.KindPolyline:
		return hitPolyline(s, local, tol)
	case shape.KindBezier:
		return hitBezier(s, local, tol)
	case shape.KindPoint:
		return hitPoint(s, local, tol)
	}
	return Hit{}, false
}

func hitRect(s *shape.Shape, p geom.Point, tol float64) (Hit, bool) {
	r := s.Rect.Normalized()
	tolSq := tol * tol

	corners := [...]struct {
		label Edge
		pt    geom.Point
	}{
		{EdgeNW, geom.Pt(r.X, r.Y)},
		{EdgeNE, geom.Pt(r.X+r.W, r.Y)},
		{EdgeSE, geom.Pt(r.X+r.W, r.Y+r.H)},
		{EdgeSW, geom.Pt(r.X, r.Y+r.H)},
	}
	for _, c := range corners {
		if geom.DistSq(p, c.pt) <= tolSq {
			return Hit{ShapeID: s.ID, Part: PartResizeCorner, Edge: c.label}, true
		}
	}

	edges := [...]struct {
		label Edge
		a, b  geom.Point
	}{
		{EdgeN, geom.Pt(r.X, r.Y), geom.Pt(r.X+r.W, r.Y)},
		{EdgeE, geom.Pt(r.X+r.W, r.Y), geom.Pt(r.X+r.W, r.Y+r.H)},
		{EdgeS, geom.Pt(r.X, r.Y+r.H), geom.Pt(r.X+r.W, r.Y+r.H)},
		{EdgeW, geom.Pt(r.X, r.Y), geom.Pt(r.X, r.Y+r.H)},
	}
	for _, e := range edges {
		if geom.SegmentDistSq(p, e.a, e.b) <= tolSq {
			return Hit{ShapeID: s.ID, Part: PartResizeEdge, Edge: e.label}, true
		}
	}

	if s.Bounds().Contains(p) {
		return Hit{ShapeID: s.ID, Part: PartMove}, true
	}
	return Hit{}, false
}

func hitPolyline(s *shape.Shape, p geom.Point, tol float64) (Hit, bool) {
	pts := s.Polyline.Points
	tolSq := tol * tol

	for i, v := range pts {
		if geom.DistSq(p, v) <= tolSq {
			return Hit{ShapeID: s.ID, Part: PartVertex, Index: i}, true
		}
	}
	for i := 0; i+1 < len(pts); i++ {
		if geom.SegmentDistSq(p, pts[i], pts[i+1]) <= tolSq {
			return Hit{ShapeID: s.ID, Part: PartMove}, true
		}
	}
	if s.Polyline.Closed && len(pts) > 2 {
		if geom.SegmentDistSq(p, pts[len(pts)-1], pts[0]) <= tolSq {
			return Hit{ShapeID: s.ID, Part: PartMove}, true
		}
	}
	return Hit{}, false
}

func hitBezier(s *shape.Shape, p geom.Point, tol float64) (Hit, bool) {
	nodes := s.Bezier.Nodes
	tolSq := tol * tol

	for i, n := range nodes {
		if geom.DistSq(p, n.P) <= tolSq {
			return Hit{ShapeID: s.ID, Part: PartAnchor, Index: i}, true
		}
	}
	// Only present handles are grabbable. An absent handle sits on its
	// anchor, which already matched above if it was in range.
	for i, n := range nodes {
		if n.H1 != nil && geom.DistSq(p, *n.H1) <= tolSq {
			return Hit{ShapeID: s.ID, Part: PartHandle1, Index: i}, true
		}
		if n.H2 != nil && geom.DistSq(p, *n.H2) <= tolSq {
			return Hit{ShapeID: s.ID, Part: PartHandle2, Index: i}, true
		}
	}
	for i := 0; i+1 < len(nodes); i++ {
		if curveSpanHit(p, nodes[i], nodes[i+1], tolSq) {
			return Hit{ShapeID: s.ID, Part: PartMove}, true
		}
	}
	if s.Bezier.Closed && len(nodes) > 1 {
		if curveSpanHit(p, nodes[len(nodes)-1], nodes[0], tolSq) {
			return Hit{ShapeID: s.ID, Part: PartMove}, true
		}
	}
	return Hit{}, false
}

func curveSpanHit(p geom.Point, from, to shape.BezierNode, tolSq float64) bool {
	return geom.CubicDistSq(p, from.P, from.OutHandle(), to.InHandle(), to.P) <= tolSq
}

func hitPoint(s *shape.Shape, p geom.Point, tol float64) (Hit, bool) {
	grab := tol * pointGrabFactor
	if geom.DistSq(p, geom.Pt(s.Point.X, s.Point.Y)) <= grab*grab {
		return Hit{ShapeID: s.ID, Part: PartMove}, true
	}
	return Hit{}, false
}
