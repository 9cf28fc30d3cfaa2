// Package shape defines the tagged-union annotation model and the
// pure operations on it. Shapes are plain values: the editor and the
// history layer deep-copy them freely and never share backing memory
// between a live shape and a snapshot.
package shape

import (
	"errors"
	"fmt"

	"github.com/VitalyVorobyev/imageannotation/internal/geom"
)

// Kind discriminates the shape union. Exactly one payload field on
// Shape is non-nil and it matches the kind.
type Kind string

const (
	KindRect     Kind = "rect"
	KindPolyline Kind = "polyline"
	KindBezier   Kind = "bezier"
	KindPoint    Kind = "point"
)

type Shape struct {
	ID       string  `json:"id"`
	Kind     Kind    `json:"kind"`
	Name     string  `json:"name,omitempty"`
	Stroke   string  `json:"stroke,omitempty"`
	Fill     string  `json:"fill,omitempty"`
	Visible  *bool   `json:"visible,omitempty"`
	Rotation float64 `json:"rotation,omitempty"`

	Rect     *RectShape     `json:"rect,omitempty"`
	Polyline *PolylineShape `json:"polyline,omitempty"`
	Bezier   *BezierShape   `json:"bezier,omitempty"`
	Point    *PointShape    `json:"point,omitempty"`
}

// RectShape has signed extents: negative W or H is legal transient
// state while drafting or resizing. Normalized fixes the signs.
type RectShape struct {
	X      float64 `json:"x"`
	Y      float64 `json:"y"`
	W      float64 `json:"w"`
	H      float64 `json:"h"`
	Radius float64 `json:"radius,omitempty"`
}

type PolylineShape struct {
	Points []geom.Point `json:"points"`
	Closed bool         `json:"closed,omitempty"`
}

// BezierNode is a curve anchor with optional incoming (H1) and
// outgoing (H2) control handles. A nil handle acts as if it sat on
// the anchor itself.
type BezierNode struct {
	P  geom.Point  `json:"p"`
	H1 *geom.Point `json:"h1,omitempty"`
	H2 *geom.Point `json:"h2,omitempty"`
}

type BezierShape struct {
	Nodes  []BezierNode `json:"nodes"`
	Closed bool         `json:"closed,omitempty"`
}

// PointShape marks a single image location. DetectionID and World
// carry metadata for points produced by pattern detection: the index
// of the feature within its detected set and the 3D coordinate of the
// feature on the physical calibration target.
type PointShape struct {
	X           float64 `json:"x"`
	Y           float64 `json:"y"`
	DetectionID *int    `json:"detectionId,omitempty"`
	World       *World  `json:"world,omitempty"`
}

type World struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
	Z float64 `json:"z"`
}

// IsVisible reports whether the shape participates in rendering and
// hit-testing. An absent flag means visible.
func (s Shape) IsVisible() bool {
	return s.Visible == nil || *s.Visible
}

// Validate checks that the union is well formed: the payload matching
// Kind is present and minimum point/node counts are met.
func (s Shape) Validate() error {
	if s.ID == "" {
		return errors.New("shape id is empty")
	}
	switch s.Kind {
	case KindRect:
		if s.Rect == nil {
			return fmt.Errorf("shape %s: rect payload missing", s.ID)
		}
	case KindPolyline:
		if s.Polyline == nil {
			return fmt.Errorf("shape %s: polyline payload missing", s.ID)
		}
		if len(s.Polyline.Points) < 1 {
			return fmt.Errorf("shape %s: polyline needs at least 1 point", s.ID)
		}
	case KindBezier:
		if s.Bezier == nil {
			return fmt.Errorf("shape %s: bezier payload missing", s.ID)
		}
		if len(s.Bezier.Nodes) < 2 {
			return fmt.Errorf("shape %s: bezier needs at least 2 nodes", s.ID)
		}
	case KindPoint:
		if s.Point == nil {
			return fmt.Errorf("shape %s: point payload missing", s.ID)
		}
	default:
		return fmt.Errorf("shape %s: unknown kind %q", s.ID, s.Kind)
	}
	return nil
}

// Clone returns a deep copy. Drag previews and history snapshots rely
// on clones never aliasing the live shape.
func (s Shape) Clone() Shape {
	out := s
	out.Visible = clonePtr(s.Visible)
	if s.Rect != nil {
		r := *s.Rect
		out.Rect = &r
	}
	if s.Polyline != nil {
		p := PolylineShape{Closed: s.Polyline.Closed}
		p.Points = append([]geom.Point(nil), s.Polyline.Points...)
		out.Polyline = &p
	}
	if s.Bezier != nil {
		b := BezierShape{Nodes: make([]BezierNode, len(s.Bezier.Nodes)), Closed: s.Bezier.Closed}
		for i, n := range s.Bezier.Nodes {
			b.Nodes[i] = BezierNode{P: n.P, H1: clonePtr(n.H1), H2: clonePtr(n.H2)}
		}
		out.Bezier = &b
	}
	if s.Point != nil {
		p := *s.Point
		p.DetectionID = clonePtr(s.Point.DetectionID)
		p.World = clonePtr(s.Point.World)
		out.Point = &p
	}
	return out
}

// CloneAll deep-copies a whole collection, preserving order.
func CloneAll(shapes []Shape) []Shape {
	out := make([]Shape, len(shapes))
	for i, s := range shapes {
		out[i] = s.Clone()
	}
	return out
}

func clonePtr[T any](p *T) *T {
	if p == nil {
		return nil
	}
	v := *p
	return &v
}
