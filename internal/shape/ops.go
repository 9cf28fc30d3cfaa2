package shape

import "github.com/VitalyVorobyev/imageannotation/internal/geom"

// Normalized returns the rect with non-negative extents covering the
// same region. Applying it twice changes nothing.
func (r RectShape) Normalized() RectShape {
	out := r
	if out.W < 0 {
		out.X += out.W
		out.W = -out.W
	}
	if out.H < 0 {
		out.Y += out.H
		out.H = -out.H
	}
	return out
}

// Bounds returns the axis-aligned bounding box of the shape's defining
// points. Bézier control handles do not contribute. Rotation is not
// applied: this box is the pre-rotation frame the rotation pivots on.
// A point mark yields a zero-size rect at its position.
func (s Shape) Bounds() geom.Rect {
	switch s.Kind {
	case KindRect:
		r := s.Rect
		return geom.RectFromPoints(geom.Pt(r.X, r.Y), geom.Pt(r.X+r.W, r.Y+r.H))
	case KindPolyline:
		return boundsOf(s.Polyline.Points)
	case KindBezier:
		pts := make([]geom.Point, len(s.Bezier.Nodes))
		for i, n := range s.Bezier.Nodes {
			pts[i] = n.P
		}
		return boundsOf(pts)
	case KindPoint:
		return geom.Rect{X: s.Point.X, Y: s.Point.Y}
	}
	return geom.Rect{}
}

// Center returns the center of Bounds, recomputed on every call so
// rotation always pivots on current geometry.
func (s Shape) Center() geom.Point {
	return s.Bounds().Center()
}

// Translate moves every defining point, including present Bézier
// handles, by (dx, dy). Move drags and keyboard nudges both funnel
// through here.
func (s *Shape) Translate(dx, dy float64) {
	switch s.Kind {
	case KindRect:
		s.Rect.X += dx
		s.Rect.Y += dy
	case KindPolyline:
		for i := range s.Polyline.Points {
			s.Polyline.Points[i].X += dx
			s.Polyline.Points[i].Y += dy
		}
	case KindBezier:
		for i := range s.Bezier.Nodes {
			n := &s.Bezier.Nodes[i]
			n.P.X += dx
			n.P.Y += dy
			if n.H1 != nil {
				n.H1.X += dx
				n.H1.Y += dy
			}
			if n.H2 != nil {
				n.H2.X += dx
				n.H2.Y += dy
			}
		}
	case KindPoint:
		s.Point.X += dx
		s.Point.Y += dy
	}
}

func boundsOf(pts []geom.Point) geom.Rect {
	if len(pts) == 0 {
		return geom.Rect{}
	}
	minX, minY := pts[0].X, pts[0].Y
	maxX, maxY := minX, minY
	for _, p := range pts[1:] {
		minX = min(minX, p.X)
		minY = min(minY, p.Y)
		maxX = max(maxX, p.X)
		maxY = max(maxY, p.Y)
	}
	return geom.Rect{X: minX, Y: minY, Width: maxX - minX, Height: maxY - minY}
}
