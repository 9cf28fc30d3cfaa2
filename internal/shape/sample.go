package shape

import "github.com/VitalyVorobyev/imageannotation/internal/geom"

// Sample returns a small demo annotation set covering every kind.
// The wasm bridge exposes it as loadSample and tests use it as a
// convenient fixture.
func Sample() []Shape {
	idx := 0
	return []Shape{
		{
			ID:     "rect-1",
			Kind:   KindRect,
			Name:   "board outline",
			Stroke: "#e63946",
			Rect:   &RectShape{X: 40, Y: 40, W: 240, H: 160, Radius: 8},
		},
		{
			ID:     "poly-1",
			Kind:   KindPolyline,
			Name:   "weld seam",
			Stroke: "#457b9d",
			Polyline: &PolylineShape{
				Points: []geom.Point{{X: 60, Y: 260}, {X: 140, Y: 300}, {X: 260, Y: 280}},
			},
		},
		{
			ID:     "bez-1",
			Kind:   KindBezier,
			Name:   "cable path",
			Stroke: "#2a9d8f",
			Bezier: &BezierShape{
				Nodes: []BezierNode{
					{P: geom.Point{X: 320, Y: 60}, H2: &geom.Point{X: 360, Y: 60}},
					{P: geom.Point{X: 420, Y: 140}, H1: &geom.Point{X: 380, Y: 140}},
				},
			},
		},
		{
			ID:     "point-1",
			Kind:   KindPoint,
			Name:   "corner 0",
			Stroke: "#f4a261",
			Point: &PointShape{
				X:           180,
				Y:           120,
				DetectionID: &idx,
				World:       &World{X: 0, Y: 0, Z: 0},
			},
		},
	}
}
