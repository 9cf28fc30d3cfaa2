package geom

// Rect is an axis-aligned rectangle in image space. Zero-size rects
// are valid: they are the bounds of point marks.
type Rect struct {
	X      float64 `json:"x"`
	Y      float64 `json:"y"`
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
}

// RectFromPoints returns the axis-aligned rectangle spanning two
// opposite corners, in either order.
func RectFromPoints(a, b Point) Rect {
	x := min(a.X, b.X)
	y := min(a.Y, b.Y)
	return Rect{X: x, Y: y, Width: max(a.X, b.X) - x, Height: max(a.Y, b.Y) - y}
}

// Contains checks if a point is inside the rect, edges inclusive.
func (r Rect) Contains(p Point) bool {
	return p.X >= r.X && p.X <= r.X+r.Width && p.Y >= r.Y && p.Y <= r.Y+r.Height
}

// Union returns the smallest rect containing both rects.
func (r Rect) Union(other Rect) Rect {
	minX := min(r.X, other.X)
	minY := min(r.Y, other.Y)
	maxX := max(r.X+r.Width, other.X+other.Width)
	maxY := max(r.Y+r.Height, other.Y+other.Height)

	return Rect{
		X:      minX,
		Y:      minY,
		Width:  maxX - minX,
		Height: maxY - minY,
	}
}

// Center returns the center point of the rect.
func (r Rect) Center() Point {
	return Point{X: r.X + r.Width/2, Y: r.Y + r.Height/2}
}
