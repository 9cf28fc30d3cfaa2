package geom

import "math"

// cubicSamples is the number of chords a cubic Bézier segment is
// flattened into for distance queries.
const cubicSamples = 24

// DistSq returns the squared distance between two points.
func DistSq(a, b Point) float64 {
	return a.Sub(b).LengthSquared()
}

// SegmentDistSq returns the squared distance from p to the segment ab.
// A zero-length segment degrades to plain point distance.
func SegmentDistSq(p, a, b Point) float64 {
	ab := b.Sub(a)
	denom := ab.LengthSquared()
	if denom == 0 {
		return DistSq(p, a)
	}
	t := p.Sub(a).Dot(ab) / denom
	if t < 0 {
		t = 0
	} else if t > 1 {
		t = 1
	}
	return DistSq(p, a.Add(ab.Mul(t)))
}

// CubicPoint evaluates the cubic Bézier spanning p0..p1 with control
// points c1, c2 at parameter t in [0, 1] (Bernstein form).
func CubicPoint(p0, c1, c2, p1 Point, t float64) Point {
	mt := 1 - t
	a := mt * mt * mt
	b := 3 * mt * mt * t
	c := 3 * mt * t * t
	d := t * t * t
	return Point{
		X: a*p0.X + b*c1.X + c*c2.X + d*p1.X,
		Y: a*p0.Y + b*c1.Y + c*c2.Y + d*p1.Y,
	}
}

// CubicDistSq returns the squared distance from p to the cubic Bézier
// segment, approximated over uniformly sampled chords.
func CubicDistSq(p, p0, c1, c2, p1 Point) float64 {
	best := math.MaxFloat64
	prev := p0
	for i := 1; i <= cubicSamples; i++ {
		t := float64(i) / cubicSamples
		cur := CubicPoint(p0, c1, c2, p1, t)
		if d := SegmentDistSq(p, prev, cur); d < best {
			best = d
		}
		prev = cur
	}
	return best
}
