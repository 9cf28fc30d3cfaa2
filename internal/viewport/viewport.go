// Package viewport maps between image space and screen space. The
// whole mapping is uniform zoom plus pan: screen = image*zoom + pan.
package viewport

import "github.com/VitalyVorobyev/imageannotation/internal/geom"

type Viewport struct {
	Zoom float64    `json:"zoom"`
	Pan  geom.Point `json:"pan"`
}

// New returns the identity viewport.
func New() Viewport {
	return Viewport{Zoom: 1}
}

// ImageToScreen converts an image-space point to screen space.
func (v Viewport) ImageToScreen(p geom.Point) geom.Point {
	return geom.Point{X: p.X*v.Zoom + v.Pan.X, Y: p.Y*v.Zoom + v.Pan.Y}
}

// ScreenToImage converts a screen-space point to image space. It is
// the exact inverse of ImageToScreen.
func (v Viewport) ScreenToImage(p geom.Point) geom.Point {
	return geom.Point{X: (p.X - v.Pan.X) / v.Zoom, Y: (p.Y - v.Pan.Y) / v.Zoom}
}

// ToleranceInImage converts a screen-pixel radius into image units so
// hit targets keep a constant screen size at any zoom.
func (v Viewport) ToleranceInImage(px float64) float64 {
	if v.Zoom <= 0 {
		return px
	}
	return px / v.Zoom
}

// Fit returns the viewport that shows the whole image inside a view,
// preserving aspect ratio and centering along the slack axis.
func Fit(imgW, imgH, viewW, viewH float64) Viewport {
	if imgW <= 0 || imgH <= 0 || viewW <= 0 || viewH <= 0 {
		return New()
	}
	zoom := min(viewW/imgW, viewH/imgH)
	return Viewport{
		Zoom: zoom,
		Pan: geom.Point{
			X: (viewW - imgW*zoom) / 2,
			Y: (viewH - imgH*zoom) / 2,
		},
	}
}
