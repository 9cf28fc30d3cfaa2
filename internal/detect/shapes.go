package detect

import (
	"fmt"
	"math"

	colorful "github.com/lucasb-eyer/go-colorful"

	"github.com/VitalyVorobyev/imageannotation/internal/shape"
)

// goldenAngle steps hues so consecutive runs land far apart on the
// color wheel.
const goldenAngle = 137.50776405003785

// PaletteColor returns a stable, well separated stroke color for the
// n-th detection run.
func PaletteColor(n int) string {
	hue := math.Mod(float64(n)*goldenAngle, 360)
	return colorful.Hsv(hue, 0.85, 0.95).Hex()
}

// PointShapes converts one run's detections into point marks. All
// marks of a run share a stroke color drawn from the run palette;
// the detector's feature index becomes the mark's detectionId.
func PointShapes(points []Point2D, run int, newID func() string) []shape.Shape {
	stroke := PaletteColor(run)

	shapes := make([]shape.Shape, len(points))
	for i, p := range points {
		idx := i
		if p.Index != nil {
			idx = *p.Index
		}
		detID := idx

		shapes[i] = shape.Shape{
			ID:     newID(),
			Kind:   shape.KindPoint,
			Name:   fmt.Sprintf("corner %d", idx),
			Stroke: stroke,
			Point:  &shape.PointShape{X: p.X, Y: p.Y, DetectionID: &detID},
		}
	}
	return shapes
}
