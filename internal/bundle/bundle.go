// Package bundle implements the JSON interchange format for an
// annotation set: the shape collection plus optional image metadata.
package bundle

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/VitalyVorobyev/imageannotation/internal/shape"
)

// Version is the only bundle format version this codec understands.
const Version = 1

var (
	ErrVersion     = errors.New("unsupported bundle version")
	ErrDuplicateID = errors.New("duplicate shape id")
)

// ImageInfo describes the raster the shapes annotate. All fields are
// optional; DataURL carries the encoded pixels when the bundle is
// self-contained.
type ImageInfo struct {
	Name    string `json:"name,omitempty"`
	Width   int    `json:"width,omitempty"`
	Height  int    `json:"height,omitempty"`
	DataURL string `json:"dataUrl,omitempty"`
}

// Bundle is one exported annotation set.
type Bundle struct {
	Version int           `json:"version"`
	Image   *ImageInfo    `json:"image,omitempty"`
	Shapes  []shape.Shape `json:"shapes"`
}

// New builds a bundle around a deep copy of the given shapes.
func New(shapes []shape.Shape, img *ImageInfo) Bundle {
	return Bundle{Version: Version, Image: img, Shapes: shape.CloneAll(shapes)}
}

// Encode serializes the bundle preserving shape order. A nil shape
// slice encodes as an empty array, never as null.
func (b Bundle) Encode() ([]byte, error) {
	if b.Shapes == nil {
		b.Shapes = []shape.Shape{}
	}
	return json.Marshal(b)
}

// Decode parses and validates a bundle. It rejects unknown versions,
// invalid shape payloads, unparseable colors and duplicate ids, and
// canonicalizes colors to lowercase hex. Validation runs before
// anything is returned, so a rejected bundle has no partial effect.
func Decode(data []byte) (*Bundle, error) {
	var b Bundle
	if err := json.Unmarshal(data, &b); err != nil {
		return nil, fmt.Errorf("parse bundle: %w", err)
	}
	if b.Version != Version {
		return nil, fmt.Errorf("%w: %d", ErrVersion, b.Version)
	}

	seen := make(map[string]struct{}, len(b.Shapes))
	for i := range b.Shapes {
		s := &b.Shapes[i]
		if err := s.Validate(); err != nil {
			return nil, fmt.Errorf("shape %d: %w", i, err)
		}
		if _, dup := seen[s.ID]; dup {
			return nil, fmt.Errorf("%w: %s", ErrDuplicateID, s.ID)
		}
		seen[s.ID] = struct{}{}

		stroke, err := shape.NormalizeColor(s.Stroke)
		if err != nil {
			return nil, fmt.Errorf("shape %s stroke: %w", s.ID, err)
		}
		fill, err := shape.NormalizeColor(s.Fill)
		if err != nil {
			return nil, fmt.Errorf("shape %s fill: %w", s.ID, err)
		}
		s.Stroke, s.Fill = stroke, fill
	}

	if b.Shapes == nil {
		b.Shapes = []shape.Shape{}
	}
	return &b, nil
}
