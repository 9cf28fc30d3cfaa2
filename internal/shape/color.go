package shape

import (
	"fmt"
	"strings"

	colorful "github.com/lucasb-eyer/go-colorful"
	"golang.org/x/image/colornames"
)

// NormalizeColor canonicalizes a stroke or fill value to lowercase
// "#rrggbb". It accepts "#rgb" and "#rrggbb" hex plus SVG 1.1 color
// names ("tomato", "SteelBlue"). Empty stays empty: an absent style
// field means the renderer default.
func NormalizeColor(s string) (string, error) {
	if s == "" {
		return "", nil
	}
	if c, ok := colornames.Map[strings.ToLower(s)]; ok {
		return fmt.Sprintf("#%02x%02x%02x", c.R, c.G, c.B), nil
	}
	c, err := colorful.Hex(strings.ToLower(s))
	if err != nil {
		return "", fmt.Errorf("color %q: %w", s, err)
	}
	return c.Hex(), nil
}
