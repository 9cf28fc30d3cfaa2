package shape

import "github.com/VitalyVorobyev/imageannotation/internal/geom"

// PathCommand is a single drawing step for a Bézier curve.
// Format matches Canvas2D: ["M", x, y], ["C", c1x, c1y, c2x, c2y, x, y], ["Z"].
type PathCommand []any

// InHandle returns the effective incoming control point: H1, or the
// anchor itself when the handle is absent.
func (n BezierNode) InHandle() geom.Point {
	if n.H1 != nil {
		return *n.H1
	}
	return n.P
}

// OutHandle returns the effective outgoing control point: H2, or the
// anchor itself when the handle is absent.
func (n BezierNode) OutHandle() geom.Point {
	if n.H2 != nil {
		return *n.H2
	}
	return n.P
}

// PathCommands flattens the curve into drawing commands: a move to the
// first anchor, one cubic per span, and for closed curves a final span
// back to the first anchor followed by a close. Spans whose nodes have
// no handles come out as cubics degenerate to the straight chord.
func (b BezierShape) PathCommands() []PathCommand {
	if len(b.Nodes) == 0 {
		return nil
	}
	first := b.Nodes[0]
	cmds := []PathCommand{{"M", first.P.X, first.P.Y}}
	for i := 1; i < len(b.Nodes); i++ {
		cmds = append(cmds, curveCommand(b.Nodes[i-1], b.Nodes[i]))
	}
	if b.Closed && len(b.Nodes) > 1 {
		cmds = append(cmds, curveCommand(b.Nodes[len(b.Nodes)-1], first), PathCommand{"Z"})
	}
	return cmds
}

func curveCommand(from, to BezierNode) PathCommand {
	c1 := from.OutHandle()
	c2 := to.InHandle()
	return PathCommand{"C", c1.X, c1.Y, c2.X, c2.Y, to.P.X, to.P.Y}
}
