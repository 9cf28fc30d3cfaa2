package editor

import (
	"fmt"
	"math"
	"testing"

	"github.com/VitalyVorobyev/imageannotation/internal/geom"
	"github.com/VitalyVorobyev/imageannotation/internal/hittest"
	"github.com/VitalyVorobyev/imageannotation/internal/shape"
	"github.com/VitalyVorobyev/imageannotation/internal/viewport"
)

const epsilon = 1e-9

func newTestEditor() *Editor {
	n := 0
	return New(Options{NewID: func() string {
		n++
		return fmt.Sprintf("s%d", n)
	}})
}

func mustAdd(t *testing.T, e *Editor, s shape.Shape) shape.Shape {
	t.Helper()
	added, err := e.AddShape(s)
	if err != nil {
		t.Fatalf("AddShape: %v", err)
	}
	return added
}

func onlyShape(t *testing.T, e *Editor) shape.Shape {
	t.Helper()
	shapes := e.Shapes()
	if len(shapes) != 1 {
		t.Fatalf("collection has %d shapes, want 1", len(shapes))
	}
	return shapes[0]
}

func testRect(id string, x, y, w, h float64) shape.Shape {
	return shape.Shape{ID: id, Kind: shape.KindRect, Rect: &shape.RectShape{X: x, Y: y, W: w, H: h}}
}

func TestRectDraftCommit(t *testing.T) {
	e := newTestEditor()
	e.BeginRectDraft(geom.Pt(10, 10))
	e.UpdateRectDraft(geom.Pt(110, 60))
	s, ok := e.FinishRectDraft()
	if !ok {
		t.Fatal("draft should commit")
	}

	r := *s.Rect
	if r.X != 10 || r.Y != 10 || r.W != 100 || r.H != 50 {
		t.Errorf("rect = %+v, want x=10 y=10 w=100 h=50", r)
	}
	if e.Selected() != s.ID {
		t.Errorf("selected = %q, want the new shape %q", e.Selected(), s.ID)
	}
	if got := onlyShape(t, e); got.ID != s.ID {
		t.Errorf("collection holds %q", got.ID)
	}
}

func TestRectDraftReversedDirection(t *testing.T) {
	e := newTestEditor()
	e.BeginRectDraft(geom.Pt(110, 60))
	e.UpdateRectDraft(geom.Pt(10, 10))
	s, ok := e.FinishRectDraft()
	if !ok {
		t.Fatal("draft should commit")
	}
	r := *s.Rect
	if r.X != 10 || r.Y != 10 || r.W != 100 || r.H != 50 {
		t.Errorf("rect = %+v, want the normalized x=10 y=10 w=100 h=50", r)
	}
}

func TestRectDraftBelowMinimumIsDiscarded(t *testing.T) {
	tests := []struct {
		name string
		to   geom.Point
	}{
		{"both extents under one unit", geom.Pt(10.5, 10.5)},
		{"extents exactly one unit", geom.Pt(11, 11)},
		{"only width large enough", geom.Pt(50, 10.5)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e := newTestEditor()
			e.BeginRectDraft(geom.Pt(10, 10))
			e.UpdateRectDraft(tt.to)
			if _, ok := e.FinishRectDraft(); ok {
				t.Fatal("sub-minimum draft must be discarded")
			}
			if len(e.Shapes()) != 0 {
				t.Error("discarded draft must not reach the collection")
			}
			if e.CanUndo() {
				t.Error("a discarded draft must not create a history entry")
			}
		})
	}
}

func TestRectDraftWithoutBegin(t *testing.T) {
	e := newTestEditor()
	e.UpdateRectDraft(geom.Pt(5, 5))
	if _, ok := e.FinishRectDraft(); ok {
		t.Error("finish without begin must be a silent no-op")
	}
}

func TestPolylineDraft(t *testing.T) {
	e := newTestEditor()
	e.AppendPolylinePoint(geom.Pt(0, 0))
	e.AppendPolylinePoint(geom.Pt(10, 0))
	e.AppendPolylinePoint(geom.Pt(10, 10))
	s, ok := e.FinishPolyline(true)
	if !ok {
		t.Fatal("draft should commit")
	}
	if len(s.Polyline.Points) != 3 || !s.Polyline.Closed {
		t.Errorf("polyline = %+v, want 3 closed points", s.Polyline)
	}
}

func TestPolylineSinglePointCommits(t *testing.T) {
	e := newTestEditor()
	e.AppendPolylinePoint(geom.Pt(3, 4))
	if _, ok := e.FinishPolyline(false); !ok {
		t.Error("a one-point polyline meets the minimum count")
	}
}

func TestFinishPolylineWithoutDraft(t *testing.T) {
	e := newTestEditor()
	if _, ok := e.FinishPolyline(false); ok {
		t.Error("finish without draft must be a silent no-op")
	}
}

func TestBezierDraftMidpointHandles(t *testing.T) {
	e := newTestEditor()
	e.AppendBezierNode(geom.Pt(0, 0))
	e.AppendBezierNode(geom.Pt(10, 0))
	e.AppendBezierNode(geom.Pt(20, 10))
	s, ok := e.FinishBezier(false)
	if !ok {
		t.Fatal("draft should commit")
	}

	nodes := s.Bezier.Nodes
	if len(nodes) != 3 {
		t.Fatalf("got %d nodes", len(nodes))
	}
	// Join 0-1 placed both handles at the midpoint (5, 0).
	if nodes[0].H2 == nil || *nodes[0].H2 != geom.Pt(5, 0) {
		t.Errorf("node0.H2 = %v, want (5, 0)", nodes[0].H2)
	}
	if nodes[1].H1 == nil || *nodes[1].H1 != geom.Pt(5, 0) {
		t.Errorf("node1.H1 = %v, want (5, 0)", nodes[1].H1)
	}
	// Join 1-2 at (15, 5).
	if nodes[1].H2 == nil || *nodes[1].H2 != geom.Pt(15, 5) {
		t.Errorf("node1.H2 = %v, want (15, 5)", nodes[1].H2)
	}
	if nodes[2].H1 == nil || *nodes[2].H1 != geom.Pt(15, 5) {
		t.Errorf("node2.H1 = %v, want (15, 5)", nodes[2].H1)
	}
	// The first incoming and last outgoing handles stay absent.
	if nodes[0].H1 != nil || nodes[2].H2 != nil {
		t.Error("terminal handles must stay absent on an open draft")
	}
}

func TestBezierDraftMinimumNodes(t *testing.T) {
	e := newTestEditor()
	e.AppendBezierNode(geom.Pt(0, 0))
	if _, ok := e.FinishBezier(false); ok {
		t.Error("a one-node curve must be discarded")
	}
}

func TestDraftsAreExclusive(t *testing.T) {
	e := newTestEditor()
	e.BeginRectDraft(geom.Pt(0, 0))
	e.AppendPolylinePoint(geom.Pt(1, 1))

	st := e.Drafts()
	if st.Rect != nil {
		t.Error("starting a polyline draft must drop the rect draft")
	}
	if st.Polyline == nil || len(st.Polyline.Points) != 1 {
		t.Errorf("polyline draft = %+v", st.Polyline)
	}
}

func TestCancelDrafts(t *testing.T) {
	e := newTestEditor()
	e.AppendPolylinePoint(geom.Pt(0, 0))
	e.CancelDrafts()
	if e.HasDraft() {
		t.Error("cancel must drop the draft")
	}
	if _, ok := e.FinishPolyline(false); ok {
		t.Error("cancelled draft must not commit")
	}
}

func TestDeleteSelectedAndUndoRedo(t *testing.T) {
	e := newTestEditor()
	added := mustAdd(t, e, testRect("", 0, 0, 10, 10))
	e.Select(added.ID)

	if !e.DeleteSelected() {
		t.Fatal("delete should succeed")
	}
	if len(e.Shapes()) != 0 || e.Selected() != "" {
		t.Fatal("delete must empty collection and clear selection")
	}

	if !e.Undo() {
		t.Fatal("undo should succeed")
	}
	if got := onlyShape(t, e); got.ID != added.ID {
		t.Errorf("undo restored %q", got.ID)
	}

	if !e.Redo() {
		t.Fatal("redo should succeed")
	}
	if len(e.Shapes()) != 0 {
		t.Error("redo must reapply the delete")
	}
}

func TestUndoPrunesSelection(t *testing.T) {
	e := newTestEditor()
	e.AddPoint(geom.Pt(5, 5))
	if e.Selected() == "" {
		t.Fatal("AddPoint should select the new mark")
	}
	if !e.Undo() {
		t.Fatal("undo should succeed")
	}
	if e.Selected() != "" {
		t.Error("selection must not survive the shape's removal")
	}
}

func TestDeleteWithoutSelection(t *testing.T) {
	e := newTestEditor()
	mustAdd(t, e, testRect("", 0, 0, 10, 10))
	if e.DeleteSelected() {
		t.Error("delete with no selection must report false")
	}
	if len(e.Shapes()) != 1 {
		t.Error("collection must be untouched")
	}
}

func TestNudgeConvertsScreenToImage(t *testing.T) {
	e := newTestEditor()
	added := mustAdd(t, e, testRect("", 0, 0, 10, 10))
	e.Select(added.ID)
	e.SetViewport(viewport.Viewport{Zoom: 2})

	if !e.NudgeSelected(1, 0, false) {
		t.Fatal("nudge should succeed")
	}
	if got := onlyShape(t, e); math.Abs(got.Rect.X-0.5) > epsilon {
		t.Errorf("x = %v, want 0.5 (1px at zoom 2)", got.Rect.X)
	}

	if !e.NudgeSelected(0, -1, true) {
		t.Fatal("fast nudge should succeed")
	}
	if got := onlyShape(t, e); math.Abs(got.Rect.Y-(-5)) > epsilon {
		t.Errorf("y = %v, want -5 (10px fast at zoom 2)", got.Rect.Y)
	}

	// Each nudge is one undoable operation.
	e.Undo()
	e.Undo()
	got := onlyShape(t, e)
	if got.Rect.X != 0 || got.Rect.Y != 0 {
		t.Errorf("after two undos rect = %+v, want origin", got.Rect)
	}
}

func TestNudgeWithoutSelection(t *testing.T) {
	e := newTestEditor()
	if e.NudgeSelected(1, 0, false) {
		t.Error("nudge with no selection must report false")
	}
}

func TestDragMoveRebuildsFromSnapshot(t *testing.T) {
	e := newTestEditor()
	added := mustAdd(t, e, testRect("", 0, 0, 10, 10))

	if !e.StartDrag(hittest.Hit{ShapeID: added.ID, Part: hittest.PartMove}, geom.Pt(5, 5)) {
		t.Fatal("StartDrag failed")
	}
	e.UpdateDrag(geom.Pt(8, 9))
	if got := onlyShape(t, e); got.Rect.X != 3 || got.Rect.Y != 4 {
		t.Errorf("mid-drag rect at (%v, %v), want (3, 4)", got.Rect.X, got.Rect.Y)
	}

	// A later update with a smaller delta lands where the pointer is,
	// not where accumulated deltas would drift to.
	e.UpdateDrag(geom.Pt(6, 5))
	e.UpdateDrag(geom.Pt(6, 5))
	if got := onlyShape(t, e); got.Rect.X != 1 || got.Rect.Y != 0 {
		t.Errorf("rect at (%v, %v), want (1, 0)", got.Rect.X, got.Rect.Y)
	}
	e.EndDrag()

	// The whole gesture is one history entry.
	if !e.Undo() {
		t.Fatal("undo should succeed")
	}
	if got := onlyShape(t, e); got.Rect.X != 0 || got.Rect.Y != 0 {
		t.Errorf("undo left rect at (%v, %v)", got.Rect.X, got.Rect.Y)
	}
	if e.CanUndo() {
		t.Error("drag must collapse into exactly one entry")
	}
}

func TestCornerResizeAcrossOppositeCorner(t *testing.T) {
	e := newTestEditor()
	added := mustAdd(t, e, testRect("", 0, 0, 10, 10))

	hit := hittest.Hit{ShapeID: added.ID, Part: hittest.PartResizeCorner, Edge: hittest.EdgeSE}
	e.StartDrag(hit, geom.Pt(10, 10))
	e.UpdateDrag(geom.Pt(-4, -6))

	// Extents stay signed while the corner is across the anchor.
	if got := onlyShape(t, e); got.Rect.W != -4 || got.Rect.H != -6 {
		t.Errorf("mid-drag extents = (%v, %v), want (-4, -6)", got.Rect.W, got.Rect.H)
	}

	e.EndDrag()
	got := onlyShape(t, e)
	want := shape.RectShape{X: -4, Y: -6, W: 4, H: 6}
	if *got.Rect != want {
		t.Errorf("final rect = %+v, want %+v", *got.Rect, want)
	}
}

func TestEdgeResizeMovesOneSide(t *testing.T) {
	e := newTestEditor()
	added := mustAdd(t, e, testRect("", 0, 0, 10, 10))

	hit := hittest.Hit{ShapeID: added.ID, Part: hittest.PartResizeEdge, Edge: hittest.EdgeN}
	e.StartDrag(hit, geom.Pt(5, 0))
	e.UpdateDrag(geom.Pt(5, -5))
	e.EndDrag()

	got := onlyShape(t, e)
	want := shape.RectShape{X: 0, Y: -5, W: 10, H: 15}
	if *got.Rect != want {
		t.Errorf("rect = %+v, want %+v (only the north side moves)", *got.Rect, want)
	}
}

func TestVertexDragReplacesOnePoint(t *testing.T) {
	e := newTestEditor()
	s := shape.Shape{Kind: shape.KindPolyline, Polyline: &shape.PolylineShape{
		Points: []geom.Point{{X: 0, Y: 0}, {X: 10, Y: 0}, {X: 20, Y: 10}},
	}}
	added := mustAdd(t, e, s)

	e.StartDrag(hittest.Hit{ShapeID: added.ID, Part: hittest.PartVertex, Index: 1}, geom.Pt(10, 0))
	e.UpdateDrag(geom.Pt(12, 3))
	e.EndDrag()

	got := onlyShape(t, e)
	pts := got.Polyline.Points
	if pts[1] != geom.Pt(12, 3) {
		t.Errorf("vertex 1 = %v, want (12, 3)", pts[1])
	}
	if pts[0] != geom.Pt(0, 0) || pts[2] != geom.Pt(20, 10) {
		t.Error("other vertices must not move")
	}
}

func TestAnchorDragCarriesHandles(t *testing.T) {
	e := newTestEditor()
	h1 := geom.Pt(30, 20)
	h2 := geom.Pt(50, 20)
	s := shape.Shape{Kind: shape.KindBezier, Bezier: &shape.BezierShape{
		Nodes: []shape.BezierNode{
			{P: geom.Pt(0, 0)},
			{P: geom.Pt(40, 0), H1: &h1, H2: &h2},
		},
	}}
	added := mustAdd(t, e, s)

	e.StartDrag(hittest.Hit{ShapeID: added.ID, Part: hittest.PartAnchor, Index: 1}, geom.Pt(40, 0))
	e.UpdateDrag(geom.Pt(45, 5))
	e.EndDrag()

	got := onlyShape(t, e)
	n := got.Bezier.Nodes[1]
	if n.P != geom.Pt(45, 5) {
		t.Errorf("anchor = %v, want (45, 5)", n.P)
	}
	if *n.H1 != geom.Pt(35, 25) || *n.H2 != geom.Pt(55, 25) {
		t.Errorf("handles = %v, %v, want both shifted by (5, 5)", *n.H1, *n.H2)
	}
	if got.Bezier.Nodes[0].P != geom.Pt(0, 0) {
		t.Error("sibling node must not move")
	}
}

func TestHandleDragMovesOnlyThatHandle(t *testing.T) {
	e := newTestEditor()
	h2 := geom.Pt(10, 20)
	s := shape.Shape{Kind: shape.KindBezier, Bezier: &shape.BezierShape{
		Nodes: []shape.BezierNode{
			{P: geom.Pt(0, 0), H2: &h2},
			{P: geom.Pt(40, 0)},
		},
	}}
	added := mustAdd(t, e, s)

	e.StartDrag(hittest.Hit{ShapeID: added.ID, Part: hittest.PartHandle2, Index: 0}, geom.Pt(10, 20))
	e.UpdateDrag(geom.Pt(14, 25))
	e.EndDrag()

	got := onlyShape(t, e)
	if *got.Bezier.Nodes[0].H2 != geom.Pt(14, 25) {
		t.Errorf("H2 = %v, want (14, 25)", *got.Bezier.Nodes[0].H2)
	}
	if got.Bezier.Nodes[0].P != geom.Pt(0, 0) {
		t.Error("the anchor must not move")
	}
}

func TestAbsentHandleMaterializesAtAnchorPlusDelta(t *testing.T) {
	e := newTestEditor()
	s := shape.Shape{Kind: shape.KindBezier, Bezier: &shape.BezierShape{
		Nodes: []shape.BezierNode{
			{P: geom.Pt(0, 0)},
			{P: geom.Pt(10, 0)},
		},
	}}
	added := mustAdd(t, e, s)

	e.StartDrag(hittest.Hit{ShapeID: added.ID, Part: hittest.PartHandle1, Index: 1}, geom.Pt(10, 0))
	e.UpdateDrag(geom.Pt(13, 4))
	e.EndDrag()

	got := onlyShape(t, e)
	n := got.Bezier.Nodes[1]
	if n.H1 == nil || *n.H1 != geom.Pt(13, 4) {
		t.Errorf("H1 = %v, want materialized at (13, 4)", n.H1)
	}
	if n.H2 != nil {
		t.Error("the other handle must stay absent")
	}
}

func TestRotateDragIsReversible(t *testing.T) {
	e := newTestEditor()
	added := mustAdd(t, e, testRect("", 0, 0, 10, 10)) // center (5, 5)

	e.StartDrag(hittest.Hit{ShapeID: added.ID, Part: hittest.PartRotate}, geom.Pt(15, 5))
	e.UpdateDrag(geom.Pt(5, 15))
	if got := onlyShape(t, e); math.Abs(got.Rotation-math.Pi/2) > epsilon {
		t.Errorf("rotation = %v, want pi/2", got.Rotation)
	}

	// Dragging back to the start angle restores the original rotation.
	e.UpdateDrag(geom.Pt(15, 5))
	if got := onlyShape(t, e); math.Abs(got.Rotation) > epsilon {
		t.Errorf("rotation = %v, want 0 after returning to start", got.Rotation)
	}
	e.EndDrag()
}

func TestRotatedRectResizeUsesLocalFrame(t *testing.T) {
	e := newTestEditor()
	s := testRect("", 0, 0, 10, 4)
	s.Rotation = math.Pi / 2 // center (5, 2)
	added := mustAdd(t, e, s)

	// World (7, -3) is the rotated NW corner; dragging one world unit
	// further out moves it one unit along the local x axis.
	hit := hittest.Hit{ShapeID: added.ID, Part: hittest.PartResizeCorner, Edge: hittest.EdgeNW}
	e.StartDrag(hit, geom.Pt(7, -3))
	e.UpdateDrag(geom.Pt(7, -4))
	e.EndDrag()

	got := onlyShape(t, e)
	want := shape.RectShape{X: -1, Y: 0, W: 11, H: 4}
	if math.Abs(got.Rect.X-want.X) > epsilon || math.Abs(got.Rect.W-want.W) > epsilon ||
		math.Abs(got.Rect.Y-want.Y) > epsilon || math.Abs(got.Rect.H-want.H) > epsilon {
		t.Errorf("rect = %+v, want %+v", *got.Rect, want)
	}
}

func TestCancelDragRestoresSnapshot(t *testing.T) {
	e := newTestEditor()
	added := mustAdd(t, e, testRect("", 0, 0, 10, 10))

	e.StartDrag(hittest.Hit{ShapeID: added.ID, Part: hittest.PartMove}, geom.Pt(5, 5))
	e.UpdateDrag(geom.Pt(50, 50))
	e.CancelDrag()

	got := onlyShape(t, e)
	if got.Rect.X != 0 || got.Rect.Y != 0 {
		t.Errorf("cancel left rect at (%v, %v)", got.Rect.X, got.Rect.Y)
	}
	if e.Dragging() {
		t.Error("drag must be inactive after cancel")
	}
}

func TestUndoIgnoredDuringDrag(t *testing.T) {
	e := newTestEditor()
	added := mustAdd(t, e, testRect("", 0, 0, 10, 10))

	e.StartDrag(hittest.Hit{ShapeID: added.ID, Part: hittest.PartMove}, geom.Pt(5, 5))
	if e.Undo() {
		t.Error("undo during a drag must be ignored")
	}
	e.CancelDrag()
}

func TestClickSelectAddsNoHistoryEntry(t *testing.T) {
	e := newTestEditor()
	added := mustAdd(t, e, testRect("", 0, 0, 10, 10))

	// Press and release with no movement: a pointer-up usually replays
	// the press position through UpdateDrag before ending.
	e.StartDrag(hittest.Hit{ShapeID: added.ID, Part: hittest.PartMove}, geom.Pt(5, 5))
	e.UpdateDrag(geom.Pt(5, 5))
	e.EndDrag()

	if e.Selected() != added.ID {
		t.Errorf("selected = %q, want %q", e.Selected(), added.ID)
	}

	// The only undo step left is the AddShape; the click contributed
	// nothing.
	if !e.Undo() {
		t.Fatal("Undo failed")
	}
	if len(e.Shapes()) != 0 {
		t.Error("a click-select must not add an undo step of its own")
	}

	// Same without any pointer movement events at all.
	readded := mustAdd(t, e, testRect("", 0, 0, 10, 10))
	e.StartDrag(hittest.Hit{ShapeID: readded.ID, Part: hittest.PartMove}, geom.Pt(5, 5))
	e.EndDrag()
	if !e.Undo() {
		t.Fatal("Undo after bare click failed")
	}
	if len(e.Shapes()) != 0 {
		t.Error("a bare press-release must not add an undo step")
	}
}

func TestStartDragUnknownShape(t *testing.T) {
	e := newTestEditor()
	if e.StartDrag(hittest.Hit{ShapeID: "ghost", Part: hittest.PartMove}, geom.Pt(0, 0)) {
		t.Error("dragging a missing shape must fail")
	}
	if e.Dragging() {
		t.Error("no drag state must remain")
	}
}

func TestSetShapesReplacesAtomically(t *testing.T) {
	e := newTestEditor()
	mustAdd(t, e, testRect("old", 0, 0, 10, 10))

	bad := []shape.Shape{testRect("a", 0, 0, 1, 1), testRect("a", 5, 5, 1, 1)}
	if err := e.SetShapes(bad); err == nil {
		t.Fatal("duplicate ids must be rejected")
	}
	if got := onlyShape(t, e); got.ID != "old" {
		t.Error("failed import must leave the collection untouched")
	}

	good := []shape.Shape{testRect("a", 0, 0, 1, 1), testRect("b", 5, 5, 1, 1)}
	if err := e.SetShapes(good); err != nil {
		t.Fatalf("SetShapes: %v", err)
	}
	if len(e.Shapes()) != 2 {
		t.Fatal("import should replace the collection")
	}

	// The import itself is one undoable operation.
	if !e.Undo() {
		t.Fatal("undo should succeed")
	}
	if got := onlyShape(t, e); got.ID != "old" {
		t.Errorf("undo restored %q, want the pre-import collection", got.ID)
	}
}

func TestAddShapesBatchIsAtomicAndSingleEntry(t *testing.T) {
	e := newTestEditor()
	mustAdd(t, e, testRect("base", 0, 0, 10, 10))

	bad := []shape.Shape{testRect("x", 0, 0, 1, 1), {ID: "y", Kind: shape.KindBezier}}
	if err := e.AddShapes(bad); err == nil {
		t.Fatal("invalid batch member must reject the batch")
	}
	if len(e.Shapes()) != 1 {
		t.Error("rejected batch must not change the collection")
	}

	good := []shape.Shape{testRect("x", 0, 0, 1, 1), testRect("y", 2, 2, 1, 1)}
	if err := e.AddShapes(good); err != nil {
		t.Fatalf("AddShapes: %v", err)
	}
	if len(e.Shapes()) != 3 {
		t.Fatal("batch should append both shapes")
	}

	if !e.Undo() {
		t.Fatal("undo should succeed")
	}
	if len(e.Shapes()) != 1 {
		t.Error("the whole batch must undo as one entry")
	}
}

func TestReset(t *testing.T) {
	e := newTestEditor()
	mustAdd(t, e, testRect("", 0, 0, 10, 10))
	e.BeginRectDraft(geom.Pt(0, 0))

	e.Reset(nil)
	if len(e.Shapes()) != 0 || e.HasDraft() || e.CanUndo() || e.Selected() != "" {
		t.Error("reset must clear shapes, drafts, history and selection")
	}
}

func TestHitAtUsesZoomScaledTolerance(t *testing.T) {
	e := newTestEditor()
	mustAdd(t, e, testRect("r", 0, 0, 100, 100))

	// Default tolerance is 6 screen px. At zoom 10 that is 0.6 image
	// units: one unit away from the east edge misses.
	e.SetViewport(viewport.Viewport{Zoom: 10})
	if _, ok := e.HitAt(geom.Pt(101, 50)); ok {
		t.Error("expected miss at high zoom")
	}

	// At zoom 1 the same query is well inside the 6-unit tolerance.
	e.SetViewport(viewport.Viewport{Zoom: 1})
	h, ok := e.HitAt(geom.Pt(101, 50))
	if !ok || h.Part != hittest.PartResizeEdge || h.Edge != hittest.EdgeE {
		t.Errorf("hit = %+v, want the east edge at zoom 1", h)
	}
}

func TestContentBounds(t *testing.T) {
	e := newTestEditor()
	if _, ok := e.ContentBounds(); ok {
		t.Error("empty collection has no content bounds")
	}
	mustAdd(t, e, testRect("", 0, 0, 10, 10))
	e.AddPoint(geom.Pt(50, 40))

	b, ok := e.ContentBounds()
	if !ok {
		t.Fatal("bounds should exist")
	}
	want := geom.Rect{X: 0, Y: 0, Width: 50, Height: 40}
	if b != want {
		t.Errorf("bounds = %+v, want %+v", b, want)
	}
}
