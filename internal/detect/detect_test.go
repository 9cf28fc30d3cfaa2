package detect

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

func fakeService(t *testing.T, points []Point2D) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost || r.URL.Path != "/detect" {
			t.Errorf("unexpected request %s %s", r.Method, r.URL.Path)
		}
		json.NewEncoder(w).Encode(detectReply{Points: points})
	}))
	t.Cleanup(srv.Close)
	return srv
}

func TestClientDetect(t *testing.T) {
	var gotReq detectRequest
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if err := json.NewDecoder(r.Body).Decode(&gotReq); err != nil {
			t.Errorf("decode request: %v", err)
		}
		idx := 3
		json.NewEncoder(w).Encode(detectReply{Points: []Point2D{
			{X: 10, Y: 20, Index: &idx},
			{X: 30, Y: 40},
		}})
	}))
	defer srv.Close()

	c := NewClient(srv.URL)
	points, err := c.Detect(context.Background(), "img_1", PatternChessboard, ChessboardParams(7, 9))
	if err != nil {
		t.Fatalf("Detect: %v", err)
	}

	if gotReq.ImageID != "img_1" || gotReq.Pattern != PatternChessboard {
		t.Errorf("request = %+v", gotReq)
	}
	if gotReq.Params["rows"] != float64(7) || gotReq.Params["cols"] != float64(9) {
		t.Errorf("params = %v", gotReq.Params)
	}

	if len(points) != 2 {
		t.Fatalf("got %d points", len(points))
	}
	if points[0].Index == nil || *points[0].Index != 3 {
		t.Errorf("point 0 index = %v, want 3", points[0].Index)
	}
	if points[1].Index != nil {
		t.Error("point 1 must have no index")
	}
}

func TestClientDetectErrorStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "no pattern found", http.StatusUnprocessableEntity)
	}))
	defer srv.Close()

	c := NewClient(srv.URL)
	if _, err := c.Detect(context.Background(), "img_1", PatternAprilTag, nil); err == nil {
		t.Error("error status must surface as an error")
	}
}

func waitResult(t *testing.T, r *Runner) Result {
	t.Helper()
	select {
	case res := <-r.Results():
		return res
	case <-time.After(5 * time.Second):
		t.Fatal("no result delivered")
		return Result{}
	}
}

func TestRunnerDeliversResult(t *testing.T) {
	srv := fakeService(t, []Point2D{{X: 1, Y: 2}, {X: 3, Y: 4}})
	r := NewRunner(NewClient(srv.URL))

	token := r.Launch(context.Background(), "img_1", PatternChessboard, nil)
	res := waitResult(t, r)

	if res.Token != token {
		t.Errorf("token = %d, want %d", res.Token, token)
	}
	if r.Stale(res) {
		t.Error("the only run must not be stale")
	}
	if res.Err != nil || len(res.Points) != 2 {
		t.Errorf("result = %+v", res)
	}
}

func TestRunnerStaleAfterNext(t *testing.T) {
	srv := fakeService(t, []Point2D{{X: 1, Y: 2}})
	r := NewRunner(NewClient(srv.URL))

	token := r.Launch(context.Background(), "img_1", PatternChessboard, nil)
	r.Next() // a new image load supersedes the run

	res := waitResult(t, r)
	if res.Token != token {
		t.Errorf("token = %d, want %d", res.Token, token)
	}
	if !r.Stale(res) {
		t.Error("a superseded run must be stale")
	}
}

func TestRunnerNewerLaunchSupersedesOlder(t *testing.T) {
	srv := fakeService(t, nil)
	r := NewRunner(NewClient(srv.URL))

	first := r.Launch(context.Background(), "img_1", PatternChessboard, nil)
	second := r.Launch(context.Background(), "img_1", PatternCharuco, nil)

	for i := 0; i < 2; i++ {
		res := waitResult(t, r)
		switch res.Token {
		case first:
			if !r.Stale(res) {
				t.Error("first run must be stale once the second starts")
			}
		case second:
			if r.Stale(res) {
				t.Error("second run must stay current")
			}
		default:
			t.Errorf("unexpected token %d", res.Token)
		}
	}
}

func TestRunnerDeliversErrors(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "boom", http.StatusInternalServerError)
	}))
	defer srv.Close()

	r := NewRunner(NewClient(srv.URL))
	r.Launch(context.Background(), "img_1", PatternChessboard, nil)

	if res := waitResult(t, r); res.Err == nil {
		t.Error("a failed run must deliver its error")
	}
}

func TestRunnerDeliveryNeverBlocks(t *testing.T) {
	r := NewRunner(NewClient("http://127.0.0.1:1"))

	// Nobody drains: once the buffer fills, further results must be
	// dropped rather than blocking the delivering goroutine.
	for i := 0; i < cap(r.results)+4; i++ {
		r.deliver(Result{Token: int64(i)})
	}
	if got := len(r.results); got != cap(r.results) {
		t.Errorf("buffered %d results, want %d", got, cap(r.results))
	}

	// A drained channel accepts again.
	<-r.Results()
	r.deliver(Result{Token: 99})
	if got := len(r.results); got != cap(r.results) {
		t.Errorf("buffered %d results after drain, want %d", got, cap(r.results))
	}
}

func TestPointShapes(t *testing.T) {
	idx := 7
	points := []Point2D{{X: 1, Y: 2, Index: &idx}, {X: 3, Y: 4}}

	n := 0
	newID := func() string { n++; return fmt.Sprintf("p%d", n) }

	shapes := PointShapes(points, 0, newID)
	if len(shapes) != 2 {
		t.Fatalf("got %d shapes", len(shapes))
	}

	first := shapes[0]
	if first.Name != "corner 7" || first.Point.DetectionID == nil || *first.Point.DetectionID != 7 {
		t.Errorf("indexed mark = %+v", first)
	}
	second := shapes[1]
	if second.Name != "corner 1" || *second.Point.DetectionID != 1 {
		t.Errorf("unindexed mark falls back to position: %+v", second)
	}
	if first.Stroke != second.Stroke {
		t.Error("marks of one run must share a stroke color")
	}

	for _, s := range shapes {
		if err := s.Validate(); err != nil {
			t.Errorf("shape %s: %v", s.ID, err)
		}
	}
}

func TestPaletteColorsDiffer(t *testing.T) {
	seen := map[string]bool{}
	for run := 0; run < 8; run++ {
		c := PaletteColor(run)
		if seen[c] {
			t.Errorf("run %d repeats color %s", run, c)
		}
		seen[c] = true
	}
	if PaletteColor(3) != PaletteColor(3) {
		t.Error("palette must be stable per run")
	}
}

func TestPatternKnown(t *testing.T) {
	for _, p := range []Pattern{PatternChessboard, PatternCharuco, PatternCircleGrid, PatternAprilTag} {
		if !p.Known() {
			t.Errorf("%s should be known", p)
		}
	}
	if Pattern("qr").Known() {
		t.Error("qr should be unknown")
	}
}
