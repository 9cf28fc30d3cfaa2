// Package session hosts editing sessions. Each session runs one
// goroutine that owns an editor and applies every command in order,
// which is the only mutation path for the shape state.
package session

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/VitalyVorobyev/imageannotation/internal/detect"
	"github.com/VitalyVorobyev/imageannotation/internal/editor"
	"github.com/VitalyVorobyev/imageannotation/internal/geom"
	"github.com/VitalyVorobyev/imageannotation/internal/imagestore"
	"github.com/VitalyVorobyev/imageannotation/internal/typeid"
	"github.com/VitalyVorobyev/imageannotation/internal/viewport"
)

// Uploader stores raw image bytes and returns the store's id.
// *imagestore.Client satisfies it.
type Uploader interface {
	Upload(ctx context.Context, name string, r io.Reader) (string, error)
}

type Session struct {
	ID string

	editor   *editor.Editor
	runner   *detect.Runner
	uploader Uploader

	tool     Tool
	image    *ImageRef
	imageGen int
	runCount int

	client *WSClient

	commands   chan func()
	done       chan struct{}
	closeOnce  sync.Once
	lastActive atomic.Int64
}

// New starts the session goroutine. The runner must be exclusive to
// this session; its tokens track this session's image generations.
func New(id string, opts editor.Options, runner *detect.Runner, uploader Uploader) *Session {
	s := &Session{
		ID:       id,
		editor:   editor.New(opts),
		runner:   runner,
		uploader: uploader,
		tool:     ToolSelect,
		commands: make(chan func(), 64),
		done:     make(chan struct{}),
	}
	s.touch()
	go s.run()
	return s
}

func (s *Session) run() {
	defer func() {
		if s.client != nil {
			s.client.disconnect("session closed")
		}
	}()

	for {
		select {
		case fn := <-s.commands:
			fn()
		case res := <-s.runner.Results():
			s.applyDetectResult(res)
		case <-s.done:
			return
		}
	}
}

// Do schedules fn on the session goroutine. Once the session is
// closed it does nothing.
func (s *Session) Do(fn func()) {
	s.touch()
	select {
	case s.commands <- fn:
	case <-s.done:
	}
}

// Close stops the session goroutine. In-flight detection or upload
// results are dropped.
func (s *Session) Close() {
	s.closeOnce.Do(func() { close(s.done) })
}

func (s *Session) touch() {
	s.lastActive.Store(time.Now().UnixNano())
}

// IdleSince reports when the session last received a command.
func (s *Session) IdleSince() time.Time {
	return time.Unix(0, s.lastActive.Load())
}

// Attach hands a websocket client to the session. A newer connection
// replaces the older one; the fresh client immediately receives the
// full state.
func (s *Session) Attach(c *WSClient) {
	s.Do(func() {
		if s.client != nil {
			s.client.disconnect("replaced by newer connection")
		}
		s.client = c
		slog.Info("client attached", "session", s.ID, "client", c.id)
		s.push(0)
	})
}

func (s *Session) Detach(c *WSClient) {
	s.Do(func() {
		if s.client == c {
			s.client = nil
		}
	})
}

// Handle applies one protocol message on the session goroutine.
func (s *Session) Handle(msg *Message) {
	s.Do(func() { s.apply(msg) })
}

// Snapshot returns the session state, or false when the session is
// closed.
func (s *Session) Snapshot() (State, bool) {
	ch := make(chan State, 1)
	s.Do(func() { ch <- s.state() })
	select {
	case st := <-ch:
		return st, true
	case <-s.done:
		return State{}, false
	}
}

// RunDetection triggers a detection run from outside the websocket,
// for the HTTP detect endpoint.
func (s *Session) RunDetection(pattern detect.Pattern, params detect.Params) error {
	errCh := make(chan error, 1)
	s.Do(func() {
		errCh <- s.startDetect(DetectRunPayload{Pattern: pattern, Params: params})
	})
	select {
	case err := <-errCh:
		return err
	case <-s.done:
		return errors.New("session closed")
	}
}

func (s *Session) apply(msg *Message) {
	if err := s.dispatch(msg); err != nil {
		s.sendError(msg.Seq, err.Error())
		return
	}
	s.push(msg.Seq)
}

func (s *Session) dispatch(msg *Message) error {
	switch msg.Type {
	case TypePointerDown:
		var p PointerPayload
		if err := json.Unmarshal(msg.Payload, &p); err != nil {
			return fmt.Errorf("pointer payload: %w", err)
		}
		s.pointerDown(p)
	case TypePointerMove:
		var p PointerPayload
		if err := json.Unmarshal(msg.Payload, &p); err != nil {
			return fmt.Errorf("pointer payload: %w", err)
		}
		s.pointerMove(p)
	case TypePointerUp:
		var p PointerPayload
		if err := json.Unmarshal(msg.Payload, &p); err != nil {
			return fmt.Errorf("pointer payload: %w", err)
		}
		s.pointerUp(p)
	case TypeKeyNudge:
		var p NudgePayload
		if err := json.Unmarshal(msg.Payload, &p); err != nil {
			return fmt.Errorf("nudge payload: %w", err)
		}
		s.editor.NudgeSelected(p.DX, p.DY, p.Fast)
	case TypeDraftFinish:
		var p DraftFinishPayload
		if err := json.Unmarshal(msg.Payload, &p); err != nil {
			return fmt.Errorf("draft payload: %w", err)
		}
		s.finishDraft(p.Closed)
	case TypeDraftCancel:
		s.editor.CancelDrafts()
	case TypeToolSet:
		var p ToolPayload
		if err := json.Unmarshal(msg.Payload, &p); err != nil {
			return fmt.Errorf("tool payload: %w", err)
		}
		return s.setTool(p.Tool)
	case TypeUndo:
		s.editor.Undo()
	case TypeRedo:
		s.editor.Redo()
	case TypeViewSet:
		var p ViewPayload
		if err := json.Unmarshal(msg.Payload, &p); err != nil {
			return fmt.Errorf("view payload: %w", err)
		}
		s.editor.SetViewport(viewport.Viewport{Zoom: p.Zoom, Pan: p.Pan})
	case TypeViewFit:
		var p ViewFitPayload
		if err := json.Unmarshal(msg.Payload, &p); err != nil {
			return fmt.Errorf("view payload: %w", err)
		}
		return s.fitView(p)
	case TypeImageSet:
		var p ImagePayload
		if err := json.Unmarshal(msg.Payload, &p); err != nil {
			return fmt.Errorf("image payload: %w", err)
		}
		return s.setImage(p)
	case TypeDetectRun:
		var p DetectRunPayload
		if err := json.Unmarshal(msg.Payload, &p); err != nil {
			return fmt.Errorf("detect payload: %w", err)
		}
		return s.startDetect(p)
	case TypeShapesSet:
		var p ShapesSetPayload
		if err := json.Unmarshal(msg.Payload, &p); err != nil {
			return fmt.Errorf("shapes payload: %w", err)
		}
		return s.editor.SetShapes(p.Shapes)
	case TypeShapeDelete:
		var p ShapeDeletePayload
		if err := json.Unmarshal(msg.Payload, &p); err != nil {
			return fmt.Errorf("shape payload: %w", err)
		}
		return s.deleteShape(p.ID)
	case TypeStateGet:
		// state push below covers it
	default:
		return fmt.Errorf("unknown message type %q", msg.Type)
	}
	return nil
}

func (s *Session) pointerDown(p PointerPayload) {
	img := s.toImage(p)
	switch s.tool {
	case ToolSelect:
		if hit, ok := s.editor.HitAt(img); ok {
			s.editor.StartDrag(hit, img)
		} else {
			s.editor.ClearSelection()
		}
	case ToolRect:
		s.editor.BeginRectDraft(img)
	case ToolPolyline:
		s.editor.AppendPolylinePoint(img)
	case ToolBezier:
		s.editor.AppendBezierNode(img)
	case ToolPoint:
		s.editor.AddPoint(img)
	}
}

func (s *Session) pointerMove(p PointerPayload) {
	img := s.toImage(p)
	if s.editor.Dragging() {
		s.editor.UpdateDrag(img)
		return
	}
	s.editor.UpdateRectDraft(img)
}

func (s *Session) pointerUp(p PointerPayload) {
	img := s.toImage(p)
	if s.editor.Dragging() {
		s.editor.UpdateDrag(img)
		s.editor.EndDrag()
		return
	}
	// Rectangles commit on release; other drafts wait for an
	// explicit draft.finish.
	s.editor.UpdateRectDraft(img)
	s.editor.FinishRectDraft()
}

func (s *Session) finishDraft(closed bool) {
	if _, ok := s.editor.FinishBezier(closed); ok {
		return
	}
	if _, ok := s.editor.FinishPolyline(closed); ok {
		return
	}
	s.editor.FinishRectDraft()
}

func (s *Session) setTool(t Tool) error {
	if !t.Known() {
		return fmt.Errorf("unknown tool %q", t)
	}
	if t != s.tool {
		s.editor.CancelDrag()
		s.editor.CancelDrafts()
	}
	s.tool = t
	return nil
}

func (s *Session) fitView(p ViewFitPayload) error {
	if s.image == nil || s.image.Width == 0 || s.image.Height == 0 {
		return errors.New("no image to fit")
	}
	v := viewport.Fit(float64(s.image.Width), float64(s.image.Height), p.ViewWidth, p.ViewHeight)
	s.editor.SetViewport(v)
	return nil
}

// setImage starts a fresh annotation set for a new raster. Everything
// tied to the previous image, including in-flight detection results,
// loses relevance here.
func (s *Session) setImage(p ImagePayload) error {
	s.imageGen++
	s.runner.Next()

	if p.DataURL != "" {
		return s.importDataURL(p)
	}

	if p.ID == "" && p.Name == "" && p.Width == 0 && p.Height == 0 {
		s.image = nil
		s.editor.Reset(nil)
		return nil
	}

	s.image = &ImageRef{ID: p.ID, Name: p.Name, Width: p.Width, Height: p.Height}
	s.editor.Reset(nil)
	return nil
}

func (s *Session) importDataURL(p ImagePayload) error {
	_, data, err := imagestore.ParseDataURL(p.DataURL)
	if err != nil {
		return err
	}
	w, h, err := imagestore.Measure(data)
	if err != nil {
		return fmt.Errorf("measure image: %w", err)
	}

	s.image = &ImageRef{Name: p.Name, Width: w, Height: h}
	s.editor.Reset(nil)

	if s.uploader == nil {
		return nil
	}

	// The upload happens off the session goroutine. A later image.set
	// bumps the generation and the id is dropped on arrival.
	gen := s.imageGen
	name := p.Name
	go func() {
		id, err := s.uploader.Upload(context.Background(), name, bytes.NewReader(data))
		s.Do(func() { s.finishUpload(gen, id, err) })
	}()
	return nil
}

func (s *Session) finishUpload(gen int, id string, err error) {
	if gen != s.imageGen {
		slog.Debug("dropping superseded upload", "session", s.ID)
		return
	}
	if err != nil {
		slog.Warn("image upload failed", "session", s.ID, "error", err)
		s.sendError(0, "image upload failed: "+err.Error())
		return
	}
	if s.image != nil {
		s.image.ID = id
		s.push(0)
	}
}

func (s *Session) startDetect(p DetectRunPayload) error {
	if !p.Pattern.Known() {
		return fmt.Errorf("unknown pattern %q", p.Pattern)
	}
	if s.image == nil || s.image.ID == "" {
		return errors.New("no stored image to detect on")
	}
	s.runner.Launch(context.Background(), s.image.ID, p.Pattern, p.Params)
	return nil
}

func (s *Session) applyDetectResult(res detect.Result) {
	if s.runner.Stale(res) {
		slog.Debug("dropping stale detection result", "session", s.ID, "token", res.Token)
		return
	}
	if res.Err != nil {
		s.sendError(0, "detection failed: "+res.Err.Error())
		return
	}

	marks := detect.PointShapes(res.Points, s.runCount, typeid.NewShapeID)
	if err := s.editor.AddShapes(marks); err != nil {
		s.sendError(0, err.Error())
		return
	}
	run := s.runCount
	s.runCount++

	payload, _ := json.Marshal(DetectResultPayload{
		Pattern: res.Pattern,
		Count:   len(res.Points),
		Run:     run,
	})
	s.send(&Message{Type: TypeDetectResult, Payload: payload})
	s.push(0)
}

func (s *Session) deleteShape(id string) error {
	if !s.editor.Select(id) {
		return fmt.Errorf("unknown shape %q", id)
	}
	s.editor.DeleteSelected()
	return nil
}

func (s *Session) toImage(p PointerPayload) geom.Point {
	return s.editor.Viewport().ScreenToImage(geom.Pt(p.X, p.Y))
}

func (s *Session) state() State {
	st := State{
		Shapes:   s.editor.Shapes(),
		Selected: s.editor.Selected(),
		Drafts:   s.editor.Drafts(),
		View:     s.editor.Viewport(),
		Tool:     s.tool,
		CanUndo:  s.editor.CanUndo(),
		CanRedo:  s.editor.CanRedo(),
		Dragging: s.editor.Dragging(),
	}
	if s.image != nil {
		img := *s.image
		st.Image = &img
	}
	return st
}

func (s *Session) push(seq int64) {
	payload, _ := json.Marshal(s.state())
	s.send(&Message{Type: TypeState, Seq: seq, Payload: payload})
}

func (s *Session) sendError(seq int64, message string) {
	payload, _ := json.Marshal(ErrorPayload{Message: message})
	s.send(&Message{Type: TypeError, Seq: seq, Payload: payload})
}

func (s *Session) send(msg *Message) {
	if s.client != nil {
		s.client.Send(msg)
	}
}
