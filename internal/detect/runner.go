package detect

import (
	"context"
	"sync/atomic"
)

// Result is the outcome of one detection run, tagged with the token
// that was current when the run started.
type Result struct {
	Token   int64
	Pattern Pattern
	Points  []Point2D
	Err     error
}

// Runner tags detection calls with generation tokens so a result that
// arrives after a newer run, or after a new image load, is recognized
// as stale and dropped by the consumer. The in-flight HTTP request is
// never cancelled; only its result loses relevance.
type Runner struct {
	client  *Client
	token   atomic.Int64
	results chan Result
}

// NewRunner wraps a detection client. The result channel is buffered;
// the owning session is expected to drain it.
func NewRunner(client *Client) *Runner {
	return &Runner{client: client, results: make(chan Result, 8)}
}

// Next invalidates every in-flight run and returns the token the next
// run would carry.
func (r *Runner) Next() int64 {
	return r.token.Add(1)
}

// Stale reports whether a result belongs to a superseded run.
func (r *Runner) Stale(res Result) bool {
	return res.Token != r.token.Load()
}

// Launch starts a detection run in the background and returns its
// token. The result is delivered on Results.
func (r *Runner) Launch(ctx context.Context, imageID string, pattern Pattern, params Params) int64 {
	token := r.Next()
	go func() {
		points, err := r.client.Detect(ctx, imageID, pattern, params)
		r.deliver(Result{Token: token, Pattern: pattern, Points: points, Err: err})
	}()
	return token
}

// deliver never blocks. When nobody drains the channel, say after the
// owning session closed, late results are dropped instead of pinning
// their goroutine on the send.
func (r *Runner) deliver(res Result) {
	select {
	case r.results <- res:
	default:
	}
}

func (r *Runner) Results() <-chan Result {
	return r.results
}
