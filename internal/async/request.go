// Package async tracks the lifecycle of a single-argument asynchronous
// operation: whether it is in flight, its last result and its last error.
//
// A Request is created once per logical operation site and lives as long as
// that site. Its state is only mutated by the request itself. Overlapping
// calls are neither de-duplicated nor cancelled; whichever settles last
// determines the final state.
package async

import (
	"context"
	"sync"

	"adminkit/internal/debug"
	appErrors "adminkit/internal/errors"

	tea "github.com/charmbracelet/bubbletea"
	"go.uber.org/zap"
)

// Op is the wrapped operation. Cancellation and timeouts are the operation's
// own business; the request never cancels ctx.
type Op[P, R any] func(ctx context.Context, params P) (R, error)

// State is a snapshot of a request. HasData distinguishes "never succeeded"
// from a zero-valued result.
type State[R any] struct {
	Data    R
	HasData bool
	Err     error
	Loading bool
}

// Callbacks are invoked after state has been updated for the settlement.
type Callbacks[R any] struct {
	OnSuccess func(R)
	OnError   func(error)
}

// Option configures a Request.
type Option func(*options)

type options struct {
	name   string
	logger func() *zap.Logger
}

// WithName labels the request in log output.
func WithName(name string) Option {
	return func(o *options) { o.name = name }
}

// WithLogger overrides the logger used to report failures.
func WithLogger(l *zap.Logger) Option {
	return func(o *options) { o.logger = func() *zap.Logger { return l } }
}

// Request wraps an Op and exposes its in-flight status, last result and last error.
type Request[P, R any] struct {
	op   Op[P, R]
	opts options

	mu    sync.RWMutex
	state State[R]
}

// New creates a Request around op.
func New[P, R any](op Op[P, R], opts ...Option) *Request[P, R] {
	o := options{name: "request", logger: debug.Logger}
	for _, opt := range opts {
		opt(&o)
	}
	return &Request[P, R]{op: op, opts: o}
}

// Do runs the operation and records its settlement.
//
// Loading is set before op is called and cleared as the very last step on
// both paths. On success Data is replaced and Err cleared. On failure Err is
// replaced and the previous Data is left as it was. The result and error are
// also returned so callers may use whichever is more convenient.
func (r *Request[P, R]) Do(ctx context.Context, params P, cbs ...Callbacks[R]) (result R, err error) {
	r.setLoading(true)
	defer r.setLoading(false)

	result, err = r.invoke(ctx, params)
	if err != nil {
		r.mu.Lock()
		r.state.Err = err
		r.mu.Unlock()

		r.opts.logger().Warn("request failed", zap.String("request", r.opts.name), zap.Error(err))
		for _, cb := range cbs {
			if cb.OnError != nil {
				cb.OnError(err)
			}
		}
		var zero R
		return zero, err
	}

	r.mu.Lock()
	r.state.Data = result
	r.state.HasData = true
	r.state.Err = nil
	r.mu.Unlock()

	for _, cb := range cbs {
		if cb.OnSuccess != nil {
			cb.OnSuccess(result)
		}
	}
	return result, nil
}

// Cmd marks the request as loading immediately and returns a command that
// runs it. toMsg turns the settlement into the message delivered back to the
// program; a nil toMsg yields a SettledMsg.
func (r *Request[P, R]) Cmd(ctx context.Context, params P, toMsg func(R, error) tea.Msg, cbs ...Callbacks[R]) tea.Cmd {
	r.setLoading(true)
	return func() tea.Msg {
		result, err := r.Do(ctx, params, cbs...)
		if toMsg == nil {
			return SettledMsg{Name: r.opts.name, Err: err}
		}
		return toMsg(result, err)
	}
}

// SettledMsg is the default message produced by Cmd.
type SettledMsg struct {
	Name string
	Err  error
}

func (r *Request[P, R]) invoke(ctx context.Context, params P) (result R, err error) {
	defer func() {
		if rec := recover(); rec != nil {
			err = appErrors.FromPanic(appErrors.CodeOperationFailed, rec)
		}
	}()
	if r.op == nil {
		return result, appErrors.New(appErrors.CodeOperationFailed, r.opts.name+": no operation configured", nil)
	}
	return r.op(ctx, params)
}

func (r *Request[P, R]) setLoading(loading bool) {
	r.mu.Lock()
	r.state.Loading = loading
	r.mu.Unlock()
}

// State returns a snapshot of the current state.
func (r *Request[P, R]) State() State[R] {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.state
}

// Loading reports whether a call is in flight (see package doc for overlap semantics).
func (r *Request[P, R]) Loading() bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.state.Loading
}

// Data returns the last successful result, if any.
func (r *Request[P, R]) Data() (R, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.state.Data, r.state.HasData
}

// Err returns the error of the last failed settlement, cleared by the next success.
func (r *Request[P, R]) Err() error {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.state.Err
}

// Reset drops data and error. It is the only way stale data is discarded.
func (r *Request[P, R]) Reset() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.state = State[R]{Loading: r.state.Loading}
}
