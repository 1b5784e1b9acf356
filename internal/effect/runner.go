// Package effect runs an asynchronous side effect once per distinct
// dependency snapshot, with an optional cleanup that runs before the next
// snapshot's run or when the owning scope closes, whichever comes first.
package effect

import (
	"context"
	"sync"

	"adminkit/internal/debug"
	appErrors "adminkit/internal/errors"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/google/uuid"
	"github.com/mitchellh/hashstructure/v2"
	"go.uber.org/zap"
)

// Cleanup undoes whatever the previous run set up.
type Cleanup func()

// Body is the effect. A non-nil Cleanup is retained and invoked exactly once.
type Body func(ctx context.Context) (Cleanup, error)

// Option configures a Runner.
type Option func(*Runner)

// WithOnError receives body errors, recovered panics and cleanup panics.
func WithOnError(fn func(error)) Option {
	return func(r *Runner) { r.onError = fn }
}

// WithName labels the runner in log output.
func WithName(name string) Option {
	return func(r *Runner) { r.name = name }
}

// RanMsg is produced by the command returned from Cmd.
type RanMsg struct {
	RunnerID string
	Ran      bool
	Err      error
}

// Runner owns one effect site.
type Runner struct {
	id      string
	name    string
	body    Body
	onError func(error)

	// runMu serializes cleanup+body so runs never interleave.
	runMu sync.Mutex

	mu       sync.Mutex
	snapshot uint64
	hasSnap  bool
	cleanup  Cleanup
	closed   bool

	// latest is the most recently requested snapshot. Commands built for an
	// older generation are dropped when they finally execute.
	latest    uint64
	hasLatest bool
	gen       uint64
}

// NewRunner creates a runner for body.
func NewRunner(body Body, opts ...Option) *Runner {
	r := &Runner{
		id:   uuid.NewString(),
		name: "effect",
		body: body,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// ID identifies the runner in RanMsg.
func (r *Runner) ID() string { return r.id }

// Changed reports whether deps differ from the most recently requested
// snapshot.
func (r *Runner) Changed(deps ...any) bool {
	hash, ok := r.hash(deps)
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.closed {
		return false
	}
	return r.changedLocked(hash, ok)
}

// Run performs cleanup-then-run synchronously when deps form a new snapshot.
// It returns whether the body ran. Commands from Cmd that have not executed
// yet are superseded.
func (r *Runner) Run(ctx context.Context, deps ...any) bool {
	hash, hashed := r.hash(deps)
	r.mu.Lock()
	r.request(hash, hashed)
	r.mu.Unlock()
	ran, _ := r.run(ctx, hash, hashed, 0)
	return ran
}

// Cmd schedules Run for after the current Update returns. It returns nil when
// the snapshot has not changed. A command that executes after a newer Cmd or
// Run was requested does nothing and reports Ran false.
func (r *Runner) Cmd(ctx context.Context, deps ...any) tea.Cmd {
	hash, hashed := r.hash(deps)
	r.mu.Lock()
	if r.closed || !r.changedLocked(hash, hashed) {
		r.mu.Unlock()
		return nil
	}
	gen := r.request(hash, hashed)
	r.mu.Unlock()

	return func() tea.Msg {
		ran, err := r.run(ctx, hash, hashed, gen)
		return RanMsg{RunnerID: r.id, Ran: ran, Err: err}
	}
}

func (r *Runner) changedLocked(hash uint64, hashed bool) bool {
	if !hashed {
		return true
	}
	if r.hasLatest {
		return hash != r.latest
	}
	return !r.hasSnap || hash != r.snapshot
}

// request records the newest snapshot and returns its generation.
func (r *Runner) request(hash uint64, hashed bool) uint64 {
	r.gen++
	r.latest, r.hasLatest = hash, hashed
	return r.gen
}

// Close tears the scope down: the pending cleanup runs and later runs are ignored.
func (r *Runner) Close() {
	r.runMu.Lock()
	defer r.runMu.Unlock()

	r.mu.Lock()
	if r.closed {
		r.mu.Unlock()
		return
	}
	r.closed = true
	cleanup := r.cleanup
	r.cleanup = nil
	r.mu.Unlock()

	r.invokeCleanup(cleanup)
}

// run executes the body for hash. A non-zero gen must still be the latest
// requested generation.
func (r *Runner) run(ctx context.Context, hash uint64, hashed bool, gen uint64) (bool, error) {
	r.runMu.Lock()
	defer r.runMu.Unlock()

	r.mu.Lock()
	superseded := gen != 0 && gen != r.gen
	if r.closed || superseded || (hashed && r.hasSnap && hash == r.snapshot) {
		r.mu.Unlock()
		return false, nil
	}
	r.snapshot, r.hasSnap = hash, hashed
	prev := r.cleanup
	r.cleanup = nil
	r.mu.Unlock()

	r.invokeCleanup(prev)

	cleanup, err := r.invokeBody(ctx)
	if cleanup != nil {
		r.mu.Lock()
		closed := r.closed
		if !closed {
			r.cleanup = cleanup
		}
		r.mu.Unlock()
		if closed {
			r.invokeCleanup(cleanup)
		}
	}
	if err != nil {
		r.report(err)
	}
	return true, err
}

func (r *Runner) invokeBody(ctx context.Context) (cleanup Cleanup, err error) {
	defer func() {
		if rec := recover(); rec != nil {
			cleanup, err = nil, appErrors.FromPanic(appErrors.CodeEffectFailed, rec)
		}
	}()
	if r.body == nil {
		return nil, nil
	}
	cleanup, err = r.body(ctx)
	if err != nil && appErrors.CodeOf(err) == appErrors.CodeUnknown {
		err = appErrors.New(appErrors.CodeEffectFailed, r.name+": "+err.Error(), err)
	}
	return cleanup, err
}

func (r *Runner) invokeCleanup(cleanup Cleanup) {
	if cleanup == nil {
		return
	}
	defer func() {
		if rec := recover(); rec != nil {
			r.report(appErrors.FromPanic(appErrors.CodeEffectFailed, rec))
		}
	}()
	cleanup()
}

func (r *Runner) report(err error) {
	debug.Logger().Warn("effect failed", zap.String("effect", r.name), zap.Error(err))
	if r.onError != nil {
		r.onError(err)
	}
}

// hash fingerprints deps. Unhashable snapshots (funcs, channels) report ok=false
// and always count as changed.
func (r *Runner) hash(deps []any) (uint64, bool) {
	h, err := hashstructure.Hash(deps, hashstructure.FormatV2, nil)
	if err != nil {
		debug.Logger().Debug("effect deps not hashable", zap.String("effect", r.name), zap.Error(err))
		return 0, false
	}
	return h, true
}
