// Package rowaction binds the edit and delete controls of a single data row
// to backend handlers. The dispatcher is generic over the row type and never
// inspects it.
package rowaction

import (
	"context"
	"time"

	"adminkit/internal/confirm"
	"adminkit/internal/notify"

	tea "github.com/charmbracelet/bubbletea"
)

// Handler performs a backend operation for one row.
type Handler[T any] func(ctx context.Context, row T) error

// Handlers groups the operations a row offers. A nil field is not offered.
type Handlers[T any] struct {
	Update Handler[T]
	Delete Handler[T]
}

// Editor is an inline editing surface opened for a row.
type Editor interface {
	Update(msg tea.Msg) tea.Cmd
	View() string
}

// EditRenderer builds an editor for row. Calling close leaves edit mode.
type EditRenderer[T any] func(row T, close func()) Editor

// Control is an affordance a row exposes.
type Control int

const (
	ControlEdit Control = iota
	ControlDelete
)

func (c Control) String() string {
	switch c {
	case ControlEdit:
		return "edit"
	case ControlDelete:
		return "delete"
	default:
		return "unknown"
	}
}

// UpdatedMsg carries the result of a direct update.
type UpdatedMsg struct {
	Err error
}

// Option configures a Dispatcher.
type Option func(*options)

type options struct {
	gate []confirm.Option
	ctx  func() context.Context
}

// WithGateOptions forwards options to the delete confirmation gate.
func WithGateOptions(opts ...confirm.Option) Option {
	return func(o *options) { o.gate = append(o.gate, opts...) }
}

// WithContext supplies the context passed to handlers.
func WithContext(fn func() context.Context) Option {
	return func(o *options) {
		if fn != nil {
			o.ctx = fn
		}
	}
}

// Dispatcher owns the controls for one row.
type Dispatcher[T any] struct {
	row      T
	handlers Handlers[T]
	render   EditRenderer[T]
	ctx      func() context.Context

	editing bool
	editor  Editor
	gate    *confirm.Gate
}

// New binds row to handlers. render may be nil.
func New[T any](row T, handlers Handlers[T], render EditRenderer[T], notifier notify.Notifier, opts ...Option) *Dispatcher[T] {
	o := options{ctx: context.Background}
	for _, opt := range opts {
		opt(&o)
	}
	d := &Dispatcher[T]{
		row:      row,
		handlers: handlers,
		render:   render,
		ctx:      o.ctx,
	}
	if handlers.Delete != nil {
		del := handlers.Delete
		gateOpts := append([]confirm.Option{confirm.WithContext(o.ctx)}, o.gate...)
		d.gate = confirm.New(func(ctx context.Context) error {
			return del(ctx, row)
		}, notifier, gateOpts...)
	}
	return d
}

// Row returns the bound row.
func (d *Dispatcher[T]) Row() T { return d.row }

// Controls lists the offered controls in display order.
func (d *Dispatcher[T]) Controls() []Control {
	var controls []Control
	if d.render != nil || d.handlers.Update != nil {
		controls = append(controls, ControlEdit)
	}
	if d.handlers.Delete != nil {
		controls = append(controls, ControlDelete)
	}
	return controls
}

// Offers reports whether c is among the row's controls.
func (d *Dispatcher[T]) Offers(c Control) bool {
	for _, have := range d.Controls() {
		if have == c {
			return true
		}
	}
	return false
}

// Edit handles an edit intent. With a renderer it opens the inline editor;
// otherwise it returns a command calling the Update handler once.
func (d *Dispatcher[T]) Edit() tea.Cmd {
	if d.render != nil {
		if d.editing {
			return nil
		}
		d.editor = d.render(d.row, d.closeEditor)
		d.editing = d.editor != nil
		return nil
	}
	if d.handlers.Update == nil {
		return nil
	}
	update, row, ctx := d.handlers.Update, d.row, d.ctx()
	return func() tea.Msg {
		return UpdatedMsg{Err: update(ctx, row)}
	}
}

func (d *Dispatcher[T]) closeEditor() {
	d.editing = false
	d.editor = nil
}

// Delete handles a delete intent by opening the confirmation prompt.
func (d *Dispatcher[T]) Delete() bool {
	if d.gate == nil {
		return false
	}
	return d.gate.Request()
}

// Gate exposes the delete gate, or nil when delete is not offered.
func (d *Dispatcher[T]) Gate() *confirm.Gate { return d.gate }

// Update routes msg to the open editor or the pending prompt.
func (d *Dispatcher[T]) Update(msg tea.Msg) tea.Cmd {
	if d.editing && d.editor != nil {
		return d.editor.Update(msg)
	}
	if d.Confirming() {
		return d.gate.Update(msg)
	}
	return nil
}

// View renders the modal surface of the row, if any.
func (d *Dispatcher[T]) View() string {
	if d.editing && d.editor != nil {
		return d.editor.View()
	}
	if d.gate != nil && d.gate.State() != confirm.Idle {
		return d.gate.View()
	}
	return ""
}

// Editing reports whether the inline editor is open.
func (d *Dispatcher[T]) Editing() bool { return d.editing }

// Confirming reports whether a delete prompt is pending.
func (d *Dispatcher[T]) Confirming() bool {
	return d.gate != nil && d.gate.State() == confirm.AwaitingConfirmation
}

// Busy reports whether a confirmed delete is executing.
func (d *Dispatcher[T]) Busy() bool {
	return d.gate != nil && d.gate.State() == confirm.Executing
}

// WithTimeout bounds each call of h to d.
func WithTimeout[T any](h Handler[T], d time.Duration) Handler[T] {
	if h == nil {
		return nil
	}
	return func(ctx context.Context, row T) error {
		ctx, cancel := context.WithTimeout(ctx, d)
		defer cancel()
		return h(ctx, row)
	}
}
