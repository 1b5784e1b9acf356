// Package confirm implements a confirmation gate in front of a destructive
// action. The gate owns a small state machine, invokes the action only after
// an explicit confirmation, and reports the outcome through a notifier.
package confirm

import (
	"context"
	"strings"
	"sync"

	"adminkit/internal/debug"
	appErrors "adminkit/internal/errors"
	"adminkit/internal/notify"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// State is the gate's position in its lifecycle.
type State int

const (
	Idle State = iota
	AwaitingConfirmation
	Executing
)

func (s State) String() string {
	switch s {
	case Idle:
		return "idle"
	case AwaitingConfirmation:
		return "awaiting_confirmation"
	case Executing:
		return "executing"
	default:
		return "unknown"
	}
}

// Outcome is the user's answer to the prompt.
type Outcome int

const (
	Confirmed Outcome = iota
	Cancelled
)

func (o Outcome) String() string {
	if o == Confirmed {
		return "confirmed"
	}
	return "cancelled"
}

// Action is the guarded operation.
type Action func(ctx context.Context) error

// DefaultSuccessMessage is shown when a confirmed action succeeds.
const DefaultSuccessMessage = "Deleted."

// DefaultFailurePrefix precedes the error text of a failed action.
const DefaultFailurePrefix = "Delete failed: "

// DoneMsg is emitted after a confirmed action settles.
type DoneMsg struct {
	GateID string
	Err    error
}

// CancelledMsg is emitted when the prompt is dismissed.
type CancelledMsg struct {
	GateID string
}

// KeyMap holds the bindings the prompt reacts to.
type KeyMap struct {
	Confirm key.Binding
	Cancel  key.Binding
}

// DefaultKeyMap returns the standard prompt bindings.
func DefaultKeyMap() KeyMap {
	return KeyMap{
		Confirm: key.NewBinding(key.WithKeys("y", "d", "enter"), key.WithHelp("y/d", "Delete")),
		Cancel:  key.NewBinding(key.WithKeys("n", "c", "esc"), key.WithHelp("n/esc", "Cancel")),
	}
}

// Option configures a Gate.
type Option func(*Gate)

// WithSuccessMessage overrides the success notification text.
func WithSuccessMessage(msg string) Option {
	return func(g *Gate) {
		if msg != "" {
			g.successMessage = msg
		}
	}
}

// WithFailurePrefix overrides the text that precedes a failure's error.
func WithFailurePrefix(prefix string) Option {
	return func(g *Gate) { g.failurePrefix = prefix }
}

// WithTitle sets the modal title.
func WithTitle(title string) Option {
	return func(g *Gate) { g.title = title }
}

// WithPrompt sets the question shown in the modal.
func WithPrompt(prompt string) Option {
	return func(g *Gate) { g.prompt = prompt }
}

// WithDisabled starts the gate disabled.
func WithDisabled(disabled bool) Option {
	return func(g *Gate) { g.disabled = disabled }
}

// WithContext supplies the context handed to the action by Confirm.
func WithContext(fn func() context.Context) Option {
	return func(g *Gate) {
		if fn != nil {
			g.ctx = fn
		}
	}
}

// Colors are the modal's colors. Hosts map their own palette onto them.
type Colors struct {
	Surface    lipgloss.TerminalColor
	Text       lipgloss.TerminalColor
	Muted      lipgloss.TerminalColor
	Danger     lipgloss.TerminalColor
	Warning    lipgloss.TerminalColor
	Accent     lipgloss.TerminalColor
	AccentText lipgloss.TerminalColor
}

// DefaultColors is used when no WithColors option is given.
func DefaultColors() Colors {
	return Colors{
		Surface:    lipgloss.AdaptiveColor{Light: "#e9e9ed", Dark: "#1f2335"},
		Text:       lipgloss.AdaptiveColor{Light: "#1a1b26", Dark: "#c0caf5"},
		Muted:      lipgloss.AdaptiveColor{Light: "#6a6f87", Dark: "#737aa2"},
		Danger:     lipgloss.AdaptiveColor{Light: "#c0392b", Dark: "#f7768e"},
		Warning:    lipgloss.AdaptiveColor{Light: "#b36b00", Dark: "#e0af68"},
		Accent:     lipgloss.AdaptiveColor{Light: "#2e59c6", Dark: "#7aa2f7"},
		AccentText: lipgloss.AdaptiveColor{Light: "#ffffff", Dark: "#1a1b26"},
	}
}

// WithColors supplies the modal colors. fn is called on every View, so a
// palette switch shows up on the next render.
func WithColors(fn func() Colors) Option {
	return func(g *Gate) {
		if fn != nil {
			g.colors = fn
		}
	}
}

// WithKeys overrides the prompt bindings.
func WithKeys(keys KeyMap) Option {
	return func(g *Gate) { g.keys = keys }
}

// Gate guards one action. It is safe to read from any goroutine; the
// transitions are expected to be driven from the program's update loop.
type Gate struct {
	id       string
	action   Action
	notifier notify.Notifier

	successMessage string
	failurePrefix  string
	title          string
	prompt         string
	keys           KeyMap
	ctx            func() context.Context
	colors         func() Colors

	mu       sync.Mutex
	state    State
	disabled bool
	lastErr  error
}

// New creates an idle gate around action.
func New(action Action, notifier notify.Notifier, opts ...Option) *Gate {
	g := &Gate{
		id:             uuid.NewString(),
		action:         action,
		notifier:       notifier,
		successMessage: DefaultSuccessMessage,
		failurePrefix:  DefaultFailurePrefix,
		title:          "Delete",
		prompt:         "Delete this record?",
		keys:           DefaultKeyMap(),
		ctx:            context.Background,
		colors:         DefaultColors,
	}
	for _, opt := range opts {
		opt(g)
	}
	return g
}

// ID identifies the gate in DoneMsg and CancelledMsg.
func (g *Gate) ID() string { return g.id }

// State returns the current state.
func (g *Gate) State() State {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.state
}

// Disabled reports whether intent signals are ignored.
func (g *Gate) Disabled() bool {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.disabled
}

// SetDisabled toggles the gate. Disabling never interrupts a pending prompt.
func (g *Gate) SetDisabled(disabled bool) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.disabled = disabled
}

// LastErr returns the error from the most recent confirmed cycle.
func (g *Gate) LastErr() error {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.lastErr
}

// Request moves Idle to AwaitingConfirmation. It reports whether the
// transition happened.
func (g *Gate) Request() bool {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.disabled || g.state != Idle {
		return false
	}
	g.state = AwaitingConfirmation
	return true
}

// Resolve applies outcome synchronously. A confirmed action's error is
// returned as well as notified.
func (g *Gate) Resolve(ctx context.Context, outcome Outcome) error {
	switch outcome {
	case Cancelled:
		g.cancel()
		return nil
	case Confirmed:
		if !g.begin() {
			return nil
		}
		return g.execute(ctx)
	}
	return nil
}

// Confirm transitions to Executing now and returns a command that runs the
// action and yields DoneMsg. It returns nil unless a prompt is pending.
func (g *Gate) Confirm() tea.Cmd {
	if !g.begin() {
		return nil
	}
	ctx := g.ctx()
	return func() tea.Msg {
		return DoneMsg{GateID: g.id, Err: g.execute(ctx)}
	}
}

// Cancel dismisses a pending prompt.
func (g *Gate) Cancel() tea.Cmd {
	if !g.cancel() {
		return nil
	}
	return func() tea.Msg { return CancelledMsg{GateID: g.id} }
}

// Update handles prompt keys while awaiting confirmation.
func (g *Gate) Update(msg tea.Msg) tea.Cmd {
	keyMsg, ok := msg.(tea.KeyMsg)
	if !ok || g.State() != AwaitingConfirmation {
		return nil
	}
	switch {
	case key.Matches(keyMsg, g.keys.Confirm):
		return g.Confirm()
	case key.Matches(keyMsg, g.keys.Cancel):
		return g.Cancel()
	}
	return nil
}

func (g *Gate) begin() bool {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.state != AwaitingConfirmation {
		return false
	}
	g.state = Executing
	return true
}

func (g *Gate) cancel() bool {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.state != AwaitingConfirmation {
		return false
	}
	g.state = Idle
	return true
}

func (g *Gate) execute(ctx context.Context) error {
	err := g.invoke(ctx)

	g.mu.Lock()
	g.lastErr = err
	g.state = Idle
	g.mu.Unlock()

	if err != nil {
		debug.Logger().Warn("confirmed action failed", zap.String("gate", g.id), zap.Error(err))
		g.notify(g.failurePrefix+err.Error(), notify.Failure)
		return err
	}
	g.notify(g.successMessage, notify.Success)
	return nil
}

func (g *Gate) invoke(ctx context.Context) (err error) {
	defer func() {
		if rec := recover(); rec != nil {
			err = appErrors.FromPanic(appErrors.CodeOperationFailed, rec)
		}
	}()
	if g.action == nil {
		return appErrors.New(appErrors.CodeOperationFailed, "no action bound", nil)
	}
	return g.action(ctx)
}

func (g *Gate) notify(message string, kind notify.Kind) {
	if g.notifier != nil {
		g.notifier.Notify(message, kind)
	}
}

const modalWidth = 44

// View renders the modal while a prompt is pending or the action is running.
func (g *Gate) View() string {
	state := g.State()
	if state == Idle {
		return ""
	}
	c := g.colors()
	bg := c.Surface

	title := lipgloss.NewStyle().Background(bg).Foreground(c.Danger).Bold(true)
	body := lipgloss.NewStyle().Background(bg).Foreground(c.Text)
	muted := lipgloss.NewStyle().Background(bg).Foreground(c.Muted)
	divider := muted.Render(strings.Repeat("─", modalWidth))

	lines := []string{
		title.Render(g.title),
		divider,
		"",
		lipgloss.NewStyle().Foreground(c.Danger).Bold(true).Render("✖") + " " + body.Bold(true).Render(g.prompt),
		"",
		lipgloss.NewStyle().Background(bg).Foreground(c.Warning).Render("This action cannot be undone."),
		"",
		divider,
	}
	if state == Executing {
		lines = append(lines, muted.Render("Working..."))
	} else {
		lines = append(lines, hint(g.keys.Confirm, c)+"  "+hint(g.keys.Cancel, c))
	}

	return lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(c.Danger).
		Background(bg).
		Padding(0, 1).
		Render(strings.Join(lines, "\n"))
}

func hint(b key.Binding, c Colors) string {
	h := b.Help()
	pill := lipgloss.NewStyle().Background(c.Accent).Foreground(c.AccentText).Bold(true)
	desc := lipgloss.NewStyle().Foreground(c.Muted)
	return pill.Render(" "+h.Key+" ") + " " + desc.Render(h.Desc)
}
