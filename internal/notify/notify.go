// Package notify is the user-visible outcome surface. The core only sees the
// Notifier interface; the console binds it to a Center that renders toasts.
package notify

import (
	"sync"
	"time"

	"adminkit/internal/debug"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Kind classifies a notification.
type Kind int

const (
	Success Kind = iota
	Failure
	Info
)

func (k Kind) String() string {
	switch k {
	case Success:
		return "success"
	case Failure:
		return "failure"
	case Info:
		return "info"
	default:
		return "unknown"
	}
}

// Notifier accepts messages fire-and-forget.
type Notifier interface {
	Notify(message string, kind Kind)
}

// Func adapts a plain function to Notifier.
type Func func(message string, kind Kind)

// Notify implements Notifier.
func (f Func) Notify(message string, kind Kind) { f(message, kind) }

// Multi fans a notification out to every non-nil notifier.
type Multi []Notifier

// Notify implements Notifier.
func (m Multi) Notify(message string, kind Kind) {
	for _, n := range m {
		if n != nil {
			n.Notify(message, kind)
		}
	}
}

// Notification is one entry on the surface.
type Notification struct {
	ID      string
	Message string
	Kind    Kind
	At      time.Time
}

// DefaultTTL is how long a notification stays visible.
const DefaultTTL = 5 * time.Second

// Center is an append-only, process-wide notification sink. It never
// de-duplicates and never drops; concurrent notifications each get an entry.
type Center struct {
	mu    sync.RWMutex
	items []Notification
	ttl   time.Duration
	now   func() time.Time
}

// NewCenter creates a Center whose notifications stay active for ttl.
func NewCenter(ttl time.Duration) *Center {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &Center{ttl: ttl, now: time.Now}
}

// Notify implements Notifier.
func (c *Center) Notify(message string, kind Kind) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.items = append(c.items, Notification{
		ID:      uuid.NewString(),
		Message: message,
		Kind:    kind,
		At:      c.now(),
	})
}

// All returns every notification in append order.
func (c *Center) All() []Notification {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return append([]Notification(nil), c.items...)
}

// Active returns the notifications still within ttl at now, oldest first.
func (c *Center) Active(now time.Time) []Notification {
	c.mu.RLock()
	defer c.mu.RUnlock()
	var active []Notification
	for _, n := range c.items {
		if now.Sub(n.At) < c.ttl {
			active = append(active, n)
		}
	}
	return active
}

// Remaining returns the whole seconds left before n expires.
func (c *Center) Remaining(n Notification, now time.Time) int {
	left := c.ttl - now.Sub(n.At)
	if left <= 0 {
		return 0
	}
	return int((left + time.Second - 1) / time.Second)
}

// Count returns how many notifications of kind were recorded.
func (c *Center) Count(kind Kind) int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	count := 0
	for _, n := range c.items {
		if n.Kind == kind {
			count++
		}
	}
	return count
}

// TickMsg asks the program to re-render toasts.
type TickMsg struct{}

// TickCmd schedules the next toast re-render.
func (c *Center) TickCmd() tea.Cmd {
	return tea.Tick(200*time.Millisecond, func(time.Time) tea.Msg {
		return TickMsg{}
	})
}

// LogNotifier mirrors notifications into the debug log.
type LogNotifier struct{}

// Notify implements Notifier.
func (LogNotifier) Notify(message string, kind Kind) {
	l := debug.Logger()
	if kind == Failure {
		l.Warn("notification", zap.String("kind", kind.String()), zap.String("message", message))
		return
	}
	l.Info("notification", zap.String("kind", kind.String()), zap.String("message", message))
}
