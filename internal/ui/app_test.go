package ui

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"adminkit/internal/confirm"
	"adminkit/internal/notify"
	"adminkit/internal/store"
	"adminkit/internal/ui/theme"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/x/ansi"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recordingNotifier struct {
	mu    sync.Mutex
	items []string
}

func (r *recordingNotifier) Notify(message string, kind notify.Kind) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.items = append(r.items, kind.String()+":"+message)
}

func (r *recordingNotifier) list() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]string(nil), r.items...)
}

type harness struct {
	t      *testing.T
	app    *App
	store  store.Store
	notes  *recordingNotifier
	copied []string
	themes []string
}

func newHarness(t *testing.T, s store.Store) *harness {
	t.Helper()
	return newHarnessFor(t, s, "products", "posts")
}

func newHarnessFor(t *testing.T, s store.Store, collections ...string) *harness {
	t.Helper()
	h := &harness{t: t, store: s, notes: &recordingNotifier{}}
	app, err := NewApp(Config{
		Store:        s,
		Collections:  collections,
		OutputFormat: "plain",
		ToastTTL:     time.Minute,
		Notifier:     h.notes,
		Clipboard:    func(v string) error { h.copied = append(h.copied, v); return nil },
		SaveTheme:    func(name string) error { h.themes = append(h.themes, name); return nil },
	})
	require.NoError(t, err)
	t.Cleanup(app.Close)
	h.app = app
	h.send(tea.WindowSizeMsg{Width: 120, Height: 32})
	h.run(app.reloadCmd())
	return h
}

func seededStore(t *testing.T, collections ...string) store.Store {
	t.Helper()
	if len(collections) == 0 {
		collections = []string{"products", "posts"}
	}
	s, err := store.NewMemStore()
	require.NoError(t, err)
	_, err = store.Seed(context.Background(), s, collections)
	require.NoError(t, err)
	return s
}

// send delivers msg and runs every command it produces.
func (h *harness) send(msg tea.Msg) {
	h.t.Helper()
	_, cmd := h.app.Update(msg)
	h.run(cmd)
}

func (h *harness) run(cmd tea.Cmd) {
	h.t.Helper()
	if cmd == nil {
		return
	}
	msg := cmd()
	if batch, ok := msg.(tea.BatchMsg); ok {
		for _, c := range batch {
			h.run(c)
		}
		return
	}
	if _, ok := msg.(tea.QuitMsg); ok {
		return
	}
	h.send(msg)
}

func (h *harness) keys(s string) {
	for _, r := range s {
		h.send(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{r}})
	}
}

func (h *harness) view() string {
	return ansi.Strip(h.app.View())
}

func TestNewAppRequiresStoreAndCollections(t *testing.T) {
	_, err := NewApp(Config{Collections: []string{"posts"}})
	assert.Error(t, err)
	_, err = NewApp(Config{Store: store.NewMockStore()})
	assert.Error(t, err)
}

func TestInitialLoadFillsGrid(t *testing.T) {
	h := newHarness(t, seededStore(t))
	assert.Equal(t, 3, h.app.grid.Len())

	view := h.view()
	assert.Contains(t, view, "ADMINKIT")
	assert.Contains(t, view, "products · 3 records")
	assert.Contains(t, view, "Ceramic pour-over set")
}

func TestSidebarSwitchesCollection(t *testing.T) {
	h := newHarness(t, seededStore(t))
	h.send(tea.KeyMsg{Type: tea.KeyTab})
	assert.Equal(t, FocusSidebar, h.app.focus)

	h.keys("j")
	assert.Equal(t, "posts", h.app.Collection())
	rows := h.app.grid.Rows()
	require.NotEmpty(t, rows)
	assert.Equal(t, "posts", rows[0].Collection)

	h.keys("j")
	assert.Equal(t, "posts", h.app.Collection(), "cursor stops at the last collection")
}

func TestDeleteConfirmedRemovesRowAndToasts(t *testing.T) {
	s := seededStore(t)
	h := newHarness(t, s)
	target, _ := h.app.grid.Selected()

	h.keys("d")
	require.True(t, h.app.grid.InModal())
	assert.Contains(t, h.view(), "Delete product")

	h.keys("y")
	assert.False(t, h.app.grid.InModal())
	assert.Equal(t, 2, h.app.grid.Len())
	_, err := s.Get(context.Background(), target.ID)
	assert.Error(t, err)
	assert.Contains(t, h.notes.list(), "success:Deleted "+target.Title)
	assert.Contains(t, h.view(), "Deleted "+target.Title)
}

func TestDeleteFailureKeepsRowAndNotifiesOnce(t *testing.T) {
	mock := store.NewMockStore()
	mock.ListFn = func(context.Context, string) ([]store.Record, error) {
		return []store.Record{{ID: "7", Collection: "products", Title: "Lamp"}}, nil
	}
	mock.DeleteFn = func(context.Context, string) error { return errors.New("network error") }
	h := newHarness(t, mock)

	h.keys("dy")
	_, deletes := mock.Snapshot()
	assert.Equal(t, []string{"7"}, deletes)
	assert.Equal(t, []string{"failure:Delete failed: network error"}, h.notes.list())
	assert.Equal(t, 1, h.app.grid.Len())
	d := h.app.grid.Dispatcher(0)
	assert.Equal(t, confirm.Idle, d.Gate().State())
}

func TestDeleteCancelled(t *testing.T) {
	mock := store.NewMockStore()
	mock.ListFn = func(context.Context, string) ([]store.Record, error) {
		return []store.Record{{ID: "7", Collection: "products", Title: "Lamp"}}, nil
	}
	h := newHarness(t, mock)

	h.keys("d")
	h.send(tea.KeyMsg{Type: tea.KeyEsc})
	assert.False(t, h.app.grid.InModal())
	assert.Zero(t, mock.DeleteCallCount)
	assert.Empty(t, h.notes.list())
}

func TestEditSavesThroughEditor(t *testing.T) {
	s := seededStore(t)
	h := newHarness(t, s)
	target, _ := h.app.grid.Selected()

	h.keys("e")
	require.True(t, h.app.editorOpen())
	assert.Contains(t, h.view(), "Edit record")

	h.keys("!")
	h.send(tea.KeyMsg{Type: tea.KeyCtrlS})

	assert.False(t, h.app.editorOpen())
	got, err := s.Get(context.Background(), target.ID)
	require.NoError(t, err)
	assert.Equal(t, target.Title+"!", got.Title)
	assert.Contains(t, h.notes.list(), "success:Saved "+target.Title+"!")
}

func TestEditorShowsValidationErrors(t *testing.T) {
	h := newHarness(t, seededStore(t))
	h.keys("n")
	require.NotNil(t, h.app.creating)

	h.send(tea.KeyMsg{Type: tea.KeyCtrlS})
	require.NotNil(t, h.app.creating, "invalid records keep the editor open")
	assert.Contains(t, h.view(), "title is required")

	h.send(tea.KeyMsg{Type: tea.KeyEsc})
	assert.Nil(t, h.app.creating)
}

func TestNewRecordIsCreated(t *testing.T) {
	s := seededStore(t)
	h := newHarness(t, s)

	h.keys("n")
	h.keys("Launch")
	h.send(tea.KeyMsg{Type: tea.KeyTab})
	h.keys("# hi")
	h.send(tea.KeyMsg{Type: tea.KeyCtrlS})

	assert.Nil(t, h.app.creating)
	assert.Equal(t, 4, h.app.grid.Len())
	assert.Contains(t, h.notes.list(), "success:Created Launch")
	n, _ := s.Count(context.Background(), "products")
	assert.Equal(t, 4, n)
}

func TestSaveFailureKeepsEditorOpen(t *testing.T) {
	mock := store.NewMockStore()
	mock.ListFn = func(context.Context, string) ([]store.Record, error) {
		return []store.Record{{ID: "1", Collection: "products", Title: "Lamp"}}, nil
	}
	mock.UpdateFn = func(context.Context, store.Record) (store.Record, error) {
		return store.Record{}, errors.New("conflict")
	}
	h := newHarness(t, mock)

	h.keys("e")
	h.send(tea.KeyMsg{Type: tea.KeyCtrlS})
	assert.True(t, h.app.editorOpen())
	assert.Contains(t, h.view(), "conflict")
	assert.Equal(t, []string{"failure:Save failed: conflict"}, h.notes.list())
}

func TestTogglePublish(t *testing.T) {
	s := seededStore(t)
	h := newHarness(t, s)
	target, _ := h.app.grid.Selected()

	h.keys("t")
	got, err := s.Get(context.Background(), target.ID)
	require.NoError(t, err)
	assert.Equal(t, !target.Published, got.Published)
}

func TestCopyID(t *testing.T) {
	h := newHarness(t, seededStore(t))
	target, _ := h.app.grid.Selected()
	h.keys("y")
	assert.Equal(t, []string{target.ID}, h.copied)
	assert.Contains(t, h.notes.list(), "info:Copied "+target.ID+" to clipboard")
}

func TestThemeCyclePersists(t *testing.T) {
	t.Cleanup(func() { theme.Set(theme.DefaultName) })
	h := newHarness(t, seededStore(t))
	before := theme.CurrentName()
	h.keys("T")
	require.Len(t, h.themes, 1)
	assert.NotEqual(t, before, h.themes[0])
	assert.Equal(t, theme.CurrentName(), h.themes[0])
}

func TestLoadFailureKeepsStaleRows(t *testing.T) {
	fail := false
	mock := store.NewMockStore()
	mock.ListFn = func(context.Context, string) ([]store.Record, error) {
		if fail {
			return nil, errors.New("offline")
		}
		return []store.Record{{ID: "1", Collection: "products", Title: "Lamp"}}, nil
	}
	h := newHarness(t, mock)
	fail = true
	h.keys("r")

	assert.Equal(t, 1, h.app.grid.Len())
	assert.Contains(t, h.notes.list(), "failure:Load products failed: offline")
	assert.Contains(t, h.view(), "stale")
}

func TestOutOfOrderReloadsShowLatestCollection(t *testing.T) {
	s := seededStore(t, "products", "posts", "banners")
	h := newHarnessFor(t, s, "products", "posts", "banners")
	h.send(tea.KeyMsg{Type: tea.KeyTab})

	down := tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'j'}}
	_, toPosts := h.app.Update(down)
	_, toBanners := h.app.Update(down)
	require.NotNil(t, toPosts)
	require.NotNil(t, toBanners)

	h.run(toBanners)
	h.run(toPosts)

	assert.Equal(t, "banners", h.app.Collection())
	rows := h.app.grid.Rows()
	require.Len(t, rows, 2)
	for _, r := range rows {
		assert.Equal(t, "banners", r.Collection)
	}
	assert.Contains(t, h.view(), "banners · 2 records")
}

func TestRowsForAnotherCollectionAreIgnored(t *testing.T) {
	h := newHarness(t, seededStore(t))
	require.Equal(t, 3, h.app.grid.Len())

	_, err := h.app.list.Do(context.Background(), "posts")
	require.NoError(t, err)
	h.app.applyRows()

	for _, r := range h.app.grid.Rows() {
		assert.Equal(t, "products", r.Collection)
	}
}

func TestLoadFailureOnOtherCollectionClearsGrid(t *testing.T) {
	mock := store.NewMockStore()
	mock.ListFn = func(_ context.Context, collection string) ([]store.Record, error) {
		if collection == "posts" {
			return nil, errors.New("offline")
		}
		return []store.Record{{ID: "1", Collection: collection, Title: "Lamp"}}, nil
	}
	h := newHarness(t, mock)
	require.Equal(t, 1, h.app.grid.Len())

	h.send(tea.KeyMsg{Type: tea.KeyTab})
	h.keys("j")

	assert.Equal(t, "posts", h.app.Collection())
	assert.Zero(t, h.app.grid.Len(), "products rows must not show under posts")
	assert.Contains(t, h.notes.list(), "failure:Load posts failed: offline")
	view := h.view()
	assert.Contains(t, view, "posts · 0 records")
	assert.Contains(t, view, "stale")
	assert.NotContains(t, view, "Lamp")
}

func TestReloadIsDeferredWhileModalOpen(t *testing.T) {
	s := seededStore(t)
	h := newHarness(t, s)
	h.keys("d")

	_, err := s.Create(context.Background(), store.Record{Collection: "products", Title: "Sneaky"})
	require.NoError(t, err)
	h.send(autoRefreshMsg{})
	assert.Equal(t, 3, h.app.grid.Len(), "rows stay put while a prompt is open")

	h.keys("r")
	assert.True(t, h.app.grid.InModal(), "global keys go to the prompt")
	h.keys("n")
	h.keys("r")
	assert.Equal(t, 4, h.app.grid.Len())
}

func TestHelpOverlay(t *testing.T) {
	h := newHarness(t, seededStore(t))
	h.keys("?")
	assert.True(t, h.app.showHelp)
	assert.Contains(t, h.view(), "ADMINKIT HELP")
	h.send(tea.KeyMsg{Type: tea.KeyEsc})
	assert.False(t, h.app.showHelp)
}

func TestDetailPaneShowsBody(t *testing.T) {
	h := newHarness(t, seededStore(t))
	target, _ := h.app.grid.Selected()
	h.keys("p")
	assert.True(t, h.app.showDetail)
	assert.Contains(t, h.view(), "Sample content")
	assert.True(t, strings.Contains(h.view(), target.ID[:8]))
}

func TestQuitClosesReloadEffect(t *testing.T) {
	h := newHarness(t, seededStore(t))
	_, cmd := h.app.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'q'}})
	require.NotNil(t, cmd)
	assert.IsType(t, tea.QuitMsg{}, cmd())
	assert.Nil(t, h.app.reloadCmd(), "closed effect ignores new snapshots")
}
