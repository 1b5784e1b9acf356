// Package ui hosts the adminkit console: a collection sidebar, a record grid
// with per-row edit and delete controls, a markdown preview pane and a toast
// surface, all driven by one Bubble Tea program.
package ui

import (
	"context"
	"fmt"
	"strings"
	"time"

	"adminkit/internal/async"
	"adminkit/internal/config"
	"adminkit/internal/confirm"
	"adminkit/internal/debug"
	"adminkit/internal/effect"
	appErrors "adminkit/internal/errors"
	"adminkit/internal/grid"
	"adminkit/internal/notify"
	"adminkit/internal/rowaction"
	"adminkit/internal/store"
	"adminkit/internal/ui/theme"

	"github.com/atotto/clipboard"
	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"go.uber.org/zap"
)

// Focus identifies which pane receives navigation keys.
type Focus int

const (
	FocusGrid Focus = iota
	FocusSidebar
)

const (
	sidebarWidth  = 20
	minGridHeight = 3
)

// Config wires the console to its collaborators.
type Config struct {
	Store           store.Store
	Collections     []string
	RefreshInterval time.Duration
	AutoRefresh     bool
	OutputFormat    string
	SuccessMessage  string
	ToastTTL        time.Duration
	Version         string
	StoreLabel      string
	// Notifier additionally receives every notification shown as a toast.
	Notifier notify.Notifier
	// Clipboard and SaveTheme default to the system clipboard and config.SaveTheme.
	Clipboard func(string) error
	SaveTheme func(string) error
}

// App is the root Bubble Tea model.
type App struct {
	cfg      Config
	store    store.Store
	keys     KeyMap
	center   *notify.Center
	notifier notify.Notifier
	ctx      context.Context
	cancel   context.CancelFunc

	collections []string
	collection  int
	focus       Focus
	revision    int

	list     *async.Request[string, recordPage]
	save     *async.Request[store.Record, store.Record]
	reload   *effect.Runner
	grid     *grid.Grid[store.Record]
	creating *RecordEditor
	stale    bool

	spinner    spinner.Model
	viewport   viewport.Model
	help       help.Model
	showDetail bool
	showHelp   bool
	markdown   func(string) string

	width  int
	height int
	ready  bool
}

// NewApp validates cfg and builds the console.
func NewApp(cfg Config) (*App, error) {
	if cfg.Store == nil {
		return nil, appErrors.New(appErrors.CodeConfigurationError, "ui: store is required", nil)
	}
	if len(cfg.Collections) == 0 {
		return nil, appErrors.New(appErrors.CodeConfigurationError, "ui: at least one collection is required", nil)
	}
	if cfg.SuccessMessage == "" {
		cfg.SuccessMessage = confirm.DefaultSuccessMessage
	}
	if cfg.Clipboard == nil {
		cfg.Clipboard = clipboard.WriteAll
	}
	if cfg.SaveTheme == nil {
		cfg.SaveTheme = config.SaveTheme
	}
	if cfg.StoreLabel == "" {
		cfg.StoreLabel = "adminkit"
	}

	ctx, cancel := context.WithCancel(context.Background())
	center := notify.NewCenter(cfg.ToastTTL)
	m := &App{
		cfg:         cfg,
		store:       cfg.Store,
		keys:        DefaultKeyMap(),
		center:      center,
		notifier:    notify.Multi{center, notify.LogNotifier{}, cfg.Notifier},
		ctx:         ctx,
		cancel:      cancel,
		collections: append([]string(nil), cfg.Collections...),
		spinner:     spinner.New(spinner.WithSpinner(spinner.Dot)),
		viewport:    viewport.New(40, 10),
		help:        help.New(),
		width:       100,
		height:      30,
	}
	m.markdown = buildMarkdownRenderer(cfg.OutputFormat, m.viewport.Width)

	m.list = async.New(func(ctx context.Context, collection string) (recordPage, error) {
		rows, err := m.store.List(ctx, collection)
		if err != nil {
			return recordPage{}, err
		}
		return recordPage{collection: collection, rows: rows}, nil
	}, async.WithName("list"))
	m.save = async.New(func(ctx context.Context, rec store.Record) (store.Record, error) {
		if rec.ID == "" {
			return m.store.Create(ctx, rec)
		}
		return m.store.Update(ctx, rec)
	}, async.WithName("save"))
	m.reload = effect.NewRunner(m.reloadBody, effect.WithName("reload"), effect.WithOnError(func(err error) {
		m.notifier.Notify("Reload failed: "+err.Error(), notify.Failure)
	}))

	m.grid = grid.New(grid.Config[store.Record]{
		Columns: []grid.Column[store.Record]{
			{Title: "Title", Value: func(r store.Record) string { return r.Title }},
			{Title: "Status", Width: 10, Value: publishedLabel},
			{Title: "Updated", Width: 14, Value: func(r store.Record) string { return FormatRelativeTime(r.UpdatedAt) }},
			{Title: "ID", Width: 10, Value: func(r store.Record) string { return r.ID }},
		},
		Handlers: rowaction.Handlers[store.Record]{
			Update: m.updateRecord,
			Delete: func(ctx context.Context, r store.Record) error { return m.store.Delete(ctx, r.ID) },
		},
		EditRenderer: m.renderEditor,
		Notifier:     m.notifier,
		Key:          func(r store.Record) string { return r.ID },
		GateOptions:  m.gateOptions,
		Context:      func() context.Context { return m.ctx },
		EmptyText:    "No records. Press n to create one.",
		Styles:       gridStyles,
	})
	m.layout()
	return m, nil
}

func publishedLabel(r store.Record) string {
	if r.Published {
		return "published"
	}
	return "draft"
}

// Center exposes the toast surface.
func (m *App) Center() *notify.Center { return m.center }

// Close tears down the reload effect and cancels in-flight handlers.
func (m *App) Close() {
	m.reload.Close()
	m.cancel()
}

// Collection returns the active collection.
func (m *App) Collection() string { return m.collections[m.collection] }

// Init implements tea.Model.
func (m *App) Init() tea.Cmd {
	cmds := []tea.Cmd{m.spinner.Tick, m.reloadCmd(), m.center.TickCmd()}
	if cmd := m.scheduleAutoRefresh(); cmd != nil {
		cmds = append(cmds, cmd)
	}
	return tea.Batch(cmds...)
}

// reloadCmd asks the effect to run for the current (collection, revision).
func (m *App) reloadCmd() tea.Cmd {
	collection := m.Collection()
	ctx := context.WithValue(m.ctx, collectionKey{}, collection)
	return m.reload.Cmd(ctx, collection, m.revision)
}

func (m *App) reloadBody(ctx context.Context) (effect.Cleanup, error) {
	collection, _ := ctx.Value(collectionKey{}).(string)
	loadCtx, cancel := context.WithCancel(ctx)
	_, err := m.list.Do(loadCtx, collection, async.Callbacks[recordPage]{
		OnError: func(err error) {
			m.notifier.Notify(fmt.Sprintf("Load %s failed: %v", collection, err), notify.Failure)
		},
	})
	if err != nil {
		debug.Logger().Debug("reload kept stale rows", zap.String("collection", collection))
	}
	return effect.Cleanup(cancel), nil
}

func (m *App) bump() tea.Cmd {
	m.revision++
	return m.reloadCmd()
}

func (m *App) scheduleAutoRefresh() tea.Cmd {
	if !m.cfg.AutoRefresh || m.cfg.RefreshInterval <= 0 {
		return nil
	}
	return tea.Tick(m.cfg.RefreshInterval, func(time.Time) tea.Msg { return autoRefreshMsg{} })
}

func (m *App) updateRecord(ctx context.Context, rec store.Record) error {
	_, err := m.save.Do(ctx, rec, m.saveCallbacks(rec))
	return err
}

func (m *App) saveCallbacks(rec store.Record) async.Callbacks[store.Record] {
	return async.Callbacks[store.Record]{
		OnSuccess: func(saved store.Record) {
			verb := "Saved"
			if rec.ID == "" {
				verb = "Created"
			}
			m.notifier.Notify(verb+" "+saved.Title, notify.Success)
		},
		OnError: func(err error) {
			m.notifier.Notify("Save failed: "+err.Error(), notify.Failure)
		},
	}
}

func (m *App) persist(rec store.Record) (store.Record, error) {
	return m.save.Do(m.ctx, rec, m.saveCallbacks(rec))
}

func (m *App) renderEditor(rec store.Record, close func()) rowaction.Editor {
	return newRecordEditor(rec, m.modalWidth(), m.persist, close, m.markdown)
}

func (m *App) gateOptions(rec store.Record) []confirm.Option {
	success := m.cfg.SuccessMessage
	if success == confirm.DefaultSuccessMessage && rec.Title != "" {
		success = "Deleted " + rec.Title
	}
	return []confirm.Option{
		confirm.WithTitle("Delete " + strings.TrimSuffix(m.Collection(), "s")),
		confirm.WithPrompt(fmt.Sprintf("Delete %q?", truncate(rec.Title, 30))),
		confirm.WithSuccessMessage(success),
		confirm.WithColors(confirmColors),
	}
}

func (m *App) editorOpen() bool {
	if m.creating != nil {
		return true
	}
	d := m.grid.Dispatcher(m.grid.Cursor())
	return d != nil && d.Editing()
}

func (m *App) modalOpen() bool {
	return m.creating != nil || m.grid.InModal()
}

func (m *App) modalWidth() int {
	return min(max(m.width-10, 30), 90)
}

func (m *App) layout() {
	bodyHeight := max(m.height-4, minGridHeight)
	gridWidth := m.width - sidebarWidth - 4
	if m.showDetail {
		detailWidth := gridWidth / 2
		m.viewport.Width = detailWidth - 2
		m.viewport.Height = bodyHeight - 2
		gridWidth -= detailWidth
	}
	m.grid.SetSize(gridWidth-2, bodyHeight-2)
	m.markdown = buildMarkdownRenderer(m.cfg.OutputFormat, m.viewport.Width)
	m.help.Width = m.width
	m.refreshDetail()
}

func (m *App) refreshDetail() {
	rec, ok := m.grid.Selected()
	if !ok {
		m.viewport.SetContent(currentStyles().muted.Render("Nothing selected."))
		return
	}
	meta := fmt.Sprintf("%s · %s · updated %s", rec.ID, publishedLabel(rec), FormatRelativeTime(rec.UpdatedAt))
	m.viewport.SetContent(currentStyles().title.Render(rec.Title) + "\n" +
		currentStyles().muted.Render(meta) + "\n\n" + m.markdown(rec.Body))
}

// applyRows moves the last loaded page into the grid. A page for another
// collection is never shown: it is skipped while the current collection's load
// is still due, and replaced by an empty grid once that load has failed.
func (m *App) applyRows() {
	page, _ := m.list.Data()
	if page.collection != m.Collection() {
		if m.list.Err() == nil && page.collection != "" {
			debug.Logger().Debug("ignored rows for another collection",
				zap.String("rows", page.collection), zap.String("collection", m.Collection()))
			return
		}
		page = recordPage{collection: m.Collection()}
	}
	if m.modalOpen() {
		m.stale = true
		return
	}
	m.stale = false
	m.grid.SetRows(page.rows)
	m.refreshDetail()
}

// Update implements tea.Model.
func (m *App) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	cmd := m.update(msg)
	if m.stale && !m.modalOpen() {
		m.applyRows()
	}
	return m, cmd
}

func (m *App) update(msg tea.Msg) tea.Cmd {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width, m.height, m.ready = msg.Width, msg.Height, true
		m.layout()
		return nil

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return cmd

	case notify.TickMsg:
		return m.center.TickCmd()

	case effect.RanMsg:
		if msg.RunnerID == m.reload.ID() && msg.Ran {
			m.applyRows()
		}
		return nil

	case autoRefreshMsg:
		next := m.scheduleAutoRefresh()
		if m.modalOpen() {
			return next
		}
		return tea.Batch(m.bump(), next)

	case confirm.DoneMsg:
		return m.bump()

	case recordSavedMsg:
		cmds := []tea.Cmd{m.forwardModal(msg)}
		if msg.Err == nil {
			cmds = append(cmds, m.bump())
		}
		return tea.Batch(cmds...)

	case rowaction.UpdatedMsg:
		return m.bump()

	case copiedMsg:
		if msg.err != nil {
			m.notifier.Notify("Copy failed: "+msg.err.Error(), notify.Failure)
		} else {
			m.notifier.Notify("Copied "+msg.id+" to clipboard", notify.Info)
		}
		return nil

	case themeSavedMsg:
		if msg.err != nil {
			m.notifier.Notify("Theme not saved: "+msg.err.Error(), notify.Failure)
		}
		return nil

	case tea.KeyMsg:
		return m.handleKey(msg)
	}
	return m.forwardModal(msg)
}

// forwardModal hands msg to whichever editor or prompt owns input.
func (m *App) forwardModal(msg tea.Msg) tea.Cmd {
	if m.creating != nil {
		return m.creating.Update(msg)
	}
	if m.grid.InModal() {
		return m.grid.Update(msg)
	}
	return nil
}

func (m *App) handleKey(msg tea.KeyMsg) tea.Cmd {
	if msg.Type == tea.KeyCtrlC {
		return m.quit()
	}
	if m.modalOpen() {
		return m.forwardModal(msg)
	}
	if m.showHelp {
		if key.Matches(msg, m.keys.Help, m.keys.Escape, m.keys.Quit) {
			m.showHelp = false
		}
		return nil
	}

	switch {
	case key.Matches(msg, m.keys.Quit):
		return m.quit()
	case key.Matches(msg, m.keys.Help):
		m.showHelp = true
		return nil
	case key.Matches(msg, m.keys.Tab):
		if m.focus == FocusGrid {
			m.focus = FocusSidebar
		} else {
			m.focus = FocusGrid
		}
		return nil
	case key.Matches(msg, m.keys.Refresh):
		return m.bump()
	case key.Matches(msg, m.keys.Theme):
		return m.cycleTheme()
	case key.Matches(msg, m.keys.Detail):
		m.showDetail = !m.showDetail
		m.layout()
		return nil
	case key.Matches(msg, m.keys.Escape):
		if m.showDetail {
			m.showDetail = false
			m.layout()
		}
		return nil
	}

	if m.focus == FocusSidebar {
		return m.handleSidebarKey(msg)
	}
	return m.handleGridKey(msg)
}

func (m *App) handleSidebarKey(msg tea.KeyMsg) tea.Cmd {
	prev := m.collection
	switch {
	case key.Matches(msg, m.keys.Up):
		m.collection = max(m.collection-1, 0)
	case key.Matches(msg, m.keys.Down):
		m.collection = min(m.collection+1, len(m.collections)-1)
	}
	if m.collection == prev {
		return nil
	}
	return m.reloadCmd()
}

func (m *App) handleGridKey(msg tea.KeyMsg) tea.Cmd {
	switch {
	case key.Matches(msg, m.keys.New):
		m.creating = newRecordEditor(store.Record{Collection: m.Collection()}, m.modalWidth(), m.persist,
			func() { m.creating = nil }, m.markdown)
		return nil
	case key.Matches(msg, m.keys.Copy):
		rec, ok := m.grid.Selected()
		if !ok {
			return nil
		}
		write := m.cfg.Clipboard
		return func() tea.Msg { return copiedMsg{id: rec.ID, err: write(rec.ID)} }
	case key.Matches(msg, m.keys.Publish):
		rec, ok := m.grid.Selected()
		if !ok {
			return nil
		}
		rec.Published = !rec.Published
		ctx := m.ctx
		return func() tea.Msg {
			err := m.updateRecord(ctx, rec)
			return recordSavedMsg{Record: rec, Err: err}
		}
	}
	cmd := m.grid.Update(msg)
	m.refreshDetail()
	return cmd
}

func (m *App) cycleTheme() tea.Cmd {
	name := theme.Cycle()
	m.refreshDetail()
	m.notifier.Notify("Theme: "+name, notify.Info)
	save := m.cfg.SaveTheme
	return func() tea.Msg { return themeSavedMsg{name: name, err: save(name)} }
}

func (m *App) quit() tea.Cmd {
	m.Close()
	return tea.Quit
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n-1]) + "…"
}

// View implements tea.Model.
func (m *App) View() string {
	if !m.ready {
		return "Initializing..."
	}
	st := currentStyles()

	header := m.renderHeader(st)
	bodyHeight := max(m.height-4, minGridHeight)

	sidebarStyle, gridStyle := st.pane, st.paneFocused
	if m.focus == FocusSidebar {
		sidebarStyle, gridStyle = st.paneFocused, st.pane
	}
	sidebar := sidebarStyle.Width(sidebarWidth).Height(bodyHeight - 2).Render(m.renderSidebar(st))
	gridWidth := m.width - sidebarWidth - 4
	panes := []string{sidebar}
	if m.showDetail {
		detailWidth := gridWidth / 2
		panes = append(panes,
			gridStyle.Width(gridWidth-detailWidth-2).Height(bodyHeight-2).Render(m.grid.View()),
			st.pane.Width(detailWidth-2).Height(bodyHeight-2).Render(m.viewport.View()),
		)
	} else {
		panes = append(panes, gridStyle.Width(gridWidth).Height(bodyHeight-2).Render(m.grid.View()))
	}
	body := lipgloss.JoinHorizontal(lipgloss.Top, panes...)
	footer := m.renderFooter(st)

	frame := lipgloss.JoinVertical(lipgloss.Left, header, body, footer)
	canvas := NewCanvas(m.width, m.height)
	canvas.DrawStringAt(0, 0, frame)

	bg := theme.Current().BackgroundSecondary
	var layers []Layer
	switch {
	case m.showHelp:
		layers = append(layers, newCenteredLayer(m.renderHelp(st), m.width, m.height, 1, 1, bg))
	case m.creating != nil:
		layers = append(layers, newCenteredLayer(m.creating.View(), m.width, m.height, 1, 1, bg))
	default:
		if modal, ok := m.grid.Modal(); ok {
			layers = append(layers, newCenteredLayer(modal, m.width, m.height, 1, 1, bg))
		}
	}
	layers = append(layers, m.toastLayers(st, lipgloss.Height(header), bodyHeight)...)
	canvas.Compose(layers...)
	return canvas.Render()
}

func (m *App) renderHeader(st styles) string {
	title := "ADMINKIT"
	if m.cfg.Version != "" {
		title += " v" + m.cfg.Version
	}
	info := fmt.Sprintf("%s · %d records", m.Collection(), m.grid.Len())
	if m.list.Loading() || m.save.Loading() {
		info += " " + m.spinner.View()
	}
	if err := m.list.Err(); err != nil {
		info += " " + st.errorText.Render("⚠ stale")
	}
	return st.header.Render(title) + " " + st.headerInfo.Render(info)
}

func (m *App) renderSidebar(st styles) string {
	lines := []string{st.muted.Render("Collections"), ""}
	for i, name := range m.collections {
		if i == m.collection {
			lines = append(lines, st.sidebarSel.Width(sidebarWidth).Render("▸ "+name))
			continue
		}
		lines = append(lines, st.sidebarItem.Render("  "+name))
	}
	return strings.Join(lines, "\n")
}

func (m *App) renderHelp(st styles) string {
	content := lipgloss.JoinVertical(lipgloss.Center,
		st.title.Render("✦ ADMINKIT HELP ✦"),
		"",
		m.help.FullHelpView(m.keys.FullHelp()),
		"",
		st.muted.Render("Press ? or Esc to close"),
	)
	return st.overlay.Render(content)
}
