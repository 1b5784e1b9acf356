package ui

import (
	"strings"

	"adminkit/internal/store"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textarea"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/google/uuid"
)

type editorField int

const (
	fieldTitle editorField = iota
	fieldBody
)

type editorKeys struct {
	Next    key.Binding
	Save    key.Binding
	Preview key.Binding
	Close   key.Binding
}

func defaultEditorKeys() editorKeys {
	return editorKeys{
		Next:    key.NewBinding(key.WithKeys("tab", "shift+tab")),
		Save:    key.NewBinding(key.WithKeys("ctrl+s")),
		Preview: key.NewBinding(key.WithKeys("ctrl+p")),
		Close:   key.NewBinding(key.WithKeys("esc")),
	}
}

// recordSavedMsg reports the outcome of an editor save back to the editor
// that issued it and to the console.
type recordSavedMsg struct {
	EditorID string
	Record   store.Record
	Created  bool
	Err      error
}

// saveFunc persists rec and returns the stored version.
type saveFunc func(rec store.Record) (store.Record, error)

// RecordEditor edits a record's title and markdown body inline.
type RecordEditor struct {
	id       string
	original store.Record
	save     saveFunc
	close    func()
	render   func(string) string
	keys     editorKeys

	title textinput.Model
	body  textarea.Model
	focus editorField

	preview bool
	saving  bool
	err     string
	width   int
}

func newRecordEditor(rec store.Record, width int, save saveFunc, close func(), render func(string) string) *RecordEditor {
	ti := textinput.New()
	ti.Placeholder = "Title"
	ti.CharLimit = store.MaxTitleLength
	ti.SetValue(rec.Title)
	ti.Focus()

	ta := textarea.New()
	ta.Placeholder = "Body (markdown)"
	ta.ShowLineNumbers = false
	ta.SetValue(rec.Body)

	e := &RecordEditor{
		id:       uuid.NewString(),
		original: rec,
		save:     save,
		close:    close,
		render:   render,
		keys:     defaultEditorKeys(),
		title:    ti,
		body:     ta,
	}
	e.SetWidth(width)
	return e
}

// SetWidth resizes the inputs.
func (e *RecordEditor) SetWidth(width int) {
	e.width = max(width, 30)
	e.title.Width = e.width - 4
	e.body.SetWidth(e.width - 2)
	e.body.SetHeight(8)
}

// Record returns the record as currently edited.
func (e *RecordEditor) Record() store.Record {
	rec := e.original
	rec.Title = strings.TrimSpace(e.title.Value())
	rec.Body = e.body.Value()
	return rec
}

// Update implements rowaction.Editor.
func (e *RecordEditor) Update(msg tea.Msg) tea.Cmd {
	switch msg := msg.(type) {
	case recordSavedMsg:
		if msg.EditorID != e.id {
			return nil
		}
		e.saving = false
		if msg.Err != nil {
			e.err = msg.Err.Error()
			return nil
		}
		e.close()
		return nil
	case tea.KeyMsg:
		if e.saving {
			return nil
		}
		switch {
		case key.Matches(msg, e.keys.Close):
			e.close()
			return nil
		case key.Matches(msg, e.keys.Save):
			return e.submit()
		case key.Matches(msg, e.keys.Preview):
			e.preview = !e.preview
			return nil
		case key.Matches(msg, e.keys.Next):
			e.toggleField()
			return nil
		}
	}
	if e.preview {
		return nil
	}

	var cmd tea.Cmd
	if e.focus == fieldTitle {
		e.title, cmd = e.title.Update(msg)
	} else {
		e.body, cmd = e.body.Update(msg)
	}
	return cmd
}

func (e *RecordEditor) toggleField() {
	if e.focus == fieldTitle {
		e.focus = fieldBody
		e.title.Blur()
		e.body.Focus()
		return
	}
	e.focus = fieldTitle
	e.body.Blur()
	e.title.Focus()
}

func (e *RecordEditor) submit() tea.Cmd {
	rec := e.Record()
	if err := rec.Validate(); err != nil {
		e.err = err.Error()
		return nil
	}
	e.err = ""
	e.saving = true
	id, save, created := e.id, e.save, rec.ID == ""
	return func() tea.Msg {
		stored, err := save(rec)
		return recordSavedMsg{EditorID: id, Record: stored, Created: created, Err: err}
	}
}

// View implements rowaction.Editor.
func (e *RecordEditor) View() string {
	st := currentStyles()
	heading := "Edit record"
	if e.original.ID == "" {
		heading = "New " + e.original.Collection + " record"
	}

	lines := []string{st.title.Render(heading), ""}
	if e.preview {
		lines = append(lines, st.muted.Render("Preview"), e.render(e.Record().Body))
	} else {
		lines = append(lines,
			st.muted.Render("Title"), e.title.View(), "",
			st.muted.Render("Body"), e.body.View(),
		)
	}
	lines = append(lines, "")
	switch {
	case e.saving:
		lines = append(lines, st.muted.Render("Saving..."))
	case e.err != "":
		lines = append(lines, st.errorText.Render("⚠ "+e.err))
	default:
		lines = append(lines, keyPill(st, "^s", "Save")+"  "+keyPill(st, "^p", "Preview")+"  "+keyPill(st, "esc", "Close"))
	}
	return st.overlay.Width(e.width).Render(lipgloss.JoinVertical(lipgloss.Left, lines...))
}
