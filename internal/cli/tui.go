package cli

import (
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/matzehuels/dashgrid/pkg/dashboard"
	"github.com/matzehuels/dashgrid/pkg/engine"
	"github.com/matzehuels/dashgrid/pkg/grid"
)

// Editor styles
var (
	editorHelpStyle   = lipgloss.NewStyle().Foreground(colorDim)
	editorStatusStyle = lipgloss.NewStyle().Foreground(colorGray)
	editorRevertStyle = lipgloss.NewStyle().Foreground(colorYellow)
	editorErrorStyle  = lipgloss.NewStyle().Foreground(colorRed)
)

// =============================================================================
// EditorModel - Interactive layout editing
// =============================================================================

// EditorModel is the bubbletea model of the edit command. Keyboard input
// drives the same drag and resize sessions a pointer would: m or r starts a
// gesture on the selected item, arrow keys emit frames, enter drops and esc
// cancels.
type EditorModel struct {
	Engine *engine.Engine
	Title  string

	// Save writes the current snapshot. nil disables the s key.
	Save func(dashboard.Snapshot) error

	cursor  int // index into read order
	session *engine.DragSession
	frame   grid.Rect // last proposed rectangle of the open gesture
	status  string
	err     error
	dirty   bool
}

// NewEditorModel creates an editor over e.
func NewEditorModel(e *engine.Engine, title string, save func(dashboard.Snapshot) error) EditorModel {
	return EditorModel{Engine: e, Title: title, Save: save}
}

func (m EditorModel) Init() tea.Cmd {
	return nil
}

func (m EditorModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	key, ok := msg.(tea.KeyMsg)
	if !ok {
		return m, nil
	}
	m.err = nil
	if m.session != nil {
		return m.updateGesture(key.String())
	}
	return m.updateIdle(key.String())
}

// updateIdle handles keys while no gesture is open.
func (m EditorModel) updateIdle(key string) (tea.Model, tea.Cmd) {
	e := m.Engine
	switch key {
	case "q", "ctrl+c":
		return m, tea.Quit
	case "tab", "j", "down", "right":
		m.cursor = m.wrap(m.cursor + 1)
	case "shift+tab", "k", "up", "left":
		m.cursor = m.wrap(m.cursor - 1)
	case "m", "r":
		id := m.selected()
		if id == "" {
			return m, nil
		}
		start := e.StartDrag
		if key == "r" {
			start = e.StartResize
		}
		s, err := start(id)
		if err != nil {
			m.err = err
			return m, nil
		}
		m.session = s
		m.frame = s.StartRect
		m.status = fmt.Sprintf("%s %s", s.Kind, id)
	case "u":
		m.history("undo", e.Undo())
	case "ctrl+r":
		m.history("redo", e.Redo())
	case "a":
		if _, err := e.AutoArrange(""); err != nil {
			m.err = err
			return m, nil
		}
		m.dirty = true
		m.status = "arranged (" + e.Config().Arrange.Policy + ")"
	case "n":
		it, err := e.AddItem(grid.Item{W: 4, H: 2}, dashboard.Component{Type: dashboard.TypeChart})
		if err != nil {
			m.err = err
			return m, nil
		}
		m.dirty = true
		m.cursor = m.indexOf(it.ID)
		m.status = "added " + it.ID
	case "d":
		id := m.selected()
		if id == "" {
			return m, nil
		}
		if err := e.RemoveItem(id); err != nil {
			m.err = err
			return m, nil
		}
		m.dirty = true
		m.cursor = m.wrap(m.cursor)
		m.status = "removed " + id
	case "s":
		if m.Save == nil {
			return m, nil
		}
		if err := m.Save(e.Snapshot()); err != nil {
			m.err = err
			return m, nil
		}
		m.dirty = false
		m.status = "saved"
	}
	return m, nil
}

// updateGesture handles keys while a drag or resize is open.
func (m EditorModel) updateGesture(key string) (tea.Model, tea.Cmd) {
	e := m.Engine
	dx, dy := 0, 0
	switch key {
	case "left", "h":
		dx = -1
	case "right", "l":
		dx = 1
	case "up", "k":
		dy = -1
	case "down", "j":
		dy = 1
	case "enter":
		out, err := e.End(m.session, m.frame)
		m.session = nil
		if err != nil {
			m.err = err
			return m, nil
		}
		m.dirty = m.dirty || out.Recorded
		m.status = describe("dropped", out)
		return m, nil
	case "esc", "ctrl+c":
		_, err := e.Cancel(m.session)
		m.session = nil
		m.err = err
		m.status = "cancelled"
		return m, nil
	default:
		return m, nil
	}

	next := m.frame
	if m.session.Kind == engine.GestureResize {
		next = next.Resize(max(next.W+dx, 1), max(next.H+dy, 1))
	} else {
		next = next.Translate(next.X+dx, next.Y+dy)
	}
	out, err := e.Move(m.session, next)
	if err != nil {
		m.err = err
		return m, nil
	}
	m.frame = out.Rect
	m.status = describe(string(m.session.Kind), out)
	return m, nil
}

func (m *EditorModel) history(op string, moved bool) {
	if !moved {
		m.status = "nothing to " + op
		return
	}
	m.dirty = true
	m.cursor = m.wrap(m.cursor)
	m.status = op
}

func describe(verb string, out engine.Outcome) string {
	switch {
	case out.Reverted:
		return verb + " " + out.Rect.String() + editorRevertStyle.Render(" reverted")
	case len(out.Pushed) > 0:
		return fmt.Sprintf("%s %s pushed %s", verb, out.Rect, strings.Join(out.Pushed, ","))
	case out.Collided:
		return verb + " " + out.Rect.String() + editorRevertStyle.Render(" collides")
	}
	return verb + " " + out.Rect.String()
}

// selected returns the id of the item under the cursor.
func (m EditorModel) selected() string {
	l := m.Engine.Layout()
	order := l.ReadOrder()
	if len(order) == 0 {
		return ""
	}
	return l[order[m.wrap(m.cursor)]].ID
}

func (m EditorModel) indexOf(id string) int {
	l := m.Engine.Layout()
	for pos, i := range l.ReadOrder() {
		if l[i].ID == id {
			return pos
		}
	}
	return 0
}

func (m EditorModel) wrap(i int) int {
	n := len(m.Engine.Layout())
	if n == 0 {
		return 0
	}
	return ((i % n) + n) % n
}

func (m EditorModel) View() string {
	var b strings.Builder

	title := m.Title
	if m.dirty {
		title += " *"
	}
	b.WriteString(StyleTitle.Render(title))
	b.WriteString("\n\n")

	l := m.Engine.Layout()
	focus := m.selected()
	if m.session != nil {
		focus = m.session.ItemID
	}
	b.WriteString(renderGrid(l, m.Engine.Columns(), focus))
	b.WriteString("\n")
	b.WriteString(statsLine(l))
	b.WriteString("\n")

	switch {
	case m.err != nil:
		b.WriteString(editorErrorStyle.Render(iconError + " " + m.err.Error()))
	case focus != "":
		it, _ := l.Find(focus)
		b.WriteString(editorStatusStyle.Render(fmt.Sprintf("%s %s  %s", iconInfo, focus, it.Rect())))
		if m.status != "" {
			b.WriteString(editorStatusStyle.Render("  " + m.status))
		}
	default:
		b.WriteString(editorStatusStyle.Render(iconInfo + " " + m.status))
	}
	b.WriteString("\n\n")

	if m.session != nil {
		b.WriteString(editorHelpStyle.Render("←↑↓→ move/resize  ⏎ drop  esc cancel"))
	} else {
		help := "tab select  m move  r resize  n add  d delete  a arrange  u undo  ^r redo"
		if m.Save != nil {
			help += "  s save"
		}
		b.WriteString(editorHelpStyle.Render(help + "  q quit"))
	}
	b.WriteString("\n")
	return b.String()
}
