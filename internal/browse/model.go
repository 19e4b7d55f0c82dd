package browse

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/ndisidore/smithy/internal/report"
	"github.com/ndisidore/smithy/pkg/blueprint"
	"github.com/ndisidore/smithy/pkg/document"
)

type status int

const (
	statusResolved status = iota
	statusFailed
)

var _emojiIcons = map[status]string{
	statusResolved: "\u2705",
	statusFailed:   "\u274c",
}

var _boringIcons = map[status]string{
	statusResolved: "[ok]  ",
	statusFailed:   "[FAIL]",
}

// item is one blueprint with its resolved source pre-rendered.
type item struct {
	entry report.Entry
	lines []string
}

func (it *item) status() status {
	if it.entry.Err != nil {
		return statusFailed
	}
	return statusResolved
}

// model lists the blueprints of a library and shows the resolved
// components of the selected one.
type model struct {
	items      []item
	cursor     int
	inspecting bool
	scroll     int
	height     int
	boring     bool
}

func newModel(lib *blueprint.Library, boring bool) *model {
	r := report.Summarize(lib)
	m := &model{boring: boring, items: make([]item, 0, len(r.Entries))}
	for _, e := range r.Entries {
		it := item{entry: e}
		if e.Err == nil {
			it.lines = render(lib, e.Name)
		}
		m.items = append(m.items, it)
	}
	return m
}

// render formats each resolved component, preceded by a comment naming the
// blueprint it came from.
func render(lib *blueprint.Library, name string) []string {
	bp, err := lib.Lookup(name)
	if err != nil {
		return []string{_errorStyle.Render(err.Error())}
	}
	var lines []string
	for i, n := range bp.Components {
		var buf bytes.Buffer
		if err := document.Format(&buf, []*document.Node{n}); err != nil {
			lines = append(lines, _errorStyle.Render(err.Error()))
			continue
		}
		lines = append(lines, _originStyle.Render("// from "+bp.Origins[i]))
		lines = append(lines, strings.Split(strings.TrimRight(buf.String(), "\n"), "\n")...)
	}
	return lines
}

// Init implements tea.Model.
func (*model) Init() tea.Cmd {
	return nil
}

// Update implements tea.Model.
func (m *model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.height = msg.Height
	case tea.KeyMsg:
		switch msg.String() {
		case "ctrl+c", "q":
			return m, tea.Quit
		case "up", "k":
			m.move(-1)
		case "down", "j":
			m.move(1)
		case "enter", "right", "l":
			if len(m.items) > 0 {
				m.inspecting = true
				m.scroll = 0
			}
		case "esc", "left", "h", "backspace":
			m.inspecting = false
		}
	}
	return m, nil
}

// move shifts the cursor in the list, or scrolls the detail view.
func (m *model) move(delta int) {
	if m.inspecting {
		m.scroll = max(0, min(m.scroll+delta, len(m.items[m.cursor].lines)-1))
		return
	}
	if len(m.items) == 0 {
		return
	}
	m.cursor = max(0, min(m.cursor+delta, len(m.items)-1))
}

var (
	_headerStyle = lipgloss.NewStyle().Bold(true)
	_cursorStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("6")) // cyan
	_originStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("8")) // dim
	_errorStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("1")) // red
	_helpStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("8"))
)

// View implements tea.Model.
func (m *model) View() string {
	if m.inspecting {
		return m.detailView()
	}
	return m.listView()
}

func (m *model) listView() string {
	var b strings.Builder
	_, _ = b.WriteString(_headerStyle.Render(fmt.Sprintf("Blueprints (%d)", len(m.items))))
	_ = b.WriteByte('\n')

	icons := _emojiIcons
	if m.boring {
		icons = _boringIcons
	}
	for i := range m.items {
		it := &m.items[i]
		line := fmt.Sprintf("%s %s", icons[it.status()], it.entry.Name)
		if it.entry.Parent != "" {
			line += " < " + it.entry.Parent
		}
		if i == m.cursor {
			_, _ = b.WriteString(_cursorStyle.Render("> " + line))
		} else {
			_, _ = b.WriteString("  " + line)
		}
		_ = b.WriteByte('\n')
	}

	_ = b.WriteByte('\n')
	_, _ = b.WriteString(_helpStyle.Render("up/down move, enter inspect, q quit"))
	return b.String()
}

func (m *model) detailView() string {
	it := &m.items[m.cursor]
	var b strings.Builder
	_, _ = b.WriteString(_headerStyle.Render("Blueprint: " + it.entry.Name))
	_ = b.WriteByte('\n')

	if it.entry.Err != nil {
		_, _ = b.WriteString(_errorStyle.Render(it.entry.Err.Error()))
		_ = b.WriteByte('\n')
	} else {
		if it.entry.Parent != "" {
			_, _ = fmt.Fprintf(&b, "inherits: %s\n", it.entry.Parent)
		}
		_, _ = fmt.Fprintf(&b, "digest:   %s\n\n", it.entry.Digest)

		lines := it.lines[m.scroll:]
		// header, digest and help take five rows
		if m.height > 5 && len(lines) > m.height-5 {
			lines = lines[:m.height-5]
		}
		for _, l := range lines {
			_, _ = b.WriteString(l)
			_ = b.WriteByte('\n')
		}
	}

	_ = b.WriteByte('\n')
	_, _ = b.WriteString(_helpStyle.Render("up/down scroll, esc back, q quit"))
	return b.String()
}
