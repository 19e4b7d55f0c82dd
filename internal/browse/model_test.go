package browse

import (
	"io"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/ndisidore/smithy/pkg/blueprint"
)

const _library = `
cat {
    physic-body mass=50
    has-hp start-hp=10
}
housecat inherit="cat" {
    name "Macy"
}
stray inherit="dog" {
    name "Rex"
}
`

func testLibrary(t *testing.T) *blueprint.Library {
	t.Helper()
	lib := blueprint.NewLibrary()
	require.NoError(t, lib.LoadString(_library, "pets.kdl"))
	return lib
}

func keys(s ...string) []tea.Msg {
	msgs := make([]tea.Msg, 0, len(s))
	for _, k := range s {
		switch k {
		case "enter":
			msgs = append(msgs, tea.KeyMsg{Type: tea.KeyEnter})
		case "esc":
			msgs = append(msgs, tea.KeyMsg{Type: tea.KeyEsc})
		case "up":
			msgs = append(msgs, tea.KeyMsg{Type: tea.KeyUp})
		case "down":
			msgs = append(msgs, tea.KeyMsg{Type: tea.KeyDown})
		default:
			msgs = append(msgs, tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(k)})
		}
	}
	return msgs
}

func TestModelUpdate(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name           string
		msgs           []tea.Msg
		wantCursor     int
		wantInspecting bool
		wantScroll     int
	}{
		{name: "starts at top", wantCursor: 0},
		{name: "down moves cursor", msgs: keys("down"), wantCursor: 1},
		{name: "vim keys", msgs: keys("j", "j", "k"), wantCursor: 1},
		{name: "cursor stops at bottom", msgs: keys("down", "down", "down", "down"), wantCursor: 2},
		{name: "cursor stops at top", msgs: keys("up"), wantCursor: 0},
		{name: "enter inspects", msgs: keys("down", "enter"), wantCursor: 1, wantInspecting: true},
		{name: "scroll in detail", msgs: keys("enter", "down", "down"), wantInspecting: true, wantScroll: 2},
		{name: "scroll stops at last line", msgs: keys("enter", "j", "j", "j", "j", "j", "j"), wantInspecting: true, wantScroll: 3},
		{name: "esc returns to list", msgs: keys("down", "enter", "esc", "down"), wantCursor: 2},
		{name: "window size", msgs: []tea.Msg{tea.WindowSizeMsg{Width: 80, Height: 24}}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			m := newModel(testLibrary(t), true)
			for _, msg := range tt.msgs {
				_, cmd := m.Update(msg)
				assert.Nil(t, cmd)
			}
			assert.Equal(t, tt.wantCursor, m.cursor)
			assert.Equal(t, tt.wantInspecting, m.inspecting)
			assert.Equal(t, tt.wantScroll, m.scroll)
		})
	}
}

func TestModelQuit(t *testing.T) {
	t.Parallel()

	for _, msg := range []tea.Msg{keys("q")[0], tea.KeyMsg{Type: tea.KeyCtrlC}} {
		m := newModel(testLibrary(t), true)
		_, cmd := m.Update(msg)
		require.NotNil(t, cmd)
		assert.Equal(t, tea.Quit(), cmd())
	}
}

func TestModelView(t *testing.T) {
	t.Parallel()

	t.Run("list", func(t *testing.T) {
		t.Parallel()

		m := newModel(testLibrary(t), true)
		view := m.View()
		assert.Contains(t, view, "Blueprints (3)")
		assert.Contains(t, view, "> [ok]   cat")
		assert.Contains(t, view, "  [ok]   housecat < cat")
		assert.Contains(t, view, "  [FAIL] stray < dog")
	})

	t.Run("emoji icons", func(t *testing.T) {
		t.Parallel()

		m := newModel(testLibrary(t), false)
		assert.Contains(t, m.View(), "❌ stray")
	})

	t.Run("detail", func(t *testing.T) {
		t.Parallel()

		m := newModel(testLibrary(t), true)
		for _, msg := range keys("down", "enter") {
			m.Update(msg)
		}
		view := m.View()
		assert.Contains(t, view, "Blueprint: housecat")
		assert.Contains(t, view, "inherits: cat")
		assert.Contains(t, view, "digest:   sha256:")
		assert.Contains(t, view, "// from cat\nphysic-body mass=50\n")
		assert.Contains(t, view, "// from housecat\nname \"Macy\"\n")
	})

	t.Run("detail of failed blueprint", func(t *testing.T) {
		t.Parallel()

		m := newModel(testLibrary(t), true)
		for _, msg := range keys("down", "down", "enter") {
			m.Update(msg)
		}
		assert.Contains(t, m.View(), `blueprint "stray" inherits from "dog", which was not found`)
	})

	t.Run("detail is clipped to the window", func(t *testing.T) {
		t.Parallel()

		m := newModel(testLibrary(t), true)
		for _, msg := range append([]tea.Msg{tea.WindowSizeMsg{Width: 80, Height: 7}}, keys("enter")...) {
			m.Update(msg)
		}
		view := m.View()
		assert.Contains(t, view, "physic-body mass=50")
		assert.NotContains(t, view, "has-hp")
	})
}

func TestModelEmptyLibrary(t *testing.T) {
	t.Parallel()

	m := newModel(blueprint.NewLibrary(), true)
	for _, msg := range keys("down", "enter", "up") {
		m.Update(msg)
	}
	assert.False(t, m.inspecting)
	assert.Contains(t, m.View(), "Blueprints (0)")
}

func TestBrowserRun(t *testing.T) {
	t.Parallel()

	b := &Browser{
		Boring: true,
		Options: []tea.ProgramOption{
			tea.WithInput(strings.NewReader("q")),
			tea.WithOutput(io.Discard),
		},
	}

	lib := testLibrary(t)
	done := make(chan error, 1)
	go func() { done <- b.Run(t.Context(), lib) }()

	select {
	case err := <-done:
		require.NoError(t, err)
	case <-time.After(3 * time.Second):
		t.Fatal("Run did not return within timeout")
	}
}
