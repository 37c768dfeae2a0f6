package picker

import (
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func runes(s string) tea.KeyMsg {
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

func press(t *testing.T, m model, keys ...tea.KeyMsg) (model, tea.Cmd) {
	t.Helper()
	var cmd tea.Cmd
	for _, k := range keys {
		var next tea.Model
		next, cmd = m.Update(k)
		m = next.(model)
	}
	return m, cmd
}

func testFiles() []string {
	return []string{"in/a.xlsx", "in/b.xlsx", "in/c.xlsx"}
}

func TestPicker_SelectAndConfirm(t *testing.T) {
	m := initialModel(testFiles(), Config{})
	assert.Equal(t, DefaultPageSize, m.pageSize)

	m, _ = press(t, m,
		tea.KeyMsg{Type: tea.KeySpace},
		runes("j"),
		runes("j"),
		tea.KeyMsg{Type: tea.KeySpace},
	)
	assert.Equal(t, 2, m.cursor)
	assert.Equal(t, []string{"in/a.xlsx", "in/c.xlsx"}, m.chosen())

	m, _ = press(t, m, tea.KeyMsg{Type: tea.KeyEnter})
	assert.Equal(t, stateConfirm, m.state)
	assert.Contains(t, m.View(), "c.xlsx")

	m, cmd := press(t, m, runes("y"))
	assert.True(t, m.accepted)
	require.NotNil(t, cmd)
	assert.Equal(t, tea.Quit(), cmd())
}

func TestPicker_ToggleAll(t *testing.T) {
	m := initialModel(testFiles(), Config{PageSize: 2})

	m, _ = press(t, m, runes("a"))
	assert.Equal(t, testFiles(), m.chosen())

	m, _ = press(t, m, runes("a"))
	assert.Empty(t, m.chosen())
}

func TestPicker_EnterNeedsSelection(t *testing.T) {
	m := initialModel(testFiles(), Config{})
	m, _ = press(t, m, tea.KeyMsg{Type: tea.KeyEnter})
	assert.Equal(t, stateSelect, m.state)
}

func TestPicker_BackFromConfirm(t *testing.T) {
	m := initialModel(testFiles(), Config{})
	m, _ = press(t, m, tea.KeyMsg{Type: tea.KeySpace}, tea.KeyMsg{Type: tea.KeyEnter}, tea.KeyMsg{Type: tea.KeyEsc})
	assert.Equal(t, stateSelect, m.state)

	m, _ = press(t, m, tea.KeyMsg{Type: tea.KeyEnter}, runes("n"))
	assert.Equal(t, stateSelect, m.state)
	assert.Len(t, m.chosen(), 1)
}

func TestPicker_Quit(t *testing.T) {
	m := initialModel(testFiles(), Config{})
	m, cmd := press(t, m, tea.KeyMsg{Type: tea.KeySpace}, runes("q"))
	assert.True(t, m.quitting)
	assert.False(t, m.accepted)
	require.NotNil(t, cmd)
	assert.Empty(t, m.View())
}

func TestPicker_CursorBounds(t *testing.T) {
	m := initialModel(testFiles(), Config{PageSize: 2})
	m, _ = press(t, m, runes("k"))
	assert.Equal(t, 0, m.cursor)

	m, _ = press(t, m, runes("j"), runes("j"), runes("j"))
	assert.Equal(t, 2, m.cursor)
	assert.Equal(t, 1, m.page())
	assert.Contains(t, m.View(), "Page 2/2")
}

func TestPicker_CopiesDoNotShareSelection(t *testing.T) {
	m := initialModel(testFiles(), Config{})
	before := m
	m, _ = press(t, m, tea.KeyMsg{Type: tea.KeySpace})
	assert.Len(t, m.chosen(), 1)
	assert.Empty(t, before.chosen())
}

func TestDisplayName(t *testing.T) {
	assert.Equal(t, "short.xlsx", displayName("short.xlsx", 80))
	long := "very/long/directory/name/that/keeps/going/report.xlsx"
	got := displayName(long, 30)
	assert.Len(t, got, 22)
	assert.True(t, len(got) < len(long))
	assert.Equal(t, "...", got[:3])
}

func TestRun_NoFiles(t *testing.T) {
	_, err := Run(nil, Config{})
	assert.Error(t, err)
}
