// Package picker is a terminal UI for choosing which workbooks to stamp.
package picker

import (
	"fmt"
	"math"
	"path/filepath"
	"sort"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

// DefaultPageSize is used when Config.PageSize is not positive.
const DefaultPageSize = 15

type state int

const (
	stateSelect state = iota
	stateConfirm
)

// Config holds picker display settings
type Config struct {
	PageSize int
}

type model struct {
	files    []string
	selected map[int]bool

	state    state
	cursor   int
	pageSize int

	accepted bool
	quitting bool

	width int

	titleStyle    lipgloss.Style
	cursorStyle   lipgloss.Style
	normalStyle   lipgloss.Style
	selectedStyle lipgloss.Style
	helpStyle     lipgloss.Style
	progressStyle lipgloss.Style
}

func initialModel(files []string, cfg Config) model {
	pageSize := cfg.PageSize
	if pageSize <= 0 {
		pageSize = DefaultPageSize
	}
	return model{
		files:    files,
		selected: make(map[int]bool),
		state:    stateSelect,
		pageSize: pageSize,

		titleStyle: lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("205")),
		cursorStyle: lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("170")).
			Background(lipgloss.Color("235")).
			Padding(0, 1),
		normalStyle: lipgloss.NewStyle().
			Foreground(lipgloss.Color("252")).
			Padding(0, 1),
		selectedStyle: lipgloss.NewStyle().
			Foreground(lipgloss.Color("40")).
			Padding(0, 1),
		helpStyle: lipgloss.NewStyle().
			Foreground(lipgloss.Color("241")),
		progressStyle: lipgloss.NewStyle().
			Foreground(lipgloss.Color("205")).
			Bold(true),
	}
}

func (m model) Init() tea.Cmd {
	return nil
}

func (m model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
	case tea.KeyMsg:
		switch m.state {
		case stateSelect:
			return m.updateSelect(msg)
		case stateConfirm:
			return m.updateConfirm(msg)
		}
	}
	return m, nil
}

func (m model) updateSelect(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "ctrl+c", "q":
		m.quitting = true
		return m, tea.Quit

	case "up", "k":
		if m.cursor > 0 {
			m.cursor--
		}

	case "down", "j":
		if m.cursor < len(m.files)-1 {
			m.cursor++
		}

	case " ":
		if m.cursor < len(m.files) {
			m.toggle(m.cursor)
		}

	case "a":
		// Select everything unless everything is already selected.
		all := len(m.selected) == len(m.files)
		m.selected = make(map[int]bool)
		if !all {
			for i := range m.files {
				m.selected[i] = true
			}
		}

	case "enter":
		if len(m.selected) > 0 {
			m.state = stateConfirm
		}
	}
	return m, nil
}

func (m model) updateConfirm(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "ctrl+c", "q":
		m.quitting = true
		return m, tea.Quit
	case "y":
		m.accepted = true
		return m, tea.Quit
	case "n", "esc":
		m.state = stateSelect
	}
	return m, nil
}

// toggle flips the selection of a file. A fresh map keeps copies of the
// model independent.
func (m *model) toggle(idx int) {
	selected := make(map[int]bool, len(m.selected)+1)
	for k := range m.selected {
		selected[k] = true
	}
	if selected[idx] {
		delete(selected, idx)
	} else {
		selected[idx] = true
	}
	m.selected = selected
}

// chosen returns the selected files in list order
func (m model) chosen() []string {
	idx := make([]int, 0, len(m.selected))
	for i := range m.selected {
		idx = append(idx, i)
	}
	sort.Ints(idx)

	files := make([]string, 0, len(idx))
	for _, i := range idx {
		files = append(files, m.files[i])
	}
	return files
}

func (m model) page() int {
	return m.cursor / m.pageSize
}

func (m model) View() string {
	if m.quitting || m.accepted {
		return ""
	}
	switch m.state {
	case stateSelect:
		return m.viewSelect()
	case stateConfirm:
		return m.viewConfirm()
	}
	return ""
}

func (m model) viewSelect() string {
	var b strings.Builder

	b.WriteString(m.titleStyle.Render("Select workbooks to stamp"))
	b.WriteString("\n\n")

	progress := fmt.Sprintf("Selected: %d/%d", len(m.selected), len(m.files))
	b.WriteString(m.progressStyle.Render(progress))
	b.WriteString("\n")

	totalPages := int(math.Ceil(float64(len(m.files)) / float64(m.pageSize)))
	if totalPages == 0 {
		totalPages = 1
	}
	b.WriteString(m.helpStyle.Render(fmt.Sprintf("Page %d/%d", m.page()+1, totalPages)))
	b.WriteString("\n\n")

	start := m.page() * m.pageSize
	end := start + m.pageSize
	if end > len(m.files) {
		end = len(m.files)
	}

	for i := start; i < end; i++ {
		mark := "[ ]"
		style := m.normalStyle
		if m.selected[i] {
			mark = "[x]"
			style = m.selectedStyle
		}
		if i == m.cursor {
			style = m.cursorStyle
		}
		b.WriteString(style.Render(mark + " " + displayName(m.files[i], m.width)))
		b.WriteString("\n")
	}

	b.WriteString("\n")
	help := "↑↓: navigate | Space: toggle | a: all | Enter: continue | q: quit"
	b.WriteString(m.helpStyle.Render(help))

	return b.String()
}

func (m model) viewConfirm() string {
	var b strings.Builder

	b.WriteString(m.titleStyle.Render("Stamp the selected workbooks?"))
	b.WriteString("\n\n")

	for _, f := range m.chosen() {
		b.WriteString("  " + filepath.Base(f) + "\n")
	}
	b.WriteString(fmt.Sprintf("\nTotal: %d\n\n", len(m.selected)))

	b.WriteString(m.helpStyle.Render("y to confirm, n/Esc to go back"))

	return b.String()
}

// displayName shortens long paths to fit the terminal width.
func displayName(path string, width int) string {
	limit := width - 8
	if width == 0 || limit < 10 || len(path) <= limit {
		return path
	}
	return "..." + path[len(path)-limit+3:]
}

// Run shows the picker and returns the files the user confirmed. Quitting
// returns no files and no error.
func Run(files []string, cfg Config) ([]string, error) {
	if len(files) == 0 {
		return nil, fmt.Errorf("no workbooks to choose from")
	}

	p := tea.NewProgram(initialModel(files, cfg), tea.WithAltScreen())
	finalModel, err := p.Run()
	if err != nil {
		return nil, fmt.Errorf("error running picker: %w", err)
	}

	final := finalModel.(model)
	if !final.accepted {
		return nil, nil
	}
	return final.chosen(), nil
}
