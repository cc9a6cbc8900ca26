package main

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/fvrmatteo/DEXParse/dex"
	"github.com/fvrmatteo/DEXParse/loader"
)

var (
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#FAFAFA")).
			Background(lipgloss.Color("#7D56F4")).
			Padding(0, 1)

	indexStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#87CEEB"))

	stringStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#98FB98"))

	selectedStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FAFAFA")).
			Background(lipgloss.Color("#7D56F4"))

	errorStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FF6B6B"))

	helpStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#666666"))
)

// Rows taken by the title, filter, blank lines and help.
const chromeRows = 7

type browserModel struct {
	err      error
	file     *dex.File
	filename string
	cfg      config
	filter   textinput.Model
	visible  []int
	selected int
	top      int
	height   int
	width    int
	state    browserState
}

type browserState int

const (
	stateBrowse browserState = iota
	stateFilter
	stateDetail
)

type loadedMsg struct {
	err  error
	file *dex.File
}

func newBrowserModel(filename string, cfg config) *browserModel {
	ti := textinput.New()
	ti.Prompt = "/ "
	ti.Placeholder = "filter"
	ti.Width = 40
	return &browserModel{
		filename: filename,
		cfg:      cfg,
		filter:   ti,
		height:   24,
		width:    cfg.width,
		state:    stateBrowse,
	}
}

func (m *browserModel) Init() tea.Cmd {
	return m.loadFile
}

func (m *browserModel) loadFile() tea.Msg {
	data, err := loader.Load(m.filename)
	if err != nil {
		return loadedMsg{err: err}
	}
	if m.cfg.fix {
		if err := dex.Repair(data); err != nil {
			return loadedMsg{err: err}
		}
	}
	f, err := dex.ParseWithOptions(data, m.cfg.opts)
	if f == nil {
		return loadedMsg{err: err}
	}
	// Lenient mode keeps the file; malformed entries show their own error.
	return loadedMsg{file: f}
}

func (m *browserModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.height = msg.Height
		m.width = msg.Width
		m.scroll()

	case loadedMsg:
		m.err = msg.err
		m.file = msg.file
		m.applyFilter()

	case tea.KeyMsg:
		if msg.String() == "ctrl+c" {
			return m, tea.Quit
		}
		if m.state == stateFilter {
			return m.updateFilter(msg)
		}

		switch msg.String() {
		case "q":
			return m, tea.Quit

		case "up", "k":
			if m.state == stateBrowse && m.selected > 0 {
				m.selected--
				m.scroll()
			}

		case "down", "j":
			if m.state == stateBrowse && m.selected < len(m.visible)-1 {
				m.selected++
				m.scroll()
			}

		case "pgdown":
			if m.state == stateBrowse {
				m.selected = min(m.selected+m.pageSize(), max(len(m.visible)-1, 0))
				m.scroll()
			}

		case "pgup":
			if m.state == stateBrowse {
				m.selected = max(m.selected-m.pageSize(), 0)
				m.scroll()
			}

		case "/":
			if m.state == stateBrowse {
				m.state = stateFilter
				return m, m.filter.Focus()
			}

		case "enter":
			switch m.state {
			case stateBrowse:
				if len(m.visible) > 0 {
					m.state = stateDetail
				}
			case stateDetail:
				m.state = stateBrowse
			}

		case "esc":
			switch m.state {
			case stateDetail:
				m.state = stateBrowse
			case stateBrowse:
				if m.filter.Value() != "" {
					m.filter.SetValue("")
					m.applyFilter()
				}
			}
		}
	}
	return m, nil
}

func (m *browserModel) updateFilter(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "enter", "esc":
		m.filter.Blur()
		m.state = stateBrowse
		return m, nil
	}
	var cmd tea.Cmd
	m.filter, cmd = m.filter.Update(msg)
	m.applyFilter()
	return m, cmd
}

// applyFilter recomputes the visible indices from the filter text.
func (m *browserModel) applyFilter() {
	m.visible = m.visible[:0]
	if m.file == nil {
		return
	}
	q := m.filter.Value()
	for i, s := range m.file.Strings {
		if q == "" || (s.Err == nil && strings.Contains(s.Text, q)) {
			m.visible = append(m.visible, i)
		}
	}
	m.selected = 0
	m.top = 0
}

func (m *browserModel) pageSize() int {
	return max(m.height-chromeRows, 1)
}

// scroll keeps the selection inside the window.
func (m *browserModel) scroll() {
	page := m.pageSize()
	if m.selected < m.top {
		m.top = m.selected
	}
	if m.selected >= m.top+page {
		m.top = m.selected - page + 1
	}
}

func (m *browserModel) current() (dex.DecodedString, bool) {
	if m.file == nil || m.selected >= len(m.visible) {
		return dex.DecodedString{}, false
	}
	return m.file.Strings[m.visible[m.selected]], true
}

func (m *browserModel) View() string {
	if m.err != nil {
		return errorStyle.Render(fmt.Sprintf("Error: %v\n\nPress q to quit.", m.err))
	}
	if m.file == nil {
		return "Loading " + m.filename + "..."
	}

	var b strings.Builder
	b.WriteString(titleStyle.Render("DEX Strings"))
	b.WriteString(" ")
	b.WriteString(m.filename)
	b.WriteString(fmt.Sprintf(" (version %s, %d strings)\n\n", m.file.Header.Version(), len(m.file.Strings)))

	if m.state == stateDetail {
		m.viewDetail(&b)
		return b.String()
	}

	b.WriteString(m.filter.View())
	b.WriteString("\n\n")

	if len(m.visible) == 0 {
		b.WriteString(helpStyle.Render("no matching strings"))
		b.WriteString("\n")
	}
	end := min(m.top+m.pageSize(), len(m.visible))
	for row := m.top; row < end; row++ {
		s := m.file.Strings[m.visible[row]]
		line := m.formatRow(s)
		if row == m.selected {
			b.WriteString(selectedStyle.Render("> " + line))
		} else {
			b.WriteString("  " + line)
		}
		b.WriteString("\n")
	}

	b.WriteString("\n")
	if m.state == stateFilter {
		b.WriteString(helpStyle.Render("type to filter • enter/esc done"))
	} else {
		b.WriteString(helpStyle.Render("↑/↓ select • / filter • enter details • q quit"))
	}
	return b.String()
}

func (m *browserModel) formatRow(s dex.DecodedString) string {
	idx := indexStyle.Render(fmt.Sprintf("%6d", s.Index))
	if s.Err != nil {
		return idx + " " + errorStyle.Render("malformed")
	}
	return idx + " " + stringStyle.Render(truncate(fmt.Sprintf("%q", s.Text), m.width-12))
}

func (m *browserModel) viewDetail(b *strings.Builder) {
	s, ok := m.current()
	if !ok {
		return
	}
	fmt.Fprintf(b, "%s %d\n", indexStyle.Render("index     "), s.Index)
	fmt.Fprintf(b, "%s 0x%x\n", indexStyle.Render("offset    "), s.Off)
	fmt.Fprintf(b, "%s %d\n", indexStyle.Render("utf16_size"), s.UTF16Size)
	if s.Err != nil {
		b.WriteString("\n")
		b.WriteString(errorStyle.Render(fmt.Sprintf("Error: %v", s.Err)))
	} else {
		fmt.Fprintf(b, "%s % x\n\n", indexStyle.Render("mutf-8    "), dex.EncodeMUTF8(s.Text))
		b.WriteString(stringStyle.Render(s.Text))
	}
	b.WriteString("\n\n")
	b.WriteString(helpStyle.Render("enter/esc back • q quit"))
}

func runInteractive(filename string, cfg config) error {
	p := tea.NewProgram(newBrowserModel(filename, cfg), tea.WithAltScreen())
	_, err := p.Run()
	return err
}
