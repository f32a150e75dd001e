package main

import (
	"encoding/hex"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/wippyai/bitstruct/codec"
	"github.com/wippyai/bitstruct/schema"
)

var (
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#FAFAFA")).
			Background(lipgloss.Color("#7D56F4")).
			Padding(0, 1)

	selectedStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FAFAFA")).
			Background(lipgloss.Color("#7D56F4"))

	valueStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#90EE90"))

	errorStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FF6B6B"))

	helpStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#666666"))
)

type modelState int

const (
	stateBrowse modelState = iota
	stateEdit
)

type exploreModel struct {
	err      error
	layout   *schema.Layout
	buf      []byte
	input    textinput.Model
	selected int
	state    modelState
}

func newExploreModel(l *schema.Layout, buf []byte) *exploreModel {
	ti := textinput.New()
	ti.Width = 24
	return &exploreModel{
		layout: l,
		buf:    buf,
		input:  ti,
		state:  stateBrowse,
	}
}

func (m *exploreModel) Init() tea.Cmd {
	return nil
}

func (m *exploreModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	key, ok := msg.(tea.KeyMsg)
	if !ok {
		return m, nil
	}

	if m.state == stateEdit {
		switch key.String() {
		case "ctrl+c":
			return m, tea.Quit
		case "enter":
			m.commit()
			return m, nil
		case "esc":
			m.state = stateBrowse
			m.input.Blur()
			return m, nil
		}
		var cmd tea.Cmd
		m.input, cmd = m.input.Update(msg)
		return m, cmd
	}

	switch key.String() {
	case "ctrl+c", "q":
		return m, tea.Quit

	case "up", "k":
		if m.selected > 0 {
			m.selected--
		}

	case "down", "j":
		if m.selected < len(m.layout.Fields)-1 {
			m.selected++
		}

	case "enter", "e":
		if len(m.layout.Fields) == 0 {
			return m, nil
		}
		f := m.current()
		v, err := codec.ReadField(m.layout.Name, f, m.buf)
		if err != nil {
			m.err = err
			return m, nil
		}
		m.err = nil
		m.input.SetValue(formatValue(f, v))
		m.input.Prompt = m.current().Name + " = "
		m.state = stateEdit
		return m, m.input.Focus()

	case "z":
		if len(m.layout.Fields) > 0 {
			m.err = codec.WriteField(m.layout.Name, m.current(), 0, m.buf)
		}
	}

	return m, nil
}

func (m *exploreModel) current() schema.Field {
	return m.layout.Fields[m.selected]
}

// commit writes the edited value. The editor stays open on error.
func (m *exploreModel) commit() {
	f := m.current()
	v, err := parseValue(m.input.Value(), f)
	if err == nil {
		err = codec.WriteField(m.layout.Name, f, v, m.buf)
	}
	m.err = err
	if err != nil {
		return
	}
	m.state = stateBrowse
	m.input.Blur()
}

func (m *exploreModel) View() string {
	var b strings.Builder

	b.WriteString(titleStyle.Render("Struct Explorer"))
	fmt.Fprintf(&b, " %s (%d bytes)\n\n", m.layout.Name, m.layout.Size)

	for i, f := range m.layout.Fields {
		line := m.formatField(f)
		if i == m.selected {
			b.WriteString(selectedStyle.Render("> " + line))
		} else {
			b.WriteString("  " + line)
		}
		b.WriteString("\n")
	}

	b.WriteString("\n")
	b.WriteString(hex.Dump(m.buf))

	if m.state == stateEdit {
		b.WriteString("\n")
		b.WriteString(m.input.View())
		b.WriteString("\n")
	}
	if m.err != nil {
		b.WriteString("\n")
		b.WriteString(errorStyle.Render(fmt.Sprintf("Error: %v", m.err)))
		b.WriteString("\n")
	}

	b.WriteString("\n")
	if m.state == stateEdit {
		b.WriteString(helpStyle.Render("enter store • esc cancel"))
	} else {
		b.WriteString(helpStyle.Render("↑/↓ select • enter edit • z zero • q quit"))
	}
	return b.String()
}

func (m *exploreModel) formatField(f schema.Field) string {
	decl := f.Type + " " + f.Name
	pos := fmt.Sprintf("@%d", f.ByteOffset)
	if f.Bitfield {
		decl += fmt.Sprintf(" : %d", f.Width)
		pos += fmt.Sprintf(".%d", f.BitOffset)
	}
	v, err := codec.ReadField(m.layout.Name, f, m.buf)
	if err != nil {
		return fmt.Sprintf("%-28s %-8s ?", decl, pos)
	}
	return fmt.Sprintf("%-28s %-8s %s", decl, pos, valueStyle.Render(fmt.Sprintf("%d (%#x)", v, v)))
}

func runInteractive(l *schema.Layout, buf []byte) ([]byte, error) {
	p := tea.NewProgram(newExploreModel(l, buf), tea.WithAltScreen())
	final, err := p.Run()
	if err != nil {
		return nil, err
	}
	return final.(*exploreModel).buf, nil
}
