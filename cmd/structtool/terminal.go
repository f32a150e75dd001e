package main

import (
	"fmt"
	"io"
	"os"
	"strings"
	"sync/atomic"

	"github.com/charmbracelet/lipgloss"
	"golang.org/x/term"

	"github.com/wippyai/bitstruct/schema"
)

var stdoutIsTerminal int32 = -1 // -1 = unchecked, 0 = no, 1 = yes

func isTerminal(fd int, cached *int32) bool {
	if v := atomic.LoadInt32(cached); v >= 0 {
		return v == 1
	}
	result := term.IsTerminal(fd)
	if result {
		atomic.StoreInt32(cached, 1)
	} else {
		atomic.StoreInt32(cached, 0)
	}
	return result
}

var (
	headerStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#FAFAFA")).
			Background(lipgloss.Color("#7D56F4")).
			Padding(0, 1)

	nameStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#98FB98"))

	typeStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#87CEEB"))

	offsetStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#666666"))
)

// render returns the layout dump, styled when w is an interactive terminal.
func render(w io.Writer, l *schema.Layout) string {
	if w != os.Stdout || !isTerminal(int(os.Stdout.Fd()), &stdoutIsTerminal) {
		return l.Describe()
	}
	return styled(l)
}

func styled(l *schema.Layout) string {
	var b strings.Builder
	b.WriteString(headerStyle.Render(fmt.Sprintf("%s  %d bytes", l.Name, l.Size)))
	b.WriteString("\n")
	for _, f := range l.Fields {
		decl := nameStyle.Render(f.Name)
		if f.Bitfield {
			decl += fmt.Sprintf(" : %d", f.Width)
		}
		pos := fmt.Sprintf("@%d", f.ByteOffset)
		if f.Bitfield {
			pos += fmt.Sprintf(".%d", f.BitOffset)
		}
		fmt.Fprintf(&b, "  %s %s %s\n", typeStyle.Render(f.Type), decl, offsetStyle.Render(pos))
	}
	return b.String()
}
