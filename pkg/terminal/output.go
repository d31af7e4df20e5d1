// Package terminal styles the command line's non-interactive output:
// startup failures, warnings and listings printed before or after the
// full-screen interface runs.
package terminal

import (
	"fmt"
	"io"
	"os"
	"strings"
	"sync"

	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/termenv"
)

// Writer prints styled lines. Color follows the destination: a pipe or
// buffer gets plain text.
type Writer struct {
	out io.Writer
	mu  sync.Mutex

	errorStyle lipgloss.Style
	warnStyle  lipgloss.Style
	dimStyle   lipgloss.Style
	boldStyle  lipgloss.Style
}

// New writes to stderr.
func New() *Writer {
	return NewWithOutput(os.Stderr)
}

// NewWithOutput writes to out, detecting its color profile.
func NewWithOutput(out io.Writer, opts ...termenv.OutputOption) *Writer {
	r := lipgloss.NewRenderer(out, opts...)
	return &Writer{
		out: out,
		errorStyle: r.NewStyle().
			Foreground(lipgloss.AdaptiveColor{Light: "#D00000", Dark: "#FF5555"}).
			Bold(true),
		warnStyle: r.NewStyle().
			Foreground(lipgloss.AdaptiveColor{Light: "#B8860B", Dark: "#FFAA00"}),
		dimStyle: r.NewStyle().
			Foreground(lipgloss.AdaptiveColor{Light: "#666666", Dark: "#888888"}),
		boldStyle: r.NewStyle().Bold(true),
	}
}

// Error prints "prog: " and the first line of msg in the error style.
// Following lines (remediation tips) are dimmed.
func (w *Writer) Error(prog, msg string) {
	w.mu.Lock()
	defer w.mu.Unlock()
	head, rest, _ := strings.Cut(msg, "\n")
	fmt.Fprintln(w.out, w.errorStyle.Render(prog+": "+head))
	for _, line := range strings.Split(rest, "\n") {
		if strings.TrimSpace(line) != "" {
			fmt.Fprintln(w.out, w.dimStyle.Render(line))
		}
	}
}

// Warn prints a warning line.
func (w *Writer) Warn(format string, args ...any) {
	w.mu.Lock()
	defer w.mu.Unlock()
	fmt.Fprintln(w.out, w.warnStyle.Render("warning: "+fmt.Sprintf(format, args...)))
}

// Header returns s in the bold style for embedding in other output.
func (w *Writer) Header(s string) string {
	return w.boldStyle.Render(s)
}
