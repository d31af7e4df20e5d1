// Package sim runs the tcell backend on a simulation screen so tests can
// inject input and read frames back as text.
package sim

import (
	"fmt"
	"strings"
	"sync"

	tcellv2 "github.com/gdamore/tcell/v2"
	"github.com/pmezard/go-difflib/difflib"

	"github.com/odvcencio/lattice/pkg/ui/backend"
	"github.com/odvcencio/lattice/pkg/ui/backend/tcell"
	"github.com/odvcencio/lattice/pkg/ui/terminal"
)

// Backend is a testable backend using tcell's simulation screen.
type Backend struct {
	*tcell.Backend
	screen tcellv2.SimulationScreen
	mu     sync.Mutex
}

// New creates a new simulation backend with the given dimensions.
func New(width, height int) *Backend {
	screen := tcellv2.NewSimulationScreen("")
	screen.SetSize(width, height)

	return &Backend{
		Backend: tcell.NewWithScreen(screen),
		screen:  screen,
	}
}

// Init initializes the simulation screen and re-applies the requested size,
// which tcell resets during Init.
func (s *Backend) Init() error {
	s.mu.Lock()
	w, h := s.screen.Size()
	s.mu.Unlock()
	if err := s.Backend.Init(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if w > 0 && h > 0 {
		s.screen.SetSize(w, h)
	}
	return nil
}

// Resize changes the simulation screen size.
func (s *Backend) Resize(width, height int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.screen.SetSize(width, height)
}

// InjectKey injects a key event into the simulation.
func (s *Backend) InjectKey(key terminal.Key, r rune, mods ...terminal.Modifier) {
	ev := terminal.KeyEvent{Key: key, Rune: r}
	for _, m := range mods {
		ev.Mods |= m
	}
	_ = s.PostEvent(ev)
}

// InjectKeyRune injects a regular character keypress.
func (s *Backend) InjectKeyRune(r rune) {
	s.InjectKey(terminal.KeyRune, r)
}

// InjectKeyString injects a string as a sequence of key events.
func (s *Backend) InjectKeyString(str string) {
	for _, r := range str {
		s.InjectKeyRune(r)
	}
}

// InjectMouse injects a mouse press.
func (s *Backend) InjectMouse(x, y int, button terminal.MouseButton) {
	_ = s.PostEvent(terminal.MouseEvent{X: x, Y: y, Button: button, Action: terminal.MousePress})
}

// InjectClick injects a left press followed by its release.
func (s *Backend) InjectClick(x, y int) {
	s.InjectMouse(x, y, terminal.MouseLeft)
	_ = s.PostEvent(terminal.MouseEvent{X: x, Y: y, Action: terminal.MouseRelease})
}

// InjectPaste injects text as one bracketed paste.
func (s *Backend) InjectPaste(text string) {
	_ = s.PostEvent(terminal.PasteEvent{Text: text})
}

// InjectResize injects a resize event.
func (s *Backend) InjectResize(width, height int) {
	s.mu.Lock()
	s.screen.SetSize(width, height)
	s.mu.Unlock()
	_ = s.PostEvent(terminal.ResizeEvent{Width: width, Height: height})
}

// Capture captures the current screen content as a string.
func (s *Backend) Capture() string {
	s.mu.Lock()
	w, h := s.screen.Size()
	s.mu.Unlock()
	return s.CaptureRegion(0, 0, w, h)
}

// CaptureCell returns the content and style of a single cell.
func (s *Backend) CaptureCell(x, y int) (mainc rune, comb []rune, style backend.Style) {
	s.mu.Lock()
	defer s.mu.Unlock()

	m, c, tcStyle, _ := s.screen.GetContent(x, y)
	return m, c, tcell.FromStyle(tcStyle)
}

// CaptureRegion captures a rectangular region of the screen.
func (s *Backend) CaptureRegion(x, y, w, h int) string {
	s.mu.Lock()
	defer s.mu.Unlock()

	var lines []string
	for row := y; row < y+h; row++ {
		var line strings.Builder
		for col := x; col < x+w; col++ {
			mainc, comb, _, _ := s.screen.GetContent(col, row)
			if mainc == 0 {
				mainc = ' '
			}
			line.WriteRune(mainc)
			for _, c := range comb {
				line.WriteRune(c)
			}
		}
		lines = append(lines, line.String())
	}
	return strings.Join(lines, "\n")
}

// FindText searches for text on the screen and returns its position.
func (s *Backend) FindText(text string) (x, y int) {
	capture := s.Capture()
	lines := strings.Split(capture, "\n")

	for row, line := range lines {
		if col := strings.Index(line, text); col >= 0 {
			return len([]rune(line[:col])), row
		}
	}
	return -1, -1
}

// ContainsText returns true if the text appears anywhere on screen.
func (s *Backend) ContainsText(text string) bool {
	x, y := s.FindText(text)
	return x >= 0 && y >= 0
}

// CompareGolden compares the trimmed screen capture against want and returns
// a unified diff when they differ. Trailing spaces on each line are ignored.
func (s *Backend) CompareGolden(want string) (string, bool) {
	got := TrimCapture(s.Capture())
	want = TrimCapture(want)
	if got == want {
		return "", true
	}
	diff, err := difflib.GetUnifiedDiffString(difflib.UnifiedDiff{
		A:        difflib.SplitLines(want + "\n"),
		B:        difflib.SplitLines(got + "\n"),
		FromFile: "want",
		ToFile:   "got",
		Context:  2,
	})
	if err != nil {
		return fmt.Sprintf("diff failed: %v\n--- want\n%s\n--- got\n%s", err, want, got), false
	}
	return diff, false
}

// TrimCapture strips trailing whitespace from each line and trailing blank
// lines so captures compare independent of screen padding.
func TrimCapture(capture string) string {
	lines := strings.Split(capture, "\n")
	for i, line := range lines {
		lines[i] = strings.TrimRight(line, " ")
	}
	for len(lines) > 0 && lines[len(lines)-1] == "" {
		lines = lines[:len(lines)-1]
	}
	return strings.Join(lines, "\n")
}

var _ backend.Backend = (*Backend)(nil)
