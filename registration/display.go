package registration

import (
	"fmt"
	"io"
	"sync"

	"github.com/charmbracelet/lipgloss"
)

// Display shows the status of the latest submission.
type Display interface {
	Show(Status)
}

// StatusLine keeps the last status shown. It is safe for concurrent use;
// whichever Show call runs last wins.
type StatusLine struct {
	mu      sync.Mutex
	current Status
	shown   bool
	next    Display
}

// NewStatusLine returns a StatusLine that also forwards to next, if set.
func NewStatusLine(next Display) *StatusLine {
	return &StatusLine{next: next}
}

func (s *StatusLine) Show(status Status) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.current = status
	s.shown = true
	if s.next != nil {
		s.next.Show(status)
	}
}

// Current returns the last status and whether anything was shown yet.
func (s *StatusLine) Current() (Status, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.current, s.shown
}

// WriterDisplay prints each status as a coloured line.
type WriterDisplay struct {
	w        io.Writer
	renderer *lipgloss.Renderer
}

func NewWriterDisplay(w io.Writer) *WriterDisplay {
	return &WriterDisplay{w: w, renderer: lipgloss.NewRenderer(w)}
}

func (d *WriterDisplay) Show(status Status) {
	style := d.renderer.NewStyle().Bold(true).Foreground(TerminalColor(status.Color))
	fmt.Fprintln(d.w, style.Render(status.Text))
}

// TerminalColor maps a status colour name to a terminal colour.
func TerminalColor(name string) lipgloss.Color {
	switch name {
	case ColorSuccess:
		return lipgloss.Color("#00FF00")
	case ColorFailure:
		return lipgloss.Color("#FF0000")
	default:
		return lipgloss.Color("#888888")
	}
}
