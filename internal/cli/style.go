package cli

import (
	"io"
	"os"

	"github.com/charmbracelet/lipgloss"
	"golang.org/x/term"
)

var (
	clrBrand  = lipgloss.Color("75") // steel blue
	clrGreen  = lipgloss.Color("114")
	clrRed    = lipgloss.Color("203")
	clrYellow = lipgloss.Color("220")
	clrDim    = lipgloss.Color("245")
)

// styles wraps lipgloss renderers that respect TTY detection. When output is
// piped or redirected, styling is disabled and raw text is emitted.
type styles struct {
	enabled bool

	Header  lipgloss.Style
	Key     lipgloss.Style
	Success lipgloss.Style
	Warning lipgloss.Style
	Error   lipgloss.Style
	Dim     lipgloss.Style
}

func newStyles(w io.Writer) styles {
	enabled := false
	if f, ok := w.(*os.File); ok {
		enabled = term.IsTerminal(int(f.Fd()))
	}

	s := styles{enabled: enabled}
	if !enabled {
		noop := lipgloss.NewStyle()
		s.Header = noop
		s.Key = noop
		s.Success = noop
		s.Warning = noop
		s.Error = noop
		s.Dim = noop
		return s
	}

	s.Header = lipgloss.NewStyle().Foreground(clrBrand).Bold(true)
	s.Key = lipgloss.NewStyle().Foreground(clrDim)
	s.Success = lipgloss.NewStyle().Foreground(clrGreen)
	s.Warning = lipgloss.NewStyle().Foreground(clrYellow)
	s.Error = lipgloss.NewStyle().Foreground(clrRed).Bold(true)
	s.Dim = lipgloss.NewStyle().Foreground(clrDim)
	return s
}
