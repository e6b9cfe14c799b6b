package ui

import (
	"github.com/charmbracelet/lipgloss"
)

var styles = NewPalette("#7D56F4", "#04B575", "#FF0000", "#FFA500", "#00AFD7")

// struct Palette is a simple stylesheet built with named [lipgloss.Style] fields
type Palette struct {
	title   lipgloss.Style
	ok      lipgloss.Style
	err     lipgloss.Style
	warn    lipgloss.Style
	playing lipgloss.Style
}

// NewPalette builds the stylesheet from title, success, error, warning and now-playing colors.
func NewPalette(t, s, e, w, p string) *Palette {
	return &Palette{
		title:   NewBold(t).MarginBottom(1),
		ok:      NewStyle(s),
		err:     NewBold(e),
		warn:    NewStyle(w),
		playing: NewEm(p),
	}
}

func NewStyle(fg string) lipgloss.Style {
	return lipgloss.NewStyle().Foreground(lipgloss.Color(fg))
}

func NewBold(fg string) lipgloss.Style {
	return NewStyle(fg).Bold(true)
}

func NewEm(fg string) lipgloss.Style {
	return NewStyle(fg).Italic(true)
}
