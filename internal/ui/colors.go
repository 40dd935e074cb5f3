package ui

import (
	"github.com/charmbracelet/lipgloss"
)

var styles = NewPalette("#7D56F4", "#04B575", "#FF0000", "#FFA500", "#626262")

// struct Palette is a simple stylesheet built with named [lipgloss.Style] fields
type Palette struct {
	title  lipgloss.Style
	artist lipgloss.Style
	on     lipgloss.Style
	off    lipgloss.Style
	filled lipgloss.Style
	empty  lipgloss.Style
	err    lipgloss.Style
	help   lipgloss.Style
	cursor lipgloss.Style
}

// NewPalette builds the stylesheet from an accent, ok, error, warning and muted color.
func NewPalette(accent, ok, e, w, muted string) *Palette {
	return &Palette{
		title:  NewBold(accent),
		artist: NewEm(muted),
		on:     NewBold(ok),
		off:    NewStyle(muted),
		filled: NewStyle(accent),
		empty:  NewStyle(muted),
		err:    NewBold(e),
		help:   NewEm(muted),
		cursor: NewBold(w),
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
