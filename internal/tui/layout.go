package tui

import (
	"strings"

	xansi "github.com/charmbracelet/x/ansi"
)

// fitPane pads or truncates s to exactly width columns and height lines so
// lipgloss.JoinHorizontal lines panes up. A zero height keeps the line count.
func fitPane(s string, width, height int) string {
	width = max(width, 0)
	lines := strings.Split(s, "\n")
	if height > 0 {
		if len(lines) > height {
			lines = lines[:height]
		}
		for len(lines) < height {
			lines = append(lines, "")
		}
	}
	for i, ln := range lines {
		lines[i] = fitLine(ln, width)
	}
	return strings.Join(lines, "\n")
}

// fitLine is fitPane for a single line; truncated lines end in an ellipsis.
func fitLine(ln string, width int) string {
	w := xansi.StringWidth(ln)
	switch {
	case w == width:
		return ln
	case w < width:
		return ln + strings.Repeat(" ", width-w)
	case width <= 1:
		return xansi.Truncate(ln, width, "")
	default:
		return xansi.Truncate(ln, width, glyphEllipsis())
	}
}
