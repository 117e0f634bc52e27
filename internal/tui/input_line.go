package tui

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
	xansi "github.com/charmbracelet/x/ansi"
)

// renderInputLine draws a textinput view as one padded line on the input
// background, never wider than bodyW.
func renderInputLine(bodyW int, inputView string) string {
	bodyW = max(bodyW, 10)
	inputView = strings.NewReplacer("\n", " ", "\r", " ").Replace(inputView)

	line := lipgloss.PlaceHorizontal(
		bodyW,
		lipgloss.Left,
		" "+inputView+" ",
		lipgloss.WithWhitespaceChars(" "),
		lipgloss.WithWhitespaceBackground(colorInputBg),
	)
	if xansi.StringWidth(line) > bodyW {
		line = xansi.Cut(line, 0, bodyW) + "\x1b[0m"
	}
	return line
}
