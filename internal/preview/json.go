package preview

import (
	"os"
	"strconv"
	"strings"
	"sync"

	"github.com/charmbracelet/glamour"
	"github.com/charmbracelet/lipgloss"
)

var (
	rendererMu sync.Mutex
	// Keyed by style and wrap width. Fixed styles avoid the terminal
	// background query WithAutoStyle performs.
	renderers = map[string]*glamour.TermRenderer{}
)

// RenderJSON renders already indented JSON as a highlighted code block that
// fits width columns. On any renderer failure the input is returned as is.
func RenderJSON(pretty string, width int) string {
	pretty = strings.TrimRight(pretty, "\n")
	if pretty == "" {
		return ""
	}
	if width < 10 {
		width = 10
	}
	r, err := renderer(Style(), width)
	if err != nil {
		return pretty
	}
	out, err := r.Render("```json\n" + pretty + "\n```\n")
	if err != nil {
		return pretty
	}
	return strings.Trim(out, "\n")
}

func renderer(style string, width int) (*glamour.TermRenderer, error) {
	key := style + ":" + strconv.Itoa(width)
	rendererMu.Lock()
	defer rendererMu.Unlock()
	if r := renderers[key]; r != nil {
		return r, nil
	}
	r, err := glamour.NewTermRenderer(
		glamour.WithStandardStyle(style),
		glamour.WithWordWrap(width),
	)
	if err != nil {
		return nil, err
	}
	renderers[key] = r
	return r, nil
}

// Style picks the glamour style: ZIPEX_TUI_THEME (light|dark) first, then
// COLORFGBG, then lipgloss background detection.
func Style() string {
	switch strings.ToLower(strings.TrimSpace(os.Getenv("ZIPEX_TUI_THEME"))) {
	case "light":
		return "light"
	case "dark":
		return "dark"
	case "notty", "ascii":
		return "notty"
	}
	if v := strings.TrimSpace(os.Getenv("COLORFGBG")); v != "" {
		parts := strings.Split(v, ";")
		if bg, err := strconv.Atoi(strings.TrimSpace(parts[len(parts)-1])); err == nil {
			// xterm palette: 0-6 dark, 7-15 light.
			if bg >= 7 {
				return "light"
			}
			return "dark"
		}
	}
	if lipgloss.HasDarkBackground() {
		return "dark"
	}
	return "light"
}
