package tui

import (
	"os"
	"strings"
	"sync"
)

// Some terminal fonts render box and arrow glyphs poorly, so every
// affordance has an ASCII fallback.

type glyphSet int

const (
	glyphSetUnicode glyphSet = iota
	glyphSetASCII
)

var (
	glyphsMu      sync.RWMutex
	currentGlyphs = glyphSetUnicode
)

// applyGlyphPreference picks the glyph set: ZIPEX_TUI_GLYPHS wins over the
// configured value. Unknown values are ignored.
func applyGlyphPreference(configured string) {
	v := strings.ToLower(strings.TrimSpace(os.Getenv("ZIPEX_TUI_GLYPHS")))
	if v == "" {
		v = strings.ToLower(strings.TrimSpace(configured))
	}
	switch v {
	case "", "unicode", "utf8":
		setGlyphs(glyphSetUnicode)
	case "ascii":
		setGlyphs(glyphSetASCII)
	}
}

func setGlyphs(gs glyphSet) {
	glyphsMu.Lock()
	currentGlyphs = gs
	glyphsMu.Unlock()
}

func glyphs() glyphSet {
	glyphsMu.RLock()
	defer glyphsMu.RUnlock()
	return currentGlyphs
}

func pick(unicode, ascii string) string {
	if glyphs() == glyphSetASCII {
		return ascii
	}
	return unicode
}

func glyphTwistyCollapsed() string { return pick("▸", ">") }
func glyphTwistyExpanded() string  { return pick("▾", "v") }
func glyphChecked() string         { return pick("☑", "[x]") }
func glyphUnchecked() string       { return pick("☐", "[ ]") }
func glyphBullet() string          { return pick("•", "*") }
func glyphHRule() string           { return pick("─", "-") }
func glyphEllipsis() string        { return pick("…", "~") }
