package tui

import "testing"

func TestApplyGlyphPreference(t *testing.T) {
	t.Cleanup(func() { setGlyphs(glyphSetUnicode) })

	tests := []struct {
		env, configured string
		want            glyphSet
	}{
		{"", "", glyphSetUnicode},
		{"", "ascii", glyphSetASCII},
		{"unicode", "ascii", glyphSetUnicode},
		{"ASCII", "", glyphSetASCII},
	}
	for _, tt := range tests {
		t.Setenv("ZIPEX_TUI_GLYPHS", tt.env)
		setGlyphs(glyphSetUnicode)
		applyGlyphPreference(tt.configured)
		if got := glyphs(); got != tt.want {
			t.Fatalf("env=%q configured=%q: got %v want %v", tt.env, tt.configured, got, tt.want)
		}
	}

	setGlyphs(glyphSetASCII)
	if glyphTwistyCollapsed() != ">" || glyphChecked() != "[x]" {
		t.Fatalf("ascii glyphs not applied")
	}
}
