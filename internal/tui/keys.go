package tui

import (
	"strings"

	"github.com/charmbracelet/bubbles/key"
)

type keyMap struct {
	Quit             key.Binding
	ToggleMode       key.Binding
	Select           key.Binding
	Open             key.Binding
	Expand           key.Binding
	Collapse         key.Binding
	ExpandAll        key.Binding
	Preview          key.Binding
	Dismiss          key.Binding
	Download         key.Binding
	DownloadSelected key.Binding
	SelectAll        key.Binding
	ClearSelection   key.Binding
	EditPrefix       key.Binding
	OpenArchive      key.Binding
	ScrollDown       key.Binding
	ScrollUp         key.Binding
}

func defaultKeyMap() keyMap {
	return keyMap{
		Quit:             key.NewBinding(key.WithKeys("q"), key.WithHelp("q", "quit")),
		ToggleMode:       key.NewBinding(key.WithKeys("t"), key.WithHelp("t", "tree/list")),
		Select:           key.NewBinding(key.WithKeys(" "), key.WithHelp("space", "select")),
		Open:             key.NewBinding(key.WithKeys("enter"), key.WithHelp("enter", "open")),
		Expand:           key.NewBinding(key.WithKeys("right", "l"), key.WithHelp("→", "expand")),
		Collapse:         key.NewBinding(key.WithKeys("left", "h"), key.WithHelp("←", "collapse")),
		ExpandAll:        key.NewBinding(key.WithKeys("*"), key.WithHelp("*", "expand all")),
		Preview:          key.NewBinding(key.WithKeys("p"), key.WithHelp("p", "preview")),
		Dismiss:          key.NewBinding(key.WithKeys("esc"), key.WithHelp("esc", "close preview")),
		Download:         key.NewBinding(key.WithKeys("d"), key.WithHelp("d", "download")),
		DownloadSelected: key.NewBinding(key.WithKeys("D"), key.WithHelp("D", "download selected")),
		SelectAll:        key.NewBinding(key.WithKeys("a"), key.WithHelp("a", "select all")),
		ClearSelection:   key.NewBinding(key.WithKeys("c"), key.WithHelp("c", "clear")),
		EditPrefix:       key.NewBinding(key.WithKeys("e"), key.WithHelp("e", "prefix")),
		OpenArchive:      key.NewBinding(key.WithKeys("o"), key.WithHelp("o", "open archive")),
		ScrollDown:       key.NewBinding(key.WithKeys("ctrl+d"), key.WithHelp("ctrl+d", "scroll preview")),
		ScrollUp:         key.NewBinding(key.WithKeys("ctrl+u"), key.WithHelp("ctrl+u", "scroll preview")),
	}
}

func (k keyMap) helpLine(modal modalKind) string {
	var bs []key.Binding
	switch modal {
	case modalEditPrefix:
		return "enter: apply  esc: cancel"
	case modalPickArchive:
		return "enter: open  ←/h: up  esc: cancel"
	default:
		bs = []key.Binding{k.Select, k.Open, k.Preview, k.Download, k.DownloadSelected,
			k.SelectAll, k.ClearSelection, k.EditPrefix, k.ToggleMode, k.OpenArchive, k.Quit}
	}
	parts := make([]string, 0, len(bs))
	for _, b := range bs {
		h := b.Help()
		parts = append(parts, h.Key+": "+h.Desc)
	}
	return strings.Join(parts, "  ")
}
