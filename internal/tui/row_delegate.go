package tui

import (
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/bubbles/list"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	xansi "github.com/charmbracelet/x/ansi"
	"github.com/dustin/go-humanize"

	"zipex-cli/internal/model"
)

type entryDelegate struct {
	normal   lipgloss.Style
	focused  lipgloss.Style
	dir      lipgloss.Style
	mark     lipgloss.Style
	meta     lipgloss.Style
	showTree bool
}

func newEntryDelegate() *entryDelegate {
	return &entryDelegate{
		normal:   lipgloss.NewStyle(),
		focused:  lipgloss.NewStyle().Foreground(colorSelectedFg).Background(colorSelectedBg).Bold(true),
		dir:      lipgloss.NewStyle().Foreground(colorDirFg).Bold(true),
		mark:     lipgloss.NewStyle().Foreground(colorMarkFg),
		meta:     styleMuted(),
		showTree: true,
	}
}

func (d *entryDelegate) Height() int                         { return 1 }
func (d *entryDelegate) Spacing() int                        { return 0 }
func (d *entryDelegate) Update(tea.Msg, *list.Model) tea.Cmd { return nil }

func (d *entryDelegate) Render(w io.Writer, m list.Model, index int, item list.Item) {
	width := m.Width()
	it, ok := item.(entryRowItem)
	if width < 4 || !ok {
		return
	}
	fmt.Fprint(w, d.renderRow(it.row, width, index == m.Index()))
}

// renderRow lays out: indent, twisty, check mark, name, then size and
// preview kind right-aligned.
func (d *entryDelegate) renderRow(r entryRow, width int, focused bool) string {
	lead := ""
	if d.showTree {
		lead = strings.Repeat("  ", max(r.depth, 0))
		switch {
		case r.dir && r.expanded:
			lead += glyphTwistyExpanded() + " "
		case r.dir:
			lead += glyphTwistyCollapsed() + " "
		default:
			lead += "  "
		}
	}

	mark := ""
	if !r.dir {
		if r.selected {
			mark = glyphChecked() + " "
		} else {
			mark = glyphUnchecked() + " "
		}
	}

	name := r.name
	if r.dir {
		name += "/"
	}

	meta := ""
	if !r.dir {
		meta = humanize.IBytes(uint64(max(r.size, 0)))
		if r.kind != model.KindNone {
			meta = string(r.kind) + "  " + meta
		}
	}

	left := lead + mark + name
	metaW := xansi.StringWidth(meta)
	avail := width - metaW - 1
	if metaW == 0 {
		avail = width
	}
	if avail < 1 {
		meta, metaW, avail = "", 0, width
	}
	left = fitLine(left, avail)

	if focused {
		line := left
		if metaW > 0 {
			line += " " + meta
		}
		return d.focused.Render(fitLine(line, width))
	}

	// Style segments separately so each reset does not bleed into the next.
	body := left
	if strings.HasPrefix(left, lead) {
		body = left[len(lead):]
	} else {
		lead = ""
	}
	var b strings.Builder
	b.WriteString(lead)
	switch {
	case r.dir:
		b.WriteString(d.dir.Render(body))
	case r.selected && strings.HasPrefix(body, mark):
		b.WriteString(d.mark.Render(mark))
		b.WriteString(d.normal.Render(body[len(mark):]))
	default:
		b.WriteString(d.normal.Render(body))
	}
	if metaW > 0 {
		b.WriteString(" " + d.meta.Render(meta))
	}
	return b.String()
}
