package tui

import (
	"github.com/charmbracelet/bubbles/list"

	"zipex-cli/internal/model"
	"zipex-cli/internal/pathtree"
	"zipex-cli/internal/session"
)

type viewMode int

const (
	modeTree viewMode = iota
	modeList
)

func (v viewMode) String() string {
	if v == modeList {
		return "list"
	}
	return "tree"
}

// entryRow is one line of the browser, in either mode.
type entryRow struct {
	path        string
	name        string
	depth       int
	dir         bool
	hasChildren bool
	expanded    bool
	selected    bool
	size        int64
	kind        model.PreviewKind
}

type entryRowItem struct{ row entryRow }

func (i entryRowItem) FilterValue() string { return i.row.path }
func (i entryRowItem) Title() string       { return i.row.name }

// flattenSnapshot turns the session view into list rows. Tree mode follows
// the visible rows of the path tree; list mode shows every file by path.
func flattenSnapshot(snap session.Snapshot, mode viewMode) []entryRow {
	selected := make(map[string]bool, len(snap.Selected))
	for _, p := range snap.Selected {
		selected[p] = true
	}
	byPath := make(map[string]model.Entry, len(snap.Entries))
	for _, e := range snap.Entries {
		byPath[e.Path] = e
	}

	var out []entryRow
	if mode == modeList {
		for _, e := range snap.Entries {
			out = append(out, entryRow{
				path:     e.Path,
				name:     e.Path,
				selected: selected[e.Path],
				size:     e.Size,
				kind:     e.PreviewKind,
			})
		}
		return out
	}

	for _, r := range pathtree.Visible(snap.Tree) {
		n := r.Node
		row := entryRow{
			path:        n.Path,
			name:        n.Name,
			depth:       r.Depth - 1,
			dir:         n.IsDirectory,
			hasChildren: r.HasChildren,
			expanded:    r.Expanded,
		}
		if !n.IsDirectory {
			e := byPath[n.Path]
			row.selected = selected[n.Path]
			row.size = e.Size
			row.kind = e.PreviewKind
		}
		out = append(out, row)
	}
	return out
}

func rowItems(rows []entryRow) []list.Item {
	items := make([]list.Item, 0, len(rows))
	for _, r := range rows {
		items = append(items, entryRowItem{row: r})
	}
	return items
}

func selectListItemByPath(l *list.Model, path string) bool {
	for i, it := range l.Items() {
		if r, ok := it.(entryRowItem); ok && r.row.path == path {
			l.Select(i)
			return true
		}
	}
	return false
}
