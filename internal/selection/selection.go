// Package selection tracks which files are selected and which directories are
// expanded in the current archive view.
package selection

import (
	"sort"

	"zipex-cli/internal/model"
	"zipex-cli/internal/pathtree"
)

// Tracker is not safe for concurrent use; the session serializes access.
type Tracker struct {
	// kinds maps every known path to whether it is a directory.
	kinds    map[string]bool
	selected map[string]struct{}
	expanded map[string]bool
}

func New(kinds map[string]bool) *Tracker {
	t := &Tracker{}
	t.Reset(kinds)
	return t
}

// Reset drops all selection and expansion state and adopts a new path index.
// Only the root stays expanded.
func (t *Tracker) Reset(kinds map[string]bool) {
	t.kinds = make(map[string]bool, len(kinds))
	for p, dir := range kinds {
		t.kinds[p] = dir
	}
	t.selected = map[string]struct{}{}
	t.expanded = map[string]bool{pathtree.RootPath: true}
}

func (t *Tracker) ToggleSelect(path string) error {
	dir, ok := t.kinds[path]
	if !ok {
		return model.EntryNotFoundError{Path: path}
	}
	if dir {
		return model.InvalidOperationError{Op: "select", Path: path, Reason: "directories cannot be selected"}
	}
	if _, on := t.selected[path]; on {
		delete(t.selected, path)
	} else {
		t.selected[path] = struct{}{}
	}
	return nil
}

func (t *Tracker) ToggleExpand(path string) error {
	dir, ok := t.kinds[path]
	if !ok {
		return model.EntryNotFoundError{Path: path}
	}
	if !dir {
		return model.InvalidOperationError{Op: "expand", Path: path, Reason: "files cannot be expanded"}
	}
	if t.expanded[path] {
		delete(t.expanded, path)
	} else {
		t.expanded[path] = true
	}
	return nil
}

// SetExpanded forces a directory open or closed.
func (t *Tracker) SetExpanded(path string, open bool) error {
	if t.IsExpanded(path) == open {
		if dir, ok := t.kinds[path]; !ok {
			return model.EntryNotFoundError{Path: path}
		} else if !dir {
			return model.InvalidOperationError{Op: "expand", Path: path, Reason: "files cannot be expanded"}
		}
		return nil
	}
	return t.ToggleExpand(path)
}

// SelectAll selects every file.
func (t *Tracker) SelectAll() {
	for p, dir := range t.kinds {
		if !dir {
			t.selected[p] = struct{}{}
		}
	}
}

func (t *Tracker) ClearSelection() {
	t.selected = map[string]struct{}{}
}

func (t *Tracker) IsSelected(path string) bool {
	_, ok := t.selected[path]
	return ok
}

func (t *Tracker) IsExpanded(path string) bool { return t.expanded[path] }

// Selected returns the selected paths in ascending order.
func (t *Tracker) Selected() []string {
	out := make([]string, 0, len(t.selected))
	for p := range t.selected {
		out = append(out, p)
	}
	sort.Strings(out)
	return out
}

// Expanded returns a copy of the expanded directory set.
func (t *Tracker) Expanded() map[string]bool {
	out := make(map[string]bool, len(t.expanded))
	for p, v := range t.expanded {
		out[p] = v
	}
	return out
}
