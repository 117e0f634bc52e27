// Package pathtree turns a flat list of archive entry paths into a sorted,
// immutable directory tree.
package pathtree

import (
	"sort"
	"strings"

	"zipex-cli/internal/model"
)

const (
	Separator = "/"
	RootPath  = "/"
)

// Node is one path segment. Nodes are never mutated after Build returns.
type Node struct {
	Name        string  `json:"name"`
	Path        string  `json:"path"`
	IsDirectory bool    `json:"isDirectory"`
	Children    []*Node `json:"children,omitempty"`
	Depth       int     `json:"depth"`
	Expanded    bool    `json:"expanded,omitempty"`
}

// Build constructs the tree for paths. A path ending in "/" names a directory
// record; any other empty segment is a MalformedPathError. Duplicate paths are
// ignored and a name that is both a leaf and a prefix becomes a directory.
func Build(paths []string, expanded map[string]bool) (*Node, error) {
	sorted := make([]string, len(paths))
	copy(sorted, paths)
	sort.Strings(sorted)

	root := &Node{Path: RootPath, IsDirectory: true, Expanded: expanded[RootPath]}
	// Scratch lookup, local to this call.
	byPath := map[string]*Node{RootPath: root}

	for _, p := range sorted {
		segs, dirRecord, err := splitSegments(p)
		if err != nil {
			return nil, err
		}
		parent := root
		cur := ""
		for i, seg := range segs {
			last := i == len(segs)-1
			isDir := !last || dirRecord
			if cur == "" {
				cur = seg
			} else {
				cur = cur + Separator + seg
			}
			n, ok := byPath[cur]
			if !ok {
				n = &Node{
					Name:        seg,
					Path:        cur,
					IsDirectory: isDir,
					Depth:       i + 1,
				}
				byPath[cur] = n
				parent.Children = append(parent.Children, n)
			} else if isDir && !n.IsDirectory {
				n.IsDirectory = true
			}
			parent = n
		}
	}

	for _, n := range byPath {
		if n.IsDirectory {
			n.Expanded = expanded[n.Path]
		}
		if len(n.Children) > 1 {
			sortChildren(n.Children)
		}
	}
	return root, nil
}

func splitSegments(p string) ([]string, bool, error) {
	if p == "" {
		return nil, false, model.MalformedPathError{Path: p}
	}
	dirRecord := strings.HasSuffix(p, Separator)
	trimmed := strings.TrimSuffix(p, Separator)
	if trimmed == "" {
		return nil, false, model.MalformedPathError{Path: p}
	}
	segs := strings.Split(trimmed, Separator)
	for _, s := range segs {
		if s == "" {
			return nil, false, model.MalformedPathError{Path: p}
		}
	}
	return segs, dirRecord, nil
}

func sortChildren(ch []*Node) {
	sort.SliceStable(ch, func(i, j int) bool {
		if ch[i].IsDirectory != ch[j].IsDirectory {
			return ch[i].IsDirectory
		}
		return ch[i].Name < ch[j].Name
	})
}

// Find resolves path in the tree, or returns nil.
func Find(root *Node, path string) *Node {
	if root == nil {
		return nil
	}
	if root.Path == path {
		return root
	}
	for _, ch := range root.Children {
		if ch.Path == path || strings.HasPrefix(path, ch.Path+Separator) {
			if found := Find(ch, path); found != nil {
				return found
			}
		}
	}
	return nil
}

// Index maps every node path (root included) to whether it is a directory.
func Index(root *Node) map[string]bool {
	out := map[string]bool{}
	if root == nil {
		return out
	}
	var walk func(n *Node)
	walk = func(n *Node) {
		out[n.Path] = n.IsDirectory
		for _, ch := range n.Children {
			walk(ch)
		}
	}
	walk(root)
	return out
}

// Leaves returns the paths of all file nodes in tree order.
func Leaves(root *Node) []string {
	var out []string
	var walk func(n *Node)
	walk = func(n *Node) {
		if !n.IsDirectory {
			out = append(out, n.Path)
			return
		}
		for _, ch := range n.Children {
			walk(ch)
		}
	}
	if root != nil {
		walk(root)
	}
	return out
}

// FinalSegment returns the part of path after the last separator.
func FinalSegment(path string) string {
	path = strings.TrimSuffix(path, Separator)
	if i := strings.LastIndex(path, Separator); i >= 0 {
		return path[i+1:]
	}
	return path
}

// SplitPath splits path into its folder prefix (with trailing separator) and
// file name, the way the flat list renders entries.
func SplitPath(path string) (folder, file string) {
	i := strings.LastIndex(path, Separator)
	if i < 0 {
		return "", path
	}
	return path[:i+1], path[i+1:]
}
