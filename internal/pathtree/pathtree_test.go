package pathtree

import (
	"errors"
	"reflect"
	"sort"
	"strings"
	"testing"

	"zipex-cli/internal/model"
)

func childNames(n *Node) []string {
	out := make([]string, 0, len(n.Children))
	for _, ch := range n.Children {
		out = append(out, ch.Name)
	}
	return out
}

func TestBuild_DirectoriesBeforeFiles(t *testing.T) {
	root, err := Build([]string{"b.txt", "a/", "a/x.txt"}, nil)
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	if got := childNames(root); !reflect.DeepEqual(got, []string{"a", "b.txt"}) {
		t.Fatalf("root children: got %v", got)
	}
	if !root.Children[0].IsDirectory || root.Children[1].IsDirectory {
		t.Fatalf("unexpected kinds: %+v %+v", root.Children[0], root.Children[1])
	}
	if root.Children[0].Children[0].Path != "a/x.txt" {
		t.Fatalf("expected a/x.txt, got %q", root.Children[0].Children[0].Path)
	}
}

func TestBuild_SortOrderWithinGroups(t *testing.T) {
	root, err := Build([]string{"z.txt", "m/1.txt", "a.txt", "c/d/e.txt", "B.txt"}, nil)
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	want := []string{"c", "m", "B.txt", "a.txt", "z.txt"}
	if got := childNames(root); !reflect.DeepEqual(got, want) {
		t.Fatalf("got %v want %v", got, want)
	}
}

func TestBuild_LeavesReconstructInputExactlyOnce(t *testing.T) {
	in := []string{
		"docs/readme.md",
		"docs/img/logo.png",
		"main.go",
		"internal/a/b/c.go",
		"internal/a/d.go",
		"docs/readme.md", // duplicate
	}
	root, err := Build(in, nil)
	if err != nil {
		t.Fatalf("Build: %v", err)
	}

	var joined []string
	var walk func(n *Node, segs []string)
	walk = func(n *Node, segs []string) {
		if n.Path != RootPath {
			segs = append(append([]string(nil), segs...), n.Name)
			if n.Path != strings.Join(segs, Separator) {
				t.Fatalf("path %q does not match joined segments %v", n.Path, segs)
			}
		}
		if !n.IsDirectory {
			joined = append(joined, strings.Join(segs, Separator))
		}
		for _, ch := range n.Children {
			if ch.Depth != n.Depth+1 {
				t.Fatalf("depth of %q = %d, parent %d", ch.Path, ch.Depth, n.Depth)
			}
			walk(ch, segs)
		}
	}
	walk(root, nil)

	sort.Strings(joined)
	want := []string{"docs/img/logo.png", "docs/readme.md", "internal/a/b/c.go", "internal/a/d.go", "main.go"}
	if !reflect.DeepEqual(joined, want) {
		t.Fatalf("leaves: got %v want %v", joined, want)
	}
}

func TestBuild_Deterministic(t *testing.T) {
	a, err := Build([]string{"x/2", "x/1", "y", "a/b/c"}, map[string]bool{"/": true, "x": true})
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	b, err := Build([]string{"a/b/c", "y", "x/1", "x/2"}, map[string]bool{"/": true, "x": true})
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	if !reflect.DeepEqual(a, b) {
		t.Fatalf("expected structurally identical trees")
	}
}

func TestBuild_EmptyInput(t *testing.T) {
	root, err := Build(nil, nil)
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	if root.Path != RootPath || !root.IsDirectory || len(root.Children) != 0 {
		t.Fatalf("unexpected root %+v", root)
	}
}

func TestBuild_MalformedPaths(t *testing.T) {
	for _, p := range []string{"a//b.txt", "/abs.txt", "", "/", "dir//"} {
		_, err := Build([]string{"ok.txt", p}, nil)
		if !errors.Is(err, model.ErrMalformedPath) {
			t.Fatalf("Build(%q): expected ErrMalformedPath, got %v", p, err)
		}
	}
}

func TestBuild_DirectoryStatusIsSticky(t *testing.T) {
	root, err := Build([]string{"a", "a/b.txt"}, nil)
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	n := Find(root, "a")
	if n == nil || !n.IsDirectory {
		t.Fatalf("expected a to be a directory, got %+v", n)
	}
	if Find(root, "a/b.txt") == nil {
		t.Fatalf("expected a/b.txt")
	}
}

func TestBuild_ExpandedFlags(t *testing.T) {
	root, err := Build([]string{"a/b/c.txt", "d.txt"}, map[string]bool{"/": true, "a": true, "d.txt": true})
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	if !root.Expanded {
		t.Fatalf("expected root expanded")
	}
	if !Find(root, "a").Expanded || Find(root, "a/b").Expanded {
		t.Fatalf("unexpected expansion flags")
	}
	if Find(root, "d.txt").Expanded {
		t.Fatalf("files never carry the expanded flag")
	}
}

func TestVisible_HonorsExpansion(t *testing.T) {
	paths := []string{"a/b/c.txt", "a/x.txt", "d.txt"}
	root, _ := Build(paths, map[string]bool{"/": true})
	var got []string
	for _, r := range Visible(root) {
		got = append(got, r.Node.Path)
	}
	if !reflect.DeepEqual(got, []string{"a", "d.txt"}) {
		t.Fatalf("collapsed: got %v", got)
	}

	root, _ = Build(paths, map[string]bool{"/": true, "a": true})
	got = nil
	for _, r := range Visible(root) {
		got = append(got, r.Node.Path)
	}
	if !reflect.DeepEqual(got, []string{"a", "a/b", "a/x.txt", "d.txt"}) {
		t.Fatalf("expanded a: got %v", got)
	}

	root, _ = Build(paths, ExpandAll(root))
	rows := Visible(root)
	if len(rows) != 5 || rows[2].Node.Path != "a/b/c.txt" || rows[2].Depth != 3 {
		t.Fatalf("expand all: got %+v", rows)
	}

	root, _ = Build(paths, nil)
	if rows := Visible(root); rows != nil {
		t.Fatalf("collapsed root must render nothing, got %v", rows)
	}
}

func TestIndexAndLeaves(t *testing.T) {
	root, _ := Build([]string{"a/b.txt", "c.txt"}, nil)
	idx := Index(root)
	want := map[string]bool{"/": true, "a": true, "a/b.txt": false, "c.txt": false}
	if !reflect.DeepEqual(idx, want) {
		t.Fatalf("Index: got %v", idx)
	}
	if got := Leaves(root); !reflect.DeepEqual(got, []string{"a/b.txt", "c.txt"}) {
		t.Fatalf("Leaves: got %v", got)
	}
}

func TestPathHelpers(t *testing.T) {
	if got := FinalSegment("a/b/report.JSON"); got != "report.JSON" {
		t.Fatalf("FinalSegment: %q", got)
	}
	if got := FinalSegment("top.txt"); got != "top.txt" {
		t.Fatalf("FinalSegment: %q", got)
	}
	folder, file := SplitPath("a/b/c.txt")
	if folder != "a/b/" || file != "c.txt" {
		t.Fatalf("SplitPath: %q %q", folder, file)
	}
	folder, file = SplitPath("c.txt")
	if folder != "" || file != "c.txt" {
		t.Fatalf("SplitPath: %q %q", folder, file)
	}
}
