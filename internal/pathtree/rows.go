package pathtree

// Row is a rendered line of the tree view.
type Row struct {
	Node        *Node
	Depth       int
	HasChildren bool
	Expanded    bool
}

// Visible flattens the tree depth-first, descending only into expanded
// directories. The root itself is not emitted; if the root is collapsed no
// rows are returned.
func Visible(root *Node) []Row {
	if root == nil || !root.Expanded {
		return nil
	}
	var out []Row
	var walk func(n *Node)
	walk = func(n *Node) {
		out = append(out, Row{
			Node:        n,
			Depth:       n.Depth,
			HasChildren: len(n.Children) > 0,
			Expanded:    n.Expanded,
		})
		if !n.IsDirectory || !n.Expanded {
			return
		}
		for _, ch := range n.Children {
			walk(ch)
		}
	}
	for _, ch := range root.Children {
		walk(ch)
	}
	return out
}

// ExpandAll returns an expansion set that opens every directory in root.
func ExpandAll(root *Node) map[string]bool {
	out := map[string]bool{}
	for p, dir := range Index(root) {
		if dir {
			out[p] = true
		}
	}
	return out
}
