package symbols

import (
	sitter "github.com/smacker/go-tree-sitter"
)

// ErrorLines walks the tree and returns 1-based line numbers of ERROR and
// missing nodes, capped at limit (0 = no cap). more reports how many were
// left uncounted.
func ErrorLines(root *sitter.Node, limit int) (lines []uint32, more int) {
	seen := make(map[uint32]bool)
	var walk func(n *sitter.Node)
	walk = func(n *sitter.Node) {
		if n == nil {
			return
		}
		if n.Type() == "ERROR" || n.IsMissing() {
			row := n.StartPoint().Row + 1
			if !seen[row] {
				seen[row] = true
				if limit > 0 && len(lines) >= limit {
					more++
				} else {
					lines = append(lines, row)
				}
			}
		}
		if !n.HasError() {
			return
		}
		for i := 0; i < int(n.ChildCount()); i++ {
			walk(n.Child(i))
		}
	}
	walk(root)
	return lines, more
}

// TopLevelBoundaries returns the byte offsets where the root's named
// children begin plus the final byte, for use as chunk split points.
func TopLevelBoundaries(root *sitter.Node, srcLen int) []int {
	var bounds []int
	bounds = append(bounds, 0)
	for i := 0; i < int(root.NamedChildCount()); i++ {
		child := root.NamedChild(i)
		if child == nil {
			continue
		}
		if start := int(child.StartByte()); start > 0 && start < srcLen {
			bounds = append(bounds, start)
		}
	}
	bounds = append(bounds, srcLen)
	return bounds
}
