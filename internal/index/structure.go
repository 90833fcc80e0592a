package index

import (
	"fmt"
	"sort"
	"strings"
)

// Structure renders the indexed tree as indented text, directories first.
// maxDepth 0 means unlimited. Files carry their language and line count so
// a caller can pick targets without opening anything.
func (ix *Index) Structure(maxDepth int) string {
	root := newDirNode()
	ix.mu.RLock()
	for rel, entry := range ix.files {
		parts := strings.Split(rel, "/")
		node := root
		for _, part := range parts[:len(parts)-1] {
			child, ok := node.dirs[part]
			if !ok {
				child = newDirNode()
				node.dirs[part] = child
			}
			node = child
		}
		name := parts[len(parts)-1]
		node.files = append(node.files, fmt.Sprintf("%s (%s, %d lines)", name, entry.Language, entry.Lines))
	}
	ix.mu.RUnlock()

	var b strings.Builder
	b.WriteString(".\n")
	root.render(&b, 1, maxDepth)
	return b.String()
}

type dirNode struct {
	dirs  map[string]*dirNode
	files []string
}

func newDirNode() *dirNode {
	return &dirNode{dirs: make(map[string]*dirNode)}
}

func (n *dirNode) render(b *strings.Builder, depth, maxDepth int) {
	if maxDepth > 0 && depth > maxDepth {
		return
	}
	indent := strings.Repeat("  ", depth)

	names := make([]string, 0, len(n.dirs))
	for name := range n.dirs {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		child := n.dirs[name]
		fmt.Fprintf(b, "%s%s/", indent, name)
		if maxDepth > 0 && depth == maxDepth && (len(child.dirs) > 0 || len(child.files) > 0) {
			fmt.Fprintf(b, " (%d entries)", len(child.dirs)+len(child.files))
		}
		b.WriteByte('\n')
		child.render(b, depth+1, maxDepth)
	}

	sort.Strings(n.files)
	for _, f := range n.files {
		fmt.Fprintf(b, "%s%s\n", indent, f)
	}
}
