// Package navtree folds a flat list of site paths into the hierarchical
// navigation tree used for menus and breadcrumbs.
//
// Every intermediate path prefix becomes a node, whether or not a document
// exists at that prefix. Siblings keep the order in which they were first
// seen in the input; the tree is never sorted.
package navtree

import (
	"strings"

	"git.home.luguber.info/inful/sitebuilder/internal/meta"
)

// RootPath is the path of the tree root.
const RootPath = "/"

// Entry is one document offered to the builder.
type Entry struct {
	Path     string
	Meta     *meta.Page
	Excluded bool
}

// Node is a navigation tree node. A nil Meta marks a placeholder for a path
// prefix that has no document of its own.
type Node struct {
	Path     string
	Meta     *meta.Page
	Children []*Node
}

// Build folds entries into a tree rooted at "/". Excluded entries are
// skipped entirely. When two entries share a path the later one's metadata
// wins. Build never fails; paths are expected to satisfy ValidatePath.
func Build(entries []Entry) *Node {
	root := &Node{Path: RootPath}
	for _, e := range entries {
		if e.Excluded {
			continue
		}
		node := root
		prefix := RootPath
		for _, segment := range Segments(e.Path) {
			prefix += segment + "/"
			node = node.child(prefix)
		}
		node.Meta = e.Meta
	}
	return root
}

// child returns the child with the given path, appending an empty one when
// it does not exist yet.
func (n *Node) child(path string) *Node {
	for _, c := range n.Children {
		if c.Path == path {
			return c
		}
	}
	c := &Node{Path: path}
	n.Children = append(n.Children, c)
	return c
}

// Segments splits a site path into its non-empty segments.
func Segments(path string) []string {
	parts := strings.Split(path, "/")
	out := parts[:0]
	for _, p := range parts {
		if p != "" {
			out = append(out, p)
		}
	}
	return out
}

// IsPlaceholder reports whether the node has no document attached.
func (n *Node) IsPlaceholder() bool { return n.Meta == nil }

// Depth is the number of segments in the node's path.
func (n *Node) Depth() int { return len(Segments(n.Path)) }

// Label is the text shown for the node in navigation. Placeholders use
// their last path segment.
func (n *Node) Label() string {
	if n.Meta != nil {
		if l := n.Meta.Label(); l != "" {
			return l
		}
	}
	segments := Segments(n.Path)
	if len(segments) == 0 {
		return RootPath
	}
	return segments[len(segments)-1]
}
