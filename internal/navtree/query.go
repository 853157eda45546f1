package navtree

import "errors"

// ErrStopWalk can be returned from a WalkFunc to end a walk early without
// reporting an error.
var ErrStopWalk = errors.New("stop walk")

// WalkFunc is called for every node in depth-first pre-order.
type WalkFunc func(n *Node, depth int) error

// Walk visits n and its descendants in pre-order, children in stored order.
func (n *Node) Walk(fn WalkFunc) error {
	err := n.walk(fn, 0)
	if errors.Is(err, ErrStopWalk) {
		return nil
	}
	return err
}

func (n *Node) walk(fn WalkFunc, depth int) error {
	if err := fn(n, depth); err != nil {
		return err
	}
	for _, c := range n.Children {
		if err := c.walk(fn, depth+1); err != nil {
			return err
		}
	}
	return nil
}

// Find returns the node at path, or nil.
func (n *Node) Find(path string) *Node {
	chain := n.Ancestors(path)
	if chain == nil {
		return nil
	}
	return chain[len(chain)-1]
}

// Ancestors returns the chain of nodes from the root down to the node at
// path, inclusive. It returns nil when path is not in the tree.
func (n *Node) Ancestors(path string) []*Node {
	chain := []*Node{n}
	node := n
	prefix := RootPath
	for _, segment := range Segments(path) {
		prefix += segment + "/"
		var next *Node
		for _, c := range node.Children {
			if c.Path == prefix {
				next = c
				break
			}
		}
		if next == nil {
			return nil
		}
		chain = append(chain, next)
		node = next
	}
	return chain
}

// Count returns the number of nodes in the tree, root included.
func (n *Node) Count() int {
	count := 0
	_ = n.Walk(func(*Node, int) error {
		count++
		return nil
	})
	return count
}

// Pages returns the number of nodes that carry metadata.
func (n *Node) Pages() int {
	count := 0
	_ = n.Walk(func(node *Node, _ int) error {
		if node.Meta != nil {
			count++
		}
		return nil
	})
	return count
}

// Equal reports whether two trees have the same shape, paths, child order
// and metadata pointers.
func Equal(a, b *Node) bool {
	if a == nil || b == nil {
		return a == b
	}
	if a.Path != b.Path || a.Meta != b.Meta || len(a.Children) != len(b.Children) {
		return false
	}
	for i := range a.Children {
		if !Equal(a.Children[i], b.Children[i]) {
			return false
		}
	}
	return true
}

// Duplicates returns the non-excluded paths that occur more than once in
// entries, in order of their second occurrence.
func Duplicates(entries []Entry) []string {
	seen := make(map[string]int, len(entries))
	var dups []string
	for _, e := range entries {
		if e.Excluded {
			continue
		}
		key := normalize(e.Path)
		seen[key]++
		if seen[key] == 2 {
			dups = append(dups, key)
		}
	}
	return dups
}

func normalize(path string) string {
	segments := Segments(path)
	if len(segments) == 0 {
		return RootPath
	}
	out := RootPath
	for _, s := range segments {
		out += s + "/"
	}
	return out
}
