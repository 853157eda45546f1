package navtree

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"
)

// View is the JSON shape of a node.
type View struct {
	Path     string  `json:"path"`
	Title    string  `json:"title,omitempty"`
	URL      string  `json:"url,omitempty"`
	Children []*View `json:"children,omitempty"`
}

// ToView converts the tree for serialization. Placeholders have no title.
func (n *Node) ToView() *View {
	v := &View{Path: n.Path}
	if n.Meta != nil {
		v.Title = n.Meta.Label()
		v.URL = n.Meta.CanonicalURL
	}
	for _, c := range n.Children {
		v.Children = append(v.Children, c.ToView())
	}
	return v
}

// WriteJSON writes the tree as indented JSON.
func WriteJSON(w io.Writer, root *Node) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(root.ToView())
}

// WriteText writes one line per node, indented by depth. Placeholders are
// marked with "(placeholder)".
func WriteText(w io.Writer, root *Node) error {
	return root.Walk(func(n *Node, depth int) error {
		label := n.Label()
		if n.IsPlaceholder() {
			label = "(placeholder)"
		}
		_, err := fmt.Fprintf(w, "%s%s  %s\n", strings.Repeat("  ", depth), n.Path, label)
		return err
	})
}
