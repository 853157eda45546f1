package render

import (
	"strings"

	"git.home.luguber.info/inful/sitebuilder/internal/navtree"
)

// NavItem is a navigation entry prepared for the layout.
type NavItem struct {
	Label       string
	Path        string
	Placeholder bool
	// Active is set on the ancestors of the current page.
	Active bool
	// Current is set on the current page.
	Current  bool
	Children []*NavItem
}

// Navigation converts the children of root into NavItems, marking the
// branch that leads to current.
func Navigation(root *navtree.Node, current string) []*NavItem {
	items := make([]*NavItem, 0, len(root.Children))
	for _, c := range root.Children {
		items = append(items, navItem(c, current))
	}
	return items
}

func navItem(n *navtree.Node, current string) *NavItem {
	item := &NavItem{
		Label:       n.Label(),
		Path:        n.Path,
		Placeholder: n.IsPlaceholder(),
		Current:     n.Path == current,
		Active:      n.Path != current && strings.HasPrefix(current, n.Path),
	}
	for _, c := range n.Children {
		item.Children = append(item.Children, navItem(c, current))
	}
	return item
}

// Crumb is one breadcrumb. Path is empty for placeholders.
type Crumb struct {
	Label   string
	Path    string
	Current bool
}

// Breadcrumbs returns the trail from the site root to current.
func Breadcrumbs(root *navtree.Node, current string) []Crumb {
	chain := root.Ancestors(current)
	crumbs := make([]Crumb, 0, len(chain))
	for i, n := range chain {
		c := Crumb{Label: n.Label(), Current: i == len(chain)-1}
		if i == 0 && n.IsPlaceholder() {
			c.Label = "Home"
		}
		if !n.IsPlaceholder() || i == 0 {
			c.Path = n.Path
		}
		crumbs = append(crumbs, c)
	}
	return crumbs
}
