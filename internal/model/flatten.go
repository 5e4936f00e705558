package model

import "strings"

// FlatNode is a hierarchy node with a path breadcrumb instead of children.
type FlatNode struct {
	ID          int    `yaml:"i"             json:"i"`
	Class       string `yaml:"c,omitempty"   json:"c,omitempty"`
	Text        string `yaml:"t,omitempty"   json:"t,omitempty"`
	ContentDesc string `yaml:"d,omitempty"   json:"d,omitempty"`
	ResourceID  string `yaml:"id,omitempty"  json:"id,omitempty"`
	Bounds      string `yaml:"b,omitempty"   json:"b,omitempty"`
	Clickable   bool   `yaml:"ck,omitempty"  json:"ck,omitempty"`
	Scrollable  bool   `yaml:"sc,omitempty"  json:"sc,omitempty"`
	Path        string `yaml:"p,omitempty"   json:"p,omitempty"`
}

// FlattenNodes converts a hierarchy into a flat list in document order. IDs
// are assigned sequentially from 1. Each path joins the short class names of
// the ancestors with " > ".
func FlattenNodes(root *UiNode) []FlatNode {
	var result []FlatNode
	flattenRecursive(root, "", &result)
	return result
}

func flattenRecursive(n *UiNode, parentPath string, result *[]FlatNode) {
	if n == nil {
		return
	}
	name := shortClass(n)
	currentPath := name
	if parentPath != "" {
		currentPath = parentPath + " > " + name
	}

	b, _ := n.Attr("bounds")
	*result = append(*result, FlatNode{
		ID:          len(*result) + 1,
		Class:       n.Class(),
		Text:        n.TextValue(),
		ContentDesc: n.ContentDesc(),
		ResourceID:  n.ResourceID(),
		Bounds:      b,
		Clickable:   n.Clickable(),
		Scrollable:  n.Scrollable(),
		Path:        currentPath,
	})

	for _, child := range n.Children {
		flattenRecursive(child, currentPath, result)
	}
}

// shortClass turns "android.widget.Button" into "Button", falling back to the
// element tag when no class is set.
func shortClass(n *UiNode) string {
	c := n.Class()
	if c == "" {
		c = n.Tag
	}
	if i := strings.LastIndex(c, "."); i >= 0 && i < len(c)-1 {
		return c[i+1:]
	}
	return c
}

// Interactive keeps only clickable or scrollable nodes.
func Interactive(nodes []FlatNode) []FlatNode {
	var result []FlatNode
	for _, n := range nodes {
		if n.Clickable || n.Scrollable {
			result = append(result, n)
		}
	}
	return result
}
