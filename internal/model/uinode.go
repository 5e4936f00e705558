package model

import (
	"fmt"
	"strings"

	"github.com/beevik/etree"
)

// AllowedAttributes lists the UI hierarchy attributes kept during
// normalization. Everything else (timestamps, focus/checked state, internal
// flags) is dropped from every node.
var AllowedAttributes = []string{
	"index",
	"package",
	"class",
	"text",
	"resource-id",
	"content-desc",
	"clickable",
	"scrollable",
	"bounds",
}

var allowedSet = func() map[string]bool {
	m := make(map[string]bool, len(AllowedAttributes))
	for _, k := range AllowedAttributes {
		m[k] = true
	}
	return m
}()

// IsAllowedAttribute reports whether key survives normalization.
func IsAllowedAttribute(key string) bool {
	return allowedSet[key]
}

// Attr is a single name/value pair on a UiNode, kept in document order.
type Attr struct {
	Key   string `yaml:"k" json:"k"`
	Value string `yaml:"v" json:"v"`
}

// UiNode is a node of the device UI hierarchy.
type UiNode struct {
	Tag      string    `yaml:"tag"                json:"tag"`
	Attrs    []Attr    `yaml:"attrs,omitempty"    json:"attrs,omitempty"`
	Text     string    `yaml:"text,omitempty"     json:"text,omitempty"` // Trimmed character data
	Children []*UiNode `yaml:"children,omitempty" json:"children,omitempty"`
}

// ParseHierarchy parses a page source document into a UiNode tree.
func ParseHierarchy(source string) (*UiNode, error) {
	doc := etree.NewDocument()
	if err := doc.ReadFromString(source); err != nil {
		return nil, fmt.Errorf("parse hierarchy: %w", err)
	}
	root := doc.Root()
	if root == nil {
		return nil, fmt.Errorf("parse hierarchy: document has no root element")
	}
	return fromElement(root), nil
}

func fromElement(el *etree.Element) *UiNode {
	n := &UiNode{
		Tag:  el.FullTag(),
		Text: strings.TrimSpace(el.Text()),
	}
	for _, a := range el.Attr {
		n.Attrs = append(n.Attrs, Attr{Key: a.FullKey(), Value: a.Value})
	}
	for _, child := range el.ChildElements() {
		n.Children = append(n.Children, fromElement(child))
	}
	return n
}

// Attr returns the value of the named attribute and whether it is present.
func (n *UiNode) Attr(key string) (string, bool) {
	for _, a := range n.Attrs {
		if a.Key == key {
			return a.Value, true
		}
	}
	return "", false
}

func (n *UiNode) attr(key string) string {
	v, _ := n.Attr(key)
	return v
}

func (n *UiNode) ResourceID() string  { return n.attr("resource-id") }
func (n *UiNode) ContentDesc() string { return n.attr("content-desc") }
func (n *UiNode) Class() string       { return n.attr("class") }
func (n *UiNode) Clickable() bool     { return n.attr("clickable") == "true" }
func (n *UiNode) Scrollable() bool    { return n.attr("scrollable") == "true" }

// TextValue returns the node's text attribute, falling back to its character
// data when the attribute is absent.
func (n *UiNode) TextValue() string {
	if v, ok := n.Attr("text"); ok {
		return v
	}
	return n.Text
}

// Bounds parses the node's bounds attribute.
func (n *UiNode) Bounds() (Bounds, error) {
	v, ok := n.Attr("bounds")
	if !ok {
		return Bounds{}, fmt.Errorf("node %s has no bounds", n.Tag)
	}
	return ParseBounds(v)
}

// FilterAttributes returns a copy of the tree in which every node keeps only
// the allow-listed attributes. The input tree is not modified.
func FilterAttributes(n *UiNode) *UiNode {
	if n == nil {
		return nil
	}
	out := &UiNode{Tag: n.Tag, Text: n.Text}
	for _, a := range n.Attrs {
		if allowedSet[a.Key] {
			out.Attrs = append(out.Attrs, a)
		}
	}
	for _, child := range n.Children {
		out.Children = append(out.Children, FilterAttributes(child))
	}
	return out
}

// Walk visits n and its descendants depth-first. Returning false from fn
// skips the node's children.
func Walk(n *UiNode, fn func(*UiNode) bool) {
	if n == nil || !fn(n) {
		return
	}
	for _, child := range n.Children {
		Walk(child, fn)
	}
}

// XML serializes the tree as an indented XML document.
func (n *UiNode) XML() (string, error) {
	doc := etree.NewDocument()
	doc.CreateProcInst("xml", `version="1.0" encoding="UTF-8"`)
	doc.SetRoot(n.toElement())
	doc.Indent(2)
	s, err := doc.WriteToString()
	if err != nil {
		return "", fmt.Errorf("write hierarchy: %w", err)
	}
	return s, nil
}

func (n *UiNode) toElement() *etree.Element {
	el := etree.NewElement(n.Tag)
	for _, a := range n.Attrs {
		el.CreateAttr(a.Key, a.Value)
	}
	if n.Text != "" {
		el.SetText(n.Text)
	}
	for _, child := range n.Children {
		el.AddChild(child.toElement())
	}
	return el
}
