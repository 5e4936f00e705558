package model

import (
	"bytes"
	"fmt"
	"strings"

	"gopkg.in/yaml.v3"
)

// ContentKey is the semantic-tree key holding a node's free text.
const ContentKey = "content"

// SemanticTree is the reduced form of a UiNode that is shown to the model.
// Child nodes are grouped by tag in document order; free text becomes a
// content list. Empty nodes never appear in a tree.
type SemanticTree struct {
	Attrs    map[string]string
	Content  []string
	Children map[string][]SemanticTree
}

// IsEmpty reports whether the tree carries no attributes, text or children.
func (t SemanticTree) IsEmpty() bool {
	return len(t.Attrs) == 0 && len(t.Content) == 0 && len(t.Children) == 0
}

// BuildSemanticTree reduces a hierarchy node. Attributes outside the
// allow-list or with blank values are dropped.
func BuildSemanticTree(n *UiNode) SemanticTree {
	var t SemanticTree
	if n == nil {
		return t
	}
	for _, child := range n.Children {
		ct := BuildSemanticTree(child)
		if ct.IsEmpty() {
			continue
		}
		if t.Children == nil {
			t.Children = make(map[string][]SemanticTree)
		}
		t.Children[child.Tag] = append(t.Children[child.Tag], ct)
	}
	if text := strings.TrimSpace(n.Text); text != "" {
		t.Content = append(t.Content, text)
	}
	for _, a := range n.Attrs {
		if !allowedSet[a.Key] || strings.TrimSpace(a.Value) == "" {
			continue
		}
		if t.Attrs == nil {
			t.Attrs = make(map[string]string)
		}
		t.Attrs[a.Key] = a.Value
	}
	return t
}

// toMap flattens the tree into the mapping that is serialized. Attributes
// win over a child tag or content list of the same name.
func (t SemanticTree) toMap() map[string]interface{} {
	m := make(map[string]interface{}, len(t.Attrs)+len(t.Children)+1)
	for tag, children := range t.Children {
		list := make([]interface{}, 0, len(children))
		for _, c := range children {
			list = append(list, c.toMap())
		}
		m[tag] = list
	}
	if len(t.Content) > 0 {
		content := make([]interface{}, 0, len(t.Content))
		for _, c := range t.Content {
			content = append(content, c)
		}
		m[ContentKey] = content
	}
	for k, v := range t.Attrs {
		m[k] = v
	}
	return m
}

// YAML renders the tree as indentation-based YAML with sorted keys. Output is
// byte-identical for identical trees.
func (t SemanticTree) YAML() ([]byte, error) {
	var buf bytes.Buffer
	enc := yaml.NewEncoder(&buf)
	enc.SetIndent(2)
	if err := enc.Encode(t.toMap()); err != nil {
		return nil, fmt.Errorf("yaml encode: %w", err)
	}
	if err := enc.Close(); err != nil {
		return nil, fmt.Errorf("yaml encode: %w", err)
	}
	return buf.Bytes(), nil
}

// ParseSemanticYAML reads a tree previously written by YAML.
func ParseSemanticYAML(data []byte) (SemanticTree, error) {
	var raw map[string]interface{}
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return SemanticTree{}, fmt.Errorf("yaml decode: %w", err)
	}
	return semanticFromMap(raw)
}

func semanticFromMap(m map[string]interface{}) (SemanticTree, error) {
	var t SemanticTree
	for k, v := range m {
		switch val := v.(type) {
		case []interface{}:
			if k == ContentKey && allScalars(val) {
				for _, c := range val {
					t.Content = append(t.Content, fmt.Sprint(c))
				}
				continue
			}
			for i, item := range val {
				child, ok := item.(map[string]interface{})
				if !ok {
					return SemanticTree{}, fmt.Errorf("%s[%d]: expected mapping, got %T", k, i, item)
				}
				ct, err := semanticFromMap(child)
				if err != nil {
					return SemanticTree{}, fmt.Errorf("%s[%d]: %w", k, i, err)
				}
				if t.Children == nil {
					t.Children = make(map[string][]SemanticTree)
				}
				t.Children[k] = append(t.Children[k], ct)
			}
		case map[string]interface{}:
			return SemanticTree{}, fmt.Errorf("%s: unexpected mapping", k)
		default:
			if t.Attrs == nil {
				t.Attrs = make(map[string]string)
			}
			t.Attrs[k] = fmt.Sprint(val)
		}
	}
	return t, nil
}

func allScalars(list []interface{}) bool {
	for _, v := range list {
		switch v.(type) {
		case map[string]interface{}, []interface{}:
			return false
		}
	}
	return true
}
