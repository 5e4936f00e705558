package model

import "fmt"

// Snapshot is a normalized view of one device page source.
type Snapshot struct {
	Root         *UiNode // Filtered hierarchy
	FilteredXML  string
	Semantic     SemanticTree
	SemanticYAML string
}

// Normalize parses a raw page source, drops non allow-listed attributes and
// renders both the filtered XML and the semantic YAML.
func Normalize(source string) (*Snapshot, error) {
	root, err := ParseHierarchy(source)
	if err != nil {
		return nil, err
	}
	filtered := FilterAttributes(root)
	xml, err := filtered.XML()
	if err != nil {
		return nil, err
	}
	tree := BuildSemanticTree(filtered)
	y, err := tree.YAML()
	if err != nil {
		return nil, fmt.Errorf("semantic tree: %w", err)
	}
	return &Snapshot{
		Root:         filtered,
		FilteredXML:  xml,
		Semantic:     tree,
		SemanticYAML: string(y),
	}, nil
}
