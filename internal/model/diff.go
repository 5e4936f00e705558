package model

import (
	"crypto/sha256"
	"fmt"
)

// NodeChange is a node whose mutable properties changed between two reads.
type NodeChange struct {
	ID      int                  `yaml:"i"       json:"i"`
	Class   string               `yaml:"c"       json:"c"`
	Changes map[string][2]string `yaml:"changes" json:"changes"`
}

// TreeDiff is the result of comparing two flattened hierarchies.
type TreeDiff struct {
	Added          []FlatNode   `yaml:"added,omitempty"   json:"added,omitempty"`
	Removed        []FlatNode   `yaml:"removed,omitempty" json:"removed,omitempty"`
	Changed        []NodeChange `yaml:"changed,omitempty" json:"changed,omitempty"`
	UnchangedCount int          `yaml:"unchanged_count"   json:"unchanged_count"`
}

// Empty reports whether the two reads were identical.
func (d TreeDiff) Empty() bool {
	return len(d.Added) == 0 && len(d.Removed) == 0 && len(d.Changed) == 0
}

// NodeHash is a stable identity for a node across reads. Text and bounds are
// excluded since they change while the node stays the same.
func NodeHash(n FlatNode) string {
	h := sha256.New()
	fmt.Fprintf(h, "%s|%s|%s|%s", n.Class, n.ResourceID, n.ContentDesc, n.Path)
	return fmt.Sprintf("%x", h.Sum(nil))[:16]
}

// DiffNodes compares two flattened hierarchies by node hash. Nodes sharing a
// hash are paired in document order.
func DiffNodes(prev, curr []FlatNode) TreeDiff {
	prevByHash := make(map[string][]FlatNode, len(prev))
	for _, n := range prev {
		h := NodeHash(n)
		prevByHash[h] = append(prevByHash[h], n)
	}

	var diff TreeDiff
	for _, n := range curr {
		h := NodeHash(n)
		queue := prevByHash[h]
		if len(queue) == 0 {
			diff.Added = append(diff.Added, n)
			continue
		}
		p := queue[0]
		prevByHash[h] = queue[1:]
		if changes := diffProperties(p, n); changes != nil {
			diff.Changed = append(diff.Changed, NodeChange{ID: n.ID, Class: n.Class, Changes: changes})
		} else {
			diff.UnchangedCount++
		}
	}

	for _, n := range prev {
		h := NodeHash(n)
		if len(prevByHash[h]) == 0 {
			continue
		}
		if prevByHash[h][0].ID == n.ID {
			diff.Removed = append(diff.Removed, n)
			prevByHash[h] = prevByHash[h][1:]
		}
	}
	return diff
}

func diffProperties(prev, curr FlatNode) map[string][2]string {
	diffs := make(map[string][2]string)
	if prev.Text != curr.Text {
		diffs["t"] = [2]string{prev.Text, curr.Text}
	}
	if prev.Bounds != curr.Bounds {
		diffs["b"] = [2]string{prev.Bounds, curr.Bounds}
	}
	if prev.Clickable != curr.Clickable {
		diffs["ck"] = [2]string{fmt.Sprint(prev.Clickable), fmt.Sprint(curr.Clickable)}
	}
	if prev.Scrollable != curr.Scrollable {
		diffs["sc"] = [2]string{fmt.Sprint(prev.Scrollable), fmt.Sprint(curr.Scrollable)}
	}
	if len(diffs) == 0 {
		return nil
	}
	return diffs
}
