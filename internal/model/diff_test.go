package model

import "testing"

func TestNodeHash_Stable(t *testing.T) {
	n := FlatNode{ID: 1, Class: "android.widget.Button", ResourceID: "id/ok", Path: "hierarchy > Button"}
	if NodeHash(n) != NodeHash(n) {
		t.Error("hash not stable")
	}
}

func TestNodeHash_IgnoresIDTextAndBounds(t *testing.T) {
	a := FlatNode{ID: 1, Class: "Button", Text: "old", Bounds: "[0,0][1,1]", Path: "p"}
	b := FlatNode{ID: 9, Class: "Button", Text: "new", Bounds: "[0,0][2,2]", Path: "p"}
	if NodeHash(a) != NodeHash(b) {
		t.Error("hash should only depend on identity fields")
	}
}

func TestNodeHash_DiffersByPath(t *testing.T) {
	a := FlatNode{Class: "Button", Path: "a > Button"}
	b := FlatNode{Class: "Button", Path: "b > Button"}
	if NodeHash(a) == NodeHash(b) {
		t.Error("different paths should produce different hashes")
	}
}

func TestDiffNodes_NoChanges(t *testing.T) {
	nodes := FlattenNodes(loadFixture(t))
	diff := DiffNodes(nodes, nodes)
	if !diff.Empty() {
		t.Errorf("expected empty diff, got %+v", diff)
	}
	if diff.UnchangedCount != len(nodes) {
		t.Errorf("expected %d unchanged, got %d", len(nodes), diff.UnchangedCount)
	}
}

func TestDiffNodes_AddedRemovedChanged(t *testing.T) {
	prev := []FlatNode{
		{ID: 1, Class: "Frame", Path: "Frame"},
		{ID: 2, Class: "EditText", ResourceID: "id/email", Text: "", Path: "Frame > EditText"},
		{ID: 3, Class: "ProgressBar", Path: "Frame > ProgressBar"},
	}
	curr := []FlatNode{
		{ID: 1, Class: "Frame", Path: "Frame"},
		{ID: 2, Class: "EditText", ResourceID: "id/email", Text: "a@b.c", Path: "Frame > EditText"},
		{ID: 3, Class: "Button", ResourceID: "id/next", Path: "Frame > Button"},
	}
	diff := DiffNodes(prev, curr)
	if len(diff.Added) != 1 || diff.Added[0].ResourceID != "id/next" {
		t.Errorf("unexpected added: %+v", diff.Added)
	}
	if len(diff.Removed) != 1 || diff.Removed[0].Class != "ProgressBar" {
		t.Errorf("unexpected removed: %+v", diff.Removed)
	}
	if len(diff.Changed) != 1 {
		t.Fatalf("expected 1 changed, got %d", len(diff.Changed))
	}
	if diff.Changed[0].Changes["t"][1] != "a@b.c" {
		t.Errorf("expected new text, got %v", diff.Changed[0].Changes["t"])
	}
	if diff.UnchangedCount != 1 {
		t.Errorf("expected 1 unchanged, got %d", diff.UnchangedCount)
	}
}

func TestDiffNodes_DuplicateSiblings(t *testing.T) {
	prev := []FlatNode{
		{ID: 1, Class: "Item", Path: "List > Item"},
		{ID: 2, Class: "Item", Path: "List > Item"},
		{ID: 3, Class: "Item", Path: "List > Item"},
	}
	curr := prev[:2]
	diff := DiffNodes(prev, curr)
	if len(diff.Removed) != 1 || diff.Removed[0].ID != 3 {
		t.Errorf("expected last item removed, got %+v", diff.Removed)
	}
	if diff.UnchangedCount != 2 {
		t.Errorf("expected 2 unchanged, got %d", diff.UnchangedCount)
	}
}

func TestDiffNodes_Empty(t *testing.T) {
	if diff := DiffNodes(nil, nil); !diff.Empty() {
		t.Errorf("expected empty diff, got %+v", diff)
	}
}
