package model

import "testing"

func TestFlattenNodes_PathsAndIDs(t *testing.T) {
	result := FlattenNodes(FilterAttributes(loadFixture(t)))
	if len(result) != 6 {
		t.Fatalf("expected 6 flat nodes, got %d", len(result))
	}
	for i, n := range result {
		if n.ID != i+1 {
			t.Errorf("node %d has ID %d", i, n.ID)
		}
	}
	if result[0].Path != "hierarchy" {
		t.Errorf("expected root path 'hierarchy', got %q", result[0].Path)
	}
	if result[4].Path != "hierarchy > FrameLayout > Button" {
		t.Errorf("unexpected button path %q", result[4].Path)
	}
	if result[4].Bounds != "[100,200][300,400]" {
		t.Errorf("unexpected bounds %q", result[4].Bounds)
	}
}

func TestFlattenNodes_Nil(t *testing.T) {
	if got := FlattenNodes(nil); len(got) != 0 {
		t.Errorf("expected empty result, got %d", len(got))
	}
}

func TestInteractive(t *testing.T) {
	nodes := Interactive(FlattenNodes(loadFixture(t)))
	if len(nodes) != 4 {
		t.Fatalf("expected 4 interactive nodes, got %d", len(nodes))
	}
	for _, n := range nodes {
		if !n.Clickable {
			t.Errorf("node %d should be clickable", n.ID)
		}
	}
}

func TestShortClass(t *testing.T) {
	cases := map[string]string{
		"android.widget.Button": "Button",
		"Button":                "Button",
		"":                      "node",
		"trailing.":             "trailing.",
	}
	for class, want := range cases {
		n := &UiNode{Tag: "node"}
		if class != "" {
			n.Attrs = []Attr{{Key: "class", Value: class}}
		}
		if got := shortClass(n); got != want {
			t.Errorf("shortClass(%q) = %q, want %q", class, got, want)
		}
	}
}
