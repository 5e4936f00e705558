package model

import (
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestBuildSemanticTree_DropsBlankAndUnknown(t *testing.T) {
	n := &UiNode{Tag: "node", Attrs: []Attr{
		{Key: "text", Value: "OK"},
		{Key: "resource-id", Value: "  "},
		{Key: "focused", Value: "true"},
	}}
	got := BuildSemanticTree(n)
	want := SemanticTree{Attrs: map[string]string{"text": "OK"}}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("tree mismatch (-want +got):\n%s", diff)
	}
}

func TestBuildSemanticTree_GroupsRepeatedTags(t *testing.T) {
	root := &UiNode{Tag: "list", Children: []*UiNode{
		{Tag: "item", Attrs: []Attr{{Key: "text", Value: "a"}}},
		{Tag: "item", Attrs: []Attr{{Key: "text", Value: "b"}}},
		{Tag: "spacer"},
		{Tag: "item", Attrs: []Attr{{Key: "text", Value: "c"}}},
	}}
	got := BuildSemanticTree(root)
	items := got.Children["item"]
	if len(items) != 3 {
		t.Fatalf("expected 3 items, got %d", len(items))
	}
	for i, want := range []string{"a", "b", "c"} {
		if items[i].Attrs["text"] != want {
			t.Errorf("item %d text = %q, want %q", i, items[i].Attrs["text"], want)
		}
	}
	if _, ok := got.Children["spacer"]; ok {
		t.Error("empty child should be omitted")
	}
}

func TestBuildSemanticTree_Content(t *testing.T) {
	got := BuildSemanticTree(&UiNode{Tag: "label", Text: "hello"})
	if diff := cmp.Diff([]string{"hello"}, got.Content); diff != "" {
		t.Errorf("content mismatch (-want +got):\n%s", diff)
	}
}

func TestSemanticYAML_Deterministic(t *testing.T) {
	tree := BuildSemanticTree(FilterAttributes(loadFixture(t)))
	a, err := tree.YAML()
	if err != nil {
		t.Fatalf("YAML: %v", err)
	}
	for i := 0; i < 5; i++ {
		b, err := tree.YAML()
		if err != nil {
			t.Fatalf("YAML: %v", err)
		}
		if string(a) != string(b) {
			t.Fatal("YAML output differs between calls")
		}
	}
}

func TestSemanticYAML_SortedKeys(t *testing.T) {
	tree := SemanticTree{Attrs: map[string]string{
		"text": "x", "bounds": "[0,0][1,1]", "class": "c", "index": "0",
	}}
	out, err := tree.YAML()
	if err != nil {
		t.Fatalf("YAML: %v", err)
	}
	var keys []string
	for _, line := range strings.Split(strings.TrimSpace(string(out)), "\n") {
		keys = append(keys, strings.SplitN(line, ":", 2)[0])
	}
	want := []string{"bounds", "class", "index", "text"}
	if diff := cmp.Diff(want, keys); diff != "" {
		t.Errorf("key order mismatch (-want +got):\n%s", diff)
	}
}

func TestSemanticYAML_QuotesAmbiguousScalars(t *testing.T) {
	tree := SemanticTree{Attrs: map[string]string{"clickable": "true", "index": "0"}}
	out, err := tree.YAML()
	if err != nil {
		t.Fatalf("YAML: %v", err)
	}
	back, err := ParseSemanticYAML(out)
	if err != nil {
		t.Fatalf("ParseSemanticYAML: %v", err)
	}
	if back.Attrs["clickable"] != "true" || back.Attrs["index"] != "0" {
		t.Errorf("scalars not preserved: %v", back.Attrs)
	}
}

func TestSemanticYAML_RoundTrip(t *testing.T) {
	tree := BuildSemanticTree(FilterAttributes(loadFixture(t)))
	out, err := tree.YAML()
	if err != nil {
		t.Fatalf("YAML: %v", err)
	}
	back, err := ParseSemanticYAML(out)
	if err != nil {
		t.Fatalf("ParseSemanticYAML: %v", err)
	}
	if diff := cmp.Diff(tree, back); diff != "" {
		t.Errorf("round trip mismatch (-want +got):\n%s", diff)
	}
}

func TestParseSemanticYAML_RejectsNestedMapping(t *testing.T) {
	if _, err := ParseSemanticYAML([]byte("node:\n  text: x\n")); err == nil {
		t.Error("expected error for bare nested mapping")
	}
}

func TestNormalize(t *testing.T) {
	data := `<hierarchy rotation="0"><node text="Go" focused="true" bounds="[0,0][10,10]"/></hierarchy>`
	snap, err := Normalize(data)
	if err != nil {
		t.Fatalf("Normalize: %v", err)
	}
	if strings.Contains(snap.FilteredXML, "focused") || strings.Contains(snap.FilteredXML, "rotation") {
		t.Errorf("filtered XML kept dropped attributes:\n%s", snap.FilteredXML)
	}
	if !strings.Contains(snap.SemanticYAML, "text: Go") {
		t.Errorf("semantic YAML missing text:\n%s", snap.SemanticYAML)
	}
	if snap.Root == nil || len(snap.Root.Children) != 1 {
		t.Fatal("expected filtered root with one child")
	}
}

func TestNormalize_Invalid(t *testing.T) {
	if _, err := Normalize("not xml <"); err == nil {
		t.Error("expected error")
	}
}
