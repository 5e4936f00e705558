package model

import (
	"os"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func loadFixture(t *testing.T) *UiNode {
	t.Helper()
	data, err := os.ReadFile("testdata/login.xml")
	if err != nil {
		t.Fatalf("read fixture: %v", err)
	}
	root, err := ParseHierarchy(string(data))
	if err != nil {
		t.Fatalf("ParseHierarchy: %v", err)
	}
	return root
}

func TestParseHierarchy_Structure(t *testing.T) {
	root := loadFixture(t)
	if root.Tag != "hierarchy" {
		t.Errorf("expected root tag hierarchy, got %q", root.Tag)
	}
	if len(root.Children) != 1 {
		t.Fatalf("expected 1 child, got %d", len(root.Children))
	}
	frame := root.Children[0]
	if len(frame.Children) != 4 {
		t.Fatalf("expected 4 widgets, got %d", len(frame.Children))
	}
	btn := frame.Children[2]
	if btn.ResourceID() != "com.example.shop:id/login" {
		t.Errorf("unexpected resource-id %q", btn.ResourceID())
	}
	if !btn.Clickable() {
		t.Error("expected button to be clickable")
	}
	if btn.ContentDesc() != "Sign in" {
		t.Errorf("unexpected content-desc %q", btn.ContentDesc())
	}
}

func TestParseHierarchy_Invalid(t *testing.T) {
	if _, err := ParseHierarchy("<hierarchy><node></hierarchy>"); err == nil {
		t.Error("expected error for malformed document")
	}
	if _, err := ParseHierarchy(""); err == nil {
		t.Error("expected error for empty document")
	}
}

func TestFilterAttributes_AllowListRecursive(t *testing.T) {
	filtered := FilterAttributes(loadFixture(t))
	Walk(filtered, func(n *UiNode) bool {
		for _, a := range n.Attrs {
			if !IsAllowedAttribute(a.Key) {
				t.Errorf("node %s kept attribute %q", n.Tag, a.Key)
			}
		}
		return true
	})
}

func TestFilterAttributes_KeepsOrderAndValues(t *testing.T) {
	n := &UiNode{Tag: "node", Attrs: []Attr{
		{Key: "focused", Value: "true"},
		{Key: "text", Value: "Hi"},
		{Key: "checked", Value: "false"},
		{Key: "bounds", Value: "[0,0][1,1]"},
		{Key: "resource-id", Value: ""},
	}}
	got := FilterAttributes(n).Attrs
	want := []Attr{
		{Key: "text", Value: "Hi"},
		{Key: "bounds", Value: "[0,0][1,1]"},
		{Key: "resource-id", Value: ""},
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("filtered attrs mismatch (-want +got):\n%s", diff)
	}
}

func TestFilterAttributes_Idempotent(t *testing.T) {
	once := FilterAttributes(loadFixture(t))
	twice := FilterAttributes(once)
	if diff := cmp.Diff(once, twice); diff != "" {
		t.Errorf("filter not idempotent (-once +twice):\n%s", diff)
	}
}

func TestFilterAttributes_DoesNotMutateInput(t *testing.T) {
	root := loadFixture(t)
	before := len(root.Children[0].Attrs)
	FilterAttributes(root)
	if len(root.Children[0].Attrs) != before {
		t.Errorf("input tree modified: %d attrs, want %d", len(root.Children[0].Attrs), before)
	}
}

func TestFilterAttributes_Nil(t *testing.T) {
	if FilterAttributes(nil) != nil {
		t.Error("expected nil for nil input")
	}
}

func TestXML_Deterministic(t *testing.T) {
	filtered := FilterAttributes(loadFixture(t))
	a, err := filtered.XML()
	if err != nil {
		t.Fatalf("XML: %v", err)
	}
	b, err := filtered.XML()
	if err != nil {
		t.Fatalf("XML: %v", err)
	}
	if a != b {
		t.Error("XML output differs between calls")
	}
	if !strings.HasPrefix(a, `<?xml version="1.0" encoding="UTF-8"?>`) {
		t.Errorf("missing declaration: %q", a[:40])
	}
	if strings.Contains(a, "focusable=") || strings.Contains(a, "displayed=") {
		t.Error("filtered XML contains dropped attributes")
	}
}

func TestXML_Reparses(t *testing.T) {
	filtered := FilterAttributes(loadFixture(t))
	s, err := filtered.XML()
	if err != nil {
		t.Fatalf("XML: %v", err)
	}
	again, err := ParseHierarchy(s)
	if err != nil {
		t.Fatalf("reparse: %v", err)
	}
	if diff := cmp.Diff(filtered, again); diff != "" {
		t.Errorf("reparsed tree differs (-want +got):\n%s", diff)
	}
}

func TestTextValue_FallsBackToCharData(t *testing.T) {
	n := &UiNode{Tag: "label", Text: "inner"}
	if n.TextValue() != "inner" {
		t.Errorf("expected inner, got %q", n.TextValue())
	}
	n.Attrs = []Attr{{Key: "text", Value: "attr"}}
	if n.TextValue() != "attr" {
		t.Errorf("expected attr, got %q", n.TextValue())
	}
}

func TestWalk_SkipChildren(t *testing.T) {
	root := loadFixture(t)
	count := 0
	Walk(root, func(n *UiNode) bool {
		count++
		return n.Tag == "hierarchy"
	})
	if count != 2 {
		t.Errorf("expected 2 visited nodes, got %d", count)
	}
}
