package content

import (
	"strings"
	"testing"
)

func TestNode_PutAndOrder(t *testing.T) {
	n := NewObject()
	n.Put("b", NewLeaf("2"))
	n.Put("a", NewLeaf("1"))
	n.Put("c", NewLeaf("3"))

	if got := n.Keys(); len(got) != 3 || got[0] != "b" || got[1] != "a" || got[2] != "c" {
		t.Errorf("Keys() = %v, want source order [b a c]", got)
	}

	// replacing keeps position
	n.Put("a", NewLeaf("one"))
	if got := n.Keys(); len(got) != 3 || got[1] != "a" {
		t.Errorf("Keys() after replace = %v", got)
	}
	if got := n.Child("a").Value(); got != "one" {
		t.Errorf("Child(a).Value() = %q, want %q", got, "one")
	}
}

func TestNode_PutOnLeafPanics(t *testing.T) {
	defer func() {
		if r := recover(); r == nil {
			t.Error("Expected panic when adding child to a leaf")
		}
	}()
	NewLeaf("x").Put("a", NewLeaf("y"))
}

func TestNode_LeafBehavior(t *testing.T) {
	leaf := NewLeaf("hello")
	if !leaf.IsLeaf() {
		t.Error("IsLeaf() = false for leaf")
	}
	if leaf.Child("anything") != nil {
		t.Error("Child() on leaf must return nil")
	}
	if leaf.Len() != 0 {
		t.Error("Len() on leaf must be 0")
	}

	obj := NewObject()
	if obj.IsLeaf() {
		t.Error("IsLeaf() = true for object")
	}
	if obj.Value() != "" {
		t.Error("Value() on object must be empty")
	}
}

func TestCountLeaves(t *testing.T) {
	if got := CountLeaves(nil); got != 0 {
		t.Errorf("CountLeaves(nil) = %d, want 0", got)
	}
	if got := CountLeaves(NewLeaf("x")); got != 1 {
		t.Errorf("CountLeaves(leaf) = %d, want 1", got)
	}

	root := NewObject()
	root.Put("a", NewLeaf("1"))
	inner := NewObject()
	inner.Put("b", NewLeaf("2"))
	inner.Put("c", NewLeaf("3"))
	root.Put("nested", inner)
	root.Put("empty", NewObject())

	if got := CountLeaves(root); got != 3 {
		t.Errorf("CountLeaves() = %d, want 3", got)
	}
}

func TestDepth(t *testing.T) {
	if got := Depth(nil); got != 0 {
		t.Errorf("Depth(nil) = %d, want 0", got)
	}
	if got := Depth(NewLeaf("x")); got != 0 {
		t.Errorf("Depth(leaf) = %d, want 0", got)
	}

	flat := NewObject()
	flat.Put("a", NewLeaf("1"))
	if got := Depth(flat); got != 1 {
		t.Errorf("Depth(flat) = %d, want 1", got)
	}

	nested := NewObject()
	inner := NewObject()
	inner.Put("b", NewLeaf("2"))
	nested.Put("a", inner)
	if got := Depth(nested); got != 2 {
		t.Errorf("Depth(nested) = %d, want 2", got)
	}
}

func TestTable_AddDropsEmpty(t *testing.T) {
	tbl := NewTable()

	if tbl.Add("empty", NewObject()) {
		t.Error("Add() must drop entry without leaves")
	}
	if tbl.Add("nil", nil) {
		t.Error("Add() must drop nil root")
	}
	if tbl.Len() != 0 {
		t.Errorf("Len() = %d, want 0", tbl.Len())
	}

	root := NewObject()
	root.Put("a", NewLeaf("1"))
	if !tbl.Add("real", root) {
		t.Error("Add() must keep entry with leaves")
	}
	if tbl.Len() != 1 {
		t.Errorf("Len() = %d, want 1", tbl.Len())
	}
	if tbl.Get("real") != root {
		t.Error("Get() did not return the stored root")
	}
}

func TestTable_OrderAndLeaves(t *testing.T) {
	tbl := NewTable()
	for _, key := range []string{"zeta", "alpha", "mid"} {
		root := NewObject()
		root.Put("v", NewLeaf(key))
		tbl.Add(key, root)
	}

	if got := tbl.Keys(); len(got) != 3 || got[0] != "zeta" || got[1] != "alpha" || got[2] != "mid" {
		t.Errorf("Keys() = %v, want insertion order [zeta alpha mid]", got)
	}
	if got := tbl.Leaves(); got != 3 {
		t.Errorf("Leaves() = %d, want 3", got)
	}
}

func TestTable_Nested(t *testing.T) {
	tbl := NewTable()

	flat := NewObject()
	flat.Put("a", NewLeaf("1"))
	tbl.Add("flat", flat)
	if tbl.Nested() {
		t.Error("Nested() = true for flat table")
	}

	deep := NewObject()
	inner := NewObject()
	inner.Put("b", NewLeaf("2"))
	deep.Put("group", inner)
	tbl.Add("deep", deep)
	if !tbl.Nested() {
		t.Error("Nested() = false for table with nested entry")
	}
}

func TestTable_String(t *testing.T) {
	tbl := NewTable()
	root := NewObject()
	root.Put("title", NewLeaf("Hello"))
	tbl.Add("app", root)

	out := tbl.String()
	if !strings.Contains(out, "app") || !strings.Contains(out, "title") || !strings.Contains(out, "Hello") {
		t.Errorf("String() missing expected content:\n%s", out)
	}
}
