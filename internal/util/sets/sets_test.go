package sets

import "testing"

func TestSetBasics(t *testing.T) {
	s := New("a", "b")
	if !s.Has("a") || !s.Has("b") {
		t.Fatal("expected pre-populated values present")
	}
	if s.Has("c") {
		t.Fatal("unexpected member")
	}
	s.Add("c")
	if !s.Has("c") {
		t.Fatal("Add did not insert")
	}
	s.Delete("a")
	if s.Has("a") {
		t.Fatal("Delete did not remove")
	}
	if s.Len() != 2 {
		t.Fatalf("expected len 2, got %d", s.Len())
	}
}

func TestSharedInstance(t *testing.T) {
	// Two references to the same set observe each other's marks, which is
	// the property the navigation seen-tracker relies on.
	a := New[string]()
	b := a
	a.Add("module:thing")
	if !b.Has("module:thing") {
		t.Fatal("shared set did not observe insertion")
	}
}
