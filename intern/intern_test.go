package intern

import "testing"

func TestInternReturnsStableHandle(t *testing.T) {
	s := New()
	a := s.Intern("expr")
	b := s.Intern("expr")
	if a != b {
		t.Fatalf("expected identical handles, got %v and %v", a, b)
	}

	c := s.Intern("term")
	if a == c {
		t.Fatalf("expected distinct handles for distinct text")
	}
}

func TestLookupRoundTrips(t *testing.T) {
	s := New()
	h := s.Intern("factor")
	text, ok := s.Lookup(h)
	if !ok || text != "factor" {
		t.Fatalf("got (%q, %v), want (\"factor\", true)", text, ok)
	}

	if _, ok := s.Lookup(Handle(999)); ok {
		t.Fatalf("expected lookup of unknown handle to fail")
	}
}

func TestFindDoesNotCreate(t *testing.T) {
	s := New()
	if _, ok := s.Find("nope"); ok {
		t.Fatalf("expected Find to report absence without creating")
	}
	s.Intern("nope")
	if _, ok := s.Find("nope"); !ok {
		t.Fatalf("expected Find to report presence after Intern")
	}
}
