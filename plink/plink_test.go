package plink

import "testing"

func TestPushAndEachOrder(t *testing.T) {
	a := NewArena[string]()
	h := Nil
	h = a.Push(h, "a")
	h = a.Push(h, "b")
	h = a.Push(h, "c")

	var got []string
	a.Each(h, func(s string) { got = append(got, s) })

	want := []string{"c", "b", "a"}
	if len(got) != len(want) {
		t.Fatalf("got %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("got %v, want %v", got, want)
		}
	}
}

func TestLenOfNilChainIsZero(t *testing.T) {
	a := NewArena[int]()
	if n := a.Len(Nil); n != 0 {
		t.Fatalf("got %d, want 0", n)
	}
}

func TestSharedSuffixIsIndependentOfBranch(t *testing.T) {
	a := NewArena[int]()
	base := a.Push(Nil, 1)
	left := a.Push(base, 2)
	right := a.Push(base, 3)

	if a.Len(left) != 2 || a.Len(right) != 2 {
		t.Fatalf("expected both branches to see the shared base node")
	}
}
