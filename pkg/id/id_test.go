package id

import (
	"sort"
	"testing"
)

func TestNextMonotonic(t *testing.T) {
	g := NewGenerator()
	prev := g.Next()
	for i := 0; i < 1000; i++ {
		next := g.Next()
		if next.Compare(prev) <= 0 {
			t.Fatalf("id %d not increasing: %s <= %s", i, next, prev)
		}
		prev = next
	}
}

func TestClockRegression(t *testing.T) {
	g := NewGenerator()
	orig := NowMs
	defer func() { NowMs = orig }()

	now := int64(1_000_000)
	NowMs = func() int64 { return now }
	a := g.Next()
	now = 999_999 // clock goes backwards
	b := g.Next()
	if b.Compare(a) <= 0 {
		t.Fatalf("regressed clock broke monotonicity: %s <= %s", b, a)
	}
	if b.Ms() != 1_000_000 {
		t.Fatalf("expected pinned ms, got %d", b.Ms())
	}
}

func TestHexSortMatchesChronology(t *testing.T) {
	g := NewGenerator()
	orig := NowMs
	defer func() { NowMs = orig }()

	now := int64(5_000)
	NowMs = func() int64 { return now }
	var hexes []string
	for i := 0; i < 10; i++ {
		hexes = append(hexes, g.Next().String())
		now += 3
	}
	if !sort.StringsAreSorted(hexes) {
		t.Fatalf("hex forms not sorted: %v", hexes)
	}
}

func TestParseRoundTrip(t *testing.T) {
	g := NewGenerator()
	want := g.Next()
	got, err := Parse(want.String())
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if got != want {
		t.Fatalf("round trip: got %s want %s", got, want)
	}
	if _, err := Parse("zz"); err == nil {
		t.Fatalf("expected error for short input")
	}
	if _, err := Parse("zz000000000000000000000000000000"); err == nil {
		t.Fatalf("expected error for non-hex input")
	}
}
