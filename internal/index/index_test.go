package index

import (
	"sort"
	"testing"

	"github.com/paulmach/orb"
)

func bound(minX, minY, maxX, maxY float64) orb.Bound {
	return orb.Bound{Min: orb.Point{minX, minY}, Max: orb.Point{maxX, maxY}}
}

func TestIntersectingFindsOverlaps(t *testing.T) {
	idx := New([]Entry{
		{ID: "a", Bound: bound(0, 0, 10, 10)},
		{ID: "b", Bound: bound(5, 5, 15, 15)},
		{ID: "c", Bound: bound(100, 100, 110, 110)},
	})

	got := idx.Intersecting(bound(0, 0, 10, 10), "a")
	sort.Strings(got)
	if len(got) != 1 || got[0] != "b" {
		t.Fatalf("expected [b], got %v", got)
	}
}

func TestIntersectingExcludesSelf(t *testing.T) {
	idx := New([]Entry{{ID: "a", Bound: bound(0, 0, 10, 10)}})
	got := idx.Intersecting(bound(0, 0, 10, 10), "a")
	if len(got) != 0 {
		t.Fatalf("expected no hits excluding self, got %v", got)
	}
}

func TestLen(t *testing.T) {
	idx := New([]Entry{
		{ID: "a", Bound: bound(0, 0, 1, 1)},
		{ID: "b", Bound: bound(2, 2, 3, 3)},
	})
	if idx.Len() != 2 {
		t.Fatalf("expected len 2, got %d", idx.Len())
	}
}

func TestDegenerateBoundDoesNotPanic(t *testing.T) {
	idx := New([]Entry{{ID: "point", Bound: bound(5, 5, 5, 5)}})
	_ = idx.Intersecting(bound(0, 0, 10, 10), "")
}
