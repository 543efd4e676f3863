// Package index provides a bounding-box spatial index over features, used
// by the detector to cut the pairwise overlap/duplicate/containment checks
// (§3 Detector, "pairwise comparisons should be bounded by a spatial index,
// not run as an O(n^2) scan over all features") down from all-pairs to only
// the pairs whose bounding boxes actually intersect.
//
// It wraps github.com/dhconnelly/rtreego, the R-tree implementation the
// rest of the example pack doesn't carry but which is the standard pure-Go
// choice for this job.
package index

import (
	"github.com/dhconnelly/rtreego"
	"github.com/paulmach/orb"
)

const (
	minChildren = 25
	maxChildren = 50
)

// Entry is one indexed item: a feature ID plus its bounding box.
type Entry struct {
	ID    string
	Bound orb.Bound
}

// item adapts an Entry to rtreego.Spatial.
type item struct {
	entry Entry
	rect  rtreego.Rect
}

func (it *item) Bounds() rtreego.Rect { return it.rect }

// Index is a bounding-box spatial index over a fixed set of entries, built
// once per detector run and queried many times.
type Index struct {
	tree  *rtreego.Rtree
	byID  map[string]*item
	count int
}

// New builds an index over the given entries. Degenerate (zero-area and
// zero-length) bounds are expanded by a tiny epsilon since rtreego rejects
// rectangles with zero-length sides.
func New(entries []Entry) *Index {
	idx := &Index{
		tree: rtreego.NewTree(2, minChildren, maxChildren),
		byID: make(map[string]*item, len(entries)),
	}
	for _, e := range entries {
		idx.Add(e)
	}
	return idx
}

// Add inserts a single entry into the index.
func (idx *Index) Add(e Entry) {
	rect := boundToRect(e.Bound)
	it := &item{entry: e, rect: rect}
	idx.tree.Insert(it)
	idx.byID[e.ID] = it
	idx.count++
}

// Len reports the number of entries in the index.
func (idx *Index) Len() int { return idx.count }

// Intersecting returns the IDs of every indexed entry whose bounding box
// intersects b, excluding the entry named self (the detector always queries
// around one feature's own bound and must not pair it with itself).
func (idx *Index) Intersecting(b orb.Bound, self string) []string {
	rect := boundToRect(b)
	hits := idx.tree.SearchIntersect(rect)
	out := make([]string, 0, len(hits))
	for _, h := range hits {
		it := h.(*item)
		if it.entry.ID == self {
			continue
		}
		out = append(out, it.entry.ID)
	}
	return out
}

const minSpan = 1e-9

func boundToRect(b orb.Bound) rtreego.Rect {
	width := b.Max[0] - b.Min[0]
	height := b.Max[1] - b.Min[1]
	if width <= 0 {
		width = minSpan
	}
	if height <= 0 {
		height = minSpan
	}
	rect, err := rtreego.NewRect(rtreego.Point{b.Min[0], b.Min[1]}, []float64{width, height})
	if err != nil {
		// NewRect only errs on non-positive lengths, which the guard
		// above already rules out; fall back to a minimal square rather
		// than propagate a panic into the detector's hot path.
		rect, _ = rtreego.NewRect(rtreego.Point{b.Min[0], b.Min[1]}, []float64{minSpan, minSpan})
	}
	return rect
}
