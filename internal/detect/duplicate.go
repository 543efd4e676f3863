package detect

import (
	"fmt"
	"math"
	"sort"
	"strings"

	"github.com/paulmach/orb"
)

// canonicalKey produces a comparison key that is invariant to ring
// starting vertex, winding direction, and float noise below roundingPrecision,
// so two features digitized from the same source but with different
// vertex ordering still compare equal as duplicate_geometry (spec §4.1:
// "normalized representations compare equal").
func canonicalKey(g orb.Geometry) string {
	switch v := g.(type) {
	case orb.Polygon:
		return canonicalPolygonKey(v)
	case orb.MultiPolygon:
		keys := make([]string, 0, len(v))
		for _, p := range v {
			keys = append(keys, canonicalPolygonKey(p))
		}
		sort.Strings(keys)
		return strings.Join(keys, "|")
	default:
		return fmt.Sprintf("%v", g)
	}
}

func canonicalPolygonKey(p orb.Polygon) string {
	if len(p) == 0 {
		return ""
	}
	rings := make([]string, 0, len(p))
	for _, r := range p {
		rings = append(rings, canonicalRingKey(r))
	}
	outer := rings[0]
	holes := rings[1:]
	sort.Strings(holes)
	return outer + "#" + strings.Join(holes, ",")
}

const roundingPrecision = 1e6 // round to 1 micrometre in CRS units

func canonicalRingKey(r orb.Ring) string {
	pts := dedupClosingVertex(r)
	if len(pts) == 0 {
		return ""
	}
	rounded := make([]orb.Point, len(pts))
	for i, p := range pts {
		rounded[i] = orb.Point{
			math.Round(p[0]*roundingPrecision) / roundingPrecision,
			math.Round(p[1]*roundingPrecision) / roundingPrecision,
		}
	}

	forward := rotateToMin(rounded)
	reversed := reverseRing(rounded)
	backward := rotateToMin(reversed)

	fKey := ringString(forward)
	bKey := ringString(backward)
	if fKey < bKey {
		return fKey
	}
	return bKey
}

func dedupClosingVertex(r orb.Ring) []orb.Point {
	if len(r) > 1 && r[0] == r[len(r)-1] {
		return r[:len(r)-1]
	}
	return r
}

func rotateToMin(pts []orb.Point) []orb.Point {
	if len(pts) == 0 {
		return pts
	}
	minIdx := 0
	for i, p := range pts {
		if pointLess(p, pts[minIdx]) {
			minIdx = i
		}
	}
	out := make([]orb.Point, len(pts))
	for i := range pts {
		out[i] = pts[(minIdx+i)%len(pts)]
	}
	return out
}

func reverseRing(pts []orb.Point) []orb.Point {
	out := make([]orb.Point, len(pts))
	for i, p := range pts {
		out[len(pts)-1-i] = p
	}
	return out
}

func pointLess(a, b orb.Point) bool {
	if a[0] != b[0] {
		return a[0] < b[0]
	}
	return a[1] < b[1]
}

func ringString(pts []orb.Point) string {
	var sb strings.Builder
	for _, p := range pts {
		fmt.Fprintf(&sb, "%.6f,%.6f;", p[0], p[1])
	}
	return sb.String()
}
