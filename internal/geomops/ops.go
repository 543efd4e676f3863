package geomops

import (
	"math"

	"github.com/akavel/polyclip-go"
	"github.com/paulmach/orb"
	"github.com/paulmach/orb/simplify"
)

func asPolyclip(g orb.Geometry) polyclip.Polygon {
	switch v := g.(type) {
	case orb.Polygon:
		return toPolyclip(v)
	case orb.MultiPolygon:
		return toPolyclipMulti(v)
	default:
		return polyclip.Polygon{}
	}
}

// Intersection returns the overlapping area of a and b, keeping only the
// largest resulting piece — used by the overlap detector's inter_area_m2
// enrichment and by the clip fix.
func Intersection(a, b orb.Geometry) orb.Polygon {
	pa, pb := asPolyclip(a), asPolyclip(b)
	return fromPolyclipKeepLargest(pa.Construct(polyclip.INTERSECTION, pb))
}

// Union combines a and b into their geometric union. Unlike Intersection,
// a union that legitimately produces multiple disjoint pieces (e.g. two
// footprints that don't actually touch) keeps all of them, since merge
// fixes over non-adjacent footprints should not silently drop a feature.
func Union(a, b orb.Geometry) orb.Polygon {
	pa, pb := asPolyclip(a), asPolyclip(b)
	return fromPolyclip(pa.Construct(polyclip.UNION, pb))
}

// Difference subtracts b from a, keeping the largest remaining piece — the
// trim fix reduces to this operation (a minus the overlapping neighbor);
// the clip fix uses Intersection with the boundary instead.
func Difference(a, b orb.Geometry) orb.Polygon {
	pa, pb := asPolyclip(a), asPolyclip(b)
	return fromPolyclipKeepLargest(pa.Construct(polyclip.DIFFERENCE, pb))
}

// Simplify applies Douglas-Peucker simplification at the given tolerance
// (in CRS units), delegating to orb/simplify so the fix registry doesn't
// need its own line-simplification implementation.
func Simplify(g orb.Geometry, tolerance float64) orb.Geometry {
	dp := simplify.DouglasPeucker(tolerance)
	return dp.Simplify(g)
}

// Translate shifts every vertex of g by (dx, dy).
func Translate(g orb.Geometry, dx, dy float64) orb.Geometry {
	switch v := g.(type) {
	case orb.Point:
		return orb.Point{v[0] + dx, v[1] + dy}
	case orb.Ring:
		return translateRing(v, dx, dy)
	case orb.LineString:
		return orb.LineString(translateRing(orb.Ring(v), dx, dy))
	case orb.Polygon:
		out := make(orb.Polygon, len(v))
		for i, r := range v {
			out[i] = translateRing(r, dx, dy)
		}
		return out
	case orb.MultiPolygon:
		out := make(orb.MultiPolygon, len(v))
		for i, p := range v {
			out[i] = Translate(p, dx, dy).(orb.Polygon)
		}
		return out
	default:
		return g
	}
}

func translateRing(r orb.Ring, dx, dy float64) orb.Ring {
	out := make(orb.Ring, len(r))
	for i, pt := range r {
		out[i] = orb.Point{pt[0] + dx, pt[1] + dy}
	}
	return out
}

// KeepLargest reduces a geometry with multiple disjoint pieces to just its
// largest-area piece. For an orb.Polygon produced by Union (where each
// ring may be an independent piece rather than a hole), it picks the
// largest ring. For a MultiPolygon, it picks the largest member (holes
// intact). Used by the merge fix, which keeps only the largest resulting
// polygon after a union.
func KeepLargest(g orb.Geometry) orb.Geometry {
	switch v := g.(type) {
	case orb.Polygon:
		if len(v) <= 1 {
			return v
		}
		best := v[0]
		bestArea := geometryRingArea(best)
		for _, r := range v[1:] {
			a := geometryRingArea(r)
			if a > bestArea {
				best, bestArea = r, a
			}
		}
		return orb.Polygon{best}
	case orb.MultiPolygon:
		if len(v) == 0 {
			return v
		}
		best := v[0]
		bestArea := Area(best)
		for _, p := range v[1:] {
			a := Area(p)
			if a > bestArea {
				best, bestArea = p, a
			}
		}
		return best
	default:
		return g
	}
}

func geometryRingArea(r orb.Ring) float64 {
	a := shoelace(r)
	if a < 0 {
		return -a
	}
	return a
}

// NearestPoints returns the closest pair of vertices between a's and b's
// outer rings along with the distance between them — a brute-force O(n*m)
// search, adequate for the vertex counts building footprints and road
// segments carry, and used by the snap and nudge fixes to find the
// direction to move a feature.
func NearestPoints(a, b orb.Geometry) (pa, pb orb.Point, dist float64) {
	ra, rb := outerRing(a), outerRing(b)
	if len(ra) == 0 || len(rb) == 0 {
		return orb.Point{}, orb.Point{}, math.Inf(1)
	}
	best := math.Inf(1)
	var bestA, bestB orb.Point
	for _, p1 := range ra {
		for _, p2 := range rb {
			d := Distance(p1, p2)
			if d < best {
				best, bestA, bestB = d, p1, p2
			}
		}
	}
	return bestA, bestB, best
}

// Snap moves geometry g rigidly so its nearest point to target coincides
// with target's nearest point to g, then removes whatever residual overlap
// the translation leaves behind by subtracting target from the moved
// geometry (§5 snap fix: move first, then re-clip against the thing it was
// snapped to so the two never end up overlapping).
func Snap(g, target orb.Geometry) orb.Geometry {
	pg, pt, _ := NearestPoints(g, target)
	dx := pt[0] - pg[0]
	dy := pt[1] - pg[1]
	moved := Translate(g, dx, dy)
	cleared := Difference(moved, target)
	if len(cleared) == 0 || len(cleared[0]) == 0 {
		return moved
	}
	return cleared
}
