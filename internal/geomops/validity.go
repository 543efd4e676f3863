package geomops

import (
	"github.com/akavel/polyclip-go"
	"github.com/paulmach/orb"
)

// IsValid reports whether g's rings are simple (closed, no self-intersecting
// edges) — the OGC validity predicate the detector's invalid_geometry check
// and the base fix validation (§4.3) both rely on.
func IsValid(g orb.Geometry) bool {
	switch v := g.(type) {
	case orb.Ring:
		return ringIsSimple(v)
	case orb.Polygon:
		for _, r := range v {
			if !ringIsSimple(r) {
				return false
			}
		}
		return true
	case orb.MultiPolygon:
		for _, p := range v {
			for _, r := range p {
				if !ringIsSimple(r) {
					return false
				}
			}
		}
		return true
	default:
		return true
	}
}

// ringIsSimple reports whether consecutive, non-adjacent edges of a ring
// fail to intersect (a brute-force O(n^2) check, appropriate for the
// vertex counts building footprints carry).
func ringIsSimple(r orb.Ring) bool {
	n := len(r)
	// orb rings repeat the first vertex at the end; drop the duplicate so
	// the closing edge is treated as adjacent to the first edge.
	if n > 1 && r[0] == r[n-1] {
		r = r[:n-1]
		n--
	}
	if n < 3 {
		return false
	}
	for i := 0; i < n; i++ {
		a1, a2 := r[i], r[(i+1)%n]
		for j := i + 1; j < n; j++ {
			if j == i {
				continue
			}
			// Skip edges that share an endpoint with edge i.
			if j == i+1 || (i == 0 && j == n-1) {
				continue
			}
			b1, b2 := r[j], r[(j+1)%n]
			if j+1 == i || (j == n-1 && i == 0) {
				continue
			}
			if segmentsIntersect(a1, a2, b1, b2) {
				return false
			}
		}
	}
	return true
}

func orientation(p, q, r orb.Point) int {
	val := (q[1]-p[1])*(r[0]-q[0]) - (q[0]-p[0])*(r[1]-q[1])
	switch {
	case val > 0:
		return 1
	case val < 0:
		return 2
	default:
		return 0
	}
}

func onSegment(p, q, r orb.Point) bool {
	return q[0] <= max(p[0], r[0]) && q[0] >= min(p[0], r[0]) &&
		q[1] <= max(p[1], r[1]) && q[1] >= min(p[1], r[1])
}

func segmentsIntersect(p1, q1, p2, q2 orb.Point) bool {
	o1 := orientation(p1, q1, p2)
	o2 := orientation(p1, q1, q2)
	o3 := orientation(p2, q2, p1)
	o4 := orientation(p2, q2, q1)

	if o1 != o2 && o3 != o4 {
		return true
	}
	if o1 == 0 && onSegment(p1, p2, q1) {
		return true
	}
	if o2 == 0 && onSegment(p1, q2, q1) {
		return true
	}
	if o3 == 0 && onSegment(p2, p1, q2) {
		return true
	}
	if o4 == 0 && onSegment(p2, q1, q2) {
		return true
	}
	return false
}

func max(a, b float64) float64 {
	if a > b {
		return a
	}
	return b
}

func min(a, b float64) float64 {
	if a < b {
		return a
	}
	return b
}

// MakeValid repairs a self-intersecting polygon by unioning it with itself:
// the Martinez-Rueda sweep that backs polyclip-go's boolean ops resolves
// self-intersections as a side effect of computing a union, which is the
// standard trick for getting an OGC-valid result out of a general polygon
// clipper that has no dedicated make-valid entry point. Already-valid
// geometry is returned unchanged, matching shapely.validation.make_valid's
// no-op behaviour (original_source/geofix/fixes/geometry.py).
func MakeValid(g orb.Geometry) orb.Geometry {
	if IsValid(g) {
		return g
	}
	switch v := g.(type) {
	case orb.Polygon:
		pc := toPolyclip(v)
		fixed := pc.Construct(polyclip.UNION, pc)
		return fromPolyclip(fixed)
	case orb.MultiPolygon:
		var out orb.MultiPolygon
		for _, p := range v {
			fixed := MakeValid(p)
			if fp, ok := fixed.(orb.Polygon); ok {
				out = append(out, fp)
			}
		}
		return out
	default:
		return g
	}
}
