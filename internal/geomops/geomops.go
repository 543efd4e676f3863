// Package geomops supplies the planar geometric primitives the spec
// requires (§9 Design Notes): a validity predicate, make-valid, boolean set
// algebra (intersection/union/difference), buffer, snap, simplify, and
// nearest-points, all operating on orb.Geometry in a single metric CRS (no
// reprojection — §1 non-goals).
//
// Boolean set algebra is delegated to github.com/akavel/polyclip-go
// (Martinez-Rueda polygon clipping); Douglas-Peucker simplification is
// delegated to github.com/paulmach/orb/simplify. Buffer, snap, and
// nearest-points have no ready-made pure-Go equivalent in the example pack
// or a library this module can name with confidence, so they are
// implemented directly here on top of orb's coordinate types and, for
// buffer, polyclip's union to stitch per-segment offset quads together.
package geomops

import (
	"math"

	"github.com/akavel/polyclip-go"
	"github.com/paulmach/orb"
)

// ringsOf normalizes any orb.Geometry the fix registry deals with (Polygon,
// MultiPolygon, Ring, LineString, Point) into a flat list of point rings,
// so the rest of this package can work uniformly.
func ringsOf(g orb.Geometry) []orb.Ring {
	switch v := g.(type) {
	case orb.Ring:
		return []orb.Ring{v}
	case orb.Polygon:
		return []orb.Ring(v)
	case orb.MultiPolygon:
		var out []orb.Ring
		for _, p := range v {
			out = append(out, []orb.Ring(p)...)
		}
		return out
	case orb.LineString:
		return []orb.Ring{orb.Ring(v)}
	case orb.MultiLineString:
		var out []orb.Ring
		for _, ls := range v {
			out = append(out, orb.Ring(ls))
		}
		return out
	case orb.Point:
		return []orb.Ring{{v}}
	default:
		return nil
	}
}

// outerRing returns the first (outer) ring of a Polygon/MultiPolygon, or
// nil for geometries with no polygonal outer boundary.
func outerRing(g orb.Geometry) orb.Ring {
	switch v := g.(type) {
	case orb.Polygon:
		if len(v) == 0 {
			return nil
		}
		return v[0]
	case orb.MultiPolygon:
		if len(v) == 0 || len(v[0]) == 0 {
			return nil
		}
		// Keep the largest member's outer ring for single-ring consumers.
		best := v[0][0]
		bestArea := math.Abs(shoelace(best))
		for _, p := range v[1:] {
			if len(p) == 0 {
				continue
			}
			a := math.Abs(shoelace(p[0]))
			if a > bestArea {
				best, bestArea = p[0], a
			}
		}
		return best
	case orb.Ring:
		return v
	case orb.LineString:
		return orb.Ring(v)
	default:
		return nil
	}
}

func shoelace(r orb.Ring) float64 {
	n := len(r)
	if n < 3 {
		return 0
	}
	sum := 0.0
	for i := 0; i < n; i++ {
		j := (i + 1) % n
		sum += r[i][0]*r[j][1] - r[j][0]*r[i][1]
	}
	return sum / 2
}

// IsEmpty reports whether g has no area/length at all.
func IsEmpty(g orb.Geometry) bool {
	if g == nil {
		return true
	}
	switch v := g.(type) {
	case orb.Polygon:
		return len(v) == 0 || len(v[0]) == 0
	case orb.MultiPolygon:
		return len(v) == 0
	case orb.Ring, orb.LineString:
		return false
	default:
		return false
	}
}
