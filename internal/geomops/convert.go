package geomops

import (
	"github.com/akavel/polyclip-go"
	"github.com/paulmach/orb"
)

// toPolyclip converts a single orb.Polygon (outer ring plus holes) into a
// polyclip.Polygon (one Contour per ring). polyclip treats every contour as
// a boundary to be combined by its winding rule, so orientation doesn't need
// to be fixed up by hand here.
func toPolyclip(p orb.Polygon) polyclip.Polygon {
	out := make(polyclip.Polygon, 0, len(p))
	for _, ring := range p {
		out = append(out, ringToContour(ring))
	}
	return out
}

// toPolyclipMulti flattens a MultiPolygon's member polygons into one
// polyclip.Polygon, suitable as an operand to Construct when the operation
// (e.g. a union sweep across all of a feature set's parts) doesn't need to
// keep the members distinguished.
func toPolyclipMulti(mp orb.MultiPolygon) polyclip.Polygon {
	var out polyclip.Polygon
	for _, p := range mp {
		out = append(out, toPolyclip(p)...)
	}
	return out
}

func ringToContour(r orb.Ring) polyclip.Contour {
	c := make(polyclip.Contour, 0, len(r))
	n := len(r)
	for i, pt := range r {
		// Drop an explicit closing vertex so polyclip doesn't see a
		// duplicated last point.
		if i == n-1 && n > 1 && pt == r[0] {
			continue
		}
		c = append(c, polyclip.Point{X: pt[0], Y: pt[1]})
	}
	return c
}

func contourToRing(c polyclip.Contour) orb.Ring {
	r := make(orb.Ring, 0, len(c)+1)
	for _, pt := range c {
		r = append(r, orb.Point{pt.X, pt.Y})
	}
	if len(r) > 0 && r[0] != r[len(r)-1] {
		r = append(r, r[0])
	}
	return r
}

// fromPolyclip converts a polyclip.Polygon result back to an orb.Polygon,
// keeping every contour it produced (outer rings and holes alike) in the
// order polyclip emitted them.
func fromPolyclip(pc polyclip.Polygon) orb.Polygon {
	out := make(orb.Polygon, 0, len(pc))
	for _, c := range pc {
		if len(c) < 3 {
			continue
		}
		out = append(out, contourToRing(c))
	}
	return out
}

// fromPolyclipKeepLargest converts a polyclip.Polygon result that may
// contain several disjoint output pieces (e.g. a difference that splits a
// footprint in two) into a single orb.Polygon by keeping only the
// largest-area contour, matching the fix registry's "keep the larger
// remaining part" rule for trim/clip/snap (§5 Fix Strategies).
func fromPolyclipKeepLargest(pc polyclip.Polygon) orb.Polygon {
	var best polyclip.Contour
	bestArea := -1.0
	for _, c := range pc {
		if len(c) < 3 {
			continue
		}
		a := contourArea(c)
		if a > bestArea {
			best, bestArea = c, a
		}
	}
	if bestArea < 0 {
		return orb.Polygon{}
	}
	return orb.Polygon{contourToRing(best)}
}

func contourArea(c polyclip.Contour) float64 {
	n := len(c)
	if n < 3 {
		return 0
	}
	sum := 0.0
	for i := 0; i < n; i++ {
		j := (i + 1) % n
		sum += c[i].X*c[j].Y - c[j].X*c[i].Y
	}
	if sum < 0 {
		sum = -sum
	}
	return sum / 2
}
