package geomops

import (
	"math"

	"github.com/paulmach/orb"
)

// Area returns the planar area of a polygonal geometry in CRS units^2,
// subtracting hole area for polygons with interior rings. Non-polygonal
// geometries (points, lines) have zero area.
func Area(g orb.Geometry) float64 {
	switch v := g.(type) {
	case orb.Ring:
		return math.Abs(shoelace(v))
	case orb.Polygon:
		return polygonArea(v)
	case orb.MultiPolygon:
		total := 0.0
		for _, p := range v {
			total += polygonArea(p)
		}
		return total
	default:
		return 0
	}
}

func polygonArea(p orb.Polygon) float64 {
	if len(p) == 0 {
		return 0
	}
	area := math.Abs(shoelace(p[0]))
	for _, hole := range p[1:] {
		area -= math.Abs(shoelace(hole))
	}
	if area < 0 {
		return 0
	}
	return area
}

// Perimeter returns the total boundary length of a polygonal geometry
// (outer ring plus holes), or the length of a line string.
func Perimeter(g orb.Geometry) float64 {
	switch v := g.(type) {
	case orb.Ring:
		return ringLength(v)
	case orb.LineString:
		return ringLength(orb.Ring(v))
	case orb.Polygon:
		total := 0.0
		for _, r := range v {
			total += ringLength(r)
		}
		return total
	case orb.MultiPolygon:
		total := 0.0
		for _, p := range v {
			for _, r := range p {
				total += ringLength(r)
			}
		}
		return total
	default:
		return 0
	}
}

func ringLength(r orb.Ring) float64 {
	n := len(r)
	if n < 2 {
		return 0
	}
	total := 0.0
	for i := 0; i < n-1; i++ {
		total += Distance(r[i], r[i+1])
	}
	// Ring is implicitly closed even if the last point doesn't repeat the first.
	if r[0] != r[n-1] {
		total += Distance(r[n-1], r[0])
	}
	return total
}

// Distance returns the Euclidean distance between two points in a planar,
// metric CRS.
func Distance(a, b orb.Point) float64 {
	dx := a[0] - b[0]
	dy := a[1] - b[1]
	return math.Sqrt(dx*dx + dy*dy)
}

// Compactness returns the isoperimetric quotient 4*pi*A/P^2 — 1 for a
// circle, approaching 0 for elongated or jagged shapes.
func Compactness(g orb.Geometry) float64 {
	p := Perimeter(g)
	if p == 0 {
		return 0
	}
	return (4 * math.Pi * Area(g)) / (p * p)
}

// Centroid returns the area-weighted centroid of a polygon's outer ring.
// Holes are ignored, which is an acceptable approximation for the building
// footprints this package deals with (buildings rarely have meaningful
// holes).
func Centroid(g orb.Geometry) orb.Point {
	r := outerRing(g)
	if len(r) == 0 {
		if p, ok := g.(orb.Point); ok {
			return p
		}
		return orb.Point{}
	}
	var cx, cy, areaAcc float64
	n := len(r)
	for i := 0; i < n; i++ {
		j := (i + 1) % n
		cross := r[i][0]*r[j][1] - r[j][0]*r[i][1]
		areaAcc += cross
		cx += (r[i][0] + r[j][0]) * cross
		cy += (r[i][1] + r[j][1]) * cross
	}
	if areaAcc == 0 {
		// Degenerate ring (collinear points) — fall back to the vertex average.
		var sx, sy float64
		for _, pt := range r {
			sx += pt[0]
			sy += pt[1]
		}
		return orb.Point{sx / float64(n), sy / float64(n)}
	}
	areaAcc *= 0.5
	cx /= 6 * areaAcc
	cy /= 6 * areaAcc
	return orb.Point{cx, cy}
}

// BoundsOf returns the axis-aligned bounding box of any geometry this
// package handles.
func BoundsOf(g orb.Geometry) orb.Bound {
	if g == nil {
		return orb.Bound{}
	}
	return g.Bound()
}
