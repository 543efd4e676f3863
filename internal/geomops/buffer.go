package geomops

import (
	"math"

	"github.com/akavel/polyclip-go"
	"github.com/paulmach/orb"
)

// Buffer grows a line or polygon outward by distance d (in CRS units),
// approximating a round join at each vertex with a small fan of segments.
// It is used for the road_setback clip buffer and for thickening a road
// centerline into a corridor polygon before the building_on_road and
// road_setback checks test footprints against it.
//
// Each segment of the input is expanded into a rectangle (its two offset
// edges) plus a vertex fan, and the pieces are unioned together with
// polyclip — the same "stitch many small pieces with a boolean union"
// approach the fix registry already leans on for merge and make-valid.
func Buffer(g orb.Geometry, d float64) orb.Polygon {
	if d <= 0 {
		if p, ok := g.(orb.Polygon); ok {
			return p
		}
		return orb.Polygon{}
	}
	pts := bufferInputPoints(g)
	if len(pts) < 2 {
		if len(pts) == 1 {
			return circleContour(pts[0], d)
		}
		return orb.Polygon{}
	}

	var acc polyclip.Polygon
	closed := isClosedRing(g)
	n := len(pts)
	segEnd := n - 1
	if closed {
		segEnd = n
	}
	for i := 0; i < segEnd; i++ {
		a := pts[i]
		b := pts[(i+1)%n]
		acc = unionContour(acc, segmentQuad(a, b, d))
		acc = unionContour(acc, contourFromCircle(circleContour(a, d)))
	}
	if !closed {
		acc = unionContour(acc, contourFromCircle(circleContour(pts[n-1], d)))
	}
	return fromPolyclipKeepLargest(acc)
}

func bufferInputPoints(g orb.Geometry) []orb.Point {
	switch v := g.(type) {
	case orb.Point:
		return []orb.Point{v}
	case orb.LineString:
		return []orb.Point(v)
	case orb.Ring:
		return []orb.Point(v)
	case orb.Polygon:
		if len(v) == 0 {
			return nil
		}
		return []orb.Point(v[0])
	default:
		return nil
	}
}

func isClosedRing(g orb.Geometry) bool {
	switch g.(type) {
	case orb.Ring, orb.Polygon:
		return true
	default:
		return false
	}
}

func segmentQuad(a, b orb.Point, d float64) polyclip.Contour {
	dx := b[0] - a[0]
	dy := b[1] - a[1]
	length := math.Sqrt(dx*dx + dy*dy)
	if length == 0 {
		return nil
	}
	// Unit normal.
	nx := -dy / length
	ny := dx / length
	return polyclip.Contour{
		{X: a[0] + nx*d, Y: a[1] + ny*d},
		{X: b[0] + nx*d, Y: b[1] + ny*d},
		{X: b[0] - nx*d, Y: b[1] - ny*d},
		{X: a[0] - nx*d, Y: a[1] - ny*d},
	}
}

const bufferCircleSegments = 12

func circleContour(center orb.Point, r float64) orb.Polygon {
	ring := make(orb.Ring, 0, bufferCircleSegments+1)
	for i := 0; i < bufferCircleSegments; i++ {
		theta := 2 * math.Pi * float64(i) / float64(bufferCircleSegments)
		ring = append(ring, orb.Point{center[0] + r*math.Cos(theta), center[1] + r*math.Sin(theta)})
	}
	ring = append(ring, ring[0])
	return orb.Polygon{ring}
}

func contourFromCircle(p orb.Polygon) polyclip.Contour {
	if len(p) == 0 {
		return nil
	}
	return ringToContour(p[0])
}

func unionContour(acc polyclip.Polygon, c polyclip.Contour) polyclip.Polygon {
	if len(c) < 3 {
		return acc
	}
	if len(acc) == 0 {
		return polyclip.Polygon{c}
	}
	return acc.Construct(polyclip.UNION, polyclip.Polygon{c})
}
