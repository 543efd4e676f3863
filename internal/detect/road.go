package detect

import (
	"math"

	"github.com/paulmach/orb"
)

// polylineDistance returns the minimum distance between a building
// polygon's outer ring and a road linestring. It walks every (building
// edge, road edge) pair rather than just vertex pairs, so a road that
// cuts straight through a footprint between two vertices (the common
// case) is correctly reported as distance zero instead of the distance
// to the nearest corner.
func polylineDistance(building orb.Geometry, road orb.Geometry) float64 {
	ring := closedRing(buildingRing(building))
	line := lineFor(road)
	if len(ring) < 2 || len(line) < 2 {
		return math.Inf(1)
	}

	best := math.Inf(1)
	for i := 0; i+1 < len(ring); i++ {
		a1, a2 := ring[i], ring[i+1]
		for j := 0; j+1 < len(line); j++ {
			b1, b2 := line[j], line[j+1]
			if d := segmentDistance(a1, a2, b1, b2); d < best {
				best = d
			}
		}
	}
	return best
}

func closedRing(r orb.Ring) orb.Ring {
	if len(r) == 0 || r[0] == r[len(r)-1] {
		return r
	}
	return append(append(orb.Ring{}, r...), r[0])
}

func buildingRing(g orb.Geometry) orb.Ring {
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
		return v[0][0]
	case orb.Ring:
		return v
	default:
		return nil
	}
}

func lineFor(g orb.Geometry) []orb.Point {
	switch v := g.(type) {
	case orb.LineString:
		return []orb.Point(v)
	case orb.Ring:
		return []orb.Point(v)
	default:
		return nil
	}
}

// segmentDistance returns the minimum distance between segments (a1,a2)
// and (b1,b2), zero if they cross or touch.
func segmentDistance(a1, a2, b1, b2 orb.Point) float64 {
	if segmentsIntersect(a1, a2, b1, b2) {
		return 0
	}
	d := pointToSegmentDistance(a1, b1, b2)
	if v := pointToSegmentDistance(a2, b1, b2); v < d {
		d = v
	}
	if v := pointToSegmentDistance(b1, a1, a2); v < d {
		d = v
	}
	if v := pointToSegmentDistance(b2, a1, a2); v < d {
		d = v
	}
	return d
}

func pointToSegmentDistance(p, a, b orb.Point) float64 {
	dx, dy := b[0]-a[0], b[1]-a[1]
	lenSq := dx*dx + dy*dy
	if lenSq == 0 {
		return dist2(p, a)
	}
	t := ((p[0]-a[0])*dx + (p[1]-a[1])*dy) / lenSq
	if t < 0 {
		t = 0
	} else if t > 1 {
		t = 1
	}
	proj := orb.Point{a[0] + t*dx, a[1] + t*dy}
	return dist2(p, proj)
}

func dist2(a, b orb.Point) float64 {
	dx := a[0] - b[0]
	dy := a[1] - b[1]
	return math.Sqrt(dx*dx + dy*dy)
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
	return q[0] <= math.Max(p[0], r[0]) && q[0] >= math.Min(p[0], r[0]) &&
		q[1] <= math.Max(p[1], r[1]) && q[1] >= math.Min(p[1], r[1])
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
