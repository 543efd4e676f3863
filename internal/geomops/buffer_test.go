package geomops

import (
	"testing"

	"github.com/paulmach/orb"
)

func TestBufferLineProducesArea(t *testing.T) {
	line := orb.LineString{{0, 0}, {10, 0}}
	buffered := Buffer(line, 1)
	area := Area(buffered)
	if area <= 0 {
		t.Fatalf("expected buffered corridor to have positive area, got %v", area)
	}
	// Roughly the rectangle (10 x 2) plus two end caps; generous bounds
	// since the cap approximation isn't exact.
	if area < 15 || area > 30 {
		t.Fatalf("expected buffered area in [15,30], got %v", area)
	}
}

func TestBufferZeroDistancePolygonUnchanged(t *testing.T) {
	s := square(10)
	b := Buffer(s, 0)
	if Area(b) != Area(s) {
		t.Fatalf("expected zero-distance buffer to be a no-op")
	}
}
