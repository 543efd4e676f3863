package geomops

import (
	"testing"

	"github.com/paulmach/orb"
)

func TestIsValidSimpleSquare(t *testing.T) {
	if !IsValid(square(10)) {
		t.Fatal("expected square to be valid")
	}
}

func TestIsValidBowtie(t *testing.T) {
	bowtie := orb.Polygon{orb.Ring{
		{0, 0}, {10, 10}, {10, 0}, {0, 10}, {0, 0},
	}}
	if IsValid(bowtie) {
		t.Fatal("expected self-intersecting bowtie to be invalid")
	}
}

func TestMakeValidNoOpOnValid(t *testing.T) {
	s := square(10)
	fixed := MakeValid(s)
	if !IsValid(fixed) {
		t.Fatal("expected fixed valid polygon to remain valid")
	}
}

func TestMakeValidBowtie(t *testing.T) {
	bowtie := orb.Polygon{orb.Ring{
		{0, 0}, {10, 10}, {10, 0}, {0, 10}, {0, 0},
	}}
	fixed := MakeValid(bowtie)
	if Area(fixed) <= 0 {
		t.Fatalf("expected make-valid to produce nonzero area, got %v", Area(fixed))
	}
}
