package model

import "testing"

func TestValidErrorKind(t *testing.T) {
	if !ValidErrorKind(ErrorBuildingOverlap) {
		t.Fatalf("expected building_overlap to be a valid error kind")
	}
	if ValidErrorKind(ErrorKind("not_a_real_kind")) {
		t.Fatalf("expected unknown error kind to be rejected")
	}
}

func TestValidFixKind(t *testing.T) {
	if !ValidFixKind(FixSnap) {
		t.Fatalf("expected snap to be a valid fix kind")
	}
	if ValidFixKind(FixKind("teleport")) {
		t.Fatalf("expected unknown fix kind to be rejected")
	}
}

func TestKindOrderGroupsByCatalog(t *testing.T) {
	if KindOrder(ErrorInvalidGeometry) >= KindOrder(ErrorEmptyGeometry) {
		t.Fatalf("invalid_geometry must sort before empty_geometry")
	}
	if KindOrder(ErrorKind("unknown")) != -1 {
		t.Fatalf("expected -1 for unknown kind")
	}
}

func TestDefaultFeatureMetadata(t *testing.T) {
	m := DefaultFeatureMetadata("f1")
	if m.Source != "unknown" || m.AccuracyM != 10.0 || m.Confidence != 0.5 {
		t.Fatalf("unexpected defaults: %+v", m)
	}
}
