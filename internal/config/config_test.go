package config

import (
	"testing"

	"github.com/spf13/viper"
)

func TestDefault(t *testing.T) {
	c := Default()
	if c.Decision.AutoFixMin != 0.80 {
		t.Fatalf("expected auto_fix_min 0.80, got %v", c.Decision.AutoFixMin)
	}
	if c.Geometry.MaxBuildingAreaM2 != 50_000 {
		t.Fatalf("expected max_building_area_m2 50000, got %v", c.Geometry.MaxBuildingAreaM2)
	}
}

func TestLoadOverridesDefault(t *testing.T) {
	v := viper.New()
	BindDefaults(v)
	v.Set("decision.auto_fix_min", 0.9)

	cfg, err := Load(v)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Decision.AutoFixMin != 0.9 {
		t.Fatalf("expected override to 0.9, got %v", cfg.Decision.AutoFixMin)
	}
	if cfg.Validator.MinAreaM2 != 0.5 {
		t.Fatalf("expected unrelated default preserved, got %v", cfg.Validator.MinAreaM2)
	}
}
