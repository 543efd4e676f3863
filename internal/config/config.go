// Package config holds GeoFix's typed, immutable-per-invocation
// configuration, following the nested-dataclass shape of
// geofix/core/config.py (original_source) and loaded the way the teacher
// repository's internal/cmd loads its own settings: Viper-bound flags over
// a struct of defaults.
package config

// DecisionThresholds are the confidence thresholds for the three-tier
// decision system (§4.2).
type DecisionThresholds struct {
	AutoFixMin float64 `mapstructure:"auto_fix_min"`
	LLMFixMin  float64 `mapstructure:"llm_fix_min"`
}

// GeometryThresholds are the thresholds the detector and rule set use to
// classify geometry quality (§4.1, §4.2).
type GeometryThresholds struct {
	SliverMaxAreaM2    float64 `mapstructure:"sliver_max_area_m2"`
	MinBuildingAreaM2  float64 `mapstructure:"min_building_area_m2"`
	MaxBuildingAreaM2  float64 `mapstructure:"max_building_area_m2"`
	RoadSnapDistanceM  float64 `mapstructure:"road_snap_distance_m"`
	BoundaryClipBufferM float64 `mapstructure:"boundary_clip_buffer_m"`
	DuplicateRatioMin  float64 `mapstructure:"duplicate_ratio_min"`
	PartialRatioMin    float64 `mapstructure:"partial_ratio_min"`
	// LowCompactnessMin is the isoperimetric-quotient floor below which
	// the detector emits low_compactness (§4.1).
	LowCompactnessMin float64 `mapstructure:"low_compactness_min"`
	// DefaultRoadSetbackM is the default buffer applied to road
	// linestrings when the caller supplies no per-road buffer (§6).
	DefaultRoadSetbackM float64 `mapstructure:"default_road_setback_m"`
}

// ValidatorThresholds configure the post-fix validator (§4.4).
type ValidatorThresholds struct {
	MinAreaM2           float64 `mapstructure:"min_area_m2"`
	MaxAreaRatioChange   float64 `mapstructure:"max_area_ratio_change"`
}

// OracleConfig configures the optional Tier-2 reasoning oracle.
type OracleConfig struct {
	Enabled    bool   `mapstructure:"enabled"`
	Model      string `mapstructure:"model"`
	TimeoutMS  int    `mapstructure:"timeout_ms"`
}

// Config is the top-level, read-only-for-the-invocation GeoFix
// configuration (§5: "Configuration is read-only for the life of an
// invocation").
type Config struct {
	Decision  DecisionThresholds  `mapstructure:"decision"`
	Geometry  GeometryThresholds  `mapstructure:"geometry"`
	Validator ValidatorThresholds `mapstructure:"validator"`
	Oracle    OracleConfig        `mapstructure:"oracle"`

	AuditDBPath string `mapstructure:"audit_db_path"`
}

// Default returns the §6 configuration defaults.
func Default() Config {
	return Config{
		Decision: DecisionThresholds{
			AutoFixMin: 0.80,
			LLMFixMin:  0.60,
		},
		Geometry: GeometryThresholds{
			SliverMaxAreaM2:     1.0,
			MinBuildingAreaM2:   4.0,
			MaxBuildingAreaM2:   50_000,
			RoadSnapDistanceM:   2.0,
			BoundaryClipBufferM: 0.5,
			DuplicateRatioMin:   0.98,
			PartialRatioMin:     0.30,
			LowCompactnessMin:   0.05,
			DefaultRoadSetbackM: 2.0,
		},
		Validator: ValidatorThresholds{
			MinAreaM2:          0.5,
			MaxAreaRatioChange: 5.0,
		},
		Oracle: OracleConfig{
			Enabled:   false,
			Model:     "claude-3-5-haiku-latest",
			TimeoutMS: 8000,
		},
		AuditDBPath: "geofix_audit.db",
	}
}
