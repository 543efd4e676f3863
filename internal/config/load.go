package config

import "github.com/spf13/viper"

// Load builds a Config from defaults overlaid with whatever the given Viper
// instance picked up from its config file / environment / bound flags,
// following the teacher's internal/cmd.initConfig pattern (viper.AddConfigPath
// + SetEnvPrefix + AutomaticEnv, called by the caller before Load).
func Load(v *viper.Viper) (Config, error) {
	cfg := Default()
	if v == nil {
		return cfg, nil
	}
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// BindDefaults registers every default value with v so that
// viper.AutomaticEnv() and config-file overrides compose correctly even
// when a key is absent everywhere else.
func BindDefaults(v *viper.Viper) {
	d := Default()
	v.SetDefault("decision.auto_fix_min", d.Decision.AutoFixMin)
	v.SetDefault("decision.llm_fix_min", d.Decision.LLMFixMin)

	v.SetDefault("geometry.sliver_max_area_m2", d.Geometry.SliverMaxAreaM2)
	v.SetDefault("geometry.min_building_area_m2", d.Geometry.MinBuildingAreaM2)
	v.SetDefault("geometry.max_building_area_m2", d.Geometry.MaxBuildingAreaM2)
	v.SetDefault("geometry.road_snap_distance_m", d.Geometry.RoadSnapDistanceM)
	v.SetDefault("geometry.boundary_clip_buffer_m", d.Geometry.BoundaryClipBufferM)
	v.SetDefault("geometry.duplicate_ratio_min", d.Geometry.DuplicateRatioMin)
	v.SetDefault("geometry.partial_ratio_min", d.Geometry.PartialRatioMin)
	v.SetDefault("geometry.low_compactness_min", d.Geometry.LowCompactnessMin)
	v.SetDefault("geometry.default_road_setback_m", d.Geometry.DefaultRoadSetbackM)

	v.SetDefault("validator.min_area_m2", d.Validator.MinAreaM2)
	v.SetDefault("validator.max_area_ratio_change", d.Validator.MaxAreaRatioChange)

	v.SetDefault("oracle.enabled", d.Oracle.Enabled)
	v.SetDefault("oracle.model", d.Oracle.Model)
	v.SetDefault("oracle.timeout_ms", d.Oracle.TimeoutMS)

	v.SetDefault("audit_db_path", d.AuditDBPath)
}
