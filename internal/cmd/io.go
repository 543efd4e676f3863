package cmd

import (
	"fmt"
	"os"

	"github.com/geofix-project/geofix-core/internal/geojsonio"
	"github.com/geofix-project/geofix-core/internal/model"
	"github.com/paulmach/orb"
	"github.com/paulmach/orb/geojson"
)

func loadFeatures(path string) ([]model.Feature, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open features file %q: %w", path, err)
	}
	defer f.Close()
	features, err := geojsonio.ReadFeatures(f)
	if err != nil {
		return nil, fmt.Errorf("read features from %q: %w", path, err)
	}
	return features, nil
}

// loadRoads reads a GeoJSON FeatureCollection of road linestrings. An
// empty path is not an error: it simply means no roads layer was
// supplied (§6: "optional roads layer").
func loadRoads(path string) ([]orb.Geometry, error) {
	if path == "" {
		return nil, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("open roads file %q: %w", path, err)
	}
	fc, err := geojson.UnmarshalFeatureCollection(data)
	if err != nil {
		return nil, fmt.Errorf("parse roads geojson %q: %w", path, err)
	}
	out := make([]orb.Geometry, 0, len(fc.Features))
	for _, gf := range fc.Features {
		if gf.Geometry != nil {
			out = append(out, gf.Geometry)
		}
	}
	return out, nil
}

// loadBoundary reads a single-polygon GeoJSON file. An empty path means
// no boundary layer was supplied (§6: "optional boundary layer").
func loadBoundary(path string) (orb.Geometry, error) {
	if path == "" {
		return nil, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("open boundary file %q: %w", path, err)
	}
	fc, err := geojson.UnmarshalFeatureCollection(data)
	if err != nil {
		return nil, fmt.Errorf("parse boundary geojson %q: %w", path, err)
	}
	if len(fc.Features) == 0 || fc.Features[0].Geometry == nil {
		return nil, fmt.Errorf("boundary file %q contains no geometry", path)
	}
	return fc.Features[0].Geometry, nil
}
