package cmd

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/geofix-project/geofix-core/internal/config"
	"github.com/geofix-project/geofix-core/internal/detect"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var detectCmd = &cobra.Command{
	Use:   "detect <features.geojson>",
	Short: "Run the detector over a feature set and print the ordered error list",
	Args:  cobra.ExactArgs(1),
	RunE:  runDetect,
}

func init() {
	rootCmd.AddCommand(detectCmd)

	detectCmd.Flags().String("roads", "", "Optional GeoJSON file of road linestrings")
	detectCmd.Flags().String("boundary", "", "Optional GeoJSON file containing a single area-of-interest polygon")

	bindFlags := []struct{ key, flag string }{
		{"detect.roads", "roads"},
		{"detect.boundary", "boundary"},
	}
	for _, b := range bindFlags {
		if err := viper.BindPFlag(b.key, detectCmd.Flags().Lookup(b.flag)); err != nil {
			panic(fmt.Sprintf("failed to bind flag: %v", err))
		}
	}
}

func runDetect(cmd *cobra.Command, args []string) error {
	features, err := loadFeatures(args[0])
	if err != nil {
		return err
	}
	roads, err := loadRoads(viper.GetString("detect.roads"))
	if err != nil {
		return err
	}
	boundary, err := loadBoundary(viper.GetString("detect.boundary"))
	if err != nil {
		return err
	}

	cfg := config.Default()
	d := detect.New(cfg.Geometry)
	errs, err := d.Detect(detect.Input{Features: features, Roads: roads, Boundary: boundary})
	if err != nil {
		return fmt.Errorf("detect: %w", err)
	}

	logger.Info("detection complete", "feature_count", len(features), "error_count", len(errs))

	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(toErrorViews(errs))
}
