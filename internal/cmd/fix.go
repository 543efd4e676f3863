package cmd

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/geofix-project/geofix-core/internal/audit"
	"github.com/geofix-project/geofix-core/internal/config"
	"github.com/geofix-project/geofix-core/internal/decision"
	"github.com/geofix-project/geofix-core/internal/geojsonio"
	"github.com/geofix-project/geofix-core/internal/oracle"
	"github.com/geofix-project/geofix-core/internal/oracle/anthropic"
	"github.com/geofix-project/geofix-core/internal/pipeline"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var fixCmd = &cobra.Command{
	Use:   "fix <features.geojson>",
	Short: "Run the full detect-decide-fix pipeline and write the corrected feature set",
	Args:  cobra.ExactArgs(1),
	RunE:  runFix,
}

func init() {
	rootCmd.AddCommand(fixCmd)

	fixCmd.Flags().String("roads", "", "Optional GeoJSON file of road linestrings")
	fixCmd.Flags().String("boundary", "", "Optional GeoJSON file containing a single area-of-interest polygon")
	fixCmd.Flags().String("out", "", "Output path for the corrected feature collection (default stdout)")
	fixCmd.Flags().Bool("rules-only", false, "Skip the Tier-2 oracle and decide using rules and human review only")
	fixCmd.Flags().String("session-id", "", "Audit session ID (default random)")

	bindFlags := []struct{ key, flag string }{
		{"fix.roads", "roads"},
		{"fix.boundary", "boundary"},
		{"fix.out", "out"},
		{"fix.rules_only", "rules-only"},
		{"fix.session_id", "session-id"},
	}
	for _, b := range bindFlags {
		if err := viper.BindPFlag(b.key, fixCmd.Flags().Lookup(b.flag)); err != nil {
			panic(fmt.Sprintf("failed to bind flag: %v", err))
		}
	}
}

func runFix(cmd *cobra.Command, args []string) error {
	features, err := loadFeatures(args[0])
	if err != nil {
		return err
	}
	roads, err := loadRoads(viper.GetString("fix.roads"))
	if err != nil {
		return err
	}
	boundary, err := loadBoundary(viper.GetString("fix.boundary"))
	if err != nil {
		return err
	}

	cfg := config.Default()
	cfg.AuditDBPath = viper.GetString("audit_db_path")

	store, err := audit.Open(cfg.AuditDBPath)
	if err != nil {
		return fmt.Errorf("open audit store: %w", err)
	}
	defer store.Close()

	auditLogger := audit.NewLogger(store, viper.GetString("fix.session_id"), logger)

	rulesOnly := viper.GetBool("fix.rules_only")
	var oracleImpl oracle.Oracle = oracle.Null{}
	if !rulesOnly {
		if apiKey := os.Getenv("ANTHROPIC_API_KEY"); apiKey != "" {
			oracleImpl = oracle.WithBreaker(anthropic.New(apiKey, cfg.Oracle.Model), logger)
		} else {
			logger.Warn("ANTHROPIC_API_KEY not set, Tier-2 oracle disabled for this run")
		}
	}

	p := pipeline.New(pipeline.Options{
		Config:    cfg,
		Rules:     decision.BuildDefaultRuleSet(logger),
		Oracle:    oracleImpl,
		Audit:     auditLogger,
		Logger:    logger,
		RulesOnly: rulesOnly,
	})

	result, err := p.Run(cmd.Context(), features, roads, boundary)
	if err != nil {
		return fmt.Errorf("run pipeline: %w", err)
	}

	summary, err := auditLogger.SessionSummary()
	if err != nil {
		return fmt.Errorf("summarize audit session: %w", err)
	}
	logger.Info("pipeline complete",
		"session_id", auditLogger.SessionID,
		"feature_count", len(result.Features),
		"error_count", len(result.Errors),
		"applied", summary.Applied,
		"rolled_back", summary.RolledBack,
		"pending_review", summary.PendingReview,
	)

	out := os.Stdout
	if outPath := viper.GetString("fix.out"); outPath != "" {
		f, err := os.Create(outPath)
		if err != nil {
			return fmt.Errorf("create output file %q: %w", outPath, err)
		}
		defer f.Close()
		out = f
	}
	if err := geojsonio.WriteFeatures(out, result.Features); err != nil {
		return fmt.Errorf("write features: %w", err)
	}

	enc := json.NewEncoder(os.Stderr)
	enc.SetIndent("", "  ")
	return enc.Encode(toFixOutcomeViews(result.FixResults))
}
