package cmd

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/geofix-project/geofix-core/internal/audit"
	"github.com/geofix-project/geofix-core/internal/model"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var auditCmd = &cobra.Command{
	Use:   "audit",
	Short: "Inspect the append-only fix audit log",
}

var auditSummaryCmd = &cobra.Command{
	Use:   "summary",
	Short: "Print action counts for a session (or the whole log)",
	Args:  cobra.NoArgs,
	RunE:  runAuditSummary,
}

var auditHistoryCmd = &cobra.Command{
	Use:   "history",
	Short: "List audit log entries, most recent first",
	Args:  cobra.NoArgs,
	RunE:  runAuditHistory,
}

func init() {
	rootCmd.AddCommand(auditCmd)
	auditCmd.AddCommand(auditSummaryCmd)
	auditCmd.AddCommand(auditHistoryCmd)

	auditCmd.PersistentFlags().String("session-id", "", "Restrict to one audit session")
	if err := viper.BindPFlag("audit.session_id", auditCmd.PersistentFlags().Lookup("session-id")); err != nil {
		panic(fmt.Sprintf("failed to bind flag: %v", err))
	}

	auditHistoryCmd.Flags().String("feature-id", "", "Restrict to one feature")
	auditHistoryCmd.Flags().String("error-kind", "", "Restrict to one error kind")
	auditHistoryCmd.Flags().Int("limit", 100, "Maximum rows to return")

	bindFlags := []struct{ key, flag string }{
		{"audit.feature_id", "feature-id"},
		{"audit.error_kind", "error-kind"},
		{"audit.limit", "limit"},
	}
	for _, b := range bindFlags {
		if err := viper.BindPFlag(b.key, auditHistoryCmd.Flags().Lookup(b.flag)); err != nil {
			panic(fmt.Sprintf("failed to bind flag: %v", err))
		}
	}
}

func openAuditStore() (*audit.Store, error) {
	path := viper.GetString("audit_db_path")
	store, err := audit.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open audit database %q: %w", path, err)
	}
	return store, nil
}

func runAuditSummary(cmd *cobra.Command, args []string) error {
	store, err := openAuditStore()
	if err != nil {
		return err
	}
	defer store.Close()

	sessionID := viper.GetString("audit.session_id")
	summary, err := store.SessionSummary(sessionID)
	if err != nil {
		return fmt.Errorf("summarize audit log: %w", err)
	}

	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(struct {
		SessionID string `json:"session_id,omitempty"`
		audit.Summary
	}{SessionID: sessionID, Summary: summary})
}

func runAuditHistory(cmd *cobra.Command, args []string) error {
	store, err := openAuditStore()
	if err != nil {
		return err
	}
	defer store.Close()

	filter := audit.QueryFilter{
		SessionID: viper.GetString("audit.session_id"),
		FeatureID: viper.GetString("audit.feature_id"),
		ErrorKind: model.ErrorKind(viper.GetString("audit.error_kind")),
		Limit:     viper.GetInt("audit.limit"),
	}
	rows, err := store.Query(filter)
	if err != nil {
		return fmt.Errorf("query audit log: %w", err)
	}

	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(rows)
}
