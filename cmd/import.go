package cmd

import (
	"database/sql"
	"fmt"
	"io"
	"os"

	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"

	"upsend/internal/db"
	"upsend/internal/util"
)

var importCmd = &cobra.Command{
	Use:   "import",
	Short: "Import campaign history from CSV exports",
	Long: `Import campaign history from CSV exports.

Campaign files need subject and mode columns; ref, sender, template_file,
csv_file, total, sent, failed, status, created_at and completed_at are
optional. Log files need recipient_email, status and either campaign_ref or
campaign_id.

Examples:
  upsend import campaigns campaigns.csv
  upsend import logs email_logs.csv`,
}

var importCampaignsCmd = &cobra.Command{
	Use:   "campaigns <file.csv>",
	Short: "Import campaigns",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return runImport(cmd, args[0], "campaign", db.ImportCampaigns)
	},
}

var importLogsCmd = &cobra.Command{
	Use:   "logs <file.csv>",
	Short: "Import delivery logs",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return runImport(cmd, args[0], "log", db.ImportLogs)
	},
}

var importDoneStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#a6e3a1")).Bold(true)

func init() {
	importCmd.AddCommand(importCampaignsCmd, importLogsCmd)
	rootCmd.AddCommand(importCmd)
}

type importFunc func(*sql.DB, io.Reader) (int, error)

func runImport(cmd *cobra.Command, path, noun string, fn importFunc) error {
	e, err := setup(cmd)
	if err != nil {
		return err
	}
	defer e.Close()

	f, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("failed to open %s: %w", path, err)
	}
	defer f.Close()

	n, err := fn(e.db, f)
	if err != nil {
		e.logger.Error("import failed", "kind", noun, "file", path, "err", err)
		return fmt.Errorf("import %s: %w", path, err)
	}

	e.logger.Info("import finished", "kind", noun, "file", path, "rows", n)
	cmd.Println(importDoneStyle.Render("✓") + " Imported " + util.FormatCount(n, noun) + " from " + path)
	return nil
}
