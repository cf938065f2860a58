// Package cmd provides the CLI commands for upsend.
package cmd

import (
	"database/sql"
	"fmt"
	"io"
	"os"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"upsend/internal/config"
	"upsend/internal/db"
	"upsend/internal/logging"
	"upsend/internal/ui"
)

// Version information, set from main before Execute.
var (
	Version = "dev"
	Commit  = "none"
	Date    = "unknown"
)

// flagKeys maps persistent flags to config keys.
var flagKeys = map[string]string{
	"db":       "db_path",
	"locale":   "locale",
	"log-file": "log_file",
}

var rootCmd = &cobra.Command{
	Use:   "upsend",
	Short: "Campaign history and delivery logs in the terminal",
	Long: `upsend browses email campaign history, per-recipient delivery logs and
recipient CSV previews as sortable, searchable tables.

Run without a subcommand to start the TUI.`,
	SilenceUsage: true,
	RunE:         runRoot,
}

func init() {
	pf := rootCmd.PersistentFlags()
	pf.String("db", "", "Path to SQLite database file (default: ~/.upsend/upsend.db)")
	pf.String("config", "", "Path to config file (default: ~/.upsend/config.yaml)")
	pf.String("locale", "", "Locale used to sort text columns (default: en)")
	pf.String("log-file", "", "Path to log file (default: ~/.upsend/upsend.log)")
}

// Execute runs the root command.
func Execute() {
	rootCmd.Version = fmt.Sprintf("%s (commit: %s, built: %s)", Version, Commit, Date)
	rootCmd.SetVersionTemplate("upsend {{.Version}}\n")

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

// Root returns the root command for testing purposes.
func Root() *cobra.Command {
	return rootCmd
}

// env is what every command needs once config is loaded.
type env struct {
	cfg    *config.Config
	db     *sql.DB
	logger *log.Logger
	closer io.Closer
}

func (e *env) Close() {
	if e.db != nil {
		e.db.Close()
	}
	if e.closer != nil {
		e.closer.Close()
	}
}

// loadConfig reads the config file, environment and flags, in increasing
// order of precedence.
func loadConfig(cmd *cobra.Command) (*config.Config, error) {
	dir, err := config.Dir()
	if err != nil {
		return nil, err
	}

	loader := config.NewLoader(dir)
	flags := cmd.Root().PersistentFlags()
	for name, key := range flagKeys {
		if err := loader.Viper().BindPFlag(key, flags.Lookup(name)); err != nil {
			return nil, fmt.Errorf("failed to bind --%s: %w", name, err)
		}
	}

	path, _ := flags.GetString("config")
	return loader.Load(path)
}

// setup loads config, opens the log file and the database.
func setup(cmd *cobra.Command) (*env, error) {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return nil, err
	}

	logger, closer, err := logging.New(cfg.LogFile, cfg.LogLevel)
	if err != nil {
		return nil, err
	}

	database, err := db.Open(cfg.DBPath)
	if err != nil {
		closer.Close()
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	logger.Debug("database opened", "path", cfg.DBPath)

	return &env{cfg: cfg, db: database, logger: logger, closer: closer}, nil
}

func runRoot(cmd *cobra.Command, args []string) error {
	e, err := setup(cmd)
	if err != nil {
		return err
	}
	defer e.Close()

	sender, err := resolveSender(e.cfg)
	if err != nil {
		return err
	}

	opts := ui.Options{
		Locale:           e.cfg.Locale,
		SenderEmail:      sender,
		ToastDuration:    e.cfg.ToastDuration,
		AlertTimeout:     e.cfg.AlertTimeout,
		SearchDebounce:   e.cfg.SearchDebounce,
		ProgressDuration: e.cfg.ProgressDuration,
	}

	e.logger.Info("starting", "version", Version, "locale", opts.Locale)
	p := tea.NewProgram(ui.New(e.db, e.logger, opts), tea.WithAltScreen())
	if _, err := p.Run(); err != nil {
		e.logger.Error("tui exited", "err", err)
		return fmt.Errorf("error running app: %w", err)
	}
	e.logger.Info("exiting")
	return nil
}

// resolveSender returns the configured sender, running onboarding on the
// first interactive start when none is configured.
func resolveSender(cfg *config.Config) (string, error) {
	configDir := cfg.Dir()
	settings, err := loadOnboardingSettings(configDir)
	if err != nil {
		return "", fmt.Errorf("failed to load onboarding settings: %w", err)
	}

	if cfg.SenderEmail == "" && shouldRunOnboarding(settings) {
		settings, err = runOnboarding(configDir, settings.SenderEmail)
		if err != nil {
			return "", fmt.Errorf("failed to run onboarding: %w", err)
		}
	}

	if cfg.SenderEmail != "" {
		return cfg.SenderEmail, nil
	}
	return settings.SenderEmail, nil
}
