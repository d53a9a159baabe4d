package cmd

import (
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	cfgpkg "github.com/KaramelBytes/churnlens-cli/internal/config"
	"github.com/KaramelBytes/churnlens-cli/internal/report"
	"github.com/KaramelBytes/churnlens-cli/internal/session"
)

var (
	// Global flags
	cfgFile    string
	debug      bool
	flagFormat string

	// Loaded configuration
	cfg *cfgpkg.Global
)

var rootCmd = &cobra.Command{
	Use:   "churnlens",
	Short: "ChurnLens CLI: explore churn predictions from the command line",
	Long: `ChurnLens loads a scored customer dataset (JSON, CSV, TSV or XLSX) and
renders the churn dashboard views: risk split, probability pyramid,
histograms, category breakdowns, trends and a paged customer table.
The same views are served as JSON by "churnlens serve".`,
	SilenceUsage:  true,
	SilenceErrors: true,
}

// Execute is the entry point called by main.main()
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "✗ Error:", err)
		os.Exit(1)
	}
}

func init() {
	cobra.OnInitialize(initLogging, loadConfig)
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is ~/.churnlens/config.yaml)")
	rootCmd.PersistentFlags().BoolVar(&debug, "debug", false, "enable debug output")
	rootCmd.PersistentFlags().StringVar(&flagFormat, "format", "", "output format: markdown|json|yaml (overrides config)")
}

func initLogging() {
	level := slog.LevelWarn
	if debug {
		level = slog.LevelDebug
	}
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level})))
}

func loadConfig() {
	cfg = nil
	c, err := cfgpkg.Load(cfgFile)
	if err != nil {
		// Non-fatal: commands that need config report it themselves
		fmt.Fprintf(os.Stderr, "⚠ Warning: failed to load config: %v\n", err)
		return
	}
	cfg = c
	slog.Debug("config loaded", slog.String("session_dir", cfg.SessionDir), slog.Int("page_size", cfg.PageSize))
}

// requireConfig returns the loaded configuration or the load error.
func requireConfig() (*cfgpkg.Global, error) {
	if cfg != nil {
		return cfg, nil
	}
	c, err := cfgpkg.Load(cfgFile)
	if err != nil {
		return nil, err
	}
	cfg = c
	return cfg, nil
}

func sessionStore() (*session.Store, error) {
	c, err := requireConfig()
	if err != nil {
		return nil, err
	}
	return session.NewStore(c.SessionDir), nil
}

// currentSnapshot loads the persisted dataset snapshot.
func currentSnapshot() (*session.Snapshot, error) {
	st, err := sessionStore()
	if err != nil {
		return nil, err
	}
	snap, err := st.Load()
	if err != nil {
		return nil, fmt.Errorf("%w (run 'churnlens load <file>' first)", err)
	}
	return snap, nil
}

// outputFormat resolves --format against the configured default.
func outputFormat() (report.Format, error) {
	if flagFormat != "" {
		return report.ParseFormat(flagFormat)
	}
	if cfg != nil {
		return report.ParseFormat(cfg.OutputFormat)
	}
	return report.FormatMarkdown, nil
}

// emit renders v in the selected output format.
func emit(w io.Writer, title string, v any) error {
	f, err := outputFormat()
	if err != nil {
		return err
	}
	return report.Render(w, f, title, v)
}
