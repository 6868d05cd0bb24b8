package cmd

import (
	"bufio"
	"context"
	"fmt"
	"log/slog"
	"os"
	"strings"

	"github.com/spf13/cobra"
)

// RunFunc starts the application with the resolved configuration.
type RunFunc func(ctx context.Context, cfg Config, logger *slog.Logger) error

type flagValues struct {
	sources       []string
	dbPath        string
	configFile    string
	lang          string
	debug         bool
	logFile       string
	pageSize      int
	pageIncrement int
}

// NewRootCmd builds the finboard command.
func NewRootCmd(version string, run RunFunc) *cobra.Command {
	var fv flagValues

	root := &cobra.Command{
		Use:   "finboard",
		Short: "Terminal dashboard for finance exports",
		Long: `finboard loads tab-separated finance exports and shows transactions,
a monthly summary and a category breakdown as sortable, filterable tables.`,
		Example: `  # Load an export published as TSV
  finboard --source https://example.com/export.tsv

  # Merge two local exports and start in German
  finboard --source giro.tsv --source card.tsv --lang de`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			// Load .env files first so env-based defaults work with flag parsing.
			loadDotEnv(".env")
			loadDotEnv(".env.local")

			cfg, err := resolveConfig(cmd, fv, true)
			if err != nil {
				return err
			}

			logger, closer, err := SetupLogging(cfg.LogFile, cfg.Debug)
			if err != nil {
				return err
			}
			defer closer.Close()
			logger.Info("starting", "version", version, "sources", len(cfg.Sources), "db", cfg.DBPath)

			return run(cmd.Context(), cfg, logger)
		},
	}

	f := root.Flags()
	f.StringArrayVarP(&fv.sources, "source", "s", nil, "Export URL or file path (repeatable, or set FINBOARD_SOURCE)")
	f.StringVar(&fv.dbPath, "db", "", "Path to SQLite database file (default: XDG data home)")
	f.StringVarP(&fv.configFile, "config", "c", "", "Path to config file (default: XDG config home)")
	f.StringVar(&fv.lang, "lang", "", "UI language, en or de (or set FINBOARD_LANG)")
	f.BoolVarP(&fv.debug, "debug", "d", false, "Enable debug logging")
	f.StringVar(&fv.logFile, "log-file", "", "Path to log file (default: XDG state home)")
	f.IntVar(&fv.pageSize, "page-size", 0, "Rows rendered initially per table")
	f.IntVar(&fv.pageIncrement, "page-increment", 0, "Rows added when scrolling near the end")

	root.AddCommand(versionCmd(version))
	return root
}

func versionCmd(version string) *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the version",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintln(cmd.OutOrStdout(), "finboard "+version)
		},
	}
}

// Execute runs the root command.
func Execute(ctx context.Context, version string, run RunFunc) error {
	return NewRootCmd(version, run).ExecuteContext(ctx)
}

// resolveConfig merges defaults, the config file, env and flags, in
// increasing precedence. With onboard set, a missing config file starts
// the first-run setup when stdin is a terminal.
func resolveConfig(cmd *cobra.Command, fv flagValues, onboard bool) (Config, error) {
	path := fv.configFile
	if path == "" {
		var err error
		if path, err = DefaultConfigPath(); err != nil {
			return Config{}, err
		}
	}

	cfg, found, err := LoadConfig(path)
	if err != nil {
		return Config{}, err
	}

	resolved := cfg
	applyEnv(&resolved)
	applyFlags(cmd, fv, &resolved)

	if onboard && !found && len(resolved.Sources) == 0 && shouldRunOnboarding() {
		answered, err := runOnboarding(path, cfg)
		if err != nil {
			return Config{}, fmt.Errorf("failed to run onboarding: %w", err)
		}
		resolved.Sources = answered.Sources
		resolved.Language = answered.Language
	}

	if err := fillPaths(&resolved); err != nil {
		return Config{}, err
	}
	return resolved, nil
}

func applyFlags(cmd *cobra.Command, fv flagValues, cfg *Config) {
	f := cmd.Flags()
	if f.Changed("source") {
		cfg.Sources = fv.sources
	}
	if f.Changed("db") {
		cfg.DBPath = fv.dbPath
	}
	if f.Changed("lang") {
		cfg.LanguageOverride = fv.lang
	}
	if f.Changed("debug") {
		cfg.Debug = fv.debug
	}
	if f.Changed("log-file") {
		cfg.LogFile = fv.logFile
	}
	if f.Changed("page-size") && fv.pageSize > 0 {
		cfg.PageSize = fv.pageSize
	}
	if f.Changed("page-increment") && fv.pageIncrement > 0 {
		cfg.PageIncrement = fv.pageIncrement
	}
}

func loadDotEnv(path string) {
	f, err := os.Open(path)
	if err != nil {
		return
	}
	defer f.Close()

	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}

		parts := strings.SplitN(line, "=", 2)
		if len(parts) != 2 {
			continue
		}

		key := strings.TrimSpace(parts[0])
		value := strings.TrimSpace(parts[1])
		if key == "" {
			continue
		}

		value = strings.Trim(value, `"'`)
		if os.Getenv(key) == "" {
			_ = os.Setenv(key, value)
		}
	}
}
