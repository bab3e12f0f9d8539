package main

import (
	"cmp"
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/jackzampolin/adrbuch/internal/catalog"
	"github.com/jackzampolin/adrbuch/internal/config"
	"github.com/jackzampolin/adrbuch/internal/home"
	"github.com/jackzampolin/adrbuch/internal/report"
	"github.com/jackzampolin/adrbuch/internal/sanitize"
	"github.com/jackzampolin/adrbuch/version"
)

var (
	cfgFile      string
	homeDir      string
	outputFormat string
	logLevel     string
)

var rootCmd = &cobra.Command{
	Use:   "adrbuch",
	Short: "Turn OCR output of the Bern address books into proofreadable text",
	Long: `adrbuch converts OCR results of the historic Bern address books
(1861-1945) into one plain-text file per volume, with one directory entry
per line, ready for proofreading.

The conversion runs per page:
  - ingest:   read and clean the OCR text boxes
  - segment:  find the column divider (override table, scan, text gap)
  - order:    put lines into reading order
  - merge:    join wrapped lines into entries
  - sanitize: apply replacement rules to fix common OCR errors`,
	Version:      version.GitRelease,
	SilenceUsage: true,
}

func init() {
	rootCmd.PersistentFlags().StringVar(
		&cfgFile, "config", "", "config file (default: ./config.yaml or <home>/config.yaml)",
	)
	rootCmd.PersistentFlags().StringVar(
		&homeDir, "home", "", "workspace directory (default: $ADRBUCH_HOME or the working directory)",
	)
	rootCmd.PersistentFlags().StringVarP(
		&outputFormat, "output", "o", "yaml", "output format: yaml or json",
	)
	rootCmd.PersistentFlags().StringVar(
		&logLevel, "log-level", "", "log level: debug, info, warn or error (default from config)",
	)

	rootCmd.AddCommand(versionCmd)
}

// app holds what every command needs after flags are parsed.
type app struct {
	home   *home.Dir
	cfg    *config.Config
	paths  config.PathsConfig
	format report.Format
	logger *slog.Logger
}

func newApp() (*app, error) {
	format, err := report.ParseFormat(outputFormat)
	if err != nil {
		return nil, err
	}

	h, err := home.New(homeDir)
	if err != nil {
		return nil, err
	}

	mgr, err := config.NewManager(cfgFile, h.Path())
	if err != nil {
		return nil, err
	}
	cfg := mgr.Get()

	var level slog.Level
	if err := level.UnmarshalText([]byte(cmp.Or(logLevel, cfg.LogLevel, "info"))); err != nil {
		return nil, fmt.Errorf("invalid log level: %w", err)
	}
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: level,
	}))
	if f := mgr.ConfigFile(); f != "" {
		logger.Debug("loaded config", "file", f)
	}

	return &app{
		home:   h,
		cfg:    cfg,
		paths:  cfg.ResolvePaths(h),
		format: format,
		logger: logger,
	}, nil
}

// loadCatalog reads the catalog tables. Optional tables that do not exist
// are skipped.
func (a *app) loadCatalog() (*catalog.Catalog, error) {
	optional := func(path string) string {
		if _, err := os.Stat(path); err != nil {
			a.logger.Debug("optional table not found", "path", path)
			return ""
		}
		return path
	}
	return catalog.Load(catalog.Paths{
		Chapters:      a.paths.Chapters,
		Pages:         a.paths.Pages,
		AdPages:       optional(a.paths.AdPages),
		Dividers:      optional(a.paths.Dividers),
		AddressReform: optional(a.paths.AddressReform),
	})
}

// selectVolumes applies the --volumes flag, falling back to
// PROCESS_VOLUMES and the configured minimum date.
func (a *app) selectVolumes(cat *catalog.Catalog, flag string) ([]catalog.Volume, error) {
	dates := catalog.ParseSelection(cmp.Or(flag, a.cfg.Volumes.Process))
	return cat.Select(dates, a.cfg.Volumes.MinDate)
}

func (a *app) sanitizer() (*sanitize.Sanitizer, error) {
	rules, err := sanitize.LoadRules(config.ResolveEnvVars(a.cfg.Sanitize.Rules))
	if err != nil {
		return nil, err
	}
	blackhole, err := sanitize.LoadBlackhole(config.ResolveEnvVars(a.cfg.Sanitize.Blackhole))
	if err != nil {
		return nil, err
	}
	a.logger.Debug("loaded replacement tables", "rules", rules.Len(), "blackhole", blackhole.Len())
	return sanitize.New(rules, blackhole), nil
}

func (a *app) output(data any) error {
	return report.Write(os.Stdout, a.format, data)
}
