package main

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"

	"github.com/dustin/go-humanize"
	"github.com/jamesainslie/treeward/internal/config"
	"github.com/jamesainslie/treeward/internal/logging"
	"github.com/jamesainslie/treeward/internal/render"
	"github.com/jamesainslie/treeward/pkg/treeward/walk"
	"github.com/spf13/cobra"
)

var (
	cfg *config.Config

	rootCmd = &cobra.Command{
		Use:   "treeward",
		Short: "Detect additions, removals, and silent corruption in a directory tree",
		Long: `Treeward maintains SHA-256 digests and metadata for the files in a
directory tree so that additions, removals, metadata drift, and silent
content corruption can be detected deterministically.

Every tracked directory owns a single manifest file (.treeward)
describing only its immediate children, so a subtree can be relocated
or archived as a self-contained unit without invalidating sibling
state.

Examples:
  treeward init                      # Start tracking the current directory
  treeward status                    # Report changes since the last update
  treeward status --always-verify    # Rehash every file, catch silent corruption
  treeward update --fingerprint FP   # Accept exactly the changes status reported
  treeward verify                    # Exit non-zero if anything changed`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			loaded, err := config.Load()
			if err != nil {
				return err
			}
			cfg = loaded
			return setupLogging(cmd, cfg)
		},
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			_ = logging.Close()
		},
	}
)

func init() {
	rootCmd.PersistentFlags().StringP("chdir", "C", ".", "operate on DIR instead of the current directory")
	rootCmd.PersistentFlags().StringP("output", "o", "pretty", "output format (pretty, plain, json, yaml)")
	rootCmd.PersistentFlags().String("log-level", "", "override the configured log level (debug, info, warn, error)")
	rootCmd.PersistentFlags().BoolP("verbose", "v", false, "also log to stderr")
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}

// setupLogging translates the loaded config (plus --log-level/--verbose
// overrides) into a logging.Config and initializes the logging system.
func setupLogging(cmd *cobra.Command, cfg *config.Config) error {
	level := cfg.Logging.Level
	if override, _ := cmd.Flags().GetString("log-level"); override != "" {
		level = override
	}

	rotation := logging.DefaultRotationConfig()
	if cfg.Logging.Rotation.MaxSize != "" {
		maxSize, err := humanize.ParseBytes(cfg.Logging.Rotation.MaxSize)
		if err != nil {
			return fmt.Errorf("parsing logging.rotation.max_size: %w", err)
		}
		rotation.MaxSize = int64(maxSize)
	}
	if cfg.Logging.Rotation.MaxAge > 0 {
		rotation.MaxAge = cfg.Logging.Rotation.MaxAge
	}
	if cfg.Logging.Rotation.MaxBackups > 0 {
		rotation.MaxBackups = cfg.Logging.Rotation.MaxBackups
	}
	rotation.Daily = cfg.Logging.Rotation.Daily

	logCfg := logging.Config{
		Level:      level,
		Path:       cfg.Logging.Path,
		Rotation:   rotation,
		Components: cfg.Logging.Components,
	}
	if verbose, _ := cmd.Flags().GetBool("verbose"); verbose {
		logCfg.ConsoleLevel = "debug"
	}

	return logging.Init(logCfg)
}

// resolveRoot returns the absolute traversal root from the -C flag.
func resolveRoot(cmd *cobra.Command) (string, error) {
	dir, err := cmd.Flags().GetString("chdir")
	if err != nil {
		return "", err
	}
	abs, err := filepath.Abs(dir)
	if err != nil {
		return "", fmt.Errorf("resolving %s: %w", dir, err)
	}
	info, err := os.Stat(abs)
	if err != nil {
		return "", fmt.Errorf("resolving %s: %w", dir, err)
	}
	if !info.IsDir() {
		return "", fmt.Errorf("%s is not a directory", abs)
	}
	return abs, nil
}

// emit renders r in the format selected by --output and prints it.
func emit(cmd *cobra.Command, r render.Result) error {
	format, err := cmd.Flags().GetString("output")
	if err != nil {
		return err
	}
	formatter, err := render.Get(format)
	if err != nil {
		return err
	}
	var buf bytes.Buffer
	if err := formatter.Format(&buf, &r); err != nil {
		return err
	}
	fmt.Fprint(cmd.OutOrStdout(), buf.String())
	return nil
}

// changeViews converts walk changes into their rendering-ready form.
func changeViews(changes []walk.Change) []render.ChangeView {
	views := make([]render.ChangeView, 0, len(changes))
	for _, c := range changes {
		views = append(views, render.ChangeView{Path: c.Path, Kind: c.Kind.String()})
	}
	return views
}
