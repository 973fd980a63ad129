package main

import (
	"fmt"

	"github.com/jamesainslie/treeward/internal/render"
	"github.com/jamesainslie/treeward/pkg/treeward/diff"
	"github.com/jamesainslie/treeward/pkg/treeward/manifest"
	"github.com/jamesainslie/treeward/pkg/treeward/plan"
	"github.com/spf13/cobra"
)

var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Start tracking a directory tree",
	Long: `Init creates a manifest for the directory at -C (default: current
directory) and for every subdirectory underneath it, hashing every file.
It fails if the directory is already tracked; use 'treeward update' to
refresh an existing manifest.

With --fingerprint, init only proceeds if the tree still matches the
change set the given fingerprint was computed over; any intervening
modification aborts the run before a single manifest is written.`,
	Args: cobra.NoArgs,
	RunE: runInit,
}

func init() {
	initCmd.Flags().Bool("dry-run", false, "report which manifests would be written without writing")
	initCmd.Flags().String("fingerprint", "", "abort unless the tree's fingerprint still matches FP")
	rootCmd.AddCommand(initCmd)
}

func runInit(cmd *cobra.Command, args []string) error {
	root, err := resolveRoot(cmd)
	if err != nil {
		return err
	}
	if manifest.Exists(root) {
		return fmt.Errorf("already initialized: %s exists (use 'treeward update' to refresh)", manifest.Path(root))
	}

	dryRun, _ := cmd.Flags().GetBool("dry-run")
	fingerprint, _ := cmd.Flags().GetString("fingerprint")

	result, err := plan.Run(root, plan.Options{
		InitAllowed:         true,
		ExpectedFingerprint: fingerprint,
		DryRun:              dryRun,
	})
	if err != nil {
		return err
	}

	return emit(cmd, render.FromPlan("init", root, diff.WhenPossiblyModified, changeViews(result.Changes), result))
}
