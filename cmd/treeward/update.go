package main

import (
	"github.com/jamesainslie/treeward/internal/render"
	"github.com/jamesainslie/treeward/pkg/treeward/diff"
	"github.com/jamesainslie/treeward/pkg/treeward/plan"
	"github.com/spf13/cobra"
)

var updateCmd = &cobra.Command{
	Use:   "update",
	Short: "Refresh manifests to match the live tree",
	Long: `Update re-reconciles the tracked tree at -C (default: current
directory) with its manifests: new files are hashed, removed entries are
dropped, and files whose size and mtime are unchanged keep their stored
digest without being reread. Only manifests whose canonical bytes would
change are rewritten, each atomically.

Update fails on an untracked directory unless --allow-init is passed (or
allow_init is set in the config file).

With --fingerprint, update only proceeds if the tree still matches the
change set the given fingerprint was computed over. Capture it from
'treeward status --verify' (the when_possibly_modified policy, which is
the one update uses) to make the update conditional on exactly the
changes you reviewed.`,
	Args: cobra.NoArgs,
	RunE: runUpdate,
}

func init() {
	updateCmd.Flags().Bool("dry-run", false, "report which manifests would be written without writing")
	updateCmd.Flags().String("fingerprint", "", "abort unless the tree's fingerprint still matches FP")
	updateCmd.Flags().Bool("allow-init", false, "also initialize untracked directories")
	rootCmd.AddCommand(updateCmd)
}

func runUpdate(cmd *cobra.Command, args []string) error {
	root, err := resolveRoot(cmd)
	if err != nil {
		return err
	}

	dryRun, _ := cmd.Flags().GetBool("dry-run")
	fingerprint, _ := cmd.Flags().GetString("fingerprint")
	allowInit, _ := cmd.Flags().GetBool("allow-init")
	if !cmd.Flags().Changed("allow-init") {
		allowInit = cfg.AllowInit
	}

	result, err := plan.Run(root, plan.Options{
		InitAllowed:         allowInit,
		ExpectedFingerprint: fingerprint,
		DryRun:              dryRun,
	})
	if err != nil {
		return err
	}

	return emit(cmd, render.FromPlan("update", root, diff.WhenPossiblyModified, changeViews(result.Changes), result))
}
