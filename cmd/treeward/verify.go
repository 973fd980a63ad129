package main

import (
	"fmt"

	"github.com/jamesainslie/treeward/internal/render"
	"github.com/jamesainslie/treeward/pkg/treeward/diff"
	"github.com/jamesainslie/treeward/pkg/treeward/walk"
	"github.com/spf13/cobra"
)

var verifyCmd = &cobra.Command{
	Use:   "verify",
	Short: "Rehash every tracked file and fail if anything changed",
	Long: `Verify is 'status --always-verify' with a stricter exit contract:
every tracked file is rehashed, and the command exits non-zero if the
change list is non-empty. Nothing is ever written.`,
	Args: cobra.NoArgs,
	RunE: runVerify,
}

func init() {
	rootCmd.AddCommand(verifyCmd)
}

func runVerify(cmd *cobra.Command, args []string) error {
	root, err := resolveRoot(cmd)
	if err != nil {
		return err
	}

	result, err := walk.Status(root, diff.Always)
	if err != nil {
		return err
	}

	if err := emit(cmd, render.FromChanges("verify", root, diff.Always, changeViews(result.Changes), result.Fingerprint)); err != nil {
		return err
	}

	if len(result.Changes) > 0 {
		return fmt.Errorf("verification failed: %d change(s) detected", len(result.Changes))
	}
	return nil
}
