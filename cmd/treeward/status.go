package main

import (
	"fmt"

	"github.com/jamesainslie/treeward/internal/render"
	"github.com/jamesainslie/treeward/pkg/treeward/diff"
	"github.com/jamesainslie/treeward/pkg/treeward/walk"
	"github.com/spf13/cobra"
)

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Report changes between the manifests and the live tree",
	Long: `Status walks the tree rooted at -C (default: current directory),
compares each tracked directory's manifest against the live filesystem,
and reports the resulting change list plus its fingerprint. Nothing is
ever written.

The checksum policy controls how eagerly files are rehashed:
  (default)        use the configured policy
  --verify         rehash files whose metadata drifted; metadata drift
                   with unchanged content is not reported as a change
  --always-verify  rehash every file, catching corruption that preserved
                   size and mtime

Pass the printed fingerprint to 'treeward update --fingerprint' to make
the update conditional on the tree still matching what status saw. Update
computes its fingerprint under the when_possibly_modified policy, so only
a fingerprint printed under that policy (--verify, or the default
configuration) can match it.`,
	Args: cobra.NoArgs,
	RunE: runStatus,
}

func init() {
	statusCmd.Flags().Bool("verify", false, "rehash files whose metadata drifted")
	statusCmd.Flags().Bool("always-verify", false, "rehash every file regardless of metadata")
	rootCmd.AddCommand(statusCmd)
}

func runStatus(cmd *cobra.Command, args []string) error {
	root, err := resolveRoot(cmd)
	if err != nil {
		return err
	}
	policy, err := statusPolicy(cmd)
	if err != nil {
		return err
	}

	result, err := walk.Status(root, policy)
	if err != nil {
		return err
	}

	return emit(cmd, render.FromChanges("status", root, policy, changeViews(result.Changes), result.Fingerprint))
}

// statusPolicy resolves the effective checksum policy from the --verify /
// --always-verify flags, falling back to the configured default.
func statusPolicy(cmd *cobra.Command) (diff.Policy, error) {
	alwaysVerify, _ := cmd.Flags().GetBool("always-verify")
	verify, _ := cmd.Flags().GetBool("verify")

	switch {
	case alwaysVerify:
		return diff.Always, nil
	case verify:
		return diff.WhenPossiblyModified, nil
	}

	policy, err := diff.ParsePolicy(cfg.Policy)
	if err != nil {
		return diff.Never, fmt.Errorf("configured policy: %w", err)
	}
	return policy, nil
}
