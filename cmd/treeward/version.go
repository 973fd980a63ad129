package main

import (
	"fmt"
	"runtime"

	"github.com/spf13/cobra"
)

// Build-time variables set by goreleaser or go build -ldflags.
var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	Long:  `Display the version, commit hash, and build date of treeward.`,
	Run:   runVersion,
}

func init() {
	rootCmd.AddCommand(versionCmd)
}

func runVersion(cmd *cobra.Command, args []string) {
	fmt.Fprintf(cmd.OutOrStdout(), "treeward %s\n", version)
	fmt.Fprintf(cmd.OutOrStdout(), "  commit:  %s\n", commit)
	fmt.Fprintf(cmd.OutOrStdout(), "  built:   %s\n", date)
	fmt.Fprintf(cmd.OutOrStdout(), "  go:      %s\n", runtime.Version())
	fmt.Fprintf(cmd.OutOrStdout(), "  os/arch: %s/%s\n", runtime.GOOS, runtime.GOARCH)
}
