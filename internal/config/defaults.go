// Package config loads treeward's settings from a YAML file under XDG
// config directories and from environment variables, the latter taking
// precedence. Command-line flags are not read here; the CLI applies its
// own flag overrides on top of the loaded Config.
package config

// Default configuration values.
const (
	// DefaultPolicy is the checksum policy status uses when the caller
	// doesn't override it: "never", "when_possibly_modified", or "always".
	// verify always rehashes and ignores this setting.
	DefaultPolicy = "when_possibly_modified"

	// DefaultAllowInit controls whether `update` may initialize an
	// untracked directory without an explicit --allow-init flag.
	DefaultAllowInit = false
)
