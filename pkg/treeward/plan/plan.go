// Package plan implements the update planner: the incremental re-hasher
// that decides, per directory, whether a manifest needs to be rewritten,
// and enforces the fingerprint-based TOCTOU gate before any write happens.
package plan

import (
	"path/filepath"

	"github.com/jamesainslie/treeward/internal/logging"
	"github.com/jamesainslie/treeward/pkg/treeward/dirlist"
	"github.com/jamesainslie/treeward/pkg/treeward/diff"
	"github.com/jamesainslie/treeward/pkg/treeward/errs"
	"github.com/jamesainslie/treeward/pkg/treeward/hashfile"
	"github.com/jamesainslie/treeward/pkg/treeward/manifest"
	"github.com/jamesainslie/treeward/pkg/treeward/walk"
)

// Options configures one planner invocation.
type Options struct {
	// InitAllowed permits the planner to create a manifest for a
	// directory that doesn't have one. When false, an uninitialized
	// directory fails with errs.NotInitialized.
	InitAllowed bool
	// ExpectedFingerprint, if non-empty, gates the plan: it must match
	// the fingerprint freshly computed at the start of the run or the
	// plan fails with errs.FingerprintMismatch before any write.
	ExpectedFingerprint string
	// DryRun reports what would be written without writing anything.
	DryRun bool
}

// DirOutcome is the terminal state of one directory under the plan.
type DirOutcome int

const (
	Unchanged DirOutcome = iota
	Written
	SkippedDryRun
)

func (o DirOutcome) String() string {
	switch o {
	case Unchanged:
		return "unchanged"
	case Written:
		return "written"
	case SkippedDryRun:
		return "skipped_dry_run"
	default:
		return "unknown"
	}
}

// Result is the outcome of one plan invocation.
type Result struct {
	// Changes is the sorted change list observed by the pre-flight status
	// pass, before any mutation.
	Changes []walk.Change
	// Fingerprint is the fingerprint computed at the start of the run,
	// before any mutation: the same value a caller would pass back as
	// ExpectedFingerprint on a subsequent call.
	Fingerprint string
	// Directories maps each visited directory's absolute path to its outcome.
	Directories map[string]DirOutcome
}

// Run executes the planner against root. The sequence is strictly
// ordered: the fingerprint gate runs before anything is assembled or
// written, so a rejected plan mutates nothing.
func Run(root string, opts Options) (Result, error) {
	absRoot, err := filepath.Abs(root)
	if err != nil {
		return Result{}, errs.New(errs.Io, root, err)
	}
	canonicalRoot, err := filepath.EvalSymlinks(absRoot)
	if err != nil {
		return Result{}, errs.New(errs.Io, absRoot, err)
	}

	logger := logging.Get("planner")
	logger.Info("plan started", "root", canonicalRoot, "dry_run", opts.DryRun, "init_allowed", opts.InitAllowed)

	status, err := walk.Status(canonicalRoot, diff.WhenPossiblyModified)
	if err != nil {
		return Result{}, err
	}

	if opts.ExpectedFingerprint != "" && opts.ExpectedFingerprint != status.Fingerprint {
		logger.Warn("fingerprint gate rejected plan",
			"expected", opts.ExpectedFingerprint, "computed", status.Fingerprint)
		return Result{}, errs.New(errs.FingerprintMismatch, canonicalRoot, nil)
	}

	outcomes := make(map[string]DirOutcome)
	if _, err := planDir(canonicalRoot, opts, outcomes); err != nil {
		return Result{}, err
	}

	written := 0
	for _, o := range outcomes {
		if o != Unchanged {
			written++
		}
	}
	logger.Info("plan finished", "directories", len(outcomes), "written", written)

	return Result{Changes: status.Changes, Fingerprint: status.Fingerprint, Directories: outcomes}, nil
}

// planDir assembles and, unless dry-run, persists the manifest for absDir.
// It returns true whenever absDir was planned without error (a directory
// that cannot be listed, including one that is gone, yields an error
// instead), and the parent includes a Dir entry for every child that
// returned true. Traversal is post-order: every
// subdirectory is planned before its parent's manifest is assembled, so a
// freshly-initialized child is visible to the parent's Dir entry.
func planDir(absDir string, opts Options, outcomes map[string]DirOutcome) (bool, error) {
	live, err := dirlist.List(absDir, manifest.ReservedFilename)
	if err != nil {
		return false, err
	}

	existing, loadErr := manifest.Load(absDir)
	hadManifest := loadErr == nil
	if loadErr != nil && !errs.Is(loadErr, errs.NotInitialized) {
		return false, loadErr
	}
	if !hadManifest && !opts.InitAllowed {
		return false, errs.New(errs.NotInitialized, absDir, nil)
	}

	newManifest := manifest.New()

	for name, liveEntry := range live {
		switch liveEntry.Kind {
		case dirlist.Dir:
			childExists, err := planDir(filepath.Join(absDir, name), opts, outcomes)
			if err != nil {
				return false, err
			}
			if childExists {
				newManifest.Entries[name] = manifest.Entry{Kind: manifest.Dir}
			}

		case dirlist.Symlink:
			newManifest.Entries[name] = manifest.Entry{Kind: manifest.Symlink, SymlinkTarget: liveEntry.SymlinkTarget}

		case dirlist.File:
			entry, err := planFileEntry(absDir, name, liveEntry, existing, hadManifest)
			if err != nil {
				return false, err
			}
			newManifest.Entries[name] = entry
		}
	}

	outcome, err := persist(absDir, existing, hadManifest, newManifest, opts)
	if err != nil {
		return false, err
	}
	outcomes[absDir] = outcome
	return true, nil
}

// planFileEntry reuses the manifest's stored digest when the file's kind,
// size, and mtime are unchanged from what was last recorded; otherwise it
// invokes the hasher. If the rehashed digest equals the stored one (pure
// metadata drift), the stored entry is kept as is, so the manifest is not
// rewritten.
func planFileEntry(absDir, name string, live dirlist.Entry, existing *manifest.Manifest, hadManifest bool) (manifest.Entry, error) {
	var prior manifest.Entry
	hasPrior := false
	if hadManifest {
		prior, hasPrior = existing.Entries[name]
		hasPrior = hasPrior && prior.Kind == manifest.File
		if hasPrior && prior.Size == live.Size && prior.MtimeNanos == live.MtimeNanos {
			return prior, nil
		}
	}

	result, err := hashfile.Hash(filepath.Join(absDir, name))
	if err != nil {
		return manifest.Entry{}, err
	}
	if hasPrior && prior.Digest == result.SHA256 && prior.Size == result.Size {
		return prior, nil
	}
	return manifest.Entry{
		Kind:       manifest.File,
		Digest:     result.SHA256,
		MtimeNanos: result.MtimeNanos,
		Size:       result.Size,
	}, nil
}

// persist writes newManifest for absDir only if its canonical encoding
// differs from whatever is currently on disk, and never writes at all
// under dry-run.
func persist(absDir string, existing *manifest.Manifest, hadManifest bool, newManifest *manifest.Manifest, opts Options) (DirOutcome, error) {
	newBytes := manifest.Encode(newManifest)

	if hadManifest {
		oldBytes := manifest.Encode(existing)
		if string(oldBytes) == string(newBytes) {
			return Unchanged, nil
		}
	}

	if opts.DryRun {
		return SkippedDryRun, nil
	}

	if err := manifest.Save(absDir, newManifest); err != nil {
		return Unchanged, err
	}
	logging.Get("planner").Debug("manifest written", "dir", absDir)
	return Written, nil
}
