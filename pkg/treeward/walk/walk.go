// Package walk drives the differ recursively over a whole directory tree
// and computes the cryptographic fingerprint over the resulting change set.
package walk

import (
	"crypto/sha256"
	"encoding/binary"
	"encoding/hex"
	"path/filepath"
	"sort"

	"github.com/jamesainslie/treeward/internal/logging"
	"github.com/jamesainslie/treeward/pkg/treeward/dirlist"
	"github.com/jamesainslie/treeward/pkg/treeward/diff"
	"github.com/jamesainslie/treeward/pkg/treeward/errs"
	"github.com/jamesainslie/treeward/pkg/treeward/manifest"
)

// Change is a tree-relative difference: Path is the change's location
// relative to the traversal root, using forward slashes regardless of
// platform so fingerprints are portable.
type Change struct {
	Path string
	Kind diff.Kind
}

// Result is the outcome of one status traversal.
type Result struct {
	Changes     []Change
	Fingerprint string
}

// Status walks root under policy, decoding each tracked subdirectory's
// manifest and diffing it against the live listing. A directory that is
// present in the union of manifest Dir entries and live Dir entries but
// carries no manifest of its own is treated as untracked: every live child
// underneath it surfaces as Added, exactly as if its parent had never
// descended into it before, including root itself, if root has no
// manifest. Whether that's acceptable for a given caller (the planner
// requires a manifest unless init_allowed) is decided above this package,
// not by Status.
func Status(root string, policy diff.Policy) (Result, error) {
	absRoot, err := filepath.Abs(root)
	if err != nil {
		return Result{}, errs.New(errs.Io, root, err)
	}
	canonicalRoot, err := filepath.EvalSymlinks(absRoot)
	if err != nil {
		return Result{}, errs.New(errs.Io, absRoot, err)
	}

	logger := logging.Get("walker")
	logger.Debug("status walk started", "root", canonicalRoot, "policy", policy.String())

	var changes []Change
	if err := walkDir(canonicalRoot, "", policy, &changes); err != nil {
		return Result{}, err
	}

	sortChanges(changes)
	fp := Fingerprint(changes)
	logger.Debug("status walk finished", "changes", len(changes), "fingerprint", fp)
	return Result{Changes: changes, Fingerprint: fp}, nil
}

func walkDir(absDir, relDir string, policy diff.Policy, out *[]Change) error {
	live, err := dirlist.List(absDir, manifest.ReservedFilename)
	if err != nil {
		return err
	}

	var manifestEntries map[string]manifest.Entry
	m, loadErr := manifest.Load(absDir)
	switch {
	case loadErr == nil:
		manifestEntries = m.Entries
	case errs.Is(loadErr, errs.NotInitialized):
		manifestEntries = nil
	default:
		return loadErr
	}

	dirChanges, err := diff.Dir(manifestEntries, live, absDir, policy)
	if err != nil {
		return err
	}
	for _, c := range dirChanges {
		*out = append(*out, Change{Path: joinRel(relDir, c.Name), Kind: c.Kind})
	}

	subdirs := make(map[string]struct{})
	for name, entry := range manifestEntries {
		if entry.Kind == manifest.Dir {
			subdirs[name] = struct{}{}
		}
	}
	for name, entry := range live {
		if entry.Kind == dirlist.Dir {
			subdirs[name] = struct{}{}
		}
	}

	for name := range subdirs {
		childAbs := filepath.Join(absDir, name)
		childRel := joinRel(relDir, name)
		if _, existsLive := live[name]; !existsLive {
			// Listed by the manifest but gone from disk: descend anyway so
			// every transitively-tracked descendant is reported Removed.
			if err := walkRemovedSubtree(childAbs, childRel, out); err != nil {
				return err
			}
			continue
		}
		if err := walkDir(childAbs, childRel, policy, out); err != nil {
			return err
		}
	}

	return nil
}

// walkRemovedSubtree handles a subdirectory that a parent manifest still
// lists as Dir but which no longer exists on disk. Its own manifest, if
// still readable (the directory was moved rather than deleted outright,
// or only the live directory entry vanished while bytes remain reachable
// some other way), determines what Removed entries to report; if nothing
// is readable there is simply nothing further to descend into.
func walkRemovedSubtree(absDir, relDir string, out *[]Change) error {
	m, err := manifest.Load(absDir)
	if err != nil {
		return nil
	}
	for name, entry := range m.Entries {
		*out = append(*out, Change{Path: joinRel(relDir, name), Kind: diff.Removed})
		if entry.Kind == manifest.Dir {
			if err := walkRemovedSubtree(filepath.Join(absDir, name), joinRel(relDir, name), out); err != nil {
				return err
			}
		}
	}
	return nil
}

func joinRel(relDir, name string) string {
	if relDir == "" {
		return name
	}
	return relDir + "/" + name
}

func sortChanges(changes []Change) {
	sort.Slice(changes, func(i, j int) bool {
		if changes[i].Path != changes[j].Path {
			return changes[i].Path < changes[j].Path
		}
		return changes[i].Kind < changes[j].Kind
	})
}

// Fingerprint computes the hex-encoded SHA-256 over a canonical encoding
// of changes, which must already be sorted (Status sorts before calling
// this). Each path is framed with an 8-byte big-endian length prefix
// rather than a delimiter, so no path byte sequence can make two distinct
// change sets hash identically.
func Fingerprint(changes []Change) string {
	h := sha256.New()
	for _, c := range changes {
		writeLengthPrefixed(h, []byte(c.Path))
		h.Write([]byte{byte(c.Kind)})
	}
	return hex.EncodeToString(h.Sum(nil))
}

// EmptyFingerprint is the fingerprint of an empty change set: the value
// status reports for a tree that matches its manifests exactly.
func EmptyFingerprint() string {
	return Fingerprint(nil)
}

func writeLengthPrefixed(h interface{ Write([]byte) (int, error) }, b []byte) {
	var lenBuf [8]byte
	binary.BigEndian.PutUint64(lenBuf[:], uint64(len(b)))
	h.Write(lenBuf[:])
	h.Write(b)
}
