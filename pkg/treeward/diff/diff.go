// Package diff compares one directory's manifest against its live listing
// and produces the list of changes between them, under a chosen checksum
// policy that controls how eagerly the hasher is invoked.
package diff

import (
	"fmt"
	"path/filepath"

	"github.com/jamesainslie/treeward/pkg/treeward/dirlist"
	"github.com/jamesainslie/treeward/pkg/treeward/hashfile"
	"github.com/jamesainslie/treeward/pkg/treeward/manifest"
)

// Policy controls when Diff invokes the hasher to resolve a metadata
// mismatch into a confirmed content change.
type Policy int

const (
	// Never trusts metadata alone: any mismatch is reported as
	// PossiblyModified and the hasher is never invoked.
	Never Policy = iota
	// WhenPossiblyModified invokes the hasher only for files whose
	// metadata mismatches, and reports Modified iff the digest disagrees.
	// Metadata drift with an unchanged digest produces no change.
	WhenPossiblyModified
	// Always invokes the hasher for every File present on both sides,
	// regardless of metadata, reporting Modified iff the digest disagrees.
	Always
)

func (p Policy) String() string {
	switch p {
	case Never:
		return "never"
	case WhenPossiblyModified:
		return "when_possibly_modified"
	case Always:
		return "always"
	default:
		return "unknown"
	}
}

// ParsePolicy parses the textual form of a Policy, as accepted by the
// config file's policy setting.
func ParsePolicy(s string) (Policy, error) {
	switch s {
	case "never":
		return Never, nil
	case "when_possibly_modified":
		return WhenPossiblyModified, nil
	case "always":
		return Always, nil
	default:
		return Never, fmt.Errorf("unknown checksum policy %q (want never, when_possibly_modified, or always)", s)
	}
}

// Kind is a closed enumeration of the ways a child can differ between a
// manifest and the live filesystem.
type Kind int

const (
	Added Kind = iota
	Removed
	PossiblyModified
	Modified
)

func (k Kind) String() string {
	switch k {
	case Added:
		return "Added"
	case Removed:
		return "Removed"
	case PossiblyModified:
		return "PossiblyModified"
	case Modified:
		return "Modified"
	default:
		return "Unknown"
	}
}

// Change is one child's observed difference. Name is the bare child name
// within the diffed directory; the tree walker prefixes it with the
// directory's path relative to its root.
type Change struct {
	Name string
	Kind Kind
}

// Dir diffs a single directory: manifestEntries is nil for an untracked
// directory (every live child is then Added); live is the listing produced
// by dirlist.List for the same directory. hashDir is the absolute path
// hashfile.Hash should read from; the caller's listing and manifest are
// keyed by child name only, so Dir needs the directory itself to resolve a
// name into a hashable path.
//
// Dir does not recurse and does not look at Dir-kind entries beyond
// reporting their presence/absence/kind-change; descending into
// subdirectories is the tree walker's job, because only it knows the
// full union of subdirectories across manifest and filesystem.
func Dir(manifestEntries map[string]manifest.Entry, live map[string]dirlist.Entry, hashDir string, policy Policy) ([]Change, error) {
	var changes []Change

	names := make(map[string]struct{}, len(manifestEntries)+len(live))
	for name := range manifestEntries {
		names[name] = struct{}{}
	}
	for name := range live {
		names[name] = struct{}{}
	}

	for name := range names {
		mEntry, inManifest := manifestEntries[name]
		lEntry, inLive := live[name]

		switch {
		case !inManifest && inLive:
			changes = append(changes, Change{Name: name, Kind: Added})

		case inManifest && !inLive:
			changes = append(changes, Change{Name: name, Kind: Removed})

		case mEntry.Kind != lEntry.Kind:
			changes = append(changes,
				Change{Name: name, Kind: Removed},
				Change{Name: name, Kind: Added},
			)

		case mEntry.Kind == manifest.Dir:
			// No change emitted for the directory itself; the walker descends.

		case mEntry.Kind == manifest.Symlink:
			if mEntry.SymlinkTarget != lEntry.SymlinkTarget {
				changes = append(changes, Change{Name: name, Kind: PossiblyModified})
			}

		case mEntry.Kind == manifest.File:
			fileChange, err := diffFile(name, mEntry, lEntry, hashDir, policy)
			if err != nil {
				return nil, err
			}
			if fileChange != nil {
				changes = append(changes, *fileChange)
			}
		}
	}

	return changes, nil
}

func diffFile(name string, m manifest.Entry, l dirlist.Entry, hashDir string, policy Policy) (*Change, error) {
	metadataMatches := m.Size == l.Size && m.MtimeNanos == l.MtimeNanos

	switch policy {
	case Never:
		if !metadataMatches {
			return &Change{Name: name, Kind: PossiblyModified}, nil
		}
		return nil, nil

	case WhenPossiblyModified:
		if metadataMatches {
			return nil, nil
		}
		result, err := hashfile.Hash(joinPath(hashDir, name))
		if err != nil {
			return nil, err
		}
		if result.SHA256 != m.Digest {
			return &Change{Name: name, Kind: Modified}, nil
		}
		return nil, nil

	case Always:
		result, err := hashfile.Hash(joinPath(hashDir, name))
		if err != nil {
			return nil, err
		}
		if result.SHA256 != m.Digest {
			return &Change{Name: name, Kind: Modified}, nil
		}
		return nil, nil

	default:
		return nil, nil
	}
}

func joinPath(dir, name string) string {
	return filepath.Join(dir, name)
}
