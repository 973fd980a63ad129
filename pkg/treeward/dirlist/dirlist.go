// Package dirlist enumerates the immediate children of a single directory,
// without descending into subdirectories and without following symlinks.
package dirlist

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/jamesainslie/treeward/pkg/treeward/errs"
)

// Kind is a closed enumeration of the filesystem entry kinds treeward tracks.
type Kind int

const (
	// File is a regular file.
	File Kind = iota
	// Dir is a directory.
	Dir
	// Symlink is a symbolic link, stored by its raw, unresolved target.
	Symlink
)

func (k Kind) String() string {
	switch k {
	case File:
		return "File"
	case Dir:
		return "Dir"
	case Symlink:
		return "Symlink"
	default:
		return "Unknown"
	}
}

// Entry is the live description of one child, as observed without following
// symlinks. Files carry only metadata (mtime, size); no digest is computed
// here; that's hashfile's job, invoked on demand by the differ/planner.
type Entry struct {
	Kind Kind

	// MtimeNanos is valid for File and Dir.
	MtimeNanos uint64
	// Size is valid for File only.
	Size int64
	// SymlinkTarget is valid for Symlink only: the raw target string as
	// recorded on disk, never resolved.
	SymlinkTarget string
}

// List returns the immediate children of dir, keyed by child name, excluding
// the reserved manifest file itself. It does not recurse and does not follow
// symlinks: every child is classified by its own (possibly symlink) stat,
// never the stat of whatever a symlink points at.
//
// Sockets, fifos, devices, and any other non-regular, non-directory,
// non-symlink file type are rejected with errs.InvalidChild. They are
// never silently skipped or folded into File.
func List(dir, reservedName string) (map[string]Entry, error) {
	dirents, err := os.ReadDir(dir)
	if err != nil {
		return nil, wrapErr(dir, err)
	}

	entries := make(map[string]Entry, len(dirents))
	for _, d := range dirents {
		name := d.Name()
		if name == reservedName {
			continue
		}
		if strings.ContainsRune(name, filepath.Separator) {
			return nil, errs.New(errs.InvalidChild, filepath.Join(dir, name), nil)
		}

		childPath := filepath.Join(dir, name)
		info, statErr := os.Lstat(childPath)
		if statErr != nil {
			return nil, wrapErr(childPath, statErr)
		}

		entry, classifyErr := classify(childPath, info)
		if classifyErr != nil {
			return nil, classifyErr
		}
		entries[name] = entry
	}

	return entries, nil
}

func classify(path string, info os.FileInfo) (Entry, error) {
	mode := info.Mode()

	switch {
	case mode&os.ModeSymlink != 0:
		target, err := os.Readlink(path)
		if err != nil {
			return Entry{}, wrapErr(path, err)
		}
		return Entry{Kind: Symlink, SymlinkTarget: target}, nil

	case info.IsDir():
		return Entry{Kind: Dir, MtimeNanos: uint64(info.ModTime().UnixNano())}, nil

	case mode.IsRegular():
		return Entry{
			Kind:       File,
			MtimeNanos: uint64(info.ModTime().UnixNano()),
			Size:       info.Size(),
		}, nil

	default:
		return Entry{}, errs.New(errs.InvalidChild, path, nil)
	}
}

func wrapErr(path string, err error) error {
	if os.IsPermission(err) {
		return errs.New(errs.PermissionDenied, path, err)
	}
	return errs.New(errs.Io, path, err)
}
