// Package manifest implements the per-directory manifest format: a
// versioned, canonically-ordered text encoding of one directory's
// immediate children, byte-stable so "did anything change" can be answered
// by comparing bytes rather than re-walking the filesystem.
package manifest

import (
	"github.com/jamesainslie/treeward/pkg/treeward/dirlist"
)

// SupportedVersion is the only manifest format version this build
// understands. Any other value in a manifest's metadata block is rejected
// as CorruptedManifest; forward compatibility is handled by a coordinated
// version bump, not by lenient parsing.
const SupportedVersion = 1

// ReservedFilename is the well-known name of the manifest file at the top
// of every tracked directory. It is never listed as a child of itself.
const ReservedFilename = ".treeward"

// Kind re-exports dirlist.Kind so callers of this package don't need to
// import dirlist just to compare entry kinds.
type Kind = dirlist.Kind

const (
	File    = dirlist.File
	Dir     = dirlist.Dir
	Symlink = dirlist.Symlink
)

// Entry is the persisted description of one child. Exactly the fields
// relevant to Kind are meaningful: a File entry has Digest, MtimeNanos, and
// Size; a Dir entry has none; a Symlink entry has only SymlinkTarget. The
// codec enforces this: it's a decode error for a manifest to carry any
// other combination.
type Entry struct {
	Kind Kind

	// Digest is the hex-encoded SHA-256 of the file's content. Valid for
	// File entries only.
	Digest string
	// MtimeNanos is nanoseconds since the Unix epoch. Valid for File entries only.
	MtimeNanos uint64
	// Size is the file size in bytes. Valid for File entries only.
	Size int64

	// SymlinkTarget is the raw, unresolved target string. Valid for
	// Symlink entries only.
	SymlinkTarget string
}

// Manifest is a directory's full set of tracked children, plus the format
// version they were written under. The zero value is not useful; build one
// with New or Decode.
type Manifest struct {
	Version int
	Entries map[string]Entry
}

// New returns an empty manifest at the current supported version.
func New() *Manifest {
	return &Manifest{Version: SupportedVersion, Entries: make(map[string]Entry)}
}
