// Package hashfile streams a file through SHA-256 while bracketing the read
// with mtime samples, so that a write racing the read is detected rather
// than silently producing a digest for content that no longer exists.
package hashfile

import (
	"crypto/sha256"
	"encoding/hex"
	"io"
	"os"

	"github.com/jamesainslie/treeward/pkg/treeward/errs"
)

// ReadChunkSize is the buffer size used while streaming a file into the
// SHA-256 state. It has no effect on the resulting digest.
const ReadChunkSize = 64 * 1024

// Result is the outcome of hashing one file.
type Result struct {
	// SHA256 is the lowercase hex-encoded digest of the file's content.
	SHA256 string
	// MtimeNanos is the file's modification time, as observed after the
	// read completed, expressed as nanoseconds since the Unix epoch.
	MtimeNanos uint64
	// Size is the file size in bytes, as observed after the read completed.
	Size int64
}

// Hash streams path through SHA-256, sampling mtime before opening and
// again after the read completes. If the two samples disagree, the file
// was modified concurrently and Hash fails with errs.ConcurrentModification
// rather than returning a digest for content that no longer matches what's
// on disk. There is no retry: the caller decides whether to try again.
func Hash(path string) (Result, error) {
	before, err := os.Stat(path)
	if err != nil {
		return Result{}, wrapStatErr(path, err)
	}
	mtimeBefore := before.ModTime().UnixNano()

	f, err := os.Open(path)
	if err != nil {
		return Result{}, wrapStatErr(path, err)
	}
	defer f.Close()

	h := sha256.New()
	buf := make([]byte, ReadChunkSize)
	for {
		n, readErr := f.Read(buf)
		if n > 0 {
			h.Write(buf[:n])
		}
		if readErr == io.EOF {
			break
		}
		if readErr != nil {
			return Result{}, errs.New(errs.Io, path, readErr)
		}
	}

	after, err := os.Stat(path)
	if err != nil {
		return Result{}, wrapStatErr(path, err)
	}

	if mtimeBefore != after.ModTime().UnixNano() {
		return Result{}, errs.New(errs.ConcurrentModification, path, nil)
	}

	return Result{
		SHA256:     hex.EncodeToString(h.Sum(nil)),
		MtimeNanos: uint64(after.ModTime().UnixNano()),
		Size:       after.Size(),
	}, nil
}

func wrapStatErr(path string, err error) error {
	if os.IsPermission(err) {
		return errs.New(errs.PermissionDenied, path, err)
	}
	return errs.New(errs.Io, path, err)
}
