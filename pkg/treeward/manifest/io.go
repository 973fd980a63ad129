package manifest

import (
	"os"
	"path/filepath"

	"github.com/google/uuid"
	"github.com/jamesainslie/treeward/pkg/treeward/errs"
)

// Path returns the manifest file path for dir.
func Path(dir string) string {
	return filepath.Join(dir, ReservedFilename)
}

// Load reads and decodes the manifest for dir. A missing manifest is
// reported as errs.NotInitialized rather than a bare os.ErrNotExist, so
// callers can distinguish "this directory was never tracked" from any
// other read failure.
func Load(dir string) (*Manifest, error) {
	path := Path(dir)
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, errs.New(errs.NotInitialized, dir, err)
		}
		if os.IsPermission(err) {
			return nil, errs.New(errs.PermissionDenied, path, err)
		}
		return nil, errs.New(errs.Io, path, err)
	}
	return Decode(path, data)
}

// Exists reports whether dir already carries a manifest.
func Exists(dir string) bool {
	_, err := os.Stat(Path(dir))
	return err == nil
}

// Save writes m for dir atomically: encode to a sibling temp file, flush
// it to stable storage, then rename over the manifest path. The temp file
// carries a random suffix (rather than a fixed ".tmp") so two treeward
// invocations racing against the same directory never collide on the same
// temp name.
//
// Save always writes; callers that want write-only-if-different semantics
// (the planner does) compare Encode(m) against the existing file's bytes
// themselves before calling Save.
func Save(dir string, m *Manifest) error {
	path := Path(dir)
	tmpPath := path + "." + uuid.NewString() + ".tmp"

	f, err := os.OpenFile(tmpPath, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o644)
	if err != nil {
		return errs.New(errs.Io, path, err)
	}

	if _, err := f.Write(Encode(m)); err != nil {
		f.Close()
		_ = os.Remove(tmpPath)
		return errs.New(errs.Io, path, err)
	}
	if err := f.Sync(); err != nil {
		f.Close()
		_ = os.Remove(tmpPath)
		return errs.New(errs.Io, path, err)
	}
	if err := f.Close(); err != nil {
		_ = os.Remove(tmpPath)
		return errs.New(errs.Io, path, err)
	}

	if err := os.Rename(tmpPath, path); err != nil {
		_ = os.Remove(tmpPath)
		return errs.New(errs.Io, path, err)
	}

	return nil
}
