package logging

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"syscall"
	"time"
)

// RotationConfig controls when and how a RotatingWriter rolls its log file.
type RotationConfig struct {
	// MaxSize is the byte threshold that triggers rotation. Zero uses
	// DefaultRotationConfig's value.
	MaxSize int64
	// MaxAge is how many days a rotated file is kept. Zero disables
	// age-based cleanup.
	MaxAge int
	// MaxBackups caps how many rotated files are kept, newest first. Zero
	// keeps all of them (subject to MaxAge).
	MaxBackups int
	// Daily forces a rotation the first time a write crosses midnight.
	Daily bool
}

// DefaultRotationConfig returns a 10MB / 30-day / 5-backup daily policy.
func DefaultRotationConfig() RotationConfig {
	return RotationConfig{MaxSize: 10 * 1024 * 1024, MaxAge: 30, MaxBackups: 5, Daily: true}
}

// RotatingWriter is an io.WriteCloser that rotates its backing file by size
// or by day, and flock(2)s the file so multiple treeward processes logging
// to the same path don't interleave writes.
type RotatingWriter struct {
	path       string
	cfg        RotationConfig
	mu         sync.Mutex
	file       *os.File
	size       int64
	lastRotate time.Time
}

// NewRotatingWriter opens (creating if necessary) the log file at path,
// applying cfg's defaults for any zero fields.
func NewRotatingWriter(path string, cfg RotationConfig) (*RotatingWriter, error) {
	if cfg.MaxSize == 0 {
		cfg.MaxSize = DefaultRotationConfig().MaxSize
	}

	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("creating log directory: %w", err)
	}

	w := &RotatingWriter{path: path, cfg: cfg, lastRotate: time.Now()}
	if err := w.openFile(); err != nil {
		return nil, err
	}
	w.cleanup()
	return w, nil
}

// Write appends p, rotating first if the write would cross MaxSize or a
// day boundary, and locking the file for the duration of the write.
func (w *RotatingWriter) Write(p []byte) (int, error) {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.shouldRotate(int64(len(p))) {
		if err := w.rotate(); err != nil {
			return 0, fmt.Errorf("rotating log file: %w", err)
		}
	}

	if err := w.lock(); err != nil {
		return 0, fmt.Errorf("acquiring log file lock: %w", err)
	}
	defer w.unlock()

	n, err := w.file.Write(p)
	if err != nil {
		return n, fmt.Errorf("writing log file: %w", err)
	}
	w.size += int64(n)
	return n, nil
}

// Close syncs and closes the underlying file.
func (w *RotatingWriter) Close() error {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.file == nil {
		return nil
	}
	if err := w.file.Sync(); err != nil {
		return fmt.Errorf("syncing log file: %w", err)
	}
	err := w.file.Close()
	w.file = nil
	return err
}

func (w *RotatingWriter) openFile() error {
	file, err := os.OpenFile(w.path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return fmt.Errorf("opening log file: %w", err)
	}
	info, err := file.Stat()
	if err != nil {
		_ = file.Close()
		return fmt.Errorf("stat log file: %w", err)
	}
	w.file = file
	w.size = info.Size()
	w.lastRotate = info.ModTime()
	return nil
}

func (w *RotatingWriter) shouldRotate(writeSize int64) bool {
	if w.size+writeSize > w.cfg.MaxSize {
		return true
	}
	if w.cfg.Daily {
		now := time.Now()
		if now.YearDay() != w.lastRotate.YearDay() || now.Year() != w.lastRotate.Year() {
			return true
		}
	}
	return false
}

func (w *RotatingWriter) rotate() error {
	if w.file != nil {
		if err := w.file.Close(); err != nil {
			return fmt.Errorf("closing current log file: %w", err)
		}
		w.file = nil
	}

	ext := filepath.Ext(w.path)
	base := strings.TrimSuffix(w.path, ext)
	rotatedPath := fmt.Sprintf("%s.%s%s", base, time.Now().Format("2006-01-02-150405"), ext)

	if _, err := os.Stat(w.path); err == nil {
		if err := os.Rename(w.path, rotatedPath); err != nil {
			return fmt.Errorf("renaming log file: %w", err)
		}
	}

	if err := w.openFile(); err != nil {
		return err
	}
	w.lastRotate = time.Now()
	w.cleanup()
	return nil
}

// cleanup prunes rotated files beyond MaxBackups or older than MaxAge.
// Failures here are swallowed: a cleanup error is not a logging failure.
func (w *RotatingWriter) cleanup() {
	dir := filepath.Dir(w.path)
	base := filepath.Base(w.path)
	ext := filepath.Ext(base)
	prefix := strings.TrimSuffix(base, ext)

	entries, err := os.ReadDir(dir)
	if err != nil {
		return
	}

	type rotatedFile struct {
		path    string
		modTime time.Time
	}
	var rotated []rotatedFile
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		name := entry.Name()
		if name == base || !strings.HasPrefix(name, prefix+".") || !strings.HasSuffix(name, ext) {
			continue
		}
		info, err := entry.Info()
		if err != nil {
			continue
		}
		rotated = append(rotated, rotatedFile{path: filepath.Join(dir, name), modTime: info.ModTime()})
	}

	sort.Slice(rotated, func(i, j int) bool { return rotated[i].modTime.After(rotated[j].modTime) })

	now := time.Now()
	maxAge := time.Duration(w.cfg.MaxAge) * 24 * time.Hour
	for i, f := range rotated {
		stale := w.cfg.MaxAge > 0 && now.Sub(f.modTime) > maxAge
		excess := w.cfg.MaxBackups > 0 && i >= w.cfg.MaxBackups
		if stale || excess {
			_ = os.Remove(f.path)
		}
	}
}

func (w *RotatingWriter) lock() error {
	return syscall.Flock(int(w.file.Fd()), syscall.LOCK_EX)
}

func (w *RotatingWriter) unlock() {
	_ = syscall.Flock(int(w.file.Fd()), syscall.LOCK_UN)
}
