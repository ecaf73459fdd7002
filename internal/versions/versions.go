package versions

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"time"
)

// CurrentName is the symlink under the deployment root that identifies the
// live version.
const CurrentName = "current"

// ErrTargetNotFound is returned by SetCurrent when the target version
// directory does not exist.
var ErrTargetNotFound = errors.New("target version not found")

// Version is one deployed unit under the root, named after the commit that
// produced it.
type Version struct {
	Label     string
	CreatedAt time.Time
}

// Store owns a deployment root: its version directories and the current
// symlink. The root is assumed to have a single writer; concurrent stores
// against the same root are not supported.
type Store struct {
	Root string
}

// Path returns the directory a version with the given label occupies.
func (s Store) Path(label string) string {
	return filepath.Join(s.Root, label)
}

// List returns version directories under the root ordered newest-first by
// modification time. The current symlink is excluded. A non-existent root
// yields an empty list, not an error.
func (s Store) List() ([]Version, error) {
	entries, err := os.ReadDir(s.Root)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("read deployment root: %w", err)
	}

	var vs []Version
	for _, entry := range entries {
		if entry.Name() == CurrentName || !entry.IsDir() {
			continue
		}
		info, err := entry.Info()
		if err != nil {
			return nil, fmt.Errorf("stat version %s: %w", entry.Name(), err)
		}
		vs = append(vs, Version{Label: entry.Name(), CreatedAt: info.ModTime()})
	}

	sort.SliceStable(vs, func(i, j int) bool {
		return vs[i].CreatedAt.After(vs[j].CreatedAt)
	})
	return vs, nil
}

// Create ensures the version directory exists. Re-creating an existing label
// succeeds and returns the same path; redeploys overwrite in place.
func (s Store) Create(label string) (string, error) {
	dir := s.Path(label)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("create version dir: %w", err)
	}
	return dir, nil
}

// SetCurrent atomically repoints the current symlink at the given version.
// The new link is created under a temporary name and renamed over the old
// one, so there is no window where current is absent.
func (s Store) SetCurrent(label string) error {
	target := s.Path(label)
	if _, err := os.Stat(target); err != nil {
		if os.IsNotExist(err) {
			return fmt.Errorf("%w: %s", ErrTargetNotFound, label)
		}
		return fmt.Errorf("stat version %s: %w", label, err)
	}

	tmp := filepath.Join(s.Root, ".current.tmp")
	if err := os.Remove(tmp); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("remove stale link: %w", err)
	}
	if err := os.Symlink(target, tmp); err != nil {
		return fmt.Errorf("create link: %w", err)
	}
	if err := os.Rename(tmp, filepath.Join(s.Root, CurrentName)); err != nil {
		os.Remove(tmp)
		return fmt.Errorf("replace current link: %w", err)
	}
	return nil
}

// Current resolves the live version label. ok is false when no deployment has
// happened yet (the link is absent).
func (s Store) Current() (label string, ok bool, err error) {
	dest, err := os.Readlink(filepath.Join(s.Root, CurrentName))
	if err != nil {
		if os.IsNotExist(err) {
			return "", false, nil
		}
		return "", false, fmt.Errorf("read current link: %w", err)
	}
	return filepath.Base(dest), true, nil
}

// Delete removes a version directory and everything in it. Partial removal on
// failure is possible and not rolled back.
func (s Store) Delete(label string) error {
	if err := os.RemoveAll(s.Path(label)); err != nil {
		return fmt.Errorf("delete version %s: %w", label, err)
	}
	return nil
}
