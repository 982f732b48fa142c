package types

import (
	"io/fs"
)

// FS is the filesystem interface required for stashing and restoring
// declared paths. Jobs may use it too, so that tests can swap in an
// in-memory implementation.
type FS interface {
	// File operations
	Stat(name string) (fs.FileInfo, error)
	ReadFile(name string) ([]byte, error)
	WriteFile(name string, data []byte, perm fs.FileMode) error

	// Directory operations
	MkdirAll(path string, perm fs.FileMode) error

	// Remove deletes a single file. Removing an absent path returns an
	// error satisfying errors.Is(err, fs.ErrNotExist).
	Remove(name string) error
}
