package stash

import (
	"context"
	stderrors "errors"
	"io/fs"
	"path/filepath"

	"github.com/arthur-debert/jobtx/pkg/errors"
	"github.com/arthur-debert/jobtx/pkg/types"
	"golang.org/x/sync/errgroup"
)

// DefaultFileMode is used when restoring a file whose mode was not
// captured.
const DefaultFileMode fs.FileMode = 0644

// Entry is the captured pre-state of one path.
type Entry struct {
	Path    string
	Existed bool
	Data    []byte
	Mode    fs.FileMode
}

// Capture records the current state of path. It only reads.
func Capture(fsys types.FS, path string) (Entry, error) {
	info, err := fsys.Stat(path)
	if err != nil {
		if stderrors.Is(err, fs.ErrNotExist) {
			return Entry{Path: path}, nil
		}
		return Entry{}, errors.Wrapf(err, errors.ErrStashFailed, "cannot stat %s", path).
			WithDetail("path", path)
	}

	if info.IsDir() {
		return Entry{}, errors.Newf(errors.ErrUnsupportedStashKind,
			"declared change %s is a directory; declare individual file paths instead", path).
			WithDetail("path", path).
			WithDetail("kind", "directory")
	}
	if !info.Mode().IsRegular() {
		return Entry{}, errors.Newf(errors.ErrUnsupportedStashKind,
			"declared change %s is not a regular file (%s)", path, info.Mode().Type()).
			WithDetail("path", path).
			WithDetail("kind", info.Mode().Type().String())
	}

	data, err := fsys.ReadFile(path)
	if err != nil {
		return Entry{}, errors.Wrapf(err, errors.ErrStashFailed, "cannot read %s", path).
			WithDetail("path", path)
	}

	return Entry{
		Path:    path,
		Existed: true,
		Data:    data,
		Mode:    info.Mode().Perm(),
	}, nil
}

// CaptureAll captures every path concurrently, with at most limit reads in
// flight (limit < 1 means unbounded). Entries are returned in the order the
// paths were given. The first failure cancels the remaining captures.
func CaptureAll(ctx context.Context, fsys types.FS, paths []string, limit int) ([]Entry, error) {
	entries := make([]Entry, len(paths))
	if len(paths) == 0 {
		return entries, nil
	}

	g, gCtx := errgroup.WithContext(ctx)
	if limit > 0 {
		g.SetLimit(limit)
	}

	for i, path := range paths {
		i, path := i, path
		g.Go(func() error {
			if err := gCtx.Err(); err != nil {
				return err
			}
			entry, err := Capture(fsys, path)
			if err != nil {
				return err
			}
			entries[i] = entry
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return entries, nil
}

// Kind describes what Apply will do.
func (e Entry) Kind() string {
	if e.Existed {
		return "rewrite"
	}
	return "delete"
}

// Apply restores the captured state.
func (e Entry) Apply(fsys types.FS) error {
	if !e.Existed {
		err := fsys.Remove(e.Path)
		if err == nil || stderrors.Is(err, fs.ErrNotExist) {
			return nil
		}
		return errors.Wrapf(err, errors.ErrRestoreFailed, "cannot delete %s", e.Path).
			WithDetail("path", e.Path)
	}

	mode := e.Mode
	if mode == 0 {
		mode = DefaultFileMode
	}
	// The action may have removed the file's directory as well.
	if err := fsys.MkdirAll(filepath.Dir(e.Path), 0755); err != nil {
		return errors.Wrapf(err, errors.ErrRestoreFailed, "cannot recreate directory for %s", e.Path).
			WithDetail("path", e.Path)
	}
	if err := fsys.WriteFile(e.Path, e.Data, mode); err != nil {
		return errors.Wrapf(err, errors.ErrRestoreFailed, "cannot rewrite %s", e.Path).
			WithDetail("path", e.Path)
	}
	return nil
}

// Restore applies entries in the order given and stops at the first
// failure.
func Restore(fsys types.FS, entries []Entry) error {
	for _, e := range entries {
		if err := e.Apply(fsys); err != nil {
			return err
		}
	}
	return nil
}

// Paths returns the entry paths in order.
func Paths(entries []Entry) []string {
	paths := make([]string, len(entries))
	for i, e := range entries {
		paths[i] = e.Path
	}
	return paths
}
