// Package project locates the root directory jobs run against.
//
// The root is an explicit value threaded through the runner and the jobs;
// nothing in jobtx changes the process working directory.
package project

import (
	"context"
	"os"
	"path/filepath"
	"strings"

	"github.com/arthur-debert/jobtx/pkg/errors"
	"github.com/arthur-debert/jobtx/pkg/types"
)

// DefaultMarkers are the files whose presence marks a project root.
var DefaultMarkers = []string{".jobtx.toml", "jobs.toml", "jobs.yaml", "jobs.yml", "package.json"}

// DefaultRootEnv are the environment variables that override discovery,
// checked in order.
var DefaultRootEnv = []string{"JOBTX_ROOT", "npm_config_local_prefix"}

// Options contains configuration for root resolution
type Options struct {
	Markers []string
	RootEnv []string
	// Getenv defaults to os.Getenv.
	Getenv func(string) string
}

// Root is a resolved project directory.
type Root struct {
	Dir string
	// Source tells how the root was found: an env var name or "marker:<file>".
	Source string
}

// Path joins a project-relative path to the root. Absolute paths are
// returned cleaned and unchanged.
func (r Root) Path(rel string) string {
	if filepath.IsAbs(rel) {
		return filepath.Clean(rel)
	}
	return filepath.Join(r.Dir, rel)
}

// Rel returns path relative to the root, or path itself when it lies
// outside the root.
func (r Root) Rel(path string) string {
	rel, err := filepath.Rel(r.Dir, path)
	if err != nil || rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
		return path
	}
	return rel
}

// Contains reports whether path lies within the root.
func (r Root) Contains(path string) bool {
	rel, err := filepath.Rel(r.Dir, r.Path(path))
	if err != nil {
		return false
	}
	return rel != ".." && !strings.HasPrefix(rel, ".."+string(filepath.Separator))
}

// FindRoot walks up from start until it finds a directory containing one
// of markers. Reaching the filesystem root without a match fails with
// NOT_IN_PROJECT.
func FindRoot(fsys types.FS, start string, markers []string) (Root, error) {
	if len(markers) == 0 {
		markers = DefaultMarkers
	}
	abs, err := filepath.Abs(start)
	if err != nil {
		return Root{}, errors.Wrapf(err, errors.ErrInvalidInput, "cannot resolve %s", start)
	}

	cur := abs
	for {
		for _, m := range markers {
			if exists(fsys, filepath.Join(cur, m)) {
				return Root{Dir: cur, Source: "marker:" + m}, nil
			}
		}
		parent := filepath.Dir(cur)
		if parent == cur {
			break
		}
		cur = parent
	}

	return Root{}, errors.Newf(errors.ErrNotInProject, "path %q is not part of any project", abs).
		WithDetail("path", abs).
		WithDetail("markers", markers)
}

// Resolve returns the root named by the first non-empty override env var,
// or else the result of FindRoot from start.
func Resolve(fsys types.FS, start string, opts Options) (Root, error) {
	getenv := opts.Getenv
	if getenv == nil {
		getenv = os.Getenv
	}
	envs := opts.RootEnv
	if envs == nil {
		envs = DefaultRootEnv
	}

	for _, name := range envs {
		dir := getenv(name)
		if dir == "" {
			continue
		}
		abs, err := filepath.Abs(dir)
		if err != nil {
			return Root{}, errors.Wrapf(err, errors.ErrInvalidInput, "cannot resolve %s=%s", name, dir)
		}
		info, err := fsys.Stat(abs)
		if err != nil || !info.IsDir() {
			return Root{}, errors.Newf(errors.ErrNotInProject, "%s=%s is not a directory", name, dir).
				WithDetail("env", name)
		}
		return Root{Dir: abs, Source: name}, nil
	}

	return FindRoot(fsys, start, opts.Markers)
}

// Within resolves the project root from start and runs fn with it. The
// process working directory is never changed.
func Within[T any](ctx context.Context, fsys types.FS, start string, opts Options,
	fn func(ctx context.Context, root Root) (T, error)) (T, error) {
	var zero T
	root, err := Resolve(fsys, start, opts)
	if err != nil {
		return zero, err
	}
	return fn(ctx, root)
}

func exists(fsys types.FS, path string) bool {
	_, err := fsys.Stat(path)
	return err == nil
}
