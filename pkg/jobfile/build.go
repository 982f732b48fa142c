package jobfile

import (
	"context"
	stderrors "errors"
	"io/fs"
	"sort"

	"github.com/arthur-debert/jobtx/pkg/errors"
	"github.com/arthur-debert/jobtx/pkg/jsonfile"
	"github.com/arthur-debert/jobtx/pkg/logging"
	"github.com/arthur-debert/jobtx/pkg/project"
	"github.com/arthur-debert/jobtx/pkg/shell"
	"github.com/arthur-debert/jobtx/pkg/types"
)

// Env is what built jobs act on.
type Env struct {
	FS    types.FS
	Shell *shell.Runner
	Root  project.Root
}

// Build validates f and converts each spec into a job, in file order.
func Build(f *File, env Env) ([]types.Job, error) {
	if err := f.Validate(env.Root); err != nil {
		return nil, err
	}
	if env.FS == nil {
		return nil, errors.New(errors.ErrInvalidInput, "jobfile environment has no filesystem")
	}
	if env.Shell == nil {
		for _, spec := range f.Jobs {
			if spec.If != "" || spec.Run != "" || spec.Undo != "" {
				return nil, errors.Newf(errors.ErrInvalidInput, "job %s runs commands but no shell was configured", spec.Name)
			}
		}
	}

	jobs := make([]types.Job, 0, len(f.Jobs))
	for _, spec := range f.Jobs {
		jobs = append(jobs, spec.job(env))
	}
	return jobs, nil
}

// Paths returns the absolute paths the spec declares, the JSON edit's file
// included, without duplicates.
func (s Spec) Paths(root project.Root) []string {
	var paths []string
	seen := make(map[string]bool)
	add := func(p string) {
		abs := root.Path(p)
		if !seen[abs] {
			seen[abs] = true
			paths = append(paths, abs)
		}
	}
	for _, c := range s.Changes {
		add(c)
	}
	if s.JSON != nil && s.JSON.File != "" {
		add(s.JSON.File)
	}
	return paths
}

func (s Spec) job(env Env) types.Job {
	job := types.Job{Name: s.Name}

	if s.If != "" {
		cond := s.If
		job.Condition = func(ctx context.Context) (bool, error) {
			return env.Shell.Check(ctx, cond)
		}
	}

	if paths := s.Paths(env.Root); len(paths) > 0 {
		job.DeclareChanges = func(context.Context) ([]string, error) {
			return append([]string(nil), paths...), nil
		}
	}

	edit, run := s.JSON, s.Run
	job.Action = func(ctx context.Context) error {
		if edit != nil {
			if err := applyJSON(env, edit); err != nil {
				return err
			}
		}
		if run != "" {
			_, err := env.Shell.Run(ctx, run)
			return err
		}
		return nil
	}

	if s.Undo != "" {
		undo := s.Undo
		job.Compensate = func(ctx context.Context) error {
			_, err := env.Shell.Run(ctx, undo)
			return err
		}
	}

	return job
}

// applyJSON sets each key of edit in its document, creating the document
// when it does not exist. Keys are applied in sorted order.
func applyJSON(env Env, edit *JSONEdit) error {
	path := env.Root.Path(edit.File)
	logger := logging.GetLogger("jobfile")

	doc, err := jsonfile.ReadDocument(env.FS, path)
	if err != nil {
		if !stderrors.Is(err, fs.ErrNotExist) {
			return err
		}
		doc = jsonfile.NewDocument()
	}

	keys := make([]string, 0, len(edit.Set))
	for k := range edit.Set {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		if err := doc.Set(k, edit.Set[k]); err != nil {
			return errors.Wrapf(err, errors.ErrActionFailed, "cannot edit %s", edit.File).WithDetail("path", path)
		}
	}

	logger.Debug().Str("path", path).Strs("keys", keys).Msg("Editing JSON document")
	return jsonfile.WriteDocument(env.FS, path, doc)
}
