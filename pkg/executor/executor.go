package executor

import (
	"context"
	stderrors "errors"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/arthur-debert/jobtx/pkg/errors"
	"github.com/arthur-debert/jobtx/pkg/filesystem"
	"github.com/arthur-debert/jobtx/pkg/filter"
	"github.com/arthur-debert/jobtx/pkg/logging"
	"github.com/arthur-debert/jobtx/pkg/stash"
	"github.com/arthur-debert/jobtx/pkg/types"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// RollbackPolicy decides what happens when a rollback step itself fails.
type RollbackPolicy string

const (
	// RollbackAbort stops unwinding at the first failing compensate or
	// restore; remaining undo entries are left unapplied.
	RollbackAbort RollbackPolicy = "abort"
	// RollbackContinue keeps unwinding and reports every failure.
	RollbackContinue RollbackPolicy = "continue"
)

// ParsePolicy parses a rollback policy name. The empty string selects
// RollbackAbort.
func ParsePolicy(s string) (RollbackPolicy, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", string(RollbackAbort):
		return RollbackAbort, nil
	case string(RollbackContinue), "best-effort":
		return RollbackContinue, nil
	default:
		return "", errors.Newf(errors.ErrInvalidInput, "unknown rollback policy: %s", s)
	}
}

// Options contains configuration for the executor
type Options struct {
	// FS is used to stash and restore declared paths. Defaults to the OS.
	FS types.FS
	// Logger defaults to the "executor" component logger when nil.
	Logger *zerolog.Logger
	// Root is joined to relative declared paths.
	Root string
	// MaxParallel bounds concurrent condition checks and stash reads.
	MaxParallel int
	// Policy applies when a compensate or restore fails.
	Policy RollbackPolicy
	// RestoreFailed also restores the failing task's own stash.
	RestoreFailed bool
}

// Executor runs job lists transactionally
type Executor struct {
	fs            types.FS
	logger        zerolog.Logger
	root          string
	maxParallel   int
	policy        RollbackPolicy
	restoreFailed bool
}

// undoEntry is pushed once a task's action has succeeded.
type undoEntry struct {
	index   int
	task    types.Task
	entries []stash.Entry
}

// New creates a new executor instance
func New(opts Options) *Executor {
	logger := logging.GetLogger("executor")
	if opts.Logger != nil {
		logger = *opts.Logger
	}

	fs := opts.FS
	if fs == nil {
		fs = filesystem.NewOS()
	}

	maxParallel := opts.MaxParallel
	if maxParallel < 1 {
		maxParallel = filter.DefaultMaxParallel
	}

	policy := opts.Policy
	if policy == "" {
		policy = RollbackAbort
	}

	return &Executor{
		fs:            fs,
		logger:        logger,
		root:          opts.Root,
		maxParallel:   maxParallel,
		policy:        policy,
		restoreFailed: opts.RestoreFailed,
	}
}

// Plan evaluates every condition and returns all jobs tagged with whether
// they would run. Nothing is stashed or executed.
func (e *Executor) Plan(ctx context.Context, jobs []types.Job) ([]types.Task, error) {
	return filter.Evaluate(ctx, jobs, filter.Options{MaxParallel: e.maxParallel, Logger: &e.logger})
}

// Run executes jobs in order. On failure every previously completed task
// is rolled back, most recent first, and the triggering error is
// returned. When no job is included Run returns the NOTHING_TO_DO signal
// without touching the filesystem. The returned result is never nil.
func (e *Executor) Run(ctx context.Context, jobs []types.Job) (*types.RunResult, error) {
	runID := uuid.NewString()
	logger := logging.WithFields(e.logger, map[string]interface{}{"run": runID})
	result := &types.RunResult{RunID: runID, Started: time.Now()}
	defer func() { result.Duration = time.Since(result.Started) }()

	tasks, err := filter.Evaluate(ctx, jobs, filter.Options{MaxParallel: e.maxParallel, Logger: &logger})
	if err != nil {
		return result, err
	}

	result.Tasks = make([]types.TaskResult, len(tasks))
	for i, t := range tasks {
		result.Tasks[i] = types.TaskResult{Name: t.Name, Status: types.TaskSkipped}
		if t.Included {
			result.Tasks[i].Status = types.TaskPending
		}
	}
	selected, err := filter.Select(tasks)
	if err != nil {
		logger.Info().Int("jobs", len(jobs)).Msg("Nothing to do")
		return result, err
	}

	var undo []undoEntry
	for i, task := range tasks {
		if !task.Included {
			continue
		}
		tr := &result.Tasks[i]
		start := time.Now()
		logger.Info().Str("task", task.Name).Msgf("Task: %s", task.Name)

		entries, err := e.stashTask(ctx, task)
		if err != nil {
			tr.Status = types.TaskFailed
			tr.Error = err.Error()
			tr.Duration = time.Since(start)
			result.Failed = task.Name
			return result, e.rollback(ctx, logger, result, undo, nil, err, err)
		}
		tr.Changes = stash.Paths(entries)

		if task.Action != nil {
			if actionErr := task.Action(ctx); actionErr != nil {
				tr.Status = types.TaskFailed
				tr.Error = actionErr.Error()
				tr.Duration = time.Since(start)
				result.Failed = task.Name
				cause := errors.Wrapf(actionErr, errors.ErrActionFailed, "task %q failed", task.Name).
					WithDetail("job", task.Name)
				failed := &undoEntry{index: i, task: task, entries: entries}
				return result, e.rollback(ctx, logger, result, undo, failed, actionErr, cause)
			}
		}

		tr.Status = types.TaskCompleted
		tr.Duration = time.Since(start)
		undo = append(undo, undoEntry{index: i, task: task, entries: entries})
		logger.Debug().
			Str("task", task.Name).
			Dur("duration", tr.Duration).
			Msg("Task completed")
	}

	logger.Info().Int("tasks", len(selected)).Msg("All tasks completed")
	return result, nil
}

// stashTask resolves the task's declared paths and captures them all
// before anything of the task runs.
func (e *Executor) stashTask(ctx context.Context, task types.Task) ([]stash.Entry, error) {
	if task.DeclareChanges == nil {
		return nil, nil
	}

	declared, err := task.DeclareChanges(ctx)
	if err != nil {
		return nil, errors.Wrapf(err, errors.ErrDeclareFailed, "declaring changes of %q failed", task.Name).
			WithDetail("job", task.Name)
	}

	paths := make([]string, len(declared))
	for i, p := range declared {
		if strings.TrimSpace(p) == "" {
			return nil, errors.Newf(errors.ErrDeclareFailed, "task %q declared an empty path", task.Name).
				WithDetail("job", task.Name)
		}
		paths[i] = e.resolve(p)
	}

	done := logging.LogOperationStart(e.logger.With().Str("task", task.Name).Logger(), "stash")
	defer done()
	return stash.CaptureAll(ctx, e.fs, paths, e.maxParallel)
}

func (e *Executor) resolve(path string) string {
	if e.root == "" || filepath.IsAbs(path) {
		return filepath.Clean(path)
	}
	return filepath.Join(e.root, path)
}

// rollback unwinds the undo stack and returns the error the run should
// report. trigger is the raw failure, logged once; cause is what the
// caller receives when unwinding succeeds.
func (e *Executor) rollback(
	ctx context.Context,
	logger zerolog.Logger,
	result *types.RunResult,
	undo []undoEntry,
	failed *undoEntry,
	trigger error,
	cause error,
) error {
	logger.Warn().Str("task", result.Failed).Msgf("Failed with %q", trigger.Error())

	// Compensations must run even when ctx was what failed the task.
	rctx := context.WithoutCancel(ctx)
	var rollbackErrs []error

	// The failing task's own restore is best-effort: its error is reported
	// but never stops completed tasks from being unwound.
	var restoreErr error
	if failed != nil && e.restoreFailed && len(failed.entries) > 0 {
		logger.Warn().Str("task", failed.task.Name).Msgf("Restoring: %s", failed.task.Name)
		if err := stash.Restore(e.fs, failed.entries); err != nil {
			restoreErr = fmt.Errorf("restore %q: %w", failed.task.Name, err)
			logger.Error().Err(err).Str("task", failed.task.Name).Msg("Restore of failed task failed")
		}
	}

	for i := len(undo) - 1; i >= 0; i-- {
		if len(rollbackErrs) > 0 && e.policy == RollbackAbort {
			break
		}
		u := undo[i]
		tr := &result.Tasks[u.index]
		logger.Warn().Str("task", u.task.Name).Msgf("Rolling back: %s", u.task.Name)

		if err := e.unwind(rctx, logger, u); err != nil {
			tr.Status = types.TaskRollbackFailed
			tr.Error = err.Error()
			rollbackErrs = append(rollbackErrs, err)
			logger.Error().Err(err).Str("task", u.task.Name).Msg("Rollback step failed")
			continue
		}
		tr.Status = types.TaskRolledBack
		result.RolledBack = append(result.RolledBack, u.task.Name)
	}

	if restoreErr != nil {
		rollbackErrs = append([]error{restoreErr}, rollbackErrs...)
	}
	if len(rollbackErrs) == 0 {
		return cause
	}
	return errors.Wrapf(stderrors.Join(append(rollbackErrs, cause)...), errors.ErrRollbackFailed,
		"rollback after %q failed", result.Failed).
		WithDetail("job", result.Failed).
		WithDetail("failures", len(rollbackErrs))
}

// unwind runs the task's compensate, then its restores in declared order.
func (e *Executor) unwind(ctx context.Context, logger zerolog.Logger, u undoEntry) error {
	if u.task.HasCompensate() {
		if err := u.task.Compensate(ctx); err != nil {
			return fmt.Errorf("compensate %q: %w", u.task.Name, err)
		}
	}
	for _, en := range u.entries {
		logger.Debug().Str("task", u.task.Name).Str("path", en.Path).Str("kind", en.Kind()).Msg("Restoring path")
	}
	return stash.Restore(e.fs, u.entries)
}
