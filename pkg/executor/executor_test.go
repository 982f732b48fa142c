package executor_test

import (
	"context"
	stderrors "errors"
	"sync"
	"testing"

	"github.com/arthur-debert/jobtx/pkg/errors"
	"github.com/arthur-debert/jobtx/pkg/executor"
	"github.com/arthur-debert/jobtx/pkg/filesystem"
	"github.com/arthur-debert/jobtx/pkg/testutil"
	"github.com/arthur-debert/jobtx/pkg/types"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// journal records the order in which job bodies were invoked.
type journal struct {
	mu      sync.Mutex
	entries []string
}

func (j *journal) add(s string) {
	j.mu.Lock()
	defer j.mu.Unlock()
	j.entries = append(j.entries, s)
}

func (j *journal) list() []string {
	j.mu.Lock()
	defer j.mu.Unlock()
	return append([]string(nil), j.entries...)
}

func quietLogger() *zerolog.Logger {
	l := zerolog.Nop()
	return &l
}

func newExecutor(fsys types.FS, opts ...func(*executor.Options)) *executor.Executor {
	o := executor.Options{FS: fsys, Logger: quietLogger()}
	for _, fn := range opts {
		fn(&o)
	}
	return executor.New(o)
}

func declare(paths ...string) types.DeclareFunc {
	return func(context.Context) ([]string, error) { return paths, nil }
}

func writes(fsys types.FS, path, content string, j *journal, name string) types.ActionFunc {
	return func(context.Context) error {
		j.add("do " + name)
		return fsys.WriteFile(path, []byte(content), 0644)
	}
}

func fails(err error, j *journal, name string) types.ActionFunc {
	return func(context.Context) error {
		j.add("do " + name)
		return err
	}
}

func compensates(j *journal, name string) types.ActionFunc {
	return func(context.Context) error {
		j.add("undo " + name)
		return nil
	}
}

func TestRunAllSucceed(t *testing.T) {
	fsys := filesystem.NewMemory()
	require.NoError(t, fsys.MkdirAll("/work", 0755))
	j := &journal{}

	jobs := []types.Job{
		{Name: "a", DeclareChanges: declare("/work/a"), Action: writes(fsys, "/work/a", "A", j, "a")},
		{Name: "b", DeclareChanges: declare("/work/b"), Action: writes(fsys, "/work/b", "B", j, "b")},
		{Name: "c"},
	}

	result, err := newExecutor(fsys).Run(context.Background(), jobs)
	require.NoError(t, err)
	require.NotNil(t, result)

	assert.Equal(t, []string{"do a", "do b"}, j.list())
	assert.True(t, result.Succeeded())
	assert.NotEmpty(t, result.RunID)
	assert.Equal(t, 3, result.Count(types.TaskCompleted))
	assert.Equal(t, []string{"/work/a"}, result.Task("a").Changes)
	testutil.AssertFileContent(t, fsys, "/work/a", "A")
	testutil.AssertFileContent(t, fsys, "/work/b", "B")
}

func TestRunNothingToDoTouchesNoFiles(t *testing.T) {
	m := &testutil.MockFS{}
	j := &journal{}
	never := func(context.Context) (bool, error) { return false, nil }

	jobs := []types.Job{
		{Name: "a", Condition: never, DeclareChanges: declare("/work/a"), Action: fails(stderrors.New("x"), j, "a")},
		{Name: "b", Condition: never, DeclareChanges: declare("/work/b"), Action: fails(stderrors.New("x"), j, "b")},
	}

	result, err := newExecutor(m).Run(context.Background(), jobs)
	require.Error(t, err)
	assert.True(t, errors.IsCleanExit(err))
	assert.Equal(t, 0, errors.ExitCode(err))
	assert.Empty(t, j.list())
	assert.Equal(t, 2, result.Count(types.TaskSkipped))

	// No expectations were set: any FS call would have failed the test.
	m.AssertExpectations(t)
	assert.Empty(t, m.Calls)
}

func TestRunCreatedFileIsDeletedOnRollback(t *testing.T) {
	// A creates F; B fails; F must be gone afterwards.
	fsys := filesystem.NewMemory()
	require.NoError(t, fsys.MkdirAll("/work", 0755))
	j := &journal{}
	boom := stderrors.New("b exploded")

	jobs := []types.Job{
		{
			Name:           "A",
			DeclareChanges: declare("/work/F"),
			Action:         writes(fsys, "/work/F", "made by A", j, "A"),
			Compensate:     compensates(j, "A"),
		},
		{Name: "B", Action: fails(boom, j, "B")},
	}

	result, err := newExecutor(fsys).Run(context.Background(), jobs)
	require.Error(t, err)
	assert.True(t, stderrors.Is(err, boom))
	assert.True(t, errors.IsErrorCode(err, errors.ErrActionFailed))

	assert.Equal(t, []string{"do A", "do B", "undo A"}, j.list())
	testutil.AssertNotExists(t, fsys, "/work/F")
	assert.Equal(t, "B", result.Failed)
	assert.Equal(t, []string{"A"}, result.RolledBack)
	assert.Equal(t, types.TaskRolledBack, result.Task("A").Status)
	assert.Equal(t, types.TaskFailed, result.Task("B").Status)
	assert.Equal(t, "b exploded", result.Task("B").Error)
}

func TestRunRestoresPreexistingContent(t *testing.T) {
	fsys := filesystem.NewMemory()
	original := "{\n  \"version\": \"1.0.0\"\n}\n"
	testutil.WriteFiles(t, fsys, map[string]string{"/work/package.json": original})
	j := &journal{}

	jobs := []types.Job{
		{
			Name:           "bump",
			DeclareChanges: declare("/work/package.json"),
			Action:         writes(fsys, "/work/package.json", "{\"version\":\"2.0.0\"}", j, "bump"),
		},
		{
			Name:   "publish",
			Action: fails(stderrors.New("publish failed"), j, "publish"),
		},
	}

	_, err := newExecutor(fsys).Run(context.Background(), jobs)
	require.Error(t, err)
	testutil.AssertFileContent(t, fsys, "/work/package.json", original)
}

func TestRunRollsBackInReverseCompletionOrder(t *testing.T) {
	const n = 5
	for k := 1; k <= n; k++ {
		fsys := filesystem.NewMemory()
		require.NoError(t, fsys.MkdirAll("/work", 0755))
		j := &journal{}

		var jobs []types.Job
		for i := 1; i <= n; i++ {
			name := string(rune('0' + i))
			job := types.Job{Name: name, Compensate: compensates(j, name)}
			if i == k {
				job.Action = fails(stderrors.New("task "+name), j, name)
			} else {
				job.Action = func(context.Context) error { j.add("do " + name); return nil }
			}
			jobs = append(jobs, job)
		}

		_, err := newExecutor(fsys).Run(context.Background(), jobs)
		require.Error(t, err)

		var expected []string
		for i := 1; i <= k; i++ {
			expected = append(expected, "do "+string(rune('0'+i)))
		}
		for i := k - 1; i >= 1; i-- {
			expected = append(expected, "undo "+string(rune('0'+i)))
		}
		assert.Equal(t, expected, j.list(), "failing task %d", k)
	}
}

func TestRunLeavesFailingTaskEffects(t *testing.T) {
	fsys := filesystem.NewMemory()
	testutil.WriteFiles(t, fsys, map[string]string{"/work/half": "before"})
	j := &journal{}

	jobs := []types.Job{
		{
			Name:           "partial",
			DeclareChanges: declare("/work/half", "/work/new"),
			Action: func(context.Context) error {
				j.add("do partial")
				_ = fsys.WriteFile("/work/half", []byte("half written"), 0644)
				_ = fsys.WriteFile("/work/new", []byte("new"), 0644)
				return stderrors.New("interrupted")
			},
			Compensate: compensates(j, "partial"),
		},
	}

	result, err := newExecutor(fsys).Run(context.Background(), jobs)
	require.Error(t, err)

	assert.Equal(t, []string{"do partial"}, j.list())
	assert.Empty(t, result.RolledBack)
	testutil.AssertFileContent(t, fsys, "/work/half", "half written")
	testutil.AssertFileContent(t, fsys, "/work/new", "new")
}

func TestRunRestoreFailedOption(t *testing.T) {
	fsys := filesystem.NewMemory()
	testutil.WriteFiles(t, fsys, map[string]string{"/work/half": "before"})
	j := &journal{}

	jobs := []types.Job{
		{
			Name:           "partial",
			DeclareChanges: declare("/work/half", "/work/new"),
			Action: func(context.Context) error {
				_ = fsys.WriteFile("/work/half", []byte("half written"), 0644)
				_ = fsys.WriteFile("/work/new", []byte("new"), 0644)
				return stderrors.New("interrupted")
			},
			Compensate: compensates(j, "partial"),
		},
	}

	_, err := newExecutor(fsys, func(o *executor.Options) { o.RestoreFailed = true }).
		Run(context.Background(), jobs)
	require.Error(t, err)

	// Its own compensate is not called: the action never succeeded.
	assert.Empty(t, j.list())
	testutil.AssertFileContent(t, fsys, "/work/half", "before")
	testutil.AssertNotExists(t, fsys, "/work/new")
}

func TestRunRestoreFailedErrorStillUnwindsCompletedTasks(t *testing.T) {
	mem := filesystem.NewMemory()
	require.NoError(t, mem.MkdirAll("/w", 0755))
	rec := testutil.NewRecordingFS(mem)
	removeErr := stderrors.New("is a directory")
	rec.Fail("remove", "/w/b", removeErr)
	trigger := stderrors.New("b failed")
	j := &journal{}

	jobs := []types.Job{
		{Name: "a", DeclareChanges: declare("/w/a"), Action: writes(rec, "/w/a", "a", j, "a"), Compensate: compensates(j, "a")},
		{
			Name:           "b",
			DeclareChanges: declare("/w/b"),
			Action: func(context.Context) error {
				j.add("do b")
				if err := rec.MkdirAll("/w/b", 0755); err != nil {
					return err
				}
				return trigger
			},
		},
	}

	result, err := newExecutor(rec, func(o *executor.Options) {
		o.RestoreFailed = true
		o.Policy = executor.RollbackAbort
	}).Run(context.Background(), jobs)
	require.Error(t, err)

	assert.True(t, errors.IsErrorCode(err, errors.ErrRollbackFailed))
	assert.True(t, stderrors.Is(err, removeErr))
	assert.True(t, stderrors.Is(err, trigger), "original failure must stay in the chain")
	assert.Equal(t, []string{"do a", "do b", "undo a"}, j.list())
	assert.Equal(t, []string{"a"}, result.RolledBack)
	assert.Equal(t, types.TaskRolledBack, result.Task("a").Status)
	testutil.AssertNotExists(t, mem, "/w/a")
}

func TestRunDirectoryDeclarationFailsWithoutMutation(t *testing.T) {
	mem := filesystem.NewMemory()
	require.NoError(t, mem.MkdirAll("/work/dir", 0755))
	rec := testutil.NewRecordingFS(mem)
	j := &journal{}

	jobs := []types.Job{
		{Name: "first", Action: func(context.Context) error { j.add("do first"); return nil }, Compensate: compensates(j, "first")},
		{Name: "dir", DeclareChanges: declare("/work/dir"), Action: fails(nil, j, "dir")},
		{Name: "later", Action: fails(nil, j, "later")},
	}

	result, err := newExecutor(rec).Run(context.Background(), jobs)
	require.Error(t, err)
	assert.True(t, errors.IsErrorCode(err, errors.ErrUnsupportedStashKind))

	// The directory task never ran; the prior task was still rolled back.
	assert.Equal(t, []string{"do first", "undo first"}, j.list())
	assert.Empty(t, rec.Mutations())
	assert.Equal(t, types.TaskFailed, result.Task("dir").Status)
	assert.Equal(t, types.TaskPending, result.Task("later").Status)
}

func TestRunRestoresInDeclaredOrder(t *testing.T) {
	mem := filesystem.NewMemory()
	testutil.WriteFiles(t, mem, map[string]string{"/work/b": "b"})
	rec := testutil.NewRecordingFS(mem)

	jobs := []types.Job{
		{
			Name:           "multi",
			DeclareChanges: declare("/work/c", "/work/b", "/work/a"),
			Action: func(context.Context) error {
				for _, p := range []string{"/work/a", "/work/b", "/work/c"} {
					if err := rec.WriteFile(p, []byte("x"), 0644); err != nil {
						return err
					}
				}
				return nil
			},
		},
		{Name: "boom", Action: func(context.Context) error { return stderrors.New("boom") }},
	}

	ex := newExecutor(rec)
	rec.Reset()
	_, err := ex.Run(context.Background(), jobs)
	require.Error(t, err)

	muts := rec.Mutations()
	require.GreaterOrEqual(t, len(muts), 3)
	assert.Equal(t, []string{
		"remove /work/c",
		"mkdir /work",
		"write /work/b",
		"remove /work/a",
	}, muts[3:])
	testutil.AssertFileContent(t, mem, "/work/b", "b")
	testutil.AssertNotExists(t, mem, "/work/a")
	testutil.AssertNotExists(t, mem, "/work/c")
}

func TestRunCompensateBeforeRestore(t *testing.T) {
	fsys := filesystem.NewMemory()
	require.NoError(t, fsys.MkdirAll("/work", 0755))
	var sawFile bool

	jobs := []types.Job{
		{
			Name:           "a",
			DeclareChanges: declare("/work/a"),
			Action:         func(context.Context) error { return fsys.WriteFile("/work/a", []byte("A"), 0644) },
			Compensate: func(context.Context) error {
				_, err := fsys.Stat("/work/a")
				sawFile = err == nil
				return nil
			},
		},
		{Name: "b", Action: func(context.Context) error { return stderrors.New("b") }},
	}

	_, err := newExecutor(fsys).Run(context.Background(), jobs)
	require.Error(t, err)
	assert.True(t, sawFile, "compensate should run before restores")
	testutil.AssertNotExists(t, fsys, "/work/a")
}

func TestRunActionAttemptedOnce(t *testing.T) {
	fsys := filesystem.NewMemory()
	calls := map[string]int{}
	var mu sync.Mutex
	count := func(name string, err error) types.ActionFunc {
		return func(context.Context) error {
			mu.Lock()
			calls[name]++
			mu.Unlock()
			return err
		}
	}

	jobs := []types.Job{
		{Name: "a", Action: count("a", nil), Compensate: count("a-undo", nil)},
		{Name: "b", Action: count("b", stderrors.New("b"))},
	}
	_, err := newExecutor(fsys).Run(context.Background(), jobs)
	require.Error(t, err)
	assert.Equal(t, map[string]int{"a": 1, "b": 1, "a-undo": 1}, calls)
}

func TestRunRollbackPolicies(t *testing.T) {
	undoErr := stderrors.New("cannot undo b")
	trigger := stderrors.New("d failed")

	build := func(j *journal) []types.Job {
		return []types.Job{
			{Name: "a", Action: func(context.Context) error { return nil }, Compensate: compensates(j, "a")},
			{Name: "b", Action: func(context.Context) error { return nil }, Compensate: func(context.Context) error {
				j.add("undo b")
				return undoErr
			}},
			{Name: "c", Action: func(context.Context) error { return nil }, Compensate: compensates(j, "c")},
			{Name: "d", Action: func(context.Context) error { return trigger }},
		}
	}

	tests := []struct {
		name       string
		policy     executor.RollbackPolicy
		journal    []string
		rolledBack []string
		statusA    types.TaskStatus
	}{
		{
			name:       "abort stops at first failure",
			policy:     executor.RollbackAbort,
			journal:    []string{"undo c", "undo b"},
			rolledBack: []string{"c"},
			statusA:    types.TaskCompleted,
		},
		{
			name:       "continue attempts every entry",
			policy:     executor.RollbackContinue,
			journal:    []string{"undo c", "undo b", "undo a"},
			rolledBack: []string{"c", "a"},
			statusA:    types.TaskRolledBack,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			j := &journal{}
			result, err := newExecutor(filesystem.NewMemory(), func(o *executor.Options) { o.Policy = tt.policy }).
				Run(context.Background(), build(j))
			require.Error(t, err)

			assert.True(t, errors.IsErrorCode(err, errors.ErrRollbackFailed))
			assert.True(t, stderrors.Is(err, undoErr))
			assert.True(t, stderrors.Is(err, trigger), "original failure must stay in the chain")
			assert.Equal(t, tt.journal, j.list())
			assert.Equal(t, tt.rolledBack, result.RolledBack)
			assert.Equal(t, types.TaskRollbackFailed, result.Task("b").Status)
			assert.Equal(t, tt.statusA, result.Task("a").Status)
		})
	}
}

func TestRunResolvesRelativePathsAgainstRoot(t *testing.T) {
	fsys := filesystem.NewMemory()
	require.NoError(t, fsys.MkdirAll("/project", 0755))

	jobs := []types.Job{
		{
			Name:           "gen",
			DeclareChanges: declare("out.txt"),
			Action:         func(context.Context) error { return fsys.WriteFile("/project/out.txt", []byte("x"), 0644) },
		},
		{Name: "fail", Action: func(context.Context) error { return stderrors.New("fail") }},
	}

	result, err := newExecutor(fsys, func(o *executor.Options) { o.Root = "/project" }).
		Run(context.Background(), jobs)
	require.Error(t, err)
	assert.Equal(t, []string{"/project/out.txt"}, result.Task("gen").Changes)
	testutil.AssertNotExists(t, fsys, "/project/out.txt")
}

func TestRunDeclareErrorRollsBackPrior(t *testing.T) {
	j := &journal{}
	declErr := stderrors.New("cannot list")

	jobs := []types.Job{
		{Name: "a", Action: func(context.Context) error { return nil }, Compensate: compensates(j, "a")},
		{
			Name:           "b",
			DeclareChanges: func(context.Context) ([]string, error) { return nil, declErr },
			Action:         fails(nil, j, "b"),
		},
	}

	_, err := newExecutor(filesystem.NewMemory()).Run(context.Background(), jobs)
	require.Error(t, err)
	assert.True(t, errors.IsErrorCode(err, errors.ErrDeclareFailed))
	assert.True(t, stderrors.Is(err, declErr))
	assert.Equal(t, []string{"undo a"}, j.list())
}

func TestRunConditionErrorAbortsBeforeAnyAction(t *testing.T) {
	j := &journal{}
	jobs := []types.Job{
		{Name: "a", Action: fails(nil, j, "a")},
		{Name: "b", Condition: func(context.Context) (bool, error) { return false, stderrors.New("probe") }},
	}

	_, err := newExecutor(&testutil.MockFS{}).Run(context.Background(), jobs)
	require.Error(t, err)
	assert.True(t, errors.IsErrorCode(err, errors.ErrConditionFailed))
	assert.Empty(t, j.list())
}

func TestRunCancelledActionStillRollsBack(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	j := &journal{}
	var compensateCtxErr error

	jobs := []types.Job{
		{
			Name:   "a",
			Action: func(context.Context) error { return nil },
			Compensate: func(c context.Context) error {
				compensateCtxErr = c.Err()
				j.add("undo a")
				return nil
			},
		},
		{
			Name: "b",
			Action: func(c context.Context) error {
				cancel()
				return c.Err()
			},
		},
	}

	_, err := newExecutor(filesystem.NewMemory()).Run(ctx, jobs)
	require.Error(t, err)
	assert.True(t, stderrors.Is(err, context.Canceled))
	assert.Equal(t, []string{"undo a"}, j.list())
	assert.NoError(t, compensateCtxErr)
}

func TestPlan(t *testing.T) {
	jobs := []types.Job{
		{Name: "a", Condition: func(context.Context) (bool, error) { return false, nil }},
		{Name: "b"},
	}

	tasks, err := newExecutor(&testutil.MockFS{}).Plan(context.Background(), jobs)
	require.NoError(t, err)
	require.Len(t, tasks, 2)
	assert.False(t, tasks[0].Included)
	assert.True(t, tasks[1].Included)
}

func TestParsePolicy(t *testing.T) {
	tests := []struct {
		in      string
		want    executor.RollbackPolicy
		wantErr bool
	}{
		{"", executor.RollbackAbort, false},
		{"abort", executor.RollbackAbort, false},
		{"Continue", executor.RollbackContinue, false},
		{"best-effort", executor.RollbackContinue, false},
		{"sometimes", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := executor.ParsePolicy(tt.in)
			if tt.wantErr {
				assert.True(t, errors.IsErrorCode(err, errors.ErrInvalidInput))
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}
