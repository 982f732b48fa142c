package types

import "context"

// ConditionFunc decides whether a job takes part in a run. It should not
// have side effects: conditions of a run are evaluated concurrently.
type ConditionFunc func(ctx context.Context) (bool, error)

// DeclareFunc returns the file paths a job is about to mutate. Paths must
// name files, never directories.
type DeclareFunc func(ctx context.Context) ([]string, error)

// ActionFunc performs a job's effect, or its compensation.
type ActionFunc func(ctx context.Context) error

// Job is a caller-supplied unit of work. Every function field is optional;
// a nil field means the job does not have that member.
type Job struct {
	Name string

	// Condition gates inclusion. Nil means always included.
	Condition ConditionFunc

	// DeclareChanges lists the paths to stash before Action runs.
	DeclareChanges DeclareFunc

	// Action is the job's effect.
	Action ActionFunc

	// Compensate is the caller-defined inverse of Action, run during
	// rollback before the stashed files are restored.
	Compensate ActionFunc
}

// HasCondition reports whether the job carries an inclusion condition.
func (j Job) HasCondition() bool { return j.Condition != nil }

// HasCompensate reports whether the job carries a compensating action.
func (j Job) HasCompensate() bool { return j.Compensate != nil }

// Task is a job annotated with the outcome of predicate evaluation.
type Task struct {
	Job
	Included bool
}
