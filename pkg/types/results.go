package types

import "time"

// TaskStatus describes what happened to a task during a run.
type TaskStatus string

const (
	// TaskSkipped means the job's condition evaluated false.
	TaskSkipped TaskStatus = "skipped"
	// TaskPending means the run ended before the task was reached.
	TaskPending TaskStatus = "pending"
	// TaskCompleted means the action returned successfully and was kept.
	TaskCompleted TaskStatus = "completed"
	// TaskFailed means the task triggered the rollback.
	TaskFailed TaskStatus = "failed"
	// TaskRolledBack means the task was compensated and its files restored.
	TaskRolledBack TaskStatus = "rolled_back"
	// TaskRollbackFailed means compensating or restoring the task failed.
	TaskRollbackFailed TaskStatus = "rollback_failed"
)

// TaskResult holds the outcome of a single task.
type TaskResult struct {
	Name     string        `json:"name"`
	Status   TaskStatus    `json:"status"`
	Changes  []string      `json:"changes,omitempty"`
	Duration time.Duration `json:"duration"`
	Error    string        `json:"error,omitempty"`
}

// RunResult is the record of one executor run.
type RunResult struct {
	RunID      string        `json:"runId"`
	Started    time.Time     `json:"started"`
	Duration   time.Duration `json:"duration"`
	Tasks      []TaskResult  `json:"tasks"`
	Failed     string        `json:"failed,omitempty"`
	RolledBack []string      `json:"rolledBack,omitempty"`
}

// Succeeded reports whether every included task completed.
func (r *RunResult) Succeeded() bool {
	return r.Failed == ""
}

// Count returns how many tasks ended with the given status.
func (r *RunResult) Count(status TaskStatus) int {
	n := 0
	for _, t := range r.Tasks {
		if t.Status == status {
			n++
		}
	}
	return n
}

// Task returns the result for the named task, or nil.
func (r *RunResult) Task(name string) *TaskResult {
	for i := range r.Tasks {
		if r.Tasks[i].Name == name {
			return &r.Tasks[i]
		}
	}
	return nil
}
