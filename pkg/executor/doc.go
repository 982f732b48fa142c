// Package executor runs jobs as a single transaction.
//
// A run filters the jobs by their conditions, then executes the included
// tasks one at a time. Before a task's action runs, every path the task
// declares is stashed. Each task whose action succeeds is pushed onto an
// undo stack. When a stash or an action fails, the stack is unwound most
// recent first: the task's Compensate runs, then its stashed paths are
// restored in declared order. The triggering error is returned after
// unwinding.
//
// The failing task itself is not on the stack, so its partial effects are
// left in place unless Options.RestoreFailed is set.
package executor
