// Package text provides plain text output without any styling
package text

import (
	"fmt"
	"io"

	"github.com/arthur-debert/jobtx/pkg/types"
)

// Renderer provides plain text output without colors or styling
type Renderer struct {
	output io.Writer
}

// New creates a new text renderer
func New(output io.Writer) *Renderer {
	return &Renderer{output: output}
}

// RenderRun prints one line per task followed by a summary line
func (r *Renderer) RenderRun(result *types.RunResult) error {
	for _, t := range result.Tasks {
		line := fmt.Sprintf("%-15s %s", t.Status, t.Name)
		if t.Error != "" {
			line += ": " + t.Error
		}
		if _, err := fmt.Fprintln(r.output, line); err != nil {
			return err
		}
	}
	_, err := fmt.Fprintln(r.output, Summary(result))
	return err
}

// RenderPlan prints included tasks with "+" and skipped ones with "-"
func (r *Renderer) RenderPlan(tasks []types.Task) error {
	for _, t := range tasks {
		mark, suffix := "+", ""
		if !t.Included {
			mark, suffix = "-", " (skipped)"
		}
		if _, err := fmt.Fprintf(r.output, "%s %s%s\n", mark, t.Name, suffix); err != nil {
			return err
		}
	}
	return nil
}

// RenderError renders an error as plain text
func (r *Renderer) RenderError(err error) error {
	_, werr := fmt.Fprintf(r.output, "Error: %v\n", err)
	return werr
}

// RenderMessage renders a simple message
func (r *Renderer) RenderMessage(msg string) error {
	_, err := fmt.Fprintln(r.output, msg)
	return err
}

// Summary describes a run in one line.
func Summary(result *types.RunResult) string {
	completed := result.Count(types.TaskCompleted)
	skipped := result.Count(types.TaskSkipped)
	if result.Succeeded() {
		return fmt.Sprintf("%d completed, %d skipped", completed, skipped)
	}
	return fmt.Sprintf("failed at %q: %d rolled back, %d rollback failures, %d not reached",
		result.Failed,
		result.Count(types.TaskRolledBack),
		result.Count(types.TaskRollbackFailed),
		result.Count(types.TaskPending))
}
