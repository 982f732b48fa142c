// Package ui renders run results and plans for the CLI in terminal (rich),
// text (plain) and JSON formats.
package ui

import (
	"io"
	"os"

	"github.com/arthur-debert/jobtx/pkg/errors"
	"github.com/arthur-debert/jobtx/pkg/types"
	"github.com/arthur-debert/jobtx/pkg/ui/json"
	"github.com/arthur-debert/jobtx/pkg/ui/terminal"
	"github.com/arthur-debert/jobtx/pkg/ui/text"
)

// Renderer is the common interface for all output renderers.
type Renderer interface {
	// RenderRun renders the outcome of an executor run
	RenderRun(result *types.RunResult) error

	// RenderPlan renders which tasks a run would include
	RenderPlan(tasks []types.Task) error

	// RenderError renders an error with appropriate formatting
	RenderError(err error) error

	// RenderMessage renders a simple message
	RenderMessage(msg string) error
}

// NewRenderer creates a new renderer based on the specified format.
// FormatAuto inspects output when it is a file and otherwise falls back to
// plain text.
func NewRenderer(format Format, output io.Writer) (Renderer, error) {
	switch format {
	case FormatAuto:
		if file, ok := output.(*os.File); ok {
			return NewRenderer(DetectFormat(file), output)
		}
		return NewRenderer(FormatText, output)
	case FormatTerminal:
		return terminal.New(output), nil
	case FormatText:
		return text.New(output), nil
	case FormatJSON:
		return json.New(output), nil
	default:
		return nil, errors.Newf(errors.ErrInvalidInput, "unknown format: %v", format)
	}
}
