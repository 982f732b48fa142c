// Package json provides machine-readable JSON output
package json

import (
	"encoding/json"
	"io"

	"github.com/arthur-debert/jobtx/pkg/errors"
	"github.com/arthur-debert/jobtx/pkg/types"
)

// Renderer provides JSON output for machine consumption
type Renderer struct {
	encoder *json.Encoder
}

// New creates a new JSON renderer
func New(output io.Writer) *Renderer {
	encoder := json.NewEncoder(output)
	encoder.SetIndent("", "  ")
	return &Renderer{encoder: encoder}
}

type runDocument struct {
	*types.RunResult
	Succeeded bool `json:"succeeded"`
}

// RenderRun renders the run result as a single JSON document
func (r *Renderer) RenderRun(result *types.RunResult) error {
	return r.encoder.Encode(runDocument{RunResult: result, Succeeded: result.Succeeded()})
}

type planEntry struct {
	Name     string `json:"name"`
	Included bool   `json:"included"`
}

// RenderPlan renders tasks as an array of name/included pairs
func (r *Renderer) RenderPlan(tasks []types.Task) error {
	entries := make([]planEntry, len(tasks))
	for i, t := range tasks {
		entries[i] = planEntry{Name: t.Name, Included: t.Included}
	}
	return r.encoder.Encode(map[string]interface{}{"tasks": entries})
}

// RenderError renders an error as JSON, including its code when it has one
func (r *Renderer) RenderError(err error) error {
	errorObj := map[string]interface{}{
		"error": err.Error(),
		"code":  errors.GetErrorCode(err),
	}
	if details := errors.GetErrorDetails(err); len(details) > 0 {
		errorObj["details"] = details
	}
	return r.encoder.Encode(errorObj)
}

// RenderMessage renders a simple message as JSON
func (r *Renderer) RenderMessage(msg string) error {
	return r.encoder.Encode(map[string]string{"message": msg})
}
