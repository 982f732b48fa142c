// Package terminal provides rich terminal output with colors and styling
package terminal

import (
	"fmt"
	"io"

	"github.com/arthur-debert/jobtx/pkg/types"
	"github.com/arthur-debert/jobtx/pkg/ui/text"
	"github.com/pterm/pterm"
)

// Renderer provides rich terminal output using lipgloss styles and pterm
// lists
type Renderer struct {
	output io.Writer
}

// New creates a new terminal renderer
func New(output io.Writer) *Renderer {
	return &Renderer{output: output}
}

// RenderRun prints one styled line per task and a summary
func (r *Renderer) RenderRun(result *types.RunResult) error {
	for _, t := range result.Tasks {
		line := fmt.Sprintf("%s %s", StatusIcon(t.Status), StatusStyle(t.Status).Render(t.Name))
		if t.Error != "" {
			line += " " + Styles.Error.Render(t.Error)
		}
		if _, err := fmt.Fprintln(r.output, line); err != nil {
			return err
		}
	}

	summary := Styles.Success
	if !result.Succeeded() {
		summary = Styles.Error
	}
	_, err := fmt.Fprintln(r.output, "\n"+summary.Render(text.Summary(result)))
	return err
}

// RenderPlan prints the tasks as a bullet list, dimming skipped ones
func (r *Renderer) RenderPlan(tasks []types.Task) error {
	items := make([]pterm.BulletListItem, 0, len(tasks))
	for _, t := range tasks {
		item := pterm.BulletListItem{
			Text:        t.Name,
			Bullet:      "+",
			BulletStyle: pterm.NewStyle(pterm.FgGreen),
		}
		if !t.Included {
			item.Text = t.Name + " (skipped)"
			item.Bullet = "-"
			item.BulletStyle = pterm.NewStyle(pterm.FgGray)
			item.TextStyle = pterm.NewStyle(pterm.FgGray)
		}
		items = append(items, item)
	}

	out, err := pterm.DefaultBulletList.WithItems(items).Srender()
	if err != nil {
		return err
	}
	_, err = io.WriteString(r.output, out)
	return err
}

// RenderError renders an error with error styling
func (r *Renderer) RenderError(err error) error {
	_, werr := fmt.Fprintln(r.output, Styles.Error.Render("Error: "+err.Error()))
	return werr
}

// RenderMessage renders a simple message
func (r *Renderer) RenderMessage(msg string) error {
	_, err := fmt.Fprintln(r.output, Styles.Info.Render(msg))
	return err
}
