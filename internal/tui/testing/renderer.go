// Package testing provides test utilities for TUI components.
package testing

import (
	tea "github.com/charmbracelet/bubbletea"
)

// maxDrainSteps bounds Drain so a self-rescheduling command cannot hang a test.
const maxDrainSteps = 200

// TestRenderer captures the output of a Bubble Tea component without requiring a real terminal.
type TestRenderer struct {
	// Output contains the last rendered view
	Output string

	// Messages contains all messages sent to the component
	Messages []tea.Msg

	// UpdateCount tracks how many times Update was called
	UpdateCount int
}

// NewTestRenderer creates a new test renderer.
func NewTestRenderer() *TestRenderer {
	return &TestRenderer{
		Messages: make([]tea.Msg, 0),
	}
}

// Render renders a component and captures its output.
func (r *TestRenderer) Render(model tea.Model) string {
	r.Output = model.View()
	return r.Output
}

// Update sends a message to the component and captures the result.
func (r *TestRenderer) Update(model tea.Model, msg tea.Msg) (tea.Model, tea.Cmd) {
	r.Messages = append(r.Messages, msg)
	r.UpdateCount++

	newModel, cmd := model.Update(msg)
	r.Output = newModel.View()
	return newModel, cmd
}

// Send updates model with msg and then drains the resulting commands.
func (r *TestRenderer) Send(model tea.Model, msg tea.Msg) tea.Model {
	model, cmd := r.Update(model, msg)
	return r.Drain(model, cmd)
}

// Drain runs cmd and every command that follows from it, feeding each
// resulting message back into model, until nothing is left. Batches are
// expanded in order. Commands must not block; tests disable timers first.
func (r *TestRenderer) Drain(model tea.Model, cmd tea.Cmd) tea.Model {
	queue := []tea.Cmd{cmd}
	for steps := 0; len(queue) > 0 && steps < maxDrainSteps; steps++ {
		next := queue[0]
		queue = queue[1:]
		if next == nil {
			continue
		}

		switch msg := next().(type) {
		case nil:
		case tea.BatchMsg:
			queue = append(queue, msg...)
		case tea.QuitMsg:
			r.Messages = append(r.Messages, msg)
		default:
			var follow tea.Cmd
			model, follow = r.Update(model, msg)
			queue = append(queue, follow)
		}
	}
	return model
}

// StripANSI removes ANSI escape codes from the output for content-only testing.
func (r *TestRenderer) StripANSI() string {
	return StripANSI(r.Output)
}
