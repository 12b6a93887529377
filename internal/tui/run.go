package tui

import (
	"context"
	"errors"
	"fmt"
	"os"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/Veraticus/cashsearch/internal/backend"
)

// Run starts the interactive search UI and blocks until the user quits or ctx
// is canceled.
func Run(ctx context.Context, client backend.Client, opts ...Option) error {
	if client == nil {
		return fmt.Errorf("backend client is required")
	}

	// Set up terminal cleanup on any exit
	cleanupTerminal := func() {
		// Ignore errors as this is best-effort cleanup
		_, _ = os.Stdout.Write([]byte("\033[?1049l")) // Exit alternate screen
		_, _ = os.Stdout.Write([]byte("\033[?25h"))   // Show cursor
		_, _ = os.Stdout.Write([]byte("\033[m"))      // Reset colors
	}
	defer cleanupTerminal()

	m := New(client, opts...)
	if m.recorder != nil {
		defer m.recorder.Close()
	}

	p := tea.NewProgram(m, tea.WithAltScreen(), tea.WithContext(ctx))
	if _, err := p.Run(); err != nil {
		if errors.Is(err, tea.ErrProgramKilled) && ctx.Err() != nil {
			return nil
		}
		return fmt.Errorf("TUI error: %w", err)
	}
	return nil
}
