package main

import (
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"github.com/Veraticus/cashsearch/internal/backend"
	"github.com/Veraticus/cashsearch/internal/cli"
	"github.com/Veraticus/cashsearch/internal/common"
	"github.com/Veraticus/cashsearch/internal/suggest"
)

// maxPipelineSteps bounds the synchronous pipeline run: debounce,
// autocomplete and at most one spelling call.
const maxPipelineSteps = 8

func suggestCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "suggest <prefix>",
		Short: "Print autocomplete suggestions, or spelling corrections when there are none",
		Args:  cobra.MinimumNArgs(1),
		RunE:  a.runSuggest,
	}

	cmd.Flags().Int("limit", 0, "maximum autocomplete suggestions (default from config)")
	cmd.Flags().Int("spelling-limit", 0, "maximum spelling corrections (default from config)")

	return cmd
}

func (a *app) runSuggest(cmd *cobra.Command, args []string) error {
	input := strings.Join(args, " ")

	limit, _ := cmd.Flags().GetInt("limit")
	spellingLimit, _ := cmd.Flags().GetInt("spelling-limit")
	if limit <= 0 {
		limit = a.cfg.Suggest.AutocompleteLimit
	}
	if spellingLimit <= 0 {
		spellingLimit = a.cfg.Suggest.SpellingLimit
	}

	minLength := a.cfg.Suggest.MinLength
	if len([]rune(strings.TrimSpace(input))) < minLength {
		return common.NewUserError("type at least a few characters to get suggestions", common.ErrInvalidInput)
	}

	client, release, err := a.newClient(nil)
	if err != nil {
		return err
	}
	defer release()

	p := runPipeline(client, input, suggest.Config{
		Tick:              immediateTick,
		Timeout:           a.cfg.Backend.Timeout,
		MinLength:         minLength,
		AutocompleteLimit: limit,
		SpellingLimit:     spellingLimit,
	})

	return cli.NewPrinter(cmd.OutOrStdout()).Suggestions(input, p.Suggestions(), p.Spelling())
}

// immediateTick skips the debounce window; a one-shot lookup has no
// keystrokes to coalesce.
func immediateTick(_ time.Duration, fn func(time.Time) tea.Msg) tea.Cmd {
	return func() tea.Msg { return fn(time.Now()) }
}

// runPipeline feeds input through a suggestion pipeline and runs its commands
// inline until it settles.
func runPipeline(client backend.Suggester, input string, cfg suggest.Config) suggest.Pipeline {
	p, cmd := suggest.New(client, cfg).Edit(input)
	for i := 0; cmd != nil && i < maxPipelineSteps; i++ {
		p, cmd = p.Update(cmd())
	}
	return p.Close()
}
