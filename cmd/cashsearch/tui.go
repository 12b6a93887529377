package main

import (
	"fmt"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/Veraticus/cashsearch/internal/model"
	"github.com/Veraticus/cashsearch/internal/search"
	"github.com/Veraticus/cashsearch/internal/suggest"
	"github.com/Veraticus/cashsearch/internal/tui"
	"github.com/Veraticus/cashsearch/internal/tui/themes"
)

func tuiCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "tui",
		Short: "Start the interactive search screen (default)",
		Long: `Start the interactive search screen.

Keys:
  type         get suggestions after a short pause
  up/down      highlight a suggestion
  tab          search for the highlighted (or first) suggestion
  enter        search for the input, or the highlighted suggestion
  pgup/pgdn    previous or next page of results
  ctrl+p/d/o   include or exclude payments, deposits, loans
  esc          quit`,
		RunE: a.runTUI,
	}

	addTUIFlags(cmd)
	return cmd
}

func addTUIFlags(cmd *cobra.Command) {
	cmd.Flags().String("theme", "default", fmt.Sprintf("color theme %v", themes.Names()))
	cmd.Flags().Bool("record", false, "record every frame to a temp directory for debugging")
	cmd.Flags().Bool("no-animations", false, "disable spinners and the blinking cursor")
}

func (a *app) runTUI(cmd *cobra.Command, _ []string) error {
	ctx := cmd.Context()

	themeName, _ := cmd.Flags().GetString("theme")
	record, _ := cmd.Flags().GetBool("record")
	noAnimations, _ := cmd.Flags().GetBool("no-animations")

	client, release, err := a.newClient(cmd.ErrOrStderr())
	if err != nil {
		return err
	}
	defer release()

	opts := []tui.Option{
		tui.WithTheme(themes.GetTheme(themeName)),
		tui.WithAnimations(!noAnimations),
		tui.WithSuggest(suggest.Config{
			Debounce:          a.cfg.Suggest.Debounce,
			Timeout:           a.cfg.Backend.Timeout,
			MinLength:         a.cfg.Suggest.MinLength,
			AutocompleteLimit: a.cfg.Suggest.AutocompleteLimit,
			SpellingLimit:     a.cfg.Suggest.SpellingLimit,
		}),
		tui.WithSearch(search.Config{
			Scope:    model.DefaultScope(),
			PageSize: a.cfg.Search.PageSize,
			Timeout:  a.cfg.Backend.Timeout,
		}),
	}

	store, err := a.openHistory(ctx)
	if err != nil {
		// History is a convenience; searching works without it.
		slog.Warn("Search history unavailable", "error", err)
	}
	if store != nil {
		defer func() { _ = store.Close() }()
		opts = append(opts, tui.WithHistory(store, a.cfg.History.Limit))
	}

	if record {
		rec := tui.NewRecorder(true)
		slog.Info("Recording TUI session", "dir", rec.Dir())
		opts = append(opts, tui.WithRecorder(rec))
	}

	return tui.Run(ctx, client, opts...)
}
