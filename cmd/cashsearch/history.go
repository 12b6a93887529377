package main

import (
	"fmt"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/Veraticus/cashsearch/internal/cli"
	"github.com/Veraticus/cashsearch/internal/common"
)

func historyCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "history",
		Short: "List or clear recent searches",
		Long: `List recent searches, newest first. Only query strings are stored;
search results are never kept between sessions.`,
		Args: cobra.NoArgs,
		RunE: a.runHistory,
	}

	cmd.Flags().Int("limit", 0, "number of searches to show (default from config)")
	cmd.Flags().Bool("clear", false, "delete all recorded searches")

	return cmd
}

func (a *app) runHistory(cmd *cobra.Command, _ []string) error {
	ctx := cmd.Context()

	limit, _ := cmd.Flags().GetInt("limit")
	clearAll, _ := cmd.Flags().GetBool("clear")
	if limit <= 0 {
		limit = a.cfg.History.Limit
	}

	store, err := a.openHistory(ctx)
	if err != nil {
		return err
	}
	if store == nil {
		return common.NewUserError("search history is disabled", common.ErrMissingConfig)
	}
	defer func() {
		if closeErr := store.Close(); closeErr != nil {
			slog.Error("failed to close storage", "error", closeErr)
		}
	}()

	out := cli.NewPrinter(cmd.OutOrStdout())

	if clearAll {
		n, err := store.ClearHistory(ctx)
		if err != nil {
			return fmt.Errorf("failed to clear history: %w", err)
		}
		return out.Line(cli.FormatSuccess(fmt.Sprintf("Cleared %d recent searches", n)))
	}

	entries, err := store.RecentQueries(ctx, limit)
	if err != nil {
		return fmt.Errorf("failed to read history: %w", err)
	}
	return out.History(entries)
}
