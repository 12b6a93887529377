package main

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/Veraticus/cashsearch/internal/backend"
	"github.com/Veraticus/cashsearch/internal/cli"
	"github.com/Veraticus/cashsearch/internal/common"
	"github.com/Veraticus/cashsearch/internal/model"
)

func searchCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "search <query>",
		Short: "Run one search and print a page of results",
		Long: `Run one search and print a page of ranked results.

With --fuzzy the trigram fuzzy search runs alongside the full-text search and
its matches are printed below the page.`,
		Args: cobra.MinimumNArgs(1),
		RunE: a.runSearch,
	}

	cmd.Flags().Int("page", 0, "zero-based page index")
	cmd.Flags().Int("size", 0, "results per page (default from config)")
	cmd.Flags().Bool("no-payments", false, "exclude payments")
	cmd.Flags().Bool("no-deposits", false, "exclude deposits")
	cmd.Flags().Bool("no-loans", false, "exclude loans")
	cmd.Flags().Bool("fuzzy", false, "also run a fuzzy search")

	return cmd
}

func (a *app) runSearch(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	text := strings.TrimSpace(strings.Join(args, " "))
	if text == "" {
		return common.NewUserError("search query is empty", common.ErrEmptyQuery)
	}

	page, _ := cmd.Flags().GetInt("page")
	size, _ := cmd.Flags().GetInt("size")
	noPayments, _ := cmd.Flags().GetBool("no-payments")
	noDeposits, _ := cmd.Flags().GetBool("no-deposits")
	noLoans, _ := cmd.Flags().GetBool("no-loans")
	withFuzzy, _ := cmd.Flags().GetBool("fuzzy")

	if page < 0 {
		return common.NewUserError("page must not be negative", common.ErrInvalidInput)
	}
	if size <= 0 {
		size = a.cfg.Search.PageSize
	}

	q := model.NewQuery(text).WithPage(page)
	q.Size = size
	q.Scope = model.Scope{Payments: !noPayments, Deposits: !noDeposits, Loans: !noLoans}
	if q.Scope.None() {
		return common.NewUserError("at least one of payments, deposits or loans must be included", common.ErrInvalidInput)
	}

	client, release, err := a.newClient(nil)
	if err != nil {
		return err
	}
	defer release()

	resp, fuzzy, err := searchAll(ctx, client, q, withFuzzy, a.cfg.Search.FuzzyThreshold)
	if err != nil {
		return err
	}

	out := cli.NewPrinter(cmd.OutOrStdout())
	if err := out.SearchResults(text, resp); err != nil {
		return err
	}
	if withFuzzy {
		if err := out.Line(""); err != nil {
			return err
		}
		return out.FuzzyResults(text, fuzzy)
	}
	return nil
}

// searchAll runs the search and, when requested, the fuzzy search concurrently.
func searchAll(ctx context.Context, client backend.Client, q model.Query, withFuzzy bool, threshold float64) (model.SearchResponse, []model.SearchResult, error) {
	var (
		resp  model.SearchResponse
		fuzzy []model.SearchResult
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		resp, err = client.Search(gctx, q.Request())
		if err != nil {
			return fmt.Errorf("search failed: %w", err)
		}
		return nil
	})
	if withFuzzy {
		g.Go(func() error {
			var err error
			fuzzy, err = client.FuzzySearch(gctx, q.Text, threshold)
			if err != nil {
				return fmt.Errorf("fuzzy search failed: %w", err)
			}
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return model.SearchResponse{}, nil, err
	}

	slog.Debug("Search complete",
		"query", q.Text,
		"page", q.Page,
		"total", resp.TotalElements,
		"fuzzy", len(fuzzy))
	return resp, fuzzy, nil
}
