package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/Veraticus/cashsearch/internal/cli"
	"github.com/Veraticus/cashsearch/internal/common"
)

func fuzzyCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "fuzzy <query>",
		Short: "Find records whose fields are similar to the query",
		Long: `Find records whose fields are similar to the query, scored by trigram
similarity. Matches below the threshold are dropped.`,
		Args: cobra.MinimumNArgs(1),
		RunE: a.runFuzzy,
	}

	cmd.Flags().Float64("threshold", 0, "minimum similarity in (0,1] (default from config)")

	return cmd
}

func (a *app) runFuzzy(cmd *cobra.Command, args []string) error {
	text := strings.TrimSpace(strings.Join(args, " "))
	if text == "" {
		return common.NewUserError("fuzzy query is empty", common.ErrEmptyQuery)
	}

	threshold, _ := cmd.Flags().GetFloat64("threshold")
	if threshold == 0 {
		threshold = a.cfg.Search.FuzzyThreshold
	}
	if threshold < 0 || threshold > 1 {
		return common.NewUserError("threshold must be between 0 and 1", common.ErrInvalidInput)
	}

	client, release, err := a.newClient(nil)
	if err != nil {
		return err
	}
	defer release()

	results, err := client.FuzzySearch(cmd.Context(), text, threshold)
	if err != nil {
		return fmt.Errorf("fuzzy search failed: %w", err)
	}

	return cli.NewPrinter(cmd.OutOrStdout()).FuzzyResults(text, results)
}
