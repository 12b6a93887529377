package main

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/Veraticus/cashsearch/internal/cli"
	"github.com/Veraticus/cashsearch/internal/common"
	"github.com/Veraticus/cashsearch/internal/server"
)

func serveCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve a sample index over the search API for development",
		Long: `Generate sample payments, deposits and loans, index them in memory and serve
them over the same HTTP API the client talks to:

  POST /api/search
  GET  /api/search/autocomplete?prefix=&limit=
  GET  /api/search/spelling?term=&limit=
  GET  /api/search/fuzzy?query=&threshold=`,
		Args: cobra.NoArgs,
		RunE: a.runServe,
	}

	cmd.Flags().String("addr", ":8080", "listen address")
	cmd.Flags().Int("records", 2000, "number of sample records")
	cmd.Flags().Uint64("seed", 42, "random seed for the sample")
	cmd.Flags().Duration("cache-ttl", time.Minute, "how long suggestion responses are cached (0 disables)")

	return cmd
}

func (a *app) runServe(cmd *cobra.Command, _ []string) error {
	addr, _ := cmd.Flags().GetString("addr")
	records, _ := cmd.Flags().GetInt("records")
	seed, _ := cmd.Flags().GetUint64("seed")
	cacheTTL, _ := cmd.Flags().GetDuration("cache-ttl")

	idx, err := buildSampleIndex(records, seed, cmd.ErrOrStderr())
	if err != nil {
		return err
	}
	defer func() { _ = idx.Close() }()

	common.LogInfo("Serving sample index", common.Fields{
		"addr":    addr,
		"records": idx.Len(),
		"seed":    seed,
	})
	if _, err := fmt.Fprintln(cmd.OutOrStdout(), cli.FormatInfo(fmt.Sprintf("Listening on %s (%d records)", addr, idx.Len()))); err != nil {
		return err
	}

	return server.New(idx, server.WithSuggestionCache(cacheTTL)).ListenAndServe(cmd.Context(), addr)
}
