package main

import (
	"context"
	"fmt"
	"io"

	"github.com/Veraticus/cashsearch/internal/backend"
	"github.com/Veraticus/cashsearch/internal/cli"
	"github.com/Veraticus/cashsearch/internal/common"
	"github.com/Veraticus/cashsearch/internal/index"
	"github.com/Veraticus/cashsearch/internal/storage"
)

// demoOptions selects the in-process sample index.
type demoOptions struct {
	records int
	seed    uint64
	enabled bool
}

// newClient returns the configured backend and a function releasing it.
func (a *app) newClient(progress io.Writer) (backend.Client, func(), error) {
	if a.demo.enabled {
		idx, err := buildSampleIndex(a.demo.records, a.demo.seed, progress)
		if err != nil {
			return nil, nil, err
		}
		return idx, func() { _ = idx.Close() }, nil
	}

	client, err := backend.NewHTTPClient(backend.Config{
		BaseURL:   a.cfg.Backend.BaseURL,
		Timeout:   a.cfg.Backend.Timeout,
		RateLimit: a.cfg.Backend.RateLimit,
		Burst:     a.cfg.Backend.Burst,
	})
	if err != nil {
		return nil, nil, err
	}
	return client, func() {}, nil
}

// buildSampleIndex indexes count generated records, drawing a progress bar on
// w when it is not nil.
func buildSampleIndex(count int, seed uint64, w io.Writer) (*index.Index, error) {
	if count <= 0 {
		return nil, fmt.Errorf("%w: record count must be positive", common.ErrInvalidConfig)
	}

	var progress index.ProgressFunc
	if w != nil {
		progress = cli.NewIndexProgress(w, count).Update
	}

	idx, err := index.Build(index.Sample(count, seed), progress)
	if err != nil {
		return nil, fmt.Errorf("failed to build sample index: %w", err)
	}
	return idx, nil
}

// openHistory opens the history store, or returns nil when history is disabled.
func (a *app) openHistory(ctx context.Context) (*storage.SQLiteStorage, error) {
	if !a.cfg.History.Enabled {
		return nil, nil
	}

	store, err := storage.Open(ctx, a.cfg.History.Path)
	if err != nil {
		return nil, fmt.Errorf("failed to open history: %w", err)
	}
	return store, nil
}
