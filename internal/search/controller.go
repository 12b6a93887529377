// Package search implements the search execution controller: it turns commits
// (a submitted query or a page change) into search requests and keeps the
// displayed page in step with the most recently issued request.
package search

import (
	"context"
	"strings"
	"time"

	"github.com/Veraticus/cashsearch/internal/backend"
	"github.com/Veraticus/cashsearch/internal/common"
	"github.com/Veraticus/cashsearch/internal/model"
	"github.com/Veraticus/cashsearch/internal/sequence"
	tea "github.com/charmbracelet/bubbletea"
)

// FailureMessage is shown when a search request fails.
const FailureMessage = "search failed, try again"

// DefaultTimeout bounds a single search request.
const DefaultTimeout = 15 * time.Second

// Config holds controller settings.
type Config struct {
	Scope    model.Scope
	PageSize int
	Timeout  time.Duration
}

// DefaultConfig returns the standard controller settings.
func DefaultConfig() Config {
	return Config{
		Scope:    model.DefaultScope(),
		PageSize: model.DefaultPageSize,
		Timeout:  DefaultTimeout,
	}
}

// Controller is the search state machine. The zero value is not usable; use New.
type Controller struct {
	client    backend.Searcher
	committed model.Query
	shown     model.Query
	err       string
	page      model.PageState
	config    Config
	epoch     sequence.Epoch
	scope     model.Scope
	loading   bool
}

// New creates a controller backed by client.
func New(client backend.Searcher, cfg Config) Controller {
	if cfg.PageSize <= 0 {
		cfg.PageSize = model.DefaultPageSize
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = DefaultTimeout
	}
	if cfg.Scope.None() {
		cfg.Scope = model.DefaultScope()
	}
	return Controller{
		client: client,
		config: cfg,
		scope:  cfg.Scope,
	}
}

// Submit commits a new query string. Pagination resets to the first page and
// any previous error is cleared. Blank queries are ignored.
func (c Controller) Submit(text string) (Controller, tea.Cmd) {
	if strings.TrimSpace(text) == "" {
		return c, nil
	}

	c.committed = model.Query{
		Text:  text,
		Scope: c.scope,
		Page:  0,
		Size:  c.config.PageSize,
	}
	c.page.CurrentPageIndex = 0
	c.err = ""
	c.loading = true
	cmd := c.issue(c.committed)
	return c, cmd
}

// Paginate commits a page change for the current query. The query text never
// changes. It is a no-op without a committed query or for an out-of-range page.
func (c Controller) Paginate(page int) (Controller, tea.Cmd) {
	if c.committed.Blank() || page < 0 {
		return c, nil
	}
	if c.page.TotalPages > 0 && page >= c.page.TotalPages {
		return c, nil
	}

	c.committed = c.committed.WithPage(page)
	c.loading = true
	cmd := c.issue(c.committed)
	return c, cmd
}

// NextPage paginates forward by one page.
func (c Controller) NextPage() (Controller, tea.Cmd) {
	if !c.page.HasNext() {
		return c, nil
	}
	return c.Paginate(c.committed.Page + 1)
}

// PrevPage paginates back by one page.
func (c Controller) PrevPage() (Controller, tea.Cmd) {
	if c.committed.Page == 0 {
		return c, nil
	}
	return c.Paginate(c.committed.Page - 1)
}

// SetScope changes the entity families used by subsequent submits.
func (c Controller) SetScope(scope model.Scope) Controller {
	if scope.None() {
		return c
	}
	c.scope = scope
	return c
}

// Update applies search responses.
func (c Controller) Update(msg tea.Msg) (Controller, tea.Cmd) {
	res, ok := msg.(resultMsg)
	if !ok {
		return c, nil
	}

	if c.epoch.Stale(res.epoch) {
		common.LogDebug("Discarding stale search response", common.Fields{
			"query": res.query.Text,
			"page":  res.query.Page,
			"epoch": res.epoch,
		})
		return c, nil
	}

	c.loading = false

	if res.err != nil {
		common.LogError(res.err, "Search request failed", common.Fields{
			"query": res.query.Text,
			"page":  res.query.Page,
		})
		c.page = model.PageState{CurrentPageIndex: res.query.Page, PageSize: res.query.Size}
		c.shown = res.query
		c.err = FailureMessage
		return c, nil
	}

	c.page = model.NewPageState(res.query, res.resp)
	c.shown = res.query
	c.err = ""
	return c, nil
}

// issue tags a request with a fresh epoch and returns the command that runs it.
func (c *Controller) issue(q model.Query) tea.Cmd {
	epoch := c.epoch.Next()
	client, timeout := c.client, c.config.Timeout
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), timeout)
		defer cancel()

		resp, err := client.Search(ctx, q.Request())
		return resultMsg{
			epoch: epoch,
			query: q,
			resp:  resp,
			err:   err,
		}
	}
}

// Query returns the authoritative committed query.
func (c Controller) Query() model.Query {
	return c.committed
}

// PageQuery returns the query that produced the current page. It lags Query
// while a request is outstanding.
func (c Controller) PageQuery() model.Query {
	return c.shown
}

// Page returns the current page snapshot.
func (c Controller) Page() model.PageState {
	return c.page
}

// Loading reports whether a search request is outstanding.
func (c Controller) Loading() bool {
	return c.loading
}

// Err returns the user-visible error message, or "" when the last search succeeded.
func (c Controller) Err() string {
	return c.err
}

// Scope returns the scope used for the next submit.
func (c Controller) Scope() model.Scope {
	return c.scope
}

// Epoch returns the controller's current request epoch.
func (c Controller) Epoch() sequence.Tag {
	return c.epoch.Current()
}

// Searched reports whether any query has been committed.
func (c Controller) Searched() bool {
	return !c.committed.Blank()
}
