// Package dashboard ties the query composer, refresh coordinator and job
// monitor together behind the operations the page exposes.
package dashboard

import (
	"context"
	"errors"

	"github.com/kiranshivaraju/newsdash/internal/jobmon"
	"github.com/kiranshivaraju/newsdash/internal/view"
	"github.com/kiranshivaraju/newsdash/pkg/models"
	"github.com/kiranshivaraju/newsdash/pkg/query"
)

// ErrBackendUnavailable is returned when the backend did not answer a
// clip or search request.
var ErrBackendUnavailable = errors.New("backend unavailable")

// Clipper files articles into clip folders.
type Clipper interface {
	Clip(ctx context.Context, id int64, folder string) bool
	Unclip(ctx context.Context, id int64) bool
	Clips(ctx context.Context) (models.ClipFolders, bool)
}

// Searcher runs natural-language article search.
type Searcher interface {
	Search(ctx context.Context, q string) (*models.SearchResult, bool)
}

// Refresher re-fetches view sections.
type Refresher interface {
	Refresh(ctx context.Context)
	RefreshArticles(ctx context.Context)
}

// Collector supervises the collection job.
type Collector interface {
	Trigger(ctx context.Context) bool
	Snapshot() jobmon.Snapshot
}

// Controller is the page's single entry point.
type Controller struct {
	composer  *query.Composer
	refresher Refresher
	collector Collector
	clipper   Clipper
	searcher  Searcher
	view      *view.State
}

// State is everything the page needs to draw itself.
type State struct {
	Filters    query.FilterState `json:"filters"`
	Categories []string          `json:"categories"`
	View       view.Snapshot     `json:"view"`
}

// NewController creates a Controller.
func NewController(composer *query.Composer, refresher Refresher, collector Collector, clipper Clipper, searcher Searcher, v *view.State) *Controller {
	return &Controller{
		composer:  composer,
		refresher: refresher,
		collector: collector,
		clipper:   clipper,
		searcher:  searcher,
		view:      v,
	}
}

// State returns the current filters and view.
func (c *Controller) State() State {
	return State{
		Filters:    c.composer.State(),
		Categories: c.composer.Categories(),
		View:       c.view.Snapshot(),
	}
}

// Refresh re-fetches stats and articles.
func (c *Controller) Refresh(ctx context.Context) {
	c.refresher.Refresh(ctx)
}

// SetCategory filters by category; empty means all.
func (c *Controller) SetCategory(ctx context.Context, value string) error {
	return c.apply(ctx, c.composer.SetCategory(value))
}

// SetDateBucket filters by publication date.
func (c *Controller) SetDateBucket(ctx context.Context, value query.DateBucket) error {
	return c.apply(ctx, c.composer.SetDateBucket(value))
}

// SetScoreMin sets the minimum importance score.
func (c *Controller) SetScoreMin(ctx context.Context, n int) error {
	return c.apply(ctx, c.composer.SetScoreMin(n))
}

// ToggleTrustLevel adds or removes a trust level from the filter.
func (c *Controller) ToggleTrustLevel(ctx context.Context, level query.TrustLevel) error {
	return c.apply(ctx, c.composer.ToggleTrustLevel(level))
}

// SetSortBy changes the sort key.
func (c *Controller) SetSortBy(ctx context.Context, value string) error {
	return c.apply(ctx, c.composer.SetSortBy(value))
}

// NextPage moves forward one page and re-fetches articles.
func (c *Controller) NextPage(ctx context.Context) {
	c.composer.NextPage()
	c.refresher.RefreshArticles(ctx)
}

// PrevPage moves back one page. On page 1 nothing is fetched.
func (c *Controller) PrevPage(ctx context.Context) {
	if c.composer.PrevPage() {
		c.refresher.RefreshArticles(ctx)
	}
}

// Collect triggers a collection run and reports whether one started.
func (c *Controller) Collect(ctx context.Context) (bool, jobmon.Snapshot) {
	started := c.collector.Trigger(ctx)
	return started, c.collector.Snapshot()
}

// Clip files an article and re-fetches the list so the clip flag shows.
func (c *Controller) Clip(ctx context.Context, id int64, folder string) error {
	if !c.clipper.Clip(ctx, id, folder) {
		return ErrBackendUnavailable
	}
	c.refresher.RefreshArticles(ctx)
	return nil
}

// Unclip removes an article from its folder.
func (c *Controller) Unclip(ctx context.Context, id int64) error {
	if !c.clipper.Unclip(ctx, id) {
		return ErrBackendUnavailable
	}
	c.refresher.RefreshArticles(ctx)
	return nil
}

// Clips lists clipped articles grouped by folder.
func (c *Controller) Clips(ctx context.Context) (models.ClipFolders, error) {
	folders, ok := c.clipper.Clips(ctx)
	if !ok {
		return nil, ErrBackendUnavailable
	}
	return folders, nil
}

// Search runs a natural-language search. The view is not touched; results
// go straight back to the caller.
func (c *Controller) Search(ctx context.Context, q string) (*models.SearchResult, error) {
	res, ok := c.searcher.Search(ctx, q)
	if !ok {
		return nil, ErrBackendUnavailable
	}
	return res, nil
}

// apply re-fetches articles after a successful filter mutation.
func (c *Controller) apply(ctx context.Context, err error) error {
	if err != nil {
		return err
	}
	c.refresher.RefreshArticles(ctx)
	return nil
}
