// Package refresh re-fetches the dashboard's stats and article list and
// hands the results to the view.
package refresh

import (
	"context"
	"log/slog"
	"sync"

	"github.com/kiranshivaraju/newsdash/pkg/models"
	"github.com/kiranshivaraju/newsdash/pkg/query"
	"golang.org/x/sync/errgroup"
)

// Backend is the part of the gateway the coordinator reads from.
type Backend interface {
	Stats(ctx context.Context) (*models.Stats, bool)
	Articles(ctx context.Context, params query.Params) (*models.ArticlePage, bool)
}

// QuerySource supplies the current article query.
type QuerySource interface {
	ToBackendQuery() query.Params
}

// Renderer draws fetched sections. A nil argument means the fetch failed.
type Renderer interface {
	RenderStats(*models.Stats)
	RenderArticles(*models.ArticlePage)
}

// Coordinator issues fetches and applies only the newest response per
// section. A response whose generation has been superseded is dropped.
type Coordinator struct {
	backend  Backend
	source   QuerySource
	renderer Renderer

	mu          sync.Mutex
	statsGen    uint64
	articlesGen uint64
}

// NewCoordinator creates a Coordinator.
func NewCoordinator(backend Backend, source QuerySource, renderer Renderer) *Coordinator {
	return &Coordinator{backend: backend, source: source, renderer: renderer}
}

// Refresh fetches stats and articles concurrently. The two sections are
// independent: one failing renders its placeholder without affecting the other.
func (c *Coordinator) Refresh(ctx context.Context) {
	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		c.refreshStats(gctx)
		return nil
	})
	g.Go(func() error {
		c.RefreshArticles(gctx)
		return nil
	})

	_ = g.Wait()
}

// RefreshArticles fetches the article page for the current filters.
func (c *Coordinator) RefreshArticles(ctx context.Context) {
	c.mu.Lock()
	c.articlesGen++
	gen := c.articlesGen
	params := c.source.ToBackendQuery()
	c.mu.Unlock()

	page, ok := c.backend.Articles(ctx, params)
	if !ok {
		page = nil
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	if gen != c.articlesGen {
		slog.Debug("stale articles response dropped", "generation", gen, "latest", c.articlesGen)
		return
	}
	c.renderer.RenderArticles(page)
}

func (c *Coordinator) refreshStats(ctx context.Context) {
	c.mu.Lock()
	c.statsGen++
	gen := c.statsGen
	c.mu.Unlock()

	stats, ok := c.backend.Stats(ctx)
	if !ok {
		stats = nil
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	if gen != c.statsGen {
		slog.Debug("stale stats response dropped", "generation", gen, "latest", c.statsGen)
		return
	}
	c.renderer.RenderStats(stats)
}
