// Package view holds what the dashboard currently shows. It is the boundary
// between the controller and whatever draws the page.
package view

import (
	"sync"
	"time"

	"github.com/kiranshivaraju/newsdash/internal/jobmon"
	"github.com/kiranshivaraju/newsdash/pkg/models"
	"github.com/kiranshivaraju/newsdash/pkg/query"
)

// SectionStatus tells the page how to draw a section.
type SectionStatus string

const (
	StatusPending     SectionStatus = "pending"
	StatusOK          SectionStatus = "ok"
	StatusEmpty       SectionStatus = "empty"
	StatusUnavailable SectionStatus = "unavailable"
)

// StatsSection is the stats bar.
type StatsSection struct {
	Status     SectionStatus `json:"status"`
	Stats      *models.Stats `json:"stats,omitempty"`
	RenderedAt time.Time     `json:"rendered_at"`
}

// ArticlesSection is the article list and its page window.
type ArticlesSection struct {
	Status     SectionStatus           `json:"status"`
	Articles   []models.ArticleSummary `json:"articles"`
	Window     *query.Window           `json:"window,omitempty"`
	RenderedAt time.Time               `json:"rendered_at"`
}

// Snapshot is a copy of everything on screen.
type Snapshot struct {
	Stats    StatsSection    `json:"stats"`
	Articles ArticlesSection `json:"articles"`
	Job      jobmon.Snapshot `json:"job"`
}

// State is the in-memory page. Safe for concurrent use.
type State struct {
	mu   sync.RWMutex
	now  func() time.Time
	snap Snapshot
}

// NewState returns a page with every section pending.
func NewState() *State {
	return &State{
		now: time.Now,
		snap: Snapshot{
			Stats:    StatsSection{Status: StatusPending},
			Articles: ArticlesSection{Status: StatusPending, Articles: []models.ArticleSummary{}},
		},
	}
}

// RenderStats draws the stats panel; nil draws the unavailable placeholder.
func (s *State) RenderStats(st *models.Stats) {
	s.mu.Lock()
	defer s.mu.Unlock()

	sec := StatsSection{Status: StatusOK, Stats: st, RenderedAt: s.now()}
	if st == nil {
		sec.Status = StatusUnavailable
	}
	s.snap.Stats = sec
}

// RenderArticles draws the article grid and pager. nil draws the
// unavailable placeholder; an empty page draws the "no articles yet" state.
func (s *State) RenderArticles(page *models.ArticlePage) {
	s.mu.Lock()
	defer s.mu.Unlock()

	sec := ArticlesSection{
		Status:     StatusUnavailable,
		Articles:   []models.ArticleSummary{},
		RenderedAt: s.now(),
	}
	if page != nil {
		w := query.WindowOf(page)
		sec.Window = &w
		sec.Status = StatusOK
		if w.Empty {
			sec.Status = StatusEmpty
		} else {
			sec.Articles = page.Articles
		}
	}
	s.snap.Articles = sec
}

// ShowJob draws the collect trigger.
func (s *State) ShowJob(js jobmon.Snapshot) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.snap.Job = js
}

// Snapshot returns what is currently drawn.
func (s *State) Snapshot() Snapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.snap
}

var _ jobmon.Display = (*State)(nil)
