package refresh

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/kiranshivaraju/newsdash/pkg/models"
	"github.com/kiranshivaraju/newsdash/pkg/query"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// --- fakes ---

type articlesReply struct {
	page *models.ArticlePage
	gate chan struct{}
}

type fakeBackend struct {
	mu           sync.Mutex
	stats        *models.Stats
	statsGate    chan struct{}
	replies      []articlesReply
	articleCalls int
	seenParams   []query.Params
}

func (b *fakeBackend) Stats(_ context.Context) (*models.Stats, bool) {
	if b.statsGate != nil {
		<-b.statsGate
	}
	return b.stats, b.stats != nil
}

func (b *fakeBackend) Articles(_ context.Context, params query.Params) (*models.ArticlePage, bool) {
	b.mu.Lock()
	i := b.articleCalls
	b.articleCalls++
	b.seenParams = append(b.seenParams, params)
	r := b.replies[min(i, len(b.replies)-1)]
	b.mu.Unlock()

	if r.gate != nil {
		<-r.gate
	}
	return r.page, r.page != nil
}

type staticSource struct{ params query.Params }

func (s staticSource) ToBackendQuery() query.Params { return s.params }

type recordingRenderer struct {
	mu       sync.Mutex
	stats    []*models.Stats
	articles []*models.ArticlePage
}

func (r *recordingRenderer) RenderStats(st *models.Stats) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.stats = append(r.stats, st)
}

func (r *recordingRenderer) RenderArticles(p *models.ArticlePage) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.articles = append(r.articles, p)
}

func pageWith(ids ...int64) *models.ArticlePage {
	p := &models.ArticlePage{Total: len(ids), Page: 1, PerPage: 20, TotalPages: 1}
	for _, id := range ids {
		p.Articles = append(p.Articles, models.ArticleSummary{ID: id})
	}
	return p
}

var defaultParams = query.Params{{Key: "sort_by", Value: "published_at"}, {Key: "page", Value: "1"}, {Key: "per_page", Value: "20"}}

// --- tests ---

func TestRefresh_RendersBothSections(t *testing.T) {
	b := &fakeBackend{stats: &models.Stats{TotalArticles: 5}, replies: []articlesReply{{page: pageWith(1, 2)}}}
	r := &recordingRenderer{}

	NewCoordinator(b, staticSource{defaultParams}, r).Refresh(context.Background())

	require.Len(t, r.stats, 1)
	require.Len(t, r.articles, 1)
	assert.Equal(t, 5, r.stats[0].TotalArticles)
	assert.Len(t, r.articles[0].Articles, 2)
	assert.Equal(t, defaultParams, b.seenParams[0])
}

func TestRefresh_SectionsFailIndependently(t *testing.T) {
	tests := []struct {
		name        string
		stats       *models.Stats
		page        *models.ArticlePage
		statsNil    bool
		articlesNil bool
	}{
		{name: "stats down", stats: nil, page: pageWith(1), statsNil: true},
		{name: "articles down", stats: &models.Stats{}, page: nil, articlesNil: true},
		{name: "both down", statsNil: true, articlesNil: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			b := &fakeBackend{stats: tt.stats, replies: []articlesReply{{page: tt.page}}}
			r := &recordingRenderer{}

			NewCoordinator(b, staticSource{defaultParams}, r).Refresh(context.Background())

			require.Len(t, r.stats, 1, "stats section always rendered")
			require.Len(t, r.articles, 1, "articles section always rendered")
			assert.Equal(t, tt.statsNil, r.stats[0] == nil)
			assert.Equal(t, tt.articlesNil, r.articles[0] == nil)
		})
	}
}

func TestRefresh_FetchesConcurrently(t *testing.T) {
	// stats blocks until the articles fetch has been issued
	statsGate := make(chan struct{})
	articlesGate := make(chan struct{})
	b := &fakeBackend{
		stats:     &models.Stats{},
		statsGate: statsGate,
		replies:   []articlesReply{{page: pageWith(1), gate: articlesGate}},
	}
	r := &recordingRenderer{}
	c := NewCoordinator(b, staticSource{defaultParams}, r)

	done := make(chan struct{})
	go func() {
		c.Refresh(context.Background())
		close(done)
	}()

	require.Eventually(t, func() bool {
		b.mu.Lock()
		defer b.mu.Unlock()
		return b.articleCalls == 1
	}, time.Second, time.Millisecond)

	close(articlesGate)
	close(statsGate)

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("refresh did not finish")
	}
	assert.Len(t, r.stats, 1)
	assert.Len(t, r.articles, 1)
}

func TestRefreshArticles_DropsStaleResponse(t *testing.T) {
	slow := make(chan struct{})
	b := &fakeBackend{replies: []articlesReply{
		{page: pageWith(1), gate: slow}, // first request, answers last
		{page: pageWith(2)},
	}}
	r := &recordingRenderer{}
	c := NewCoordinator(b, staticSource{defaultParams}, r)

	firstDone := make(chan struct{})
	go func() {
		c.RefreshArticles(context.Background())
		close(firstDone)
	}()
	require.Eventually(t, func() bool {
		b.mu.Lock()
		defer b.mu.Unlock()
		return b.articleCalls == 1
	}, time.Second, time.Millisecond)

	c.RefreshArticles(context.Background())
	close(slow)
	<-firstDone

	require.Len(t, r.articles, 1, "only the newest response is applied")
	assert.Equal(t, int64(2), r.articles[0].Articles[0].ID)
}

func TestRefreshArticles_DoesNotTouchStats(t *testing.T) {
	b := &fakeBackend{stats: &models.Stats{}, replies: []articlesReply{{page: pageWith(1)}}}
	r := &recordingRenderer{}

	NewCoordinator(b, staticSource{defaultParams}, r).RefreshArticles(context.Background())

	assert.Empty(t, r.stats)
	assert.Len(t, r.articles, 1)
}

func TestRefresh_UsesQueryAtFetchTime(t *testing.T) {
	c := query.NewComposer([]string{"ai"}, nil)
	b := &fakeBackend{replies: []articlesReply{{page: pageWith(1)}}}
	r := &recordingRenderer{}
	coord := NewCoordinator(b, c, r)

	require.NoError(t, c.SetCategory("ai"))
	coord.RefreshArticles(context.Background())

	got, ok := b.seenParams[0].Get("category")
	assert.True(t, ok)
	assert.Equal(t, "ai", got)
}
