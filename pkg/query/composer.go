package query

import (
	"fmt"
	"slices"
	"sync"
	"time"
)

var defaultSortKeys = []string{"published_at", "score"}

// Composer owns the dashboard FilterState. Every mutation goes through a
// named operation; all filter changes reset the page to 1.
// Safe for concurrent use.
type Composer struct {
	mu         sync.Mutex
	state      FilterState
	categories map[string]bool
	sortKeys   map[string]bool
	projector  Projector
	now        func() time.Time
}

// Option configures a Composer.
type Option func(*Composer)

// WithClock overrides the wall clock used for date buckets.
func WithClock(now func() time.Time) Option {
	return func(c *Composer) { c.now = now }
}

// WithLocation sets the zone in which "today" starts.
func WithLocation(loc *time.Location) Option {
	return func(c *Composer) { c.projector.Location = loc }
}

// WithPerPage sets the page size sent to the backend.
func WithPerPage(n int) Option {
	return func(c *Composer) { c.projector.PerPage = n }
}

// NewComposer creates a Composer in the default state. categories lists the
// named categories besides "all"; an empty sortKeys means published_at and score.
func NewComposer(categories, sortKeys []string, opts ...Option) *Composer {
	if len(sortKeys) == 0 {
		sortKeys = defaultSortKeys
	}
	c := &Composer{
		state:      DefaultFilterState(),
		categories: map[string]bool{AllCategories: true},
		sortKeys:   make(map[string]bool, len(sortKeys)),
		now:        time.Now,
	}
	for _, name := range categories {
		c.categories[name] = true
	}
	for _, key := range sortKeys {
		c.sortKeys[key] = true
	}
	if !c.sortKeys[c.state.SortBy] {
		c.state.SortBy = sortKeys[0]
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// State returns a copy of the current filter state.
func (c *Composer) State() FilterState {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state.clone()
}

// SetCategory selects a category and returns to page 1.
func (c *Composer) SetCategory(value string) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if !c.categories[value] {
		return fmt.Errorf("%w: %q", ErrUnknownCategory, value)
	}
	c.state.Category = value
	c.state.Page = 1
	return nil
}

// SetDateBucket selects a date bucket and returns to page 1.
func (c *Composer) SetDateBucket(value DateBucket) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if !value.valid() {
		return fmt.Errorf("%w: %q", ErrUnknownDateBucket, value)
	}
	c.state.DateBucket = value
	c.state.Page = 1
	return nil
}

// SetScoreMin sets the minimum score, which must be within [0, 100].
func (c *Composer) SetScoreMin(n int) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if n < 0 || n > 100 {
		return fmt.Errorf("%w: got %d", ErrScoreOutOfRange, n)
	}
	c.state.ScoreMin = n
	c.state.Page = 1
	return nil
}

// ToggleTrustLevel adds level if absent (at the end) or removes it if present.
func (c *Composer) ToggleTrustLevel(level TrustLevel) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if !level.valid() {
		return fmt.Errorf("%w: %q", ErrUnknownTrustLevel, level)
	}
	if i := slices.Index(c.state.TrustLevels, level); i >= 0 {
		c.state.TrustLevels = slices.Delete(c.state.TrustLevels, i, i+1)
	} else {
		c.state.TrustLevels = append(c.state.TrustLevels, level)
	}
	c.state.Page = 1
	return nil
}

// SetSortBy selects a configured sort key and returns to page 1.
func (c *Composer) SetSortBy(value string) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if !c.sortKeys[value] {
		return fmt.Errorf("%w: %q", ErrUnknownSortKey, value)
	}
	c.state.SortBy = value
	c.state.Page = 1
	return nil
}

// NextPage advances the cursor. There is no upper bound here; the view
// disables the control on the last page.
func (c *Composer) NextPage() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.state.Page++
}

// PrevPage moves the cursor back and reports whether it moved.
// It is a no-op on page 1.
func (c *Composer) PrevPage() bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.state.Page <= 1 {
		return false
	}
	c.state.Page--
	return true
}

// ToBackendQuery projects the current state, resolving date buckets against
// the clock at call time.
func (c *Composer) ToBackendQuery() Params {
	c.mu.Lock()
	s := c.state.clone()
	c.mu.Unlock()

	return c.projector.Project(s, c.now())
}

// Categories returns the accepted category values, "all" included.
func (c *Composer) Categories() []string {
	out := make([]string, 0, len(c.categories))
	for name := range c.categories {
		out = append(out, name)
	}
	slices.Sort(out)
	return out
}
