package query

import (
	"errors"
	"slices"
)

// "No filter" values.
const (
	AllCategories  = "all"
	DefaultSortBy  = "published_at"
	DefaultPerPage = 20
)

// Validation errors returned by Composer mutations. The state is left
// untouched when one of these is returned.
var (
	ErrUnknownCategory   = errors.New("unknown category")
	ErrUnknownDateBucket = errors.New("unknown date bucket")
	ErrScoreOutOfRange   = errors.New("score_min must be between 0 and 100")
	ErrUnknownTrustLevel = errors.New("unknown trust level")
	ErrUnknownSortKey    = errors.New("unknown sort key")
)

// DateBucket is a relative publication window.
type DateBucket string

const (
	DateAll   DateBucket = "all"
	DateToday DateBucket = "today"
	DateWeek  DateBucket = "week"
	DateMonth DateBucket = "month"
)

func (d DateBucket) valid() bool {
	switch d {
	case DateAll, DateToday, DateWeek, DateMonth:
		return true
	}
	return false
}

// TrustLevel is the backend's source-credibility category.
type TrustLevel string

const (
	TrustHigh   TrustLevel = "HIGH"
	TrustMedium TrustLevel = "MEDIUM"
	TrustLow    TrustLevel = "LOW"
)

func (l TrustLevel) valid() bool {
	switch l {
	case TrustHigh, TrustMedium, TrustLow:
		return true
	}
	return false
}

// FilterState is the dashboard's filter, sort and pagination position.
// TrustLevels keeps insertion order; only its first element reaches the backend.
type FilterState struct {
	Category    string       `json:"category"`
	DateBucket  DateBucket   `json:"date_bucket"`
	ScoreMin    int          `json:"score_min"`
	TrustLevels []TrustLevel `json:"trust_levels"`
	SortBy      string       `json:"sort_by"`
	Page        int          `json:"page"`
}

// DefaultFilterState is the state of a fresh dashboard session.
func DefaultFilterState() FilterState {
	return FilterState{
		Category:    AllCategories,
		DateBucket:  DateAll,
		TrustLevels: []TrustLevel{},
		SortBy:      DefaultSortBy,
		Page:        1,
	}
}

func (s FilterState) clone() FilterState {
	s.TrustLevels = slices.Clone(s.TrustLevels)
	if s.TrustLevels == nil {
		s.TrustLevels = []TrustLevel{}
	}
	return s
}
