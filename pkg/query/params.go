package query

import (
	"net/url"
	"strconv"
	"strings"
	"time"
)

// isoMillis matches the timestamp layout browsers produce for Date.toISOString.
const isoMillis = "2006-01-02T15:04:05.000Z"

// Param is one query-string pair.
type Param struct {
	Key   string
	Value string
}

// Params is an ordered query string. Order is part of the contract so that
// the same FilterState always yields the same URL.
type Params []Param

// Get returns the value for key and whether it is present.
func (p Params) Get(key string) (string, bool) {
	for _, kv := range p {
		if kv.Key == key {
			return kv.Value, true
		}
	}
	return "", false
}

// Encode renders the params in order as an escaped query string.
func (p Params) Encode() string {
	var b strings.Builder
	for i, kv := range p {
		if i > 0 {
			b.WriteByte('&')
		}
		b.WriteString(url.QueryEscape(kv.Key))
		b.WriteByte('=')
		b.WriteString(url.QueryEscape(kv.Value))
	}
	return b.String()
}

// Projector turns a FilterState into the backend's /articles query.
// All methods are pure functions with no side effects.
// Zero value is ready to use: 20 results per page, local time zone.
type Projector struct {
	PerPage  int
	Location *time.Location
}

// Project returns the query for s with date buckets resolved against now.
// Parameters appear in the order category, date_from, score_min, trust_level,
// sort_by, page, per_page; filter parameters are omitted when inactive.
func (p Projector) Project(s FilterState, now time.Time) Params {
	var params Params

	if s.Category != "" && s.Category != AllCategories {
		params = append(params, Param{"category", s.Category})
	}
	if from, ok := p.dateFrom(s.DateBucket, now); ok {
		params = append(params, Param{"date_from", from.UTC().Format(isoMillis)})
	}
	if s.ScoreMin > 0 {
		params = append(params, Param{"score_min", strconv.Itoa(s.ScoreMin)})
	}
	// The backend accepts a single trust_level. The first-selected level wins.
	if len(s.TrustLevels) > 0 {
		params = append(params, Param{"trust_level", string(s.TrustLevels[0])})
	}

	sortBy := s.SortBy
	if sortBy == "" {
		sortBy = DefaultSortBy
	}
	page := s.Page
	if page < 1 {
		page = 1
	}

	return append(params,
		Param{"sort_by", sortBy},
		Param{"page", strconv.Itoa(page)},
		Param{"per_page", strconv.Itoa(p.perPage())},
	)
}

func (p Projector) perPage() int {
	if p.PerPage > 0 {
		return p.PerPage
	}
	return DefaultPerPage
}

func (p Projector) location() *time.Location {
	if p.Location != nil {
		return p.Location
	}
	return time.Local
}

// dateFrom resolves a bucket to its lower publication bound.
func (p Projector) dateFrom(bucket DateBucket, now time.Time) (time.Time, bool) {
	now = now.In(p.location())
	switch bucket {
	case DateToday:
		y, m, d := now.Date()
		return time.Date(y, m, d, 0, 0, 0, 0, now.Location()), true
	case DateWeek:
		return now.AddDate(0, 0, -7), true
	case DateMonth:
		return now.AddDate(0, -1, 0), true
	default:
		return time.Time{}, false
	}
}
