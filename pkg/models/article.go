package models

import (
	"encoding/json"
	"time"
)

// Trust levels assigned by the backend to article sources.
const (
	TrustHigh   = "HIGH"
	TrustMedium = "MEDIUM"
	TrustLow    = "LOW"
)

// ArticleSummary is one article as listed by GET /api/articles. It is passed
// through to the view untouched.
type ArticleSummary struct {
	ID            int64     `json:"id"`
	Title         string    `json:"title"`
	URL           string    `json:"url"`
	SourceName    string    `json:"source_name"`
	SourceType    string    `json:"source_type,omitempty"`
	Category      string    `json:"category,omitempty"`
	PublishedAt   Timestamp `json:"published_at"`
	Score         float64   `json:"score"`
	TrustLevel    string    `json:"trust_level"`
	PriorityLabel string    `json:"priority_label"`
	IsClipped     bool      `json:"is_clipped"`
	ClipFolder    *string   `json:"clip_folder,omitempty"`
	Tags          TagList   `json:"tags"`
	CompanyTags   TagList   `json:"company_tags"`
	SummaryJA     *string   `json:"summary_ja,omitempty"`
	BusinessPoint *string   `json:"business_point,omitempty"`
}

// ArticlePage is the pagination envelope returned for an article query.
type ArticlePage struct {
	Total      int              `json:"total"`
	Page       int              `json:"page"`
	PerPage    int              `json:"per_page"`
	TotalPages int              `json:"total_pages"`
	Articles   []ArticleSummary `json:"articles"`
}

// ClipFolders groups clipped articles by folder name, as returned by
// GET /api/clips.
type ClipFolders map[string][]ArticleSummary

// Timestamp accepts RFC 3339 as well as the zone-less ISO form the backend
// writes for naive datetimes; those are read as UTC. null leaves it zero.
type Timestamp struct {
	time.Time
}

var naiveLayouts = []string{
	"2006-01-02T15:04:05.999999999",
	"2006-01-02 15:04:05.999999999",
}

func (ts *Timestamp) UnmarshalJSON(data []byte) error {
	if string(data) == "null" {
		ts.Time = time.Time{}
		return nil
	}

	var raw string
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	if raw == "" {
		ts.Time = time.Time{}
		return nil
	}

	t, err := time.Parse(time.RFC3339Nano, raw)
	if err == nil {
		ts.Time = t
		return nil
	}
	for _, layout := range naiveLayouts {
		if t, perr := time.ParseInLocation(layout, raw, time.UTC); perr == nil {
			ts.Time = t
			return nil
		}
	}
	return err
}

func (ts Timestamp) MarshalJSON() ([]byte, error) {
	return ts.Time.MarshalJSON()
}

// TagList decodes either a JSON array of strings or a string holding a
// JSON-encoded array, which is how the backend serializes JSON columns.
type TagList []string

func (t *TagList) UnmarshalJSON(data []byte) error {
	if string(data) == "null" {
		*t = TagList{}
		return nil
	}

	var list []string
	if err := json.Unmarshal(data, &list); err == nil {
		*t = list
		return nil
	}

	var encoded string
	if err := json.Unmarshal(data, &encoded); err != nil {
		return err
	}
	if encoded == "" {
		*t = TagList{}
		return nil
	}
	if err := json.Unmarshal([]byte(encoded), &list); err != nil {
		return err
	}
	*t = list
	return nil
}
