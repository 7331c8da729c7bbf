package models

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTagList_UnmarshalJSON(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected TagList
	}{
		{name: "plain array", input: `["LLM","Agents"]`, expected: TagList{"LLM", "Agents"}},
		{name: "json encoded string", input: `"[\"OpenAI\",\"NVIDIA\"]"`, expected: TagList{"OpenAI", "NVIDIA"}},
		{name: "null", input: `null`, expected: TagList{}},
		{name: "empty string", input: `""`, expected: TagList{}},
		{name: "empty array", input: `[]`, expected: TagList{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var got TagList
			require.NoError(t, json.Unmarshal([]byte(tt.input), &got))
			assert.Equal(t, tt.expected, got)
		})
	}
}

func TestTagList_UnmarshalJSON_Invalid(t *testing.T) {
	var got TagList
	assert.Error(t, json.Unmarshal([]byte(`"not json"`), &got))
	assert.Error(t, json.Unmarshal([]byte(`42`), &got))
}

func TestArticlePage_Decode(t *testing.T) {
	raw := `{
		"total": 41, "page": 2, "per_page": 20, "total_pages": 3,
		"articles": [{
			"id": 7, "title": "Agents ship", "url": "https://example.com/a",
			"source_name": "Example", "published_at": "2026-10-17T08:00:00Z",
			"score": 82, "trust_level": "HIGH", "priority_label": "breaking",
			"is_clipped": false, "tags": "[\"agents\"]", "company_tags": ["Acme"],
			"summary_ja": null
		}]
	}`

	var page ArticlePage
	require.NoError(t, json.Unmarshal([]byte(raw), &page))
	assert.Equal(t, 41, page.Total)
	assert.Equal(t, 3, page.TotalPages)
	require.Len(t, page.Articles, 1)

	a := page.Articles[0]
	assert.Equal(t, int64(7), a.ID)
	assert.Equal(t, TrustHigh, a.TrustLevel)
	assert.Equal(t, TagList{"agents"}, a.Tags)
	assert.Equal(t, TagList{"Acme"}, a.CompanyTags)
	assert.Nil(t, a.SummaryJA)
	assert.Equal(t, 82.0, a.Score)
}

func TestTimestamp_UnmarshalJSON(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected time.Time
	}{
		{name: "rfc3339 utc", input: `"2026-10-17T08:00:00Z"`, expected: time.Date(2026, 10, 17, 8, 0, 0, 0, time.UTC)},
		{name: "rfc3339 offset", input: `"2026-10-17T17:00:00+09:00"`, expected: time.Date(2026, 10, 17, 8, 0, 0, 0, time.UTC)},
		{name: "naive", input: `"2026-10-17T08:00:00"`, expected: time.Date(2026, 10, 17, 8, 0, 0, 0, time.UTC)},
		{name: "naive micros", input: `"2026-10-17T08:00:00.250000"`, expected: time.Date(2026, 10, 17, 8, 0, 0, 250000000, time.UTC)},
		{name: "naive space", input: `"2026-10-17 08:00:00"`, expected: time.Date(2026, 10, 17, 8, 0, 0, 0, time.UTC)},
		{name: "null", input: `null`, expected: time.Time{}},
		{name: "empty", input: `""`, expected: time.Time{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var got Timestamp
			require.NoError(t, json.Unmarshal([]byte(tt.input), &got))
			assert.True(t, tt.expected.Equal(got.Time), "got %s", got.Time)
		})
	}
}

func TestTimestamp_Invalid(t *testing.T) {
	var got Timestamp
	assert.Error(t, json.Unmarshal([]byte(`"yesterday"`), &got))
	assert.Error(t, json.Unmarshal([]byte(`1760688000`), &got))
}

func TestTimestamp_MarshalsAsRFC3339(t *testing.T) {
	raw, err := json.Marshal(Timestamp{Time: time.Date(2026, 10, 17, 8, 0, 0, 0, time.UTC)})
	require.NoError(t, err)
	assert.JSONEq(t, `"2026-10-17T08:00:00Z"`, string(raw))
}

func TestClipFolders_Decode(t *testing.T) {
	raw := `{
		"default": [{"id": 1, "title": "a", "published_at": "2026-10-17T08:00:00", "is_clipped": true, "clip_folder": "default", "tags": null}],
		"reading": [{"id": 2, "title": "b", "published_at": null, "is_clipped": true, "clip_folder": "reading", "tags": "[]"}]
	}`

	var folders ClipFolders
	require.NoError(t, json.Unmarshal([]byte(raw), &folders))
	require.Len(t, folders, 2)
	require.Len(t, folders["reading"], 1)
	assert.Equal(t, int64(2), folders["reading"][0].ID)
	assert.True(t, folders["reading"][0].PublishedAt.IsZero())
	assert.Equal(t, 2026, folders["default"][0].PublishedAt.Year())
}

func TestSearchResult_Decode(t *testing.T) {
	raw := `{
		"parsed_query": {"keywords": ["agents"], "source_type": null, "category": "LLM"},
		"results": [{"id": 9, "title": "Agents", "score": 71, "relevance_note": "mentions agents", "ai_rank_score": 88}]
	}`

	var res SearchResult
	require.NoError(t, json.Unmarshal([]byte(raw), &res))
	require.NotNil(t, res.ParsedQuery)
	assert.Equal(t, []string{"agents"}, res.ParsedQuery.Keywords)
	assert.Nil(t, res.ParsedQuery.SourceType)
	require.Len(t, res.Results, 1)
	assert.Equal(t, int64(9), res.Results[0].ID)
	assert.Equal(t, "mentions agents", res.Results[0].RelevanceNote)
	assert.Equal(t, 88.0, res.Results[0].AIRankScore)
	assert.Empty(t, res.Error)
}

func TestSearchResult_BackendError(t *testing.T) {
	raw := `{"error": "Valid GEMINI_API_KEY is required.", "parsed_query": null, "results": []}`

	var res SearchResult
	require.NoError(t, json.Unmarshal([]byte(raw), &res))
	assert.Nil(t, res.ParsedQuery)
	assert.Empty(t, res.Results)
	assert.NotEmpty(t, res.Error)
}
