package query

import (
	"testing"

	"github.com/kiranshivaraju/newsdash/pkg/models"
)

func TestWindowOf(t *testing.T) {
	articles := func(n int) []models.ArticleSummary { return make([]models.ArticleSummary, n) }

	tests := []struct {
		name     string
		page     models.ArticlePage
		expected Window
	}{
		{
			name: "first of three pages",
			page: models.ArticlePage{Total: 45, Page: 1, PerPage: 20, TotalPages: 3, Articles: articles(20)},
			expected: Window{
				Total: 45, From: 1, To: 20, Page: 1, TotalPages: 3,
				ShowPager: true, PrevDisabled: true,
			},
		},
		{
			name: "last partial page",
			page: models.ArticlePage{Total: 45, Page: 3, PerPage: 20, TotalPages: 3, Articles: articles(5)},
			expected: Window{
				Total: 45, From: 41, To: 45, Page: 3, TotalPages: 3,
				ShowPager: true, NextDisabled: true,
			},
		},
		{
			name: "single page hides pager",
			page: models.ArticlePage{Total: 7, Page: 1, PerPage: 20, TotalPages: 1, Articles: articles(7)},
			expected: Window{
				Total: 7, From: 1, To: 7, Page: 1, TotalPages: 1,
				PrevDisabled: true, NextDisabled: true,
			},
		},
		{
			name: "no results",
			page: models.ArticlePage{Total: 0, Page: 1, PerPage: 20, TotalPages: 0},
			expected: Window{
				Page: 1, Empty: true, PrevDisabled: true, NextDisabled: true,
			},
		},
		{
			name: "past the last page",
			page: models.ArticlePage{Total: 45, Page: 4, PerPage: 20, TotalPages: 3},
			expected: Window{
				Total: 45, Page: 4, TotalPages: 3, Empty: true,
				ShowPager: true, NextDisabled: true,
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := WindowOf(&tt.page)
			if got != tt.expected {
				t.Errorf("\nexpected: %+v\ngot:      %+v", tt.expected, got)
			}
		})
	}
}
