package query

import "github.com/kiranshivaraju/newsdash/pkg/models"

// Window describes which slice of the result set a page shows and which
// pager controls are usable.
type Window struct {
	Total        int  `json:"total"`
	From         int  `json:"from"`
	To           int  `json:"to"`
	Page         int  `json:"page"`
	TotalPages   int  `json:"total_pages"`
	Empty        bool `json:"empty"`
	ShowPager    bool `json:"show_pager"`
	PrevDisabled bool `json:"prev_disabled"`
	NextDisabled bool `json:"next_disabled"`
}

// WindowOf computes the result window for a page envelope. From and To are
// 1-based and inclusive; both are 0 when the page holds no articles.
func WindowOf(p *models.ArticlePage) Window {
	w := Window{
		Total:        p.Total,
		Page:         p.Page,
		TotalPages:   p.TotalPages,
		Empty:        len(p.Articles) == 0,
		ShowPager:    p.TotalPages > 1,
		PrevDisabled: p.Page <= 1,
		NextDisabled: p.Page >= p.TotalPages,
	}
	if w.Empty {
		return w
	}

	w.From = (p.Page-1)*p.PerPage + 1
	w.To = min(p.Page*p.PerPage, p.Total)
	return w
}
