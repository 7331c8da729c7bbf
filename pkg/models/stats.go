package models

// Stats is the dashboard summary returned by GET /api/stats.
type Stats struct {
	TotalArticles  int     `json:"total_articles"`
	TodayArticles  int     `json:"today_articles"`
	AvgScore       float64 `json:"avg_score"`
	HighTrustCount int     `json:"high_trust_count"`
}
