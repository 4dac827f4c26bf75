// internal/model/stats.go
package model

type SegmentStats struct {
	Sent    int `json:"sent"`
	Failed  int `json:"failed"`
	Opened  int `json:"opened"`
	Clicked int `json:"clicked"`
}

type RetentionStats struct {
	Total          int                      `json:"total"`
	ByStatus       map[string]int           `json:"by_status"`
	Sent           int                      `json:"sent"`
	SentLast7Days  int                      `json:"sent_last_7_days"`
	SentLast30Days int                      `json:"sent_last_30_days"`
	Opened         int                      `json:"opened"`
	Clicked        int                      `json:"clicked"`
	OpenRate       float64                  `json:"open_rate"`
	ClickRate      float64                  `json:"click_rate"`
	BySegment      map[Segment]SegmentStats `json:"by_segment"`
}
