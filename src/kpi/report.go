package kpi

import "tradeanalytics/src/model"

// Report bundles every summary shape for presentation layers.
type Report struct {
	Summary   Summary          `json:"summary"`
	Extended  Extended         `json:"extended"`
	Daily     []DailySummary   `json:"daily"`
	Weekly    []WeeklySummary  `json:"weekly"`
	DayOfWeek []WeekdaySummary `json:"dayOfWeek"`
}

// BuildReport recomputes all summaries from trades.
func BuildReport(trades []model.Trade) Report {
	return Report{
		Summary:   Summarize(trades),
		Extended:  Extend(trades),
		Daily:     Daily(trades),
		Weekly:    Weekly(trades),
		DayOfWeek: DayOfWeek(trades),
	}
}
