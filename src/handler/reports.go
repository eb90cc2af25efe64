package handler

import (
	"context"
	"net/http"

	logger "github.com/sirupsen/logrus"

	"tradeanalytics/src/kpi"
)

type reporter interface {
	Report(ctx context.Context) (kpi.Report, error)
}

// ReportHandler serves one view of the recomputed report.
func ReportHandler(svc reporter, view func(kpi.Report) interface{}) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		report, err := svc.Report(r.Context())
		if err != nil {
			logger.WithError(err).Error("failed to build report")
			writeError(w, http.StatusInternalServerError, "Internal Server Error")
			return
		}
		writeJSON(w, http.StatusOK, view(report))
	}
}

func FullReport(r kpi.Report) interface{} { return r }
func SummaryView(r kpi.Report) interface{} { return r.Summary }
func ExtendedView(r kpi.Report) interface{} { return r.Extended }
func DailyView(r kpi.Report) interface{} { return r.Daily }
func WeeklyView(r kpi.Report) interface{} { return r.Weekly }
func DayOfWeekView(r kpi.Report) interface{} { return r.DayOfWeek }
