package handler

import (
	"context"
	"net/http"
	"strconv"
	"time"

	logger "github.com/sirupsen/logrus"

	"tradeanalytics/src/calendar"
	"tradeanalytics/src/model"
	"tradeanalytics/src/repository"
)

const (
	defaultPageSize = 50
	maxPageSize     = 500
)

type tradeSearcher interface {
	Search(ctx context.Context, options repository.TradeSearchOptions) ([]model.TradeRecord, error)
}

// SearchTradesHandler returns a handler that lists stored trades.
// Supports pagination and filters (symbol, direction, from, to).
func SearchTradesHandler(repo tradeSearcher) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		query := r.URL.Query()

		var symbol *string
		if symbolParam := query.Get("symbol"); symbolParam != "" {
			symbol = &symbolParam
		}

		var direction *string
		if directionParam := query.Get("direction"); directionParam != "" {
			switch model.Direction(directionParam) {
			case model.DirectionLong, model.DirectionShort:
				direction = &directionParam
			default:
				writeError(w, http.StatusBadRequest, "invalid direction")
				return
			}
		}

		dayFrom, ok := dayParam(query.Get("from"))
		if !ok {
			writeError(w, http.StatusBadRequest, "invalid from")
			return
		}
		dayTo, ok := dayParam(query.Get("to"))
		if !ok {
			writeError(w, http.StatusBadRequest, "invalid to")
			return
		}

		page := 1
		if pageParam := query.Get("page"); pageParam != "" {
			parsedPage, err := strconv.Atoi(pageParam)
			if err != nil || parsedPage <= 0 {
				writeError(w, http.StatusBadRequest, "invalid page")
				return
			}
			page = parsedPage
		}

		pageSize := defaultPageSize
		if sizeParam := query.Get("pageSize"); sizeParam != "" {
			parsedSize, err := strconv.Atoi(sizeParam)
			if err != nil || parsedSize <= 0 || parsedSize > maxPageSize {
				writeError(w, http.StatusBadRequest, "invalid pageSize")
				return
			}
			pageSize = parsedSize
		}

		records, err := repo.Search(r.Context(), repository.TradeSearchOptions{
			Symbol:    symbol,
			Direction: direction,
			DayFrom:   dayFrom,
			DayTo:     dayTo,
			Limit:     pageSize,
			Offset:    (page - 1) * pageSize,
		})
		if err != nil {
			logger.WithError(err).Error("failed to search trades")
			writeError(w, http.StatusInternalServerError, "Internal Server Error")
			return
		}

		trades := make([]model.Trade, len(records))
		for i := range records {
			trades[i] = records[i].ConvertToTrade()
		}
		writeJSON(w, http.StatusOK, trades)
	}
}

// dayParam validates an optional YYYY-MM-DD query value.
func dayParam(v string) (*string, bool) {
	if v == "" {
		return nil, true
	}
	if _, err := time.Parse(calendar.DateLayout, v); err != nil {
		return nil, false
	}
	return &v, true
}
