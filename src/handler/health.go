package handler

import (
	"context"
	"net/http"

	logger "github.com/sirupsen/logrus"
)

type tradeCounter interface {
	Count(ctx context.Context) (int64, error)
}

type healthResponse struct {
	Status string `json:"status"`
	Trades int64  `json:"trades"`
}

// HealthHandler reports whether the trade store is reachable.
func HealthHandler(repo tradeCounter) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		n, err := repo.Count(r.Context())
		if err != nil {
			logger.WithError(err).Warn("health check failed")
			writeJSON(w, http.StatusServiceUnavailable, healthResponse{Status: "unavailable"})
			return
		}
		writeJSON(w, http.StatusOK, healthResponse{Status: "ok", Trades: n})
	}
}
