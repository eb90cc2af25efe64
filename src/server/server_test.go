package server

import (
	"context"
	"net"
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"tradeanalytics/src/ingest"
	"tradeanalytics/src/kpi"
	"tradeanalytics/src/model"
	"tradeanalytics/src/repository"
	"tradeanalytics/src/service"
)

type stubAnalytics struct{}

func (stubAnalytics) Import(ctx context.Context, req service.ImportRequest) (service.ImportResult, error) {
	return service.ImportResult{FileName: req.FileName, Outcome: ingest.OutcomeOK, Added: 1}, nil
}

func (stubAnalytics) Report(ctx context.Context) (kpi.Report, error) {
	return kpi.BuildReport(nil), nil
}

type stubTrades struct{}

func (stubTrades) Search(ctx context.Context, options repository.TradeSearchOptions) ([]model.TradeRecord, error) {
	return nil, nil
}

func (stubTrades) Count(ctx context.Context) (int64, error) { return 3, nil }

type stubImports struct{}

func (stubImports) List(ctx context.Context, limit int) ([]model.ImportBatch, error) {
	return nil, nil
}

func (stubImports) FindLatest(ctx context.Context) (*model.ImportBatch, error) {
	return &model.ImportBatch{ID: "b1"}, nil
}

func TestNewRouterRoutes(t *testing.T) {
	router := NewRouter(&Config{MaxUploadBytes: 1 << 20}, stubAnalytics{}, stubTrades{}, stubImports{})

	tests := []struct {
		method string
		path   string
		body   string
		want   int
	}{
		{http.MethodGet, "/healthcheck", "", http.StatusOK},
		{http.MethodGet, "/api/health", "", http.StatusOK},
		{http.MethodPost, "/api/imports?fileName=Fills.csv", "a\n", http.StatusCreated},
		{http.MethodGet, "/api/imports", "", http.StatusOK},
		{http.MethodGet, "/api/imports/latest", "", http.StatusOK},
		{http.MethodGet, "/api/trades", "", http.StatusOK},
		{http.MethodGet, "/api/report", "", http.StatusOK},
		{http.MethodGet, "/api/summary", "", http.StatusOK},
		{http.MethodGet, "/api/extended", "", http.StatusOK},
		{http.MethodGet, "/api/daily", "", http.StatusOK},
		{http.MethodGet, "/api/weekly", "", http.StatusOK},
		{http.MethodGet, "/api/weekdays", "", http.StatusOK},
		{http.MethodDelete, "/api/trades", "", http.StatusMethodNotAllowed},
		{http.MethodGet, "/api/nope", "", http.StatusNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.method+" "+tt.path, func(t *testing.T) {
			rr := httptest.NewRecorder()
			router.ServeHTTP(rr, httptest.NewRequest(tt.method, tt.path, strings.NewReader(tt.body)))
			assert.Equal(t, tt.want, rr.Code)
		})
	}
}

func TestEmptyReportViewsAreArrays(t *testing.T) {
	router := NewRouter(&Config{}, stubAnalytics{}, stubTrades{}, stubImports{})

	for _, path := range []string{"/api/daily", "/api/weekly", "/api/weekdays", "/api/trades", "/api/imports"} {
		rr := httptest.NewRecorder()
		router.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, path, nil))
		require.Equal(t, http.StatusOK, rr.Code, path)
		assert.JSONEq(t, `[]`, rr.Body.String(), path)
	}
}

func TestStartServerStopsOnCancel(t *testing.T) {
	l, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	port := l.Addr().(*net.TCPAddr).Port
	require.NoError(t, l.Close())

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	cfg := &Config{Port: strconv.Itoa(port), ShutdownTimeout: time.Second}
	go func() { done <- StartServer(ctx, cfg, http.NotFoundHandler()) }()

	cancel()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("server did not stop")
	}
}
