package server

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	logger "github.com/sirupsen/logrus"

	"tradeanalytics/src/handler"
	"tradeanalytics/src/kpi"
	"tradeanalytics/src/model"
	"tradeanalytics/src/repository"
	"tradeanalytics/src/service"
)

// Analytics is the import and report surface served over HTTP.
type Analytics interface {
	Import(ctx context.Context, req service.ImportRequest) (service.ImportResult, error)
	Report(ctx context.Context) (kpi.Report, error)
}

// Trades is the read side of the trade table.
type Trades interface {
	Search(ctx context.Context, options repository.TradeSearchOptions) ([]model.TradeRecord, error)
	Count(ctx context.Context) (int64, error)
}

type Imports interface {
	List(ctx context.Context, limit int) ([]model.ImportBatch, error)
	FindLatest(ctx context.Context) (*model.ImportBatch, error)
}

// NewRouter builds the API routes.
func NewRouter(cfg *Config, svc Analytics, trades Trades, imports Imports) http.Handler {
	// Router with middleware
	r := chi.NewRouter()
	// === Global Middleware ===
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)

	// Public routes
	r.Get("/healthcheck", func(w http.ResponseWriter, r *http.Request) {
		if _, err := w.Write([]byte("OK")); err != nil {
			logger.WithError(err).Error(" \"/health error")
		}
	})

	r.Route("/api", func(r chi.Router) {
		r.Get("/health", handler.HealthHandler(trades))

		r.Post("/imports", handler.CreateImportHandler(svc, cfg.MaxUploadBytes))
		r.Get("/imports", handler.ListImportsHandler(imports))
		r.Get("/imports/latest", handler.LatestImportHandler(imports))

		r.Get("/trades", handler.SearchTradesHandler(trades))

		r.Get("/report", handler.ReportHandler(svc, handler.FullReport))
		r.Get("/summary", handler.ReportHandler(svc, handler.SummaryView))
		r.Get("/extended", handler.ReportHandler(svc, handler.ExtendedView))
		r.Get("/daily", handler.ReportHandler(svc, handler.DailyView))
		r.Get("/weekly", handler.ReportHandler(svc, handler.WeeklyView))
		r.Get("/weekdays", handler.ReportHandler(svc, handler.DayOfWeekView))
	})

	return r
}

// StartServer serves h until ctx is cancelled or SIGINT/SIGTERM arrives,
// then shuts down gracefully.
func StartServer(ctx context.Context, cfg *Config, h http.Handler) error {
	// Server setup
	addr := ":" + cfg.Port
	srv := &http.Server{
		Addr:              addr,
		Handler:           h,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	// Start server in goroutine
	go func() {
		logger.Infof("Listening on %s", addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	// Shutdown on SIGINT or SIGTERM
	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	select {
	case err, ok := <-errCh:
		if ok {
			logger.WithError(err).Error("Server crashed")
			return err
		}
		return nil
	case <-ctx.Done():
	}

	logger.Info("Shutting down gracefully...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.WithError(err).Error("Shutdown error")
		return err
	}
	return nil
}
