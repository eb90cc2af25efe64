// Package serve runs the long-lived processes backed by the main database:
// the HTTP API and the drop-directory watcher.
package serve

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/sirupsen/logrus"

	"tradeanalytics/src/database"
	"tradeanalytics/src/repository"
	"tradeanalytics/src/server"
	"tradeanalytics/src/service"
	"tradeanalytics/src/watch"
)

func newService(log *logrus.Entry) *service.Service {
	return service.New(service.DefaultDatabaseStore(), log)
}

type Server struct {
	Log *logrus.Entry
}

func (s *Server) Start() error {
	config := server.GetConfig()

	// Initialize main (read/write) database
	if err := database.InitMainDB(); err != nil {
		logrus.WithError(err).Error("Failed to connect to main database")
		return err
	}

	router := server.NewRouter(
		config,
		newService(s.Log),
		repository.NewTradeRepository(),
		repository.NewImportRepository(),
	)

	s.Log.WithField("port", config.Port).Info("Starting API server")
	return server.StartServer(context.Background(), config, router)
}

type Watcher struct {
	Log *logrus.Entry
	// Dir overrides WATCH_DIR when set.
	Dir string
}

func (w *Watcher) Start() error {
	config := watch.GetConfig()
	if w.Dir != "" {
		config.Dir = w.Dir
	}

	ctx, stop := signal.NotifyContext(
		context.Background(),
		os.Interrupt,
		syscall.SIGTERM,
	)
	defer stop()

	if err := database.InitMainDB(); err != nil {
		logrus.WithError(err).Error("Failed to connect to main database")
		return err
	}

	w.Log.WithFields(logrus.Fields{
		"dir":    config.Dir,
		"period": config.LoopPeriod.String(),
	}).Info("Starting watch loop")

	if err := watch.StartLoop(ctx, newService(w.Log), config); err != nil {
		logrus.WithError(err).Error("Watch loop failed")
		return err
	}
	return nil
}
