/*
main.go - Bloom Ideas sprout engine server

PURPOSE:
  Wires the production process: configuration from the environment, the
  SQLite store (content tables plus the sprout ledger), the garden service,
  the rollup refresh scheduler, and the chi HTTP router. Shuts down
  gracefully on SIGINT/SIGTERM.
*/
package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/bloomideas/sprout-engine/api"
	"github.com/bloomideas/sprout-engine/config"
	"github.com/bloomideas/sprout-engine/garden"
	"github.com/bloomideas/sprout-engine/store/sqlite"
)

func main() {
	if err := run(); err != nil {
		logrus.WithError(err).Fatal("server exited")
	}
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	log := logrus.New()
	level, err := logrus.ParseLevel(cfg.LogLevel)
	if err != nil {
		return fmt.Errorf("parse log level: %w", err)
	}
	log.SetLevel(level)

	db, err := sqlite.New(cfg.DBPath)
	if err != nil {
		return fmt.Errorf("open store: %w", err)
	}
	defer db.Close()

	catalog, err := db.LoadCatalog(context.Background())
	if err != nil {
		return fmt.Errorf("load catalog: %w", err)
	}

	// The sqlite store implements both persistence collaborators.
	service, err := garden.NewService(db, db, catalog, log)
	if err != nil {
		return fmt.Errorf("wire service: %w", err)
	}

	scheduler, err := api.NewScheduler(db, cfg.RollupRefreshSpec, log)
	if err != nil {
		return fmt.Errorf("wire scheduler: %w", err)
	}
	scheduler.Start()
	defer scheduler.Stop()

	handler := api.NewHandler(service, db, catalog, log)
	router := api.NewRouter(handler, cfg.CORSOrigins)

	server := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Port),
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		log.WithField("addr", server.Addr).Info("listening")
		if err := server.ListenAndServe(); !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-errCh:
		return err
	case sig := <-stop:
		log.WithField("signal", sig.String()).Info("shutting down")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	return server.Shutdown(ctx)
}
