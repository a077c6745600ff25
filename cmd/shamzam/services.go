package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/cesargomez89/shamzam/internal/app"
	"github.com/cesargomez89/shamzam/internal/audiofile"
	"github.com/cesargomez89/shamzam/internal/catalogclient"
	"github.com/cesargomez89/shamzam/internal/config"
	"github.com/cesargomez89/shamzam/internal/constants"
	httpapp "github.com/cesargomez89/shamzam/internal/http"
	"github.com/cesargomez89/shamzam/internal/httpclient"
	"github.com/cesargomez89/shamzam/internal/logger"
	"github.com/cesargomez89/shamzam/internal/metrics"
	"github.com/cesargomez89/shamzam/internal/recognition"
	"github.com/cesargomez89/shamzam/internal/store"
)

// service is one HTTP server plus whatever it must release on shutdown.
type service struct {
	srv   *http.Server
	close func() error
	name  string
}

func newCatalogService(cfg *config.Config, log *logger.Logger) (*service, error) {
	if err := cfg.ValidateCatalog(); err != nil {
		return nil, err
	}

	db, err := store.NewSQLiteDB(cfg.DBPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open catalog database: %w", err)
	}

	m := metrics.New()
	svc := app.NewCatalogService(db, log, m)
	h := httpapp.NewCatalogHandler(svc, db.PingContext, log)

	return &service{
		name:  "catalog",
		close: db.Close,
		srv: &http.Server{
			Addr:              ":" + cfg.CatalogPort,
			Handler:           httpapp.NewCatalogRouter(h, m),
			ReadHeaderTimeout: 10 * time.Second,
		},
	}, nil
}

// newIdentifier wires the identification workflow against a remote catalog.
func newIdentifier(cfg *config.Config, library *audiofile.Library, log *logger.Logger, m *metrics.Metrics) (*app.IdentifyService, error) {
	rec, err := recognition.New(cfg, httpclient.NewClient(nil, cfg.RecognitionRate), m, log)
	if err != nil {
		return nil, err
	}
	catalog := catalogclient.New(cfg.CatalogURL, cfg.CatalogTimeout, httpclient.NewClient(nil, 0))
	return app.NewIdentifyService(library, rec, catalog, log, m), nil
}

func newGatewayService(cfg *config.Config, log *logger.Logger) (*service, error) {
	if err := cfg.ValidateGateway(); err != nil {
		return nil, err
	}

	m := metrics.New()
	library := audiofile.NewLibrary(cfg.AudioDir, cfg.MaxSampleBytes)
	identifier, err := newIdentifier(cfg, library, log, m)
	if err != nil {
		return nil, err
	}
	h := httpapp.NewGatewayHandler(identifier, library, log)

	return &service{
		name: "gateway",
		srv: &http.Server{
			Addr:              ":" + cfg.GatewayPort,
			Handler:           httpapp.NewGatewayRouter(h, m),
			ReadHeaderTimeout: 10 * time.Second,
		},
	}, nil
}

// runServices serves until ctx is canceled or one server fails, then shuts
// every server down gracefully.
func runServices(ctx context.Context, log *logger.Logger, services ...*service) error {
	g, gctx := errgroup.WithContext(ctx)

	for _, s := range services {
		g.Go(func() error {
			log.Info("Server listening", "service", s.name, "addr", s.srv.Addr)
			if err := s.srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				return fmt.Errorf("%s server: %w", s.name, err)
			}
			return nil
		})
		g.Go(func() error {
			<-gctx.Done()
			log.Info("Shutting down server", "service", s.name)

			shutdownCtx, cancel := context.WithTimeout(context.Background(), constants.DefaultShutdownTimeout)
			defer cancel()

			err := s.srv.Shutdown(shutdownCtx)
			if s.close != nil {
				if cerr := s.close(); cerr != nil && err == nil {
					err = cerr
				}
			}
			if err != nil {
				return fmt.Errorf("%s shutdown: %w", s.name, err)
			}
			return nil
		})
	}

	return g.Wait()
}
