package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/foiaworks/foiad/internal/agency"
	"github.com/foiaworks/foiad/internal/archive"
	"github.com/foiaworks/foiad/internal/config"
	"github.com/foiaworks/foiad/internal/events"
	"github.com/foiaworks/foiad/internal/orchestrator"
	"github.com/foiaworks/foiad/internal/portal"
	"github.com/foiaworks/foiad/internal/scheduler"
	"github.com/foiaworks/foiad/internal/server"
	"github.com/foiaworks/foiad/internal/session"
	"github.com/foiaworks/foiad/internal/store"
	"github.com/foiaworks/foiad/internal/store/memory"
	"github.com/foiaworks/foiad/internal/store/postgres"
	"github.com/foiaworks/foiad/internal/tracker"
	"github.com/spf13/cobra"
)

var serveCmd = &cobra.Command{
	Use:     "serve",
	Short:   "Start the foiad server and request engine",
	GroupID: "system",
	// Override PersistentPreRunE so we don't create a client connection.
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error { return nil },
	RunE: func(cmd *cobra.Command, args []string) error {
		logger := slog.New(slog.NewTextHandler(os.Stderr, nil))

		cfg, err := config.Load()
		if err != nil {
			return err
		}

		var st store.Store
		switch cfg.StoreKind {
		case "memory":
			st = memory.New()
			logger.Info("using in-memory store (data is not persisted)")
		default:
			pg, err := postgres.New(cfg.DatabaseURL)
			if err != nil {
				return err
			}
			st = pg
		}

		agencies, err := agency.LoadFile(cfg.AgenciesFile)
		if err != nil {
			st.Close()
			return err
		}

		var publisher events.Publisher
		if cfg.NATSURL != "" {
			pub, err := events.NewNATSPublisher(cfg.NATSURL)
			if err != nil {
				st.Close()
				return err
			}
			publisher = pub
			logger.Info("events enabled", "nats_url", cfg.NATSURL)
		} else {
			publisher = &events.NoopPublisher{}
			logger.Info("events disabled (FOIAD_NATS_URL not set)")
		}

		// Adapter families register here. None ship in this binary;
		// portal integrations are deployment-specific.
		registry := portal.NewRegistry()

		sessions := session.NewManager(st, session.EnvCredentials{}, cfg.SessionMargin, cfg.AuthMaxFailures)
		tr := tracker.New(st)
		backoff := scheduler.NewBackoff(cfg.PollInterval, cfg.PollMaxBackoff, 0.1)
		engine := orchestrator.New(st, registry, sessions, tr, agencies, publisher, backoff, logger)

		limiter := scheduler.NewAgencyLimiter(cfg.AgencyRate, cfg.Workers)
		sched := scheduler.New(st, engine, limiter, cfg.PollInterval, cfg.CallTimeout, cfg.Workers, logger)
		sched.Start()
		logger.Info("scheduler started", "interval", cfg.PollInterval, "workers", cfg.Workers)

		// Archive scheduler, when an S3 destination is configured.
		var archiver *archive.Scheduler
		if cfg.ArchiveInterval > 0 && cfg.ArchiveS3Bucket != "" {
			dest, err := archive.NewS3Destination(
				context.Background(),
				cfg.ArchiveS3Bucket,
				cfg.ArchiveS3Prefix,
				cfg.ArchiveS3Region,
				cfg.ArchiveS3Endpoint,
			)
			if err != nil {
				logger.Error("failed to create S3 archive destination", "err", err)
			} else {
				archiver = archive.NewScheduler(st, []archive.Destination{dest}, cfg.ArchiveInterval, logger)
				archiver.Start()
				logger.Info("archive scheduler started", "bucket", cfg.ArchiveS3Bucket, "interval", cfg.ArchiveInterval)
			}
		}

		srv := server.New(st, engine, tr)
		httpServer := &http.Server{
			Addr:    cfg.HTTPAddr,
			Handler: srv.NewHTTPHandler(cfg.AuthToken),
		}

		go func() {
			logger.Info("HTTP server listening", "addr", cfg.HTTPAddr)
			if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
				logger.Error("HTTP server error", "err", err)
			}
		}()

		logger.Info("foiad server started", "http_addr", cfg.HTTPAddr, "store", cfg.StoreKind)

		// Wait for SIGINT or SIGTERM.
		sigCh := make(chan os.Signal, 1)
		signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
		sig := <-sigCh
		logger.Info("received signal, shutting down", "signal", sig)

		sched.Stop()
		logger.Info("scheduler stopped")

		if archiver != nil {
			archiver.Stop()
			logger.Info("archive scheduler stopped")
		}

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := httpServer.Shutdown(shutdownCtx); err != nil {
			logger.Error("HTTP server shutdown error", "err", err)
		}
		logger.Info("HTTP server stopped")

		if err := publisher.Close(); err != nil {
			logger.Error("error closing publisher", "err", err)
		}
		if err := st.Close(); err != nil {
			logger.Error("error closing store", "err", err)
		}

		logger.Info("shutdown complete")
		return nil
	},
}
