// Command eraserd serves the inpainting and background API in front of an
// IOPaint server.
package main

import (
	"context"
	"errors"
	"flag"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/getsentry/sentry-go"
	"github.com/sirupsen/logrus"

	"magic-eraser/internal/config"
	"magic-eraser/internal/inpaint"
	"magic-eraser/internal/server"
	"magic-eraser/internal/version"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		logrus.Fatalf("Invalid configuration: %v", err)
	}

	listenAddress := flag.String("listen", cfg.ListenAddr, "The address to listen on.")
	logLevel := flag.String("loglevel", "info", "The log level (debug, info, warn, error).")
	flag.Parse()

	level, err := logrus.ParseLevel(*logLevel)
	if err != nil {
		logrus.Fatalf("Invalid log level: %v", err)
	}
	logrus.SetLevel(level)
	logrus.SetFormatter(&logrus.TextFormatter{
		FullTimestamp: true,
	})

	if cfg.SentryDSN != "" {
		if err := sentry.Init(sentry.ClientOptions{
			Dsn:         cfg.SentryDSN,
			Environment: cfg.Environment,
			Release:     version.Version,
		}); err != nil {
			logrus.Fatalf("sentry.Init: %s", err)
		}
		defer sentry.Flush(2 * time.Second)
	}

	client := inpaint.NewClient(cfg.IOPaintURL, cfg.IOPaintTimeout)
	cached, err := inpaint.NewCachedInpainter(client, cfg.CacheMaxBytes)
	if err != nil {
		logrus.Fatalf("Failed to create result cache: %v", err)
	}
	defer cached.Close()

	api := server.New(client,
		server.WithInpainter(cached),
		server.WithAllowedUpstreams(cfg.AllowedIOPaintURLs...),
	)
	srv := &http.Server{
		Addr:              *listenAddress,
		Handler:           api.Router(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	logrus.WithFields(logrus.Fields{
		"addr":    *listenAddress,
		"iopaint": client.BaseURL(),
		"version": version.Version,
	}).Info("starting server")

	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logrus.WithField("event", "start server").Fatal(err)
		}
	}()

	waitForShutdown(srv)
}

func waitForShutdown(srv *http.Server) {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGHUP, syscall.SIGTERM, syscall.SIGQUIT)
	defer stop()
	<-ctx.Done()

	logrus.Info("Shutting down...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logrus.WithError(err).Warn("Graceful shutdown failed")
	}
}
