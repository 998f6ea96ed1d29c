package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"github.com/bigbadman-lab/onesol/internal/catalog"
	"github.com/bigbadman-lab/onesol/internal/logger"
	"github.com/bigbadman-lab/onesol/internal/server"
	"github.com/bigbadman-lab/onesol/internal/store"
	"github.com/bigbadman-lab/onesol/internal/trace"
)

func must(err error) {
	if err != nil {
		log.Fatal(err)
	}
}

func main() {
	_ = godotenv.Load()
	must(logger.Init())
	if err := trace.Init(); err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize tracer: %v\n", err)
	}

	ctx := context.Background()

	cfg, err := store.LoadConfig("config.yaml")
	if err != nil {
		if os.IsNotExist(err) {
			logger.Info(ctx, "No config.yaml found, using defaults")
			cfg = store.Default()
		} else {
			log.Fatal(err)
		}
	}

	repo, err := server.OpenRepo(cfg.Server.DBPath)
	must(err)
	defer repo.Close()

	hub := server.NewHub()
	go hub.Run()
	defer hub.Close()

	retention, err := server.NewRetention(repo, cfg.Server.RetentionCron, cfg.Server.RetentionDays)
	must(err)
	retention.Start()
	defer retention.Stop()

	cat := catalog.NewStatic()
	srv := server.NewServer(cfg.Server.Port, server.NewRouter(cat, repo, hub))

	go func() {
		logger.Info(ctx, "Catalog server listening",
			"addr", srv.Addr, "trades", cat.Size(), "db", cfg.Server.DBPath)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal(err)
		}
	}()

	sigc := make(chan os.Signal, 1)
	signal.Notify(sigc, syscall.SIGINT, syscall.SIGTERM)
	<-sigc

	logger.Info(ctx, "Shutting down")
	shutdownCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.ErrorWithErr(ctx, "Server shutdown failed", err)
	}
}
