package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"querymap/internal/db"
	"querymap/internal/logger"
)

func main() {
	configPath := flag.String("config", "", "path to config.yaml (defaults to $QUERYMAP_CONFIG or the machine-wide path)")
	checkDB := flag.Bool("check-db", false, "test the database connection and exit")
	flag.Parse()

	if *checkDB {
		os.Exit(runCheck(*configPath))
	}

	app := &serverApp{}
	if err := app.Start(*configPath); err != nil {
		os.Exit(1)
	}
	logSvc := app.Logger()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)

	select {
	case err := <-app.Errors():
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			logSvc.Error("server stopped", err)
			_ = app.Stop(context.Background())
			os.Exit(1)
		}
	case sig := <-sigCh:
		logSvc.Info(fmt.Sprintf("shutdown signal: %s", sig))
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := app.Stop(ctx); err != nil {
			os.Exit(1)
		}
		if err := <-app.Errors(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			os.Exit(1)
		}
	}
}

func runCheck(configPath string) int {
	log := logger.NewStderr()

	cfg, err := loadConfig(configPath)
	if err != nil {
		log.Error("failed to load config", err)
		return 1
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := db.TestConnection(ctx, cfg, dbPassword(cfg, log)); err != nil {
		log.Error("db connection failed", err)
		return 1
	}
	log.Success(fmt.Sprintf("connected to %s", cfg.DB.Driver))
	return 0
}
