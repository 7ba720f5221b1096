package main

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"net/http"

	"go.uber.org/multierr"

	"querymap/internal/api"
	"querymap/internal/config"
	"querymap/internal/db"
	"querymap/internal/descriptor"
	"querymap/internal/intercept"
	"querymap/internal/logger"
	"querymap/internal/secrets"
	"querymap/internal/telemetry"
	"querymap/internal/users"
)

type serverApp struct {
	cfg       config.Config
	logSvc    logger.LoggerService
	dbConn    *sql.DB
	srv       *http.Server
	errCh     chan error
	telemetry func(context.Context) error
}

func dbPasswordKey(driver config.DBDriver) string {
	return "db_password_" + string(driver)
}

func loadConfig(path string) (config.Config, error) {
	if path != "" {
		return config.LoadFile(path)
	}
	return config.Load()
}

func dbPassword(cfg config.Config, log logger.LoggerService) string {
	if cfg.DB.Driver == config.DBDriverSQLite {
		return ""
	}
	b, err := secrets.Get(dbPasswordKey(cfg.DB.Driver))
	if err != nil {
		if !errors.Is(err, secrets.ErrNotFound) {
			log.Error("failed to load db password", err)
		} else {
			log.Warn("no db password stored; connecting without one")
		}
		return ""
	}
	return string(b)
}

// buildEngine registers the known target types, resolves the configured
// operations against them and puts exec underneath. With query.readOnly set,
// every declared query must pass db.CheckOperations.
func buildEngine(cfg config.Config, exec intercept.Executor) (*intercept.Engine, *users.Service, error) {
	catalog := descriptor.NewCatalog()
	if err := users.Register(catalog); err != nil {
		return nil, nil, err
	}

	reg, err := descriptor.FromDeclarations(cfg.Operations, catalog)
	if err != nil {
		return nil, nil, err
	}

	if cfg.Query.ReadOnly {
		if err := db.CheckOperations(reg); err != nil {
			return nil, nil, fmt.Errorf("query.readOnly: %w", err)
		}
	}

	engine := intercept.NewEngine(reg, exec)

	var svc *users.Service
	if _, ok := reg.Lookup(users.ListOp); ok {
		svc, err = users.NewService(engine)
		if err != nil {
			return nil, nil, err
		}
	}
	return engine, svc, nil
}

func (a *serverApp) Start(configPath string) error {
	bootstrapLog := logger.NewStderr()

	cfg, err := loadConfig(configPath)
	if err != nil {
		if errors.Is(err, config.ErrNotFound) {
			bootstrapLog.Error("config not found; write one or pass -config", nil)
			return err
		}
		bootstrapLog.Error("failed to load config", err)
		return err
	}
	if err := cfg.Validate(); err != nil {
		bootstrapLog.Error("config validation error", err)
		return err
	}
	a.cfg = cfg

	logSvc, err := logger.New(cfg)
	if err != nil {
		bootstrapLog.Error("logger init failed; using stderr", err)
		logSvc = bootstrapLog
	}
	a.logSvc = logSvc

	shutdown, err := telemetry.Setup(cfg.Telemetry)
	if err != nil {
		logSvc.Error("telemetry setup failed; tracing disabled", err)
		shutdown = func(context.Context) error { return nil }
	}
	a.telemetry = shutdown

	dbConn, err := db.Open(cfg, dbPassword(cfg, logSvc), db.DefaultOptions())
	if err != nil {
		logSvc.Error("db connection failed", err)
		_ = a.Stop(context.Background())
		return err
	}
	a.dbConn = dbConn

	exec := db.NewExecutor(dbConn, cfg.Query)
	engine, svc, err := buildEngine(cfg, exec)
	if err != nil {
		logSvc.Error("operation registration failed", err)
		_ = a.Stop(context.Background())
		return err
	}

	srv, err := api.NewServer(cfg, api.ServerDeps{
		Engine: engine,
		DB:     exec,
		Users:  svc,
		Logger: logSvc,
	})
	if err != nil {
		logSvc.Error("config validation error", err)
		_ = a.Stop(context.Background())
		return err
	}
	a.srv = srv

	a.errCh = make(chan error, 1)
	go func() {
		a.errCh <- srv.ListenAndServe()
	}()

	logSvc.Info(fmt.Sprintf("querymapd listening on %s with %d operations", srv.Addr, engine.Registry().Len()))
	return nil
}

func (a *serverApp) Stop(ctx context.Context) error {
	if ctx == nil {
		ctx = context.Background()
	}
	var err error
	if a.srv != nil {
		err = multierr.Append(err, a.srv.Shutdown(ctx))
	}
	if a.dbConn != nil {
		err = multierr.Append(err, a.dbConn.Close())
	}
	if a.telemetry != nil {
		err = multierr.Append(err, a.telemetry(ctx))
	}
	if a.logSvc != nil {
		if err != nil {
			a.logSvc.Error("shutdown error", err)
		}
		err = multierr.Append(err, a.logSvc.Close())
	}
	return err
}

func (a *serverApp) Errors() <-chan error {
	return a.errCh
}

func (a *serverApp) Logger() logger.LoggerService {
	return a.logSvc
}
