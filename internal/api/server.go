package api

import (
	"errors"
	"net"
	"net/http"
	"strconv"
	"strings"
	"time"

	"querymap/internal/api/handlers"
	"querymap/internal/api/middleware"
	"querymap/internal/api/utils"
	"querymap/internal/config"
	"querymap/internal/intercept"
	"querymap/internal/logger"
	"querymap/internal/users"
)

type ServerDeps struct {
	Engine *intercept.Engine
	DB     handlers.Pinger
	Users  *users.Service
	Logger logger.LoggerService
}

func NewServer(cfg config.Config, deps ServerDeps) (*http.Server, error) {
	addr := strings.TrimSpace(cfg.APIListen)
	if err := validateListenAddr(addr); err != nil {
		return nil, err
	}

	token := strings.TrimSpace(cfg.BearerToken)
	if token == "" {
		return nil, errors.New("bearerToken is required")
	}
	if deps.Engine == nil {
		return nil, errors.New("engine is required")
	}

	return &http.Server{
		Addr:              addr,
		Handler:           NewHandler(token, deps),
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       10 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       60 * time.Second,
	}, nil
}

// NewHandler builds the routed, authenticated and logged API handler.
func NewHandler(token string, deps ServerDeps) http.Handler {
	var httpLog, opLog logger.LoggerService
	if deps.Logger != nil {
		httpLog = deps.Logger.Named("http")
		opLog = deps.Logger.Named("operations")
	}

	mux := http.NewServeMux()
	mux.Handle("GET /api/health", handlers.NewHealthHandler(deps.DB))
	mux.Handle("GET /api/operations", handlers.NewOperationsListHandler(deps.Engine))
	mux.Handle("POST /api/operations/{name}", handlers.NewInvokeHandler(deps.Engine, opLog))
	if deps.Users != nil {
		mux.Handle("POST /api/users", handlers.NewUsersHandler(deps.Users, opLog))
	}
	mux.HandleFunc("/api/", notFoundHandler)

	return middleware.Logging(httpLog, true, middleware.Auth(token, mux))
}

func validateListenAddr(addr string) error {
	if addr == "" {
		return errors.New("apiListen is required")
	}

	host, portStr, err := net.SplitHostPort(addr)
	if err != nil {
		return errors.New("apiListen must be in host:port format")
	}
	if host == "" {
		return errors.New("apiListen host is required")
	}

	port, err := strconv.Atoi(portStr)
	if err != nil || port < 1 || port > 65535 {
		return errors.New("apiListen port is invalid")
	}

	return nil
}

func notFoundHandler(w http.ResponseWriter, r *http.Request) {
	utils.Problem{Status: http.StatusNotFound, Message: "Not found", Code: "NOT_FOUND"}.Write(w)
}
