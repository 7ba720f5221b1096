package logger

import (
	"io"
	"log"
	"os"
	"path/filepath"
	"strings"

	"querymap/internal/config"
	"querymap/internal/platform/paths"
)

type LoggerService interface {
	Info(msg string)
	Error(msg string, err error)
	Warn(msg string)
	Success(msg string)
	// Named returns a logger that prefixes every line with name, e.g.
	// "[INFO] http: GET /api/health 200".
	Named(name string) LoggerService
	Close() error
}

type level string

const (
	levelInfo  level = "INFO"
	levelWarn  level = "WARN"
	levelError level = "ERROR"
	levelOK    level = "OK"
)

type service struct {
	out   *log.Logger
	scope string
	file  *os.File
}

// New logs to the server log file, and to stderr as well when cfg.Debug is set.
func New(cfg config.Config) (LoggerService, error) {
	logPath, err := paths.LoggerFilePath()
	if err != nil {
		return nil, err
	}
	if err := os.MkdirAll(filepath.Dir(logPath), 0o755); err != nil {
		return nil, err
	}
	f, err := os.OpenFile(logPath, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o600)
	if err != nil {
		return nil, err
	}

	var w io.Writer = f
	if cfg.Debug {
		w = io.MultiWriter(os.Stderr, f)
	}
	return &service{out: log.New(w, "", log.LstdFlags), file: f}, nil
}

func NewStderr() LoggerService { return NewWriter(os.Stderr) }

func NewWriter(w io.Writer) LoggerService {
	return &service{out: log.New(w, "", log.LstdFlags)}
}

func (s *service) Info(msg string) { s.emit(levelInfo, msg) }
func (s *service) Warn(msg string) { s.emit(levelWarn, msg) }
func (s *service) Success(msg string) { s.emit(levelOK, msg) }

func (s *service) Error(msg string, err error) {
	msg = strings.TrimSpace(msg)
	switch {
	case err == nil:
	case msg == "":
		msg = err.Error()
	default:
		msg += ": " + err.Error()
	}
	s.emit(levelError, msg)
}

// Named scopes nest with a dot: Named("api").Named("users") logs "api.users".
// The derived logger shares the parent's output; closing it is a no-op.
func (s *service) Named(name string) LoggerService {
	name = strings.TrimSpace(name)
	if name == "" {
		return s
	}
	if s.scope != "" {
		name = s.scope + "." + name
	}
	return &service{out: s.out, scope: name}
}

func (s *service) Close() error {
	if s.file == nil {
		return nil
	}
	return s.file.Close()
}

func (s *service) emit(lvl level, msg string) {
	msg = strings.TrimSpace(msg)
	if msg == "" {
		return
	}
	if s.scope != "" {
		s.out.Printf("[%s] %s: %s", lvl, s.scope, msg)
		return
	}
	s.out.Printf("[%s] %s", lvl, msg)
}
