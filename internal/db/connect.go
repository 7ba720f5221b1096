package db

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"net"
	"net/url"
	"sort"
	"strconv"
	"time"

	"github.com/go-sql-driver/mysql"
	_ "github.com/lib/pq"
	_ "github.com/microsoft/go-mssqldb"
	_ "modernc.org/sqlite"

	"querymap/internal/config"
)

type Options struct {
	MaxOpenConns    int
	MaxIdleConns    int
	ConnMaxLifetime time.Duration
	PingTimeout     time.Duration
}

func DefaultOptions() Options {
	return Options{
		MaxOpenConns:    10,
		MaxIdleConns:    10,
		ConnMaxLifetime: 30 * time.Minute,
		PingTimeout:     5 * time.Second,
	}
}

func Open(cfg config.Config, password string, opt Options) (*sql.DB, error) {
	driverName, dsn, err := buildDSN(cfg.DB, password)
	if err != nil {
		return nil, err
	}

	db, err := sql.Open(driverName, dsn)
	if err != nil {
		return nil, err
	}

	if opt.MaxOpenConns > 0 {
		db.SetMaxOpenConns(opt.MaxOpenConns)
	}
	if opt.MaxIdleConns > 0 {
		db.SetMaxIdleConns(opt.MaxIdleConns)
	}
	if opt.ConnMaxLifetime > 0 {
		db.SetConnMaxLifetime(opt.ConnMaxLifetime)
	}

	if opt.PingTimeout <= 0 {
		opt.PingTimeout = 5 * time.Second
	}

	ctx, cancel := context.WithTimeout(context.Background(), opt.PingTimeout)
	defer cancel()

	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, err
	}

	return db, nil
}

func buildDSN(cfg config.DBConfig, password string) (driverName string, dsn string, err error) {
	if cfg.Driver == config.DBDriverSQLite {
		if cfg.Path == "" {
			return "", "", errors.New("db.path is required for sqlite")
		}
		return "sqlite", cfg.Path, nil
	}

	host := cfg.Host
	port := cfg.Port
	user := cfg.User

	if host == "" {
		return "", "", errors.New("db.host is required")
	}
	if port <= 0 || port > 65535 {
		return "", "", errors.New("db.port is invalid")
	}
	if user == "" {
		return "", "", errors.New("db.user is required")
	}

	switch cfg.Driver {
	case config.DBDriverMSSQL:
		u := &url.URL{
			Scheme: "sqlserver",
			User:   url.UserPassword(user, password),
			Host:   net.JoinHostPort(host, strconv.Itoa(port)),
		}
		q := url.Values{}
		for _, k := range sortedKeys(cfg.Params) {
			q.Set(k, cfg.Params[k])
		}
		if cfg.Database != "" {
			q.Set("database", cfg.Database)
		}
		u.RawQuery = q.Encode()
		return "sqlserver", u.String(), nil

	case config.DBDriverMySQL:
		mc := mysql.NewConfig()
		mc.User = user
		mc.Passwd = password
		mc.Net = "tcp"
		mc.Addr = net.JoinHostPort(host, strconv.Itoa(port))
		mc.DBName = cfg.Database
		mc.ParseTime = true
		if len(cfg.Params) > 0 {
			mc.Params = make(map[string]string, len(cfg.Params))
			for k, v := range cfg.Params {
				mc.Params[k] = v
			}
		}
		return "mysql", mc.FormatDSN(), nil

	case config.DBDriverPostgres:
		u := &url.URL{
			Scheme: "postgres",
			User:   url.UserPassword(user, password),
			Host:   net.JoinHostPort(host, strconv.Itoa(port)),
			Path:   "/" + cfg.Database,
		}
		q := url.Values{}
		for _, k := range sortedKeys(cfg.Params) {
			q.Set(k, cfg.Params[k])
		}
		u.RawQuery = q.Encode()
		return "postgres", u.String(), nil

	default:
		return "", "", fmt.Errorf("unsupported driver: %q", cfg.Driver)
	}
}

func sortedKeys(m map[string]string) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// TestConnection opens a short-lived pool with cfg and closes it again.
func TestConnection(ctx context.Context, cfg config.Config, password string) error {
	if ctx == nil {
		ctx = context.Background()
	}
	opt := DefaultOptions()
	if deadline, ok := ctx.Deadline(); ok {
		if d := time.Until(deadline); d > 0 && d < opt.PingTimeout {
			opt.PingTimeout = d
		}
	}
	db, err := Open(cfg, password, opt)
	if err != nil {
		return err
	}
	return db.Close()
}
