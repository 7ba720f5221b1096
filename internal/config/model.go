package config

import (
	"time"

	"querymap/internal/descriptor"
)

type DBDriver string

const (
	DBDriverMSSQL    DBDriver = "mssql"
	DBDriverMySQL    DBDriver = "mysql"
	DBDriverPostgres DBDriver = "postgres"
	DBDriverSQLite   DBDriver = "sqlite"
)

type DBConfig struct {
	Driver   DBDriver          `yaml:"driver"`
	Host     string            `yaml:"host"`
	Port     int               `yaml:"port"`
	User     string            `yaml:"user"`
	Database string            `yaml:"database"`
	Path     string            `yaml:"path,omitempty"`
	Params   map[string]string `yaml:"params,omitempty"`
}

// QueryConfig bounds every executed query. With ReadOnly set the daemon
// refuses to start while any declared operation is not a plain read.
type QueryConfig struct {
	Timeout  time.Duration `yaml:"timeout"`
	MaxRows  int           `yaml:"maxRows"`
	ReadOnly bool          `yaml:"readOnly"`
}

type TelemetryConfig struct {
	OTLPEndpoint string `yaml:"otlpEndpoint,omitempty"`
	ServiceName  string `yaml:"serviceName,omitempty"`
}

type Config struct {
	APIListen   string                   `yaml:"apiListen"`
	BearerToken string                   `yaml:"bearerToken"`
	Debug       bool                     `yaml:"debug"`
	DB          DBConfig                 `yaml:"db"`
	Query       QueryConfig              `yaml:"query"`
	Telemetry   TelemetryConfig          `yaml:"telemetry,omitempty"`
	Operations  []descriptor.Declaration `yaml:"operations"`
}

func DBDriverValues() []DBDriver {
	return []DBDriver{DBDriverMSSQL, DBDriverMySQL, DBDriverPostgres, DBDriverSQLite}
}

func DBDriverOptions() []string {
	vals := DBDriverValues()
	out := make([]string, 0, len(vals))
	for _, v := range vals {
		out = append(out, string(v))
	}
	return out
}

func Default() Config {
	return Config{
		APIListen:   "127.0.0.1:8080",
		BearerToken: "",
		DB: DBConfig{
			Driver:   DBDriverMSSQL,
			Host:     "localhost",
			Port:     1433,
			Database: "",
			User:     "",
		},
		Query: QueryConfig{
			Timeout:  8 * time.Second,
			MaxRows:  10000,
			ReadOnly: true,
		},
		Telemetry: TelemetryConfig{
			ServiceName: "querymapd",
		},
		Operations: []descriptor.Declaration{
			{
				Name:   "users.list",
				Query:  "SELECT USER_NAME, USER_EMAIL FROM USERS_MASTER",
				Target: "users.User",
			},
		},
	}
}
