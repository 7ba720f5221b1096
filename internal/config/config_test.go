package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"querymap/internal/descriptor"
)

func TestParseOverridesDefaults(t *testing.T) {
	cfg, err := Parse([]byte(`
apiListen: 0.0.0.0:9090
bearerToken: secret
db:
  driver: sqlite
  path: /tmp/users.db
query:
  timeout: 2s
operations:
  - name: users.active
    query: SELECT USER_NAME FROM USERS_MASTER WHERE ACTIVE = 1
    target: users.User
`))
	require.NoError(t, err)

	assert.Equal(t, "0.0.0.0:9090", cfg.APIListen)
	assert.Equal(t, DBDriverSQLite, cfg.DB.Driver)
	assert.Equal(t, "/tmp/users.db", cfg.DB.Path)
	assert.Equal(t, 2*time.Second, cfg.Query.Timeout)
	assert.Equal(t, 10000, cfg.Query.MaxRows)
	assert.True(t, cfg.Query.ReadOnly)
	assert.Equal(t, []descriptor.Declaration{{
		Name:   "users.active",
		Query:  "SELECT USER_NAME FROM USERS_MASTER WHERE ACTIVE = 1",
		Target: "users.User",
	}}, cfg.Operations)
	require.NoError(t, cfg.Validate())
}

func TestParseInvalidYAML(t *testing.T) {
	_, err := Parse([]byte("db: [unterminated"))
	assert.Error(t, err)
}

func TestSaveAndLoadFile(t *testing.T) {
	p := filepath.Join(t.TempDir(), "nested", "config.yaml")
	cfg := Default()
	cfg.BearerToken = "tok"
	cfg.DB.Params = map[string]string{"encrypt": "disable"}

	require.NoError(t, SaveFile(p, cfg))
	info, err := os.Stat(p)
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0o600), info.Mode().Perm())

	got, err := LoadFile(p)
	require.NoError(t, err)
	assert.Equal(t, cfg, got)
}

func TestLoadFileMissing(t *testing.T) {
	_, err := LoadFile(filepath.Join(t.TempDir(), "absent.yaml"))
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestLoadOrDefaultUsesEnvPath(t *testing.T) {
	t.Setenv("QUERYMAP_CONFIG", filepath.Join(t.TempDir(), "config.yaml"))
	cfg, err := LoadOrDefault()
	require.NoError(t, err)
	assert.Equal(t, Default(), cfg)
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{name: "bad driver", mutate: func(c *Config) { c.DB.Driver = "oracle" }},
		{name: "negative timeout", mutate: func(c *Config) { c.Query.Timeout = -time.Second }},
		{name: "negative max rows", mutate: func(c *Config) { c.Query.MaxRows = -1 }},
		{name: "op without name", mutate: func(c *Config) { c.Operations[0].Name = "" }},
		{name: "op without query", mutate: func(c *Config) { c.Operations[0].Query = " " }},
		{name: "op without target", mutate: func(c *Config) { c.Operations[0].Target = "" }},
		{name: "duplicate op", mutate: func(c *Config) { c.Operations = append(c.Operations, c.Operations[0]) }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.mutate(&cfg)
			assert.Error(t, cfg.Validate())
		})
	}
	assert.NoError(t, Default().Validate())
}
