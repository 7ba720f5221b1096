package db_test

import (
	"context"
	"database/sql"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"querymap/internal/config"
	"querymap/internal/db"
	"querymap/internal/descriptor"
	"querymap/internal/intercept"
	"querymap/internal/mapping"
)

type member struct {
	Name   string `column:"USER_NAME"`
	Email  string `column:"USER_EMAIL"`
	Visits int64  `column:"VISITS"`
}

func openSQLite(t *testing.T) *sql.DB {
	t.Helper()
	cfg := config.Default()
	cfg.DB = config.DBConfig{Driver: config.DBDriverSQLite, Path: filepath.Join(t.TempDir(), "users.db")}

	conn, err := db.Open(cfg, "", db.DefaultOptions())
	require.NoError(t, err)
	t.Cleanup(func() { _ = conn.Close() })

	_, err = conn.Exec(`CREATE TABLE users_master (user_name TEXT, user_email TEXT, visits INTEGER)`)
	require.NoError(t, err)
	_, err = conn.Exec(`INSERT INTO users_master (user_name, user_email, visits) VALUES
		('alice', 'alice@example.com', 3),
		('bob', NULL, 0),
		('carol', 'carol@example.com', 12)`)
	require.NoError(t, err)
	return conn
}

func TestExecutorQueryRecords(t *testing.T) {
	conn := openSQLite(t)
	exec := db.NewExecutor(conn, config.QueryConfig{Timeout: 5 * time.Second})

	recs, err := exec.QueryRecords(context.Background(), "SELECT user_name, user_email, visits FROM users_master ORDER BY user_name")
	require.NoError(t, err)
	require.Len(t, recs, 3)
	assert.Equal(t, mapping.Record{"user_name": "alice", "user_email": "alice@example.com", "visits": int64(3)}, recs[0])
	assert.Nil(t, recs[1]["user_email"])
}

func TestExecutorRowLimit(t *testing.T) {
	conn := openSQLite(t)
	exec := db.NewExecutor(conn, config.QueryConfig{MaxRows: 2})

	_, err := exec.QueryRecords(context.Background(), "SELECT user_name FROM users_master")
	assert.ErrorIs(t, err, db.ErrRowLimit)
}

func TestExecutorRowLimitAllowsExactCount(t *testing.T) {
	conn := openSQLite(t)
	exec := db.NewExecutor(conn, config.QueryConfig{MaxRows: 3})

	recs, err := exec.QueryRecords(context.Background(), "SELECT user_name FROM users_master")
	require.NoError(t, err)
	assert.Len(t, recs, 3)
}

func TestExecutorEmptyResult(t *testing.T) {
	conn := openSQLite(t)
	exec := db.NewExecutor(conn, config.QueryConfig{})

	recs, err := exec.QueryRecords(context.Background(), "SELECT user_name FROM users_master WHERE visits < 0")
	require.NoError(t, err)
	assert.Equal(t, []mapping.Record{}, recs)
}

func TestExecutorNilDB(t *testing.T) {
	exec := db.NewExecutor(nil, config.QueryConfig{})
	_, err := exec.QueryRecords(context.Background(), "SELECT 1")
	assert.Error(t, err)
	assert.Error(t, exec.Ping(context.Background()))
}

func TestEngineOverSQLite(t *testing.T) {
	conn := openSQLite(t)
	reg, err := descriptor.NewRegistry(
		descriptor.MustFor[member]("members.list", "SELECT user_name, user_email, visits FROM users_master ORDER BY visits DESC"),
		descriptor.MustFor[member]("members.broken", "SELECT user_name, CAST(visits AS TEXT) AS visits FROM users_master"),
		descriptor.MustFor[member]("members.badsql", "SELECT nope FROM missing_table"),
	)
	require.NoError(t, err)
	engine := intercept.NewEngine(reg, db.NewExecutor(conn, config.QueryConfig{}))

	list := intercept.MustBind[member](engine, "members.list")
	got, err := list(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []member{
		{Name: "carol", Email: "carol@example.com", Visits: 12},
		{Name: "alice", Email: "alice@example.com", Visits: 3},
		{Name: "bob", Visits: 0},
	}, got)

	out, err := engine.Invoke(context.Background(), intercept.Call{Operation: "members.broken"})
	assert.ErrorIs(t, err, mapping.ErrTypeMismatch)
	assert.Nil(t, out)

	_, err = engine.Invoke(context.Background(), intercept.Call{Operation: "members.badsql"})
	assert.ErrorIs(t, err, intercept.ErrQueryExecution)
}
