package secrets

import (
	"errors"
	"path/filepath"
	"testing"
)

func TestSetGet(t *testing.T) {
	t.Setenv("QUERYMAP_CONFIG", filepath.Join(t.TempDir(), "config.yaml"))

	if _, err := Get("db_password_mssql"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}

	if err := Set("db_password_mssql", []byte("s3cret\n")); err != nil {
		t.Fatalf("set: %v", err)
	}
	got, err := Get("db_password_mssql")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if string(got) != "s3cret" {
		t.Fatalf("expected s3cret, got %q", got)
	}

	t.Setenv(EnvName("db_password_mssql"), "from-env")
	got, err = Get("db_password_mssql")
	if err != nil {
		t.Fatalf("get env: %v", err)
	}
	if string(got) != "from-env" {
		t.Fatalf("env override ignored: %q", got)
	}
}

func TestEnvName(t *testing.T) {
	if got := EnvName("db.password-mssql"); got != "QUERYMAP_SECRET_DB_PASSWORD_MSSQL" {
		t.Fatalf("unexpected env name %q", got)
	}
}
