package config

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"gopkg.in/yaml.v3"

	"querymap/internal/platform/paths"
)

var ErrNotFound = errors.New("config not found")

func Load() (Config, error) {
	p, err := paths.ConfigFilePath()
	if err != nil {
		return Config{}, err
	}
	return LoadFile(p)
}

func LoadFile(p string) (Config, error) {
	f, err := os.Open(p)
	if err != nil {
		if os.IsNotExist(err) {
			return Config{}, ErrNotFound
		}
		return Config{}, err
	}
	defer f.Close()

	b, err := io.ReadAll(f)
	if err != nil {
		return Config{}, err
	}
	return Parse(b)
}

// Parse decodes b over Default(), so keys missing from the file keep their
// default values.
func Parse(b []byte) (Config, error) {
	cfg := Default()
	if err := yaml.Unmarshal(b, &cfg); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func LoadOrDefault() (Config, error) {
	cfg, err := Load()
	if err == nil {
		return cfg, nil
	}
	if errors.Is(err, ErrNotFound) {
		return Default(), nil
	}
	return Config{}, err
}

func Save(cfg Config) error {
	p, err := paths.ConfigFilePath()
	if err != nil {
		return err
	}
	return SaveFile(p, cfg)
}

func SaveFile(p string, cfg Config) error {
	dir := filepath.Dir(p)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return err
	}

	out, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}

	tmp, err := os.CreateTemp(dir, "config-*.tmp")
	if err != nil {
		return err
	}
	tmpName := tmp.Name()

	_ = tmp.Chmod(0o600)
	_, writeErr := tmp.Write(out)
	syncErr := tmp.Sync()
	closeErr := tmp.Close()

	if writeErr != nil || syncErr != nil || closeErr != nil {
		_ = os.Remove(tmpName)
		if writeErr != nil {
			return writeErr
		}
		if syncErr != nil {
			return syncErr
		}
		return closeErr
	}

	if err := os.Rename(tmpName, p); err != nil {
		_ = os.Remove(tmpName)
		return err
	}
	return nil
}

// Validate checks the parts of the config the daemon cannot start without.
func (c Config) Validate() error {
	if !slices.Contains(DBDriverValues(), c.DB.Driver) {
		return fmt.Errorf("db.driver must be one of %s", strings.Join(DBDriverOptions(), ", "))
	}
	if c.Query.Timeout < 0 {
		return errors.New("query.timeout must not be negative")
	}
	if c.Query.MaxRows < 0 {
		return errors.New("query.maxRows must not be negative")
	}
	seen := make(map[string]struct{}, len(c.Operations))
	for i, op := range c.Operations {
		name := strings.TrimSpace(op.Name)
		if name == "" {
			return fmt.Errorf("operations[%d].name is required", i)
		}
		if strings.TrimSpace(op.Query) == "" {
			return fmt.Errorf("operations[%d].query is required", i)
		}
		if strings.TrimSpace(op.Target) == "" {
			return fmt.Errorf("operations[%d].target is required", i)
		}
		if _, ok := seen[name]; ok {
			return fmt.Errorf("operations[%d]: duplicate name %q", i, name)
		}
		seen[name] = struct{}{}
	}
	return nil
}
