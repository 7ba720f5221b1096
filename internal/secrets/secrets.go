package secrets

import (
	"errors"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"querymap/internal/platform/paths"
)

var ErrNotFound = errors.New("secret not found")
var numR = regexp.MustCompile(`[^a-zA-Z0-9._-]+`)

func sanitizeKey(key string) string {
	key = strings.TrimSpace(key)
	key = numR.ReplaceAllString(key, "_")
	if key == "" {
		return "empty"
	}
	return key
}

// EnvName is the environment variable that overrides the stored secret key.
func EnvName(key string) string {
	name := strings.NewReplacer(".", "_", "-", "_").Replace(sanitizeKey(key))
	return "QUERYMAP_SECRET_" + strings.ToUpper(name)
}

func secretFilePath(key string) (string, error) {
	cfgPath, err := paths.ConfigFilePath()
	if err != nil {
		return "", err
	}

	baseDir := filepath.Dir(cfgPath)
	safe := sanitizeKey(key)

	return filepath.Join(baseDir, "secrets", safe+".bin"), nil
}

func Get(key string) ([]byte, error) {
	if v, ok := os.LookupEnv(EnvName(key)); ok {
		return []byte(v), nil
	}

	p, err := secretFilePath(key)
	if err != nil {
		return nil, err
	}

	b, err := os.ReadFile(p)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return []byte(strings.TrimRight(string(b), "\r\n")), nil
}

func Set(key string, value []byte) error {
	p, err := secretFilePath(key)
	if err != nil {
		return err
	}

	if err := os.MkdirAll(filepath.Dir(p), 0o700); err != nil {
		return err
	}

	return os.WriteFile(p, value, 0o600)
}
