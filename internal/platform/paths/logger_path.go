package paths

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
)

// LoggerFilePath puts the server log next to the config file unless
// QUERYMAP_LOG names another location.
func LoggerFilePath() (string, error) {
	if p := strings.TrimSpace(os.Getenv(LogEnv)); p != "" {
		return p, nil
	}
	cfgPath, err := ConfigFilePath()
	if err != nil {
		return "", errors.New("unsupported OS for machine-wide logger")
	}
	return filepath.Join(filepath.Dir(cfgPath), "server.log"), nil
}
