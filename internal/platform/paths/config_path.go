package paths

import (
	"errors"
	"os"
	"path/filepath"
	"runtime"
	"strings"
)

const AppName = "querymap"

const (
	ConfigEnv = "QUERYMAP_CONFIG"
	LogEnv    = "QUERYMAP_LOG"
)

func ConfigFilePath() (string, error) {
	if p := strings.TrimSpace(os.Getenv(ConfigEnv)); p != "" {
		return p, nil
	}
	dir, err := appDir()
	if err != nil {
		return "", errors.New("unsupported OS for machine-wide config")
	}
	return filepath.Join(dir, "config.yaml"), nil
}

func appDir() (string, error) {
	switch runtime.GOOS {
	case "windows":
		programData := os.Getenv("PROGRAMDATA")
		if programData == "" {
			programData = `C:\ProgramData`
		}
		return filepath.Join(programData, AppName), nil
	case "linux", "darwin", "freebsd":
		return filepath.Join("/etc", AppName), nil
	default:
		return "", errors.New("unsupported OS")
	}
}
