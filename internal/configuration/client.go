package configuration

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"
)

const (
	DefaultServerURL  = "http://localhost:8080"
	DefaultBackendURL = "http://localhost:8090"

	clientConfigDirEnv = "IMGCTL_CONFIG_DIR"
)

// ClientConfig configures the imgctl command line client.
type ClientConfig struct {
	ServerURL     string `toml:"server_url"`
	BackendURL    string `toml:"backend_url"`
	SessionFile   string `toml:"session_file"`
	RedisAddr     string `toml:"redis_addr"`
	RedisPassword string `toml:"redis_password"`
	RedisDB       int    `toml:"redis_db"`
	Profile       string `toml:"profile"`
}

// DefaultClient returns the client defaults rooted at dir.
func DefaultClient(dir string) ClientConfig {
	return ClientConfig{
		ServerURL:   DefaultServerURL,
		BackendURL:  DefaultBackendURL,
		SessionFile: filepath.Join(dir, "session.json"),
		Profile:     "default",
	}
}

// ClientConfigDir is where config.toml and the session file live.
func ClientConfigDir() (string, error) {
	if dir := strings.TrimSpace(os.Getenv(clientConfigDirEnv)); dir != "" {
		return dir, nil
	}
	base, err := os.UserConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(base, "imgctl"), nil
}

// LoadClient reads path (a missing file is not an error) on top of the
// defaults and applies IMGCTL_* environment overrides.
func LoadClient(path string) (ClientConfig, error) {
	cfg := DefaultClient(filepath.Dir(path))

	if _, err := os.Stat(path); err == nil {
		if _, err := toml.DecodeFile(path, &cfg); err != nil {
			return cfg, fmt.Errorf("failed to parse config %s: %w", path, err)
		}
	} else if !os.IsNotExist(err) {
		return cfg, err
	}

	overrides := map[string]*string{
		"IMGCTL_SERVER_URL":   &cfg.ServerURL,
		"IMGCTL_BACKEND_URL":  &cfg.BackendURL,
		"IMGCTL_SESSION_FILE": &cfg.SessionFile,
		"IMGCTL_REDIS_ADDR":   &cfg.RedisAddr,
		"IMGCTL_PROFILE":      &cfg.Profile,
	}
	for key, field := range overrides {
		if v := strings.TrimSpace(os.Getenv(key)); v != "" {
			*field = v
		}
	}
	return cfg, nil
}
