package config

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// DefaultConfigPath is the config file location used when the operator
// doesn't override it.
const DefaultConfigPath = "~/.config/foostats/config.yaml"

// Config holds every setting foostats' phases need.
type Config struct {
	StatsDir  string   `yaml:"stats_dir"`
	LocalHost string   `yaml:"local_host"`
	Peers     []string `yaml:"peers"`

	PatternsFile string `yaml:"patterns_file"`
	FilterLog    string `yaml:"filter_log"`

	WindowDays                int `yaml:"window_days"`
	ForceRefreshDays          int `yaml:"force_refresh_days"`
	ReplicationTimeoutSeconds int `yaml:"replication_timeout_seconds"`

	WebLogGlob          string `yaml:"web_log_glob"`
	GeminiVgerLogGlob   string `yaml:"gemini_vger_log_glob"`
	GeminiRelaydLogGlob string `yaml:"gemini_relayd_log_glob"`

	AuditDBPath string `yaml:"audit_db_path"`
}

// Load reads a YAML config file at path and merges it over defaults.
// Returns an error if the file cannot be read or contains invalid YAML.
func Load(path string) (*Config, error) {
	cfg := DefaultConfig()

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config file: %w", err)
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parsing config file: %w", err)
	}

	if err := cfg.resolvePaths(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// resolvePaths expands a leading ~ on stats_dir, patterns_file, filter_log
// and audit_db_path, the same way expandPath already does for
// DefaultConfigPath. The log glob fields are used as written. DefaultConfig's
// literal "~/..." values are only ever handed to callers through Load or
// LoadOrCreateAt, so callers never see an unexpanded path.
func (c *Config) resolvePaths() error {
	var err error
	if c.StatsDir, err = expandPath(c.StatsDir); err != nil {
		return fmt.Errorf("expanding stats_dir: %w", err)
	}
	if c.PatternsFile, err = expandPath(c.PatternsFile); err != nil {
		return fmt.Errorf("expanding patterns_file: %w", err)
	}
	if c.FilterLog, err = expandPath(c.FilterLog); err != nil {
		return fmt.Errorf("expanding filter_log: %w", err)
	}
	if c.AuditDBPath, err = expandPath(c.AuditDBPath); err != nil {
		return fmt.Errorf("expanding audit_db_path: %w", err)
	}
	return nil
}

// expandPath replaces a leading ~ with the user's home directory.
func expandPath(path string) (string, error) {
	if len(path) > 0 && path[0] == '~' {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("resolving home directory: %w", err)
		}
		return filepath.Join(home, path[1:]), nil
	}
	return path, nil
}

// LoadOrCreate loads the config from the default path, creating it with
// defaults on first run.
func LoadOrCreate() (*Config, error) {
	path, err := expandPath(DefaultConfigPath)
	if err != nil {
		return nil, err
	}
	return LoadOrCreateAt(path)
}

// LoadOrCreateAt loads the config from path. If the file does not exist,
// it creates the directory structure and writes defaults.
func LoadOrCreateAt(path string) (*Config, error) {
	if _, err := os.Stat(path); os.IsNotExist(err) {
		cfg := DefaultConfig()

		dir := filepath.Dir(path)
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, fmt.Errorf("creating config directory: %w", err)
		}

		data, err := yaml.Marshal(cfg)
		if err != nil {
			return nil, fmt.Errorf("marshaling default config: %w", err)
		}

		if err := os.WriteFile(path, data, 0644); err != nil {
			return nil, fmt.Errorf("writing default config: %w", err)
		}

		if err := cfg.resolvePaths(); err != nil {
			return nil, err
		}

		return cfg, nil
	}

	return Load(path)
}
