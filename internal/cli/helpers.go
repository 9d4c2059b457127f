package cli

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/runnerr0/foostats/internal/config"
)

// loadConfig resolves globals.Config (falling back to the default path),
// loads it (creating it with defaults on first run), and creates the stats
// directory and the audit database's directory, the way the teacher's
// openDefaultStore creates its database directory before opening it.
func loadConfig(globals *GlobalFlags) (*config.Config, error) {
	var cfg *config.Config
	var err error
	if globals != nil && globals.Config != "" {
		cfg, err = config.Load(globals.Config)
	} else {
		cfg, err = config.LoadOrCreate()
	}
	if err != nil {
		return nil, err
	}

	if err := os.MkdirAll(cfg.StatsDir, 0755); err != nil {
		return nil, fmt.Errorf("creating stats directory: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(cfg.AuditDBPath), 0755); err != nil {
		return nil, fmt.Errorf("creating audit db directory: %w", err)
	}

	return cfg, nil
}

// todayDate returns the current local date as YYYYMMDD.
func todayDate() int {
	d, _ := parseDate(time.Now().Format("20060102"))
	return d
}

// parseDate parses a YYYYMMDD string into an int, validating it's a real
// calendar date.
func parseDate(s string) (int, error) {
	if len(s) != 8 {
		return 0, fmt.Errorf("invalid date %q: want YYYYMMDD", s)
	}
	if _, err := time.Parse("20060102", s); err != nil {
		return 0, fmt.Errorf("invalid date %q: %w", s, err)
	}
	return strconv.Atoi(s)
}
