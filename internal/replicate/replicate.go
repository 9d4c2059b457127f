// Package replicate fetches peer snapshots over HTTPS with a
// force-refresh window for the most recent days (§4.7, §6).
package replicate

import (
	"database/sql"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strconv"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"github.com/runnerr0/foostats/internal/event"
)

const (
	forceRefreshDays  = 3
	defaultTimeout    = 30 * time.Second
	defaultWindowDays = 31
)

// Replicator pulls peer snapshots into a local stats directory,
// best-effort, and records every attempt in a SQLite audit log.
type Replicator struct {
	statsDir string
	peers    []string
	client   *http.Client
	auditDB  *sql.DB

	windowDays       int
	forceRefreshDays int
}

// Open opens (creating if absent) the audit database at auditDBPath and
// returns a Replicator that will fetch from peers into statsDir.
func Open(statsDir, auditDBPath string, peers []string, timeout time.Duration) (*Replicator, error) {
	if timeout <= 0 {
		timeout = defaultTimeout
	}

	db, err := sql.Open("sqlite3", auditDBPath)
	if err != nil {
		return nil, fmt.Errorf("replicate: open audit db: %w", err)
	}
	if err := newMigrationRunner(db).run(); err != nil {
		db.Close()
		return nil, fmt.Errorf("replicate: migrate audit db: %w", err)
	}

	return &Replicator{
		statsDir:         statsDir,
		peers:            peers,
		client:           &http.Client{Timeout: timeout},
		auditDB:          db,
		windowDays:       defaultWindowDays,
		forceRefreshDays: forceRefreshDays,
	}, nil
}

// Close closes the audit database.
func (r *Replicator) Close() error {
	return r.auditDB.Close()
}

// Run fetches, for every peer and both protocols, snapshots for the
// window of days ending at today (newest-first), force-refreshing the
// newest forceRefreshDays and otherwise fetching only when the local file
// is absent (§6, Scenario E). Individual fetch failures are logged to the
// audit trail and do not abort the run (§5, §7).
func (r *Replicator) Run(today int) error {
	days := windowDates(today, r.windowDays)

	for _, peer := range r.peers {
		for _, protocol := range []event.Protocol{event.ProtocolWeb, event.ProtocolGemini} {
			for i, date := range days {
				forced := i < r.forceRefreshDays
				r.fetchOne(peer, protocol, date, forced)
			}
		}
	}
	return nil
}

// windowDates returns the window of `count` days ending at today,
// newest-first, as YYYYMMDD integers.
func windowDates(today, count int) []int {
	t, err := time.Parse("20060102", fmt.Sprintf("%08d", today))
	if err != nil {
		return nil
	}

	dates := make([]int, count)
	for i := 0; i < count; i++ {
		d := t.AddDate(0, 0, -i)
		dates[i], _ = strconv.Atoi(d.Format("20060102"))
	}
	return dates
}

// fetchOne fetches a single (peer, protocol, date) snapshot if forced or
// locally absent. Failures are non-fatal (§5, §7): they are recorded to
// the audit trail and otherwise swallowed.
func (r *Replicator) fetchOne(peer string, protocol event.Protocol, date int, forced bool) {
	basename := fmt.Sprintf("%s_%d.%s.json.gz", protocol, date, peer)
	localPath := filepath.Join(r.statsDir, basename)

	if !forced {
		if _, err := os.Stat(localPath); err == nil {
			return
		}
	}

	url := fmt.Sprintf("https://%s/foostats/%s", peer, basename)
	err := r.download(url, localPath)
	r.recordAttempt(peer, protocol, date, forced, err)
}

func (r *Replicator) download(url, localPath string) error {
	resp, err := r.client.Get(url)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("non-2xx status %d", resp.StatusCode)
	}

	tmp := localPath + ".tmp"
	f, err := os.Create(tmp)
	if err != nil {
		return err
	}

	if _, err := io.Copy(f, resp.Body); err != nil {
		f.Close()
		os.Remove(tmp)
		return err
	}
	if err := f.Close(); err != nil {
		os.Remove(tmp)
		return err
	}

	return os.Rename(tmp, localPath)
}

func (r *Replicator) recordAttempt(peer string, protocol event.Protocol, date int, forced bool, fetchErr error) {
	detail := ""
	succeeded := fetchErr == nil
	if fetchErr != nil {
		detail = fetchErr.Error()
	}
	_, _ = r.auditDB.Exec(
		`INSERT INTO fetch_log (peer, protocol, date_key, forced, succeeded, detail) VALUES (?, ?, ?, ?, ?, ?)`,
		peer, string(protocol), date, forced, succeeded, detail,
	)
}
