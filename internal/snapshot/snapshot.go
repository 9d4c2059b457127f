// Package snapshot reads and writes the per-(protocol,day,host) gzip+JSON
// files that are the durable boundary between ingest and merge (§4.7).
package snapshot

import (
	"compress/gzip"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strconv"
	"strings"

	"github.com/runnerr0/foostats/internal/event"
)

// Store reads and writes snapshots under dir, on behalf of the node named
// localHost.
type Store struct {
	dir       string
	localHost string
}

// New returns a Store rooted at dir for localHost. dir must already exist.
func New(dir, localHost string) *Store {
	return &Store{dir: dir, localHost: localHost}
}

// Write persists every bucket in days, named by event.Key, in ascending
// date_key order (§4.7). Each file is written atomically: JSON, then
// gzip, to a ".tmp" sibling, then renamed over the final path — a partial
// failure leaves either the previous snapshot or nothing, never truncated
// output.
func (s *Store) Write(days map[string]*event.DayStats) error {
	keys := make([]string, 0, len(days))
	for k := range days {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	for _, k := range keys {
		if err := s.writeOne(k, days[k]); err != nil {
			return fmt.Errorf("snapshot: write %s: %w", k, err)
		}
	}
	return nil
}

func (s *Store) writeOne(dateKey string, stats *event.DayStats) error {
	path := s.path(dateKey)
	tmp := path + ".tmp"

	f, err := os.Create(tmp)
	if err != nil {
		return err
	}

	gz := gzip.NewWriter(f)
	enc := json.NewEncoder(gz)
	if err := enc.Encode(stats); err != nil {
		gz.Close()
		f.Close()
		os.Remove(tmp)
		return err
	}
	if err := gz.Close(); err != nil {
		f.Close()
		os.Remove(tmp)
		return err
	}
	if err := f.Close(); err != nil {
		os.Remove(tmp)
		return err
	}

	return os.Rename(tmp, path)
}

func (s *Store) path(dateKey string) string {
	return filepath.Join(s.dir, dateKey+"."+s.localHost+".json.gz")
}

var watermarkDate = regexp.MustCompile(`_(\d{8})\.`)

// Watermark returns the largest YYYYMMDD N such that a snapshot
// "<protocol>_N.<localHost>.json.gz" exists, or 0 if none does (§4.7).
// Glob results are taken in lexical order, which coincides with
// chronological order for fixed-width YYYYMMDD dates.
func (s *Store) Watermark(protocol event.Protocol) (int, error) {
	pattern := filepath.Join(s.dir, string(protocol)+"_*."+s.localHost+".json.gz")
	matches, err := filepath.Glob(pattern)
	if err != nil {
		return 0, fmt.Errorf("snapshot: watermark glob: %w", err)
	}
	if len(matches) == 0 {
		return 0, nil
	}

	sort.Strings(matches)
	last := matches[len(matches)-1]

	m := watermarkDate.FindStringSubmatch(filepath.Base(last))
	if m == nil {
		return 0, nil
	}
	date, err := strconv.Atoi(m[1])
	if err != nil {
		return 0, nil
	}
	return date, nil
}

// Loaded tags a decoded DayStats with the provenance the Merger needs:
// which protocol produced it and which file it came from (§4.7).
type Loaded struct {
	Protocol event.Protocol
	Path     string
	Stats    *event.DayStats
}

var snapshotName = regexp.MustCompile(`^(web|gemini)_(\d{8})\.(.+)\.json\.gz$`)

// Load returns every snapshot on disk for date, across every protocol and
// host, tagged with provenance (§4.7).
func (s *Store) Load(date int) ([]Loaded, error) {
	entries, err := os.ReadDir(s.dir)
	if err != nil {
		return nil, fmt.Errorf("snapshot: read dir: %w", err)
	}

	wantSuffix := "_" + strconv.Itoa(date) + "."
	var loaded []Loaded
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		name := entry.Name()
		if !strings.Contains(name, wantSuffix) {
			continue
		}
		m := snapshotName.FindStringSubmatch(name)
		if m == nil {
			continue
		}

		path := filepath.Join(s.dir, name)
		stats, err := readOne(path)
		if err != nil {
			return nil, fmt.Errorf("snapshot: load %s: %w", path, err)
		}
		loaded = append(loaded, Loaded{Protocol: event.Protocol(m[1]), Path: path, Stats: stats})
	}
	return loaded, nil
}

func readOne(path string) (*event.DayStats, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	gz, err := gzip.NewReader(f)
	if err != nil {
		return nil, err
	}
	defer gz.Close()

	stats := event.NewDayStats()
	if err := json.NewDecoder(gz).Decode(stats); err != nil {
		return nil, err
	}
	return stats, nil
}
