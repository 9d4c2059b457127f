// Package filter decides allow/block for an Event and maintains the
// dedicated decision log (§4.5).
package filter

import (
	"bufio"
	"fmt"
	"os"
	"strings"

	"github.com/runnerr0/foostats/internal/event"
)

// Decision is the filter's verdict on one Event.
type Decision int

const (
	Accept Decision = iota
	Block
)

// Filter applies, in order, a sticky per-run block set, a substring
// pattern blocklist, and a per-second rate cap (§4.5). It is not safe for
// concurrent use — an ingest run owns exactly one Filter (§5).
type Filter struct {
	patterns []string

	blocked map[string]struct{}

	lastTime string
	counts   map[string]int

	log     *os.File
	written map[string]struct{}
}

// New constructs a Filter whose odd-pattern list is loaded from
// patternsFile and whose decision log is appended to logPath. An
// unreadable patterns file or an unopenable log file is fatal (§4.5, §7).
func New(patternsFile, logPath string) (*Filter, error) {
	patterns, err := loadPatterns(patternsFile)
	if err != nil {
		return nil, fmt.Errorf("filter: patterns: %w", err)
	}

	logFile, err := os.OpenFile(logPath, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0644)
	if err != nil {
		return nil, fmt.Errorf("filter: log: %w", err)
	}

	return &Filter{
		patterns: patterns,
		blocked:  make(map[string]struct{}),
		counts:   make(map[string]int),
		log:      logFile,
		written:  make(map[string]struct{}),
	}, nil
}

// loadPatterns reads one substring pattern per line, ignoring blank lines
// and lines whose first non-whitespace character is '#' (§6).
func loadPatterns(path string) ([]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	var patterns []string
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		patterns = append(patterns, line)
	}
	return patterns, scanner.Err()
}

// Close flushes and closes the decision log.
func (f *Filter) Close() error {
	return f.log.Close()
}

// Check applies the sticky-block → odd-pattern → excessive-rate decision
// order to ev and returns the verdict. Every decision is logged once per
// subject (§4.5); write failures are fatal.
func (f *Filter) Check(ev *event.Event) (Decision, error) {
	if _, blocked := f.blocked[ev.IPHash]; blocked {
		return f.decide(Block, ev.IPHash, "WARN", "sticky block")
	}

	if pattern, hit := f.matchPattern(ev.URIPath); hit {
		f.blocked[ev.IPHash] = struct{}{}
		return f.decide(Block, ev.URIPath, "WARN", "odd pattern: "+pattern)
	}

	if f.excessiveRate(ev) {
		f.blocked[ev.IPHash] = struct{}{}
		return f.decide(Block, ev.IPHash, "WARN", "excessive rate")
	}

	return f.decide(Accept, ev.URIPath, "OK", "accepted")
}

func (f *Filter) matchPattern(uriPath string) (pattern string, hit bool) {
	for _, p := range f.patterns {
		if strings.Contains(uriPath, p) {
			return p, true
		}
	}
	return "", false
}

// excessiveRate enforces one accepted Event per ip_hash per distinct
// `time` string. Log lines arrive in non-decreasing time order, so this
// caps any IP at one request per second (§4.5).
func (f *Filter) excessiveRate(ev *event.Event) bool {
	if ev.Time != f.lastTime {
		f.lastTime = ev.Time
		f.counts = make(map[string]int)
	}
	f.counts[ev.IPHash]++
	return f.counts[ev.IPHash] > 1
}

// decide writes a deduplicated log line for subject (first occurrence
// only, per §4.5) and returns d unchanged, wrapping any write error.
func (f *Filter) decide(d Decision, subject, severity, message string) (Decision, error) {
	if _, done := f.written[subject]; done {
		return d, nil
	}
	f.written[subject] = struct{}{}

	if _, err := fmt.Fprintf(f.log, "%s: %s %s\n", severity, subject, message); err != nil {
		return d, fmt.Errorf("filter: log write: %w", err)
	}
	return d, nil
}
