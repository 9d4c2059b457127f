// Package event holds the normalized request record (Event) and the
// per-(protocol,date) accumulator it feeds (DayStats). Both are pure data:
// no I/O, no behavior beyond what their own invariants require.
package event

import (
	"strconv"

	"github.com/runnerr0/foostats/internal/anonymize"
)

// Protocol identifies which of the two served protocols a request used.
type Protocol string

const (
	ProtocolWeb    Protocol = "web"
	ProtocolGemini Protocol = "gemini"
)

// Event is the normalized in-memory representation of one request (§3).
// It is produced by a parser, consumed by the filter and the aggregator,
// and then discarded — no Event is ever persisted.
type Event struct {
	Protocol Protocol
	Host     string
	IPHash   string
	IPFamily anonymize.Family
	Date     int    // YYYYMMDD, local time
	Time     string // wall-clock, comparable for equality; HHMMSS granularity
	URIPath  string
	Status   string
}

// DayStats is the (protocol, date) accumulator for one node (§3). Its zero
// value has nil maps and cannot be written to; NewDayStats returns a
// ready-to-use empty bucket. Day buckets are created lazily.
type DayStats struct {
	Count   map[string]int            `json:"count"`
	FeedIPs map[string]map[string]int `json:"feed_ips"`
	PageIPs PageIPs                   `json:"page_ips"`
}

// PageIPs holds the two per-page-accounting maps described in §3.
type PageIPs struct {
	Hosts map[string]map[string]int `json:"hosts"`
	URLs  map[string]map[string]int `json:"urls"`
}

// Feed set names used as keys into DayStats.FeedIPs.
const (
	FeedAtom    = "atom_feed"
	FeedGemfeed = "gemfeed"
)

// Recognized Count keys. Snapshots from peers may carry others; those are
// preserved verbatim by the merger (§3) rather than rejected.
const (
	CountFiltered = "filtered"
	CountWeb      = "web"
	CountGemini   = "gemini"
	CountV4       = "v4"
	CountV6       = "v6"
)

// NewDayStats returns an empty, fully-initialized DayStats bucket.
func NewDayStats() *DayStats {
	return &DayStats{
		Count: make(map[string]int),
		FeedIPs: map[string]map[string]int{
			FeedAtom:    make(map[string]int),
			FeedGemfeed: make(map[string]int),
		},
		PageIPs: PageIPs{
			Hosts: make(map[string]map[string]int),
			URLs:  make(map[string]map[string]int),
		},
	}
}

// Key returns the snapshot bucket key "<protocol>_<YYYYMMDD>" for (p, date).
func Key(p Protocol, date int) string {
	return string(p) + "_" + strconv.Itoa(date)
}
