// Package merge combines per-(protocol,host) snapshots for a date into a
// single fleet-wide MergedDay (§4.8).
package merge

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/runnerr0/foostats/internal/event"
	"github.com/runnerr0/foostats/internal/snapshot"
)

const (
	FeedTotal         = "Total"
	FeedGeminiGemfeed = "Gemini Gemfeed"
	FeedGeminiAtom    = "Gemini Atom"
	FeedWebGemfeed    = "Web Gemfeed"
	FeedWebAtom       = "Web Atom"
)

// MergedDay is the day-level view produced by merging every
// (protocol,host) snapshot for one date (§3).
type MergedDay struct {
	Count   map[string]int
	FeedIPs map[string]int
	PageIPs MergedPageIPs
}

// MergedPageIPs holds the host and URL unique-visitor cardinalities.
type MergedPageIPs struct {
	Hosts map[string]int
	URLs  map[string]int
}

// Merger reads snapshots from a Store and merges them into MergedDays.
type Merger struct {
	store *snapshot.Store
}

// New returns a Merger reading from store.
func New(store *snapshot.Store) *Merger {
	return &Merger{store: store}
}

// MergeDate loads every snapshot for date across protocol and host and
// merges them (§4.8). An empty result (no snapshots at all) yields a
// MergedDay of all-zero counters, not an error.
func (m *Merger) MergeDate(date int) (MergedDay, error) {
	loaded, err := m.store.Load(date)
	if err != nil {
		return MergedDay{}, fmt.Errorf("merge: load %d: %w", date, err)
	}

	count, err := mergeCounters(loaded)
	if err != nil {
		return MergedDay{}, fmt.Errorf("merge: counters for %d: %w", date, err)
	}

	return MergedDay{
		Count:   count,
		FeedIPs: mergeFeedCardinalities(loaded),
		PageIPs: mergePageCardinalities(loaded),
	}, nil
}

// MergeWindow merges the `days`-day window ending at today (inclusive),
// keyed by YYYYMMDD date. The default window is 31 days (§4.8).
func (m *Merger) MergeWindow(today, days int) (map[int]MergedDay, error) {
	t, err := time.Parse("20060102", fmt.Sprintf("%08d", today))
	if err != nil {
		return nil, fmt.Errorf("merge: bad date %d: %w", today, err)
	}

	result := make(map[int]MergedDay, days)
	for i := 0; i < days; i++ {
		d := t.AddDate(0, 0, -i)
		date, err := strconv.Atoi(d.Format("20060102"))
		if err != nil {
			return nil, err
		}
		merged, err := m.MergeDate(date)
		if err != nil {
			return nil, err
		}
		result[date] = merged
	}
	return result, nil
}

// mergeCounters sums every loaded `count` map via the polymorphic Value
// merge rule (§4.8 item 2, item 5): missing keys default to 0, and a
// non-numeric collision is fatal.
func mergeCounters(loaded []snapshot.Loaded) (map[string]int, error) {
	acc := Map(map[string]Value{})
	for _, l := range loaded {
		leaves := make(map[string]Value, len(l.Stats.Count))
		for k, v := range l.Stats.Count {
			leaves[k] = Number(v)
		}
		merged, err := acc.Merge(Map(leaves))
		if err != nil {
			return nil, err
		}
		acc = merged
	}

	out := make(map[string]int, len(acc.Entries()))
	for k, v := range acc.Entries() {
		out[k] = v.Int()
	}
	return out, nil
}

// mergeFeedCardinalities splits feed_ips by protocol, merges ip_hash hit
// counts within each protocol-feed bucket, and emits the fixed five-key
// cardinality result (§4.8 item 3).
func mergeFeedCardinalities(loaded []snapshot.Loaded) map[string]int {
	geminiGemfeed := map[string]int{}
	geminiAtom := map[string]int{}
	webGemfeed := map[string]int{}
	webAtom := map[string]int{}

	for _, l := range loaded {
		switch l.Protocol {
		case event.ProtocolGemini:
			mergeHitCounts(geminiGemfeed, l.Stats.FeedIPs[event.FeedGemfeed])
			mergeHitCounts(geminiAtom, l.Stats.FeedIPs[event.FeedAtom])
		case event.ProtocolWeb:
			mergeHitCounts(webGemfeed, l.Stats.FeedIPs[event.FeedGemfeed])
			mergeHitCounts(webAtom, l.Stats.FeedIPs[event.FeedAtom])
		}
	}

	total := map[string]int{}
	for _, bucket := range []map[string]int{geminiGemfeed, geminiAtom, webGemfeed, webAtom} {
		for ipHash := range bucket {
			total[ipHash] = 1
		}
	}

	return map[string]int{
		FeedTotal:         len(total),
		FeedGeminiGemfeed: len(geminiGemfeed),
		FeedGeminiAtom:    len(geminiAtom),
		FeedWebGemfeed:    len(webGemfeed),
		FeedWebAtom:       len(webAtom),
	}
}

func mergeHitCounts(dst, src map[string]int) {
	for ipHash, n := range src {
		dst[ipHash] += n
	}
}

// mergePageCardinalities merges page_ips.hosts and page_ips.urls across
// every loaded snapshot, normalizing `.gmi` URLs to their `.html`
// sibling before merging, then collapses each merged ip_hash map to its
// cardinality (§4.8 item 4).
func mergePageCardinalities(loaded []snapshot.Loaded) MergedPageIPs {
	hosts := map[string]map[string]int{}
	urls := map[string]map[string]int{}

	for _, l := range loaded {
		for host, ipmap := range l.Stats.PageIPs.Hosts {
			mergeInto(hosts, host, ipmap)
		}
		for url, ipmap := range l.Stats.PageIPs.URLs {
			mergeInto(urls, normalizeURL(url), ipmap)
		}
	}

	return MergedPageIPs{
		Hosts: cardinalities(hosts),
		URLs:  cardinalities(urls),
	}
}

func mergeInto(dst map[string]map[string]int, key string, src map[string]int) {
	bucket, ok := dst[key]
	if !ok {
		bucket = make(map[string]int, len(src))
		dst[key] = bucket
	}
	mergeHitCounts(bucket, src)
}

func cardinalities(m map[string]map[string]int) map[string]int {
	out := make(map[string]int, len(m))
	for k, ipmap := range m {
		out[k] = len(ipmap)
	}
	return out
}

// normalizeURL rewrites a ".gmi" page suffix to ".html" so the Gemini and
// HTTP forms of the same page collapse into one merge key (§4.8 item 4).
// Page URLs carry any "?..."/"#..." suffix verbatim (aggregate.go's
// hasSuffixBeforeQuery), so the suffix check and rewrite both happen
// before that trailing query/fragment rather than at the literal string
// end.
func normalizeURL(url string) string {
	clean, tail := url, ""
	for i, c := range url {
		if c == '?' || c == '#' {
			clean, tail = url[:i], url[i:]
			break
		}
	}
	if strings.HasSuffix(clean, ".gmi") {
		return strings.TrimSuffix(clean, ".gmi") + ".html" + tail
	}
	return url
}
