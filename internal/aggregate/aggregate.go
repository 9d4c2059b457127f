// Package aggregate owns the day-keyed statistics map mutated by the
// filter's decisions and accepted Events (§4.6).
package aggregate

import (
	"regexp"

	"github.com/runnerr0/foostats/internal/event"
	"github.com/runnerr0/foostats/internal/filter"
)

var (
	atomFeedPath = regexp.MustCompile(`^/gemfeed/atom\.xml(?:[?#].*)?$`)
	gemfeedPath  = regexp.MustCompile(`^/gemfeed/(?:index\.gmi)?(?:[?#].*)?$`)
)

// Aggregator holds one DayStats bucket per (protocol, date) key, created
// lazily on first use (§3).
type Aggregator struct {
	filter *filter.Filter
	days   map[string]*event.DayStats
}

// New returns an Aggregator that consults f for every Event.
func New(f *filter.Filter) *Aggregator {
	return &Aggregator{filter: f, days: make(map[string]*event.DayStats)}
}

// Days returns the accumulated buckets, keyed by event.Key(protocol,date).
func (a *Aggregator) Days() map[string]*event.DayStats {
	return a.days
}

// Add is the Aggregator's single operation (§4.6): it consults the
// filter, then updates counters, feed sets, or page sets depending on the
// verdict and the event's uri_path.
func (a *Aggregator) Add(ev *event.Event) error {
	key := event.Key(ev.Protocol, ev.Date)
	stats, ok := a.days[key]
	if !ok {
		stats = event.NewDayStats()
		a.days[key] = stats
	}

	decision, err := a.filter.Check(ev)
	if err != nil {
		return err
	}
	if decision == filter.Block {
		stats.Count[event.CountFiltered]++
		return nil
	}

	stats.Count[string(ev.Protocol)]++
	stats.Count[string(ev.IPFamily)]++

	switch {
	case atomFeedPath.MatchString(ev.URIPath):
		stats.FeedIPs[event.FeedAtom][ev.IPHash]++
		return nil
	case gemfeedPath.MatchString(ev.URIPath):
		stats.FeedIPs[event.FeedGemfeed][ev.IPHash]++
		return nil
	}

	if hasPageSuffix(ev.URIPath) {
		addHit(stats.PageIPs.Hosts, ev.Host, ev.IPHash)
		addHit(stats.PageIPs.URLs, ev.Host+ev.URIPath, ev.IPHash)
	}

	return nil
}

func hasPageSuffix(uriPath string) bool {
	return hasSuffixBeforeQuery(uriPath, ".html") || hasSuffixBeforeQuery(uriPath, ".gmi")
}

// hasSuffixBeforeQuery reports whether path, stripped of any trailing
// "?..." or "#..." suffix, ends in suffix.
func hasSuffixBeforeQuery(path, suffix string) bool {
	clean := path
	for i, c := range path {
		if c == '?' || c == '#' {
			clean = path[:i]
			break
		}
	}
	if len(clean) < len(suffix) {
		return false
	}
	return clean[len(clean)-len(suffix):] == suffix
}

func addHit(m map[string]map[string]int, key, ipHash string) {
	bucket, ok := m[key]
	if !ok {
		bucket = make(map[string]int)
		m[key] = bucket
	}
	bucket[ipHash]++
}
