package logparse

import (
	"strconv"
	"strings"
	"time"

	"github.com/runnerr0/foostats/internal/anonymize"
	"github.com/runnerr0/foostats/internal/event"
)

// WebParser converts combined/forwarded-style access-log lines into
// Events (§4.3). It is stateless beyond the watermark it was constructed
// with.
type WebParser struct {
	// Watermark is the last fully-persisted day for the web protocol
	// (§3). A line dated at or before it has already been captured by a
	// prior run, so Parse signals stop rather than re-counting it.
	Watermark int
}

// Parse extracts an Event from one line's whitespace-split fields.
// Malformed lines (too few fields, unparseable timestamp) are skipped
// silently — returns (nil, false) — per the §7 "parse tolerated" policy.
// stop is true when the line's date has already been captured by a prior
// run (§4.3); the caller should finish the current file and stop.
func (p WebParser) Parse(fields []string) (ev *event.Event, stop bool) {
	if len(fields) < 10 {
		return nil, false
	}

	host := fields[0]

	date, timeStr, ok := parseApacheTimestamp(fields[4])
	if !ok {
		return nil, false
	}

	penultimate := fields[len(fields)-2]
	ipField := penultimate
	if penultimate == "-" {
		ipField = fields[1]
	}

	ipHash, ipFamily := anonymize.IP(ipField)

	ev = &event.Event{
		Protocol: event.ProtocolWeb,
		Host:     host,
		IPHash:   ipHash,
		IPFamily: ipFamily,
		Date:     date,
		Time:     timeStr,
		URIPath:  fields[7],
		Status:   fields[9],
	}

	// Decision (documented in DESIGN.md): the cutoff is inclusive of the
	// watermark day itself, matching the worked example in §8 Scenario F
	// rather than the strict "<" read literally in §4.3 — the watermark
	// day's snapshot has already been written, so re-seeing it signals
	// stop too.
	if p.Watermark > 0 && date <= p.Watermark {
		stop = true
	}

	return ev, stop
}

// parseApacheTimestamp parses a bracketed combined-log timestamp field
// like "[02/Jan/2025:15:04:05" into (YYYYMMDD, "HHMMSS").
func parseApacheTimestamp(field string) (date int, hhmmss string, ok bool) {
	field = strings.TrimPrefix(field, "[")

	parts := strings.SplitN(field, ":", 2)
	if len(parts) != 2 {
		return 0, "", false
	}
	datePart, timePart := parts[0], parts[1]

	t, err := time.Parse("02/Jan/2006", datePart)
	if err != nil {
		return 0, "", false
	}

	if len(timePart) != 8 || timePart[2] != ':' || timePart[5] != ':' {
		return 0, "", false
	}
	hhmmss = timePart[0:2] + timePart[3:5] + timePart[6:8]

	dateStr := t.Format("20060102")
	date, err = strconv.Atoi(dateStr)
	if err != nil {
		return 0, "", false
	}

	return date, hhmmss, true
}
