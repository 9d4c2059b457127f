package logparse

import (
	"strconv"
	"strings"
	"time"

	"github.com/runnerr0/foostats/internal/anonymize"
	"github.com/runnerr0/foostats/internal/event"
)

// vgerHalf is the request-side half of a paired Gemini event (§4.4).
type vgerHalf struct {
	host    string
	uriPath string
	status  string
	date    int
	time    string
}

// relaydHalf is the connection-side half: it carries the peer IP.
type relaydHalf struct {
	ip   string
	date int
	time string
}

// GeminiParser pairs vger (request) and relayd (connection) syslog lines
// that describe the same event into a single Event, matched on
// string-equal timestamps (§4.4).
//
// §9's design note models this as two Option slots flushed on match. A
// strict single-slot reading loses information needed to reproduce the
// worked pairing example in §8 Scenario C, where a second relayd line
// arrives (and must be retained) before the vger line it eventually pairs
// with — so this keeps small queues of unmatched halves instead of single
// slots. The queues are unbounded and are never cleared: an unmatched half
// stays queued for the parser's lifetime, across files, so a caller that
// feeds every vger line before any relayd line has all vger halves queued
// at once. An unmatched half never produces an Event.
type GeminiParser struct {
	// Watermark is the last fully-persisted day for the gemini protocol.
	Watermark int

	pendingVger   []vgerHalf
	pendingRelayd []relaydHalf
}

// Parse feeds one line's whitespace-split fields into the pairing state
// machine. ev is non-nil exactly when this line completed a pair. stop is
// true once a relayd line at or before the watermark has been seen
// (§4.4) — same inclusive-cutoff decision as WebParser, for consistency.
func (p *GeminiParser) Parse(fileYear int, fields []string) (ev *event.Event, stop bool) {
	switch {
	case isVgerLine(fields):
		v, ok := parseVger(fields, fileYear)
		if !ok {
			return nil, false
		}
		if idx := findRelaydMatch(p.pendingRelayd, v.time); idx >= 0 {
			r := p.pendingRelayd[idx]
			p.pendingRelayd = append(p.pendingRelayd[:idx], p.pendingRelayd[idx+1:]...)
			return buildEvent(v, r), false
		}
		p.pendingVger = append(p.pendingVger, v)
		return nil, false

	case isRelaydLine(fields):
		r, ok := parseRelayd(fields, fileYear)
		if !ok {
			return nil, false
		}
		if p.Watermark > 0 && r.date <= p.Watermark {
			stop = true
		}
		if idx := findVgerMatch(p.pendingVger, r.time); idx >= 0 {
			v := p.pendingVger[idx]
			p.pendingVger = append(p.pendingVger[:idx], p.pendingVger[idx+1:]...)
			return buildEvent(v, r), stop
		}
		p.pendingRelayd = append(p.pendingRelayd, r)
		return nil, stop

	default:
		return nil, false
	}
}

func findRelaydMatch(pending []relaydHalf, t string) int {
	for i, r := range pending {
		if r.time == t {
			return i
		}
	}
	return -1
}

func findVgerMatch(pending []vgerHalf, t string) int {
	for i, v := range pending {
		if v.time == t {
			return i
		}
	}
	return -1
}

func buildEvent(v vgerHalf, r relaydHalf) *event.Event {
	ipHash, ipFamily := anonymize.IP(r.ip)
	return &event.Event{
		Protocol: event.ProtocolGemini,
		Host:     v.host,
		IPHash:   ipHash,
		IPFamily: ipFamily,
		Date:     v.date,
		Time:     v.time,
		URIPath:  v.uriPath,
		Status:   v.status,
	}
}

// isVgerLine reports whether fields look like a vger request line:
// "month day HH:MM:SS host vger: ..." (§4.4).
func isVgerLine(fields []string) bool {
	return len(fields) > 4 && fields[4] == "vger:"
}

// isRelaydLine reports whether fields look like a relayd connection line:
// "month day HH:MM:SS host relay gemini... ... peerIP ..." (§4.4).
func isRelaydLine(fields []string) bool {
	return len(fields) > 6 && fields[5] == "relay" && strings.HasPrefix(fields[6], "gemini")
}

// parseVger extracts host/uri_path/status/timestamp from a vger line. The
// request line carries its resource as a quoted "<scheme>/<host>/<uri>"
// token somewhere after field 4; the token immediately following it is
// the status code.
func parseVger(fields []string, fileYear int) (vgerHalf, bool) {
	date, timeStr, ok := parseSyslogTimestamp(fields, fileYear)
	if !ok {
		return vgerHalf{}, false
	}

	for i := 5; i < len(fields); i++ {
		tok := strings.Trim(fields[i], `"`)
		parts := strings.SplitN(tok, "/", 3)
		if len(parts) != 3 {
			continue
		}
		host := parts[1]
		uriPath := "/" + parts[2]
		status := ""
		if i+1 < len(fields) {
			status = strings.Trim(fields[i+1], `"`)
		}
		return vgerHalf{host: host, uriPath: uriPath, status: status, date: date, time: timeStr}, true
	}

	return vgerHalf{}, false
}

// parseRelayd extracts the peer IP and timestamp from a relayd line; the
// peer IP sits at field 12 (§4.4).
func parseRelayd(fields []string, fileYear int) (relaydHalf, bool) {
	if len(fields) <= 12 {
		return relaydHalf{}, false
	}

	date, timeStr, ok := parseSyslogTimestamp(fields, fileYear)
	if !ok {
		return relaydHalf{}, false
	}

	return relaydHalf{ip: fields[12], date: date, time: timeStr}, true
}

var syslogMonths = map[string]time.Month{
	"Jan": time.January, "Feb": time.February, "Mar": time.March,
	"Apr": time.April, "May": time.May, "Jun": time.June,
	"Jul": time.July, "Aug": time.August, "Sep": time.September,
	"Oct": time.October, "Nov": time.November, "Dec": time.December,
}

// parseSyslogTimestamp reads the leading "month day HH:MM:SS" fields
// common to both vger and relayd lines. The year comes from the source
// file's modification time (§4.2, §4.4) since syslog lines carry none.
func parseSyslogTimestamp(fields []string, fileYear int) (date int, hhmmss string, ok bool) {
	if len(fields) < 3 {
		return 0, "", false
	}

	month, ok := syslogMonths[fields[0]]
	if !ok {
		return 0, "", false
	}

	day, err := strconv.Atoi(fields[1])
	if err != nil {
		return 0, "", false
	}

	timePart := fields[2]
	if len(timePart) != 8 || timePart[2] != ':' || timePart[5] != ':' {
		return 0, "", false
	}
	hhmmss = timePart[0:2] + timePart[3:5] + timePart[6:8]

	t := time.Date(fileYear, month, day, 0, 0, 0, 0, time.UTC)
	dateStr := t.Format("20060102")
	date, err = strconv.Atoi(dateStr)
	if err != nil {
		return 0, "", false
	}

	return date, hhmmss, true
}
