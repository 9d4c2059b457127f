package logparse

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// vgerLine builds the fields slice for a request-side syslog line:
// "month day time host vger: request \"gemini/host/path\" status".
func vgerLine(month, day, t, uriTail, status string) []string {
	return []string{month, day, t, "gemini1", "vger:", "request", `"gemini/example.org/` + uriTail + `"`, status}
}

// relaydLine builds the fields slice for a connection-side syslog line,
// with the peer IP at field 12 (§4.4).
func relaydLine(month, day, t, peerIP string) []string {
	return []string{month, day, t, "gemini1", "relayd:", "relay", "gemini", "p", "i", "e1", "e2", "e3", peerIP, "e4"}
}

func TestGeminiParser_Parse_ImmediatePairing(t *testing.T) {
	p := &GeminiParser{}

	ev, stop := p.Parse(2025, vgerLine("Jan", "2", "15:04:05", "a.gmi", "20"))
	assert.Nil(t, ev)
	assert.False(t, stop)

	ev, stop = p.Parse(2025, relaydLine("Jan", "2", "15:04:05", "203.0.113.7"))
	require.NotNil(t, ev)
	assert.False(t, stop)
	assert.Equal(t, "example.org", ev.Host)
	assert.Equal(t, "/a.gmi", ev.URIPath)
	assert.Equal(t, "20", ev.Status)
	assert.Equal(t, 20250102, ev.Date)
	assert.Equal(t, "v4", string(ev.IPFamily))
}

func TestGeminiParser_Parse_ScenarioC(t *testing.T) {
	p := &GeminiParser{}

	const t1 = "15:04:05"
	const t2 = "15:05:10"

	// (a) vger half, time t1, path a.gmi
	ev, stop := p.Parse(2025, vgerLine("Jan", "2", t1, "a.gmi", "20"))
	assert.Nil(t, ev)
	assert.False(t, stop)

	// (b) relayd half, time t2, ipv6 — no vger match yet, gets queued.
	ev, stop = p.Parse(2025, relaydLine("Jan", "2", t2, "2001:db8::1"))
	assert.Nil(t, ev)
	assert.False(t, stop)

	// (c) relayd half, time t1, ipv4 — matches the queued vger (a).
	ev, stop = p.Parse(2025, relaydLine("Jan", "2", t1, "203.0.113.7"))
	require.NotNil(t, ev, "relayd (c) must pair with the still-queued vger (a)")
	assert.False(t, stop)
	assert.Equal(t, "/a.gmi", ev.URIPath)
	assert.Equal(t, "v4", string(ev.IPFamily))
	first := ev

	// (d) vger half, time t2, path b.gmi — matches the queued relayd (b),
	// which must have survived (c)'s arrival untouched.
	ev, stop = p.Parse(2025, vgerLine("Jan", "2", t2, "b.gmi", "20"))
	require.NotNil(t, ev, "vger (d) must pair with the still-queued relayd (b)")
	assert.False(t, stop)
	assert.Equal(t, "/b.gmi", ev.URIPath)
	assert.Equal(t, "v6", string(ev.IPFamily))

	assert.NotEqual(t, first.IPHash, ev.IPHash)
}

func TestGeminiParser_Parse_WatermarkStopIsInclusive(t *testing.T) {
	p := &GeminiParser{Watermark: 20250115}

	_, stop := p.Parse(2025, relaydLine("Jan", "15", "00:00:01", "203.0.113.7"))
	assert.True(t, stop, "date equal to watermark must stop")

	_, stop = p.Parse(2025, relaydLine("Jan", "14", "00:00:01", "203.0.113.7"))
	assert.True(t, stop)

	_, stop = p.Parse(2025, relaydLine("Jan", "16", "00:00:01", "203.0.113.7"))
	assert.False(t, stop)
}

func TestGeminiParser_Parse_UnpairedHalfStaysQueued(t *testing.T) {
	p := &GeminiParser{}

	ev, stop := p.Parse(2025, vgerLine("Jan", "2", "15:04:05", "lonely.gmi", "20"))
	assert.Nil(t, ev)
	assert.False(t, stop)
	assert.Len(t, p.pendingVger, 1)
	assert.Empty(t, p.pendingRelayd)
}

func TestGeminiParser_Parse_NonMatchingLinesIgnored(t *testing.T) {
	p := &GeminiParser{}
	ev, stop := p.Parse(2025, []string{"Jan", "2", "15:04:05", "gemini1", "not-vger-or-relayd"})
	assert.Nil(t, ev)
	assert.False(t, stop)
}
