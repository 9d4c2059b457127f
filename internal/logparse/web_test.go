package logparse

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// sampleWebLine builds a fields slice at the exact positions §4.3 reads
// from: host@0, timestamp@4, uri_path@7, status@9, fallback IP@1, and
// the forwarded-for override at the penultimate position.
func sampleWebLine(host, date, fallbackIP, uriPath, status, xffOverride string) []string {
	fields := make([]string, 14)
	fields[0] = host
	fields[1] = fallbackIP
	fields[2] = "-"
	fields[3] = "-"
	fields[4] = "[" + date
	fields[5] = "+0000]"
	fields[6] = `"GET`
	fields[7] = uriPath
	fields[8] = `HTTP/1.1"`
	fields[9] = status
	fields[10] = "1024"
	fields[11] = `"-"`
	fields[12] = xffOverride // penultimate
	fields[13] = `"-"`
	return fields
}

func TestWebParser_Parse_Basic(t *testing.T) {
	fields := sampleWebLine("example.org", "02/Jan/2025:15:04:05", "203.0.113.7", "/index.html", "200", "-")
	p := WebParser{}
	ev, stop := p.Parse(fields)
	require.NotNil(t, ev)
	assert.False(t, stop)
	assert.Equal(t, "example.org", ev.Host)
	assert.Equal(t, 20250102, ev.Date)
	assert.Equal(t, "150405", ev.Time)
	assert.Equal(t, "/index.html", ev.URIPath)
	assert.Equal(t, "200", ev.Status)
}

func TestWebParser_Parse_XForwardedForOverride(t *testing.T) {
	// penultimate field is not "-", so it is used as the client IP instead
	// of field[1].
	fields := sampleWebLine("example.org", "02/Jan/2025:15:04:05", "203.0.113.1", "/a.html", "200", "198.51.100.9")
	p := WebParser{}
	ev, _ := p.Parse(fields)
	require.NotNil(t, ev)

	fields2 := sampleWebLine("example.org", "02/Jan/2025:15:04:05", "203.0.113.1", "/a.html", "200", "-")
	ev2, _ := p.Parse(fields2)
	require.NotNil(t, ev2)

	assert.NotEqual(t, ev.IPHash, ev2.IPHash)
}

func TestWebParser_Parse_TooFewFields(t *testing.T) {
	p := WebParser{}
	ev, stop := p.Parse([]string{"a", "b"})
	assert.Nil(t, ev)
	assert.False(t, stop)
}

func TestWebParser_Parse_WatermarkStopIsInclusive(t *testing.T) {
	p := WebParser{Watermark: 20250115}

	onWatermark := sampleWebLine("example.org", "15/Jan/2025:00:00:01", "203.0.113.7", "/x.html", "200", "-")
	_, stop := p.Parse(onWatermark)
	assert.True(t, stop, "date equal to watermark must stop, per scenario F")

	older := sampleWebLine("example.org", "14/Jan/2025:00:00:01", "203.0.113.7", "/x.html", "200", "-")
	_, stop = p.Parse(older)
	assert.True(t, stop)

	newer := sampleWebLine("example.org", "16/Jan/2025:00:00:01", "203.0.113.7", "/x.html", "200", "-")
	_, stop = p.Parse(newer)
	assert.False(t, stop)
}
