package snapshot

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/runnerr0/foostats/internal/event"
)

func TestStore_WriteThenLoad_RoundTrips(t *testing.T) {
	dir := t.TempDir()
	s := New(dir, "node1")

	stats := event.NewDayStats()
	stats.Count[event.CountWeb] = 3
	stats.FeedIPs[event.FeedAtom]["H1"] = 2
	stats.PageIPs.Hosts["example.org"] = map[string]int{"H1": 1}

	days := map[string]*event.DayStats{
		event.Key(event.ProtocolWeb, 20250101): stats,
	}
	require.NoError(t, s.Write(days))

	loaded, err := s.Load(20250101)
	require.NoError(t, err)
	require.Len(t, loaded, 1)
	assert.Equal(t, event.ProtocolWeb, loaded[0].Protocol)
	assert.Equal(t, 3, loaded[0].Stats.Count[event.CountWeb])
	assert.Equal(t, 2, loaded[0].Stats.FeedIPs[event.FeedAtom]["H1"])
	assert.Equal(t, 1, loaded[0].Stats.PageIPs.Hosts["example.org"]["H1"])
}

func TestStore_Write_AscendingOrderDoesNotAffectContent(t *testing.T) {
	dir := t.TempDir()
	s := New(dir, "node1")

	days := map[string]*event.DayStats{
		event.Key(event.ProtocolWeb, 20250103): event.NewDayStats(),
		event.Key(event.ProtocolWeb, 20250101): event.NewDayStats(),
		event.Key(event.ProtocolWeb, 20250102): event.NewDayStats(),
	}
	require.NoError(t, s.Write(days))

	for _, d := range []int{20250101, 20250102, 20250103} {
		loaded, err := s.Load(d)
		require.NoError(t, err)
		assert.Len(t, loaded, 1)
	}
}

func TestStore_Watermark_NoSnapshotsIsZero(t *testing.T) {
	s := New(t.TempDir(), "node1")
	wm, err := s.Watermark(event.ProtocolWeb)
	require.NoError(t, err)
	assert.Equal(t, 0, wm)
}

func TestStore_Watermark_TakesMaxDate(t *testing.T) {
	dir := t.TempDir()
	s := New(dir, "node1")

	days := map[string]*event.DayStats{
		event.Key(event.ProtocolWeb, 20250101): event.NewDayStats(),
		event.Key(event.ProtocolWeb, 20250115): event.NewDayStats(),
		event.Key(event.ProtocolWeb, 20250110): event.NewDayStats(),
		event.Key(event.ProtocolGemini, 20250131): event.NewDayStats(),
	}
	require.NoError(t, s.Write(days))

	wm, err := s.Watermark(event.ProtocolWeb)
	require.NoError(t, err)
	assert.Equal(t, 20250115, wm)

	gwm, err := s.Watermark(event.ProtocolGemini)
	require.NoError(t, err)
	assert.Equal(t, 20250131, gwm)
}

func TestStore_Load_OnlyReturnsMatchingDate(t *testing.T) {
	dir := t.TempDir()
	s := New(dir, "node1")

	days := map[string]*event.DayStats{
		event.Key(event.ProtocolWeb, 20250101): event.NewDayStats(),
		event.Key(event.ProtocolGemini, 20250101): event.NewDayStats(),
		event.Key(event.ProtocolWeb, 20250102): event.NewDayStats(),
	}
	require.NoError(t, s.Write(days))

	loaded, err := s.Load(20250101)
	require.NoError(t, err)
	assert.Len(t, loaded, 2)
}

func TestStore_Load_AcrossMultipleHosts(t *testing.T) {
	dir := t.TempDir()
	node1 := New(dir, "node1")
	node2 := New(dir, "node2")

	require.NoError(t, node1.Write(map[string]*event.DayStats{
		event.Key(event.ProtocolWeb, 20250105): event.NewDayStats(),
	}))
	require.NoError(t, node2.Write(map[string]*event.DayStats{
		event.Key(event.ProtocolWeb, 20250105): event.NewDayStats(),
	}))

	loaded, err := node1.Load(20250105)
	require.NoError(t, err)
	assert.Len(t, loaded, 2, "Load must return snapshots from every host, not just localHost")
}
