package merge

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/runnerr0/foostats/internal/event"
	"github.com/runnerr0/foostats/internal/snapshot"
)

func TestValue_Merge_NumbersAdd(t *testing.T) {
	v, err := Number(3).Merge(Number(4))
	require.NoError(t, err)
	assert.Equal(t, 7, v.Int())
}

func TestValue_Merge_MapsRecurseAndSumLeaves(t *testing.T) {
	a := Map(map[string]Value{"x": Number(1), "y": Number(2)})
	b := Map(map[string]Value{"y": Number(3), "z": Number(4)})
	v, err := a.Merge(b)
	require.NoError(t, err)
	assert.Equal(t, 1, v.Entries()["x"].Int())
	assert.Equal(t, 5, v.Entries()["y"].Int())
	assert.Equal(t, 4, v.Entries()["z"].Int())
}

func TestValue_Merge_TypeMismatchIsFatal(t *testing.T) {
	_, err := Number(1).Merge(Map(map[string]Value{"a": Number(1)}))
	assert.Error(t, err)
}

func TestNormalizeURL_StripsQueryBeforeGmiSuffixCheck(t *testing.T) {
	assert.Equal(t, "example.org/post.html?utm_source=x", normalizeURL("example.org/post.gmi?utm_source=x"))
	assert.Equal(t, "example.org/post.html#frag", normalizeURL("example.org/post.gmi#frag"))
	assert.Equal(t, "example.org/post.html", normalizeURL("example.org/post.html"))
}

func TestMerger_MergeDate_ScenarioD_URLNormalizationAcrossProtocols(t *testing.T) {
	dir := t.TempDir()
	store := snapshot.New(dir, "node1")

	geminiStats := event.NewDayStats()
	geminiStats.PageIPs.URLs["example.org/post.gmi"] = map[string]int{"Hx": 1}

	webStats := event.NewDayStats()
	webStats.PageIPs.URLs["example.org/post.html"] = map[string]int{"Hx": 1}

	require.NoError(t, store.Write(map[string]*event.DayStats{
		event.Key(event.ProtocolGemini, 20250201): geminiStats,
		event.Key(event.ProtocolWeb, 20250201):    webStats,
	}))

	merged, err := New(store).MergeDate(20250201)
	require.NoError(t, err)
	assert.Equal(t, 1, merged.PageIPs.URLs["example.org/post.html"], "union of identical hashes normalizes to a single visitor")
	assert.NotContains(t, merged.PageIPs.URLs, "example.org/post.gmi")
}

func TestMerger_MergeDate_MergeIdempotence(t *testing.T) {
	dir := t.TempDir()
	store := snapshot.New(dir, "node1")

	stats := event.NewDayStats()
	stats.Count[event.CountWeb] = 5
	stats.Count[event.CountV4] = 5
	stats.FeedIPs[event.FeedAtom]["H1"] = 3
	stats.PageIPs.Hosts["example.org"] = map[string]int{"H1": 1, "H2": 1}
	stats.PageIPs.URLs["example.org/a.html"] = map[string]int{"H1": 1}

	require.NoError(t, store.Write(map[string]*event.DayStats{
		event.Key(event.ProtocolWeb, 20250301): stats,
	}))

	merged, err := New(store).MergeDate(20250301)
	require.NoError(t, err)

	assert.Equal(t, 5, merged.Count[event.CountWeb])
	assert.Equal(t, 5, merged.Count[event.CountV4])
	assert.Equal(t, 1, merged.FeedIPs[FeedWebAtom], "cardinality collapse: hit-count 3 for one ip_hash becomes cardinality 1")
	assert.Equal(t, 2, merged.PageIPs.Hosts["example.org"])
	assert.Equal(t, 1, merged.PageIPs.URLs["example.org/a.html"])
}

func TestMerger_MergeDate_CountersSumAcrossHosts(t *testing.T) {
	dir := t.TempDir()
	node1 := snapshot.New(dir, "node1")
	node2 := snapshot.New(dir, "node2")

	s1 := event.NewDayStats()
	s1.Count[event.CountWeb] = 2
	s2 := event.NewDayStats()
	s2.Count[event.CountWeb] = 3
	s2.Count[event.CountFiltered] = 1

	require.NoError(t, node1.Write(map[string]*event.DayStats{event.Key(event.ProtocolWeb, 20250401): s1}))
	require.NoError(t, node2.Write(map[string]*event.DayStats{event.Key(event.ProtocolWeb, 20250401): s2}))

	merged, err := New(node1).MergeDate(20250401)
	require.NoError(t, err)
	assert.Equal(t, 5, merged.Count[event.CountWeb])
	assert.Equal(t, 1, merged.Count[event.CountFiltered])
}

func TestMerger_MergeDate_NoSnapshotsYieldsEmptyMergedDay(t *testing.T) {
	dir := t.TempDir()
	store := snapshot.New(dir, "node1")

	merged, err := New(store).MergeDate(20250501)
	require.NoError(t, err)
	assert.Empty(t, merged.Count)
	assert.Equal(t, 0, merged.FeedIPs[FeedTotal])
}

func TestMerger_MergeWindow_ReturnsEveryDateInRange(t *testing.T) {
	dir := t.TempDir()
	store := snapshot.New(dir, "node1")

	merged, err := New(store).MergeWindow(20250301, 31)
	require.NoError(t, err)
	assert.Len(t, merged, 31)
	assert.Contains(t, merged, 20250301)
	assert.Contains(t, merged, 20250130)
}
