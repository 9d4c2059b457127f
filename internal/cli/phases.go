package cli

import (
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/runnerr0/foostats/internal/aggregate"
	"github.com/runnerr0/foostats/internal/config"
	"github.com/runnerr0/foostats/internal/event"
	"github.com/runnerr0/foostats/internal/filter"
	"github.com/runnerr0/foostats/internal/logparse"
	"github.com/runnerr0/foostats/internal/logsource"
	"github.com/runnerr0/foostats/internal/merge"
	"github.com/runnerr0/foostats/internal/replicate"
	"github.com/runnerr0/foostats/internal/snapshot"
)

// runIngest parses the configured web and Gemini log sources, filters and
// aggregates every surviving event, and persists a snapshot for every
// (protocol, day) bucket it aggregated (§4.2-§4.7). Each protocol resumes
// from its own last-persisted watermark.
func runIngest(cfg *config.Config) error {
	f, err := filter.New(cfg.PatternsFile, cfg.FilterLog)
	if err != nil {
		return fmt.Errorf("ingest: open filter: %w", err)
	}
	defer f.Close()

	store := snapshot.New(cfg.StatsDir, cfg.LocalHost)
	agg := aggregate.New(f)

	webWatermark, err := store.Watermark(event.ProtocolWeb)
	if err != nil {
		return fmt.Errorf("ingest: web watermark: %w", err)
	}
	geminiWatermark, err := store.Watermark(event.ProtocolGemini)
	if err != nil {
		return fmt.Errorf("ingest: gemini watermark: %w", err)
	}

	wp := logparse.WebParser{Watermark: webWatermark}
	err = logsource.Read(cfg.WebLogGlob, func(fileYear int, fields []string) error {
		ev, stop := wp.Parse(fields)
		if ev != nil && !stop {
			if err := agg.Add(ev); err != nil {
				return fmt.Errorf("ingest: aggregate web event: %w", err)
			}
		}
		if stop {
			return logsource.ErrStop
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("ingest: read web log: %w", err)
	}

	gp := &logparse.GeminiParser{Watermark: geminiWatermark}
	consume := func(fileYear int, fields []string) error {
		ev, stop := gp.Parse(fileYear, fields)
		if ev != nil && !stop {
			if err := agg.Add(ev); err != nil {
				return fmt.Errorf("ingest: aggregate gemini event: %w", err)
			}
		}
		if stop {
			return logsource.ErrStop
		}
		return nil
	}
	// vger and relayd are two separate syslog streams for the same
	// events (§4.4); both feed the same pairing state machine so a half
	// seen in either file can match a half already queued from the
	// other.
	if err := logsource.Read(cfg.GeminiVgerLogGlob, consume); err != nil {
		return fmt.Errorf("ingest: read gemini vger log: %w", err)
	}
	if err := logsource.Read(cfg.GeminiRelaydLogGlob, consume); err != nil {
		return fmt.Errorf("ingest: read gemini relayd log: %w", err)
	}

	if err := store.Write(agg.Days()); err != nil {
		return fmt.Errorf("ingest: write snapshots: %w", err)
	}

	return nil
}

// runReplicate fetches every peer's snapshots for the replication window,
// force-refreshing the newest days (§4.7, §6). Individual fetch failures
// are non-fatal (§7); only a setup failure (bad audit DB, etc.) aborts
// the phase.
func runReplicate(cfg *config.Config, peers []string) error {
	if len(peers) == 0 {
		peers = cfg.Peers
	}
	if len(peers) == 0 {
		return nil
	}

	timeout := time.Duration(cfg.ReplicationTimeoutSeconds) * time.Second
	r, err := replicate.Open(cfg.StatsDir, cfg.AuditDBPath, peers, timeout)
	if err != nil {
		return fmt.Errorf("replicate: open: %w", err)
	}
	defer r.Close()

	if err := r.Run(todayDate()); err != nil {
		return fmt.Errorf("replicate: run: %w", err)
	}
	return nil
}

// runMerge merges every node's snapshot for date into one MergedDay and
// prints it as JSON. Rendering it into a report is an external
// collaborator's job (§6); this phase's contract ends at producing the
// merged map.
func runMerge(cfg *config.Config, date int) error {
	store := snapshot.New(cfg.StatsDir, cfg.LocalHost)
	m := merge.New(store)

	merged, err := m.MergeDate(date)
	if err != nil {
		return fmt.Errorf("merge: %w", err)
	}

	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	if err := enc.Encode(merged); err != nil {
		return fmt.Errorf("merge: encode result: %w", err)
	}
	return nil
}

// runStatus prints the local node's per-protocol watermarks and the
// effective configuration.
func runStatus(cfg *config.Config) error {
	store := snapshot.New(cfg.StatsDir, cfg.LocalHost)

	webWatermark, err := store.Watermark(event.ProtocolWeb)
	if err != nil {
		return fmt.Errorf("status: web watermark: %w", err)
	}
	geminiWatermark, err := store.Watermark(event.ProtocolGemini)
	if err != nil {
		return fmt.Errorf("status: gemini watermark: %w", err)
	}

	fmt.Fprintf(os.Stdout, "host:            %s\n", cfg.LocalHost)
	fmt.Fprintf(os.Stdout, "stats_dir:       %s\n", cfg.StatsDir)
	fmt.Fprintf(os.Stdout, "peers:           %v\n", cfg.Peers)
	fmt.Fprintf(os.Stdout, "web watermark:   %d\n", webWatermark)
	fmt.Fprintf(os.Stdout, "gemini watermark: %d\n", geminiWatermark)
	return nil
}
