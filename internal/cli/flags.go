package cli

import "github.com/runnerr0/foostats/internal/config"

// GlobalFlags holds flags available to all subcommands.
type GlobalFlags struct {
	Config  string `long:"config" description:"Path to config file (default: ~/.config/foostats/config.yaml)" default:""`
	Verbose bool   `long:"verbose" description:"Accepted but not read by any command"`
	Version bool   `long:"version" description:"Show version and exit"`
}

// pathOverrides holds the per-invocation path overrides every phase
// accepts (§6 "Collaborator contract (CLI)"). Zero value means "use the
// loaded config's value".
type pathOverrides struct {
	StatsDir     string `long:"stats-dir" description:"Override config stats_dir"`
	PatternsFile string `long:"patterns-file" description:"Override config patterns_file"`
	FilterLog    string `long:"filter-log" description:"Override config filter_log"`
	Host         string `long:"host" description:"Override config local_host"`
}

// applyTo overlays any non-empty override onto cfg.
func (p pathOverrides) applyTo(cfg *config.Config) {
	if p.StatsDir != "" {
		cfg.StatsDir = p.StatsDir
	}
	if p.PatternsFile != "" {
		cfg.PatternsFile = p.PatternsFile
	}
	if p.FilterLog != "" {
		cfg.FilterLog = p.FilterLog
	}
	if p.Host != "" {
		cfg.LocalHost = p.Host
	}
}

// IngestCommand — read the web and Gemini logs down to the watermark,
// filter, aggregate, and persist a snapshot per (protocol, day) (§4.2-§4.7).
type IngestCommand struct {
	pathOverrides

	globals *GlobalFlags
	version string
}

// ReplicateCommand — fetch peers' snapshots for the replication window
// (§4.7, §6).
type ReplicateCommand struct {
	pathOverrides

	Peer []string `long:"peer" description:"Override config peers (repeatable)"`

	globals *GlobalFlags
	version string
}

// MergeCommand — merge all nodes' snapshots for a date and print the
// resulting MergedDay (§4.8). Rendering beyond that is an external
// collaborator's job (§6), out of scope here.
type MergeCommand struct {
	pathOverrides

	Date string `long:"date" description:"YYYYMMDD date to merge (default: today)"`

	globals *GlobalFlags
	version string
}

// AllCommand — run ingest, replicate, and merge in sequence (§6 "all").
type AllCommand struct {
	pathOverrides

	Peer []string `long:"peer" description:"Override config peers (repeatable)"`
	Date string   `long:"date" description:"YYYYMMDD date to merge (default: today)"`

	globals *GlobalFlags
	version string
}

// StatusCommand — print the local node's watermarks and config summary.
type StatusCommand struct {
	pathOverrides

	globals *GlobalFlags
	version string
}
