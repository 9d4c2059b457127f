package cli

import (
	"fmt"
	"os"

	goflags "github.com/jessevdk/go-flags"
)

// commands holds references to all subcommand structs for inspection/testing.
type commands struct {
	Ingest    *IngestCommand
	Replicate *ReplicateCommand
	Merge     *MergeCommand
	All       *AllCommand
	Status    *StatusCommand
}

// buildParser constructs the go-flags parser with all subcommands registered.
func buildParser(version string) (*goflags.Parser, *GlobalFlags, *commands) {
	var globals GlobalFlags

	parser := goflags.NewParser(&globals, goflags.Default)
	parser.Name = "foostats"
	parser.LongDescription = "Privacy-preserving web and Gemini access-log analytics across a small set of peered nodes."

	cmds := &commands{
		Ingest:    &IngestCommand{globals: &globals, version: version},
		Replicate: &ReplicateCommand{globals: &globals, version: version},
		Merge:     &MergeCommand{globals: &globals, version: version},
		All:       &AllCommand{globals: &globals, version: version},
		Status:    &StatusCommand{globals: &globals, version: version},
	}

	parser.AddCommand("ingest", "Parse logs into per-day snapshots", "Read the web and Gemini logs down to the last persisted day, filter, aggregate, and persist a snapshot for every day seen.", cmds.Ingest)
	parser.AddCommand("replicate", "Fetch peers' snapshots", "Fetch each peer's snapshots for the replication window, newest days forced.", cmds.Replicate)
	parser.AddCommand("merge", "Merge snapshots for a date", "Merge every node's snapshot for a date into one MergedDay and print it.", cmds.Merge)
	parser.AddCommand("all", "Run ingest, replicate, and merge", "Run ingest, replicate, and merge in sequence.", cmds.All)
	parser.AddCommand("status", "Show node watermarks and config", "Show the local node's per-protocol watermarks and effective configuration.", cmds.Status)

	return parser, &globals, cmds
}

// Run is the main entry point for the foostats CLI using os.Args.
func Run(version string) error {
	return RunWithArgs(version, nil)
}

// RunWithArgs parses the given args (or os.Args if nil) and executes the matched subcommand.
func RunWithArgs(version string, args []string) error {
	// Handle --version before parser (go-flags requires a subcommand, but
	// --version is valid without one).
	checkArgs := args
	if checkArgs == nil {
		checkArgs = os.Args[1:]
	}
	for _, arg := range checkArgs {
		if arg == "--version" {
			fmt.Printf("foostats %s\n", version)
			return nil
		}
		if arg == "--" {
			break
		}
	}

	parser, _, _ := buildParser(version)

	var err error
	if args != nil {
		_, err = parser.ParseArgs(args)
	} else {
		_, err = parser.Parse()
	}

	if err != nil {
		if flagsErr, ok := err.(*goflags.Error); ok {
			if flagsErr.Type == goflags.ErrHelp {
				return nil
			}
		}
		return err
	}

	return nil
}
