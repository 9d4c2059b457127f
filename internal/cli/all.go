package cli

// Execute runs ingest, replicate, and merge in sequence (§6). The first
// fatal error aborts the remaining phases.
func (c *AllCommand) Execute(args []string) error {
	cfg, err := loadConfig(c.globals)
	if err != nil {
		return err
	}
	c.pathOverrides.applyTo(cfg)

	if err := runIngest(cfg); err != nil {
		return err
	}
	if err := runReplicate(cfg, c.Peer); err != nil {
		return err
	}

	date := todayDate()
	if c.Date != "" {
		date, err = parseDate(c.Date)
		if err != nil {
			return err
		}
	}
	return runMerge(cfg, date)
}
