package cli

// Execute runs the merge phase (§4.8), printing the resulting MergedDay.
func (c *MergeCommand) Execute(args []string) error {
	cfg, err := loadConfig(c.globals)
	if err != nil {
		return err
	}
	c.pathOverrides.applyTo(cfg)

	date := todayDate()
	if c.Date != "" {
		date, err = parseDate(c.Date)
		if err != nil {
			return err
		}
	}

	return runMerge(cfg, date)
}
