package cli

// Execute runs the ingest phase (§4.2-§4.7).
func (c *IngestCommand) Execute(args []string) error {
	cfg, err := loadConfig(c.globals)
	if err != nil {
		return err
	}
	c.pathOverrides.applyTo(cfg)

	return runIngest(cfg)
}
