package cli

// Execute prints the local node's watermarks and effective configuration.
func (c *StatusCommand) Execute(args []string) error {
	cfg, err := loadConfig(c.globals)
	if err != nil {
		return err
	}
	c.pathOverrides.applyTo(cfg)

	return runStatus(cfg)
}
