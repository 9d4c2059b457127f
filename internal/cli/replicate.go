package cli

// Execute runs the replicate phase (§4.7, §6).
func (c *ReplicateCommand) Execute(args []string) error {
	cfg, err := loadConfig(c.globals)
	if err != nil {
		return err
	}
	c.pathOverrides.applyTo(cfg)

	return runReplicate(cfg, c.Peer)
}
