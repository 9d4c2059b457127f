package config

// DefaultConfig returns a Config populated with all default values.
func DefaultConfig() *Config {
	return &Config{
		StatsDir:  "~/.local/share/foostats/stats",
		LocalHost: "",
		Peers:     []string{},

		PatternsFile: "~/.config/foostats/patterns.txt",
		FilterLog:    "~/.local/share/foostats/filter.log",

		WindowDays:                31,
		ForceRefreshDays:          3,
		ReplicationTimeoutSeconds: 30,

		WebLogGlob:          "/var/log/httpd/access.log*",
		GeminiVgerLogGlob:   "/var/log/gemini/vger.log*",
		GeminiRelaydLogGlob: "/var/log/gemini/relayd.log*",

		AuditDBPath: "~/.local/share/foostats/replication_audit.db",
	}
}
