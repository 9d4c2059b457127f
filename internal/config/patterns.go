package config

// DefaultOddPatterns returns a curated list of substring patterns for
// operators who haven't yet written their own patterns_file (§4.5, § AMBIENT
// STACK). These are common probe paths that are never legitimate requests
// against a personal web or Gemini host. Nothing in the module applies this
// list on its own: the filter reads only patterns_file, and a missing
// patterns_file is a fatal error for ingest.
func DefaultOddPatterns() []string {
	return []string{
		// PHP/CMS admin probes
		"/wp-login.php",
		"/wp-admin",
		"/wp-content",
		"/wp-includes",
		"/xmlrpc.php",
		"/administrator",
		"/phpmyadmin",

		// Environment / secret file probes
		"/.env",
		"/.git/config",
		"/.aws/credentials",
		"/config.json",
		"/.DS_Store",

		// Common vulnerability scanner paths
		"/cgi-bin/",
		"/vendor/phpunit",
		"/.well-known/security.txt",
		"/shell.php",
		"/eval-stdin.php",

		// Generic CMS/app login probes
		"/user/login",
		"/admin/login",
		"/owa/auth",
	}
}
