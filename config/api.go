package config

// GetAuthSkipperPaths returns a list of paths to skip authentication for
func GetAuthSkipperPaths() []string {
	// Public read-only paths (stock lookups carry their own HMAC check)
	return []string{"/healthz", "/api/realtime/part-stock", "/api/realtime/stock"}
}
