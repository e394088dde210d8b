package registry

// Core keys for GlobalRegistry and per-request context values.
const (
	// Per-request key (set by the request duration middleware)
	KeyRequestStart = "request_start"

	// Extension registries (cmd, cron, api) — stored in GlobalRegistry
	KeyRegistryCmd    = "registry:cmd"
	KeyRegistryCron   = "registry:cron"
	KeyRegistryAPI    = "registry:api"
	KeyRegistryRoutes = "registry:routes"
)
