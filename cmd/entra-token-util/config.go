package main

import "time"

// ServeConfig holds web server configuration loaded from environment
// variables.
type ServeConfig struct {
	Port int `envconfig:"PORT" default:"8080"`

	// RedisURL selects the Redis-backed session store. When empty,
	// sessions are kept in memory and lost on restart.
	RedisURL string `envconfig:"REDIS_URL"`

	Tenant string `envconfig:"TENANT" default:"organizations"`

	// Authority overrides the identity provider base URL, mainly for
	// pointing the server at a test provider.
	Authority string `envconfig:"AUTHORITY"`

	DefaultScope string `envconfig:"DEFAULT_SCOPE" default:"https://graph.microsoft.com/.default offline_access openid"`

	CatalogPath  string `envconfig:"CATALOG_PATH" default:"data/MicrosoftApps.csv"`
	ScopeMapPath string `envconfig:"SCOPE_MAP_PATH" default:"data/scope-map.txt"`

	ProviderTimeout   time.Duration `envconfig:"PROVIDER_TIMEOUT" default:"10s"`
	ReadHeaderTimeout time.Duration `envconfig:"READ_HEADER_TIMEOUT" default:"5s"`
	ReadTimeout       time.Duration `envconfig:"READ_TIMEOUT" default:"10s"`
	WriteTimeout      time.Duration `envconfig:"WRITE_TIMEOUT" default:"30s"`
	IdleTimeout       time.Duration `envconfig:"IDLE_TIMEOUT" default:"120s"`
}
