package config

import "github.com/kelseyhightower/envconfig"

const envPrefix = "PLAQUES"

// parseEnv overlays cfg with PLAQUES_* variables. Unset variables leave the
// field alone. Panics on malformed values.
func parseEnv(cfg *Config) {
	if err := envconfig.Process(envPrefix, cfg); err != nil {
		panic(err)
	}
}
