// Package config loads gofetch configuration.
//
// It uses Viper to read an optional YAML file and overlays environment
// variables, loading a .env file first with godotenv. Variables use the
// GOFETCH_ prefix with underscore-separated paths, e.g.
// GOFETCH_REQUEST_BACKEND=fast or GOFETCH_LOG_LEVEL=debug.
//
// # Usage
//
//	cfg, err := config.Load(config.WithConfigFile("gofetch.yml"))
//	// apply flag overrides
//	err = cfg.Validate()
package config
