// Package config provides loading and environment overlay for Redscout
// runtime configuration. It exposes a Default() baseline, a JSON file
// loader, and a REDSCOUT_* env overlay.
//
// Example:
//
//	cfg := config.Default()
//	if fileCfg, err := config.Load("/etc/redscout.json"); err == nil {
//	    cfg = fileCfg
//	}
//	config.FromEnv(&cfg)
package config
