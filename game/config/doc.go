// Package config reads the server configuration from environment
// variables.
//
// A .env file in the working directory is loaded into the environment by
// the command before Load runs. Command line flags override what Load
// returns.
//
// Usage:
//
//	cfg, err := config.Load()
//	if err != nil {
//		log.Fatal().Err(err).Msg("invalid configuration")
//	}
//	http.ListenAndServe(cfg.Addr(), handler)
package config
