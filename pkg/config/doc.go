// Package config loads typed configuration structs from environment
// variables, with optional .env file support for local development.
//
// Each configuration type is parsed once per process and cached; subsequent
// loads of the same type return the cached copy. Struct fields declare their
// sources with `env` tags.
//
// # Usage
//
//	type TokenConfig struct {
//	    Secret string        `env:"SECRET_KEY,required"`
//	    TTL    time.Duration `env:"TOKEN_TTL" envDefault:"1h"`
//	}
//
//	var cfg TokenConfig
//	if err := config.Load(&cfg); err != nil {
//	    // handle error
//	}
package config
