// Package config populates configuration structs from environment variables.
//
// Fields are described with github.com/caarlos0/env struct tags. A .env file
// in the working directory (or the files passed with WithEnvFiles) is loaded
// once per process through github.com/joho/godotenv; variables that are
// already set in the environment win.
//
//	var cfg session.Config
//	if err := config.Load(&cfg); err != nil {
//	    return err
//	}
//
// Every config type is parsed once and cached, so libraries can call Load from
// several places without re-reading the environment. WithPrefix scopes the
// variables, which lets one program configure two sessions of the same type:
//
//	var admin session.Config
//	config.Load(&admin, config.WithPrefix("ADMIN_"), config.NoCache())
package config
