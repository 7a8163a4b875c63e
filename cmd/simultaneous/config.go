package main

import (
	"github.com/dmitrymomot/userland/pkg/httpserver"
	"github.com/dmitrymomot/userland/pkg/session"
)

// Config is loaded from the environment and an optional .env file.
type Config struct {
	LogLevel  string `env:"LOG_LEVEL" envDefault:"info"`
	LogFormat string `env:"LOG_FORMAT" envDefault:"text"`

	HTTP    httpserver.Config
	Session session.Config

	// SessionTable enables the PostgreSQL store for the second session when
	// PG_CONN_URL is set.
	SessionTable string `env:"SESSION_PG_TABLE" envDefault:"sessions"`
}
