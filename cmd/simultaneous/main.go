// Command simultaneous serves a page that runs two independent sessions in
// the same request. Each keeps its own counter and gets a fresh id on every
// request.
//
// The first session is stored in files. The second uses PostgreSQL when
// PG_CONN_URL is set and files otherwise.
package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/dmitrymomot/userland/migrations"
	"github.com/dmitrymomot/userland/pkg/config"
	"github.com/dmitrymomot/userland/pkg/httpserver"
	"github.com/dmitrymomot/userland/pkg/logger"
	"github.com/dmitrymomot/userland/pkg/pg"
	"github.com/dmitrymomot/userland/pkg/requestid"
	"github.com/dmitrymomot/userland/pkg/session"
	"github.com/dmitrymomot/userland/pkg/sessionbuilder"
)

const (
	firstName  = "SESS1"
	secondName = "SESS2"
)

func main() {
	ctx := context.Background()

	var cfg Config
	config.MustLoad(&cfg)

	log := newLogger(cfg)

	if cfg.Session.SavePath == "" {
		cfg.Session.SavePath = os.TempDir()
	}
	base := cfg.Session
	base.CacheLimiter = session.CacheLimiterNone

	first := sessionbuilder.New().
		SetName(firstName).
		SetSavePath(base.SavePath).
		SetLogger(log).
		SetOptions(session.WithConfig(withDivisor(base, 3)))

	second := sessionbuilder.New().
		SetName(secondName).
		SetSavePath(base.SavePath).
		SetLogger(log).
		SetOptions(session.WithConfig(base))

	checks := []httpserver.Check{}

	var pgCfg pg.Config
	config.MustLoad(&pgCfg)
	if pgCfg.ConnectionString != "" {
		pool, err := pg.Connect(ctx, pgCfg)
		if err != nil {
			log.Error("failed to connect to database", logger.Component("database"), logger.Error(err))
			os.Exit(1)
		}
		defer pool.Close()

		pgCfg.MigrationsPath = "."
		if err := pg.MigrateFS(ctx, pool, migrations.FS, pgCfg, log.With(logger.Component("database.migration"))); err != nil {
			log.Error("failed to migrate database", logger.Component("database.migration"), logger.Error(err))
			os.Exit(1)
		}

		second.SetDB(pool).SetTable(cfg.SessionTable)
		checks = append(checks, httpserver.Check{Name: "postgres", Fn: pg.Healthcheck(pool)})
	}

	registry := sessionbuilder.NewRegistry()
	firstFactory, err := registry.Factory(first)
	if err != nil {
		log.Error("failed to register session", logger.SessionName(firstName), logger.Error(err))
		os.Exit(1)
	}
	secondFactory, err := registry.Factory(second)
	if err != nil {
		log.Error("failed to register session", logger.SessionName(secondName), logger.Error(err))
		os.Exit(1)
	}

	r := chi.NewRouter()
	r.Use(requestid.Middleware)
	r.Get("/live", httpserver.HealthHandler(log, 0))
	r.Get("/ready", httpserver.HealthHandler(log, 2*time.Second, checks...))
	r.Group(func(r chi.Router) {
		r.Use(session.Middleware(firstFactory, secondFactory))
		r.Get("/", counters(log))
	})

	srv := httpserver.New(cfg.HTTP, httpserver.WithLogger(log))
	if err := srv.Run(ctx, r); err != nil {
		log.Error("server stopped", logger.Error(err))
		os.Exit(1)
	}
}

func newLogger(cfg Config) *slog.Logger {
	format := logger.WithTextFormatter()
	if cfg.LogFormat == string(logger.FormatJSON) {
		format = logger.WithJSONFormatter()
	}
	return logger.New(
		logger.WithLevel(logger.ParseLevel(cfg.LogLevel)),
		format,
		logger.WithContextExtractors(requestid.LoggerExtractor()),
	)
}

func withDivisor(cfg session.Config, divisor int) session.Config {
	cfg.GCDivisor = divisor
	return cfg
}

// report is what the page shows for one session.
type report struct {
	name    string
	handler string
	id      string
	counter int
	newID   string
}

// counters increments a counter in both sessions, then regenerates their ids.
func counters(log *slog.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()

		reports := make([]*report, 0, 2)
		sessions := make([]*session.Session, 0, 2)
		for _, entry := range []struct {
			name  string
			start int
		}{{firstName, 0}, {secondName, 10}} {
			s := session.MustFromContext(ctx, entry.name)
			if _, err := s.Start(ctx); err != nil {
				log.ErrorContext(ctx, "failed to start session", logger.SessionName(entry.name), logger.Error(err))
				http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
				return
			}

			n, err := increment(s, "i", entry.start)
			if err != nil {
				log.ErrorContext(ctx, "failed to update session", logger.SessionName(entry.name), logger.Error(err))
				http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
				return
			}

			sessions = append(sessions, s)
			reports = append(reports, &report{
				name:    s.Name(),
				handler: fmt.Sprintf("%T", s.Handler()),
				id:      s.ID(),
				counter: n,
			})
		}

		for i, s := range sessions {
			s.RegenerateID(ctx, true)
			reports[i].newID = s.ID()
		}

		w.Header().Set("Content-Type", "text/plain; charset=utf-8")
		fmt.Fprintln(w, "Two simultaneous sessions.")
		fmt.Fprintln(w, "Counters increment independently and ids are regenerated on every request.")
		for _, rep := range reports {
			fmt.Fprintf(w, "\n[%s]\n  handler: %s\n  id:      %s\n  counter: %d\n  new id:  %s\n",
				rep.name, rep.handler, rep.id, rep.counter, rep.newID)
		}
	}
}

func increment(s *session.Session, key string, start int) (int, error) {
	v, err := s.Get(key, start)
	if err != nil {
		return 0, err
	}
	n, _ := v.(int)
	n++
	return n, s.Set(key, n)
}
