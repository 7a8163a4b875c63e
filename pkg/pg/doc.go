// Package pg bootstraps PostgreSQL access through pgx/v5: a retrying pool
// constructor, goose migrations, a health check and error classifiers.
//
// The session PostgreSQL store uses Connect to open its pool lazily when it
// is configured with credentials instead of a live pool.
//
//	var cfg pg.Config
//	config.MustLoad(&cfg)
//
//	pool, err := pg.Connect(ctx, cfg)
//	if err != nil {
//	    return err
//	}
//	defer pool.Close()
//
//	if err := pg.Migrate(ctx, pool, cfg, logger); err != nil {
//	    return err
//	}
//
// Credentials can be embedded in ConnectionString or supplied separately
// through Username and Password, which override the ones in the string.
package pg
