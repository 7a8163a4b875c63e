// Package mongo opens MongoDB clients with the official v2 driver, retrying
// until the server answers a ping, and provides a health check.
//
//	var cfg mongo.Config
//	config.MustLoad(&cfg)
//
//	db, err := mongo.NewWithDatabase(ctx, cfg, cfg.Database)
//	if err != nil {
//	    return err
//	}
//	defer db.Client().Disconnect(context.Background())
//
// The MongoDB session store takes a collection from the returned database.
package mongo
