// Package redis connects to Redis with go-redis/v9 and exposes a health
// check. The Redis session store receives the client built here.
//
//	var cfg redis.Config
//	config.MustLoad(&cfg)
//
//	client, err := redis.Connect(ctx, cfg)
//	if err != nil {
//	    return err
//	}
//	defer client.Close()
package redis
