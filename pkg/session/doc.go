// Package session implements cookie-based HTTP sessions without any global
// state, so several independent sessions can be active in one request.
//
// A Session resolves its id from a cookie, loads serialized data from a
// Handler, exposes it as a map and writes it back on WriteClose. Handlers
// are pluggable: MemoryHandler ships here, file, PostgreSQL, Redis, MongoDB
// and S3 handlers live under pkg/sessionstore.
//
// # Lifecycle
//
//	sess, err := session.New(handler, session.NewResponseHTTP(w, r),
//	    session.WithName("ADMIN"),
//	)
//	if err != nil {
//	    return err
//	}
//	if ok, err := sess.Start(ctx); err != nil || !ok {
//	    return err
//	}
//	sess.Set("user", "alice")
//	sess.WriteClose(ctx)
//
// Start never adopts a client supplied id that has no stored data behind it:
// an unknown id is replaced by a fresh one and a new cookie is sent. Use
// RegenerateID after privilege changes.
//
// Get, Set, SetMany and Delete return ErrNotActive before Start. Start,
// WriteClose, Destroy and RegenerateID report routine failures (headers
// already sent, write errors) through their boolean results.
//
// # Garbage collection
//
// Each Start runs Handler.GC with probability GCProbability/GCDivisor.
// GC errors are logged and ignored.
//
// # Cache headers
//
// Start sends caching headers according to Config.CacheLimiter:
// "nocache" (default), "private", "private_no_expire", "public" or "" for none.
//
// # Middleware
//
// Middleware builds sessions per request from Factory values, stores them in
// the request context under their names (see FromContext) and write-closes
// every session left active when the handler returns.
//
// Requests overlap, so each Factory gets its handler from a HandlerFactory:
//
//	mem := session.NewMemoryHandler(nil)
//	mw := session.Middleware(
//	    session.NewFactory(mem.Clone, session.WithName("CART")),
//	)
package session
