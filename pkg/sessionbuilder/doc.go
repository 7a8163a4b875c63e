// Package sessionbuilder assembles sessions from a few fluent settings.
//
// The storage handler is chosen in this order: a handler factory set with
// SetHandler, then PostgreSQL when a DB or credentials were given, then files.
// Every Build gets its own file handler; the PostgreSQL store is shared.
//
//	b := sessionbuilder.New().
//		SetName("CART").
//		UseSystemTmp().
//		SetFileLocking(true)
//
//	s, err := b.Build(session.NewResponseHTTP(w, r))
//
// A Registry keeps track of the names in use so two builders never hand out
// sessions that would overwrite each other's cookie.
package sessionbuilder
