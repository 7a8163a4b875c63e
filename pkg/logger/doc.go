// Package logger builds log/slog loggers for session services.
//
// New returns a *slog.Logger configured through functional options: output
// format (JSON or text), level, destination, static attributes and context
// extractors. Extractors run on every record so request scoped values such as
// request ids are attached without building a new logger per request.
//
//	log := logger.New(
//	    logger.WithTextFormatter(),
//	    logger.WithLevel(slog.LevelDebug),
//	    logger.WithAttr(logger.Component("sessions")),
//	    logger.WithContextValue("request_id", requestIDKey{}),
//	)
//
// The attribute helpers (SessionName, Backend, Error, ...) keep keys consistent
// across packages. Session ids are secrets and have no helper on purpose.
//
// Discard returns a logger that drops every record; libraries use it as the
// default so that they stay silent unless the application injects a logger.
package logger
