// Package requestid tags every request with an identifier.
//
// Middleware reuses a well-formed X-Request-ID header or generates a UUID,
// echoes it on the response and stores it in the request context. Pass
// LoggerExtractor to logger.WithContextExtractors to get it on every log
// record, including session backend failures.
package requestid
