// Package httpserver runs an http.Handler with graceful shutdown.
//
// Run blocks until the context is cancelled or the process receives
// SIGINT/SIGTERM, then drains in-flight requests within ShutdownTimeout.
// HealthHandler turns backend health checks (session stores, pools) into a
// readiness endpoint.
package httpserver
