package logger

import (
	"log/slog"
	"time"
)

// Error records err under the key "error". A nil err yields an empty Attr.
func Error(err error) slog.Attr {
	if err == nil {
		return slog.Attr{}
	}
	return slog.Any("error", err)
}

// SessionName records the session name (cookie name and storage namespace).
func SessionName(name string) slog.Attr {
	return slog.String("session_name", name)
}

// Backend records the storage backend kind, e.g. "file" or "postgres".
func Backend(kind string) slog.Attr {
	return slog.String("backend", kind)
}

// Operation records the backend operation that was attempted.
func Operation(op string) slog.Attr {
	return slog.String("operation", op)
}

// RequestID records the request identifier. A nil id yields an empty Attr.
func RequestID(id any) slog.Attr {
	if id == nil {
		return slog.Attr{}
	}
	return slog.Any("request_id", id)
}

// Component records the component name.
func Component(name string) slog.Attr {
	return slog.String("component", name)
}

// Duration records d in milliseconds.
func Duration(d time.Duration) slog.Attr {
	return slog.Float64("duration_ms", float64(d.Microseconds())/1000)
}
