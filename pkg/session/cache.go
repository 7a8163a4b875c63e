package session

import (
	"net/http"
	"os"
	"strconv"
	"sync"
	"time"
)

// pastExpires is the fixed date sent for non-cacheable responses.
const pastExpires = "Thu, 19 Nov 1981 08:52:00 GMT"

var executableModTime = sync.OnceValue(func() time.Time {
	path, err := os.Executable()
	if err != nil {
		return time.Time{}
	}
	info, err := os.Stat(path)
	if err != nil {
		return time.Time{}
	}
	return info.ModTime()
})

// FormatGMT formats t as an HTTP date, e.g. "Thu, 19 Nov 1981 08:52:00 GMT".
func FormatGMT(t time.Time) string {
	return t.UTC().Format(http.TimeFormat)
}

func (s *Session) sendCacheHeaders() {
	ce := strconv.FormatInt(seconds(s.cfg.CacheExpire), 10)

	switch s.cfg.CacheLimiter {
	case CacheLimiterPublic:
		s.transport.SetHeader("Expires", FormatGMT(s.now().Add(s.cfg.CacheExpire)))
		s.transport.SetHeader("Cache-Control", "public, max-age="+ce)
		s.transport.SetHeader("Last-Modified", FormatGMT(s.lastModified()))
	case CacheLimiterPrivateNoExpire:
		s.transport.SetHeader("Cache-Control", "private, max-age="+ce+", pre-check="+ce)
		s.transport.SetHeader("Last-Modified", FormatGMT(s.lastModified()))
	case CacheLimiterPrivate:
		s.transport.SetHeader("Expires", pastExpires)
		s.transport.SetHeader("Cache-Control", "private, max-age="+ce+", pre-check="+ce)
		s.transport.SetHeader("Last-Modified", FormatGMT(s.lastModified()))
	case CacheLimiterNoCache:
		s.transport.SetHeader("Expires", pastExpires)
		s.transport.SetHeader("Cache-Control", "no-store, no-cache, must-revalidate, post-check=0, pre-check=0")
		s.transport.SetHeader("Pragma", "no-cache")
	case CacheLimiterNone:
	}
}

func (s *Session) lastModified() time.Time {
	if !s.modTime.IsZero() {
		return s.modTime
	}
	if t := executableModTime(); !t.IsZero() {
		return t
	}
	return s.now()
}
