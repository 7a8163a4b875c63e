package session

import (
	"bufio"
	"errors"
	"net"
	"net/http"

	"github.com/dmitrymomot/userland/pkg/cookie"
)

// HTTP is the transport boundary a Session talks to.
type HTTP interface {
	// Cookie returns the request cookie value for name.
	Cookie(name string) (string, bool)
	// SetCookie schedules a Set-Cookie header on the response.
	SetCookie(c *http.Cookie) error
	// SetHeader replaces a response header.
	SetHeader(key, value string)
	// HeadersSent reports whether the response headers were flushed.
	HeadersSent() bool
}

// ResponseHTTP adapts a request/response pair to HTTP. It is itself an
// http.ResponseWriter that records when the status line goes out; pass it
// down the handler chain instead of the original writer.
type ResponseHTTP struct {
	w       http.ResponseWriter
	r       *http.Request
	written bool
}

var _ http.ResponseWriter = (*ResponseHTTP)(nil)

// NewResponseHTTP wraps w and r. Wrapping an existing ResponseHTTP returns it.
func NewResponseHTTP(w http.ResponseWriter, r *http.Request) *ResponseHTTP {
	if rh, ok := w.(*ResponseHTTP); ok {
		rh.r = r
		return rh
	}
	return &ResponseHTTP{w: w, r: r}
}

// Cookie returns the request cookie value for name.
func (h *ResponseHTTP) Cookie(name string) (string, bool) {
	if h.r == nil {
		return "", false
	}
	v, err := cookie.Get(h.r, name)
	if err != nil {
		return "", false
	}
	return v, true
}

// SetCookie adds a Set-Cookie header. It fails once headers are sent.
func (h *ResponseHTTP) SetCookie(c *http.Cookie) error {
	if h.written {
		return ErrHeadersSent
	}
	return cookie.Set(h.w, c)
}

// SetHeader replaces a response header until headers are sent.
func (h *ResponseHTTP) SetHeader(key, value string) {
	if h.written {
		return
	}
	h.w.Header().Set(key, value)
}

// HeadersSent reports whether the status line was written.
func (h *ResponseHTTP) HeadersSent() bool {
	return h.written
}

// Header returns the underlying response headers.
func (h *ResponseHTTP) Header() http.Header {
	return h.w.Header()
}

// WriteHeader sends the status line.
func (h *ResponseHTTP) WriteHeader(statusCode int) {
	h.written = true
	h.w.WriteHeader(statusCode)
}

// Write sends body bytes, implicitly sending the status line.
func (h *ResponseHTTP) Write(b []byte) (int, error) {
	h.written = true
	return h.w.Write(b)
}

// Unwrap lets http.ResponseController reach the underlying writer.
func (h *ResponseHTTP) Unwrap() http.ResponseWriter {
	return h.w
}

// Flush flushes the underlying writer when it supports it.
func (h *ResponseHTTP) Flush() {
	h.written = true
	if f, ok := h.w.(http.Flusher); ok {
		f.Flush()
	}
}

// Hijack takes over the connection when the underlying writer allows it.
func (h *ResponseHTTP) Hijack() (net.Conn, *bufio.ReadWriter, error) {
	hj, ok := h.w.(http.Hijacker)
	if !ok {
		return nil, nil, errors.New("session: underlying writer does not support hijacking")
	}
	h.written = true
	return hj.Hijack()
}
