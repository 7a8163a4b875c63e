// Package cookie builds, reads and writes the plain cookies that carry
// session identifiers.
//
// Attributes are expressed with functional options so that a caller can start
// from a set of defaults and override single fields per cookie:
//
//	c := cookie.New("ULSESS", id,
//	    cookie.WithPath("/"),
//	    cookie.WithExpires(time.Now().Add(time.Hour)),
//	    cookie.WithHTTPOnly(true),
//	)
//	cookie.Set(w, c)
//
// A zero Expires and zero MaxAge produce a browser-session cookie.
// Expired builds the instruction that removes a cookie from the client.
package cookie
