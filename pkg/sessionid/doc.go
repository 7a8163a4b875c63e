// Package sessionid generates and validates session identifiers.
//
// Identifiers are drawn from a 36 symbol lowercase alphabet so that they never
// collide on case-insensitive file systems. Each character consumes one byte
// from crypto/rand; a running sum of the bytes selects the symbol.
//
// # Usage
//
//	id, err := sessionid.Generate(40)
//	if err != nil {
//	    return err
//	}
//
//	if !sessionid.IsValid(cookieValue) {
//	    // reject before touching storage
//	}
//
// Validation is deliberately wider than generation: ids supplied by the
// application through Session.RequestID may use upper case letters, '-' and '_'.
package sessionid
