package sessionid

// SetRandRead replaces the random source and returns a restore func.
func SetRandRead(fn func([]byte) (int, error)) func() {
	prev := randRead
	randRead = fn
	return func() { randRead = prev }
}
