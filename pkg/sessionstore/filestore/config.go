package filestore

// Config holds file store configuration.
type Config struct {
	// LockFiles enables advisory locking around reads and writes.
	LockFiles bool `env:"SESSION_FILE_LOCKING" envDefault:"true"`
}

// DefaultConfig returns the default configuration with locking enabled.
func DefaultConfig() Config {
	return Config{LockFiles: true}
}
