package config

import (
	"errors"
	"fmt"
	"reflect"
	"sync"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

type loadOptions struct {
	envFiles []string
	prefix   string
	noCache  bool
}

// Option configures a Load call.
type Option func(*loadOptions)

// WithEnvFiles loads the given dotenv files instead of ./.env.
// Missing files are an error, unlike the implicit ./.env.
func WithEnvFiles(files ...string) Option {
	return func(o *loadOptions) { o.envFiles = files }
}

// WithPrefix prepends prefix to every variable name of the struct.
func WithPrefix(prefix string) Option {
	return func(o *loadOptions) { o.prefix = prefix }
}

// NoCache parses the environment even if the type was loaded before and does
// not store the result.
func NoCache() Option {
	return func(o *loadOptions) { o.noCache = true }
}

var (
	cacheMu sync.Mutex
	cache   = make(map[string]any)

	dotenvOnce sync.Once
)

// Load fills v from the environment.
func Load[T any](v *T, opts ...Option) error {
	if v == nil {
		return ErrNilPointer
	}

	o := loadOptions{}
	for _, opt := range opts {
		opt(&o)
	}

	if len(o.envFiles) > 0 {
		if err := godotenv.Load(o.envFiles...); err != nil {
			return errors.Join(ErrEnvFile, err)
		}
	} else {
		dotenvOnce.Do(func() {
			// ./.env is optional
			_ = godotenv.Load()
		})
	}

	key := cacheKey[T](o.prefix)

	if !o.noCache {
		cacheMu.Lock()
		defer cacheMu.Unlock()
		if cached, ok := cache[key]; ok {
			*v = cached.(T)
			return nil
		}
	}

	if err := env.ParseWithOptions(v, env.Options{Prefix: o.prefix}); err != nil {
		return errors.Join(ErrParsingConfig, err)
	}

	if !o.noCache {
		cache[key] = *v
	}
	return nil
}

// MustLoad is Load that panics on error.
func MustLoad[T any](v *T, opts ...Option) {
	if err := Load(v, opts...); err != nil {
		panic(fmt.Sprintf("failed to load required configuration: %v", err))
	}
}

// Reset drops every cached config. Intended for tests.
func Reset() {
	cacheMu.Lock()
	defer cacheMu.Unlock()
	cache = make(map[string]any)
}

func cacheKey[T any](prefix string) string {
	return prefix + "|" + reflect.TypeFor[T]().String()
}
