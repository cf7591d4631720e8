package redis

import (
	"time"

	breaker "github.com/donnigundala/dg-breaker"
	"github.com/mitchellh/mapstructure"
)

// Config configures the Redis driver's connection and key namespacing,
// decoded the way the teacher repository decodes StoreConfig.Options: a
// map[string]interface{} run through mapstructure into this typed struct.
type Config struct {
	// URL is a redis:// connection string. Mutually exclusive with
	// Host/Port in intent (spec.md §4.3: "connection-handle |
	// connection-url, mutually exclusive; at least one REQUIRED"); when
	// set it takes precedence over Host/Port in NewClient.
	URL string `mapstructure:"url"`

	// Host is the Redis server host.
	Host string `mapstructure:"host"`

	// Port is the Redis server port.
	Port int `mapstructure:"port"`

	// Password is the Redis server password.
	Password string `mapstructure:"password"`

	// Database is the Redis database number.
	Database int `mapstructure:"database"`

	// Prefix namespaces every key this driver touches, so one Redis
	// instance can host multiple independent breaker deployments
	// (spec.md §9, scenario 5).
	Prefix string `mapstructure:"prefix"`

	// Expires is the TTL armed on a record's backing hash by New and
	// Reset. 0 disables expiry (the hash lives until Delete).
	Expires time.Duration `mapstructure:"expires"`

	// PoolSize is the maximum number of socket connections.
	PoolSize int `mapstructure:"pool_size"`

	// MinIdleConns is the minimum number of idle connections.
	MinIdleConns int `mapstructure:"min_idle_conns"`

	// MaxRetries is the maximum number of retries before giving up.
	MaxRetries int `mapstructure:"max_retries"`

	// Timeout is the dial timeout.
	Timeout time.Duration `mapstructure:"timeout"`

	// MinRetryBackoff is the minimum backoff between retries.
	MinRetryBackoff time.Duration `mapstructure:"min_retry_backoff"`

	// MaxRetryBackoff is the maximum backoff between retries.
	MaxRetryBackoff time.Duration `mapstructure:"max_retry_backoff"`

	// GuardThreshold is the number of consecutive client errors the
	// local connGuard tolerates before fast-failing further calls
	// without reaching the network. 0 disables the guard.
	GuardThreshold int `mapstructure:"guard_threshold"`

	// GuardCooldown is how long the guard stays tripped before letting
	// one call probe the backend again.
	GuardCooldown time.Duration `mapstructure:"guard_cooldown"`
}

// DefaultConfig returns a default Redis driver configuration. Host/URL are
// deliberately left blank — spec.md §4.3 requires construction to fail with
// ErrInvalidArguments when neither a connection-handle nor a connection-url
// is supplied, so there is no sane default to fall back to for either.
// Prefix defaults to "rcb:" per spec.md §4.3 — every key this driver
// touches is stored as prefix+key verbatim, so the trailing separator lives
// in the prefix itself rather than being inserted by the driver.
func DefaultConfig() Config {
	return Config{
		Port:            6379,
		Database:        0,
		Prefix:          "rcb:",
		Expires:         180 * time.Second,
		PoolSize:        10,
		MinIdleConns:    2,
		MaxRetries:      3,
		Timeout:         5 * time.Second,
		MinRetryBackoff: 8 * time.Millisecond,
		MaxRetryBackoff: 512 * time.Millisecond,
		GuardThreshold:  5,
		GuardCooldown:   5 * time.Second,
	}
}

// DecodeConfig decodes a StoreConfig-style options map into a Config,
// starting from DefaultConfig() so unset keys keep their defaults. Fails
// with ErrInvalidArguments if neither "url" nor "host" is present in
// options — spec.md §4.3 requires a connection-handle or a connection-url,
// mutually exclusive, with at least one REQUIRED.
func DecodeConfig(options map[string]interface{}) (Config, error) {
	if _, hasURL := options["url"]; !hasURL {
		if _, hasHost := options["host"]; !hasHost {
			return Config{}, breaker.ErrInvalidArguments
		}
	}

	cfg := DefaultConfig()
	decoder, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		Result:  &cfg,
		TagName: "mapstructure",
	})
	if err != nil {
		return Config{}, err
	}
	if err := decoder.Decode(options); err != nil {
		return Config{}, err
	}
	return cfg, nil
}
