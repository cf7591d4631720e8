// Package constructors bundles a Driver with a Breaker for the two
// reference backends, so a caller doesn't have to wire
// breaker.New(Config{Driver: ...}) plus a driver constructor by hand every
// time. It lives in its own package (rather than the root breaker package)
// because both drivers/memory and drivers/redis import the breaker package
// for Record/Driver/errors — a root package importing its own subpackages
// back would be a circular import.
package constructors

import (
	"time"

	breaker "github.com/donnigundala/dg-breaker"
	"github.com/donnigundala/dg-breaker/drivers/memory"
	"github.com/donnigundala/dg-breaker/drivers/redis"
)

// referenceFailures, referenceTimeout, and referenceExpires mirror the
// reference implementation's defaults (5 failures, 10 second cooldown,
// 180 second record TTL).
const (
	referenceFailures = 5
	referenceTimeout  = 10 * time.Second
	referenceExpires  = 180 * time.Second
)

// NewMemoryBreaker builds a Breaker over the in-process memory.Driver,
// useful for a single binary, tests, or as the reference backend spec.md
// describes. subject and key are required; failures and timeout fall back
// to the reference defaults when 0.
func NewMemoryBreaker(subject breaker.Subject, key string, failures int, timeout time.Duration) (*breaker.Breaker, error) {
	if failures <= 0 {
		failures = referenceFailures
	}
	if timeout <= 0 {
		timeout = referenceTimeout
	}

	driver := memory.NewDriver(memory.Config{Expires: referenceExpires})
	return breaker.New(breaker.Config{
		Driver:   driver,
		Subject:  subject,
		Key:      key,
		Failures: failures,
		Timeout:  timeout,
	})
}

// NewRedisBreaker builds a Breaker backed by Redis, decoding options the
// same way the teacher's redis.NewDriver(cache.StoreConfig) does. subject
// and key are required; failures and timeout fall back to the reference
// defaults when 0.
func NewRedisBreaker(subject breaker.Subject, key string, failures int, timeout time.Duration, options map[string]interface{}) (*breaker.Breaker, error) {
	if failures <= 0 {
		failures = referenceFailures
	}
	if timeout <= 0 {
		timeout = referenceTimeout
	}

	driver, err := redis.NewDriver(options)
	if err != nil {
		return nil, err
	}

	return breaker.New(breaker.Config{
		Driver:   driver,
		Subject:  subject,
		Key:      key,
		Failures: failures,
		Timeout:  timeout,
	})
}
