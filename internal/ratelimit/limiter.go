// Package ratelimit implements sliding-window request limiting keyed by client.
package ratelimit

import (
	"context"
	"time"
)

const (
	DefaultLimit  = 30
	DefaultWindow = time.Minute

	DefaultSweepInterval = 5 * time.Minute
)

// Limiter decides whether one more request from key fits in the window.
// Rejected attempts are not recorded.
type Limiter interface {
	Allow(ctx context.Context, key string) (bool, error)
}

type settings struct {
	now    func() time.Time
	prefix string
}

type Option func(*settings)

// WithClock replaces time.Now.
func WithClock(now func() time.Time) Option {
	return func(s *settings) {
		s.now = now
	}
}

// WithKeyPrefix namespaces Redis keys.
func WithKeyPrefix(prefix string) Option {
	return func(s *settings) {
		s.prefix = prefix
	}
}

func newSettings(opts []Option) settings {
	s := settings{now: time.Now, prefix: "ratelimit:inquiry:"}
	for _, opt := range opts {
		opt(&s)
	}
	return s
}
