package cas

import (
	"time"

	"github.com/kochabx/sealstore/log"
	"github.com/kochabx/sealstore/metrics"
	"github.com/kochabx/sealstore/store"
)

// Option configures a Store.
type Option func(*Store)

// WithLogger sets the logger. Defaults to log.G.
func WithLogger(logger *log.Logger) Option {
	return func(s *Store) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// WithMetrics records operation counts, latency and failure kinds.
func WithMetrics(c *metrics.Collector) Option {
	return func(s *Store) {
		s.metrics = c
	}
}

// WithNotifier is called after every successful Put and Delete.
func WithNotifier(n store.Notifier) Option {
	return func(s *Store) {
		s.notifier = n
	}
}

// WithClock replaces time.Now for metadata timestamps.
func WithClock(now func() time.Time) Option {
	return func(s *Store) {
		if now != nil {
			s.now = now
		}
	}
}

// WithChecksum makes Put record the plaintext SHA-256 when the caller did
// not supply one.
func WithChecksum(enabled bool) Option {
	return func(s *Store) {
		s.checksum = enabled
	}
}
