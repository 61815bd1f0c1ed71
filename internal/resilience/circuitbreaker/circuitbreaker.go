// Package circuitbreaker wraps github.com/sony/gobreaker behind a small
// ratio-based configuration. The upstream metadata fetcher runs every
// request through a breaker so that a dead network path fails fast
// instead of tying up workers for the full fetch timeout.
package circuitbreaker

import (
	"log/slog"
	"time"

	"github.com/sony/gobreaker"
)

// Config describes when a breaker trips and how it recovers. The
// breaker trips when, over one Interval, at least MinRequests calls
// were made and the failure ratio reached FailureThreshold. After
// Timeout in the open state it allows up to MaxRequests probes.
type Config struct {
	Name             string
	MaxRequests      uint32
	Interval         time.Duration
	Timeout          time.Duration
	FailureThreshold float64
	MinRequests      uint32

	// IsSuccessful, when set, decides which call errors count toward
	// the trip ratio. Errors it accepts are counted as successes; the
	// error is still returned to the caller. Nil means only a nil
	// error is a success.
	IsSuccessful func(err error) bool
}

// MetadataFetchConfig is tuned for fetching arbitrary third-party
// pages. Failures are expected in normal operation (dead links, bot
// walls), so the breaker only trips on a sustained high failure rate
// that indicates a local problem such as broken egress.
func MetadataFetchConfig() Config {
	return Config{
		Name:             "metadata-fetch",
		MaxRequests:      5,
		Interval:         60 * time.Second,
		Timeout:          60 * time.Second,
		FailureThreshold: 0.8,
		MinRequests:      10,
	}
}

// CircuitBreaker is a named gobreaker instance that logs its state
// transitions.
type CircuitBreaker struct {
	breaker *gobreaker.CircuitBreaker
	name    string
}

// New builds a breaker from cfg. State transitions are logged at warn
// level since an opening breaker means previews are being refused
// without even attempting the fetch.
func New(cfg Config) *CircuitBreaker {
	return &CircuitBreaker{
		name: cfg.Name,
		breaker: gobreaker.NewCircuitBreaker(gobreaker.Settings{
			Name:         cfg.Name,
			MaxRequests:  cfg.MaxRequests,
			Interval:     cfg.Interval,
			Timeout:      cfg.Timeout,
			IsSuccessful: cfg.IsSuccessful,
			ReadyToTrip: func(counts gobreaker.Counts) bool {
				if counts.Requests < cfg.MinRequests {
					return false
				}
				return float64(counts.TotalFailures)/float64(counts.Requests) >= cfg.FailureThreshold
			},
			OnStateChange: func(name string, from, to gobreaker.State) {
				slog.Warn("circuit breaker state changed",
					slog.String("circuit", name),
					slog.String("from", from.String()),
					slog.String("to", to.String()))
			},
		}),
	}
}

// Execute runs fn through the breaker. When the circuit is open it
// returns gobreaker.ErrOpenState without invoking fn.
func (cb *CircuitBreaker) Execute(fn func() (interface{}, error)) (interface{}, error) {
	return cb.breaker.Execute(fn)
}

// State reports the breaker's current state.
func (cb *CircuitBreaker) State() gobreaker.State {
	return cb.breaker.State()
}

// Name reports the configured breaker name.
func (cb *CircuitBreaker) Name() string {
	return cb.name
}
