package youtube

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/dmitrijs2005/vidmark/internal/common"
	"github.com/dmitrijs2005/vidmark/internal/logging"
	"github.com/dmitrijs2005/vidmark/internal/server/metrics"
	"github.com/dmitrijs2005/vidmark/internal/server/models"
	gobreaker "github.com/sony/gobreaker/v2"
)

// ErrCircuitOpen is returned without calling the provider while the circuit
// is open or the half-open probe quota is used up.
var ErrCircuitOpen = errors.New("youtube: circuit open")

// abandonedError marks a call cut short by the caller's own context. It says
// nothing about provider health, so the breaker does not count it.
type abandonedError struct{ err error }

func (e *abandonedError) Error() string { return e.err.Error() }
func (e *abandonedError) Unwrap() error { return e.err }

// BreakerSettings tune the circuit breaker in front of the provider.
type BreakerSettings struct {
	Name             string
	FailureThreshold uint32
	MaxRequests      uint32
	Interval         time.Duration
	Timeout          time.Duration
}

// DefaultBreakerSettings opens after five consecutive provider failures and
// probes again after thirty seconds.
func DefaultBreakerSettings() BreakerSettings {
	return BreakerSettings{
		Name:             "youtube",
		FailureThreshold: 5,
		MaxRequests:      1,
		Interval:         time.Minute,
		Timeout:          30 * time.Second,
	}
}

// BreakerFetcher stops calling the provider while it is failing. While the
// circuit is open Fetch fails at once; it never retries.
type BreakerFetcher struct {
	next Fetcher
	cb   *gobreaker.CircuitBreaker[*models.VideoMetadata]
}

func NewBreakerFetcher(next Fetcher, s BreakerSettings, log logging.Logger) *BreakerFetcher {
	metrics.CircuitBreakerState.WithLabelValues(s.Name).Set(stateValue(gobreaker.StateClosed))

	cb := gobreaker.NewCircuitBreaker[*models.VideoMetadata](gobreaker.Settings{
		Name:        s.Name,
		MaxRequests: s.MaxRequests,
		Interval:    s.Interval,
		Timeout:     s.Timeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= s.FailureThreshold
		},
		// A video that does not exist says nothing about provider health.
		IsSuccessful: func(err error) bool {
			if err == nil {
				return true
			}
			var ae *abandonedError
			if errors.As(err, &ae) {
				return true
			}
			var se *StatusError
			if errors.As(err, &se) {
				return !se.providerFault()
			}
			return errors.Is(err, common.ErrorNotFound)
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			metrics.CircuitBreakerState.WithLabelValues(name).Set(stateValue(to))
			log.Warn(context.Background(), "circuit breaker state changed",
				"name", name, "from", from.String(), "to", to.String())
		},
	})

	return &BreakerFetcher{next: next, cb: cb}
}

func (b *BreakerFetcher) Fetch(ctx context.Context, videoID string) (*models.VideoMetadata, error) {
	meta, err := b.cb.Execute(func() (*models.VideoMetadata, error) {
		meta, err := b.next.Fetch(ctx, videoID)
		if err != nil && ctx.Err() != nil {
			return nil, &abandonedError{err: err}
		}
		return meta, err
	})
	if err != nil {
		var ae *abandonedError
		if errors.As(err, &ae) {
			return nil, ae.err
		}
		if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
			return nil, fmt.Errorf("%w: %w", ErrCircuitOpen, err)
		}
		return nil, err
	}
	return meta, nil
}

// State reports the breaker state; /readyz shows it.
func (b *BreakerFetcher) State() gobreaker.State {
	return b.cb.State()
}

func stateValue(s gobreaker.State) float64 {
	switch s {
	case gobreaker.StateHalfOpen:
		return 1
	case gobreaker.StateOpen:
		return 2
	default:
		return 0
	}
}
