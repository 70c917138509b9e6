package circuitbreaker

import (
	"context"
	"errors"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/sony/gobreaker"
)

type Settings struct {
	Name string
	// MaxFailures consecutive failures open the breaker
	MaxFailures uint32
	// HalfOpenRequests allowed through while probing
	HalfOpenRequests uint32
	Interval         time.Duration
	Timeout          time.Duration
}

func DefaultSettings(name string) Settings {
	return Settings{
		Name:             name,
		MaxFailures:      5,
		HalfOpenRequests: 1,
		Interval:         time.Minute,
		Timeout:          30 * time.Second,
	}
}

// IsSuccessful counts context.Canceled as success. A cancelled caller says nothing about
// the upstream.
func IsSuccessful(err error) bool {
	return err == nil || errors.Is(err, context.Canceled)
}

// New returns a gobreaker breaker that trips after MaxFailures consecutive failures and logs
// state changes
func New(s Settings) *gobreaker.CircuitBreaker {
	maxFailures := s.MaxFailures
	if maxFailures == 0 {
		maxFailures = 5
	}
	return gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:        s.Name,
		MaxRequests: s.HalfOpenRequests,
		Interval:    s.Interval,
		Timeout:     s.Timeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= maxFailures
		},
		IsSuccessful: IsSuccessful,
		OnStateChange: func(name string, from, to gobreaker.State) {
			log.Warn().Str("breaker", name).Str("from", from.String()).Str("to", to.String()).Msg("circuit breaker state changed")
		},
	})
}
