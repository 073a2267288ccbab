package services

import (
	"errors"
	"time"

	"github.com/sony/gobreaker"

	"taskboard-service/logging"
	"taskboard-service/repositories"
)

// NewStorageBreaker trips after more than maxFailures consecutive storage
// failures. Missing or duplicate records are ordinary outcomes and do not
// count against it.
func NewStorageBreaker(name string, maxFailures uint32, timeout time.Duration) *gobreaker.CircuitBreaker {
	return gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:        name,
		MaxRequests: 1,
		Timeout:     timeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures > maxFailures
		},
		IsSuccessful: func(err error) bool {
			return err == nil ||
				errors.Is(err, repositories.ErrNotFound) ||
				errors.Is(err, repositories.ErrDuplicate)
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			logging.Logger.Infof("Event ID: CIRCUIT_BREAKER_STATE_CHANGE, Description: Circuit Breaker '%s' changed from '%s' to '%s'", name, from.String(), to.String())
		},
	})
}

// guard runs fn through cb. A nil breaker runs fn directly.
func guard[T any](cb *gobreaker.CircuitBreaker, fn func() (T, error)) (T, error) {
	if cb == nil {
		return fn()
	}
	res, err := cb.Execute(func() (interface{}, error) {
		return fn()
	})
	if err != nil {
		var zero T
		if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
			logging.Logger.Warnf("Event ID: STORAGE_UNAVAILABLE, Description: Breaker '%s' rejected the call: %v", cb.Name(), err)
			return zero, ErrUnavailable
		}
		return zero, err
	}
	v, _ := res.(T)
	return v, nil
}

// guardErr is guard for calls without a result.
func guardErr(cb *gobreaker.CircuitBreaker, fn func() error) error {
	_, err := guard(cb, func() (struct{}, error) {
		return struct{}{}, fn()
	})
	return err
}
