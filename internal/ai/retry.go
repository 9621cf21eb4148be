package ai

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/cenkalti/backoff/v4"
	"google.golang.org/genai"
)

// BackoffPolicy configures the exponential backoff between retried model calls.
type BackoffPolicy struct {
	InitialInterval     time.Duration
	MaxInterval         time.Duration
	Multiplier          float64
	RandomizationFactor float64
}

func DefaultBackoffPolicy() BackoffPolicy {
	return BackoffPolicy{
		InitialInterval:     500 * time.Millisecond,
		MaxInterval:         8 * time.Second,
		Multiplier:          2.0,
		RandomizationFactor: 0.25,
	}
}

// newBackOff allows maxAttempts calls in total and stops early when ctx is done.
func (p BackoffPolicy) newBackOff(ctx context.Context, maxAttempts int) backoff.BackOffContext {
	b := backoff.NewExponentialBackOff()
	b.InitialInterval = p.InitialInterval
	b.MaxInterval = p.MaxInterval
	b.Multiplier = p.Multiplier
	b.RandomizationFactor = p.RandomizationFactor
	b.MaxElapsedTime = 0

	retries := 0
	if maxAttempts > 1 {
		retries = maxAttempts - 1
	}
	return backoff.WithContext(backoff.WithMaxRetries(b, uint64(retries)), ctx)
}

var transientStatus = map[int]bool{
	http.StatusTooManyRequests:     true,
	http.StatusInternalServerError: true,
	http.StatusBadGateway:          true,
	http.StatusServiceUnavailable:  true,
	http.StatusGatewayTimeout:      true,
}

// IsTransient reports whether err is a rate limit or availability failure worth retrying.
func IsTransient(err error) bool {
	var apiErr genai.APIError
	if errors.As(err, &apiErr) {
		return transientStatus[apiErr.Code]
	}
	var apiErrPtr *genai.APIError
	if errors.As(err, &apiErrPtr) && apiErrPtr != nil {
		return transientStatus[apiErrPtr.Code]
	}
	return false
}
