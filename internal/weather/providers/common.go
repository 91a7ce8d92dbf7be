package providers

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"net/http"
	"time"

	"github.com/sony/gobreaker"
)

var (
	errRateLimited  = errors.New("rate limited")
	errServerError  = errors.New("server error")
	errUnexpected   = errors.New("unexpected status code")
	errCircuitOpen  = errors.New("circuit breaker open")
	errNoHTTPClient = errors.New("http client not configured")
)

// resilientClient wraps an *http.Client with retries, exponential backoff and
// a circuit breaker, shared by all provider clients.
type resilientClient struct {
	client          *http.Client
	circuit         *gobreaker.CircuitBreaker
	maxRetries      int
	initialInterval time.Duration
	maxInterval     time.Duration
}

func newResilientClient(client *http.Client, name string) *resilientClient {
	return &resilientClient{
		client: client,
		circuit: gobreaker.NewCircuitBreaker(gobreaker.Settings{
			Name:        name,
			MaxRequests: 5,
			Interval:    1 * time.Minute,
			Timeout:     2 * time.Minute,
		}),
		maxRetries:      3,
		initialInterval: 500 * time.Millisecond,
		maxInterval:     5 * time.Second,
	}
}

// getJSON performs a GET against u and decodes the response body into out.
// Rate limits and 5xx responses are retried with exponential backoff; an open
// circuit fails fast.
func (rc *resilientClient) getJSON(ctx context.Context, u string, out any) error {
	if rc.client == nil {
		return errNoHTTPClient
	}

	var attempt int
	var lastErr error

	for {
		if ctx.Err() != nil {
			return ctx.Err()
		}

		req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
		if err != nil {
			return err
		}

		result, err := rc.circuit.Execute(func() (interface{}, error) {
			resp, execErr := rc.client.Do(req)
			if execErr != nil {
				return nil, execErr
			}
			defer resp.Body.Close()

			if resp.StatusCode == http.StatusTooManyRequests {
				return nil, errRateLimited
			}
			if resp.StatusCode >= 500 {
				return nil, errServerError
			}
			if resp.StatusCode < 200 || resp.StatusCode >= 300 {
				return nil, fmt.Errorf("%w: %d", errUnexpected, resp.StatusCode)
			}

			var payload json.RawMessage
			if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
				return nil, err
			}
			return payload, nil
		})

		if err == nil {
			payload, ok := result.(json.RawMessage)
			if !ok {
				return fmt.Errorf("unexpected result type from circuit breaker")
			}
			return json.Unmarshal(payload, out)
		}

		if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
			return fmt.Errorf("%w: %v", errCircuitOpen, err)
		}

		lastErr = err
		if attempt >= rc.maxRetries {
			return lastErr
		}

		delay := rc.initialInterval * time.Duration(math.Pow(2, float64(attempt)))
		if rc.maxInterval > 0 && delay > rc.maxInterval {
			delay = rc.maxInterval
		}

		timer := time.NewTimer(delay)
		select {
		case <-ctx.Done():
			timer.Stop()
			return ctx.Err()
		case <-timer.C:
		}

		attempt++
	}
}
