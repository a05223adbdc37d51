package marketplace

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/sony/gobreaker/v2"
	"golang.org/x/time/rate"
)

const defaultTimeout = 20 * time.Second

// transport is the shared HTTP layer for provider adapters: one rate
// limiter and one circuit breaker per marketplace. An open breaker
// surfaces as a provider error, which the aggregator downgrades to an
// empty contribution.
type transport struct {
	httpClient *http.Client
	limiter    *rate.Limiter
	breaker    *gobreaker.CircuitBreaker[[]byte]
}

func newTransport(name string, rps float64, burst int) *transport {
	settings := gobreaker.Settings{
		Name:    name,
		Timeout: 30 * time.Second,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= 5
		},
	}
	return &transport{
		httpClient: &http.Client{Timeout: defaultTimeout},
		limiter:    rate.NewLimiter(rate.Limit(rps), burst),
		breaker:    gobreaker.NewCircuitBreaker[[]byte](settings),
	}
}

// do executes the request through the limiter and breaker, returning the
// response body. Non-2xx statuses are errors carrying the status code.
func (t *transport) do(ctx context.Context, req *http.Request) ([]byte, error) {
	if err := t.limiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("rate limiter: %w", err)
	}

	return t.breaker.Execute(func() ([]byte, error) {
		resp, err := t.httpClient.Do(req.WithContext(ctx))
		if err != nil {
			return nil, err
		}
		defer resp.Body.Close()

		body, err := io.ReadAll(resp.Body)
		if err != nil {
			return nil, fmt.Errorf("read response: %w", err)
		}
		if resp.StatusCode != http.StatusOK {
			return nil, fmt.Errorf("status %d: %s", resp.StatusCode, truncate(string(body), 200))
		}
		return body, nil
	})
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n]
}
