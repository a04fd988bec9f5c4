package providers

import (
	"context"
	"errors"
	"fmt"
	"io"
	"math"
	"net/http"
	"strings"
	"time"

	"github.com/sony/gobreaker"
	"go.uber.org/zap"

	"github.com/i474232898/meribel-snow-monitor/internal/weather"
)

// BackoffConfig controls exponential backoff behaviour.
type BackoffConfig struct {
	MaxRetries      int
	InitialInterval time.Duration
	MaxInterval     time.Duration
}

// HTTPClientConfig bundles HTTP client and resilience settings.
type HTTPClientConfig struct {
	Client  *http.Client
	Backoff BackoffConfig
}

const (
	maxBodyBytes    = 4 << 20
	maxErrorSnippet = 512
)

var (
	errCircuitOpen   = errors.New("circuit breaker open")
	errNoHTTPClient  = errors.New("http client not configured")
	errInvalidConfig = errors.New("invalid backoff configuration")
)

// delay doubles InitialInterval per attempt, clamped to MaxInterval.
// Without a MaxInterval it saturates at the largest Duration.
func (b BackoffConfig) delay(attempt int) time.Duration {
	d := b.InitialInterval
	for i := 0; i < attempt; i++ {
		if b.MaxInterval > 0 && d >= b.MaxInterval {
			break
		}
		if d > math.MaxInt64/2 {
			return time.Duration(math.MaxInt64)
		}
		d *= 2
	}
	if b.MaxInterval > 0 && d > b.MaxInterval {
		d = b.MaxInterval
	}
	return d
}

// newBreaker returns a circuit breaker that only counts failures a retry
// could fix; a 400 for a bad query says nothing about upstream health.
// Requests cancelled by the caller, e.g. a superseded fetch cycle, are not
// failures either.
func newBreaker(name string, timeout time.Duration, logger *zap.Logger) *gobreaker.CircuitBreaker {
	return gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:        name,
		MaxRequests: 5,
		Interval:    1 * time.Minute,
		Timeout:     timeout,
		IsSuccessful: func(err error) bool {
			return err == nil || errors.Is(err, context.Canceled) || !retryable(err)
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			logger.Warn("circuit breaker state changed",
				zap.String("breaker", name),
				zap.String("from", from.String()),
				zap.String("to", to.String()))
		},
	})
}

// retryable reports whether err is a transport failure, a 429 or a 5xx.
func retryable(err error) bool {
	var upstream *weather.UpstreamError
	if errors.As(err, &upstream) {
		return upstream.Temporary()
	}
	var netErr *weather.NetworkError
	return errors.As(err, &netErr)
}

// doRequestWithResilience executes the HTTP request with retries, exponential
// backoff and a circuit breaker, and returns the body of a 2xx response.
// Failures are returned as *weather.NetworkError or *weather.UpstreamError.
func doRequestWithResilience(
	ctx context.Context,
	endpoint string,
	cfg HTTPClientConfig,
	cb *gobreaker.CircuitBreaker,
	logger *zap.Logger,
	buildRequest func(ctx context.Context) (*http.Request, error),
) ([]byte, error) {
	if cfg.Client == nil {
		return nil, errNoHTTPClient
	}
	if cfg.Backoff.MaxRetries < 0 || cfg.Backoff.InitialInterval <= 0 {
		return nil, errInvalidConfig
	}

	var attempt int
	for {
		if err := ctx.Err(); err != nil {
			return nil, &weather.NetworkError{Endpoint: endpoint, Err: err}
		}

		req, err := buildRequest(ctx)
		if err != nil {
			return nil, err
		}

		result, err := cb.Execute(func() (interface{}, error) {
			body, sendErr := send(cfg.Client, endpoint, req)
			if sendErr != nil && errors.Is(ctx.Err(), context.Canceled) {
				return nil, &weather.NetworkError{Endpoint: endpoint, Err: ctx.Err()}
			}
			return body, sendErr
		})
		if err == nil {
			body, ok := result.([]byte)
			if !ok {
				return nil, fmt.Errorf("unexpected result type from circuit breaker")
			}
			return body, nil
		}

		// If circuit is open, propagate immediately.
		if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
			return nil, &weather.NetworkError{Endpoint: endpoint, Err: fmt.Errorf("%w: %v", errCircuitOpen, err)}
		}
		if ctxErr := ctx.Err(); ctxErr != nil {
			return nil, &weather.NetworkError{Endpoint: endpoint, Err: ctxErr}
		}
		if !retryable(err) || attempt >= cfg.Backoff.MaxRetries {
			return nil, err
		}

		delay := cfg.Backoff.delay(attempt)
		logger.Warn("upstream request failed, retrying",
			zap.String("endpoint", endpoint),
			zap.Int("attempt", attempt+1),
			zap.Duration("backoff", delay),
			zap.Error(err))

		timer := time.NewTimer(delay)
		select {
		case <-ctx.Done():
			timer.Stop()
			return nil, &weather.NetworkError{Endpoint: endpoint, Err: ctx.Err()}
		case <-timer.C:
		}

		attempt++
	}
}

// send performs one attempt. The body is always drained and closed.
func send(client *http.Client, endpoint string, req *http.Request) ([]byte, error) {
	resp, err := client.Do(req)
	if err != nil {
		return nil, &weather.NetworkError{Endpoint: endpoint, Err: err}
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		return nil, &weather.NetworkError{Endpoint: endpoint, Err: fmt.Errorf("read body: %w", err)}
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, &weather.UpstreamError{
			Endpoint:   endpoint,
			StatusCode: resp.StatusCode,
			Body:       snippet(body),
		}
	}
	return body, nil
}

func snippet(body []byte) string {
	s := strings.TrimSpace(string(body))
	if len(s) > maxErrorSnippet {
		s = s[:maxErrorSnippet] + "..."
	}
	return s
}
