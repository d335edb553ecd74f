package fetch

import (
	"context"
	"fmt"
	"io"
	"time"

	drepo "IndexForge/internal/domain/repository"
	xhttp "IndexForge/pkg/http"
	applogger "IndexForge/pkg/logger"
	"IndexForge/pkg/util"

	"github.com/sony/gobreaker"
	"golang.org/x/time/rate"
)

// previewLimit bounds the upstream body carried on application failures.
const previewLimit = 256

// Config wires a Client to one provider.
type Config struct {
	Name     string
	Policy   Policy
	RPS      float64 // 0 disables client-side pacing
	Burst    int
	Breaker  bool
	Failures uint32        // consecutive failures that trip the breaker
	Cooldown time.Duration // open-state duration
}

// Client runs bounded, classified fetch attempts against one provider. It is
// purely request/response: it never touches the cache.
type Client struct {
	name    string
	http    *xhttp.Client
	policy  Policy
	limiter *rate.Limiter
	breaker *gobreaker.CircuitBreaker
	log     *applogger.Logger
	metrics drepo.Metrics
}

// New creates a fetch client for one provider. Logger and metrics may be nil.
func New(cfg Config, log *applogger.Logger, metrics drepo.Metrics) *Client {
	policy := cfg.Policy.normalize()

	c := &Client{
		name:    cfg.Name,
		http:    xhttp.NewClient(xhttp.WithTimeout(policy.Timeout)),
		policy:  policy,
		log:     log,
		metrics: metrics,
	}

	if cfg.RPS > 0 {
		burst := cfg.Burst
		if burst <= 0 {
			burst = 1
		}
		c.limiter = rate.NewLimiter(rate.Limit(cfg.RPS), burst)
	}

	if cfg.Breaker {
		failures := cfg.Failures
		if failures == 0 {
			failures = 5
		}
		cooldown := cfg.Cooldown
		if cooldown <= 0 {
			cooldown = 30 * time.Second
		}
		c.breaker = gobreaker.NewCircuitBreaker(gobreaker.Settings{
			Name:        cfg.Name,
			MaxRequests: 1,
			Timeout:     cooldown,
			ReadyToTrip: func(counts gobreaker.Counts) bool {
				return counts.ConsecutiveFailures >= failures
			},
			OnStateChange: func(name string, from, to gobreaker.State) {
				if log != nil {
					log.Warn("fetch breaker state changed",
						applogger.String("provider", name),
						applogger.String("from", from.String()),
						applogger.String("to", to.String()),
					)
				}
			},
		})
	}

	return c
}

// Name returns the provider label.
func (c *Client) Name() string { return c.name }

// Fetch runs the retry state machine for one request and returns the payload
// bytes. A non-nil error is always a classified *Error.
func (c *Client) Fetch(ctx context.Context, opts *xhttp.RequestOptions) ([]byte, error) {
	if c.breaker == nil {
		return c.fetch(ctx, opts)
	}

	payload, err := c.breaker.Execute(func() (interface{}, error) {
		return c.fetch(ctx, opts)
	})
	if err != nil {
		if fe, ok := AsError(err); ok {
			return nil, fe
		}
		// Breaker is open: fail fast without touching the network.
		c.recordFetch("breaker_open")
		return nil, &Error{Kind: KindTransport, Err: fmt.Errorf("%s: %w", c.name, err)}
	}
	return payload.([]byte), nil
}

// fetch is the attempt loop: backoff sleeps delay only this call, transient
// failures retry until the attempt budget runs out, transport and
// application failures abort immediately.
func (c *Client) fetch(ctx context.Context, opts *xhttp.RequestOptions) ([]byte, error) {
	var lastErr *Error

	for attempt := 0; attempt < c.policy.Attempts; attempt++ {
		if attempt > 0 {
			if err := sleep(ctx, c.policy.Delay(attempt-1)); err != nil {
				return nil, &Error{Kind: KindTransient, Err: err}
			}
		}

		if c.limiter != nil {
			if err := c.limiter.Wait(ctx); err != nil {
				return nil, &Error{Kind: KindTransient, Err: err}
			}
		}

		payload, ferr := c.attempt(ctx, opts)
		if ferr == nil {
			c.recordFetch("success")
			return payload, nil
		}

		lastErr = ferr
		c.recordFetch(ferr.Kind.String())

		if ferr.Kind != KindTransient {
			break
		}

		if c.log != nil {
			c.log.Warn("fetch attempt failed",
				applogger.String("provider", c.name),
				applogger.Int("attempt", attempt+1),
				applogger.Error(ferr),
			)
		}
	}

	return nil, lastErr
}

// attempt issues a single request under its own deadline.
func (c *Client) attempt(ctx context.Context, opts *xhttp.RequestOptions) ([]byte, *Error) {
	actx, cancel := context.WithTimeout(ctx, c.policy.Timeout)
	defer cancel()

	resp, err := c.http.SendRequest(actx, opts)
	if err != nil {
		return nil, &Error{Kind: classifyTransport(err), Err: err}
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &Error{Kind: KindTransient, Err: fmt.Errorf("read body: %w", err)}
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, &Error{
			Kind:        classifyStatus(resp.StatusCode),
			Status:      resp.StatusCode,
			BodyPreview: util.Truncate(string(body), previewLimit),
			Err:         fmt.Errorf("unexpected status %d", resp.StatusCode),
		}
	}

	return body, nil
}

func (c *Client) recordFetch(outcome string) {
	if c.metrics != nil {
		c.metrics.RecordFetch(c.name, outcome)
	}
}

func sleep(ctx context.Context, d time.Duration) error {
	select {
	case <-time.After(d):
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
