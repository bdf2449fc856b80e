// Package reviewsapi talks to the upstream reviews service
// (GET/POST /api/hotels/{id}/reviews).
package reviewsapi

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/sony/gobreaker"
	"golang.org/x/time/rate"

	"hotel_front/internal/adapters/observability"
	"hotel_front/internal/domain"
)

const service = "reviews"

type Client struct {
	base string
	hc   *http.Client
	rl   *rate.Limiter
	cb   *gobreaker.CircuitBreaker
}

// New builds a client. Every call is a single attempt: the aggregator
// absorbs failures, so there is nothing to gain from retrying here.
func New(base string, rps int, timeout time.Duration) (*Client, error) {
	base = strings.TrimRight(strings.TrimSpace(base), "/")
	if base == "" {
		return nil, fmt.Errorf("reviews base URL is required")
	}
	if rps <= 0 {
		rps = 10
	}
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	cb := gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:     service,
		Interval: time.Minute,
		Timeout:  30 * time.Second,
		ReadyToTrip: func(c gobreaker.Counts) bool {
			return c.ConsecutiveFailures >= 5
		},
	})
	return &Client{
		base: base,
		hc:   &http.Client{Timeout: timeout},
		rl:   rate.NewLimiter(rate.Limit(rps), rps),
		cb:   cb,
	}, nil
}

// ---- Public API ----

func (c *Client) ListReviews(ctx context.Context, hotelID int64) ([]domain.Review, error) {
	var out []wireReview
	if err := c.do(ctx, http.MethodGet, c.reviewsURL(hotelID), "list", nil, &out); err != nil {
		return nil, err
	}
	list := make([]domain.Review, 0, len(out))
	for _, w := range out {
		list = append(list, w.toDomain(hotelID))
	}
	return list, nil
}

func (c *Client) SubmitReview(ctx context.Context, hotelID int64, in domain.NewReview) (domain.Review, error) {
	var out wireReview
	if err := c.do(ctx, http.MethodPost, c.reviewsURL(hotelID), "submit", in, &out); err != nil {
		return domain.Review{}, err
	}
	r := out.toDomain(hotelID)
	if r.ID == nil {
		// a 2xx without identity is not a stored review
		return domain.Review{}, fmt.Errorf("%w: response carries no id", domain.ErrMalformed)
	}
	return r, nil
}

// ---- Internals ----

func (c *Client) reviewsURL(hotelID int64) string {
	return fmt.Sprintf("%s/api/hotels/%d/reviews", c.base, hotelID)
}

// statusError keeps the upstream status for metrics and logs.
type statusError struct {
	code int
	body string
}

func (e *statusError) Error() string {
	if e.body == "" {
		return fmt.Sprintf("bad status %d", e.code)
	}
	return fmt.Sprintf("bad status %d: %s", e.code, e.body)
}

func (e *statusError) Unwrap() error { return domain.ErrRejected }

// do performs one rate-limited request through the circuit breaker and
// decodes a 2xx JSON body into out.
func (c *Client) do(ctx context.Context, method, url, endpoint string, in, out any) error {
	if err := c.rl.Wait(ctx); err != nil {
		return fmt.Errorf("%w: %v", domain.ErrNetwork, err)
	}

	var payload []byte
	if in != nil {
		b, err := json.Marshal(in)
		if err != nil {
			return fmt.Errorf("%w: %v", domain.ErrMalformed, err)
		}
		payload = b
	}

	start := time.Now()
	status := 0
	// 4xx answers are the caller's problem and stay out of the breaker counts.
	var rejected error
	_, err := c.cb.Execute(func() (interface{}, error) {
		var body io.Reader
		if payload != nil {
			body = bytes.NewReader(payload)
		}
		req, err := http.NewRequestWithContext(ctx, method, url, body)
		if err != nil {
			return nil, err
		}
		req.Header.Set("Accept", "application/json")
		req.Header.Set("User-Agent", "hotel-front/1.0")
		if payload != nil {
			req.Header.Set("Content-Type", "application/json")
		}

		resp, err := c.hc.Do(req)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", domain.ErrNetwork, err)
		}
		defer resp.Body.Close()
		status = resp.StatusCode

		if resp.StatusCode < 200 || resp.StatusCode >= 300 {
			// read a small error body for diagnostics
			b, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
			se := &statusError{code: resp.StatusCode, body: strings.TrimSpace(string(b))}
			if resp.StatusCode < 500 {
				rejected = se
				return nil, nil
			}
			return nil, se
		}
		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			return nil, fmt.Errorf("%w: %v", domain.ErrMalformed, err)
		}
		return nil, nil
	})
	observability.ObserveExternal(service, endpoint, status, time.Since(start))

	if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
		return fmt.Errorf("%w: %v", domain.ErrNetwork, err)
	}
	if err == nil && rejected != nil {
		return rejected
	}
	return err
}
