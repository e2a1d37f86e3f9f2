package bot

import (
	"context"
	"fmt"

	"golang.org/x/time/rate"
)

// RateLimitedSender spaces out replies to stay under transport send limits.
type RateLimitedSender struct {
	next    Sender
	limiter *rate.Limiter
}

// NewRateLimitedSender wraps next. A non-positive perSecond disables limiting.
func NewRateLimitedSender(next Sender, perSecond float64, burst int) *RateLimitedSender {
	limit := rate.Limit(perSecond)
	if perSecond <= 0 {
		limit = rate.Inf
	}
	if burst < 1 {
		burst = 1
	}
	return &RateLimitedSender{
		next:    next,
		limiter: rate.NewLimiter(limit, burst),
	}
}

// Send waits for a token, then forwards r.
func (s *RateLimitedSender) Send(ctx context.Context, r Reply) error {
	if err := s.limiter.Wait(ctx); err != nil {
		return fmt.Errorf("rate limit: %w", err)
	}
	return s.next.Send(ctx, r)
}
