package llm

import (
	"context"
	"io"
	"time"

	"golang.org/x/time/rate"
)

// Guard wraps a Client with an outbound rate limit and a per-call timeout.
// It never retries.
type Guard struct {
	Next    Client
	Limiter *rate.Limiter
	Timeout time.Duration
}

// GuardOptions holds options for creating a new Guard
type GuardOptions struct {
	Timeout        time.Duration
	RequestsPerSec float64
	Burst          int
}

func NewGuard(next Client, opts GuardOptions) *Guard {
	if opts.Timeout == 0 {
		opts.Timeout = 30 * time.Second
	}
	if opts.RequestsPerSec == 0 {
		opts.RequestsPerSec = 2
	}
	if opts.Burst == 0 {
		opts.Burst = 1
	}

	return &Guard{
		Next:    next,
		Limiter: rate.NewLimiter(rate.Limit(opts.RequestsPerSec), opts.Burst),
		Timeout: opts.Timeout,
	}
}

func (g *Guard) Generate(ctx context.Context, req Request) (string, error) {
	if g.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, g.Timeout)
		defer cancel()
	}

	if g.Limiter != nil {
		if err := g.Limiter.Wait(ctx); err != nil {
			return "", err
		}
	}

	return g.Next.Generate(ctx, req)
}

// Close releases the wrapped client's resources, if it holds any.
func (g *Guard) Close() error {
	if c, ok := g.Next.(io.Closer); ok {
		return c.Close()
	}
	return nil
}
