// Package extract sends a result-sheet image to an ordered list of interchangeable
// vision backends and returns the first raw answer it gets.
package extract

import (
	"context"
	"errors"
	"fmt"
	"time"

	"sgpa-scan/api/internal/logger"
)

// DefaultBackoff is the pause after a rate-limited candidate.
const DefaultBackoff = time.Second

// Backend is one candidate: a credential bound to a provider endpoint.
// Implementations wrap failures with ErrRateLimited or ErrTransport.
type Backend interface {
	Name() string
	Extract(ctx context.Context, instruction string, img Image) (string, error)
}

// WaitFunc pauses between candidates.
type WaitFunc func(ctx context.Context, d time.Duration) error

type Result struct {
	Text     string
	Backend  string
	Attempts int
}

type Client struct {
	backends []Backend
	backoff  time.Duration
	wait     WaitFunc
	log      *logger.Logger
}

type Option func(*Client)

func WithBackoff(d time.Duration) Option {
	return func(c *Client) {
		if d >= 0 {
			c.backoff = d
		}
	}
}

func WithWait(fn WaitFunc) Option {
	return func(c *Client) {
		if fn != nil {
			c.wait = fn
		}
	}
}

func WithLogger(l *logger.Logger) Option {
	return func(c *Client) {
		if l != nil {
			c.log = l
		}
	}
}

// New builds a client over backends, tried in the given order.
func New(backends []Backend, opts ...Option) *Client {
	c := &Client{
		backends: append([]Backend(nil), backends...),
		backoff:  DefaultBackoff,
		wait:     sleep,
		log:      logger.Nop(),
	}
	for _, o := range opts {
		o(c)
	}
	return c
}

// Backends lists candidate names in try order.
func (c *Client) Backends() []string {
	out := make([]string, 0, len(c.backends))
	for _, b := range c.backends {
		out = append(out, b.Name())
	}
	return out
}

// Extract tries candidates one at a time and stops at the first success.
// A rate-limited candidate is followed by a fixed pause unless it was the last one;
// other failures move on immediately. When all candidates fail the error is
// ErrServiceUnavailable.
func (c *Client) Extract(ctx context.Context, img Image) (Result, error) {
	if len(img.Data) == 0 {
		return Result{}, ErrEmptyImage
	}
	for i, b := range c.backends {
		log := c.log.With("candidate", b.Name(), "attempt", i+1)
		log.Debug("submitting image", "mime", img.MIMEType, "bytes", len(img.Data))

		text, err := b.Extract(ctx, Instruction, img)
		if err == nil {
			log.Info("extraction succeeded")
			return Result{Text: text, Backend: b.Name(), Attempts: i + 1}, nil
		}
		if ctxErr := ctx.Err(); ctxErr != nil {
			return Result{}, fmt.Errorf("extract: %w", ctxErr)
		}

		last := i == len(c.backends)-1
		if errors.Is(err, ErrRateLimited) {
			log.Warn("candidate rate limited", "error", err)
			if !last {
				if werr := c.wait(ctx, c.backoff); werr != nil {
					return Result{}, fmt.Errorf("extract: %w", werr)
				}
			}
			continue
		}
		log.Warn("candidate failed", "error", err)
	}
	c.log.Error("all candidates exhausted", "candidates", len(c.backends))
	return Result{}, ErrServiceUnavailable
}

func sleep(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return nil
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
