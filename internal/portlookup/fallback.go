package portlookup

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"

	"bkcnorm/internal/port"
)

// circuitState tracks rate-limit backoff for a single resolver.
type circuitState struct {
	mu      sync.RWMutex
	resetAt time.Time // zero value = closed (healthy)
}

func (c *circuitState) isOpenWithReset(now time.Time) (time.Time, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.resetAt, !c.resetAt.IsZero() && now.Before(c.resetAt)
}

func (c *circuitState) open(resetAt time.Time) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.resetAt = resetAt
}

// FallbackResolver tries resolvers in order, skipping those with open circuits.
// It implements port.PortResolver.
type FallbackResolver struct {
	resolvers []port.PortResolver
	circuits  []*circuitState
	names     []string
	logger    *zap.Logger
	now       func() time.Time
}

// NewFallbackResolver creates a FallbackResolver from an ordered list of resolvers and their names.
func NewFallbackResolver(resolvers []port.PortResolver, names []string, logger *zap.Logger) *FallbackResolver {
	circuits := make([]*circuitState, len(resolvers))
	for i := range circuits {
		circuits[i] = &circuitState{}
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &FallbackResolver{
		resolvers: resolvers,
		circuits:  circuits,
		names:     names,
		logger:    logger.Named("portlookup.fallback"),
		now:       time.Now,
	}
}

func (f *FallbackResolver) Resolve(ctx context.Context, description, countryCode string) (string, error) {
	now := f.now()
	var lastErr error
	allRateLimited := true
	var earliestReset time.Time

	for i, r := range f.resolvers {
		if resetAt, open := f.circuits[i].isOpenWithReset(now); open {
			f.logger.Debug("skipping resolver, circuit open",
				zap.String("resolver", f.names[i]),
				zap.Time("reset_at", resetAt),
			)
			if earliestReset.IsZero() || resetAt.Before(earliestReset) {
				earliestReset = resetAt
			}
			continue
		}

		code, err := r.Resolve(ctx, description, countryCode)
		if err == nil {
			return code, nil
		}

		f.logger.Info("resolver failed", zap.String("resolver", f.names[i]), zap.Error(err))
		lastErr = err

		var rlErr *RateLimitError
		if errors.As(err, &rlErr) {
			resetAt := now.Add(rlErr.RetryAfter)
			f.circuits[i].open(resetAt)
			if earliestReset.IsZero() || resetAt.Before(earliestReset) {
				earliestReset = resetAt
			}
		} else {
			allRateLimited = false
		}
	}

	if lastErr == nil || allRateLimited {
		retryAfter := earliestReset.Sub(now)
		if retryAfter < time.Second {
			retryAfter = time.Second
		}
		return "", NewRateLimitError("all", fmt.Errorf("all port resolvers rate limited"), int(retryAfter.Seconds()))
	}

	return "", fmt.Errorf("all port resolvers failed: %w", lastErr)
}
