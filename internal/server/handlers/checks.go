package handlers

import (
	"context"
	"fmt"

	"github.com/genelens/genelens/internal/metrics"
	"github.com/genelens/genelens/ratelimit"
)

// LimiterChecker reports the shared Ensembl limiter as unhealthy once more
// than MaxQueued requests are waiting for admission. Zero disables the
// threshold. Every check also publishes the limiter gauges.
type LimiterChecker struct {
	Limiter   *ratelimit.Limiter
	MaxQueued int
}

// CheckHealth implements HealthChecker.
func (c LimiterChecker) CheckHealth(_ context.Context) error {
	if c.Limiter == nil {
		return fmt.Errorf("limiter not configured")
	}
	stats := c.Limiter.Stats()
	metrics.RecordLimiterStats(stats)
	if c.MaxQueued > 0 && stats.Queued > c.MaxQueued {
		return fmt.Errorf("limiter backlog %d exceeds %d", stats.Queued, c.MaxQueued)
	}
	return nil
}
