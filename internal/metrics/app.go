package metrics

import (
	"time"

	"github.com/genelens/genelens/internal/observability"
	"github.com/genelens/genelens/ratelimit"
)

// Application-level metrics following Prometheus conventions
var (
	// Limiter metrics
	LimiterRunning = "app_limiter_running"
	LimiterQueued  = "app_limiter_queued"

	// Health check metrics
	HealthCheckTotal    = "app_health_check_total"
	HealthCheckDuration = "app_health_check_duration_ms"

	// Server lifecycle metrics
	ServerStartTime = "app_server_start_time_seconds"
	ServerUptime    = "app_server_uptime_seconds"
)

// RecordLimiterStats publishes the shared limiter's running and queued counts.
func RecordLimiterStats(stats ratelimit.Stats) {
	if observability.TelemetrySystem != nil {
		_ = observability.TelemetrySystem.Gauge(LimiterRunning, float64(stats.Running), nil)
		_ = observability.TelemetrySystem.Gauge(LimiterQueued, float64(stats.Queued), nil)
	}
}

// RecordHealthCheck records a health check execution
func RecordHealthCheck(checkName string, healthy bool, duration time.Duration) {
	status := "healthy"
	if !healthy {
		status = "unhealthy"
	}

	if observability.TelemetrySystem != nil {
		_ = observability.TelemetrySystem.Counter(
			HealthCheckTotal,
			1,
			map[string]string{
				"check":  checkName,
				"status": status,
			},
		)

		_ = observability.TelemetrySystem.Histogram(
			HealthCheckDuration,
			duration,
			map[string]string{
				"check": checkName,
			},
		)
	}
}

// SetServerStartTime records the server start time (Unix timestamp)
func SetServerStartTime(timestamp int64) {
	if observability.TelemetrySystem != nil {
		_ = observability.TelemetrySystem.Gauge(
			ServerStartTime,
			float64(timestamp),
			nil,
		)
	}
}

// SetServerUptime records the server uptime in seconds
func SetServerUptime(seconds int64) {
	if observability.TelemetrySystem != nil {
		_ = observability.TelemetrySystem.Gauge(
			ServerUptime,
			float64(seconds),
			nil,
		)
	}
}
