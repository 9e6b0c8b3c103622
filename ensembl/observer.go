package ensembl

import (
	"context"
	"time"
)

// RequestRecord describes one completed call to Ensembl.
type RequestRecord struct {
	ID       string
	Endpoint string
	Path     string
	Query    string
	// StatusCode is zero when the request never got a response.
	StatusCode int
	StartedAt  time.Time
	Duration   time.Duration
	Err        error
}

// Observer is notified once per completed request, successful or not.
// Implementations must be safe for concurrent use.
type Observer interface {
	ObserveRequest(ctx context.Context, record RequestRecord)
}

// ObserverFunc adapts a function to Observer.
type ObserverFunc func(ctx context.Context, record RequestRecord)

// ObserveRequest calls f.
func (f ObserverFunc) ObserveRequest(ctx context.Context, record RequestRecord) {
	f(ctx, record)
}
