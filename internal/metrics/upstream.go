package metrics

import (
	"context"
	"errors"
	"net"
	"strconv"

	"github.com/genelens/genelens/ensembl"
	"github.com/genelens/genelens/internal/observability"
)

// Upstream metric names
const (
	UpstreamRequestsTotal   = "ensembl_requests_total"
	UpstreamRequestDuration = "ensembl_request_duration_ms"
	UpstreamErrorsTotal     = "ensembl_request_errors_total"
)

// Error kinds reported in UpstreamErrorsTotal.
const (
	KindStatus    = "status"
	KindTimeout   = "timeout"
	KindCanceled  = "canceled"
	KindTransport = "transport"
	KindDecode    = "decode"
)

// Upstream is an ensembl.Observer that counts and times Ensembl requests.
type Upstream struct{}

// ObserveRequest implements ensembl.Observer.
func (Upstream) ObserveRequest(_ context.Context, record ensembl.RequestRecord) {
	if observability.TelemetrySystem == nil {
		return
	}

	status, kind := Classify(record)
	_ = observability.TelemetrySystem.Counter(
		UpstreamRequestsTotal,
		1,
		map[string]string{
			"endpoint": record.Endpoint,
			"status":   status,
		},
	)
	_ = observability.TelemetrySystem.Histogram(
		UpstreamRequestDuration,
		record.Duration,
		map[string]string{
			"endpoint": record.Endpoint,
		},
	)
	if kind != "" {
		_ = observability.TelemetrySystem.Counter(
			UpstreamErrorsTotal,
			1,
			map[string]string{
				"endpoint": record.Endpoint,
				"kind":     kind,
			},
		)
	}
}

// Classify returns the status label for a completed request and, for failed
// requests, the error kind. The status label is the HTTP status code, or
// "none" when no response arrived.
func Classify(record ensembl.RequestRecord) (status, kind string) {
	status = "none"
	if record.StatusCode > 0 {
		status = strconv.Itoa(record.StatusCode)
	}

	err := record.Err
	if err == nil {
		return status, ""
	}

	var se *ensembl.StatusError
	var netErr net.Error
	switch {
	case errors.As(err, &se):
		return status, KindStatus
	case errors.Is(err, context.DeadlineExceeded):
		return status, KindTimeout
	case errors.As(err, &netErr) && netErr.Timeout():
		return status, KindTimeout
	case errors.Is(err, context.Canceled):
		return status, KindCanceled
	case record.StatusCode > 0:
		return status, KindDecode
	default:
		return status, KindTransport
	}
}

var _ ensembl.Observer = Upstream{}
