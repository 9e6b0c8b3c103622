package metrics

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/genelens/genelens/ensembl"
	"github.com/genelens/genelens/ratelimit"
)

type timeoutErr struct{}

func (timeoutErr) Error() string   { return "i/o timeout" }
func (timeoutErr) Timeout() bool   { return true }
func (timeoutErr) Temporary() bool { return true }

func TestClassify(t *testing.T) {
	tests := []struct {
		name       string
		record     ensembl.RequestRecord
		wantStatus string
		wantKind   string
	}{
		{
			name:       "success",
			record:     ensembl.RequestRecord{StatusCode: 200},
			wantStatus: "200",
		},
		{
			name: "status error",
			record: ensembl.RequestRecord{
				StatusCode: 404,
				Err:        &ensembl.StatusError{StatusCode: 404, Status: "404 Not Found"},
			},
			wantStatus: "404",
			wantKind:   KindStatus,
		},
		{
			name:       "deadline",
			record:     ensembl.RequestRecord{Err: fmt.Errorf("get: %w", context.DeadlineExceeded)},
			wantStatus: "none",
			wantKind:   KindTimeout,
		},
		{
			name:       "net timeout",
			record:     ensembl.RequestRecord{Err: timeoutErr{}},
			wantStatus: "none",
			wantKind:   KindTimeout,
		},
		{
			name:       "canceled",
			record:     ensembl.RequestRecord{Err: context.Canceled},
			wantStatus: "none",
			wantKind:   KindCanceled,
		},
		{
			name:       "decode",
			record:     ensembl.RequestRecord{StatusCode: 200, Err: errors.New("unexpected end of JSON input")},
			wantStatus: "200",
			wantKind:   KindDecode,
		},
		{
			name:       "transport",
			record:     ensembl.RequestRecord{Err: errors.New("connection refused")},
			wantStatus: "none",
			wantKind:   KindTransport,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			status, kind := Classify(tt.record)
			require.Equal(t, tt.wantStatus, status)
			require.Equal(t, tt.wantKind, kind)
		})
	}
}

func TestRecordersWithoutTelemetry(t *testing.T) {
	// All recorders are no-ops until InitMetrics has run.
	require.NotPanics(t, func() {
		Upstream{}.ObserveRequest(context.Background(), ensembl.RequestRecord{Endpoint: "lookup.id", Duration: time.Millisecond})
		RecordLimiterStats(ratelimit.Stats{Running: 1, Queued: 2})
		RecordHealthCheck("ensembl", true, time.Millisecond)
		RecordError("NOT_FOUND", 404)
		RecordErrorByEndpoint("/v1/lookup/id/{id}", "NOT_FOUND")
		RecordPanic()
		SetServerStartTime(time.Now().Unix())
		SetServerUptime(1)
	})
}
