package ensembl

import (
	"context"
	"errors"
	"net"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/genelens/genelens/ratelimit"
)

func newTestClient(t *testing.T, handler http.HandlerFunc, opts ...Option) *Client {
	t.Helper()

	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	opts = append([]Option{
		WithBaseURL(server.URL),
		WithHTTPClient(server.Client()),
		WithRequestsPerSecond(100),
	}, opts...)
	client, err := NewClient(opts...)
	require.NoError(t, err)
	return client
}

func TestNewClientDefaults(t *testing.T) {
	client, err := NewClient()
	require.NoError(t, err)
	require.Equal(t, DefaultBaseURL, client.BaseURL())
	require.Equal(t, DefaultRequestsPerSecond, client.Limiter().MaxConcurrent())
	require.Equal(t, time.Second/DefaultRequestsPerSecond, client.Limiter().MinInterval())
	require.NotNil(t, client.Xrefs)
	require.NotNil(t, client.LD)
	require.NotNil(t, client.Lookup)
}

func TestNewClientRejectsInvalidOptions(t *testing.T) {
	t.Run("RelativeBaseURL", func(t *testing.T) {
		_, err := NewClient(WithBaseURL("rest.ensembl.org"))
		require.Error(t, err)
	})

	t.Run("ZeroBudget", func(t *testing.T) {
		_, err := NewClient(WithRequestsPerSecond(0))
		require.ErrorIs(t, err, ratelimit.ErrInvalidConfig)
	})
}

func TestClientSharesLimiter(t *testing.T) {
	limiter, err := ratelimit.New(1, 0)
	require.NoError(t, err)

	client, err := NewClient(WithLimiter(limiter), WithRequestsPerSecond(50))
	require.NoError(t, err)
	require.Same(t, limiter, client.Limiter())
}

func TestClientSendsJSONHeaders(t *testing.T) {
	var (
		method string
		header http.Header
	)
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		method = r.Method
		header = r.Header.Clone()
		_, _ = w.Write([]byte(`[]`))
	}, WithUserAgent("genelens-test"))

	_, err := client.Xrefs.Symbol(context.Background(), XrefSymbolRequest{Species: "human", Symbol: "BRCA2"})
	require.NoError(t, err)
	require.Equal(t, http.MethodGet, method)
	require.Equal(t, "application/json", header.Get("Accept"))
	require.Equal(t, "application/json", header.Get("Content-Type"))
	require.Equal(t, "genelens-test", header.Get("User-Agent"))
}

func TestClientStatusError(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusBadRequest)
		_, _ = w.Write([]byte(`{"error":"ID 'ENSG0' not found"}`))
	})

	_, err := client.Lookup.ID(context.Background(), LookupIDRequest{ID: "ENSG0"})
	require.Error(t, err)

	var se *StatusError
	require.ErrorAs(t, err, &se)
	require.Equal(t, http.StatusBadRequest, se.StatusCode)
	require.Equal(t, "ID 'ENSG0' not found", se.Message)
	require.True(t, IsStatus(err, http.StatusBadRequest))
	require.False(t, IsStatus(err, http.StatusNotFound))
	require.Contains(t, se.Error(), "ID 'ENSG0' not found")
}

func TestClientStatusErrorWithoutJSONBody(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
		_, _ = w.Write([]byte(`<html>maintenance</html>`))
	})

	_, err := client.Xrefs.ID(context.Background(), XrefIDRequest{ID: "ENSG00000157764"})
	var se *StatusError
	require.ErrorAs(t, err, &se)
	require.Equal(t, http.StatusServiceUnavailable, se.StatusCode)
	require.Empty(t, se.Message)
}

func TestClientMalformedJSON(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{not json`))
	})

	res, err := client.Lookup.ID(context.Background(), LookupIDRequest{ID: "ENSG00000157764"})
	require.Error(t, err)
	require.Nil(t, res)
	require.Contains(t, err.Error(), "decode lookup.id response")
}

func TestClientTransportErrorPassesThrough(t *testing.T) {
	listener, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	addr := listener.Addr().String()
	require.NoError(t, listener.Close())

	client, err := NewClient(WithBaseURL("http://"+addr), WithRequestsPerSecond(100))
	require.NoError(t, err)

	_, err = client.Xrefs.Symbol(context.Background(), XrefSymbolRequest{Species: "human", Symbol: "BRCA2"})
	require.Error(t, err)

	var opErr *net.OpError
	require.True(t, errors.As(err, &opErr), "expected a network error, got %T", err)
}

func TestClientObserverSeesEveryRequest(t *testing.T) {
	var (
		mu      sync.Mutex
		records []RequestRecord
	)
	observer := ObserverFunc(func(ctx context.Context, record RequestRecord) {
		mu.Lock()
		defer mu.Unlock()
		records = append(records, record)
	})

	calls := 0
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		calls++
		if calls == 2 {
			w.WriteHeader(http.StatusTooManyRequests)
			return
		}
		_, _ = w.Write([]byte(`[{"id":"ENSG00000139618","type":"gene"}]`))
	}, WithObserver(observer))

	_, err := client.Xrefs.Symbol(context.Background(), XrefSymbolRequest{Species: "human", Symbol: "BRCA2", ExternalType: "HGNC"})
	require.NoError(t, err)
	_, err = client.Xrefs.Symbol(context.Background(), XrefSymbolRequest{Species: "human", Symbol: "BRCA2"})
	require.True(t, IsStatus(err, http.StatusTooManyRequests))

	require.Len(t, records, 2)
	require.Equal(t, "xrefs.symbol", records[0].Endpoint)
	require.Equal(t, "/xrefs/symbol/human/BRCA2", records[0].Path)
	require.Equal(t, "external_type=HGNC", records[0].Query)
	require.Equal(t, http.StatusOK, records[0].StatusCode)
	require.NoError(t, records[0].Err)
	require.NotEmpty(t, records[0].ID)

	require.Equal(t, http.StatusTooManyRequests, records[1].StatusCode)
	require.Error(t, records[1].Err)
	require.NotEqual(t, records[0].ID, records[1].ID)
}

func TestClientRoutesCallsThroughLimiter(t *testing.T) {
	limiter, err := ratelimit.New(1, 40*time.Millisecond)
	require.NoError(t, err)

	var (
		mu     sync.Mutex
		starts []time.Time
	)
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		mu.Lock()
		starts = append(starts, time.Now())
		mu.Unlock()
		_, _ = w.Write([]byte(`[]`))
	}, WithLimiter(limiter))

	var wg sync.WaitGroup
	for i := 0; i < 3; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, _ = client.LD.ForRegion(context.Background(), LDRegionRequest{
				Species:    "human",
				Region:     "6:25837556..25843455",
				Population: PopulationCEU,
			})
		}()
	}
	wg.Wait()

	require.Len(t, starts, 3)
	require.GreaterOrEqual(t, starts[2].Sub(starts[0]), 70*time.Millisecond)
}

func TestClientObserverRunsOutsideLimiterSlot(t *testing.T) {
	limiter, err := ratelimit.New(1, 0)
	require.NoError(t, err)

	entered := make(chan struct{})
	release := make(chan struct{})
	var once sync.Once
	observer := ObserverFunc(func(ctx context.Context, record RequestRecord) {
		first := false
		once.Do(func() { first = true })
		if first {
			close(entered)
			<-release
		}
	})
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`[]`))
	}, WithLimiter(limiter), WithObserver(observer))

	firstDone := make(chan error, 1)
	go func() {
		_, err := client.Xrefs.Symbol(context.Background(), XrefSymbolRequest{Species: "human", Symbol: "BRCA2"})
		firstDone <- err
	}()
	<-entered
	defer close(release)

	require.Equal(t, 0, limiter.Stats().Running)

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	_, err = client.Xrefs.Symbol(ctx, XrefSymbolRequest{Species: "human", Symbol: "BRCA1"})
	require.NoError(t, err)

	select {
	case err := <-firstDone:
		t.Fatalf("first call returned before its observer finished: %v", err)
	default:
	}
}

func TestClientBaseURLWithPathPrefix(t *testing.T) {
	var path string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		path = r.URL.Path
		_, _ = w.Write([]byte(`{"id":"ENSG00000157764"}`))
	}))
	defer server.Close()

	client, err := NewClient(WithBaseURL(server.URL+"/grch37/"), WithHTTPClient(server.Client()))
	require.NoError(t, err)

	res, err := client.Lookup.ID(context.Background(), LookupIDRequest{ID: "ENSG00000157764"})
	require.NoError(t, err)
	require.Equal(t, "ENSG00000157764", res.ID)
	require.Equal(t, "/grch37/lookup/id/ENSG00000157764", path)
}
