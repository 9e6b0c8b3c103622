// Package ensembl provides typed bindings for the Ensembl REST API.
//
// Every call is a single GET scheduled through a shared ratelimit.Limiter so
// that all services of one Client stay within the public API quota. Responses
// are decoded into fixed shapes and returned unmodified; nothing is cached or
// retried.
//
// Documentation for the endpoints can be found at
// https://rest.ensembl.org/documentation.
package ensembl

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/genelens/genelens/ratelimit"
)

const (
	// DefaultBaseURL is the public Ensembl REST host.
	DefaultBaseURL = "https://rest.ensembl.org"

	// DefaultRequestsPerSecond matches the published Ensembl REST quota.
	DefaultRequestsPerSecond = 15

	packageVersion = "0.1.0"
	userAgent      = "genelens/" + packageVersion

	maxErrorBody = 64 << 10
)

// Client talks to the Ensembl REST API.
type Client struct {
	baseURL    *url.URL
	httpClient *http.Client
	limiter    *ratelimit.Limiter
	logger     *zap.Logger
	userAgent  string
	observers  []Observer

	Xrefs  *XrefService
	LD     *LDService
	Lookup *LookupService
}

type settings struct {
	baseURL    string
	httpClient *http.Client
	limiter    *ratelimit.Limiter
	rps        int
	logger     *zap.Logger
	userAgent  string
	observers  []Observer
}

// Option configures a Client.
type Option func(*settings)

// WithBaseURL overrides the API host, e.g. for the GRCh37 mirror or tests.
func WithBaseURL(base string) Option {
	return func(s *settings) { s.baseURL = base }
}

// WithHTTPClient sets the HTTP client used for requests.
func WithHTTPClient(c *http.Client) Option {
	return func(s *settings) { s.httpClient = c }
}

// WithLimiter shares an existing limiter. It takes precedence over
// WithRequestsPerSecond.
func WithLimiter(l *ratelimit.Limiter) Option {
	return func(s *settings) { s.limiter = l }
}

// WithRequestsPerSecond sets the request budget used to build the limiter.
func WithRequestsPerSecond(rps int) Option {
	return func(s *settings) { s.rps = rps }
}

// WithLogger sets the logger. Requests are logged at debug level.
func WithLogger(logger *zap.Logger) Option {
	return func(s *settings) { s.logger = logger }
}

// WithUserAgent overrides the User-Agent header.
func WithUserAgent(ua string) Option {
	return func(s *settings) { s.userAgent = ua }
}

// WithObserver registers an observer notified after every completed request.
func WithObserver(o Observer) Option {
	return func(s *settings) {
		if o != nil {
			s.observers = append(s.observers, o)
		}
	}
}

// NewClient builds a Client. The only failure modes are an unparsable base
// URL and an invalid request budget.
func NewClient(opts ...Option) (*Client, error) {
	s := settings{
		baseURL:   DefaultBaseURL,
		rps:       DefaultRequestsPerSecond,
		userAgent: userAgent,
	}
	for _, opt := range opts {
		opt(&s)
	}

	base, err := url.Parse(strings.TrimSpace(s.baseURL))
	if err != nil {
		return nil, fmt.Errorf("ensembl: invalid base url: %w", err)
	}
	if base.Scheme == "" || base.Host == "" {
		return nil, fmt.Errorf("ensembl: base url must be absolute: %q", s.baseURL)
	}

	logger := s.logger
	if logger == nil {
		logger = zap.NewNop()
	}

	limiter := s.limiter
	if limiter == nil {
		limiter, err = ratelimit.NewPerSecond(s.rps, ratelimit.WithLogger(logger))
		if err != nil {
			return nil, err
		}
	}

	httpClient := s.httpClient
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 30 * time.Second}
	}

	c := &Client{
		baseURL:    base,
		httpClient: httpClient,
		limiter:    limiter,
		logger:     logger,
		userAgent:  s.userAgent,
		observers:  s.observers,
	}
	c.Xrefs = &XrefService{client: c}
	c.LD = &LDService{client: c}
	c.Lookup = &LookupService{client: c}
	return c, nil
}

// Limiter returns the limiter shared by all services of c.
func (c *Client) Limiter() *ratelimit.Limiter {
	return c.limiter
}

// BaseURL returns the configured API host.
func (c *Client) BaseURL() string {
	return c.baseURL.String()
}

// StatusError is returned when Ensembl answers with a non-2xx status.
type StatusError struct {
	StatusCode int
	Status     string
	URL        string
	// Message is the "error" field of the Ensembl error body, if any.
	Message string
}

func (e *StatusError) Error() string {
	if e.Message != "" {
		return fmt.Sprintf("ensembl: GET %s: %s: %s", e.URL, e.Status, e.Message)
	}
	return fmt.Sprintf("ensembl: GET %s: %s", e.URL, e.Status)
}

// IsStatus reports whether err is a StatusError with the given status code.
func IsStatus(err error, code int) bool {
	var se *StatusError
	return errors.As(err, &se) && se.StatusCode == code
}

// get schedules one GET and decodes the JSON body into a T. Observers run
// after the limiter slot is released.
func get[T any](ctx context.Context, c *Client, endpoint, path string, q query) (T, error) {
	var out T
	var record *RequestRecord
	u := c.resolve(path, q.values)
	err := c.limiter.Schedule(ctx, func(ctx context.Context) error {
		record = newRequestRecord(endpoint, u)
		return c.do(ctx, record, u, &out)
	})
	if record != nil {
		c.observe(ctx, *record)
	}
	if err != nil {
		var zero T
		return zero, err
	}
	return out, nil
}

func newRequestRecord(endpoint string, u *url.URL) *RequestRecord {
	return &RequestRecord{
		ID:        uuid.New().String(),
		Endpoint:  endpoint,
		Path:      u.Path,
		Query:     u.RawQuery,
		StartedAt: time.Now().UTC(),
	}
}

func (c *Client) resolve(path string, values url.Values) *url.URL {
	u := *c.baseURL
	u.Path = strings.TrimSuffix(u.Path, "/") + path
	u.RawPath = ""
	u.RawQuery = ""
	if len(values) > 0 {
		u.RawQuery = values.Encode()
	}
	return &u
}

func (c *Client) do(ctx context.Context, record *RequestRecord, u *url.URL, out any) (err error) {
	defer func() {
		record.Duration = time.Since(record.StartedAt)
		record.Err = err
	}()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)
	if err != nil {
		return err
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("Content-Type", "application/json")
	if c.userAgent != "" {
		req.Header.Set("User-Agent", c.userAgent)
	}

	c.logger.Debug("ensembl request",
		zap.String("request_id", record.ID),
		zap.String("endpoint", record.Endpoint),
		zap.String("url", u.String()))

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close() // nolint:errcheck // best-effort cleanup on HTTP response body

	record.StatusCode = resp.StatusCode
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return statusError(resp, u)
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("ensembl: decode %s response: %w", record.Endpoint, err)
	}
	return nil
}

func statusError(resp *http.Response, u *url.URL) error {
	se := &StatusError{
		StatusCode: resp.StatusCode,
		Status:     resp.Status,
		URL:        u.String(),
	}
	body, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
	var payload struct {
		Error string `json:"error"`
	}
	if json.Unmarshal(body, &payload) == nil {
		se.Message = payload.Error
	}
	return se
}

func (c *Client) observe(ctx context.Context, record RequestRecord) {
	level := zap.DebugLevel
	if record.Err != nil {
		level = zap.WarnLevel
	}
	if ce := c.logger.Check(level, "ensembl response"); ce != nil {
		ce.Write(
			zap.String("request_id", record.ID),
			zap.String("endpoint", record.Endpoint),
			zap.Int("status", record.StatusCode),
			zap.Duration("duration", record.Duration),
			zap.Error(record.Err))
	}
	for _, o := range c.observers {
		o.ObserveRequest(ctx, record)
	}
}
