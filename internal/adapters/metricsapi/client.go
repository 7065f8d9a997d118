package metricsapi

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	jsoniter "github.com/json-iterator/go"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/emiliopalmerini/factoryvision/internal/domain"
)

const tracerName = "github.com/emiliopalmerini/factoryvision/internal/adapters/metricsapi"

// maxBodyBytes bounds how much of a response is read.
const maxBodyBytes = 4 << 20

var json = jsoniter.ConfigCompatibleWithStandardLibrary

// Config holds metrics endpoint configuration.
type Config struct {
	URL     string
	Timeout time.Duration
}

// Client fetches factory metrics from the backend over HTTP.
type Client struct {
	url        string
	httpClient *http.Client
	tracer     trace.Tracer
}

// NewClient creates a new metrics client.
func NewClient(cfg Config) (*Client, error) {
	if cfg.URL == "" {
		return nil, fmt.Errorf("metrics URL not configured")
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}

	return &Client{
		url: cfg.URL,
		httpClient: &http.Client{
			Timeout: timeout,
		},
		tracer: otel.Tracer(tracerName),
	}, nil
}

// URL returns the endpoint this client polls.
func (c *Client) URL() string {
	return c.url
}

// Fetch retrieves and validates one snapshot.
func (c *Client) Fetch(ctx context.Context) (snap *domain.Snapshot, err error) {
	ctx, span := c.tracer.Start(ctx, "metricsapi.Fetch",
		trace.WithSpanKind(trace.SpanKindClient),
		trace.WithAttributes(attribute.String("http.url", c.url)),
	)
	defer func() {
		span.SetAttributes(attribute.String("factoryvision.outcome", domain.Outcome(err)))
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
		}
		span.End()
	}()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.url, nil)
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, errors.Join(domain.ErrUnreachable, fmt.Errorf("executing request: %w", err))
	}
	defer resp.Body.Close()

	span.SetAttributes(attribute.Int("http.status_code", resp.StatusCode))
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, maxBodyBytes))
		return nil, &domain.StatusError{Code: resp.StatusCode}
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		return nil, errors.Join(domain.ErrUnreachable, fmt.Errorf("reading response: %w", err))
	}

	return Decode(body)
}

// Decode parses and validates a metrics payload.
func Decode(body []byte) (*domain.Snapshot, error) {
	var p payload
	if err := json.Unmarshal(body, &p); err != nil {
		return nil, &domain.SchemaError{Issues: []string{fmt.Sprintf("decoding response: %v", err)}}
	}

	snap, issues := p.toDomain()
	if len(issues) > 0 {
		return nil, &domain.SchemaError{Issues: issues}
	}
	if err := snap.Validate(); err != nil {
		return nil, err
	}
	return snap, nil
}
