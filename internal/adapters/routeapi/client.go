// Package routeapi talks to the route planner over HTTP: the initial route
// between two points, blockade adjustments and the health probe.
package routeapi

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/trace"

	"github.com/samirrijal/detourmap/internal/core/domain"
	"github.com/samirrijal/detourmap/internal/pkg/metrics"
)

const maxErrorBody = 512

var tracer = otel.Tracer("github.com/samirrijal/detourmap/internal/adapters/routeapi")

// HTTPDoer is the subset of *http.Client used by Client.
type HTTPDoer interface {
	Do(req *http.Request) (*http.Response, error)
}

// Client is the planner client. Every call is a single exchange: no cache, no retry.
type Client struct {
	baseURL    string
	httpClient HTTPDoer
}

// NewClient creates a Client whose transport gives up after timeout.
func NewClient(baseURL string, timeout time.Duration) *Client {
	return NewClientWithHTTPDoer(baseURL, &http.Client{Timeout: timeout})
}

// NewClientWithHTTPDoer creates a Client on top of an arbitrary HTTPDoer.
func NewClientWithHTTPDoer(baseURL string, doer HTTPDoer) *Client {
	return &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: doer,
	}
}

// FetchInitialRoute asks the planner for routes between start and end and
// returns the geometry of the first candidate.
func (c *Client) FetchInitialRoute(ctx context.Context, start, end domain.Coordinate) (domain.RouteGeometry, error) {
	req := initialRequest{
		Start: [2]float64{start.Lon, start.Lat},
		End:   [2]float64{end.Lon, end.Lat},
	}

	var resp initialResponse
	if err := c.post(ctx, "route", "/route", req, &resp); err != nil {
		return domain.RouteGeometry{}, err
	}

	if resp.Routes == nil {
		return domain.RouteGeometry{}, fmt.Errorf("%w: routes field missing", domain.ErrMalformedResponse)
	}
	if len(*resp.Routes) == 0 {
		return domain.RouteGeometry{}, domain.ErrEmptyRouteSet
	}

	route, err := decodeLineString((*resp.Routes)[0].Geometry)
	if err != nil {
		return domain.RouteGeometry{}, fmt.Errorf("routes[0].geometry: %w", err)
	}
	return route, nil
}

// FetchAdjustment sends the current route and a free-text blockade description.
// The description is passed through as given, including when empty.
func (c *Client) FetchAdjustment(ctx context.Context, route domain.RouteGeometry, description string) (*domain.Adjustment, error) {
	req := adjustRequest{
		Route:       lineStringGeometry(route),
		Description: description,
	}

	var resp adjustResponse
	if err := c.post(ctx, "adjust", "/adjust", req, &resp); err != nil {
		return nil, err
	}
	return resp.toDomain()
}

// HealthCheck calls the planner's liveness endpoint.
func (c *Client) HealthCheck(ctx context.Context) error {
	ctx, span := tracer.Start(ctx, "routeapi.health")
	defer span.End()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/health", nil)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	otel.GetTextMapPropagator().Inject(ctx, propagation.HeaderCarrier(req.Header))

	resp, err := c.httpClient.Do(req)
	if err != nil {
		span.RecordError(err)
		return fmt.Errorf("%w: %v", domain.ErrTransportFailure, err)
	}
	defer resp.Body.Close()
	_, _ = io.Copy(io.Discard, resp.Body)

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return fmt.Errorf("%w: health returned status %d", domain.ErrTransportFailure, resp.StatusCode)
	}
	return nil
}

// post performs one JSON exchange and classifies its failure.
func (c *Client) post(ctx context.Context, operation, path string, body, out any) (err error) {
	ctx, span := tracer.Start(ctx, "routeapi."+operation, trace.WithSpanKind(trace.SpanKindClient))
	span.SetAttributes(attribute.String("http.url", c.baseURL+path))
	start := time.Now()
	defer func() {
		metrics.BackendRequests.WithLabelValues(operation, domain.ErrorCode(err)).Inc()
		metrics.BackendDuration.WithLabelValues(operation).Observe(time.Since(start).Seconds())
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
		}
		span.End()
	}()

	payload, err := json.Marshal(body)
	if err != nil {
		return fmt.Errorf("failed to marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(payload))
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	otel.GetTextMapPropagator().Inject(ctx, propagation.HeaderCarrier(req.Header))

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %s %s: %v", domain.ErrTransportFailure, http.MethodPost, path, err)
	}
	defer resp.Body.Close()
	span.SetAttributes(attribute.Int("http.status_code", resp.StatusCode))

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		snippet, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		return fmt.Errorf("%w: %s returned status %d: %s",
			domain.ErrTransportFailure, path, resp.StatusCode, strings.TrimSpace(string(snippet)))
	}

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("%w: read %s body: %v", domain.ErrTransportFailure, path, err)
	}
	if err := json.Unmarshal(raw, out); err != nil {
		return fmt.Errorf("%w: failed to decode response: %v", domain.ErrMalformedResponse, err)
	}
	return nil
}
