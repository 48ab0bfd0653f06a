package services

import (
	"context"
	"fmt"
	"net/url"

	"github.com/desertthunder/playrec/internal/shared"
	"github.com/desertthunder/playrec/internal/telemetry"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
)

// DefaultPathPrefix is the proxy route the query is appended to.
const DefaultPathPrefix = "/square/"

// RecommendationClient asks the proxy for recommendations. It implements viewstate.Fetcher.
//
// No timeout or retry is applied beyond what the caller's context and [http.Client] impose.
type RecommendationClient struct {
	api        *APIService
	pathPrefix string
}

// NewRecommendationClient creates a client issuing GET {base}{pathPrefix}{query}.
func NewRecommendationClient(api *APIService, pathPrefix string) *RecommendationClient {
	if api == nil {
		api = NewAPIService("", nil)
	}
	if pathPrefix == "" {
		pathPrefix = DefaultPathPrefix
	}
	return &RecommendationClient{api: api, pathPrefix: pathPrefix}
}

// Path returns the request path for query, escaped as a single path segment.
func (c *RecommendationClient) Path(query string) string {
	return c.pathPrefix + url.PathEscape(query)
}

// Fetch performs the request and returns the decoded JSON body without validating its shape.
func (c *RecommendationClient) Fetch(ctx context.Context, query string) (any, error) {
	path := c.Path(query)

	ctx, span := telemetry.Tracer().Start(ctx, "recommendations.fetch")
	defer span.End()
	span.SetAttributes(attribute.String("http.url", c.api.BaseURL()+path))

	resp, err := c.api.Get(ctx, path)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "request failed")
		return nil, fmt.Errorf("%w: %v", shared.ErrAPIRequest, err)
	}
	span.SetAttributes(attribute.Int("http.status_code", resp.StatusCode))

	if !resp.OK() {
		span.SetStatus(codes.Error, "unexpected status")
		return nil, fmt.Errorf("%w: status %d, body: %s", shared.ErrAPIRequest, resp.StatusCode, string(resp.Body))
	}

	if !resp.IsJSON {
		span.SetStatus(codes.Error, "invalid payload")
		return nil, fmt.Errorf("%w: %q", shared.ErrInvalidPayload, string(resp.Body))
	}

	return resp.JSONData, nil
}
