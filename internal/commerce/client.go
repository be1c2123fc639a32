// Package commerce is the GraphQL client for the external shop API. It owns
// the wire format (queries, DTOs, auth token plumbing) and returns plain
// domain records; it holds no state beyond the HTTP client.
package commerce

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"

	apperrors "github.com/gnimmelf/eike-storefront/pkg/errors"
)

// authTokenHeader carries the shop API session token. The API issues a token
// on the first stateful mutation; the storefront persists it in the session
// and replays it as a bearer token.
const authTokenHeader = "vendure-auth-token"

// HTTPDoer is the interface for executing HTTP requests. Both
// httpclient.Client and httpclient.CircuitBreakerClient satisfy this.
type HTTPDoer interface {
	Do(ctx context.Context, req *http.Request) (*http.Response, error)
}

// Client talks to the commerce platform's shop GraphQL endpoint.
type Client struct {
	http   HTTPDoer
	apiURL string
	logger *slog.Logger
}

// NewClient creates a commerce API client against the given GraphQL endpoint.
func NewClient(doer HTTPDoer, apiURL string, logger *slog.Logger) *Client {
	return &Client{
		http:   doer,
		apiURL: apiURL,
		logger: logger,
	}
}

type gqlRequest struct {
	Query     string         `json:"query"`
	Variables map[string]any `json:"variables,omitempty"`
}

type gqlError struct {
	Message string `json:"message"`
}

type gqlResponse struct {
	Data   json.RawMessage `json:"data"`
	Errors []gqlError      `json:"errors"`
}

// execute posts a GraphQL operation and decodes the "data" object into out.
// It returns the refreshed auth token when the API issued one, or "" when the
// token is unchanged.
func (c *Client) execute(ctx context.Context, token, query string, variables map[string]any, out any) (string, error) {
	payload, err := json.Marshal(gqlRequest{Query: query, Variables: variables})
	if err != nil {
		return "", fmt.Errorf("marshal graphql request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.apiURL, bytes.NewReader(payload))
	if err != nil {
		return "", fmt.Errorf("create graphql request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := c.http.Do(ctx, req)
	if err != nil {
		return "", fmt.Errorf("shop api request: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return "", fmt.Errorf("shop api returned status %d: %s", resp.StatusCode, string(body))
	}

	var envelope gqlResponse
	if err := json.NewDecoder(resp.Body).Decode(&envelope); err != nil {
		return "", fmt.Errorf("decode graphql response: %w", err)
	}

	if len(envelope.Errors) > 0 {
		c.logger.WarnContext(ctx, "shop api graphql error",
			slog.String("message", envelope.Errors[0].Message),
			slog.Int("error_count", len(envelope.Errors)),
		)
		return "", fmt.Errorf("shop api graphql error: %s", envelope.Errors[0].Message)
	}

	if out != nil {
		if err := json.Unmarshal(envelope.Data, out); err != nil {
			return "", fmt.Errorf("unmarshal graphql data: %w", err)
		}
	}

	return resp.Header.Get(authTokenHeader), nil
}

// Ping verifies the shop API is reachable and answering GraphQL.
func (c *Client) Ping(ctx context.Context) error {
	_, err := c.execute(ctx, "", `query { __typename }`, nil, nil)
	return err
}

// notFound builds the sentinel-backed error the route layer maps to a 404 page.
func notFound(resource, slug string) error {
	return apperrors.NotFound(resource, slug)
}
