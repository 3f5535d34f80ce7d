package auth

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"tunedeck/model"
)

// IdentityClient resolves request tokens into actors by calling the external
// user service. Token verification lives entirely on that side; this service
// never decodes a token itself.
type IdentityClient struct {
	baseURL    string
	httpClient *http.Client
}

// NewIdentityClient creates a client for the user service.
func NewIdentityClient(baseURL string) *IdentityClient {
	return &IdentityClient{
		baseURL: strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{
			Timeout: time.Second * 10,
		},
	}
}

// SetTimeout adjusts the request timeout.
func (c *IdentityClient) SetTimeout(timeout time.Duration) {
	c.httpClient.Timeout = timeout
}

// Lookup fetches the actor behind token. Any failure, network, non-200 or an
// unreadable body, means the request is not authenticated.
func (c *IdentityClient) Lookup(ctx context.Context, token string) (*model.Actor, error) {
	if token == "" {
		return nil, fmt.Errorf("empty token")
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/api/v1/user/me", nil)
	if err != nil {
		return nil, fmt.Errorf("failed to build identity request: %w", err)
	}
	req.Header.Set("token", token)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("identity lookup failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("identity service returned status %d", resp.StatusCode)
	}

	var actor model.Actor
	if err := json.NewDecoder(resp.Body).Decode(&actor); err != nil {
		return nil, fmt.Errorf("failed to decode identity response: %w", err)
	}

	if actor.ID == "" {
		return nil, fmt.Errorf("identity response missing user id")
	}

	return &actor, nil
}
