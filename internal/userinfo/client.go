package userinfo

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"
)

// ManagementUser is the identity provider's native profile shape.
// UserMetadata is free-form and carries the avatar overrides the provider
// does not model natively.
type ManagementUser struct {
	Email        string                 `json:"email"`
	GivenName    string                 `json:"given_name"`
	FamilyName   string                 `json:"family_name"`
	Nickname     string                 `json:"nickname"`
	Picture      string                 `json:"picture"`
	UserMetadata map[string]interface{} `json:"user_metadata"`
}

// ManagementClient defines what we need from the identity-management API.
type ManagementClient interface {
	GetUser(ctx context.Context, userID string) (*ManagementUser, error)
	UpdateUser(ctx context.Context, userID string, patch map[string]interface{}) (*ManagementUser, error)
}

// HTTPClient is a ManagementClient backed by the Auth0 Management API v2.
// It fetches a client-credentials token on demand and reuses it until expiry.
type HTTPClient struct {
	BaseURL      string // e.g. https://tenant.eu.auth0.com
	ClientID     string
	ClientSecret string
	Client       *http.Client

	mu          sync.Mutex
	token       string
	tokenExpiry time.Time
}

func (c *HTTPClient) GetUser(ctx context.Context, userID string) (*ManagementUser, error) {
	return c.do(ctx, http.MethodGet, userID, nil)
}

func (c *HTTPClient) UpdateUser(ctx context.Context, userID string, patch map[string]interface{}) (*ManagementUser, error) {
	return c.do(ctx, http.MethodPatch, userID, patch)
}

func (c *HTTPClient) do(ctx context.Context, method, userID string, body map[string]interface{}) (*ManagementUser, error) {
	if c.Client == nil {
		c.Client = &http.Client{Timeout: 10 * time.Second}
	}
	if c.BaseURL == "" {
		return nil, fmt.Errorf("auth0: AUTH0_DOMAIN is not set")
	}
	token, err := c.accessToken(ctx)
	if err != nil {
		return nil, err
	}

	endpoint := fmt.Sprintf("%s/api/v2/users/%s", strings.TrimRight(c.BaseURL, "/"), url.PathEscape(userID))
	var reader io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			return nil, err
		}
		reader = bytes.NewReader(b)
	}
	req, err := http.NewRequestWithContext(ctx, method, endpoint, reader)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Authorization", "Bearer "+token)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.Client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("auth0 request: %w", err)
	}
	defer resp.Body.Close()

	respBody, _ := io.ReadAll(resp.Body)
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, fmt.Errorf("auth0 error: status %d body: %s", resp.StatusCode, string(respBody))
	}

	var user ManagementUser
	if err := json.Unmarshal(respBody, &user); err != nil {
		return nil, fmt.Errorf("auth0 response: %w", err)
	}
	return &user, nil
}

func (c *HTTPClient) accessToken(ctx context.Context) (string, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.token != "" && time.Now().Before(c.tokenExpiry) {
		return c.token, nil
	}

	payload, _ := json.Marshal(map[string]string{
		"grant_type":    "client_credentials",
		"client_id":     c.ClientID,
		"client_secret": c.ClientSecret,
		"audience":      fmt.Sprintf("%s/api/v2/", strings.TrimRight(c.BaseURL, "/")),
	})
	endpoint := fmt.Sprintf("%s/oauth/token", strings.TrimRight(c.BaseURL, "/"))
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(payload))
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.Client.Do(req)
	if err != nil {
		return "", fmt.Errorf("auth0 token request: %w", err)
	}
	defer resp.Body.Close()

	respBody, _ := io.ReadAll(resp.Body)
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return "", fmt.Errorf("auth0 token error: status %d body: %s", resp.StatusCode, string(respBody))
	}

	var tokenResp struct {
		AccessToken string `json:"access_token"`
		ExpiresIn   int    `json:"expires_in"`
	}
	if err := json.Unmarshal(respBody, &tokenResp); err != nil {
		return "", fmt.Errorf("auth0 token response: %w", err)
	}

	c.token = tokenResp.AccessToken
	// Renew a minute early so in-flight requests don't race expiry.
	c.tokenExpiry = time.Now().Add(time.Duration(tokenResp.ExpiresIn)*time.Second - time.Minute)
	return c.token, nil
}
