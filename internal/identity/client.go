// Package identity talks to the hosted identity provider that owns
// credentials. The service never sees password hashes: sign-up creates the
// user at the provider and sign-in is a password grant against it.
package identity

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"strings"

	"github.com/utafrali/TravelGo/pkg/httpclient"
)

const serviceName = "identity"

// User is the provider's view of an account.
type User struct {
	ID    string `json:"id"`
	Email string `json:"email"`
}

// SignUpInput is forwarded to the provider. Metadata lands in the
// provider's user metadata.
type SignUpInput struct {
	Email    string
	Password string
	Metadata map[string]string
}

// Client calls the identity provider's REST API.
type Client struct {
	baseURL string
	apiKey  string
	http    httpclient.Doer
	logger  *slog.Logger
}

// NewClient creates a provider client. doer is normally a circuit-breaking
// httpclient.
func NewClient(baseURL, apiKey string, doer httpclient.Doer, logger *slog.Logger) *Client {
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		apiKey:  apiKey,
		http:    doer,
		logger:  logger,
	}
}

type signUpRequest struct {
	Email    string            `json:"email"`
	Password string            `json:"password"`
	Data     map[string]string `json:"data,omitempty"`
}

// signUpResponse covers providers that return the user at the top level and
// those that nest it under "user".
type signUpResponse struct {
	User
	Nested *User `json:"user"`
}

// SignUp creates an account and returns its user.
func (c *Client) SignUp(ctx context.Context, in SignUpInput) (*User, error) {
	var resp signUpResponse
	err := c.post(ctx, "/signup", signUpRequest{Email: in.Email, Password: in.Password, Data: in.Metadata}, &resp)
	if err != nil {
		return nil, err
	}

	user := resp.User
	if resp.Nested != nil {
		user = *resp.Nested
	}
	if user.ID == "" {
		return nil, fmt.Errorf("%s: sign-up response has no user id", serviceName)
	}
	return &user, nil
}

type passwordGrant struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type tokenResponse struct {
	AccessToken string `json:"access_token"`
	User        User   `json:"user"`
}

// SignIn verifies credentials with a password grant and returns the user.
// Bad credentials map to Unauthorized.
func (c *Client) SignIn(ctx context.Context, email, password string) (*User, error) {
	var resp tokenResponse
	if err := c.post(ctx, "/token?grant_type=password", passwordGrant{Email: email, Password: password}, &resp); err != nil {
		return nil, err
	}
	if resp.User.ID == "" {
		return nil, fmt.Errorf("%s: token response has no user", serviceName)
	}
	return &resp.User, nil
}

func (c *Client) post(ctx context.Context, path string, body, dst any) error {
	payload, err := json.Marshal(body)
	if err != nil {
		return fmt.Errorf("marshal %s request: %w", serviceName, err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(payload))
	if err != nil {
		return fmt.Errorf("build %s request: %w", serviceName, err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	if c.apiKey != "" {
		req.Header.Set("apikey", c.apiKey)
		req.Header.Set("Authorization", "Bearer "+c.apiKey)
	}

	resp, err := c.http.Do(ctx, req)
	if err != nil {
		c.logger.WarnContext(ctx, "identity provider call failed",
			slog.String("path", path),
			slog.String("error", err.Error()),
		)
		return httpclient.ParseTransportError(err, serviceName)
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return httpclient.ParseResponseError(resp, serviceName)
	}
	defer func() { _ = resp.Body.Close() }()

	if err := json.NewDecoder(resp.Body).Decode(dst); err != nil {
		return fmt.Errorf("decode %s response: %w", serviceName, err)
	}
	return nil
}
