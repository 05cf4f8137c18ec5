package storefrontsdk

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/cookiejar"
	"net/url"
	"strings"
	"time"
)

// Client talks to the storefront API. The session cookie set by signup,
// signin and resetPassword is kept in the client's cookie jar, so a Client
// represents one browser-like session.
type Client struct {
	BaseURL    string
	HTTPClient *http.Client
}

// NewClient returns a client with its own cookie jar.
func NewClient(baseURL string) *Client {
	jar, _ := cookiejar.New(nil)
	return &Client{
		BaseURL: strings.TrimSuffix(baseURL, "/"),
		HTTPClient: &http.Client{
			Timeout: 10 * time.Second,
			Jar:     jar,
		},
	}
}

func (c *Client) Signup(ctx context.Context, req SignupRequest) (*UserResponse, error) {
	var out UserResponse
	return &out, c.do(ctx, http.MethodPost, "/v1/signup", req, &out, http.StatusCreated)
}

func (c *Client) Signin(ctx context.Context, email, password string) (*UserResponse, error) {
	var out UserResponse
	return &out, c.do(ctx, http.MethodPost, "/v1/signin", SigninRequest{Email: email, Password: password}, &out, http.StatusOK)
}

func (c *Client) Signout(ctx context.Context) (*MessageResponse, error) {
	var out MessageResponse
	return &out, c.do(ctx, http.MethodPost, "/v1/signout", nil, &out, http.StatusOK)
}

func (c *Client) Me(ctx context.Context) (*UserResponse, error) {
	var out UserResponse
	return &out, c.do(ctx, http.MethodGet, "/v1/me", nil, &out, http.StatusOK)
}

func (c *Client) RequestReset(ctx context.Context, email string) (*MessageResponse, error) {
	var out MessageResponse
	return &out, c.do(ctx, http.MethodPost, "/v1/request-reset", RequestResetRequest{Email: email}, &out, http.StatusOK)
}

func (c *Client) ResetPassword(ctx context.Context, req ResetPasswordRequest) (*UserResponse, error) {
	var out UserResponse
	return &out, c.do(ctx, http.MethodPost, "/v1/reset-password", req, &out, http.StatusOK)
}

func (c *Client) UpdatePermissions(ctx context.Context, userID string, perms []string) (*UserResponse, error) {
	var out UserResponse
	path := "/v1/users/" + url.PathEscape(userID) + "/permissions"
	return &out, c.do(ctx, http.MethodPut, path, UpdatePermissionsRequest{Permissions: perms}, &out, http.StatusOK)
}

func (c *Client) ListUsers(ctx context.Context) (*ListUsersResponse, error) {
	var out ListUsersResponse
	return &out, c.do(ctx, http.MethodGet, "/v1/users", nil, &out, http.StatusOK)
}

func (c *Client) CreateItem(ctx context.Context, req ItemRequest) (*ItemResponse, error) {
	var out ItemResponse
	return &out, c.do(ctx, http.MethodPost, "/v1/items", req, &out, http.StatusCreated)
}

func (c *Client) UpdateItem(ctx context.Context, id string, req ItemUpdateRequest) (*ItemResponse, error) {
	var out ItemResponse
	return &out, c.do(ctx, http.MethodPatch, "/v1/items/"+url.PathEscape(id), req, &out, http.StatusOK)
}

func (c *Client) DeleteItem(ctx context.Context, id string) (*ItemResponse, error) {
	var out ItemResponse
	return &out, c.do(ctx, http.MethodDelete, "/v1/items/"+url.PathEscape(id), nil, &out, http.StatusOK)
}

func (c *Client) GetItem(ctx context.Context, id string) (*ItemResponse, error) {
	var out ItemResponse
	return &out, c.do(ctx, http.MethodGet, "/v1/items/"+url.PathEscape(id), nil, &out, http.StatusOK)
}

func (c *Client) ListItems(ctx context.Context, limit, offset int) (*ListItemsResponse, error) {
	var out ListItemsResponse
	path := fmt.Sprintf("/v1/items?limit=%d&offset=%d", limit, offset)
	return &out, c.do(ctx, http.MethodGet, path, nil, &out, http.StatusOK)
}

func (c *Client) RequestImageUpload(ctx context.Context, req ImageUploadRequest) (*ImageUploadResponse, error) {
	var out ImageUploadResponse
	return &out, c.do(ctx, http.MethodPost, "/v1/items/images", req, &out, http.StatusOK)
}

func (c *Client) Bootstrap(ctx context.Context, req BootstrapRequest) (*UserResponse, error) {
	var out UserResponse
	return &out, c.do(ctx, http.MethodPost, "/v1/bootstrap", req, &out, http.StatusCreated)
}

// GetLiveness calls GET /livez.
func (c *Client) GetLiveness(ctx context.Context) (*HealthResponse, error) {
	var out HealthResponse
	return &out, c.do(ctx, http.MethodGet, "/livez", nil, &out, http.StatusOK)
}

// GetReadiness calls GET /readyz.
func (c *Client) GetReadiness(ctx context.Context) (*HealthResponse, error) {
	var out HealthResponse
	return &out, c.do(ctx, http.MethodGet, "/readyz", nil, &out, http.StatusOK)
}

// do sends body as JSON and decodes a response with the expected status into
// out. Any other status is returned as an *APIError.
func (c *Client) do(ctx context.Context, method, path string, body, out any, expected int) error {
	var rd io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("failed to encode request: %w", err)
		}
		rd = bytes.NewReader(b)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.BaseURL+path, rd)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.HTTPClient.Do(req)
	if err != nil {
		return fmt.Errorf("failed to send request: %w", err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("failed to read response body: %w", err)
	}
	if resp.StatusCode != expected {
		return parseErrorResponse(resp.StatusCode, raw)
	}
	if out == nil {
		return nil
	}
	if err := json.Unmarshal(raw, out); err != nil {
		return fmt.Errorf("failed to decode response: %w", err)
	}
	return nil
}
