// Package apiclient talks to the e-commerce REST API on behalf of the
// console. Authentication headers are added by the transport of the
// supplied http.Client, not here.
package apiclient

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"go-admin-panel/internal/model"
	"go-admin-panel/internal/permission"
	"go-admin-panel/pkg/apierror"
)

const (
	LoginPath          = "/api/auth/login"
	DefaultRefreshPath = "/api/auth/refresh"
)

const maxBodyBytes = 4 << 20

type Client struct {
	baseURL     string
	refreshPath string
	http        *http.Client
}

// New returns a client for baseURL. refreshPath falls back to
// DefaultRefreshPath when empty.
func New(baseURL string, refreshPath string, httpClient *http.Client) *Client {
	if httpClient == nil {
		httpClient = http.DefaultClient
	}
	if strings.TrimSpace(refreshPath) == "" {
		refreshPath = DefaultRefreshPath
	}

	return &Client{
		baseURL:     strings.TrimRight(baseURL, "/"),
		refreshPath: refreshPath,
		http:        httpClient,
	}
}

func (c *Client) RefreshPath() string {
	return c.refreshPath
}

type envelope struct {
	Success bool            `json:"success"`
	Data    json.RawMessage `json:"data"`
	Error   *model.APIError `json:"error"`
	Meta    *model.Meta     `json:"meta"`
}

// Login exchanges credentials for a token pair.
func (c *Client) Login(ctx context.Context, email string, password string) (model.TokenPair, error) {
	resp, err := c.do(ctx, http.MethodPost, LoginPath, nil, model.LoginRequest{Email: email, Password: password})
	if err != nil {
		return model.TokenPair{}, err
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden {
		return model.TokenPair{}, model.ErrInvalidCredentials
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return model.TokenPair{}, upstreamError(resp)
	}

	var body model.LoginResponse
	if err := json.NewDecoder(io.LimitReader(resp.Body, maxBodyBytes)).Decode(&body); err != nil {
		return model.TokenPair{}, fmt.Errorf("decode login response: %w", err)
	}

	pair := model.TokenPair{AccessToken: body.Token, RefreshToken: body.RefreshToken}
	if !body.Success || !pair.Valid() {
		return model.TokenPair{}, model.ErrInvalidCredentials
	}
	return pair, nil
}

// Refresh mints a new pair. Only a 2xx {success:true, token, refreshToken}
// body counts as success.
func (c *Client) Refresh(ctx context.Context, refreshToken string) (model.TokenPair, error) {
	resp, err := c.do(ctx, http.MethodPost, c.refreshPath, nil, model.RefreshRequest{RefreshToken: refreshToken})
	if err != nil {
		return model.TokenPair{}, err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return model.TokenPair{}, upstreamError(resp)
	}

	var body model.RefreshResponse
	if err := json.NewDecoder(io.LimitReader(resp.Body, maxBodyBytes)).Decode(&body); err != nil {
		return model.TokenPair{}, fmt.Errorf("decode refresh response: %w", err)
	}
	if !body.Success || body.Token == "" || body.RefreshToken == "" {
		return model.TokenPair{}, fmt.Errorf("malformed refresh response")
	}

	return model.TokenPair{AccessToken: body.Token, RefreshToken: body.RefreshToken}, nil
}

func (c *Client) GetUser(ctx context.Context, id int64) (model.User, error) {
	var user model.User
	if _, err := c.getInto(ctx, "/api/users/"+strconv.FormatInt(id, 10), nil, &user); err != nil {
		return model.User{}, err
	}
	if user.ID == 0 {
		return model.User{}, fmt.Errorf("user %d: %w", id, model.ErrNotFound)
	}
	return user, nil
}

func (c *Client) GetRole(ctx context.Context, id int64) (permission.Role, error) {
	var role permission.Role
	if _, err := c.getInto(ctx, "/api/roles/"+strconv.FormatInt(id, 10), nil, &role); err != nil {
		return permission.Role{}, err
	}
	return role, nil
}

func (c *Client) ListRoles(ctx context.Context) ([]permission.Role, error) {
	var roles []permission.Role
	if _, err := c.getInto(ctx, "/api/roles", nil, &roles); err != nil {
		return nil, err
	}
	return roles, nil
}

// Get fetches a resource and returns the envelope's data untouched, so the
// console can hand it to the screen as is.
func (c *Client) Get(ctx context.Context, path string, query url.Values) (json.RawMessage, *model.Meta, error) {
	var data json.RawMessage
	meta, err := c.getInto(ctx, path, query, &data)
	if err != nil {
		return nil, nil, err
	}
	return data, meta, nil
}

func (c *Client) getInto(ctx context.Context, path string, query url.Values, out any) (*model.Meta, error) {
	resp, err := c.do(ctx, http.MethodGet, path, query, nil)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, upstreamError(resp)
	}

	var env envelope
	if err := json.NewDecoder(io.LimitReader(resp.Body, maxBodyBytes)).Decode(&env); err != nil {
		return nil, fmt.Errorf("decode %s: %w", path, err)
	}
	if !env.Success {
		if env.Error != nil {
			return nil, apierror.New(env.Error.Code, env.Error.Message, env.Error.Details, http.StatusBadGateway)
		}
		return nil, apierror.FromStatus(http.StatusBadGateway, path)
	}

	if len(env.Data) > 0 {
		if err := json.Unmarshal(env.Data, out); err != nil {
			return nil, fmt.Errorf("decode %s data: %w", path, err)
		}
	}
	return env.Meta, nil
}

func (c *Client) do(ctx context.Context, method string, path string, query url.Values, body any) (*http.Response, error) {
	target := c.baseURL + path
	if len(query) > 0 {
		target += "?" + query.Encode()
	}

	var (
		reader  io.Reader
		payload []byte
	)
	if body != nil {
		var err error
		payload, err = json.Marshal(body)
		if err != nil {
			return nil, err
		}
		reader = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, target, reader)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%s %s: %w", method, path, err)
	}
	return resp, nil
}

// upstreamError turns a non-2xx response into an *apierror.APIError,
// keeping the backend's code and message when it sent one.
func upstreamError(resp *http.Response) error {
	var env envelope
	data, _ := io.ReadAll(io.LimitReader(resp.Body, 64<<10))
	if err := json.Unmarshal(data, &env); err == nil && env.Error != nil && env.Error.Code != "" {
		return apierror.New(env.Error.Code, env.Error.Message, env.Error.Details, resp.StatusCode)
	}
	return apierror.FromStatus(resp.StatusCode, resp.Request.URL.Path)
}
