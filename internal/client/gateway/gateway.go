// Package gateway maps domain operations onto the remote account
// backend's HTTP endpoints. It is stateless: every call issues exactly
// one outbound request, performs no caching or retries, and never
// touches session or roster state.
package gateway

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/url"
	"strconv"

	"github.com/rainflow/accounts/internal/models"
)

// Endpoint paths of the production backend.
const (
	pathRegister   = "/new_user.php"
	pathLogin      = "/login.php"
	pathLogout     = "/logout.php"
	pathUserList   = "/user_list.php"
	pathUpdateUser = "/update_user.php"
	pathDeleteUser = "/delete_user.php"
)

// APIError is a failure the backend reported inside a response envelope.
type APIError struct {
	// Code identifies the failure class (EMAIL_EXISTS, INVALID_CREDENTIALS,
	// or empty for a generic rejection).
	Code string
	// Message is the backend's human-readable description.
	Message string
}

func (e *APIError) Error() string {
	if e.Code != "" {
		return fmt.Sprintf("%s: %s", e.Code, e.Message)
	}
	return e.Message
}

// Client issues requests against a single backend base URL.
type Client struct {
	baseURL string
	http    *http.Client
}

// New returns a Client for the given base URL. A nil httpClient falls
// back to http.DefaultClient.
func New(baseURL string, httpClient *http.Client) *Client {
	if httpClient == nil {
		httpClient = http.DefaultClient
	}
	return &Client{baseURL: baseURL, http: httpClient}
}

// RegisterInput is the form data for a new account.
type RegisterInput struct {
	Name            string
	Email           string
	Number          string
	Gender          string
	Password        string
	ConfirmPassword string
	Role            models.Role
}

// UpdateInput is the form data for editing a roster entry. Email is sent
// with the request but the backend treats it as immutable.
type UpdateInput struct {
	ID     string
	Name   string
	Email  string
	Number string
	Gender string
}

// Register creates a new account and returns the issued user id.
// Duplicate emails surface as an *APIError with code EMAIL_EXISTS.
func (c *Client) Register(ctx context.Context, in RegisterInput) (int, error) {
	env, err := c.postForm(ctx, pathRegister, map[string]string{
		"name":             in.Name,
		"email":            in.Email,
		"number":           in.Number,
		"gender":           in.Gender,
		"password":         in.Password,
		"confirm_password": in.ConfirmPassword,
		"is_admin":         strconv.FormatBool(in.Role == models.RoleAdministrator),
	})
	if err != nil {
		return 0, err
	}

	var payload models.RegisterPayload
	if err := json.Unmarshal(env.Data, &payload); err != nil {
		return 0, fmt.Errorf("decode register payload: %w", err)
	}
	return payload.UserID, nil
}

// Login exchanges credentials for the account's Identity. Rejected
// credentials surface as an *APIError with code INVALID_CREDENTIALS.
func (c *Client) Login(ctx context.Context, email, password string) (models.Identity, error) {
	env, err := c.postForm(ctx, pathLogin, map[string]string{
		"email":    email,
		"password": password,
	})
	if err != nil {
		return models.Identity{}, err
	}

	var payload models.LoginPayload
	if err := json.Unmarshal(env.Data, &payload); err != nil {
		return models.Identity{}, fmt.Errorf("decode login payload: %w", err)
	}
	return payload.Identity(), nil
}

// Logout tells the backend to drop its server-side session. Callers clear
// the local session regardless of the outcome here.
func (c *Client) Logout(ctx context.Context) error {
	_, err := c.get(ctx, pathLogout, nil)
	return err
}

// ListUsers fetches the full roster in server order. It requires an
// administrator identity; the backend rejects anything else.
func (c *Client) ListUsers(ctx context.Context) ([]models.RosterEntry, error) {
	env, err := c.get(ctx, pathUserList, nil)
	if err != nil {
		return nil, err
	}

	var items []models.UserListItem
	if err := json.Unmarshal(env.Data, &items); err != nil {
		return nil, fmt.Errorf("decode user list payload: %w", err)
	}
	entries := make([]models.RosterEntry, 0, len(items))
	for _, it := range items {
		entries = append(entries, it.Entry())
	}
	return entries, nil
}

// UpdateUser edits a roster entry and returns the backend's view of the
// updated row.
func (c *Client) UpdateUser(ctx context.Context, in UpdateInput) (models.RosterEntry, error) {
	env, err := c.postForm(ctx, pathUpdateUser, map[string]string{
		"user_id": in.ID,
		"name":    in.Name,
		"email":   in.Email,
		"number":  in.Number,
		"gender":  in.Gender,
	})
	if err != nil {
		return models.RosterEntry{}, err
	}

	var item models.UserListItem
	if err := json.Unmarshal(env.Data, &item); err != nil {
		return models.RosterEntry{}, fmt.Errorf("decode update payload: %w", err)
	}
	return item.Entry(), nil
}

// DeleteUser removes the account with the given id.
func (c *Client) DeleteUser(ctx context.Context, id string) error {
	_, err := c.get(ctx, pathDeleteUser, url.Values{"user_id": {id}})
	return err
}

// postForm sends fields as a multipart form and decodes the envelope.
func (c *Client) postForm(ctx context.Context, path string, fields map[string]string) (*models.Envelope, error) {
	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	for k, v := range fields {
		if err := mw.WriteField(k, v); err != nil {
			return nil, fmt.Errorf("encode form field %s: %w", k, err)
		}
	}
	if err := mw.Close(); err != nil {
		return nil, fmt.Errorf("finalize form: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, &body)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Content-Type", mw.FormDataContentType())
	req.Header.Set("Accept", "application/json")

	return c.do(req)
}

// get issues a GET with optional query parameters and decodes the envelope.
func (c *Client) get(ctx context.Context, path string, query url.Values) (*models.Envelope, error) {
	u := c.baseURL + path
	if len(query) > 0 {
		u += "?" + query.Encode()
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	return c.do(req)
}

// do executes the request and interprets the response envelope. Backend
// rejections become *APIError; anything else is a transport failure.
func (c *Client) do(req *http.Request) (*models.Envelope, error) {
	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%s %s: %w", req.Method, req.URL.Path, err)
	}
	defer resp.Body.Close()

	buf, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read response: %w", err)
	}

	var env models.Envelope
	if err := json.Unmarshal(buf, &env); err != nil {
		// Non-success statuses without a parseable envelope are plain
		// transport failures.
		if resp.StatusCode != http.StatusOK {
			return nil, fmt.Errorf("%s %s: unexpected status %d", req.Method, req.URL.Path, resp.StatusCode)
		}
		return nil, fmt.Errorf("decode response: %w", err)
	}

	if !env.Success {
		apiErr := &APIError{Message: env.Message}
		if env.Err != nil {
			apiErr.Code = env.Err.Code
			if env.Err.Message != "" {
				apiErr.Message = env.Err.Message
			}
		}
		return nil, apiErr
	}
	return &env, nil
}
