package apiclient

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/google/uuid"

	"content-planner/internal/model"
)

// DefaultTimeout bounds every request when the caller sets none.
const DefaultTimeout = 15 * time.Second

// StatusError is a non-2xx answer from the Remote Task API.
type StatusError struct {
	Code      int
	Message   string
	RequestID string
}

func (e *StatusError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("http %d", e.Code)
	}
	return fmt.Sprintf("http %d: %s", e.Code, e.Message)
}

// Client talks to the Remote Task API at BaseURL.
type Client struct {
	BaseURL    string
	Token      string
	AppVersion string
	Client     *http.Client
}

// New constructs a client. A zero timeout means DefaultTimeout.
func New(baseURL, token string, timeout time.Duration) *Client {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	return &Client{
		BaseURL: strings.TrimRight(baseURL, "/"),
		Token:   token,
		Client:  &http.Client{Timeout: timeout},
	}
}

// List calls GET /api/tasks.
func (c *Client) List(ctx context.Context) ([]model.Task, error) {
	var out []model.Task
	if err := c.do(ctx, http.MethodGet, nil, &out); err != nil {
		return nil, err
	}
	if out == nil {
		out = []model.Task{}
	}
	return out, nil
}

// Get calls GET /api/tasks/{id}.
func (c *Client) Get(ctx context.Context, id string) (model.Task, error) {
	var out model.Task
	err := c.do(ctx, http.MethodGet, nil, &out, id)
	return out, err
}

// Create calls POST /api/tasks. The returned record carries the server id.
func (c *Client) Create(ctx context.Context, draft model.Task) (model.Task, error) {
	draft.ID = ""
	var out model.Task
	err := c.do(ctx, http.MethodPost, draft, &out)
	return out, err
}

// Update calls PUT /api/tasks/{id} with the non-nil fields of patch.
func (c *Client) Update(ctx context.Context, id string, patch model.Patch) (model.Task, error) {
	var out model.Task
	err := c.do(ctx, http.MethodPut, patch, &out, id)
	return out, err
}

// Delete calls DELETE /api/tasks/{id}.
func (c *Client) Delete(ctx context.Context, id string) error {
	return c.do(ctx, http.MethodDelete, nil, nil, id)
}

func (c *Client) do(ctx context.Context, method string, in, out any, path ...string) error {
	endpoint, err := c.resolve(path...)
	if err != nil {
		return err
	}

	var body io.Reader
	if in != nil {
		payload, err := json.Marshal(in)
		if err != nil {
			return err
		}
		body = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, endpoint, body)
	if err != nil {
		return err
	}
	c.applyHeaders(req)

	resp, err := c.httpClient().Do(req)
	if err != nil {
		return fmt.Errorf("%s %s: %w", method, endpoint, err)
	}
	defer resp.Body.Close()

	raw, readErr := io.ReadAll(resp.Body)
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return &StatusError{
			Code:      resp.StatusCode,
			Message:   errorMessage(raw),
			RequestID: resp.Header.Get("X-Request-Id"),
		}
	}
	if readErr != nil {
		return fmt.Errorf("read %s %s: %w", method, endpoint, readErr)
	}
	if out == nil {
		return nil
	}
	if err := json.Unmarshal(raw, out); err != nil {
		return fmt.Errorf("decode %s %s: %w", method, endpoint, err)
	}
	return nil
}

func (c *Client) resolve(path ...string) (string, error) {
	base, err := url.Parse(c.BaseURL)
	if err != nil {
		return "", err
	}
	if base.Scheme == "" || base.Host == "" {
		return "", fmt.Errorf("invalid base url %q", c.BaseURL)
	}
	return base.JoinPath(append([]string{"api", "tasks"}, path...)...).String(), nil
}

func (c *Client) applyHeaders(req *http.Request) {
	req.Header.Set("Accept", "application/json")
	if req.Body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	req.Header.Set("X-Request-Id", uuid.NewString())
	req.Header.Set("X-Platform", "cli")
	if c.AppVersion != "" {
		req.Header.Set("X-App-Version", c.AppVersion)
	}
	if c.Token != "" {
		req.Header.Set("Authorization", "Bearer "+c.Token)
	}
}

func (c *Client) httpClient() *http.Client {
	if c.Client != nil {
		return c.Client
	}
	return &http.Client{Timeout: DefaultTimeout}
}

// errorMessage pulls "error" out of a JSON error body, falling back to the
// raw text.
func errorMessage(raw []byte) string {
	var body struct {
		Error string `json:"error"`
	}
	if json.Unmarshal(raw, &body) == nil && body.Error != "" {
		return body.Error
	}
	return strings.TrimSpace(string(raw))
}
