// pattern: Imperative Shell
package instance

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/coder/websocket"
)

// liveReadLimit bounds a single live preview message.
const liveReadLimit = 1 << 20

// Client talks to the HTTP API of a running server. Methods return the
// raw response bodies.
type Client struct {
	baseURL    string
	httpClient *http.Client
}

func NewClient(baseURL string) *Client {
	return &Client{
		baseURL:    strings.TrimSuffix(baseURL, "/"),
		httpClient: &http.Client{Timeout: 10 * time.Second},
	}
}

// Layouts fetches GET /api/layouts.
func (c *Client) Layouts(ctx context.Context) ([]byte, error) {
	return c.get(ctx, "/api/layouts")
}

// Layout fetches the element tree of name built by renderer.
func (c *Client) Layout(ctx context.Context, name, renderer string) ([]byte, error) {
	path := "/api/layouts/" + url.PathEscape(name)
	if renderer != "" {
		path += "?" + url.Values{"renderer": {renderer}}.Encode()
	}
	return c.get(ctx, path)
}

// Text fetches the outline of name.
func (c *Client) Text(ctx context.Context, name string) ([]byte, error) {
	return c.get(ctx, "/api/layouts/"+url.PathEscape(name)+"/text")
}

// Dashboard fetches the dashboard as seen with roles.
func (c *Client) Dashboard(ctx context.Context, roles []string) ([]byte, error) {
	path := "/api/dashboard"
	if len(roles) > 0 {
		path += "?" + url.Values{"roles": {strings.Join(roles, ",")}}.Encode()
	}
	return c.get(ctx, path)
}

// Watch streams the live preview of name, calling fn with every message,
// until ctx is done or the server goes away.
func (c *Client) Watch(ctx context.Context, name, renderer string, fn func(data []byte) error) error {
	u := c.baseURL + "/api/layouts/" + url.PathEscape(name) + "/live"
	if renderer != "" {
		u += "?" + url.Values{"renderer": {renderer}}.Encode()
	}
	conn, resp, err := websocket.Dial(ctx, u, nil)
	if err != nil {
		if resp != nil && resp.StatusCode != http.StatusSwitchingProtocols {
			body, _ := io.ReadAll(resp.Body)
			return fmt.Errorf("linolayout returned status %d: %s", resp.StatusCode, extractErrorMessage(body))
		}
		return fmt.Errorf("failed to connect to linolayout: %w", err)
	}
	defer func() { _ = conn.CloseNow() }()
	conn.SetReadLimit(liveReadLimit)

	for {
		_, data, err := conn.Read(ctx)
		if err != nil {
			switch {
			case ctx.Err() != nil,
				errors.Is(err, io.EOF),
				websocket.CloseStatus(err) == websocket.StatusNormalClosure,
				websocket.CloseStatus(err) == websocket.StatusGoingAway:
				return nil
			}
			return fmt.Errorf("live preview: %w", err)
		}
		if err := fn(data); err != nil {
			_ = conn.Close(websocket.StatusNormalClosure, "")
			return err
		}
	}
}

func (c *Client) get(ctx context.Context, path string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to linolayout: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("linolayout returned status %d: %s", resp.StatusCode, extractErrorMessage(body))
	}
	return body, nil
}

// extractErrorMessage returns the "error" field of a JSON body, or the
// body itself.
func extractErrorMessage(body []byte) string {
	var errResp struct {
		Error string `json:"error"`
	}
	if err := json.Unmarshal(body, &errResp); err == nil && errResp.Error != "" {
		return errResp.Error
	}
	return strings.TrimSpace(string(body))
}
