// Package client talks to the tower defense server: REST calls for intents and
// a WebSocket subscription for state pushes.
package client

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

	"github.com/gorilla/websocket"
)

// Client is a thin wrapper over the server API
type Client struct {
	baseURL    string
	httpClient *http.Client
}

// New creates a client for baseURL, e.g. http://localhost:8080
func New(baseURL string) *Client {
	return &Client{
		baseURL:    strings.TrimSuffix(baseURL, "/"),
		httpClient: &http.Client{Timeout: 10 * time.Second},
	}
}

// ListSessions returns the server's sessions, newest first
func (c *Client) ListSessions(ctx context.Context) ([]SessionInfo, error) {
	var resp struct {
		Sessions []SessionInfo `json:"sessions"`
	}
	if err := c.call(ctx, http.MethodGet, "/api/sessions", nil, &resp); err != nil {
		return nil, err
	}
	return resp.Sessions, nil
}

// ListConfigs returns the maps available for new sessions
func (c *Client) ListConfigs(ctx context.Context) ([]ConfigInfo, error) {
	var configs []ConfigInfo
	if err := c.call(ctx, http.MethodGet, "/api/configs", nil, &configs); err != nil {
		return nil, err
	}
	return configs, nil
}

// CreateSession starts a session on configID; empty uses the server default
func (c *Client) CreateSession(ctx context.Context, configID string) (*SessionInfo, error) {
	body := map[string]string{}
	if configID != "" {
		body["config_id"] = configID
	}
	var info SessionInfo
	if err := c.call(ctx, http.MethodPost, "/api/sessions", body, &info); err != nil {
		return nil, err
	}
	return &info, nil
}

// State fetches the current view of a session
func (c *Client) State(ctx context.Context, sessionID string) (*GameView, error) {
	var view GameView
	if err := c.call(ctx, http.MethodGet, sessionPath(sessionID, "state"), nil, &view); err != nil {
		return nil, err
	}
	return &view, nil
}

// Towers returns the catalog of a config; empty or "default" asks for the default map
func (c *Client) Towers(ctx context.Context, configID string) ([]TowerInfo, error) {
	if configID == "" {
		configID = "default"
	}
	var resp struct {
		Towers []TowerInfo `json:"towers"`
	}
	if err := c.call(ctx, http.MethodGet, "/api/configs/"+url.PathEscape(configID)+"/towers", nil, &resp); err != nil {
		return nil, err
	}
	return resp.Towers, nil
}

// PlaceTower buys tower key at (x, y)
func (c *Client) PlaceTower(ctx context.Context, sessionID string, x, y int, key string) (*PlaceResult, error) {
	body := map[string]interface{}{"x": x, "y": y, "tower": key}
	var result PlaceResult
	if err := c.call(ctx, http.MethodPost, sessionPath(sessionID, "towers"), body, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

// StartWave releases the next wave
func (c *Client) StartWave(ctx context.Context, sessionID string) (*WaveResult, error) {
	var result WaveResult
	if err := c.call(ctx, http.MethodPost, sessionPath(sessionID, "waves"), nil, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

// Pause suspends the session loop
func (c *Client) Pause(ctx context.Context, sessionID string) error {
	return c.call(ctx, http.MethodPost, sessionPath(sessionID, "pause"), nil, nil)
}

// Resume restarts the session loop
func (c *Client) Resume(ctx context.Context, sessionID string) error {
	return c.call(ctx, http.MethodPost, sessionPath(sessionID, "resume"), nil, nil)
}

// SetSpeed changes the game speed multiplier
func (c *Client) SetSpeed(ctx context.Context, sessionID string, speed float64) error {
	return c.call(ctx, http.MethodPost, sessionPath(sessionID, "speed"), map[string]float64{"speed": speed}, nil)
}

// RequestAdvice asks the advisor for a tip; the answer arrives as an "advice" event
func (c *Client) RequestAdvice(ctx context.Context, sessionID string) error {
	return c.call(ctx, http.MethodPost, sessionPath(sessionID, "advice"), nil, nil)
}

// WebSocketURL returns the push endpoint for sessionID
func (c *Client) WebSocketURL(sessionID string) (string, error) {
	u, err := url.Parse(c.baseURL)
	if err != nil {
		return "", err
	}
	switch u.Scheme {
	case "https":
		u.Scheme = "wss"
	default:
		u.Scheme = "ws"
	}
	u.Path = strings.TrimSuffix(u.Path, "/") + "/ws"
	u.RawQuery = url.Values{"session": {sessionID}}.Encode()
	return u.String(), nil
}

// Subscribe streams pushes for sessionID into handle until ctx is done or the
// connection drops.
func (c *Client) Subscribe(ctx context.Context, sessionID string, handle func(Message)) error {
	wsURL, err := c.WebSocketURL(sessionID)
	if err != nil {
		return err
	}

	conn, _, err := websocket.DefaultDialer.DialContext(ctx, wsURL, nil)
	if err != nil {
		return err
	}
	defer conn.Close()

	go func() {
		<-ctx.Done()
		conn.Close()
	}()

	for {
		_, data, err := conn.ReadMessage()
		if err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			return err
		}

		var msg Message
		if err := json.Unmarshal(data, &msg); err != nil {
			continue
		}
		handle(msg)
	}
}

func sessionPath(sessionID, action string) string {
	return "/api/sessions/" + url.PathEscape(sessionID) + "/" + action
}

// call performs one JSON request; non-2xx responses become errors carrying the
// server's error message
func (c *Client) call(ctx context.Context, method, path string, body, out interface{}) error {
	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return err
		}
		reader = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return err
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return err
	}

	if resp.StatusCode >= 300 {
		var apiErr struct {
			Error string `json:"error"`
		}
		if json.Unmarshal(data, &apiErr) == nil && apiErr.Error != "" {
			return fmt.Errorf("%s %s: %s", method, path, apiErr.Error)
		}
		return fmt.Errorf("%s %s: status %d", method, path, resp.StatusCode)
	}

	if out == nil || len(data) == 0 {
		return nil
	}
	return json.Unmarshal(data, out)
}
