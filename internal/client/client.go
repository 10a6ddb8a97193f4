// Package client talks to a running pomod over HTTP and websockets.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	apperrors "pomodoro/pomod/internal/errors"
	"pomodoro/pomod/internal/model"
	"pomodoro/pomod/internal/service"
)

// ErrAlreadyRunning matches a Start rejected because a session is running.
var ErrAlreadyRunning = errors.New("a pomodoro is already in progress")

// Error is a non-2xx answer from the daemon.
type Error struct {
	Status  int
	Code    string
	Message string
}

func (e *Error) Error() string {
	if e.Code == "" {
		return fmt.Sprintf("daemon returned status %d: %s", e.Status, e.Message)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *Error) Is(target error) bool {
	return target == ErrAlreadyRunning && e.Code == apperrors.CodeAlreadyRunning
}

type Client struct {
	baseURL    string
	httpClient *http.Client
	auth       *service.AuthService
}

// New creates a client for the daemon at baseURL. A non-empty secret makes
// every request carry a freshly minted bearer token.
func New(baseURL, secret string) *Client {
	c := &Client{
		baseURL: strings.TrimSuffix(baseURL, "/"),
		httpClient: &http.Client{
			Timeout: 10 * time.Second,
		},
	}
	if secret != "" {
		c.auth = service.NewAuthService(secret, service.DefaultTokenTTL)
	}
	return c
}

type stateEnvelope struct {
	State service.StateView `json:"state"`
}

type errorEnvelope struct {
	Error struct {
		Code    string `json:"code"`
		Message string `json:"message"`
	} `json:"error"`
}

func (c *Client) State(ctx context.Context) (*service.StateView, error) {
	return c.do(ctx, http.MethodGet, "/api/session/state", nil)
}

func (c *Client) Start(ctx context.Context, req model.StartRequest) (*service.StateView, error) {
	return c.do(ctx, http.MethodPost, "/api/session/start", req)
}

func (c *Client) Stop(ctx context.Context) (*service.StateView, error) {
	return c.do(ctx, http.MethodPost, "/api/session/stop", nil)
}

func (c *Client) do(ctx context.Context, method, path string, body interface{}) (*service.StateView, error) {
	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("marshal request: %w", err)
		}
		reader = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if err := c.authorize(req.Header); err != nil {
		return nil, err
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("connect to daemon: %w", err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, decodeError(resp.StatusCode, raw)
	}

	var envelope stateEnvelope
	if err := json.Unmarshal(raw, &envelope); err != nil {
		return nil, fmt.Errorf("decode state: %w", err)
	}
	return &envelope.State, nil
}

func (c *Client) authorize(header http.Header) error {
	if c.auth == nil {
		return nil
	}
	token, apiErr := c.auth.IssueToken(service.ClientSubject)
	if apiErr != nil {
		return fmt.Errorf("issue token: %w", apiErr)
	}
	header.Set("Authorization", "Bearer "+token)
	return nil
}

func decodeError(status int, raw []byte) error {
	var envelope errorEnvelope
	if err := json.Unmarshal(raw, &envelope); err != nil || envelope.Error.Code == "" {
		return &Error{Status: status, Message: strings.TrimSpace(string(raw))}
	}
	return &Error{Status: status, Code: envelope.Error.Code, Message: envelope.Error.Message}
}
