package authapi

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/google/uuid"
)

// ErrRejected is returned when the backend answered with a non-2xx status:
// the credentials were seen and refused.
var ErrRejected = errors.New("credentials rejected")

// ErrUnreachable is returned when no usable answer arrived: connection
// failure, timeout, or a 2xx body that did not decode.
var ErrUnreachable = errors.New("backend unreachable")

// maxErrorBody caps how much of a rejection body is read for its message.
const maxErrorBody = 4 << 10

// Config defines a public type used by donorlink APIs.
//
// Config instances are intended to be configured during initialization and then treated as immutable unless documented otherwise.
type Config struct {
	BaseURL   string
	LoginPath string
	UserAgent string
}

// Client talks to the remote authentication backend.
type Client struct {
	baseURL   string
	loginPath string
	userAgent string
	http      *http.Client
}

// LoginResult carries the success response fields of the login endpoint.
// DisplayName is optional; backends that omit it leave it empty.
type LoginResult struct {
	Token       string `json:"token"`
	UserID      string `json:"userId"`
	Email       string `json:"email"`
	Role        string `json:"role"`
	DisplayName string `json:"displayName,omitempty"`
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type errorResponse struct {
	Message string `json:"message"`
	Error   string `json:"error"`
}

// NewClient creates a backend [Client]. httpClient may be nil, in which case
// http.DefaultClient is used; timeouts are the HTTP client's responsibility.
//
// NewClient may return an error when input validation, dependency calls, or storage checks fail.
// NewClient does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func NewClient(cfg Config, httpClient *http.Client) (*Client, error) {
	base := strings.TrimRight(strings.TrimSpace(cfg.BaseURL), "/")
	if base == "" {
		return nil, errors.New("base url required")
	}
	path := cfg.LoginPath
	if path == "" {
		path = "/api/auth/login"
	}
	if !strings.HasPrefix(path, "/") {
		return nil, errors.New("login path must start with /")
	}
	if httpClient == nil {
		httpClient = http.DefaultClient
	}

	return &Client{
		baseURL:   base,
		loginPath: path,
		userAgent: cfg.UserAgent,
		http:      httpClient,
	}, nil
}

// Login sends credentials to the backend and returns its decoded success
// response. A non-2xx answer yields [ErrRejected] carrying the backend's
// message; a connection failure, timeout, or undecodable 2xx body yields
// [ErrUnreachable].
//
// Login may return an error when input validation, dependency calls, or storage checks fail.
// Login does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func (c *Client) Login(ctx context.Context, email, password string) (LoginResult, error) {
	payload, err := json.Marshal(loginRequest{Email: email, Password: password})
	if err != nil {
		return LoginResult{}, fmt.Errorf("%w: encode request: %v", ErrUnreachable, err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+c.loginPath, bytes.NewReader(payload))
	if err != nil {
		return LoginResult{}, fmt.Errorf("%w: build request: %v", ErrUnreachable, err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-Request-ID", uuid.NewString())
	if c.userAgent != "" {
		req.Header.Set("User-Agent", c.userAgent)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return LoginResult{}, fmt.Errorf("%w: %v", ErrUnreachable, err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return LoginResult{}, fmt.Errorf("%w: %s", ErrRejected, rejectionMessage(resp))
	}

	var result LoginResult
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return LoginResult{}, fmt.Errorf("%w: decode response: %v", ErrUnreachable, err)
	}

	return result, nil
}

func rejectionMessage(resp *http.Response) string {
	body, err := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
	if err != nil || len(body) == 0 {
		return resp.Status
	}

	var decoded errorResponse
	if err := json.Unmarshal(body, &decoded); err == nil {
		if decoded.Message != "" {
			return decoded.Message
		}
		if decoded.Error != "" {
			return decoded.Error
		}
	}

	msg := strings.TrimSpace(string(body))
	if msg == "" {
		return resp.Status
	}
	return msg
}
