// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package votingapi

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/danielhkuo/condo-vote/models"
)

// DefaultTimeout bounds a single request when Client.Timeout is zero
const DefaultTimeout = 30 * time.Second

// maxResponseBytes caps how much of a response body is read
const maxResponseBytes = 1 << 20

// ErrEmptyToken is returned without a request when the token is blank
var ErrEmptyToken = errors.New("vote token is empty")

// APIError is a non-2xx answer from the server.
// Message is the server's "error" field and may be empty.
type APIError struct {
	Status  int
	Message string
}

func (e *APIError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("voting api: status %d", e.Status)
	}
	return fmt.Sprintf("voting api: status %d: %s", e.Status, e.Message)
}

// NetworkError wraps transport failures: refused connections, DNS, timeouts,
// and responses that could not be read or decoded
type NetworkError struct {
	Op  string
	Err error
}

func (e *NetworkError) Error() string {
	return fmt.Sprintf("voting api: %s: %v", e.Op, e.Err)
}

func (e *NetworkError) Unwrap() error { return e.Err }

// Client talks to the vote-by-email endpoints of a condo-vote server
type Client struct {
	BaseURL    string
	HTTPClient *http.Client
	Timeout    time.Duration
}

// New returns a Client for baseURL using a dedicated http.Client
func New(baseURL string, timeout time.Duration) *Client {
	return &Client{
		BaseURL:    strings.TrimRight(baseURL, "/"),
		HTTPClient: &http.Client{},
		Timeout:    timeout,
	}
}

// GetBallot fetches the ballot behind token
func (c *Client) GetBallot(ctx context.Context, token string) (models.BallotResponse, error) {
	var ballot models.BallotResponse
	if strings.TrimSpace(token) == "" {
		return ballot, ErrEmptyToken
	}
	err := c.makeRequest(ctx, http.MethodGet, token, nil, &ballot)
	return ballot, err
}

// SubmitVotes posts the voter's choices and consent
func (c *Client) SubmitVotes(ctx context.Context, token string, req models.SubmitVotesRequest) (models.SubmitVotesResponse, error) {
	var resp models.SubmitVotesResponse
	if strings.TrimSpace(token) == "" {
		return resp, ErrEmptyToken
	}
	err := c.makeRequest(ctx, http.MethodPost, token, req, &resp)
	return resp, err
}

func (c *Client) makeRequest(ctx context.Context, method, token string, body, dest interface{}) error {
	timeout := c.Timeout
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	route := c.BaseURL + "/api/vote-by-email/" + url.PathEscape(token)

	var reqBody io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("error encoding request: %w", err)
		}
		reqBody = bytes.NewReader(b)
	}

	req, err := http.NewRequestWithContext(ctx, method, route, reqBody)
	if err != nil {
		return fmt.Errorf("error creating http request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	httpClient := c.HTTPClient
	if httpClient == nil {
		httpClient = http.DefaultClient
	}

	r, err := httpClient.Do(req)
	if err != nil {
		return &NetworkError{Op: method, Err: err}
	}
	defer r.Body.Close()

	responseBody, err := io.ReadAll(io.LimitReader(r.Body, maxResponseBytes))
	if err != nil {
		return &NetworkError{Op: "read response", Err: err}
	}

	if r.StatusCode < 200 || r.StatusCode > 299 {
		return handleError(r.StatusCode, responseBody)
	}

	if err := json.Unmarshal(responseBody, dest); err != nil {
		return &NetworkError{Op: "decode response", Err: err}
	}
	return nil
}

// handleError keeps the server's message when the body is the usual
// {"error": "..."} shape and drops it otherwise
func handleError(status int, responseBody []byte) error {
	var errResp models.ErrorResponse
	if err := json.Unmarshal(responseBody, &errResp); err != nil {
		return &APIError{Status: status}
	}
	return &APIError{Status: status, Message: strings.TrimSpace(errResp.Error)}
}
