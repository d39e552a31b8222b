// Package notify drives push-notification activation: the user opens an
// activation page in a browser, and the client polls the notification
// service until that page confirms.
package notify

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/google/uuid"
)

const (
	DefaultInterval = time.Second
	DefaultAttempts = 60
	requestTimeout  = 5 * time.Second
)

// ErrTimeout means the activation was not confirmed within the attempts.
var ErrTimeout = errors.New("activation not confirmed")

type Client struct {
	BaseURL  string
	HTTP     *http.Client
	Interval time.Duration
	Attempts int
}

func New(baseURL string) *Client {
	return &Client{
		BaseURL:  strings.TrimSuffix(baseURL, "/"),
		HTTP:     &http.Client{Timeout: requestTimeout},
		Interval: DefaultInterval,
		Attempts: DefaultAttempts,
	}
}

// NewSessionID returns a fresh activation session id.
func NewSessionID() string {
	return strings.ReplaceAll(uuid.NewString(), "-", "")
}

// ActivationURL is the page the user opens to grant notifications. token
// is optional.
func (c *Client) ActivationURL(sessionID, uid, role, token string) string {
	q := url.Values{}
	q.Set("session", sessionID)
	q.Set("uid", uid)
	q.Set("role", role)
	if token != "" {
		q.Set("token", token)
	}
	return c.BaseURL + "/notify?" + q.Encode()
}

// Poll asks the service every Interval whether sessionID was confirmed.
// Failed requests count as "not yet". It gives up with ErrTimeout after
// Attempts tries and stops early when ctx is done.
func (c *Client) Poll(ctx context.Context, sessionID string) error {
	attempts := c.Attempts
	if attempts <= 0 {
		attempts = DefaultAttempts
	}
	for i := 0; i < attempts; i++ {
		if c.ready(ctx, sessionID) {
			return nil
		}
		if i == attempts-1 {
			break
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(c.Interval):
		}
	}
	return ErrTimeout
}

func (c *Client) ready(ctx context.Context, sessionID string) bool {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet,
		c.BaseURL+"/notify/poll?session="+url.QueryEscape(sessionID), nil)
	if err != nil {
		return false
	}
	resp, err := c.HTTP.Do(req)
	if err != nil {
		return false
	}
	defer resp.Body.Close()
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return false
	}
	var body struct {
		Ready bool `json:"ready"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return false
	}
	return body.Ready
}
