// Package identity talks to the hosted identity REST API: email/password
// sign-up and sign-in and Google sign-in. Failures carry the provider's
// error code verbatim so callers can map them to user messages.
package identity

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
)

const (
	DefaultBaseURL = "https://identitytoolkit.googleapis.com/v1"
	DefaultTimeout = 20 * time.Second

	// Codes used when the provider response carries none.
	CodeSignUpFailed       = "SIGN_UP_FAILED"
	CodeSignInFailed       = "SIGN_IN_FAILED"
	CodeGoogleSignInFailed = "GOOGLE_SIGN_IN_FAILED"

	googleRequestURI = "http://localhost"
)

// Error is a rejected identity request. Error() is the provider code, e.g.
// "INVALID_PASSWORD" or "EMAIL_EXISTS".
type Error struct {
	Code   string
	Status int
}

func (e *Error) Error() string { return e.Code }

// Credentials is a successful sign-in.
type Credentials struct {
	IDToken      string `json:"idToken"`
	LocalID      string `json:"localId"`
	RefreshToken string `json:"refreshToken"`
	Email        string `json:"email"`
	DisplayName  string `json:"displayName"`
	ExpiresIn    string `json:"expiresIn"`

	// Raw is the full response payload. Google sign-in returns provider
	// fields (fullName, photoUrl, ...) here.
	Raw map[string]any `json:"-"`
}

type Client struct {
	baseURL string
	apiKey  string
	http    *http.Client
}

type Option func(*Client)

// WithBaseURL points the client at another endpoint, typically a test server.
func WithBaseURL(u string) Option {
	return func(c *Client) {
		if u != "" {
			c.baseURL = strings.TrimSuffix(u, "/")
		}
	}
}

func WithHTTPClient(h *http.Client) Option {
	return func(c *Client) {
		if h != nil {
			c.http = h
		}
	}
}

func NewClient(apiKey string, opts ...Option) *Client {
	c := &Client{
		baseURL: DefaultBaseURL,
		apiKey:  apiKey,
		http:    &http.Client{Timeout: DefaultTimeout},
	}
	for _, o := range opts {
		o(c)
	}
	return c
}

func (c *Client) endpoint(path string) string {
	return c.baseURL + "/" + path + "?key=" + url.QueryEscape(c.apiKey)
}

type passwordRequest struct {
	Email             string `json:"email"`
	Password          string `json:"password"`
	ReturnSecureToken bool   `json:"returnSecureToken"`
}

type idpRequest struct {
	PostBody            string `json:"postBody"`
	RequestURI          string `json:"requestUri"`
	ReturnIdpCredential bool   `json:"returnIdpCredential"`
	ReturnSecureToken   bool   `json:"returnSecureToken"`
}

// SignUp creates an email/password account.
func (c *Client) SignUp(ctx context.Context, email, password string) (*Credentials, error) {
	return c.post(ctx, "accounts:signUp",
		passwordRequest{Email: email, Password: password, ReturnSecureToken: true}, CodeSignUpFailed)
}

// SignIn verifies an email/password pair.
func (c *Client) SignIn(ctx context.Context, email, password string) (*Credentials, error) {
	return c.post(ctx, "accounts:signInWithPassword",
		passwordRequest{Email: email, Password: password, ReturnSecureToken: true}, CodeSignInFailed)
}

// SignInWithGoogle exchanges a Google ID token for identity credentials.
func (c *Client) SignInWithGoogle(ctx context.Context, googleIDToken string) (*Credentials, error) {
	body := idpRequest{
		PostBody:            "id_token=" + googleIDToken + "&providerId=google.com",
		RequestURI:          googleRequestURI,
		ReturnIdpCredential: true,
		ReturnSecureToken:   true,
	}
	return c.post(ctx, "accounts:signInWithIdp", body, CodeGoogleSignInFailed)
}

func (c *Client) post(ctx context.Context, path string, body any, fallback string) (*Credentials, error) {
	payload, err := json.Marshal(body)
	if err != nil {
		return nil, fmt.Errorf("encode %s request: %w", path, err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint(path), bytes.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("build %s request: %w", path, err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read %s response: %w", path, err)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, &Error{Code: errorCode(raw, fallback), Status: resp.StatusCode}
	}

	var creds Credentials
	if err := json.Unmarshal(raw, &creds); err != nil {
		return nil, &Error{Code: fallback, Status: resp.StatusCode}
	}
	if err := json.Unmarshal(raw, &creds.Raw); err != nil {
		return nil, &Error{Code: fallback, Status: resp.StatusCode}
	}
	if creds.IDToken == "" || creds.LocalID == "" {
		return nil, &Error{Code: fallback, Status: resp.StatusCode}
	}
	return &creds, nil
}

func errorCode(raw []byte, fallback string) string {
	var body struct {
		Error struct {
			Message string `json:"message"`
		} `json:"error"`
	}
	if err := json.Unmarshal(raw, &body); err != nil || body.Error.Message == "" {
		return fallback
	}
	return body.Error.Message
}
