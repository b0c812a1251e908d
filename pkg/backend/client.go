package backend

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/tapmeet-protocol/tapmeet-go/pkg/log"
	"github.com/tapmeet-protocol/tapmeet-go/pkg/pin"
	"github.com/tapmeet-protocol/tapmeet-go/pkg/verify"
)

// Client errors.
var (
	// ErrInvalidConfig indicates an invalid client configuration.
	ErrInvalidConfig = errors.New("invalid client configuration")

	// ErrService indicates the service answered with a non-2xx status.
	ErrService = errors.New("service error")

	// ErrUnknownSession indicates a session ID the service does not know.
	ErrUnknownSession = errors.New("unknown session")

	// ErrUnknownMember indicates a member ID the service does not know.
	ErrUnknownMember = errors.New("unknown member")
)

// DefaultTimeout bounds one service round trip.
const DefaultTimeout = 10 * time.Second

// Config configures a service client.
type Config struct {
	// BaseURL is the service root, e.g. "https://api.tapmeet.app".
	BaseURL string

	// Timeout bounds each round trip. Zero uses DefaultTimeout.
	// Ignored when HTTPClient is set.
	Timeout time.Duration

	// HTTPClient overrides the HTTP client (optional).
	HTTPClient *http.Client

	// Logger receives round-trip failures (optional).
	Logger log.Logger
}

// Validate checks the configuration.
func (c *Config) Validate() error {
	if c.BaseURL == "" {
		return fmt.Errorf("%w: base URL is required", ErrInvalidConfig)
	}
	u, err := url.Parse(c.BaseURL)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return fmt.Errorf("%w: base URL %q", ErrInvalidConfig, c.BaseURL)
	}
	if c.Timeout < 0 {
		return fmt.Errorf("%w: negative timeout", ErrInvalidConfig)
	}
	return nil
}

// DefaultConfig returns a client configuration for the service at baseURL.
func DefaultConfig(baseURL string) Config {
	return Config{
		BaseURL: baseURL,
		Timeout: DefaultTimeout,
	}
}

// Client is a JSON/HTTP client for the TapMeet verification service. It
// implements both flow collaborators and is safe for concurrent use.
type Client struct {
	base   string
	http   *http.Client
	logger log.Logger
}

// Compile-time interface satisfaction checks.
var (
	_ verify.PinDelivery  = (*Client)(nil)
	_ verify.ProfileFetch = (*Client)(nil)
)

// NewClient creates a service client.
func NewClient(cfg Config) (*Client, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	httpClient := cfg.HTTPClient
	if httpClient == nil {
		timeout := cfg.Timeout
		if timeout == 0 {
			timeout = DefaultTimeout
		}
		httpClient = &http.Client{Timeout: timeout}
	}
	logger := cfg.Logger
	if logger == nil {
		logger = log.NoopLogger{}
	}
	return &Client{
		base:   strings.TrimRight(cfg.BaseURL, "/"),
		http:   httpClient,
		logger: logger,
	}, nil
}

type createVerificationRequest struct {
	SharerID string `json:"sharerId"`
}

type createVerificationResponse struct {
	SessionID string `json:"sessionId"`
	SharerID  string `json:"sharerId"`
	PinLength int    `json:"pinLength"`
	ExpiresAt string `json:"expiresAt"`
}

type checkPinRequest struct {
	SessionID string `json:"sessionId"`
	Pin       string `json:"pin"`
}

type checkPinResponse struct {
	Verified bool `json:"verified"`
}

type fetchProfileRequest struct {
	MemberID  string `json:"memberId"`
	Level     string `json:"level"`
	SessionID string `json:"sessionId,omitempty"`
}

// RequestPin asks the service to deliver a PIN to the sharer and returns
// the created verification session.
func (c *Client) RequestPin(ctx context.Context, sharerID string) (*verify.Session, error) {
	var resp createVerificationResponse
	if err := c.post(ctx, "/v1/verifications", createVerificationRequest{SharerID: sharerID}, &resp, nil); err != nil {
		return nil, err
	}

	var expires time.Time
	if resp.ExpiresAt != "" {
		parsed, err := time.Parse(time.RFC3339, resp.ExpiresAt)
		if err != nil {
			return nil, fmt.Errorf("%w: bad expiresAt %q", ErrService, resp.ExpiresAt)
		}
		expires = parsed
	}
	length := resp.PinLength
	if length <= 0 {
		length = pin.DefaultLength
	}
	return &verify.Session{
		ID:        resp.SessionID,
		SharerID:  resp.SharerID,
		PinLength: length,
		ExpiresAt: expires,
	}, nil
}

// VerifyPin checks an entered PIN against the session.
func (c *Client) VerifyPin(ctx context.Context, sessionID, pin string) (bool, error) {
	var resp checkPinResponse
	body := checkPinRequest{SessionID: sessionID, Pin: pin}
	if err := c.post(ctx, "/v1/verifications/check", body, &resp, ErrUnknownSession); err != nil {
		return false, err
	}
	return resp.Verified, nil
}

// FetchProfile returns the profile at the requested level.
func (c *Client) FetchProfile(ctx context.Context, req verify.ProfileRequest) (*verify.Profile, error) {
	var profile verify.Profile
	body := fetchProfileRequest{
		MemberID:  req.MemberID,
		Level:     string(req.Level),
		SessionID: req.SessionID,
	}
	if err := c.post(ctx, "/v1/profiles/fetch", body, &profile, ErrUnknownMember); err != nil {
		return nil, err
	}
	return &profile, nil
}

// post sends one JSON round trip. notFound, when non-nil, is the error a
// 404 response maps to instead of the generic service error.
func (c *Client) post(ctx context.Context, path string, body, out any, notFound error) error {
	payload, err := json.Marshal(body)
	if err != nil {
		return fmt.Errorf("encode %s request: %w", path, err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.base+path, bytes.NewReader(payload))
	if err != nil {
		return fmt.Errorf("build %s request: %w", path, err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		c.logFailure(path, err)
		return fmt.Errorf("%s: %w", path, err)
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusNotFound && notFound != nil:
		err := fmt.Errorf("%w: %s", notFound, path)
		c.logFailure(path, err)
		return err
	case resp.StatusCode < 200 || resp.StatusCode > 299:
		err := fmt.Errorf("%w: %s returned %s", ErrService, path, resp.Status)
		c.logFailure(path, err)
		return err
	}

	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("%w: decode %s response: %v", ErrService, path, err)
	}
	return nil
}

// logFailure records a failed round trip. Successful trips are logged by
// the orchestrator with flow correlation; the client only knows the path.
func (c *Client) logFailure(path string, err error) {
	c.logger.Log(log.Event{
		Timestamp: time.Now(),
		Source:    log.SourceCollaborator,
		Category:  log.CategoryError,
		Error: &log.ErrorEventData{
			Source:  log.SourceCollaborator,
			Message: err.Error(),
			Context: path,
		},
	})
}
