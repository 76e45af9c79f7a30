package gotrue

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"golang.org/x/time/rate"

	"github.com/phrazzld/taskpilot-api/internal/config"
	"github.com/phrazzld/taskpilot-api/internal/identity"
	"github.com/phrazzld/taskpilot-api/internal/platform/logger"
)

const maxResponseBytes = 1 << 20

// Client talks to a GoTrue server.
type Client struct {
	baseURL    string
	apiKey     string
	httpClient *http.Client
	limiter    *rate.Limiter
	logger     *slog.Logger
}

// Ensure Client implements identity.Provider interface
var _ identity.Provider = (*Client)(nil)

// Option customizes a Client.
type Option func(*Client)

// WithHTTPClient replaces the default HTTP client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.httpClient = hc }
}

// NewClient creates a Client from the identity configuration.
func NewClient(cfg config.IdentityConfig, logger *slog.Logger, opts ...Option) (*Client, error) {
	if cfg.ProviderURL == "" || cfg.APIKey == "" {
		return nil, fmt.Errorf("identity provider url and api key are required")
	}
	if _, err := url.ParseRequestURI(cfg.ProviderURL); err != nil {
		return nil, fmt.Errorf("invalid identity provider url: %w", err)
	}
	if logger == nil {
		logger = slog.Default()
	}

	timeout := time.Duration(cfg.TimeoutSeconds) * time.Second
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	rps := cfg.RequestsPerSecond
	if rps <= 0 {
		rps = 5
	}

	c := &Client{
		baseURL:    strings.TrimRight(cfg.ProviderURL, "/"),
		apiKey:     cfg.APIKey,
		httpClient: &http.Client{Timeout: timeout},
		limiter:    rate.NewLimiter(rate.Limit(rps), int(rps)+1),
		logger:     logger.With(slog.String("component", "gotrue")),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

type signupRequest struct {
	Email    string            `json:"email"`
	Password string            `json:"password"`
	Data     identity.Metadata `json:"data"`
}

type passwordGrantRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type userRef struct {
	ID string `json:"id"`
}

// authResponse covers both shapes GoTrue returns: a bare user when email
// confirmation is pending, or a session wrapping the user.
type authResponse struct {
	ID   string   `json:"id"`
	User *userRef `json:"user"`
}

func (r authResponse) userID() string {
	if r.User != nil && r.User.ID != "" {
		return r.User.ID
	}
	return r.ID
}

type errorResponse struct {
	Code             int    `json:"code"`
	ErrorCode        string `json:"error_code"`
	Msg              string `json:"msg"`
	Message          string `json:"message"`
	Error            string `json:"error"`
	ErrorDescription string `json:"error_description"`
}

func (e errorResponse) text() string {
	for _, s := range []string{e.Msg, e.Message, e.ErrorDescription, e.Error} {
		if s != "" {
			return s
		}
	}
	return ""
}

// CreateAccount implements identity.Provider.CreateAccount
func (c *Client) CreateAccount(
	ctx context.Context,
	email, password string,
	metadata identity.Metadata,
) (string, error) {
	var out authResponse
	err := c.post(ctx, "/auth/v1/signup", signupRequest{Email: email, Password: password, Data: metadata}, &out,
		classifySignupError)
	if err != nil {
		return "", err
	}
	if out.userID() == "" {
		return "", fmt.Errorf("%w: signup response carried no user id", identity.ErrUnavailable)
	}
	return out.userID(), nil
}

// VerifyCredentials implements identity.Provider.VerifyCredentials
func (c *Client) VerifyCredentials(ctx context.Context, email, password string) (string, error) {
	var out authResponse
	err := c.post(ctx, "/auth/v1/token?grant_type=password", passwordGrantRequest{Email: email, Password: password},
		&out, classifyTokenError)
	if err != nil {
		return "", err
	}
	if out.userID() == "" {
		return "", fmt.Errorf("%w: token response carried no user", identity.ErrUnavailable)
	}
	return out.userID(), nil
}

func classifySignupError(status int, body errorResponse) error {
	text := strings.ToLower(body.text())
	if body.ErrorCode == "user_already_exists" || body.ErrorCode == "email_exists" ||
		strings.Contains(text, "already registered") || strings.Contains(text, "already exists") {
		return identity.ErrAlreadyRegistered
	}
	return nil
}

func classifyTokenError(status int, body errorResponse) error {
	if status == http.StatusBadRequest || status == http.StatusUnauthorized {
		if body.Error == "invalid_grant" || body.ErrorCode == "invalid_credentials" ||
			strings.Contains(strings.ToLower(body.text()), "invalid login credentials") {
			return identity.ErrInvalidCredentials
		}
	}
	return nil
}

// post sends body as JSON and decodes a 2xx response into out. Non-2xx
// responses are offered to classify first; anything it does not recognize
// becomes identity.ErrUnavailable.
func (c *Client) post(
	ctx context.Context,
	path string,
	body, out any,
	classify func(status int, body errorResponse) error,
) error {
	log := logger.FromContextOrDefault(ctx, c.logger)

	if err := c.limiter.Wait(ctx); err != nil {
		return fmt.Errorf("%w: %v", identity.ErrUnavailable, err)
	}

	payload, err := json.Marshal(body)
	if err != nil {
		return fmt.Errorf("failed to encode request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(payload))
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("apikey", c.apiKey)
	req.Header.Set("Authorization", "Bearer "+c.apiKey)

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		log.Error("identity provider request failed",
			slog.String("path", strings.SplitN(path, "?", 2)[0]),
			slog.String("error", err.Error()))
		return fmt.Errorf("%w: %v", identity.ErrUnavailable, err)
	}
	defer func() { _ = resp.Body.Close() }()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return fmt.Errorf("%w: failed to read response: %v", identity.ErrUnavailable, err)
	}

	log.Debug("identity provider responded",
		slog.String("path", strings.SplitN(path, "?", 2)[0]),
		slog.Int("status", resp.StatusCode),
		slog.Duration("duration", time.Since(start)))

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		var apiErr errorResponse
		_ = json.Unmarshal(raw, &apiErr)
		if err := classify(resp.StatusCode, apiErr); err != nil {
			return err
		}
		log.Warn("identity provider rejected request",
			slog.Int("status", resp.StatusCode),
			slog.String("message", apiErr.text()))
		return fmt.Errorf("%w: status %d: %s", identity.ErrUnavailable, resp.StatusCode, apiErr.text())
	}

	if err := json.Unmarshal(raw, out); err != nil {
		return fmt.Errorf("%w: malformed response: %v", identity.ErrUnavailable, err)
	}
	return nil
}
