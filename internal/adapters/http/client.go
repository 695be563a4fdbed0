// Package http implements the meeting client against a meeting gateway REST
// API.
package http

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"sync"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/spf13/pflag"

	"github.com/bft-labs/meetbot/internal/cliconfig"
	"github.com/bft-labs/meetbot/internal/domain"
	"github.com/bft-labs/meetbot/internal/ports"
	"github.com/bft-labs/meetbot/pkg/log"
)

const (
	statusEndpoint = "/v1/sdk/status"
	authEndpoint   = "/v1/sdk/auth"

	// TokenLifetime is the validity of the signed SDK token.
	TokenLifetime = 2 * time.Hour

	// HeaderRequestID carries a fresh uuid on every gateway request.
	HeaderRequestID = "X-Request-ID"
)

var _ ports.MeetingClient = (*Client)(nil)

// ClientConfig holds the dependencies of a Client.
type ClientConfig struct {
	// HTTPClient performs gateway requests. Default: an *http.Client with the
	// configured timeout.
	HTTPClient ports.HTTPClient

	Logger log.Logger

	// Output receives usage text for --help and flag errors. Default: io.Discard.
	Output io.Writer

	// UserAgent is sent on every request. Default: "meetbot".
	UserAgent string

	// OnConfigured is called once Configure has produced a valid Config.
	OnConfigured func(cliconfig.Config)

	// Now returns the current time for token claims. Default: time.Now.
	Now func() time.Time
}

// Client implements ports.MeetingClient. It is safe for concurrent use; Leave
// and Release may run on the signal goroutine while startup is in progress.
type Client struct {
	httpClient   ports.HTTPClient
	logger       log.Logger
	output       io.Writer
	userAgent    string
	onConfigured func(cliconfig.Config)
	now          func() time.Time

	mu          sync.Mutex
	cfg         cliconfig.Config
	configured  bool
	initialized bool
	released    bool
	token       string
	session     string
}

// NewClient creates an unconfigured client.
func NewClient(cfg ClientConfig) *Client {
	c := &Client{
		httpClient:   cfg.HTTPClient,
		logger:       cfg.Logger,
		output:       cfg.Output,
		userAgent:    cfg.UserAgent,
		onConfigured: cfg.OnConfigured,
		now:          cfg.Now,
	}
	if c.logger == nil {
		c.logger = log.Discard
	}
	if c.output == nil {
		c.output = io.Discard
	}
	if c.userAgent == "" {
		c.userAgent = "meetbot"
	}
	if c.now == nil {
		c.now = time.Now
	}
	return c
}

// Config returns the configuration produced by Configure.
func (c *Client) Config() cliconfig.Config {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.cfg
}

// Session returns the active participant id, or "" when not in a meeting.
func (c *Client) Session() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.session
}

// Configure parses the raw process arguments.
func (c *Client) Configure(args []string) domain.ResultCode {
	cfg, err := cliconfig.Parse(args, c.output)
	if err != nil {
		if errors.Is(err, pflag.ErrHelp) {
			return domain.ResultWrongUsage
		}
		c.logger.Error("invalid configuration", log.Err(err))
		return domain.ResultInvalidParameter
	}

	c.mu.Lock()
	c.cfg = cfg
	c.configured = true
	if c.httpClient == nil {
		c.httpClient = &http.Client{Timeout: cfg.HTTPTimeout}
	}
	c.mu.Unlock()

	c.logger.Debug("configured",
		log.String("meeting_id", cfg.MeetingID),
		log.String("service_url", cfg.ServiceURL),
		log.String("display_name", cfg.DisplayName),
	)
	if c.onConfigured != nil {
		c.onConfigured(cfg)
	}
	return domain.ResultSuccess
}

// Initialize checks that the gateway is reachable and ready.
func (c *Client) Initialize(ctx context.Context) domain.ResultCode {
	c.mu.Lock()
	cfg, ok := c.cfg, c.configured && !c.released
	c.mu.Unlock()
	if !ok {
		return domain.ResultUninitialized
	}

	resp, err := c.do(ctx, http.MethodGet, cfg.ServiceURL+statusEndpoint, "", nil)
	if err != nil {
		c.logger.Error("gateway unreachable", log.Err(err))
		return domain.ResultServiceFailed
	}
	defer drain(resp)
	if code := resultFromStatus(resp.StatusCode); !code.OK() {
		c.logger.Error("gateway not ready", log.Int("http_status", resp.StatusCode))
		return code
	}

	c.mu.Lock()
	c.initialized = true
	c.mu.Unlock()
	return domain.ResultSuccess
}

type authResponse struct {
	Token string `json:"token"`
}

type joinRequest struct {
	DisplayName string `json:"display_name"`
	Password    string `json:"password,omitempty"`
	ZAK         string `json:"zak,omitempty"`
}

type joinResponse struct {
	ParticipantID string `json:"participant_id"`
}

// Authorize exchanges a signed SDK token for a gateway token and joins the
// configured meeting. On success the participant id is the active session.
func (c *Client) Authorize(ctx context.Context) domain.ResultCode {
	c.mu.Lock()
	cfg, ok := c.cfg, c.initialized && !c.released
	c.mu.Unlock()
	if !ok {
		return domain.ResultUninitialized
	}

	sdkToken, err := SignToken(cfg.ClientID, cfg.ClientSecret, c.now())
	if err != nil {
		c.logger.Error("failed to sign sdk token", log.Err(err))
		return domain.ResultInternalError
	}

	var auth authResponse
	if code := c.call(ctx, http.MethodPost, cfg.ServiceURL+authEndpoint, sdkToken, nil, &auth); !code.OK() {
		return code
	}
	if auth.Token == "" {
		c.logger.Error("gateway returned an empty token")
		return domain.ResultUnauthenticated
	}

	var joined joinResponse
	req := joinRequest{DisplayName: cfg.DisplayName, Password: cfg.Password, ZAK: cfg.ZAK}
	if code := c.call(ctx, http.MethodPost, participantsURL(cfg), auth.Token, req, &joined); !code.OK() {
		return code
	}
	if joined.ParticipantID == "" {
		c.logger.Error("gateway returned an empty participant id")
		return domain.ResultUnknown
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	if c.released {
		// Released while joining; the session is not ours to keep.
		return domain.ResultUninitialized
	}
	c.token = auth.Token
	c.session = joined.ParticipantID
	c.logger.Info("joined meeting",
		log.String("meeting_id", cfg.MeetingID),
		log.String("participant_id", joined.ParticipantID),
	)
	return domain.ResultSuccess
}

// Leave exits the active meeting. Without a session it does nothing. The
// session is forgotten whatever the gateway answers.
func (c *Client) Leave(ctx context.Context) domain.ResultCode {
	c.mu.Lock()
	cfg, token, session := c.cfg, c.token, c.session
	c.session = ""
	c.mu.Unlock()
	if session == "" {
		return domain.ResultSuccess
	}

	target := participantsURL(cfg) + "/" + url.PathEscape(session)
	code := c.call(ctx, http.MethodDelete, target, token, nil, nil)
	if code.OK() {
		c.logger.Info("left meeting", log.String("participant_id", session))
	}
	return code
}

// Release drops credentials and pooled connections. Safe to call repeatedly.
func (c *Client) Release() {
	c.mu.Lock()
	if c.released {
		c.mu.Unlock()
		return
	}
	c.released = true
	c.initialized = false
	c.token = ""
	c.session = ""
	hc := c.httpClient
	c.mu.Unlock()

	if ic, ok := hc.(ports.IdleCloser); ok {
		ic.CloseIdleConnections()
	}
	c.logger.Debug("client released")
}

// call performs a JSON request and maps the outcome to a result code.
func (c *Client) call(ctx context.Context, method, target, bearer string, in, out any) domain.ResultCode {
	var body io.Reader
	if in != nil {
		data, err := json.Marshal(in)
		if err != nil {
			c.logger.Error("marshal request", log.Err(err))
			return domain.ResultInternalError
		}
		body = bytes.NewReader(data)
	}

	resp, err := c.do(ctx, method, target, bearer, body)
	if err != nil {
		c.logger.Error("gateway request failed", log.String("method", method), log.Err(err))
		return domain.ResultServiceFailed
	}
	defer drain(resp)

	if code := resultFromStatus(resp.StatusCode); !code.OK() {
		msg, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		c.logger.Error("gateway rejected request",
			log.String("method", method),
			log.Int("http_status", resp.StatusCode),
			log.String("body", string(bytes.TrimSpace(msg))),
		)
		return code
	}
	if out != nil {
		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			c.logger.Error("decode response", log.String("method", method), log.Err(err))
			return domain.ResultUnknown
		}
	}
	return domain.ResultSuccess
}

func (c *Client) do(ctx context.Context, method, target, bearer string, body io.Reader) (*http.Response, error) {
	req, err := http.NewRequestWithContext(ctx, method, target, body)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set(HeaderRequestID, uuid.NewString())
	req.Header.Set("User-Agent", c.userAgent)
	if bearer != "" {
		req.Header.Set("Authorization", "Bearer "+bearer)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	c.mu.Lock()
	hc := c.httpClient
	c.mu.Unlock()
	if hc == nil {
		return nil, domain.ErrNotConfigured
	}

	resp, err := hc.Do(req)
	if err != nil {
		return nil, fmt.Errorf("send request: %w", err)
	}
	return resp, nil
}

// SignToken returns the HS256 SDK token for clientID.
func SignToken(clientID, secret string, now time.Time) (string, error) {
	if clientID == "" || secret == "" {
		return "", domain.ErrInvalidConfig
	}
	exp := now.Add(TokenLifetime).Unix()
	claims := jwt.MapClaims{
		"appKey":   clientID,
		"iat":      now.Unix(),
		"exp":      exp,
		"tokenExp": exp,
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(secret))
}

func resultFromStatus(status int) domain.ResultCode {
	switch {
	case status/100 == 2:
		return domain.ResultSuccess
	case status == http.StatusBadRequest:
		return domain.ResultInvalidParameter
	case status == http.StatusUnauthorized:
		return domain.ResultUnauthenticated
	case status == http.StatusForbidden:
		return domain.ResultNoPermission
	case status == http.StatusTooManyRequests:
		return domain.ResultTooFrequentCall
	case status >= 500:
		return domain.ResultServiceFailed
	default:
		return domain.ResultUnknown
	}
}

func participantsURL(cfg cliconfig.Config) string {
	return cfg.ServiceURL + "/v1/meetings/" + url.PathEscape(cfg.MeetingID) + "/participants"
}

func drain(resp *http.Response) {
	_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, 4096))
	resp.Body.Close()
}
