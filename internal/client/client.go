// Package client reaches the garden authority over HTTP. Errors coming back
// from the server are mapped to the same domain sentinels the in-process
// service returns, so callers can use errors.Is either way.
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

	"github.com/osse101/idlegarden/internal/authority"
	"github.com/osse101/idlegarden/internal/cooldown"
	"github.com/osse101/idlegarden/internal/domain"
	"github.com/osse101/idlegarden/internal/logger"
)

// Config configures the authority client
type Config struct {
	BaseURL string
	APIKey  string
	UserID  string
	Timeout time.Duration
}

// Client implements authority.Authority over HTTP
type Client struct {
	baseURL    string
	apiKey     string
	userID     string
	httpClient *http.Client
}

var _ authority.Authority = (*Client)(nil)

// New creates a new authority client
func New(cfg Config) *Client {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = DefaultRequestTimeout
	}
	return &Client{
		baseURL:    strings.TrimRight(cfg.BaseURL, "/"),
		apiKey:     cfg.APIKey,
		userID:     cfg.UserID,
		httpClient: &http.Client{Timeout: timeout},
	}
}

// errorBody mirrors the server's error response
type errorBody struct {
	Error                string            `json:"error"`
	Code                 string            `json:"code"`
	Kind                 string            `json:"kind"`
	RewardType           string            `json:"reward_type"`
	TimeUntilNextSeconds int64             `json:"time_until_next_seconds"`
	DailyCount           int               `json:"daily_count"`
	MaxDaily             int               `json:"max_daily"`
	Fields               map[string]string `json:"fields"`
}

// do sends one request. Transport failures and gateway errors become
// ErrAuthorityUnavailable because the server may or may not have applied the call.
func (c *Client) do(ctx context.Context, method, path string, query url.Values, body interface{}, idemKey string, out interface{}) error {
	var reader io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf(ErrMsgMarshalBody, err)
		}
		reader = bytes.NewReader(raw)
	}

	target := c.baseURL + path
	if len(query) > 0 {
		target += "?" + query.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, method, target, reader)
	if err != nil {
		return fmt.Errorf(ErrMsgCreateRequest, err)
	}
	req.Header.Set("Content-Type", "application/json")
	if c.apiKey != "" {
		req.Header.Set(HeaderAPIKey, c.apiKey)
	}
	if c.userID != "" {
		req.Header.Set(HeaderUserID, c.userID)
	}
	if idemKey != "" {
		req.Header.Set(HeaderIdempotencyKey, idemKey)
	}
	if requestID, ok := logger.RequestIDFromContext(ctx); ok && requestID != "" {
		req.Header.Set(HeaderRequestID, requestID)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		logger.FromContext(ctx).Warn(LogMsgRequestFailed, "path", path, "error", err)
		return fmt.Errorf("%w: %w", domain.ErrAuthorityUnavailable, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= http.StatusBadRequest {
		return decodeError(resp)
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		// The call went through but the result is unreadable
		return fmt.Errorf("%w: %w", domain.ErrAuthorityUnavailable, fmt.Errorf(ErrMsgDecodeResponse, path, err))
	}
	return nil
}

func decodeError(resp *http.Response) error {
	raw, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBodyBytes))

	var body errorBody
	if err := json.Unmarshal(raw, &body); err != nil || body.Code == "" {
		switch resp.StatusCode {
		case http.StatusBadGateway, http.StatusServiceUnavailable, http.StatusGatewayTimeout, http.StatusTooManyRequests:
			return fmt.Errorf("%w: "+ErrMsgUnexpectedStatus, domain.ErrAuthorityUnavailable, resp.StatusCode)
		case http.StatusUnauthorized, http.StatusForbidden:
			return fmt.Errorf("%w: "+ErrMsgUnexpectedStatus, domain.ErrAuthorityRejected, resp.StatusCode)
		}
		return fmt.Errorf("%w: "+ErrMsgUnexpectedStatus+": %s", domain.ErrAuthorityRejected, resp.StatusCode, strings.TrimSpace(string(raw)))
	}

	remaining := time.Duration(body.TimeUntilNextSeconds) * time.Second
	switch body.Code {
	case domain.CodeOnCooldown:
		return cooldown.ErrOnCooldown{RewardType: body.RewardType, Remaining: remaining}
	case domain.CodeQuotaExceeded:
		return cooldown.ErrQuotaExceeded{
			RewardType:    body.RewardType,
			TimeUntilNext: remaining,
			DailyCount:    body.DailyCount,
			MaxDaily:      body.MaxDaily,
		}
	}

	sentinel := domain.ErrorForCode(body.Code)
	if len(body.Fields) > 0 {
		return fmt.Errorf("%w: %s %v", sentinel, body.Error, body.Fields)
	}
	return fmt.Errorf("%w: %s", sentinel, body.Error)
}

// State fetches the authoritative snapshot
func (c *Client) State(ctx context.Context, userID string) (*domain.GardenSnapshot, error) {
	var snap domain.GardenSnapshot
	query := url.Values{"user_id": {userID}}
	if err := c.do(ctx, http.MethodGet, PathState, query, nil, "", &snap); err != nil {
		return nil, err
	}
	return &snap, nil
}

// Harvest settles a harvest
func (c *Client) Harvest(ctx context.Context, req domain.HarvestRequest) (*domain.HarvestResult, error) {
	var res domain.HarvestResult
	if err := c.do(ctx, http.MethodPost, PathHarvest, nil, req, req.IdempotencyKey, &res); err != nil {
		return nil, err
	}
	return &res, nil
}

// Plant settles a plant
func (c *Client) Plant(ctx context.Context, req domain.PlantRequest) (*domain.PlantResult, error) {
	var res domain.PlantResult
	if err := c.do(ctx, http.MethodPost, PathPlant, nil, req, req.IdempotencyKey, &res); err != nil {
		return nil, err
	}
	return &res, nil
}

// CooldownState fetches one reward gate
func (c *Client) CooldownState(ctx context.Context, userID, rewardType string) (*domain.CooldownState, error) {
	var state domain.CooldownState
	query := url.Values{"user_id": {userID}, "reward_type": {rewardType}}
	if err := c.do(ctx, http.MethodGet, PathCooldown, query, nil, "", &state); err != nil {
		return nil, err
	}
	return &state, nil
}

// Grant asks the authority to grant an ad reward
func (c *Client) Grant(ctx context.Context, req domain.GrantRequest) (*domain.GrantResult, error) {
	var res domain.GrantResult
	if err := c.do(ctx, http.MethodPost, PathGrant, nil, req, req.IdempotencyKey, &res); err != nil {
		return nil, err
	}
	return &res, nil
}
