// Package billing looks up a user's subscription status in the external
// billing service. Every failure is folded into the status vocabulary, so
// callers never handle errors from this package.
package billing

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/seidelmaycon/game-api/pkg/helpers"
)

// SubscriptionStatus is the normalised result of a billing lookup.
type SubscriptionStatus string

const (
	StatusActive   SubscriptionStatus = "active"
	StatusExpired  SubscriptionStatus = "expired"
	StatusUnknown  SubscriptionStatus = "unknown"
	StatusNotFound SubscriptionStatus = "not_found"
)

const (
	DefaultTimeout     = 5 * time.Second
	DefaultOpenTimeout = 3 * time.Second

	// maxBodyBytes bounds how much of a response is read or logged.
	maxBodyBytes = 64 << 10
)

// Client calls GET {base}/users/{id}/billing.
type Client struct {
	baseURL string
	apiKey  string
	http    *http.Client
	logger  *logrus.Logger
}

// New builds a client. timeout bounds the whole call, openTimeout only the
// TCP connect. Non-positive values fall back to the defaults.
func New(baseURL, apiKey string, timeout, openTimeout time.Duration, logger *logrus.Logger) *Client {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	if openTimeout <= 0 {
		openTimeout = DefaultOpenTimeout
	}
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		apiKey:  apiKey,
		logger:  logger,
		http: &http.Client{
			Timeout: timeout,
			Transport: &http.Transport{
				Proxy:               http.ProxyFromEnvironment,
				DialContext:         (&net.Dialer{Timeout: openTimeout}).DialContext,
				TLSHandshakeTimeout: openTimeout,
				MaxIdleConnsPerHost: 10,
				IdleConnTimeout:     90 * time.Second,
			},
		},
	}
}

type billingResponse struct {
	SubscriptionStatus *string `json:"subscription_status"`
}

// GetSubscriptionStatus makes a single attempt and never returns an error:
// 404 maps to StatusNotFound, every other failure to StatusUnknown.
func (c *Client) GetSubscriptionStatus(ctx context.Context, userID int64) SubscriptionStatus {
	fields := logrus.Fields{"user_id": userID}

	endpoint := c.baseURL + "/users/" + url.PathEscape(strconv.FormatInt(userID, 10)) + "/billing"
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		helpers.LogError(c.logger, "billing request build failed", err, fields)
		return StatusUnknown
	}
	req.Header.Set("Authorization", c.apiKey)
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")

	res, err := c.http.Do(req)
	if err != nil {
		helpers.LogError(c.logger, "billing request failed", err, fields)
		return StatusUnknown
	}
	defer func() { _ = res.Body.Close() }()

	body, err := io.ReadAll(io.LimitReader(res.Body, maxBodyBytes))
	if err != nil {
		helpers.LogError(c.logger, "billing response read failed", err, fields)
		return StatusUnknown
	}

	fields["status"] = res.StatusCode
	switch {
	case res.StatusCode == http.StatusNotFound:
		helpers.LogInfo(c.logger, "billing user not found", fields)
		return StatusNotFound
	case res.StatusCode < 200 || res.StatusCode > 299:
		fields["body"] = string(body)
		helpers.LogError(c.logger, "billing request unsuccessful", nil, fields)
		return StatusUnknown
	}

	return c.parse(body, fields)
}

func (c *Client) parse(body []byte, fields logrus.Fields) SubscriptionStatus {
	var payload billingResponse
	if err := json.Unmarshal(body, &payload); err != nil {
		helpers.LogError(c.logger, "billing response parse failed", err, fields)
		return StatusUnknown
	}
	if payload.SubscriptionStatus == nil {
		helpers.LogError(c.logger, "billing response missing subscription_status", nil, fields)
		return StatusUnknown
	}

	switch s := SubscriptionStatus(*payload.SubscriptionStatus); s {
	case StatusActive, StatusExpired:
		return s
	default:
		fields["subscription_status"] = *payload.SubscriptionStatus
		helpers.LogError(c.logger, "billing response invalid subscription_status", fmt.Errorf("unexpected value %q", s), fields)
		return StatusUnknown
	}
}
