// ABOUTME: SMS delivery through an MSG91-style HTTP gateway
// ABOUTME: Used to send KYC links and schedule confirmations to customers

package notify

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"time"
)

// SMSSender delivers text messages through the configured gateway.
type SMSSender struct {
	url      string
	authKey  string
	senderID string
	route    string
	country  string
	client   *http.Client
	logger   *slog.Logger
}

// NewSMSSender creates a sender for the gateway endpoint. Route "4"
// is the transactional route; country is the dialing prefix.
func NewSMSSender(gatewayURL, authKey, senderID, route, country string) *SMSSender {
	if route == "" {
		route = "4"
	}
	if country == "" {
		country = "91"
	}
	return &SMSSender{
		url:      gatewayURL,
		authKey:  authKey,
		senderID: senderID,
		route:    route,
		country:  country,
		client:   &http.Client{Timeout: 10 * time.Second},
		logger:   slog.Default().With("component", "sms"),
	}
}

// Send delivers a message to the mobile number. Returns an error when
// the gateway is unreachable or rejects the request; callers decide
// whether that fails the operation or just gets logged.
func (s *SMSSender) Send(ctx context.Context, mobile, message string) error {
	if s.url == "" || s.authKey == "" {
		return fmt.Errorf("sms gateway not configured")
	}

	params := url.Values{}
	params.Set("authkey", s.authKey)
	params.Set("mobiles", mobile)
	params.Set("message", message)
	params.Set("sender", s.senderID)
	params.Set("route", s.route)
	params.Set("country", s.country)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.url+"?"+params.Encode(), nil)
	if err != nil {
		return fmt.Errorf("building sms request: %w", err)
	}

	resp, err := s.client.Do(req)
	if err != nil {
		return fmt.Errorf("sending sms: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("sms gateway returned status %d", resp.StatusCode)
	}

	s.logger.Info("sms sent", "mobile", mobile)
	return nil
}
