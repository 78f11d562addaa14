// ABOUTME: Fetches TURN/STUN credentials for WebRTC peer connections
// ABOUTME: Falls back to public STUN servers when the TURN provider is unavailable

package verify

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"time"
)

// ICEServer is one entry in a WebRTC iceServers list.
type ICEServer struct {
	URLs       any    `json:"urls"`
	Username   string `json:"username,omitempty"`
	Credential string `json:"credential,omitempty"`
}

// defaultSTUNServers are always appended so peers can at least
// attempt a direct connection when TURN is unavailable.
var defaultSTUNServers = []ICEServer{
	{URLs: "stun:stun.l.google.com:19302"},
	{URLs: "stun:stun1.l.google.com:19302"},
}

// TURNClient fetches relay credentials from the TURN provider.
type TURNClient struct {
	url    string
	apiKey string
	client *http.Client
	logger *slog.Logger
}

// NewTURNClient creates a client for the provider's credentials
// endpoint. The API key is passed as a query parameter.
func NewTURNClient(url, apiKey string) *TURNClient {
	return &TURNClient{
		url:    url,
		apiKey: apiKey,
		client: &http.Client{Timeout: 10 * time.Second},
		logger: slog.Default().With("component", "turn"),
	}
}

// Credentials returns the ICE server list for a new peer connection.
// Never fails: provider errors degrade to STUN-only.
func (c *TURNClient) Credentials(ctx context.Context) []ICEServer {
	if c.url == "" || c.apiKey == "" {
		c.logger.Warn("TURN provider not configured, using STUN only")
		return defaultSTUNServers
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.url+"?apiKey="+c.apiKey, nil)
	if err != nil {
		return defaultSTUNServers
	}

	resp, err := c.client.Do(req)
	if err != nil {
		c.logger.Error("failed to fetch TURN credentials", "error", err)
		return defaultSTUNServers
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		c.logger.Error("TURN provider returned error", "status", resp.StatusCode)
		return defaultSTUNServers
	}

	// Providers answer with either a bare server list or an object
	// wrapping one; accept both.
	var servers []ICEServer
	var raw json.RawMessage
	if err := json.NewDecoder(resp.Body).Decode(&raw); err != nil {
		return defaultSTUNServers
	}

	var list []ICEServer
	if err := json.Unmarshal(raw, &list); err == nil {
		for _, s := range list {
			if s.URLs != nil {
				servers = append(servers, s)
			}
		}
	} else {
		var wrapped struct {
			ICEServers []ICEServer `json:"iceServers"`
		}
		if err := json.Unmarshal(raw, &wrapped); err == nil {
			servers = append(servers, wrapped.ICEServers...)
		}
	}

	servers = append(servers, defaultSTUNServers...)
	c.logger.Info("returning ICE servers", "count", len(servers))
	return servers
}
