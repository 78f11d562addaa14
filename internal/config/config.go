// ABOUTME: Configuration loading and parsing for vkyc-gateway
// ABOUTME: Supports YAML files with environment variable expansion and duration parsing

package config

import (
	"fmt"
	"os"
	"regexp"
	"time"

	"gopkg.in/yaml.v3"
)

// Config represents the complete vkyc-gateway configuration
type Config struct {
	Server    ServerConfig    `yaml:"server"`
	Database  DatabaseConfig  `yaml:"database"`
	Auth      AuthConfig      `yaml:"auth"`
	Sessions  SessionsConfig  `yaml:"sessions"`
	Links     LinksConfig     `yaml:"links"`
	Services  ServicesConfig  `yaml:"services"`
	Recording RecordingConfig `yaml:"recording"`
	Logging   LoggingConfig   `yaml:"logging"`
}

// ServerConfig holds server address configuration
type ServerConfig struct {
	HTTPAddr string `yaml:"http_addr"`

	// WSBaseURL is the externally reachable base URL for WebSocket
	// endpoints, handed to customers in the start response
	// (e.g. "wss://vkyc.example.com"). Defaults to ws://<http_addr>.
	WSBaseURL string `yaml:"ws_base_url"`
}

// DatabaseConfig holds database configuration
type DatabaseConfig struct {
	Path string `yaml:"path"`
}

// AuthConfig holds authentication configuration.
// When JWTSecret is empty, agent WebSocket connections are not
// token-checked and agent creation does not issue tokens.
type AuthConfig struct {
	JWTSecret string `yaml:"jwt_secret"`

	TokenTTL    time.Duration `yaml:"-"`
	TokenTTLRaw string        `yaml:"token_ttl"`
}

// SessionsConfig holds the timing knobs of the live-session core.
type SessionsConfig struct {
	HeartbeatInterval time.Duration `yaml:"-"`
	StaleTimeout      time.Duration `yaml:"-"`
	ReceiveTimeout    time.Duration `yaml:"-"`
	PongTimeout       time.Duration `yaml:"-"`
	SweepInterval     time.Duration `yaml:"-"`
	Expiry            time.Duration `yaml:"-"`

	// Raw string values for YAML unmarshaling
	HeartbeatIntervalRaw string `yaml:"heartbeat_interval"`
	StaleTimeoutRaw      string `yaml:"stale_timeout"`
	ReceiveTimeoutRaw    string `yaml:"receive_timeout"`
	PongTimeoutRaw       string `yaml:"pong_timeout"`
	SweepIntervalRaw     string `yaml:"sweep_interval"`
	ExpiryRaw            string `yaml:"expiry"`
}

// LinksConfig holds KYC link generation configuration
type LinksConfig struct {
	// FrontendBaseURL is the customer-facing base URL embedded in
	// KYC links sent over SMS/email.
	FrontendBaseURL string `yaml:"frontend_base_url"`
}

// ServicesConfig holds endpoints for external collaborator services
type ServicesConfig struct {
	OCR        OCRConfig        `yaml:"ocr"`
	DigiLocker DigiLockerConfig `yaml:"digilocker"`
	TURN       TURNConfig       `yaml:"turn"`
	SMS        SMSConfig        `yaml:"sms"`
	SMTP       SMTPConfig       `yaml:"smtp"`
}

// OCRConfig holds document OCR service endpoints
type OCRConfig struct {
	PANURL     string `yaml:"pan_url"`
	AadhaarURL string `yaml:"aadhaar_url"`
}

// DigiLockerConfig holds DigiLocker verification service configuration
type DigiLockerConfig struct {
	URL    string `yaml:"url"`
	APIKey string `yaml:"api_key"`
}

// TURNConfig holds TURN credential provider configuration
type TURNConfig struct {
	URL    string `yaml:"url"`
	APIKey string `yaml:"api_key"`
}

// SMSConfig holds SMS gateway configuration
type SMSConfig struct {
	URL      string `yaml:"url"`
	AuthKey  string `yaml:"auth_key"`
	SenderID string `yaml:"sender_id"`
	Route    string `yaml:"route"`
	Country  string `yaml:"country"`
}

// SMTPConfig holds outbound email configuration
type SMTPConfig struct {
	Host     string `yaml:"host"`
	Port     int    `yaml:"port"`
	User     string `yaml:"user"`
	Password string `yaml:"password"`
}

// RecordingConfig holds session recording storage configuration
type RecordingConfig struct {
	Dir string `yaml:"dir"`
}

// LoggingConfig holds logging configuration
type LoggingConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
}

// Load reads a configuration file from the given path and returns a parsed Config.
// Environment variables in the format ${VAR_NAME} are expanded.
// Duration strings are parsed into time.Duration values.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config file: %w", err)
	}

	// Expand environment variables in the raw YAML content
	expandedData := expandEnvVars(string(data))

	var cfg Config
	if err := yaml.Unmarshal([]byte(expandedData), &cfg); err != nil {
		return nil, fmt.Errorf("parsing config file: %w", err)
	}

	if err := parseDurations(&cfg); err != nil {
		return nil, fmt.Errorf("parsing durations: %w", err)
	}

	cfg.applyDefaults()

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("validating config: %w", err)
	}

	return &cfg, nil
}

// expandEnvVars replaces ${VAR_NAME} patterns with the corresponding environment variable values.
// If the environment variable is not set, it is replaced with an empty string.
func expandEnvVars(s string) string {
	re := regexp.MustCompile(`\$\{([^}]+)\}`)

	return re.ReplaceAllStringFunc(s, func(match string) string {
		varName := re.FindStringSubmatch(match)[1]
		return os.Getenv(varName)
	})
}

// applyDefaults fills in the timing defaults for anything the config
// file leaves unset. The defaults match the protocol the web clients
// are built against: 30s heartbeats, 60s staleness, 5m session expiry.
func (c *Config) applyDefaults() {
	if c.Sessions.HeartbeatInterval == 0 {
		c.Sessions.HeartbeatInterval = 30 * time.Second
	}
	if c.Sessions.StaleTimeout == 0 {
		c.Sessions.StaleTimeout = 60 * time.Second
	}
	if c.Sessions.ReceiveTimeout == 0 {
		c.Sessions.ReceiveTimeout = 60 * time.Second
	}
	if c.Sessions.PongTimeout == 0 {
		c.Sessions.PongTimeout = 10 * time.Second
	}
	if c.Sessions.SweepInterval == 0 {
		c.Sessions.SweepInterval = 30 * time.Second
	}
	if c.Sessions.Expiry == 0 {
		c.Sessions.Expiry = 5 * time.Minute
	}
	if c.Auth.TokenTTL == 0 {
		c.Auth.TokenTTL = 12 * time.Hour
	}
	if c.Server.WSBaseURL == "" && c.Server.HTTPAddr != "" {
		c.Server.WSBaseURL = "ws://" + c.Server.HTTPAddr
	}
	if c.Recording.Dir == "" {
		c.Recording.Dir = "recordings"
	}
}

// Validate checks that all required configuration fields are present and valid.
// Returns an error describing the first validation failure encountered.
func (c *Config) Validate() error {
	if c.Server.HTTPAddr == "" {
		return fmt.Errorf("server.http_addr is required")
	}
	if c.Database.Path == "" {
		return fmt.Errorf("database.path is required")
	}
	if c.Links.FrontendBaseURL == "" {
		return fmt.Errorf("links.frontend_base_url is required")
	}
	if c.Sessions.PongTimeout >= c.Sessions.ReceiveTimeout {
		return fmt.Errorf("sessions.pong_timeout must be shorter than sessions.receive_timeout")
	}
	return nil
}

// parseDurations converts the raw duration strings into time.Duration values
func parseDurations(cfg *Config) error {
	fields := []struct {
		raw  string
		dst  *time.Duration
		name string
	}{
		{cfg.Sessions.HeartbeatIntervalRaw, &cfg.Sessions.HeartbeatInterval, "heartbeat_interval"},
		{cfg.Sessions.StaleTimeoutRaw, &cfg.Sessions.StaleTimeout, "stale_timeout"},
		{cfg.Sessions.ReceiveTimeoutRaw, &cfg.Sessions.ReceiveTimeout, "receive_timeout"},
		{cfg.Sessions.PongTimeoutRaw, &cfg.Sessions.PongTimeout, "pong_timeout"},
		{cfg.Sessions.SweepIntervalRaw, &cfg.Sessions.SweepInterval, "sweep_interval"},
		{cfg.Sessions.ExpiryRaw, &cfg.Sessions.Expiry, "expiry"},
		{cfg.Auth.TokenTTLRaw, &cfg.Auth.TokenTTL, "token_ttl"},
	}

	for _, f := range fields {
		if f.raw == "" {
			continue
		}
		d, err := time.ParseDuration(f.raw)
		if err != nil {
			return fmt.Errorf("parsing %s %q: %w", f.name, f.raw, err)
		}
		*f.dst = d
	}

	return nil
}
