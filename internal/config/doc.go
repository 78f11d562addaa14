// Package config handles configuration loading for vkyc-gateway.
//
// Configuration is loaded from YAML files with ${VAR_NAME} environment
// variable expansion. Duration values use Go's time.ParseDuration
// syntax ("30s", "5m").
//
// Example:
//
//	server:
//	  http_addr: "0.0.0.0:8000"
//	  ws_base_url: "wss://vkyc.example.com"
//
//	database:
//	  path: "/var/lib/vkyc/gateway.db"
//
//	auth:
//	  jwt_secret: "${VKYC_JWT_SECRET}"
//	  token_ttl: "12h"
//
//	sessions:
//	  heartbeat_interval: "30s"
//	  stale_timeout: "60s"
//	  receive_timeout: "60s"
//	  pong_timeout: "10s"
//	  sweep_interval: "30s"
//	  expiry: "5m"
//
//	links:
//	  frontend_base_url: "https://kyc.example.com"
//
//	logging:
//	  level: "info"   # debug, info, warn, error
//	  format: "text"  # text, json
package config
