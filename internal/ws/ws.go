// ABOUTME: WebSocket endpoints for customer and agent connections
// ABOUTME: Owns the receive loops, silence probing and per-connection write serialization

package ws

import (
	"context"
	"errors"
	"log/slog"
	"net"
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"github.com/veriflow/vkyc-gateway/internal/auth"
	"github.com/veriflow/vkyc-gateway/internal/session"
)

// maxMessageSize bounds inbound frames. Document captures arrive as
// base64 images, so this is generous.
const maxMessageSize = 16 << 20

const writeTimeout = 10 * time.Second

// makeUpgrader creates a WebSocket upgrader with origin checking.
func makeUpgrader(allowedOrigins []string) websocket.Upgrader {
	allowAll := len(allowedOrigins) == 0 || (len(allowedOrigins) == 1 && allowedOrigins[0] == "*")
	originSet := make(map[string]bool, len(allowedOrigins))
	for _, o := range allowedOrigins {
		originSet[o] = true
	}

	return websocket.Upgrader{
		ReadBufferSize:  4096,
		WriteBufferSize: 4096,
		CheckOrigin: func(r *http.Request) bool {
			if allowAll {
				return true
			}
			origin := r.Header.Get("Origin")
			if origin == "" {
				return true // non-browser clients
			}
			return originSet[origin]
		},
	}
}

// transport wraps a gorilla connection with a write mutex so multiple
// goroutines (receive loop, coordinator, sweeps) can send safely. The
// registry holds connections behind this interface and never touches
// the socket directly.
type transport struct {
	conn *websocket.Conn
	mu   sync.Mutex
}

func (t *transport) WriteJSON(v any) error {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.conn.SetWriteDeadline(time.Now().Add(writeTimeout))
	return t.conn.WriteJSON(v)
}

func (t *transport) Close() error {
	return t.conn.Close()
}

// Server handles the two WebSocket endpoints.
type Server struct {
	coord          *session.Coordinator
	verifier       auth.TokenVerifier // nil disables agent auth
	upgrader       websocket.Upgrader
	receiveTimeout time.Duration
	pongTimeout    time.Duration
	logger         *slog.Logger
}

// NewServer creates the WebSocket server. receiveTimeout is how long a
// connection may stay silent before it gets probed with a ping;
// pongTimeout is how long the probe waits for the pong.
func NewServer(coord *session.Coordinator, verifier auth.TokenVerifier, receiveTimeout, pongTimeout time.Duration) *Server {
	return &Server{
		coord:          coord,
		verifier:       verifier,
		upgrader:       makeUpgrader(nil),
		receiveTimeout: receiveTimeout,
		pongTimeout:    pongTimeout,
		logger:         slog.Default().With("component", "ws"),
	}
}

// Register mounts the endpoints on the mux.
func (s *Server) Register(mux *http.ServeMux) {
	mux.HandleFunc("/ws/vkyc/{session_id}", s.handleCustomer)
	mux.HandleFunc("/ws/agent/{employee_id}", s.handleAgent)
}

func (s *Server) handleCustomer(w http.ResponseWriter, r *http.Request) {
	sessionID, err := strconv.ParseInt(r.PathValue("session_id"), 10, 64)
	if err != nil {
		http.Error(w, "invalid session id", http.StatusBadRequest)
		return
	}

	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.logger.Warn("customer upgrade failed", "session_id", sessionID, "error", err)
		return
	}
	conn.SetReadLimit(maxMessageSize)

	t := &transport{conn: conn}
	ctx := r.Context()

	if err := s.coord.CustomerConnected(ctx, sessionID, t); err != nil {
		s.logger.Warn("rejecting customer connection", "session_id", sessionID, "error", err)
		closeWithPolicyViolation(conn, "Session not found")
		return
	}

	defer s.coord.CustomerDisconnected(context.Background(), sessionID)

	for {
		msg, ok := s.receive(conn, t)
		if !ok {
			s.logger.Info("customer connection ended", "session_id", sessionID)
			return
		}
		if msg == nil {
			continue
		}
		if s.coord.HandleCustomerMessage(ctx, sessionID, msg) {
			return
		}
	}
}

func (s *Server) handleAgent(w http.ResponseWriter, r *http.Request) {
	employeeID := r.PathValue("employee_id")
	if employeeID == "" {
		http.Error(w, "missing employee id", http.StatusBadRequest)
		return
	}

	if s.verifier != nil {
		sub, err := s.verifier.Verify(r.URL.Query().Get("token"))
		if err != nil || sub != employeeID {
			s.logger.Warn("agent auth failed", "agent_id", employeeID, "error", err)
			http.Error(w, "unauthorized", http.StatusUnauthorized)
			return
		}
	}

	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.logger.Warn("agent upgrade failed", "agent_id", employeeID, "error", err)
		return
	}
	conn.SetReadLimit(maxMessageSize)

	t := &transport{conn: conn}
	ctx := r.Context()

	if err := s.coord.AgentConnected(ctx, employeeID, t); err != nil {
		s.logger.Warn("rejecting agent connection", "agent_id", employeeID, "error", err)
		closeWithPolicyViolation(conn, "Agent not found")
		return
	}

	defer s.coord.AgentDisconnected(employeeID)

	for {
		msg, ok := s.receive(conn, t)
		if !ok {
			s.logger.Info("agent connection ended", "agent_id", employeeID)
			return
		}
		if msg == nil {
			continue
		}
		if s.coord.HandleAgentMessage(ctx, employeeID, msg) {
			return
		}
	}
}

// receive reads the next message. A silent connection gets one ping
// probe; if no pong comes back within the pong timeout the connection
// is considered dead. Returns (nil, true) when the caller should just
// keep looping (a pong arrived, either standalone or as the probe
// answer).
func (s *Server) receive(conn *websocket.Conn, t *transport) (*session.ClientMessage, bool) {
	conn.SetReadDeadline(time.Now().Add(s.receiveTimeout))

	var msg session.ClientMessage
	err := conn.ReadJSON(&msg)
	if err == nil {
		if msg.Type == session.TypePong {
			return nil, true
		}
		return &msg, true
	}

	if !isTimeout(err) {
		return nil, false
	}

	// Probe before giving up on the silent peer.
	if err := t.WriteJSON(session.PingMsg{Type: session.TypePing}); err != nil {
		return nil, false
	}

	conn.SetReadDeadline(time.Now().Add(s.pongTimeout))
	var reply session.ClientMessage
	if err := conn.ReadJSON(&reply); err != nil {
		return nil, false
	}
	if reply.Type != session.TypePong {
		return nil, false
	}
	return nil, true
}

func isTimeout(err error) bool {
	var netErr net.Error
	return errors.As(err, &netErr) && netErr.Timeout()
}

func closeWithPolicyViolation(conn *websocket.Conn, reason string) {
	deadline := time.Now().Add(writeTimeout)
	conn.WriteControl(websocket.CloseMessage,
		websocket.FormatCloseMessage(websocket.ClosePolicyViolation, reason), deadline)
	conn.Close()
}
