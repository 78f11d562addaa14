// ABOUTME: Wire message types exchanged with customers and agents over WebSocket
// ABOUTME: All messages carry a "type" discriminator; unknown inbound types are ignored

package session

import "encoding/json"

// Inbound message types from customers
const (
	TypeHeartbeat          = "heartbeat"
	TypeUserLeft           = "user_left"
	TypeReadyForAgent      = "ready_for_agent"
	TypePermissionsGranted = "permissions_granted"
	TypeDocumentCaptured   = "document_captured"
	TypePANDetected        = "pan_detected"
	TypeAadhaarDetected    = "aadhaar_detected"
	TypeVerifyDigiLocker   = "verify_digilocker"
	TypeBiometricData      = "biometric_data"
	TypeLocationData       = "location_data"
	TypeIPAddress          = "ip_address"
	TypeKYCComplete        = "kyc_complete"
	TypeClientError        = "error"
	TypePong               = "pong"
)

// Inbound message types from agents
const (
	TypeAcceptSession     = "accept_session"
	TypeDeclineSession    = "decline_session"
	TypeLeaveSession      = "leave_session"
	TypeRequestDocCapture = "request_document_capture"
	TypeCancelDocCapture  = "cancel_document_capture"
)

// WebRTC signaling types, forwarded verbatim in both directions
const (
	TypeWebRTCOffer        = "webrtc_offer"
	TypeWebRTCAnswer       = "webrtc_answer"
	TypeWebRTCICECandidate = "webrtc_ice_candidate"
)

// Outbound message types
const (
	TypeHeartbeatInterval     = "heartbeat_interval"
	TypePing                  = "ping"
	TypeWaitingForAgent       = "waiting_for_agent"
	TypeNewWaitingSession     = "new_waiting_session"
	TypeWaitingSessions       = "waiting_sessions"
	TypeAgentAssigned         = "agent_assigned"
	TypeSessionAccepted       = "session_accepted"
	TypeSessionTaken          = "session_taken"
	TypeSessionRemoved        = "session_removed"
	TypeAgentDeclined         = "agent_declined"
	TypeSessionAvailable      = "session_available"
	TypeAgentLeft             = "agent_left"
	TypeSessionLeft           = "session_left"
	TypeDocVerificationResult = "document_verification_result"
	TypeDocCaptureRequested   = "document_capture_requested"
	TypePANExtracted          = "pan_extracted"
	TypeAadhaarExtracted      = "aadhaar_extracted"
	TypeDigiLockerResult      = "digilocker_result"
	TypeKYCCompleted          = "kyc_completed"
	TypeSessionCompleted      = "session_completed"
	TypeSessionExpired        = "session_expired"
	TypeError                 = "error"
)

// ClientMessage is the envelope for everything customers and agents
// send. Fields are populated per message type; the rest stay zero.
type ClientMessage struct {
	Type      string          `json:"type"`
	SessionID int64           `json:"session_id,omitempty"`
	DocType   string          `json:"doc_type,omitempty"`
	Image     string          `json:"image,omitempty"`
	DocInfo   map[string]any  `json:"doc_info,omitempty"`
	Data      json.RawMessage `json:"data,omitempty"`
	Location  json.RawMessage `json:"location,omitempty"`
	IP        string          `json:"ip,omitempty"`
	Payload   json.RawMessage `json:"payload,omitempty"`
	Message   string          `json:"message,omitempty"`
}

// IsWebRTC reports whether the message is a signaling frame to relay.
func (m *ClientMessage) IsWebRTC() bool {
	switch m.Type {
	case TypeWebRTCOffer, TypeWebRTCAnswer, TypeWebRTCICECandidate:
		return true
	}
	return false
}

// HeartbeatIntervalMsg tells a freshly connected client how often to
// send heartbeats, in seconds.
type HeartbeatIntervalMsg struct {
	Type     string `json:"type"`
	Interval int    `json:"interval"`
}

// TextMsg is a plain notification with a human-readable message.
type TextMsg struct {
	Type    string `json:"type"`
	Message string `json:"message"`
}

// WaitingSessionInfo describes one session waiting for an agent.
type WaitingSessionInfo struct {
	SessionID      int64  `json:"session_id"`
	CustomerID     int64  `json:"customer_id"`
	UniqueID       string `json:"unique_id"`
	CustomerName   string `json:"customer_name"`
	CustomerMobile string `json:"customer_mobile"`
	StartedAt      string `json:"started_at,omitempty"`
}

// NewWaitingSessionMsg announces a newly waiting session to all agents.
type NewWaitingSessionMsg struct {
	Type string `json:"type"`
	WaitingSessionInfo
}

// WaitingSessionsMsg is the initial queue snapshot sent to a
// connecting agent.
type WaitingSessionsMsg struct {
	Type     string               `json:"type"`
	Sessions []WaitingSessionInfo `json:"sessions"`
}

// AgentAssignedMsg tells the customer an agent has joined.
type AgentAssignedMsg struct {
	Type      string `json:"type"`
	Message   string `json:"message"`
	AgentName string `json:"agent_name"`
}

// SessionAcceptedMsg confirms the accept to the winning agent.
type SessionAcceptedMsg struct {
	Type           string `json:"type"`
	SessionID      int64  `json:"session_id"`
	CustomerID     int64  `json:"customer_id"`
	UniqueID       string `json:"unique_id"`
	CustomerName   string `json:"customer_name"`
	CustomerMobile string `json:"customer_mobile"`
}

// SessionTakenMsg tells every agent the session is off the queue.
type SessionTakenMsg struct {
	Type            string `json:"type"`
	SessionID       int64  `json:"session_id"`
	AgentEmployeeID string `json:"agent_employee_id"`
	AgentName       string `json:"agent_name"`
}

// SessionRefMsg carries just a session reference, used for
// session_removed, session_available, session_expired broadcasts.
type SessionRefMsg struct {
	Type      string `json:"type"`
	SessionID int64  `json:"session_id"`
}

// SessionTextMsg carries a session reference plus a message.
type SessionTextMsg struct {
	Type      string `json:"type"`
	SessionID int64  `json:"session_id"`
	Message   string `json:"message"`
}

// DocVerificationResultMsg reports an OCR extraction outcome to the
// customer and the assigned agent.
type DocVerificationResultMsg struct {
	Type      string `json:"type"`
	SessionID int64  `json:"session_id,omitempty"`
	DocType   string `json:"doc_type"`
	Success   bool   `json:"success"`
	Data      any    `json:"data"`
	Message   string `json:"message,omitempty"`
}

// DocCaptureRequestMsg asks the customer to show a document.
type DocCaptureRequestMsg struct {
	Type    string `json:"type"`
	DocType string `json:"doc_type"`
	Message string `json:"message"`
}

// DocCaptureRequestedMsg acknowledges the capture request to the agent.
type DocCaptureRequestedMsg struct {
	Type      string `json:"type"`
	SessionID int64  `json:"session_id"`
	DocType   string `json:"doc_type"`
}

// ExtractedMsg carries legacy single-document OCR results.
type ExtractedMsg struct {
	Type string `json:"type"`
	Data any    `json:"data"`
}

// DigiLockerResultMsg reports a DigiLocker verification outcome.
type DigiLockerResultMsg struct {
	Type    string `json:"type"`
	Success bool   `json:"success"`
	Message string `json:"message"`
}

// SignalMsg relays a WebRTC signaling payload to the peer.
type SignalMsg struct {
	Type      string          `json:"type"`
	SessionID int64           `json:"session_id"`
	Payload   json.RawMessage `json:"payload"`
}

// PingMsg probes a silent connection.
type PingMsg struct {
	Type string `json:"type"`
}
