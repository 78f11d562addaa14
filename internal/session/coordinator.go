// ABOUTME: Session coordinator: state machine, liveness eviction and message routing
// ABOUTME: Bridges live connections in the registry with durable session state in the store

package session

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/veriflow/vkyc-gateway/internal/recording"
	"github.com/veriflow/vkyc-gateway/internal/registry"
	"github.com/veriflow/vkyc-gateway/internal/store"
	"github.com/veriflow/vkyc-gateway/internal/verify"
)

// Coordinator errors
var (
	ErrSessionNotFound = errors.New("session not found")
	ErrAgentNotFound   = errors.New("agent not found")
)

// OCRService extracts document fields from captured images.
type OCRService interface {
	ExtractPAN(ctx context.Context, imageBase64 string) verify.OCRResult
	ExtractAadhaar(ctx context.Context, imageBase64 string) verify.OCRResult
}

// DocVerifier cross-checks extracted fields against official records.
type DocVerifier interface {
	Verify(ctx context.Context, docType string, docInfo map[string]any) verify.DigiLockerResult
}

// Options carries the coordinator's timing and recording settings.
type Options struct {
	HeartbeatInterval time.Duration // advertised to clients on connect
	SessionExpiry     time.Duration // waiting/in-progress sessions expire after this
	RecordingDir      string
}

// Coordinator owns the session lifecycle. The WebSocket layer feeds it
// connection events and decoded messages; it updates the store, moves
// sessions through their states and routes messages between the
// customer and the agent handling them.
type Coordinator struct {
	store       store.Store
	registry    *registry.Registry
	ocr         OCRService
	docVerify   DocVerifier
	opts        Options
	newRecorder func(sessionID int64) (registry.Recorder, error)
	done        chan struct{}
	logger      *slog.Logger
}

// NewCoordinator creates a coordinator using file-based recorders.
func NewCoordinator(st store.Store, reg *registry.Registry, ocr OCRService, dv DocVerifier, opts Options) *Coordinator {
	if opts.HeartbeatInterval <= 0 {
		opts.HeartbeatInterval = 30 * time.Second
	}
	if opts.SessionExpiry <= 0 {
		opts.SessionExpiry = 5 * time.Minute
	}
	c := &Coordinator{
		store:     st,
		registry:  reg,
		ocr:       ocr,
		docVerify: dv,
		opts:      opts,
		done:      make(chan struct{}),
		logger:    slog.Default().With("component", "coordinator"),
	}
	c.newRecorder = func(sessionID int64) (registry.Recorder, error) {
		return recording.NewFileRecorder(opts.RecordingDir, sessionID)
	}
	return c
}

// Close cancels pending expiry timers.
func (c *Coordinator) Close() {
	select {
	case <-c.done:
	default:
		close(c.done)
	}
}

// StartSession begins (or resumes) verification for the customer with
// the given link identifier. If the customer already has an in-flight
// session, that session is returned instead of creating a second one.
func (c *Coordinator) StartSession(ctx context.Context, uniqueID string) (*store.Session, bool, error) {
	customer, err := c.store.GetCustomerByUniqueID(ctx, uniqueID)
	if err != nil {
		return nil, false, fmt.Errorf("looking up customer: %w", err)
	}

	existing, err := c.store.ActiveSessionForCustomer(ctx, customer.ID)
	if err == nil {
		c.logger.Info("reusing existing session", "session_id", existing.ID, "status", existing.Status)
		return existing, true, nil
	}
	if !errors.Is(err, store.ErrNotFound) {
		return nil, false, err
	}

	now := time.Now().UTC()
	sess := &store.Session{
		CustomerID: customer.ID,
		UniqueID:   uniqueID,
		Status:     store.StatusStarted,
		StartedAt:  &now,
	}
	if err := c.store.CreateSession(ctx, sess); err != nil {
		return nil, false, fmt.Errorf("creating session: %w", err)
	}

	c.logger.Info("session started", "session_id", sess.ID, "customer_id", customer.ID)
	return sess, false, nil
}

// CustomerConnected registers a customer connection for the session,
// attaches a recorder and sends the heartbeat interval. Returns
// ErrSessionNotFound if the session does not exist; the caller then
// closes the socket with a policy violation.
func (c *Coordinator) CustomerConnected(ctx context.Context, sessionID int64, t registry.Transport) error {
	if _, err := c.store.GetSession(ctx, sessionID); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return ErrSessionNotFound
		}
		return err
	}

	c.registry.RegisterCustomer(sessionID, t)

	rec, err := c.newRecorder(sessionID)
	if err != nil {
		c.logger.Error("failed to create recorder", "session_id", sessionID, "error", err)
	} else {
		c.registry.SetRecorder(sessionID, rec)
	}

	c.registry.SendToCustomer(sessionID, HeartbeatIntervalMsg{
		Type:     TypeHeartbeatInterval,
		Interval: int(c.opts.HeartbeatInterval.Seconds()),
	})
	return nil
}

// AgentConnected validates and registers an agent connection, then
// sends the heartbeat interval and the current waiting queue.
// Returns ErrAgentNotFound for unknown employee IDs.
func (c *Coordinator) AgentConnected(ctx context.Context, employeeID string, t registry.Transport) error {
	if _, err := c.store.GetAgentByEmployeeID(ctx, employeeID); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return ErrAgentNotFound
		}
		return err
	}

	c.registry.RegisterAgent(employeeID, t)

	c.registry.SendToAgent(employeeID, HeartbeatIntervalMsg{
		Type:     TypeHeartbeatInterval,
		Interval: int(c.opts.HeartbeatInterval.Seconds()),
	})

	sessions, err := c.waitingSessionInfos(ctx)
	if err != nil {
		c.logger.Error("failed to list waiting sessions", "error", err)
		sessions = []WaitingSessionInfo{}
	}
	c.registry.SendToAgent(employeeID, WaitingSessionsMsg{
		Type:     TypeWaitingSessions,
		Sessions: sessions,
	})
	return nil
}

func (c *Coordinator) waitingSessionInfos(ctx context.Context) ([]WaitingSessionInfo, error) {
	waiting, err := c.store.ListWaitingSessions(ctx)
	if err != nil {
		return nil, err
	}

	infos := make([]WaitingSessionInfo, 0, len(waiting))
	for _, sess := range waiting {
		infos = append(infos, c.sessionInfo(ctx, sess))
	}
	return infos, nil
}

func (c *Coordinator) sessionInfo(ctx context.Context, sess *store.Session) WaitingSessionInfo {
	info := WaitingSessionInfo{
		SessionID:    sess.ID,
		CustomerID:   sess.CustomerID,
		UniqueID:     sess.UniqueID,
		CustomerName: "Unknown",
	}
	if sess.StartedAt != nil {
		info.StartedAt = sess.StartedAt.Format(time.RFC3339)
	}
	if customer, err := c.store.GetCustomer(ctx, sess.CustomerID); err == nil {
		info.CustomerName = customer.Name
		info.CustomerMobile = customer.Mobile
	}
	return info
}

// HandleCustomerMessage processes one decoded message from the
// customer side. Returns true when the receive loop should end.
func (c *Coordinator) HandleCustomerMessage(ctx context.Context, sessionID int64, msg *ClientMessage) bool {
	switch msg.Type {
	case TypeHeartbeat:
		c.registry.HeartbeatCustomer(sessionID)

	case TypeUserLeft:
		c.handleUserLeft(ctx, sessionID)
		return true

	case TypeReadyForAgent:
		c.handleReadyForAgent(ctx, sessionID)

	case TypePermissionsGranted:
		// Legacy clients send this before ready_for_agent.

	case TypeDocumentCaptured:
		c.handleDocumentCaptured(ctx, sessionID, msg)

	case TypePANDetected:
		c.handleLegacyDetection(ctx, sessionID, "pan", msg.Image)

	case TypeAadhaarDetected:
		c.handleLegacyDetection(ctx, sessionID, "aadhaar", msg.Image)

	case TypeVerifyDigiLocker:
		c.handleVerifyDigiLocker(ctx, sessionID, msg)

	case TypeBiometricData:
		c.appendLog(ctx, sessionID, store.LogBiometric, rawOrEmpty(msg.Data))

	case TypeLocationData:
		c.appendLog(ctx, sessionID, store.LogLocation, rawOrEmpty(msg.Location))

	case TypeIPAddress:
		payload, _ := json.Marshal(map[string]string{"ip": msg.IP})
		c.appendLog(ctx, sessionID, store.LogIPAddress, string(payload))

	case TypeKYCComplete:
		c.handleKYCComplete(ctx, sessionID)
		return true

	case TypeClientError:
		message := msg.Message
		if message == "" {
			message = "Unknown error"
		}
		if err := c.store.FailSession(ctx, sessionID, message); err != nil {
			c.logger.Error("failed to mark session failed", "session_id", sessionID, "error", err)
		}

	default:
		if msg.IsWebRTC() {
			c.forwardToAgent(sessionID, msg)
		} else {
			c.logger.Debug("ignoring unknown customer message", "session_id", sessionID, "type", msg.Type)
		}
	}
	return false
}

func rawOrEmpty(raw json.RawMessage) string {
	if len(raw) == 0 {
		return "{}"
	}
	return string(raw)
}

func (c *Coordinator) appendLog(ctx context.Context, sessionID int64, category, payload string) {
	err := c.store.AppendSessionLog(ctx, &store.SessionLog{
		SessionID: sessionID,
		Category:  category,
		Payload:   payload,
	})
	if err != nil {
		c.logger.Error("failed to append session log", "session_id", sessionID, "category", category, "error", err)
	}
}

func (c *Coordinator) handleUserLeft(ctx context.Context, sessionID int64) {
	c.logger.Info("user left session", "session_id", sessionID)

	if err := c.store.UpdateSessionStatus(ctx, sessionID, store.StatusDisconnected); err != nil {
		c.logger.Error("failed to update session status", "session_id", sessionID, "error", err)
	}

	if agentID, ok := c.registry.AssignedAgent(sessionID); ok {
		c.registry.SendToAgent(agentID, SessionTextMsg{
			Type:      TypeUserLeft,
			SessionID: sessionID,
			Message:   "User has left the VKYC session",
		})
	}

	c.registry.DisconnectCustomer(sessionID)
}

func (c *Coordinator) handleReadyForAgent(ctx context.Context, sessionID int64) {
	c.logger.Info("session ready for agent", "session_id", sessionID)

	if err := c.store.MarkSessionWaiting(ctx, sessionID); err != nil {
		c.logger.Error("failed to mark session waiting", "session_id", sessionID, "error", err)
		return
	}

	// Dedup gate: a repeated ready_for_agent must not re-announce.
	if c.registry.AddToWaiting(sessionID) {
		if sess, err := c.store.GetSession(ctx, sessionID); err == nil {
			c.registry.BroadcastToAgents(NewWaitingSessionMsg{
				Type:               TypeNewWaitingSession,
				WaitingSessionInfo: c.sessionInfo(ctx, sess),
			})
		}
	}

	c.registry.SendToCustomer(sessionID, TextMsg{
		Type:    TypeWaitingForAgent,
		Message: "Waiting for an available agent...",
	})

	c.scheduleExpiry(sessionID)
}

func (c *Coordinator) handleDocumentCaptured(ctx context.Context, sessionID int64, msg *ClientMessage) {
	var result verify.OCRResult
	var category string

	switch {
	case msg.DocType == "pan":
		result = c.ocr.ExtractPAN(ctx, msg.Image)
		category = store.LogPANDetection
	case strings.HasPrefix(msg.DocType, "aadhaar"):
		result = c.ocr.ExtractAadhaar(ctx, msg.Image)
		switch msg.DocType {
		case "aadhaar_front":
			category = store.LogAadhaarFront
		case "aadhaar_back":
			category = store.LogAadhaarBack
		default:
			category = store.LogAadhaarDetection
		}
	default:
		result = verify.OCRResult{Success: false, Error: "Invalid document type"}
		category = store.LogCaptureError
	}

	payload, _ := json.Marshal(result)
	c.appendLog(ctx, sessionID, category, string(payload))

	message := strings.ToUpper(msg.DocType) + " Verified"
	if !result.Success {
		message = "Verification Failed. Please try again."
	}

	c.registry.SendToCustomer(sessionID, DocVerificationResultMsg{
		Type:    TypeDocVerificationResult,
		DocType: msg.DocType,
		Success: result.Success,
		Data:    result,
		Message: message,
	})

	if agentID, ok := c.registry.AssignedAgent(sessionID); ok {
		c.registry.SendToAgent(agentID, DocVerificationResultMsg{
			Type:      TypeDocVerificationResult,
			SessionID: sessionID,
			DocType:   msg.DocType,
			Success:   result.Success,
			Data:      result,
		})
	}
}

func (c *Coordinator) handleLegacyDetection(ctx context.Context, sessionID int64, docType, image string) {
	var result verify.OCRResult
	var category, outType string

	if docType == "pan" {
		result = c.ocr.ExtractPAN(ctx, image)
		category = store.LogPANDetection
		outType = TypePANExtracted
	} else {
		result = c.ocr.ExtractAadhaar(ctx, image)
		category = store.LogAadhaarDetection
		outType = TypeAadhaarExtracted
	}

	payload, _ := json.Marshal(result)
	c.appendLog(ctx, sessionID, category, string(payload))

	c.registry.SendToCustomer(sessionID, ExtractedMsg{Type: outType, Data: result})
}

func (c *Coordinator) handleVerifyDigiLocker(ctx context.Context, sessionID int64, msg *ClientMessage) {
	result := c.docVerify.Verify(ctx, msg.DocType, msg.DocInfo)

	payload, _ := json.Marshal(result)
	c.appendLog(ctx, sessionID, store.LogDigiLocker, string(payload))

	c.registry.SendToCustomer(sessionID, DigiLockerResultMsg{
		Type:    TypeDigiLockerResult,
		Success: result.Success,
		Message: result.Message,
	})
}

func (c *Coordinator) handleKYCComplete(ctx context.Context, sessionID int64) {
	path, _ := c.registry.StopRecording(sessionID)

	if err := c.store.CompleteSession(ctx, sessionID, path); err != nil {
		c.logger.Error("failed to complete session", "session_id", sessionID, "error", err)
	}

	c.registry.SendToCustomer(sessionID, TextMsg{
		Type:    TypeKYCCompleted,
		Message: "Your KYC is complete!",
	})

	if agentID, ok := c.registry.AssignedAgent(sessionID); ok {
		c.registry.SendToAgent(agentID, SessionTextMsg{
			Type:      TypeSessionCompleted,
			SessionID: sessionID,
			Message:   "VKYC session completed successfully",
		})
	}

	c.registry.BroadcastToAgents(SessionRefMsg{
		Type:      TypeSessionCompleted,
		SessionID: sessionID,
	})
}

func (c *Coordinator) forwardToAgent(sessionID int64, msg *ClientMessage) {
	agentID, ok := c.registry.AssignedAgent(sessionID)
	if !ok {
		return
	}
	c.registry.SendToAgent(agentID, SignalMsg{
		Type:      msg.Type,
		SessionID: sessionID,
		Payload:   msg.Payload,
	})
}

// CustomerDisconnected runs the teardown for a closed customer
// connection. Only sessions that were mid-call move to disconnected;
// terminal states stay as they are. Idempotent.
func (c *Coordinator) CustomerDisconnected(ctx context.Context, sessionID int64) {
	c.registry.DisconnectCustomer(sessionID)

	sess, err := c.store.GetSession(ctx, sessionID)
	if err != nil {
		return
	}
	if sess.Status == store.StatusInProgress {
		if err := c.store.UpdateSessionStatus(ctx, sessionID, store.StatusDisconnected); err != nil {
			c.logger.Error("failed to mark session disconnected", "session_id", sessionID, "error", err)
		}
	}
}

// HandleAgentMessage processes one decoded message from an agent.
// Returns true when the receive loop should end.
func (c *Coordinator) HandleAgentMessage(ctx context.Context, employeeID string, msg *ClientMessage) bool {
	switch msg.Type {
	case TypeHeartbeat:
		c.registry.HeartbeatAgent(employeeID)

	case TypeAcceptSession:
		c.handleAcceptSession(ctx, employeeID, msg.SessionID)

	case TypeDeclineSession:
		c.handleDeclineSession(ctx, employeeID, msg.SessionID)

	case TypeLeaveSession:
		c.handleLeaveSession(ctx, employeeID, msg.SessionID)

	case TypeRequestDocCapture:
		c.handleRequestDocCapture(employeeID, msg)

	case TypeCancelDocCapture:
		if !c.agentOwnsSession(employeeID, msg.SessionID) {
			c.sendAgentError(employeeID, "You are not assigned to this session")
			return false
		}
		c.registry.SendToCustomer(msg.SessionID, TextMsg{
			Type:    TypeCancelDocCapture,
			Message: "Document capture cancelled",
		})

	default:
		if msg.IsWebRTC() {
			if !c.agentOwnsSession(employeeID, msg.SessionID) {
				c.sendAgentError(employeeID, "You are not assigned to this session")
				return false
			}
			c.registry.SendToCustomer(msg.SessionID, SignalMsg{
				Type:      msg.Type,
				SessionID: msg.SessionID,
				Payload:   msg.Payload,
			})
		} else {
			c.logger.Debug("ignoring unknown agent message", "agent_id", employeeID, "type", msg.Type)
		}
	}
	return false
}

func (c *Coordinator) sendAgentError(employeeID, message string) {
	c.registry.SendToAgent(employeeID, TextMsg{Type: TypeError, Message: message})
}

func (c *Coordinator) agentOwnsSession(employeeID string, sessionID int64) bool {
	assigned, ok := c.registry.AssignedSession(employeeID)
	return ok && assigned == sessionID
}

func (c *Coordinator) handleAcceptSession(ctx context.Context, employeeID string, sessionID int64) {
	sess, err := c.store.GetSession(ctx, sessionID)
	if err != nil {
		c.sendAgentError(employeeID, "Session not found")
		return
	}

	if sess.Status != store.StatusWaitingForAgent {
		c.sendAgentError(employeeID, "Session is not waiting for agent or already assigned")
		return
	}

	if _, busy := c.registry.AssignedSession(employeeID); busy {
		c.sendAgentError(employeeID, "You are already assigned to another session")
		return
	}

	if !c.registry.TryAssign(sessionID, employeeID) {
		c.sendAgentError(employeeID, "Could not assign agent to session")
		return
	}

	agent, err := c.store.GetAgentByEmployeeID(ctx, employeeID)
	if err != nil {
		// Agent vanished between connect and accept; undo the claim.
		c.registry.ReleaseAgent(employeeID)
		c.sendAgentError(employeeID, "Agent not found")
		return
	}

	if err := c.store.AssignAgent(ctx, sessionID, agent.ID); err != nil {
		c.logger.Error("failed to persist assignment", "session_id", sessionID, "error", err)
	}
	if err := c.store.UpdateSessionStatus(ctx, sessionID, store.StatusAgentJoined); err != nil {
		c.logger.Error("failed to update session status", "session_id", sessionID, "error", err)
	}

	c.logger.Info("agent accepted session", "session_id", sessionID, "agent_id", employeeID)

	c.registry.SendToCustomer(sessionID, AgentAssignedMsg{
		Type:      TypeAgentAssigned,
		Message:   "Agent has joined. Starting VKYC session...",
		AgentName: agent.FullName(),
	})

	info := c.sessionInfo(ctx, sess)
	c.registry.SendToAgent(employeeID, SessionAcceptedMsg{
		Type:           TypeSessionAccepted,
		SessionID:      sessionID,
		CustomerID:     sess.CustomerID,
		UniqueID:       sess.UniqueID,
		CustomerName:   info.CustomerName,
		CustomerMobile: info.CustomerMobile,
	})

	c.registry.BroadcastToAgents(SessionTakenMsg{
		Type:            TypeSessionTaken,
		SessionID:       sessionID,
		AgentEmployeeID: employeeID,
		AgentName:       agent.FullName(),
	})

	c.registry.StartRecording(sessionID)

	if err := c.store.UpdateSessionStatus(ctx, sessionID, store.StatusInProgress); err != nil {
		c.logger.Error("failed to update session status", "session_id", sessionID, "error", err)
	}

	c.scheduleExpiry(sessionID)
}

func (c *Coordinator) handleDeclineSession(ctx context.Context, employeeID string, sessionID int64) {
	if _, err := c.store.GetSession(ctx, sessionID); err != nil {
		return
	}

	c.registry.RemoveFromWaiting(sessionID)

	if err := c.store.UpdateSessionStatus(ctx, sessionID, store.StatusDeclined); err != nil {
		c.logger.Error("failed to decline session", "session_id", sessionID, "error", err)
	}

	c.logger.Info("agent declined session", "session_id", sessionID, "agent_id", employeeID)

	c.registry.BroadcastToAgents(SessionRefMsg{
		Type:      TypeSessionRemoved,
		SessionID: sessionID,
	})

	c.registry.SendToCustomer(sessionID, TextMsg{
		Type:    TypeAgentDeclined,
		Message: "Agent declined. Please retry.",
	})
}

func (c *Coordinator) handleLeaveSession(ctx context.Context, employeeID string, sessionID int64) {
	if !c.agentOwnsSession(employeeID, sessionID) {
		return
	}

	if err := c.store.MarkSessionWaiting(ctx, sessionID); err != nil {
		c.logger.Error("failed to return session to queue", "session_id", sessionID, "error", err)
		return
	}

	c.registry.ReleaseAgent(employeeID)
	c.registry.AddToWaiting(sessionID)

	c.logger.Info("agent left session", "session_id", sessionID, "agent_id", employeeID)

	c.registry.SendToCustomer(sessionID, TextMsg{
		Type:    TypeAgentLeft,
		Message: "Agent has left. Waiting for new agent...",
	})

	c.registry.SendToAgent(employeeID, SessionTextMsg{
		Type:      TypeSessionLeft,
		SessionID: sessionID,
		Message:   "You left the session",
	})

	c.registry.BroadcastToAgents(SessionRefMsg{
		Type:      TypeSessionAvailable,
		SessionID: sessionID,
	})
}

func (c *Coordinator) handleRequestDocCapture(employeeID string, msg *ClientMessage) {
	if !c.agentOwnsSession(employeeID, msg.SessionID) {
		c.sendAgentError(employeeID, "You are not assigned to this session")
		return
	}

	c.registry.SendToCustomer(msg.SessionID, DocCaptureRequestMsg{
		Type:    TypeRequestDocCapture,
		DocType: msg.DocType,
		Message: fmt.Sprintf("Please show your %s card", strings.ToUpper(msg.DocType)),
	})

	c.registry.SendToAgent(employeeID, DocCaptureRequestedMsg{
		Type:      TypeDocCaptureRequested,
		SessionID: msg.SessionID,
		DocType:   msg.DocType,
	})
}

// AgentDisconnected runs the teardown for a closed agent connection.
// The paired session's recorder stops and the assignment is released
// in memory; the session record keeps its status so the customer can
// be picked up again. Idempotent.
func (c *Coordinator) AgentDisconnected(employeeID string) {
	c.registry.DisconnectAgent(employeeID)
}

// scheduleExpiry arms a timer that fails the session if it is still
// waiting or mid-call when the expiry elapses. The status re-check
// makes a timer armed for an already-finished session a no-op.
func (c *Coordinator) scheduleExpiry(sessionID int64) {
	timer := time.NewTimer(c.opts.SessionExpiry)
	go func() {
		defer timer.Stop()
		select {
		case <-c.done:
			return
		case <-timer.C:
		}
		c.expireSession(context.Background(), sessionID)
	}()
}

func (c *Coordinator) expireSession(ctx context.Context, sessionID int64) {
	sess, err := c.store.GetSession(ctx, sessionID)
	if err != nil {
		return
	}
	if sess.Status != store.StatusWaitingForAgent && sess.Status != store.StatusInProgress {
		return
	}

	if err := c.store.UpdateSessionStatus(ctx, sessionID, store.StatusExpired); err != nil {
		c.logger.Error("failed to expire session", "session_id", sessionID, "error", err)
		return
	}

	c.logger.Info("session expired", "session_id", sessionID, "after", c.opts.SessionExpiry.String())

	c.registry.SendToCustomer(sessionID, TextMsg{
		Type:    TypeSessionExpired,
		Message: "Session expired. Please retry.",
	})

	c.registry.BroadcastToAgents(SessionRefMsg{
		Type:      TypeSessionExpired,
		SessionID: sessionID,
	})

	c.registry.DisconnectCustomer(sessionID)
}

// EvictStale disconnects every connection whose last heartbeat is
// older than the threshold. Called periodically by the gateway.
func (c *Coordinator) EvictStale(ctx context.Context, threshold time.Duration) {
	sessions, agents := c.registry.StaleConnections(threshold)

	for _, sessionID := range sessions {
		c.logger.Info("evicting stale customer connection", "session_id", sessionID)
		c.CustomerDisconnected(ctx, sessionID)
	}
	for _, agentID := range agents {
		c.logger.Info("evicting stale agent connection", "agent_id", agentID)
		c.AgentDisconnected(agentID)
	}
}

// RecorderChunk appends an uploaded media chunk to the session's
// recorder, if one is active.
func (c *Coordinator) RecorderChunk(sessionID int64, data []byte) error {
	rec, ok := c.registry.Recorder(sessionID)
	if !ok {
		return fmt.Errorf("session %d has no active recording", sessionID)
	}
	fr, ok := rec.(*recording.FileRecorder)
	if !ok {
		return nil
	}
	return fr.AddChunk(data)
}
