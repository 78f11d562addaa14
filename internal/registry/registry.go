// ABOUTME: In-memory registry of live WebSocket connections, agent assignments and the waiting queue
// ABOUTME: Single mutex guards all maps; JSON writes happen outside the lock on the transport

package registry

import (
	"log/slog"
	"sync"
	"time"
)

// Transport is a live connection the registry can write to. WriteJSON
// must be safe for concurrent use; implementations serialize writes
// with their own mutex so the registry lock is never held during I/O.
type Transport interface {
	WriteJSON(v any) error
	Close() error
}

// Recorder captures the media stream of one session. Stop is
// idempotent and returns the artifact path.
type Recorder interface {
	Start()
	Stop() string
}

type conn struct {
	transport Transport
	lastSeen  time.Time
}

// CustomerTeardown describes what was released when a customer
// connection was removed.
type CustomerTeardown struct {
	WasConnected  bool
	AgentID       string // agent that was assigned, empty if none
	WasWaiting    bool
	RecordingPath string
	HadRecorder   bool
}

// AgentTeardown describes what was released when an agent connection
// was removed.
type AgentTeardown struct {
	WasConnected  bool
	SessionID     int64 // session the agent was handling, 0 if none
	HadSession    bool
	RecordingPath string
	HadRecorder   bool
}

// Registry tracks live customer and agent connections, which agent is
// handling which session, the set of sessions waiting for an agent,
// and active recorders. Customer connections are keyed by session ID,
// agents by employee ID.
//
// All state transitions happen under one mutex. Sends look the
// transport up under the lock but perform the write outside it, so a
// slow peer never blocks assignment, heartbeats or the liveness sweep.
type Registry struct {
	mu        sync.Mutex
	customers map[int64]*conn
	agents    map[string]*conn

	// assignment table, kept bidirectional so both directions are O(1)
	agentSessions map[string]int64
	sessionAgents map[int64]string

	waiting   map[int64]struct{}
	recorders map[int64]Recorder

	logger *slog.Logger
}

// New creates an empty registry.
func New() *Registry {
	return &Registry{
		customers:     make(map[int64]*conn),
		agents:        make(map[string]*conn),
		agentSessions: make(map[string]int64),
		sessionAgents: make(map[int64]string),
		waiting:       make(map[int64]struct{}),
		recorders:     make(map[int64]Recorder),
		logger:        slog.Default().With("component", "registry"),
	}
}

// RegisterCustomer records a live customer connection for a session.
// An existing connection for the same session is closed and replaced.
func (r *Registry) RegisterCustomer(sessionID int64, t Transport) {
	r.mu.Lock()
	old := r.customers[sessionID]
	r.customers[sessionID] = &conn{transport: t, lastSeen: time.Now()}
	r.mu.Unlock()

	if old != nil {
		old.transport.Close()
		r.logger.Warn("replaced existing customer connection", "session_id", sessionID)
	}
	r.logger.Info("customer connected", "session_id", sessionID)
}

// RegisterAgent records a live agent connection.
// An existing connection for the same agent is closed and replaced.
func (r *Registry) RegisterAgent(agentID string, t Transport) {
	r.mu.Lock()
	old := r.agents[agentID]
	r.agents[agentID] = &conn{transport: t, lastSeen: time.Now()}
	r.mu.Unlock()

	if old != nil {
		old.transport.Close()
		r.logger.Warn("replaced existing agent connection", "agent_id", agentID)
	}
	r.logger.Info("agent connected", "agent_id", agentID)
}

// CustomerConnected reports whether the session has a live connection.
func (r *Registry) CustomerConnected(sessionID int64) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	_, ok := r.customers[sessionID]
	return ok
}

// AgentConnected reports whether the agent has a live connection.
func (r *Registry) AgentConnected(agentID string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	_, ok := r.agents[agentID]
	return ok
}

// HeartbeatCustomer refreshes the liveness timestamp for a session's
// connection. Unknown sessions are ignored.
func (r *Registry) HeartbeatCustomer(sessionID int64) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if c, ok := r.customers[sessionID]; ok {
		c.lastSeen = time.Now()
	}
}

// HeartbeatAgent refreshes the liveness timestamp for an agent's
// connection. Unknown agents are ignored.
func (r *Registry) HeartbeatAgent(agentID string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if c, ok := r.agents[agentID]; ok {
		c.lastSeen = time.Now()
	}
}

// SendToCustomer delivers a message to the session's connection.
// Returns false if the session has no connection or the write failed.
// A failed write tears the connection down completely: the transport
// is closed and all registry state for the session is released.
func (r *Registry) SendToCustomer(sessionID int64, v any) bool {
	r.mu.Lock()
	c, ok := r.customers[sessionID]
	r.mu.Unlock()
	if !ok {
		return false
	}

	if err := c.transport.WriteJSON(v); err != nil {
		r.logger.Warn("customer send failed, disconnecting", "session_id", sessionID, "error", err)
		r.DisconnectCustomer(sessionID)
		return false
	}
	return true
}

// SendToAgent delivers a message to the agent's connection.
// Returns false if the agent has no connection or the write failed.
// A failed write tears the connection down completely.
func (r *Registry) SendToAgent(agentID string, v any) bool {
	r.mu.Lock()
	c, ok := r.agents[agentID]
	r.mu.Unlock()
	if !ok {
		return false
	}

	if err := c.transport.WriteJSON(v); err != nil {
		r.logger.Warn("agent send failed, disconnecting", "agent_id", agentID, "error", err)
		r.DisconnectAgent(agentID)
		return false
	}
	return true
}

// BroadcastToAgents delivers a message to every connected agent. A
// failure on one connection disconnects that agent but does not stop
// delivery to the rest. Returns the number of successful sends.
func (r *Registry) BroadcastToAgents(v any) int {
	r.mu.Lock()
	targets := make(map[string]*conn, len(r.agents))
	for id, c := range r.agents {
		targets[id] = c
	}
	r.mu.Unlock()

	sent := 0
	for id, c := range targets {
		if err := c.transport.WriteJSON(v); err != nil {
			r.logger.Warn("broadcast send failed, disconnecting agent", "agent_id", id, "error", err)
			r.DisconnectAgent(id)
			continue
		}
		sent++
	}
	return sent
}

// DisconnectCustomer removes the session's connection and releases
// everything attached to it: waiting-queue membership, agent
// assignment, and the recorder. Safe to call when the session is not
// connected; the teardown then reports nothing released.
func (r *Registry) DisconnectCustomer(sessionID int64) CustomerTeardown {
	r.mu.Lock()
	var td CustomerTeardown
	var t Transport
	var rec Recorder

	if c, ok := r.customers[sessionID]; ok {
		td.WasConnected = true
		t = c.transport
		delete(r.customers, sessionID)
	}
	if _, ok := r.waiting[sessionID]; ok {
		td.WasWaiting = true
		delete(r.waiting, sessionID)
	}
	if agentID, ok := r.sessionAgents[sessionID]; ok {
		td.AgentID = agentID
		delete(r.sessionAgents, sessionID)
		delete(r.agentSessions, agentID)
	}
	if rc, ok := r.recorders[sessionID]; ok {
		td.HadRecorder = true
		rec = rc
		delete(r.recorders, sessionID)
	}
	r.mu.Unlock()

	if t != nil {
		t.Close()
	}
	if rec != nil {
		td.RecordingPath = rec.Stop()
	}
	if td.WasConnected {
		r.logger.Info("customer disconnected", "session_id", sessionID, "was_waiting", td.WasWaiting, "agent_id", td.AgentID)
	}
	return td
}

// DisconnectAgent removes the agent's connection and releases its
// assignment and the paired session's recorder. The session's waiting
// status is not touched here; the coordinator decides what happens to
// the session. Safe to call when the agent is not connected.
func (r *Registry) DisconnectAgent(agentID string) AgentTeardown {
	r.mu.Lock()
	var td AgentTeardown
	var t Transport
	var rec Recorder

	if c, ok := r.agents[agentID]; ok {
		td.WasConnected = true
		t = c.transport
		delete(r.agents, agentID)
	}
	if sessionID, ok := r.agentSessions[agentID]; ok {
		td.SessionID = sessionID
		td.HadSession = true
		delete(r.agentSessions, agentID)
		delete(r.sessionAgents, sessionID)

		if rc, ok := r.recorders[sessionID]; ok {
			td.HadRecorder = true
			rec = rc
			delete(r.recorders, sessionID)
		}
	}
	r.mu.Unlock()

	if t != nil {
		t.Close()
	}
	if rec != nil {
		td.RecordingPath = rec.Stop()
	}
	if td.WasConnected {
		r.logger.Info("agent disconnected", "agent_id", agentID, "session_id", td.SessionID)
	}
	return td
}

// TryAssign atomically claims the session for the agent. It fails if
// the agent already has a session or the session already has an agent,
// so two agents racing for the same session cannot both win.
func (r *Registry) TryAssign(sessionID int64, agentID string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, busy := r.agentSessions[agentID]; busy {
		return false
	}
	if _, taken := r.sessionAgents[sessionID]; taken {
		return false
	}

	r.agentSessions[agentID] = sessionID
	r.sessionAgents[sessionID] = agentID
	delete(r.waiting, sessionID)
	return true
}

// ReleaseAgent drops the agent's assignment, if any. Returns the
// session that was assigned and whether there was one.
func (r *Registry) ReleaseAgent(agentID string) (int64, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()

	sessionID, ok := r.agentSessions[agentID]
	if !ok {
		return 0, false
	}
	delete(r.agentSessions, agentID)
	delete(r.sessionAgents, sessionID)
	return sessionID, true
}

// ReleaseSession drops the session's assignment, if any. Returns the
// agent that was assigned and whether there was one.
func (r *Registry) ReleaseSession(sessionID int64) (string, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()

	agentID, ok := r.sessionAgents[sessionID]
	if !ok {
		return "", false
	}
	delete(r.sessionAgents, sessionID)
	delete(r.agentSessions, agentID)
	return agentID, true
}

// AssignedAgent returns the agent handling the session, if any.
func (r *Registry) AssignedAgent(sessionID int64) (string, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	agentID, ok := r.sessionAgents[sessionID]
	return agentID, ok
}

// AssignedSession returns the session the agent is handling, if any.
func (r *Registry) AssignedSession(agentID string) (int64, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	sessionID, ok := r.agentSessions[agentID]
	return sessionID, ok
}

// AddToWaiting puts the session in the waiting queue. Returns false
// if it was already there, so callers can skip re-announcing it.
func (r *Registry) AddToWaiting(sessionID int64) bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.waiting[sessionID]; ok {
		return false
	}
	r.waiting[sessionID] = struct{}{}
	return true
}

// RemoveFromWaiting takes the session out of the waiting queue.
// Removing a session that is not waiting is a no-op.
func (r *Registry) RemoveFromWaiting(sessionID int64) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.waiting, sessionID)
}

// IsWaiting reports whether the session is in the waiting queue.
func (r *Registry) IsWaiting(sessionID int64) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	_, ok := r.waiting[sessionID]
	return ok
}

// WaitingSessions returns the sessions currently waiting for an agent.
func (r *Registry) WaitingSessions() []int64 {
	r.mu.Lock()
	defer r.mu.Unlock()

	ids := make([]int64, 0, len(r.waiting))
	for id := range r.waiting {
		ids = append(ids, id)
	}
	return ids
}

// AvailableAgents returns connected agents with no session assigned.
func (r *Registry) AvailableAgents() []string {
	r.mu.Lock()
	defer r.mu.Unlock()

	ids := make([]string, 0, len(r.agents))
	for id := range r.agents {
		if _, busy := r.agentSessions[id]; !busy {
			ids = append(ids, id)
		}
	}
	return ids
}

// SetRecorder attaches a recorder to the session without starting it.
// Recording begins when an agent accepts, via StartRecording.
func (r *Registry) SetRecorder(sessionID int64, rec Recorder) {
	r.mu.Lock()
	old := r.recorders[sessionID]
	r.recorders[sessionID] = rec
	r.mu.Unlock()

	if old != nil {
		old.Stop()
	}
}

// StartRecording starts the session's recorder, if one is attached.
func (r *Registry) StartRecording(sessionID int64) bool {
	r.mu.Lock()
	rec, ok := r.recorders[sessionID]
	r.mu.Unlock()

	if !ok {
		return false
	}
	rec.Start()
	r.logger.Info("recording started", "session_id", sessionID)
	return true
}

// Recorder returns the session's recorder without detaching it.
func (r *Registry) Recorder(sessionID int64) (Recorder, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	rec, ok := r.recorders[sessionID]
	return rec, ok
}

// StopRecording detaches and stops the session's recorder. Returns
// the artifact path and whether a recorder was attached.
func (r *Registry) StopRecording(sessionID int64) (string, bool) {
	r.mu.Lock()
	rec, ok := r.recorders[sessionID]
	if ok {
		delete(r.recorders, sessionID)
	}
	r.mu.Unlock()

	if !ok {
		return "", false
	}
	path := rec.Stop()
	r.logger.Info("recording stopped", "session_id", sessionID, "path", path)
	return path, true
}

// StaleConnections returns customer sessions and agents whose last
// heartbeat is older than the threshold. The snapshot is taken under
// the lock; disconnecting the returned entries is the caller's job.
func (r *Registry) StaleConnections(threshold time.Duration) (sessions []int64, agents []string) {
	cutoff := time.Now().Add(-threshold)

	r.mu.Lock()
	defer r.mu.Unlock()

	for id, c := range r.customers {
		if c.lastSeen.Before(cutoff) {
			sessions = append(sessions, id)
		}
	}
	for id, c := range r.agents {
		if c.lastSeen.Before(cutoff) {
			agents = append(agents, id)
		}
	}
	return sessions, agents
}

// Stats reports connection counts for health reporting.
func (r *Registry) Stats() (customers, agents, waiting, assigned int) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.customers), len(r.agents), len(r.waiting), len(r.sessionAgents)
}
