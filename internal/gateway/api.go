// ABOUTME: HTTP API handlers for customer onboarding, session control and agent management.
// ABOUTME: JSON request/response structs plus route registration on the shared mux.

package gateway

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/veriflow/vkyc-gateway/internal/store"
)

// CreateCustomerRequest is the JSON request body for POST /api/customers/create.
type CreateCustomerRequest struct {
	Name   string `json:"name"`
	Mobile string `json:"mobile"`
	Email  string `json:"email"`
}

// CreateCustomerResponse is the JSON response for POST /api/customers/create.
type CreateCustomerResponse struct {
	Success    bool   `json:"success"`
	CustomerID int64  `json:"customer_id"`
	UniqueID   string `json:"unique_id"`
	KYCLink    string `json:"kyc_link"`
}

// CustomerResponse is the JSON shape of a customer record.
type CustomerResponse struct {
	ID        int64  `json:"id"`
	UniqueID  string `json:"unique_id"`
	Name      string `json:"name"`
	Mobile    string `json:"mobile"`
	Email     string `json:"email"`
	KYCLink   string `json:"kyc_link"`
	CreatedAt string `json:"created_at"`
}

// SendLinkResponse is the JSON response for POST /api/customers/{customer_id}/send-link.
type SendLinkResponse struct {
	Success   bool `json:"success"`
	SMSSent   bool `json:"sms_sent"`
	EmailSent bool `json:"email_sent"`
}

// KYCOptionsResponse is the JSON response for GET /api/vkyc/{unique_id}.
type KYCOptionsResponse struct {
	CustomerID int64    `json:"customer_id"`
	UniqueID   string   `json:"unique_id"`
	Name       string   `json:"name"`
	Options    []string `json:"options"`
}

// ScheduleRequest is the JSON request body for POST /api/vkyc/schedule.
type ScheduleRequest struct {
	UniqueID      string `json:"unique_id"`
	ScheduledTime string `json:"scheduled_time"`
}

// ScheduleResponse is the JSON response for POST /api/vkyc/schedule.
type ScheduleResponse struct {
	Success       bool   `json:"success"`
	SessionID     int64  `json:"session_id"`
	ScheduledLink string `json:"scheduled_link"`
	ScheduledTime string `json:"scheduled_time"`
}

// StartRequest is the JSON request body for POST /api/vkyc/start.
type StartRequest struct {
	UniqueID string `json:"unique_id"`
}

// StartResponse is the JSON response for POST /api/vkyc/start.
type StartResponse struct {
	Success      bool   `json:"success"`
	SessionID    int64  `json:"session_id"`
	Resumed      bool   `json:"resumed"`
	WebsocketURL string `json:"websocket_url"`
}

// SessionResponse is the JSON shape of a session record.
type SessionResponse struct {
	ID            int64  `json:"id"`
	CustomerID    int64  `json:"customer_id"`
	AgentID       *int64 `json:"agent_id"`
	UniqueID      string `json:"unique_id"`
	Status        string `json:"status"`
	ScheduledTime string `json:"scheduled_time,omitempty"`
	StartedAt     string `json:"started_at,omitempty"`
	CompletedAt   string `json:"completed_at,omitempty"`
	RecordingPath string `json:"recording_path,omitempty"`
	ErrorMessage  string `json:"error_message,omitempty"`
}

// SessionLogEntry is one audit log entry in a session detail response.
type SessionLogEntry struct {
	Type string          `json:"type"`
	Data json.RawMessage `json:"data"`
}

// SessionDetailResponse is the JSON response for GET /api/vkyc/sessions/{session_id}.
type SessionDetailResponse struct {
	Session SessionResponse   `json:"session"`
	Logs    []SessionLogEntry `json:"logs"`
}

// CreateAgentRequest is the JSON request body for POST /api/agents/create.
type CreateAgentRequest struct {
	EmployeeID string `json:"employee_id"`
	FirstName  string `json:"first_name"`
	LastName   string `json:"last_name"`
	Email      string `json:"email"`
	Mobile     string `json:"mobile"`
	Role       string `json:"role"`
}

// AgentResponse is the JSON shape of an agent record.
type AgentResponse struct {
	ID         int64  `json:"id"`
	EmployeeID string `json:"employee_id"`
	FirstName  string `json:"first_name"`
	LastName   string `json:"last_name"`
	Email      string `json:"email"`
	Mobile     string `json:"mobile"`
	Role       string `json:"role"`
	Active     bool   `json:"active"`
	Restricted bool   `json:"restricted"`
	CreatedAt  string `json:"created_at"`
}

// CreateAgentResponse is the JSON response for POST /api/agents/create.
// Token is present only when token auth is configured.
type CreateAgentResponse struct {
	AgentResponse
	Token string `json:"token,omitempty"`
}

// AvailableAgentResponse is one entry in GET /api/agents/available.
type AvailableAgentResponse struct {
	ID         int64  `json:"id"`
	EmployeeID string `json:"employee_id"`
	Name       string `json:"name"`
	Online     bool   `json:"online"`
}

// WaitingSessionResponse is one entry in GET /api/sessions/waiting.
type WaitingSessionResponse struct {
	SessionID  int64  `json:"session_id"`
	CustomerID int64  `json:"customer_id"`
	UniqueID   string `json:"unique_id"`
	StartedAt  string `json:"started_at,omitempty"`
}

// UploadVideoResponse is the JSON response for POST /api/upload-video.
type UploadVideoResponse struct {
	Success bool   `json:"success"`
	Path    string `json:"path"`
}

// HealthResponse is the JSON response for GET /api/health.
type HealthResponse struct {
	Status             string `json:"status"`
	ConnectedCustomers int    `json:"connected_customers"`
	ConnectedAgents    int    `json:"connected_agents"`
	WaitingSessions    int    `json:"waiting_sessions"`
	ActiveCalls        int    `json:"active_calls"`
}

func (g *Gateway) registerRoutes(mux *http.ServeMux) {
	mux.HandleFunc("GET /{$}", g.handleRoot)
	mux.HandleFunc("GET /health", g.handleHealth)
	mux.HandleFunc("GET /api/health", g.handleHealth)

	mux.HandleFunc("POST /api/customers/create", g.handleCreateCustomer)
	mux.HandleFunc("GET /api/customers", g.handleListCustomers)
	mux.HandleFunc("POST /api/customers/{customer_id}/send-link", g.handleSendLink)

	mux.HandleFunc("GET /api/vkyc/{unique_id}", g.handleKYCOptions)
	mux.HandleFunc("POST /api/vkyc/schedule", g.handleSchedule)
	mux.HandleFunc("POST /api/vkyc/start", g.handleStart)
	mux.HandleFunc("GET /api/vkyc/sessions/{session_id}", g.handleGetSession)

	mux.HandleFunc("POST /api/agents/create", g.handleCreateAgent)
	mux.HandleFunc("GET /api/agents", g.handleListAgents)
	mux.HandleFunc("GET /api/agents/available", g.handleAvailableAgents)
	mux.HandleFunc("GET /api/agents/{agent_id}", g.handleGetAgent)

	mux.HandleFunc("GET /api/sessions/waiting", g.handleWaitingSessions)
	mux.HandleFunc("POST /api/sessions/{session_id}/recording-chunk", g.handleRecordingChunk)

	mux.HandleFunc("GET /api/turn-credentials", g.handleTURNCredentials)
	mux.HandleFunc("POST /api/upload-video", g.handleUploadVideo)
}

func (g *Gateway) handleRoot(w http.ResponseWriter, r *http.Request) {
	g.writeJSON(w, http.StatusOK, map[string]string{"message": "VKYC Gateway API"})
}

func (g *Gateway) handleHealth(w http.ResponseWriter, r *http.Request) {
	customers, agents, waiting, assigned := g.registry.Stats()
	g.writeJSON(w, http.StatusOK, HealthResponse{
		Status:             "ok",
		ConnectedCustomers: customers,
		ConnectedAgents:    agents,
		WaitingSessions:    waiting,
		ActiveCalls:        assigned,
	})
}

// handleCreateCustomer handles POST /api/customers/create. The KYC
// link is derived from the customer's unique ID and stored back on the
// record so resends use the same URL.
func (g *Gateway) handleCreateCustomer(w http.ResponseWriter, r *http.Request) {
	var req CreateCustomerRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		g.sendJSONError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	if req.Name == "" || req.Mobile == "" || req.Email == "" {
		g.sendJSONError(w, http.StatusBadRequest, "name, mobile, and email are required")
		return
	}

	customer := &store.Customer{
		UniqueID: store.NewUniqueID(),
		Name:     req.Name,
		Mobile:   req.Mobile,
		Email:    req.Email,
	}
	if err := g.store.CreateCustomer(r.Context(), customer); err != nil {
		if errors.Is(err, store.ErrDuplicate) {
			g.sendJSONError(w, http.StatusConflict, "customer already exists")
			return
		}
		g.logger.Error("create customer failed", "error", err)
		g.sendJSONError(w, http.StatusInternalServerError, "internal server error")
		return
	}

	link := g.kycLink(customer.UniqueID)
	if err := g.store.UpdateCustomerLink(r.Context(), customer.ID, link); err != nil {
		g.logger.Error("store KYC link failed", "customer_id", customer.ID, "error", err)
		g.sendJSONError(w, http.StatusInternalServerError, "internal server error")
		return
	}

	g.writeJSON(w, http.StatusOK, CreateCustomerResponse{
		Success:    true,
		CustomerID: customer.ID,
		UniqueID:   customer.UniqueID,
		KYCLink:    link,
	})
}

func (g *Gateway) handleListCustomers(w http.ResponseWriter, r *http.Request) {
	offset, limit := paging(r, 100)
	customers, err := g.store.ListCustomers(r.Context(), offset, limit)
	if err != nil {
		g.logger.Error("list customers failed", "error", err)
		g.sendJSONError(w, http.StatusInternalServerError, "internal server error")
		return
	}

	resp := make([]CustomerResponse, 0, len(customers))
	for _, c := range customers {
		resp = append(resp, CustomerResponse{
			ID:        c.ID,
			UniqueID:  c.UniqueID,
			Name:      c.Name,
			Mobile:    c.Mobile,
			Email:     c.Email,
			KYCLink:   c.KYCLink,
			CreatedAt: c.CreatedAt.Format(time.RFC3339),
		})
	}
	g.writeJSON(w, http.StatusOK, resp)
}

// handleSendLink handles POST /api/customers/{customer_id}/send-link.
// Delivery failures on one channel do not block the other; the
// response reports each channel separately.
func (g *Gateway) handleSendLink(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(r.PathValue("customer_id"), 10, 64)
	if err != nil {
		g.sendJSONError(w, http.StatusBadRequest, "invalid customer id")
		return
	}

	customer, err := g.store.GetCustomer(r.Context(), id)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			g.sendJSONError(w, http.StatusNotFound, "customer not found")
			return
		}
		g.logger.Error("get customer failed", "customer_id", id, "error", err)
		g.sendJSONError(w, http.StatusInternalServerError, "internal server error")
		return
	}

	message := fmt.Sprintf("Your VKYC link: %s", customer.KYCLink)

	smsSent := true
	if err := g.sms.Send(r.Context(), customer.Mobile, message); err != nil {
		g.logger.Warn("SMS send failed", "customer_id", id, "error", err)
		smsSent = false
	}

	emailSent := true
	if err := g.email.Send(customer.Email, "VKYC Link", message); err != nil {
		g.logger.Warn("email send failed", "customer_id", id, "error", err)
		emailSent = false
	}

	g.writeJSON(w, http.StatusOK, SendLinkResponse{
		Success:   true,
		SMSSent:   smsSent,
		EmailSent: emailSent,
	})
}

func (g *Gateway) handleKYCOptions(w http.ResponseWriter, r *http.Request) {
	customer, err := g.store.GetCustomerByUniqueID(r.Context(), r.PathValue("unique_id"))
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			g.sendJSONError(w, http.StatusNotFound, "customer not found")
			return
		}
		g.logger.Error("get customer failed", "error", err)
		g.sendJSONError(w, http.StatusInternalServerError, "internal server error")
		return
	}

	g.writeJSON(w, http.StatusOK, KYCOptionsResponse{
		CustomerID: customer.ID,
		UniqueID:   customer.UniqueID,
		Name:       customer.Name,
		Options:    []string{"start_now", "schedule"},
	})
}

// handleSchedule handles POST /api/vkyc/schedule. Notification
// failures are logged but do not fail the request; the session is
// already durably scheduled at that point.
func (g *Gateway) handleSchedule(w http.ResponseWriter, r *http.Request) {
	var req ScheduleRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		g.sendJSONError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}

	scheduledTime, err := time.Parse(time.RFC3339, req.ScheduledTime)
	if err != nil {
		g.sendJSONError(w, http.StatusBadRequest, "scheduled_time must be RFC 3339")
		return
	}

	customer, err := g.store.GetCustomerByUniqueID(r.Context(), req.UniqueID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			g.sendJSONError(w, http.StatusNotFound, "customer not found")
			return
		}
		g.logger.Error("get customer failed", "error", err)
		g.sendJSONError(w, http.StatusInternalServerError, "internal server error")
		return
	}

	sess := &store.Session{
		CustomerID:    customer.ID,
		UniqueID:      customer.UniqueID,
		Status:        store.StatusScheduled,
		ScheduledTime: &scheduledTime,
	}
	if err := g.store.CreateSession(r.Context(), sess); err != nil {
		g.logger.Error("create scheduled session failed", "error", err)
		g.sendJSONError(w, http.StatusInternalServerError, "internal server error")
		return
	}

	link := g.kycLink(customer.UniqueID)
	message := fmt.Sprintf("Your scheduled VKYC link: %s. Scheduled for: %s",
		link, scheduledTime.Format(time.RFC3339))
	if err := g.sms.Send(r.Context(), customer.Mobile, message); err != nil {
		g.logger.Warn("SMS send failed", "customer_id", customer.ID, "error", err)
	}
	if err := g.email.Send(customer.Email, "Scheduled VKYC Link", message); err != nil {
		g.logger.Warn("email send failed", "customer_id", customer.ID, "error", err)
	}

	g.writeJSON(w, http.StatusOK, ScheduleResponse{
		Success:       true,
		SessionID:     sess.ID,
		ScheduledLink: link,
		ScheduledTime: scheduledTime.Format(time.RFC3339),
	})
}

func (g *Gateway) handleStart(w http.ResponseWriter, r *http.Request) {
	var req StartRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		g.sendJSONError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	if req.UniqueID == "" {
		g.sendJSONError(w, http.StatusBadRequest, "unique_id is required")
		return
	}

	sess, resumed, err := g.coord.StartSession(r.Context(), req.UniqueID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			g.sendJSONError(w, http.StatusNotFound, "customer not found")
			return
		}
		g.logger.Error("start session failed", "unique_id", req.UniqueID, "error", err)
		g.sendJSONError(w, http.StatusInternalServerError, "internal server error")
		return
	}

	g.writeJSON(w, http.StatusOK, StartResponse{
		Success:      true,
		SessionID:    sess.ID,
		Resumed:      resumed,
		WebsocketURL: fmt.Sprintf("%s/ws/vkyc/%d", g.config.Server.WSBaseURL, sess.ID),
	})
}

func (g *Gateway) handleGetSession(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(r.PathValue("session_id"), 10, 64)
	if err != nil {
		g.sendJSONError(w, http.StatusBadRequest, "invalid session id")
		return
	}

	sess, err := g.store.GetSession(r.Context(), id)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			g.sendJSONError(w, http.StatusNotFound, "session not found")
			return
		}
		g.logger.Error("get session failed", "session_id", id, "error", err)
		g.sendJSONError(w, http.StatusInternalServerError, "internal server error")
		return
	}

	logs, err := g.store.ListSessionLogs(r.Context(), id)
	if err != nil {
		g.logger.Error("list session logs failed", "session_id", id, "error", err)
		g.sendJSONError(w, http.StatusInternalServerError, "internal server error")
		return
	}

	entries := make([]SessionLogEntry, 0, len(logs))
	for _, l := range logs {
		data := json.RawMessage(l.Payload)
		if !json.Valid(data) {
			data, _ = json.Marshal(l.Payload)
		}
		entries = append(entries, SessionLogEntry{Type: l.Category, Data: data})
	}

	g.writeJSON(w, http.StatusOK, SessionDetailResponse{
		Session: sessionResponse(sess),
		Logs:    entries,
	})
}

func (g *Gateway) handleCreateAgent(w http.ResponseWriter, r *http.Request) {
	var req CreateAgentRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		g.sendJSONError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	if req.EmployeeID == "" || req.FirstName == "" || req.Email == "" {
		g.sendJSONError(w, http.StatusBadRequest, "employee_id, first_name, and email are required")
		return
	}

	role := store.AgentRole(req.Role)
	if req.Role == "" {
		role = store.RoleAgent
	}
	if !store.ValidRole(role) {
		g.sendJSONError(w, http.StatusBadRequest, "invalid role")
		return
	}

	agent := &store.Agent{
		EmployeeID: req.EmployeeID,
		FirstName:  req.FirstName,
		LastName:   req.LastName,
		Email:      req.Email,
		Mobile:     req.Mobile,
		Role:       role,
		Active:     true,
	}
	if err := g.store.CreateAgent(r.Context(), agent); err != nil {
		if errors.Is(err, store.ErrDuplicate) {
			g.sendJSONError(w, http.StatusConflict, "employee ID or email already exists")
			return
		}
		g.logger.Error("create agent failed", "error", err)
		g.sendJSONError(w, http.StatusInternalServerError, "internal server error")
		return
	}

	resp := CreateAgentResponse{AgentResponse: agentResponse(agent)}
	if g.tokens != nil {
		token, err := g.tokens.Generate(agent.EmployeeID, g.config.Auth.TokenTTL)
		if err != nil {
			g.logger.Error("token generation failed", "employee_id", agent.EmployeeID, "error", err)
			g.sendJSONError(w, http.StatusInternalServerError, "internal server error")
			return
		}
		resp.Token = token
	}

	g.writeJSON(w, http.StatusOK, resp)
}

func (g *Gateway) handleListAgents(w http.ResponseWriter, r *http.Request) {
	offset, limit := paging(r, 100)
	agents, err := g.store.ListAgents(r.Context(), offset, limit)
	if err != nil {
		g.logger.Error("list agents failed", "error", err)
		g.sendJSONError(w, http.StatusInternalServerError, "internal server error")
		return
	}

	resp := make([]AgentResponse, 0, len(agents))
	for _, a := range agents {
		resp = append(resp, agentResponse(a))
	}
	g.writeJSON(w, http.StatusOK, resp)
}

func (g *Gateway) handleGetAgent(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(r.PathValue("agent_id"), 10, 64)
	if err != nil {
		g.sendJSONError(w, http.StatusBadRequest, "invalid agent id")
		return
	}

	agent, err := g.store.GetAgent(r.Context(), id)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			g.sendJSONError(w, http.StatusNotFound, "agent not found")
			return
		}
		g.logger.Error("get agent failed", "agent_id", id, "error", err)
		g.sendJSONError(w, http.StatusInternalServerError, "internal server error")
		return
	}

	g.writeJSON(w, http.StatusOK, agentResponse(agent))
}

// handleAvailableAgents handles GET /api/agents/available. Eligibility
// comes from the store; online state comes from the live registry.
func (g *Gateway) handleAvailableAgents(w http.ResponseWriter, r *http.Request) {
	agents, err := g.store.ListAvailableAgents(r.Context())
	if err != nil {
		g.logger.Error("list available agents failed", "error", err)
		g.sendJSONError(w, http.StatusInternalServerError, "internal server error")
		return
	}

	online := make(map[string]bool)
	for _, id := range g.registry.AvailableAgents() {
		online[id] = true
	}

	resp := make([]AvailableAgentResponse, 0, len(agents))
	for _, a := range agents {
		resp = append(resp, AvailableAgentResponse{
			ID:         a.ID,
			EmployeeID: a.EmployeeID,
			Name:       a.FullName(),
			Online:     online[a.EmployeeID],
		})
	}
	g.writeJSON(w, http.StatusOK, resp)
}

func (g *Gateway) handleWaitingSessions(w http.ResponseWriter, r *http.Request) {
	sessions, err := g.store.ListWaitingSessions(r.Context())
	if err != nil {
		g.logger.Error("list waiting sessions failed", "error", err)
		g.sendJSONError(w, http.StatusInternalServerError, "internal server error")
		return
	}

	resp := make([]WaitingSessionResponse, 0, len(sessions))
	for _, s := range sessions {
		entry := WaitingSessionResponse{
			SessionID:  s.ID,
			CustomerID: s.CustomerID,
			UniqueID:   s.UniqueID,
		}
		if s.StartedAt != nil {
			entry.StartedAt = s.StartedAt.Format(time.RFC3339)
		}
		resp = append(resp, entry)
	}
	g.writeJSON(w, http.StatusOK, resp)
}

// handleRecordingChunk handles POST /api/sessions/{session_id}/recording-chunk.
// Chunks for sessions without an active recorder are rejected so the
// caller can stop streaming.
func (g *Gateway) handleRecordingChunk(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(r.PathValue("session_id"), 10, 64)
	if err != nil {
		g.sendJSONError(w, http.StatusBadRequest, "invalid session id")
		return
	}

	data, err := io.ReadAll(http.MaxBytesReader(w, r.Body, 32<<20))
	if err != nil {
		g.sendJSONError(w, http.StatusBadRequest, "failed to read chunk")
		return
	}

	if err := g.coord.RecorderChunk(id, data); err != nil {
		g.sendJSONError(w, http.StatusNotFound, "no active recording for session")
		return
	}

	g.writeJSON(w, http.StatusOK, map[string]bool{"success": true})
}

func (g *Gateway) handleTURNCredentials(w http.ResponseWriter, r *http.Request) {
	g.writeJSON(w, http.StatusOK, g.turnClient.Credentials(r.Context()))
}

// handleUploadVideo handles POST /api/upload-video. Completed call
// recordings uploaded by the agent console are stored under the
// configured recording directory.
func (g *Gateway) handleUploadVideo(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseMultipartForm(64 << 20); err != nil {
		g.sendJSONError(w, http.StatusBadRequest, "invalid multipart body")
		return
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		g.sendJSONError(w, http.StatusBadRequest, "file field is required")
		return
	}
	defer file.Close()

	name := filepath.Base(header.Filename)
	if name == "." || name == "/" || name == "" {
		g.sendJSONError(w, http.StatusBadRequest, "invalid filename")
		return
	}

	dir := g.config.Recording.Dir
	if err := os.MkdirAll(dir, 0o755); err != nil {
		g.logger.Error("create recording dir failed", "error", err)
		g.sendJSONError(w, http.StatusInternalServerError, "internal server error")
		return
	}

	path := filepath.Join(dir, name)
	dst, err := os.Create(path)
	if err != nil {
		g.logger.Error("create upload file failed", "path", path, "error", err)
		g.sendJSONError(w, http.StatusInternalServerError, "internal server error")
		return
	}
	defer dst.Close()

	if _, err := io.Copy(dst, file); err != nil {
		g.logger.Error("write upload failed", "path", path, "error", err)
		g.sendJSONError(w, http.StatusInternalServerError, "internal server error")
		return
	}

	g.writeJSON(w, http.StatusOK, UploadVideoResponse{Success: true, Path: path})
}

func (g *Gateway) kycLink(uniqueID string) string {
	return g.config.Links.FrontendBaseURL + "/vkyc/" + uniqueID
}

func sessionResponse(s *store.Session) SessionResponse {
	resp := SessionResponse{
		ID:            s.ID,
		CustomerID:    s.CustomerID,
		AgentID:       s.AgentID,
		UniqueID:      s.UniqueID,
		Status:        string(s.Status),
		RecordingPath: s.RecordingPath,
		ErrorMessage:  s.ErrorMessage,
	}
	if s.ScheduledTime != nil {
		resp.ScheduledTime = s.ScheduledTime.Format(time.RFC3339)
	}
	if s.StartedAt != nil {
		resp.StartedAt = s.StartedAt.Format(time.RFC3339)
	}
	if s.CompletedAt != nil {
		resp.CompletedAt = s.CompletedAt.Format(time.RFC3339)
	}
	return resp
}

func agentResponse(a *store.Agent) AgentResponse {
	return AgentResponse{
		ID:         a.ID,
		EmployeeID: a.EmployeeID,
		FirstName:  a.FirstName,
		LastName:   a.LastName,
		Email:      a.Email,
		Mobile:     a.Mobile,
		Role:       string(a.Role),
		Active:     a.Active,
		Restricted: a.Restricted,
		CreatedAt:  a.CreatedAt.Format(time.RFC3339),
	}
}

// paging reads offset/limit query params with a default page size.
func paging(r *http.Request, defaultLimit int) (offset, limit int) {
	limit = defaultLimit
	if v, err := strconv.Atoi(r.URL.Query().Get("offset")); err == nil && v >= 0 {
		offset = v
	}
	if v, err := strconv.Atoi(r.URL.Query().Get("limit")); err == nil && v > 0 && v <= 500 {
		limit = v
	}
	return offset, limit
}

// writeJSON writes a JSON response with the given status.
func (g *Gateway) writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

// sendJSONError writes a JSON error response.
func (g *Gateway) sendJSONError(w http.ResponseWriter, status int, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(map[string]string{"error": message})
}
