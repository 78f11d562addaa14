// ABOUTME: Tests for the HTTP API handlers covering customers, sessions and agents.
// ABOUTME: Exercises the full route table against a real SQLite store.

package gateway

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/veriflow/vkyc-gateway/internal/auth"
	"github.com/veriflow/vkyc-gateway/internal/config"
	"github.com/veriflow/vkyc-gateway/internal/notify"
	"github.com/veriflow/vkyc-gateway/internal/registry"
	"github.com/veriflow/vkyc-gateway/internal/session"
	"github.com/veriflow/vkyc-gateway/internal/store"
	"github.com/veriflow/vkyc-gateway/internal/verify"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

type testGateway struct {
	gw  *Gateway
	mux *http.ServeMux
}

func newTestGateway(t *testing.T) *testGateway {
	t.Helper()

	dir := t.TempDir()
	st, err := store.NewSQLiteStore(filepath.Join(dir, "test.db"))
	require.NoError(t, err)
	t.Cleanup(func() { st.Close() })

	cfg := &config.Config{}
	cfg.Server.HTTPAddr = "localhost:0"
	cfg.Server.WSBaseURL = "ws://localhost:8000"
	cfg.Database.Path = filepath.Join(dir, "test.db")
	cfg.Links.FrontendBaseURL = "https://kyc.example.com"
	cfg.Recording.Dir = filepath.Join(dir, "recordings")
	cfg.Sessions.HeartbeatInterval = 30 * time.Second
	cfg.Sessions.Expiry = 5 * time.Minute

	reg := registry.New()
	coord := session.NewCoordinator(st, reg,
		verify.NewOCRClient("", ""),
		verify.NewDigiLockerClient("", ""),
		session.Options{RecordingDir: cfg.Recording.Dir})
	t.Cleanup(coord.Close)

	gw := &Gateway{
		config:     cfg,
		store:      st,
		registry:   reg,
		coord:      coord,
		turnClient: verify.NewTURNClient("", ""),
		sms:        notify.NewSMSSender("", "", "", "", ""),
		email:      notify.NewEmailSender("", 0, "", ""),
		logger:     testLogger(),
	}

	mux := http.NewServeMux()
	gw.registerRoutes(mux)
	return &testGateway{gw: gw, mux: mux}
}

func (tg *testGateway) do(t *testing.T, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()

	var reader *bytes.Reader
	if body != nil {
		data, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(data)
	} else {
		reader = bytes.NewReader(nil)
	}

	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	tg.mux.ServeHTTP(rec, req)
	return rec
}

func decodeBody[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&v))
	return v
}

func (tg *testGateway) createCustomer(t *testing.T) CreateCustomerResponse {
	t.Helper()
	rec := tg.do(t, http.MethodPost, "/api/customers/create", CreateCustomerRequest{
		Name:   "Asha Rao",
		Mobile: "9876543210",
		Email:  "asha@example.com",
	})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	return decodeBody[CreateCustomerResponse](t, rec)
}

func TestCreateCustomer(t *testing.T) {
	tg := newTestGateway(t)

	resp := tg.createCustomer(t)
	assert.True(t, resp.Success)
	assert.NotZero(t, resp.CustomerID)
	assert.Len(t, resp.UniqueID, 10)
	assert.Equal(t, "https://kyc.example.com/vkyc/"+resp.UniqueID, resp.KYCLink)
}

func TestCreateCustomer_Validation(t *testing.T) {
	tg := newTestGateway(t)

	rec := tg.do(t, http.MethodPost, "/api/customers/create", CreateCustomerRequest{Name: "No Contact"})
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	req := httptest.NewRequest(http.MethodPost, "/api/customers/create", strings.NewReader("{broken"))
	rec2 := httptest.NewRecorder()
	tg.mux.ServeHTTP(rec2, req)
	assert.Equal(t, http.StatusBadRequest, rec2.Code)
}

func TestListCustomers(t *testing.T) {
	tg := newTestGateway(t)
	tg.createCustomer(t)

	rec := tg.do(t, http.MethodGet, "/api/customers", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	customers := decodeBody[[]CustomerResponse](t, rec)
	require.Len(t, customers, 1)
	assert.Equal(t, "Asha Rao", customers[0].Name)
	assert.NotEmpty(t, customers[0].KYCLink)
}

func TestSendLink_UnknownCustomer(t *testing.T) {
	tg := newTestGateway(t)

	rec := tg.do(t, http.MethodPost, "/api/customers/999/send-link", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestSendLink_UnconfiguredChannels(t *testing.T) {
	tg := newTestGateway(t)
	c := tg.createCustomer(t)

	rec := tg.do(t, http.MethodPost, fmt.Sprintf("/api/customers/%d/send-link", c.CustomerID), nil)
	require.Equal(t, http.StatusOK, rec.Code)

	resp := decodeBody[SendLinkResponse](t, rec)
	assert.True(t, resp.Success)
	assert.False(t, resp.SMSSent)
	assert.False(t, resp.EmailSent)
}

func TestKYCOptions(t *testing.T) {
	tg := newTestGateway(t)
	c := tg.createCustomer(t)

	rec := tg.do(t, http.MethodGet, "/api/vkyc/"+c.UniqueID, nil)
	require.Equal(t, http.StatusOK, rec.Code)

	resp := decodeBody[KYCOptionsResponse](t, rec)
	assert.Equal(t, c.CustomerID, resp.CustomerID)
	assert.Equal(t, "Asha Rao", resp.Name)
	assert.Equal(t, []string{"start_now", "schedule"}, resp.Options)

	rec = tg.do(t, http.MethodGet, "/api/vkyc/NOSUCHID99", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestSchedule(t *testing.T) {
	tg := newTestGateway(t)
	c := tg.createCustomer(t)

	when := time.Now().Add(24 * time.Hour).UTC().Truncate(time.Second)
	rec := tg.do(t, http.MethodPost, "/api/vkyc/schedule", ScheduleRequest{
		UniqueID:      c.UniqueID,
		ScheduledTime: when.Format(time.RFC3339),
	})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	resp := decodeBody[ScheduleResponse](t, rec)
	assert.True(t, resp.Success)
	assert.NotZero(t, resp.SessionID)
	assert.Equal(t, when.Format(time.RFC3339), resp.ScheduledTime)

	detail := tg.do(t, http.MethodGet, fmt.Sprintf("/api/vkyc/sessions/%d", resp.SessionID), nil)
	require.Equal(t, http.StatusOK, detail.Code)
	got := decodeBody[SessionDetailResponse](t, detail)
	assert.Equal(t, string(store.StatusScheduled), got.Session.Status)
	assert.Equal(t, when.Format(time.RFC3339), got.Session.ScheduledTime)
}

func TestSchedule_BadTime(t *testing.T) {
	tg := newTestGateway(t)
	c := tg.createCustomer(t)

	rec := tg.do(t, http.MethodPost, "/api/vkyc/schedule", ScheduleRequest{
		UniqueID:      c.UniqueID,
		ScheduledTime: "tomorrow at noon",
	})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestStart(t *testing.T) {
	tg := newTestGateway(t)
	c := tg.createCustomer(t)

	rec := tg.do(t, http.MethodPost, "/api/vkyc/start", StartRequest{UniqueID: c.UniqueID})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	resp := decodeBody[StartResponse](t, rec)
	assert.True(t, resp.Success)
	assert.False(t, resp.Resumed)
	assert.Equal(t, fmt.Sprintf("ws://localhost:8000/ws/vkyc/%d", resp.SessionID), resp.WebsocketURL)

	// A second start while the session is live reuses it.
	rec = tg.do(t, http.MethodPost, "/api/vkyc/start", StartRequest{UniqueID: c.UniqueID})
	require.Equal(t, http.StatusOK, rec.Code)
	again := decodeBody[StartResponse](t, rec)
	assert.True(t, again.Resumed)
	assert.Equal(t, resp.SessionID, again.SessionID)
}

func TestStart_UnknownCustomer(t *testing.T) {
	tg := newTestGateway(t)

	rec := tg.do(t, http.MethodPost, "/api/vkyc/start", StartRequest{UniqueID: "NOSUCHID99"})
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestGetSession_NotFound(t *testing.T) {
	tg := newTestGateway(t)

	rec := tg.do(t, http.MethodGet, "/api/vkyc/sessions/12345", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestCreateAndGetAgent(t *testing.T) {
	tg := newTestGateway(t)

	rec := tg.do(t, http.MethodPost, "/api/agents/create", CreateAgentRequest{
		EmployeeID: "EMP001",
		FirstName:  "Ravi",
		LastName:   "Menon",
		Email:      "ravi@example.com",
		Mobile:     "9000000001",
		Role:       "QA",
	})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	created := decodeBody[AgentResponse](t, rec)
	assert.Equal(t, "EMP001", created.EmployeeID)
	assert.Equal(t, "QA", created.Role)
	assert.True(t, created.Active)

	got := tg.do(t, http.MethodGet, fmt.Sprintf("/api/agents/%d", created.ID), nil)
	require.Equal(t, http.StatusOK, got.Code)
	assert.Equal(t, created.EmployeeID, decodeBody[AgentResponse](t, got).EmployeeID)

	// Duplicate employee ID rejected.
	dup := tg.do(t, http.MethodPost, "/api/agents/create", CreateAgentRequest{
		EmployeeID: "EMP001",
		FirstName:  "Other",
		Email:      "other@example.com",
	})
	assert.Equal(t, http.StatusConflict, dup.Code)
}

func TestCreateAgent_DefaultsAndValidation(t *testing.T) {
	tg := newTestGateway(t)

	rec := tg.do(t, http.MethodPost, "/api/agents/create", CreateAgentRequest{
		EmployeeID: "EMP002",
		FirstName:  "Mira",
		Email:      "mira@example.com",
	})
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "Agent", decodeBody[AgentResponse](t, rec).Role)

	bad := tg.do(t, http.MethodPost, "/api/agents/create", CreateAgentRequest{
		EmployeeID: "EMP003",
		FirstName:  "Bad",
		Email:      "bad@example.com",
		Role:       "Supervisor",
	})
	assert.Equal(t, http.StatusBadRequest, bad.Code)

	missing := tg.do(t, http.MethodPost, "/api/agents/create", CreateAgentRequest{FirstName: "No ID"})
	assert.Equal(t, http.StatusBadRequest, missing.Code)
}

func TestCreateAgent_IssuesToken(t *testing.T) {
	tg := newTestGateway(t)
	tg.gw.tokens = auth.NewJWTVerifier([]byte("test-secret"))
	tg.gw.config.Auth.TokenTTL = time.Hour

	rec := tg.do(t, http.MethodPost, "/api/agents/create", CreateAgentRequest{
		EmployeeID: "EMP005",
		FirstName:  "Dev",
		Email:      "dev@example.com",
	})
	require.Equal(t, http.StatusOK, rec.Code)

	created := decodeBody[CreateAgentResponse](t, rec)
	require.NotEmpty(t, created.Token)

	subject, err := tg.gw.tokens.Verify(created.Token)
	require.NoError(t, err)
	assert.Equal(t, "EMP005", subject)
}

func TestAvailableAgents(t *testing.T) {
	tg := newTestGateway(t)

	rec := tg.do(t, http.MethodPost, "/api/agents/create", CreateAgentRequest{
		EmployeeID: "EMP010",
		FirstName:  "Lena",
		LastName:   "D'Souza",
		Email:      "lena@example.com",
	})
	require.Equal(t, http.StatusOK, rec.Code)

	avail := tg.do(t, http.MethodGet, "/api/agents/available", nil)
	require.Equal(t, http.StatusOK, avail.Code)

	agents := decodeBody[[]AvailableAgentResponse](t, avail)
	require.Len(t, agents, 1)
	assert.Equal(t, "EMP010", agents[0].EmployeeID)
	assert.Equal(t, "Lena D'Souza", agents[0].Name)
	assert.False(t, agents[0].Online, "agent has no live connection")
}

func TestWaitingSessions_Empty(t *testing.T) {
	tg := newTestGateway(t)

	rec := tg.do(t, http.MethodGet, "/api/sessions/waiting", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Empty(t, decodeBody[[]WaitingSessionResponse](t, rec))
}

func TestRecordingChunk_NoRecorder(t *testing.T) {
	tg := newTestGateway(t)

	req := httptest.NewRequest(http.MethodPost, "/api/sessions/42/recording-chunk",
		bytes.NewReader([]byte("webm-bytes")))
	rec := httptest.NewRecorder()
	tg.mux.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestTURNCredentials_Fallback(t *testing.T) {
	tg := newTestGateway(t)

	rec := tg.do(t, http.MethodGet, "/api/turn-credentials", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	servers := decodeBody[[]verify.ICEServer](t, rec)
	require.Len(t, servers, 2, "unconfigured TURN falls back to default STUN")
}

func TestUploadVideo(t *testing.T) {
	tg := newTestGateway(t)

	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	part, err := mw.CreateFormFile("file", "session_7.webm")
	require.NoError(t, err)
	_, err = part.Write([]byte("webm-bytes"))
	require.NoError(t, err)
	require.NoError(t, mw.Close())

	req := httptest.NewRequest(http.MethodPost, "/api/upload-video", &body)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	rec := httptest.NewRecorder()
	tg.mux.ServeHTTP(rec, req)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	resp := decodeBody[UploadVideoResponse](t, rec)
	assert.True(t, resp.Success)

	data, err := os.ReadFile(resp.Path)
	require.NoError(t, err)
	assert.Equal(t, "webm-bytes", string(data))
}

func TestUploadVideo_MissingFile(t *testing.T) {
	tg := newTestGateway(t)

	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	require.NoError(t, mw.WriteField("name", "nothing"))
	require.NoError(t, mw.Close())

	req := httptest.NewRequest(http.MethodPost, "/api/upload-video", &body)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	rec := httptest.NewRecorder()
	tg.mux.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestHealth(t *testing.T) {
	tg := newTestGateway(t)

	rec := tg.do(t, http.MethodGet, "/api/health", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	resp := decodeBody[HealthResponse](t, rec)
	assert.Equal(t, "ok", resp.Status)
	assert.Zero(t, resp.ConnectedCustomers)
}

func TestRoot(t *testing.T) {
	tg := newTestGateway(t)

	rec := tg.do(t, http.MethodGet, "/", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "VKYC Gateway API")
}
