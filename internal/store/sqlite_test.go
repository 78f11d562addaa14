// ABOUTME: Tests for SQLite store implementation
// ABOUTME: Covers customer/agent CRUD, session lifecycle, and session log persistence

package store

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"
)

func newTestStore(t *testing.T) *SQLiteStore {
	t.Helper()
	dbPath := filepath.Join(t.TempDir(), "test.db")
	s, err := NewSQLiteStore(dbPath)
	if err != nil {
		t.Fatalf("NewSQLiteStore failed: %v", err)
	}
	return s
}

func testCustomer(t *testing.T, s *SQLiteStore) *Customer {
	t.Helper()
	c := &Customer{
		UniqueID: NewUniqueID(),
		Name:     "Priya Sharma",
		Mobile:   "9876543210",
		Email:    "priya@example.com",
	}
	if err := s.CreateCustomer(context.Background(), c); err != nil {
		t.Fatalf("CreateCustomer failed: %v", err)
	}
	return c
}

func testAgent(t *testing.T, s *SQLiteStore, employeeID string) *Agent {
	t.Helper()
	a := &Agent{
		EmployeeID: employeeID,
		FirstName:  "Ravi",
		LastName:   "Kumar",
		Email:      employeeID + "@example.com",
		Role:       RoleAgent,
		Active:     true,
	}
	if err := s.CreateAgent(context.Background(), a); err != nil {
		t.Fatalf("CreateAgent failed: %v", err)
	}
	return a
}

func TestNewSQLiteStore(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "test.db")

	s, err := NewSQLiteStore(dbPath)
	if err != nil {
		t.Fatalf("NewSQLiteStore failed: %v", err)
	}
	defer s.Close()

	if _, err := os.Stat(dbPath); os.IsNotExist(err) {
		t.Error("database file was not created")
	}
}

func TestNewSQLiteStore_CreatesDirectory(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "subdir", "nested", "test.db")

	s, err := NewSQLiteStore(dbPath)
	if err != nil {
		t.Fatalf("NewSQLiteStore failed: %v", err)
	}
	defer s.Close()

	if _, err := os.Stat(dbPath); os.IsNotExist(err) {
		t.Error("database file was not created in nested directory")
	}
}

func TestCreateAndGetCustomer(t *testing.T) {
	s := newTestStore(t)
	defer s.Close()

	ctx := context.Background()
	c := testCustomer(t, s)

	if c.ID == 0 {
		t.Fatal("expected customer ID to be assigned")
	}

	got, err := s.GetCustomer(ctx, c.ID)
	if err != nil {
		t.Fatalf("GetCustomer failed: %v", err)
	}
	if got.UniqueID != c.UniqueID {
		t.Errorf("UniqueID = %q, want %q", got.UniqueID, c.UniqueID)
	}
	if got.Name != "Priya Sharma" {
		t.Errorf("Name = %q, want %q", got.Name, "Priya Sharma")
	}

	byUID, err := s.GetCustomerByUniqueID(ctx, c.UniqueID)
	if err != nil {
		t.Fatalf("GetCustomerByUniqueID failed: %v", err)
	}
	if byUID.ID != c.ID {
		t.Errorf("ID = %d, want %d", byUID.ID, c.ID)
	}
}

func TestCreateCustomer_DuplicateUniqueID(t *testing.T) {
	s := newTestStore(t)
	defer s.Close()

	ctx := context.Background()
	c := testCustomer(t, s)

	dup := &Customer{UniqueID: c.UniqueID, Name: "Other", Mobile: "1", Email: "o@example.com"}
	if err := s.CreateCustomer(ctx, dup); !errors.Is(err, ErrDuplicate) {
		t.Errorf("expected ErrDuplicate, got %v", err)
	}
}

func TestGetCustomer_NotFound(t *testing.T) {
	s := newTestStore(t)
	defer s.Close()

	if _, err := s.GetCustomer(context.Background(), 999); !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}

func TestUpdateCustomerLink(t *testing.T) {
	s := newTestStore(t)
	defer s.Close()

	ctx := context.Background()
	c := testCustomer(t, s)

	link := "https://kyc.example.com/verify/" + c.UniqueID
	if err := s.UpdateCustomerLink(ctx, c.ID, link); err != nil {
		t.Fatalf("UpdateCustomerLink failed: %v", err)
	}

	got, err := s.GetCustomer(ctx, c.ID)
	if err != nil {
		t.Fatalf("GetCustomer failed: %v", err)
	}
	if got.KYCLink != link {
		t.Errorf("KYCLink = %q, want %q", got.KYCLink, link)
	}

	if err := s.UpdateCustomerLink(ctx, 999, link); !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}

func TestCreateAndGetAgent(t *testing.T) {
	s := newTestStore(t)
	defer s.Close()

	ctx := context.Background()
	a := testAgent(t, s, "EMP001")

	got, err := s.GetAgentByEmployeeID(ctx, "EMP001")
	if err != nil {
		t.Fatalf("GetAgentByEmployeeID failed: %v", err)
	}
	if got.ID != a.ID {
		t.Errorf("ID = %d, want %d", got.ID, a.ID)
	}
	if !got.Active {
		t.Error("expected agent to be active")
	}
	if got.Role != RoleAgent {
		t.Errorf("Role = %q, want %q", got.Role, RoleAgent)
	}
	if got.FullName() != "Ravi Kumar" {
		t.Errorf("FullName = %q, want %q", got.FullName(), "Ravi Kumar")
	}
}

func TestCreateAgent_DuplicateEmployeeID(t *testing.T) {
	s := newTestStore(t)
	defer s.Close()

	testAgent(t, s, "EMP001")

	dup := &Agent{
		EmployeeID: "EMP001",
		FirstName:  "Other",
		LastName:   "Agent",
		Email:      "other@example.com",
		Active:     true,
	}
	if err := s.CreateAgent(context.Background(), dup); !errors.Is(err, ErrDuplicate) {
		t.Errorf("expected ErrDuplicate, got %v", err)
	}
}

func TestListAvailableAgents(t *testing.T) {
	s := newTestStore(t)
	defer s.Close()

	ctx := context.Background()
	testAgent(t, s, "EMP001")
	testAgent(t, s, "EMP002")

	restricted := &Agent{
		EmployeeID: "EMP003",
		FirstName:  "Blocked",
		LastName:   "Agent",
		Email:      "blocked@example.com",
		Active:     true,
		Restricted: true,
	}
	if err := s.CreateAgent(ctx, restricted); err != nil {
		t.Fatalf("CreateAgent failed: %v", err)
	}

	inactive := &Agent{
		EmployeeID: "EMP004",
		FirstName:  "Gone",
		LastName:   "Agent",
		Email:      "gone@example.com",
		Active:     false,
	}
	if err := s.CreateAgent(ctx, inactive); err != nil {
		t.Fatalf("CreateAgent failed: %v", err)
	}

	available, err := s.ListAvailableAgents(ctx)
	if err != nil {
		t.Fatalf("ListAvailableAgents failed: %v", err)
	}
	if len(available) != 2 {
		t.Fatalf("expected 2 available agents, got %d", len(available))
	}
	for _, a := range available {
		if a.Restricted || !a.Active {
			t.Errorf("agent %s should not be available", a.EmployeeID)
		}
	}
}

func TestSessionLifecycle(t *testing.T) {
	s := newTestStore(t)
	defer s.Close()

	ctx := context.Background()
	c := testCustomer(t, s)
	a := testAgent(t, s, "EMP001")

	now := time.Now().UTC().Truncate(time.Second)
	sess := &Session{
		CustomerID: c.ID,
		UniqueID:   c.UniqueID,
		Status:     StatusStarted,
		StartedAt:  &now,
	}
	if err := s.CreateSession(ctx, sess); err != nil {
		t.Fatalf("CreateSession failed: %v", err)
	}
	if sess.ID == 0 {
		t.Fatal("expected session ID to be assigned")
	}

	// started -> waiting_for_agent
	if err := s.MarkSessionWaiting(ctx, sess.ID); err != nil {
		t.Fatalf("MarkSessionWaiting failed: %v", err)
	}
	got, err := s.GetSession(ctx, sess.ID)
	if err != nil {
		t.Fatalf("GetSession failed: %v", err)
	}
	if got.Status != StatusWaitingForAgent {
		t.Errorf("Status = %q, want %q", got.Status, StatusWaitingForAgent)
	}

	// assignment
	if err := s.AssignAgent(ctx, sess.ID, a.ID); err != nil {
		t.Fatalf("AssignAgent failed: %v", err)
	}
	if err := s.UpdateSessionStatus(ctx, sess.ID, StatusInProgress); err != nil {
		t.Fatalf("UpdateSessionStatus failed: %v", err)
	}
	got, err = s.GetSession(ctx, sess.ID)
	if err != nil {
		t.Fatalf("GetSession failed: %v", err)
	}
	if got.AgentID == nil || *got.AgentID != a.ID {
		t.Errorf("AgentID = %v, want %d", got.AgentID, a.ID)
	}
	if got.AgentAssignedAt == nil {
		t.Error("expected AgentAssignedAt to be set")
	}

	// completion
	if err := s.CompleteSession(ctx, sess.ID, "recordings/session_1.webm"); err != nil {
		t.Fatalf("CompleteSession failed: %v", err)
	}
	got, err = s.GetSession(ctx, sess.ID)
	if err != nil {
		t.Fatalf("GetSession failed: %v", err)
	}
	if got.Status != StatusCompleted {
		t.Errorf("Status = %q, want %q", got.Status, StatusCompleted)
	}
	if got.RecordingPath != "recordings/session_1.webm" {
		t.Errorf("RecordingPath = %q", got.RecordingPath)
	}
	if got.CompletedAt == nil {
		t.Error("expected CompletedAt to be set")
	}
}

func TestActiveSessionForCustomer(t *testing.T) {
	s := newTestStore(t)
	defer s.Close()

	ctx := context.Background()
	c := testCustomer(t, s)

	// No sessions yet
	if _, err := s.ActiveSessionForCustomer(ctx, c.ID); !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}

	// A completed session does not count as active
	done := &Session{CustomerID: c.ID, UniqueID: c.UniqueID, Status: StatusCompleted}
	if err := s.CreateSession(ctx, done); err != nil {
		t.Fatalf("CreateSession failed: %v", err)
	}
	if _, err := s.ActiveSessionForCustomer(ctx, c.ID); !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}

	// A disconnected session counts as active (resumable)
	disc := &Session{CustomerID: c.ID, UniqueID: c.UniqueID, Status: StatusDisconnected}
	if err := s.CreateSession(ctx, disc); err != nil {
		t.Fatalf("CreateSession failed: %v", err)
	}
	active, err := s.ActiveSessionForCustomer(ctx, c.ID)
	if err != nil {
		t.Fatalf("ActiveSessionForCustomer failed: %v", err)
	}
	if active.ID != disc.ID {
		t.Errorf("active session = %d, want %d", active.ID, disc.ID)
	}

	// Newest active session wins
	latest := &Session{CustomerID: c.ID, UniqueID: c.UniqueID, Status: StatusWaitingForAgent}
	if err := s.CreateSession(ctx, latest); err != nil {
		t.Fatalf("CreateSession failed: %v", err)
	}
	active, err = s.ActiveSessionForCustomer(ctx, c.ID)
	if err != nil {
		t.Fatalf("ActiveSessionForCustomer failed: %v", err)
	}
	if active.ID != latest.ID {
		t.Errorf("active session = %d, want %d", active.ID, latest.ID)
	}
}

func TestListWaitingSessions(t *testing.T) {
	s := newTestStore(t)
	defer s.Close()

	ctx := context.Background()
	c := testCustomer(t, s)

	first := &Session{CustomerID: c.ID, UniqueID: c.UniqueID, Status: StatusWaitingForAgent}
	if err := s.CreateSession(ctx, first); err != nil {
		t.Fatalf("CreateSession failed: %v", err)
	}
	second := &Session{CustomerID: c.ID, UniqueID: c.UniqueID, Status: StatusWaitingForAgent}
	if err := s.CreateSession(ctx, second); err != nil {
		t.Fatalf("CreateSession failed: %v", err)
	}
	other := &Session{CustomerID: c.ID, UniqueID: c.UniqueID, Status: StatusInProgress}
	if err := s.CreateSession(ctx, other); err != nil {
		t.Fatalf("CreateSession failed: %v", err)
	}

	waiting, err := s.ListWaitingSessions(ctx)
	if err != nil {
		t.Fatalf("ListWaitingSessions failed: %v", err)
	}
	if len(waiting) != 2 {
		t.Fatalf("expected 2 waiting sessions, got %d", len(waiting))
	}
	if waiting[0].ID != first.ID || waiting[1].ID != second.ID {
		t.Errorf("expected oldest-first order, got %d then %d", waiting[0].ID, waiting[1].ID)
	}
}

func TestReleaseAgent_KeepsStatus(t *testing.T) {
	s := newTestStore(t)
	defer s.Close()

	ctx := context.Background()
	c := testCustomer(t, s)
	a := testAgent(t, s, "EMP001")

	sess := &Session{CustomerID: c.ID, UniqueID: c.UniqueID, Status: StatusInProgress}
	if err := s.CreateSession(ctx, sess); err != nil {
		t.Fatalf("CreateSession failed: %v", err)
	}
	if err := s.AssignAgent(ctx, sess.ID, a.ID); err != nil {
		t.Fatalf("AssignAgent failed: %v", err)
	}

	if err := s.ReleaseAgent(ctx, sess.ID); err != nil {
		t.Fatalf("ReleaseAgent failed: %v", err)
	}

	got, err := s.GetSession(ctx, sess.ID)
	if err != nil {
		t.Fatalf("GetSession failed: %v", err)
	}
	if got.AgentID != nil {
		t.Errorf("expected AgentID to be cleared, got %v", *got.AgentID)
	}
	if got.Status != StatusInProgress {
		t.Errorf("Status = %q, want %q (release must not touch status)", got.Status, StatusInProgress)
	}
}

func TestFailSession(t *testing.T) {
	s := newTestStore(t)
	defer s.Close()

	ctx := context.Background()
	c := testCustomer(t, s)

	sess := &Session{CustomerID: c.ID, UniqueID: c.UniqueID, Status: StatusInProgress}
	if err := s.CreateSession(ctx, sess); err != nil {
		t.Fatalf("CreateSession failed: %v", err)
	}

	if err := s.FailSession(ctx, sess.ID, "session expired waiting for agent"); err != nil {
		t.Fatalf("FailSession failed: %v", err)
	}

	got, err := s.GetSession(ctx, sess.ID)
	if err != nil {
		t.Fatalf("GetSession failed: %v", err)
	}
	if got.Status != StatusFailed {
		t.Errorf("Status = %q, want %q", got.Status, StatusFailed)
	}
	if got.ErrorMessage != "session expired waiting for agent" {
		t.Errorf("ErrorMessage = %q", got.ErrorMessage)
	}
}

func TestReconcileOrphanedSessions(t *testing.T) {
	s := newTestStore(t)
	defer s.Close()

	ctx := context.Background()
	c := testCustomer(t, s)
	a := testAgent(t, s, "EMP001")

	live := &Session{CustomerID: c.ID, UniqueID: c.UniqueID, Status: StatusInProgress}
	if err := s.CreateSession(ctx, live); err != nil {
		t.Fatalf("CreateSession failed: %v", err)
	}
	if err := s.AssignAgent(ctx, live.ID, a.ID); err != nil {
		t.Fatalf("AssignAgent failed: %v", err)
	}

	waiting := &Session{CustomerID: c.ID, UniqueID: c.UniqueID, Status: StatusWaitingForAgent}
	if err := s.CreateSession(ctx, waiting); err != nil {
		t.Fatalf("CreateSession failed: %v", err)
	}

	finished := &Session{CustomerID: c.ID, UniqueID: c.UniqueID, Status: StatusCompleted}
	if err := s.CreateSession(ctx, finished); err != nil {
		t.Fatalf("CreateSession failed: %v", err)
	}

	n, err := s.ReconcileOrphanedSessions(ctx)
	if err != nil {
		t.Fatalf("ReconcileOrphanedSessions failed: %v", err)
	}
	if n != 2 {
		t.Errorf("expected 2 reconciled sessions, got %d", n)
	}

	got, err := s.GetSession(ctx, live.ID)
	if err != nil {
		t.Fatalf("GetSession failed: %v", err)
	}
	if got.Status != StatusDisconnected {
		t.Errorf("Status = %q, want %q", got.Status, StatusDisconnected)
	}
	if got.AgentID != nil {
		t.Error("expected agent assignment to be cleared")
	}

	got, err = s.GetSession(ctx, finished.ID)
	if err != nil {
		t.Fatalf("GetSession failed: %v", err)
	}
	if got.Status != StatusCompleted {
		t.Errorf("completed session touched: Status = %q", got.Status)
	}
}

func TestSessionLogs(t *testing.T) {
	s := newTestStore(t)
	defer s.Close()

	ctx := context.Background()
	c := testCustomer(t, s)

	sess := &Session{CustomerID: c.ID, UniqueID: c.UniqueID, Status: StatusInProgress}
	if err := s.CreateSession(ctx, sess); err != nil {
		t.Fatalf("CreateSession failed: %v", err)
	}

	entries := []*SessionLog{
		{SessionID: sess.ID, Category: LogPANDetection, Payload: `{"pan_number":"ABCDE1234F"}`},
		{SessionID: sess.ID, Category: LogLocation, Payload: `{"lat":12.97,"lon":77.59}`},
	}
	for _, e := range entries {
		if err := s.AppendSessionLog(ctx, e); err != nil {
			t.Fatalf("AppendSessionLog failed: %v", err)
		}
		if e.ID == "" {
			t.Error("expected log ID to be assigned")
		}
	}

	got, err := s.ListSessionLogs(ctx, sess.ID)
	if err != nil {
		t.Fatalf("ListSessionLogs failed: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("expected 2 log entries, got %d", len(got))
	}
	if got[0].Category != LogPANDetection {
		t.Errorf("Category = %q, want %q", got[0].Category, LogPANDetection)
	}
	if got[1].Payload != `{"lat":12.97,"lon":77.59}` {
		t.Errorf("Payload = %q", got[1].Payload)
	}
}

func TestUniqueIDFormat(t *testing.T) {
	seen := make(map[string]bool)
	for i := 0; i < 50; i++ {
		id := NewUniqueID()
		if len(id) != 10 {
			t.Fatalf("NewUniqueID length = %d, want 10", len(id))
		}
		for _, r := range id {
			if (r < 'A' || r > 'Z') && (r < '0' || r > '9') {
				t.Fatalf("unexpected character %q in %q", r, id)
			}
		}
		seen[id] = true
	}
	if len(seen) < 45 {
		t.Errorf("suspiciously many collisions: %d unique of 50", len(seen))
	}
}
