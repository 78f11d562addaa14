// ABOUTME: Store interface and data types for vkyc-gateway persistence
// ABOUTME: Defines Customer, Agent, Session, SessionLog and the Store interface

package store

import (
	"context"
	"crypto/rand"
	"errors"
	"math/big"
	"time"
)

// ErrNotFound is returned when a requested entity does not exist
var ErrNotFound = errors.New("not found")

// ErrDuplicate is returned when a unique constraint would be violated
// (customer unique_id, agent employee_id or email)
var ErrDuplicate = errors.New("already exists")

// Status is the durable state of a KYC session. The in-memory
// registry state (connections, waiting set, assignments) must always
// be derivable from this plus the set of live connections.
type Status string

// Session statuses
const (
	StatusPending         Status = "pending"
	StatusScheduled       Status = "scheduled"
	StatusStarted         Status = "started"
	StatusWaitingForAgent Status = "waiting_for_agent"
	StatusAgentJoined     Status = "agent_joined"
	StatusInProgress      Status = "in_progress"
	StatusCompleted       Status = "completed"
	StatusFailed          Status = "failed"
	StatusDisconnected    Status = "disconnected"
	StatusDeclined        Status = "declined"
	StatusExpired         Status = "expired"
)

// activeStatuses are the statuses that count as an in-flight session
// for the one-active-session-per-customer invariant.
var activeStatuses = []Status{
	StatusStarted,
	StatusWaitingForAgent,
	StatusAgentJoined,
	StatusInProgress,
	StatusDisconnected,
}

// IsActive reports whether the status counts as an in-flight session.
func (s Status) IsActive() bool {
	for _, a := range activeStatuses {
		if s == a {
			return true
		}
	}
	return false
}

// AgentRole is the role assigned to an agent account.
type AgentRole string

// Agent roles
const (
	RoleAgent AgentRole = "Agent"
	RoleQA    AgentRole = "QA"
	RoleLead  AgentRole = "Lead"
	RoleAdmin AgentRole = "Admin"
)

// ValidRole reports whether r is one of the known agent roles.
func ValidRole(r AgentRole) bool {
	switch r {
	case RoleAgent, RoleQA, RoleLead, RoleAdmin:
		return true
	}
	return false
}

// Customer is a person going through identity verification.
type Customer struct {
	ID        int64
	UniqueID  string
	Name      string
	Mobile    string
	Email     string
	KYCLink   string
	CreatedAt time.Time
}

// Agent is a human operator who handles KYC sessions.
type Agent struct {
	ID         int64
	EmployeeID string
	FirstName  string
	LastName   string
	Email      string
	Mobile     string
	Role       AgentRole
	Active     bool
	Restricted bool
	CreatedAt  time.Time
	UpdatedAt  time.Time
}

// FullName returns the agent's display name.
func (a *Agent) FullName() string {
	return a.FirstName + " " + a.LastName
}

// Session is the durable record of one verification encounter.
type Session struct {
	ID              int64
	CustomerID      int64
	AgentID         *int64
	UniqueID        string
	Status          Status
	ScheduledTime   *time.Time
	StartedAt       *time.Time
	AgentAssignedAt *time.Time
	CompletedAt     *time.Time
	RecordingPath   string
	ErrorMessage    string
	CreatedAt       time.Time
}

// SessionLog is an append-only audit entry attached to a session.
// Payload is an opaque JSON document; the store never inspects it.
type SessionLog struct {
	ID        string
	SessionID int64
	Category  string
	Payload   string
	CreatedAt time.Time
}

// Log categories written by the coordinator
const (
	LogPANDetection     = "pan_detection"
	LogAadhaarDetection = "aadhaar_detection"
	LogAadhaarFront     = "aadhaar_front_detection"
	LogAadhaarBack      = "aadhaar_back_detection"
	LogCaptureError     = "document_capture_error"
	LogDigiLocker       = "digilocker_verification"
	LogBiometric        = "biometric"
	LogLocation         = "location"
	LogIPAddress        = "ip_address"
)

// Store defines the interface for customer, agent and session persistence
type Store interface {
	// Customers
	CreateCustomer(ctx context.Context, c *Customer) error
	GetCustomer(ctx context.Context, id int64) (*Customer, error)
	GetCustomerByUniqueID(ctx context.Context, uniqueID string) (*Customer, error)
	UpdateCustomerLink(ctx context.Context, id int64, link string) error
	ListCustomers(ctx context.Context, offset, limit int) ([]*Customer, error)

	// Agents
	CreateAgent(ctx context.Context, a *Agent) error
	GetAgent(ctx context.Context, id int64) (*Agent, error)
	GetAgentByEmployeeID(ctx context.Context, employeeID string) (*Agent, error)
	ListAgents(ctx context.Context, offset, limit int) ([]*Agent, error)
	ListAvailableAgents(ctx context.Context) ([]*Agent, error)

	// Sessions
	CreateSession(ctx context.Context, s *Session) error
	GetSession(ctx context.Context, id int64) (*Session, error)
	ActiveSessionForCustomer(ctx context.Context, customerID int64) (*Session, error)
	ListWaitingSessions(ctx context.Context) ([]*Session, error)
	UpdateSessionStatus(ctx context.Context, id int64, status Status) error
	MarkSessionWaiting(ctx context.Context, id int64) error
	AssignAgent(ctx context.Context, sessionID, agentID int64) error
	ReleaseAgent(ctx context.Context, sessionID int64) error
	CompleteSession(ctx context.Context, id int64, recordingPath string) error
	FailSession(ctx context.Context, id int64, message string) error
	ReconcileOrphanedSessions(ctx context.Context) (int, error)

	// Session logs (append-only)
	AppendSessionLog(ctx context.Context, entry *SessionLog) error
	ListSessionLogs(ctx context.Context, sessionID int64) ([]*SessionLog, error)

	// Close releases any resources held by the store
	Close() error
}

const uniqueIDAlphabet = "ABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"

// NewUniqueID generates a 10-character customer identifier used in
// KYC links. Uses crypto/rand so links are not guessable.
func NewUniqueID() string {
	b := make([]byte, 10)
	max := big.NewInt(int64(len(uniqueIDAlphabet)))
	for i := range b {
		n, err := rand.Int(rand.Reader, max)
		if err != nil {
			// crypto/rand failure means the platform RNG is broken;
			// nothing sensible to do but panic.
			panic(err)
		}
		b[i] = uniqueIDAlphabet[n.Int64()]
	}
	return string(b)
}
