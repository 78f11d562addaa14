// ABOUTME: SQLite implementation of the Store interface using modernc.org/sqlite
// ABOUTME: Provides customer/agent/session persistence with automatic schema creation

package store

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"
)

// SQLiteStore implements the Store interface using SQLite
type SQLiteStore struct {
	db     *sql.DB
	logger *slog.Logger
}

// NewSQLiteStore creates a new SQLite store at the given path.
// The schema is automatically created if it doesn't exist.
// Parent directories are created if needed.
func NewSQLiteStore(path string) (*SQLiteStore, error) {
	logger := slog.Default().With("component", "store")

	// Ensure parent directory exists
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("creating database directory: %w", err)
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	// Enable WAL mode for better concurrent performance
	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		db.Close()
		return nil, fmt.Errorf("enabling WAL mode: %w", err)
	}

	// Enable foreign keys
	if _, err := db.Exec("PRAGMA foreign_keys=ON"); err != nil {
		db.Close()
		return nil, fmt.Errorf("enabling foreign keys: %w", err)
	}

	s := &SQLiteStore{
		db:     db,
		logger: logger,
	}

	if err := s.createSchema(); err != nil {
		db.Close()
		return nil, fmt.Errorf("creating schema: %w", err)
	}

	logger.Info("SQLite store initialized", "path", path)
	return s, nil
}

// createSchema creates the database tables if they don't exist
func (s *SQLiteStore) createSchema() error {
	schema := `
		CREATE TABLE IF NOT EXISTS customers (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			unique_id TEXT UNIQUE NOT NULL,
			name TEXT NOT NULL,
			mobile TEXT NOT NULL,
			email TEXT NOT NULL,
			kyc_link TEXT NOT NULL DEFAULT '',
			created_at TEXT NOT NULL
		);

		CREATE INDEX IF NOT EXISTS idx_customers_unique_id
			ON customers(unique_id);

		CREATE TABLE IF NOT EXISTS agents (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			employee_id TEXT UNIQUE NOT NULL,
			first_name TEXT NOT NULL,
			last_name TEXT NOT NULL,
			email TEXT UNIQUE NOT NULL,
			mobile TEXT NOT NULL DEFAULT '',
			role TEXT NOT NULL DEFAULT 'Agent',
			active INTEGER NOT NULL DEFAULT 1,
			restricted INTEGER NOT NULL DEFAULT 0,
			created_at TEXT NOT NULL,
			updated_at TEXT NOT NULL,

			CHECK (role IN ('Agent', 'QA', 'Lead', 'Admin'))
		);

		CREATE INDEX IF NOT EXISTS idx_agents_employee_id
			ON agents(employee_id);

		CREATE TABLE IF NOT EXISTS sessions (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			customer_id INTEGER NOT NULL REFERENCES customers(id),
			agent_id INTEGER REFERENCES agents(id),
			unique_id TEXT NOT NULL,
			status TEXT NOT NULL,
			scheduled_time TEXT,
			started_at TEXT,
			agent_assigned_at TEXT,
			completed_at TEXT,
			recording_path TEXT NOT NULL DEFAULT '',
			error_message TEXT NOT NULL DEFAULT '',
			created_at TEXT NOT NULL,

			CHECK (status IN (
				'pending',
				'scheduled',
				'started',
				'waiting_for_agent',
				'agent_joined',
				'in_progress',
				'completed',
				'failed',
				'disconnected',
				'declined',
				'expired'
			))
		);

		CREATE INDEX IF NOT EXISTS idx_sessions_customer
			ON sessions(customer_id, created_at);

		CREATE INDEX IF NOT EXISTS idx_sessions_status
			ON sessions(status);

		CREATE TABLE IF NOT EXISTS session_logs (
			id TEXT PRIMARY KEY,
			session_id INTEGER NOT NULL REFERENCES sessions(id),
			category TEXT NOT NULL,
			payload TEXT NOT NULL,
			created_at TEXT NOT NULL
		);

		CREATE INDEX IF NOT EXISTS idx_session_logs_session
			ON session_logs(session_id, created_at);
	`

	if _, err := s.db.Exec(schema); err != nil {
		return fmt.Errorf("executing schema: %w", err)
	}

	return nil
}

// Close closes the database connection
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

// isConstraintViolation checks if the error is a SQLite UNIQUE constraint violation
func isConstraintViolation(err error) bool {
	if err == nil {
		return false
	}
	errStr := err.Error()
	return strings.Contains(errStr, "UNIQUE constraint failed") ||
		strings.Contains(errStr, "constraint failed")
}

// ---- Customers ----

// CreateCustomer inserts a new customer and fills in its assigned ID.
// Returns ErrDuplicate if the unique_id is already taken.
func (s *SQLiteStore) CreateCustomer(ctx context.Context, c *Customer) error {
	if c.CreatedAt.IsZero() {
		c.CreatedAt = time.Now().UTC()
	}

	query := `
		INSERT INTO customers (unique_id, name, mobile, email, kyc_link, created_at)
		VALUES (?, ?, ?, ?, ?, ?)
	`

	res, err := s.db.ExecContext(ctx, query,
		c.UniqueID,
		c.Name,
		c.Mobile,
		c.Email,
		c.KYCLink,
		c.CreatedAt.UTC().Format(time.RFC3339),
	)
	if err != nil {
		if isConstraintViolation(err) {
			return ErrDuplicate
		}
		return fmt.Errorf("inserting customer: %w", err)
	}

	c.ID, err = res.LastInsertId()
	if err != nil {
		return fmt.Errorf("reading customer id: %w", err)
	}

	s.logger.Debug("created customer", "id", c.ID, "unique_id", c.UniqueID)
	return nil
}

func (s *SQLiteStore) scanCustomer(row interface{ Scan(...any) error }) (*Customer, error) {
	var c Customer
	var createdAtStr string

	err := row.Scan(
		&c.ID,
		&c.UniqueID,
		&c.Name,
		&c.Mobile,
		&c.Email,
		&c.KYCLink,
		&createdAtStr,
	)
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("scanning customer: %w", err)
	}

	c.CreatedAt, err = time.Parse(time.RFC3339, createdAtStr)
	if err != nil {
		return nil, fmt.Errorf("parsing created_at: %w", err)
	}

	return &c, nil
}

const customerColumns = "id, unique_id, name, mobile, email, kyc_link, created_at"

// GetCustomer retrieves a customer by ID.
// Returns ErrNotFound if the customer doesn't exist.
func (s *SQLiteStore) GetCustomer(ctx context.Context, id int64) (*Customer, error) {
	row := s.db.QueryRowContext(ctx,
		"SELECT "+customerColumns+" FROM customers WHERE id = ?", id)
	return s.scanCustomer(row)
}

// GetCustomerByUniqueID retrieves a customer by its link identifier.
// Returns ErrNotFound if no customer has that identifier.
func (s *SQLiteStore) GetCustomerByUniqueID(ctx context.Context, uniqueID string) (*Customer, error) {
	row := s.db.QueryRowContext(ctx,
		"SELECT "+customerColumns+" FROM customers WHERE unique_id = ?", uniqueID)
	return s.scanCustomer(row)
}

// UpdateCustomerLink sets the generated KYC link for a customer.
// Returns ErrNotFound if the customer doesn't exist.
func (s *SQLiteStore) UpdateCustomerLink(ctx context.Context, id int64, link string) error {
	res, err := s.db.ExecContext(ctx,
		"UPDATE customers SET kyc_link = ? WHERE id = ?", link, id)
	if err != nil {
		return fmt.Errorf("updating customer link: %w", err)
	}

	rows, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("checking rows affected: %w", err)
	}
	if rows == 0 {
		return ErrNotFound
	}

	return nil
}

// ListCustomers returns customers ordered by creation time, newest first.
func (s *SQLiteStore) ListCustomers(ctx context.Context, offset, limit int) ([]*Customer, error) {
	if limit <= 0 {
		limit = 100
	}

	rows, err := s.db.QueryContext(ctx,
		"SELECT "+customerColumns+" FROM customers ORDER BY created_at DESC LIMIT ? OFFSET ?",
		limit, offset)
	if err != nil {
		return nil, fmt.Errorf("querying customers: %w", err)
	}
	defer rows.Close()

	var customers []*Customer
	for rows.Next() {
		c, err := s.scanCustomer(rows)
		if err != nil {
			return nil, err
		}
		customers = append(customers, c)
	}
	return customers, rows.Err()
}

// ---- Agents ----

// CreateAgent inserts a new agent and fills in its assigned ID.
// Returns ErrDuplicate if the employee_id or email is already taken.
func (s *SQLiteStore) CreateAgent(ctx context.Context, a *Agent) error {
	now := time.Now().UTC()
	if a.CreatedAt.IsZero() {
		a.CreatedAt = now
	}
	if a.UpdatedAt.IsZero() {
		a.UpdatedAt = now
	}
	if a.Role == "" {
		a.Role = RoleAgent
	}

	query := `
		INSERT INTO agents (employee_id, first_name, last_name, email, mobile, role, active, restricted, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`

	res, err := s.db.ExecContext(ctx, query,
		a.EmployeeID,
		a.FirstName,
		a.LastName,
		a.Email,
		a.Mobile,
		string(a.Role),
		boolToInt(a.Active),
		boolToInt(a.Restricted),
		a.CreatedAt.UTC().Format(time.RFC3339),
		a.UpdatedAt.UTC().Format(time.RFC3339),
	)
	if err != nil {
		if isConstraintViolation(err) {
			return ErrDuplicate
		}
		return fmt.Errorf("inserting agent: %w", err)
	}

	a.ID, err = res.LastInsertId()
	if err != nil {
		return fmt.Errorf("reading agent id: %w", err)
	}

	s.logger.Debug("created agent", "id", a.ID, "employee_id", a.EmployeeID)
	return nil
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}

const agentColumns = "id, employee_id, first_name, last_name, email, mobile, role, active, restricted, created_at, updated_at"

func (s *SQLiteStore) scanAgent(row interface{ Scan(...any) error }) (*Agent, error) {
	var a Agent
	var role string
	var active, restricted int
	var createdAtStr, updatedAtStr string

	err := row.Scan(
		&a.ID,
		&a.EmployeeID,
		&a.FirstName,
		&a.LastName,
		&a.Email,
		&a.Mobile,
		&role,
		&active,
		&restricted,
		&createdAtStr,
		&updatedAtStr,
	)
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("scanning agent: %w", err)
	}

	a.Role = AgentRole(role)
	a.Active = active != 0
	a.Restricted = restricted != 0

	a.CreatedAt, err = time.Parse(time.RFC3339, createdAtStr)
	if err != nil {
		return nil, fmt.Errorf("parsing created_at: %w", err)
	}
	a.UpdatedAt, err = time.Parse(time.RFC3339, updatedAtStr)
	if err != nil {
		return nil, fmt.Errorf("parsing updated_at: %w", err)
	}

	return &a, nil
}

// GetAgent retrieves an agent by ID.
// Returns ErrNotFound if the agent doesn't exist.
func (s *SQLiteStore) GetAgent(ctx context.Context, id int64) (*Agent, error) {
	row := s.db.QueryRowContext(ctx,
		"SELECT "+agentColumns+" FROM agents WHERE id = ?", id)
	return s.scanAgent(row)
}

// GetAgentByEmployeeID retrieves an agent by employee ID.
// Returns ErrNotFound if no agent has that employee ID.
func (s *SQLiteStore) GetAgentByEmployeeID(ctx context.Context, employeeID string) (*Agent, error) {
	row := s.db.QueryRowContext(ctx,
		"SELECT "+agentColumns+" FROM agents WHERE employee_id = ?", employeeID)
	return s.scanAgent(row)
}

// ListAgents returns agents ordered by creation time, newest first.
func (s *SQLiteStore) ListAgents(ctx context.Context, offset, limit int) ([]*Agent, error) {
	if limit <= 0 {
		limit = 100
	}

	rows, err := s.db.QueryContext(ctx,
		"SELECT "+agentColumns+" FROM agents ORDER BY created_at DESC LIMIT ? OFFSET ?",
		limit, offset)
	if err != nil {
		return nil, fmt.Errorf("querying agents: %w", err)
	}
	defer rows.Close()

	var agents []*Agent
	for rows.Next() {
		a, err := s.scanAgent(rows)
		if err != nil {
			return nil, err
		}
		agents = append(agents, a)
	}
	return agents, rows.Err()
}

// ListAvailableAgents returns active, unrestricted agents.
func (s *SQLiteStore) ListAvailableAgents(ctx context.Context) ([]*Agent, error) {
	rows, err := s.db.QueryContext(ctx,
		"SELECT "+agentColumns+" FROM agents WHERE active = 1 AND restricted = 0 ORDER BY employee_id")
	if err != nil {
		return nil, fmt.Errorf("querying available agents: %w", err)
	}
	defer rows.Close()

	var agents []*Agent
	for rows.Next() {
		a, err := s.scanAgent(rows)
		if err != nil {
			return nil, err
		}
		agents = append(agents, a)
	}
	return agents, rows.Err()
}

// ---- Sessions ----

// CreateSession inserts a new session and fills in its assigned ID.
func (s *SQLiteStore) CreateSession(ctx context.Context, sess *Session) error {
	if sess.CreatedAt.IsZero() {
		sess.CreatedAt = time.Now().UTC()
	}
	if sess.Status == "" {
		sess.Status = StatusPending
	}

	query := `
		INSERT INTO sessions (customer_id, agent_id, unique_id, status, scheduled_time, started_at, agent_assigned_at, completed_at, recording_path, error_message, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`

	res, err := s.db.ExecContext(ctx, query,
		sess.CustomerID,
		nullableID(sess.AgentID),
		sess.UniqueID,
		string(sess.Status),
		nullableTime(sess.ScheduledTime),
		nullableTime(sess.StartedAt),
		nullableTime(sess.AgentAssignedAt),
		nullableTime(sess.CompletedAt),
		sess.RecordingPath,
		sess.ErrorMessage,
		sess.CreatedAt.UTC().Format(time.RFC3339),
	)
	if err != nil {
		return fmt.Errorf("inserting session: %w", err)
	}

	sess.ID, err = res.LastInsertId()
	if err != nil {
		return fmt.Errorf("reading session id: %w", err)
	}

	s.logger.Debug("created session", "id", sess.ID, "customer_id", sess.CustomerID, "status", sess.Status)
	return nil
}

func nullableID(id *int64) any {
	if id == nil {
		return nil
	}
	return *id
}

func nullableTime(t *time.Time) any {
	if t == nil {
		return nil
	}
	return t.UTC().Format(time.RFC3339)
}

func parseNullableTime(ns sql.NullString, field string) (*time.Time, error) {
	if !ns.Valid {
		return nil, nil
	}
	t, err := time.Parse(time.RFC3339, ns.String)
	if err != nil {
		return nil, fmt.Errorf("parsing %s: %w", field, err)
	}
	return &t, nil
}

const sessionColumns = "id, customer_id, agent_id, unique_id, status, scheduled_time, started_at, agent_assigned_at, completed_at, recording_path, error_message, created_at"

func (s *SQLiteStore) scanSession(row interface{ Scan(...any) error }) (*Session, error) {
	var sess Session
	var status string
	var agentID sql.NullInt64
	var scheduled, started, assigned, completed sql.NullString
	var createdAtStr string

	err := row.Scan(
		&sess.ID,
		&sess.CustomerID,
		&agentID,
		&sess.UniqueID,
		&status,
		&scheduled,
		&started,
		&assigned,
		&completed,
		&sess.RecordingPath,
		&sess.ErrorMessage,
		&createdAtStr,
	)
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("scanning session: %w", err)
	}

	sess.Status = Status(status)
	if agentID.Valid {
		id := agentID.Int64
		sess.AgentID = &id
	}

	if sess.ScheduledTime, err = parseNullableTime(scheduled, "scheduled_time"); err != nil {
		return nil, err
	}
	if sess.StartedAt, err = parseNullableTime(started, "started_at"); err != nil {
		return nil, err
	}
	if sess.AgentAssignedAt, err = parseNullableTime(assigned, "agent_assigned_at"); err != nil {
		return nil, err
	}
	if sess.CompletedAt, err = parseNullableTime(completed, "completed_at"); err != nil {
		return nil, err
	}

	sess.CreatedAt, err = time.Parse(time.RFC3339, createdAtStr)
	if err != nil {
		return nil, fmt.Errorf("parsing created_at: %w", err)
	}

	return &sess, nil
}

// GetSession retrieves a session by ID.
// Returns ErrNotFound if the session doesn't exist.
func (s *SQLiteStore) GetSession(ctx context.Context, id int64) (*Session, error) {
	row := s.db.QueryRowContext(ctx,
		"SELECT "+sessionColumns+" FROM sessions WHERE id = ?", id)
	return s.scanSession(row)
}

// ActiveSessionForCustomer returns the newest session for the customer
// whose status still counts as in-flight. Returns ErrNotFound if the
// customer has no active session.
func (s *SQLiteStore) ActiveSessionForCustomer(ctx context.Context, customerID int64) (*Session, error) {
	query := `
		SELECT ` + sessionColumns + `
		FROM sessions
		WHERE customer_id = ?
		  AND status IN ('started', 'waiting_for_agent', 'agent_joined', 'in_progress', 'disconnected')
		ORDER BY id DESC
		LIMIT 1
	`

	row := s.db.QueryRowContext(ctx, query, customerID)
	return s.scanSession(row)
}

// ListWaitingSessions returns sessions waiting for an agent, oldest first.
func (s *SQLiteStore) ListWaitingSessions(ctx context.Context) ([]*Session, error) {
	query := `
		SELECT ` + sessionColumns + `
		FROM sessions
		WHERE status = 'waiting_for_agent'
		ORDER BY id
	`

	rows, err := s.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("querying waiting sessions: %w", err)
	}
	defer rows.Close()

	var sessions []*Session
	for rows.Next() {
		sess, err := s.scanSession(rows)
		if err != nil {
			return nil, err
		}
		sessions = append(sessions, sess)
	}
	return sessions, rows.Err()
}

// UpdateSessionStatus sets the session status.
// Returns ErrNotFound if the session doesn't exist.
func (s *SQLiteStore) UpdateSessionStatus(ctx context.Context, id int64, status Status) error {
	res, err := s.db.ExecContext(ctx,
		"UPDATE sessions SET status = ? WHERE id = ?", string(status), id)
	if err != nil {
		return fmt.Errorf("updating session status: %w", err)
	}

	rows, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("checking rows affected: %w", err)
	}
	if rows == 0 {
		return ErrNotFound
	}

	s.logger.Debug("updated session status", "id", id, "status", status)
	return nil
}

// MarkSessionWaiting moves a session into waiting_for_agent and clears
// any agent assignment.
func (s *SQLiteStore) MarkSessionWaiting(ctx context.Context, id int64) error {
	res, err := s.db.ExecContext(ctx,
		"UPDATE sessions SET status = 'waiting_for_agent', agent_id = NULL, agent_assigned_at = NULL WHERE id = ?", id)
	if err != nil {
		return fmt.Errorf("marking session waiting: %w", err)
	}

	rows, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("checking rows affected: %w", err)
	}
	if rows == 0 {
		return ErrNotFound
	}

	return nil
}

// AssignAgent records the agent on the session and timestamps the
// assignment. Status is updated separately by the coordinator.
func (s *SQLiteStore) AssignAgent(ctx context.Context, sessionID, agentID int64) error {
	res, err := s.db.ExecContext(ctx,
		"UPDATE sessions SET agent_id = ?, agent_assigned_at = ? WHERE id = ?",
		agentID, time.Now().UTC().Format(time.RFC3339), sessionID)
	if err != nil {
		return fmt.Errorf("assigning agent: %w", err)
	}

	rows, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("checking rows affected: %w", err)
	}
	if rows == 0 {
		return ErrNotFound
	}

	s.logger.Debug("assigned agent to session", "session_id", sessionID, "agent_id", agentID)
	return nil
}

// ReleaseAgent clears the agent assignment on the session without
// touching its status.
func (s *SQLiteStore) ReleaseAgent(ctx context.Context, sessionID int64) error {
	res, err := s.db.ExecContext(ctx,
		"UPDATE sessions SET agent_id = NULL, agent_assigned_at = NULL WHERE id = ?", sessionID)
	if err != nil {
		return fmt.Errorf("releasing agent: %w", err)
	}

	rows, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("checking rows affected: %w", err)
	}
	if rows == 0 {
		return ErrNotFound
	}

	return nil
}

// CompleteSession marks the session completed and records the recording
// artifact path.
func (s *SQLiteStore) CompleteSession(ctx context.Context, id int64, recordingPath string) error {
	res, err := s.db.ExecContext(ctx,
		"UPDATE sessions SET status = 'completed', completed_at = ?, recording_path = ? WHERE id = ?",
		time.Now().UTC().Format(time.RFC3339), recordingPath, id)
	if err != nil {
		return fmt.Errorf("completing session: %w", err)
	}

	rows, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("checking rows affected: %w", err)
	}
	if rows == 0 {
		return ErrNotFound
	}

	s.logger.Info("session completed", "id", id, "recording_path", recordingPath)
	return nil
}

// FailSession marks the session failed with an error message.
func (s *SQLiteStore) FailSession(ctx context.Context, id int64, message string) error {
	res, err := s.db.ExecContext(ctx,
		"UPDATE sessions SET status = 'failed', error_message = ?, completed_at = ? WHERE id = ?",
		message, time.Now().UTC().Format(time.RFC3339), id)
	if err != nil {
		return fmt.Errorf("failing session: %w", err)
	}

	rows, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("checking rows affected: %w", err)
	}
	if rows == 0 {
		return ErrNotFound
	}

	return nil
}

// ReconcileOrphanedSessions marks sessions that were live when the
// process last stopped as disconnected. Called once at startup, before
// any connections are accepted. Returns the number of sessions touched.
func (s *SQLiteStore) ReconcileOrphanedSessions(ctx context.Context) (int, error) {
	res, err := s.db.ExecContext(ctx, `
		UPDATE sessions
		SET status = 'disconnected', agent_id = NULL, agent_assigned_at = NULL
		WHERE status IN ('started', 'waiting_for_agent', 'agent_joined', 'in_progress')
	`)
	if err != nil {
		return 0, fmt.Errorf("reconciling orphaned sessions: %w", err)
	}

	rows, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("checking rows affected: %w", err)
	}

	if rows > 0 {
		s.logger.Info("reconciled orphaned sessions", "count", rows)
	}
	return int(rows), nil
}

// ---- Session logs ----

// AppendSessionLog inserts an audit entry. The entry's ID and
// timestamp are filled in if unset.
func (s *SQLiteStore) AppendSessionLog(ctx context.Context, entry *SessionLog) error {
	if entry.ID == "" {
		entry.ID = uuid.New().String()
	}
	if entry.CreatedAt.IsZero() {
		entry.CreatedAt = time.Now().UTC()
	}

	query := `
		INSERT INTO session_logs (id, session_id, category, payload, created_at)
		VALUES (?, ?, ?, ?, ?)
	`

	_, err := s.db.ExecContext(ctx, query,
		entry.ID,
		entry.SessionID,
		entry.Category,
		entry.Payload,
		entry.CreatedAt.UTC().Format(time.RFC3339),
	)
	if err != nil {
		return fmt.Errorf("inserting session log: %w", err)
	}

	return nil
}

// ListSessionLogs returns all audit entries for a session, oldest first.
func (s *SQLiteStore) ListSessionLogs(ctx context.Context, sessionID int64) ([]*SessionLog, error) {
	query := `
		SELECT id, session_id, category, payload, created_at
		FROM session_logs
		WHERE session_id = ?
		ORDER BY created_at, id
	`

	rows, err := s.db.QueryContext(ctx, query, sessionID)
	if err != nil {
		return nil, fmt.Errorf("querying session logs: %w", err)
	}
	defer rows.Close()

	var entries []*SessionLog
	for rows.Next() {
		var e SessionLog
		var createdAtStr string
		if err := rows.Scan(&e.ID, &e.SessionID, &e.Category, &e.Payload, &createdAtStr); err != nil {
			return nil, fmt.Errorf("scanning session log: %w", err)
		}
		e.CreatedAt, err = time.Parse(time.RFC3339, createdAtStr)
		if err != nil {
			return nil, fmt.Errorf("parsing created_at: %w", err)
		}
		entries = append(entries, &e)
	}
	return entries, rows.Err()
}
