/*
Package sqlite provides a SQLite-backed implementation of engine.Store.

PURPOSE:
  Persists intervals, leave requests, the employee registry, and the
  audit log using SQLite. The same patterns apply to PostgreSQL - only
  minor SQL dialect differences.

INTERFACES IMPLEMENTED:
  engine.Store:         Intervals, leave requests, employees
  engine.AuditRecorder: Append-only audit log

CONSISTENCY:
  The engine serializes mutations per employee above this layer, so the
  store only guarantees read-committed behavior. A sync.RWMutex keeps
  SQLite happy under concurrent access; with PostgreSQL, database-level
  concurrency control replaces it.

TRANSIENT FAILURES:
  Driver-level failures on reads are wrapped with
  engine.ErrStoreUnavailable so the engine's bounded read-side retry can
  recognize them.

WAL MODE:
  SQLite is opened with WAL (Write-Ahead Logging): multiple readers
  don't block, single writer at a time, better crash recovery.

MIGRATION:
  Schema is auto-migrated on New(). For production, use a proper
  migration tool (golang-migrate, goose) with versioned migrations.

USAGE:
  st, err := sqlite.New("./data/worktime.db")
  if err != nil {
      log.Fatal(err)
  }
  defer st.Close()

SEE ALSO:
  - engine/store.go: Interface definitions
  - engine/store/memory.go: In-memory implementation for testing
*/
package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"github.com/tempus/worktime-engine/engine"
)

// timeFormat is RFC3339 with fixed-width nanoseconds. Zero-padding keeps
// lexicographic string comparison in SQL consistent with time ordering.
const timeFormat = "2006-01-02T15:04:05.000000000Z07:00"

// Store implements engine.Store and engine.AuditRecorder using SQLite.
type Store struct {
	db *sql.DB
	mu sync.RWMutex
}

// New creates a new SQLite store with the given database path.
// Use ":memory:" for an in-memory database.
func New(dbPath string) (*Store, error) {
	db, err := sql.Open("sqlite3", dbPath+"?_foreign_keys=on&_journal_mode=WAL")
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	store := &Store{db: db}
	if err := store.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to migrate database: %w", err)
	}
	return store, nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) migrate() error {
	schema := `
	CREATE TABLE IF NOT EXISTS intervals (
		id TEXT PRIMARY KEY,
		employee_id TEXT NOT NULL,
		start_at TEXT NOT NULL,
		end_at TEXT,
		description TEXT NOT NULL DEFAULT '',
		manual BOOLEAN NOT NULL DEFAULT FALSE,
		approved BOOLEAN NOT NULL DEFAULT FALSE,
		approved_by TEXT,
		approved_at TEXT,
		created_at TEXT NOT NULL,
		updated_at TEXT NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_intervals_employee_start
		ON intervals(employee_id, start_at);

	-- Backstop for the one-open-interval invariant. The engine enforces
	-- it inside the per-employee region; this catches anything that
	-- slips past (a second writer process, a bad import).
	CREATE UNIQUE INDEX IF NOT EXISTS idx_intervals_one_open
		ON intervals(employee_id) WHERE end_at IS NULL;

	CREATE INDEX IF NOT EXISTS idx_intervals_pending
		ON intervals(manual, approved) WHERE manual AND NOT approved;

	CREATE TABLE IF NOT EXISTS leave_requests (
		id TEXT PRIMARY KEY,
		employee_id TEXT NOT NULL,
		leave_type TEXT NOT NULL,
		start_date TEXT NOT NULL,
		end_date TEXT NOT NULL,
		status TEXT NOT NULL DEFAULT 'pending',
		reason TEXT NOT NULL DEFAULT '',
		decided_by TEXT,
		decided_at TEXT,
		rejection_reason TEXT NOT NULL DEFAULT '',
		created_at TEXT NOT NULL,
		updated_at TEXT NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_leave_requests_employee
		ON leave_requests(employee_id);
	CREATE INDEX IF NOT EXISTS idx_leave_requests_status
		ON leave_requests(status);

	CREATE TABLE IF NOT EXISTS employees (
		id TEXT PRIMARY KEY,
		name TEXT NOT NULL,
		email TEXT NOT NULL DEFAULT '',
		role TEXT NOT NULL DEFAULT 'normal',
		active BOOLEAN NOT NULL DEFAULT TRUE
	);

	-- Audit log (append-only; no UPDATE or DELETE paths exist)
	CREATE TABLE IF NOT EXISTS audit_events (
		id TEXT PRIMARY KEY,
		actor_id TEXT NOT NULL,
		employee_id TEXT NOT NULL,
		action TEXT NOT NULL,
		resource_id TEXT NOT NULL,
		old_status TEXT NOT NULL DEFAULT '',
		new_status TEXT NOT NULL DEFAULT '',
		at TEXT NOT NULL,
		detail_json TEXT
	);

	CREATE INDEX IF NOT EXISTS idx_audit_events_employee
		ON audit_events(employee_id, at);
	`
	_, err := s.db.Exec(schema)
	return err
}

// =============================================================================
// INTERVALS (engine.IntervalStore)
// =============================================================================

const intervalColumns = `id, employee_id, start_at, end_at, description, manual, approved,
	approved_by, approved_at, created_at, updated_at`

func (s *Store) CreateInterval(ctx context.Context, iv engine.Interval) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	query := `
		INSERT INTO intervals
		(id, employee_id, start_at, end_at, description, manual, approved,
		 approved_by, approved_at, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`
	_, err := s.db.ExecContext(ctx, query,
		iv.ID,
		iv.EmployeeID,
		iv.Start.UTC().Format(timeFormat),
		nullTime(iv.End),
		iv.Description,
		iv.Manual,
		iv.Approved,
		nullEmployee(iv.ApprovedBy),
		nullTime(iv.ApprovedAt),
		iv.CreatedAt.UTC().Format(timeFormat),
		iv.UpdatedAt.UTC().Format(timeFormat),
	)
	if err != nil {
		return fmt.Errorf("failed to insert interval: %w", err)
	}
	return nil
}

func (s *Store) GetInterval(ctx context.Context, id engine.IntervalID) (*engine.Interval, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	row := s.db.QueryRowContext(ctx,
		`SELECT `+intervalColumns+` FROM intervals WHERE id = ?`, id)
	iv, err := scanInterval(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &iv, nil
}

func (s *Store) UpdateInterval(ctx context.Context, iv engine.Interval) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	query := `
		UPDATE intervals
		SET start_at = ?, end_at = ?, description = ?, manual = ?, approved = ?,
		    approved_by = ?, approved_at = ?, updated_at = ?
		WHERE id = ?
	`
	res, err := s.db.ExecContext(ctx, query,
		iv.Start.UTC().Format(timeFormat),
		nullTime(iv.End),
		iv.Description,
		iv.Manual,
		iv.Approved,
		nullEmployee(iv.ApprovedBy),
		nullTime(iv.ApprovedAt),
		iv.UpdatedAt.UTC().Format(timeFormat),
		iv.ID,
	)
	if err != nil {
		return fmt.Errorf("failed to update interval: %w", err)
	}
	n, _ := res.RowsAffected()
	if n == 0 {
		return &engine.NotFoundError{Kind: "interval", ID: string(iv.ID)}
	}
	return nil
}

func (s *Store) DeleteInterval(ctx context.Context, id engine.IntervalID) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	res, err := s.db.ExecContext(ctx, `DELETE FROM intervals WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("failed to delete interval: %w", err)
	}
	n, _ := res.RowsAffected()
	if n == 0 {
		return &engine.NotFoundError{Kind: "interval", ID: string(id)}
	}
	return nil
}

func (s *Store) ListIntervals(ctx context.Context, employeeID engine.EmployeeID, from, to time.Time) ([]engine.Interval, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	// Intersects [from, to); open intervals (end_at IS NULL) extend to
	// +inf and therefore only need start_at < to.
	query := `
		SELECT ` + intervalColumns + `
		FROM intervals
		WHERE employee_id = ?
		  AND start_at < ?
		  AND (end_at IS NULL OR end_at > ?)
		ORDER BY start_at ASC, id ASC
	`
	rows, err := s.db.QueryContext(ctx, query,
		employeeID,
		to.UTC().Format(timeFormat),
		from.UTC().Format(timeFormat),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to query intervals: %w: %w", err, engine.ErrStoreUnavailable)
	}
	defer rows.Close()
	return collectIntervals(rows)
}

func (s *Store) OpenInterval(ctx context.Context, employeeID engine.EmployeeID) (*engine.Interval, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	row := s.db.QueryRowContext(ctx,
		`SELECT `+intervalColumns+` FROM intervals WHERE employee_id = ? AND end_at IS NULL`,
		employeeID)
	iv, err := scanInterval(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &iv, nil
}

func (s *Store) PendingIntervals(ctx context.Context) ([]engine.Interval, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	query := `
		SELECT ` + intervalColumns + `
		FROM intervals
		WHERE manual AND NOT approved
		ORDER BY created_at ASC, id ASC
	`
	rows, err := s.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to query pending intervals: %w: %w", err, engine.ErrStoreUnavailable)
	}
	defer rows.Close()
	return collectIntervals(rows)
}

// =============================================================================
// LEAVE REQUESTS (engine.LeaveStore)
// =============================================================================

const requestColumns = `id, employee_id, leave_type, start_date, end_date, status, reason,
	decided_by, decided_at, rejection_reason, created_at, updated_at`

func (s *Store) CreateLeaveRequest(ctx context.Context, lr engine.LeaveRequest) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	query := `
		INSERT INTO leave_requests
		(id, employee_id, leave_type, start_date, end_date, status, reason,
		 decided_by, decided_at, rejection_reason, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`
	_, err := s.db.ExecContext(ctx, query,
		lr.ID,
		lr.EmployeeID,
		lr.Type,
		lr.StartDate.UTC().Format("2006-01-02"),
		lr.EndDate.UTC().Format("2006-01-02"),
		lr.Status,
		lr.Reason,
		nullEmployee(lr.DecidedBy),
		nullTime(lr.DecidedAt),
		lr.RejectionReason,
		lr.CreatedAt.UTC().Format(timeFormat),
		lr.UpdatedAt.UTC().Format(timeFormat),
	)
	if err != nil {
		return fmt.Errorf("failed to insert leave request: %w", err)
	}
	return nil
}

func (s *Store) GetLeaveRequest(ctx context.Context, id engine.RequestID) (*engine.LeaveRequest, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	row := s.db.QueryRowContext(ctx,
		`SELECT `+requestColumns+` FROM leave_requests WHERE id = ?`, id)
	lr, err := scanLeaveRequest(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &lr, nil
}

func (s *Store) UpdateLeaveRequest(ctx context.Context, lr engine.LeaveRequest) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	query := `
		UPDATE leave_requests
		SET leave_type = ?, start_date = ?, end_date = ?, status = ?, reason = ?,
		    decided_by = ?, decided_at = ?, rejection_reason = ?, updated_at = ?
		WHERE id = ?
	`
	res, err := s.db.ExecContext(ctx, query,
		lr.Type,
		lr.StartDate.UTC().Format("2006-01-02"),
		lr.EndDate.UTC().Format("2006-01-02"),
		lr.Status,
		lr.Reason,
		nullEmployee(lr.DecidedBy),
		nullTime(lr.DecidedAt),
		lr.RejectionReason,
		lr.UpdatedAt.UTC().Format(timeFormat),
		lr.ID,
	)
	if err != nil {
		return fmt.Errorf("failed to update leave request: %w", err)
	}
	n, _ := res.RowsAffected()
	if n == 0 {
		return &engine.NotFoundError{Kind: "leave request", ID: string(lr.ID)}
	}
	return nil
}

func (s *Store) ListLeaveRequests(ctx context.Context, employeeID engine.EmployeeID) ([]engine.LeaveRequest, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	query := `
		SELECT ` + requestColumns + `
		FROM leave_requests
		WHERE employee_id = ?
		ORDER BY created_at DESC, id ASC
	`
	rows, err := s.db.QueryContext(ctx, query, employeeID)
	if err != nil {
		return nil, fmt.Errorf("failed to query leave requests: %w: %w", err, engine.ErrStoreUnavailable)
	}
	defer rows.Close()
	return collectLeaveRequests(rows)
}

func (s *Store) PendingLeaveRequests(ctx context.Context) ([]engine.LeaveRequest, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	query := `
		SELECT ` + requestColumns + `
		FROM leave_requests
		WHERE status = 'pending'
		ORDER BY created_at ASC, id ASC
	`
	rows, err := s.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to query pending leave requests: %w: %w", err, engine.ErrStoreUnavailable)
	}
	defer rows.Close()
	return collectLeaveRequests(rows)
}

// =============================================================================
// EMPLOYEES (engine.EmployeeStore)
// =============================================================================

func (s *Store) PutEmployee(ctx context.Context, e engine.Employee) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	query := `
		INSERT INTO employees (id, name, email, role, active)
		VALUES (?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET name = excluded.name, email = excluded.email,
			role = excluded.role, active = excluded.active
	`
	_, err := s.db.ExecContext(ctx, query, e.ID, e.Name, e.Email, e.Role, e.Active)
	if err != nil {
		return fmt.Errorf("failed to upsert employee: %w", err)
	}
	return nil
}

func (s *Store) GetEmployee(ctx context.Context, id engine.EmployeeID) (*engine.Employee, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var e engine.Employee
	err := s.db.QueryRowContext(ctx,
		`SELECT id, name, email, role, active FROM employees WHERE id = ?`, id,
	).Scan(&e.ID, &e.Name, &e.Email, &e.Role, &e.Active)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get employee: %w", err)
	}
	return &e, nil
}

func (s *Store) ListEmployees(ctx context.Context) ([]engine.Employee, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rows, err := s.db.QueryContext(ctx,
		`SELECT id, name, email, role, active FROM employees ORDER BY id ASC`)
	if err != nil {
		return nil, fmt.Errorf("failed to query employees: %w: %w", err, engine.ErrStoreUnavailable)
	}
	defer rows.Close()

	var out []engine.Employee
	for rows.Next() {
		var e engine.Employee
		if err := rows.Scan(&e.ID, &e.Name, &e.Email, &e.Role, &e.Active); err != nil {
			return nil, fmt.Errorf("failed to scan employee: %w", err)
		}
		out = append(out, e)
	}
	return out, rows.Err()
}

// =============================================================================
// AUDIT LOG (engine.AuditRecorder)
// =============================================================================

// Record appends one audit event. Append-only; no update or delete path
// exists for this table.
func (s *Store) Record(ctx context.Context, event engine.AuditEvent) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	detailJSON, _ := json.Marshal(event.Detail)
	query := `
		INSERT INTO audit_events
		(id, actor_id, employee_id, action, resource_id, old_status, new_status, at, detail_json)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
	`
	_, err := s.db.ExecContext(ctx, query,
		event.ID,
		event.ActorID,
		event.EmployeeID,
		event.Action,
		event.ResourceID,
		event.OldStatus,
		event.NewStatus,
		event.At.UTC().Format(timeFormat),
		string(detailJSON),
	)
	if err != nil {
		return fmt.Errorf("failed to append audit event: %w", err)
	}
	return nil
}

// =============================================================================
// SCAN HELPERS
// =============================================================================

type rowScanner interface {
	Scan(dest ...any) error
}

func scanInterval(row rowScanner) (engine.Interval, error) {
	var (
		iv         engine.Interval
		startAt    string
		endAt      sql.NullString
		approvedBy sql.NullString
		approvedAt sql.NullString
		createdAt  string
		updatedAt  string
	)
	err := row.Scan(
		&iv.ID, &iv.EmployeeID, &startAt, &endAt, &iv.Description,
		&iv.Manual, &iv.Approved, &approvedBy, &approvedAt, &createdAt, &updatedAt,
	)
	if err != nil {
		return iv, err
	}

	iv.Start, _ = time.Parse(timeFormat, startAt)
	if endAt.Valid {
		t, _ := time.Parse(timeFormat, endAt.String)
		iv.End = &t
	}
	if approvedBy.Valid {
		id := engine.EmployeeID(approvedBy.String)
		iv.ApprovedBy = &id
	}
	if approvedAt.Valid {
		t, _ := time.Parse(timeFormat, approvedAt.String)
		iv.ApprovedAt = &t
	}
	iv.CreatedAt, _ = time.Parse(timeFormat, createdAt)
	iv.UpdatedAt, _ = time.Parse(timeFormat, updatedAt)
	return iv, nil
}

func collectIntervals(rows *sql.Rows) ([]engine.Interval, error) {
	var out []engine.Interval
	for rows.Next() {
		iv, err := scanInterval(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan interval: %w", err)
		}
		out = append(out, iv)
	}
	return out, rows.Err()
}

func scanLeaveRequest(row rowScanner) (engine.LeaveRequest, error) {
	var (
		lr        engine.LeaveRequest
		startDate string
		endDate   string
		decidedBy sql.NullString
		decidedAt sql.NullString
		createdAt string
		updatedAt string
	)
	err := row.Scan(
		&lr.ID, &lr.EmployeeID, &lr.Type, &startDate, &endDate, &lr.Status,
		&lr.Reason, &decidedBy, &decidedAt, &lr.RejectionReason, &createdAt, &updatedAt,
	)
	if err != nil {
		return lr, err
	}

	lr.StartDate, _ = time.Parse("2006-01-02", startDate)
	lr.EndDate, _ = time.Parse("2006-01-02", endDate)
	if decidedBy.Valid {
		id := engine.EmployeeID(decidedBy.String)
		lr.DecidedBy = &id
	}
	if decidedAt.Valid {
		t, _ := time.Parse(timeFormat, decidedAt.String)
		lr.DecidedAt = &t
	}
	lr.CreatedAt, _ = time.Parse(timeFormat, createdAt)
	lr.UpdatedAt, _ = time.Parse(timeFormat, updatedAt)
	return lr, nil
}

func collectLeaveRequests(rows *sql.Rows) ([]engine.LeaveRequest, error) {
	var out []engine.LeaveRequest
	for rows.Next() {
		lr, err := scanLeaveRequest(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan leave request: %w", err)
		}
		out = append(out, lr)
	}
	return out, rows.Err()
}

func nullTime(t *time.Time) any {
	if t == nil {
		return nil
	}
	return t.UTC().Format(timeFormat)
}

func nullEmployee(id *engine.EmployeeID) any {
	if id == nil {
		return nil
	}
	return string(*id)
}
