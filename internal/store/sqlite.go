package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/me/turnwheel/pkg/model"

	_ "modernc.org/sqlite"
)

// SQLiteStore implements Store using SQLite.
type SQLiteStore struct {
	db     *sql.DB
	logger *slog.Logger
}

// NewSQLiteStore opens (or creates) a SQLite database at dbPath and returns a Store.
// Use ":memory:" for an in-memory database (useful in tests).
func NewSQLiteStore(dbPath string, logger *slog.Logger) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite %s: %w", dbPath, err)
	}

	// Enable WAL mode for better concurrent read performance.
	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		db.Close()
		return nil, fmt.Errorf("pragma wal: %w", err)
	}
	if _, err := db.Exec("PRAGMA foreign_keys=ON"); err != nil {
		db.Close()
		return nil, fmt.Errorf("pragma fk: %w", err)
	}

	return &SQLiteStore{
		db:     db,
		logger: logger.With("component", "store"),
	}, nil
}

// Close closes the underlying database connection.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

// Migrate creates all required tables and indexes.
func (s *SQLiteStore) Migrate(ctx context.Context) error {
	s.logger.Debug("sql", "op", "migrate")
	return migrate(ctx, s.db)
}

// --- Session CRUD ---

func (s *SQLiteStore) CreateSession(ctx context.Context, sess *model.Session) error {
	s.logger.Debug("sql", "op", "insert", "table", "sessions", "id", sess.ID)

	orderJSON, err := json.Marshal(sess.Order)
	if err != nil {
		return fmt.Errorf("marshal order: %w", err)
	}

	var completedAt *string
	if sess.CompletedAt != nil {
		v := sess.CompletedAt.Format(time.RFC3339Nano)
		completedAt = &v
	}

	_, err = s.db.ExecContext(ctx,
		`INSERT INTO sessions (id, name, kind, participants, step_count, created_at, completed_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		sess.ID, sess.Name, sess.Kind, string(orderJSON), sess.StepCount,
		sess.CreatedAt.Format(time.RFC3339Nano), completedAt,
	)
	return err
}

func (s *SQLiteStore) GetSession(ctx context.Context, id string) (*model.Session, error) {
	s.logger.Debug("sql", "op", "select", "table", "sessions", "id", id)

	var sess model.Session
	var orderJSON, createdAt string
	var completedAt *string

	err := s.db.QueryRowContext(ctx,
		`SELECT id, name, kind, participants, step_count, created_at, completed_at
		 FROM sessions WHERE id = ?`, id,
	).Scan(&sess.ID, &sess.Name, &sess.Kind, &orderJSON, &sess.StepCount, &createdAt, &completedAt)

	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	if err := json.Unmarshal([]byte(orderJSON), &sess.Order); err != nil {
		return nil, fmt.Errorf("unmarshal order: %w", err)
	}
	sess.CreatedAt, _ = time.Parse(time.RFC3339Nano, createdAt)
	if completedAt != nil {
		t, _ := time.Parse(time.RFC3339Nano, *completedAt)
		sess.CompletedAt = &t
	}

	return &sess, nil
}

func (s *SQLiteStore) ListSessions(ctx context.Context, opts model.ListOptions) ([]*model.Session, int, error) {
	s.logger.Debug("sql", "op", "list", "table", "sessions", "limit", opts.Limit, "offset", opts.Offset)
	opts.Clamp()

	whereSQL := ""
	var countArgs []any
	if opts.Kind != "" {
		whereSQL = " WHERE kind = ?"
		countArgs = append(countArgs, opts.Kind)
	}

	var total int
	if err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM sessions`+whereSQL, countArgs...).Scan(&total); err != nil {
		return nil, 0, err
	}

	listArgs := append(countArgs, opts.Limit, opts.Offset)
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, name, kind, participants, step_count, created_at, completed_at
		 FROM sessions`+whereSQL+` ORDER BY created_at DESC LIMIT ? OFFSET ?`, listArgs...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var sessions []*model.Session
	for rows.Next() {
		var sess model.Session
		var orderJSON, createdAt string
		var completedAt *string

		if err := rows.Scan(&sess.ID, &sess.Name, &sess.Kind, &orderJSON,
			&sess.StepCount, &createdAt, &completedAt); err != nil {
			return nil, 0, err
		}
		json.Unmarshal([]byte(orderJSON), &sess.Order)
		sess.CreatedAt, _ = time.Parse(time.RFC3339Nano, createdAt)
		if completedAt != nil {
			t, _ := time.Parse(time.RFC3339Nano, *completedAt)
			sess.CompletedAt = &t
		}

		sessions = append(sessions, &sess)
	}
	return sessions, total, rows.Err()
}

func (s *SQLiteStore) UpdateSession(ctx context.Context, sess *model.Session) error {
	s.logger.Debug("sql", "op", "update", "table", "sessions", "id", sess.ID)

	var completedAt *string
	if sess.CompletedAt != nil {
		v := sess.CompletedAt.Format(time.RFC3339Nano)
		completedAt = &v
	}

	result, err := s.db.ExecContext(ctx,
		`UPDATE sessions SET name=?, step_count=?, completed_at=? WHERE id=?`,
		sess.Name, sess.StepCount, completedAt, sess.ID,
	)
	if err != nil {
		return err
	}
	n, _ := result.RowsAffected()
	if n == 0 {
		return fmt.Errorf("session %s not found", sess.ID)
	}
	return nil
}

func (s *SQLiteStore) DeleteSession(ctx context.Context, id string) error {
	s.logger.Debug("sql", "op", "delete", "table", "sessions", "id", id)

	result, err := s.db.ExecContext(ctx, `DELETE FROM sessions WHERE id = ?`, id)
	if err != nil {
		return err
	}
	n, _ := result.RowsAffected()
	if n == 0 {
		return fmt.Errorf("session %s not found", id)
	}
	return nil
}

// --- Step operations ---

func (s *SQLiteStore) AppendStep(ctx context.Context, step *model.StepRecord) error {
	s.logger.Debug("sql", "op", "insert", "table", "steps", "session_id", step.SessionID, "idx", step.Index)

	activityJSON, err := json.Marshal(step.Activity)
	if err != nil {
		return fmt.Errorf("marshal activity: %w", err)
	}
	snapshot := step.Snapshot
	if len(snapshot) == 0 {
		snapshot = []byte("{}")
	}

	_, err = s.db.ExecContext(ctx,
		`INSERT INTO steps (session_id, idx, manager_acts, activity, selected, position, snapshot)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		step.SessionID, step.Index, boolToInt(step.ManagerActs),
		string(activityJSON), step.Selected, step.Position, string(snapshot),
	)
	return err
}

func (s *SQLiteStore) ListSteps(ctx context.Context, sessionID string) ([]*model.StepRecord, error) {
	s.logger.Debug("sql", "op", "list", "table", "steps", "session_id", sessionID)

	rows, err := s.db.QueryContext(ctx,
		`SELECT session_id, idx, manager_acts, activity, selected, position, snapshot
		 FROM steps WHERE session_id = ? ORDER BY idx`, sessionID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var steps []*model.StepRecord
	for rows.Next() {
		step, err := scanStep(rows)
		if err != nil {
			return nil, err
		}
		steps = append(steps, step)
	}
	return steps, rows.Err()
}

func (s *SQLiteStore) GetStep(ctx context.Context, sessionID string, index int) (*model.StepRecord, error) {
	s.logger.Debug("sql", "op", "select", "table", "steps", "session_id", sessionID, "idx", index)

	row := s.db.QueryRowContext(ctx,
		`SELECT session_id, idx, manager_acts, activity, selected, position, snapshot
		 FROM steps WHERE session_id = ? AND idx = ?`, sessionID, index)
	step, err := scanStep(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	return step, err
}

func (s *SQLiteStore) LatestSnapshot(ctx context.Context, sessionID string) ([]byte, error) {
	s.logger.Debug("sql", "op", "latest_snapshot", "table", "steps", "session_id", sessionID)

	var snapshot string
	err := s.db.QueryRowContext(ctx,
		`SELECT snapshot FROM steps WHERE session_id = ? ORDER BY idx DESC LIMIT 1`, sessionID,
	).Scan(&snapshot)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return []byte(snapshot), nil
}

// --- scan helpers ---

type scanner interface {
	Scan(dest ...any) error
}

func scanStep(row scanner) (*model.StepRecord, error) {
	var step model.StepRecord
	var managerActs int
	var activityJSON, snapshot string

	if err := row.Scan(&step.SessionID, &step.Index, &managerActs,
		&activityJSON, &step.Selected, &step.Position, &snapshot); err != nil {
		return nil, err
	}

	step.ManagerActs = managerActs != 0
	if err := json.Unmarshal([]byte(activityJSON), &step.Activity); err != nil {
		return nil, fmt.Errorf("unmarshal activity: %w", err)
	}
	step.Snapshot = json.RawMessage(snapshot)
	return &step, nil
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
