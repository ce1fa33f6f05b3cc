// Package history persists one row per import attempt in PostgreSQL so
// operators can see what was imported for a borehole-log version, from which
// file, and why an attempt failed.
package history

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgtype"
)

// DBTX is the subset of pgx used by Store.
// Satisfied by both *pgxpool.Pool and pgx.Tx.
type DBTX interface {
	Exec(context.Context, string, ...interface{}) (pgconn.CommandTag, error)
	Query(context.Context, string, ...interface{}) (pgx.Rows, error)
	QueryRow(context.Context, string, ...interface{}) pgx.Row
}

// Status is the outcome of one import attempt.
type Status string

const (
	StatusSucceeded Status = "succeeded"
	StatusFailed    Status = "failed"
)

// DefaultListLimit caps List when the caller passes no limit.
const DefaultListLimit = 50

// Entry is one import attempt.
type Entry struct {
	ID          string    `json:"id"`
	ProjectID   string    `json:"project_id"`
	BorelogID   string    `json:"borelog_id"`
	VersionNo   int       `json:"version_no"`
	FileName    string    `json:"file_name"`
	JobCode     string    `json:"job_code,omitempty"`
	LayerCount  int       `json:"layer_count"`
	DocumentKey string    `json:"document_key,omitempty"`
	Status      Status    `json:"status"`
	Error       string    `json:"error,omitempty"`
	ClientIP    string    `json:"client_ip,omitempty"`
	UserAgent   string    `json:"user_agent,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
}

// Schema creates the history table. It is idempotent.
const Schema = `
CREATE TABLE IF NOT EXISTS borelog_imports (
    id           UUID PRIMARY KEY,
    project_id   TEXT NOT NULL,
    borelog_id   TEXT NOT NULL,
    version_no   INTEGER NOT NULL,
    file_name    TEXT NOT NULL,
    job_code     TEXT,
    layer_count  INTEGER NOT NULL DEFAULT 0,
    document_key TEXT,
    status       TEXT NOT NULL,
    error        TEXT,
    client_ip    TEXT,
    user_agent   TEXT,
    created_at   TIMESTAMPTZ NOT NULL DEFAULT now()
);
CREATE INDEX IF NOT EXISTS borelog_imports_log_idx
    ON borelog_imports (project_id, borelog_id, created_at DESC);
`

const insertEntry = `
INSERT INTO borelog_imports
    (id, project_id, borelog_id, version_no, file_name, job_code, layer_count,
     document_key, status, error, client_ip, user_agent)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
RETURNING created_at`

const listEntries = `
SELECT id, project_id, borelog_id, version_no, file_name, job_code,
       layer_count, document_key, status, error, client_ip, user_agent, created_at
FROM borelog_imports
WHERE project_id = $1 AND borelog_id = $2
ORDER BY created_at DESC, id
LIMIT $3`

// Store reads and writes import history.
type Store struct {
	db DBTX
}

// NewStore returns a Store over db.
func NewStore(db DBTX) *Store {
	return &Store{db: db}
}

// Migrate creates the history table when missing.
func (s *Store) Migrate(ctx context.Context) error {
	if _, err := s.db.Exec(ctx, Schema); err != nil {
		return fmt.Errorf("migrate import history: %w", err)
	}
	return nil
}

// Record inserts e, assigning an ID when it has none, and returns it with
// CreatedAt set by the database.
func (s *Store) Record(ctx context.Context, e Entry) (Entry, error) {
	if e.ID == "" {
		e.ID = uuid.New().String()
	}
	id, err := uuid.Parse(e.ID)
	if err != nil {
		return Entry{}, fmt.Errorf("record import: invalid id %q: %w", e.ID, err)
	}

	var createdAt pgtype.Timestamptz
	err = s.db.QueryRow(ctx, insertEntry,
		pgtype.UUID{Bytes: id, Valid: true},
		e.ProjectID,
		e.BorelogID,
		int32(e.VersionNo),
		e.FileName,
		toPgText(e.JobCode),
		int32(e.LayerCount),
		toPgText(e.DocumentKey),
		string(e.Status),
		toPgText(e.Error),
		toPgText(e.ClientIP),
		toPgText(e.UserAgent),
	).Scan(&createdAt)
	if err != nil {
		return Entry{}, fmt.Errorf("record import: %w", err)
	}
	e.CreatedAt = createdAt.Time
	return e, nil
}

// List returns the most recent attempts for one borehole log, newest first.
func (s *Store) List(ctx context.Context, projectID, borelogID string, limit int) ([]Entry, error) {
	if limit <= 0 {
		limit = DefaultListLimit
	}
	rows, err := s.db.Query(ctx, listEntries, projectID, borelogID, int32(limit))
	if err != nil {
		return nil, fmt.Errorf("list imports: %w", err)
	}
	defer rows.Close()

	entries := make([]Entry, 0)
	for rows.Next() {
		e, err := scanEntry(rows)
		if err != nil {
			return nil, fmt.Errorf("list imports: %w", err)
		}
		entries = append(entries, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list imports: %w", err)
	}
	return entries, nil
}

// scanEntry scans one borelog_imports row.
func scanEntry(row pgx.Row) (Entry, error) {
	var (
		id          pgtype.UUID
		e           Entry
		versionNo   int32
		jobCode     pgtype.Text
		layerCount  int32
		documentKey pgtype.Text
		status      string
		errText     pgtype.Text
		clientIP    pgtype.Text
		userAgent   pgtype.Text
		createdAt   pgtype.Timestamptz
	)
	err := row.Scan(
		&id, &e.ProjectID, &e.BorelogID, &versionNo, &e.FileName, &jobCode,
		&layerCount, &documentKey, &status, &errText, &clientIP, &userAgent, &createdAt,
	)
	if err != nil {
		return Entry{}, err
	}
	e.ID = uuidToString(id)
	e.VersionNo = int(versionNo)
	e.JobCode = fromPgText(jobCode)
	e.LayerCount = int(layerCount)
	e.DocumentKey = fromPgText(documentKey)
	e.Status = Status(status)
	e.Error = fromPgText(errText)
	e.ClientIP = fromPgText(clientIP)
	e.UserAgent = fromPgText(userAgent)
	e.CreatedAt = createdAt.Time
	return e, nil
}

func toPgText(s string) pgtype.Text {
	if s == "" {
		return pgtype.Text{Valid: false}
	}
	return pgtype.Text{String: s, Valid: true}
}

func fromPgText(t pgtype.Text) string {
	if !t.Valid {
		return ""
	}
	return t.String
}

func uuidToString(u pgtype.UUID) string {
	if !u.Valid {
		return ""
	}
	return uuid.UUID(u.Bytes).String()
}
