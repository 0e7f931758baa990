// Package store persists poster documents in SQLite so they can be edited
// across CLI invocations and API requests.
package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	_ "github.com/mattn/go-sqlite3"
	"github.com/sirupsen/logrus"

	"github.com/thywilljoshua/poster-to-web/internal/poster"
)

var ErrNotFound = errors.New("document not found")

// timeFormat is fixed width so stored timestamps sort as text.
const timeFormat = "2006-01-02T15:04:05.000000000Z07:00"

// Record is one stored document with its provenance.
type Record struct {
	ID        string          `json:"id" yaml:"id"`
	Source    string          `json:"source" yaml:"source"`
	Status    string          `json:"status" yaml:"status"`
	Document  poster.Document `json:"document" yaml:"document"`
	CreatedAt time.Time       `json:"created_at" yaml:"created_at"`
	UpdatedAt time.Time       `json:"updated_at" yaml:"updated_at"`
}

// Summary is the listing form of a Record.
type Summary struct {
	ID        string       `json:"id" yaml:"id"`
	Source    string       `json:"source" yaml:"source"`
	Status    string       `json:"status" yaml:"status"`
	Title     string       `json:"title" yaml:"title"`
	Stats     poster.Stats `json:"stats" yaml:"stats"`
	UpdatedAt time.Time    `json:"updated_at" yaml:"updated_at"`
}

// Store manages the documents database.
type Store struct {
	db  *sql.DB
	log logrus.FieldLogger
}

// Open opens or creates the database at path and its schema.
func Open(path string, log logrus.FieldLogger) (*Store, error) {
	if log == nil {
		log = logrus.StandardLogger()
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("creating store directory: %w", err)
	}
	db, err := sql.Open("sqlite3", path+"?_journal_mode=WAL&_busy_timeout=5000")
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}
	s := &Store{db: db, log: log.WithField("store", path)}
	if err := s.createSchema(); err != nil {
		db.Close()
		return nil, fmt.Errorf("creating schema: %w", err)
	}
	return s, nil
}

// Close releases the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) createSchema() error {
	statements := []string{
		`CREATE TABLE IF NOT EXISTS documents (
			id TEXT PRIMARY KEY,
			source TEXT NOT NULL DEFAULT '',
			status TEXT NOT NULL DEFAULT '',
			body TEXT NOT NULL,
			created_at TEXT NOT NULL,
			updated_at TEXT NOT NULL
		)`,
		`CREATE INDEX IF NOT EXISTS idx_documents_updated ON documents(updated_at)`,
	}
	for _, stmt := range statements {
		if _, err := s.db.Exec(stmt); err != nil {
			return fmt.Errorf("executing schema statement: %w", err)
		}
	}
	return nil
}

// Save inserts or replaces rec. An empty ID is assigned a new one; the
// creation time of an existing record is kept.
func (s *Store) Save(ctx context.Context, rec *Record) error {
	if err := rec.Document.Validate(); err != nil {
		return err
	}
	if rec.ID == "" {
		rec.ID = uuid.NewString()
	}
	body, err := json.Marshal(rec.Document)
	if err != nil {
		return fmt.Errorf("encoding document: %w", err)
	}
	now := time.Now().UTC()
	if rec.CreatedAt.IsZero() {
		rec.CreatedAt = now
	}
	rec.UpdatedAt = now

	_, err = s.db.ExecContext(ctx,
		`INSERT INTO documents (id, source, status, body, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?)
		 ON CONFLICT(id) DO UPDATE SET
			source=excluded.source, status=excluded.status,
			body=excluded.body, updated_at=excluded.updated_at`,
		rec.ID, rec.Source, rec.Status, string(body),
		rec.CreatedAt.Format(timeFormat), rec.UpdatedAt.Format(timeFormat),
	)
	if err != nil {
		return fmt.Errorf("saving document %s: %w", rec.ID, err)
	}
	s.log.WithField("id", rec.ID).Debug("document saved")
	return nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanRecord(row rowScanner) (Record, error) {
	var rec Record
	var body, created, updated string
	if err := row.Scan(&rec.ID, &rec.Source, &rec.Status, &body, &created, &updated); err != nil {
		return rec, err
	}
	if err := json.Unmarshal([]byte(body), &rec.Document); err != nil {
		return rec, fmt.Errorf("decoding document %s: %w", rec.ID, err)
	}
	if err := rec.Document.Validate(); err != nil {
		return rec, fmt.Errorf("document %s: %w", rec.ID, err)
	}
	rec.CreatedAt, _ = time.Parse(timeFormat, created)
	rec.UpdatedAt, _ = time.Parse(timeFormat, updated)
	return rec, nil
}

const selectRecord = `SELECT id, source, status, body, created_at, updated_at FROM documents`

// Get loads the document with the given id.
func (s *Store) Get(ctx context.Context, id string) (Record, error) {
	rec, err := scanRecord(s.db.QueryRowContext(ctx, selectRecord+` WHERE id = ?`, id))
	if errors.Is(err, sql.ErrNoRows) {
		return Record{}, fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	return rec, err
}

// List returns every stored document, most recently updated first.
// Documents that no longer decode are logged and skipped.
func (s *Store) List(ctx context.Context) ([]Summary, error) {
	rows, err := s.db.QueryContext(ctx, selectRecord+` ORDER BY updated_at DESC, rowid DESC`)
	if err != nil {
		return nil, fmt.Errorf("listing documents: %w", err)
	}
	defer rows.Close()

	var out []Summary
	for rows.Next() {
		rec, err := scanRecord(rows)
		if err != nil {
			s.log.WithError(err).Warn("skipping unreadable document")
			continue
		}
		out = append(out, Summary{
			ID:        rec.ID,
			Source:    rec.Source,
			Status:    rec.Status,
			Title:     rec.Document.Title,
			Stats:     rec.Document.Stats(),
			UpdatedAt: rec.UpdatedAt,
		})
	}
	return out, rows.Err()
}

// Update loads a document, applies fn and saves the result in one
// transaction. Nothing is written when fn fails.
func (s *Store) Update(ctx context.Context, id string, fn func(*poster.Document) error) (Record, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return Record{}, fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	rec, err := scanRecord(tx.QueryRowContext(ctx, selectRecord+` WHERE id = ?`, id))
	if errors.Is(err, sql.ErrNoRows) {
		return Record{}, fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	if err != nil {
		return Record{}, err
	}
	if err := fn(&rec.Document); err != nil {
		return Record{}, err
	}
	if err := rec.Document.Validate(); err != nil {
		return Record{}, err
	}
	body, err := json.Marshal(rec.Document)
	if err != nil {
		return Record{}, fmt.Errorf("encoding document: %w", err)
	}
	rec.UpdatedAt = time.Now().UTC()
	if _, err := tx.ExecContext(ctx,
		`UPDATE documents SET body = ?, updated_at = ? WHERE id = ?`,
		string(body), rec.UpdatedAt.Format(timeFormat), id,
	); err != nil {
		return Record{}, fmt.Errorf("updating document %s: %w", id, err)
	}
	if err := tx.Commit(); err != nil {
		return Record{}, err
	}
	return rec, nil
}

// Delete removes the document with the given id.
func (s *Store) Delete(ctx context.Context, id string) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM documents WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("deleting document %s: %w", id, err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	return nil
}
