// Package snapshot persists the raw payloads fetched from the portal
// so a run's input can be inspected after the fact and the summary can
// work offline from the last fetch.
package snapshot

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"time"

	"argosync/lib/scrapers/argo"
	"argosync/lib/timezone"
)

const schema = `
CREATE TABLE IF NOT EXISTS snapshots (
	category   TEXT PRIMARY KEY,
	fetched_at TEXT NOT NULL,
	payload    BLOB NOT NULL
);
`

const dashboardCategory = "dashboard"

var ErrNotFound = errors.New("snapshot not found")

type Store struct {
	db *sql.DB
}

// NewStore initializes the schema on the given database. The schema is
// idempotent, opening an existing file is fine.
func NewStore(db *sql.DB) (*Store, error) {
	_, err := db.Exec(schema)
	if err != nil {
		return nil, err
	}
	return &Store{db: db}, nil
}

// Put upserts one category's payload, the previous snapshot of the
// same category is replaced.
func (s *Store) Put(ctx context.Context, category string, payload []byte) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO snapshots (category, fetched_at, payload)
		VALUES (?, ?, ?)
		ON CONFLICT (category) DO UPDATE SET
			fetched_at = excluded.fetched_at,
			payload = excluded.payload
	`, category, timezone.Now().Format(time.RFC3339), payload)
	return err
}

func (s *Store) Get(ctx context.Context, category string) ([]byte, time.Time, error) {
	var fetchedAt string
	var payload []byte
	err := s.db.QueryRowContext(ctx, `
		SELECT fetched_at, payload FROM snapshots WHERE category = ?
	`, category).Scan(&fetchedAt, &payload)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, time.Time{}, ErrNotFound
	}
	if err != nil {
		return nil, time.Time{}, err
	}

	at, err := time.Parse(time.RFC3339, fetchedAt)
	if err != nil {
		return nil, time.Time{}, err
	}
	return payload, at, nil
}

func (s *Store) PutDashboard(ctx context.Context, dash *argo.Dashboard) error {
	payload, err := json.Marshal(dash)
	if err != nil {
		return err
	}
	return s.Put(ctx, dashboardCategory, payload)
}

func (s *Store) GetDashboard(ctx context.Context) (*argo.Dashboard, time.Time, error) {
	payload, at, err := s.Get(ctx, dashboardCategory)
	if err != nil {
		return nil, time.Time{}, err
	}

	var dash argo.Dashboard
	err = json.Unmarshal(payload, &dash)
	if err != nil {
		return nil, time.Time{}, err
	}
	return &dash, at, nil
}
