// Package tokenstore persists the session token between client runs in a
// local sqlite database. The session store is its only writer.
package tokenstore

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/dkarpov/examgate/internal/dbx"
)

// Well-known keys in the session_data table.
const (
	keyToken   = "token"
	keySubject = "subject"
)

// SQLiteRepository stores session data in a key/value table. It satisfies
// session.TokenRepository.
type SQLiteRepository struct {
	db *sql.DB
}

func NewSQLiteRepository(db *sql.DB) *SQLiteRepository {
	return &SQLiteRepository{db: db}
}

// LoadToken returns the persisted raw token, or "" when none is stored.
func (r *SQLiteRepository) LoadToken(ctx context.Context) (string, error) {
	var raw string
	err := r.db.QueryRowContext(ctx,
		`SELECT value FROM session_data WHERE key = ?`, keyToken).Scan(&raw)
	if err == sql.ErrNoRows {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("loading token: %w", err)
	}
	return raw, nil
}

// SaveSession upserts the raw token and its subject in one transaction.
func (r *SQLiteRepository) SaveSession(ctx context.Context, raw, subject string) error {
	return dbx.InTx(ctx, r.db, func(ctx context.Context, tx dbx.Querier) error {
		for key, value := range map[string]string{keyToken: raw, keySubject: subject} {
			_, err := tx.ExecContext(ctx, `
				INSERT INTO session_data (key, value) VALUES (?, ?)
				ON CONFLICT(key) DO UPDATE SET value = excluded.value
			`, key, value)
			if err != nil {
				return fmt.Errorf("saving session_data[%s]: %w", key, err)
			}
		}
		return nil
	})
}

// Clear removes everything SaveSession stored.
func (r *SQLiteRepository) Clear(ctx context.Context) error {
	if _, err := r.db.ExecContext(ctx, `DELETE FROM session_data`); err != nil {
		return fmt.Errorf("clearing session_data: %w", err)
	}
	return nil
}
