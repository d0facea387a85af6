package sqlite

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/msomdec/cms/internal/domain"
)

var _ domain.CredentialRepository = (*CredentialRepository)(nil)

// CredentialRepository implements domain.CredentialRepository using SQLite.
type CredentialRepository struct {
	db *sql.DB
}

// NewCredentialRepository creates a new SQLite-backed CredentialRepository.
func NewCredentialRepository(db *DB) *CredentialRepository {
	return &CredentialRepository{db: db.SqlDB}
}

func (r *CredentialRepository) Load(ctx context.Context) (map[string]string, error) {
	rows, err := r.db.QueryContext(ctx, "SELECT username, password_hash FROM credentials")
	if err != nil {
		return nil, fmt.Errorf("%w: query credentials: %w", domain.ErrStoreUnavailable, err)
	}
	defer rows.Close()

	creds := make(map[string]string)
	for rows.Next() {
		var c domain.Credential
		if err := rows.Scan(&c.Username, &c.PasswordHash); err != nil {
			return nil, fmt.Errorf("%w: scan credential: %w", domain.ErrStoreUnavailable, err)
		}
		creds[c.Username] = c.PasswordHash
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: iterate credentials: %w", domain.ErrStoreUnavailable, err)
	}
	return creds, nil
}

// Save replaces the stored mapping inside one transaction.
// Rows whose hash is unchanged keep their original created_at.
func (r *CredentialRepository) Save(ctx context.Context, credentials map[string]string) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("%w: begin transaction: %w", domain.ErrStoreUnavailable, err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, "CREATE TEMP TABLE IF NOT EXISTS incoming (username TEXT PRIMARY KEY, password_hash TEXT NOT NULL)"); err != nil {
		return fmt.Errorf("%w: create staging table: %w", domain.ErrStoreUnavailable, err)
	}
	if _, err := tx.ExecContext(ctx, "DELETE FROM incoming"); err != nil {
		return fmt.Errorf("%w: clear staging table: %w", domain.ErrStoreUnavailable, err)
	}
	for username, hash := range credentials {
		if _, err := tx.ExecContext(ctx,
			"INSERT INTO incoming (username, password_hash) VALUES (?, ?)",
			username, hash,
		); err != nil {
			return fmt.Errorf("%w: stage credential: %w", domain.ErrStoreUnavailable, err)
		}
	}

	if _, err := tx.ExecContext(ctx,
		"DELETE FROM credentials WHERE username NOT IN (SELECT username FROM incoming)",
	); err != nil {
		return fmt.Errorf("%w: prune credentials: %w", domain.ErrStoreUnavailable, err)
	}
	if _, err := tx.ExecContext(ctx,
		`INSERT INTO credentials (username, password_hash)
		 SELECT username, password_hash FROM incoming WHERE true
		 ON CONFLICT(username) DO UPDATE SET password_hash = excluded.password_hash`,
	); err != nil {
		return fmt.Errorf("%w: upsert credentials: %w", domain.ErrStoreUnavailable, err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("%w: commit credentials: %w", domain.ErrStoreUnavailable, err)
	}
	return nil
}
