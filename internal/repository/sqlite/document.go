package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/msomdec/cms/internal/domain"
)

var _ domain.DocumentRepository = (*DocumentRepository)(nil)

// DocumentRepository implements domain.DocumentRepository using SQLite BLOBs.
type DocumentRepository struct {
	db *sql.DB
}

// NewDocumentRepository creates a new SQLite-backed DocumentRepository.
func NewDocumentRepository(db *DB) *DocumentRepository {
	return &DocumentRepository{db: db.SqlDB}
}

// List returns document names in insertion order.
func (r *DocumentRepository) List(ctx context.Context) ([]string, error) {
	rows, err := r.db.QueryContext(ctx, "SELECT name FROM documents ORDER BY rowid")
	if err != nil {
		return nil, fmt.Errorf("%w: list documents: %w", domain.ErrStoreUnavailable, err)
	}
	defer rows.Close()

	var names []string
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, fmt.Errorf("%w: scan document name: %w", domain.ErrStoreUnavailable, err)
		}
		names = append(names, name)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: iterate documents: %w", domain.ErrStoreUnavailable, err)
	}
	return names, nil
}

func (r *DocumentRepository) Exists(ctx context.Context, name string) (bool, error) {
	var n int
	err := r.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM documents WHERE name = ?", name).Scan(&n)
	if err != nil {
		return false, fmt.Errorf("%w: check document: %w", domain.ErrStoreUnavailable, err)
	}
	return n > 0, nil
}

func (r *DocumentRepository) Read(ctx context.Context, name string) ([]byte, error) {
	var data []byte
	err := r.db.QueryRowContext(ctx,
		"SELECT content FROM documents WHERE name = ?", name,
	).Scan(&data)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("%w: read document: %w", domain.ErrStoreUnavailable, err)
	}
	if data == nil {
		data = []byte{}
	}
	return data, nil
}

func (r *DocumentRepository) Write(ctx context.Context, name string, data []byte) error {
	if err := domain.CheckName(name); err != nil {
		return err
	}
	if data == nil {
		data = []byte{}
	}
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO documents (name, content, updated_at) VALUES (?, ?, ?)
		 ON CONFLICT(name) DO UPDATE SET content = excluded.content, updated_at = excluded.updated_at`,
		name, data, time.Now().UTC(),
	)
	if err != nil {
		return fmt.Errorf("%w: %s: %w", domain.ErrWrite, name, err)
	}
	return nil
}

func (r *DocumentRepository) Delete(ctx context.Context, name string) error {
	result, err := r.db.ExecContext(ctx, "DELETE FROM documents WHERE name = ?", name)
	if err != nil {
		return fmt.Errorf("%w: delete %s: %w", domain.ErrWrite, name, err)
	}
	n, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("%w: rows affected: %w", domain.ErrStoreUnavailable, err)
	}
	if n == 0 {
		return domain.ErrNotFound
	}
	return nil
}
