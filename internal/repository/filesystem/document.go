// Package filesystem stores documents and credentials as plain files on disk.
package filesystem

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/msomdec/cms/internal/domain"
)

var _ domain.DocumentRepository = (*DocumentRepository)(nil)

// DocumentRepository keeps one file per document in a single flat directory.
type DocumentRepository struct {
	root string
}

// NewDocumentRepository opens (creating if needed) the document root at dir.
func NewDocumentRepository(dir string) (*DocumentRepository, error) {
	root, err := filepath.Abs(dir)
	if err != nil {
		return nil, fmt.Errorf("resolve document root: %w", err)
	}
	if err := os.MkdirAll(root, 0o755); err != nil {
		return nil, fmt.Errorf("%w: create document root %s: %w", domain.ErrStoreUnavailable, root, err)
	}
	return &DocumentRepository{root: root}, nil
}

// Root returns the absolute path of the document directory.
func (r *DocumentRepository) Root() string {
	return r.root
}

// List returns the names of regular, non-hidden files in the root.
func (r *DocumentRepository) List(ctx context.Context) ([]string, error) {
	entries, err := os.ReadDir(r.root)
	if err != nil {
		return nil, fmt.Errorf("%w: list documents: %w", domain.ErrStoreUnavailable, err)
	}

	names := make([]string, 0, len(entries))
	for _, e := range entries {
		if !e.Type().IsRegular() || strings.HasPrefix(e.Name(), ".") {
			continue
		}
		names = append(names, e.Name())
	}
	return names, nil
}

func (r *DocumentRepository) Exists(ctx context.Context, name string) (bool, error) {
	p, err := r.resolve(name)
	if err != nil {
		return false, err
	}
	st, err := os.Stat(p)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return false, nil
		}
		return false, fmt.Errorf("%w: stat %s: %w", domain.ErrStoreUnavailable, name, err)
	}
	return st.Mode().IsRegular(), nil
}

func (r *DocumentRepository) Read(ctx context.Context, name string) ([]byte, error) {
	p, err := r.resolve(name)
	if err != nil {
		return nil, err
	}
	data, err := os.ReadFile(p)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("%w: read %s: %w", domain.ErrStoreUnavailable, name, err)
	}
	return data, nil
}

// Write replaces the document's content, creating the file if it is missing.
func (r *DocumentRepository) Write(ctx context.Context, name string, data []byte) error {
	p, err := r.resolve(name)
	if err != nil {
		return err
	}
	if err := os.WriteFile(p, data, 0o644); err != nil {
		return fmt.Errorf("%w: %s: %w", domain.ErrWrite, name, err)
	}
	return nil
}

func (r *DocumentRepository) Delete(ctx context.Context, name string) error {
	p, err := r.resolve(name)
	if err != nil {
		return err
	}
	st, err := os.Stat(p)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return domain.ErrNotFound
		}
		return fmt.Errorf("%w: stat %s: %w", domain.ErrStoreUnavailable, name, err)
	}
	if !st.Mode().IsRegular() {
		return domain.ErrNotFound
	}
	if err := os.Remove(p); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return domain.ErrNotFound
		}
		return fmt.Errorf("%w: delete %s: %w", domain.ErrWrite, name, err)
	}
	return nil
}

// resolve maps a document name to a path directly inside the root.
// Names that would reach outside it, or into a subdirectory, are rejected.
func (r *DocumentRepository) resolve(name string) (string, error) {
	if err := domain.CheckName(name); err != nil {
		return "", err
	}
	p := filepath.Join(r.root, name)
	if filepath.Dir(p) != r.root {
		return "", domain.ErrInvalidName
	}
	return p, nil
}
