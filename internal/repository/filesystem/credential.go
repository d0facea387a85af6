package filesystem

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	"github.com/msomdec/cms/internal/domain"
)

var _ domain.CredentialRepository = (*CredentialRepository)(nil)

// CredentialRepository stores credentials as a YAML mapping of
// username to bcrypt hash, one entry per line.
type CredentialRepository struct {
	path string
}

func NewCredentialRepository(path string) *CredentialRepository {
	return &CredentialRepository{path: path}
}

// Load reads the credential file. A file that does not exist yet is an empty mapping.
func (r *CredentialRepository) Load(ctx context.Context) (map[string]string, error) {
	data, err := os.ReadFile(r.path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return map[string]string{}, nil
		}
		return nil, fmt.Errorf("%w: read credentials: %w", domain.ErrStoreUnavailable, err)
	}

	creds := map[string]string{}
	if err := yaml.Unmarshal(data, &creds); err != nil {
		return nil, fmt.Errorf("%w: parse credentials: %w", domain.ErrStoreUnavailable, err)
	}
	if creds == nil {
		creds = map[string]string{}
	}
	return creds, nil
}

// Save writes the mapping to a temp file next to the target and renames it
// into place, so concurrent readers see either the old or the new file.
func (r *CredentialRepository) Save(ctx context.Context, credentials map[string]string) error {
	data, err := yaml.Marshal(credentials)
	if err != nil {
		return fmt.Errorf("%w: encode credentials: %w", domain.ErrStoreUnavailable, err)
	}

	dir := filepath.Dir(r.path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("%w: create credentials dir: %w", domain.ErrStoreUnavailable, err)
	}

	tmp, err := os.CreateTemp(dir, "."+filepath.Base(r.path)+".*.tmp")
	if err != nil {
		return fmt.Errorf("%w: create temp file: %w", domain.ErrStoreUnavailable, err)
	}
	tmpName := tmp.Name()
	defer os.Remove(tmpName) // no-op once renamed

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return fmt.Errorf("%w: write credentials: %w", domain.ErrStoreUnavailable, err)
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		return fmt.Errorf("%w: sync credentials: %w", domain.ErrStoreUnavailable, err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("%w: close credentials: %w", domain.ErrStoreUnavailable, err)
	}
	if err := os.Chmod(tmpName, 0o600); err != nil {
		return fmt.Errorf("%w: chmod credentials: %w", domain.ErrStoreUnavailable, err)
	}
	if err := os.Rename(tmpName, r.path); err != nil {
		return fmt.Errorf("%w: replace credentials: %w", domain.ErrStoreUnavailable, err)
	}
	return nil
}
