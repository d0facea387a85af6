package domain

import "context"

// Credential pairs a username with its bcrypt password hash.
type Credential struct {
	Username     string
	PasswordHash string
}

// CredentialRepository persists the username → password hash mapping.
// Save replaces the whole mapping atomically: readers never observe a
// partially written store.
type CredentialRepository interface {
	Load(ctx context.Context) (map[string]string, error)
	Save(ctx context.Context, credentials map[string]string) error
}
