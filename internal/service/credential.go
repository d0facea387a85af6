package service

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"golang.org/x/crypto/bcrypt"

	"github.com/msomdec/cms/internal/domain"
)

// CredentialService registers users and verifies their passwords.
type CredentialService struct {
	creds      domain.CredentialRepository
	bcryptCost int

	// mu serializes load-modify-save so concurrent signups are not lost.
	mu sync.Mutex
}

// NewCredentialService creates a new CredentialService.
func NewCredentialService(creds domain.CredentialRepository, bcryptCost int) *CredentialService {
	return &CredentialService{creds: creds, bcryptCost: bcryptCost}
}

// Register stores a bcrypt hash for a new username. An existing username is
// left untouched and ErrUsernameTaken is returned.
func (s *CredentialService) Register(ctx context.Context, username, password string) error {
	if strings.TrimSpace(username) == "" || password == "" {
		return fmt.Errorf("%w: username and password are required", domain.ErrInvalidInput)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	creds, err := s.creds.Load(ctx)
	if err != nil {
		return fmt.Errorf("load credentials: %w", err)
	}
	if _, ok := creds[username]; ok {
		return domain.ErrUsernameTaken
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), s.bcryptCost)
	if err != nil {
		return fmt.Errorf("hash password: %w", err)
	}
	creds[username] = string(hash)

	if err := s.creds.Save(ctx, creds); err != nil {
		return fmt.Errorf("save credentials: %w", err)
	}
	return nil
}

// Verify reports whether password matches the stored hash for username.
// An unknown username and a wrong password both yield false; the error is
// only set when the credential store cannot be read.
func (s *CredentialService) Verify(ctx context.Context, username, password string) (bool, error) {
	creds, err := s.creds.Load(ctx)
	if err != nil {
		return false, fmt.Errorf("load credentials: %w", err)
	}
	hash, ok := creds[username]
	if !ok {
		return false, nil
	}
	if err := bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)); err != nil {
		return false, nil
	}
	return true, nil
}
