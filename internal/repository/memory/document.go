// Package memory provides in-process repositories for tests and throwaway runs.
package memory

import (
	"context"
	"slices"
	"sync"

	"github.com/msomdec/cms/internal/domain"
)

var (
	_ domain.DocumentRepository   = (*DocumentRepository)(nil)
	_ domain.CredentialRepository = (*CredentialRepository)(nil)
)

// DocumentRepository holds documents in a map. List returns insertion order.
type DocumentRepository struct {
	mu    sync.RWMutex
	docs  map[string][]byte
	order []string
}

func NewDocumentRepository() *DocumentRepository {
	return &DocumentRepository{docs: make(map[string][]byte)}
}

func (r *DocumentRepository) List(ctx context.Context) ([]string, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return slices.Clone(r.order), nil
}

func (r *DocumentRepository) Exists(ctx context.Context, name string) (bool, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	_, ok := r.docs[name]
	return ok, nil
}

func (r *DocumentRepository) Read(ctx context.Context, name string) ([]byte, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	data, ok := r.docs[name]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return slices.Clone(data), nil
}

func (r *DocumentRepository) Write(ctx context.Context, name string, data []byte) error {
	if err := domain.CheckName(name); err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.docs[name]; !ok {
		r.order = append(r.order, name)
	}
	r.docs[name] = slices.Clone(data)
	return nil
}

func (r *DocumentRepository) Delete(ctx context.Context, name string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.docs[name]; !ok {
		return domain.ErrNotFound
	}
	delete(r.docs, name)
	r.order = slices.DeleteFunc(r.order, func(n string) bool { return n == name })
	return nil
}

// CredentialRepository keeps the credential mapping in memory.
type CredentialRepository struct {
	mu    sync.Mutex
	creds map[string]string
}

func NewCredentialRepository() *CredentialRepository {
	return &CredentialRepository{creds: make(map[string]string)}
}

func (r *CredentialRepository) Load(ctx context.Context) (map[string]string, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make(map[string]string, len(r.creds))
	for u, h := range r.creds {
		out[u] = h
	}
	return out, nil
}

func (r *CredentialRepository) Save(ctx context.Context, credentials map[string]string) error {
	next := make(map[string]string, len(credentials))
	for u, h := range credentials {
		next[u] = h
	}
	r.mu.Lock()
	r.creds = next
	r.mu.Unlock()
	return nil
}
