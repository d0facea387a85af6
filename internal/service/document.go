package service

import (
	"context"
	"fmt"
	"slices"

	"github.com/msomdec/cms/internal/domain"
)

// DocumentService runs the document lifecycle on top of a repository.
// Every mutating method takes the caller's session and refuses to touch
// storage unless someone is signed in.
type DocumentService struct {
	docs     domain.DocumentRepository
	renderer *Renderer
}

// NewDocumentService creates a new DocumentService.
func NewDocumentService(docs domain.DocumentRepository, renderer *Renderer) *DocumentService {
	return &DocumentService{docs: docs, renderer: renderer}
}

// List returns all document names sorted alphabetically.
func (s *DocumentService) List(ctx context.Context) ([]string, error) {
	names, err := s.docs.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("list documents: %w", err)
	}
	slices.Sort(names)
	return names, nil
}

func (s *DocumentService) Exists(ctx context.Context, name string) (bool, error) {
	return s.docs.Exists(ctx, name)
}

// Read returns the raw bytes of a document.
func (s *DocumentService) Read(ctx context.Context, name string) ([]byte, error) {
	data, err := s.docs.Read(ctx, name)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", name, err)
	}
	return data, nil
}

// Render reads a document and formats it for delivery.
func (s *DocumentService) Render(ctx context.Context, name string) (domain.Content, error) {
	data, err := s.Read(ctx, name)
	if err != nil {
		return domain.Content{}, err
	}
	return s.renderer.Render(name, data)
}

// Create writes an empty document. An existing document with the same name
// is overwritten.
func (s *DocumentService) Create(ctx context.Context, sess *domain.Session, name string) error {
	if err := sess.RequireSignedIn(); err != nil {
		return err
	}
	if err := domain.ValidateNewName(name); err != nil {
		return err
	}
	if err := s.docs.Write(ctx, name, []byte{}); err != nil {
		return fmt.Errorf("create %s: %w", name, err)
	}
	return nil
}

// Write replaces a document's content unconditionally.
func (s *DocumentService) Write(ctx context.Context, sess *domain.Session, name string, data []byte) error {
	if err := sess.RequireSignedIn(); err != nil {
		return err
	}
	if err := s.docs.Write(ctx, name, data); err != nil {
		return fmt.Errorf("write %s: %w", name, err)
	}
	return nil
}

func (s *DocumentService) Delete(ctx context.Context, sess *domain.Session, name string) error {
	if err := sess.RequireSignedIn(); err != nil {
		return err
	}
	if err := s.docs.Delete(ctx, name); err != nil {
		return fmt.Errorf("delete %s: %w", name, err)
	}
	return nil
}

// Duplicate copies a document to "<base>(dup)<ext>" and returns the new name.
// The copy holds the rendered payload, so duplicating markdown stores HTML.
// A previous duplicate of the same source is overwritten.
func (s *DocumentService) Duplicate(ctx context.Context, sess *domain.Session, name string) (string, error) {
	if err := sess.RequireSignedIn(); err != nil {
		return "", err
	}
	content, err := s.Render(ctx, name)
	if err != nil {
		return "", err
	}
	dup := domain.DuplicateName(name)
	if err := s.docs.Write(ctx, dup, content.Payload); err != nil {
		return "", fmt.Errorf("duplicate %s: %w", name, err)
	}
	return dup, nil
}

// Thumbnail returns a scaled JPEG preview of an image document.
func (s *DocumentService) Thumbnail(ctx context.Context, name string, size int) ([]byte, error) {
	kind, err := domain.KindOf(name)
	if err != nil {
		return nil, err
	}
	if !kind.IsImage() {
		return nil, domain.ErrUnsupportedType
	}
	data, err := s.Read(ctx, name)
	if err != nil {
		return nil, err
	}
	thumb, err := MakeThumbnail(data, size)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %w", domain.ErrUnsupportedType, name, err)
	}
	return thumb, nil
}

// Preview renders unsaved markdown source for the editor.
func (s *DocumentService) Preview(src []byte) ([]byte, error) {
	return s.renderer.Markdown(src)
}
