package domain

import (
	"context"
	"path/filepath"
	"strings"
)

// Kind is the closed set of document types the store can hold.
type Kind int

const (
	KindText Kind = iota + 1
	KindMarkdown
	KindJPEG
	KindPNG
)

// KindOf maps a filename's extension to its Kind. Extensions are matched
// case-sensitively. Anything outside the allowed set is ErrUnsupportedType.
func KindOf(filename string) (Kind, error) {
	switch filepath.Ext(filename) {
	case ".txt":
		return KindText, nil
	case ".md":
		return KindMarkdown, nil
	case ".jpg", ".jpeg":
		return KindJPEG, nil
	case ".png":
		return KindPNG, nil
	}
	return 0, ErrUnsupportedType
}

func (k Kind) String() string {
	switch k {
	case KindText:
		return "text"
	case KindMarkdown:
		return "markdown"
	case KindJPEG:
		return "jpeg"
	case KindPNG:
		return "png"
	}
	return "unknown"
}

// MediaType is the Content-Type a document of this kind is served with.
// Markdown is served as the HTML it renders to.
func (k Kind) MediaType() string {
	switch k {
	case KindText:
		return "text/plain; charset=utf-8"
	case KindMarkdown:
		return "text/html; charset=utf-8"
	case KindJPEG:
		return "image/jpeg"
	case KindPNG:
		return "image/png"
	}
	return "application/octet-stream"
}

func (k Kind) IsImage() bool {
	return k == KindJPEG || k == KindPNG
}

// Content is a document rendered for delivery.
type Content struct {
	Kind      Kind
	MediaType string
	Payload   []byte
}

// ValidateNewName checks a filename supplied for a new document.
func ValidateNewName(filename string) error {
	if strings.TrimSpace(filename) == "" {
		return ErrEmptyName
	}
	if _, err := KindOf(filename); err != nil {
		return ErrInvalidExtension
	}
	return CheckName(filename)
}

// CheckName rejects names every backend must refuse to store: empty names,
// dot-prefixed names and names containing a path separator or NUL.
func CheckName(name string) error {
	if name == "" || strings.HasPrefix(name, ".") || strings.ContainsAny(name, "/\\\x00") {
		return ErrInvalidName
	}
	return nil
}

// DuplicateName inserts "(dup)" before the extension: "notes.txt" becomes "notes(dup).txt".
func DuplicateName(filename string) string {
	ext := filepath.Ext(filename)
	return strings.TrimSuffix(filename, ext) + "(dup)" + ext
}

// DocumentRepository stores named documents. The filename is the only key.
// List returns names in the backend's enumeration order.
type DocumentRepository interface {
	List(ctx context.Context) ([]string, error)
	Exists(ctx context.Context, name string) (bool, error)
	Read(ctx context.Context, name string) ([]byte, error)
	Write(ctx context.Context, name string, data []byte) error
	Delete(ctx context.Context, name string) error
}
