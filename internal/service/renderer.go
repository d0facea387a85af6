package service

import (
	"bytes"
	"fmt"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"

	"github.com/msomdec/cms/internal/domain"
)

// Renderer turns stored document bytes into a deliverable payload based on
// the document's kind.
type Renderer struct {
	md goldmark.Markdown
}

// NewRenderer creates a Renderer with GitHub-flavoured markdown enabled.
// Raw HTML in markdown source is not passed through.
func NewRenderer() *Renderer {
	return &Renderer{
		md: goldmark.New(goldmark.WithExtensions(extension.GFM)),
	}
}

// Render dispatches on the filename's extension. Text and images pass through
// unchanged; markdown is converted to an HTML fragment.
func (r *Renderer) Render(filename string, data []byte) (domain.Content, error) {
	kind, err := domain.KindOf(filename)
	if err != nil {
		return domain.Content{}, err
	}

	payload := data
	if kind == domain.KindMarkdown {
		payload, err = r.Markdown(data)
		if err != nil {
			return domain.Content{}, err
		}
	}

	return domain.Content{
		Kind:      kind,
		MediaType: kind.MediaType(),
		Payload:   payload,
	}, nil
}

// Markdown converts markdown source to HTML.
func (r *Renderer) Markdown(src []byte) ([]byte, error) {
	var buf bytes.Buffer
	if err := r.md.Convert(src, &buf); err != nil {
		return nil, fmt.Errorf("render markdown: %w", err)
	}
	return buf.Bytes(), nil
}
