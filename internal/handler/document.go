package handler

import (
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/a-h/templ"
	"github.com/starfederation/datastar-go/datastar"

	"github.com/msomdec/cms/internal/domain"
	"github.com/msomdec/cms/internal/service"
	"github.com/msomdec/cms/internal/view"
)

// DocumentHandler serves the document index, viewer and editor.
type DocumentHandler struct {
	docs     *service.DocumentService
	sessions *SessionManager
}

// NewDocumentHandler creates a new DocumentHandler.
func NewDocumentHandler(docs *service.DocumentService, sessions *SessionManager) *DocumentHandler {
	return &DocumentHandler{docs: docs, sessions: sessions}
}

// HandleIndex lists every document.
// GET /
func (h *DocumentHandler) HandleIndex(w http.ResponseWriter, r *http.Request) {
	sess := h.sessions.Load(r)

	names, err := h.docs.List(r.Context())
	if err != nil {
		serverError(w, r, h.sessions, sess, "list documents", err)
		return
	}

	entries := make([]view.DocumentEntry, 0, len(names))
	for _, name := range names {
		kind, err := domain.KindOf(name)
		entries = append(entries, view.DocumentEntry{Name: name, IsImage: err == nil && kind.IsImage()})
	}

	renderPage(w, r, h.sessions, sess, http.StatusOK, func(p view.Page) templ.Component {
		return view.IndexPage(p, entries)
	})
}

// HandleNew renders the create form.
// GET /new
func (h *DocumentHandler) HandleNew(w http.ResponseWriter, r *http.Request) {
	sess := h.sessions.Load(r)
	renderPage(w, r, h.sessions, sess, http.StatusOK, func(p view.Page) templ.Component {
		return view.NewDocumentPage(p, "")
	})
}

// HandleCreate creates an empty document.
// POST /create
func (h *DocumentHandler) HandleCreate(w http.ResponseWriter, r *http.Request) {
	sess := h.sessions.Load(r)
	name := r.FormValue("filename")

	err := h.docs.Create(r.Context(), sess, name)
	switch {
	case err == nil:
		redirectWithFlash(w, r, h.sessions, sess, name+" has been created.")
		return
	case errors.Is(err, domain.ErrNotAuthenticated):
		redirectWithFlash(w, r, h.sessions, sess, msgSignInRequired)
		return
	case errors.Is(err, domain.ErrEmptyName):
		sess.SetFlash("A name is required.")
	case errors.Is(err, domain.ErrInvalidExtension), errors.Is(err, domain.ErrInvalidName):
		sess.SetFlash("Invalid file type.")
	default:
		serverError(w, r, h.sessions, sess, "create document", err)
		return
	}

	renderPage(w, r, h.sessions, sess, http.StatusUnprocessableEntity, func(p view.Page) templ.Component {
		return view.NewDocumentPage(p, name)
	})
}

// HandleView delivers a document. Markdown is rendered inside the page
// layout; text and images are sent as-is with their media type.
// GET /{filename}
func (h *DocumentHandler) HandleView(w http.ResponseWriter, r *http.Request) {
	sess := h.sessions.Load(r)
	name := r.PathValue("filename")

	content, err := h.docs.Render(r.Context(), name)
	if err != nil {
		h.documentError(w, r, sess, name, "render document", err)
		return
	}

	if content.Kind == domain.KindMarkdown {
		renderPage(w, r, h.sessions, sess, http.StatusOK, func(p view.Page) templ.Component {
			return view.DocumentPage(p, name, content.Payload)
		})
		return
	}

	w.Header().Set("Content-Type", content.MediaType)
	w.Header().Set("Content-Length", strconv.Itoa(len(content.Payload)))
	if _, err := w.Write(content.Payload); err != nil {
		slog.Error("write document", "name", name, "error", err)
	}
}

// HandleEdit renders the editor with the document's raw content.
// GET /{filename}/edit
func (h *DocumentHandler) HandleEdit(w http.ResponseWriter, r *http.Request) {
	sess := h.sessions.Load(r)
	name := r.PathValue("filename")

	data, err := h.docs.Read(r.Context(), name)
	if err != nil {
		h.documentError(w, r, sess, name, "read document", err)
		return
	}

	kind, _ := domain.KindOf(name)
	renderPage(w, r, h.sessions, sess, http.StatusOK, func(p view.Page) templ.Component {
		return view.EditDocumentPage(p, name, string(data), kind == domain.KindMarkdown)
	})
}

// HandleUpdate replaces a document's content.
// POST /{filename}
func (h *DocumentHandler) HandleUpdate(w http.ResponseWriter, r *http.Request) {
	sess := h.sessions.Load(r)
	name := r.PathValue("filename")

	if err := h.docs.Write(r.Context(), sess, name, []byte(r.FormValue("content"))); err != nil {
		h.documentError(w, r, sess, name, "update document", err)
		return
	}
	redirectWithFlash(w, r, h.sessions, sess, name+" has been updated.")
}

// HandleDelete removes a document.
// POST /{filename}/delete
func (h *DocumentHandler) HandleDelete(w http.ResponseWriter, r *http.Request) {
	sess := h.sessions.Load(r)
	name := r.PathValue("filename")

	if err := h.docs.Delete(r.Context(), sess, name); err != nil {
		h.documentError(w, r, sess, name, "delete document", err)
		return
	}
	redirectWithFlash(w, r, h.sessions, sess, name+" has been deleted.")
}

// HandleDuplicate copies a document next to the original.
// POST /{filename}/duplicate
func (h *DocumentHandler) HandleDuplicate(w http.ResponseWriter, r *http.Request) {
	sess := h.sessions.Load(r)
	name := r.PathValue("filename")

	if _, err := h.docs.Duplicate(r.Context(), sess, name); err != nil {
		h.documentError(w, r, sess, name, "duplicate document", err)
		return
	}
	redirectWithFlash(w, r, h.sessions, sess, name+" has been duplicated.")
}

// HandlePreview renders unsaved markdown from the editor's content signal
// and patches it into the preview panel.
// POST /{filename}/preview
func (h *DocumentHandler) HandlePreview(w http.ResponseWriter, r *http.Request) {
	sess := h.sessions.Load(r)
	if !sess.SignedIn() {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}
	if kind, err := domain.KindOf(r.PathValue("filename")); err != nil || kind != domain.KindMarkdown {
		http.Error(w, "Preview is only available for markdown documents.", http.StatusUnprocessableEntity)
		return
	}

	var signals struct {
		Content string `json:"content"`
	}
	if err := datastar.ReadSignals(r, &signals); err != nil {
		http.Error(w, "Bad Request", http.StatusBadRequest)
		return
	}

	html, err := h.docs.Preview([]byte(signals.Content))
	if err != nil {
		slog.Error("render preview", "error", err)
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}

	sse := datastar.NewSSE(w, r)
	if err := sse.PatchElementTempl(view.PreviewFragment(html)); err != nil {
		slog.Error("patch preview", "error", err)
	}
}

// HandleThumbnail serves a scaled JPEG of an image document.
// GET /{filename}/thumbnail?size=N
func (h *DocumentHandler) HandleThumbnail(w http.ResponseWriter, r *http.Request) {
	name := r.PathValue("filename")

	size := service.DefaultThumbnailSize
	if v := r.URL.Query().Get("size"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n <= 0 {
			http.Error(w, "Invalid size.", http.StatusBadRequest)
			return
		}
		size = min(n, service.MaxThumbnailSize)
	}

	thumb, err := h.docs.Thumbnail(r.Context(), name, size)
	switch {
	case err == nil:
	case errors.Is(err, domain.ErrNotFound), errors.Is(err, domain.ErrInvalidName):
		http.Error(w, "Not Found", http.StatusNotFound)
		return
	case errors.Is(err, domain.ErrUnsupportedType):
		http.Error(w, "Unsupported Media Type", http.StatusUnsupportedMediaType)
		return
	default:
		slog.Error("make thumbnail", "name", name, "error", err)
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "image/jpeg")
	w.Header().Set("Content-Length", strconv.Itoa(len(thumb)))
	if _, err := w.Write(thumb); err != nil {
		slog.Error("write thumbnail", "name", name, "error", err)
	}
}

// documentError maps a failed document operation to a flash and redirect.
// Storage failures are not masked.
func (h *DocumentHandler) documentError(w http.ResponseWriter, r *http.Request, sess *domain.Session, name, op string, err error) {
	switch {
	case errors.Is(err, domain.ErrNotAuthenticated):
		redirectWithFlash(w, r, h.sessions, sess, msgSignInRequired)
	case errors.Is(err, domain.ErrNotFound), errors.Is(err, domain.ErrInvalidName):
		redirectWithFlash(w, r, h.sessions, sess, name+" does not exist.")
	case errors.Is(err, domain.ErrUnsupportedType):
		redirectWithFlash(w, r, h.sessions, sess, name+" cannot be displayed.")
	default:
		serverError(w, r, h.sessions, sess, op, err)
	}
}
