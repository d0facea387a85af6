package handler

import (
	"log/slog"
	"net/http"

	"github.com/a-h/templ"

	"github.com/msomdec/cms/internal/domain"
	"github.com/msomdec/cms/internal/view"
)

const (
	msgSignInRequired = "You must be signed in to do that."
	msgUnexpected     = "An unexpected error occurred. Please try again."
)

// renderPage consumes the pending flash into the page, persists the session
// and writes the component with the given status.
func renderPage(w http.ResponseWriter, r *http.Request, sessions *SessionManager, sess *domain.Session, status int, build func(view.Page) templ.Component) {
	page := view.Page{Username: sess.Username, Flash: sess.TakeFlash()}
	if err := sessions.Save(w, sess); err != nil {
		slog.Error("save session", "error", err)
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	if err := build(page).Render(r.Context(), w); err != nil {
		slog.Error("render page", "path", r.URL.Path, "error", err)
	}
}

// redirectWithFlash queues msg for the next page and redirects to the index.
func redirectWithFlash(w http.ResponseWriter, r *http.Request, sessions *SessionManager, sess *domain.Session, msg string) {
	sess.SetFlash(msg)
	if err := sessions.Save(w, sess); err != nil {
		slog.Error("save session", "error", err)
	}
	http.Redirect(w, r, "/", http.StatusSeeOther)
}

func serverError(w http.ResponseWriter, r *http.Request, sessions *SessionManager, sess *domain.Session, op string, err error) {
	slog.Error(op, "path", r.URL.Path, "error", err)
	renderPage(w, r, sessions, sess, http.StatusInternalServerError, func(p view.Page) templ.Component {
		return view.ErrorPage(p, http.StatusInternalServerError, msgUnexpected)
	})
}
