package handler

import (
	"errors"
	"net/http"

	"github.com/a-h/templ"

	"github.com/msomdec/cms/internal/domain"
	"github.com/msomdec/cms/internal/service"
	"github.com/msomdec/cms/internal/view"
)

// AuthHandler handles signup, signin and signout.
type AuthHandler struct {
	creds    *service.CredentialService
	sessions *SessionManager
	limiter  *service.TokenBucket
}

// NewAuthHandler creates a new AuthHandler. Sign-in attempts are throttled
// per client address by limiter.
func NewAuthHandler(creds *service.CredentialService, sessions *SessionManager, limiter *service.TokenBucket) *AuthHandler {
	return &AuthHandler{creds: creds, sessions: sessions, limiter: limiter}
}

// HandleSignupPage renders the signup form.
// GET /users/signup
func (h *AuthHandler) HandleSignupPage(w http.ResponseWriter, r *http.Request) {
	sess := h.sessions.Load(r)
	renderPage(w, r, h.sessions, sess, http.StatusOK, func(p view.Page) templ.Component {
		return view.SignupPage(p, "")
	})
}

// HandleSignup registers a new user.
// POST /users/signup
func (h *AuthHandler) HandleSignup(w http.ResponseWriter, r *http.Request) {
	sess := h.sessions.Load(r)
	username := r.FormValue("username")
	password := r.FormValue("password")

	err := h.creds.Register(r.Context(), username, password)
	switch {
	case err == nil:
		redirectWithFlash(w, r, h.sessions, sess, username+" signup complete. You can now sign in.")
		return
	case errors.Is(err, domain.ErrUsernameTaken):
		sess.SetFlash("Username already exists.")
	case errors.Is(err, domain.ErrInvalidInput):
		sess.SetFlash("A username and password are required.")
	default:
		serverError(w, r, h.sessions, sess, "register user", err)
		return
	}

	renderPage(w, r, h.sessions, sess, http.StatusUnprocessableEntity, func(p view.Page) templ.Component {
		return view.SignupPage(p, username)
	})
}

// HandleSigninPage renders the signin form.
// GET /users/signin
func (h *AuthHandler) HandleSigninPage(w http.ResponseWriter, r *http.Request) {
	sess := h.sessions.Load(r)
	renderPage(w, r, h.sessions, sess, http.StatusOK, func(p view.Page) templ.Component {
		return view.SigninPage(p, "")
	})
}

// HandleSignin verifies credentials and signs the client in.
// POST /users/signin
func (h *AuthHandler) HandleSignin(w http.ResponseWriter, r *http.Request) {
	sess := h.sessions.Load(r)
	username := r.FormValue("username")

	if !h.limiter.Allow(clientIP(r)) {
		sess.SetFlash("Too many sign-in attempts. Please try again later.")
		renderPage(w, r, h.sessions, sess, http.StatusTooManyRequests, func(p view.Page) templ.Component {
			return view.SigninPage(p, username)
		})
		return
	}

	ok, err := h.creds.Verify(r.Context(), username, r.FormValue("password"))
	if err != nil {
		serverError(w, r, h.sessions, sess, "verify credentials", err)
		return
	}
	if !ok {
		sess.SetFlash("Invalid credentials")
		renderPage(w, r, h.sessions, sess, http.StatusUnprocessableEntity, func(p view.Page) templ.Component {
			return view.SigninPage(p, username)
		})
		return
	}

	sess.SignIn(username)
	redirectWithFlash(w, r, h.sessions, sess, "Welcome!")
}

// HandleSignout clears the signed-in user.
// POST /users/signout
func (h *AuthHandler) HandleSignout(w http.ResponseWriter, r *http.Request) {
	sess := h.sessions.Load(r)
	sess.SignOut()
	redirectWithFlash(w, r, h.sessions, sess, "You have been signed out.")
}
