package handler

import (
	"net/http"

	"github.com/msomdec/cms/internal/service"
)

// RegisterRoutes sets up all HTTP routes on the given mux.
func RegisterRoutes(mux *http.ServeMux, docs *service.DocumentService, creds *service.CredentialService, sessions *SessionManager, limiter *service.TokenBucket) {
	authHandler := NewAuthHandler(creds, sessions, limiter)
	docHandler := NewDocumentHandler(docs, sessions)

	mux.HandleFunc("GET /healthz", HandleHealthz(docs))

	mux.HandleFunc("GET /users/signup", authHandler.HandleSignupPage)
	mux.HandleFunc("POST /users/signup", authHandler.HandleSignup)
	mux.HandleFunc("GET /users/signin", authHandler.HandleSigninPage)
	mux.HandleFunc("POST /users/signin", authHandler.HandleSignin)
	mux.HandleFunc("POST /users/signout", authHandler.HandleSignout)

	signedIn := func(h http.HandlerFunc) http.Handler {
		return RequireSignedIn(sessions, h)
	}

	mux.HandleFunc("GET /{$}", docHandler.HandleIndex)
	mux.Handle("GET /new", signedIn(docHandler.HandleNew))
	mux.Handle("POST /create", signedIn(docHandler.HandleCreate))
	mux.HandleFunc("GET /{filename}", docHandler.HandleView)
	mux.Handle("POST /{filename}", signedIn(docHandler.HandleUpdate))
	mux.Handle("GET /{filename}/edit", signedIn(docHandler.HandleEdit))
	mux.Handle("POST /{filename}/delete", signedIn(docHandler.HandleDelete))
	mux.Handle("POST /{filename}/duplicate", signedIn(docHandler.HandleDuplicate))
	mux.HandleFunc("POST /{filename}/preview", docHandler.HandlePreview)
	mux.HandleFunc("GET /{filename}/thumbnail", docHandler.HandleThumbnail)
}
