package handler

import (
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/msomdec/cms/internal/domain"
)

const (
	sessionCookieName = "cms_session"
	sessionTTL        = 24 * time.Hour
)

type sessionClaims struct {
	Username string `json:"usr,omitempty"`
	Flash    string `json:"flash,omitempty"`
	jwt.RegisteredClaims
}

// SessionManager carries domain.Session between requests in a signed cookie.
type SessionManager struct {
	secret []byte
	secure bool
	now    func() time.Time
}

// NewSessionManager creates a SessionManager signing cookies with secret (HS256).
func NewSessionManager(secret string, secure bool) *SessionManager {
	return &SessionManager{secret: []byte(secret), secure: secure, now: time.Now}
}

// Load returns the session carried by the request. A missing, expired or
// tampered cookie yields an empty session.
func (m *SessionManager) Load(r *http.Request) *domain.Session {
	cookie, err := r.Cookie(sessionCookieName)
	if err != nil {
		return &domain.Session{}
	}

	var claims sessionClaims
	_, err = jwt.ParseWithClaims(cookie.Value, &claims, func(token *jwt.Token) (any, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return m.secret, nil
	}, jwt.WithTimeFunc(m.now), jwt.WithExpirationRequired())
	if err != nil {
		slog.Debug("discard session cookie", "error", err)
		return &domain.Session{}
	}

	return &domain.Session{Username: claims.Username, Flash: claims.Flash}
}

// Save writes sess back to the client. An empty session clears the cookie.
func (m *SessionManager) Save(w http.ResponseWriter, sess *domain.Session) error {
	if sess == nil || (sess.Username == "" && sess.Flash == "") {
		http.SetCookie(w, m.cookie("", -1))
		return nil
	}

	now := m.now()
	claims := sessionClaims{
		Username: sess.Username,
		Flash:    sess.Flash,
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(sessionTTL)),
		},
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(m.secret)
	if err != nil {
		return fmt.Errorf("sign session: %w", err)
	}

	http.SetCookie(w, m.cookie(token, int(sessionTTL.Seconds())))
	return nil
}

func (m *SessionManager) cookie(value string, maxAge int) *http.Cookie {
	return &http.Cookie{
		Name:     sessionCookieName,
		Value:    value,
		Path:     "/",
		HttpOnly: true,
		Secure:   m.secure,
		SameSite: http.SameSiteLaxMode,
		MaxAge:   maxAge,
	}
}
