package handler_test

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/msomdec/cms/internal/domain"
	"github.com/msomdec/cms/internal/handler"
)

// roundTrip saves sess with m and loads it back through a new request.
func roundTrip(t *testing.T, save, load *handler.SessionManager, sess *domain.Session) (*domain.Session, *http.Cookie) {
	t.Helper()
	w := httptest.NewRecorder()
	if err := save.Save(w, sess); err != nil {
		t.Fatalf("Save: %v", err)
	}
	cookies := w.Result().Cookies()
	if len(cookies) != 1 {
		t.Fatalf("expected one cookie, got %d", len(cookies))
	}

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.AddCookie(cookies[0])
	return load.Load(req), cookies[0]
}

func TestSessionManager_RoundTrip(t *testing.T) {
	m := handler.NewSessionManager(testSessionSecret, true)

	got, cookie := roundTrip(t, m, m, &domain.Session{Username: "alice", Flash: "Welcome!"})

	if got.Username != "alice" || got.Flash != "Welcome!" {
		t.Fatalf("unexpected session %+v", got)
	}
	if cookie.Name != "cms_session" || !cookie.HttpOnly || !cookie.Secure || cookie.SameSite != http.SameSiteLaxMode {
		t.Fatalf("unexpected cookie attributes %+v", cookie)
	}
}

func TestSessionManager_RejectsForeignSignature(t *testing.T) {
	ours := handler.NewSessionManager(testSessionSecret, false)
	theirs := handler.NewSessionManager("another-secret-that-is-long-enough-000", false)

	got, _ := roundTrip(t, theirs, ours, &domain.Session{Username: "mallory"})

	if got.SignedIn() {
		t.Fatal("session signed with another key must not be trusted")
	}
}

func TestSessionManager_GarbageCookie(t *testing.T) {
	m := handler.NewSessionManager(testSessionSecret, false)

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.AddCookie(&http.Cookie{Name: "cms_session", Value: "not-a-jwt"})
	sess := m.Load(req)

	if sess == nil || sess.SignedIn() || sess.Flash != "" {
		t.Fatalf("expected empty session, got %+v", sess)
	}
}

func TestSessionManager_EmptySessionClearsCookie(t *testing.T) {
	m := handler.NewSessionManager(testSessionSecret, false)

	w := httptest.NewRecorder()
	if err := m.Save(w, &domain.Session{}); err != nil {
		t.Fatalf("Save: %v", err)
	}
	cookies := w.Result().Cookies()
	if len(cookies) != 1 || cookies[0].MaxAge >= 0 {
		t.Fatalf("expected an expiring cookie, got %+v", cookies)
	}
}
