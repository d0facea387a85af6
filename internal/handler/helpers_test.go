package handler_test

import (
	"context"
	"io"
	"net/http"
	"net/http/cookiejar"
	"net/http/httptest"
	"net/url"
	"testing"

	"github.com/msomdec/cms/internal/handler"
	"github.com/msomdec/cms/internal/repository/memory"
	"github.com/msomdec/cms/internal/service"
)

const testSessionSecret = "test-secret-for-handler-tests-0123456789"

type testEnv struct {
	srv   *httptest.Server
	docs  *memory.DocumentRepository
	creds *service.CredentialService
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	return newTestEnvWithLimiter(t, 100, 100)
}

func newTestEnvWithLimiter(t *testing.T, rate, burst float64) *testEnv {
	t.Helper()
	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)

	docRepo := memory.NewDocumentRepository()
	docs := service.NewDocumentService(docRepo, service.NewRenderer())
	creds := service.NewCredentialService(memory.NewCredentialRepository(), 4)
	sessions := handler.NewSessionManager(testSessionSecret, false)

	mux := http.NewServeMux()
	handler.RegisterRoutes(mux, docs, creds, sessions, service.NewTokenBucket(ctx, rate, burst))

	srv := httptest.NewServer(handler.RequestLogger(handler.SecurityHeaders(mux)))
	t.Cleanup(srv.Close)

	return &testEnv{srv: srv, docs: docRepo, creds: creds}
}

// newClient returns a client with its own cookie jar that does not follow redirects.
func newClient(t *testing.T) *http.Client {
	t.Helper()
	jar, err := cookiejar.New(nil)
	if err != nil {
		t.Fatalf("create cookie jar: %v", err)
	}
	return &http.Client{
		Jar: jar,
		CheckRedirect: func(req *http.Request, via []*http.Request) error {
			return http.ErrUseLastResponse
		},
	}
}

// signIn registers username and signs client in.
func (e *testEnv) signIn(t *testing.T, client *http.Client, username string) {
	t.Helper()
	if err := e.creds.Register(context.Background(), username, "secret"); err != nil {
		t.Fatalf("Register: %v", err)
	}
	resp := postForm(t, client, e.srv.URL+"/users/signin", url.Values{
		"username": {username},
		"password": {"secret"},
	})
	resp.Body.Close()
	if resp.StatusCode != http.StatusSeeOther {
		t.Fatalf("signin: expected 303, got %d", resp.StatusCode)
	}
	// Consume the welcome flash.
	get(t, client, e.srv.URL+"/")
}

func postForm(t *testing.T, client *http.Client, u string, form url.Values) *http.Response {
	t.Helper()
	resp, err := client.PostForm(u, form)
	if err != nil {
		t.Fatalf("POST %s: %v", u, err)
	}
	return resp
}

// get fetches u and returns the response with its body read.
func get(t *testing.T, client *http.Client, u string) (*http.Response, string) {
	t.Helper()
	resp, err := client.Get(u)
	if err != nil {
		t.Fatalf("GET %s: %v", u, err)
	}
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		t.Fatalf("read body: %v", err)
	}
	return resp, string(body)
}

// expectRedirectFlash asserts a 303 to the index and that the next index
// render shows flash.
func expectRedirectFlash(t *testing.T, e *testEnv, client *http.Client, resp *http.Response, flash string) {
	t.Helper()
	resp.Body.Close()
	if resp.StatusCode != http.StatusSeeOther {
		t.Fatalf("expected 303, got %d", resp.StatusCode)
	}
	if loc := resp.Header.Get("Location"); loc != "/" {
		t.Fatalf("expected redirect to /, got %q", loc)
	}
	_, body := get(t, client, e.srv.URL+"/")
	if !containsText(body, flash) {
		t.Fatalf("expected flash %q on index, body:\n%s", flash, body)
	}
}
