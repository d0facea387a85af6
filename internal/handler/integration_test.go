package handler_test

import (
	"bytes"
	"context"
	"image"
	"image/color"
	"image/png"
	"io"
	"net/http"
	"net/url"
	"slices"
	"strings"
	"testing"

	"github.com/a-h/templ"
)

// containsText reports whether body contains s as rendered HTML text.
func containsText(body, s string) bool {
	return strings.Contains(body, templ.EscapeString(s))
}

func TestIntegration_SignupSigninSignout(t *testing.T) {
	env := newTestEnv(t)
	client := newClient(t)

	// 1. Sign up.
	resp := postForm(t, client, env.srv.URL+"/users/signup", url.Values{
		"username": {"alice"},
		"password": {"secret"},
	})
	expectRedirectFlash(t, env, client, resp, "alice signup complete. You can now sign in.")

	// 2. Signing up again is rejected.
	resp = postForm(t, client, env.srv.URL+"/users/signup", url.Values{
		"username": {"alice"},
		"password": {"other"},
	})
	body, _ := io.ReadAll(resp.Body)
	resp.Body.Close()
	if resp.StatusCode != http.StatusUnprocessableEntity {
		t.Fatalf("duplicate signup: expected 422, got %d", resp.StatusCode)
	}
	if !containsText(string(body), "Username already exists.") {
		t.Fatal("duplicate signup: expected flash in re-rendered form")
	}

	// 3. Wrong password.
	resp = postForm(t, client, env.srv.URL+"/users/signin", url.Values{
		"username": {"alice"},
		"password": {"wrong"},
	})
	body, _ = io.ReadAll(resp.Body)
	resp.Body.Close()
	if resp.StatusCode != http.StatusUnprocessableEntity {
		t.Fatalf("bad signin: expected 422, got %d", resp.StatusCode)
	}
	if !containsText(string(body), "Invalid credentials") {
		t.Fatal("bad signin: expected flash")
	}

	// 4. Correct password.
	resp = postForm(t, client, env.srv.URL+"/users/signin", url.Values{
		"username": {"alice"},
		"password": {"secret"},
	})
	expectRedirectFlash(t, env, client, resp, "Welcome!")

	_, index := get(t, client, env.srv.URL+"/")
	if !containsText(index, "Signed in as alice.") {
		t.Fatal("expected signed-in header on index")
	}

	// 5. Sign out.
	resp = postForm(t, client, env.srv.URL+"/users/signout", nil)
	expectRedirectFlash(t, env, client, resp, "You have been signed out.")

	_, index = get(t, client, env.srv.URL+"/")
	if strings.Contains(index, "Signed in as") {
		t.Fatal("expected signed-out index after signout")
	}
}

func TestIntegration_FlashShownOnce(t *testing.T) {
	env := newTestEnv(t)
	client := newClient(t)

	resp := postForm(t, client, env.srv.URL+"/users/signout", nil)
	expectRedirectFlash(t, env, client, resp, "You have been signed out.")

	_, body := get(t, client, env.srv.URL+"/")
	if containsText(body, "You have been signed out.") {
		t.Fatal("flash should be shown only once")
	}
}

func TestIntegration_SignedOutCannotMutate(t *testing.T) {
	env := newTestEnv(t)
	client := newClient(t)
	ctx := context.Background()

	if err := env.docs.Write(ctx, "keep.txt", []byte("original")); err != nil {
		t.Fatalf("seed: %v", err)
	}

	attempts := []struct {
		method, path string
		form         url.Values
	}{
		{http.MethodGet, "/new", nil},
		{http.MethodPost, "/create", url.Values{"filename": {"new.txt"}}},
		{http.MethodGet, "/keep.txt/edit", nil},
		{http.MethodPost, "/keep.txt", url.Values{"content": {"changed"}}},
		{http.MethodPost, "/keep.txt/delete", nil},
		{http.MethodPost, "/keep.txt/duplicate", nil},
	}

	for _, a := range attempts {
		t.Run(a.method+" "+a.path, func(t *testing.T) {
			var resp *http.Response
			if a.method == http.MethodGet {
				var err error
				resp, err = client.Get(env.srv.URL + a.path)
				if err != nil {
					t.Fatalf("GET %s: %v", a.path, err)
				}
			} else {
				resp = postForm(t, client, env.srv.URL+a.path, a.form)
			}
			expectRedirectFlash(t, env, client, resp, "You must be signed in to do that.")
		})
	}

	names, _ := env.docs.List(ctx)
	if !slices.Equal(names, []string{"keep.txt"}) {
		t.Fatalf("expected store unchanged, got %v", names)
	}
	data, _ := env.docs.Read(ctx, "keep.txt")
	if string(data) != "original" {
		t.Fatalf("expected content unchanged, got %q", data)
	}
}

func TestIntegration_DocumentLifecycle(t *testing.T) {
	env := newTestEnv(t)
	client := newClient(t)
	env.signIn(t, client, "admin")

	// Create.
	resp := postForm(t, client, env.srv.URL+"/create", url.Values{"filename": {"notes.txt"}})
	expectRedirectFlash(t, env, client, resp, "notes.txt has been created.")

	_, index := get(t, client, env.srv.URL+"/")
	if !strings.Contains(index, `href="/notes.txt"`) {
		t.Fatal("expected notes.txt on the index")
	}

	// Empty on creation.
	resp, body := get(t, client, env.srv.URL+"/notes.txt")
	if resp.StatusCode != http.StatusOK || body != "" {
		t.Fatalf("expected empty 200, got %d %q", resp.StatusCode, body)
	}
	if ct := resp.Header.Get("Content-Type"); ct != "text/plain; charset=utf-8" {
		t.Fatalf("unexpected content type %q", ct)
	}

	// Edit form.
	resp, body = get(t, client, env.srv.URL+"/notes.txt/edit")
	if resp.StatusCode != http.StatusOK || !strings.Contains(body, `name="content"`) {
		t.Fatalf("expected edit form, got %d", resp.StatusCode)
	}

	// Update.
	resp = postForm(t, client, env.srv.URL+"/notes.txt", url.Values{"content": {"hello"}})
	expectRedirectFlash(t, env, client, resp, "notes.txt has been updated.")

	_, body = get(t, client, env.srv.URL+"/notes.txt")
	if body != "hello" {
		t.Fatalf("expected updated content, got %q", body)
	}

	// Duplicate.
	resp = postForm(t, client, env.srv.URL+"/notes.txt/duplicate", nil)
	expectRedirectFlash(t, env, client, resp, "notes.txt has been duplicated.")

	_, body = get(t, client, env.srv.URL+"/"+url.PathEscape("notes(dup).txt"))
	if body != "hello" {
		t.Fatalf("expected duplicate content, got %q", body)
	}

	// Delete.
	resp = postForm(t, client, env.srv.URL+"/notes.txt/delete", nil)
	expectRedirectFlash(t, env, client, resp, "notes.txt has been deleted.")

	resp, err := client.Get(env.srv.URL + "/notes.txt")
	if err != nil {
		t.Fatalf("GET deleted: %v", err)
	}
	expectRedirectFlash(t, env, client, resp, "notes.txt does not exist.")

	// Deleting again reports the missing document.
	resp = postForm(t, client, env.srv.URL+"/notes.txt/delete", nil)
	expectRedirectFlash(t, env, client, resp, "notes.txt does not exist.")
}

func TestIntegration_CreateValidation(t *testing.T) {
	env := newTestEnv(t)
	client := newClient(t)
	env.signIn(t, client, "admin")

	tests := []struct {
		filename string
		flash    string
	}{
		{"", "A name is required."},
		{"script.exe", "Invalid file type."},
		{".txt", "Invalid file type."},
	}

	for _, tc := range tests {
		t.Run(tc.filename, func(t *testing.T) {
			resp := postForm(t, client, env.srv.URL+"/create", url.Values{"filename": {tc.filename}})
			body, _ := io.ReadAll(resp.Body)
			resp.Body.Close()

			if resp.StatusCode != http.StatusUnprocessableEntity {
				t.Fatalf("expected 422, got %d", resp.StatusCode)
			}
			if !containsText(string(body), tc.flash) {
				t.Fatalf("expected flash %q in re-rendered form", tc.flash)
			}
		})
	}

	names, _ := env.docs.List(context.Background())
	if len(names) != 0 {
		t.Fatalf("expected no documents, got %v", names)
	}
}

func TestIntegration_MarkdownRenderedInLayout(t *testing.T) {
	env := newTestEnv(t)
	client := newClient(t)

	if err := env.docs.Write(context.Background(), "about.md", []byte("# Title\n\nSome *text*.\n")); err != nil {
		t.Fatalf("seed: %v", err)
	}

	resp, body := get(t, client, env.srv.URL+"/about.md")
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}
	if ct := resp.Header.Get("Content-Type"); ct != "text/html; charset=utf-8" {
		t.Fatalf("unexpected content type %q", ct)
	}
	if !strings.Contains(body, "<h1>Title</h1>") || !strings.Contains(body, "<em>text</em>") {
		t.Fatalf("expected rendered markdown, got:\n%s", body)
	}
	if !strings.Contains(strings.ToLower(body), "<!doctype html>") {
		t.Fatal("expected markdown inside the page layout")
	}
}

func TestIntegration_UnsupportedType(t *testing.T) {
	env := newTestEnv(t)
	client := newClient(t)

	if err := env.docs.Write(context.Background(), "data.csv", []byte("a,b")); err != nil {
		t.Fatalf("seed: %v", err)
	}

	resp, err := client.Get(env.srv.URL + "/data.csv")
	if err != nil {
		t.Fatalf("GET: %v", err)
	}
	expectRedirectFlash(t, env, client, resp, "data.csv cannot be displayed.")
}

func TestIntegration_SigninRateLimited(t *testing.T) {
	env := newTestEnvWithLimiter(t, 0, 2)
	client := newClient(t)

	for i := 0; i < 2; i++ {
		resp := postForm(t, client, env.srv.URL+"/users/signin", url.Values{
			"username": {"nobody"},
			"password": {"x"},
		})
		resp.Body.Close()
		if resp.StatusCode != http.StatusUnprocessableEntity {
			t.Fatalf("attempt %d: expected 422, got %d", i+1, resp.StatusCode)
		}
	}

	resp := postForm(t, client, env.srv.URL+"/users/signin", url.Values{
		"username": {"nobody"},
		"password": {"x"},
	})
	resp.Body.Close()
	if resp.StatusCode != http.StatusTooManyRequests {
		t.Fatalf("expected 429, got %d", resp.StatusCode)
	}
}

func TestIntegration_MarkdownPreview(t *testing.T) {
	env := newTestEnv(t)
	client := newClient(t)

	post := func() *http.Response {
		req, err := http.NewRequest(http.MethodPost, env.srv.URL+"/about.md/preview", strings.NewReader(`{"content":"*hi*"}`))
		if err != nil {
			t.Fatalf("new request: %v", err)
		}
		req.Header.Set("Content-Type", "application/json")
		req.Header.Set("Datastar-Request", "true")
		resp, err := client.Do(req)
		if err != nil {
			t.Fatalf("POST preview: %v", err)
		}
		return resp
	}

	resp := post()
	resp.Body.Close()
	if resp.StatusCode != http.StatusUnauthorized {
		t.Fatalf("signed out: expected 401, got %d", resp.StatusCode)
	}

	env.signIn(t, client, "admin")

	resp = post()
	defer resp.Body.Close()
	if ct := resp.Header.Get("Content-Type"); !strings.HasPrefix(ct, "text/event-stream") {
		t.Fatalf("expected SSE response, got %q", ct)
	}
	body, _ := io.ReadAll(resp.Body)
	if !strings.Contains(string(body), "datastar-patch-elements") {
		t.Fatalf("expected patch event, got:\n%s", body)
	}
	if !strings.Contains(string(body), `<div id="preview" class="markdown"><p><em>hi</em></p>`) {
		t.Fatalf("expected rendered preview, got:\n%s", body)
	}
}

func TestIntegration_Thumbnail(t *testing.T) {
	env := newTestEnv(t)
	client := newClient(t)
	ctx := context.Background()

	img := image.NewRGBA(image.Rect(0, 0, 64, 32))
	img.Set(1, 1, color.RGBA{R: 255, A: 255})
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		t.Fatalf("encode: %v", err)
	}
	if err := env.docs.Write(ctx, "cat.png", buf.Bytes()); err != nil {
		t.Fatalf("seed: %v", err)
	}
	if err := env.docs.Write(ctx, "notes.txt", []byte("hi")); err != nil {
		t.Fatalf("seed: %v", err)
	}

	resp, _ := get(t, client, env.srv.URL+"/cat.png/thumbnail?size=16")
	if resp.StatusCode != http.StatusOK || resp.Header.Get("Content-Type") != "image/jpeg" {
		t.Fatalf("expected jpeg thumbnail, got %d %q", resp.StatusCode, resp.Header.Get("Content-Type"))
	}

	_, index := get(t, client, env.srv.URL+"/")
	if !strings.Contains(index, `src="/cat.png/thumbnail"`) {
		t.Fatal("expected thumbnail on index")
	}

	tests := []struct {
		path   string
		status int
	}{
		{"/notes.txt/thumbnail", http.StatusUnsupportedMediaType},
		{"/ghost.png/thumbnail", http.StatusNotFound},
		{"/cat.png/thumbnail?size=abc", http.StatusBadRequest},
	}
	for _, tc := range tests {
		resp, _ := get(t, client, env.srv.URL+tc.path)
		if resp.StatusCode != tc.status {
			t.Errorf("%s: expected %d, got %d", tc.path, tc.status, resp.StatusCode)
		}
	}
}
