package view_test

import (
	"context"
	"strings"
	"testing"

	"github.com/a-h/templ"

	"github.com/msomdec/cms/internal/view"
)

func render(t *testing.T, c templ.Component) string {
	t.Helper()
	var sb strings.Builder
	if err := c.Render(context.Background(), &sb); err != nil {
		t.Fatalf("render: %v", err)
	}
	return sb.String()
}

func TestIndexPage_SignedOut(t *testing.T) {
	html := render(t, view.IndexPage(view.Page{Flash: "hello"}, []view.DocumentEntry{
		{Name: "about.md"},
		{Name: "cat.png", IsImage: true},
	}))

	for _, want := range []string{`href="/about.md"`, `src="/cat.png/thumbnail"`, `href="/users/signin"`, `class="flash"`, "hello"} {
		if !strings.Contains(html, want) {
			t.Errorf("expected %q in output", want)
		}
	}
	for _, unwanted := range []string{"/about.md/delete", "/new", "Sign Out"} {
		if strings.Contains(html, unwanted) {
			t.Errorf("signed-out index should not contain %q", unwanted)
		}
	}
}

func TestIndexPage_SignedIn(t *testing.T) {
	html := render(t, view.IndexPage(view.Page{Username: "admin"}, []view.DocumentEntry{
		{Name: "about.md"},
		{Name: "cat.png", IsImage: true},
	}))

	for _, want := range []string{
		`action="/about.md/delete"`,
		`action="/about.md/duplicate"`,
		`href="/about.md/edit"`,
		`href="/new"`,
		"Signed in as admin",
	} {
		if !strings.Contains(html, want) {
			t.Errorf("expected %q in output", want)
		}
	}
	if strings.Contains(html, "/cat.png/edit") {
		t.Error("images should not get an edit link")
	}
	if strings.Contains(html, `class="flash"`) {
		t.Error("no flash expected")
	}
}

func TestIndexPage_EscapesNames(t *testing.T) {
	html := render(t, view.IndexPage(view.Page{}, []view.DocumentEntry{{Name: "<b>x</b>.txt"}}))

	if strings.Contains(html, "<b>x</b>") {
		t.Fatal("document name was not escaped")
	}
	if !strings.Contains(html, "&lt;b&gt;x&lt;/b&gt;.txt") {
		t.Fatal("expected escaped name in listing")
	}
}

func TestEditDocumentPage(t *testing.T) {
	md := render(t, view.EditDocumentPage(view.Page{Username: "admin"}, "about.md", "# </textarea>", true))
	if !strings.Contains(md, "data-bind:content") || !strings.Contains(md, `data-on:click="@post(&#39;/about.md/preview&#39;)"`) {
		t.Fatal("markdown editor should carry the preview wiring")
	}
	if !strings.Contains(md, `id="preview"`) {
		t.Fatal("markdown editor should include the preview panel")
	}
	if strings.Contains(md, "# </textarea>") {
		t.Fatal("content was not escaped")
	}

	txt := render(t, view.EditDocumentPage(view.Page{Username: "admin"}, "notes.txt", "plain", false))
	if strings.Contains(txt, "data-bind") || strings.Contains(txt, `id="preview"`) {
		t.Fatal("text editor should not include preview wiring")
	}
	if !strings.Contains(txt, `action="/notes.txt"`) || !strings.Contains(txt, `name="content"`) {
		t.Fatal("expected edit form posting content")
	}
}

func TestEditDocumentPage_QuotedNameStaysInExpression(t *testing.T) {
	html := render(t, view.EditDocumentPage(view.Page{Username: "admin"}, "it's.md", "", true))
	if !strings.Contains(html, `@post(&#39;/it%27s.md/preview&#39;)`) {
		t.Fatal("quote in name should be percent-encoded inside the preview action")
	}
}

func TestDocumentPage_EmbedsHTML(t *testing.T) {
	html := render(t, view.DocumentPage(view.Page{}, "about.md", []byte("<h1>Title</h1>")))
	if !strings.Contains(html, "<h1>Title</h1>") {
		t.Fatal("expected rendered markdown embedded unescaped")
	}
}

func TestPreviewFragment(t *testing.T) {
	html := render(t, view.PreviewFragment([]byte("<em>hi</em>")))
	if html != `<div id="preview" class="markdown"><em>hi</em></div>` {
		t.Fatalf("unexpected fragment %q", html)
	}
}

func TestCredentialPages(t *testing.T) {
	up := render(t, view.SignupPage(view.Page{Flash: "Username already exists."}, "alice"))
	if !strings.Contains(up, `action="/users/signup"`) || !strings.Contains(up, `value="alice"`) {
		t.Fatal("signup form should post to /users/signup and keep the username")
	}
	if !strings.Contains(up, "Username already exists.") {
		t.Fatal("expected flash on signup page")
	}

	in := render(t, view.SigninPage(view.Page{}, ""))
	if !strings.Contains(in, `action="/users/signin"`) || !strings.Contains(in, `type="password"`) {
		t.Fatal("signin form should post to /users/signin with a password field")
	}
}

func TestNewDocumentPage(t *testing.T) {
	html := render(t, view.NewDocumentPage(view.Page{Username: "admin", Flash: "Invalid file type."}, "bad.exe"))
	if !strings.Contains(html, `action="/create"`) || !strings.Contains(html, `value="bad.exe"`) {
		t.Fatal("expected create form keeping the attempted name")
	}
}
