//go:generate templ generate

package view

import (
	"net/url"
	"strings"
)

const datastarScript = "https://cdn.jsdelivr.net/gh/starfederation/datastar@1.0.0-RC.6/bundles/datastar.js"

// Page carries the per-request state every page shows in its chrome.
type Page struct {
	Username string
	Flash    string
}

func (p Page) SignedIn() bool {
	return p.Username != ""
}

// DocumentEntry is one row of the index listing.
type DocumentEntry struct {
	Name    string
	IsImage bool
}

// docPath is the URL path of a document, with an optional suffix such as
// "/edit". Quotes are percent-encoded so the path is safe inside Datastar
// expressions.
func docPath(name, suffix string) string {
	return "/" + strings.ReplaceAll(url.PathEscape(name), "'", "%27") + suffix
}

// previewAction posts the bound editor content to the preview endpoint.
func previewAction(name string) string {
	return "@post('" + docPath(name, "/preview") + "')"
}
