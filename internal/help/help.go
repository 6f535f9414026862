// Package help renders the embedded help pages to sanitized HTML.
package help

import (
	"embed"
	"path"
	"sort"
	"strings"

	"github.com/gomarkdown/markdown"
	"github.com/gomarkdown/markdown/html"
	"github.com/gomarkdown/markdown/parser"
	"github.com/microcosm-cc/bluemonday"

	"seodash/internal/errors"
)

//go:embed pages/*.md
var pages embed.FS

var policy = bluemonday.UGCPolicy()

// Page is a rendered help page
type Page struct {
	Name  string `json:"name"`
	Title string `json:"title"`
	HTML  string `json:"html"`
}

// Names lists the available pages
func Names() []string {
	entries, err := pages.ReadDir("pages")
	if err != nil {
		return nil
	}
	names := make([]string, 0, len(entries))
	for _, e := range entries {
		names = append(names, strings.TrimSuffix(e.Name(), ".md"))
	}
	sort.Strings(names)
	return names
}

// Render converts a page to HTML
func Render(name string) (*Page, error) {
	if name == "" || strings.ContainsAny(name, "/\\.") {
		return nil, errors.NotFound("help page " + name)
	}

	source, err := pages.ReadFile(path.Join("pages", name+".md"))
	if err != nil {
		return nil, errors.NotFound("help page " + name)
	}

	p := parser.NewWithExtensions(parser.CommonExtensions | parser.AutoHeadingIDs)
	renderer := html.NewRenderer(html.RendererOptions{Flags: html.CommonFlags | html.HrefTargetBlank})
	rendered := markdown.ToHTML(source, p, renderer)

	return &Page{
		Name:  name,
		Title: title(source),
		HTML:  string(policy.SanitizeBytes(rendered)),
	}, nil
}

// title returns the text of the first level-one heading
func title(source []byte) string {
	for _, line := range strings.Split(string(source), "\n") {
		if strings.HasPrefix(line, "# ") {
			return strings.TrimSpace(strings.TrimPrefix(line, "# "))
		}
	}
	return ""
}
