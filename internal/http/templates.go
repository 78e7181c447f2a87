package http

import (
	"embed"
	"html/template"
)

//go:embed templates/*.html
var embeddedTemplates embed.FS

// ParseTemplates parses the embedded page templates. Page names are the file
// names, e.g. "books.html".
func ParseTemplates() (*template.Template, error) {
	return template.ParseFS(embeddedTemplates, "templates/*.html")
}
