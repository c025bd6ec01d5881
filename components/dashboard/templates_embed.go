package dashboard

import (
	"embed"

	template "github.com/goliatone/go-template"
)

//go:embed templates/*.html
var embeddedTemplates embed.FS

// NewTemplateRenderer builds the go-template renderer backed by the embedded
// dashboard pages. Template names are resolved against the templates base
// directory with the .html extension appended, so callers render "dashboard"
// or "error" rather than file paths.
func NewTemplateRenderer() (Renderer, error) {
	return template.NewRenderer(
		template.WithFS(embeddedTemplates),
		template.WithBaseDir("templates"),
		template.WithExtension(".html"),
	)
}
