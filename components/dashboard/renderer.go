package dashboard

import "io"

// Renderer is the template engine contract used when serving the dashboard
// as server-rendered HTML. NewTemplateRenderer returns the default engine;
// hosts may plug in their own as long as it resolves extensionless names.
type Renderer interface {
	Render(name string, data any, out ...io.Writer) (string, error)
}
