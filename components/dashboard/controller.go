package dashboard

import (
	"context"
	"fmt"
	"io"
	"time"
)

// Template names rendered by the controller. Names are extensionless; the
// renderer resolves them against its base directory and configured extension.
const (
	// DefaultDashboardTemplate is the page template rendered for full loads.
	DefaultDashboardTemplate = "dashboard"
	// ErrorTemplate is the standalone page rendered when the layout cannot
	// be resolved at all.
	ErrorTemplate = "error"
)

// LayoutResolver is the slice of the service the controller consumes.
type LayoutResolver interface {
	ConfigureLayout(ctx context.Context, viewer ViewerContext) (Layout, error)
}

// ControllerOptions wires the page controller.
type ControllerOptions struct {
	Service  LayoutResolver
	Renderer Renderer
	Template string
}

// Controller renders the dashboard page for a viewer: it resolves the
// widget layout and hands the payload to the template renderer.
type Controller struct {
	opts ControllerOptions
}

// NewController builds a controller. The template name defaults to
// DefaultDashboardTemplate.
func NewController(opts ControllerOptions) *Controller {
	if opts.Template == "" {
		opts.Template = DefaultDashboardTemplate
	}
	return &Controller{opts: opts}
}

// Render resolves the layout for a viewer and returns it to the caller.
func (c *Controller) Render(ctx context.Context, viewer ViewerContext) (Layout, error) {
	if c.opts.Service == nil {
		return Layout{}, fmt.Errorf("dashboard: controller requires a service")
	}
	return c.opts.Service.ConfigureLayout(ctx, viewer)
}

// RenderTemplate resolves the layout and writes the rendered page to out.
func (c *Controller) RenderTemplate(ctx context.Context, viewer ViewerContext, out io.Writer) error {
	if c.opts.Renderer == nil {
		return fmt.Errorf("dashboard: controller requires a renderer")
	}
	layout, err := c.Render(ctx, viewer)
	if err != nil {
		return err
	}
	_, err = c.opts.Renderer.Render(c.opts.Template, LayoutPayload(viewer, layout), out)
	return err
}

// RenderError writes the standalone error page for err. The view carries
// the HTTP status derived from the error chain so transports can reuse it
// for the response code.
func (c *Controller) RenderError(err error, out io.Writer) (ErrorView, error) {
	view := BuildErrorView(err)
	if c.opts.Renderer == nil {
		return view, fmt.Errorf("dashboard: controller requires a renderer")
	}
	_, renderErr := c.opts.Renderer.Render(ErrorTemplate, view, out)
	return view, renderErr
}

// LayoutPayload flattens a resolved layout into the template data shape
// shared by every transport.
func LayoutPayload(viewer ViewerContext, layout Layout) map[string]any {
	return map[string]any{
		"viewer":       viewer,
		"areas":        layout.Areas,
		"main_area":    layout.Areas[AreaMain],
		"sidebar_area": layout.Areas[AreaSidebar],
		"generated_at": time.Now().UTC(),
	}
}
