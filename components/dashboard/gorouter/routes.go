package gorouter

import (
	"bytes"
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	router "github.com/goliatone/go-router"

	"github.com/melodix/go-dashboard/components/dashboard"
	"github.com/melodix/go-dashboard/components/dashboard/commands"
	"github.com/melodix/go-dashboard/components/dashboard/httpapi"
)

// ViewerResolver converts a router.Context into a dashboard.ViewerContext.
type ViewerResolver func(router.Context) dashboard.ViewerContext

// Config wires go-router with the dashboard controller, the JSON API and
// the refresh broadcast.
type Config[T any] struct {
	Router         router.Router[T]
	Controller     *dashboard.Controller
	API            httpapi.Executor
	Broadcast      *dashboard.BroadcastHook
	ViewerResolver ViewerResolver
	BasePath       string
	Routes         RouteConfig
}

// RouteConfig customizes the relative paths used for dashboard endpoints.
type RouteConfig struct {
	HTML            string
	Layout          string
	Widgets         string
	WidgetID        string
	Reorder         string
	Refresh         string
	Preferences     string
	Range           string
	Mood            string
	Recommendations string
	Preview         string
	StopPreview     string
	Sidebar         string
	Sections        string
	WebSocket       string
	Assets          string
}

// Register mounts the dashboard routes (HTML, JSON, REST, WebSocket) on a
// go-router router.
func Register[T any](cfg Config[T]) error {
	if cfg.Router == nil {
		return errors.New("gorouter: router is required")
	}
	if cfg.Controller == nil {
		return errors.New("gorouter: controller is required")
	}
	routes := cfg.routes()
	base := cfg.BasePath
	if base == "" {
		base = "/melodix"
	}
	viewerResolver := cfg.ViewerResolver
	if viewerResolver == nil {
		viewerResolver = defaultViewerResolver
	}

	if routes.Assets != "" {
		cfg.Router.Static(routes.Assets, ".", router.Static{
			FS:     dashboard.StaticAssetsFS(),
			Root:   ".",
			MaxAge: 86400,
		})
	}

	group := cfg.Router.Group(base)

	group.Get(routes.HTML, router.WrapHandler(func(ctx router.Context) error {
		viewer := viewerResolver(ctx)
		var buf bytes.Buffer
		if err := cfg.Controller.RenderTemplate(ctx.Context(), viewer, &buf); err != nil {
			return respondError(ctx, http.StatusInternalServerError, err)
		}
		ctx.SetHeader("Content-Type", "text/html; charset=utf-8")
		return ctx.Send(buf.Bytes())
	}))

	group.Get(routes.Layout, router.WrapHandler(func(ctx router.Context) error {
		viewer := viewerResolver(ctx)
		layout, err := cfg.Controller.Render(ctx.Context(), viewer)
		if err != nil {
			return respondError(ctx, http.StatusInternalServerError, err)
		}
		return ctx.JSON(http.StatusOK, dashboard.LayoutPayload(viewer, layout))
	}))

	if cfg.API != nil {
		registerAPI(group, cfg.API, viewerResolver, routes)
	}

	if cfg.Broadcast != nil {
		registerWebSocket(group, cfg.Broadcast, routes.WebSocket)
	}

	return nil
}

func registerAPI[T any](r router.Router[T], api httpapi.Executor, resolver ViewerResolver, routes RouteConfig) {
	r.Post(routes.Widgets, router.WrapHandler(func(ctx router.Context) error {
		var payload dashboard.AddWidgetRequest
		if err := json.Unmarshal(ctx.Body(), &payload); err != nil {
			return respondError(ctx, http.StatusBadRequest, err)
		}
		if err := api.Assign(ctx.Context(), payload); err != nil {
			return respondError(ctx, commandStatus(err), err)
		}
		return ctx.JSON(http.StatusCreated, map[string]string{"status": "created"})
	}))

	r.Delete(routes.WidgetID, router.WrapHandler(func(ctx router.Context) error {
		id := ctx.Param("id")
		if id == "" {
			return respondError(ctx, http.StatusBadRequest, errors.New("widget id is required"))
		}
		if err := api.Remove(ctx.Context(), commands.RemoveWidgetInput{WidgetID: id}); err != nil {
			return respondError(ctx, commandStatus(err), err)
		}
		return ctx.JSON(http.StatusNoContent, map[string]string{"status": "removed"})
	}))

	r.Post(routes.WidgetID, router.WrapHandler(func(ctx router.Context) error {
		id := ctx.Param("id")
		if id == "" {
			return respondError(ctx, http.StatusBadRequest, errors.New("widget id is required"))
		}
		var payload commands.UpdateWidgetInput
		if err := json.Unmarshal(ctx.Body(), &payload); err != nil {
			return respondError(ctx, http.StatusBadRequest, err)
		}
		payload.WidgetID = id
		if err := api.Update(ctx.Context(), payload); err != nil {
			return respondError(ctx, commandStatus(err), err)
		}
		return ctx.JSON(http.StatusOK, map[string]string{"status": "updated"})
	}))

	r.Post(routes.Reorder, router.WrapHandler(func(ctx router.Context) error {
		var payload commands.ReorderWidgetsInput
		if err := json.Unmarshal(ctx.Body(), &payload); err != nil {
			return respondError(ctx, http.StatusBadRequest, err)
		}
		if err := api.Reorder(ctx.Context(), payload); err != nil {
			return respondError(ctx, commandStatus(err), err)
		}
		return ctx.JSON(http.StatusOK, map[string]string{"status": "reordered"})
	}))

	r.Post(routes.Refresh, router.WrapHandler(func(ctx router.Context) error {
		var payload commands.RefreshWidgetInput
		if err := json.Unmarshal(ctx.Body(), &payload); err != nil {
			return respondError(ctx, http.StatusBadRequest, err)
		}
		if err := api.Refresh(ctx.Context(), payload); err != nil {
			return respondError(ctx, commandStatus(err), err)
		}
		return ctx.JSON(http.StatusAccepted, map[string]string{"status": "queued"})
	}))

	r.Post(routes.Preferences, router.WrapHandler(func(ctx router.Context) error {
		var payload commands.SaveLayoutPreferencesInput
		if err := json.Unmarshal(ctx.Body(), &payload); err != nil {
			return respondError(ctx, http.StatusBadRequest, err)
		}
		payload.Viewer = resolver(ctx)
		if err := api.Preferences(ctx.Context(), payload); err != nil {
			return respondError(ctx, commandStatus(err), err)
		}
		return ctx.JSON(http.StatusOK, map[string]string{"status": "saved"})
	}))

	r.Post(routes.Range, router.WrapHandler(func(ctx router.Context) error {
		var payload commands.ChangeRangeInput
		if err := json.Unmarshal(ctx.Body(), &payload); err != nil {
			return respondError(ctx, http.StatusBadRequest, err)
		}
		if err := api.ChangeRange(ctx.Context(), payload); err != nil {
			return respondError(ctx, commandStatus(err), err)
		}
		return ctx.JSON(http.StatusOK, map[string]string{"status": "range_changed"})
	}))

	r.Post(routes.Mood, router.WrapHandler(func(ctx router.Context) error {
		var payload commands.ChangeMoodInput
		if err := json.Unmarshal(ctx.Body(), &payload); err != nil {
			return respondError(ctx, http.StatusBadRequest, err)
		}
		if err := api.ChangeMood(ctx.Context(), payload); err != nil {
			return respondError(ctx, commandStatus(err), err)
		}
		return ctx.JSON(http.StatusOK, map[string]string{"status": "mood_changed"})
	}))

	r.Post(routes.Recommendations, router.WrapHandler(func(ctx router.Context) error {
		if err := api.RefreshRecommendations(ctx.Context()); err != nil {
			return respondError(ctx, commandStatus(err), err)
		}
		return ctx.JSON(http.StatusAccepted, map[string]string{"status": "queued"})
	}))

	r.Post(routes.Preview, router.WrapHandler(func(ctx router.Context) error {
		var payload commands.TogglePreviewInput
		if err := json.Unmarshal(ctx.Body(), &payload); err != nil {
			return respondError(ctx, http.StatusBadRequest, err)
		}
		if err := api.TogglePreview(ctx.Context(), payload); err != nil {
			return respondError(ctx, commandStatus(err), err)
		}
		return ctx.JSON(http.StatusOK, map[string]string{"status": "toggled"})
	}))

	r.Delete(routes.StopPreview, router.WrapHandler(func(ctx router.Context) error {
		if err := api.StopPreview(ctx.Context()); err != nil {
			return respondError(ctx, commandStatus(err), err)
		}
		return ctx.JSON(http.StatusOK, map[string]string{"status": "stopped"})
	}))

	r.Post(routes.Sidebar, router.WrapHandler(func(ctx router.Context) error {
		if err := api.ToggleSidebar(ctx.Context()); err != nil {
			return respondError(ctx, commandStatus(err), err)
		}
		return ctx.JSON(http.StatusOK, map[string]string{"status": "toggled"})
	}))

	r.Post(routes.Sections, router.WrapHandler(func(ctx router.Context) error {
		var payload commands.ReportSectionInput
		if err := json.Unmarshal(ctx.Body(), &payload); err != nil {
			return respondError(ctx, http.StatusBadRequest, err)
		}
		if err := api.ReportSection(ctx.Context(), payload); err != nil {
			return respondError(ctx, commandStatus(err), err)
		}
		return ctx.JSON(http.StatusOK, map[string]string{"status": "reported"})
	}))
}

func registerWebSocket[T any](r router.Router[T], hook *dashboard.BroadcastHook, path string) {
	cfg := router.DefaultWebSocketConfig()
	r.WebSocket(path, cfg, func(ws router.WebSocketContext) error {
		events, cancel := hook.Subscribe()
		defer cancel()
		for {
			select {
			case event, ok := <-events:
				if !ok {
					return nil
				}
				if err := ws.WriteJSON(dashboard.EnvelopeOf(event)); err != nil {
					return err
				}
			case <-ws.Context().Done():
				return ws.Close()
			}
		}
	})
}

// commandStatus maps domain errors onto HTTP statuses.
func commandStatus(err error) int {
	switch {
	case errors.Is(err, dashboard.ErrRefreshCooldown):
		return http.StatusTooManyRequests
	case errors.Is(err, dashboard.ErrInstanceNotFound):
		return http.StatusNotFound
	default:
		return http.StatusInternalServerError
	}
}

func defaultViewerResolver(ctx router.Context) dashboard.ViewerContext {
	var viewer dashboard.ViewerContext
	if v, ok := ctx.Locals("user_id").(string); ok {
		viewer.UserID = v
	}
	if roles, ok := ctx.Locals("roles").([]string); ok {
		viewer.Roles = roles
	}
	viewer.Locale = inferLocale(ctx)
	return viewer
}

// inferLocale resolves the viewer locale: explicit locals, then route and
// query params, then the Accept-Language header. Spanish is the default.
func inferLocale(ctx router.Context) string {
	if locale, ok := ctx.Locals("locale").(string); ok && locale != "" {
		return locale
	}
	if locale := strings.TrimSpace(ctx.Param("locale")); locale != "" {
		return strings.ToLower(locale)
	}
	if locale := strings.TrimSpace(ctx.Query("locale")); locale != "" {
		return strings.ToLower(locale)
	}
	if header := ctx.Header("Accept-Language"); header != "" {
		if lang := parseAcceptLanguage(header); lang != "" {
			return lang
		}
	}
	return "es"
}

func parseAcceptLanguage(header string) string {
	for _, token := range strings.Split(header, ",") {
		token = strings.TrimSpace(token)
		if token == "" {
			continue
		}
		if idx := strings.Index(token, ";"); idx >= 0 {
			token = token[:idx]
		}
		if token != "" && token != "*" {
			return strings.ToLower(token)
		}
	}
	return ""
}

func respondError(ctx router.Context, status int, err error) error {
	return ctx.JSON(status, map[string]string{"error": err.Error()})
}

func (cfg Config[T]) routes() RouteConfig {
	return defaultRouteConfig(cfg.Routes)
}

func defaultRouteConfig(routes RouteConfig) RouteConfig {
	if routes.HTML == "" {
		routes.HTML = "/dashboard"
	}
	if routes.Layout == "" {
		routes.Layout = "/dashboard/_layout"
	}
	if routes.Widgets == "" {
		routes.Widgets = "/dashboard/widgets"
	}
	if routes.WidgetID == "" {
		routes.WidgetID = "/dashboard/widgets/:id"
	}
	if routes.Reorder == "" {
		routes.Reorder = "/dashboard/widgets/reorder"
	}
	if routes.Refresh == "" {
		routes.Refresh = "/dashboard/widgets/refresh"
	}
	if routes.Preferences == "" {
		routes.Preferences = "/dashboard/preferences"
	}
	if routes.Range == "" {
		routes.Range = "/dashboard/session/range"
	}
	if routes.Mood == "" {
		routes.Mood = "/dashboard/session/mood"
	}
	if routes.Recommendations == "" {
		routes.Recommendations = "/dashboard/session/recommendations/refresh"
	}
	if routes.Preview == "" {
		routes.Preview = "/dashboard/session/preview"
	}
	if routes.StopPreview == "" {
		routes.StopPreview = "/dashboard/session/preview"
	}
	if routes.Sidebar == "" {
		routes.Sidebar = "/dashboard/session/sidebar"
	}
	if routes.Sections == "" {
		routes.Sections = "/dashboard/session/sections"
	}
	if routes.WebSocket == "" {
		routes.WebSocket = "/dashboard/ws"
	}
	if routes.Assets == "" {
		routes.Assets = dashboard.DefaultAssetsPath
	}
	return routes
}
