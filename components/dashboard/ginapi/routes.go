package ginapi

import (
	"bytes"
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	gocommand "github.com/goliatone/go-command"

	"github.com/melodix/go-dashboard/components/dashboard"
	"github.com/melodix/go-dashboard/components/dashboard/commands"
	"github.com/melodix/go-dashboard/components/dashboard/httpapi"
	"github.com/melodix/go-dashboard/components/dashboard/queries"
)

// ViewerResolver converts a gin context into a dashboard.ViewerContext.
type ViewerResolver func(*gin.Context) dashboard.ViewerContext

// Options configures the gin integration. Nil collaborators skip their
// routes so hosts can mount only the surface they need.
type Options struct {
	Controller      *dashboard.Controller
	API             httpapi.Executor
	Broadcast       *dashboard.BroadcastHook
	Snapshot        gocommand.Querier[queries.SnapshotInput, dashboard.Snapshot]
	Recommendations gocommand.Querier[queries.RecommendationsViewInput, dashboard.RecommendationsRegion]
	ViewerResolver  ViewerResolver
}

// Handler serves the dashboard over a gin engine: the HTML page, the JSON
// API and the push streams.
type Handler struct {
	opts Options
}

// NewHandler builds the gin-facing handler bundle.
func NewHandler(opts Options) *Handler {
	if opts.ViewerResolver == nil {
		opts.ViewerResolver = defaultViewerResolver
	}
	return &Handler{opts: opts}
}

// RegisterRoutes mounts the dashboard endpoints on the engine.
func (h *Handler) RegisterRoutes(router *gin.Engine) {
	router.StaticFS(strings.TrimSuffix(dashboard.DefaultAssetsPath, "/"), http.FS(dashboard.StaticAssetsFS()))

	if h.opts.Controller != nil {
		router.GET("/", h.RenderDashboard)
	}

	api := router.Group("/api/v1")
	{
		if h.opts.Controller != nil {
			api.GET("/layout", h.GetLayout)
		}
		if h.opts.API != nil {
			widgets := api.Group("/widgets")
			{
				widgets.POST("", h.AssignWidget)
				widgets.DELETE("/:widgetId", h.RemoveWidget)
				widgets.PATCH("/:widgetId", h.UpdateWidget)
				widgets.POST("/reorder", h.ReorderWidgets)
				widgets.POST("/refresh", h.RefreshWidget)
			}
			api.PUT("/preferences", h.SavePreferences)

			session := api.Group("/session")
			{
				session.POST("/range", h.ChangeRange)
				session.POST("/mood", h.ChangeMood)
				session.POST("/recommendations/refresh", h.RefreshRecommendations)
				session.POST("/preview", h.TogglePreview)
				session.DELETE("/preview", h.StopPreview)
				session.POST("/sidebar", h.ToggleSidebar)
				session.POST("/sections", h.ReportSection)
			}
		}
		if h.opts.Snapshot != nil {
			api.GET("/session", h.GetSnapshot)
		}
		if h.opts.Recommendations != nil {
			api.GET("/session/recommendations", h.GetRecommendations)
		}
	}

	if h.opts.Broadcast != nil {
		router.GET("/ws", gin.WrapF(h.opts.Broadcast.ServeWebSocket))
		router.GET("/events", gin.WrapF(h.opts.Broadcast.ServeSSE))
	}

	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
}

// GET /
func (h *Handler) RenderDashboard(c *gin.Context) {
	viewer := h.opts.ViewerResolver(c)
	var buf bytes.Buffer
	if err := h.opts.Controller.RenderTemplate(c.Request.Context(), viewer, &buf); err != nil {
		var page bytes.Buffer
		if view, renderErr := h.opts.Controller.RenderError(err, &page); renderErr == nil {
			status := view.Status
			if status == 0 {
				status = http.StatusInternalServerError
			}
			c.Data(status, "text/html; charset=utf-8", page.Bytes())
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.Data(http.StatusOK, "text/html; charset=utf-8", buf.Bytes())
}

// GET /api/v1/layout
func (h *Handler) GetLayout(c *gin.Context) {
	viewer := h.opts.ViewerResolver(c)
	layout, err := h.opts.Controller.Render(c.Request.Context(), viewer)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, dashboard.LayoutPayload(viewer, layout))
}

// GET /api/v1/session
func (h *Handler) GetSnapshot(c *gin.Context) {
	reload := c.Query("reload") == "true"
	snap, err := h.opts.Snapshot.Query(c.Request.Context(), queries.SnapshotInput{Reload: reload})
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, snap)
}

// GET /api/v1/session/recommendations
func (h *Handler) GetRecommendations(c *gin.Context) {
	region, err := h.opts.Recommendations.Query(c.Request.Context(), queries.RecommendationsViewInput{})
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, region)
}

// POST /api/v1/widgets
func (h *Handler) AssignWidget(c *gin.Context) {
	var req dashboard.AddWidgetRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid widget payload"})
		return
	}
	if err := h.opts.API.Assign(c.Request.Context(), req); err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"status": "created"})
}

// DELETE /api/v1/widgets/:widgetId
func (h *Handler) RemoveWidget(c *gin.Context) {
	widgetID := c.Param("widgetId")
	if widgetID == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "widgetId is required"})
		return
	}
	if err := h.opts.API.Remove(c.Request.Context(), commands.RemoveWidgetInput{WidgetID: widgetID}); err != nil {
		h.respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// PATCH /api/v1/widgets/:widgetId
func (h *Handler) UpdateWidget(c *gin.Context) {
	widgetID := c.Param("widgetId")
	if widgetID == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "widgetId is required"})
		return
	}
	var input commands.UpdateWidgetInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid update payload"})
		return
	}
	input.WidgetID = widgetID
	if err := h.opts.API.Update(c.Request.Context(), input); err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "updated"})
}

// POST /api/v1/widgets/reorder
func (h *Handler) ReorderWidgets(c *gin.Context) {
	var input commands.ReorderWidgetsInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid reorder payload"})
		return
	}
	if err := h.opts.API.Reorder(c.Request.Context(), input); err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "reordered"})
}

// POST /api/v1/widgets/refresh
func (h *Handler) RefreshWidget(c *gin.Context) {
	var input commands.RefreshWidgetInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid refresh payload"})
		return
	}
	if err := h.opts.API.Refresh(c.Request.Context(), input); err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusAccepted, gin.H{"status": "queued"})
}

// PUT /api/v1/preferences
func (h *Handler) SavePreferences(c *gin.Context) {
	var input commands.SaveLayoutPreferencesInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid preferences payload"})
		return
	}
	input.Viewer = h.opts.ViewerResolver(c)
	if err := h.opts.API.Preferences(c.Request.Context(), input); err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "saved"})
}

// POST /api/v1/session/range
func (h *Handler) ChangeRange(c *gin.Context) {
	var input commands.ChangeRangeInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid range payload"})
		return
	}
	if err := h.opts.API.ChangeRange(c.Request.Context(), input); err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "range_changed"})
}

// POST /api/v1/session/mood
func (h *Handler) ChangeMood(c *gin.Context) {
	var input commands.ChangeMoodInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid mood payload"})
		return
	}
	if err := h.opts.API.ChangeMood(c.Request.Context(), input); err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "mood_changed"})
}

// POST /api/v1/session/recommendations/refresh
func (h *Handler) RefreshRecommendations(c *gin.Context) {
	if err := h.opts.API.RefreshRecommendations(c.Request.Context()); err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusAccepted, gin.H{"status": "queued"})
}

// POST /api/v1/session/preview
func (h *Handler) TogglePreview(c *gin.Context) {
	var input commands.TogglePreviewInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid preview payload"})
		return
	}
	if err := h.opts.API.TogglePreview(c.Request.Context(), input); err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "toggled"})
}

// DELETE /api/v1/session/preview
func (h *Handler) StopPreview(c *gin.Context) {
	if err := h.opts.API.StopPreview(c.Request.Context()); err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "stopped"})
}

// POST /api/v1/session/sidebar
func (h *Handler) ToggleSidebar(c *gin.Context) {
	if err := h.opts.API.ToggleSidebar(c.Request.Context()); err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "toggled"})
}

// POST /api/v1/session/sections
func (h *Handler) ReportSection(c *gin.Context) {
	var input commands.ReportSectionInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid section payload"})
		return
	}
	if err := h.opts.API.ReportSection(c.Request.Context(), input); err != nil {
		h.respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *Handler) respondError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, dashboard.ErrRefreshCooldown):
		c.Header("Retry-After", strconv.Itoa(int(dashboard.DefaultRefreshCooldown/time.Second)))
		c.JSON(http.StatusTooManyRequests, gin.H{"error": err.Error()})
	case errors.Is(err, dashboard.ErrInstanceNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
	default:
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
	}
}

func defaultViewerResolver(c *gin.Context) dashboard.ViewerContext {
	viewer := dashboard.ViewerContext{UserID: c.GetString("user_id")}
	if roles, ok := c.Get("roles"); ok {
		if list, ok := roles.([]string); ok {
			viewer.Roles = list
		}
	}
	viewer.Locale = inferLocale(c)
	return viewer
}

// inferLocale resolves the viewer locale from context values, the query
// string, then the Accept-Language header. Spanish is the default.
func inferLocale(c *gin.Context) string {
	if locale := c.GetString("locale"); locale != "" {
		return locale
	}
	if locale := strings.TrimSpace(c.Query("locale")); locale != "" {
		return strings.ToLower(locale)
	}
	for _, token := range strings.Split(c.GetHeader("Accept-Language"), ",") {
		token = strings.TrimSpace(token)
		if idx := strings.Index(token, ";"); idx >= 0 {
			token = token[:idx]
		}
		if token != "" && token != "*" {
			return strings.ToLower(token)
		}
	}
	return "es"
}
