package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/alecthomas/kong"
	"github.com/ettle/strcase"
	"gopkg.in/yaml.v3"

	"github.com/melodix/go-dashboard/components/dashboard"
	"github.com/melodix/go-dashboard/components/dashboard/commands"
	"github.com/melodix/go-dashboard/components/dashboard/httpapi"
	"github.com/melodix/go-dashboard/pkg/config"
	"github.com/melodix/go-dashboard/pkg/logging"
	"github.com/melodix/go-dashboard/pkg/melodix"
	"github.com/melodix/go-dashboard/pkg/metrics"
)

type cli struct {
	Serve     serveCmd     `cmd:"" help:"Serve the dashboard over HTTP."`
	Seed      seedCmd      `cmd:"" help:"Print the seeded starter layout as JSON."`
	Render    renderCmd    `cmd:"" help:"Render the dashboard page HTML."`
	Recommend recommendCmd `cmd:"" help:"Print recommendation cards for a mood."`
	Scaffold  scaffoldCmd  `cmd:"" help:"Scaffold a widget definition, provider stub, and manifest entry."`
	Manifest  manifestCmd  `cmd:"" help:"Widget manifest utilities."`
}

type manifestCmd struct {
	Lint lintCmd `cmd:"" help:"Validate a widget manifest file."`
}

func main() {
	ctx := kong.Parse(&cli{},
		kong.Description("Melodix dashboard utility: serve, seed, render, and widget scaffolding."),
		kong.UsageOnError(),
	)
	err := ctx.Run(context.Background())
	ctx.FatalIfErrorf(err)
}

// --- serve ---

type serveCmd struct {
	Config string `type:"path" help:"Path to a melodix.yaml config file."`
	Addr   string `help:"Listen address (overrides config host/port)."`
	Demo   bool   `default:"true" negatable:"" help:"Serve the bundled demo dataset instead of a live backend."`
}

func (cmd *serveCmd) Run(ctx context.Context) error {
	cfg, err := config.Load(cmd.Config)
	if err != nil {
		return err
	}
	logger := logging.New(logging.Config{
		ServiceName: "melodixctl",
		Level:       cfg.Log.Level,
		FilePath:    cfg.Log.FilePath,
		MaxSizeMB:   cfg.Log.MaxSizeMB,
		MaxBackups:  cfg.Log.MaxBackups,
		MaxAgeDays:  cfg.Log.MaxAgeDays,
	})
	metrics.Register(nil)
	telemetry := metrics.Recorder{}

	library := melodix.DemoLibrary()
	if !cmd.Demo {
		client, err := melodix.New(melodix.Config{
			BaseURL:   cfg.API.BaseURL,
			UserAgent: cfg.API.UserAgent,
		})
		if err != nil {
			return err
		}
		library = melodix.NewLibrary(client)
	}

	store := dashboard.NewInMemoryWidgetStore()
	registry := dashboard.NewRegistry()
	for code, provider := range dashboard.LibraryProviders(library, nil) {
		if err := registry.RegisterProvider(code, provider); err != nil {
			return fmt.Errorf("melodixctl: register provider %s: %w", code, err)
		}
	}

	hook := dashboard.NewBroadcastHook()
	defer hook.Close()

	service := dashboard.NewService(dashboard.Options{
		WidgetStore: store,
		Providers:   registry,
		RefreshHook: hook,
		Telemetry:   telemetry,
	})
	seed := commands.NewSeedDashboardCommand(store, registry, service, telemetry)
	if err := seed.Execute(ctx, commands.SeedDashboardInput{SeedLayout: true}); err != nil {
		return fmt.Errorf("melodixctl: seed dashboard: %w", err)
	}

	session := dashboard.NewSession(dashboard.SessionOptions{
		Library:         library,
		Service:         service,
		Viewer:          dashboard.ViewerContext{UserID: "melodix-demo", Locale: cfg.Dashboard.Locale},
		Logger:          logger,
		Telemetry:       telemetry,
		RefreshCooldown: cfg.Dashboard.RefreshCooldown,
	})
	if _, err := session.Load(ctx); err != nil {
		logger.Warn("initial session load failed", "error", err)
	}

	renderer, err := dashboard.NewTemplateRenderer()
	if err != nil {
		return fmt.Errorf("melodixctl: build renderer: %w", err)
	}
	controller := dashboard.NewController(dashboard.ControllerOptions{
		Service:  service,
		Renderer: renderer,
	})

	api := &httpapi.Handlers{
		Assign:        commands.NewAssignWidgetCommand(service, telemetry),
		Remove:        commands.NewRemoveWidgetCommand(service, telemetry),
		Reorder:       commands.NewReorderWidgetsCommand(service, telemetry),
		Update:        commands.NewUpdateWidgetCommand(service, telemetry),
		Refresh:       commands.NewRefreshWidgetCommand(service, telemetry),
		Preferences:   commands.NewSaveLayoutPreferencesCommand(service, telemetry),
		ChangeRange:   commands.NewChangeRangeCommand(session, telemetry),
		ChangeMood:    commands.NewChangeMoodCommand(session, telemetry),
		RefreshRecs:   commands.NewRefreshRecommendationsCommand(session, telemetry),
		TogglePreview: commands.NewTogglePreviewCommand(session, telemetry),
		StopPreview:   commands.NewStopPreviewCommand(session, telemetry),
		ToggleSidebar: commands.NewToggleSidebarCommand(session, telemetry),
		ReportSection: commands.NewReportSectionCommand(session, telemetry),
	}

	viewer := session.Viewer()
	mux := http.NewServeMux()
	mux.HandleFunc("GET /{$}", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		if err := controller.RenderTemplate(r.Context(), viewer, w); err != nil {
			logger.Error("render dashboard", "error", err)
		}
	})
	mux.HandleFunc("POST /api/widgets", api.HandleAssignWidget)
	mux.HandleFunc("DELETE /api/widgets/{id}", func(w http.ResponseWriter, r *http.Request) {
		api.HandleRemoveWidget(w, r, r.PathValue("id"))
	})
	mux.HandleFunc("PATCH /api/widgets/{id}", func(w http.ResponseWriter, r *http.Request) {
		api.HandleUpdateWidget(w, r, r.PathValue("id"))
	})
	mux.HandleFunc("POST /api/widgets/reorder", api.HandleReorderWidgets)
	mux.HandleFunc("POST /api/widgets/refresh", api.HandleRefreshWidget)
	mux.HandleFunc("PUT /api/preferences", api.HandleSavePreferences)
	mux.HandleFunc("POST /api/session/range", api.HandleChangeRange)
	mux.HandleFunc("POST /api/session/mood", api.HandleChangeMood)
	mux.HandleFunc("POST /api/session/recommendations/refresh", api.HandleRefreshRecommendations)
	mux.HandleFunc("POST /api/session/preview", api.HandleTogglePreview)
	mux.HandleFunc("DELETE /api/session/preview", api.HandleStopPreview)
	mux.HandleFunc("POST /api/session/sidebar", api.HandleToggleSidebar)
	mux.HandleFunc("POST /api/session/sections", api.HandleReportSection)
	mux.HandleFunc("GET /api/session", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(session.Snapshot())
	})
	mux.HandleFunc("GET /ws", hook.ServeWebSocket)
	mux.HandleFunc("GET /events", hook.ServeSSE)
	mux.Handle("GET /assets/", dashboard.StaticAssetsHandler("/assets/"))
	if cfg.Metrics.Enabled {
		mux.Handle("GET "+cfg.Metrics.Path, metrics.Handler())
	}

	addr := cmd.Addr
	if addr == "" {
		addr = fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port)
	}
	logger.Info("melodix dashboard listening", "addr", addr, "demo", cmd.Demo)
	return http.ListenAndServe(addr, mux)
}

// --- seed ---

type seedCmd struct {
	Pretty bool `default:"true" negatable:"" help:"Indent the JSON output."`
}

func (cmd *seedCmd) Run(ctx context.Context) error {
	store := dashboard.NewInMemoryWidgetStore()
	registry := dashboard.NewRegistry()
	service := dashboard.NewService(dashboard.Options{WidgetStore: store, Providers: registry})

	seed := commands.NewSeedDashboardCommand(store, registry, service, nil)
	if err := seed.Execute(ctx, commands.SeedDashboardInput{SeedLayout: true}); err != nil {
		return fmt.Errorf("melodixctl: seed dashboard: %w", err)
	}

	layout := map[string][]dashboard.WidgetInstance{}
	for _, area := range []string{dashboard.AreaMain, dashboard.AreaSidebar} {
		resolved, err := store.ResolveArea(ctx, dashboard.ResolveAreaInput{AreaCode: area})
		if err != nil {
			return fmt.Errorf("melodixctl: resolve area %s: %w", area, err)
		}
		layout[area] = resolved.Widgets
	}

	encoder := json.NewEncoder(os.Stdout)
	if cmd.Pretty {
		encoder.SetIndent("", "  ")
	}
	return encoder.Encode(layout)
}

// --- render ---

type renderCmd struct {
	Out    string `short:"o" type:"path" help:"Write the page to a file instead of stdout."`
	Locale string `default:"es" help:"Viewer locale for localized widget titles."`
	User   string `default:"melodix-demo" help:"Viewer id recorded in the page payload."`
}

func (cmd *renderCmd) Run(ctx context.Context) error {
	store := dashboard.NewInMemoryWidgetStore()
	registry := dashboard.NewRegistry()
	service := dashboard.NewService(dashboard.Options{WidgetStore: store, Providers: registry})

	seed := commands.NewSeedDashboardCommand(store, registry, service, nil)
	if err := seed.Execute(ctx, commands.SeedDashboardInput{SeedLayout: true}); err != nil {
		return fmt.Errorf("melodixctl: seed dashboard: %w", err)
	}

	renderer, err := dashboard.NewTemplateRenderer()
	if err != nil {
		return fmt.Errorf("melodixctl: build renderer: %w", err)
	}
	controller := dashboard.NewController(dashboard.ControllerOptions{
		Service:  service,
		Renderer: renderer,
	})

	var out io.Writer = os.Stdout
	if cmd.Out != "" {
		file, err := os.Create(cmd.Out) //nolint:gosec
		if err != nil {
			return fmt.Errorf("melodixctl: create %s: %w", cmd.Out, err)
		}
		defer file.Close()
		out = file
	}

	viewer := dashboard.ViewerContext{UserID: cmd.User, Locale: cmd.Locale}
	if err := controller.RenderTemplate(ctx, viewer, out); err != nil {
		return fmt.Errorf("melodixctl: render dashboard: %w", err)
	}
	if cmd.Out != "" {
		fmt.Fprintf(os.Stderr, "✓ Rendered dashboard for %s to %s\n", cmd.User, cmd.Out)
	}
	return nil
}

// --- recommend ---

type recommendCmd struct {
	Mood  string `default:"" help:"Mood filter (energetico, relajado, fiesta, concentracion)."`
	Query string `help:"Free-text artist or track query."`
	JSON  bool   `help:"Emit the recommendation region as JSON."`
}

func (cmd *recommendCmd) Run(ctx context.Context) error {
	session := dashboard.NewSession(dashboard.SessionOptions{
		Viewer: dashboard.ViewerContext{UserID: "melodix-demo", Locale: "es"},
	})
	if _, err := session.Load(ctx); err != nil {
		return fmt.Errorf("melodixctl: load session: %w", err)
	}
	if cmd.Mood != "" || cmd.Query != "" {
		if _, err := session.SetMood(ctx, cmd.Mood, cmd.Query); err != nil {
			return fmt.Errorf("melodixctl: set mood: %w", err)
		}
	}

	region := session.Snapshot().Recommendations
	if cmd.JSON {
		encoder := json.NewEncoder(os.Stdout)
		encoder.SetIndent("", "  ")
		return encoder.Encode(region)
	}

	if region.View.ProfileLine != "" {
		fmt.Println(region.View.ProfileLine)
	}
	if region.View.Empty {
		fmt.Println(region.View.EmptyMessage)
		return nil
	}
	for i, card := range region.View.Cards {
		line := fmt.Sprintf("%2d. %s — %s", i+1, card.Name, card.Artist)
		if card.Reason != "" {
			line += fmt.Sprintf(" (%s)", card.Reason)
		}
		fmt.Println(line)
	}
	return nil
}

// --- manifest lint ---

type lintCmd struct {
	Path string `arg:"" type:"path" help:"Manifest YAML file to validate."`
}

func (cmd *lintCmd) Run(_ context.Context) error {
	doc, err := dashboard.ReadManifest(cmd.Path)
	if err != nil {
		return err
	}
	builtin := map[string]struct{}{}
	for _, def := range dashboard.NewRegistry().Definitions() {
		builtin[def.Code] = struct{}{}
	}
	for _, widget := range doc.Widgets {
		if _, taken := builtin[widget.Definition.Code]; taken {
			return fmt.Errorf("melodixctl: %s redefines built-in widget %s", cmd.Path, widget.Definition.Code)
		}
	}
	fmt.Fprintf(os.Stdout, "✓ %s: version %s, %d widgets\n", cmd.Path, doc.Version, len(doc.Widgets))
	return nil
}

// --- scaffold ---

type scaffoldCmd struct {
	Code            string   `required:"" help:"Fully-qualified widget code (e.g. melodix.widget.podcasts)."`
	Name            string   `required:"" help:"Display name for the widget."`
	Description     string   `required:"" help:"One-line description used in manifests."`
	Category        string   `default:"custom" help:"Widget category (lists, charts, stats, ...)."`
	ManifestPath    string   `required:"" type:"path" help:"Path to the widget manifest YAML file to update."`
	SchemaPath      string   `type:"path" help:"Optional path to a JSON schema file for the widget configuration."`
	Tag             []string `help:"Optional tags to include in the manifest (use multiple --tag flags)."`
	Maintainer      []string `help:"Maintainers to record in the manifest."`
	Capabilities    []string `help:"Provider capability labels (html,json,sse,...)."`
	DocsURL         string   `help:"Link to provider documentation."`
	Channel         string   `help:"Distribution channel label (community, partner, internal)."`
	ProviderPackage string   `default:"github.com/melodix/go-dashboard/components/dashboard" help:"Go package where the provider factory lives."`
	ProviderEntry   string   `help:"Factory identifier recorded in the manifest (defaults to New<Widget>Provider)."`
	ProviderOut     string   `help:"File path for the generated provider stub (defaults to components/dashboard/providers/<code>_provider.go)."`
	Overwrite       bool     `help:"Overwrite existing provider stub / manifest entry if present."`
	SkipProvider    bool     `name:"skip-provider" help:"Skip provider stub generation."`
}

func (cmd *scaffoldCmd) Run(_ context.Context) error {
	if err := cmd.validate(); err != nil {
		return err
	}
	manifestPath, err := filepath.Abs(cmd.ManifestPath)
	if err != nil {
		return fmt.Errorf("melodixctl: resolve manifest path: %w", err)
	}
	doc, err := loadOrInitManifest(manifestPath)
	if err != nil {
		return err
	}
	if !cmd.Overwrite {
		for _, widget := range doc.Widgets {
			if widget.Definition.Code == cmd.Code {
				return fmt.Errorf("melodixctl: manifest already defines widget %s (use --overwrite to replace)", cmd.Code)
			}
		}
	}

	schema, err := cmd.loadSchema()
	if err != nil {
		return err
	}

	baseName := deriveBaseName(cmd.Code)
	providerType := baseName + "Provider"
	providerEntry := cmd.ProviderEntry
	if providerEntry == "" {
		providerEntry = fmt.Sprintf("%s.New%s", cmd.ProviderPackage, providerType)
	}

	entry := dashboard.ManifestWidget{
		Definition: dashboard.WidgetDefinition{
			Code:        cmd.Code,
			Name:        cmd.Name,
			Description: cmd.Description,
			Category:    cmd.Category,
			Schema:      schema,
		},
		Provider: dashboard.ManifestProvider{
			Name:         fmt.Sprintf("%s Provider", cmd.Name),
			Summary:      cmd.Description,
			Entry:        providerEntry,
			Package:      cmd.ProviderPackage,
			DocsURL:      cmd.DocsURL,
			Capabilities: cmd.Capabilities,
			Channel:      cmd.Channel,
		},
		Maintainers: cmd.Maintainer,
		Tags:        cmd.Tag,
	}

	if cmd.Overwrite {
		replaced := false
		for idx := range doc.Widgets {
			if doc.Widgets[idx].Definition.Code == cmd.Code {
				doc.Widgets[idx] = entry
				replaced = true
				break
			}
		}
		if !replaced {
			doc.Widgets = append(doc.Widgets, entry)
		}
	} else {
		doc.Widgets = append(doc.Widgets, entry)
	}

	sort.Slice(doc.Widgets, func(i, j int) bool {
		return doc.Widgets[i].Definition.Code < doc.Widgets[j].Definition.Code
	})

	if err := writeManifest(manifestPath, doc); err != nil {
		return err
	}

	if cmd.SkipProvider {
		fmt.Fprintf(os.Stdout, "✓ Added %s to %s (provider entry recorded as %s)\n", cmd.Code, manifestPath, providerEntry)
		return nil
	}

	providerPath := cmd.ProviderOut
	if providerPath == "" {
		providerPath = filepath.Join("components", "dashboard", "providers", fmt.Sprintf("%s_provider.go", sanitizeFileName(cmd.Code)))
	}
	if err := writeProviderStub(providerPath, providerType, cmd.Code, cmd.Overwrite); err != nil {
		return err
	}
	fmt.Fprintf(os.Stdout, "✓ Added %s to %s and generated %s\n", cmd.Code, manifestPath, providerPath)
	return nil
}

func (cmd *scaffoldCmd) validate() error {
	if !strings.Contains(cmd.Code, ".") {
		return fmt.Errorf("melodixctl: widget code %s must contain at least one '.' segment", cmd.Code)
	}
	return nil
}

func (cmd *scaffoldCmd) loadSchema() (map[string]any, error) {
	if cmd.SchemaPath == "" {
		return map[string]any{
			"type":       "object",
			"properties": map[string]any{},
		}, nil
	}
	data, err := os.ReadFile(cmd.SchemaPath)
	if err != nil {
		return nil, fmt.Errorf("melodixctl: read schema file: %w", err)
	}
	var schema map[string]any
	if err := json.Unmarshal(data, &schema); err != nil {
		return nil, fmt.Errorf("melodixctl: parse schema JSON: %w", err)
	}
	return schema, nil
}

func loadOrInitManifest(path string) (*dashboard.WidgetManifestDocument, error) {
	if _, err := os.Stat(path); err != nil {
		if errors.Is(err, os.ErrNotExist) {
			doc := &dashboard.WidgetManifestDocument{
				Version: dashboard.ManifestVersion,
				Widgets: []dashboard.ManifestWidget{},
				Source:  path,
			}
			return doc, nil
		}
		return nil, fmt.Errorf("melodixctl: stat manifest: %w", err)
	}
	doc, err := dashboard.ReadManifest(path)
	if err != nil {
		return nil, err
	}
	return doc, nil
}

func writeManifest(path string, doc *dashboard.WidgetManifestDocument) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("melodixctl: mkdir %s: %w", filepath.Dir(path), err)
	}
	tmpDoc := *doc
	tmpDoc.Source = ""

	file, err := os.Create(path) //nolint:gosec
	if err != nil {
		return fmt.Errorf("melodixctl: create manifest %s: %w", path, err)
	}
	defer file.Close()

	encoder := yaml.NewEncoder(file)
	encoder.SetIndent(2)
	defer encoder.Close()
	if err := encoder.Encode(tmpDoc); err != nil {
		return fmt.Errorf("melodixctl: write manifest: %w", err)
	}
	return nil
}

func writeProviderStub(path, providerType, code string, overwrite bool) error {
	if _, err := os.Stat(path); err == nil && !overwrite {
		return fmt.Errorf("melodixctl: provider stub %s already exists (use --overwrite or --provider-out)", path)
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("melodixctl: mkdir provider dir: %w", err)
	}
	content := fmt.Sprintf(`package dashboard

import (
	"context"
)

// %s fetches data for %s widgets.
type %s struct{}

// New%s wires the provider into the dashboard registry.
func New%s() Provider {
	return &%s{}
}

// Fetch retrieves the widget payload. Replace with your implementation.
func (p *%s) Fetch(ctx context.Context, meta WidgetContext) (WidgetData, error) {
	_ = meta // TODO: use viewer context / configuration
	return WidgetData{
		"message": "replace with real data",
	}, nil
}
`, providerType, code, providerType, providerType, providerType, providerType, providerType)

	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		return fmt.Errorf("melodixctl: write provider stub: %w", err)
	}
	return nil
}

func deriveBaseName(code string) string {
	parts := strings.Split(code, ".")
	slug := parts[len(parts)-1]
	slug = strings.TrimSpace(slug)
	if slug == "" {
		slug = code
	}
	return strcase.ToCamel(slug)
}

func sanitizeFileName(code string) string {
	replacer := strings.NewReplacer(".", "_", "-", "_", "/", "_", " ", "_")
	return strings.ToLower(replacer.Replace(code))
}
