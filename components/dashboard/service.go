package dashboard

import (
	"context"
	"errors"
	"time"

	"github.com/melodix/go-dashboard/pkg/activity"
)

var defaultAreas = []string{
	AreaMain,
	AreaSidebar,
}

var (
	errMissingWidgetStore = errors.New("dashboard: widget store not configured")
	errInvalidArea        = errors.New("dashboard: area code is required")
	errInvalidDefinition  = errors.New("dashboard: definition id is required")
	errInvalidWidgetID    = errors.New("dashboard: widget id is required")
)

// Options configures the dashboard Service. Every collaborator is provided
// via interface so applications can swap implementations without importing
// internal packages.
type Options struct {
	WidgetStore     WidgetStore
	Authorizer      Authorizer
	PreferenceStore PreferenceStore
	Providers       ProviderRegistry
	ConfigValidator ConfigValidator
	RefreshHook     RefreshHook
	Telemetry       Telemetry
	Translator      TranslationService
	ScriptNonce     func(ctx context.Context) string
	ActivityHooks   activity.Hooks
	ActivityConfig  activity.Config
	Areas           []string
}

// Service orchestrates widget placement and resolution for the dashboard.
type Service struct {
	opts     Options
	activity *activity.Emitter
}

// NewService builds a Service instance with safe defaults.
func NewService(opts Options) *Service {
	if opts.Authorizer == nil {
		opts.Authorizer = allowAllAuthorizer{}
	}
	if opts.RefreshHook == nil {
		opts.RefreshHook = noopRefreshHook{}
	}
	if opts.Providers == nil {
		opts.Providers = NewRegistry()
	}
	if opts.ConfigValidator == nil {
		opts.ConfigValidator = NewJSONSchemaValidator()
	}
	opts.Telemetry = normalizeTelemetry(opts.Telemetry)
	if opts.PreferenceStore == nil {
		opts.PreferenceStore = NewInMemoryPreferenceStore()
	}
	return &Service{
		opts:     opts,
		activity: activity.NewEmitter(opts.ActivityHooks, opts.ActivityConfig),
	}
}

// AddWidgetRequest captures the data required to create widget assignments.
type AddWidgetRequest struct {
	DefinitionID  string
	AreaCode      string
	Configuration map[string]any
	Position      *int
	Roles         []string
	StartAt       *time.Time
	EndAt         *time.Time
	ActorID       string
	UserID        string
	TenantID      string
}

// AddWidget creates a widget instance and assigns it to an area.
func (s *Service) AddWidget(ctx context.Context, req AddWidgetRequest) error {
	store, err := s.widgetStore()
	if err != nil {
		return err
	}
	if req.AreaCode == "" {
		return errInvalidArea
	}
	if req.DefinitionID == "" {
		return errInvalidDefinition
	}
	if err := s.validateConfiguration(req.DefinitionID, req.Configuration); err != nil {
		return err
	}
	instance, err := store.CreateInstance(ctx, CreateWidgetInstanceInput{
		DefinitionID:  req.DefinitionID,
		Configuration: req.Configuration,
		Visibility: WidgetVisibility{
			Roles:   req.Roles,
			StartAt: req.StartAt,
			EndAt:   req.EndAt,
		},
		Metadata: map[string]any{
			"user_id": req.UserID,
		},
	})
	if err != nil {
		return err
	}
	if err := store.AssignInstance(ctx, AssignWidgetInput{
		AreaCode:   req.AreaCode,
		InstanceID: instance.ID,
		Position:   req.Position,
	}); err != nil {
		return err
	}
	event := WidgetEvent{
		AreaCode: req.AreaCode,
		Instance: instance,
		Reason:   "add",
	}
	if err := s.opts.RefreshHook.WidgetUpdated(ctx, event); err != nil {
		return err
	}
	s.emitActivity(ctx, activity.Event{
		Verb:           "dashboard.widget.add",
		ObjectType:     "widget_instance",
		ObjectID:       instance.ID,
		DefinitionCode: req.DefinitionID,
		ActorID:        req.ActorID,
		UserID:         req.UserID,
		TenantID:       req.TenantID,
		Metadata: map[string]any{
			"area_code": req.AreaCode,
		},
	})
	s.recordTelemetry(ctx, "dashboard.widget.add", map[string]any{
		"area_code":     req.AreaCode,
		"definition_id": req.DefinitionID,
	})
	return nil
}

func (s *Service) recordTelemetry(ctx context.Context, event string, payload map[string]any) {
	s.opts.Telemetry.Record(ctx, event, payload)
}

// RemoveWidget deletes the widget instance.
func (s *Service) RemoveWidget(ctx context.Context, widgetID string) error {
	store, err := s.widgetStore()
	if err != nil {
		return err
	}
	if widgetID == "" {
		return errInvalidWidgetID
	}
	instance, err := store.GetInstance(ctx, widgetID)
	if err != nil {
		return err
	}
	if err := store.DeleteInstance(ctx, widgetID); err != nil {
		return err
	}
	if err := s.opts.RefreshHook.WidgetUpdated(ctx, WidgetEvent{
		AreaCode: instance.AreaCode,
		Instance: instance,
		Reason:   "delete",
	}); err != nil {
		return err
	}
	s.emitActivity(ctx, activity.Event{
		Verb:           "dashboard.widget.remove",
		ObjectType:     "widget_instance",
		ObjectID:       widgetID,
		DefinitionCode: instance.DefinitionID,
		Metadata: map[string]any{
			"definition_id": instance.DefinitionID,
		},
	})
	s.recordTelemetry(ctx, "dashboard.widget.remove", map[string]any{"widget_id": widgetID})
	return nil
}

// UpdateWidgetRequest carries configuration and metadata replacements.
type UpdateWidgetRequest struct {
	Configuration map[string]any
	Metadata      map[string]any
	ActorID       string
	UserID        string
	TenantID      string
}

// UpdateWidget replaces configuration and metadata on an existing widget.
// Nil maps leave the stored values untouched.
func (s *Service) UpdateWidget(ctx context.Context, widgetID string, req UpdateWidgetRequest) error {
	store, err := s.widgetStore()
	if err != nil {
		return err
	}
	if widgetID == "" {
		return errInvalidWidgetID
	}
	instance, err := store.GetInstance(ctx, widgetID)
	if err != nil {
		return err
	}
	if req.Configuration != nil {
		if err := s.validateConfiguration(instance.DefinitionID, req.Configuration); err != nil {
			return err
		}
	}
	updated, err := store.UpdateInstance(ctx, UpdateWidgetInstanceInput{
		InstanceID:    widgetID,
		Configuration: req.Configuration,
		Metadata:      req.Metadata,
	})
	if err != nil {
		return err
	}
	if err := s.opts.RefreshHook.WidgetUpdated(ctx, WidgetEvent{
		AreaCode: updated.AreaCode,
		Instance: updated,
		Reason:   "update",
	}); err != nil {
		return err
	}
	s.emitActivity(ctx, activity.Event{
		Verb:           "dashboard.widget.update",
		ObjectType:     "widget_instance",
		ObjectID:       widgetID,
		DefinitionCode: updated.DefinitionID,
		ActorID:        req.ActorID,
		UserID:         req.UserID,
		TenantID:       req.TenantID,
		Metadata: map[string]any{
			"definition_id": updated.DefinitionID,
		},
	})
	s.recordTelemetry(ctx, "dashboard.widget.update", map[string]any{"widget_id": widgetID})
	return nil
}

// ReorderWidgets changes widget ordering within an area.
func (s *Service) ReorderWidgets(ctx context.Context, areaCode string, widgetIDs []string) error {
	store, err := s.widgetStore()
	if err != nil {
		return err
	}
	if areaCode == "" {
		return errInvalidArea
	}
	if err := store.ReorderArea(ctx, ReorderAreaInput{
		AreaCode:  areaCode,
		WidgetIDs: widgetIDs,
	}); err != nil {
		return err
	}
	if err := s.opts.RefreshHook.WidgetUpdated(ctx, WidgetEvent{
		AreaCode: areaCode,
		Reason:   "reorder",
	}); err != nil {
		return err
	}
	s.emitActivity(ctx, activity.Event{
		Verb:       "dashboard.widget.reorder",
		ObjectType: "widget_area",
		ObjectID:   areaCode,
		Metadata: map[string]any{
			"area_code": areaCode,
			"count":     len(widgetIDs),
		},
	})
	s.recordTelemetry(ctx, "dashboard.widget.reorder", map[string]any{
		"area_code": areaCode,
		"count":     len(widgetIDs),
	})
	return nil
}

// ConfigureLayout resolves widgets for each dashboard area respecting
// preferences and authorization. The viewer's saved time range and locale
// flow into every provider through the widget context options.
func (s *Service) ConfigureLayout(ctx context.Context, viewer ViewerContext) (Layout, error) {
	store, err := s.widgetStore()
	if err != nil {
		return Layout{}, err
	}
	overrides, err := s.opts.PreferenceStore.LayoutOverrides(ctx, viewer)
	if err != nil {
		return Layout{}, err
	}
	if viewer.Locale == "" && overrides.Locale != "" {
		viewer.Locale = overrides.Locale
	}
	options := s.widgetOptions(ctx, overrides)
	layout := Layout{Areas: make(map[string][]WidgetInstance)}
	for _, area := range s.areaList() {
		resolved, err := store.ResolveArea(ctx, ResolveAreaInput{
			AreaCode: area,
			Audience: viewer.Roles,
			Locale:   viewer.Locale,
		})
		if err != nil {
			return Layout{}, err
		}
		for i := range resolved.Widgets {
			resolved.Widgets[i].AreaCode = area
		}
		filtered := s.filterAuthorized(ctx, viewer, resolved.Widgets, options)
		ordered := applyOrderOverride(filtered, overrides.AreaOrder[area])
		layout.Areas[area] = applyHiddenFilter(ordered, overrides.HiddenWidgets)
	}
	s.recordTelemetry(ctx, "dashboard.layout.resolve", map[string]any{
		"viewer": viewer.UserID,
	})
	return layout, nil
}

// ResolveArea retrieves a single area layout for the viewer. Partial
// refreshes use this so the saved time range still applies.
func (s *Service) ResolveArea(ctx context.Context, viewer ViewerContext, areaCode string) (ResolvedArea, error) {
	store, err := s.widgetStore()
	if err != nil {
		return ResolvedArea{}, err
	}
	overrides, err := s.opts.PreferenceStore.LayoutOverrides(ctx, viewer)
	if err != nil {
		return ResolvedArea{}, err
	}
	resolved, err := store.ResolveArea(ctx, ResolveAreaInput{
		AreaCode: areaCode,
		Audience: viewer.Roles,
		Locale:   viewer.Locale,
	})
	if err != nil {
		return ResolvedArea{}, err
	}
	for i := range resolved.Widgets {
		resolved.Widgets[i].AreaCode = areaCode
	}
	options := s.widgetOptions(ctx, overrides)
	resolved.Widgets = s.filterAuthorized(ctx, viewer, resolved.Widgets, options)
	s.recordTelemetry(ctx, "dashboard.area.resolve", map[string]any{
		"viewer":   viewer.UserID,
		"areaCode": areaCode,
	})
	return resolved, nil
}

func (s *Service) widgetStore() (WidgetStore, error) {
	if s.opts.WidgetStore == nil {
		return nil, errMissingWidgetStore
	}
	return s.opts.WidgetStore, nil
}

func (s *Service) validateConfiguration(definitionID string, config map[string]any) error {
	if s.opts.ConfigValidator == nil || s.opts.Providers == nil {
		return nil
	}
	def, ok := s.opts.Providers.Definition(definitionID)
	if !ok {
		return nil
	}
	return s.opts.ConfigValidator.Validate(def, config)
}

func (s *Service) areaList() []string {
	if len(s.opts.Areas) > 0 {
		return s.opts.Areas
	}
	return defaultAreas
}

// widgetOptions assembles the per-request option map handed to providers:
// the viewer's time range choice and, when configured, a CSP nonce for
// chart markup.
func (s *Service) widgetOptions(ctx context.Context, overrides LayoutOverrides) map[string]any {
	options := map[string]any{}
	if overrides.TimeRange != "" {
		options[timeRangeOptionKey] = overrides.TimeRange
	}
	if s.opts.ScriptNonce != nil {
		if nonce := s.opts.ScriptNonce(ctx); nonce != "" {
			options[scriptNonceOptionKey] = nonce
		}
	}
	if len(options) == 0 {
		return nil
	}
	return options
}

func (s *Service) filterAuthorized(ctx context.Context, viewer ViewerContext, widgets []WidgetInstance, options map[string]any) []WidgetInstance {
	if len(widgets) == 0 {
		return widgets
	}
	var filtered []WidgetInstance
	for _, w := range widgets {
		if s.opts.Authorizer.CanViewWidget(ctx, viewer, w) {
			filtered = append(filtered, w)
		}
	}
	return s.attachProviderData(ctx, viewer, filtered, options)
}

// attachProviderData enriches widgets with their provider payloads. A
// provider failure skips that widget's data but keeps the widget, so one
// broken section never takes down the page.
func (s *Service) attachProviderData(ctx context.Context, viewer ViewerContext, widgets []WidgetInstance, options map[string]any) []WidgetInstance {
	if len(widgets) == 0 || s.opts.Providers == nil {
		return widgets
	}
	enriched := make([]WidgetInstance, len(widgets))
	copy(enriched, widgets)
	for i, inst := range enriched {
		provider, ok := s.opts.Providers.Provider(inst.DefinitionID)
		if !ok || provider == nil {
			continue
		}
		data, err := provider.Fetch(ctx, WidgetContext{
			Instance:   inst,
			Viewer:     viewer,
			Translator: s.opts.Translator,
			Options:    options,
		})
		if err != nil {
			s.recordTelemetry(ctx, "dashboard.widget.provider_error", map[string]any{
				"definition_id": inst.DefinitionID,
				"error":         err.Error(),
			})
			continue
		}
		if enriched[i].Metadata == nil {
			enriched[i].Metadata = map[string]any{}
		}
		enriched[i].Metadata["data"] = data
	}
	return enriched
}

// NotifyWidgetUpdated exposes refresh hook invocation for commands/transports.
func (s *Service) NotifyWidgetUpdated(ctx context.Context, event WidgetEvent) error {
	if err := s.opts.RefreshHook.WidgetUpdated(ctx, event); err != nil {
		return err
	}
	s.recordTelemetry(ctx, "dashboard.widget.event", map[string]any{
		"area_code": event.AreaCode,
		"widget_id": event.Instance.ID,
		"reason":    event.Reason,
	})
	return nil
}

// SavePreferences persists per-viewer layout overrides.
func (s *Service) SavePreferences(ctx context.Context, viewer ViewerContext, overrides LayoutOverrides) error {
	if viewer.UserID == "" {
		return errors.New("dashboard: viewer context missing user id")
	}
	s.normalizeOverrides(&overrides)
	return s.opts.PreferenceStore.SaveLayoutOverrides(ctx, viewer, overrides)
}

// Preferences returns the stored overrides for the viewer.
func (s *Service) Preferences(ctx context.Context, viewer ViewerContext) (LayoutOverrides, error) {
	return s.opts.PreferenceStore.LayoutOverrides(ctx, viewer)
}

func (s *Service) normalizeOverrides(overrides *LayoutOverrides) {
	if overrides.AreaOrder == nil {
		overrides.AreaOrder = map[string][]string{}
	}
	if overrides.HiddenWidgets == nil {
		overrides.HiddenWidgets = map[string]bool{}
	}
}

// emitActivity fills actor identity from the context when the request did
// not carry it, then delivers the event. Activity failures surface as
// telemetry rather than failing the dashboard operation.
func (s *Service) emitActivity(ctx context.Context, evt activity.Event) {
	if !s.activity.Enabled() {
		return
	}
	actor := activityContextFrom(ctx)
	if evt.ActorID == "" {
		evt.ActorID = actor.ActorID
	}
	if evt.UserID == "" {
		evt.UserID = actor.UserID
	}
	if evt.TenantID == "" {
		evt.TenantID = actor.TenantID
	}
	if err := s.activity.Emit(ctx, evt); err != nil {
		s.recordTelemetry(ctx, "dashboard.activity.error", map[string]any{
			"verb":  evt.Verb,
			"error": err.Error(),
		})
	}
}

type allowAllAuthorizer struct{}

func (allowAllAuthorizer) CanViewWidget(context.Context, ViewerContext, WidgetInstance) bool {
	return true
}

type noopRefreshHook struct{}

func (noopRefreshHook) WidgetUpdated(context.Context, WidgetEvent) error {
	return nil
}
