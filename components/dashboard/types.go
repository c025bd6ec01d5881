package dashboard

import (
	"context"
	"time"
)

// WidgetStore encapsulates persistence for widget areas, definitions, and
// instances. Implementations ensure thread safety and idempotency; the
// bundled in-memory store is enough for a single dashboard process.
type WidgetStore interface {
	EnsureArea(ctx context.Context, def WidgetAreaDefinition) (bool, error)
	EnsureDefinition(ctx context.Context, def WidgetDefinition) (bool, error)
	CreateInstance(ctx context.Context, input CreateWidgetInstanceInput) (WidgetInstance, error)
	GetInstance(ctx context.Context, instanceID string) (WidgetInstance, error)
	UpdateInstance(ctx context.Context, input UpdateWidgetInstanceInput) (WidgetInstance, error)
	DeleteInstance(ctx context.Context, instanceID string) error
	AssignInstance(ctx context.Context, input AssignWidgetInput) error
	ReorderArea(ctx context.Context, input ReorderAreaInput) error
	ResolveArea(ctx context.Context, input ResolveAreaInput) (ResolvedArea, error)
}

// Authorizer determines if a viewer can see a widget instance.
type Authorizer interface {
	CanViewWidget(ctx context.Context, viewer ViewerContext, instance WidgetInstance) bool
}

// PreferenceStore returns layout overrides per viewer.
type PreferenceStore interface {
	LayoutOverrides(ctx context.Context, viewer ViewerContext) (LayoutOverrides, error)
	SaveLayoutOverrides(ctx context.Context, viewer ViewerContext, overrides LayoutOverrides) error
}

// ProviderRegistry stores widget definitions/providers discoverable via
// hooks or manifests.
type ProviderRegistry interface {
	RegisterDefinition(def WidgetDefinition) error
	RegisterProvider(code string, provider Provider) error
	Definition(code string) (WidgetDefinition, bool)
	Provider(code string) (Provider, bool)
	Definitions() []WidgetDefinition
}

// RefreshHook notifies transports (REST/WebSocket) about widget changes.
type RefreshHook interface {
	WidgetUpdated(ctx context.Context, event WidgetEvent) error
}

// WidgetAreaDefinition models a dashboard region (main column, sidebar).
type WidgetAreaDefinition struct {
	Code        string
	Name        string
	Description string
}

// WidgetDefinition describes one widget kind and its configuration schema.
type WidgetDefinition struct {
	Code                 string
	Name                 string
	NameLocalized        map[string]string
	Description          string
	DescriptionLocalized map[string]string
	Schema               map[string]any
	Category             string
}

// WidgetInstance represents a placed widget.
type WidgetInstance struct {
	ID            string
	DefinitionID  string
	AreaCode      string
	Configuration map[string]any
	Metadata      map[string]any
}

// CreateWidgetInstanceInput configures new instances.
type CreateWidgetInstanceInput struct {
	DefinitionID  string
	Configuration map[string]any
	Visibility    WidgetVisibility
	Metadata      map[string]any
}

// UpdateWidgetInstanceInput replaces configuration and metadata on an
// existing instance. Nil maps leave the stored values untouched.
type UpdateWidgetInstanceInput struct {
	InstanceID    string
	Configuration map[string]any
	Metadata      map[string]any
}

// WidgetVisibility defines runtime visibility constraints.
type WidgetVisibility struct {
	Roles    []string
	StartAt  *time.Time
	EndAt    *time.Time
	Audience []string
}

// AssignWidgetInput associates a widget instance with an area.
type AssignWidgetInput struct {
	AreaCode   string
	InstanceID string
	Position   *int
}

// ReorderAreaInput represents a new ordering for widgets within an area.
type ReorderAreaInput struct {
	AreaCode  string
	WidgetIDs []string
}

// ResolveAreaInput requests widget instances for a given area and audience.
type ResolveAreaInput struct {
	AreaCode string
	Audience []string
	Locale   string
}

// ResolvedArea is a container for widgets returned by the store.
type ResolvedArea struct {
	AreaCode string
	Widgets  []WidgetInstance
}

// LayoutRow groups widget slots that render side by side.
type LayoutRow struct {
	Widgets []WidgetSlot
}

// WidgetSlot positions one widget inside a row with a 12-column width.
type WidgetSlot struct {
	ID    string
	Width int
}

// LayoutOverrides captures per-viewer adjustments: widget order and
// visibility, row layouts, locale, the preferred top-list time range, and
// whether the sidebar starts collapsed.
type LayoutOverrides struct {
	AreaOrder        map[string][]string
	AreaRows         map[string][]LayoutRow
	HiddenWidgets    map[string]bool
	Locale           string
	TimeRange        string
	SidebarCollapsed bool
}

// ViewerContext captures the active user/locale information needed to
// render dashboards.
type ViewerContext struct {
	UserID string
	Roles  []string
	Locale string
}

// Layout describes the resolved widget instances per dashboard area.
type Layout struct {
	Areas map[string][]WidgetInstance
}

// WidgetEvent describes changes that transports might care about.
type WidgetEvent struct {
	AreaCode string
	Instance WidgetInstance
	Reason   string
}
