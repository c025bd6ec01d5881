package dashboard

import "context"

// Option keys the service injects into the widget context per request.
// scriptNonceOptionKey carries a CSP nonce so chart markup can tag its
// inline scripts; timeRangeOptionKey carries the viewer's range choice,
// which wins over the instance configuration.
const (
	scriptNonceOptionKey = "script_nonce"
	timeRangeOptionKey   = "time_range"
)

// Provider fetches data required to render a widget instance.
type Provider interface {
	Fetch(ctx context.Context, meta WidgetContext) (WidgetData, error)
}

// ProviderFunc adapts a function to the Provider interface.
type ProviderFunc func(ctx context.Context, meta WidgetContext) (WidgetData, error)

// Fetch invokes the wrapped function.
func (f ProviderFunc) Fetch(ctx context.Context, meta WidgetContext) (WidgetData, error) {
	return f(ctx, meta)
}

// WidgetContext contains the metadata needed by providers.
type WidgetContext struct {
	Instance   WidgetInstance
	Viewer     ViewerContext
	Translator TranslationService
	Options    map[string]any
}

// WidgetData is an opaque payload passed to templates.
type WidgetData map[string]any

func scriptNonceFrom(meta WidgetContext) string {
	if len(meta.Options) == 0 {
		return ""
	}
	nonce, _ := meta.Options[scriptNonceOptionKey].(string)
	return nonce
}
