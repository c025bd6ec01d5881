package dashboard

import (
	"context"
	"strings"
)

// GenrePalette is the fixed donut/legend color cycle. Slice colors are
// assigned positionally, so the palette size caps how many genres the
// chart shows.
var GenrePalette = []string{
	"#1db954",
	"#1ed760",
	"#2ee6a8",
	"#4cc3ff",
	"#5a7bff",
	"#9b6bff",
	"#e05aff",
	"#ff5a8f",
	"#ff8c42",
	"#ffd23f",
}

// ThemeProvider matches the go-theme provider interface used by adapters.
// It is optional; without one the dashboard renders its built-in dark
// theme.
type ThemeProvider interface {
	SelectTheme(ctx context.Context, selector ThemeSelector) (*ThemeSelection, error)
}

// ThemeSelectorFunc chooses the theme name/variant for a given viewer.
type ThemeSelectorFunc func(ctx context.Context, viewer ViewerContext) ThemeSelector

// ThemeSelector describes the desired theme/variant.
type ThemeSelector struct {
	Name    string
	Variant string
}

// ThemeSelection carries resolved theme details (tokens, assets, templates).
type ThemeSelection struct {
	Name       string
	Variant    string
	Tokens     map[string]string
	Assets     ThemeAssets
	Templates  map[string]string
	ChartTheme string
}

// ThemeAssets provides asset metadata plus optional prefix/resolver.
type ThemeAssets struct {
	Values   map[string]string
	Prefix   string
	Resolver func(string) string
}

// ChartThemeResolver adapts a theme provider into the chart builder's
// per-viewer resolver. Selection failures fall back to the built-in
// chart theme instead of failing the render.
func ChartThemeResolver(provider ThemeProvider, selector ThemeSelectorFunc) ThemeResolver {
	return func(viewer ViewerContext) string {
		fallback := DefaultTheme().ChartTheme
		if provider == nil {
			return fallback
		}
		ctx := context.Background()
		var sel ThemeSelector
		if selector != nil {
			sel = selector(ctx, viewer)
		}
		selection, err := provider.SelectTheme(ctx, sel)
		if err != nil || selection == nil || selection.ChartTheme == "" {
			return fallback
		}
		return selection.ChartTheme
	}
}

// DefaultTheme returns the built-in dark theme. Each call yields a fresh
// selection so callers may mutate their copy.
func DefaultTheme() *ThemeSelection {
	return &ThemeSelection{
		Name:    "melodix",
		Variant: "dark",
		Tokens: map[string]string{
			"color-bg":      "#0f1115",
			"color-surface": "#161a22",
			"color-card":    "#1f2430",
			"color-border":  "#2a3140",
			"color-text":    "#f5f6fa",
			"color-muted":   "#7a829e",
			"color-accent":  "#1db954",
		},
		ChartTheme: defaultChartTheme,
	}
}

// AssetURL resolves the final URL for a named asset (logo, favicon, etc.).
func (assets ThemeAssets) AssetURL(name string) string {
	if len(assets.Values) == 0 {
		return ""
	}
	path := assets.Values[name]
	if path == "" {
		return ""
	}
	if assets.Resolver != nil {
		if resolved := assets.Resolver(path); resolved != "" {
			return resolved
		}
	}
	if assets.Prefix != "" {
		return strings.TrimRight(assets.Prefix, "/") + "/" + strings.TrimLeft(path, "/")
	}
	return path
}

// Resolved returns a map of asset keys to resolved URLs.
func (assets ThemeAssets) Resolved() map[string]string {
	if len(assets.Values) == 0 {
		return nil
	}
	out := make(map[string]string, len(assets.Values))
	for key := range assets.Values {
		if url := assets.AssetURL(key); url != "" {
			out[key] = url
		}
	}
	return out
}

// CSSVariables normalizes token keys into CSS variable names.
func (theme *ThemeSelection) CSSVariables() map[string]string {
	if theme == nil || len(theme.Tokens) == 0 {
		return nil
	}
	vars := make(map[string]string, len(theme.Tokens))
	for key, value := range theme.Tokens {
		name := normalizeCSSVariable(key)
		if name == "" {
			continue
		}
		vars[name] = value
	}
	return vars
}

// CSSVariablesInline renders the CSS variable map as a style string.
func (theme *ThemeSelection) CSSVariablesInline() string {
	vars := theme.CSSVariables()
	if len(vars) == 0 {
		return ""
	}
	var builder strings.Builder
	for key, value := range vars {
		if value == "" {
			continue
		}
		builder.WriteString(key)
		builder.WriteString(": ")
		builder.WriteString(value)
		builder.WriteString("; ")
	}
	return strings.TrimSpace(builder.String())
}

// AssetURL resolves a named asset using the selection assets.
func (theme *ThemeSelection) AssetURL(name string) string {
	if theme == nil {
		return ""
	}
	return theme.Assets.AssetURL(name)
}

// TemplatePath retrieves a theme-specific template if present.
func (theme *ThemeSelection) TemplatePath(key string) string {
	if theme == nil || len(theme.Templates) == 0 {
		return ""
	}
	return theme.Templates[key]
}

func normalizeCSSVariable(name string) string {
	name = strings.TrimSpace(name)
	if name == "" {
		return ""
	}
	if strings.HasPrefix(name, "--") {
		return name
	}
	return "--" + name
}
