package dashboard

import (
	"bytes"
	"fmt"
	"html"
	"io"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/go-echarts/go-echarts/v2/charts"
	"github.com/go-echarts/go-echarts/v2/opts"
	"github.com/go-echarts/go-echarts/v2/types"
	"github.com/google/uuid"
)

const (
	defaultChartHeight = "320px"
	defaultChartTheme  = types.ThemeWesteros
	genreSeriesName    = "géneros"

	// genreTooltipFormat labels each slice with its artist count.
	genreTooltipFormat = "{b}: {c} artistas"
)

// donutRadius fixes the inner/outer ring of the genre donut.
var donutRadius = []string{"55%", "80%"}

var sharedChartCache = NewChartCache(5 * time.Minute)

// ThemeResolver selects a chart theme per viewer.
type ThemeResolver func(ViewerContext) string

// GenreChartBuilder renders the genre distribution donut server-side with
// go-echarts. Rendered HTML is memoized per widget configuration; script
// nonces are applied after the cache so each request keeps its own nonce.
type GenreChartBuilder struct {
	cache         RenderCache
	theme         string
	themeResolver ThemeResolver
	assetsHost    string
}

// GenreChartOption customizes builder behavior.
type GenreChartOption func(*GenreChartBuilder)

// WithChartCache injects a render cache.
func WithChartCache(cache RenderCache) GenreChartOption {
	return func(b *GenreChartBuilder) {
		b.cache = cache
	}
}

// WithChartTheme sets a static theme (defaults to Westeros).
func WithChartTheme(theme string) GenreChartOption {
	return func(b *GenreChartBuilder) {
		b.theme = theme
	}
}

// WithChartThemeResolver resolves themes dynamically per viewer.
func WithChartThemeResolver(resolver ThemeResolver) GenreChartOption {
	return func(b *GenreChartBuilder) {
		b.themeResolver = resolver
	}
}

// WithChartAssetsHost rewrites the assets host so ECharts JS loads from a CDN.
func WithChartAssetsHost(host string) GenreChartOption {
	return func(b *GenreChartBuilder) {
		b.assetsHost = host
	}
}

// NewGenreChartBuilder builds the donut renderer. The assets host starts
// from the MELODIX_ECHARTS_CDN override when set.
func NewGenreChartBuilder(options ...GenreChartOption) *GenreChartBuilder {
	b := &GenreChartBuilder{
		cache:      sharedChartCache,
		theme:      defaultChartTheme,
		assetsHost: EChartsAssetsHost(),
	}
	for _, opt := range options {
		opt(b)
	}
	return b
}

// Build renders the donut for the given view and returns a fresh chart
// instance. Genre names come from the backend, so they are escaped before
// they reach the markup.
func (b *GenreChartBuilder) Build(view GenresView, meta WidgetContext) (*GenreChart, error) {
	if len(view.Slices) == 0 {
		return nil, fmt.Errorf("genre chart: at least one slice is required")
	}

	theme := b.resolveTheme(meta.Viewer)
	renderFn := func() (string, error) {
		return b.render(view, theme)
	}

	var (
		markup string
		err    error
	)
	if b.cache != nil {
		key := fmt.Sprintf("%s:%s:donut:%s", meta.Instance.DefinitionID, meta.Instance.ID, genreChartHash(view, theme))
		markup, err = b.cache.GetOrRender(key, renderFn)
	} else {
		markup, err = renderFn()
	}
	if err != nil {
		return nil, err
	}

	if nonce := scriptNonceFrom(meta); nonce != "" {
		markup = applyScriptNonce(markup, nonce)
	}
	return newGenreChart(markup), nil
}

func (b *GenreChartBuilder) render(view GenresView, theme string) (string, error) {
	initOpts := opts.Initialization{
		Theme:  theme,
		Width:  "100%",
		Height: defaultChartHeight,
	}
	if b.assetsHost != "" {
		initOpts.AssetsHost = b.assetsHost
	}

	colors := make([]string, len(view.Slices))
	data := make([]opts.PieData, len(view.Slices))
	for i, slice := range view.Slices {
		colors[i] = slice.Color
		data[i] = opts.PieData{
			Name:  html.EscapeString(slice.Name),
			Value: slice.Count,
		}
	}

	pie := charts.NewPie()
	pie.SetGlobalOptions(
		charts.WithInitializationOpts(initOpts),
		charts.WithColorsOpts(opts.Colors(colors)),
		charts.WithLegendOpts(opts.Legend{Show: opts.Bool(true), SelectedMode: "false"}),
		charts.WithTooltipOpts(opts.Tooltip{Show: opts.Bool(true), Trigger: "item", Formatter: genreTooltipFormat}),
	)
	pie.AddSeries(genreSeriesName, data)
	pie.SetSeriesOptions(
		charts.WithPieChartOpts(opts.PieChart{Radius: donutRadius}),
		charts.WithLabelOpts(opts.Label{Show: opts.Bool(false)}),
	)
	return renderChart(pie)
}

func (b *GenreChartBuilder) resolveTheme(viewer ViewerContext) string {
	if b.themeResolver != nil {
		if theme := b.themeResolver(viewer); theme != "" {
			return theme
		}
	}
	if b.theme != "" {
		return b.theme
	}
	return defaultChartTheme
}

func renderChart(renderable interface{ Render(io.Writer) error }) (string, error) {
	var buf bytes.Buffer
	if err := renderable.Render(&buf); err != nil {
		return "", err
	}
	return buf.String(), nil
}

// genreChartHash keys the render cache so equal slices and theme share one
// rendered document. Slice order is part of the key.
func genreChartHash(view GenresView, theme string) string {
	slices := make([]any, len(view.Slices))
	for i, slice := range view.Slices {
		slices[i] = map[string]any{
			"name":  slice.Name,
			"count": slice.Count,
			"color": slice.Color,
		}
	}
	return configHash(map[string]any{
		"theme":  theme,
		"slices": slices,
	})
}

func applyScriptNonce(markup, nonce string) string {
	if nonce == "" {
		return markup
	}
	markup = strings.ReplaceAll(markup, "<script>", `<script nonce="`+nonce+`">`)
	return strings.ReplaceAll(markup, "<script type=", `<script nonce="`+nonce+`" type=`)
}

// GenreChart is one rendered donut instance. The dashboard keeps exactly
// one live instance; disposed charts report empty markup so stale HTML
// cannot be reinstalled.
type GenreChart struct {
	id       string
	html     string
	disposed atomic.Bool
}

func newGenreChart(html string) *GenreChart {
	return &GenreChart{
		id:   uuid.NewString(),
		html: html,
	}
}

// ID identifies the instance for replacement bookkeeping.
func (c *GenreChart) ID() string {
	if c == nil {
		return ""
	}
	return c.id
}

// HTML returns the rendered markup, or "" once disposed.
func (c *GenreChart) HTML() string {
	if c == nil || c.disposed.Load() {
		return ""
	}
	return c.html
}

// Dispose marks the chart dead. Safe to call more than once.
func (c *GenreChart) Dispose() {
	if c != nil {
		c.disposed.Store(true)
	}
}

// Disposed reports whether the chart was torn down.
func (c *GenreChart) Disposed() bool {
	return c != nil && c.disposed.Load()
}

// ChartSlot owns the single live chart of a dashboard session. Replace
// disposes the previous instance before installing the next one, so at
// most one chart is live at a time no matter how often the range changes.
type ChartSlot struct {
	mu   sync.Mutex
	live *GenreChart
}

// Replace installs next and tears down whatever was live before. Passing
// nil clears the slot.
func (s *ChartSlot) Replace(next *GenreChart) {
	s.mu.Lock()
	prev := s.live
	s.live = next
	s.mu.Unlock()
	if prev != nil {
		prev.Dispose()
	}
}

// Live returns the current chart instance, if any.
func (s *ChartSlot) Live() *GenreChart {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.live
}

// Clear tears down the live chart.
func (s *ChartSlot) Clear() {
	s.Replace(nil)
}
