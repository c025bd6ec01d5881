package dashboard

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStaticAssetsHandlerServesPlaceholder(t *testing.T) {
	handler := StaticAssetsHandler("")
	req := httptest.NewRequest(http.MethodGet, FallbackImage, nil)
	rec := httptest.NewRecorder()

	handler.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "<svg")
	assert.Contains(t, rec.Header().Get("Content-Type"), "image/svg+xml")
}

func TestStaticAssetsHandlerCustomPrefix(t *testing.T) {
	handler := StaticAssetsHandler("/static/melodix")
	req := httptest.NewRequest(http.MethodGet, "/static/melodix/placeholder-cover.svg", nil)
	rec := httptest.NewRecorder()

	handler.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "<svg")
}

func TestEChartsAssetsHostEnvOverride(t *testing.T) {
	t.Setenv("MELODIX_ECHARTS_CDN", "https://cdn.melodix.example/echarts")
	assert.Equal(t, "https://cdn.melodix.example/echarts/", EChartsAssetsHost())

	t.Setenv("MELODIX_ECHARTS_CDN", "")
	assert.Empty(t, EChartsAssetsHost())
}

func TestBuilderPicksUpAssetsHost(t *testing.T) {
	t.Setenv("MELODIX_ECHARTS_CDN", "https://cdn.melodix.example/echarts/")
	builder := NewGenreChartBuilder(WithChartCache(nil))

	chart, err := builder.Build(sampleGenresView(), genreChartContext())
	require.NoError(t, err)
	assert.Contains(t, chart.HTML(), "https://cdn.melodix.example/echarts/")
}
