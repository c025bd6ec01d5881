package dashboard

import (
	"embed"
	"fmt"
	"io/fs"
	"net/http"
	"os"
	"strings"
)

const (
	// DefaultAssetsPath is the mount point HTML transports use for the
	// dashboard's own static assets (placeholder artwork, favicons).
	DefaultAssetsPath = "/assets/"
	// envEChartsCDN points rendered charts at an alternate ECharts runtime
	// host, e.g. a self-hosted mirror behind a strict CSP.
	envEChartsCDN = "MELODIX_ECHARTS_CDN"
)

//go:embed assets/*
var embeddedAssets embed.FS

// StaticAssetsFS exposes the embedded static assets shared by the HTML
// transports. FallbackImage resolves against this filesystem.
func StaticAssetsFS() fs.FS {
	sub, err := fs.Sub(embeddedAssets, "assets")
	if err != nil {
		// The directory is embedded at build time.
		panic(fmt.Errorf("dashboard: embedded assets are missing: %w", err))
	}
	return sub
}

// StaticAssetsHandler returns an http.Handler serving the embedded assets
// from the given prefix. An empty prefix mounts at DefaultAssetsPath.
func StaticAssetsHandler(prefix string) http.Handler {
	if prefix == "" {
		prefix = DefaultAssetsPath
	}
	prefix = ensureTrailingSlash(prefix)
	return http.StripPrefix(prefix, http.FileServer(http.FS(StaticAssetsFS())))
}

// EChartsAssetsHost reports where rendered charts load the ECharts runtime
// from. Empty means the go-echarts default CDN; MELODIX_ECHARTS_CDN
// overrides it for self-hosted deployments.
func EChartsAssetsHost() string {
	if host := strings.TrimSpace(os.Getenv(envEChartsCDN)); host != "" {
		return ensureTrailingSlash(host)
	}
	return ""
}

func ensureTrailingSlash(value string) string {
	if value == "" {
		return ""
	}
	if strings.HasSuffix(value, "/") {
		return value
	}
	return value + "/"
}
