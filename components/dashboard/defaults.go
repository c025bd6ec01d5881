package dashboard

import (
	"github.com/go-echarts/go-echarts/v2/types"

	"github.com/melodix/go-dashboard/pkg/melodix"
)

// Dashboard area codes. The main column carries the listening widgets;
// the sidebar carries profile and recent plays.
const (
	AreaMain    = "melodix.dashboard.main"
	AreaSidebar = "melodix.dashboard.sidebar"
)

// Widget definition codes.
const (
	WidgetProfile         = "melodix.widget.profile"
	WidgetStats           = "melodix.widget.stats"
	WidgetTopArtists      = "melodix.widget.top_artists"
	WidgetTopTracks       = "melodix.widget.top_tracks"
	WidgetGenres          = "melodix.widget.genres"
	WidgetRecent          = "melodix.widget.recent"
	WidgetRecommendations = "melodix.widget.recommendations"
)

var defaultAreaDefinitions = []WidgetAreaDefinition{
	{Code: AreaMain, Name: "Panel principal", Description: "Columna central con estadísticas y listas"},
	{Code: AreaSidebar, Name: "Barra lateral", Description: "Perfil y reproducciones recientes"},
}

var defaultWidgetDefinitions = []WidgetDefinition{
	{
		Code: WidgetProfile,
		Name: "Tu perfil",
		NameLocalized: map[string]string{
			"en": "Your profile",
		},
		Description: "Cuenta, seguidores y tipo de suscripción",
		DescriptionLocalized: map[string]string{
			"en": "Account, followers and subscription tier",
		},
		Category: "profile",
		Schema: map[string]any{
			"type": "object",
			"properties": map[string]any{
				"show_country": map[string]any{"type": "boolean", "default": true},
			},
			"additionalProperties": false,
		},
	},
	{
		Code: WidgetStats,
		Name: "Resumen",
		NameLocalized: map[string]string{
			"en": "Overview",
		},
		Description: "Contadores de seguidores, artistas, canciones y géneros",
		DescriptionLocalized: map[string]string{
			"en": "Follower, artist, track and genre counters",
		},
		Category: "stats",
		Schema: map[string]any{
			"type": "object",
			"properties": map[string]any{
				"columns": map[string]any{"type": "integer", "minimum": 2, "maximum": 4, "default": 4},
			},
			"additionalProperties": false,
		},
	},
	{
		Code: WidgetTopArtists,
		Name: "Artistas top",
		NameLocalized: map[string]string{
			"en": "Top artists",
		},
		Description: "Tus artistas más escuchados en el rango elegido",
		DescriptionLocalized: map[string]string{
			"en": "Your most played artists for the chosen range",
		},
		Category: "lists",
		Schema: map[string]any{
			"type": "object",
			"properties": map[string]any{
				"limit":      limitSchema(1, 50, 10),
				"time_range": timeRangeSchema(),
			},
			"additionalProperties": false,
		},
	},
	{
		Code: WidgetTopTracks,
		Name: "Canciones top",
		NameLocalized: map[string]string{
			"en": "Top tracks",
		},
		Description: "Tus canciones más escuchadas en el rango elegido",
		DescriptionLocalized: map[string]string{
			"en": "Your most played tracks for the chosen range",
		},
		Category: "lists",
		Schema: map[string]any{
			"type": "object",
			"properties": map[string]any{
				"limit":        limitSchema(1, 50, 10),
				"time_range":   timeRangeSchema(),
				"show_preview": map[string]any{"type": "boolean", "default": true},
			},
			"additionalProperties": false,
		},
	},
	{
		Code: WidgetGenres,
		Name: "Tus géneros",
		NameLocalized: map[string]string{
			"en": "Your genres",
		},
		Description: "Distribución de géneros como gráfico de anillo",
		DescriptionLocalized: map[string]string{
			"en": "Genre distribution rendered as a donut chart",
		},
		Category: "charts",
		Schema: map[string]any{
			"type": "object",
			"properties": map[string]any{
				"limit": limitSchema(1, 10, 10),
				"theme": map[string]any{
					"type": "string",
					"enum": []string{
						string(types.ThemeWesteros),
						string(types.ThemeWalden),
						string(types.ThemeWonderland),
						string(types.ThemeChalk),
					},
				},
			},
			"additionalProperties": false,
		},
	},
	{
		Code: WidgetRecent,
		Name: "Escuchado recientemente",
		NameLocalized: map[string]string{
			"en": "Recently played",
		},
		Description: "Últimas reproducciones con marca de tiempo relativa",
		DescriptionLocalized: map[string]string{
			"en": "Latest plays with relative timestamps",
		},
		Category: "activity",
		Schema: map[string]any{
			"type": "object",
			"properties": map[string]any{
				"limit": limitSchema(1, 50, 20),
			},
			"additionalProperties": false,
		},
	},
	{
		Code: WidgetRecommendations,
		Name: "Recomendaciones",
		NameLocalized: map[string]string{
			"en": "Recommendations",
		},
		Description: "Sugerencias del recomendador con explicación y preview",
		DescriptionLocalized: map[string]string{
			"en": "Recommender picks with explanations and previews",
		},
		Category: "recommendations",
		Schema:   recommendationsSchema(),
	},
}

func limitSchema(lo, hi, def int) map[string]any {
	return map[string]any{
		"type":    "integer",
		"minimum": lo,
		"maximum": hi,
		"default": def,
	}
}

func timeRangeSchema() map[string]any {
	return map[string]any{
		"type": "string",
		"enum": []string{
			melodix.RangeShortTerm,
			melodix.RangeMediumTerm,
			melodix.RangeLongTerm,
		},
		"default": melodix.RangeMediumTerm,
	}
}

func recommendationsSchema() map[string]any {
	moods := make([]string, 0, len(melodix.Moods)+1)
	moods = append(moods, melodix.DefaultMood)
	moods = append(moods, melodix.Moods...)
	return map[string]any{
		"type": "object",
		"properties": map[string]any{
			"mood": map[string]any{
				"type":    "string",
				"enum":    moods,
				"default": melodix.DefaultMood,
			},
			"query": map[string]any{
				"type": "string",
			},
			"limit": limitSchema(1, 12, 12),
		},
		"additionalProperties": false,
	}
}

var defaultSeedConfigs = []AddWidgetRequest{
	{
		DefinitionID:  WidgetStats,
		AreaCode:      AreaMain,
		Configuration: map[string]any{"columns": 4},
	},
	{
		DefinitionID:  WidgetTopArtists,
		AreaCode:      AreaMain,
		Configuration: map[string]any{"limit": 10, "time_range": melodix.RangeMediumTerm},
	},
	{
		DefinitionID:  WidgetTopTracks,
		AreaCode:      AreaMain,
		Configuration: map[string]any{"limit": 10, "time_range": melodix.RangeMediumTerm},
	},
	{
		DefinitionID:  WidgetGenres,
		AreaCode:      AreaMain,
		Configuration: map[string]any{"limit": 10},
	},
	{
		DefinitionID:  WidgetRecommendations,
		AreaCode:      AreaMain,
		Configuration: map[string]any{"mood": melodix.DefaultMood},
	},
	{
		DefinitionID:  WidgetProfile,
		AreaCode:      AreaSidebar,
		Configuration: map[string]any{},
	},
	{
		DefinitionID:  WidgetRecent,
		AreaCode:      AreaSidebar,
		Configuration: map[string]any{"limit": 20},
	},
}

// DefaultAreaDefinitions returns copies of built-in area definitions.
func DefaultAreaDefinitions() []WidgetAreaDefinition {
	out := make([]WidgetAreaDefinition, len(defaultAreaDefinitions))
	copy(out, defaultAreaDefinitions)
	return out
}

// DefaultWidgetDefinitions returns copies of built-in widget definitions.
func DefaultWidgetDefinitions() []WidgetDefinition {
	out := make([]WidgetDefinition, len(defaultWidgetDefinitions))
	copy(out, defaultWidgetDefinitions)
	return out
}

// DefaultSeedWidgets returns the starter layout assignments.
func DefaultSeedWidgets() []AddWidgetRequest {
	out := make([]AddWidgetRequest, len(defaultSeedConfigs))
	for i, cfg := range defaultSeedConfigs {
		copyCfg := cfg
		if cfg.StartAt != nil {
			start := *cfg.StartAt
			copyCfg.StartAt = &start
		}
		if cfg.EndAt != nil {
			end := *cfg.EndAt
			copyCfg.EndAt = &end
		}
		out[i] = copyCfg
	}
	return out
}
