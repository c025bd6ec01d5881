package dashboard

import (
	"testing"

	"github.com/melodix/go-dashboard/pkg/melodix"
)

func catalogDefinition(t *testing.T, code string) WidgetDefinition {
	t.Helper()
	for _, def := range DefaultWidgetDefinitions() {
		if def.Code == code {
			return def
		}
	}
	t.Fatalf("definition %s not in catalog", code)
	return WidgetDefinition{}
}

func TestJSONSchemaValidatorEnforcesCatalogBounds(t *testing.T) {
	validator := NewJSONSchemaValidator()
	def := catalogDefinition(t, WidgetTopArtists)

	if err := validator.Validate(def, map[string]any{"limit": 10, "time_range": melodix.RangeShortTerm}); err != nil {
		t.Fatalf("expected valid config, got %v", err)
	}
	if err := validator.Validate(def, map[string]any{"limit": 500}); err == nil {
		t.Fatal("expected validation error for limit above maximum")
	}
	if err := validator.Validate(def, map[string]any{"time_range": "eterno"}); err == nil {
		t.Fatal("expected validation error for unknown time range")
	}
	if err := validator.Validate(def, map[string]any{"sorpresa": true}); err == nil {
		t.Fatal("expected validation error for unknown property")
	}
}

func TestJSONSchemaValidatorMoodEnum(t *testing.T) {
	validator := NewJSONSchemaValidator()
	def := catalogDefinition(t, WidgetRecommendations)

	if err := validator.Validate(def, map[string]any{"mood": "fiesta"}); err != nil {
		t.Fatalf("expected fiesta accepted, got %v", err)
	}
	if err := validator.Validate(def, map[string]any{"mood": "artista", "query": "Rosalía"}); err != nil {
		t.Fatalf("expected artista with query accepted, got %v", err)
	}
	if err := validator.Validate(def, map[string]any{"mood": "volando"}); err == nil {
		t.Fatal("expected validation error for unknown mood")
	}
}

func TestJSONSchemaValidatorAcceptsNilConfig(t *testing.T) {
	validator := NewJSONSchemaValidator()
	for _, def := range DefaultWidgetDefinitions() {
		if err := validator.Validate(def, nil); err != nil {
			t.Fatalf("catalog definition %s rejected nil config: %v", def.Code, err)
		}
	}
}

func TestJSONSchemaValidatorSchemalessDefinition(t *testing.T) {
	validator := NewJSONSchemaValidator()
	def := WidgetDefinition{Code: "melodix.widget.custom"}
	if err := validator.Validate(def, map[string]any{"anything": "goes"}); err != nil {
		t.Fatalf("expected schema-less definition to accept any config, got %v", err)
	}
}

func TestJSONSchemaValidatorCachesCompiledSchemas(t *testing.T) {
	validator := NewJSONSchemaValidator()
	def := catalogDefinition(t, WidgetGenres)

	if err := validator.Validate(def, nil); err != nil {
		t.Fatalf("unexpected error validating config: %v", err)
	}
	if len(validator.compiled) != 1 {
		t.Fatalf("expected schema cache to contain 1 entry, got %d", len(validator.compiled))
	}
	if err := validator.Validate(def, map[string]any{"limit": 5}); err != nil {
		t.Fatalf("unexpected error on cached validation: %v", err)
	}
	if len(validator.compiled) != 1 {
		t.Fatalf("expected schema cache to remain 1 entry, got %d", len(validator.compiled))
	}
}

func TestJSONSchemaValidatorRecompilesChangedSchema(t *testing.T) {
	validator := NewJSONSchemaValidator()
	def := WidgetDefinition{
		Code: "melodix.widget.custom",
		Schema: map[string]any{
			"type":       "object",
			"properties": map[string]any{"limit": map[string]any{"type": "integer", "maximum": 5}},
		},
	}

	if err := validator.Validate(def, map[string]any{"limit": 10}); err == nil {
		t.Fatal("expected limit 10 rejected by original schema")
	}

	def.Schema = map[string]any{
		"type":       "object",
		"properties": map[string]any{"limit": map[string]any{"type": "integer", "maximum": 50}},
	}
	if err := validator.Validate(def, map[string]any{"limit": 10}); err != nil {
		t.Fatalf("expected relaxed schema to accept limit 10, got %v", err)
	}
	if len(validator.compiled) != 1 {
		t.Fatalf("expected recompile to replace the cache entry, got %d entries", len(validator.compiled))
	}
}
