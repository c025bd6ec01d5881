package dashboard

import (
	"bytes"
	"crypto/sha1"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"sync"

	"github.com/santhosh-tekuri/jsonschema/v5"
)

// ConfigValidator validates widget configuration payloads against their schema.
type ConfigValidator interface {
	Validate(def WidgetDefinition, config map[string]any) error
}

// JSONSchemaValidator compiles widget schemas on first use and validates
// configuration maps against them. Compiled schemas are cached per widget
// code and recompiled when a manifest reload changes the schema.
type JSONSchemaValidator struct {
	mu       sync.RWMutex
	compiled map[string]compiledSchema
}

type compiledSchema struct {
	fingerprint string
	schema      *jsonschema.Schema
}

// NewJSONSchemaValidator builds a validator backed by jsonschema v5.
func NewJSONSchemaValidator() *JSONSchemaValidator {
	return &JSONSchemaValidator{
		compiled: make(map[string]compiledSchema),
	}
}

// Validate ensures the provided configuration satisfies the widget schema.
// Definitions without a schema accept any configuration, and a nil
// configuration is treated as an empty object.
func (v *JSONSchemaValidator) Validate(def WidgetDefinition, config map[string]any) error {
	if len(def.Schema) == 0 {
		return nil
	}
	schema, err := v.schemaFor(def)
	if err != nil {
		return err
	}
	payload, err := normalizeConfig(def.Code, config)
	if err != nil {
		return err
	}
	if err := schema.Validate(payload); err != nil {
		return fmt.Errorf("dashboard: configuration for widget %s rejected: %w", def.Code, err)
	}
	return nil
}

// normalizeConfig round-trips the configuration through JSON so numeric types
// match what the schema compiler expects.
func normalizeConfig(code string, config map[string]any) (map[string]any, error) {
	if config == nil {
		return map[string]any{}, nil
	}
	data, err := json.Marshal(config)
	if err != nil {
		return nil, fmt.Errorf("dashboard: marshal configuration for widget %s: %w", code, err)
	}
	payload := map[string]any{}
	if err := json.Unmarshal(data, &payload); err != nil {
		return nil, fmt.Errorf("dashboard: normalize configuration for widget %s: %w", code, err)
	}
	return payload, nil
}

func (v *JSONSchemaValidator) schemaFor(def WidgetDefinition) (*jsonschema.Schema, error) {
	data, err := json.Marshal(def.Schema)
	if err != nil {
		return nil, fmt.Errorf("dashboard: marshal schema for widget %s: %w", def.Code, err)
	}
	sum := sha1.Sum(data)
	fingerprint := hex.EncodeToString(sum[:])

	v.mu.RLock()
	entry, ok := v.compiled[def.Code]
	v.mu.RUnlock()
	if ok && entry.fingerprint == fingerprint {
		return entry.schema, nil
	}

	compiler := jsonschema.NewCompiler()
	name := def.Code + ".json"
	if err := compiler.AddResource(name, bytes.NewReader(data)); err != nil {
		return nil, fmt.Errorf("dashboard: load schema for widget %s: %w", def.Code, err)
	}
	compiled, err := compiler.Compile(name)
	if err != nil {
		return nil, fmt.Errorf("dashboard: compile schema for widget %s: %w", def.Code, err)
	}

	v.mu.Lock()
	v.compiled[def.Code] = compiledSchema{fingerprint: fingerprint, schema: compiled}
	v.mu.Unlock()
	return compiled, nil
}

type noopConfigValidator struct{}

func (noopConfigValidator) Validate(WidgetDefinition, map[string]any) error { return nil }
