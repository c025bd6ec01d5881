package dashboard

import (
	"context"
	"errors"
	"fmt"
)

// RegisterAreas ensures the built-in dashboard areas exist in the store.
func RegisterAreas(ctx context.Context, store WidgetStore) error {
	if store == nil {
		return errMissingWidgetStore
	}
	for _, area := range DefaultAreaDefinitions() {
		if _, err := store.EnsureArea(ctx, area); err != nil {
			return fmt.Errorf("register area %s: %w", area.Code, err)
		}
	}
	return nil
}

// RegisterDefinitions registers the built-in widget catalog with the
// store and, when given, the provider registry.
func RegisterDefinitions(ctx context.Context, store WidgetStore, registry ProviderRegistry) error {
	if store == nil {
		return errMissingWidgetStore
	}
	for _, def := range DefaultWidgetDefinitions() {
		if _, err := store.EnsureDefinition(ctx, def); err != nil {
			return fmt.Errorf("register definition %s: %w", def.Code, err)
		}
		if registry != nil {
			if err := registry.RegisterDefinition(def); err != nil {
				return fmt.Errorf("register definition in registry %s: %w", def.Code, err)
			}
		}
	}
	return nil
}

// SeedLayout creates the starter widget assignments: stats, top lists,
// genres and recommendations in the main column, profile and recent plays
// in the sidebar. An already-populated main area is left alone so that
// re-running seed against a persistent store does not duplicate widgets.
// Individual failures are collected so one bad seed does not abort the
// rest.
func SeedLayout(ctx context.Context, service *Service) error {
	if service == nil {
		return errors.New("dashboard: service is required to seed layout")
	}
	if area, err := service.ResolveArea(ctx, ViewerContext{}, AreaMain); err == nil && len(area.Widgets) > 0 {
		return nil
	}
	var seedErr error
	for _, req := range DefaultSeedWidgets() {
		if err := service.AddWidget(ctx, req); err != nil {
			seedErr = errors.Join(seedErr, err)
		}
	}
	return seedErr
}
