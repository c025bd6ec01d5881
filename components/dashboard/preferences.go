package dashboard

import (
	"context"
	"fmt"
	"sync"

	"github.com/melodix/go-dashboard/pkg/melodix"
)

// InMemoryPreferenceStore is the concurrency-safe default store. A single
// dashboard process keeps viewer preferences here; hosts with real user
// storage supply their own PreferenceStore.
type InMemoryPreferenceStore struct {
	mu   sync.RWMutex
	data map[string]LayoutOverrides
}

// NewInMemoryPreferenceStore creates an empty preference store.
func NewInMemoryPreferenceStore() *InMemoryPreferenceStore {
	return &InMemoryPreferenceStore{
		data: make(map[string]LayoutOverrides),
	}
}

// LayoutOverrides returns stored overrides or defaults.
func (s *InMemoryPreferenceStore) LayoutOverrides(_ context.Context, viewer ViewerContext) (LayoutOverrides, error) {
	if viewer.UserID == "" {
		return s.defaults(viewer), nil
	}
	s.mu.RLock()
	overrides, ok := s.data[s.key(viewer)]
	s.mu.RUnlock()
	if !ok {
		return s.defaults(viewer), nil
	}
	s.normalize(&overrides)
	if overrides.Locale == "" {
		overrides.Locale = viewer.Locale
	}
	return overrides, nil
}

// SaveLayoutOverrides persists overrides for a viewer.
func (s *InMemoryPreferenceStore) SaveLayoutOverrides(_ context.Context, viewer ViewerContext, overrides LayoutOverrides) error {
	if viewer.UserID == "" {
		return fmt.Errorf("preference store requires viewer user id")
	}
	if overrides.Locale == "" {
		overrides.Locale = viewer.Locale
	}
	s.normalize(&overrides)
	s.mu.Lock()
	defer s.mu.Unlock()
	s.data[s.key(viewer)] = overrides
	return nil
}

func (s *InMemoryPreferenceStore) defaults(viewer ViewerContext) LayoutOverrides {
	return LayoutOverrides{
		Locale:        viewer.Locale,
		TimeRange:     melodix.RangeMediumTerm,
		AreaOrder:     map[string][]string{},
		AreaRows:      map[string][]LayoutRow{},
		HiddenWidgets: map[string]bool{},
	}
}

func (s *InMemoryPreferenceStore) key(viewer ViewerContext) string {
	if viewer.Locale == "" {
		return viewer.UserID
	}
	return viewer.UserID + "::" + viewer.Locale
}

func (s *InMemoryPreferenceStore) normalize(overrides *LayoutOverrides) {
	if overrides.AreaOrder == nil {
		overrides.AreaOrder = map[string][]string{}
	}
	if overrides.AreaRows == nil {
		overrides.AreaRows = map[string][]LayoutRow{}
	}
	if overrides.HiddenWidgets == nil {
		overrides.HiddenWidgets = map[string]bool{}
	}
	if !melodix.ValidRange(overrides.TimeRange) {
		overrides.TimeRange = melodix.RangeMediumTerm
	}
	clampAreaRows(overrides.AreaRows)
}

// clampAreaRows forces slot widths into the 12-column grid.
func clampAreaRows(rows map[string][]LayoutRow) {
	for area, list := range rows {
		for rowIdx, row := range list {
			for slotIdx, slot := range row.Widgets {
				if slot.Width <= 0 || slot.Width > 12 {
					slot.Width = 12
					rows[area][rowIdx].Widgets[slotIdx] = slot
				}
			}
		}
	}
}
