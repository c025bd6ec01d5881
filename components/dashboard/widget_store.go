package dashboard

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/google/uuid"
)

// ErrInstanceNotFound reports a widget id with no stored instance.
var ErrInstanceNotFound = errors.New("dashboard: widget instance not found")

// InMemoryWidgetStore keeps areas, definitions, and placements in process
// memory. The dashboard carries no server-side persistence, so this is the
// stock store rather than a test double. Role checks stay with the
// Authorizer; the store only enforces visibility windows and audience.
type InMemoryWidgetStore struct {
	mu          sync.Mutex
	areas       map[string]WidgetAreaDefinition
	definitions map[string]WidgetDefinition
	instances   map[string]WidgetInstance
	visibility  map[string]WidgetVisibility
	assignments map[string][]string
}

// NewInMemoryWidgetStore creates an empty store.
func NewInMemoryWidgetStore() *InMemoryWidgetStore {
	return &InMemoryWidgetStore{
		areas:       map[string]WidgetAreaDefinition{},
		definitions: map[string]WidgetDefinition{},
		instances:   map[string]WidgetInstance{},
		visibility:  map[string]WidgetVisibility{},
		assignments: map[string][]string{},
	}
}

// EnsureArea registers the area, reporting whether it was new.
func (s *InMemoryWidgetStore) EnsureArea(_ context.Context, def WidgetAreaDefinition) (bool, error) {
	if def.Code == "" {
		return false, errors.New("dashboard: area code is required")
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	_, exists := s.areas[def.Code]
	s.areas[def.Code] = def
	return !exists, nil
}

// EnsureDefinition registers the definition, reporting whether it was new.
func (s *InMemoryWidgetStore) EnsureDefinition(_ context.Context, def WidgetDefinition) (bool, error) {
	if def.Code == "" {
		return false, errors.New("dashboard: definition code is required")
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	_, exists := s.definitions[def.Code]
	s.definitions[def.Code] = def
	return !exists, nil
}

// CreateInstance stores a new widget instance and returns it with its
// generated id.
func (s *InMemoryWidgetStore) CreateInstance(_ context.Context, input CreateWidgetInstanceInput) (WidgetInstance, error) {
	if input.DefinitionID == "" {
		return WidgetInstance{}, errors.New("dashboard: definition id is required")
	}
	instance := WidgetInstance{
		ID:            uuid.NewString(),
		DefinitionID:  input.DefinitionID,
		Configuration: cloneAnyMap(input.Configuration),
		Metadata:      cloneAnyMap(input.Metadata),
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.instances[instance.ID] = instance
	s.visibility[instance.ID] = cloneVisibility(input.Visibility)
	return copyInstance(instance), nil
}

// GetInstance returns the stored instance for the id.
func (s *InMemoryWidgetStore) GetInstance(_ context.Context, instanceID string) (WidgetInstance, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	instance, ok := s.instances[instanceID]
	if !ok {
		return WidgetInstance{}, fmt.Errorf("%w: %s", ErrInstanceNotFound, instanceID)
	}
	return copyInstance(instance), nil
}

// UpdateInstance replaces configuration and metadata on an existing
// instance. Nil maps leave the stored values untouched.
func (s *InMemoryWidgetStore) UpdateInstance(_ context.Context, input UpdateWidgetInstanceInput) (WidgetInstance, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	instance, ok := s.instances[input.InstanceID]
	if !ok {
		return WidgetInstance{}, fmt.Errorf("%w: %s", ErrInstanceNotFound, input.InstanceID)
	}
	if input.Configuration != nil {
		instance.Configuration = cloneAnyMap(input.Configuration)
	}
	if input.Metadata != nil {
		instance.Metadata = cloneAnyMap(input.Metadata)
	}
	s.instances[input.InstanceID] = instance
	return copyInstance(instance), nil
}

// DeleteInstance removes the instance and every assignment pointing at it.
// Deleting an unknown id is a no-op.
func (s *InMemoryWidgetStore) DeleteInstance(_ context.Context, instanceID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.instances, instanceID)
	delete(s.visibility, instanceID)
	for area, ids := range s.assignments {
		s.assignments[area] = dropID(ids, instanceID)
	}
	return nil
}

// AssignInstance places the instance in an area, moving it when it was
// already placed elsewhere. A nil or out-of-range position appends.
func (s *InMemoryWidgetStore) AssignInstance(_ context.Context, input AssignWidgetInput) error {
	if input.AreaCode == "" {
		return errors.New("dashboard: area code is required")
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.instances[input.InstanceID]; !ok {
		return fmt.Errorf("%w: %s", ErrInstanceNotFound, input.InstanceID)
	}
	for area, ids := range s.assignments {
		s.assignments[area] = dropID(ids, input.InstanceID)
	}
	order := s.assignments[input.AreaCode]
	if input.Position != nil && *input.Position >= 0 && *input.Position <= len(order) {
		idx := *input.Position
		order = append(order[:idx], append([]string{input.InstanceID}, order[idx:]...)...)
	} else {
		order = append(order, input.InstanceID)
	}
	s.assignments[input.AreaCode] = order
	return nil
}

// ReorderArea replaces the order of an area wholesale. Ids that do not
// belong to stored instances are dropped on resolve.
func (s *InMemoryWidgetStore) ReorderArea(_ context.Context, input ReorderAreaInput) error {
	if input.AreaCode == "" {
		return errors.New("dashboard: area code is required")
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.assignments[input.AreaCode] = append([]string(nil), input.WidgetIDs...)
	return nil
}

// ResolveArea returns the area's instances in assignment order, skipping
// instances outside their visibility window or audience.
func (s *InMemoryWidgetStore) ResolveArea(_ context.Context, input ResolveAreaInput) (ResolvedArea, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	ids := s.assignments[input.AreaCode]
	widgets := make([]WidgetInstance, 0, len(ids))
	for _, id := range ids {
		instance, ok := s.instances[id]
		if !ok {
			continue
		}
		if !s.visibleLocked(id, input.Audience) {
			continue
		}
		widgets = append(widgets, copyInstance(instance))
	}
	return ResolvedArea{AreaCode: input.AreaCode, Widgets: widgets}, nil
}

func (s *InMemoryWidgetStore) visibleLocked(instanceID string, audience []string) bool {
	vis, ok := s.visibility[instanceID]
	if !ok {
		return true
	}
	now := nowFunc()
	if vis.StartAt != nil && now.Before(*vis.StartAt) {
		return false
	}
	if vis.EndAt != nil && now.After(*vis.EndAt) {
		return false
	}
	if len(vis.Audience) == 0 {
		return true
	}
	for _, want := range vis.Audience {
		for _, have := range audience {
			if want == have {
				return true
			}
		}
	}
	return false
}

func copyInstance(instance WidgetInstance) WidgetInstance {
	out := instance
	out.Configuration = cloneAnyMap(instance.Configuration)
	out.Metadata = cloneAnyMap(instance.Metadata)
	return out
}

func cloneAnyMap(in map[string]any) map[string]any {
	if in == nil {
		return nil
	}
	out := make(map[string]any, len(in))
	for k, v := range in {
		out[k] = v
	}
	return out
}

func cloneVisibility(vis WidgetVisibility) WidgetVisibility {
	out := vis
	out.Roles = append([]string(nil), vis.Roles...)
	out.Audience = append([]string(nil), vis.Audience...)
	if vis.StartAt != nil {
		start := *vis.StartAt
		out.StartAt = &start
	}
	if vis.EndAt != nil {
		end := *vis.EndAt
		out.EndAt = &end
	}
	return out
}

func dropID(ids []string, drop string) []string {
	out := ids[:0]
	for _, id := range ids {
		if id != drop {
			out = append(out, id)
		}
	}
	return out
}
