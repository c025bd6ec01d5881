package dashboard

// applyOrderOverride rearranges widgets to match the viewer's saved order.
// Widgets missing from the override keep their store order and trail the
// ordered ones.
func applyOrderOverride(widgets []WidgetInstance, order []string) []WidgetInstance {
	if len(order) == 0 {
		return widgets
	}
	index := make(map[string]WidgetInstance, len(widgets))
	for _, w := range widgets {
		index[w.ID] = w
	}
	result := make([]WidgetInstance, 0, len(widgets))
	seen := make(map[string]struct{}, len(order))
	for _, id := range order {
		if w, ok := index[id]; ok {
			result = append(result, w)
			seen[id] = struct{}{}
		}
	}
	for _, w := range widgets {
		if _, ok := seen[w.ID]; !ok {
			result = append(result, w)
		}
	}
	return result
}

// applyHiddenFilter drops widgets the viewer hid.
func applyHiddenFilter(widgets []WidgetInstance, hidden map[string]bool) []WidgetInstance {
	if len(hidden) == 0 {
		return widgets
	}
	result := make([]WidgetInstance, 0, len(widgets))
	for _, w := range widgets {
		if hidden[w.ID] {
			continue
		}
		result = append(result, w)
	}
	return result
}
