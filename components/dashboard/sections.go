package dashboard

import "sync"

// SectionEvent reports a dashboard section entering or leaving the
// viewport band the scroll-spy watches.
type SectionEvent struct {
	Section string
	Entered bool
}

// SectionObserver yields a stream of visibility events, typically bridged
// from the browser through the WebSocket surface.
type SectionObserver interface {
	Sections() <-chan SectionEvent
}

// ChannelSectionObserver adapts a plain channel of events.
type ChannelSectionObserver chan SectionEvent

// Sections returns the underlying channel.
func (c ChannelSectionObserver) Sections() <-chan SectionEvent {
	return c
}

// SectionTracker resolves the active navigation entry from visibility
// events. The most recently entered section wins; when it leaves, the
// next most recently entered section still in view takes over.
type SectionTracker struct {
	mu      sync.Mutex
	visible []string
}

// Apply folds one event into the tracker and returns the section that is
// active afterwards ("" when nothing is in view).
func (t *SectionTracker) Apply(ev SectionEvent) string {
	if ev.Section == "" {
		return t.Active()
	}
	t.mu.Lock()
	defer t.mu.Unlock()

	t.remove(ev.Section)
	if ev.Entered {
		t.visible = append(t.visible, ev.Section)
	}
	return t.activeLocked()
}

// Active returns the current section without mutating the tracker.
func (t *SectionTracker) Active() string {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.activeLocked()
}

// Visible lists the sections currently in view, least recent first.
func (t *SectionTracker) Visible() []string {
	t.mu.Lock()
	defer t.mu.Unlock()
	out := make([]string, len(t.visible))
	copy(out, t.visible)
	return out
}

func (t *SectionTracker) activeLocked() string {
	if len(t.visible) == 0 {
		return ""
	}
	return t.visible[len(t.visible)-1]
}

func (t *SectionTracker) remove(section string) {
	for i, name := range t.visible {
		if name == section {
			t.visible = append(t.visible[:i], t.visible[i+1:]...)
			return
		}
	}
}
