package dashboard

import "sync"

// DefaultPreviewVolume is the fixed playback volume for track previews.
const DefaultPreviewVolume = 0.4

// PreviewChange tells the front end what to do after a player operation:
// stop the old preview, start the new one, or both.
type PreviewChange struct {
	Stopped string
	Started string
	Volume  float64
}

// PreviewPlayer owns the single now-playing slot of a session. At most
// one preview plays at a time; starting a new one always stops the
// current one first. The zero value is ready to use.
type PreviewPlayer struct {
	mu      sync.Mutex
	playing string
}

// Toggle plays the preview for trackID. If another track was playing it
// stops first. Toggling the track that is already playing stops it and
// leaves nothing playing.
func (p *PreviewPlayer) Toggle(trackID string) PreviewChange {
	if trackID == "" {
		return p.Stop()
	}
	p.mu.Lock()
	defer p.mu.Unlock()

	change := PreviewChange{Stopped: p.playing}
	if p.playing == trackID {
		p.playing = ""
		return change
	}
	p.playing = trackID
	change.Started = trackID
	change.Volume = DefaultPreviewVolume
	return change
}

// Stop clears the slot, whatever was playing.
func (p *PreviewPlayer) Stop() PreviewChange {
	p.mu.Lock()
	defer p.mu.Unlock()
	change := PreviewChange{Stopped: p.playing}
	p.playing = ""
	return change
}

// OnEnded clears the slot when the given preview finished on its own. A
// stale end event for a track that is no longer current is ignored.
func (p *PreviewPlayer) OnEnded(trackID string) {
	p.mu.Lock()
	if p.playing == trackID {
		p.playing = ""
	}
	p.mu.Unlock()
}

// NowPlaying returns the current track ID, or "".
func (p *PreviewPlayer) NowPlaying() string {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.playing
}
