// Package session holds the single in-progress collection of media items.
package session

import (
	"errors"
	"sync"

	"github.com/blockedby/episode-relay/internal/metadata"
	"github.com/blockedby/episode-relay/internal/sanitize"
)

// errors
var (
	ErrNotCollecting     = errors.New("collection is not active")
	ErrNoEpisodeDetected = errors.New("no episode detected in caption or filename")
)

// Session accumulates collected items between /collect and delivery.
// One Session exists per process; it is reset, never replaced.
// thread-safe: every operation is atomic with respect to the others
type Session struct {
	mu        sync.Mutex
	state     State
	items     []CollectedItem
	opts      Options
	sanitizer *sanitize.Sanitizer
}

// New creates an idle session. A nil sanitizer uses the default phrase list.
func New(s *sanitize.Sanitizer) *Session {
	if s == nil {
		s = sanitize.New(nil)
	}
	return &Session{
		state:     StateIdle,
		sanitizer: s,
	}
}

// Start begins a new collection, discarding anything collected before.
func (s *Session) Start() {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.state = StateCollecting
	s.items = nil
}

// Add extracts metadata from the candidate and appends it to the collection.
// Returns the stored item and the new total.
func (s *Session) Add(c Candidate) (CollectedItem, int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.state != StateCollecting {
		return CollectedItem{}, len(s.items), ErrNotCollecting
	}

	caption, fileName := c.Caption, c.FileName
	if s.opts.TagRemove {
		caption = s.sanitizer.Clean(caption)
		fileName = s.sanitizer.Clean(fileName)
	}

	meta, err := metadata.ExtractFirst(caption, fileName)
	if err != nil {
		return CollectedItem{}, len(s.items), ErrNoEpisodeDetected
	}

	item := CollectedItem{
		Source:   c.Source,
		Kind:     c.Kind,
		Metadata: meta,
		Caption:  c.Caption,
		FileName: c.FileName,
		Seq:      len(s.items),
	}
	s.items = append(s.items, item)

	return item, len(s.items), nil
}

// Clear resets the session and returns how many items were discarded.
// Valid in any state. In-flight deliveries keep their own snapshot.
func (s *Session) Clear() int {
	s.mu.Lock()
	defer s.mu.Unlock()

	n := len(s.items)
	s.reset()
	return n
}

// SnapshotAndFinalize returns the collected items and resets the session in one step,
// so an item added afterwards can never be attributed to the run that took the snapshot.
func (s *Session) SnapshotAndFinalize() []CollectedItem {
	s.mu.Lock()
	defer s.mu.Unlock()

	items := s.items
	s.reset()
	return items
}

func (s *Session) reset() {
	s.state = StateIdle
	s.items = nil
}

// Snapshot returns a read-only view of the session.
func (s *Session) Snapshot() Status {
	s.mu.Lock()
	defer s.mu.Unlock()

	items := make([]CollectedItem, len(s.items))
	copy(items, s.items)

	return Status{
		State:   s.state,
		Count:   len(s.items),
		Options: s.optionsLocked(),
		Items:   items,
	}
}

// Options returns a copy of the delivery toggles.
func (s *Session) Options() Options {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.optionsLocked()
}

func (s *Session) optionsLocked() Options {
	opts := s.opts
	if opts.Destination != nil {
		d := *opts.Destination
		opts.Destination = &d
	}
	return opts
}

// ToggleTagRemove flips tag removal and returns the new value.
func (s *Session) ToggleTagRemove() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.opts.TagRemove = !s.opts.TagRemove
	return s.opts.TagRemove
}

// ToggleForwardMode flips forward mode and returns the new value.
func (s *Session) ToggleForwardMode() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.opts.ForwardMode = !s.opts.ForwardMode
	return s.opts.ForwardMode
}

// SetDestination sets the delivery target. nil delivers back to the operator chat.
func (s *Session) SetDestination(d *Destination) *Destination {
	s.mu.Lock()
	defer s.mu.Unlock()

	if d == nil {
		s.opts.Destination = nil
		return nil
	}
	cp := *d
	s.opts.Destination = &cp
	return s.optionsLocked().Destination
}
