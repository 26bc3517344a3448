package session

import (
	"github.com/blockedby/episode-relay/internal/metadata"
)

// State is the lifecycle state of the collection session.
type State string

// Session states.
const (
	StateIdle       State = "IDLE"
	StateCollecting State = "COLLECTING"
)

// MediaKind is the declared kind of an inbound item.
type MediaKind string

// Media kinds accepted for collection.
const (
	KindDocument MediaKind = "document"
	KindVideo    MediaKind = "video"
	KindAudio    MediaKind = "audio"
	KindPhoto    MediaKind = "photo"
)

// SourceLocation identifies the original message an item was collected from.
type SourceLocation struct {
	ChatID    int64 // chat the operator sent the item in
	MessageID int   // message id within that chat
}

// Candidate is an inbound item offered to the session.
type Candidate struct {
	Source   SourceLocation
	Kind     MediaKind
	Caption  string // may be empty
	FileName string // may be empty
}

// CollectedItem is an accepted item owned by the session.
type CollectedItem struct {
	Source   SourceLocation
	Kind     MediaKind
	Metadata metadata.FileMetadata
	Caption  string // original caption, unmodified
	FileName string
	Seq      int // insertion index within the session
}

// Destination is the chat collected items are delivered to.
type Destination struct {
	ID         int64
	AccessHash int64
	Title      string
	IsChannel  bool
}

// Options are the per-session delivery toggles. They survive session resets.
type Options struct {
	TagRemove   bool
	ForwardMode bool
	Destination *Destination // nil = deliver back to the operator chat
}

// Status is a read-only view of the session.
type Status struct {
	State   State
	Count   int
	Options Options
	Items   []CollectedItem // copy, insertion order
}
