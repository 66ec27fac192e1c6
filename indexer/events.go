// Package indexer feeds the index structures: a cancellable bulk scanner
// for initial indexing, a bounded update queue with a single drain worker
// for incremental mutations, and an fsnotify adapter translating file
// system notifications into queue events.
package indexer

// EventType identifies a file-system change.
type EventType uint8

const (
	// Created signals a new path.
	Created EventType = iota
	// Removed signals a deleted path.
	Removed
	// Renamed signals a move; both OldPath and Path are set.
	Renamed
)

// String returns a human-readable event type for logging.
func (t EventType) String() string {
	switch t {
	case Created:
		return "created"
	case Removed:
		return "removed"
	case Renamed:
		return "renamed"
	default:
		return "unknown"
	}
}

// Event is one file-system change headed for the update queue.
type Event struct {
	Type EventType
	// Path is the affected path (the new path for Renamed).
	Path string
	// OldPath is the previous path, set only for Renamed.
	OldPath string
}
