package domain

import (
	"context"
	"time"
)

// SnapshotInfo describes one stored snapshot object.
type SnapshotInfo struct {
	Path         string
	Size         int64
	LastModified time.Time
}

// SnapshotStore is the durable document store shared by the two agents. Put
// creates a new immutable revision at path; snapshots are never updated in
// place. List and Get serve the Scanner's best-effort exclusion lookup.
type SnapshotStore interface {
	Put(ctx context.Context, path string, data []byte) error
	Get(ctx context.Context, path string) ([]byte, error)
	List(ctx context.Context, prefix string) ([]SnapshotInfo, error)
}

// Resolver maps one natural-language query to a canonical event identifier.
// Implementations return ErrNoMatch (or ErrNotFound) when the backend
// answered but had no hit; any other error means the backend itself failed.
type Resolver interface {
	Name() string
	Resolve(ctx context.Context, query string) (string, error)
}

// EventSource retrieves contract groups from the exchange.
type EventSource interface {
	// EventBySlug returns the event for the given identifier, or ErrNotFound.
	EventBySlug(ctx context.Context, slug string) (Event, error)
	// TopEvents returns up to limit active, open events ordered by 24h volume
	// descending.
	TopEvents(ctx context.Context, limit int) ([]Event, error)
}

// Directive is one open operator instruction: either a literal query or a
// template containing {month}, {next_month}, {year}, {date} placeholders.
type Directive struct {
	Number int
	Title  string
}

// DirectiveSource lists the currently open operator directives that are
// tagged for the Targeter's scope.
type DirectiveSource interface {
	Open(ctx context.Context) ([]Directive, error)
}
