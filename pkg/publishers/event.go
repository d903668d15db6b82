package publishers

import (
	"context"
	"fmt"
	"time"

	"github.com/samvad-hq/samvad-news-digest/internal/domain"
)

// Publisher is one downstream sink for digest events.
type Publisher interface {
	ID() string
	Type() string
	Publish(ctx context.Context, evt Event) error
}

// Closer is implemented by sinks holding a connection.
type Closer interface {
	Close() error
}

// Event is the downstream payload for one source of a finished digest run.
type Event struct {
	SourceID   string              `json:"source_id"`
	SourceName string              `json:"source_name"`
	Result     domain.SourceResult `json:"result"`
	BuiltAt    time.Time           `json:"built_at"`
}

// NewEvent wraps one source result of the run built at builtAt.
func NewEvent(result domain.SourceResult, builtAt time.Time) Event {
	return Event{
		SourceID:   result.ID,
		SourceName: result.Name,
		Result:     result,
		BuiltAt:    builtAt.UTC(),
	}
}

// EventsFor converts a whole run into events, preserving source order.
func EventsFor(results []domain.SourceResult, builtAt time.Time) []Event {
	out := make([]Event, 0, len(results))
	for _, r := range results {
		out = append(out, NewEvent(r, builtAt))
	}
	return out
}

// attributes are attached as message metadata by the queue publishers.
func (e Event) attributes() map[string]string {
	status := "ok"
	if e.Result.Failed() {
		status = "failed"
	}
	return map[string]string{
		"source_id": e.SourceID,
		"status":    status,
	}
}

// dedupKey identifies the event within a run.
func (e Event) dedupKey() string {
	return fmt.Sprintf("%s-%d", e.SourceID, e.BuiltAt.Unix())
}
