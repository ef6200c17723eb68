package catalog

import "time"

// EventType names a change to the moderation queue.
type EventType string

const (
	EventSubmitted EventType = "submitted"
	EventEdited    EventType = "edited"
	EventApproved  EventType = "approved"
	EventRejected  EventType = "rejected"
	EventDeleted   EventType = "deleted"
)

// Event describes one change to a catalog item, as pushed to moderators.
type Event struct {
	Type    EventType `json:"type"`
	Kind    Kind      `json:"kind"`
	ItemID  int64     `json:"item_id"`
	Name    string    `json:"name,omitempty"`
	Status  Status    `json:"status,omitempty"`
	ActorID int64     `json:"actor_id"`
	At      time.Time `json:"at"`
}

// Publisher receives catalog events. Publish must not block.
type Publisher interface {
	Publish(e Event)
}

type nopPublisher struct{}

func (nopPublisher) Publish(Event) {}

func (s *Service) publish(e Event) {
	e.At = time.Now().UTC()
	s.opts.Events.Publish(e)
}
