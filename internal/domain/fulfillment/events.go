package fulfillment

import "time"

// Domain event types appended to a save's history.
const (
	EventProfileLoaded    = "profile_loaded"
	EventProfileUnloaded  = "profile_unloaded"
	EventPlacementAdded   = "placement_added"
	EventPlacementClaimed = "placement_claimed"
	EventGameEvent        = "game_event"
)

type DomainEvent struct {
	Type       string         `json:"type"`
	OccurredAt time.Time      `json:"occurred_at"`
	Payload    map[string]any `json:"payload"`
}
