package replay

import "rewardcore/internal/domain/fulfillment"

type Request struct {
	SaveID       string
	Limit        int
	OccurredFrom int64
	OccurredTo   int64
}

// Summary is what the event history says about a save.
type Summary struct {
	Sessions   int                 `json:"sessions"`
	Claims     int                 `json:"claims"`
	Containers map[string]string   `json:"containers"`
	Given      map[string][]string `json:"given"`
}

type Response struct {
	Events  []fulfillment.DomainEvent `json:"events"`
	Summary Summary                   `json:"summary"`
}
