package memory

import (
	"context"

	"rewardcore/internal/app/ports"
	"rewardcore/internal/domain/fulfillment"
)

type EventRepo struct {
	store *Store
}

func NewEventRepo(store *Store) EventRepo {
	return EventRepo{store: store}
}

func (r EventRepo) Append(_ context.Context, saveID string, events []fulfillment.DomainEvent) error {
	r.store.events[saveID] = append(r.store.events[saveID], events...)
	return nil
}

// ListBySaveID returns the newest events first.
func (r EventRepo) ListBySaveID(_ context.Context, saveID string, limit int) ([]fulfillment.DomainEvent, error) {
	stored := r.store.events[saveID]
	if len(stored) == 0 {
		return nil, ports.ErrNotFound
	}
	out := make([]fulfillment.DomainEvent, 0, len(stored))
	for i := len(stored) - 1; i >= 0; i-- {
		out = append(out, stored[i])
		if limit > 0 && len(out) == limit {
			break
		}
	}
	return out, nil
}
