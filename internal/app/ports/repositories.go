package ports

import (
	"context"
	"time"

	"rewardcore/internal/domain/fulfillment"
)

// SaveRecord is one persisted save: the profile document, the ledger
// document and an optimistic version.
type SaveRecord struct {
	SaveID    string
	Profile   []byte
	Ledger    []byte
	Version   int64
	UpdatedAt time.Time
}

type SaveRepository interface {
	GetBySaveID(ctx context.Context, saveID string) (SaveRecord, error)
	// SaveWithVersion creates the record when expectedVersion is 0 and
	// otherwise updates it only if the stored version still matches.
	SaveWithVersion(ctx context.Context, record SaveRecord, expectedVersion int64) error
}

type EventRepository interface {
	Append(ctx context.Context, saveID string, events []fulfillment.DomainEvent) error
	// ListBySaveID returns events newest first.
	ListBySaveID(ctx context.Context, saveID string, limit int) ([]fulfillment.DomainEvent, error)
}
