package memory

import (
	"context"

	"rewardcore/internal/app/ports"
)

type SaveRepo struct {
	store *Store
}

func NewSaveRepo(store *Store) SaveRepo {
	return SaveRepo{store: store}
}

func (r SaveRepo) GetBySaveID(_ context.Context, saveID string) (ports.SaveRecord, error) {
	rec, ok := r.store.saves[saveID]
	if !ok {
		return ports.SaveRecord{}, ports.ErrNotFound
	}
	return cloneRecord(rec), nil
}

func (r SaveRepo) SaveWithVersion(_ context.Context, rec ports.SaveRecord, expectedVersion int64) error {
	current, ok := r.store.saves[rec.SaveID]
	if !ok {
		if expectedVersion != 0 {
			return ports.ErrConflict
		}
		r.store.saves[rec.SaveID] = cloneRecord(rec)
		return nil
	}
	if expectedVersion == 0 || current.Version != expectedVersion {
		return ports.ErrConflict
	}
	r.store.saves[rec.SaveID] = cloneRecord(rec)
	return nil
}
