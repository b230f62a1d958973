package gormrepo

import (
	"context"
	"errors"

	"rewardcore/internal/adapter/repo/gorm/model"
	"rewardcore/internal/app/ports"

	"gorm.io/gorm"
)

// SaveRepo stores profile and ledger documents as text so the bytes read back
// are exactly the bytes written.
type SaveRepo struct {
	db *gorm.DB
}

func NewSaveRepo(db *gorm.DB) SaveRepo {
	return SaveRepo{db: db}
}

func (r SaveRepo) GetBySaveID(ctx context.Context, saveID string) (ports.SaveRecord, error) {
	var m model.SaveRecord
	if err := getDBFromCtx(ctx, r.db).Where("save_id = ?", saveID).First(&m).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ports.SaveRecord{}, ports.ErrNotFound
		}
		return ports.SaveRecord{}, err
	}
	return ports.SaveRecord{
		SaveID:    m.SaveID,
		Profile:   []byte(m.Profile),
		Ledger:    []byte(m.Ledger),
		Version:   m.Version,
		UpdatedAt: m.UpdatedAt,
	}, nil
}

func (r SaveRepo) SaveWithVersion(ctx context.Context, rec ports.SaveRecord, expectedVersion int64) error {
	db := getDBFromCtx(ctx, r.db)
	if expectedVersion == 0 {
		m := model.SaveRecord{
			SaveID:    rec.SaveID,
			Profile:   string(rec.Profile),
			Ledger:    string(rec.Ledger),
			Version:   rec.Version,
			CreatedAt: rec.UpdatedAt,
			UpdatedAt: rec.UpdatedAt,
		}
		if err := db.Create(&m).Error; err != nil {
			if errors.Is(err, gorm.ErrDuplicatedKey) {
				return ports.ErrConflict
			}
			return err
		}
		return nil
	}

	res := db.Model(&model.SaveRecord{}).
		Where("save_id = ? AND version = ?", rec.SaveID, expectedVersion).
		Updates(map[string]any{
			"profile":    string(rec.Profile),
			"ledger":     string(rec.Ledger),
			"version":    rec.Version,
			"updated_at": rec.UpdatedAt,
		})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ports.ErrConflict
	}
	return nil
}
