package gormrepo

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"runtime"
	"testing"
	"time"

	"rewardcore/internal/adapter/repo/gorm/model"
	"rewardcore/internal/app/ports"
	"rewardcore/internal/domain/fulfillment"

	"gorm.io/gorm"
)

func requireDSN(t *testing.T) string {
	t.Helper()
	dsn := os.Getenv("REWARDCORE_DB_DSN")
	if dsn == "" {
		t.Skip("REWARDCORE_DB_DSN is required for integration test")
	}
	return dsn
}

func openMigrated(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := OpenPostgres(requireDSN(t))
	if err != nil {
		t.Fatalf("open postgres: %v", err)
	}
	_, file, _, _ := runtime.Caller(0)
	dir := filepath.Join(filepath.Dir(file), "..", "..", "..", "..", "db", "migrations")
	if _, err := ApplyMigrations(context.Background(), db, dir); err != nil {
		t.Fatalf("apply migrations: %v", err)
	}
	return db
}

func TestSaveRepo_RoundTripKeepsDocumentBytes(t *testing.T) {
	db := openMigrated(t)
	ctx := context.Background()
	saveID := "it-save-roundtrip"
	_ = db.Exec("DELETE FROM save_records WHERE save_id = ?", saveID).Error

	repo := NewSaveRepo(db)
	doc := []byte("{\n  \"placements\": {},\n  \"modules\": []\n}")
	if err := repo.SaveWithVersion(ctx, ports.SaveRecord{
		SaveID:    saveID,
		Profile:   doc,
		Ledger:    []byte(`{"resources":{"gold":3}}`),
		Version:   1,
		UpdatedAt: time.Unix(100, 0).UTC(),
	}, 0); err != nil {
		t.Fatalf("save: %v", err)
	}
	got, err := repo.GetBySaveID(ctx, saveID)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if string(got.Profile) != string(doc) {
		t.Fatalf("profile bytes changed: %q", got.Profile)
	}
	if got.Version != 1 {
		t.Fatalf("expected version 1, got %d", got.Version)
	}
}

func TestSaveRepo_VersionConflict(t *testing.T) {
	db := openMigrated(t)
	ctx := context.Background()
	saveID := "it-save-conflict"
	_ = db.Exec("DELETE FROM save_records WHERE save_id = ?", saveID).Error

	repo := NewSaveRepo(db)
	rec := ports.SaveRecord{SaveID: saveID, Profile: []byte("{}"), Ledger: []byte("{}"), Version: 1, UpdatedAt: time.Now()}
	if err := repo.SaveWithVersion(ctx, rec, 0); err != nil {
		t.Fatalf("create: %v", err)
	}
	if err := repo.SaveWithVersion(ctx, rec, 0); !errors.Is(err, ports.ErrConflict) {
		t.Fatalf("expected duplicate create conflict, got %v", err)
	}
	rec.Version = 2
	if err := repo.SaveWithVersion(ctx, rec, 1); err != nil {
		t.Fatalf("update: %v", err)
	}
	rec.Version = 3
	if err := repo.SaveWithVersion(ctx, rec, 1); !errors.Is(err, ports.ErrConflict) {
		t.Fatalf("expected stale version conflict, got %v", err)
	}
	if _, err := repo.GetBySaveID(ctx, saveID+"-missing"); !errors.Is(err, ports.ErrNotFound) {
		t.Fatalf("expected not found, got %v", err)
	}
}

func TestEventRepo_AppendAndListBySaveID(t *testing.T) {
	db := openMigrated(t)
	ctx := context.Background()
	saveID := "it-event-repo"
	_ = db.Where("save_id = ?", saveID).Delete(&model.DomainEvent{}).Error

	repo := NewEventRepo(db)
	if err := repo.Append(ctx, saveID, []fulfillment.DomainEvent{
		{Type: "e-old", OccurredAt: time.Unix(100, 0), Payload: map[string]any{"k": "v1"}},
		{Type: "e-new", OccurredAt: time.Unix(200, 0), Payload: map[string]any{"k": "v2"}},
	}); err != nil {
		t.Fatalf("append events: %v", err)
	}

	list, err := repo.ListBySaveID(ctx, saveID, 1)
	if err != nil {
		t.Fatalf("list events: %v", err)
	}
	if len(list) != 1 || list[0].Type != "e-new" {
		t.Fatalf("expected only latest event, got=%+v", list)
	}
	if list[0].Payload["k"] != "v2" {
		t.Fatalf("expected payload to round trip, got=%+v", list[0].Payload)
	}
	all, err := repo.ListBySaveID(ctx, saveID, 0)
	if err != nil {
		t.Fatalf("list all events: %v", err)
	}
	if len(all) != 2 {
		t.Fatalf("expected 2 events, got %d", len(all))
	}
}

func TestTxManager_RunInTxCommitAndRollback(t *testing.T) {
	db := openMigrated(t)
	ctx := context.Background()
	saveID := "it-tx-manager"
	_ = db.Exec("DELETE FROM save_records WHERE save_id IN (?, ?)", saveID, saveID+"-rb").Error

	txManager := NewTxManager(db)
	repo := NewSaveRepo(db)
	rec := func(id string) ports.SaveRecord {
		return ports.SaveRecord{SaveID: id, Profile: []byte("{}"), Ledger: []byte("{}"), Version: 1, UpdatedAt: time.Now()}
	}

	if err := txManager.RunInTx(ctx, func(txCtx context.Context) error {
		return repo.SaveWithVersion(txCtx, rec(saveID), 0)
	}); err != nil {
		t.Fatalf("commit tx failed: %v", err)
	}
	if _, err := repo.GetBySaveID(ctx, saveID); err != nil {
		t.Fatalf("expected committed save exists, got err=%v", err)
	}

	rollbackErr := txManager.RunInTx(ctx, func(txCtx context.Context) error {
		if err := repo.SaveWithVersion(txCtx, rec(saveID+"-rb"), 0); err != nil {
			return err
		}
		return errors.New("force rollback")
	})
	if rollbackErr == nil {
		t.Fatalf("expected rollback error")
	}
	if _, err := repo.GetBySaveID(ctx, saveID+"-rb"); !errors.Is(err, ports.ErrNotFound) {
		t.Fatalf("expected rollback to remove save, got err=%v", err)
	}
}

func TestTxManager_NestedRollbackKeepsOuterWork(t *testing.T) {
	db := openMigrated(t)
	ctx := context.Background()
	outer, inner := "it-tx-outer", "it-tx-inner"
	_ = db.Exec("DELETE FROM save_records WHERE save_id IN (?, ?)", outer, inner).Error

	txManager := NewTxManager(db)
	repo := NewSaveRepo(db)
	rec := func(id string) ports.SaveRecord {
		return ports.SaveRecord{SaveID: id, Profile: []byte("{}"), Ledger: []byte("{}"), Version: 1, UpdatedAt: time.Now()}
	}

	err := txManager.RunInTx(ctx, func(txCtx context.Context) error {
		if err := repo.SaveWithVersion(txCtx, rec(outer), 0); err != nil {
			return err
		}
		nestedErr := txManager.RunInTx(txCtx, func(innerCtx context.Context) error {
			if err := repo.SaveWithVersion(innerCtx, rec(inner), 0); err != nil {
				return err
			}
			return errors.New("inner rollback")
		})
		if nestedErr == nil {
			t.Fatalf("expected nested error")
		}
		return nil
	})
	if err != nil {
		t.Fatalf("outer tx failed: %v", err)
	}
	if _, err := repo.GetBySaveID(ctx, outer); err != nil {
		t.Fatalf("expected outer save committed, got err=%v", err)
	}
	if _, err := repo.GetBySaveID(ctx, inner); !errors.Is(err, ports.ErrNotFound) {
		t.Fatalf("expected inner save rolled back, got err=%v", err)
	}
}
