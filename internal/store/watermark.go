package store

import (
	"context"
	"errors"
	"time"

	"github.com/roboclean/ops-sync/internal/store/model"
	"gorm.io/gorm"
)

type Watermark interface {
	// Get returns the stream's watermark, with a zero LastSyncedAt when the
	// stream has never synced.
	Get(ctx context.Context, stream string) (model.SyncWatermark, error)
	// Advance moves the stream's watermark forward and accumulates the run's
	// record counts. The timestamp is monotonic: an Advance with an earlier
	// timestamp than stored keeps the stored one.
	Advance(ctx context.Context, stream string, ts time.Time, synced, errorCount int) (model.SyncWatermark, error)
	List(ctx context.Context) ([]model.SyncWatermark, error)
}

type WatermarkStore struct {
	db *gorm.DB
}

// Make sure we conform to Watermark interface
var _ Watermark = (*WatermarkStore)(nil)

func NewWatermarkStore(db *gorm.DB) Watermark {
	return &WatermarkStore{db: db}
}

func (s *WatermarkStore) getDB(ctx context.Context) *gorm.DB {
	if tx := FromContext(ctx); tx != nil {
		return tx
	}
	return s.db
}

func (s *WatermarkStore) Get(ctx context.Context, stream string) (model.SyncWatermark, error) {
	var wm model.SyncWatermark
	result := s.getDB(ctx).Where("stream_name = ?", stream).First(&wm)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return model.SyncWatermark{StreamName: stream}, nil
		}
		return model.SyncWatermark{}, result.Error
	}
	return wm, nil
}

func (s *WatermarkStore) Advance(ctx context.Context, stream string, ts time.Time, synced, errorCount int) (model.SyncWatermark, error) {
	var out model.SyncWatermark

	err := s.getDB(ctx).Transaction(func(tx *gorm.DB) error {
		var wm model.SyncWatermark
		missing := false
		result := tx.Where("stream_name = ?", stream).First(&wm)
		if result.Error != nil {
			if !errors.Is(result.Error, gorm.ErrRecordNotFound) {
				return result.Error
			}
			missing = true
			wm = model.SyncWatermark{StreamName: stream}
		}

		if ts.After(wm.LastSyncedAt) {
			wm.LastSyncedAt = ts
		}
		wm.RecordsSynced += int64(synced)
		wm.ErrorCount += int64(errorCount)

		if missing {
			if err := tx.Create(&wm).Error; err != nil {
				return err
			}
		} else if err := tx.Save(&wm).Error; err != nil {
			return err
		}
		out = wm
		return nil
	})
	if err != nil {
		return model.SyncWatermark{}, err
	}
	return out, nil
}

func (s *WatermarkStore) List(ctx context.Context) ([]model.SyncWatermark, error) {
	var wms []model.SyncWatermark
	result := s.getDB(ctx).Model(&model.SyncWatermark{}).Order("stream_name").Find(&wms)
	if result.Error != nil {
		return nil, result.Error
	}
	return wms, nil
}
