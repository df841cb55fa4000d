package store

import (
	"context"
	"errors"

	"github.com/roboclean/ops-sync/internal/store/model"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type Media interface {
	Upsert(ctx context.Context, media model.Media) (UpsertResult, error)
	Get(ctx context.Context, id string) (*model.Media, error)
	IDs(ctx context.Context) ([]string, error)
	Delete(ctx context.Context, id string) error
	DeleteByTaskID(ctx context.Context, taskID string) error
}

var mediaUpsertColumns = []string{
	"task_id", "location_id", "url", "content_type", "uploaded_by",
	"captured_at", "created_at", "updated_at",
}

type MediaStore struct {
	db *gorm.DB
}

// Make sure we conform to Media interface
var _ Media = (*MediaStore)(nil)

func NewMediaStore(db *gorm.DB) Media {
	return &MediaStore{db: db}
}

func (s *MediaStore) getDB(ctx context.Context) *gorm.DB {
	if tx := FromContext(ctx); tx != nil {
		return tx
	}
	return s.db
}

func (s *MediaStore) Upsert(ctx context.Context, media model.Media) (UpsertResult, error) {
	db := s.getDB(ctx)

	var existing int64
	if err := db.Model(&model.Media{}).Where("id = ?", media.ID).Count(&existing).Error; err != nil {
		return "", err
	}

	if err := db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "id"}},
		DoUpdates: clause.AssignmentColumns(mediaUpsertColumns),
	}).Create(&media).Error; err != nil {
		return "", err
	}

	if existing > 0 {
		return UpsertUpdated, nil
	}
	return UpsertInserted, nil
}

func (s *MediaStore) Get(ctx context.Context, id string) (*model.Media, error) {
	media := model.Media{ID: id}
	result := s.getDB(ctx).First(&media)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return nil, ErrRecordNotFound
		}
		return nil, result.Error
	}
	return &media, nil
}

func (s *MediaStore) IDs(ctx context.Context) ([]string, error) {
	var ids []string
	result := s.getDB(ctx).Model(&model.Media{}).Order("id").Pluck("id", &ids)
	if result.Error != nil {
		return nil, result.Error
	}
	return ids, nil
}

func (s *MediaStore) Delete(ctx context.Context, id string) error {
	result := s.getDB(ctx).Unscoped().Delete(&model.Media{ID: id})
	if result.Error != nil && !errors.Is(result.Error, gorm.ErrRecordNotFound) {
		return result.Error
	}
	return nil
}

func (s *MediaStore) DeleteByTaskID(ctx context.Context, taskID string) error {
	result := s.getDB(ctx).Unscoped().Where("task_id = ?", taskID).Delete(&model.Media{})
	return result.Error
}
