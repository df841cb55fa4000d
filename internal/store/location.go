package store

import (
	"context"
	"errors"

	"github.com/roboclean/ops-sync/internal/store/model"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type Location interface {
	Upsert(ctx context.Context, location model.Location) (UpsertResult, error)
	Get(ctx context.Context, id string) (*model.Location, error)
	List(ctx context.Context) (model.LocationList, error)
}

var locationUpsertColumns = []string{
	"name", "address", "timezone", "created_at", "updated_at",
}

type LocationStore struct {
	db *gorm.DB
}

// Make sure we conform to Location interface
var _ Location = (*LocationStore)(nil)

func NewLocationStore(db *gorm.DB) Location {
	return &LocationStore{db: db}
}

func (s *LocationStore) getDB(ctx context.Context) *gorm.DB {
	if tx := FromContext(ctx); tx != nil {
		return tx
	}
	return s.db
}

func (s *LocationStore) Upsert(ctx context.Context, location model.Location) (UpsertResult, error) {
	db := s.getDB(ctx)

	var existing int64
	if err := db.Model(&model.Location{}).Where("id = ?", location.ID).Count(&existing).Error; err != nil {
		return "", err
	}

	if err := db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "id"}},
		DoUpdates: clause.AssignmentColumns(locationUpsertColumns),
	}).Create(&location).Error; err != nil {
		return "", err
	}

	if existing > 0 {
		return UpsertUpdated, nil
	}
	return UpsertInserted, nil
}

func (s *LocationStore) Get(ctx context.Context, id string) (*model.Location, error) {
	location := model.Location{ID: id}
	result := s.getDB(ctx).First(&location)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return nil, ErrRecordNotFound
		}
		return nil, result.Error
	}
	return &location, nil
}

func (s *LocationStore) List(ctx context.Context) (model.LocationList, error) {
	var locations model.LocationList
	result := s.getDB(ctx).Model(&locations).Order("id").Find(&locations)
	if result.Error != nil {
		return nil, result.Error
	}
	return locations, nil
}
