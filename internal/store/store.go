package store

import (
	"context"

	"github.com/roboclean/ops-sync/internal/store/model"
	"gorm.io/gorm"
)

// UpsertResult says whether an upsert created a new row or replaced an
// existing one.
type UpsertResult string

const (
	UpsertInserted UpsertResult = "inserted"
	UpsertUpdated  UpsertResult = "updated"
)

type Store interface {
	NewTransactionContext(ctx context.Context) (context.Context, error)
	Task() Task
	Media() Media
	Location() Location
	Watermark() Watermark
	InitialMigration() error
	Close() error
}

type DataStore struct {
	db        *gorm.DB
	task      Task
	media     Media
	location  Location
	watermark Watermark
}

func NewStore(db *gorm.DB) Store {
	return &DataStore{
		db:        db,
		task:      NewTaskStore(db),
		media:     NewMediaStore(db),
		location:  NewLocationStore(db),
		watermark: NewWatermarkStore(db),
	}
}

func (s *DataStore) NewTransactionContext(ctx context.Context) (context.Context, error) {
	return newTransactionContext(ctx, s.db)
}

func (s *DataStore) Task() Task {
	return s.task
}

func (s *DataStore) Media() Media {
	return s.media
}

func (s *DataStore) Location() Location {
	return s.location
}

func (s *DataStore) Watermark() Watermark {
	return s.watermark
}

// InitialMigration creates the schema via AutoMigrate. Postgres deployments
// run goose migrations instead; this path covers sqlite and tests.
func (s *DataStore) InitialMigration() error {
	return s.db.AutoMigrate(
		&model.Location{},
		&model.Task{},
		&model.Media{},
		&model.SyncWatermark{},
	)
}

func (s *DataStore) Close() error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}
