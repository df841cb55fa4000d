package store

import (
	"context"
	"errors"

	"github.com/roboclean/ops-sync/internal/store/model"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type Task interface {
	Upsert(ctx context.Context, task model.Task) (UpsertResult, error)
	Get(ctx context.Context, id string) (*model.Task, error)
	List(ctx context.Context) (model.TaskList, error)
	IDs(ctx context.Context) ([]string, error)
	Delete(ctx context.Context, id string) error
}

// non-key columns replaced on conflict
var taskUpsertColumns = []string{
	"title", "description", "category", "priority", "status",
	"location_id", "location_name", "estimated_duration_minutes",
	"room_id", "target_id", "action_id", "created_at", "updated_at",
}

type TaskStore struct {
	db *gorm.DB
}

// Make sure we conform to Task interface
var _ Task = (*TaskStore)(nil)

func NewTaskStore(db *gorm.DB) Task {
	return &TaskStore{db: db}
}

func (s *TaskStore) getDB(ctx context.Context) *gorm.DB {
	if tx := FromContext(ctx); tx != nil {
		return tx
	}
	return s.db
}

// Upsert inserts the row or, on id conflict, replaces all non-key columns.
// Applying the same row twice leaves the table unchanged, so a retry after
// a partial batch failure is safe.
func (s *TaskStore) Upsert(ctx context.Context, task model.Task) (UpsertResult, error) {
	db := s.getDB(ctx)

	var existing int64
	if err := db.Model(&model.Task{}).Where("id = ?", task.ID).Count(&existing).Error; err != nil {
		return "", err
	}

	if err := db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "id"}},
		DoUpdates: clause.AssignmentColumns(taskUpsertColumns),
	}).Create(&task).Error; err != nil {
		return "", err
	}

	if existing > 0 {
		return UpsertUpdated, nil
	}
	return UpsertInserted, nil
}

func (s *TaskStore) Get(ctx context.Context, id string) (*model.Task, error) {
	task := model.Task{ID: id}
	result := s.getDB(ctx).First(&task)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return nil, ErrRecordNotFound
		}
		return nil, result.Error
	}
	return &task, nil
}

func (s *TaskStore) List(ctx context.Context) (model.TaskList, error) {
	var tasks model.TaskList
	result := s.getDB(ctx).Model(&tasks).Order("id").Find(&tasks)
	if result.Error != nil {
		return nil, result.Error
	}
	return tasks, nil
}

func (s *TaskStore) IDs(ctx context.Context) ([]string, error) {
	var ids []string
	result := s.getDB(ctx).Model(&model.Task{}).Order("id").Pluck("id", &ids)
	if result.Error != nil {
		return nil, result.Error
	}
	return ids, nil
}

func (s *TaskStore) Delete(ctx context.Context, id string) error {
	result := s.getDB(ctx).Unscoped().Delete(&model.Task{ID: id})
	if result.Error != nil && !errors.Is(result.Error, gorm.ErrRecordNotFound) {
		return result.Error
	}
	return nil
}
