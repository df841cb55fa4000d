package store_test

import (
	"context"
	"fmt"
	"time"

	"github.com/roboclean/ops-sync/internal/config"
	"github.com/roboclean/ops-sync/internal/store"
	"github.com/roboclean/ops-sync/internal/store/model"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"gorm.io/gorm"
)

const (
	insertTaskStm = "INSERT INTO tasks (id, title, status, location_id) VALUES ('%s', '%s', '%s', '%s');"
)

var _ = Describe("task store", Ordered, func() {
	var (
		s      store.Store
		gormdb *gorm.DB
	)

	BeforeAll(func() {
		db, err := store.InitDB(config.NewDefault())
		Expect(err).To(BeNil())

		s = store.NewStore(db)
		gormdb = db
		Expect(s.InitialMigration()).To(BeNil())
	})

	AfterAll(func() {
		s.Close()
	})

	AfterEach(func() {
		gormdb.Exec("DELETE FROM media;")
		gormdb.Exec("DELETE FROM tasks;")
	})

	Context("upsert", func() {
		It("inserts a new task", func() {
			result, err := s.Task().Upsert(context.TODO(), model.Task{
				ID:         "task-1",
				Title:      "Wipe Kitchen Counter",
				Status:     model.TaskStatusAvailable,
				LocationID: "loc-1",
			})
			Expect(err).To(BeNil())
			Expect(result).To(Equal(store.UpsertInserted))

			count := 0
			Expect(gormdb.Raw("SELECT COUNT(*) FROM tasks;").Scan(&count).Error).To(BeNil())
			Expect(count).To(Equal(1))
		})

		It("updates an existing task in place", func() {
			tx := gormdb.Exec(fmt.Sprintf(insertTaskStm, "task-1", "Old title", "available", "loc-1"))
			Expect(tx.Error).To(BeNil())

			result, err := s.Task().Upsert(context.TODO(), model.Task{
				ID:         "task-1",
				Title:      "New title",
				Status:     model.TaskStatusAssigned,
				LocationID: "loc-1",
			})
			Expect(err).To(BeNil())
			Expect(result).To(Equal(store.UpsertUpdated))

			task, err := s.Task().Get(context.TODO(), "task-1")
			Expect(err).To(BeNil())
			Expect(task.Title).To(Equal("New title"))
			Expect(task.Status).To(Equal(model.TaskStatusAssigned))

			count := 0
			Expect(gormdb.Raw("SELECT COUNT(*) FROM tasks;").Scan(&count).Error).To(BeNil())
			Expect(count).To(Equal(1))
		})

		It("is idempotent when replayed with the same payload", func() {
			task := model.Task{
				ID:                       "task-1",
				Title:                    "Mop Lobby Floor",
				Status:                   model.TaskStatusAvailable,
				LocationID:               "loc-1",
				EstimatedDurationMinutes: 15,
				UpdatedAt:                time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC),
			}

			_, err := s.Task().Upsert(context.TODO(), task)
			Expect(err).To(BeNil())
			result, err := s.Task().Upsert(context.TODO(), task)
			Expect(err).To(BeNil())
			Expect(result).To(Equal(store.UpsertUpdated))

			count := 0
			Expect(gormdb.Raw("SELECT COUNT(*) FROM tasks;").Scan(&count).Error).To(BeNil())
			Expect(count).To(Equal(1))
		})
	})

	Context("get", func() {
		It("returns ErrRecordNotFound for a missing task", func() {
			_, err := s.Task().Get(context.TODO(), "no-such-task")
			Expect(err).To(MatchError(store.ErrRecordNotFound))
		})
	})

	Context("list", func() {
		It("lists every task", func() {
			tx := gormdb.Exec(fmt.Sprintf(insertTaskStm, "task-1", "t1", "available", "loc-1"))
			Expect(tx.Error).To(BeNil())
			tx = gormdb.Exec(fmt.Sprintf(insertTaskStm, "task-2", "t2", "available", "loc-1"))
			Expect(tx.Error).To(BeNil())

			tasks, err := s.Task().List(context.TODO())
			Expect(err).To(BeNil())
			Expect(tasks).To(HaveLen(2))
		})

		It("returns all task ids", func() {
			tx := gormdb.Exec(fmt.Sprintf(insertTaskStm, "task-1", "t1", "available", "loc-1"))
			Expect(tx.Error).To(BeNil())
			tx = gormdb.Exec(fmt.Sprintf(insertTaskStm, "task-2", "t2", "available", "loc-1"))
			Expect(tx.Error).To(BeNil())

			ids, err := s.Task().IDs(context.TODO())
			Expect(err).To(BeNil())
			Expect(ids).To(ConsistOf("task-1", "task-2"))
		})
	})

	Context("delete", func() {
		It("deletes an existing task", func() {
			tx := gormdb.Exec(fmt.Sprintf(insertTaskStm, "task-1", "t1", "available", "loc-1"))
			Expect(tx.Error).To(BeNil())

			Expect(s.Task().Delete(context.TODO(), "task-1")).To(BeNil())

			count := 0
			Expect(gormdb.Raw("SELECT COUNT(*) FROM tasks;").Scan(&count).Error).To(BeNil())
			Expect(count).To(Equal(0))
		})
	})
})
