package store_test

import (
	"context"
	"fmt"

	"github.com/roboclean/ops-sync/internal/config"
	"github.com/roboclean/ops-sync/internal/store"
	"github.com/roboclean/ops-sync/internal/store/model"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"gorm.io/gorm"
)

const (
	insertMediaStm = "INSERT INTO media (id, task_id, location_id, url) VALUES ('%s', '%s', '%s', '%s');"
)

var _ = Describe("media store", Ordered, func() {
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
		It("inserts then updates the same row", func() {
			m := model.Media{
				ID:         "media-1",
				TaskID:     "task-1",
				LocationID: "loc-1",
				URL:        "https://blobs.example.com/a.jpg",
			}

			result, err := s.Media().Upsert(context.TODO(), m)
			Expect(err).To(BeNil())
			Expect(result).To(Equal(store.UpsertInserted))

			m.URL = "https://blobs.example.com/b.jpg"
			result, err = s.Media().Upsert(context.TODO(), m)
			Expect(err).To(BeNil())
			Expect(result).To(Equal(store.UpsertUpdated))

			got, err := s.Media().Get(context.TODO(), "media-1")
			Expect(err).To(BeNil())
			Expect(got.URL).To(Equal("https://blobs.example.com/b.jpg"))
		})
	})

	Context("delete", func() {
		It("deletes every row referencing a task", func() {
			tx := gormdb.Exec(fmt.Sprintf(insertMediaStm, "media-1", "task-1", "loc-1", "u1"))
			Expect(tx.Error).To(BeNil())
			tx = gormdb.Exec(fmt.Sprintf(insertMediaStm, "media-2", "task-1", "loc-1", "u2"))
			Expect(tx.Error).To(BeNil())
			tx = gormdb.Exec(fmt.Sprintf(insertMediaStm, "media-3", "task-2", "loc-1", "u3"))
			Expect(tx.Error).To(BeNil())

			Expect(s.Media().DeleteByTaskID(context.TODO(), "task-1")).To(BeNil())

			ids, err := s.Media().IDs(context.TODO())
			Expect(err).To(BeNil())
			Expect(ids).To(ConsistOf("media-3"))
		})
	})
})
