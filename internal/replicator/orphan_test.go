package replicator_test

import (
	"context"
	"fmt"
	"time"

	"github.com/roboclean/ops-sync/internal/config"
	"github.com/roboclean/ops-sync/internal/docstore"
	"github.com/roboclean/ops-sync/internal/replicator"
	"github.com/roboclean/ops-sync/internal/store"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"gorm.io/gorm"
)

const (
	insertTaskRowStm  = "INSERT INTO tasks (id, title, status, location_id) VALUES ('%s', 't', 'available', 'loc-1');"
	insertMediaRowStm = "INSERT INTO media (id, task_id, location_id, url) VALUES ('%s', '%s', 'loc-1', 'u');"
)

var _ = Describe("orphan sweep", Ordered, func() {
	var (
		s      store.Store
		gormdb *gorm.DB
		docs   *docstore.MemoryStore
		repl   *replicator.Replicator
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

	BeforeEach(func() {
		docs = docstore.NewMemoryStore()
		repl = replicator.New(docs, s)
	})

	AfterEach(func() {
		gormdb.Exec("DELETE FROM media;")
		gormdb.Exec("DELETE FROM tasks;")
	})

	It("fails on an unknown entity", func() {
		_, err := repl.SweepOrphans(context.TODO(), "bogus")
		Expect(err).ToNot(BeNil())
	})

	It("deletes task rows whose documents are gone", func() {
		for _, id := range []string{"task-1", "task-2", "task-3"} {
			tx := gormdb.Exec(fmt.Sprintf(insertTaskRowStm, id))
			Expect(tx.Error).To(BeNil())
		}
		for _, id := range []string{"task-1", "task-2"} {
			Expect(docs.Insert(context.TODO(), docstore.CollectionTasks, docstore.Document{
				"id": id, "locationId": "loc-1", "changedAt": time.Now(),
			})).To(BeNil())
		}

		result, err := repl.SweepOrphans(context.TODO(), replicator.EntityTasks)
		Expect(err).To(BeNil())
		Expect(result.Deleted).To(ConsistOf("task-3"))
		Expect(result.Failed).To(BeEmpty())

		ids, err := s.Task().IDs(context.TODO())
		Expect(err).To(BeNil())
		Expect(ids).To(ConsistOf("task-1", "task-2"))
	})

	It("deletes an orphaned task's media rows with it", func() {
		tx := gormdb.Exec(fmt.Sprintf(insertTaskRowStm, "task-1"))
		Expect(tx.Error).To(BeNil())
		tx = gormdb.Exec(fmt.Sprintf(insertMediaRowStm, "media-1", "task-1"))
		Expect(tx.Error).To(BeNil())

		result, err := repl.SweepOrphans(context.TODO(), replicator.EntityTasks)
		Expect(err).To(BeNil())
		Expect(result.Deleted).To(ConsistOf("task-1"))

		ids, err := s.Media().IDs(context.TODO())
		Expect(err).To(BeNil())
		Expect(ids).To(BeEmpty())
	})

	It("deletes media rows whose documents are gone", func() {
		tx := gormdb.Exec(fmt.Sprintf(insertTaskRowStm, "task-1"))
		Expect(tx.Error).To(BeNil())
		for _, id := range []string{"media-1", "media-2"} {
			tx := gormdb.Exec(fmt.Sprintf(insertMediaRowStm, id, "task-1"))
			Expect(tx.Error).To(BeNil())
		}
		Expect(docs.Insert(context.TODO(), docstore.CollectionMedia, docstore.Document{
			"id": "media-1", "locationId": "loc-1", "changedAt": time.Now(),
		})).To(BeNil())

		result, err := repl.SweepOrphans(context.TODO(), replicator.EntityMedia)
		Expect(err).To(BeNil())
		Expect(result.Deleted).To(ConsistOf("media-2"))

		ids, err := s.Media().IDs(context.TODO())
		Expect(err).To(BeNil())
		Expect(ids).To(ConsistOf("media-1"))
	})

	It("sweeps nothing when the stores agree", func() {
		tx := gormdb.Exec(fmt.Sprintf(insertTaskRowStm, "task-1"))
		Expect(tx.Error).To(BeNil())
		Expect(docs.Insert(context.TODO(), docstore.CollectionTasks, docstore.Document{
			"id": "task-1", "locationId": "loc-1", "changedAt": time.Now(),
		})).To(BeNil())

		result, err := repl.SweepOrphans(context.TODO(), replicator.EntityTasks)
		Expect(err).To(BeNil())
		Expect(result.Deleted).To(BeEmpty())
	})
})
