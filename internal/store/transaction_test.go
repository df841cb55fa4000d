package store_test

import (
	"context"

	"github.com/roboclean/ops-sync/internal/config"
	st "github.com/roboclean/ops-sync/internal/store"
	"github.com/roboclean/ops-sync/internal/store/model"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"gorm.io/gorm"
)

var _ = Describe("transaction context", Ordered, func() {
	var (
		s      st.Store
		gormdb *gorm.DB
	)

	BeforeAll(func() {
		db, err := st.InitDB(config.NewDefault())
		Expect(err).To(BeNil())

		s = st.NewStore(db)
		gormdb = db
		Expect(s.InitialMigration()).To(BeNil())
	})

	AfterAll(func() {
		s.Close()
	})

	AfterEach(func() {
		gormdb.Exec("DELETE FROM tasks;")
	})

	It("commits writes made through the context", func() {
		ctx, err := s.NewTransactionContext(context.TODO())
		Expect(err).To(BeNil())

		_, err = s.Task().Upsert(ctx, model.Task{
			ID: "task-1", Title: "t1", Status: model.TaskStatusAvailable, LocationID: "loc-1",
		})
		Expect(err).To(BeNil())

		_, cerr := st.Commit(ctx)
		Expect(cerr).To(BeNil())

		count := 0
		Expect(gormdb.Raw("SELECT COUNT(*) FROM tasks;").Scan(&count).Error).To(BeNil())
		Expect(count).To(Equal(1))
	})

	It("rolls back writes made through the context", func() {
		ctx, err := s.NewTransactionContext(context.TODO())
		Expect(err).To(BeNil())

		_, err = s.Task().Upsert(ctx, model.Task{
			ID: "task-1", Title: "t1", Status: model.TaskStatusAvailable, LocationID: "loc-1",
		})
		Expect(err).To(BeNil())

		// visible inside the transaction
		tasks, err := s.Task().List(ctx)
		Expect(err).To(BeNil())
		Expect(tasks).To(HaveLen(1))

		_, rerr := st.Rollback(ctx)
		Expect(rerr).To(BeNil())

		count := 0
		Expect(gormdb.Raw("SELECT COUNT(*) FROM tasks;").Scan(&count).Error).To(BeNil())
		Expect(count).To(Equal(0))
	})
})
