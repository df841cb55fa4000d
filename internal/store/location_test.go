package store_test

import (
	"context"

	"github.com/roboclean/ops-sync/internal/config"
	"github.com/roboclean/ops-sync/internal/store"
	"github.com/roboclean/ops-sync/internal/store/model"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"gorm.io/gorm"
)

var _ = Describe("location store", Ordered, func() {
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
		gormdb.Exec("DELETE FROM locations;")
	})

	Context("upsert", func() {
		It("inserts then updates a location", func() {
			l := model.Location{ID: "loc-1", Name: "Harbor Office", Timezone: "Europe/Amsterdam"}

			result, err := s.Location().Upsert(context.TODO(), l)
			Expect(err).To(BeNil())
			Expect(result).To(Equal(store.UpsertInserted))

			l.Name = "Harbor Office West"
			result, err = s.Location().Upsert(context.TODO(), l)
			Expect(err).To(BeNil())
			Expect(result).To(Equal(store.UpsertUpdated))

			got, err := s.Location().Get(context.TODO(), "loc-1")
			Expect(err).To(BeNil())
			Expect(got.Name).To(Equal("Harbor Office West"))
		})
	})

	Context("get", func() {
		It("returns ErrRecordNotFound for a missing location", func() {
			_, err := s.Location().Get(context.TODO(), "no-such-location")
			Expect(err).To(MatchError(store.ErrRecordNotFound))
		})
	})
})
