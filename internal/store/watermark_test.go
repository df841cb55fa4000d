package store_test

import (
	"context"
	"time"

	"github.com/roboclean/ops-sync/internal/config"
	"github.com/roboclean/ops-sync/internal/store"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"gorm.io/gorm"
)

var _ = Describe("watermark store", Ordered, func() {
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
		gormdb.Exec("DELETE FROM sync_watermarks;")
	})

	Context("get", func() {
		It("returns a zero watermark for an unknown stream", func() {
			wm, err := s.Watermark().Get(context.TODO(), "tasks")
			Expect(err).To(BeNil())
			Expect(wm.StreamName).To(Equal("tasks"))
			Expect(wm.LastSyncedAt.IsZero()).To(BeTrue())
			Expect(wm.RecordsSynced).To(BeZero())
		})
	})

	Context("advance", func() {
		It("creates the watermark row on first advance", func() {
			ts := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)

			wm, err := s.Watermark().Advance(context.TODO(), "tasks", ts, 10, 1)
			Expect(err).To(BeNil())
			Expect(wm.LastSyncedAt.Equal(ts)).To(BeTrue())
			Expect(wm.RecordsSynced).To(Equal(int64(10)))
			Expect(wm.ErrorCount).To(Equal(int64(1)))
		})

		It("moves forward and accumulates counters", func() {
			t1 := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)
			t2 := t1.Add(time.Hour)

			_, err := s.Watermark().Advance(context.TODO(), "tasks", t1, 5, 0)
			Expect(err).To(BeNil())

			wm, err := s.Watermark().Advance(context.TODO(), "tasks", t2, 3, 2)
			Expect(err).To(BeNil())
			Expect(wm.LastSyncedAt.Equal(t2)).To(BeTrue())
			Expect(wm.RecordsSynced).To(Equal(int64(8)))
			Expect(wm.ErrorCount).To(Equal(int64(2)))
		})

		It("never moves backwards", func() {
			t1 := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)

			_, err := s.Watermark().Advance(context.TODO(), "tasks", t1, 5, 0)
			Expect(err).To(BeNil())

			wm, err := s.Watermark().Advance(context.TODO(), "tasks", t1.Add(-time.Minute), 1, 0)
			Expect(err).To(BeNil())
			Expect(wm.LastSyncedAt.Equal(t1)).To(BeTrue())
			// counters still accumulate even when the timestamp holds
			Expect(wm.RecordsSynced).To(Equal(int64(6)))
		})

		It("holds the timestamp when a batch fully fails", func() {
			t1 := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)

			_, err := s.Watermark().Advance(context.TODO(), "tasks", t1, 5, 0)
			Expect(err).To(BeNil())

			wm, err := s.Watermark().Advance(context.TODO(), "tasks", time.Time{}, 0, 4)
			Expect(err).To(BeNil())
			Expect(wm.LastSyncedAt.Equal(t1)).To(BeTrue())
			Expect(wm.ErrorCount).To(Equal(int64(4)))
		})
	})

	Context("list", func() {
		It("lists one watermark per stream", func() {
			ts := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)

			_, err := s.Watermark().Advance(context.TODO(), "tasks", ts, 1, 0)
			Expect(err).To(BeNil())
			_, err = s.Watermark().Advance(context.TODO(), "media", ts, 1, 0)
			Expect(err).To(BeNil())

			wms, err := s.Watermark().List(context.TODO())
			Expect(err).To(BeNil())
			Expect(wms).To(HaveLen(2))
		})
	})
})
