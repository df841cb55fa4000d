package taxonomy_test

import (
	"context"
	"testing"

	"github.com/roboclean/ops-sync/internal/config"
	"github.com/roboclean/ops-sync/internal/docstore"
	"github.com/roboclean/ops-sync/internal/store"
	"github.com/roboclean/ops-sync/internal/store/model"
	"github.com/roboclean/ops-sync/internal/taxonomy"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"gorm.io/gorm"
)

func TestTaxonomy(t *testing.T) {
	RegisterFailHandler(Fail)
	RunSpecs(t, "Taxonomy Suite")
}

var _ = Describe("taxonomy expander", Ordered, func() {
	var (
		s        store.Store
		gormdb   *gorm.DB
		docs     *docstore.MemoryStore
		expander *taxonomy.Expander
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

	seed := func(collection string, doc docstore.Document) {
		Expect(docs.Insert(context.TODO(), collection, doc)).To(BeNil())
	}

	// one location, one kitchen with a counter, one wipe action on it
	seedKitchenCounter := func() {
		seed(docstore.CollectionLocations, docstore.Document{"id": "loc-1", "name": "Harbor Office"})
		seed(docstore.CollectionRoomTypes, docstore.Document{"id": "rt-kitchen", "name": "Kitchen"})
		seed(docstore.CollectionTargetTypes, docstore.Document{"id": "tt-counter", "name": "Counter"})
		seed(docstore.CollectionActionTypes, docstore.Document{
			"id": "at-wipe", "name": "Wipe", "category": "cleaning",
			"defaultInstructions": "Use the degreaser", "defaultDurationMinutes": 5,
		})
		seed(docstore.CollectionRooms, docstore.Document{"id": "room-1", "locationId": "loc-1", "roomTypeId": "rt-kitchen"})
		seed(docstore.CollectionTargets, docstore.Document{"id": "target-1", "roomId": "room-1", "targetTypeId": "tt-counter"})
		seed(docstore.CollectionActions, docstore.Document{"id": "action-1", "targetId": "target-1", "actionTypeId": "at-wipe"})
	}

	BeforeEach(func() {
		docs = docstore.NewMemoryStore()
		expander = taxonomy.NewExpander(docs, s)
	})

	AfterEach(func() {
		gormdb.Exec("DELETE FROM tasks;")
	})

	It("fails for an unknown location", func() {
		_, err := expander.Expand(context.TODO(), "no-such-location")
		Expect(err).To(MatchError(taxonomy.ErrLocationNotFound))
	})

	It("creates one task per action with the composed title", func() {
		seedKitchenCounter()

		result, err := expander.Expand(context.TODO(), "loc-1")
		Expect(err).To(BeNil())
		Expect(result.Created).To(HaveLen(1))
		Expect(result.Skipped).To(Equal(0))

		task := result.Created[0]
		Expect(task.Title).To(Equal("Wipe Kitchen Counter"))
		Expect(task.Description).To(Equal("Use the degreaser"))
		Expect(task.Category).To(Equal("cleaning"))
		Expect(task.Status).To(Equal(model.TaskStatusAvailable))
		Expect(task.EstimatedDurationMinutes).To(Equal(5))
		Expect(task.LocationName).To(Equal("Harbor Office"))
		Expect(*task.ActionID).To(Equal("action-1"))
	})

	It("writes the task to both stores", func() {
		seedKitchenCounter()

		result, err := expander.Expand(context.TODO(), "loc-1")
		Expect(err).To(BeNil())
		Expect(result.Created).To(HaveLen(1))

		taskID := result.Created[0].ID

		doc, err := docs.Get(context.TODO(), docstore.CollectionTasks, taskID)
		Expect(err).To(BeNil())
		Expect(doc["actionId"]).To(Equal("action-1"))

		row, err := s.Task().Get(context.TODO(), taskID)
		Expect(err).To(BeNil())
		Expect(row.Title).To(Equal("Wipe Kitchen Counter"))
	})

	It("is idempotent: a second run skips every action", func() {
		seedKitchenCounter()

		_, err := expander.Expand(context.TODO(), "loc-1")
		Expect(err).To(BeNil())

		result, err := expander.Expand(context.TODO(), "loc-1")
		Expect(err).To(BeNil())
		Expect(result.Created).To(BeEmpty())
		Expect(result.Skipped).To(Equal(1))

		count := 0
		Expect(gormdb.Raw("SELECT COUNT(*) FROM tasks;").Scan(&count).Error).To(BeNil())
		Expect(count).To(Equal(1))
	})

	It("expands only actions added since the last run", func() {
		seedKitchenCounter()

		_, err := expander.Expand(context.TODO(), "loc-1")
		Expect(err).To(BeNil())

		seed(docstore.CollectionActionTypes, docstore.Document{
			"id": "at-polish", "name": "Polish", "defaultDurationMinutes": 10,
		})
		seed(docstore.CollectionActions, docstore.Document{"id": "action-2", "targetId": "target-1", "actionTypeId": "at-polish"})

		result, err := expander.Expand(context.TODO(), "loc-1")
		Expect(err).To(BeNil())
		Expect(result.Created).To(HaveLen(1))
		Expect(result.Skipped).To(Equal(1))
		Expect(result.Created[0].Title).To(Equal("Polish Kitchen Counter"))
	})

	It("prefers custom names and overrides over type defaults", func() {
		seedKitchenCounter()
		seed(docstore.CollectionRooms, docstore.Document{
			"id": "room-1", "locationId": "loc-1", "roomTypeId": "rt-kitchen", "customName": "Staff Kitchen",
		})
		seed(docstore.CollectionActions, docstore.Document{
			"id": "action-1", "targetId": "target-1", "actionTypeId": "at-wipe",
			"customInstructions": "Dry wipe only", "customDurationMinutes": 3,
		})

		result, err := expander.Expand(context.TODO(), "loc-1")
		Expect(err).To(BeNil())
		Expect(result.Created).To(HaveLen(1))

		task := result.Created[0]
		Expect(task.Title).To(Equal("Wipe Staff Kitchen Counter"))
		Expect(task.Description).To(Equal("Dry wipe only"))
		Expect(task.EstimatedDurationMinutes).To(Equal(3))
	})

	It("skips subtrees with unresolvable types", func() {
		seedKitchenCounter()
		seed(docstore.CollectionRooms, docstore.Document{
			"id": "room-2", "locationId": "loc-1", "roomTypeId": "rt-missing",
		})

		result, err := expander.Expand(context.TODO(), "loc-1")
		Expect(err).To(BeNil())
		Expect(result.Created).To(HaveLen(1))
	})
})
