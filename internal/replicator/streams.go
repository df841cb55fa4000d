package replicator

import (
	"context"
	"errors"

	"github.com/roboclean/ops-sync/internal/docstore"
	"github.com/roboclean/ops-sync/internal/store"
	"go.uber.org/zap"
)

// Stream names, which double as watermark keys.
const (
	StreamTasks     = "tasks"
	StreamMedia     = "media"
	StreamLocations = "locations"
)

// Stream replicates one collection of documents into its relational table.
type Stream interface {
	Name() string
	Collection() string
	// Process maps one document and upserts the resulting row.
	Process(ctx context.Context, doc docstore.Document) (store.UpsertResult, error)
}

type taskStream struct {
	store store.Store
}

func (s *taskStream) Name() string       { return StreamTasks }
func (s *taskStream) Collection() string { return docstore.CollectionTasks }

func (s *taskStream) Process(ctx context.Context, doc docstore.Document) (store.UpsertResult, error) {
	task, err := MapTask(doc)
	if err != nil {
		return "", err
	}

	// Denormalized from the replicated locations table. A miss only means
	// the location hasn't synced yet; the next task change fills it in.
	location, err := s.store.Location().Get(ctx, task.LocationID)
	switch {
	case err == nil:
		task.LocationName = location.Name
	case errors.Is(err, store.ErrRecordNotFound):
		zap.S().Named("replicator").Debugf("task %s references unsynced location %s", task.ID, task.LocationID)
	default:
		return "", err
	}

	return s.store.Task().Upsert(ctx, task)
}

type mediaStream struct {
	store store.Store
}

func (s *mediaStream) Name() string       { return StreamMedia }
func (s *mediaStream) Collection() string { return docstore.CollectionMedia }

func (s *mediaStream) Process(ctx context.Context, doc docstore.Document) (store.UpsertResult, error) {
	media, err := MapMedia(doc)
	if err != nil {
		return "", err
	}
	return s.store.Media().Upsert(ctx, media)
}

type locationStream struct {
	store store.Store
}

func (s *locationStream) Name() string       { return StreamLocations }
func (s *locationStream) Collection() string { return docstore.CollectionLocations }

func (s *locationStream) Process(ctx context.Context, doc docstore.Document) (store.UpsertResult, error) {
	location, err := MapLocation(doc)
	if err != nil {
		return "", err
	}
	return s.store.Location().Upsert(ctx, location)
}
