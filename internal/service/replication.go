package service

import (
	"context"

	"github.com/roboclean/ops-sync/internal/replicator"
	"github.com/roboclean/ops-sync/internal/store"
	"github.com/roboclean/ops-sync/internal/store/model"
)

// ReplicationService is the operator-facing surface over the replication
// engine: one trigger per stream, one per orphan entity, plus the watermark
// read.
type ReplicationService struct {
	replicator *replicator.Replicator
	store      store.Store
}

func NewReplicationService(r *replicator.Replicator, s store.Store) *ReplicationService {
	return &ReplicationService{replicator: r, store: s}
}

func (s *ReplicationService) Streams() []string {
	return s.replicator.Streams()
}

func (s *ReplicationService) ReplicateStream(ctx context.Context, stream string) (replicator.Result, error) {
	if !s.replicator.HasStream(stream) {
		return replicator.Result{}, NewErrStreamNotFound(stream)
	}
	return s.replicator.Replicate(ctx, stream)
}

// ReplicateAll runs every stream sequentially, locations first so task
// denormalization finds its names. Per-stream failures don't stop the rest.
func (s *ReplicationService) ReplicateAll(ctx context.Context) []replicator.Result {
	results := make([]replicator.Result, 0, len(s.replicator.Streams()))
	for _, stream := range s.replicator.Streams() {
		result, err := s.replicator.Replicate(ctx, stream)
		if err != nil {
			result = replicator.Result{
				Stream: stream,
				Errors: []replicator.RecordError{{Message: err.Error()}},
			}
		}
		results = append(results, result)
	}
	return results
}

func (s *ReplicationService) SweepOrphans(ctx context.Context, entity string) (replicator.SweepResult, error) {
	if entity != replicator.EntityTasks && entity != replicator.EntityMedia {
		return replicator.SweepResult{}, NewErrEntityNotFound(entity)
	}
	return s.replicator.SweepOrphans(ctx, entity)
}

func (s *ReplicationService) Watermarks(ctx context.Context) ([]model.SyncWatermark, error) {
	return s.store.Watermark().List(ctx)
}
