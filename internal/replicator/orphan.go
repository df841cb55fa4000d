package replicator

import (
	"context"
	"fmt"

	"github.com/roboclean/ops-sync/internal/docstore"
	"github.com/roboclean/ops-sync/internal/store"
	"github.com/roboclean/ops-sync/pkg/metrics"
	"github.com/thoas/go-funk"
	"go.uber.org/zap"
)

// Entities the orphan sweep knows how to clean up.
const (
	EntityTasks = "tasks"
	EntityMedia = "media"
)

// SweepResult reports one orphan sweep: which relational-only ids were
// deleted and which deletions failed. A single failure never aborts the
// sweep.
type SweepResult struct {
	Entity  string        `json:"entity"`
	Deleted []string      `json:"deleted"`
	Failed  []RecordError `json:"failed,omitempty"`
}

// SweepOrphans deletes relational rows whose document no longer exists.
// Dependent child rows go first: media referencing a task is removed before
// the task row itself.
func (r *Replicator) SweepOrphans(ctx context.Context, entity string) (SweepResult, error) {
	switch entity {
	case EntityTasks:
		return r.sweepTasks(ctx)
	case EntityMedia:
		return r.sweepMedia(ctx)
	default:
		return SweepResult{}, fmt.Errorf("unknown orphan entity %q", entity)
	}
}

func (r *Replicator) sweepTasks(ctx context.Context) (SweepResult, error) {
	result := SweepResult{Entity: EntityTasks}

	relIDs, err := r.store.Task().IDs(ctx)
	if err != nil {
		return result, fmt.Errorf("listing relational task ids: %w", err)
	}
	docIDs, err := r.docs.IDs(ctx, docstore.CollectionTasks)
	if err != nil {
		return result, fmt.Errorf("listing document task ids: %w", err)
	}

	for _, id := range funk.SubtractString(relIDs, docIDs) {
		// task row and its media rows go together or not at all
		if err := r.deleteTaskTree(ctx, id); err != nil {
			result.Failed = append(result.Failed, RecordError{ID: id, Message: err.Error()})
			continue
		}
		result.Deleted = append(result.Deleted, id)
	}

	metrics.IncreaseOrphansDeletedMetric(EntityTasks, len(result.Deleted))
	zap.S().Named("replicator").Infof("orphan sweep %q: deleted=%d failed=%d",
		EntityTasks, len(result.Deleted), len(result.Failed))
	return result, nil
}

func (r *Replicator) deleteTaskTree(ctx context.Context, id string) error {
	txCtx, err := r.store.NewTransactionContext(ctx)
	if err != nil {
		return fmt.Errorf("opening transaction: %w", err)
	}

	if err := r.store.Media().DeleteByTaskID(txCtx, id); err != nil {
		_, _ = store.Rollback(txCtx)
		return fmt.Errorf("deleting media rows: %w", err)
	}
	if err := r.store.Task().Delete(txCtx, id); err != nil {
		_, _ = store.Rollback(txCtx)
		return err
	}

	if _, err := store.Commit(txCtx); err != nil {
		return fmt.Errorf("committing delete: %w", err)
	}
	return nil
}

func (r *Replicator) sweepMedia(ctx context.Context) (SweepResult, error) {
	result := SweepResult{Entity: EntityMedia}

	relIDs, err := r.store.Media().IDs(ctx)
	if err != nil {
		return result, fmt.Errorf("listing relational media ids: %w", err)
	}
	docIDs, err := r.docs.IDs(ctx, docstore.CollectionMedia)
	if err != nil {
		return result, fmt.Errorf("listing document media ids: %w", err)
	}

	for _, id := range funk.SubtractString(relIDs, docIDs) {
		if err := r.store.Media().Delete(ctx, id); err != nil {
			result.Failed = append(result.Failed, RecordError{ID: id, Message: err.Error()})
			continue
		}
		result.Deleted = append(result.Deleted, id)
	}

	metrics.IncreaseOrphansDeletedMetric(EntityMedia, len(result.Deleted))
	zap.S().Named("replicator").Infof("orphan sweep %q: deleted=%d failed=%d",
		EntityMedia, len(result.Deleted), len(result.Failed))
	return result, nil
}
