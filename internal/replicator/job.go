package replicator

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/roboclean/ops-sync/internal/docstore"
	"github.com/roboclean/ops-sync/internal/store"
	"github.com/roboclean/ops-sync/pkg/metrics"
	"github.com/sethvargo/go-retry"
	"go.uber.org/zap"
)

const (
	fetchRetries   = 3
	fetchBackoff   = 250 * time.Millisecond
	defaultPage    = 500
	defaultWorkers = 8
)

// RecordError is one per-record failure surfaced in a job result.
type RecordError struct {
	ID      string `json:"id"`
	Message string `json:"message"`
}

// Result summarizes one replication run. Synced and Failed count every
// record in the batch; LastTimestamp is where the watermark ended up.
type Result struct {
	Stream        string        `json:"stream"`
	Synced        int           `json:"synced"`
	Failed        int           `json:"failed"`
	LastTimestamp time.Time     `json:"lastTimestamp"`
	Errors        []RecordError `json:"errors,omitempty"`
}

// Replicator runs incremental replication streams from the document store
// into the relational store. It holds no state between runs; everything it
// needs to resume lives in the watermark table.
type Replicator struct {
	docs     docstore.Store
	store    store.Store
	streams  map[string]Stream
	pageSize int
	workers  int
}

type Option func(*Replicator)

func WithPageSize(n int) Option {
	return func(r *Replicator) {
		if n > 0 {
			r.pageSize = n
		}
	}
}

func WithWorkers(n int) Option {
	return func(r *Replicator) {
		if n > 0 {
			r.workers = n
		}
	}
}

func New(docs docstore.Store, s store.Store, opts ...Option) *Replicator {
	r := &Replicator{
		docs:     docs,
		store:    s,
		pageSize: defaultPage,
		workers:  defaultWorkers,
	}
	for _, opt := range opts {
		opt(r)
	}

	r.streams = map[string]Stream{
		StreamLocations: &locationStream{store: s},
		StreamTasks:     &taskStream{store: s},
		StreamMedia:     &mediaStream{store: s},
	}
	return r
}

// Streams returns the registered stream names.
func (r *Replicator) Streams() []string {
	return []string{StreamLocations, StreamTasks, StreamMedia}
}

func (r *Replicator) HasStream(name string) bool {
	_, ok := r.streams[name]
	return ok
}

// Replicate runs one batch of the named stream: fetch changes past the
// watermark, map and upsert them on a bounded worker pool, then advance the
// watermark through the ordered prefix of successes. Per-record failures
// accumulate in the result; only a batch-level failure returns an error,
// leaving the watermark untouched.
func (r *Replicator) Replicate(ctx context.Context, streamName string) (Result, error) {
	stream, ok := r.streams[streamName]
	if !ok {
		return Result{}, fmt.Errorf("unknown replication stream %q", streamName)
	}

	log := zap.S().Named("replicator")
	start := time.Now()

	wm, err := r.store.Watermark().Get(ctx, streamName)
	if err != nil {
		return Result{}, fmt.Errorf("reading watermark for %q: %w", streamName, err)
	}

	docs, err := r.fetch(ctx, stream.Collection(), wm.LastSyncedAt)
	if err != nil {
		return Result{}, fmt.Errorf("fetching changes for %q: %w", streamName, err)
	}

	result := Result{Stream: streamName, LastTimestamp: wm.LastSyncedAt}
	if len(docs) == 0 {
		return result, nil
	}

	outcomes := r.processAll(ctx, stream, docs)

	// The watermark moves only through the ordered prefix of successes:
	// a failed record pins the stream so the next run refetches it, and
	// everything upserted past it is simply re-applied idempotently.
	advanceTo := time.Time{}
	inPrefix := true
	inserted, updated := 0, 0
	for i, out := range outcomes {
		if out.err != nil {
			inPrefix = false
			result.Failed++
			result.Errors = append(result.Errors, RecordError{ID: out.id, Message: out.err.Error()})
			continue
		}
		result.Synced++
		if out.result == store.UpsertInserted {
			inserted++
		} else {
			updated++
		}
		if inPrefix {
			advanceTo = docs[i].ChangedAt()
		}
	}

	updatedWm, err := r.store.Watermark().Advance(ctx, streamName, advanceTo, result.Synced, result.Failed)
	if err != nil {
		return Result{}, fmt.Errorf("advancing watermark for %q: %w", streamName, err)
	}
	result.LastTimestamp = updatedWm.LastSyncedAt

	metrics.IncreaseRecordsSyncedMetric(streamName, string(store.UpsertInserted), inserted)
	metrics.IncreaseRecordsSyncedMetric(streamName, string(store.UpsertUpdated), updated)
	metrics.IncreaseSyncErrorsMetric(streamName, result.Failed)
	metrics.ObserveReplicationDurationMetric(streamName, time.Since(start))
	metrics.UpdateWatermarkAgeMetric(streamName, updatedWm.LastSyncedAt)

	log.Infof("stream %q: synced=%d failed=%d watermark=%s",
		streamName, result.Synced, result.Failed, updatedWm.LastSyncedAt.Format(time.RFC3339))
	return result, nil
}

// fetch pulls one page of changed documents, retrying transient store
// errors with bounded backoff before giving up on the batch.
func (r *Replicator) fetch(ctx context.Context, collection string, after time.Time) ([]docstore.Document, error) {
	var docs []docstore.Document
	backoff := retry.WithMaxRetries(fetchRetries, retry.NewExponential(fetchBackoff))

	err := retry.Do(ctx, backoff, func(ctx context.Context) error {
		var fetchErr error
		docs, fetchErr = r.docs.ChangedSince(ctx, collection, after, r.pageSize)
		if fetchErr != nil {
			return retry.RetryableError(fetchErr)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return docs, nil
}

type outcome struct {
	id     string
	result store.UpsertResult
	err    error
}

// processAll runs the batch on a bounded worker pool. Each worker writes
// only its own outcome slots, so no counter is shared mid-flight; results
// are merged after the pool settles. Cancellation stops dispatch and marks
// unprocessed records, which keeps them behind the watermark.
func (r *Replicator) processAll(ctx context.Context, stream Stream, docs []docstore.Document) []outcome {
	outcomes := make([]outcome, len(docs))
	jobs := make(chan int)

	var wg sync.WaitGroup
	for w := 0; w < r.workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for idx := range jobs {
				if err := ctx.Err(); err != nil {
					outcomes[idx] = outcome{id: docs[idx].ID(), err: err}
					continue
				}
				res, err := stream.Process(ctx, docs[idx])
				outcomes[idx] = outcome{id: docs[idx].ID(), result: res, err: err}
			}
		}()
	}

dispatch:
	for i := range docs {
		select {
		case <-ctx.Done():
			for j := i; j < len(docs); j++ {
				outcomes[j] = outcome{id: docs[j].ID(), err: ctx.Err()}
			}
			break dispatch
		case jobs <- i:
		}
	}
	close(jobs)
	wg.Wait()

	return outcomes
}
