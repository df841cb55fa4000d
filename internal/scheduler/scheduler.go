package scheduler

import (
	"context"
	"time"

	jitterbug "github.com/lthibault/jitterbug/v2"
	"github.com/roboclean/ops-sync/internal/service"
	"go.uber.org/zap"
)

// Scheduler drives periodic replication of every stream. Each tick runs a
// full pass; ticks are jittered so multiple replicas don't fetch in
// lockstep. Stream runs share nothing, so a slow stream only delays its own
// pass.
type Scheduler struct {
	replicationSrv *service.ReplicationService
	interval       time.Duration
}

func New(replicationSrv *service.ReplicationService, interval time.Duration) *Scheduler {
	return &Scheduler{replicationSrv: replicationSrv, interval: interval}
}

// Run blocks until the context is cancelled.
func (s *Scheduler) Run(ctx context.Context) {
	log := zap.S().Named("scheduler")
	log.Infof("replication scheduler started, interval=%s", s.interval)

	ticker := jitterbug.New(s.interval, &jitterbug.Norm{Stdev: 5 * time.Second, Mean: 0})
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			log.Info("replication scheduler stopped")
			return
		case <-ticker.C:
			for _, result := range s.replicationSrv.ReplicateAll(ctx) {
				if len(result.Errors) > 0 {
					log.Warnf("stream %q: synced=%d failed=%d first error: %s",
						result.Stream, result.Synced, result.Failed, result.Errors[0].Message)
				}
			}
		}
	}
}
