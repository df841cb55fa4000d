package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/roboclean/ops-sync/internal/config"
	"github.com/roboclean/ops-sync/internal/docstore"
	"github.com/roboclean/ops-sync/internal/replicator"
	"github.com/roboclean/ops-sync/internal/store"
	"github.com/roboclean/ops-sync/internal/taxonomy"
	"github.com/roboclean/ops-sync/pkg/log"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

// setupJob wires config, logging and both stores for the one-shot commands.
// The returned teardown closes the stores and flushes the logger.
func setupJob(ctx context.Context) (*config.Config, store.Store, docstore.Store, func(), error) {
	cfg, err := config.New()
	if err != nil {
		return nil, nil, nil, nil, err
	}

	logger := log.InitLog(log.AtomicLevelFrom(cfg.Service.LogLevel))
	undo := zap.ReplaceGlobals(logger)

	s, docs, err := initStores(ctx, cfg)
	if err != nil {
		undo()
		_ = logger.Sync()
		return nil, nil, nil, nil, err
	}

	teardown := func() {
		_ = s.Close()
		_ = docs.Close(context.Background())
		undo()
		_ = logger.Sync()
	}
	return cfg, s, docs, teardown, nil
}

var seedCmd = &cobra.Command{
	Use:   "seed",
	Short: "Seed the document store with the default type catalogs",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
		defer cancel()

		_, _, docs, teardown, err := setupJob(ctx)
		if err != nil {
			return err
		}
		defer teardown()

		if err := docstore.SeedDefaults(ctx, docs); err != nil {
			return err
		}
		zap.S().Info("default type catalogs seeded")
		return nil
	},
}

var replicateCmd = &cobra.Command{
	Use:   "replicate [stream]",
	Short: "Run one replication pass, for all streams or a single one",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
		defer cancel()

		cfg, s, docs, teardown, err := setupJob(ctx)
		if err != nil {
			return err
		}
		defer teardown()

		repl := replicator.New(docs, s,
			replicator.WithPageSize(cfg.Service.ReplicationPageSize),
			replicator.WithWorkers(cfg.Service.ReplicationWorkers),
		)

		streams := repl.Streams()
		if len(args) == 1 {
			streams = []string{args[0]}
		}
		for _, stream := range streams {
			result, err := repl.Replicate(ctx, stream)
			if err != nil {
				return err
			}
			zap.S().Infof("stream %s: synced %d, failed %d", stream, result.Synced, result.Failed)
		}
		return nil
	},
}

var expandCmd = &cobra.Command{
	Use:   "expand <location-id>",
	Short: "Expand a location's room/target/action taxonomy into task documents",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
		defer cancel()

		_, s, docs, teardown, err := setupJob(ctx)
		if err != nil {
			return err
		}
		defer teardown()

		result, err := taxonomy.NewExpander(docs, s).Expand(ctx, args[0])
		if err != nil {
			return err
		}
		zap.S().Infof("location %s: created %d tasks, skipped %d, %d errors",
			args[0], len(result.Created), result.Skipped, len(result.Errors))
		return nil
	},
}

var sweepCmd = &cobra.Command{
	Use:   "sweep <entity>",
	Short: "Delete relational rows whose source documents are gone",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
		defer cancel()

		cfg, s, docs, teardown, err := setupJob(ctx)
		if err != nil {
			return err
		}
		defer teardown()

		repl := replicator.New(docs, s,
			replicator.WithPageSize(cfg.Service.ReplicationPageSize),
			replicator.WithWorkers(cfg.Service.ReplicationWorkers),
		)
		result, err := repl.SweepOrphans(ctx, args[0])
		if err != nil {
			return err
		}
		zap.S().Infof("entity %s: deleted %d orphans, %d failures",
			args[0], len(result.Deleted), len(result.Failed))
		return nil
	},
}
