package main

import (
	"context"
	"net"
	"os"
	"os/signal"
	"syscall"

	apiserver "github.com/roboclean/ops-sync/internal/api_server"
	"github.com/roboclean/ops-sync/internal/config"
	"github.com/roboclean/ops-sync/internal/docstore"
	"github.com/roboclean/ops-sync/internal/replicator"
	"github.com/roboclean/ops-sync/internal/scheduler"
	"github.com/roboclean/ops-sync/internal/service"
	"github.com/roboclean/ops-sync/internal/store"
	"github.com/roboclean/ops-sync/pkg/log"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Run the sync API server and the periodic replication scheduler",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.New()
		if err != nil {
			return err
		}

		logger := log.InitLog(log.AtomicLevelFrom(cfg.Service.LogLevel))
		defer func() { _ = logger.Sync() }()
		undo := zap.ReplaceGlobals(logger)
		defer undo()

		zap.S().Info("Starting ops-sync service")
		defer zap.S().Info("ops-sync service stopped")

		ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGHUP, syscall.SIGTERM, syscall.SIGQUIT)
		defer cancel()

		s, docs, err := initStores(ctx, cfg)
		if err != nil {
			return err
		}
		defer func() {
			_ = s.Close()
			_ = docs.Close(context.Background())
		}()

		repl := replicator.New(docs, s,
			replicator.WithPageSize(cfg.Service.ReplicationPageSize),
			replicator.WithWorkers(cfg.Service.ReplicationWorkers),
		)
		replicationSrv := service.NewReplicationService(repl, s)

		go func() {
			defer cancel()
			listener, err := newListener(cfg.Service.Address)
			if err != nil {
				zap.S().Errorf("creating listener: %v", err)
				return
			}
			if err := apiserver.New(cfg, s, docs, listener).Run(ctx); err != nil {
				zap.S().Errorf("running api server: %v", err)
			}
		}()

		go func() {
			defer cancel()
			listener, err := newListener(cfg.Service.MetricsAddress)
			if err != nil {
				zap.S().Errorf("creating metrics listener: %v", err)
				return
			}
			if err := apiserver.NewMetricServer(cfg.Service.MetricsAddress, listener).Run(ctx); err != nil {
				zap.S().Errorf("running metrics server: %v", err)
			}
		}()

		go scheduler.New(replicationSrv, cfg.Service.ReplicationInterval).Run(ctx)

		<-ctx.Done()
		return nil
	},
}

func newListener(address string) (net.Listener, error) {
	if address == "" {
		address = "localhost:0"
	}
	return net.Listen("tcp", address)
}

func initStores(ctx context.Context, cfg *config.Config) (store.Store, docstore.Store, error) {
	db, err := store.InitDB(cfg)
	if err != nil {
		return nil, nil, err
	}

	s := store.NewStore(db)
	if cfg.Database.Type != "pgsql" {
		if err := s.InitialMigration(); err != nil {
			_ = s.Close()
			return nil, nil, err
		}
	}

	docs, err := docstore.NewMongoStore(ctx, cfg)
	if err != nil {
		_ = s.Close()
		return nil, nil, err
	}
	return s, docs, nil
}
