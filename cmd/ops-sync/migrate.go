package main

import (
	"github.com/roboclean/ops-sync/internal/config"
	"github.com/roboclean/ops-sync/internal/store"
	"github.com/roboclean/ops-sync/pkg/log"
	"github.com/roboclean/ops-sync/pkg/migrations"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Migrate the relational store schema",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.New()
		if err != nil {
			return err
		}

		logger := log.InitLog(log.AtomicLevelFrom(cfg.Service.LogLevel))
		defer func() { _ = logger.Sync() }()
		undo := zap.ReplaceGlobals(logger)
		defer undo()

		zap.S().Info("Initializing data store")
		db, err := store.InitDB(cfg)
		if err != nil {
			zap.S().Fatalf("initializing data store: %v", err)
		}

		s := store.NewStore(db)
		defer func() { _ = s.Close() }()

		if cfg.Database.Type != "pgsql" {
			if err := s.InitialMigration(); err != nil {
				zap.S().Fatalf("running initial migration: %v", err)
			}
			zap.S().Info("Db migrated")
			return nil
		}

		if err := migrations.MigrateStore(db, cfg.Service.MigrationFolder); err != nil {
			zap.S().Fatalf("running migrations: %v", err)
		}

		zap.S().Info("Db migrated")
		return nil
	},
}
