package main

import (
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/folio-labs/bulk-operations/internal/config"
	"github.com/folio-labs/bulk-operations/internal/store"
	"github.com/folio-labs/bulk-operations/pkg/log"
)

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Migrate the db",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.New()
		if err != nil {
			return err
		}

		logLvl, err := zap.ParseAtomicLevel(cfg.Service.LogLevel)
		if err != nil {
			logLvl = zap.NewAtomicLevelAt(zap.InfoLevel)
		}

		logger := log.InitLog(logLvl)
		defer func() { _ = logger.Sync() }()
		undo := zap.ReplaceGlobals(logger)
		defer undo()

		db, err := store.InitDB(cfg)
		if err != nil {
			zap.S().Named("bulkops-api").Fatalf("initializing data store: %v", err)
		}

		s := store.NewStore(db)
		defer s.Close()

		if err := s.InitialMigration(); err != nil {
			zap.S().Named("bulkops-api").Fatalf("running initial migration: %v", err)
		}

		zap.S().Named("bulkops-api").Info("db migrated")
		return nil
	},
}
