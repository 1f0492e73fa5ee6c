package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/folio-labs/bulk-operations/internal/clients"
	"github.com/folio-labs/bulk-operations/internal/config"
	"github.com/folio-labs/bulk-operations/internal/filestore"
	"github.com/folio-labs/bulk-operations/internal/service"
	"github.com/folio-labs/bulk-operations/internal/store"
	"github.com/folio-labs/bulk-operations/pkg/log"
)

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Run the bulk operations service",
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

		zap.S().Named("bulkops-api").Info("starting bulk operations service")
		defer zap.S().Named("bulkops-api").Info("bulk operations service stopped")

		db, err := store.InitDB(cfg)
		if err != nil {
			zap.S().Named("bulkops-api").Fatalf("initializing data store: %v", err)
		}

		s := store.NewStore(db)
		defer s.Close()

		if err := s.InitialMigration(); err != nil {
			zap.S().Named("bulkops-api").Fatalf("running initial migration: %v", err)
		}

		files, err := filestore.NewMinioStore(
			filestore.WithEndpoint(cfg.Storage.Endpoint),
			filestore.WithBucket(cfg.Storage.Bucket),
			filestore.WithAccessKey(cfg.Storage.AccessKey),
			filestore.WithSecretKey(cfg.Storage.SecretAccessKey),
			filestore.WithSSL(cfg.Storage.UseSSL),
		)
		if err != nil {
			zap.S().Named("bulkops-api").Fatalf("initializing file storage: %v", err)
		}

		svc := service.NewBulkOperationService(service.Dependencies{
			Store:         s,
			Files:         files,
			DataExport:    clients.NewDataExportHTTPClient(cfg.Service.DataExportURL, 60*time.Second),
			BulkEdit:      clients.NewBulkEditHTTPClient(cfg.Service.BulkEditURL, 60*time.Second),
			MaxRetryCount: cfg.Service.FileUploadingMaxRetryCount,
		})

		ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGHUP, syscall.SIGTERM, syscall.SIGQUIT)
		defer cancel()

		zap.S().Named("bulkops-api").Info("bulk operations service ready")
		<-ctx.Done()

		// Let in-flight stage workers finish before closing the store.
		svc.Wait()
		return nil
	},
}
