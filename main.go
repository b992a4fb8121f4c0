package main

import (
	"context"
	"flag"
	"log"
	"os"
	"os/signal"
	"syscall"

	"yclients_sync/config"
	"yclients_sync/export"
	"yclients_sync/logging"
	"yclients_sync/pipeline"
	"yclients_sync/scheduler"
	"yclients_sync/storage"
	"yclients_sync/yclients"
)

var (
	runOnce = flag.Bool("once", false, "Run one sync and exit")
)

func main() {
	flag.Parse()
	log.SetFlags(log.LstdFlags | log.Lshortfile)

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	logFile, err := logging.Setup(cfg.LogPath)
	if err != nil {
		log.Printf("Warning: could not set up file logging: %v", err)
	} else {
		defer logFile.Close()
	}

	log.Println("Starting yclients_sync...")

	ctx := context.Background()

	client := yclients.New(cfg.API.BaseURL, cfg.API.PartnerToken, cfg.API.CompanyID, cfg.Endpoints)
	if err := client.Authenticate(ctx, cfg.API.Login, cfg.API.Password); err != nil {
		log.Fatalf("Authentication failed: %v", err)
	}
	log.Printf("Authenticated company %s", cfg.API.CompanyID)

	var sink storage.Sink
	switch cfg.DB.Driver {
	case "postgres":
		dsn := storage.PostgresDSN(cfg.DB.User, cfg.DB.Password, cfg.DB.Host, cfg.DB.Port, cfg.DB.Name)
		pgStore, err := storage.NewPostgresStore(ctx, dsn)
		if err != nil {
			log.Fatalf("Failed to connect to Postgres: %v", err)
		}
		defer pgStore.Close()
		if err := pgStore.EnsureSyncRuns(ctx); err != nil {
			log.Fatalf("Failed to prepare sync_runs table: %v", err)
		}
		log.Printf("Connected to Postgres at %s:%s/%s", cfg.DB.Host, cfg.DB.Port, cfg.DB.Name)
		sink = pgStore
	case "sqlite":
		sqlStore, err := storage.NewSQLiteStore(cfg.DB.SQLitePath)
		if err != nil {
			log.Fatalf("Failed to open SQLite: %v", err)
		}
		defer sqlStore.Close()
		log.Printf("SQLite database: %s", cfg.DB.SQLitePath)
		sink = sqlStore
	case "none":
		log.Println("No relational sink configured, spreadsheet export only")
	default:
		log.Fatalf("Unknown DB_DRIVER: %s", cfg.DB.Driver)
	}

	var exporter *export.Exporter
	if cfg.ExportDir != "" {
		exporter, err = export.NewExporter(cfg.ExportDir)
		if err != nil {
			log.Fatalf("Failed to set up export dir: %v", err)
		}
		log.Printf("Spreadsheet export dir: %s", cfg.ExportDir)
	}
	if sink == nil && exporter == nil {
		log.Fatal("Nothing to write to: set DB_DRIVER or EXPORT_DIR")
	}

	pipe := pipeline.New(cfg, client, sink, exporter)

	if exporter != nil && cfg.S3.Bucket != "" {
		uploader, err := storage.NewS3Uploader(ctx, storage.S3Config{
			Bucket:          cfg.S3.Bucket,
			Region:          cfg.S3.Region,
			Endpoint:        cfg.S3.Endpoint,
			AccessKeyID:     cfg.S3.AccessKeyID,
			SecretAccessKey: cfg.S3.SecretAccessKey,
			Prefix:          cfg.S3.Prefix,
		})
		if err != nil {
			log.Fatalf("Failed to set up S3 uploader: %v", err)
		}
		pipe.SetUploader(uploader)
		log.Printf("Export upload bucket: %s", cfg.S3.Bucket)
	}

	if *runOnce {
		log.Println("Running one-shot sync...")
		if err := pipe.RunAll(ctx); err != nil {
			log.Fatalf("Sync failed: %v", err)
		}
		log.Println("Sync complete!")
		return
	}

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	sched := scheduler.New(&cfg.Scheduler, pipe)
	if err := sched.Start(ctx); err != nil {
		log.Fatalf("Failed to start scheduler: %v", err)
	}

	log.Println("Daemon running. Press Ctrl+C to stop.")

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	<-sigCh

	log.Println("Shutting down...")
	sched.Stop()
	log.Println("Goodbye!")
}
