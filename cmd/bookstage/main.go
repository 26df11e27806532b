// Command bookstage extracts packaged e-books and manages the staged
// asset lifecycle from the command line.
package main

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
	"github.com/spf13/cobra"

	"github.com/tsawler/bookstage"
	"github.com/tsawler/bookstage/staging"
	"github.com/tsawler/bookstage/storage"
)

var (
	configPath string
	dryRun     bool
	daemon     bool
)

func main() {
	root := &cobra.Command{
		Use:          "bookstage",
		Short:        "Extract packaged e-books and manage staged assets",
		SilenceUsage: true,
	}
	root.PersistentFlags().StringVarP(&configPath, "config", "c", "bookstage.yaml", "path to config file")

	extractCmd := &cobra.Command{
		Use:   "extract <file.epub>",
		Short: "Extract a package and print the result as JSON",
		Args:  cobra.ExactArgs(1),
		RunE:  runExtract,
	}
	extractCmd.Flags().BoolVar(&dryRun, "dry-run", false, "use in-memory storage instead of MinIO/Postgres")

	sweepCmd := &cobra.Command{
		Use:   "sweep",
		Short: "Delete staged assets older than the retention window",
		Args:  cobra.NoArgs,
		RunE:  runSweep,
	}
	sweepCmd.Flags().BoolVar(&daemon, "daemon", false, "keep running, sweeping on a fixed period")

	root.AddCommand(extractCmd, sweepCmd)

	if err := root.Execute(); err != nil {
		os.Exit(1)
	}
}

func runExtract(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()

	cfg, err := loadConfig(configPath)
	if err != nil {
		return err
	}

	data, err := os.ReadFile(args[0])
	if err != nil {
		return err
	}

	var store storage.Store
	var ledger staging.Ledger
	if dryRun {
		store = storage.NewMemoryStore()
		ledger = staging.NewMemoryLedger()
	} else {
		store, err = newMinioStore(cfg)
		if err != nil {
			return err
		}
		sqlLedger, err := staging.OpenSQLLedger(ctx, cfg.DatabaseURL)
		if err != nil {
			return err
		}
		defer sqlLedger.Close()
		if err := sqlLedger.EnsureSchema(ctx); err != nil {
			return err
		}
		ledger = sqlLedger
	}

	ex := bookstage.New(store, ledger, bookstage.WithLogger(slog.Default()))
	result, err := ex.Extract(ctx, data)
	if err != nil {
		return err
	}

	out, err := json.MarshalIndent(result, "", "  ")
	if err != nil {
		return err
	}
	fmt.Println(string(out))
	return nil
}

func runSweep(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(configPath)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	store, err := newMinioStore(cfg)
	if err != nil {
		return err
	}

	ledger, err := staging.OpenSQLLedger(ctx, cfg.DatabaseURL)
	if err != nil {
		return err
	}
	defer ledger.Close()
	if err := ledger.EnsureSchema(ctx); err != nil {
		return err
	}

	sweeper := staging.NewSweeper(ledger, store, staging.SweeperConfig{
		Retention: cfg.Sweep.Retention,
		Interval:  cfg.Sweep.Interval,
		Logger:    slog.Default(),
	})

	if daemon {
		slog.Info("sweep daemon started", "interval", cfg.Sweep.Interval, "retention", cfg.Sweep.Retention)
		sweeper.Run(ctx)
		return nil
	}

	removed, err := sweeper.Sweep(ctx)
	if err != nil {
		return err
	}
	slog.Info("sweep complete", "removed", removed)
	return nil
}

func newMinioStore(cfg Config) (*storage.MinioStore, error) {
	if cfg.Minio.Endpoint == "" {
		return nil, fmt.Errorf("minio endpoint is not configured")
	}

	client, err := minio.New(cfg.Minio.Endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(cfg.Minio.AccessKey, cfg.Minio.SecretKey, ""),
		Secure: cfg.Minio.UseSSL,
	})
	if err != nil {
		return nil, fmt.Errorf("connecting to object store: %w", err)
	}

	publicURL := cfg.Minio.PublicURL
	if publicURL == "" {
		scheme := "http"
		if cfg.Minio.UseSSL {
			scheme = "https"
		}
		publicURL = scheme + "://" + cfg.Minio.Endpoint
	}

	return storage.NewMinioStore(client, cfg.Minio.Bucket, publicURL), nil
}
