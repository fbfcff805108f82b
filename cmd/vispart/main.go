package main

import (
	"context"
	"log/slog"
	"os"

	"github.com/alekLukanen/errs"
	"github.com/apache/arrow/go/v17/arrow/memory"

	"github.com/astrovis/vispart/config"
	"github.com/astrovis/vispart/converter"
	"github.com/astrovis/vispart/elements"
	"github.com/astrovis/vispart/storage"
	"github.com/astrovis/vispart/tablestore"
)

func main() {
	logger := slog.New(slog.NewJSONHandler(os.Stdout, nil))
	if len(os.Args) != 2 {
		logger.Error("usage: vispart <config-file>")
		os.Exit(1)
	}

	if err := run(context.Background(), logger, os.Args[1]); err != nil {
		logger.Error("conversion failed", slog.String("error", errs.ErrorWithStack(err)))
		os.Exit(1)
	}
}

// run converts one table store: load the config, mirror the store
// locally when it lives in a bucket, attach the redis registry when one
// is configured and hand everything to the converter.
func run(ctx context.Context, logger *slog.Logger, configPath string) error {
	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}

	storeDir := cfg.StorePath
	if cfg.ObjectStore.Bucket != "" {
		storeDir, err = fetchRemoteStore(ctx, logger, cfg)
		if err != nil {
			return errs.Wrap(err)
		}
	}

	var registry storage.IConversionRegistry
	if cfg.Registry.Address != "" {
		conversionRegistry, err := storage.NewConversionRegistry(ctx, logger, storage.ConversionRegistryOptions{
			Address:   cfg.Registry.Address,
			Password:  cfg.Registry.Password,
			KeyPrefix: cfg.Registry.KeyPrefix,
		})
		if err != nil {
			return errs.Wrap(err)
		}
		registry = conversionRegistry
	}

	pool := memory.NewGoAllocator()
	store := tablestore.NewDirStore(pool, storeDir)

	conv := converter.NewConverter(logger, pool, store, registry, converter.Options{
		StorePath:        cfg.StoreLocation(),
		Scheme:           elements.PartitionScheme(cfg.Scheme),
		Layout:           elements.Layout(cfg.Layout),
		Chunks:           cfg.Chunks.ChunkSpec(),
		ManifestEncoding: cfg.Registry.ManifestEncoding,
	})
	result, err := conv.Convert(ctx)
	if err != nil {
		return errs.Wrap(err)
	}

	for key, ds := range result.Partitions {
		summary := ds.Summary()
		logger.Info("partition",
			slog.String("key", key.String()),
			slog.String("spwName", summary.SpwName),
			slog.Any("shape", ds.Vis.Shape),
			slog.Any("chunks", ds.Chunks),
			slog.Int("numRows", ds.NumRows()),
		)
	}
	logger.Info(
		"conversion complete",
		slog.String("runId", result.RunID),
		slog.Int("numPartitions", len(result.Partitions)),
	)
	return nil
}

// fetchRemoteStore mirrors the configured bucket prefix into the cache
// directory and returns the local path the table store can read.
func fetchRemoteStore(ctx context.Context, logger *slog.Logger, cfg *config.Config) (string, error) {
	cacheDir := cfg.ObjectStore.CacheDir
	if cacheDir == "" {
		dir, err := os.MkdirTemp("", "vispart-store-")
		if err != nil {
			return "", err
		}
		cacheDir = dir
	}

	objectStorage, err := storage.NewObjectStorage(ctx, logger, *storage.NewObjectStorageOptionsFromStaticCredentials(
		cfg.ObjectStore.Endpoint,
		cfg.ObjectStore.Region,
		cfg.ObjectStore.AuthKey,
		cfg.ObjectStore.AuthSecret,
		cfg.ObjectStore.UsePathStyle,
	))
	if err != nil {
		return "", err
	}

	if err := objectStorage.DownloadTableStore(ctx, cfg.ObjectStore.Bucket, cfg.ObjectStore.Prefix, cacheDir); err != nil {
		return "", err
	}
	return cacheDir, nil
}
