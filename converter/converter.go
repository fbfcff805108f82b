package converter

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/alekLukanen/errs"
	"github.com/apache/arrow/go/v17/arrow/memory"
	"github.com/google/uuid"

	"github.com/astrovis/vispart/elements"
	"github.com/astrovis/vispart/operations"
	"github.com/astrovis/vispart/partitions"
	"github.com/astrovis/vispart/storage"
	"github.com/astrovis/vispart/subtables"
	"github.com/astrovis/vispart/tablestore"
)

type Options struct {
	// StorePath identifies the store in locks and manifests
	StorePath string

	Scheme elements.PartitionScheme
	Layout elements.Layout
	Chunks elements.ChunkSpec
	RowMap map[int32]partitions.RowChanSelection

	LockDuration     time.Duration
	ManifestEncoding string
}

// Result of one conversion run.
type Result struct {
	RunID          string
	Partitions     map[elements.PartitionKey]*elements.Dataset
	Subtables      *subtables.Collection
	ConsumedTables []string
}

// Converter runs a full conversion pass over one table store: partition
// resolution, payload reorganization, coordinate assembly, finalization
// and, when a registry is attached, manifest publication behind the
// store's conversion lock.
type Converter struct {
	logger    *slog.Logger
	allocator *memory.GoAllocator

	store    tablestore.ITableStore
	registry storage.IConversionRegistry

	options Options
}

func NewConverter(
	logger *slog.Logger,
	allocator *memory.GoAllocator,
	store tablestore.ITableStore,
	registry storage.IConversionRegistry,
	options Options,
) *Converter {
	if options.LockDuration == 0 {
		options.LockDuration = 5 * time.Minute
	}
	return &Converter{
		logger:    logger,
		allocator: allocator,
		store:     store,
		registry:  registry,
		options:   options,
	}
}

func (obj *Converter) Convert(ctx context.Context) (*Result, error) {
	if err := obj.options.Scheme.Validate(); err != nil {
		return nil, err
	}
	if err := obj.options.Layout.Validate(); err != nil {
		return nil, err
	}
	if err := obj.options.Chunks.Validate(); err != nil {
		return nil, err
	}

	runID := uuid.NewString()
	obj.logger.Info(
		"starting conversion",
		slog.String("runId", runID),
		slog.String("store", obj.options.StorePath),
		slog.String("scheme", string(obj.options.Scheme)),
	)

	var lock storage.ILock
	if obj.registry != nil {
		var err error
		lock, err = obj.registry.ClaimConversion(ctx, obj.options.StorePath, obj.options.LockDuration)
		if err != nil {
			return nil, errs.Wrap(err)
		}
		defer func() {
			if _, unlockErr := obj.registry.ReleaseConversionLock(ctx, lock); unlockErr != nil {
				obj.logger.Error("failed to release conversion lock", slog.String("error", unlockErr.Error()))
			}
		}()
	}

	readResult, err := partitions.ReadPartitions(ctx, obj.logger, obj.allocator, obj.store, partitions.ReadOptions{
		Scheme: obj.options.Scheme,
		Layout: obj.options.Layout,
		Chunks: obj.options.Chunks,
		RowMap: obj.options.RowMap,
	})
	if err != nil {
		return nil, errs.Wrap(err)
	}

	parts := partitions.FinalizePartitions(readResult.Partitions, readResult.Subtables)

	if obj.registry != nil {
		if err := obj.registerManifests(ctx, runID, parts); err != nil {
			return nil, errs.Wrap(err)
		}
	}

	obj.logger.Info(
		"conversion finished",
		slog.String("runId", runID),
		slog.Int("numPartitions", len(parts)),
	)
	return &Result{
		RunID:          runID,
		Partitions:     parts,
		Subtables:      readResult.Subtables,
		ConsumedTables: readResult.ConsumedTables,
	}, nil
}

func (obj *Converter) registerManifests(
	ctx context.Context,
	runID string,
	parts map[elements.PartitionKey]*elements.Dataset,
) error {
	if len(parts) == 0 {
		return nil
	}

	codec, err := operations.NewManifestCodec(obj.options.ManifestEncoding)
	if err != nil {
		return err
	}

	encoded := make([][]byte, 0, len(parts))
	for _, ds := range parts {
		manifest := operations.BuildManifest(runID, obj.options.StorePath, ds)
		data, err := codec.Marshal(manifest)
		if err != nil {
			return errs.Wrap(err, fmt.Errorf("partition %s", ds.Key))
		}
		encoded = append(encoded, data)
	}

	if _, err := obj.registry.AddPartitionManifests(ctx, runID, encoded); err != nil {
		return err
	}
	if _, err := obj.registry.SetConversionTimestamp(ctx, runID); err != nil {
		return err
	}
	return nil
}
