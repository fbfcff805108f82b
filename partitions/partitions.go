package partitions

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/alekLukanen/errs"
	"github.com/apache/arrow/go/v17/arrow/memory"

	"github.com/astrovis/vispart/elements"
	"github.com/astrovis/vispart/subtables"
	"github.com/astrovis/vispart/tablestore"
)

// ReadOptions configures one partitioning pass over a table store.
type ReadOptions struct {
	Scheme elements.PartitionScheme
	Layout elements.Layout
	Chunks elements.ChunkSpec

	// RowMap optionally restricts rows/channels per data-description id.
	// Only honored for SchemeByConfiguration, matching the selection
	// granularity of that scheme.
	RowMap map[int32]RowChanSelection
}

// Result is the outcome of a partitioning pass: partitions by key, the
// shared subtable collection, and the names of subtables consumed.
// Iteration order of Partitions carries no meaning; only key lookup does.
type Result struct {
	Partitions     map[elements.PartitionKey]*elements.Dataset
	Subtables      *subtables.Collection
	ConsumedTables []string
}

// ReadConfigurationPartitions partitions the main table by instrument
// configuration: one partition per distinct (spectral window,
// polarization setup) pair in use.
func ReadConfigurationPartitions(
	ctx context.Context,
	logger *slog.Logger,
	allocator *memory.GoAllocator,
	store tablestore.ITableStore,
	options ReadOptions,
) (*Result, error) {
	options.Scheme = elements.SchemeByConfiguration
	return ReadPartitions(ctx, logger, allocator, store, options)
}

// ReadScanPartitions partitions the main table by intent, scan, or
// scan/sub-scan on top of the instrument configuration.
func ReadScanPartitions(
	ctx context.Context,
	logger *slog.Logger,
	allocator *memory.GoAllocator,
	store tablestore.ITableStore,
	options ReadOptions,
) (*Result, error) {
	switch options.Scheme {
	case elements.SchemeByIntent, elements.SchemeByScan, elements.SchemeByScanSubscan:
	default:
		return nil, fmt.Errorf(
			"%w| scheme %q does not split scans", elements.ErrConfiguration, string(options.Scheme),
		)
	}
	return ReadPartitions(ctx, logger, allocator, store, options)
}

// ReadPartitions runs one partitioning pass: resolve the distinct
// partition identifiers, read and reorganize each partition's rows,
// assemble its coordinates and key it into the result. Structural and
// configuration errors abort the pass; a failed coordinate join skips
// only the affected partition with a logged warning.
func ReadPartitions(
	ctx context.Context,
	logger *slog.Logger,
	allocator *memory.GoAllocator,
	store tablestore.ITableStore,
	options ReadOptions,
) (*Result, error) {
	// configuration problems surface before any table I/O
	if err := options.Scheme.Validate(); err != nil {
		return nil, err
	}
	if err := options.Layout.Validate(); err != nil {
		return nil, err
	}
	if err := options.Chunks.Validate(); err != nil {
		return nil, err
	}

	subts, err := subtables.Load(ctx, allocator, store)
	if err != nil {
		return nil, errs.Wrap(err)
	}

	ids, err := ResolvePartitionIds(ctx, allocator, store, subts, options.Scheme)
	if err != nil {
		return nil, errs.Wrap(err)
	}

	mainRecord, err := store.ReadTable(ctx, tablestore.MainTable, nil)
	if err != nil {
		return nil, errs.Wrap(err)
	}
	defer mainRecord.Release()

	spwNames := subts.SpwNamesByDataDesc()
	parts := make(map[elements.PartitionKey]*elements.Dataset)
	for i := 0; i < ids.Len(); i++ {
		ddi := ids.DataDescID[i]
		spwID, polSetupID, err := subts.ConfigurationIDs(ddi)
		if err != nil {
			return nil, err
		}

		spec := PartitionSpec{
			DataDescID: ddi,
			Scan:       ids.Scan[i],
			State:      ids.State[i],
			NumChan:    len(subts.SpectralWindow.ChanFreq[spwID]),
			NumPol:     len(subts.Polarization.CorrTypes[polSetupID]),
		}

		var intent string
		var scanState *elements.ScanState
		switch options.Scheme {
		case elements.SchemeByIntent:
			intent = ids.Intents[i]
			spec.Intent = intent
			spec.StateIDs = ids.StateIDs[i]
			spec.Scan = -1
			spec.State = -1
		case elements.SchemeByScan:
			scanState = &elements.ScanState{Scan: ids.Scan[i], State: -1}
			spec.State = -1
		case elements.SchemeByScanSubscan:
			scanState = &elements.ScanState{Scan: ids.Scan[i], State: ids.State[i]}
		}

		var subset *RowChanSelection
		if options.Scheme == elements.SchemeByConfiguration {
			if selection, ok := options.RowMap[ddi]; ok {
				subset = &selection
			}
		}

		ds, err := ReadMainTablePartition(allocator, mainRecord, spec, options.Layout, subset, options.Chunks)
		if err != nil {
			return nil, errs.Wrap(err, fmt.Errorf("data description %d", ddi))
		}
		if ds == nil {
			// zero-row selections are never emitted
			continue
		}

		ds.Info.SpwID = spwID
		ds.Info.PolSetupID = polSetupID
		ds.Info.SpwName = spwNames[ddi]

		if err := AssembleCoordinates(ds, subts); err != nil {
			if errors.Is(err, elements.ErrLookup) {
				logger.Warn(
					"skipping partition with unresolvable coordinates",
					slog.Int("dataDescId", int(ddi)),
					slog.String("error", err.Error()),
				)
				continue
			}
			return nil, errs.Wrap(err)
		}

		if options.Scheme == elements.SchemeByIntent {
			scanSubscanIntents := SplitIntents(intent)
			ds.Info.Intents = &scanSubscanIntents
		}

		key, err := elements.MakePartitionKey(spwID, polSetupID, options.Scheme, intent, scanState)
		if err != nil {
			return nil, errs.Wrap(err)
		}
		ds.Key = key
		parts[key] = ds
	}

	return &Result{
		Partitions:     parts,
		Subtables:      subts,
		ConsumedTables: subts.ConsumedNames(),
	}, nil
}
