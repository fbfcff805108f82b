package converter

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"

	"github.com/apache/arrow/go/v17/arrow"
	"github.com/apache/arrow/go/v17/arrow/array"
	"github.com/apache/arrow/go/v17/arrow/memory"
	"github.com/stretchr/testify/mock"

	"github.com/astrovis/vispart/elements"
	"github.com/astrovis/vispart/operations"
	"github.com/astrovis/vispart/storage"
	"github.com/astrovis/vispart/tablestore"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// addTable hands a freshly built record to the store and drops the
// builder's reference, leaving the store as the record's only owner.
func addTable(store *tablestore.MemStore, name string, record arrow.Record) {
	store.AddTable(name, record)
	record.Release()
}

// buildConversionStore assembles a single-window store with two main
// rows sharing one integration.
func buildConversionStore(mem *memory.GoAllocator) *tablestore.MemStore {
	store := tablestore.NewMemStore(mem)

	antennaSchema := arrow.NewSchema(
		[]arrow.Field{
			{Name: tablestore.ColName, Type: &arrow.StringType{}},
			{Name: tablestore.ColMount, Type: &arrow.StringType{}},
		}, nil,
	)
	antennaBldr := array.NewRecordBuilder(mem, antennaSchema)
	antennaBldr.Field(0).(*array.StringBuilder).AppendValues([]string{"ea01", "ea02", "ea03"}, nil)
	antennaBldr.Field(1).(*array.StringBuilder).AppendValues([]string{"ALT-AZ", "ALT-AZ", "ALT-AZ"}, nil)
	addTable(store, tablestore.AntennaTable, antennaBldr.NewRecord())
	antennaBldr.Release()

	spwSchema := arrow.NewSchema(
		[]arrow.Field{
			{Name: tablestore.ColName, Type: &arrow.StringType{}},
			{Name: tablestore.ColChanFreq, Type: arrow.ListOf(&arrow.Float64Type{})},
			{Name: tablestore.ColRefFreq, Type: &arrow.Float64Type{}},
			{Name: tablestore.ColMeasFreqRef, Type: &arrow.StringType{}},
		}, nil,
	)
	spwBldr := array.NewRecordBuilder(mem, spwSchema)
	spwBldr.Field(0).(*array.StringBuilder).AppendValues([]string{"WINDOW_0"}, nil)
	freqBldr := spwBldr.Field(1).(*array.ListBuilder)
	freqBldr.Append(true)
	freqBldr.ValueBuilder().(*array.Float64Builder).AppendValues([]float64{1.4e9, 1.5e9}, nil)
	spwBldr.Field(2).(*array.Float64Builder).AppendValues([]float64{1.4e9}, nil)
	spwBldr.Field(3).(*array.StringBuilder).AppendValues([]string{"TOPO"}, nil)
	addTable(store, tablestore.SpectralWindowTable, spwBldr.NewRecord())
	spwBldr.Release()

	polSchema := arrow.NewSchema(
		[]arrow.Field{
			{Name: tablestore.ColCorrType, Type: arrow.ListOf(&arrow.StringType{})},
		}, nil,
	)
	polBldr := array.NewRecordBuilder(mem, polSchema)
	corrBldr := polBldr.Field(0).(*array.ListBuilder)
	corrBldr.Append(true)
	corrBldr.ValueBuilder().(*array.StringBuilder).AppendValues([]string{"XX", "YY"}, nil)
	addTable(store, tablestore.PolarizationTable, polBldr.NewRecord())
	polBldr.Release()

	ddiSchema := arrow.NewSchema(
		[]arrow.Field{
			{Name: tablestore.ColSpwID, Type: &arrow.Int32Type{}},
			{Name: tablestore.ColPolID, Type: &arrow.Int32Type{}},
		}, nil,
	)
	ddiBldr := array.NewRecordBuilder(mem, ddiSchema)
	ddiBldr.Field(0).(*array.Int32Builder).AppendValues([]int32{0}, nil)
	ddiBldr.Field(1).(*array.Int32Builder).AppendValues([]int32{0}, nil)
	addTable(store, tablestore.DataDescriptionTable, ddiBldr.NewRecord())
	ddiBldr.Release()

	mainSchema := arrow.NewSchema(
		[]arrow.Field{
			{Name: tablestore.ColTime, Type: &arrow.Float64Type{}},
			{Name: tablestore.ColAntenna1, Type: &arrow.Int32Type{}},
			{Name: tablestore.ColAntenna2, Type: &arrow.Int32Type{}},
			{Name: tablestore.ColDataDescID, Type: &arrow.Int32Type{}},
			{Name: tablestore.ColScanNumber, Type: &arrow.Int32Type{}},
			{Name: tablestore.ColStateID, Type: &arrow.Int32Type{}},
			{Name: tablestore.ColVis, Type: arrow.ListOf(&arrow.Float32Type{})},
		}, nil,
	)
	mainBldr := array.NewRecordBuilder(mem, mainSchema)
	mainBldr.Field(0).(*array.Float64Builder).AppendValues([]float64{100, 100}, nil)
	mainBldr.Field(1).(*array.Int32Builder).AppendValues([]int32{0, 0}, nil)
	mainBldr.Field(2).(*array.Int32Builder).AppendValues([]int32{1, 2}, nil)
	mainBldr.Field(3).(*array.Int32Builder).AppendValues([]int32{0, 0}, nil)
	mainBldr.Field(4).(*array.Int32Builder).AppendValues([]int32{1, 1}, nil)
	mainBldr.Field(5).(*array.Int32Builder).AppendValues([]int32{0, 0}, nil)
	visBldr := mainBldr.Field(6).(*array.ListBuilder)
	visValues := visBldr.ValueBuilder().(*array.Float32Builder)
	for row := 0; row < 2; row++ {
		visBldr.Append(true)
		// 2 channels x 2 polarizations, interleaved re/im
		for sample := 0; sample < 4; sample++ {
			visValues.Append(float32(row + 1))
			visValues.Append(float32(-(row + 1)))
		}
	}
	addTable(store, tablestore.MainTable, mainBldr.NewRecord())
	mainBldr.Release()

	return store
}

func TestConverterWithoutRegistry(t *testing.T) {
	ctx := context.Background()
	mem := memory.NewGoAllocator()

	store := buildConversionStore(mem)
	defer store.Release()

	conv := NewConverter(testLogger(), mem, store, nil, Options{
		StorePath: "/data/obs.store",
		Scheme:    elements.SchemeByConfiguration,
		Layout:    elements.LayoutExpanded,
		Chunks:    elements.AutoChunks(),
	})

	result, err := conv.Convert(ctx)
	if err != nil {
		t.Fatalf("Convert failed: %v", err)
	}
	if result.RunID == "" {
		t.Error("run id not set")
	}
	if len(result.Partitions) != 1 {
		t.Fatalf("expected 1 partition, got %d", len(result.Partitions))
	}

	ds := result.Partitions[elements.PartitionKey{SpwID: 0, PolSetupID: 0, Scan: -1, State: -1}]
	if ds == nil {
		t.Fatal("missing partition spw=0/pol=0")
	}
	if ds.NumRows() != 2 {
		t.Errorf("partition consumed %d rows, expected 2", ds.NumRows())
	}
	if ds.Info.SpwName != "WINDOW_0" {
		t.Errorf("partition spw name = %q", ds.Info.SpwName)
	}
}

func TestConverterPublishesManifests(t *testing.T) {
	ctx := context.Background()
	mem := memory.NewGoAllocator()

	store := buildConversionStore(mem)
	defer store.Release()

	lock := &MockLock{}
	registry := &MockConversionRegistry{}
	registry.On("ClaimConversion", mock.Anything, "/data/obs.store", mock.Anything).Return(lock, nil)
	registry.On("ReleaseConversionLock", mock.Anything, lock).Return(true, nil)
	registry.On("AddPartitionManifests", mock.Anything, mock.Anything, mock.Anything).Return(int64(1), nil)
	registry.On("SetConversionTimestamp", mock.Anything, mock.Anything).Return(true, nil)

	conv := NewConverter(testLogger(), mem, store, registry, Options{
		StorePath: "/data/obs.store",
		Scheme:    elements.SchemeByConfiguration,
		Layout:    elements.LayoutExpanded,
		Chunks:    elements.AutoChunks(),
	})

	result, err := conv.Convert(ctx)
	if err != nil {
		t.Fatalf("Convert failed: %v", err)
	}
	registry.AssertExpectations(t)

	// the published manifest decodes back to the emitted partition
	var manifests [][]byte
	for _, call := range registry.Calls {
		if call.Method == "AddPartitionManifests" {
			manifests = call.Arguments.Get(2).([][]byte)
		}
	}
	if len(manifests) != 1 {
		t.Fatalf("expected 1 manifest, got %d", len(manifests))
	}
	codec, err := operations.NewManifestCodec("avro")
	if err != nil {
		t.Fatalf("NewManifestCodec failed: %v", err)
	}
	manifest, err := codec.Unmarshal(manifests[0])
	if err != nil {
		t.Fatalf("manifest Unmarshal failed: %v", err)
	}
	if manifest.RunID != result.RunID {
		t.Errorf("manifest run id = %q, expected %q", manifest.RunID, result.RunID)
	}
	if manifest.Key != "spw=0/pol=0" || manifest.NumRows != 2 {
		t.Errorf("manifest = %+v", manifest)
	}
}

func TestConverterLockedStore(t *testing.T) {
	ctx := context.Background()
	mem := memory.NewGoAllocator()

	store := buildConversionStore(mem)
	defer store.Release()

	registry := &MockConversionRegistry{}
	registry.On("ClaimConversion", mock.Anything, mock.Anything, mock.Anything).
		Return(nil, storage.ErrConversionLocked)

	conv := NewConverter(testLogger(), mem, store, registry, Options{
		StorePath: "/data/obs.store",
		Scheme:    elements.SchemeByConfiguration,
		Layout:    elements.LayoutExpanded,
		Chunks:    elements.AutoChunks(),
	})

	if _, err := conv.Convert(ctx); !errors.Is(err, storage.ErrConversionLocked) {
		t.Errorf("expected ErrConversionLocked, got %v", err)
	}
	registry.AssertNotCalled(t, "AddPartitionManifests", mock.Anything, mock.Anything, mock.Anything)
}

func TestConverterValidatesBeforeLocking(t *testing.T) {
	ctx := context.Background()
	mem := memory.NewGoAllocator()

	registry := &MockConversionRegistry{}
	conv := NewConverter(testLogger(), mem, nil, registry, Options{
		StorePath: "/data/obs.store",
		Scheme:    elements.PartitionScheme("bogus"),
		Layout:    elements.LayoutExpanded,
		Chunks:    elements.AutoChunks(),
	})

	if _, err := conv.Convert(ctx); !errors.Is(err, elements.ErrConfiguration) {
		t.Errorf("expected ErrConfiguration, got %v", err)
	}
	registry.AssertNotCalled(t, "ClaimConversion", mock.Anything, mock.Anything, mock.Anything)
}
