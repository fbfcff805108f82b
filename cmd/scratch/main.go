package main

import (
	"context"
	"log/slog"
	"os"

	"github.com/apache/arrow/go/v17/arrow"
	"github.com/apache/arrow/go/v17/arrow/array"
	"github.com/apache/arrow/go/v17/arrow/memory"

	"github.com/alekLukanen/errs"

	"github.com/astrovis/vispart/converter"
	"github.com/astrovis/vispart/elements"
	"github.com/astrovis/vispart/tablestore"
)

func main() {

	ConvertSampleStore()

}

func ConvertSampleStore() {
	logger := slog.New(slog.NewJSONHandler(os.Stdout, nil))
	logger.Info("Running vispart Scratch")

	ctx := context.Background()
	pool := memory.NewGoAllocator()

	store := BuildSampleStore(pool)
	defer store.Release()

	conv := converter.NewConverter(
		logger,
		pool,
		store,
		nil,
		converter.Options{
			StorePath: "scratch://sample",
			Scheme:    elements.SchemeByConfiguration,
			Layout:    elements.LayoutExpanded,
			Chunks:    elements.AutoChunks(),
		},
	)

	result, err := conv.Convert(ctx)
	if err != nil {
		logger.Error("conversion failed", slog.String("error", errs.ErrorWithStack(err)))
		return
	}

	logger.Info("conversion complete",
		slog.String("runId", result.RunID),
		slog.Int("partitions", len(result.Partitions)),
		slog.Any("consumedTables", result.ConsumedTables),
	)

	for key, ds := range result.Partitions {
		summary := ds.Summary()
		logger.Info("partition",
			slog.String("key", key.String()),
			slog.String("spwName", summary.SpwName),
			slog.Any("polarizationSetup", summary.PolarizationSetup),
			slog.Any("shape", ds.Vis.Shape),
			slog.Any("chunks", ds.Chunks),
			slog.Int("numRows", ds.NumRows()),
		)
	}

	logger.Info("vispart Scratch Complete")
}

// addTable hands a freshly built record to the store and drops the
// builder's reference, leaving the store as the record's only owner.
func addTable(store *tablestore.MemStore, name string, record arrow.Record) {
	store.AddTable(name, record)
	record.Release()
}

// BuildSampleStore assembles a small two-window observation in memory:
// three antennas, two spectral windows with 4 and 2 channels, and six
// main-table rows spread over two integrations.
func BuildSampleStore(pool *memory.GoAllocator) *tablestore.MemStore {
	store := tablestore.NewMemStore(pool)

	addTable(store, tablestore.AntennaTable, buildAntennaRecord(pool))
	addTable(store, tablestore.SpectralWindowTable, buildSpectralWindowRecord(pool))
	addTable(store, tablestore.PolarizationTable, buildPolarizationRecord(pool))
	addTable(store, tablestore.DataDescriptionTable, buildDataDescriptionRecord(pool))
	addTable(store, tablestore.StateTable, buildStateRecord(pool))
	addTable(store, tablestore.MainTable, buildMainRecord(pool))

	return store
}

func buildAntennaRecord(pool *memory.GoAllocator) arrow.Record {
	schema := arrow.NewSchema(
		[]arrow.Field{
			{Name: tablestore.ColName, Type: &arrow.StringType{}},
			{Name: tablestore.ColMount, Type: &arrow.StringType{}},
		}, nil,
	)
	recBuilder := array.NewRecordBuilder(pool, schema)
	defer recBuilder.Release()

	recBuilder.Field(0).(*array.StringBuilder).AppendValues([]string{"ea01", "ea02", "ea03"}, nil)
	recBuilder.Field(1).(*array.StringBuilder).AppendValues([]string{"ALT-AZ", "ALT-AZ", "ALT-AZ"}, nil)

	return recBuilder.NewRecord()
}

func buildSpectralWindowRecord(pool *memory.GoAllocator) arrow.Record {
	schema := arrow.NewSchema(
		[]arrow.Field{
			{Name: tablestore.ColName, Type: &arrow.StringType{}},
			{Name: tablestore.ColChanFreq, Type: arrow.ListOf(&arrow.Float64Type{})},
			{Name: tablestore.ColRefFreq, Type: &arrow.Float64Type{}},
			{Name: tablestore.ColMeasFreqRef, Type: &arrow.StringType{}},
		}, nil,
	)
	recBuilder := array.NewRecordBuilder(pool, schema)
	defer recBuilder.Release()

	recBuilder.Field(0).(*array.StringBuilder).AppendValues([]string{"WINDOW_0", "WINDOW_1"}, nil)

	chanFreq := recBuilder.Field(1).(*array.ListBuilder)
	freqValues := chanFreq.ValueBuilder().(*array.Float64Builder)
	chanFreq.Append(true)
	freqValues.AppendValues([]float64{1.40e9, 1.41e9, 1.42e9, 1.43e9}, nil)
	chanFreq.Append(true)
	freqValues.AppendValues([]float64{2.20e9, 2.21e9}, nil)

	recBuilder.Field(2).(*array.Float64Builder).AppendValues([]float64{1.40e9, 2.20e9}, nil)
	recBuilder.Field(3).(*array.StringBuilder).AppendValues([]string{"TOPO", "TOPO"}, nil)

	return recBuilder.NewRecord()
}

func buildPolarizationRecord(pool *memory.GoAllocator) arrow.Record {
	schema := arrow.NewSchema(
		[]arrow.Field{
			{Name: tablestore.ColCorrType, Type: arrow.ListOf(&arrow.StringType{})},
		}, nil,
	)
	recBuilder := array.NewRecordBuilder(pool, schema)
	defer recBuilder.Release()

	corrType := recBuilder.Field(0).(*array.ListBuilder)
	corrValues := corrType.ValueBuilder().(*array.StringBuilder)
	corrType.Append(true)
	corrValues.AppendValues([]string{"XX", "YY"}, nil)

	return recBuilder.NewRecord()
}

func buildDataDescriptionRecord(pool *memory.GoAllocator) arrow.Record {
	schema := arrow.NewSchema(
		[]arrow.Field{
			{Name: tablestore.ColSpwID, Type: &arrow.Int32Type{}},
			{Name: tablestore.ColPolID, Type: &arrow.Int32Type{}},
		}, nil,
	)
	recBuilder := array.NewRecordBuilder(pool, schema)
	defer recBuilder.Release()

	recBuilder.Field(0).(*array.Int32Builder).AppendValues([]int32{0, 1}, nil)
	recBuilder.Field(1).(*array.Int32Builder).AppendValues([]int32{0, 0}, nil)

	return recBuilder.NewRecord()
}

func buildStateRecord(pool *memory.GoAllocator) arrow.Record {
	schema := arrow.NewSchema(
		[]arrow.Field{
			{Name: tablestore.ColObsMode, Type: &arrow.StringType{}},
			{Name: tablestore.ColSubScan, Type: &arrow.Int32Type{}},
		}, nil,
	)
	recBuilder := array.NewRecordBuilder(pool, schema)
	defer recBuilder.Release()

	recBuilder.Field(0).(*array.StringBuilder).AppendValues(
		[]string{"OBSERVE_TARGET#ON_SOURCE", "CALIBRATE_PHASE#ON_SOURCE"}, nil,
	)
	recBuilder.Field(1).(*array.Int32Builder).AppendValues([]int32{1, 1}, nil)

	return recBuilder.NewRecord()
}

func buildMainRecord(pool *memory.GoAllocator) arrow.Record {
	schema := arrow.NewSchema(
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
	recBuilder := array.NewRecordBuilder(pool, schema)
	defer recBuilder.Release()

	recBuilder.Field(0).(*array.Float64Builder).AppendValues(
		[]float64{100., 100., 100., 110., 110., 110.}, nil,
	)
	recBuilder.Field(1).(*array.Int32Builder).AppendValues([]int32{0, 0, 0, 0, 0, 0}, nil)
	recBuilder.Field(2).(*array.Int32Builder).AppendValues([]int32{1, 2, 1, 1, 2, 1}, nil)
	recBuilder.Field(3).(*array.Int32Builder).AppendValues([]int32{0, 0, 1, 0, 0, 1}, nil)
	recBuilder.Field(4).(*array.Int32Builder).AppendValues([]int32{1, 1, 1, 1, 1, 1}, nil)
	recBuilder.Field(5).(*array.Int32Builder).AppendValues([]int32{0, 0, 0, 0, 0, 0}, nil)

	vis := recBuilder.Field(6).(*array.ListBuilder)
	visValues := vis.ValueBuilder().(*array.Float32Builder)
	for row := 0; row < 6; row++ {
		numChan := 4
		if row == 2 || row == 5 {
			numChan = 2
		}
		vis.Append(true)
		for sample := 0; sample < numChan*2; sample++ {
			visValues.AppendValues([]float32{float32(row + 1), float32(-(row + 1))}, nil)
		}
	}

	return recBuilder.NewRecord()
}
