package partitions

import (
	"github.com/apache/arrow/go/v17/arrow"
	"github.com/apache/arrow/go/v17/arrow/array"
	"github.com/apache/arrow/go/v17/arrow/memory"

	"github.com/astrovis/vispart/subtables"
	"github.com/astrovis/vispart/tablestore"
)

// addTable hands a freshly built record to the store and drops the
// builder's reference, leaving the store as the record's only owner.
func addTable(store *tablestore.MemStore, name string, record arrow.Record) {
	store.AddTable(name, record)
	record.Release()
}

// mainRowSpec describes one synthetic main-table row for tests.
type mainRowSpec struct {
	time     float64
	antenna1 int32
	antenna2 int32
	ddi      int32
	scan     int32
	state    int32
	vis      []complex64
}

// constVis fills a (channel, polarization) payload with a single value.
func constVis(numChan, numPol int, value complex64) []complex64 {
	vis := make([]complex64, numChan*numPol)
	for i := range vis {
		vis[i] = value
	}
	return vis
}

func buildMainRecord(mem *memory.GoAllocator, rows []mainRowSpec) arrow.Record {
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
	recBldr := array.NewRecordBuilder(mem, schema)
	defer recBldr.Release()

	visBldr := recBldr.Field(6).(*array.ListBuilder)
	visValues := visBldr.ValueBuilder().(*array.Float32Builder)
	for _, row := range rows {
		recBldr.Field(0).(*array.Float64Builder).Append(row.time)
		recBldr.Field(1).(*array.Int32Builder).Append(row.antenna1)
		recBldr.Field(2).(*array.Int32Builder).Append(row.antenna2)
		recBldr.Field(3).(*array.Int32Builder).Append(row.ddi)
		recBldr.Field(4).(*array.Int32Builder).Append(row.scan)
		recBldr.Field(5).(*array.Int32Builder).Append(row.state)
		visBldr.Append(true)
		for _, sample := range row.vis {
			visValues.Append(real(sample))
			visValues.Append(imag(sample))
		}
	}
	return recBldr.NewRecord()
}

// testSubtables assembles a small in-memory subtable collection: three
// antennas, two spectral windows (4 and 2 channels), one two-polarization
// setup, and two data descriptions pointing at the two windows.
func testSubtables() *subtables.Collection {
	return &subtables.Collection{
		Antenna: &subtables.AntennaTable{
			Names:  []string{"ea01", "ea02", "ea03"},
			Mounts: []string{"ALT-AZ", "ALT-AZ", "ALT-AZ"},
		},
		SpectralWindow: &subtables.SpectralWindowTable{
			Names: []string{"WINDOW_0", "WINDOW_1"},
			ChanFreq: [][]float64{
				{1.40e9, 1.41e9, 1.42e9, 1.43e9},
				{2.20e9, 2.21e9},
			},
			RefFreq: []float64{1.40e9, 2.20e9},
			Frames:  []string{"TOPO", "TOPO"},
		},
		Polarization: &subtables.PolarizationTable{
			CorrTypes: [][]string{{"XX", "YY"}},
		},
		DataDescription: &subtables.DataDescriptionTable{
			SpectralWindowIDs: []int32{0, 1},
			PolarizationIDs:   []int32{0, 0},
		},
		State: &subtables.StateTable{
			ObsModes: []string{"OBSERVE_TARGET#ON_SOURCE", "CALIBRATE_PHASE#ON_SOURCE"},
			SubScans: []int32{1, 1},
		},
	}
}

func buildAntennaRecord(mem *memory.GoAllocator, names, mounts []string) arrow.Record {
	schema := arrow.NewSchema(
		[]arrow.Field{
			{Name: tablestore.ColName, Type: &arrow.StringType{}},
			{Name: tablestore.ColMount, Type: &arrow.StringType{}},
		}, nil,
	)
	recBldr := array.NewRecordBuilder(mem, schema)
	defer recBldr.Release()
	recBldr.Field(0).(*array.StringBuilder).AppendValues(names, nil)
	recBldr.Field(1).(*array.StringBuilder).AppendValues(mounts, nil)
	return recBldr.NewRecord()
}

func buildSpectralWindowRecord(mem *memory.GoAllocator, names []string, chanFreq [][]float64, refFreq []float64, frames []string) arrow.Record {
	schema := arrow.NewSchema(
		[]arrow.Field{
			{Name: tablestore.ColName, Type: &arrow.StringType{}},
			{Name: tablestore.ColChanFreq, Type: arrow.ListOf(&arrow.Float64Type{})},
			{Name: tablestore.ColRefFreq, Type: &arrow.Float64Type{}},
			{Name: tablestore.ColMeasFreqRef, Type: &arrow.StringType{}},
		}, nil,
	)
	recBldr := array.NewRecordBuilder(mem, schema)
	defer recBldr.Release()
	recBldr.Field(0).(*array.StringBuilder).AppendValues(names, nil)
	freqBldr := recBldr.Field(1).(*array.ListBuilder)
	freqValues := freqBldr.ValueBuilder().(*array.Float64Builder)
	for _, freqs := range chanFreq {
		freqBldr.Append(true)
		freqValues.AppendValues(freqs, nil)
	}
	recBldr.Field(2).(*array.Float64Builder).AppendValues(refFreq, nil)
	recBldr.Field(3).(*array.StringBuilder).AppendValues(frames, nil)
	return recBldr.NewRecord()
}

func buildPolarizationRecord(mem *memory.GoAllocator, corrTypes [][]string) arrow.Record {
	schema := arrow.NewSchema(
		[]arrow.Field{
			{Name: tablestore.ColCorrType, Type: arrow.ListOf(&arrow.StringType{})},
		}, nil,
	)
	recBldr := array.NewRecordBuilder(mem, schema)
	defer recBldr.Release()
	corrBldr := recBldr.Field(0).(*array.ListBuilder)
	corrValues := corrBldr.ValueBuilder().(*array.StringBuilder)
	for _, types := range corrTypes {
		corrBldr.Append(true)
		corrValues.AppendValues(types, nil)
	}
	return recBldr.NewRecord()
}

func buildDataDescriptionRecord(mem *memory.GoAllocator, spwIDs, polIDs []int32) arrow.Record {
	schema := arrow.NewSchema(
		[]arrow.Field{
			{Name: tablestore.ColSpwID, Type: &arrow.Int32Type{}},
			{Name: tablestore.ColPolID, Type: &arrow.Int32Type{}},
		}, nil,
	)
	recBldr := array.NewRecordBuilder(mem, schema)
	defer recBldr.Release()
	recBldr.Field(0).(*array.Int32Builder).AppendValues(spwIDs, nil)
	recBldr.Field(1).(*array.Int32Builder).AppendValues(polIDs, nil)
	return recBldr.NewRecord()
}

func buildStateRecord(mem *memory.GoAllocator, obsModes []string, subScans []int32) arrow.Record {
	schema := arrow.NewSchema(
		[]arrow.Field{
			{Name: tablestore.ColObsMode, Type: &arrow.StringType{}},
			{Name: tablestore.ColSubScan, Type: &arrow.Int32Type{}},
		}, nil,
	)
	recBldr := array.NewRecordBuilder(mem, schema)
	defer recBldr.Release()
	recBldr.Field(0).(*array.StringBuilder).AppendValues(obsModes, nil)
	recBldr.Field(1).(*array.Int32Builder).AppendValues(subScans, nil)
	return recBldr.NewRecord()
}

func buildPointingRecord(mem *memory.GoAllocator, times []float64, antennaIDs []int32, directions [][2]float64) arrow.Record {
	schema := arrow.NewSchema(
		[]arrow.Field{
			{Name: tablestore.ColTime, Type: &arrow.Float64Type{}},
			{Name: tablestore.ColAntennaID, Type: &arrow.Int32Type{}},
			{Name: tablestore.ColDirection, Type: arrow.ListOf(&arrow.Float64Type{})},
		}, nil,
	)
	recBldr := array.NewRecordBuilder(mem, schema)
	defer recBldr.Release()
	recBldr.Field(0).(*array.Float64Builder).AppendValues(times, nil)
	recBldr.Field(1).(*array.Int32Builder).AppendValues(antennaIDs, nil)
	dirBldr := recBldr.Field(2).(*array.ListBuilder)
	dirValues := dirBldr.ValueBuilder().(*array.Float64Builder)
	for _, dir := range directions {
		dirBldr.Append(true)
		dirValues.AppendValues([]float64{dir[0], dir[1]}, nil)
	}
	return recBldr.NewRecord()
}

// buildTestStore assembles the full synthetic store used by the
// end-to-end tests: six main rows over two integrations spanning both
// data descriptions.
func buildTestStore(mem *memory.GoAllocator, rows []mainRowSpec) *tablestore.MemStore {
	store := tablestore.NewMemStore(mem)
	addTable(store, tablestore.AntennaTable, buildAntennaRecord(mem,
		[]string{"ea01", "ea02", "ea03"},
		[]string{"ALT-AZ", "ALT-AZ", "ALT-AZ"},
	))
	addTable(store, tablestore.SpectralWindowTable, buildSpectralWindowRecord(mem,
		[]string{"WINDOW_0", "WINDOW_1"},
		[][]float64{
			{1.40e9, 1.41e9, 1.42e9, 1.43e9},
			{2.20e9, 2.21e9},
		},
		[]float64{1.40e9, 2.20e9},
		[]string{"TOPO", "TOPO"},
	))
	addTable(store, tablestore.PolarizationTable, buildPolarizationRecord(mem, [][]string{{"XX", "YY"}}))
	addTable(store, tablestore.DataDescriptionTable, buildDataDescriptionRecord(mem, []int32{0, 1}, []int32{0, 0}))
	addTable(store, tablestore.StateTable, buildStateRecord(mem,
		[]string{"OBSERVE_TARGET#ON_SOURCE", "CALIBRATE_PHASE#ON_SOURCE"},
		[]int32{1, 1},
	))
	addTable(store, tablestore.MainTable, buildMainRecord(mem, rows))
	return store
}
