package subtables

import (
	"context"
	"fmt"

	"github.com/alekLukanen/errs"
	"github.com/apache/arrow/go/v17/arrow/memory"

	"github.com/astrovis/vispart/arrowops"
	"github.com/astrovis/vispart/elements"
	"github.com/astrovis/vispart/tablestore"
)

// AntennaTable is the row-indexed antenna description table.
type AntennaTable struct {
	Names  []string
	Mounts []string
}

func (obj *AntennaTable) NumRows() int { return len(obj.Names) }

// SpectralWindowTable describes the configured spectral windows. ChanFreq
// holds the channel center frequencies per window.
type SpectralWindowTable struct {
	Names    []string
	ChanFreq [][]float64
	RefFreq  []float64
	Frames   []string
}

func (obj *SpectralWindowTable) NumRows() int { return len(obj.Names) }

// PolarizationTable lists the correlation-type labels per polarization
// setup, e.g. ["XX", "XY", "YX", "YY"].
type PolarizationTable struct {
	CorrTypes [][]string
}

func (obj *PolarizationTable) NumRows() int { return len(obj.CorrTypes) }

// DataDescriptionTable maps data-description ids to their (spectral
// window, polarization setup) pair.
type DataDescriptionTable struct {
	SpectralWindowIDs []int32
	PolarizationIDs   []int32
}

func (obj *DataDescriptionTable) NumRows() int { return len(obj.SpectralWindowIDs) }

// StateTable holds the observing mode per state (sub-scan) id.
type StateTable struct {
	ObsModes []string
	SubScans []int32
}

func (obj *StateTable) NumRows() int { return len(obj.ObsModes) }

// PointingTable holds time- and antenna-indexed pointing directions.
type PointingTable struct {
	Times      []float64
	AntennaIDs []int32
	Directions [][2]float64
}

func (obj *PointingTable) NumRows() int { return len(obj.Times) }

// Collection is the set of auxiliary tables read once per conversion run
// and shared read-only across all partitions. State and Pointing are
// optional and nil when the store does not carry them.
type Collection struct {
	Antenna         *AntennaTable
	SpectralWindow  *SpectralWindowTable
	Polarization    *PolarizationTable
	DataDescription *DataDescriptionTable
	State           *StateTable
	Pointing        *PointingTable

	consumed []string
}

// ConsumedNames lists the subtables read from the store, in read order.
func (obj *Collection) ConsumedNames() []string {
	names := make([]string, len(obj.consumed))
	copy(names, obj.consumed)
	return names
}

// ConfigurationIDs resolves a data-description id to its spectral-window
// and polarization-setup ids, with bounds checks against the loaded
// subtables.
func (obj *Collection) ConfigurationIDs(dataDescID int32) (spwID int32, polSetupID int32, err error) {
	ddi := obj.DataDescription
	if dataDescID < 0 || int(dataDescID) >= ddi.NumRows() {
		return 0, 0, fmt.Errorf("%w| data description id %d outside [0,%d)", elements.ErrSchema, dataDescID, ddi.NumRows())
	}
	spwID = ddi.SpectralWindowIDs[dataDescID]
	polSetupID = ddi.PolarizationIDs[dataDescID]
	if spwID < 0 || int(spwID) >= obj.SpectralWindow.NumRows() {
		return 0, 0, fmt.Errorf("%w| spectral window id %d outside [0,%d)", elements.ErrSchema, spwID, obj.SpectralWindow.NumRows())
	}
	if polSetupID < 0 || int(polSetupID) >= obj.Polarization.NumRows() {
		return 0, 0, fmt.Errorf("%w| polarization id %d outside [0,%d)", elements.ErrSchema, polSetupID, obj.Polarization.NumRows())
	}
	return spwID, polSetupID, nil
}

// SpwNamesByDataDesc maps every data-description id to the name of its
// spectral window.
func (obj *Collection) SpwNamesByDataDesc() map[int32]string {
	names := make(map[int32]string, obj.DataDescription.NumRows())
	for ddi, spwID := range obj.DataDescription.SpectralWindowIDs {
		if int(spwID) < len(obj.SpectralWindow.Names) {
			names[int32(ddi)] = obj.SpectralWindow.Names[spwID]
		}
	}
	return names
}

// Load reads the description subtables needed to define partitions. The
// antenna, spectral-window, polarization and data-description tables are
// required; the state and pointing tables are read when present.
func Load(ctx context.Context, allocator *memory.GoAllocator, store tablestore.ITableStore) (*Collection, error) {
	collection := &Collection{}

	antenna, err := loadAntenna(ctx, allocator, store)
	if err != nil {
		return nil, errs.Wrap(err, fmt.Errorf("table %s", tablestore.AntennaTable))
	}
	collection.Antenna = antenna
	collection.consumed = append(collection.consumed, tablestore.AntennaTable)

	spw, err := loadSpectralWindow(ctx, allocator, store)
	if err != nil {
		return nil, errs.Wrap(err, fmt.Errorf("table %s", tablestore.SpectralWindowTable))
	}
	collection.SpectralWindow = spw
	collection.consumed = append(collection.consumed, tablestore.SpectralWindowTable)

	pol, err := loadPolarization(ctx, allocator, store)
	if err != nil {
		return nil, errs.Wrap(err, fmt.Errorf("table %s", tablestore.PolarizationTable))
	}
	collection.Polarization = pol
	collection.consumed = append(collection.consumed, tablestore.PolarizationTable)

	ddi, err := loadDataDescription(ctx, allocator, store)
	if err != nil {
		return nil, errs.Wrap(err, fmt.Errorf("table %s", tablestore.DataDescriptionTable))
	}
	collection.DataDescription = ddi
	collection.consumed = append(collection.consumed, tablestore.DataDescriptionTable)

	if store.HasTable(ctx, tablestore.StateTable) {
		state, err := loadState(ctx, allocator, store)
		if err != nil {
			return nil, errs.Wrap(err, fmt.Errorf("table %s", tablestore.StateTable))
		}
		collection.State = state
		collection.consumed = append(collection.consumed, tablestore.StateTable)
	}

	if store.HasTable(ctx, tablestore.PointingTable) {
		pointing, err := loadPointing(ctx, allocator, store)
		if err != nil {
			return nil, errs.Wrap(err, fmt.Errorf("table %s", tablestore.PointingTable))
		}
		collection.Pointing = pointing
		collection.consumed = append(collection.consumed, tablestore.PointingTable)
	}

	// every data description row must resolve against the loaded tables
	for ddiID := range collection.DataDescription.SpectralWindowIDs {
		if _, _, err := collection.ConfigurationIDs(int32(ddiID)); err != nil {
			return nil, err
		}
	}

	return collection, nil
}

func loadAntenna(ctx context.Context, allocator *memory.GoAllocator, store tablestore.ITableStore) (*AntennaTable, error) {
	record, err := store.ReadTable(ctx, tablestore.AntennaTable, nil)
	if err != nil {
		return nil, err
	}
	defer record.Release()

	names, err := arrowops.StringColumn(record, tablestore.ColName)
	if err != nil {
		return nil, err
	}
	mounts, err := arrowops.StringColumn(record, tablestore.ColMount)
	if err != nil {
		return nil, err
	}
	return &AntennaTable{Names: names, Mounts: mounts}, nil
}

func loadSpectralWindow(ctx context.Context, allocator *memory.GoAllocator, store tablestore.ITableStore) (*SpectralWindowTable, error) {
	record, err := store.ReadTable(ctx, tablestore.SpectralWindowTable, nil)
	if err != nil {
		return nil, err
	}
	defer record.Release()

	names, err := arrowops.StringColumn(record, tablestore.ColName)
	if err != nil {
		return nil, err
	}
	refFreq, err := arrowops.Float64Column(record, tablestore.ColRefFreq)
	if err != nil {
		return nil, err
	}
	frames, err := arrowops.StringColumn(record, tablestore.ColMeasFreqRef)
	if err != nil {
		return nil, err
	}
	chanFreqList, err := arrowops.ListColumn(record, tablestore.ColChanFreq)
	if err != nil {
		return nil, err
	}
	chanFreq := make([][]float64, len(names))
	for row := range chanFreq {
		chanFreq[row], err = arrowops.ListFloat64Row(chanFreqList, row)
		if err != nil {
			return nil, err
		}
	}
	return &SpectralWindowTable{
		Names:    names,
		ChanFreq: chanFreq,
		RefFreq:  refFreq,
		Frames:   frames,
	}, nil
}

func loadPolarization(ctx context.Context, allocator *memory.GoAllocator, store tablestore.ITableStore) (*PolarizationTable, error) {
	record, err := store.ReadTable(ctx, tablestore.PolarizationTable, nil)
	if err != nil {
		return nil, err
	}
	defer record.Release()

	corrTypeList, err := arrowops.ListColumn(record, tablestore.ColCorrType)
	if err != nil {
		return nil, err
	}
	corrTypes := make([][]string, record.NumRows())
	for row := range corrTypes {
		corrTypes[row], err = arrowops.ListStringRow(corrTypeList, row)
		if err != nil {
			return nil, err
		}
	}
	return &PolarizationTable{CorrTypes: corrTypes}, nil
}

func loadDataDescription(ctx context.Context, allocator *memory.GoAllocator, store tablestore.ITableStore) (*DataDescriptionTable, error) {
	record, err := store.ReadTable(ctx, tablestore.DataDescriptionTable, nil)
	if err != nil {
		return nil, err
	}
	defer record.Release()

	spwIDs, err := arrowops.Int32Column(record, tablestore.ColSpwID)
	if err != nil {
		return nil, err
	}
	polIDs, err := arrowops.Int32Column(record, tablestore.ColPolID)
	if err != nil {
		return nil, err
	}
	return &DataDescriptionTable{
		SpectralWindowIDs: spwIDs,
		PolarizationIDs:   polIDs,
	}, nil
}

func loadState(ctx context.Context, allocator *memory.GoAllocator, store tablestore.ITableStore) (*StateTable, error) {
	record, err := store.ReadTable(ctx, tablestore.StateTable, nil)
	if err != nil {
		return nil, err
	}
	defer record.Release()

	obsModes, err := arrowops.StringColumn(record, tablestore.ColObsMode)
	if err != nil {
		return nil, err
	}
	subScans, err := arrowops.Int32Column(record, tablestore.ColSubScan)
	if err != nil {
		return nil, err
	}
	return &StateTable{ObsModes: obsModes, SubScans: subScans}, nil
}

func loadPointing(ctx context.Context, allocator *memory.GoAllocator, store tablestore.ITableStore) (*PointingTable, error) {
	record, err := store.ReadTable(ctx, tablestore.PointingTable, nil)
	if err != nil {
		return nil, err
	}
	defer record.Release()

	times, err := arrowops.Float64Column(record, tablestore.ColTime)
	if err != nil {
		return nil, err
	}
	antennaIDs, err := arrowops.Int32Column(record, tablestore.ColAntennaID)
	if err != nil {
		return nil, err
	}
	directionList, err := arrowops.ListColumn(record, tablestore.ColDirection)
	if err != nil {
		return nil, err
	}
	directions := make([][2]float64, len(times))
	for row := range directions {
		values, err := arrowops.ListFloat64Row(directionList, row)
		if err != nil {
			return nil, err
		}
		if len(values) != 2 {
			return nil, fmt.Errorf("%w| pointing direction with %d components at row %d", elements.ErrSchema, len(values), row)
		}
		directions[row] = [2]float64{values[0], values[1]}
	}
	return &PointingTable{
		Times:      times,
		AntennaIDs: antennaIDs,
		Directions: directions,
	}, nil
}
