package partitions

import (
	"fmt"
	"sort"

	"github.com/alekLukanen/errs"
	"github.com/apache/arrow/go/v17/arrow"
	"github.com/apache/arrow/go/v17/arrow/memory"

	"github.com/astrovis/vispart/arrowops"
	"github.com/astrovis/vispart/elements"
	"github.com/astrovis/vispart/tablestore"
)

// PartitionSpec identifies the main-table rows belonging to one partition
// and carries the payload shape resolved from the subtables. Scan and
// State filters are disabled when negative; StateIDs, when non-nil,
// selects rows whose state id is in the set (intent grouping).
type PartitionSpec struct {
	DataDescID int32
	Scan       int32
	State      int32
	Intent     string
	StateIDs   []int32

	NumChan int
	NumPol  int
}

// RowChanSelection optionally restricts which matched rows and which
// channels are materialized for a partition. Nil slices mean "all"; an
// explicitly empty slice selects nothing and drops the partition.
type RowChanSelection struct {
	Rows  []int
	Chans []int
}

// ReadMainTablePartition selects the rows of the main table matching the
// partition spec and reorganizes their payload into the requested layout.
// A selection matching zero rows returns a nil dataset; the caller must
// not emit a partition for it.
func ReadMainTablePartition(
	allocator *memory.GoAllocator,
	mainRecord arrow.Record,
	spec PartitionSpec,
	layout elements.Layout,
	subset *RowChanSelection,
	chunks elements.ChunkSpec,
) (*elements.Dataset, error) {
	if err := layout.Validate(); err != nil {
		return nil, err
	}

	matched, err := matchRows(mainRecord, spec)
	if err != nil {
		return nil, err
	}
	if subset != nil && subset.Rows != nil {
		matched, err = subsetRows(matched, subset.Rows)
		if err != nil {
			return nil, err
		}
	}
	if len(matched) == 0 {
		return nil, nil
	}

	chanIdxs, err := channelSubset(spec.NumChan, subset)
	if err != nil {
		return nil, err
	}
	if chanIdxs != nil && len(chanIdxs) == 0 {
		return nil, nil
	}

	partRecord, err := arrowops.TakeRecord(allocator, mainRecord, matched)
	if err != nil {
		return nil, errs.Wrap(err)
	}
	defer partRecord.Release()

	rows, err := decodeRows(partRecord, spec)
	if err != nil {
		return nil, err
	}

	ds := &elements.Dataset{
		Layout: layout,
		Info: elements.PartitionInfo{
			DataDescID: spec.DataDescID,
			Scan:       spec.Scan,
			State:      spec.State,
			Intent:     spec.Intent,
		},
		ChanSubset: chanIdxs,
	}

	nChan := spec.NumChan
	if chanIdxs != nil {
		nChan = len(chanIdxs)
	}

	switch layout {
	case elements.LayoutExpanded:
		expandRows(ds, rows, nChan, spec.NumPol, chanIdxs)
	case elements.LayoutFlat:
		flattenRows(ds, rows, nChan, spec.NumPol, chanIdxs)
	}

	shape := gridShape(ds)
	ds.Chunks, err = OptimalChunking(shape, chunks)
	if err != nil {
		return nil, err
	}
	return ds, nil
}

type mainRow struct {
	time     float64
	baseline elements.Baseline
	vis      []complex64
}

func matchRows(mainRecord arrow.Record, spec PartitionSpec) ([]int, error) {
	dataDescIDs, err := arrowops.Int32Column(mainRecord, tablestore.ColDataDescID)
	if err != nil {
		return nil, err
	}
	scanNumbers, err := arrowops.Int32Column(mainRecord, tablestore.ColScanNumber)
	if err != nil {
		return nil, err
	}
	stateIDs, err := arrowops.Int32Column(mainRecord, tablestore.ColStateID)
	if err != nil {
		return nil, err
	}

	matched := make([]int, 0)
	for row, ddi := range dataDescIDs {
		if ddi != spec.DataDescID {
			continue
		}
		if spec.Scan >= 0 && scanNumbers[row] != spec.Scan {
			continue
		}
		if spec.State >= 0 && stateIDs[row] != spec.State {
			continue
		}
		if spec.StateIDs != nil && !containsInt32(spec.StateIDs, stateIDs[row]) {
			continue
		}
		matched = append(matched, row)
	}
	return matched, nil
}

// subsetRows picks entries of the matched-row sequence by position.
func subsetRows(matched []int, rowIdxs []int) ([]int, error) {
	out := make([]int, 0, len(rowIdxs))
	for _, idx := range rowIdxs {
		if idx < 0 || idx >= len(matched) {
			return nil, fmt.Errorf("%w| row subset index %d outside [0,%d)", elements.ErrConfiguration, idx, len(matched))
		}
		out = append(out, matched[idx])
	}
	return out, nil
}

func channelSubset(numChan int, subset *RowChanSelection) ([]int, error) {
	if subset == nil || subset.Chans == nil {
		return nil, nil
	}
	for _, idx := range subset.Chans {
		if idx < 0 || idx >= numChan {
			return nil, fmt.Errorf("%w| channel subset index %d outside [0,%d)", elements.ErrConfiguration, idx, numChan)
		}
	}
	out := make([]int, len(subset.Chans))
	copy(out, subset.Chans)
	return out, nil
}

func decodeRows(partRecord arrow.Record, spec PartitionSpec) ([]mainRow, error) {
	times, err := arrowops.Float64Column(partRecord, tablestore.ColTime)
	if err != nil {
		return nil, err
	}
	antenna1, err := arrowops.Int32Column(partRecord, tablestore.ColAntenna1)
	if err != nil {
		return nil, err
	}
	antenna2, err := arrowops.Int32Column(partRecord, tablestore.ColAntenna2)
	if err != nil {
		return nil, err
	}
	visList, err := arrowops.ListColumn(partRecord, tablestore.ColVis)
	if err != nil {
		return nil, err
	}

	wantSamples := spec.NumChan * spec.NumPol
	rows := make([]mainRow, len(times))
	for row := range rows {
		samples, err := arrowops.ListFloat32Row(visList, row)
		if err != nil {
			return nil, err
		}
		if len(samples) != wantSamples*2 {
			return nil, fmt.Errorf(
				"%w| payload row with %d values, configuration wants %d channels x %d polarizations",
				elements.ErrSchema, len(samples), spec.NumChan, spec.NumPol,
			)
		}
		vis := make([]complex64, wantSamples)
		for k := range vis {
			vis[k] = complex(samples[2*k], samples[2*k+1])
		}
		rows[row] = mainRow{
			time:     times[row],
			baseline: elements.Baseline{Antenna1: antenna1[row], Antenna2: antenna2[row]},
			vis:      vis,
		}
	}
	return rows, nil
}

// expandRows reindexes the per-row payload onto a dense (time, baseline,
// channel, polarization) grid. Cells without a backing row hold the
// no-data fill value and are flagged.
func expandRows(ds *elements.Dataset, rows []mainRow, nChan, nPol int, chanIdxs []int) {
	times := uniqueTimes(rows)
	baselines := uniqueBaselines(rows)

	timeIdx := make(map[float64]int, len(times))
	for i, t := range times {
		timeIdx[t] = i
	}
	baselineIdx := make(map[elements.Baseline]int, len(baselines))
	for i, bl := range baselines {
		baselineIdx[bl] = i
	}

	cell := nChan * nPol
	data := make([]complex64, len(times)*len(baselines)*cell)
	flags := make([]bool, len(data))
	for i := range data {
		data[i] = elements.NoDataFill
		flags[i] = true
	}

	for _, row := range rows {
		offset := (timeIdx[row.time]*len(baselines) + baselineIdx[row.baseline]) * cell
		copyRowSamples(data[offset:offset+cell], row.vis, nPol, chanIdxs)
		for i := offset; i < offset+cell; i++ {
			flags[i] = false
		}
	}

	ds.Vis = elements.VisCube{
		Data:  data,
		Flags: flags,
		Dims:  []string{"time", "baseline", "channel", "polarization"},
		Shape: []int{len(times), len(baselines), nChan, nPol},
	}
	ds.Coords.Time = times
	ds.Coords.Baselines = baselines
}

// flattenRows keeps the payload row-indexed, attaching per-row time and
// baseline labels so both layouts expose the same coordinate names.
func flattenRows(ds *elements.Dataset, rows []mainRow, nChan, nPol int, chanIdxs []int) {
	baselines := uniqueBaselines(rows)
	baselineIdx := make(map[elements.Baseline]int, len(baselines))
	for i, bl := range baselines {
		baselineIdx[bl] = i
	}

	cell := nChan * nPol
	data := make([]complex64, len(rows)*cell)
	flags := make([]bool, len(data))
	rowTime := make([]float64, len(rows))
	rowBaseline := make([]int, len(rows))
	for i, row := range rows {
		copyRowSamples(data[i*cell:(i+1)*cell], row.vis, nPol, chanIdxs)
		rowTime[i] = row.time
		rowBaseline[i] = baselineIdx[row.baseline]
	}

	ds.Vis = elements.VisCube{
		Data:  data,
		Flags: flags,
		Dims:  []string{"row", "channel", "polarization"},
		Shape: []int{len(rows), nChan, nPol},
	}
	ds.Coords.Time = uniqueTimes(rows)
	ds.Coords.Baselines = baselines
	ds.Coords.RowTime = rowTime
	ds.Coords.RowBaseline = rowBaseline
}

// copyRowSamples copies one row's (channel, polarization) samples into a
// grid cell, narrowing to the channel subset when one is set.
func copyRowSamples(dst []complex64, vis []complex64, nPol int, chanIdxs []int) {
	if chanIdxs == nil {
		copy(dst, vis)
		return
	}
	for i, ch := range chanIdxs {
		copy(dst[i*nPol:(i+1)*nPol], vis[ch*nPol:(ch+1)*nPol])
	}
}

func uniqueTimes(rows []mainRow) []float64 {
	seen := make(map[float64]bool, len(rows))
	times := make([]float64, 0, len(rows))
	for _, row := range rows {
		if seen[row.time] {
			continue
		}
		seen[row.time] = true
		times = append(times, row.time)
	}
	sort.Float64s(times)
	return times
}

func uniqueBaselines(rows []mainRow) []elements.Baseline {
	seen := make(map[elements.Baseline]bool, len(rows))
	baselines := make([]elements.Baseline, 0, len(rows))
	for _, row := range rows {
		if seen[row.baseline] {
			continue
		}
		seen[row.baseline] = true
		baselines = append(baselines, row.baseline)
	}
	sort.Slice(baselines, func(i, j int) bool {
		if baselines[i].Antenna1 != baselines[j].Antenna1 {
			return baselines[i].Antenna1 < baselines[j].Antenna1
		}
		return baselines[i].Antenna2 < baselines[j].Antenna2
	})
	return baselines
}

func gridShape(ds *elements.Dataset) [4]int {
	switch ds.Layout {
	case elements.LayoutExpanded:
		return [4]int{ds.Vis.Shape[0], ds.Vis.Shape[1], ds.Vis.Shape[2], ds.Vis.Shape[3]}
	default:
		return [4]int{ds.Vis.Shape[0], 1, ds.Vis.Shape[1], ds.Vis.Shape[2]}
	}
}
