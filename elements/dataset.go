package elements

import (
	"fmt"
	"math"
)

// NoDataFill is the payload value stored for (time, baseline) grid cells
// that have no backing row in the expanded layout. Cells holding it are
// also flagged.
var NoDataFill = complex(float32(math.NaN()), float32(math.NaN()))

// VisCube holds a partition's visibility payload in row-major order over
// Shape. The expanded layout uses the dims (time, baseline, channel,
// polarization); the flat layout uses (row, channel, polarization).
type VisCube struct {
	Data  []complex64
	Flags []bool
	Dims  []string
	Shape []int
}

func (obj *VisCube) Size() int {
	n := 1
	for _, s := range obj.Shape {
		n *= s
	}
	return n
}

func (obj *VisCube) Validate() error {
	if len(obj.Dims) != len(obj.Shape) {
		return fmt.Errorf("%w| %d dims for %d shape entries", ErrShapeMismatch, len(obj.Dims), len(obj.Shape))
	}
	if len(obj.Data) != obj.Size() {
		return fmt.Errorf("%w| payload has %d samples, shape wants %d", ErrShapeMismatch, len(obj.Data), obj.Size())
	}
	if len(obj.Flags) != len(obj.Data) {
		return fmt.Errorf("%w| %d flags for %d samples", ErrShapeMismatch, len(obj.Flags), len(obj.Data))
	}
	return nil
}

// At indexes the cube with one index per dim.
func (obj *VisCube) At(idxs ...int) complex64 {
	return obj.Data[obj.flatIndex(idxs)]
}

func (obj *VisCube) FlagAt(idxs ...int) bool {
	return obj.Flags[obj.flatIndex(idxs)]
}

func (obj *VisCube) flatIndex(idxs []int) int {
	flat := 0
	for i, idx := range idxs {
		flat = flat*obj.Shape[i] + idx
	}
	return flat
}

// Baseline is an ordered antenna pair.
type Baseline struct {
	Antenna1 int32
	Antenna2 int32
}

// Coordinates are the axis labels attached to a partition. Time,
// Frequency, Velocity and Polarization are present for both layouts;
// Baselines and antenna name labels for the expanded layout; RowTime and
// RowBaseline label individual rows in the flat layout.
type Coordinates struct {
	Time         []float64
	Frequency    []float64
	Velocity     []float64
	Polarization []string

	Baselines     []Baseline
	Antenna1Names []string
	Antenna2Names []string

	RowTime     []float64
	RowBaseline []int
}

// FreqAttrs is the frequency-axis metadata copied from the spectral-window
// subtable entry backing a partition. It is copied, never recomputed.
type FreqAttrs struct {
	Frame        string
	Units        string
	RefFrequency float64
	SpwName      string
}

// ScanIntents is the two-level scan intent -> sub-scan intents mapping
// parsed from a compound intent string. When the source string carried no
// sub-scan separator it is kept verbatim in Raw and the mapping is empty.
type ScanIntents struct {
	Raw      string
	Order    []string
	Subscans map[string][]string
}

// PartitionInfo records the identifiers a partition originated from.
type PartitionInfo struct {
	DataDescID int32
	SpwID      int32
	PolSetupID int32
	SpwName    string
	Scan       int32
	State      int32
	Intent     string
	Intents    *ScanIntents
}

// PointingData is the pointing direction interpolated onto a partition's
// time axis, shaped (time, antenna, 2).
type PointingData struct {
	Direction  [][][2]float64
	AntennaIDs []int32
}

// Dataset is one emitted partition: the reorganized payload, its axis
// coordinates and the descriptive metadata resolved from the subtables.
// Datasets are mutated only by coordinate assembly and finalization and
// are read-only afterwards.
type Dataset struct {
	Key    PartitionKey
	Layout Layout
	Vis    VisCube
	Coords Coordinates
	Freq   FreqAttrs
	Info   PartitionInfo
	Chunks ChunkShape

	// ChanSubset, when non-nil, lists the channel indices of the full
	// spectral-window channel axis this partition was narrowed to. The
	// narrowed frequency labels live in Coords.Frequency; the shared
	// spectral-window subtable is never modified.
	ChanSubset []int

	Pointing *PointingData
}

// Summary is the condensed partition description exposed to callers
// browsing a conversion result.
type Summary struct {
	SpwName           string
	PolarizationSetup []string
	Scans             []int32
	Intent            string
}

func (obj *Dataset) Summary() Summary {
	s := Summary{
		SpwName:           obj.Info.SpwName,
		PolarizationSetup: obj.Coords.Polarization,
		Intent:            obj.Info.Intent,
	}
	if obj.Info.Scan >= 0 {
		s.Scans = []int32{obj.Info.Scan}
	}
	return s
}

// NumRows reports how many main-table rows the partition consumed.
func (obj *Dataset) NumRows() int {
	switch obj.Layout {
	case LayoutFlat:
		if len(obj.Vis.Shape) > 0 {
			return obj.Vis.Shape[0]
		}
		return 0
	case LayoutExpanded:
		n := 0
		for _, flagged := range obj.rowMask() {
			if !flagged {
				n++
			}
		}
		return n
	default:
		return 0
	}
}

// rowMask reduces the expanded flag cube to one entry per (time, baseline)
// cell, true when the cell holds no data.
func (obj *Dataset) rowMask() []bool {
	if len(obj.Vis.Shape) != 4 {
		return nil
	}
	nTime, nBl := obj.Vis.Shape[0], obj.Vis.Shape[1]
	cell := obj.Vis.Shape[2] * obj.Vis.Shape[3]
	mask := make([]bool, nTime*nBl)
	for i := range mask {
		mask[i] = obj.Vis.Flags[i*cell]
	}
	return mask
}
