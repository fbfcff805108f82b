package tablestore

import (
	"context"

	"github.com/apache/arrow/go/v17/arrow"
)

// Names of the tables making up a raw observation store.
const (
	MainTable            = "MAIN"
	AntennaTable         = "ANTENNA"
	SpectralWindowTable  = "SPECTRAL_WINDOW"
	PolarizationTable    = "POLARIZATION"
	DataDescriptionTable = "DATA_DESCRIPTION"
	StateTable           = "STATE"
	PointingTable        = "POINTING"
)

// Main table column names.
const (
	ColTime       = "TIME"
	ColAntenna1   = "ANTENNA1"
	ColAntenna2   = "ANTENNA2"
	ColDataDescID = "DATA_DESC_ID"
	ColScanNumber = "SCAN_NUMBER"
	ColStateID    = "STATE_ID"
	ColVis        = "VIS"
)

// Subtable column names.
const (
	ColName        = "NAME"
	ColMount       = "MOUNT"
	ColChanFreq    = "CHAN_FREQ"
	ColRefFreq     = "REF_FREQUENCY"
	ColMeasFreqRef = "MEAS_FREQ_REF"
	ColNumChan     = "NUM_CHAN"
	ColCorrType    = "CORR_TYPE"
	ColSpwID       = "SPECTRAL_WINDOW_ID"
	ColPolID       = "POLARIZATION_ID"
	ColObsMode     = "OBS_MODE"
	ColSubScan     = "SUB_SCAN"
	ColAntennaID   = "ANTENNA_ID"
	ColDirection   = "DIRECTION"
)

// Selector restricts a table read to a column and/or row subset. A nil
// selector, nil Columns or nil Rows mean "all".
type Selector struct {
	Columns []string
	Rows    []int
}

// ITableStore is the raw table reading collaborator. Implementations
// return an arrow record holding the selected columns and rows of the
// named table, addressable by row index.
type ITableStore interface {
	ReadTable(ctx context.Context, name string, selector *Selector) (arrow.Record, error)
	TableNames(ctx context.Context) ([]string, error)
	HasTable(ctx context.Context, name string) bool
}
