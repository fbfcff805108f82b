package elements

import (
	"fmt"
)

// PartitionScheme selects the granularity at which main-table rows are
// grouped into output datasets.
type PartitionScheme string

const (
	// one partition per (spectral window, polarization setup) pair
	SchemeByConfiguration PartitionScheme = "by-configuration"
	// additionally split by the observing intent resolved from the state table
	SchemeByIntent PartitionScheme = "by-intent"
	// additionally split by scan number
	SchemeByScan PartitionScheme = "by-scan"
	// additionally split by scan number and state (sub-scan) id
	SchemeByScanSubscan PartitionScheme = "by-scan-and-subscan"
)

func (obj PartitionScheme) Validate() error {
	switch obj {
	case SchemeByConfiguration, SchemeByIntent, SchemeByScan, SchemeByScanSubscan:
		return nil
	default:
		return fmt.Errorf("%w| unknown partition scheme %q", ErrConfiguration, string(obj))
	}
}

// SplitsScans reports whether the scheme groups rows by scan or state
// columns in addition to the instrument configuration.
func (obj PartitionScheme) SplitsScans() bool {
	return obj == SchemeByScan || obj == SchemeByScanSubscan
}

// Layout selects how a partition's payload is dimensioned.
type Layout string

const (
	// payload reindexed onto a dense (time, baseline, channel, polarization) grid
	LayoutExpanded Layout = "expanded"
	// payload kept per row with row-indexed time/baseline labels
	LayoutFlat Layout = "flat"
)

func (obj Layout) Validate() error {
	switch obj {
	case LayoutExpanded, LayoutFlat:
		return nil
	default:
		return fmt.Errorf("%w| %q", ErrUnknownLayout, string(obj))
	}
}
