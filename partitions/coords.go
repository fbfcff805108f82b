package partitions

import (
	"fmt"

	"github.com/astrovis/vispart/elements"
	"github.com/astrovis/vispart/subtables"
)

const speedOfLight = 299792458.0 // m/s

// AssembleCoordinates joins a raw partition against the subtable
// collection and attaches the frequency, velocity, polarization and
// antenna-label coordinates plus the frequency metadata. The frequency
// labels are a partition-local copy: when the partition was narrowed to a
// channel subset, only the subset frequencies are attached and the shared
// spectral-window table is left untouched. A reference that cannot be
// resolved fails with a lookup error so the caller can skip the partition.
func AssembleCoordinates(ds *elements.Dataset, subts *subtables.Collection) error {
	spw := subts.SpectralWindow
	spwID := ds.Info.SpwID
	if spwID < 0 || int(spwID) >= spw.NumRows() {
		return fmt.Errorf("%w| spectral window %d outside [0,%d)", elements.ErrLookup, spwID, spw.NumRows())
	}

	fullFreq := spw.ChanFreq[spwID]
	var frequency []float64
	if ds.ChanSubset == nil {
		frequency = make([]float64, len(fullFreq))
		copy(frequency, fullFreq)
	} else {
		frequency = make([]float64, 0, len(ds.ChanSubset))
		for _, ch := range ds.ChanSubset {
			if ch < 0 || ch >= len(fullFreq) {
				return fmt.Errorf("%w| channel %d outside spectral window %d", elements.ErrLookup, ch, spwID)
			}
			frequency = append(frequency, fullFreq[ch])
		}
	}
	ds.Coords.Frequency = frequency
	ds.Coords.Velocity = radioVelocity(frequency)

	polID := ds.Info.PolSetupID
	if polID < 0 || int(polID) >= subts.Polarization.NumRows() {
		return fmt.Errorf("%w| polarization setup %d outside [0,%d)", elements.ErrLookup, polID, subts.Polarization.NumRows())
	}
	corrTypes := subts.Polarization.CorrTypes[polID]
	ds.Coords.Polarization = make([]string, len(corrTypes))
	copy(ds.Coords.Polarization, corrTypes)

	antenna1Names := make([]string, len(ds.Coords.Baselines))
	antenna2Names := make([]string, len(ds.Coords.Baselines))
	for i, bl := range ds.Coords.Baselines {
		name1, err := antennaName(subts.Antenna, bl.Antenna1)
		if err != nil {
			return err
		}
		name2, err := antennaName(subts.Antenna, bl.Antenna2)
		if err != nil {
			return err
		}
		antenna1Names[i] = name1
		antenna2Names[i] = name2
	}
	ds.Coords.Antenna1Names = antenna1Names
	ds.Coords.Antenna2Names = antenna2Names

	// metadata is copied from the spectral window entry, not recomputed
	ds.Freq = elements.FreqAttrs{
		Frame:        spw.Frames[spwID],
		Units:        "Hz",
		RefFrequency: spw.RefFreq[spwID],
		SpwName:      spw.Names[spwID],
	}
	ds.Info.SpwName = spw.Names[spwID]

	return nil
}

// radioVelocity derives the velocity labels from the channel frequencies
// as (1 - f/restfreq) * c. The middle channel serves as the rest
// frequency reference; this is a deterministic convention kept for
// compatibility, not a physically general choice.
func radioVelocity(frequency []float64) []float64 {
	if len(frequency) == 0 {
		return nil
	}
	restFreq := frequency[len(frequency)/2]
	velocity := make([]float64, len(frequency))
	for i, f := range frequency {
		velocity[i] = (1 - f/restFreq) * speedOfLight
	}
	return velocity
}

func antennaName(antenna *subtables.AntennaTable, id int32) (string, error) {
	if id < 0 || int(id) >= antenna.NumRows() {
		return "", fmt.Errorf("%w| antenna %d outside [0,%d)", elements.ErrLookup, id, antenna.NumRows())
	}
	return antenna.Names[id], nil
}
