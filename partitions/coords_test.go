package partitions

import (
	"errors"
	"math"
	"testing"

	"github.com/astrovis/vispart/elements"
)

func TestAssembleCoordinates(t *testing.T) {
	subts := testSubtables()

	ds := &elements.Dataset{
		Layout: elements.LayoutExpanded,
		Info:   elements.PartitionInfo{SpwID: 0, PolSetupID: 0},
		Coords: elements.Coordinates{
			Baselines: []elements.Baseline{
				{Antenna1: 0, Antenna2: 1},
				{Antenna1: 0, Antenna2: 2},
			},
		},
	}

	if err := AssembleCoordinates(ds, subts); err != nil {
		t.Fatalf("AssembleCoordinates failed: %v", err)
	}

	expFreq := subts.SpectralWindow.ChanFreq[0]
	if len(ds.Coords.Frequency) != len(expFreq) {
		t.Fatalf("frequency axis = %v, expected %v", ds.Coords.Frequency, expFreq)
	}
	for i := range expFreq {
		if ds.Coords.Frequency[i] != expFreq[i] {
			t.Fatalf("frequency axis = %v, expected %v", ds.Coords.Frequency, expFreq)
		}
	}

	// the rest frequency is the middle channel, so its velocity is zero
	// and lower frequencies map to positive velocities
	restIdx := len(expFreq) / 2
	if v := ds.Coords.Velocity[restIdx]; v != 0 {
		t.Errorf("velocity at rest channel = %v, expected 0", v)
	}
	expVel := (1 - expFreq[0]/expFreq[restIdx]) * 299792458.0
	if v := ds.Coords.Velocity[0]; math.Abs(v-expVel) > 1e-6 {
		t.Errorf("velocity[0] = %v, expected %v", v, expVel)
	}

	if len(ds.Coords.Polarization) != 2 || ds.Coords.Polarization[0] != "XX" || ds.Coords.Polarization[1] != "YY" {
		t.Errorf("polarization axis = %v, expected [XX YY]", ds.Coords.Polarization)
	}

	if ds.Coords.Antenna1Names[0] != "ea01" || ds.Coords.Antenna2Names[0] != "ea02" {
		t.Errorf("baseline 0 names = %s,%s", ds.Coords.Antenna1Names[0], ds.Coords.Antenna2Names[0])
	}
	if ds.Coords.Antenna2Names[1] != "ea03" {
		t.Errorf("baseline 1 antenna2 name = %s, expected ea03", ds.Coords.Antenna2Names[1])
	}

	if ds.Freq.Frame != "TOPO" || ds.Freq.Units != "Hz" || ds.Freq.RefFrequency != 1.40e9 {
		t.Errorf("frequency metadata = %+v", ds.Freq)
	}
	if ds.Freq.SpwName != "WINDOW_0" || ds.Info.SpwName != "WINDOW_0" {
		t.Errorf("spw name = %q / %q, expected WINDOW_0", ds.Freq.SpwName, ds.Info.SpwName)
	}
}

func TestAssembleCoordinatesChannelSubset(t *testing.T) {
	subts := testSubtables()

	ds := &elements.Dataset{
		Layout:     elements.LayoutExpanded,
		Info:       elements.PartitionInfo{SpwID: 0, PolSetupID: 0},
		ChanSubset: []int{1, 3},
	}
	if err := AssembleCoordinates(ds, subts); err != nil {
		t.Fatalf("AssembleCoordinates failed: %v", err)
	}

	if len(ds.Coords.Frequency) != 2 || ds.Coords.Frequency[0] != 1.41e9 || ds.Coords.Frequency[1] != 1.43e9 {
		t.Fatalf("narrowed frequency axis = %v, expected [1.41e9 1.43e9]", ds.Coords.Frequency)
	}
	if len(ds.Coords.Velocity) != 2 {
		t.Fatalf("narrowed velocity axis has %d entries", len(ds.Coords.Velocity))
	}

	// narrowing stays partition-local: the shared table keeps all channels
	if len(subts.SpectralWindow.ChanFreq[0]) != 4 {
		t.Errorf("shared spectral window was narrowed to %d channels", len(subts.SpectralWindow.ChanFreq[0]))
	}

	// a second full-width partition over the same window is unaffected
	full := &elements.Dataset{
		Layout: elements.LayoutExpanded,
		Info:   elements.PartitionInfo{SpwID: 0, PolSetupID: 0},
	}
	if err := AssembleCoordinates(full, subts); err != nil {
		t.Fatalf("AssembleCoordinates failed: %v", err)
	}
	if len(full.Coords.Frequency) != 4 {
		t.Errorf("full partition frequency axis has %d entries, expected 4", len(full.Coords.Frequency))
	}
}

func TestAssembleCoordinatesLookupErrors(t *testing.T) {
	subts := testSubtables()

	// dangling spectral window
	ds := &elements.Dataset{Info: elements.PartitionInfo{SpwID: 9, PolSetupID: 0}}
	if err := AssembleCoordinates(ds, subts); !errors.Is(err, elements.ErrLookup) {
		t.Errorf("dangling spw: expected ErrLookup, got %v", err)
	}

	// dangling polarization setup
	ds = &elements.Dataset{Info: elements.PartitionInfo{SpwID: 0, PolSetupID: 9}}
	if err := AssembleCoordinates(ds, subts); !errors.Is(err, elements.ErrLookup) {
		t.Errorf("dangling polarization: expected ErrLookup, got %v", err)
	}

	// dangling antenna reference
	ds = &elements.Dataset{
		Info: elements.PartitionInfo{SpwID: 0, PolSetupID: 0},
		Coords: elements.Coordinates{
			Baselines: []elements.Baseline{{Antenna1: 0, Antenna2: 9}},
		},
	}
	if err := AssembleCoordinates(ds, subts); !errors.Is(err, elements.ErrLookup) {
		t.Errorf("dangling antenna: expected ErrLookup, got %v", err)
	}
}

func TestRadioVelocitySingleChannel(t *testing.T) {
	velocity := radioVelocity([]float64{1.4e9})
	if len(velocity) != 1 || velocity[0] != 0 {
		t.Errorf("single channel velocity = %v, expected [0]", velocity)
	}
	if radioVelocity(nil) != nil {
		t.Errorf("expected nil velocity for empty frequency axis")
	}
}
