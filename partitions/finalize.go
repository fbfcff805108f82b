package partitions

import (
	"math"
	"sort"

	"github.com/astrovis/vispart/elements"
	"github.com/astrovis/vispart/subtables"
)

// FinalizePartitions enriches emitted partitions with the pointing
// subtable, interpolating each antenna's pointing direction onto the
// partition's own time axis. When the store carries no pointing table the
// partitions pass through unchanged; missing optional metadata is never
// an error.
func FinalizePartitions(
	parts map[elements.PartitionKey]*elements.Dataset,
	subts *subtables.Collection,
) map[elements.PartitionKey]*elements.Dataset {
	if subts == nil || subts.Pointing == nil {
		return parts
	}

	samples := groupPointingByAntenna(subts.Pointing)
	numAntennas := subts.Antenna.NumRows()

	for _, ds := range parts {
		ds.Pointing = interpolatePointing(ds.Coords.Time, samples, numAntennas)
	}
	return parts
}

type pointingSample struct {
	time      float64
	direction [2]float64
}

func groupPointingByAntenna(pointing *subtables.PointingTable) map[int32][]pointingSample {
	grouped := make(map[int32][]pointingSample)
	for row, antennaID := range pointing.AntennaIDs {
		grouped[antennaID] = append(grouped[antennaID], pointingSample{
			time:      pointing.Times[row],
			direction: pointing.Directions[row],
		})
	}
	for antennaID := range grouped {
		samples := grouped[antennaID]
		sort.Slice(samples, func(i, j int) bool { return samples[i].time < samples[j].time })
	}
	return grouped
}

// interpolatePointing linearly interpolates each antenna's pointing
// samples onto the target times, clamping outside the sampled range.
// Antennas without samples get NaN directions.
func interpolatePointing(times []float64, samples map[int32][]pointingSample, numAntennas int) *elements.PointingData {
	data := &elements.PointingData{
		Direction:  make([][][2]float64, len(times)),
		AntennaIDs: make([]int32, numAntennas),
	}
	for a := 0; a < numAntennas; a++ {
		data.AntennaIDs[a] = int32(a)
	}

	for t, targetTime := range times {
		data.Direction[t] = make([][2]float64, numAntennas)
		for a := 0; a < numAntennas; a++ {
			data.Direction[t][a] = interpolateDirection(samples[int32(a)], targetTime)
		}
	}
	return data
}

func interpolateDirection(samples []pointingSample, targetTime float64) [2]float64 {
	if len(samples) == 0 {
		return [2]float64{math.NaN(), math.NaN()}
	}
	if targetTime <= samples[0].time {
		return samples[0].direction
	}
	last := samples[len(samples)-1]
	if targetTime >= last.time {
		return last.direction
	}

	upper := sort.Search(len(samples), func(i int) bool { return samples[i].time >= targetTime })
	lo, hi := samples[upper-1], samples[upper]
	if hi.time == lo.time {
		return lo.direction
	}
	frac := (targetTime - lo.time) / (hi.time - lo.time)
	return [2]float64{
		lo.direction[0] + frac*(hi.direction[0]-lo.direction[0]),
		lo.direction[1] + frac*(hi.direction[1]-lo.direction[1]),
	}
}
