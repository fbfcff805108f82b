package partitions

import (
	"github.com/astrovis/vispart/elements"
)

// OptimalChunking computes the chunk extents for a payload of the given
// (time, baseline, channel, polarization) shape. A fixed spec is clamped
// to the payload shape. Auto sizing repeatedly halves the largest axis
// until the per-chunk payload fits the byte budget, never truncating an
// axis below 1, so the chunk grid keeps the array's aspect ratio while
// bounding memory. Identical inputs always produce identical extents.
func OptimalChunking(shape [4]int, spec elements.ChunkSpec) (elements.ChunkShape, error) {
	if err := spec.Validate(); err != nil {
		return elements.ChunkShape{}, err
	}

	var chunk elements.ChunkShape
	if !spec.Auto {
		for i := range chunk {
			chunk[i] = spec.Shape[i]
			if chunk[i] > shape[i] && shape[i] > 0 {
				chunk[i] = shape[i]
			}
		}
		return chunk, nil
	}

	for i := range chunk {
		chunk[i] = shape[i]
		if chunk[i] < 1 {
			chunk[i] = 1
		}
	}

	targetSamples := spec.TargetBytes / elements.VisSampleSize
	for chunk.Product() > targetSamples {
		largest := 0
		for i := 1; i < len(chunk); i++ {
			if chunk[i] > chunk[largest] {
				largest = i
			}
		}
		if chunk[largest] == 1 {
			break
		}
		chunk[largest] = (chunk[largest] + 1) / 2
	}
	return chunk, nil
}
