package elements

import (
	"fmt"
)

// VisSampleSize is the in-memory size of one visibility sample.
const VisSampleSize = 8 // complex64

// DefaultChunkTargetBytes bounds the payload bytes of one auto-sized chunk.
const DefaultChunkTargetBytes = 64 << 20

// ChunkShape is the chunk extent along (time, baseline, channel,
// polarization) used when materializing a partition out of core.
type ChunkShape [4]int

func (obj ChunkShape) Product() int {
	return obj[0] * obj[1] * obj[2] * obj[3]
}

// ChunkSpec selects either a fixed chunk shape or automatic sizing from a
// per-chunk byte budget.
type ChunkSpec struct {
	Auto        bool
	Shape       ChunkShape
	TargetBytes int
}

// AutoChunks requests automatic chunk sizing against the default budget.
func AutoChunks() ChunkSpec {
	return ChunkSpec{Auto: true, TargetBytes: DefaultChunkTargetBytes}
}

// FixedChunks requests an explicit chunk shape.
func FixedChunks(time, baseline, channel, polarization int) ChunkSpec {
	return ChunkSpec{Shape: ChunkShape{time, baseline, channel, polarization}}
}

func (obj ChunkSpec) Validate() error {
	if obj.Auto {
		if obj.TargetBytes < VisSampleSize {
			return fmt.Errorf("%w| auto chunk byte budget %d below one sample", ErrInvalidChunkSpec, obj.TargetBytes)
		}
		return nil
	}
	for i, extent := range obj.Shape {
		if extent < 1 {
			return fmt.Errorf("%w| fixed chunk extent %d on axis %d", ErrInvalidChunkSpec, extent, i)
		}
	}
	return nil
}
