package operations

import (
	"time"

	"github.com/astrovis/vispart/elements"
)

// PartitionManifest is the registry entry describing one emitted
// partition: its key, originating identifiers and payload shape. It is
// what a conversion run publishes so other processes can discover which
// partitions a store was split into.
type PartitionManifest struct {
	RunID      string
	StorePath  string
	Key        string
	SpwID      int32
	PolSetupID int32
	Scan       int32
	State      int32
	Intent     string
	Layout     string
	Shape      []int64
	NumRows    int64
	CreatedAt  int64
}

// BuildManifest condenses an emitted partition dataset into its manifest.
func BuildManifest(runID string, storePath string, ds *elements.Dataset) PartitionManifest {
	shape := make([]int64, len(ds.Vis.Shape))
	for i, s := range ds.Vis.Shape {
		shape[i] = int64(s)
	}
	return PartitionManifest{
		RunID:      runID,
		StorePath:  storePath,
		Key:        ds.Key.String(),
		SpwID:      ds.Info.SpwID,
		PolSetupID: ds.Info.PolSetupID,
		Scan:       ds.Info.Scan,
		State:      ds.Info.State,
		Intent:     ds.Info.Intent,
		Layout:     string(ds.Layout),
		Shape:      shape,
		NumRows:    int64(ds.NumRows()),
		CreatedAt:  time.Now().Unix(),
	}
}

// IManifestCodec serializes partition manifests for the conversion
// registry. Both encodings carry the same fields.
type IManifestCodec interface {
	Name() string
	Marshal(manifest PartitionManifest) ([]byte, error)
	Unmarshal(data []byte) (PartitionManifest, error)
}
