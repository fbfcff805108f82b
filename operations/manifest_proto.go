package operations

import (
	"fmt"

	"github.com/alekLukanen/errs"
	"google.golang.org/protobuf/proto"
	"google.golang.org/protobuf/types/known/structpb"
)

// ProtoManifestCodec serializes manifests as a protobuf Struct message.
// Schemaless on the wire but field-compatible with the avro encoding.
type ProtoManifestCodec struct{}

func NewProtoManifestCodec() *ProtoManifestCodec {
	return &ProtoManifestCodec{}
}

func (obj *ProtoManifestCodec) Name() string {
	return "proto"
}

func (obj *ProtoManifestCodec) Marshal(manifest PartitionManifest) ([]byte, error) {
	shape := make([]interface{}, len(manifest.Shape))
	for i, s := range manifest.Shape {
		shape[i] = float64(s)
	}
	message, err := structpb.NewStruct(map[string]interface{}{
		"run_id":       manifest.RunID,
		"store_path":   manifest.StorePath,
		"key":          manifest.Key,
		"spw_id":       float64(manifest.SpwID),
		"pol_setup_id": float64(manifest.PolSetupID),
		"scan":         float64(manifest.Scan),
		"state":        float64(manifest.State),
		"intent":       manifest.Intent,
		"layout":       manifest.Layout,
		"shape":        shape,
		"num_rows":     float64(manifest.NumRows),
		"created_at":   float64(manifest.CreatedAt),
	})
	if err != nil {
		return nil, errs.NewStackError(err)
	}
	data, err := proto.Marshal(message)
	if err != nil {
		return nil, errs.NewStackError(err)
	}
	return data, nil
}

func (obj *ProtoManifestCodec) Unmarshal(data []byte) (PartitionManifest, error) {
	message := &structpb.Struct{}
	if err := proto.Unmarshal(data, message); err != nil {
		return PartitionManifest{}, errs.NewStackError(err)
	}
	fields := message.AsMap()

	manifest := PartitionManifest{}
	var fieldErr error
	manifest.RunID = stringField(fields, "run_id", &fieldErr)
	manifest.StorePath = stringField(fields, "store_path", &fieldErr)
	manifest.Key = stringField(fields, "key", &fieldErr)
	manifest.SpwID = int32(intField(fields, "spw_id", &fieldErr))
	manifest.PolSetupID = int32(intField(fields, "pol_setup_id", &fieldErr))
	manifest.Scan = int32(intField(fields, "scan", &fieldErr))
	manifest.State = int32(intField(fields, "state", &fieldErr))
	manifest.Intent = stringField(fields, "intent", &fieldErr)
	manifest.Layout = stringField(fields, "layout", &fieldErr)
	manifest.NumRows = intField(fields, "num_rows", &fieldErr)
	manifest.CreatedAt = intField(fields, "created_at", &fieldErr)
	if fieldErr != nil {
		return PartitionManifest{}, fieldErr
	}

	rawShape, ok := fields["shape"].([]interface{})
	if !ok {
		return PartitionManifest{}, fmt.Errorf("%w| shape", ErrManifestFieldType)
	}
	manifest.Shape = make([]int64, len(rawShape))
	for i, v := range rawShape {
		extent, ok := v.(float64)
		if !ok {
			return PartitionManifest{}, fmt.Errorf("%w| shape entry is %T", ErrManifestFieldType, v)
		}
		manifest.Shape[i] = int64(extent)
	}
	return manifest, nil
}

// NewManifestCodec builds the codec for an encoding name.
func NewManifestCodec(name string) (IManifestCodec, error) {
	switch name {
	case "avro", "":
		return NewAvroManifestCodec()
	case "proto":
		return NewProtoManifestCodec(), nil
	default:
		return nil, fmt.Errorf("%w| %q", ErrUnknownManifestCodec, name)
	}
}
