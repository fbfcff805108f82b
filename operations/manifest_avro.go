package operations

import (
	"fmt"

	"github.com/alekLukanen/errs"
	"github.com/linkedin/goavro/v2"
)

const manifestAvroSchema = `{
  "type": "record",
  "name": "PartitionManifest",
  "fields": [
    {"name": "run_id", "type": "string"},
    {"name": "store_path", "type": "string"},
    {"name": "key", "type": "string"},
    {"name": "spw_id", "type": "int"},
    {"name": "pol_setup_id", "type": "int"},
    {"name": "scan", "type": "int"},
    {"name": "state", "type": "int"},
    {"name": "intent", "type": "string"},
    {"name": "layout", "type": "string"},
    {"name": "shape", "type": {"type": "array", "items": "long"}},
    {"name": "num_rows", "type": "long"},
    {"name": "created_at", "type": "long"}
  ]
}`

// AvroManifestCodec serializes manifests with the avro binary encoding.
type AvroManifestCodec struct {
	codec *goavro.Codec
}

func NewAvroManifestCodec() (*AvroManifestCodec, error) {
	codec, err := goavro.NewCodec(manifestAvroSchema)
	if err != nil {
		return nil, errs.NewStackError(err)
	}
	return &AvroManifestCodec{codec: codec}, nil
}

func (obj *AvroManifestCodec) Name() string {
	return "avro"
}

func (obj *AvroManifestCodec) Marshal(manifest PartitionManifest) ([]byte, error) {
	shape := make([]interface{}, len(manifest.Shape))
	for i, s := range manifest.Shape {
		shape[i] = s
	}
	native := map[string]interface{}{
		"run_id":       manifest.RunID,
		"store_path":   manifest.StorePath,
		"key":          manifest.Key,
		"spw_id":       manifest.SpwID,
		"pol_setup_id": manifest.PolSetupID,
		"scan":         manifest.Scan,
		"state":        manifest.State,
		"intent":       manifest.Intent,
		"layout":       manifest.Layout,
		"shape":        shape,
		"num_rows":     manifest.NumRows,
		"created_at":   manifest.CreatedAt,
	}
	data, err := obj.codec.BinaryFromNative(nil, native)
	if err != nil {
		return nil, errs.NewStackError(err)
	}
	return data, nil
}

func (obj *AvroManifestCodec) Unmarshal(data []byte) (PartitionManifest, error) {
	native, _, err := obj.codec.NativeFromBinary(data)
	if err != nil {
		return PartitionManifest{}, errs.NewStackError(err)
	}
	fields, ok := native.(map[string]interface{})
	if !ok {
		return PartitionManifest{}, fmt.Errorf("%w| avro record is %T", ErrManifestFieldType, native)
	}

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
		extent, ok := v.(int64)
		if !ok {
			return PartitionManifest{}, fmt.Errorf("%w| shape entry is %T", ErrManifestFieldType, v)
		}
		manifest.Shape[i] = extent
	}
	return manifest, nil
}

func stringField(fields map[string]interface{}, name string, fieldErr *error) string {
	if *fieldErr != nil {
		return ""
	}
	raw, ok := fields[name]
	if !ok {
		*fieldErr = fmt.Errorf("%w| %s", ErrManifestFieldMissing, name)
		return ""
	}
	value, ok := raw.(string)
	if !ok {
		*fieldErr = fmt.Errorf("%w| %s is %T", ErrManifestFieldType, name, raw)
		return ""
	}
	return value
}

func intField(fields map[string]interface{}, name string, fieldErr *error) int64 {
	if *fieldErr != nil {
		return 0
	}
	raw, ok := fields[name]
	if !ok {
		*fieldErr = fmt.Errorf("%w| %s", ErrManifestFieldMissing, name)
		return 0
	}
	switch value := raw.(type) {
	case int32:
		return int64(value)
	case int64:
		return value
	case float64:
		return int64(value)
	default:
		*fieldErr = fmt.Errorf("%w| %s is %T", ErrManifestFieldType, name, raw)
		return 0
	}
}
