package operations

import "errors"

var (
	ErrManifestFieldMissing = errors.New("manifest field missing")
	ErrManifestFieldType    = errors.New("manifest field has wrong type")
	ErrUnknownManifestCodec = errors.New("unknown manifest codec")
)
