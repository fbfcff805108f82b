package storage

import "errors"

var (
	ErrConversionLocked = errors.New("conversion already locked")
	ErrNoManifestsFound = errors.New("no manifests found for run")
	ErrEmptyStorePrefix = errors.New("store prefix holds no objects")
	ErrLockNotHeld      = errors.New("lock not held")
)
