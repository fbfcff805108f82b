package converter

import (
	"context"
	"time"

	"github.com/stretchr/testify/mock"

	"github.com/astrovis/vispart/storage"
)

type MockConversionRegistry struct {
	mock.Mock
}

func (obj *MockConversionRegistry) ClaimConversion(ctx context.Context, storePath string, duration time.Duration) (storage.ILock, error) {
	args := obj.Called(ctx, storePath, duration)
	lock, _ := args.Get(0).(storage.ILock)
	return lock, args.Error(1)
}

func (obj *MockConversionRegistry) ReleaseConversionLock(ctx context.Context, lock storage.ILock) (bool, error) {
	args := obj.Called(ctx, lock)
	return args.Bool(0), args.Error(1)
}

func (obj *MockConversionRegistry) AddPartitionManifests(ctx context.Context, runID string, manifests [][]byte) (int64, error) {
	args := obj.Called(ctx, runID, manifests)
	return args.Get(0).(int64), args.Error(1)
}

func (obj *MockConversionRegistry) GetPartitionManifests(ctx context.Context, runID string, count int64) ([][]byte, error) {
	args := obj.Called(ctx, runID, count)
	manifests, _ := args.Get(0).([][]byte)
	return manifests, args.Error(1)
}

func (obj *MockConversionRegistry) SetConversionTimestamp(ctx context.Context, runID string) (bool, error) {
	args := obj.Called(ctx, runID)
	return args.Bool(0), args.Error(1)
}

func (obj *MockConversionRegistry) GetConversionTimestamp(ctx context.Context, runID string) (time.Time, error) {
	args := obj.Called(ctx, runID)
	return args.Get(0).(time.Time), args.Error(1)
}

func (obj *MockConversionRegistry) DeleteConversionRun(ctx context.Context, runID string) (bool, error) {
	args := obj.Called(ctx, runID)
	return args.Bool(0), args.Error(1)
}

type MockLock struct {
	mock.Mock
}

func (obj *MockLock) TryLockContext(ctx context.Context) error {
	args := obj.Called(ctx)
	return args.Error(0)
}

func (obj *MockLock) UnlockContext(ctx context.Context) (bool, error) {
	args := obj.Called(ctx)
	return args.Bool(0), args.Error(1)
}

func (obj *MockLock) Name() string {
	args := obj.Called()
	return args.String(0)
}
