package storage

import (
	"context"
	"fmt"
	"log/slog"
	"strconv"
	"time"

	"github.com/go-redsync/redsync/v4"
	redsyncredis "github.com/go-redsync/redsync/v4/redis"
	"github.com/go-redsync/redsync/v4/redis/goredis/v9"
	goredislib "github.com/redis/go-redis/v9"
)

type ILock interface {
	TryLockContext(context.Context) error
	UnlockContext(context.Context) (bool, error)
	Name() string
}

// IConversionRegistry records which partitions a conversion run emitted
// and serializes concurrent conversions of the same store behind a lock.
type IConversionRegistry interface {
	ClaimConversion(ctx context.Context, storePath string, duration time.Duration) (ILock, error)
	ReleaseConversionLock(ctx context.Context, lock ILock) (bool, error)

	AddPartitionManifests(ctx context.Context, runID string, manifests [][]byte) (int64, error)
	GetPartitionManifests(ctx context.Context, runID string, count int64) ([][]byte, error)

	SetConversionTimestamp(ctx context.Context, runID string) (bool, error)
	GetConversionTimestamp(ctx context.Context, runID string) (time.Time, error)
	DeleteConversionRun(ctx context.Context, runID string) (bool, error)
}

type ConversionRegistryOptions struct {
	Address   string
	Password  string
	KeyPrefix string
}

// ConversionRegistry is the redis-backed registry implementation.
type ConversionRegistry struct {
	logger *slog.Logger
	client *goredislib.Client
	pool   redsyncredis.Pool
	sync   *redsync.Redsync

	KeyPrefix string
}

func NewConversionRegistry(
	ctx context.Context,
	logger *slog.Logger,
	options ConversionRegistryOptions,
) (*ConversionRegistry, error) {
	client := goredislib.NewClient(&goredislib.Options{
		Addr:     options.Address,
		Password: options.Password,
		DB:       0,
	})

	redisPool := goredis.NewPool(client)
	mutexSync := redsync.New(redisPool)

	registry := ConversionRegistry{
		logger:    logger,
		client:    client,
		pool:      redisPool,
		sync:      mutexSync,
		KeyPrefix: options.KeyPrefix,
	}
	return &registry, nil
}

func (obj *ConversionRegistry) key(parts string) string {
	return fmt.Sprintf("%s/%s", obj.KeyPrefix, parts)
}

func (obj *ConversionRegistry) derCtx(ctx context.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(ctx, time.Second*15)
}

// ClaimConversion takes the conversion lock for a store path so only one
// converter works a store at a time.
func (obj *ConversionRegistry) ClaimConversion(ctx context.Context, storePath string, duration time.Duration) (ILock, error) {
	key := obj.key(fmt.Sprintf("conversion-lock/%s", storePath))
	mutex := obj.sync.NewMutex(key, redsync.WithExpiry(duration))
	if err := mutex.TryLockContext(ctx); err != nil {
		return nil, fmt.Errorf("%w| store %s: %v", ErrConversionLocked, storePath, err)
	}
	return mutex, nil
}

func (obj *ConversionRegistry) ReleaseConversionLock(ctx context.Context, lock ILock) (bool, error) {
	if lock == nil {
		return false, ErrLockNotHeld
	}
	return lock.UnlockContext(ctx)
}

// AddPartitionManifests appends encoded manifests to a run's manifest
// list, preserving emission order.
func (obj *ConversionRegistry) AddPartitionManifests(ctx context.Context, runID string, manifests [][]byte) (int64, error) {
	key := obj.key(fmt.Sprintf("run-manifests/%s", runID))

	items := make([]interface{}, len(manifests))
	for i, manifest := range manifests {
		items[i] = manifest
	}

	ctx, cancelFunc := obj.derCtx(ctx)
	defer cancelFunc()

	length, err := obj.client.RPush(ctx, key, items...).Result()
	if err != nil {
		return 0, err
	}
	return length, nil
}

func (obj *ConversionRegistry) GetPartitionManifests(ctx context.Context, runID string, count int64) ([][]byte, error) {
	key := obj.key(fmt.Sprintf("run-manifests/%s", runID))

	ctx, cancelFunc := obj.derCtx(ctx)
	defer cancelFunc()

	items, err := obj.client.LRange(ctx, key, 0, count-1).Result()
	if err != nil {
		return nil, err
	}
	if len(items) == 0 {
		return nil, fmt.Errorf("%w| %s", ErrNoManifestsFound, runID)
	}

	manifests := make([][]byte, len(items))
	for i, item := range items {
		manifests[i] = []byte(item)
	}
	return manifests, nil
}

func (obj *ConversionRegistry) SetConversionTimestamp(ctx context.Context, runID string) (bool, error) {
	key := obj.key(fmt.Sprintf("run-ts/%s", runID))

	ctx, cancelFunc := obj.derCtx(ctx)
	defer cancelFunc()

	err := obj.client.Set(ctx, key, strconv.FormatInt(time.Now().Unix(), 10), 0).Err()
	if err != nil {
		return false, err
	}
	return true, nil
}

func (obj *ConversionRegistry) GetConversionTimestamp(ctx context.Context, runID string) (time.Time, error) {
	key := obj.key(fmt.Sprintf("run-ts/%s", runID))

	ctx, cancelFunc := obj.derCtx(ctx)
	defer cancelFunc()

	value, err := obj.client.Get(ctx, key).Result()
	if err != nil {
		return time.Time{}, err
	}
	unix, err := strconv.ParseInt(value, 10, 64)
	if err != nil {
		return time.Time{}, err
	}
	return time.Unix(unix, 0), nil
}

// DeleteConversionRun drops a run's manifests and timestamp.
func (obj *ConversionRegistry) DeleteConversionRun(ctx context.Context, runID string) (bool, error) {
	ctx, cancelFunc := obj.derCtx(ctx)
	defer cancelFunc()

	removed, err := obj.client.Del(
		ctx,
		obj.key(fmt.Sprintf("run-manifests/%s", runID)),
		obj.key(fmt.Sprintf("run-ts/%s", runID)),
	).Result()
	if err != nil {
		return false, err
	}
	return removed > 0, nil
}
