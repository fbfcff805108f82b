package storage

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/feature/s3/manager"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"golang.org/x/sync/errgroup"
)

const (
	ObjectStorageAuthTypeStatic = "static"

	// tables in a remote store are downloaded a few at a time
	downloadConcurrency = 4
)

type ObjectStorageOptions struct {
	Endpoint     string
	Region       string
	AuthKey      string
	AuthSecret   string
	UsePathStyle bool
	AuthType     string
}

func NewObjectStorageOptionsFromStaticCredentials(
	endpoint string,
	region string,
	authKey string,
	authSecret string,
	usePathStyle bool,
) *ObjectStorageOptions {
	return &ObjectStorageOptions{
		Endpoint:     endpoint,
		Region:       region,
		AuthKey:      authKey,
		AuthSecret:   authSecret,
		UsePathStyle: usePathStyle,
		AuthType:     ObjectStorageAuthTypeStatic,
	}
}

// ObjectStorage fetches remote observation stores from an S3-compatible
// bucket into a local directory the parquet table store can read.
type ObjectStorage struct {
	logger *slog.Logger

	client *s3.Client
}

func NewObjectStorage(
	ctx context.Context,
	logger *slog.Logger,
	options ObjectStorageOptions,
) (*ObjectStorage, error) {
	configFuncs := make([]func(*config.LoadOptions) error, 0)
	configFuncs = append(configFuncs, config.WithRegion(options.Region))

	if options.AuthType == ObjectStorageAuthTypeStatic {
		creds := credentials.NewStaticCredentialsProvider(options.AuthKey, options.AuthSecret, "")
		configFuncs = append(configFuncs, config.WithCredentialsProvider(creds))
	}

	s3Config, err := config.LoadDefaultConfig(ctx, configFuncs...)
	if err != nil {
		return nil, err
	}

	client := s3.NewFromConfig(s3Config, func(o *s3.Options) {
		o.BaseEndpoint = aws.String(options.Endpoint)
		o.UsePathStyle = options.UsePathStyle
	})

	return &ObjectStorage{
		logger: logger,
		client: client,
	}, nil
}

func (obj *ObjectStorage) ListObjects(ctx context.Context, bucket string, prefix string) ([]string, error) {
	maxKeys := int32(10_000)
	listObjectsOutput, err := obj.client.ListObjectsV2(ctx, &s3.ListObjectsV2Input{
		Bucket:  &bucket,
		Prefix:  aws.String(prefix),
		MaxKeys: &maxKeys,
	})
	if err != nil {
		return nil, err
	}

	keys := make([]string, len(listObjectsOutput.Contents))
	for i, object := range listObjectsOutput.Contents {
		keys[i] = *object.Key
	}
	return keys, nil
}

func (obj *ObjectStorage) DownloadObjectToFile(ctx context.Context, bucket, key, filePath string) error {
	obj.logger.Info(
		"downloading object",
		slog.String("bucket", bucket), slog.String("key", key), slog.String("file", filePath),
	)

	if err := os.MkdirAll(filepath.Dir(filePath), 0o755); err != nil {
		return err
	}
	file, err := os.Create(filePath)
	if err != nil {
		return err
	}
	defer file.Close()

	downloader := manager.NewDownloader(obj.client)
	_, err = downloader.Download(ctx, file, &s3.GetObjectInput{
		Bucket: &bucket,
		Key:    &key,
	})
	return err
}

// DownloadTableStore mirrors every object under the store prefix into the
// destination directory so a DirStore can read the tables locally. Table
// files download concurrently.
func (obj *ObjectStorage) DownloadTableStore(ctx context.Context, bucket, prefix, destDir string) error {
	keys, err := obj.ListObjects(ctx, bucket, prefix)
	if err != nil {
		return err
	}
	if len(keys) == 0 {
		return fmt.Errorf("%w| s3://%s/%s", ErrEmptyStorePrefix, bucket, prefix)
	}

	group, groupCtx := errgroup.WithContext(ctx)
	group.SetLimit(downloadConcurrency)
	for _, key := range keys {
		key := key
		group.Go(func() error {
			return obj.DownloadObjectToFile(groupCtx, bucket, key, filepath.Join(destDir, storeRelativePath(key, prefix)))
		})
	}
	return group.Wait()
}

// storeRelativePath strips the store prefix from an object key so the
// local mirror keeps the store's internal layout.
func storeRelativePath(key, prefix string) string {
	return strings.TrimPrefix(strings.TrimPrefix(key, prefix), "/")
}
