package objectstore

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"snapshotd/internal/providers"
	"snapshotd/internal/structures"
	"strings"
	"time"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
)

const (
	BackendMinio = "minio"

	bootstrapTimeout = 10 * time.Second
)

// MinioStore implements ObjectStore on an S3-compatible bucket.
type MinioStore struct {
	client        *minio.Client
	bucket        string
	publicBaseURL string
	logger        providers.Logger
}

func NewMinioStore(cfg *structures.StorageConfig, logger providers.Logger) (*MinioStore, error) {
	logger.Infof(providers.TypeApp, "Initializing MinIO client for endpoint %s", cfg.Endpoint)

	client, err := minio.New(cfg.Endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(cfg.AccessKey, cfg.SecretKey, ""),
		Secure: cfg.UseSSL,
		Region: cfg.Region,
	})
	if err != nil {
		return nil, fmt.Errorf("unable to create MinIO client: %w", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), bootstrapTimeout)
	defer cancel()

	exists, err := client.BucketExists(ctx, cfg.Bucket)
	if err != nil {
		return nil, fmt.Errorf("unable to check bucket %q: %w", cfg.Bucket, err)
	}
	if !exists {
		logger.Infof(providers.TypeApp, "Bucket %s not found, creating", cfg.Bucket)
		err = client.MakeBucket(ctx, cfg.Bucket, minio.MakeBucketOptions{Region: cfg.Region})
		if err != nil {
			return nil, fmt.Errorf("unable to create bucket %q: %w", cfg.Bucket, err)
		}
	}

	logger.Infof(providers.TypeApp, "MinIO object store ready, bucket %s", cfg.Bucket)
	return &MinioStore{
		client:        client,
		bucket:        cfg.Bucket,
		publicBaseURL: cfg.PublicBaseURL,
		logger:        logger,
	}, nil
}

func isNotFound(err error) bool {
	code := minio.ToErrorResponse(err).Code
	return code == "NoSuchKey" || code == "NoSuchObject"
}

func (s *MinioStore) Get(ctx context.Context, key string) ([]byte, error) {
	obj, err := s.client.GetObject(ctx, s.bucket, key, minio.GetObjectOptions{})
	if err != nil {
		if isNotFound(err) {
			return nil, ErrObjectNotFound
		}
		return nil, fmt.Errorf("get %s: %w", key, err)
	}
	defer obj.Close()

	data, err := io.ReadAll(obj)
	if err != nil {
		if isNotFound(err) {
			return nil, ErrObjectNotFound
		}
		return nil, fmt.Errorf("read %s: %w", key, err)
	}
	return data, nil
}

func (s *MinioStore) Put(ctx context.Context, key string, data []byte, contentType string) error {
	info, err := s.client.PutObject(ctx, s.bucket, key, bytes.NewReader(data), int64(len(data)), minio.PutObjectOptions{
		ContentType: contentType,
	})
	if err != nil {
		return fmt.Errorf("put %s: %w", key, err)
	}
	s.logger.Debugf(providers.TypeStore, "Stored %s, size %d, etag %s", key, info.Size, info.ETag)
	return nil
}

// List walks the whole prefix before ordering: the server returns keys in
// lexical order, so truncating early would miss newer objects.
func (s *MinioStore) List(ctx context.Context, prefix string, limit int) ([]ObjectInfo, error) {
	list := make([]ObjectInfo, 0)
	for obj := range s.client.ListObjects(ctx, s.bucket, minio.ListObjectsOptions{Prefix: prefix, Recursive: true}) {
		if obj.Err != nil {
			return nil, fmt.Errorf("list %s: %w", prefix, obj.Err)
		}
		list = append(list, ObjectInfo{Key: obj.Key, Size: obj.Size, LastModified: obj.LastModified})
	}

	return newestFirst(list, limit), nil
}

func (s *MinioStore) Delete(ctx context.Context, key string) error {
	if err := s.client.RemoveObject(ctx, s.bucket, key, minio.RemoveObjectOptions{}); err != nil {
		return fmt.Errorf("delete %s: %w", key, err)
	}
	return nil
}

func (s *MinioStore) URL(key string) string {
	return objectURL(s.publicBaseURL, s.client.EndpointURL().String(), s.bucket, key)
}

func (s *MinioStore) Backend() string {
	return BackendMinio
}

// objectURL prefers the public base URL and falls back to path-style
// endpoint/bucket/key addressing.
func objectURL(publicBaseURL, endpoint, bucket, key string) string {
	if publicBaseURL != "" {
		return strings.TrimRight(publicBaseURL, "/") + "/" + key
	}
	return strings.TrimRight(endpoint, "/") + "/" + bucket + "/" + key
}
