// Package objectstore uploads admitted crops to an S3-compatible bucket
// for off-site retention. Uploads are best effort; the corpus on disk
// stays authoritative.
package objectstore

import (
	"context"
	"fmt"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
)

// Store wraps an S3-compatible client bound to one bucket.
type Store struct {
	client *minio.Client
	bucket string
}

// New connects to an S3-compatible endpoint. An empty endpoint or access
// key disables the store: callers get nil and should skip uploads.
func New(endpoint, region, accessKey, secretKey, bucket string) (*Store, error) {
	if endpoint == "" || accessKey == "" {
		return nil, nil
	}

	client, err := minio.New(endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(accessKey, secretKey, ""),
		Secure: true,
		Region: region,
	})
	if err != nil {
		return nil, fmt.Errorf("connecting to object store: %w", err)
	}
	return &Store{client: client, bucket: bucket}, nil
}

// Put uploads a local file under the given object key.
func (s *Store) Put(ctx context.Context, key, localPath string) error {
	_, err := s.client.FPutObject(ctx, s.bucket, key, localPath, minio.PutObjectOptions{
		ContentType: "image/jpeg",
	})
	if err != nil {
		return fmt.Errorf("uploading %s: %w", key, err)
	}
	return nil
}
