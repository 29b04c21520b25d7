package storage

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
	"github.com/rifasolidaria/rifa/config"
)

// ProofStorage keeps proof-of-payment images in an S3-compatible bucket.
// Objects are named {phone}-{epoch-millis}{ext} under the comprovantes/
// prefix and are publicly readable through the returned URL.
type ProofStorage struct {
	client *minio.Client
	bucket string
}

func NewProofStorage(cfg config.StorageConfig) (*ProofStorage, error) {
	client, err := minio.New(cfg.Endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(cfg.AccessKey, cfg.SecretKey, ""),
		Secure: cfg.UseSSL,
	})
	if err != nil {
		return nil, fmt.Errorf("connect object storage: %w", err)
	}
	return &ProofStorage{client: client, bucket: cfg.Bucket}, nil
}

// EnsureBucket creates the proof bucket when it does not exist yet.
func (s *ProofStorage) EnsureBucket(ctx context.Context) error {
	exists, err := s.client.BucketExists(ctx, s.bucket)
	if err != nil {
		return fmt.Errorf("check bucket %s: %w", s.bucket, err)
	}
	if exists {
		return nil
	}
	if err := s.client.MakeBucket(ctx, s.bucket, minio.MakeBucketOptions{}); err != nil {
		return fmt.Errorf("create bucket %s: %w", s.bucket, err)
	}
	return nil
}

func (s *ProofStorage) Upload(ctx context.Context, r io.Reader, size int64, contentType, phone, ext string) (string, error) {
	key := fmt.Sprintf("comprovantes/%s-%d%s", phone, time.Now().UnixMilli(), ext)

	_, err := s.client.PutObject(ctx, s.bucket, key, r, size, minio.PutObjectOptions{
		ContentType: contentType,
	})
	if err != nil {
		return "", fmt.Errorf("upload proof: %w", err)
	}

	return fmt.Sprintf("%s/%s/%s", s.client.EndpointURL(), s.bucket, key), nil
}
