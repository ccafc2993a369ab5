// internal/services/storage_service.go
package services

import (
	"bytes"
	"context"
	"fmt"
	"io"

	"github.com/aws/aws-sdk-go/aws"
	"github.com/aws/aws-sdk-go/aws/credentials"
	"github.com/aws/aws-sdk-go/aws/session"
	"github.com/aws/aws-sdk-go/service/s3"
	"github.com/sirupsen/logrus"

	"github.com/patentops/disclosure-api/internal/config"
)

// BlobStore is the opaque byte store for retained PDFs, keyed by object key.
// The disclosure service treats it as an external collaborator: a put
// failure degrades ingestion (no PDF retained) rather than failing it.
type BlobStore interface {
	Put(ctx context.Context, key string, data []byte, contentType string) error
	Get(ctx context.Context, key string) ([]byte, error)
	Delete(ctx context.Context, key string) error
}

// StorageService is the S3 implementation, normally pointed at a MinIO
// endpoint. Without an endpoint configured it runs disabled and every call
// reports ErrStorageUnavailable.
type StorageService struct {
	s3Client *s3.S3
	bucket   string
}

func NewStorageService(cfg config.StorageConfig) (*StorageService, error) {
	if cfg.Endpoint == "" {
		// Disabled blob store for local development without MinIO.
		return &StorageService{bucket: cfg.Bucket}, nil
	}

	sess, err := session.NewSession(&aws.Config{
		Region:           aws.String(cfg.Region),
		Endpoint:         aws.String(cfg.Endpoint),
		Credentials:      credentials.NewStaticCredentials(cfg.AccessKey, cfg.SecretKey, ""),
		S3ForcePathStyle: aws.Bool(true),
		DisableSSL:       aws.Bool(true),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create storage session: %w", err)
	}

	return &StorageService{
		s3Client: s3.New(sess),
		bucket:   cfg.Bucket,
	}, nil
}

func (s *StorageService) Enabled() bool {
	return s.s3Client != nil
}

// EnsureBucket creates the bucket on startup if it does not exist yet.
func (s *StorageService) EnsureBucket(ctx context.Context) error {
	if !s.Enabled() {
		return nil
	}

	_, err := s.s3Client.HeadBucketWithContext(ctx, &s3.HeadBucketInput{
		Bucket: aws.String(s.bucket),
	})
	if err == nil {
		return nil
	}

	_, err = s.s3Client.CreateBucketWithContext(ctx, &s3.CreateBucketInput{
		Bucket: aws.String(s.bucket),
	})
	if err != nil {
		return fmt.Errorf("failed to create bucket %s: %w", s.bucket, err)
	}

	logrus.WithField("bucket", s.bucket).Info("Created storage bucket")
	return nil
}

func (s *StorageService) Put(ctx context.Context, key string, data []byte, contentType string) error {
	if !s.Enabled() {
		return ErrStorageUnavailable
	}

	_, err := s.s3Client.PutObjectWithContext(ctx, &s3.PutObjectInput{
		Bucket:        aws.String(s.bucket),
		Key:           aws.String(key),
		Body:          bytes.NewReader(data),
		ContentType:   aws.String(contentType),
		ContentLength: aws.Int64(int64(len(data))),
	})
	if err != nil {
		return fmt.Errorf("failed to upload object %s: %w", key, err)
	}

	return nil
}

func (s *StorageService) Get(ctx context.Context, key string) ([]byte, error) {
	if !s.Enabled() {
		return nil, ErrStorageUnavailable
	}

	out, err := s.s3Client.GetObjectWithContext(ctx, &s3.GetObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to download object %s: %w", key, err)
	}
	defer out.Body.Close()

	data, err := io.ReadAll(out.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read object %s: %w", key, err)
	}

	return data, nil
}

func (s *StorageService) Delete(ctx context.Context, key string) error {
	if !s.Enabled() {
		return ErrStorageUnavailable
	}

	_, err := s.s3Client.DeleteObjectWithContext(ctx, &s3.DeleteObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		return fmt.Errorf("failed to delete object %s: %w", key, err)
	}

	return nil
}
