package storage

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"

	"cloud.google.com/go/storage"

	"github.com/agrovision/stress-map-service/internal/domain/port"
	"github.com/agrovision/stress-map-service/pkg/errors"
)

// GCSStore implements port.ObjectStore against a single GCS bucket.
type GCSStore struct {
	logger     *slog.Logger
	gcsClient  *storage.Client
	bucketName string
}

func NewGCSStore(logger *slog.Logger, gcsClient *storage.Client, bucketName string) *GCSStore {
	return &GCSStore{
		logger:     logger,
		gcsClient:  gcsClient,
		bucketName: bucketName,
	}
}

func (s *GCSStore) Download(ctx context.Context, key, destPath string) error {
	obj := s.gcsClient.Bucket(s.bucketName).Object(key)

	reader, err := obj.NewReader(ctx)
	if err != nil {
		if err == storage.ErrObjectNotExist {
			return errors.WrapNotFoundError(err, "object").
				WithContext("bucket", s.bucketName).
				WithContext("key", key)
		}
		return errors.WrapStorageError(err, "failed to open object reader").
			WithContext("bucket", s.bucketName).
			WithContext("key", key)
	}
	defer reader.Close()

	file, err := os.Create(destPath)
	if err != nil {
		return errors.WrapStorageError(err, "failed to create destination file").
			WithContext("dest_path", destPath)
	}
	defer file.Close()

	if _, err := io.Copy(file, reader); err != nil {
		return errors.WrapStorageError(err, "failed to download object").
			WithContext("bucket", s.bucketName).
			WithContext("key", key)
	}

	return nil
}

func (s *GCSStore) Upload(ctx context.Context, localPath, key, contentType string) error {
	file, err := os.Open(localPath)
	if err != nil {
		return errors.WrapStorageError(err, "failed to open source file").
			WithContext("source_path", localPath)
	}
	defer file.Close()

	obj := s.gcsClient.Bucket(s.bucketName).Object(key)
	writer := obj.NewWriter(ctx)
	writer.ContentType = contentType

	if _, err := io.Copy(writer, file); err != nil {
		writer.Close()
		return errors.WrapStorageError(err, "failed to upload object content").
			WithContext("bucket", s.bucketName).
			WithContext("key", key)
	}

	if err := writer.Close(); err != nil {
		return errors.WrapStorageError(err, "failed to close object writer").
			WithContext("bucket", s.bucketName).
			WithContext("key", key)
	}

	s.logger.Info("Uploaded object to GCS", "bucket", s.bucketName, "key", key)
	return nil
}

func (s *GCSStore) PublicURL(key string) string {
	return fmt.Sprintf("https://storage.googleapis.com/%s/%s", s.bucketName, key)
}

var _ port.ObjectStore = (*GCSStore)(nil)
