package storage

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/agrovision/stress-map-service/internal/domain/port"
	"github.com/agrovision/stress-map-service/pkg/errors"
)

// LocalStore implements port.ObjectStore over a plain directory, mapping
// object keys to relative paths. Used for local development and tests.
type LocalStore struct {
	logger  *slog.Logger
	baseDir string
}

func NewLocalStore(logger *slog.Logger, baseDir string) *LocalStore {
	return &LocalStore{
		logger:  logger,
		baseDir: baseDir,
	}
}

func (s *LocalStore) Download(ctx context.Context, key, destPath string) error {
	sourcePath := filepath.Join(s.baseDir, filepath.FromSlash(key))

	source, err := os.Open(sourcePath)
	if err != nil {
		if os.IsNotExist(err) {
			return errors.NewNotFoundError("object").
				WithContext("key", key)
		}
		return errors.WrapStorageError(err, "failed to open object").
			WithContext("key", key)
	}
	defer source.Close()

	dest, err := os.Create(destPath)
	if err != nil {
		return errors.WrapStorageError(err, "failed to create destination file").
			WithContext("dest_path", destPath)
	}
	defer dest.Close()

	if _, err := io.Copy(dest, source); err != nil {
		return errors.WrapStorageError(err, "failed to copy object content").
			WithContext("key", key)
	}

	return nil
}

func (s *LocalStore) Upload(ctx context.Context, localPath, key, contentType string) error {
	destPath := filepath.Join(s.baseDir, filepath.FromSlash(key))

	if err := os.MkdirAll(filepath.Dir(destPath), 0o755); err != nil {
		return errors.WrapStorageError(err, "failed to create destination directory").
			WithContext("key", key)
	}

	source, err := os.Open(localPath)
	if err != nil {
		return errors.WrapStorageError(err, "failed to open source file").
			WithContext("source_path", localPath)
	}
	defer source.Close()

	dest, err := os.Create(destPath)
	if err != nil {
		return errors.WrapStorageError(err, "failed to create destination file").
			WithContext("key", key)
	}
	defer dest.Close()

	if _, err := io.Copy(dest, source); err != nil {
		return errors.WrapStorageError(err, "failed to copy object content").
			WithContext("key", key)
	}

	s.logger.Debug("Stored object locally", "key", key, "path", destPath)
	return nil
}

func (s *LocalStore) PublicURL(key string) string {
	return fmt.Sprintf("file://%s", filepath.Join(s.baseDir, filepath.FromSlash(key)))
}

var _ port.ObjectStore = (*LocalStore)(nil)
