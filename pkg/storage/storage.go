package storage

import (
	"context"
	"errors"
	"net/url"
	"os"
	"path/filepath"
	"strings"

	"github.com/sirupsen/logrus"
)

var ErrNotFound = errors.New("storage: object not found")

// Storage is a write-once blob store keyed by hierarchical path. The core
// never interprets path structure beyond building it.
type Storage interface {
	Upload(ctx context.Context, path string, data []byte) (string, error)
	Get(ctx context.Context, path string) ([]byte, error)
	URL(path string) string
}

type fileStorage struct {
	logger   *logrus.Logger
	basePath string
	baseURL  string
}

// NewFileStorage stores blobs under basePath and serves them at baseURL.
func NewFileStorage(logger *logrus.Logger, basePath, baseURL string) Storage {
	return &fileStorage{
		logger:   logger,
		basePath: basePath,
		baseURL:  baseURL,
	}
}

func (s *fileStorage) resolve(path string) string {
	return filepath.Join(s.basePath, strings.TrimPrefix(path, "/"))
}

func (s *fileStorage) Upload(ctx context.Context, path string, data []byte) (string, error) {
	full := s.resolve(path)

	if err := os.MkdirAll(filepath.Dir(full), 0o755); err != nil {
		s.logger.WithContext(ctx).WithError(err).WithField("path", path).Error("an error occurred while creating storage directory")
		return "", err
	}

	if err := os.WriteFile(full, data, 0o644); err != nil {
		s.logger.WithContext(ctx).WithError(err).WithField("path", path).Error("an error occurred while writing object")
		return "", err
	}

	return strings.TrimPrefix(path, "/"), nil
}

func (s *fileStorage) Get(ctx context.Context, path string) ([]byte, error) {
	data, err := os.ReadFile(s.resolve(path))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, ErrNotFound
		}
		s.logger.WithContext(ctx).WithError(err).WithField("path", path).Error("an error occurred while reading object")
		return nil, err
	}

	return data, nil
}

func (s *fileStorage) URL(path string) string {
	escaped := url.PathEscape(strings.TrimPrefix(path, "/"))
	escaped = strings.ReplaceAll(escaped, "%2F", "/")

	return strings.TrimSuffix(s.baseURL, "/") + "/" + escaped
}
