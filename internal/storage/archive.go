package storage

import (
	"context"
	"fmt"
	"os"
	"path"
	"strings"

	"github.com/chartmuseum/storage"

	"github.com/plannink/forecast-api/internal/config"
)

// ArchiveStore implements ObjectStorage for the S3-compatible bucket that
// keeps the original uploaded spreadsheets.
type ArchiveStore struct {
	backend storage.Backend
	prefix  string
}

// NewArchiveStore builds an ArchiveStore backed by chartmuseum's Amazon
// storage backend.
func NewArchiveStore(cfg config.ArchiveConfig) (*ArchiveStore, error) {
	if cfg.Endpoint == "" {
		return nil, fmt.Errorf("archive endpoint must be provided")
	}
	if cfg.AccessKey == "" || cfg.SecretKey == "" {
		return nil, fmt.Errorf("archive credentials must be provided")
	}
	if cfg.Bucket == "" {
		return nil, fmt.Errorf("archive bucket must be provided")
	}

	endpoint := cfg.Endpoint
	if !strings.HasPrefix(endpoint, "http://") && !strings.HasPrefix(endpoint, "https://") {
		scheme := "https"
		if !cfg.UseSSL {
			scheme = "http"
		}
		endpoint = fmt.Sprintf("%s://%s", scheme, strings.TrimPrefix(cfg.Endpoint, "//"))
	}

	region := strings.TrimSpace(cfg.Region)
	if region == "" {
		region = "us-east-1"
	}

	os.Setenv("AWS_ACCESS_KEY_ID", cfg.AccessKey)
	os.Setenv("AWS_SECRET_ACCESS_KEY", cfg.SecretKey)
	os.Setenv("AWS_REGION", region)
	os.Setenv("AWS_DEFAULT_REGION", region)

	backend := storage.NewAmazonS3BackendWithOptions(
		cfg.Bucket,
		"", // no prefix
		region,
		endpoint,
		"",
		&storage.AmazonS3Options{
			S3ForcePathStyle: awsBool(true),
		},
	)

	return &ArchiveStore{
		backend: backend,
		prefix:  cfg.Prefix,
	}, nil
}

// ListObjects lists all archived objects for a given prefix.
func (s *ArchiveStore) ListObjects(ctx context.Context, prefix string) ([]ObjectInfo, error) {
	files, err := s.backend.ListObjects(path.Join(s.prefix, prefix))
	if err != nil {
		return nil, fmt.Errorf("archive list failed: %w", err)
	}
	results := make([]ObjectInfo, 0)
	for _, object := range files {
		results = append(results, ObjectInfo{
			Key:  object.Path,
			Size: int64(len(object.Content)),
		})
	}
	return results, nil
}

// UploadObject stores an object under the archive prefix.
func (s *ArchiveStore) UploadObject(ctx context.Context, key string, data []byte) error {
	if err := s.backend.PutObject(path.Join(s.prefix, key), data); err != nil {
		return fmt.Errorf("archive upload failed: %w", err)
	}
	return nil
}

var _ ObjectStorage = (*ArchiveStore)(nil)

func awsBool(v bool) *bool {
	return &v
}
