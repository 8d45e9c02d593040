package ingest

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/plannink/forecast-api/internal/repository"
	"github.com/plannink/forecast-api/internal/storage"
)

// Service loads spreadsheet files into the product store. archive may be
// nil, in which case the original file is not kept.
type Service struct {
	repo    *repository.IngestRepository
	archive storage.ObjectStorage
}

func NewService(repo *repository.IngestRepository, archive storage.ObjectStorage) *Service {
	return &Service{repo: repo, archive: archive}
}

// Result summarizes one ingested file.
type Result struct {
	FileName string        `json:"file_name"`
	Products int           `json:"products"`
	Warnings int           `json:"warnings"`
	Elapsed  time.Duration `json:"elapsed"`
}

// IngestFile parses an XLSX or CSV product sheet, normalizes its headers,
// and upserts products with their consumption history.
func (s *Service) IngestFile(ctx context.Context, path string) (*Result, error) {
	start := time.Now()

	var headers []string
	var rows [][]string
	var err error

	switch strings.ToLower(filepath.Ext(path)) {
	case ".xlsx":
		headers, rows, err = readXLSX(path)
	case ".csv":
		headers, rows, err = readCSV(path)
	default:
		return nil, fmt.Errorf("unsupported file type: %s", filepath.Ext(path))
	}
	if err != nil {
		return nil, err
	}

	products, warnings := ParseRecords(headers, rows)
	for _, warn := range warnings {
		log.Warn().Str("product", warn.ProductCode).Str("field", warn.Field).Msg(warn.Message)
	}

	for i := range products {
		p := &products[i]
		if err := s.repo.UpsertProduct(ctx, p); err != nil {
			return nil, err
		}
		for monthKey, quantity := range p.History {
			if err := s.repo.UpsertHistory(ctx, p.Code, monthKey, quantity); err != nil {
				return nil, err
			}
		}
	}

	s.archiveFile(ctx, path)

	result := &Result{
		FileName: filepath.Base(path),
		Products: len(products),
		Warnings: len(warnings),
		Elapsed:  time.Since(start),
	}

	log.Info().
		Str("file", result.FileName).
		Int("products", result.Products).
		Int("warnings", result.Warnings).
		Dur("elapsed", result.Elapsed).
		Msg("file ingested")

	return result, nil
}

// ListArchived returns the archived uploads under a key prefix. Without an
// archive backend it returns an empty list.
func (s *Service) ListArchived(ctx context.Context, prefix string) ([]storage.ObjectInfo, error) {
	if s.archive == nil {
		return []storage.ObjectInfo{}, nil
	}

	return s.archive.ListObjects(ctx, prefix)
}

// archiveFile stores the original upload; failures are logged, never fatal.
func (s *Service) archiveFile(ctx context.Context, path string) {
	if s.archive == nil {
		return
	}

	data, err := os.ReadFile(path)
	if err != nil {
		log.Warn().Err(err).Str("file", path).Msg("archive read failed")
		return
	}

	key := fmt.Sprintf("%s/%s", time.Now().Format("2006-01-02"), filepath.Base(path))
	if err := s.archive.UploadObject(ctx, key, data); err != nil {
		log.Warn().Err(err).Str("key", key).Msg("archive upload failed")
	}
}
