package service

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"path"
	"time"

	"github.com/andresuchdata/pomonitor/backend-go/internal/domain"
	"github.com/andresuchdata/pomonitor/backend-go/internal/report"
	"github.com/andresuchdata/pomonitor/backend-go/internal/storage"
	"github.com/rs/zerolog/log"
)

// ErrStorageDisabled is returned when publishing without object storage.
var ErrStorageDisabled = errors.New("report storage is not configured")

// ReportService exports PO lists as CSV and archives them.
type ReportService struct {
	po      *POService
	storage storage.ObjectStorage
	prefix  string
	now     func() time.Time
}

// NewReportService builds the exporter. store may be nil, in which case
// Publish fails with ErrStorageDisabled.
func NewReportService(po *POService, store storage.ObjectStorage, prefix string) *ReportService {
	return &ReportService{po: po, storage: store, prefix: prefix, now: time.Now}
}

// Export writes the filtered PO list, classified as of today, to w.
func (s *ReportService) Export(ctx context.Context, filter domain.POFilter, w io.Writer) (int, error) {
	views, err := s.po.List(ctx, filter)
	if err != nil {
		return 0, err
	}
	if err := report.WriteCSV(w, views); err != nil {
		return 0, fmt.Errorf("failed to write report: %w", err)
	}
	return len(views), nil
}

// Publish exports the filtered list and uploads it. It returns the object key.
func (s *ReportService) Publish(ctx context.Context, filter domain.POFilter) (string, error) {
	if s.storage == nil {
		return "", ErrStorageDisabled
	}

	var buf bytes.Buffer
	count, err := s.Export(ctx, filter, &buf)
	if err != nil {
		return "", err
	}

	key := path.Join(s.prefix, fmt.Sprintf("po_report_%s_%d.csv", s.po.Today().String(), s.now().Unix()))
	if err := s.storage.UploadObject(ctx, key, buf.Bytes(), "text/csv"); err != nil {
		return "", err
	}

	log.Info().Str("key", key).Int("rows", count).Msg("po report published")
	return key, nil
}

// ListPublished lists archived reports.
func (s *ReportService) ListPublished(ctx context.Context) ([]storage.ObjectInfo, error) {
	if s.storage == nil {
		return nil, ErrStorageDisabled
	}
	return s.storage.ListObjects(ctx, s.prefix)
}
