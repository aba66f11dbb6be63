package service

import (
	"bytes"
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"time"

	"github.com/finoa/finos-backend/internal/domain"
	"github.com/finoa/finos-backend/internal/util"
	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"
	"golang.org/x/sync/errgroup"
)

// SummaryContentType is the media type of rendered summaries
const SummaryContentType = "text/csv"

// ReportStore persists rendered reports and hands out temporary links to them
type ReportStore interface {
	Upload(ctx context.Context, key string, data io.Reader, contentType string, size int64) (string, error)
	GeneratePresignedURL(ctx context.Context, key string, expiry time.Duration) (string, error)
}

// SummaryService builds the owner's spending summary
type SummaryService struct {
	aggregation *AggregationService
	reportStore ReportStore
	exportTTL   time.Duration
}

// NewSummaryService creates a new SummaryService
func NewSummaryService(aggregation *AggregationService) *SummaryService {
	return &SummaryService{aggregation: aggregation}
}

// SetReportStore enables Export. Links expire after ttl.
func (s *SummaryService) SetReportStore(store ReportStore, ttl time.Duration) {
	s.reportStore = store
	s.exportTTL = ttl
}

// ExportEnabled reports whether a report store is configured
func (s *SummaryService) ExportEnabled() bool {
	return s.reportStore != nil
}

// BuildSummary returns this month's category totals, the monthly history and
// last month's per-category totals. Any failed aggregation fails the build.
func (s *SummaryService) BuildSummary(ctx context.Context, ownerID uuid.UUID, now time.Time) (*domain.Summary, error) {
	now = now.In(s.aggregation.Location())
	monthStart := util.CurrentMonthStart(now)
	lastStart, lastEnd := util.PreviousCalendarMonth(now)

	summary := &domain.Summary{}
	var lastMonth []domain.CategoryTotal

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		totals, err := s.aggregation.SumByCategory(gctx, ownerID, monthStart, now)
		summary.ByCategory = totals
		return err
	})
	g.Go(func() error {
		totals, err := s.aggregation.SumByMonth(gctx, ownerID)
		summary.Monthly = totals
		return err
	})
	g.Go(func() error {
		totals, err := s.aggregation.SumByCategory(gctx, ownerID, lastStart, lastEnd)
		lastMonth = totals
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("build summary: %w", err)
	}

	summary.LastMonthTotals = make(map[domain.Category]decimal.Decimal, len(lastMonth))
	for _, row := range lastMonth {
		summary.LastMonthTotals[row.Category] = row.Total
	}
	return summary, nil
}

// RenderCSV writes a Category,Total table with one row per entry.
// Totals keep their decimal form.
func RenderCSV(byCategory []domain.CategoryTotal) ([]byte, error) {
	var buf bytes.Buffer
	w := csv.NewWriter(&buf)

	if err := w.Write([]string{"Category", "Total"}); err != nil {
		return nil, err
	}
	for _, row := range byCategory {
		if err := w.Write([]string{string(row.Category), row.Total.String()}); err != nil {
			return nil, err
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return nil, fmt.Errorf("render summary csv: %w", err)
	}

	// csv.Writer terminates every record; the table carries no trailing newline
	return bytes.TrimSuffix(buf.Bytes(), []byte("\n")), nil
}

// Export renders this month's category totals and uploads them to the report store
func (s *SummaryService) Export(ctx context.Context, ownerID uuid.UUID, now time.Time) (*domain.SummaryExport, error) {
	if s.reportStore == nil {
		return nil, domain.ErrExportDisabled
	}

	summary, err := s.BuildSummary(ctx, ownerID, now)
	if err != nil {
		return nil, err
	}
	data, err := RenderCSV(summary.ByCategory)
	if err != nil {
		return nil, err
	}

	key := fmt.Sprintf("summaries/%s/%s.csv", ownerID, now.UTC().Format("20060102T150405Z"))
	if _, err := s.reportStore.Upload(ctx, key, bytes.NewReader(data), SummaryContentType, int64(len(data))); err != nil {
		return nil, fmt.Errorf("upload summary: %w", err)
	}

	url, err := s.reportStore.GeneratePresignedURL(ctx, key, s.exportTTL)
	if err != nil {
		return nil, fmt.Errorf("presign summary: %w", err)
	}

	log.Info().
		Str("owner_id", ownerID.String()).
		Str("key", key).
		Msg("Exported summary")

	return &domain.SummaryExport{
		Key:       key,
		URL:       url,
		ExpiresAt: now.Add(s.exportTTL).UTC(),
	}, nil
}
