package service

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"bkcnorm/internal/booking"
	"bkcnorm/internal/config"
	"bkcnorm/internal/csvexport"
	"bkcnorm/internal/domain"
	"bkcnorm/internal/pipeline"
	"bkcnorm/internal/xlsxexport"
)

// Export formats accepted by BookingService.Export.
const (
	FormatCSV  = "csv"
	FormatXLSX = "xlsx"
)

const defaultConcurrency = 4

// BatchItem is the outcome of one record in a batch. Exactly one of Result
// and Error is set.
type BatchItem struct {
	Index  int              `json:"index"`
	ID     string           `json:"id"`
	Result *pipeline.Result `json:"result,omitempty"`
	Error  string           `json:"error,omitempty"`
}

// BookingService normalizes extracted booking confirmations.
type BookingService interface {
	Normalize(ctx context.Context, raw []byte) (*pipeline.Result, error)
	NormalizeBatch(ctx context.Context, raws [][]byte) ([]BatchItem, error)
	Export(ctx context.Context, results []*pipeline.Result, format string, w io.Writer) error
	Columns() []string
}

type bookingService struct {
	pipeline *pipeline.Pipeline
	batch    config.BatchConfig
	logger   *zap.Logger
}

// NewBookingService creates a new BookingService implementation.
func NewBookingService(p *pipeline.Pipeline, batch config.BatchConfig, logger *zap.Logger) BookingService {
	if batch.Concurrency <= 0 {
		batch.Concurrency = defaultConcurrency
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &bookingService{pipeline: p, batch: batch, logger: logger.Named("booking")}
}

func (s *bookingService) Normalize(ctx context.Context, raw []byte) (*pipeline.Result, error) {
	rec, err := booking.ParseExtraction(raw)
	if err != nil {
		return nil, err
	}
	return s.pipeline.Run(ctx, rec), nil
}

// NormalizeBatch normalizes raws concurrently. A record that fails to parse
// is reported in its item and does not affect the others; only cancellation
// of ctx fails the whole batch.
func (s *bookingService) NormalizeBatch(ctx context.Context, raws [][]byte) ([]BatchItem, error) {
	if len(raws) == 0 {
		return nil, domain.ErrEmptyBatch
	}
	if s.batch.MaxItems > 0 && len(raws) > s.batch.MaxItems {
		return nil, fmt.Errorf("%w: %d records, limit is %d", domain.ErrBatchTooLarge, len(raws), s.batch.MaxItems)
	}

	items := make([]BatchItem, len(raws))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.batch.Concurrency)

	for i, raw := range raws {
		i, raw := i, raw
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			item := BatchItem{Index: i, ID: uuid.NewString()}
			res, err := s.Normalize(gctx, raw)
			if err != nil {
				s.logger.Warn("batch record rejected", zap.Int("index", i), zap.String("id", item.ID), zap.Error(err))
				item.Error = err.Error()
			} else {
				item.Result = res
			}
			items[i] = item
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	s.logger.Debug("batch normalized", zap.Int("records", len(items)))
	return items, nil
}

func (s *bookingService) Export(ctx context.Context, results []*pipeline.Result, format string, w io.Writer) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	columns := s.pipeline.ExportColumns()
	switch strings.ToLower(strings.TrimSpace(format)) {
	case FormatCSV, "":
		return csvexport.Write(w, columns, results)
	case FormatXLSX:
		return xlsxexport.Write(w, columns, results)
	default:
		return fmt.Errorf("%w: %q", domain.ErrUnsupportedExportFormat, format)
	}
}

func (s *bookingService) Columns() []string {
	return s.pipeline.ExportColumns()
}

// Results collects the successful results of a batch in order.
func Results(items []BatchItem) []*pipeline.Result {
	out := make([]*pipeline.Result, 0, len(items))
	for _, item := range items {
		if item.Result != nil {
			out = append(out, item.Result)
		}
	}
	return out
}
