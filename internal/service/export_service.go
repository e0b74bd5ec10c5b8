package service

import (
	"context"
	"errors"
	"fmt"
	"io"
	"sort"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/noah-isme/sma-schedule-engine/internal/dto"
	"github.com/noah-isme/sma-schedule-engine/internal/models"
	appErrors "github.com/noah-isme/sma-schedule-engine/pkg/errors"
	"github.com/noah-isme/sma-schedule-engine/pkg/export"
)

// ExportFormat names a supported export encoding.
type ExportFormat string

const (
	ExportFormatCSV ExportFormat = "csv"
	ExportFormatPDF ExportFormat = "pdf"
)

// ParseExportFormat accepts csv or pdf, case-insensitively. Empty means csv.
func ParseExportFormat(raw string) (ExportFormat, error) {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "", string(ExportFormatCSV):
		return ExportFormatCSV, nil
	case string(ExportFormatPDF):
		return ExportFormatPDF, nil
	default:
		return "", appErrors.Clone(appErrors.ErrUnsupportedFormat, fmt.Sprintf("unsupported export format %q", raw))
	}
}

type schedulePager interface {
	List(ctx context.Context, filter models.ScheduleFilter) ([]models.ScheduleEntry, *models.Pagination, error)
}

type scheduleBulkWriter interface {
	BulkCreate(ctx context.Context, req dto.BulkCreateScheduleRequest) ([]models.ScheduleEntry, error)
}

type csvCodec interface {
	Render(rows interface{}) ([]byte, error)
	Parse(r io.Reader, out interface{}) error
}

type pdfRenderer interface {
	Render(data export.Dataset, title, groupBy string) ([]byte, error)
}

// ExportResult is a rendered export ready to be streamed.
type ExportResult struct {
	Filename    string
	ContentType string
	Payload     []byte
	Rows        int
}

// ExportService moves schedule entries in and out of CSV and PDF documents.
type ExportService struct {
	schedules schedulePager
	writer    scheduleBulkWriter
	catalog   *CatalogService
	csv       csvCodec
	pdf       pdfRenderer
	logger    *zap.Logger
	now       func() time.Time
}

// NewExportService constructs an ExportService. csv and pdf default to the pkg/export renderers.
func NewExportService(schedules schedulePager, writer scheduleBulkWriter, catalog *CatalogService, logger *zap.Logger, csv csvCodec, pdf pdfRenderer) *ExportService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if csv == nil {
		csv = export.NewCSVExporter()
	}
	if pdf == nil {
		pdf = export.NewPDFExporter()
	}
	return &ExportService{
		schedules: schedules,
		writer:    writer,
		catalog:   catalog,
		csv:       csv,
		pdf:       pdf,
		logger:    logger,
		now:       time.Now,
	}
}

// Export renders every entry matching filter, ordered by weekday and start time.
// Pagination fields on filter are ignored.
func (s *ExportService) Export(ctx context.Context, filter models.ScheduleFilter, format ExportFormat) (*ExportResult, error) {
	entries, err := s.collect(ctx, filter)
	if err != nil {
		return nil, err
	}

	stamp := s.now().UTC().Format("20060102_150405")
	switch format {
	case ExportFormatCSV:
		rows := make([]dto.ScheduleCSVRow, 0, len(entries))
		for _, entry := range entries {
			rows = append(rows, dto.NewScheduleCSVRow(entry))
		}
		payload, err := s.csv.Render(&rows)
		if err != nil {
			return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to render csv export")
		}
		return &ExportResult{Filename: fmt.Sprintf("schedules_%s.csv", stamp), ContentType: "text/csv", Payload: payload, Rows: len(rows)}, nil
	case ExportFormatPDF:
		catalog := s.catalog.Resolve(ctx, entries...)
		dataset := export.Dataset{Headers: dto.ScheduleDatasetHeaders}
		for _, resp := range dto.NewScheduleResponses(entries, catalog) {
			dataset.Rows = append(dataset.Rows, dto.ScheduleDatasetRow(resp))
		}
		payload, err := s.pdf.Render(dataset, exportTitle(filter), "Weekday")
		if err != nil {
			return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to render pdf export")
		}
		return &ExportResult{Filename: fmt.Sprintf("schedules_%s.pdf", stamp), ContentType: "application/pdf", Payload: payload, Rows: len(dataset.Rows)}, nil
	default:
		return nil, appErrors.Clone(appErrors.ErrUnsupportedFormat, fmt.Sprintf("unsupported export format %q", format))
	}
}

func (s *ExportService) collect(ctx context.Context, filter models.ScheduleFilter) ([]models.ScheduleEntry, error) {
	filter.PageSize = models.MaxSchedulePageSize
	filter.SortBy = "created_at"
	filter.SortOrder = "ASC"

	var entries []models.ScheduleEntry
	for page := 1; ; page++ {
		filter.Page = page
		batch, pagination, err := s.schedules.List(ctx, filter)
		if err != nil {
			return nil, err
		}
		entries = append(entries, batch...)
		if len(batch) == 0 || pagination == nil || page >= pagination.TotalPages {
			break
		}
	}

	sort.SliceStable(entries, func(i, j int) bool {
		a, b := entries[i], entries[j]
		if a.Weekday != b.Weekday {
			return a.Weekday < b.Weekday
		}
		if a.StartTime != b.StartTime {
			return a.StartTime < b.StartTime
		}
		return a.ID < b.ID
	})
	return entries, nil
}

func exportTitle(filter models.ScheduleFilter) string {
	title := "Class schedule"
	if filter.AcademicYear != 0 {
		title += fmt.Sprintf(" %d", filter.AcademicYear)
		if filter.AcademicPeriod != 0 {
			title += fmt.Sprintf("/%d", filter.AcademicPeriod)
		}
	}
	return title
}

// Import parses a CSV document and creates every row in one all-or-nothing
// batch. Row numbers in errors count the header as row 1.
func (s *ExportService) Import(ctx context.Context, r io.Reader) ([]models.ScheduleEntry, error) {
	var rows []dto.ScheduleCSVRow
	if err := s.csv.Parse(r, &rows); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid csv document")
	}
	if len(rows) == 0 {
		return nil, appErrors.Clone(appErrors.ErrValidation, "csv document contains no schedule rows")
	}

	req := dto.BulkCreateScheduleRequest{Items: make([]dto.CreateScheduleRequest, 0, len(rows))}
	for i, row := range rows {
		item, err := row.ToCreateRequest()
		if err != nil {
			code, status, message := appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, err.Error()
			var appErr *appErrors.Error
			if errors.As(err, &appErr) {
				code, status, message = appErr.Code, appErr.Status, appErr.Message
			}
			return nil, appErrors.Wrap(err, code, status, fmt.Sprintf("row %d: %s", i+2, message))
		}
		req.Items = append(req.Items, item)
	}

	entries, err := s.writer.BulkCreate(ctx, req)
	if err != nil {
		return nil, err
	}
	s.logger.Info("schedule csv imported", zap.Int("rows", len(entries)))
	return entries, nil
}
