package service

import (
	"context"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/noah-isme/uni-timetable-api/internal/dto"
	"github.com/noah-isme/uni-timetable-api/internal/models"
	appErrors "github.com/noah-isme/uni-timetable-api/pkg/errors"
	"github.com/noah-isme/uni-timetable-api/pkg/export"
	"github.com/noah-isme/uni-timetable-api/pkg/storage"
)

type exportEventReader interface {
	ListBetween(ctx context.Context, from, to time.Time) ([]models.Event, error)
}

type exportTimeslotCatalog interface {
	All(ctx context.Context) ([]models.Timeslot, error)
}

// ExportConfig carries export pipeline settings.
type ExportConfig struct {
	APIPrefix string
}

// ExportService renders a timetable slice to CSV or PDF, stores the file
// locally and hands back a signed, time-limited download URL.
type ExportService struct {
	events    exportEventReader
	timeslots exportTimeslotCatalog
	csv       *export.CSVExporter
	pdf       *export.PDFExporter
	store     *storage.LocalStorage
	signer    *storage.SignedURLSigner
	validator *validator.Validate
	logger    *zap.Logger
	cfg       ExportConfig
}

// NewExportService wires the export pipeline.
func NewExportService(
	events exportEventReader,
	timeslots exportTimeslotCatalog,
	store *storage.LocalStorage,
	signer *storage.SignedURLSigner,
	validate *validator.Validate,
	logger *zap.Logger,
	cfg ExportConfig,
) *ExportService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	if cfg.APIPrefix == "" {
		cfg.APIPrefix = "/api/v1"
	}
	return &ExportService{
		events:    events,
		timeslots: timeslots,
		csv:       export.NewCSVExporter(),
		pdf:       export.NewPDFExporter(),
		store:     store,
		signer:    signer,
		validator: validate,
		logger:    logger,
		cfg:       cfg,
	}
}

// Export builds the requested timetable file. The range defaults to the next
// 30 days, the format to CSV.
func (s *ExportService) Export(ctx context.Context, query dto.ExportQuery) (*dto.ExportResponse, error) {
	if err := s.validator.Struct(query); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid export query")
	}

	format := query.Format
	if format == "" {
		format = "csv"
	}

	from := midnight(time.Now().UTC())
	to := from.AddDate(0, 0, 30)
	if query.From != "" {
		parsed, err := time.Parse("2006-01-02", query.From)
		if err != nil {
			return nil, appErrors.Clone(appErrors.ErrValidation, "from must be formatted as 2006-01-02")
		}
		from = parsed
	}
	if query.To != "" {
		parsed, err := time.Parse("2006-01-02", query.To)
		if err != nil {
			return nil, appErrors.Clone(appErrors.ErrValidation, "to must be formatted as 2006-01-02")
		}
		to = parsed
	}
	if to.Before(from) {
		return nil, appErrors.Clone(appErrors.ErrValidation, "to must not be before from")
	}

	dataset, err := s.buildDataset(ctx, from, to)
	if err != nil {
		return nil, err
	}

	var payload []byte
	switch format {
	case "pdf":
		title := fmt.Sprintf("Timetable %s to %s", from.Format("2006-01-02"), to.Format("2006-01-02"))
		payload, err = s.pdf.Render(*dataset, title)
	default:
		payload, err = s.csv.Render(*dataset)
	}
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to render export")
	}

	exportID := uuid.NewString()
	filename := fmt.Sprintf("timetable-%s.%s", exportID, format)
	if _, err := s.store.Save(filename, payload); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrStorage.Code, appErrors.ErrStorage.Status, "failed to store export")
	}

	token, expiresAt, err := s.signer.Generate(exportID, filename)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to sign export url")
	}

	s.logger.Sugar().Infow("timetable exported",
		"export_id", exportID,
		"format", format,
		"rows", len(dataset.Rows),
	)
	return &dto.ExportResponse{
		ExportID:  exportID,
		Format:    format,
		URL:       strings.TrimRight(s.cfg.APIPrefix, "/") + "/exports/download?token=" + token,
		ExpiresAt: expiresAt,
	}, nil
}

// Download resolves a signed token back to the stored file.
func (s *ExportService) Download(token string) (*os.File, string, error) {
	_, relPath, _, err := s.signer.Parse(token, false)
	if err != nil {
		return nil, "", appErrors.Clone(appErrors.ErrForbidden, "invalid or expired download token")
	}
	file, err := s.store.Open(relPath)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, "", appErrors.Clone(appErrors.ErrNotFound, "export no longer available")
		}
		return nil, "", appErrors.Wrap(err, appErrors.ErrStorage.Code, appErrors.ErrStorage.Status, "failed to open export")
	}
	return file, relPath, nil
}

func (s *ExportService) buildDataset(ctx context.Context, from, to time.Time) (*export.Dataset, error) {
	events, err := s.events.ListBetween(ctx, from, to)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrStorage.Code, appErrors.ErrStorage.Status, "failed to list events for export")
	}

	slots, err := s.timeslots.All(ctx)
	if err != nil {
		return nil, err
	}
	slotByID := make(map[string]models.Timeslot, len(slots))
	for _, slot := range slots {
		slotByID[slot.ID] = slot
	}

	dataset := &export.Dataset{
		Headers: []string{"Date", "Start", "End", "Title", "Module", "Room", "Staff", "Students", "Tag"},
	}
	for _, event := range events {
		start, end := "", ""
		if slot, ok := slotByID[event.TimeslotID]; ok {
			start, end = slot.StartTime, slot.EndTime
		}
		dataset.Rows = append(dataset.Rows, map[string]string{
			"Date":     event.Date.Format("2006-01-02"),
			"Start":    start,
			"End":      end,
			"Title":    event.Title,
			"Module":   event.ModuleID,
			"Room":     event.RoomID,
			"Staff":    event.StaffID,
			"Students": fmt.Sprintf("%d", event.StudentCount),
			"Tag":      string(event.Tag),
		})
	}
	return dataset, nil
}
