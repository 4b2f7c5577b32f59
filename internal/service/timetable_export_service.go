package service

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"go.uber.org/zap"

	"github.com/isagps/ProfAgendaBack/internal/models"
	appErrors "github.com/isagps/ProfAgendaBack/pkg/errors"
	"github.com/isagps/ProfAgendaBack/pkg/export"
)

// Export formats accepted by the timetable endpoint.
const (
	ExportFormatCSV = "csv"
	ExportFormatPDF = "pdf"
)

var timetableHeaders = []string{"Day", "Starts", "Ends", "Subject", "Teacher"}

type classGetter interface {
	Get(ctx context.Context, id string) (*models.Class, error)
}

type classScheduleSource interface {
	ListByClass(ctx context.Context, classID string) ([]models.ScheduleDetail, error)
}

// ExportResult carries rendered bytes plus the transport metadata the handler
// needs to serve a download.
type ExportResult struct {
	Content     []byte
	ContentType string
	Filename    string
}

// TimetableExportService renders a class's weekly timetable as CSV or PDF.
type TimetableExportService struct {
	classes   classGetter
	schedules classScheduleSource
	csv       *export.CSVExporter
	pdf       *export.PDFExporter
	maxRows   int
	metrics   *MetricsService
	logger    *zap.Logger
}

// NewTimetableExportService creates the export service. maxRows caps the
// number of schedule rows rendered into a single document.
func NewTimetableExportService(classes classGetter, schedules classScheduleSource, maxRows int, metrics *MetricsService, logger *zap.Logger) *TimetableExportService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if maxRows <= 0 {
		maxRows = 500
	}
	return &TimetableExportService{
		classes:   classes,
		schedules: schedules,
		csv:       export.NewCSVExporter(),
		pdf:       export.NewPDFExporter(),
		maxRows:   maxRows,
		metrics:   metrics,
		logger:    logger,
	}
}

// Export renders the class timetable in the requested format.
func (s *TimetableExportService) Export(ctx context.Context, classID, format string) (*ExportResult, error) {
	format = strings.ToLower(strings.TrimSpace(format))
	if format == "" {
		format = ExportFormatCSV
	}
	if format != ExportFormatCSV && format != ExportFormatPDF {
		return nil, appErrors.Clone(appErrors.ErrInvalidObject, "format must be csv or pdf")
	}

	class, err := s.classes.Get(ctx, classID)
	if err != nil {
		return nil, err
	}

	schedules, err := s.schedules.ListByClass(ctx, classID)
	if err != nil {
		return nil, err
	}
	if len(schedules) > s.maxRows {
		schedules = schedules[:s.maxRows]
	}

	dataset := export.Dataset{Headers: timetableHeaders, Rows: make([]map[string]string, 0, len(schedules))}
	for _, item := range sortByWeek(schedules) {
		dataset.Rows = append(dataset.Rows, map[string]string{
			"Day":     item.DayOfWeek,
			"Starts":  item.StartsAt,
			"Ends":    item.EndsAt,
			"Subject": item.SubjectName,
			"Teacher": item.TeacherName,
		})
	}

	title := fmt.Sprintf("Timetable %s (%s)", class.Name, class.Grade)
	filename := fmt.Sprintf("timetable-%s.%s", slug(class.Name), format)

	var content []byte
	var contentType string
	switch format {
	case ExportFormatCSV:
		content, err = s.csv.Render(dataset)
		contentType = "text/csv"
	case ExportFormatPDF:
		content, err = s.pdf.Render(dataset, title)
		contentType = "application/pdf"
	}
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to render timetable")
	}

	s.metrics.CountExport(format)
	s.logger.Info("timetable exported",
		zap.String("class_id", classID),
		zap.String("format", format),
		zap.Int("rows", len(dataset.Rows)))

	return &ExportResult{Content: content, ContentType: contentType, Filename: filename}, nil
}

// sortByWeek orders schedules chronologically across the week. The repository
// already orders by day string, which is alphabetical, not weekly.
func sortByWeek(schedules []models.ScheduleDetail) []models.ScheduleDetail {
	rank := make(map[string]int, len(models.WeekDays))
	for i, day := range models.WeekDays {
		rank[day] = i
	}
	out := make([]models.ScheduleDetail, len(schedules))
	copy(out, schedules)
	sort.SliceStable(out, func(i, j int) bool {
		if rank[out[i].DayOfWeek] != rank[out[j].DayOfWeek] {
			return rank[out[i].DayOfWeek] < rank[out[j].DayOfWeek]
		}
		return out[i].StartsAt < out[j].StartsAt
	})
	return out
}

func slug(value string) string {
	value = strings.ToLower(strings.TrimSpace(value))
	var b strings.Builder
	for _, r := range value {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9':
			b.WriteRune(r)
		case r == ' ', r == '-', r == '_':
			b.WriteRune('-')
		}
	}
	if b.Len() == 0 {
		return "class"
	}
	return b.String()
}
