package service

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/isagps/ProfAgendaBack/internal/models"
	appErrors "github.com/isagps/ProfAgendaBack/pkg/errors"
)

type mockClassGetter struct {
	class *models.Class
	err   error
}

func (m *mockClassGetter) Get(ctx context.Context, id string) (*models.Class, error) {
	if m.err != nil {
		return nil, m.err
	}
	return m.class, nil
}

type mockScheduleSource struct {
	details []models.ScheduleDetail
}

func (m *mockScheduleSource) ListByClass(ctx context.Context, classID string) ([]models.ScheduleDetail, error) {
	return m.details, nil
}

func timetableFixture() *mockScheduleSource {
	return &mockScheduleSource{details: []models.ScheduleDetail{
		{
			Schedule:    models.Schedule{DayOfWeek: "WEDNESDAY", StartsAt: "08:00", EndsAt: "09:00"},
			TeacherName: "Maria", SubjectName: "History",
		},
		{
			Schedule:    models.Schedule{DayOfWeek: "MONDAY", StartsAt: "10:00", EndsAt: "11:00"},
			TeacherName: "Maria", SubjectName: "Math",
		},
		{
			Schedule:    models.Schedule{DayOfWeek: "MONDAY", StartsAt: "08:00", EndsAt: "09:00"},
			TeacherName: "Joao", SubjectName: "Science",
		},
	}}
}

func TestTimetableExportCSV(t *testing.T) {
	classes := &mockClassGetter{class: &models.Class{ID: "c1", Name: "1 A", Grade: "1"}}
	svc := NewTimetableExportService(classes, timetableFixture(), 500, nil, zap.NewNop())

	result, err := svc.Export(context.Background(), "c1", "csv")
	require.NoError(t, err)
	assert.Equal(t, "text/csv", result.ContentType)
	assert.Equal(t, "timetable-1-a.csv", result.Filename)

	lines := strings.Split(strings.TrimSpace(string(result.Content)), "\n")
	require.Len(t, lines, 4)
	assert.Equal(t, "Day,Starts,Ends,Subject,Teacher", lines[0])
	// rows come out in week order, earliest slot first
	assert.Equal(t, "MONDAY,08:00,09:00,Science,Joao", lines[1])
	assert.Equal(t, "MONDAY,10:00,11:00,Math,Maria", lines[2])
	assert.Equal(t, "WEDNESDAY,08:00,09:00,History,Maria", lines[3])
}

func TestTimetableExportPDF(t *testing.T) {
	classes := &mockClassGetter{class: &models.Class{ID: "c1", Name: "1A", Grade: "1"}}
	svc := NewTimetableExportService(classes, timetableFixture(), 500, nil, zap.NewNop())

	result, err := svc.Export(context.Background(), "c1", "pdf")
	require.NoError(t, err)
	assert.Equal(t, "application/pdf", result.ContentType)
	assert.Equal(t, "timetable-1a.pdf", result.Filename)
	assert.True(t, strings.HasPrefix(string(result.Content), "%PDF"))
}

func TestTimetableExportDefaultsToCSV(t *testing.T) {
	classes := &mockClassGetter{class: &models.Class{ID: "c1", Name: "1A", Grade: "1"}}
	svc := NewTimetableExportService(classes, timetableFixture(), 500, nil, zap.NewNop())

	result, err := svc.Export(context.Background(), "c1", "")
	require.NoError(t, err)
	assert.Equal(t, "text/csv", result.ContentType)
}

func TestTimetableExportUnknownFormat(t *testing.T) {
	classes := &mockClassGetter{class: &models.Class{ID: "c1", Name: "1A", Grade: "1"}}
	svc := NewTimetableExportService(classes, timetableFixture(), 500, nil, zap.NewNop())

	_, err := svc.Export(context.Background(), "c1", "xlsx")
	require.Error(t, err)
	assert.True(t, appErrors.Is(err, appErrors.ErrInvalidObject))
}

func TestTimetableExportClassNotFound(t *testing.T) {
	classes := &mockClassGetter{err: appErrors.Clone(appErrors.ErrNotFound, "class not found")}
	svc := NewTimetableExportService(classes, timetableFixture(), 500, nil, zap.NewNop())

	_, err := svc.Export(context.Background(), "missing", "csv")
	require.Error(t, err)
	assert.True(t, appErrors.Is(err, appErrors.ErrNotFound))
}

func TestTimetableExportCapsRows(t *testing.T) {
	classes := &mockClassGetter{class: &models.Class{ID: "c1", Name: "1A", Grade: "1"}}
	svc := NewTimetableExportService(classes, timetableFixture(), 2, nil, zap.NewNop())

	result, err := svc.Export(context.Background(), "c1", "csv")
	require.NoError(t, err)
	lines := strings.Split(strings.TrimSpace(string(result.Content)), "\n")
	assert.Len(t, lines, 3)
}
