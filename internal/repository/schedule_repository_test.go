package repository

import (
	"context"
	"regexp"
	"testing"
	"time"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/isagps/ProfAgendaBack/internal/models"
)

func TestScheduleRepositoryListByTeacherAndDay(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewScheduleRepository(db, nil)

	rows := sqlmock.NewRows([]string{"id", "day_of_week", "starts_at", "ends_at", "teacher_id", "class_id", "subject_id", "created_at", "updated_at"}).
		AddRow("h1", "MONDAY", "08:00", "09:00", "t1", "c1", "s1", time.Now(), time.Now())
	mock.ExpectQuery("SELECT id, day_of_week, starts_at, ends_at, teacher_id, class_id, subject_id, created_at, updated_at\\s+FROM schedules WHERE teacher_id = \\$1 AND day_of_week = \\$2").
		WithArgs("t1", "MONDAY").
		WillReturnRows(rows)

	schedules, err := repo.ListByTeacherAndDay(context.Background(), "t1", "MONDAY")
	require.NoError(t, err)
	require.Len(t, schedules, 1)
	assert.Equal(t, "08:00", schedules[0].StartsAt)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestScheduleRepositoryListByClass(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewScheduleRepository(db, nil)

	rows := sqlmock.NewRows([]string{
		"id", "day_of_week", "starts_at", "ends_at", "teacher_id", "class_id", "subject_id",
		"created_at", "updated_at", "teacher_name", "class_name", "subject_name",
	}).AddRow("h1", "MONDAY", "08:00", "09:00", "t1", "c1", "s1", time.Now(), time.Now(), "Maria", "1A", "Math")
	mock.ExpectQuery("JOIN subjects sub ON sub.id = s.subject_id\\s+WHERE s.class_id = \\$1").
		WithArgs("c1").
		WillReturnRows(rows)

	schedules, err := repo.ListByClass(context.Background(), "c1")
	require.NoError(t, err)
	require.Len(t, schedules, 1)
	assert.Equal(t, "Maria", schedules[0].TeacherName)
	assert.Equal(t, "Math", schedules[0].SubjectName)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestScheduleRepositoryCreate(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewScheduleRepository(db, nil)

	mock.ExpectExec("INSERT INTO schedules").
		WithArgs(sqlmock.AnyArg(), "MONDAY", "08:00", "09:00", "t1", "c1", "s1", sqlmock.AnyArg(), sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(1, 1))

	schedule := &models.Schedule{
		DayOfWeek: "MONDAY",
		StartsAt:  "08:00",
		EndsAt:    "09:00",
		TeacherID: "t1",
		ClassID:   "c1",
		SubjectID: "s1",
	}
	require.NoError(t, repo.Create(context.Background(), schedule))
	assert.NotEmpty(t, schedule.ID)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestScheduleRepositoryListDefaultSort(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewScheduleRepository(db, nil)

	rows := sqlmock.NewRows([]string{"id", "day_of_week", "starts_at", "ends_at", "teacher_id", "class_id", "subject_id", "created_at", "updated_at"})
	mock.ExpectQuery(regexp.QuoteMeta("SELECT id, day_of_week, starts_at, ends_at, teacher_id, class_id, subject_id, created_at, updated_at FROM schedules WHERE 1=1 ORDER BY starts_at ASC LIMIT 10 OFFSET 0")).
		WillReturnRows(rows)
	mock.ExpectQuery(regexp.QuoteMeta("SELECT COUNT(*) FROM schedules WHERE 1=1")).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(0))

	// Unknown sort columns fall back to the default.
	list, total, err := repo.List(context.Background(), models.PageQuery{SortBy: "teacher_id"})
	require.NoError(t, err)
	assert.Empty(t, list)
	assert.Equal(t, 0, total)
	assert.NoError(t, mock.ExpectationsWereMet())
}
