package repository

import (
	"context"
	"database/sql"
	"errors"
	"regexp"
	"testing"
	"time"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/isagps/ProfAgendaBack/internal/models"
)

func newRepoMock(t *testing.T) (*sqlx.DB, sqlmock.Sqlmock, func()) {
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	require.NoError(t, err)
	return sqlx.NewDb(db, "sqlmock"), mock, func() { db.Close() }
}

func TestTeacherRepositoryList(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewTeacherRepository(db, nil)

	rows := sqlmock.NewRows([]string{"id", "name", "email", "phone", "created_at", "updated_at"}).
		AddRow("t1", "Maria", nil, nil, time.Now(), time.Now())
	mock.ExpectQuery(regexp.QuoteMeta("SELECT id, name, email, phone, created_at, updated_at FROM teachers WHERE 1=1 ORDER BY name ASC LIMIT 10 OFFSET 0")).
		WillReturnRows(rows)
	mock.ExpectQuery(regexp.QuoteMeta("SELECT COUNT(*) FROM teachers WHERE 1=1")).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(1))

	list, total, err := repo.List(context.Background(), models.PageQuery{})
	require.NoError(t, err)
	assert.Len(t, list, 1)
	assert.Equal(t, 1, total)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestTeacherRepositoryListWithFilter(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewTeacherRepository(db, nil)

	rows := sqlmock.NewRows([]string{"id", "name", "email", "phone", "created_at", "updated_at"}).
		AddRow("t1", "Maria", nil, nil, time.Now(), time.Now())
	mock.ExpectQuery(regexp.QuoteMeta("SELECT id, name, email, phone, created_at, updated_at FROM teachers WHERE 1=1 AND (LOWER(name) LIKE $1 OR LOWER(COALESCE(email, '')) LIKE $1) ORDER BY name ASC LIMIT 10 OFFSET 0")).
		WithArgs("%mar%").
		WillReturnRows(rows)
	mock.ExpectQuery(regexp.QuoteMeta("SELECT COUNT(*) FROM teachers WHERE 1=1 AND (LOWER(name) LIKE $1 OR LOWER(COALESCE(email, '')) LIKE $1)")).
		WithArgs("%mar%").
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(1))

	list, total, err := repo.List(context.Background(), models.PageQuery{Filter: "Mar"})
	require.NoError(t, err)
	assert.Len(t, list, 1)
	assert.Equal(t, 1, total)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestTeacherRepositoryCreate(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewTeacherRepository(db, nil)

	mock.ExpectExec("INSERT INTO teachers").
		WithArgs(sqlmock.AnyArg(), "Maria", sqlmock.AnyArg(), sqlmock.AnyArg(), sqlmock.AnyArg(), sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(1, 1))

	teacher := &models.Teacher{Name: "Maria"}
	require.NoError(t, repo.Create(context.Background(), teacher))
	assert.NotEmpty(t, teacher.ID)
	assert.False(t, teacher.CreatedAt.IsZero())
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestTeacherRepositoryUpdateWithSubjects(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewTeacherRepository(db, nil)

	mock.ExpectBegin()
	mock.ExpectExec("UPDATE teachers SET").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(regexp.QuoteMeta("DELETE FROM teacher_subjects WHERE teacher_id = $1")).
		WithArgs("t1").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO teacher_subjects (teacher_id, subject_id) VALUES ($1, $2)")).
		WithArgs("t1", "s1").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	teacher := &models.Teacher{ID: "t1", Name: "Maria"}
	require.NoError(t, repo.UpdateWithSubjects(context.Background(), teacher, []string{"s1"}, true))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestTeacherRepositoryUpdateWithSubjectsMissing(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewTeacherRepository(db, nil)

	mock.ExpectBegin()
	mock.ExpectExec("UPDATE teachers SET").
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectRollback()

	err := repo.UpdateWithSubjects(context.Background(), &models.Teacher{ID: "missing", Name: "Maria"}, nil, false)
	assert.ErrorIs(t, err, sql.ErrNoRows)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestTeacherRepositoryUpdateWithSubjectsRollsBackOnLinkFailure(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewTeacherRepository(db, nil)

	mock.ExpectBegin()
	mock.ExpectExec("UPDATE teachers SET").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(regexp.QuoteMeta("DELETE FROM teacher_subjects WHERE teacher_id = $1")).
		WithArgs("t1").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO teacher_subjects (teacher_id, subject_id) VALUES ($1, $2)")).
		WithArgs("t1", "s1").
		WillReturnError(errors.New("link failed"))
	mock.ExpectRollback()

	err := repo.UpdateWithSubjects(context.Background(), &models.Teacher{ID: "t1", Name: "Maria"}, []string{"s1"}, true)
	require.Error(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestTeacherRepositoryDelete(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewTeacherRepository(db, nil)

	mock.ExpectExec(regexp.QuoteMeta("DELETE FROM teachers WHERE id = $1")).
		WithArgs("t1").
		WillReturnResult(sqlmock.NewResult(0, 1))
	require.NoError(t, repo.Delete(context.Background(), "t1"))

	mock.ExpectExec(regexp.QuoteMeta("DELETE FROM teachers WHERE id = $1")).
		WithArgs("missing").
		WillReturnResult(sqlmock.NewResult(0, 0))
	assert.ErrorIs(t, repo.Delete(context.Background(), "missing"), sql.ErrNoRows)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestTeacherRepositoryExistsByName(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewTeacherRepository(db, nil)

	mock.ExpectQuery(regexp.QuoteMeta("SELECT 1 FROM teachers WHERE LOWER(name) = LOWER($1) LIMIT 1")).
		WithArgs("Maria").
		WillReturnRows(sqlmock.NewRows([]string{"1"}).AddRow(1))

	exists, err := repo.ExistsByName(context.Background(), "Maria", "")
	require.NoError(t, err)
	assert.True(t, exists)

	mock.ExpectQuery(regexp.QuoteMeta("SELECT 1 FROM teachers WHERE LOWER(name) = LOWER($1) AND id <> $2 LIMIT 1")).
		WithArgs("Maria", "t1").
		WillReturnRows(sqlmock.NewRows([]string{"1"}))

	exists, err = repo.ExistsByName(context.Background(), "Maria", "t1")
	require.NoError(t, err)
	assert.False(t, exists)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestTeacherRepositoryReplaceSubjects(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewTeacherRepository(db, nil)

	mock.ExpectBegin()
	mock.ExpectExec(regexp.QuoteMeta("DELETE FROM teacher_subjects WHERE teacher_id = $1")).
		WithArgs("t1").
		WillReturnResult(sqlmock.NewResult(0, 2))
	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO teacher_subjects (teacher_id, subject_id) VALUES ($1, $2)")).
		WithArgs("t1", "s1").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO teacher_subjects (teacher_id, subject_id) VALUES ($1, $2)")).
		WithArgs("t1", "s2").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	require.NoError(t, repo.ReplaceSubjects(context.Background(), "t1", []string{"s1", "s2"}))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestTeacherRepositoryFindByIDMalformedID(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewTeacherRepository(db, nil)

	mock.ExpectQuery(regexp.QuoteMeta("SELECT id, name, email, phone, created_at, updated_at FROM teachers WHERE id = $1")).
		WithArgs("1").
		WillReturnError(&pq.Error{Code: "22P02"})

	// A value that cannot be cast to uuid reads as not-found, not a failure.
	_, err := repo.FindByID(context.Background(), "1")
	assert.ErrorIs(t, err, sql.ErrNoRows)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestTeacherRepositoryDeleteMalformedID(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewTeacherRepository(db, nil)

	mock.ExpectExec(regexp.QuoteMeta("DELETE FROM teachers WHERE id = $1")).
		WithArgs("not-a-uuid").
		WillReturnError(&pq.Error{Code: "22P02"})

	assert.ErrorIs(t, repo.Delete(context.Background(), "not-a-uuid"), sql.ErrNoRows)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestTeacherRepositoryExistsMalformedID(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewTeacherRepository(db, nil)

	mock.ExpectQuery(regexp.QuoteMeta("SELECT 1 FROM teachers WHERE id = $1 LIMIT 1")).
		WithArgs("not-a-uuid").
		WillReturnError(&pq.Error{Code: "22P02"})

	exists, err := repo.Exists(context.Background(), "not-a-uuid")
	require.NoError(t, err)
	assert.False(t, exists)
	assert.NoError(t, mock.ExpectationsWereMet())
}

type recordingObserver struct {
	labels []string
}

func (r *recordingObserver) ObserveDBQuery(label string, _ time.Duration) {
	r.labels = append(r.labels, label)
}

func TestTeacherRepositoryObservesQueries(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	obs := &recordingObserver{}
	repo := NewTeacherRepository(db, obs)

	mock.ExpectQuery(regexp.QuoteMeta("SELECT id, name, email, phone, created_at, updated_at FROM teachers WHERE id = $1")).
		WithArgs("t1").
		WillReturnRows(sqlmock.NewRows([]string{"id", "name", "email", "phone", "created_at", "updated_at"}).
			AddRow("t1", "Maria", nil, nil, time.Now(), time.Now()))

	_, err := repo.FindByID(context.Background(), "t1")
	require.NoError(t, err)
	assert.Equal(t, []string{"teachers_get"}, obs.labels)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestTeacherRepositoryTeachesSubject(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewTeacherRepository(db, nil)

	mock.ExpectQuery(regexp.QuoteMeta("SELECT 1 FROM teacher_subjects WHERE teacher_id = $1 AND subject_id = $2 LIMIT 1")).
		WithArgs("t1", "s1").
		WillReturnRows(sqlmock.NewRows([]string{"1"}).AddRow(1))

	teaches, err := repo.TeachesSubject(context.Background(), "t1", "s1")
	require.NoError(t, err)
	assert.True(t, teaches)

	mock.ExpectQuery(regexp.QuoteMeta("SELECT 1 FROM teacher_subjects WHERE teacher_id = $1 AND subject_id = $2 LIMIT 1")).
		WithArgs("t1", "s2").
		WillReturnRows(sqlmock.NewRows([]string{"1"}))

	teaches, err = repo.TeachesSubject(context.Background(), "t1", "s2")
	require.NoError(t, err)
	assert.False(t, teaches)
	assert.NoError(t, mock.ExpectationsWereMet())
}
