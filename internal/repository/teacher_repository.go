package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/isagps/ProfAgendaBack/internal/models"
)

var teacherTable = table{
	name:       "teachers",
	columns:    "id, name, email, phone, created_at, updated_at",
	searchable: []string{"name", "COALESCE(email, '')"},
	sortable: map[string]bool{
		"name":       true,
		"created_at": true,
		"updated_at": true,
	},
	defaultSort: "name",
}

// TeacherRepository manages persistence for teachers and their subject links.
type TeacherRepository struct {
	db      *sqlx.DB
	metrics QueryObserver
}

// NewTeacherRepository constructs a TeacherRepository.
func NewTeacherRepository(db *sqlx.DB, metrics QueryObserver) *TeacherRepository {
	return &TeacherRepository{db: db, metrics: metrics}
}

// List returns teachers matching the query along with the total count.
func (r *TeacherRepository) List(ctx context.Context, q models.PageQuery) ([]models.Teacher, int, error) {
	return listPage[models.Teacher](ctx, r.db, teacherTable, r.metrics, q)
}

// ListAll returns every teacher without pagination.
func (r *TeacherRepository) ListAll(ctx context.Context) ([]models.Teacher, error) {
	return listAll[models.Teacher](ctx, r.db, teacherTable, r.metrics)
}

// Count returns the total number of teachers.
func (r *TeacherRepository) Count(ctx context.Context) (int, error) {
	return countAll(ctx, r.db, teacherTable, r.metrics)
}

// FindByID fetches a teacher by ID.
func (r *TeacherRepository) FindByID(ctx context.Context, id string) (*models.Teacher, error) {
	return getByID[models.Teacher](ctx, r.db, teacherTable, r.metrics, id)
}

// Exists reports whether the teacher id is present.
func (r *TeacherRepository) Exists(ctx context.Context, id string) (bool, error) {
	return existsByID(ctx, r.db, teacherTable, r.metrics, id)
}

// ExistsByName checks whether another teacher already uses the name.
func (r *TeacherRepository) ExistsByName(ctx context.Context, name, excludeID string) (bool, error) {
	return existsByName(ctx, r.db, teacherTable, r.metrics, name, excludeID)
}

// Create inserts a new teacher record.
func (r *TeacherRepository) Create(ctx context.Context, teacher *models.Teacher) error {
	defer observe(r.metrics, "teachers_create", time.Now())
	if teacher.ID == "" {
		teacher.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	if teacher.CreatedAt.IsZero() {
		teacher.CreatedAt = now
	}
	teacher.UpdatedAt = now

	const query = `INSERT INTO teachers (id, name, email, phone, created_at, updated_at)
		VALUES (:id, :name, :email, :phone, :created_at, :updated_at)`
	if _, err := r.db.NamedExecContext(ctx, query, teacher); err != nil {
		return fmt.Errorf("create teacher: %w", err)
	}
	return nil
}

// UpdateWithSubjects modifies a teacher and, when replaceLinks is set, swaps
// its subject links in the same transaction. Returns sql.ErrNoRows when the
// id is absent.
func (r *TeacherRepository) UpdateWithSubjects(ctx context.Context, teacher *models.Teacher, subjectIDs []string, replaceLinks bool) error {
	defer observe(r.metrics, "teachers_update", time.Now())
	teacher.UpdatedAt = time.Now().UTC()

	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin update teacher: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck

	const query = `UPDATE teachers SET name = :name, email = :email, phone = :phone, updated_at = :updated_at WHERE id = :id`
	res, err := tx.NamedExecContext(ctx, query, teacher)
	if err != nil {
		return fmt.Errorf("update teacher: %w", err)
	}
	if err := requireRowsAffected(res); err != nil {
		return err
	}

	if replaceLinks {
		if err := replaceSubjectLinks(ctx, tx, teacher.ID, subjectIDs); err != nil {
			return err
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit update teacher: %w", err)
	}
	return nil
}

// Delete removes a teacher record.
func (r *TeacherRepository) Delete(ctx context.Context, id string) error {
	return deleteByID(ctx, r.db, teacherTable, r.metrics, id)
}

// SubjectsByTeacher returns the subjects linked to a teacher.
func (r *TeacherRepository) SubjectsByTeacher(ctx context.Context, teacherID string) ([]models.Subject, error) {
	defer observe(r.metrics, "teacher_subjects_list", time.Now())
	const query = `SELECT s.id, s.name, s.created_at, s.updated_at
		FROM subjects s
		JOIN teacher_subjects ts ON ts.subject_id = s.id
		WHERE ts.teacher_id = $1
		ORDER BY s.name ASC`
	var subjects []models.Subject
	if err := r.db.SelectContext(ctx, &subjects, query, teacherID); err != nil {
		return nil, fmt.Errorf("list teacher subjects: %w", err)
	}
	return subjects, nil
}

// ReplaceSubjects swaps the teacher's subject links for the given set.
func (r *TeacherRepository) ReplaceSubjects(ctx context.Context, teacherID string, subjectIDs []string) error {
	defer observe(r.metrics, "teacher_subjects_replace", time.Now())
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin replace subjects: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck

	if err := replaceSubjectLinks(ctx, tx, teacherID, subjectIDs); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit replace subjects: %w", err)
	}
	return nil
}

func replaceSubjectLinks(ctx context.Context, tx *sqlx.Tx, teacherID string, subjectIDs []string) error {
	if _, err := tx.ExecContext(ctx, `DELETE FROM teacher_subjects WHERE teacher_id = $1`, teacherID); err != nil {
		return fmt.Errorf("clear teacher subjects: %w", err)
	}
	for _, subjectID := range subjectIDs {
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO teacher_subjects (teacher_id, subject_id) VALUES ($1, $2)`,
			teacherID, subjectID); err != nil {
			return fmt.Errorf("link teacher subject: %w", err)
		}
	}
	return nil
}

// TeachesSubject reports whether the teacher is linked to the subject.
func (r *TeacherRepository) TeachesSubject(ctx context.Context, teacherID, subjectID string) (bool, error) {
	defer observe(r.metrics, "teacher_subjects_check", time.Now())
	const query = `SELECT 1 FROM teacher_subjects WHERE teacher_id = $1 AND subject_id = $2 LIMIT 1`
	var exists int
	if err := r.db.GetContext(ctx, &exists, query, teacherID, subjectID); err != nil {
		if err == sql.ErrNoRows {
			return false, nil
		}
		return false, fmt.Errorf("check teacher subject: %w", err)
	}
	return true, nil
}

// CountSubjects returns how many of the given subject ids exist. Used to
// validate links before they are written.
func (r *TeacherRepository) CountSubjects(ctx context.Context, subjectIDs []string) (int, error) {
	if len(subjectIDs) == 0 {
		return 0, nil
	}
	defer observe(r.metrics, "subjects_count_in", time.Now())
	query, args, err := sqlx.In(`SELECT COUNT(*) FROM subjects WHERE id IN (?)`, subjectIDs)
	if err != nil {
		return 0, fmt.Errorf("build subject count: %w", err)
	}
	query = r.db.Rebind(query)
	var count int
	if err := r.db.GetContext(ctx, &count, query, args...); err != nil {
		return 0, fmt.Errorf("count subjects: %w", err)
	}
	return count, nil
}
