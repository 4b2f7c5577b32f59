package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/isagps/ProfAgendaBack/internal/models"
)

var scheduleTable = table{
	name:       "schedules",
	columns:    "id, day_of_week, starts_at, ends_at, teacher_id, class_id, subject_id, created_at, updated_at",
	searchable: []string{"day_of_week"},
	sortable: map[string]bool{
		"day_of_week": true,
		"starts_at":   true,
		"created_at":  true,
		"updated_at":  true,
	},
	defaultSort: "starts_at",
}

const scheduleDetailColumns = `s.id, s.day_of_week, s.starts_at, s.ends_at, s.teacher_id, s.class_id, s.subject_id, s.created_at, s.updated_at,
		t.name AS teacher_name, c.name AS class_name, sub.name AS subject_name`

const scheduleDetailJoins = `FROM schedules s
		JOIN teachers t ON t.id = s.teacher_id
		JOIN classes c ON c.id = s.class_id
		JOIN subjects sub ON sub.id = s.subject_id`

// ScheduleRepository handles persistence for schedules.
type ScheduleRepository struct {
	db      *sqlx.DB
	metrics QueryObserver
}

// NewScheduleRepository creates a new repository instance.
func NewScheduleRepository(db *sqlx.DB, metrics QueryObserver) *ScheduleRepository {
	return &ScheduleRepository{db: db, metrics: metrics}
}

// List returns schedules matching the query with the total count.
func (r *ScheduleRepository) List(ctx context.Context, q models.PageQuery) ([]models.Schedule, int, error) {
	return listPage[models.Schedule](ctx, r.db, scheduleTable, r.metrics, q)
}

// ListAll returns every schedule without pagination.
func (r *ScheduleRepository) ListAll(ctx context.Context) ([]models.Schedule, error) {
	return listAll[models.Schedule](ctx, r.db, scheduleTable, r.metrics)
}

// Count returns the total number of schedules.
func (r *ScheduleRepository) Count(ctx context.Context) (int, error) {
	return countAll(ctx, r.db, scheduleTable, r.metrics)
}

// FindByID fetches a schedule by ID.
func (r *ScheduleRepository) FindByID(ctx context.Context, id string) (*models.Schedule, error) {
	return getByID[models.Schedule](ctx, r.db, scheduleTable, r.metrics, id)
}

// ListByTeacher returns a teacher's schedules with entity names joined in.
func (r *ScheduleRepository) ListByTeacher(ctx context.Context, teacherID string) ([]models.ScheduleDetail, error) {
	defer observe(r.metrics, "schedules_by_teacher", time.Now())
	query := fmt.Sprintf(`SELECT %s %s WHERE s.teacher_id = $1 ORDER BY s.day_of_week, s.starts_at`,
		scheduleDetailColumns, scheduleDetailJoins)
	var schedules []models.ScheduleDetail
	if err := r.db.SelectContext(ctx, &schedules, query, teacherID); err != nil {
		return nil, fmt.Errorf("list teacher schedules: %w", err)
	}
	return schedules, nil
}

// ListByClass returns a class's schedules with entity names joined in.
func (r *ScheduleRepository) ListByClass(ctx context.Context, classID string) ([]models.ScheduleDetail, error) {
	defer observe(r.metrics, "schedules_by_class", time.Now())
	query := fmt.Sprintf(`SELECT %s %s WHERE s.class_id = $1 ORDER BY s.day_of_week, s.starts_at`,
		scheduleDetailColumns, scheduleDetailJoins)
	var schedules []models.ScheduleDetail
	if err := r.db.SelectContext(ctx, &schedules, query, classID); err != nil {
		return nil, fmt.Errorf("list class schedules: %w", err)
	}
	return schedules, nil
}

// ListByTeacherAndDay returns overlap candidates for the teacher on one day.
// Range comparison happens in the service layer.
func (r *ScheduleRepository) ListByTeacherAndDay(ctx context.Context, teacherID, dayOfWeek string) ([]models.Schedule, error) {
	defer observe(r.metrics, "schedules_by_teacher_day", time.Now())
	const query = `SELECT id, day_of_week, starts_at, ends_at, teacher_id, class_id, subject_id, created_at, updated_at
		FROM schedules WHERE teacher_id = $1 AND day_of_week = $2`
	var schedules []models.Schedule
	if err := r.db.SelectContext(ctx, &schedules, query, teacherID, dayOfWeek); err != nil {
		return nil, fmt.Errorf("list teacher day schedules: %w", err)
	}
	return schedules, nil
}

// Create inserts a new schedule record.
func (r *ScheduleRepository) Create(ctx context.Context, schedule *models.Schedule) error {
	defer observe(r.metrics, "schedules_create", time.Now())
	if schedule.ID == "" {
		schedule.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	if schedule.CreatedAt.IsZero() {
		schedule.CreatedAt = now
	}
	schedule.UpdatedAt = now

	const query = `INSERT INTO schedules (id, day_of_week, starts_at, ends_at, teacher_id, class_id, subject_id, created_at, updated_at)
		VALUES (:id, :day_of_week, :starts_at, :ends_at, :teacher_id, :class_id, :subject_id, :created_at, :updated_at)`
	if _, err := r.db.NamedExecContext(ctx, query, schedule); err != nil {
		return fmt.Errorf("create schedule: %w", err)
	}
	return nil
}

// Update modifies a schedule. Returns sql.ErrNoRows when the id is absent.
func (r *ScheduleRepository) Update(ctx context.Context, schedule *models.Schedule) error {
	defer observe(r.metrics, "schedules_update", time.Now())
	schedule.UpdatedAt = time.Now().UTC()
	const query = `UPDATE schedules SET day_of_week = :day_of_week, starts_at = :starts_at, ends_at = :ends_at,
		teacher_id = :teacher_id, class_id = :class_id, subject_id = :subject_id, updated_at = :updated_at WHERE id = :id`
	res, err := r.db.NamedExecContext(ctx, query, schedule)
	if err != nil {
		return fmt.Errorf("update schedule: %w", err)
	}
	return requireRowsAffected(res)
}

// Delete removes a schedule record.
func (r *ScheduleRepository) Delete(ctx context.Context, id string) error {
	return deleteByID(ctx, r.db, scheduleTable, r.metrics, id)
}
