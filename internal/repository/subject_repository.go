package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/isagps/ProfAgendaBack/internal/models"
)

var subjectTable = table{
	name:       "subjects",
	columns:    "id, name, created_at, updated_at",
	searchable: []string{"name"},
	sortable: map[string]bool{
		"name":       true,
		"created_at": true,
		"updated_at": true,
	},
	defaultSort: "name",
}

// SubjectRepository handles persistence for subjects.
type SubjectRepository struct {
	db      *sqlx.DB
	metrics QueryObserver
}

// NewSubjectRepository creates a new repository instance.
func NewSubjectRepository(db *sqlx.DB, metrics QueryObserver) *SubjectRepository {
	return &SubjectRepository{db: db, metrics: metrics}
}

// List returns subjects matching the query with the total count.
func (r *SubjectRepository) List(ctx context.Context, q models.PageQuery) ([]models.Subject, int, error) {
	return listPage[models.Subject](ctx, r.db, subjectTable, r.metrics, q)
}

// ListAll returns every subject without pagination.
func (r *SubjectRepository) ListAll(ctx context.Context) ([]models.Subject, error) {
	return listAll[models.Subject](ctx, r.db, subjectTable, r.metrics)
}

// Count returns the total number of subjects.
func (r *SubjectRepository) Count(ctx context.Context) (int, error) {
	return countAll(ctx, r.db, subjectTable, r.metrics)
}

// FindByID returns a subject by id.
func (r *SubjectRepository) FindByID(ctx context.Context, id string) (*models.Subject, error) {
	return getByID[models.Subject](ctx, r.db, subjectTable, r.metrics, id)
}

// Exists reports whether the subject id is present.
func (r *SubjectRepository) Exists(ctx context.Context, id string) (bool, error) {
	return existsByID(ctx, r.db, subjectTable, r.metrics, id)
}

// ExistsByName checks uniqueness of the subject name.
func (r *SubjectRepository) ExistsByName(ctx context.Context, name, excludeID string) (bool, error) {
	return existsByName(ctx, r.db, subjectTable, r.metrics, name, excludeID)
}

// Create persists a new subject.
func (r *SubjectRepository) Create(ctx context.Context, subject *models.Subject) error {
	if subject.ID == "" {
		subject.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	if subject.CreatedAt.IsZero() {
		subject.CreatedAt = now
	}
	subject.UpdatedAt = now

	defer observe(r.metrics, "subjects_create", time.Now())
	const query = `INSERT INTO subjects (id, name, created_at, updated_at) VALUES (:id, :name, :created_at, :updated_at)`
	if _, err := r.db.NamedExecContext(ctx, query, subject); err != nil {
		return fmt.Errorf("create subject: %w", err)
	}
	return nil
}

// Update modifies a subject. Returns sql.ErrNoRows when the id is absent.
func (r *SubjectRepository) Update(ctx context.Context, subject *models.Subject) error {
	defer observe(r.metrics, "subjects_update", time.Now())
	subject.UpdatedAt = time.Now().UTC()
	const query = `UPDATE subjects SET name = :name, updated_at = :updated_at WHERE id = :id`
	res, err := r.db.NamedExecContext(ctx, query, subject)
	if err != nil {
		return fmt.Errorf("update subject: %w", err)
	}
	return requireRowsAffected(res)
}

// Delete removes a subject record.
func (r *SubjectRepository) Delete(ctx context.Context, id string) error {
	return deleteByID(ctx, r.db, subjectTable, r.metrics, id)
}
