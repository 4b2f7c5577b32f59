package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/isagps/ProfAgendaBack/internal/models"
)

var classTable = table{
	name:       "classes",
	columns:    "id, name, grade, created_at, updated_at",
	searchable: []string{"name", "grade"},
	sortable: map[string]bool{
		"name":       true,
		"grade":      true,
		"created_at": true,
		"updated_at": true,
	},
	defaultSort: "name",
}

// ClassRepository handles persistence for classes.
type ClassRepository struct {
	db      *sqlx.DB
	metrics QueryObserver
}

// NewClassRepository creates a new repository instance.
func NewClassRepository(db *sqlx.DB, metrics QueryObserver) *ClassRepository {
	return &ClassRepository{db: db, metrics: metrics}
}

// List returns classes matching the query with the total count.
func (r *ClassRepository) List(ctx context.Context, q models.PageQuery) ([]models.Class, int, error) {
	return listPage[models.Class](ctx, r.db, classTable, r.metrics, q)
}

// ListAll returns every class without pagination.
func (r *ClassRepository) ListAll(ctx context.Context) ([]models.Class, error) {
	return listAll[models.Class](ctx, r.db, classTable, r.metrics)
}

// Count returns the total number of classes.
func (r *ClassRepository) Count(ctx context.Context) (int, error) {
	return countAll(ctx, r.db, classTable, r.metrics)
}

// FindByID returns a class by id.
func (r *ClassRepository) FindByID(ctx context.Context, id string) (*models.Class, error) {
	return getByID[models.Class](ctx, r.db, classTable, r.metrics, id)
}

// Exists reports whether the class id is present.
func (r *ClassRepository) Exists(ctx context.Context, id string) (bool, error) {
	return existsByID(ctx, r.db, classTable, r.metrics, id)
}

// ExistsByName checks uniqueness of the class name.
func (r *ClassRepository) ExistsByName(ctx context.Context, name, excludeID string) (bool, error) {
	return existsByName(ctx, r.db, classTable, r.metrics, name, excludeID)
}

// Create persists a new class.
func (r *ClassRepository) Create(ctx context.Context, class *models.Class) error {
	if class.ID == "" {
		class.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	if class.CreatedAt.IsZero() {
		class.CreatedAt = now
	}
	class.UpdatedAt = now

	defer observe(r.metrics, "classes_create", time.Now())
	const query = `INSERT INTO classes (id, name, grade, created_at, updated_at) VALUES (:id, :name, :grade, :created_at, :updated_at)`
	if _, err := r.db.NamedExecContext(ctx, query, class); err != nil {
		return fmt.Errorf("create class: %w", err)
	}
	return nil
}

// Update modifies a class. Returns sql.ErrNoRows when the id is absent.
func (r *ClassRepository) Update(ctx context.Context, class *models.Class) error {
	defer observe(r.metrics, "classes_update", time.Now())
	class.UpdatedAt = time.Now().UTC()
	const query = `UPDATE classes SET name = :name, grade = :grade, updated_at = :updated_at WHERE id = :id`
	res, err := r.db.NamedExecContext(ctx, query, class)
	if err != nil {
		return fmt.Errorf("update class: %w", err)
	}
	return requireRowsAffected(res)
}

// Delete removes a class record. Schedules referencing the class are removed
// by the ON DELETE CASCADE constraint.
func (r *ClassRepository) Delete(ctx context.Context, id string) error {
	return deleteByID(ctx, r.db, classTable, r.metrics, id)
}
