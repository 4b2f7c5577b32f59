package service

import (
	"context"
	"database/sql"
	"errors"
	"strings"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/isagps/ProfAgendaBack/internal/models"
	appErrors "github.com/isagps/ProfAgendaBack/pkg/errors"
)

type classRepository interface {
	crudRepository[models.Class]
	ExistsByName(ctx context.Context, name, excludeID string) (bool, error)
	Create(ctx context.Context, class *models.Class) error
	Update(ctx context.Context, class *models.Class) error
}

// CreateClassRequest captures fields for creating classes.
type CreateClassRequest struct {
	Name  string `json:"name" validate:"required"`
	Grade string `json:"grade" validate:"required"`
}

// UpdateClassRequest modifies class fields.
type UpdateClassRequest struct {
	Name  string `json:"name" validate:"required"`
	Grade string `json:"grade" validate:"required"`
}

// ClassService handles class domain workflows.
type ClassService struct {
	crudCore[models.Class]
	repo      classRepository
	validator *validator.Validate
}

// NewClassService creates a new class service.
func NewClassService(repo classRepository, validate *validator.Validate, logger *zap.Logger) *ClassService {
	if validate == nil {
		validate = validator.New()
	}
	return &ClassService{
		crudCore:  newCRUDCore[models.Class](repo, "class", logger),
		repo:      repo,
		validator: validate,
	}
}

// Create adds a new class ensuring name uniqueness.
func (s *ClassService) Create(ctx context.Context, req CreateClassRequest) (*models.Class, error) {
	// Trim first so a whitespace-only name fails required validation.
	req.Name = strings.TrimSpace(req.Name)
	req.Grade = strings.TrimSpace(req.Grade)
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInvalidObject.Code, appErrors.ErrInvalidObject.Status, "invalid class payload")
	}

	exists, err := s.repo.ExistsByName(ctx, req.Name, "")
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to check class name")
	}
	if exists {
		return nil, appErrors.Clone(appErrors.ErrAlreadyExists, "class name already exists")
	}

	class := &models.Class{Name: req.Name, Grade: req.Grade}
	if err := s.repo.Create(ctx, class); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrCreateFailed.Code, appErrors.ErrCreateFailed.Status, "failed to create class")
	}
	return class, nil
}

// Update modifies an existing class.
func (s *ClassService) Update(ctx context.Context, id string, req UpdateClassRequest) (*models.Class, error) {
	req.Name = strings.TrimSpace(req.Name)
	req.Grade = strings.TrimSpace(req.Grade)
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInvalidObject.Code, appErrors.ErrInvalidObject.Status, "invalid class payload")
	}

	class, err := s.loadForUpdate(ctx, id)
	if err != nil {
		return nil, err
	}

	exists, err := s.repo.ExistsByName(ctx, req.Name, id)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to check class name")
	}
	if exists {
		return nil, appErrors.Clone(appErrors.ErrAlreadyExists, "class name already exists")
	}

	class.Name = req.Name
	class.Grade = req.Grade
	if err := s.repo.Update(ctx, class); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "class not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrUpdateFailed.Code, appErrors.ErrUpdateFailed.Status, "failed to update class")
	}
	return class, nil
}
